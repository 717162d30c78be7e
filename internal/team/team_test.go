package team

import (
	"context"
	"testing"

	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/rules"
	"github.com/rasim/simcore/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorld(t *testing.T) (*world.WorldState, *Scheduler) {
	t.Helper()
	w := world.New(rules.New(), 7)
	w.CreateHouses()
	s, err := NewScheduler(w)
	require.NoError(t, err)
	return w, s
}

func spawn(t *testing.T, w *world.WorldState, typeName string, house core.HouseType, cell core.Cell) *world.Foot {
	t.Helper()
	f, err := w.CreateFoot(w.Rules.Registry.Type(typeName), house)
	require.NoError(t, err)
	require.True(t, f.Unlimbo(w, cell, core.FacingN))
	return f
}

// guard holds a team in place long enough for a test to inspect it.
var guard = world.TeamMission{Mission: core.TMissionGuard, Arg: 100}

type member struct {
	name string
	qty  int
}

func newTeamType(t *testing.T, w *world.WorldState, name string, house core.HouseType, members []member, missions ...world.TeamMission) *world.TeamType {
	t.Helper()
	tt, err := w.NewTeamType(name)
	require.NoError(t, err)
	tt.House = house
	tt.MaxAllowed = 5
	for _, m := range members {
		typ := w.Rules.Registry.Type(m.name)
		require.NotNil(t, typ, m.name)
		tt.Members = append(tt.Members, world.TeamMember{Class: typ, Quantity: m.qty})
	}
	tt.Missions = missions
	return tt
}

func tickUntilGone(t *testing.T, w *world.WorldState, s *Scheduler, limit int) int {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= limit; i++ {
		s.Tick(ctx)
		w.Tick()
		if s.Count() == 0 {
			return i
		}
	}
	t.Fatalf("team still alive after %d ticks", limit)
	return 0
}

func TestTeam_SetGlobalProgramDisbands(t *testing.T) {
	w, s := newWorld(t)
	tt := newTeamType(t, w, "globals", core.HouseGreece, []member{{"E1", 1}},
		world.TeamMission{Mission: core.TMissionSetGlobal, Arg: 1},
		world.TeamMission{Mission: core.TMissionSetGlobal, Arg: 2},
	)
	e1 := spawn(t, w, "E1", core.HouseGreece, core.XYCell(20, 20))

	team, err := s.CreateOneOf(tt)
	require.NoError(t, err)
	assert.Equal(t, 1, tt.Number)

	s.Tick(context.Background())
	assert.True(t, team.IsAMember(e1.AsTarget()), "recruited on the first pass")
	assert.Equal(t, world.TeamOwner(team), e1.Team)

	tickUntilGone(t, w, s, 10)

	assert.True(t, w.Scen.Globals[1])
	assert.True(t, w.Scen.Globals[2])
	assert.False(t, w.Scen.Globals[3])
	assert.Equal(t, 0, tt.Number)
	assert.Nil(t, e1.Team, "members are released on disband")
	assert.True(t, e1.Breathing(w))
}

func TestTeam_RecruitRespectsQuota(t *testing.T) {
	w, s := newWorld(t)
	tt := newTeamType(t, w, "pair", core.HouseGreece, []member{{"E1", 2}}, guard)
	for i := 0; i < 5; i++ {
		spawn(t, w, "E1", core.HouseGreece, core.XYCell(30+i, 30))
	}

	team, err := s.Create(tt, w.House(core.HouseGreece))
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		s.Tick(context.Background())
		assert.LessOrEqual(t, team.Quantity[0], 2)
	}
	assert.Equal(t, 2, team.Total)
	assert.Len(t, team.Members(), 2)
}

func TestTeam_RecruitIgnoresOtherHouses(t *testing.T) {
	w, s := newWorld(t)
	tt := newTeamType(t, w, "solo", core.HouseGreece, []member{{"E1", 1}})
	spawn(t, w, "E1", core.HouseUSSR, core.XYCell(30, 30))

	team, err := s.Create(tt, w.House(core.HouseGreece))
	require.NoError(t, err)
	assert.Equal(t, 0, team.Recruit(0))
	assert.Equal(t, 0, team.Recruit(3), "out of range slot")
}

func TestTeam_MembershipIsExclusive(t *testing.T) {
	w, s := newWorld(t)
	low := newTeamType(t, w, "low", core.HouseGreece, []member{{"E1", 3}}, guard)
	low.RecruitPriority = 2
	high := newTeamType(t, w, "high", core.HouseGreece, []member{{"E1", 3}}, guard)
	high.RecruitPriority = 9

	for i := 0; i < 4; i++ {
		spawn(t, w, "E1", core.HouseGreece, core.XYCell(40+i, 40))
	}
	a, err := s.Create(low, w.House(core.HouseGreece))
	require.NoError(t, err)
	b, err := s.Create(high, w.House(core.HouseGreece))
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		s.Tick(context.Background())
	}

	for _, f := range w.Infantry.Items() {
		inA, inB := a.IsAMember(f.AsTarget()), b.IsAMember(f.AsTarget())
		assert.False(t, inA && inB, "object %d on both teams", f.ID)
		switch {
		case inA:
			assert.Equal(t, world.TeamOwner(a), f.Team)
		case inB:
			assert.Equal(t, world.TeamOwner(b), f.Team)
		default:
			assert.Nil(t, f.Team)
		}
	}
	assert.Equal(t, 3, b.Total, "the higher priority team fills first")
	assert.Equal(t, 4, a.Total+b.Total)
}

func TestTeam_CanAddPriority(t *testing.T) {
	w, s := newWorld(t)
	house := w.House(core.HouseGreece)
	mid := newTeamType(t, w, "mid", core.HouseGreece, []member{{"E1", 1}})
	mid.RecruitPriority = 5
	up := newTeamType(t, w, "up", core.HouseGreece, []member{{"E1", 1}})
	up.RecruitPriority = 8
	down := newTeamType(t, w, "down", core.HouseGreece, []member{{"E1", 1}})
	down.RecruitPriority = 3

	f := spawn(t, w, "E1", core.HouseGreece, core.XYCell(50, 50))
	holder, err := s.Create(mid, house)
	require.NoError(t, err)
	require.True(t, holder.Add(f))

	lower, err := s.Create(down, house)
	require.NoError(t, err)
	_, ok := lower.CanAdd(f)
	assert.False(t, ok, "lower priority cannot take a member")
	assert.False(t, lower.Add(f))

	higher, err := s.Create(up, house)
	require.NoError(t, err)
	require.True(t, higher.Add(f))
	assert.Equal(t, world.TeamOwner(higher), f.Team)
	assert.False(t, holder.IsAMember(f.AsTarget()))
	assert.Equal(t, 0, holder.Total)
	assert.Equal(t, 0, holder.Quantity[0])

	_, ok = higher.CanAdd(f)
	assert.False(t, ok, "already a member")
}

func TestTeam_CanAddRejects(t *testing.T) {
	tests := []struct {
		name  string
		setup func(w *world.WorldState, f *world.Foot)
	}{
		{"dead", func(_ *world.WorldState, f *world.Foot) { f.Strength = 0 }},
		{"in radio contact", func(_ *world.WorldState, f *world.Foot) { f.RadioContact = f }},
		{"busy mission", func(_ *world.WorldState, f *world.Foot) { f.Mission = core.MissionCapture }},
		{"in limbo", func(w *world.WorldState, f *world.Foot) { f.Limbo(w) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, s := newWorld(t)
			typ := newTeamType(t, w, "x", core.HouseGreece, []member{{"E1", 1}})
			f := spawn(t, w, "E1", core.HouseGreece, core.XYCell(60, 60))
			tt.setup(w, f)

			team, err := s.Create(typ, w.House(core.HouseGreece))
			require.NoError(t, err)
			_, ok := team.CanAdd(f)
			assert.False(t, ok)
		})
	}
}

func TestTeam_RemoveHandsInitiativeToHead(t *testing.T) {
	w, s := newWorld(t)
	tt := newTeamType(t, w, "trio", core.HouseGreece, []member{{"E1", 3}})
	team, err := s.Create(tt, w.House(core.HouseGreece))
	require.NoError(t, err)

	first := spawn(t, w, "E1", core.HouseGreece, core.XYCell(10, 10))
	second := spawn(t, w, "E1", core.HouseGreece, core.XYCell(11, 10))
	require.True(t, team.Add(first))
	require.True(t, team.Add(second))
	assert.True(t, first.IsInitiated)
	assert.False(t, second.IsInitiated)
	assert.Equal(t, second, team.Members()[0], "newest member leads the roster")

	team.Remove(first)
	assert.True(t, second.IsInitiated)
	assert.False(t, team.Zone.IsValid())
	assert.Equal(t, 1, team.Total)
	assert.Nil(t, first.Team)
	assert.Equal(t, core.MissionGuardArea, first.MissionQueue, "released objects go idle")
}

func TestTeam_DeletedMemberLeavesTeam(t *testing.T) {
	w, s := newWorld(t)
	tt := newTeamType(t, w, "duo", core.HouseGreece, []member{{"E1", 2}})
	team, err := s.Create(tt, w.House(core.HouseGreece))
	require.NoError(t, err)

	f := spawn(t, w, "E1", core.HouseGreece, core.XYCell(10, 10))
	require.True(t, team.Add(f))
	team.Target = f.AsTarget()

	w.DeleteFoot(f)
	assert.Equal(t, 0, team.Total)
	assert.False(t, team.Target.IsValid(), "deleted objects are detached")
}

func TestTeam_MovesToWaypoint(t *testing.T) {
	w, s := newWorld(t)
	w.Scen.Waypoints[5] = core.XYCell(40, 20)
	tt := newTeamType(t, w, "mover", core.HouseGreece, []member{{"1TNK", 1}},
		world.TeamMission{Mission: core.TMissionMove, Arg: 5},
	)
	tank := spawn(t, w, "1TNK", core.HouseGreece, core.XYCell(32, 20))

	_, err := s.Create(tt, w.House(core.HouseGreece))
	require.NoError(t, err)

	tickUntilGone(t, w, s, 1000)
	assert.LessOrEqual(t, core.CellDistance(tank.Cell(), core.XYCell(40, 20)), 2)
}

func TestTeam_LoopRepeatsProgram(t *testing.T) {
	w, s := newWorld(t)
	tt := newTeamType(t, w, "looper", core.HouseGreece, []member{{"E1", 1}},
		world.TeamMission{Mission: core.TMissionSetGlobal, Arg: 4},
		world.TeamMission{Mission: core.TMissionLoop, Arg: 0},
	)
	spawn(t, w, "E1", core.HouseGreece, core.XYCell(20, 20))
	team, err := s.Create(tt, w.House(core.HouseGreece))
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		s.Tick(context.Background())
	}
	assert.Equal(t, 1, s.Count(), "a looping program never runs off its end")
	assert.True(t, w.Scen.Globals[4])
	assert.True(t, team.IsMoving)
}

func TestTeam_FormationOffsets(t *testing.T) {
	tests := []struct {
		name      string
		formation core.FormationType
		count     int
		want      [][2]int
	}{
		{"wedge north", core.FormationWedgeN, 4, [][2]int{{0, -2}, {-2, 0}, {2, 0}, {-4, 2}}},
		{"wedge south", core.FormationWedgeS, 3, [][2]int{{0, 1}, {-2, -1}, {2, -1}}},
		{"wedge east", core.FormationWedgeE, 3, [][2]int{{1, 0}, {-1, -2}, {-1, 2}}},
		{"line east west", core.FormationLineEW, 3, [][2]int{{-1, 0}, {1, 0}, {3, 0}}},
		{"line north south", core.FormationLineNS, 2, [][2]int{{0, -1}, {0, 1}}},
		{"tight", core.FormationTight, 2, [][2]int{{0, 0}, {0, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, s := newWorld(t)
			typ := newTeamType(t, w, "form", core.HouseGreece, []member{{"E1", tt.count}})
			team, err := s.Create(typ, w.House(core.HouseGreece))
			require.NoError(t, err)
			for i := 0; i < tt.count; i++ {
				require.True(t, team.Add(spawn(t, w, "E1", core.HouseGreece, core.XYCell(10+i, 10))))
			}

			team.missionFormation(tt.formation)

			var got [][2]int
			for _, f := range team.Members() {
				got = append(got, [2]int{f.XFormOffset, f.YFormOffset})
				assert.Equal(t, team.ID()+10, f.Group)
				assert.True(t, f.IsFormationMove)
				assert.Equal(t, core.SpeedFoot, f.FormationSpeed)
				assert.Equal(t, formationInfantrySpeed, f.FormationMaxSpeed)
			}
			assert.Equal(t, tt.want, got)
			assert.True(t, team.IsNextMission)
		})
	}
}

func TestTeam_FormationSpeedFollowsSlowest(t *testing.T) {
	w, s := newWorld(t)
	typ := newTeamType(t, w, "armor", core.HouseGreece, []member{{"JEEP", 1}, {"4TNK", 1}})
	team, err := s.Create(typ, w.House(core.HouseGreece))
	require.NoError(t, err)
	jeep := spawn(t, w, "JEEP", core.HouseGreece, core.XYCell(10, 10))
	mammoth := spawn(t, w, "4TNK", core.HouseGreece, core.XYCell(12, 10))
	require.True(t, team.Add(jeep))
	require.True(t, team.Add(mammoth))

	team.missionFormation(core.FormationTight)
	for _, f := range []*world.Foot{jeep, mammoth} {
		assert.Equal(t, mammoth.Type.MaxSpeed, f.FormationMaxSpeed)
		assert.Equal(t, core.SpeedTrack, f.FormationSpeed)
	}

	team.missionFormation(core.FormationNone)
	assert.False(t, jeep.IsFormationMove)
	assert.Equal(t, world.GroupNone, jeep.Group)
	assert.Equal(t, world.FormOffsetNone, jeep.XFormOffset)
}

func TestTeam_TookDamage(t *testing.T) {
	tests := []struct {
		name     string
		attacker string
		suicide  bool
		moving   bool
		retarget bool
	}{
		{"moving team turns on a tank", "1TNK", false, true, true},
		{"idle team ignores", "1TNK", false, false, false},
		{"suicide team ignores", "1TNK", true, true, false},
		{"aircraft attacker ignored", "HELI", false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, s := newWorld(t)
			typ := newTeamType(t, w, "victim", core.HouseGreece, []member{{"E1", 1}})
			typ.IsSuicide = tt.suicide
			team, err := s.Create(typ, w.House(core.HouseGreece))
			require.NoError(t, err)
			f := spawn(t, w, "E1", core.HouseGreece, core.XYCell(10, 10))
			require.True(t, team.Add(f))
			team.IsMoving = tt.moving

			enemy := spawn(t, w, tt.attacker, core.HouseUSSR, core.XYCell(14, 10))
			f.TakeDamage(w, 1, enemy.AsTarget())

			if tt.retarget {
				assert.Equal(t, enemy.AsTarget(), team.Target)
			} else {
				assert.False(t, team.Target.IsValid())
			}
		})
	}
}

func TestTeam_DisbandReleasesTrigger(t *testing.T) {
	w, s := newWorld(t)
	trig, err := w.NewTriggerType("tagged")
	require.NoError(t, err)
	tt := newTeamType(t, w, "tagged", core.HouseGreece, []member{{"E1", 1}})
	tt.Trigger = trig.ID

	team, err := s.Create(tt, w.House(core.HouseGreece))
	require.NoError(t, err)
	require.NotNil(t, team.Trigger)
	f := spawn(t, w, "E1", core.HouseGreece, core.XYCell(10, 10))
	require.True(t, team.Add(f))
	assert.Equal(t, team.Trigger, f.Trigger)
	assert.Equal(t, 1, team.Trigger.AttachCount)

	s.Destroy(team)
	assert.Nil(t, f.Trigger)
	assert.Equal(t, 0, w.Triggers.Count())
	assert.Equal(t, 0, s.Count())
}

func TestScheduler_CreateOneOfLimit(t *testing.T) {
	w, s := newWorld(t)
	tt := newTeamType(t, w, "capped", core.HouseGreece, []member{{"E1", 1}})
	tt.MaxAllowed = 1

	_, err := s.CreateOneOf(tt)
	require.NoError(t, err)
	_, err = s.CreateOneOf(tt)
	assert.ErrorIs(t, err, ErrMaxAllowed)

	w.ScenarioInit++
	_, err = s.CreateOneOf(tt)
	w.ScenarioInit--
	assert.NoError(t, err, "the cap does not apply while building the scenario")
	assert.Equal(t, 2, tt.Number)

	s.DestroyAllOf(tt)
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, 0, tt.Number)
}

func TestScheduler_SuggestedNewTeam(t *testing.T) {
	w, s := newWorld(t)
	house := w.House(core.HouseGreece)
	auto := newTeamType(t, w, "auto", core.HouseGreece, []member{{"E1", 1}})
	auto.IsAutocreate = true
	calm := newTeamType(t, w, "calm", core.HouseGreece, []member{{"E1", 1}})
	calm.MaxAllowed = 1
	newTeamType(t, w, "foreign", core.HouseUSSR, []member{{"E1", 1}})

	for i := 0; i < 10; i++ {
		assert.Equal(t, auto, s.SuggestedNewTeam(house, true))
		assert.Equal(t, calm, s.SuggestedNewTeam(house, false))
	}

	_, err := s.Create(calm, house)
	require.NoError(t, err)
	assert.Nil(t, s.SuggestedNewTeam(house, false), "calm type is at its limit")
}

func TestScheduler_SuspendTeams(t *testing.T) {
	w, s := newWorld(t)
	house := w.House(core.HouseGreece)
	tt := newTeamType(t, w, "minor", core.HouseGreece, []member{{"E1", 1}})
	tt.RecruitPriority = 4
	team, err := s.Create(tt, house)
	require.NoError(t, err)
	f := spawn(t, w, "E1", core.HouseGreece, core.XYCell(10, 10))
	require.True(t, team.Add(f))

	s.SuspendTeams(3, house)
	assert.False(t, team.Suspended, "priority not below the threshold")

	s.SuspendTeams(10, house)
	assert.True(t, team.Suspended)
	assert.Nil(t, f.Team)
	assert.Equal(t, w.Rules.SuspendDelay.MulInt(rules.TicksPerMinute), team.SuspendTimer)

	s.Tick(context.Background())
	assert.Nil(t, f.Team, "suspended teams do not recruit")
	assert.Equal(t, 1, s.Count())
}

func TestScheduler_Clear(t *testing.T) {
	w, s := newWorld(t)
	tt := newTeamType(t, w, "gone", core.HouseGreece, []member{{"E1", 1}})
	team, err := s.Create(tt, w.House(core.HouseGreece))
	require.NoError(t, err)
	f := spawn(t, w, "E1", core.HouseGreece, core.XYCell(10, 10))
	require.True(t, team.Add(f))

	w.Reset()
	assert.Equal(t, 0, s.Count())
}

type recordingObserver struct {
	created   []string
	disbanded []string
	members   []int
}

func (o *recordingObserver) TeamCreated(t *Team) { o.created = append(o.created, t.String()) }

func (o *recordingObserver) TeamDisbanded(t *Team) {
	o.disbanded = append(o.disbanded, t.String())
	o.members = append(o.members, len(t.Members()))
}

func TestScheduler_ObserverSeesLifecycle(t *testing.T) {
	w, s := newWorld(t)
	obs := &recordingObserver{}
	s.SetObserver(obs)

	tt := newTeamType(t, w, "short", core.HouseGreece, []member{{"E1", 1}},
		world.TeamMission{Mission: core.TMissionSetGlobal, Arg: 4},
	)
	spawn(t, w, "E1", core.HouseGreece, core.XYCell(20, 20))

	_, err := s.CreateOneOf(tt)
	require.NoError(t, err)
	assert.Equal(t, []string{"short#0"}, obs.created)
	assert.Empty(t, obs.disbanded)

	tickUntilGone(t, w, s, 10)
	assert.Equal(t, []string{"short#0"}, obs.disbanded)
	assert.Equal(t, []int{1}, obs.members, "observer runs before members are released")

	s.SetObserver(nil)
	_, err = s.CreateOneOf(tt)
	require.NoError(t, err)
	s.Clear()
	assert.Len(t, obs.created, 1)
}

func TestTeam_ProgramEndDisbandsSameTick(t *testing.T) {
	w, s := newWorld(t)
	tt := newTeamType(t, w, "pair", core.HouseGreece, []member{{"E1", 1}},
		world.TeamMission{Mission: core.TMissionSetGlobal, Arg: 5},
		world.TeamMission{Mission: core.TMissionSetGlobal, Arg: 6},
	)
	spawn(t, w, "E1", core.HouseGreece, core.XYCell(20, 20))

	team, err := s.CreateOneOf(tt)
	require.NoError(t, err)
	id := team.ID()

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		before := team.CurrentMission
		stats := s.Tick(ctx)
		w.Tick()
		if stats.Disbanded == 0 {
			continue
		}
		assert.Equal(t, 1, before, "disbands on the tick the counter passes the last entry")
		assert.Equal(t, 1, stats.Disbanded)
		assert.Nil(t, s.ByID(id))
		assert.Zero(t, s.Count())

		next := s.Tick(ctx)
		assert.Zero(t, next.Active)
		assert.Zero(t, next.Disbanded)
		return
	}
	t.Fatal("team never disbanded")
}

func TestTeam_AttackWaypointUnsetClearsTarget(t *testing.T) {
	w, s := newWorld(t)
	tt := newTeamType(t, w, "raider", core.HouseUSSR, []member{{"E1", 1}},
		world.TeamMission{Mission: core.TMissionAttWaypt, Arg: 12},
	)
	team, err := s.Create(tt, w.House(core.HouseUSSR))
	require.NoError(t, err)
	f := spawn(t, w, "E1", core.HouseUSSR, core.XYCell(20, 20))
	require.True(t, team.Add(f))

	stale := core.AsCellTarget(core.XYCell(50, 50))
	team.MissionTarget = stale
	team.Target = stale
	f.NavCom = stale
	team.CurrentMission = -1

	require.True(t, team.advance())
	assert.Equal(t, core.TargetNone, team.MissionTarget)
	assert.False(t, team.Target.IsValid())
	assert.Equal(t, core.TargetNone, f.NavCom, "members drop the old destination")

	w.Scen.Waypoints[12] = core.XYCell(30, 30)
	team.CurrentMission = -1
	require.True(t, team.advance())
	assert.Equal(t, core.AsCellTarget(core.XYCell(30, 30)), team.MissionTarget)
}

func TestTeam_RetreatSkipsLimboBuildings(t *testing.T) {
	w, s := newWorld(t)
	tt := newTeamType(t, w, "runner", core.HouseGreece, []member{{"1TNK", 1}}, guard)
	team, err := s.Create(tt, w.House(core.HouseGreece))
	require.NoError(t, err)
	tank := spawn(t, w, "1TNK", core.HouseGreece, core.XYCell(20, 20))
	require.True(t, team.Add(tank))

	near, err := w.CreateBuilding(w.Rules.Registry.Type("POWR"), core.HouseGreece, core.XYCell(23, 20))
	require.NoError(t, err)
	_, err = w.CreateBuilding(w.Rules.Registry.Type("POWR"), core.HouseGreece, core.XYCell(40, 20))
	require.NoError(t, err)
	require.True(t, near.Limbo(w))

	team.retreat()
	assert.LessOrEqual(t, core.CellDistance(team.Target.Cell(), core.XYCell(40, 20)), 3,
		"heads for the standing building, not the one off the map")

	require.True(t, near.Unlimbo(w, core.XYCell(23, 20)))
	team.retreat()
	assert.LessOrEqual(t, core.CellDistance(team.Target.Cell(), core.XYCell(23, 20)), 3)
}

package convert

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasim/simcore/internal/model"
	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/rules"
	"github.com/rasim/simcore/internal/scenario"
	"github.com/rasim/simcore/internal/team"
	"github.com/rasim/simcore/internal/world"
)

var stamp = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newWorld(t *testing.T) *world.WorldState {
	t.Helper()
	w := world.New(rules.New(), 3)
	w.CreateHouses()
	return w
}

func spawn(t *testing.T, w *world.WorldState, typeName string, house core.HouseType, cell core.Cell) *world.Foot {
	t.Helper()
	f, err := w.CreateFoot(w.Rules.Registry.Type(typeName), house)
	require.NoError(t, err)
	require.True(t, f.Unlimbo(w, cell, core.FacingN))
	return f
}

func TestSessionToModel(t *testing.T) {
	s := world.NewSession()
	s.Type = core.GameSkirmish
	s.Seed = 99
	s.Players = []world.PlayerInfo{{Name: "alice", House: core.HouseUSSR, Color: 2}}
	s.Options.AIPlayers = 1

	m := SessionToModel("3f0c", s, core.DiffHard, stamp)
	assert.Equal(t, "3f0c", m.UUID)
	assert.Equal(t, "skirmish", m.GameType)
	assert.Equal(t, "hard", m.Difficulty)
	assert.Equal(t, uint32(99), m.Seed)
	assert.Equal(t, 10, m.BuildLevel)
	assert.Equal(t, stamp, m.StartTime)
	assert.JSONEq(t, `{"credits":10000,"bases":true,"tiberium":true,"goodies":true,"ghosts":false,"unitCount":10,"aiPlayers":1}`, string(m.Options))

	players, err := Players(m)
	require.NoError(t, err)
	assert.Equal(t, []Player{{Name: "alice", House: "USSR", Color: 2}}, players)
}

func TestScenarioLoadToModel_Failures(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantStage string
	}{
		{"load error", &scenario.LoadError{Scenario: "scg01ea.ini", Stage: scenario.StageDigest, Err: scenario.ErrDigestMismatch}, "digest"},
		{"wrapped load error", errors.Join(errors.New("outer"), &scenario.LoadError{Stage: scenario.StageMedia, Err: scenario.ErrMediaUnavailable}), "media"},
		{"plain error", errors.New("boom"), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t)
			l := ScenarioLoadToModel(w, "scg01ea.ini", tt.err, 1500*time.Microsecond, stamp)
			assert.True(t, l.Failed())
			assert.Equal(t, tt.wantStage, l.Stage)
			assert.Equal(t, tt.err.Error(), l.Error)
			assert.Equal(t, 1.5, l.DurationMs)
			assert.Equal(t, "None", l.PlayerHouse)
			assert.Empty(t, l.StartPositions)
		})
	}
}

func TestScenarioLoadToModel_Success(t *testing.T) {
	w := newWorld(t)
	w.Scen.Name = "scg01ea.ini"
	w.Scen.Scenario = 1
	w.Scen.Description = "In the thick of it"
	w.Scen.Waypoints[core.WaypointHome] = core.XYCell(40, 50)
	w.PlayerPtr = w.House(core.HouseGreece)
	spawn(t, w, "E1", core.HouseGreece, core.XYCell(40, 50))

	l := ScenarioLoadToModel(w, "scg01ea.ini", nil, time.Second, stamp)
	assert.False(t, l.Failed())
	assert.Equal(t, "Greece", l.PlayerHouse)
	assert.Equal(t, 1, l.Number)
	assert.Equal(t, 1, l.Objects)
	assert.Equal(t, 1000.0, l.DurationMs)

	cells, err := StartPositions(l)
	require.NoError(t, err)
	assert.Equal(t, []core.Cell{core.XYCell(40, 50)}, cells)
}

func TestScenarioLoadToModel_FitsColumns(t *testing.T) {
	w := newWorld(t)
	w.Scen.Description = `"` + strings.Repeat("d", 200) + `"`

	l := ScenarioLoadToModel(w, "scg01ea.ini", errors.New(strings.Repeat("e", 300)), 0, stamp)
	assert.Len(t, l.Description, 127)
	assert.Equal(t, "d", l.Description[:1], "quotes are stripped before truncating")
	assert.Len(t, l.Error, 255)
}

func TestStartCells_Multiplayer(t *testing.T) {
	w := newWorld(t)
	w.Session.Type = core.GameSkirmish
	w.House(core.HouseMulti1).Center = core.CellCoord(core.XYCell(20, 20))
	w.House(core.HouseMulti2).Center = core.CellCoord(core.XYCell(90, 90))
	for h := core.HouseMulti3; h <= core.HouseMulti8; h++ {
		w.House(h).IsDefeated = true
	}

	assert.Equal(t, []core.Cell{core.XYCell(20, 20), core.XYCell(90, 90)}, StartCells(w))
}

func TestTeamToModel(t *testing.T) {
	w := newWorld(t)
	s, err := team.NewScheduler(w)
	require.NoError(t, err)

	w.Scen.Name = "scu05ea.ini"
	w.Scen.Waypoints[0] = core.XYCell(10, 10)
	w.Scen.Waypoints[1] = core.XYCell(20, 10)
	tt, err := w.NewTeamType("ATK1")
	require.NoError(t, err)
	tt.House = core.HouseUSSR
	tt.MaxAllowed = 1
	tt.Origin = 0
	tt.IsAutocreate = true
	tt.Members = []world.TeamMember{{Class: w.Rules.Registry.Type("E1"), Quantity: 3}}
	tt.Missions = []world.TeamMission{
		{Mission: core.TMissionMove, Arg: 1},
		{Mission: core.TMissionMoveCell, Arg: int(core.XYCell(20, 30))},
		{Mission: core.TMissionGuard, Arg: 5},
		{Mission: core.TMissionPatrol, Arg: 7},
	}

	tm, err := s.CreateOneOf(tt)
	require.NoError(t, err)

	rec := TeamToModel(tm, w.Scen, 4, 12, stamp)
	assert.True(t, rec.IsOpen())
	assert.Equal(t, 4, rec.Serial)
	assert.Equal(t, "scu05ea.ini", rec.Scenario)
	assert.Equal(t, "ATK1", rec.TypeName)
	assert.Equal(t, "USSR", rec.House)
	assert.Equal(t, 3, rec.Quota)
	assert.True(t, rec.IsAutocreate)
	assert.Equal(t, 12, rec.CreatedFrame)

	missions, err := TeamMissions(rec)
	require.NoError(t, err)
	require.Len(t, missions, 4)
	assert.Equal(t, model.TeamMission{Mission: "Move to waypoint...", Arg: 1}, missions[0])

	path, err := RallyCells(rec)
	require.NoError(t, err)
	assert.Equal(t, []core.Cell{core.XYCell(10, 10), core.XYCell(20, 10), core.XYCell(20, 30)}, path,
		"unset waypoints are left out")

	CloseTeam(&rec, tm, 30, stamp.Add(time.Minute))
	assert.False(t, rec.IsOpen())
	assert.Equal(t, int32(30), rec.DisbandedFrame.Int32)
	assert.Equal(t, 0, rec.Members)
}

func TestTeamMissions_Corrupt(t *testing.T) {
	_, err := TeamMissions(model.TeamRecord{TypeName: "bad", Missions: []byte("{")})
	assert.Error(t, err)
}

func TestHouseSummaries(t *testing.T) {
	w := newWorld(t)
	w.Scen.Name = "scg01ea.ini"
	w.PlayerPtr = w.House(core.HouseGreece)
	w.PlayerPtr.IsHuman = true
	w.PlayerPtr.Credits = 1234

	spawn(t, w, "E1", core.HouseUSSR, core.XYCell(30, 30))
	spawn(t, w, "E1", core.HouseUSSR, core.XYCell(31, 30))
	spawn(t, w, "1TNK", core.HouseUSSR, core.XYCell(40, 30))
	limbo, err := w.CreateFoot(w.Rules.Registry.Type("E1"), core.HouseUSSR)
	require.NoError(t, err)
	require.True(t, limbo.IsInLimbo)

	got := HouseSummaries(w)
	require.Len(t, got, 2)

	byHouse := map[string]model.HouseSummary{}
	for _, h := range got {
		byHouse[h.House] = h
	}
	assert.True(t, byHouse["Greece"].IsHuman)
	assert.Equal(t, 1234, byHouse["Greece"].Credits)
	assert.Equal(t, 2, byHouse["USSR"].Infantry)
	assert.Equal(t, 1, byHouse["USSR"].Units)
	assert.Equal(t, "scg01ea.ini", byHouse["USSR"].Scenario)
}

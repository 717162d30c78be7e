// Package team runs squads of mobile objects through the mission programs authored in their
// team types: recruitment, regrouping, formation moves and the per-opcode coordination.
package team

import (
	"fmt"

	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/world"
)

// Result is what a team asks of its scheduler after one AI pass.
type Result int

const (
	// Continue keeps the team in the active pool.
	Continue Result = iota
	// Disband retires the team before the next tick.
	Disband
)

func (r Result) String() string {
	if r == Disband {
		return "disband"
	}
	return "continue"
}

// Team is a live squad built from a team type.
type Team struct {
	id    int
	w     *world.WorldState
	sched *Scheduler

	Class *world.TeamType
	House *world.House

	// members is the roster; index 0 is the most recently added member.
	members  []*world.Foot
	Quantity [world.MaxTeamClassCount]int
	Total    int

	Zone          core.Target
	ClosestMember core.Target
	MissionTarget core.Target
	Target        core.Target

	CurrentMission int
	Formation      core.FormationType
	TimeOut        int
	SuspendTimer   int
	Trigger        *world.Trigger

	IsActive        bool
	IsForcedActive  bool
	IsHasBeen       bool
	IsFullStrength  bool
	IsUnderStrength bool
	IsReforming     bool
	IsLagging       bool
	IsAltered       bool
	IsMoving        bool
	IsNextMission   bool
	IsLeaveMap      bool
	Suspended       bool
}

var _ world.TeamOwner = (*Team)(nil)

// ID returns the pool slot of the team.
func (t *Team) ID() int { return t.id }

// Priority returns the recruit priority of the team's type.
func (t *Team) Priority() int { return t.Class.RecruitPriority }

// AsTarget returns the handle of t.
func (t *Team) AsTarget() core.Target {
	return core.Target{Kind: core.RTTITeam, ID: t.id}
}

// Members returns a snapshot of the roster, newest first.
func (t *Team) Members() []*world.Foot {
	out := make([]*world.Foot, len(t.members))
	copy(out, t.members)
	return out
}

func (t *Team) String() string {
	return fmt.Sprintf("%s#%d", t.Class.Name, t.id)
}

func (t *Team) init(id int, w *world.WorldState, s *Scheduler, tt *world.TeamType, house *world.House) {
	*t = Team{
		id:              id,
		w:               w,
		sched:           s,
		Class:           tt,
		House:           house,
		CurrentMission:  -1,
		IsActive:        true,
		IsUnderStrength: true,
		IsAltered:       true,
		IsNextMission:   true,
	}
	if tt.Origin != -1 {
		if c := w.Scen.Waypoint(tt.Origin); c != core.CellNone {
			t.Zone = core.AsCellTarget(c)
		}
	}
	tt.Number++
	if tt.Trigger >= 0 {
		if trig := w.TriggerTypes.ByID(tt.Trigger); trig != nil {
			instance, err := w.CreateTrigger(trig)
			if err != nil {
				w.Log.Warn("team trigger not created", "team", tt.Name, "trigger", trig.Name, "error", err)
			} else {
				t.Trigger = instance
			}
		}
	}
}

// mission returns the current program entry.
func (t *Team) mission() (world.TeamMission, bool) {
	if t.CurrentMission < 0 || t.CurrentMission >= len(t.Class.Missions) {
		return world.TeamMission{}, false
	}
	return t.Class.Missions[t.CurrentMission], true
}

// distance measures from f to a target in leptons. Targets that do not resolve count as zero.
func (t *Team) distance(f *world.Foot, target core.Target) int {
	c, ok := t.w.TargetCoord(target)
	if !ok {
		return 0
	}
	return core.Distance(f.Coord, c)
}

func (t *Team) breathing(f *world.Foot) bool { return f.Breathing(t.w) }

func (t *Team) playing(f *world.Foot) bool { return f.Playing(t.w) }

// IsAMember reports whether target is one of the team's members.
func (t *Team) IsAMember(target core.Target) bool {
	for _, f := range t.members {
		if f.AsTarget() == target {
			return true
		}
	}
	return false
}

func (t *Team) classIndex(f *world.Foot) int {
	for i, m := range t.Class.Members {
		if m.Class == f.Type {
			return i
		}
	}
	return -1
}

// CanAdd reports whether f may join the team and which member slot it would fill. Objects on
// another team are only taken from a team of strictly lower recruit priority.
func (t *Team) CanAdd(f *world.Foot) (int, bool) {
	if f.Team == world.TeamOwner(t) {
		return -1, false
	}
	if !t.breathing(f) || f.RadioContact != nil || f.House != t.House.Class {
		return -1, false
	}
	if f.Mission != core.MissionNone && !f.Mission.IsRecruitable() {
		return -1, false
	}
	if f.Team != nil && f.Team.Priority() >= t.Class.RecruitPriority {
		return -1, false
	}
	if f.Kind == world.FootAircraft && f.Type.Primary != nil && f.Ammo == 0 {
		return -1, false
	}
	index := t.classIndex(f)
	if index < 0 || t.Quantity[index] >= t.Class.Members[index].Quantity {
		return -1, false
	}
	return index, true
}

// Add moves f onto the team, taking it from its previous team first.
func (t *Team) Add(f *world.Foot) bool {
	if f == nil {
		return false
	}
	index, ok := t.CanAdd(f)
	if !ok {
		return false
	}
	if f.Team != nil {
		f.Team.Remove(f)
	}
	if t.Quantity[index] >= t.Class.Members[index].Quantity {
		panic(fmt.Sprintf("team %s: slot %d already full", t, index))
	}

	t.Quantity[index]++
	f.IsInitiated = len(t.members) == 0
	t.members = append([]*world.Foot{f}, t.members...)
	f.Team = t
	if t.Trigger != nil && f.Trigger != t.Trigger {
		f.Trigger = t.Trigger
		t.Trigger.AttachCount++
	}
	t.Total++

	if !t.Zone.IsValid() {
		t.Zone, t.ClosestMember = t.CalcCenter()
	}
	t.IsAltered = true
	return true
}

// Remove takes f off the team and sends it idle. Objects not on this team are ignored.
func (t *Team) Remove(f *world.Foot) bool {
	if f.Team != world.TeamOwner(t) {
		return true
	}
	if t.Trigger != nil && f.Trigger == t.Trigger {
		if h := t.w.House(f.House); h == nil || !h.IsPlayerControl {
			f.Trigger = nil
			t.Trigger.AttachCount--
		}
	}
	if index := t.classIndex(f); index >= 0 {
		t.Quantity[index]--
	}

	for i, m := range t.members {
		if m == f {
			t.members = append(t.members[:i], t.members[i+1:]...)
			break
		}
	}
	f.Team = nil
	f.SuspendedMission = core.MissionNone
	f.SuspendedNavCom = core.TargetNone
	f.SuspendedTarCom = core.TargetNone
	t.Total--

	f.EnterIdleMode(t.w)

	initiated := false
	for _, m := range t.members {
		if m.IsInitiated {
			initiated = true
			break
		}
	}
	if !initiated && len(t.members) > 0 {
		t.members[0].IsInitiated = true
		t.Zone = core.TargetNone
	}
	t.IsAltered = true
	return true
}

// Recruit pulls the nearest eligible object for member slot index. A recruited transport
// brings its passengers along. It returns the number of objects added.
func (t *Team) Recruit(index int) int {
	if index < 0 || index >= len(t.Class.Members) {
		return 0
	}
	slot := t.Class.Members[index]
	if t.Quantity[index] >= slot.Quantity {
		return 0
	}
	kind, ok := world.FootKindOf(slot.Class.Kind)
	if !ok {
		panic(fmt.Sprintf("team %s: member slot %d holds non-mobile type %s", t, index, slot.Class.Name))
	}

	center, _ := t.w.TargetCoord(t.Zone)
	if t.Class.Origin != -1 {
		if c := t.w.Scen.Waypoint(t.Class.Origin); c != core.CellNone {
			center = core.CellCoord(c)
		}
	}

	var best *world.Foot
	bestDist := -1
	for _, f := range t.w.FootHeap(kind).Items() {
		d := core.Distance(f.Coord, center)
		if best != nil && d >= bestDist {
			continue
		}
		if i, ok := t.CanAdd(f); ok && i == index {
			best, bestDist = f, d
		}
	}
	if best == nil {
		return 0
	}

	added := 0
	best.AssignTarget(core.TargetNone)
	if t.Add(best) {
		added++
	}
	switch kind {
	case world.FootUnit, world.FootVessel:
		for _, p := range append([]*world.Foot(nil), best.Cargo...) {
			if t.Add(p) {
				added++
			}
		}
	case world.FootInfantry, world.FootAircraft:
	}
	if added > 0 && t.sched != nil {
		t.sched.noteRecruited(added)
	}
	return added
}

// Detach drops every reference the team holds to target.
func (t *Team) Detach(target core.Target) {
	if t.Target == target {
		t.Target = core.TargetNone
	}
	if t.MissionTarget == target {
		t.MissionTarget = core.TargetNone
	}
}

// AssignMissionTarget changes the mission target. Members still chasing the old one are
// stopped first.
func (t *Team) AssignMissionTarget(target core.Target) {
	if t.MissionTarget.IsValid() {
		for _, f := range t.members {
			tar := f.TarCom == t.MissionTarget
			nav := f.NavCom == t.MissionTarget
			if !tar && !nav {
				continue
			}
			f.AssignMission(core.MissionGuard)
			if nav {
				f.AssignDestination(core.TargetNone)
			}
			if tar {
				f.AssignTarget(core.TargetNone)
			}
		}
	}
	if t.Target == t.MissionTarget || !t.w.IsLegal(t.Target) {
		t.Target = target
	}
	t.MissionTarget = target
}

// CalcCenter returns the rally point and the cell of the member closest to the team target.
// While following, the rally point is the nearest allied object that is not on the team.
func (t *Team) CalcCenter() (center, closeMember core.Target) {
	if len(t.members) == 0 {
		return core.TargetNone, core.TargetNone
	}
	if m, ok := t.mission(); ok && m.Mission == core.TMissionHoundDog {
		return t.followCenter()
	}

	var x, y, quantity int
	var closest *world.Foot
	best := 0
	for _, f := range t.members {
		if !t.playing(f) {
			continue
		}
		x += f.Coord.X
		y += f.Coord.Y
		quantity++
		d := t.distance(f, t.Target)
		if closest == nil || d < best {
			best = d
			closest = f
		}
	}
	if quantity == 0 {
		return core.TargetNone, core.TargetNone
	}

	cell := core.Coord{X: x / quantity, Y: y / quantity}.Cell()
	if mc := t.w.Map.Cell(cell); mc == nil || !mc.Land.Passable(closest.Type.Speed) {
		cell = closest.Cell()
	}
	return core.AsCellTarget(cell), core.AsCellTarget(closest.Cell())
}

func (t *Team) followCenter() (core.Target, core.Target) {
	head := t.members[0]
	var closest *world.Foot
	best := -1
	for _, k := range []world.FootKind{world.FootUnit, world.FootInfantry, world.FootVessel} {
		for _, f := range t.w.FootHeap(k).Items() {
			if !t.breathing(f) || f.Team == world.TeamOwner(t) || !t.House.IsAlly(f.House) {
				continue
			}
			d := core.Distance(head.Coord, f.Coord)
			if best == -1 || d < best {
				best = d
				closest = f
			}
		}
	}
	if closest == nil {
		return core.TargetNone, core.TargetNone
	}
	return closest.AsTarget(), head.AsTarget()
}

// TookDamage lets a moving team turn on whoever hit one of its members.
func (t *Team) TookDamage(_ *world.Foot, source core.Target) {
	if t.Class.IsSuicide || !t.IsMoving || len(t.members) == 0 {
		return
	}
	src := t.w.Object(source)
	if src == nil || t.IsAMember(source) || t.Target == source {
		return
	}

	head := t.members[0]
	switch head.Kind {
	case world.FootAircraft:
		return
	case world.FootVessel:
		if head.IsTransport() {
			return
		}
	case world.FootInfantry, world.FootUnit:
	}

	if o := t.w.Object(t.Target); o != nil && o.IsAlive(t.w) && o.TechnoType().IsArmed() {
		if zc, ok := t.w.TargetCoord(t.Zone); ok && core.Distance(o.Center(), zc) <= o.TechnoType().Range() {
			return
		}
	}
	if f, ok := src.(*world.Foot); ok {
		switch f.Kind {
		case world.FootAircraft:
			return
		case world.FootVessel:
			if head.Kind == world.FootUnit || head.Kind == world.FootInfantry {
				return
			}
		case world.FootInfantry, world.FootUnit:
		}
	}
	t.Target = source
}

// FetchALeader returns the first playing armed member, or the newest member.
func (t *Team) FetchALeader() *world.Foot {
	for _, f := range t.members {
		if t.playing(f) && f.Type.IsArmed() {
			return f
		}
	}
	if len(t.members) > 0 {
		return t.members[0]
	}
	return nil
}

// IsLeavingMap reports whether the current order moves the team to a waypoint off the map.
func (t *Team) IsLeavingMap() bool {
	if !t.IsMoving {
		return false
	}
	m, ok := t.mission()
	return ok && m.Mission == core.TMissionMove && !t.w.Map.InRadar(t.w.Scen.Waypoint(m.Arg))
}

// HasEnteredMap reports whether every member has crossed onto the playable map.
func (t *Team) HasEnteredMap() bool {
	for _, f := range t.members {
		if !f.IsLocked {
			return false
		}
	}
	return true
}

// ScanLimit drops every target and limits members to scanning their immediate area.
func (t *Team) ScanLimit() {
	t.AssignMissionTarget(core.TargetNone)
	for _, f := range t.members {
		f.AssignTarget(core.TargetNone)
		f.IsScanLimited = true
	}
}

// springLeavesMap trips the general triggers waiting on a team leaving the map.
func (t *Team) springLeavesMap() {
	for _, trig := range t.w.LogicTriggers {
		if trig.Class == nil {
			continue
		}
		if trig.Class.Event1.Event == core.TEventLeavesMap {
			trig.Event1.IsTripped = true
		}
		if trig.Class.Event2.Event == core.TEventLeavesMap {
			trig.Event2.IsTripped = true
		}
	}
}

package team

import (
	"math"

	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/rules"
	"github.com/rasim/simcore/internal/world"
)

// AI runs one decision pass. A team reports Disband once it has no more reason to exist; the
// scheduler then retires it.
func (t *Team) AI() Result {
	if t.TimeOut > 0 {
		t.TimeOut--
	}
	if t.SuspendTimer > 0 {
		t.SuspendTimer--
	}
	if t.Suspended {
		if t.SuspendTimer != 0 {
			return Continue
		}
		t.Suspended = false
	}

	oldUnder := t.IsUnderStrength
	if t.IsAltered {
		desired := t.Class.DesiredTotal()
		if t.Total > 0 {
			t.IsFullStrength = t.Total == desired
			if t.IsFullStrength {
				t.IsHasBeen = true
			}
			switch {
			case !t.Class.IsReinforcable:
				t.IsUnderStrength = !t.IsHasBeen
			case desired > 2:
				t.IsUnderStrength = t.Total <= desired/3
			default:
				t.IsUnderStrength = t.Total < desired
			}
			t.IsAltered = false
		} else {
			t.IsUnderStrength = true
			t.IsFullStrength = false
			t.Zone = core.TargetNone
			if t.IsHasBeen || t.w.Session.Type != core.GameNormal {
				if t.IsLeaveMap {
					t.springLeavesMap()
				}
				return Disband
			}
		}
		if oldUnder != t.IsUnderStrength {
			t.IsReforming = true
		}
	}

	if t.IsMoving && t.IsUnderStrength {
		t.IsMoving = false
		t.CurrentMission = -1
		if t.Total > 0 {
			t.retreat()
			return Continue
		}
		t.Zone = core.TargetNone
	}

	if !t.IsMoving && (t.IsFullStrength || t.IsForcedActive) {
		t.moveOut()
	}

	if t.IsReforming || t.IsMoving || !t.Zone.IsValid() || !t.ClosestMember.IsValid() {
		t.Zone, t.ClosestMember = t.CalcCenter()
	}

	if (!t.IsMoving || (!t.IsFullStrength && t.Class.IsReinforcable)) &&
		(!t.House.IsHuman || !t.IsHasBeen) && t.w.Session.Type == core.GameNormal {
		for i, m := range t.Class.Members {
			if t.Quantity[i] < m.Quantity {
				t.Recruit(i)
			}
		}
	}

	if len(t.members) == 0 && t.IsHasBeen {
		if t.IsLeaveMap {
			t.springLeavesMap()
		}
		return Disband
	}

	if t.IsMoving && !t.IsReforming && t.IsNextMission {
		if !t.advance() {
			return Disband
		}
	}

	if len(t.members) > 0 && t.IsMoving && !t.IsReforming && !t.IsUnderStrength {
		t.execute()
	} else if t.IsMoving {
		t.IsReforming = !t.coordinateRegroup()
	} else {
		t.coordinateMove()
	}
	return Continue
}

// retreat sends an under-strength team to the safest unarmed building of its house.
func (t *Team) retreat() {
	t.Zone, t.ClosestMember = t.CalcCenter()
	dest := t.Zone.Cell()
	zoneCoord, _ := t.w.TargetCoord(t.Zone)
	leader := t.FetchALeader()

	best := math.MaxInt
	for _, b := range t.w.Buildings.Items() {
		if b.IsInLimbo || b.House != t.House.Class || b.Type.IsArmed() {
			continue
		}
		dist := core.Distance(b.Center(), zoneCoord)
		if b.Type.IsRepairPad {
			dist /= 2
		}
		if dist >= best {
			continue
		}
		cell := t.w.Map.NearbyLocation(b.Center().Cell(), leader.Kind, leader.Type.Speed)
		if cell != core.CellNone {
			best = dist
			dest = cell
		}
	}
	t.Target = core.AsCellTarget(dest)
	t.coordinateMove()
}

// moveOut flips a full-strength team into motion at the start of its program.
func (t *Team) moveOut() {
	t.IsMoving = true
	t.IsHasBeen = true
	t.IsUnderStrength = false

	gesture := world.Gesture2
	if t.w.Rand.Percent(50) {
		gesture = world.Gesture1
	}
	for _, f := range t.members {
		if t.breathing(f) && f.Kind == world.FootInfantry {
			f.Gesture = gesture
		}
		if t.IsReforming || t.IsForcedActive {
			f.IsInitiated = true
		}
	}
	t.CurrentMission = -1
	t.IsNextMission = true
}

// advance steps the program counter and sets up the new instruction's target. It reports false
// once the program has run off its end.
func (t *Team) advance() bool {
	t.IsNextMission = false
	t.CurrentMission++
	m, ok := t.mission()
	if !ok {
		return false
	}

	t.TimeOut = m.Arg * (rules.TicksPerMinute / 10)
	t.Target = core.TargetNone
	switch m.Mission {
	case core.TMissionMoveCell:
		t.AssignMissionTarget(core.AsCellTarget(core.Cell(m.Arg)))
	case core.TMissionMove:
		if m.Arg < 0 || m.Arg >= core.WaypointCount || len(t.members) == 0 {
			break
		}
		cell := t.w.Scen.Waypoint(m.Arg)
		if cell == core.CellNone {
			break
		}
		if !t.IsLeavingMap() {
			leader := t.FetchALeader()
			if !leader.CanEnterCell(t.w, cell) {
				if near := t.w.Map.NearbyLocation(cell, leader.Kind, leader.Type.Speed); near != core.CellNone {
					cell = near
				}
			}
		}
		t.AssignMissionTarget(core.AsCellTarget(cell))
		t.Target = core.AsCellTarget(cell)
	case core.TMissionAttWaypt, core.TMissionPatrol, core.TMissionSpy:
		if m.Arg < 0 || m.Arg >= core.WaypointCount {
			break
		}
		// An unset waypoint clears the target so execute moves on instead of chasing a stale one.
		target := core.TargetNone
		if cell := t.w.Scen.Waypoint(m.Arg); cell != core.CellNone {
			target = core.AsCellTarget(cell)
		}
		t.AssignMissionTarget(target)
	case core.TMissionAttackTarcom:
		t.AssignMissionTarget(core.TargetFromRaw(int32(m.Arg)))
	default:
		t.AssignMissionTarget(core.TargetNone)
	}
	return true
}

// execute dispatches the current instruction to its handler.
func (t *Team) execute() {
	if !t.w.IsLegal(t.Target) {
		t.Target = t.MissionTarget
	}
	m, ok := t.mission()
	if !ok {
		return
	}

	switch m.Mission {
	case core.TMissionPatrol:
		t.missionPatrol()
	case core.TMissionFormation:
		t.missionFormation(core.FormationType(m.Arg))
	case core.TMissionAttack, core.TMissionAttackTarcom:
		t.missionAttack(core.QuarryType(m.Arg))
	case core.TMissionLoad:
		t.missionLoad()
	case core.TMissionDeploy:
		t.missionDeploy()
	case core.TMissionUnload:
		t.missionUnload()
	case core.TMissionMove, core.TMissionMoveCell:
		t.coordinateMove()
	case core.TMissionInvulnerable:
		t.missionInvulnerable()
	case core.TMissionGuard:
		t.coordinateRegroup()
		if t.TimeOut == 0 {
			t.IsNextMission = true
		}
	case core.TMissionDo:
		t.coordinateDo(core.MissionType(m.Arg))
	case core.TMissionSetGlobal:
		t.missionSetGlobal(m.Arg)
	case core.TMissionAttWaypt:
		if !t.w.IsLegal(t.MissionTarget) {
			t.AssignMissionTarget(core.TargetNone)
			t.IsNextMission = true
		} else {
			t.coordinateAttack()
		}
	case core.TMissionSpy:
		t.missionSpy()
	case core.TMissionHoundDog:
		t.missionFollow()
	case core.TMissionLoop:
		t.missionLoop(m.Arg)
	}
}

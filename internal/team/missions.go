package team

import (
	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/rules"
	"github.com/rasim/simcore/internal/world"
)

const (
	// formationMaxSpeed is the starting cap before the slowest member lowers it.
	formationMaxSpeed = 255
	// formationInfantrySpeed is the pace infantry keep inside any formation.
	formationInfantrySpeed = 8
)

func (t *Team) missionUnload() {
	finished := true
	for _, f := range t.Members() {
		t.conscript(f)
		if !t.playing(f) {
			continue
		}
		mines := f.Type.IsMineLayer && f.Ammo != 0
		if len(f.Cargo) > 0 || mines {
			if len(f.Cargo) > 0 {
				finished = false
			}
			if !t.w.Map.Building(f.Cell()).IsValid() && f.Mission != core.MissionUnload {
				f.AssignDestination(core.TargetNone)
				f.AssignTarget(core.TargetNone)
				f.AssignMission(core.MissionUnload)
				finished = false
			}
		} else if f.IsALoaner {
			t.Remove(f)
			f.AssignMission(core.MissionRetreat)
		}
	}
	if finished {
		t.IsNextMission = true
	}
}

func (t *Team) missionLoad() {
	var trans *world.Foot
	for _, f := range t.members {
		if f.IsTransport() {
			trans = f
			break
		}
	}
	if trans == nil {
		t.IsNextMission = true
		return
	}
	if trans.RadioContact != nil {
		return
	}

	finished := true
	if t.Total > 1 {
		for _, f := range t.Members() {
			t.conscript(f)
			if !t.playing(f) || f == trans {
				continue
			}
			finished = false
			if f.Mission != core.MissionEnter {
				f.AssignMission(core.MissionEnter)
				f.AssignTarget(core.TargetNone)
				f.AssignDestination(trans.AsTarget())
				break
			}
		}
	}
	if finished {
		t.IsNextMission = true
	}
}

func (t *Team) missionDeploy() {
	finished := true
	for _, f := range t.Members() {
		t.conscript(f)
		if !t.playing(f) || f.Kind != world.FootUnit || f.Mission == core.MissionUnload {
			continue
		}
		deploy := f.Type.IsDeployable ||
			(f.Type.IsMineLayer && f.Ammo != 0 && !t.w.Map.Building(f.Cell()).IsValid())
		if deploy {
			f.AssignDestination(core.TargetNone)
			f.AssignTarget(core.TargetNone)
			f.AssignMission(core.MissionUnload)
			finished = false
		}
	}
	if finished {
		t.IsNextMission = true
	}
}

// missionFormation assigns each member its offset in the requested shape and clamps the group
// to the pace of its slowest member.
func (t *Team) missionFormation(formation core.FormationType) {
	t.Formation = formation
	group := t.id + 10

	place := func(f *world.Foot, x, y int) {
		f.Group = group
		f.XFormOffset = x
		f.YFormOffset = y
		f.IsFormationMove = true
	}

	xdir, ydir := 0, 0
	evenodd := true
	switch formation {
	case core.FormationNone:
		for _, f := range t.members {
			f.Group = world.GroupNone
			f.XFormOffset = world.FormOffsetNone
			f.YFormOffset = world.FormOffsetNone
			f.IsFormationMove = false
		}
	case core.FormationTight:
		for _, f := range t.members {
			place(f, 0, 0)
		}
	case core.FormationLoose:
	case core.FormationWedgeN, core.FormationWedgeS:
		ydir = -(t.Total / 2)
		if formation == core.FormationWedgeS {
			ydir = t.Total / 2
		}
		for _, f := range t.members {
			place(f, xdir, ydir)
			xdir = -xdir
			evenodd = !evenodd
			if !evenodd {
				xdir -= 2
				if formation == core.FormationWedgeN {
					ydir += 2
				} else {
					ydir -= 2
				}
			}
		}
	case core.FormationWedgeE, core.FormationWedgeW:
		xdir = t.Total / 2
		if formation == core.FormationWedgeW {
			xdir = -(t.Total / 2)
		}
		for _, f := range t.members {
			place(f, xdir, ydir)
			ydir = -ydir
			evenodd = !evenodd
			if !evenodd {
				if formation == core.FormationWedgeE {
					xdir -= 2
				} else {
					xdir += 2
				}
				ydir -= 2
			}
		}
	case core.FormationLineNS:
		ydir = -(t.Total / 2)
		for _, f := range t.members {
			place(f, 0, ydir)
			ydir += 2
		}
	case core.FormationLineEW:
		xdir = -(t.Total / 2)
		for _, f := range t.members {
			place(f, xdir, 0)
			xdir += 2
		}
	}

	if formation != core.FormationNone {
		speed, maxSpeed := core.SpeedWheel, formationMaxSpeed
		for _, f := range t.members {
			if f.Kind == world.FootAircraft {
				continue
			}
			s := f.Type.Speed
			if f.Kind == world.FootInfantry {
				s = core.SpeedFoot
			}
			if f.Type.MaxSpeed < maxSpeed {
				maxSpeed = f.Type.MaxSpeed
				speed = s
			}
		}
		for _, f := range t.members {
			f.FormationSpeed = speed
			f.FormationMaxSpeed = maxSpeed
			if f.Kind == world.FootInfantry {
				f.FormationSpeed = core.SpeedFoot
				f.FormationMaxSpeed = formationInfantrySpeed
			}
		}
	}
	t.IsNextMission = true
}

func (t *Team) missionAttack(quarry core.QuarryType) {
	if !t.w.IsLegal(t.MissionTarget) && len(t.members) > 0 {
		if m, _ := t.mission(); m.Mission == core.TMissionAttack && quarry > core.QuarryNone && quarry < core.QuarryCount {
			t.AssignMissionTarget(t.FetchALeader().GreatestThreat(t.w, quarry.Threat()))
		}
		if !t.w.IsLegal(t.MissionTarget) {
			t.IsNextMission = true
		}
	}
	t.coordinateAttack()
}

// missionSpy attacks the building at the spy waypoint. With no building there the team moves
// on to its next instruction.
func (t *Team) missionSpy() {
	if t.MissionTarget.IsCell() {
		if b := t.w.Map.Building(t.MissionTarget.Cell()); b.IsValid() {
			t.AssignMissionTarget(b)
			t.coordinateAttack()
			return
		}
		t.AssignMissionTarget(core.TargetNone)
		t.IsNextMission = true
		return
	}
	if !t.w.IsLegal(t.MissionTarget) {
		t.AssignMissionTarget(core.TargetNone)
		t.IsNextMission = true
		return
	}
	t.coordinateAttack()
}

func (t *Team) missionFollow() {
	t.Zone, t.ClosestMember = t.CalcCenter()
	t.Target = t.Zone
	t.coordinateMove()
}

func (t *Team) missionLoop(arg int) {
	t.CurrentMission = arg - 1
	t.IsNextMission = true
}

func (t *Team) missionInvulnerable() {
	duration := t.w.Rules.IronCurtainDuration.MulInt(rules.TicksPerMinute)
	for _, f := range t.members {
		f.IronCurtainCountDown = duration
	}
	t.IsNextMission = true
}

func (t *Team) missionSetGlobal(global int) {
	t.w.SetGlobalTo(global, true)
	t.IsNextMission = true
}

func (t *Team) missionPatrol() {
	if !t.w.IsLegal(t.Target) {
		if m, ok := t.mission(); ok {
			if cell := t.w.Scen.Waypoint(m.Arg); cell != core.CellNone {
				t.AssignMissionTarget(core.AsCellTarget(cell))
			}
		}
	}

	period := t.w.Rules.PatrolTime.MulInt(rules.TicksPerMinute)
	if period > 0 && t.w.Frame%period == 0 {
		if leader := t.FetchALeader(); leader != nil {
			target := leader.GreatestThreat(t.w, core.ThreatNormal|core.ThreatRange)
			if t.w.IsLegal(target) {
				t.AssignMissionTarget(target)
			} else {
				t.AssignMissionTarget(core.TargetNone)
			}
		}
	}

	if t.Target.IsValid() && !t.Target.IsCell() {
		t.coordinateAttack()
	} else {
		t.coordinateMove()
	}
}

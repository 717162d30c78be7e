package team

import (
	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/world"
)

// conscript walks an uninitiated member to the rally point. It reports true while the member is
// still on its way.
func (t *Team) conscript(f *world.Foot) bool {
	if !t.breathing(f) || f.IsInitiated {
		return false
	}
	if t.distance(f, t.Zone) > t.w.Rules.StrayDistance {
		if !t.w.IsLegal(f.NavCom) {
			f.AssignMission(core.MissionMove)
			f.AssignTarget(core.TargetNone)
			f.IsFormationMove = false
			f.AssignDestination(t.Zone)
		}
		return true
	}
	f.IsInitiated = true
	return false
}

// coordinateAttack points every playing member at the team target.
func (t *Team) coordinateAttack() {
	if !t.w.IsLegal(t.Target) {
		t.Target = t.MissionTarget
	}
	m, _ := t.mission()

	if t.Target.IsCell() && len(t.members) > 0 && t.FetchALeader().Kind != world.FootAircraft {
		cell := t.Target.Cell()
		if occupant := t.w.Map.Techno(cell); occupant.IsValid() {
			t.Target = occupant
		} else if mc := t.w.Map.Cell(cell); mc == nil || !world.IsBridge(mc.TType) {
			if t.members[0].Kind != world.FootUnit || m.Mission != core.TMissionSpy {
				t.Target = core.TargetNone
			}
		}
	}

	if !t.w.IsLegal(t.Target) {
		t.IsNextMission = true
		return
	}

	for _, f := range t.Members() {
		t.conscript(f)
		if !t.playing(f) {
			continue
		}
		if m.Mission == core.TMissionSpy && f.Kind == world.FootInfantry && f.Type.IsSpy {
			f.AssignMission(core.MissionCapture)
			f.AssignTarget(t.Target)
		} else if f.Mission != core.MissionAttack && f.Mission != core.MissionEnter && f.Mission != core.MissionCapture {
			f.RadioContact = nil
			f.AssignMission(core.MissionAttack)
			f.AssignTarget(core.TargetNone)
			f.AssignDestination(core.TargetNone)
		}
		if f.TarCom != t.Target {
			f.AssignTarget(t.Target)
		}
	}
}

// coordinateRegroup gathers the members at the rally point. It reports true once everyone is
// there; formation members always count as regrouped.
func (t *Team) coordinateRegroup() bool {
	regrouped := true
	for _, f := range t.Members() {
		t.conscript(f)
		if !t.playing(f) {
			continue
		}
		if t.distance(f, t.Zone) > t.w.Rules.StrayDistance &&
			(f.Mission != core.MissionGuardArea || !t.w.IsLegal(f.TarCom)) {
			if t.w.IsLegal(f.NavCom) {
				continue
			}
			f.AssignMission(core.MissionMove)
			if f.IsFormationMove {
				f.AssignDestination(t.Zone)
				continue
			}
			regrouped = false
			f.AssignDestination(core.AsCellTarget(f.AdjustDest(t.w, t.w.TargetCell(t.Zone))))
		} else if f.Mission != core.MissionGuardArea {
			f.AssignMission(core.MissionGuard)
			f.AssignDestination(core.TargetNone)
		}
	}
	return regrouped
}

// coordinateDo gives idle members near the rally point the given order.
func (t *Team) coordinateDo(do core.MissionType) {
	for _, f := range t.Members() {
		t.conscript(f)
		if !t.playing(f) {
			continue
		}
		idle := !t.w.IsLegal(f.TarCom) && !t.w.IsLegal(f.NavCom)
		switch {
		case idle && t.distance(f, t.Zone) > t.w.Rules.StrayDistance*2:
			f.AssignMission(core.MissionMove)
			f.AssignDestination(core.AsCellTarget(f.AdjustDest(t.w, t.w.TargetCell(t.Zone))))
		case idle && f.Mission != do:
			f.AssignMission(do)
			f.AssignTarget(core.TargetNone)
			f.AssignDestination(core.TargetNone)
		}
	}
}

// coordinateMove drives the members to the team target and advances the program once all have
// arrived.
func (t *Team) coordinateMove() {
	finished := true
	found := false

	if !t.w.IsLegal(t.Target) {
		t.Target = t.MissionTarget
	}
	if t.w.IsLegal(t.Target) {
		if t.laggingUnits() {
			finished = false
		} else {
			for _, f := range t.Members() {
				if t.conscript(f) {
					finished = false
				}
				unloading := f.Mission == core.MissionUnload || f.MissionQueue == core.MissionUnload
				if unloading {
					finished = false
				}
				if !t.playing(f) || unloading {
					continue
				}
				found = true
				if f.IsLocked && t.IsLeavingMap() && !t.w.Map.InRadar(f.Cell()) {
					t.IsLeaveMap = true
					t.w.DeleteFoot(f)
					continue
				}
				if !t.moveMember(f) {
					finished = false
				}
				if t.w.IsLegal(f.NavCom) {
					finished = false
				}
			}
		}
	}

	if finished && found && t.IsMoving {
		t.IsNextMission = true
	}
}

// moveMember steers one member toward the team target. It reports whether the member counts as
// arrived.
func (t *Team) moveMember(f *world.Foot) bool {
	stray := t.w.Rules.StrayDistance
	if f.Kind == world.FootAircraft {
		stray *= 3
	}
	if f.Type.IsDog && t.w.IsLegal(f.TarCom) {
		stray = f.Type.Range()
		if t.distance(f, f.TarCom) > stray {
			f.AssignTarget(core.TargetNone)
		}
	}

	dist := t.distance(f, t.Target)
	if f.IsFormationMove && core.AsCellTarget(f.Cell()) != f.NavCom {
		dist = t.w.Rules.StrayDistance + 1
	}

	if dist <= stray {
		if f.Mission == core.MissionMove && (!t.w.IsLegal(f.NavCom) || t.distance(f, f.NavCom) < core.CellLeptons) {
			f.AssignDestination(core.TargetNone)
			f.EnterIdleMode(t.w)
		}
		return true
	}

	if f.Mission != core.MissionMove {
		f.AssignMission(core.MissionMove)
	}
	if f.NavCom == t.Target {
		return false
	}
	if t.Target.IsCell() && f.IsFormationMove {
		dest := f.AdjustDest(t.w, t.Target.Cell())
		if f.Cell() == dest {
			f.AssignMission(core.MissionGuard)
			f.AssignDestination(core.TargetNone)
			return true
		}
		f.AssignDestination(core.AsCellTarget(dest))
		return false
	}
	f.AssignDestination(t.Target)
	return false
}

// laggingUnits holds the team back until stragglers catch up with the closest member.
func (t *Team) laggingUnits() bool {
	if len(t.members) > 0 && t.members[0].IsFormationMove {
		t.IsLagging = false
	}
	if !t.IsLagging {
		return false
	}

	lag := false
	for _, f := range t.members {
		if !t.playing(f) {
			continue
		}
		stray := t.w.Rules.StrayDistance
		if f.Kind == world.FootAircraft {
			stray *= 3
		}
		if t.distance(f, t.ClosestMember) > stray {
			if !t.w.IsLegal(f.NavCom) {
				f.AssignMission(core.MissionMove)
				f.AssignDestination(t.ClosestMember)
			}
			lag = true
		} else if f.Mission != core.MissionGuard {
			f.AssignMission(core.MissionGuard)
			f.AssignDestination(core.TargetNone)
		}
	}
	t.IsLagging = lag
	return lag
}

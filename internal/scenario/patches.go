package scenario

import (
	"strings"

	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/world"
)

// patch corrects a data error in one shipped scenario after it has been read.
type patch struct {
	files []string
	apply func(w *world.WorldState)
}

var patches = []patch{
	{files: []string{"scmh8ea.ini"}, apply: patchGoldRushRock},
	{files: []string{"scu13ea.ini"}, apply: patchTriggerAction},
	{files: []string{"scg09ea.ini"}, apply: patchSpiedTechCenter},
	{files: []string{"scu46ea.ini"}, apply: patchTransportWaypoints},
	{files: []string{"scu42ea.ini"}, apply: patchPillboxCapture},
	{files: []string{"scu35ea.ini", "scu47ea.ini"}, apply: patchSniperBurst},
}

func applyPatches(w *world.WorldState, name string) {
	for _, p := range patches {
		for _, file := range p.files {
			if strings.EqualFold(file, name) {
				p.apply(w)
				w.Log.Debug("scenario patch applied", "scenario", name)
			}
		}
	}
}

func patchGoldRushRock(w *world.WorldState) {
	if mc := w.Map.Cell(9033); mc != nil {
		mc.Land = core.LandRock
	}
}

func patchTriggerAction(w *world.WorldState) {
	if tt := w.TriggerTypes.ByID(11); tt != nil {
		tt.Action1.Trigger = 39
	}
}

// patchSpiedTechCenter makes the mission fail when the tech center is destroyed before it has
// been spied. The spy event moves to a new "kos" trigger on the building, which raises global 22
// when spied and 23 when destroyed; "los3" loses the mission on 23 without 22.
func patchSpiedTechCenter(w *world.WorldState) {
	spyd := w.TriggerTypeByName("Spyd")
	if spyd == nil {
		w.Log.Warn("scenario patch skipped: no Spyd trigger")
		return
	}

	kos, err := w.NewTriggerType("kos")
	if err != nil {
		w.Log.Warn("scenario patch skipped", "error", err)
		return
	}
	kos.IsPersistant = spyd.IsPersistant
	kos.House = spyd.House
	kos.EventControl = core.MultiLinked
	kos.ActionControl = core.MultiOnly
	kos.Event1 = spyd.Event1
	kos.Event2 = world.TEvent{Event: core.TEventDestroyed, Team: -1}
	kos.Action1 = world.TAction{Action: core.TActionSetGlobal, Team: -1, Trigger: -1, Value: 22}
	kos.Action2 = world.TAction{Action: core.TActionSetGlobal, Team: -1, Trigger: -1, Value: 23}

	spyd.Event1 = world.TEvent{Event: core.TEventGlobalSet, Team: -1, Value: 22}

	for _, b := range w.Buildings.Items() {
		if b.Trigger == nil || b.Trigger.Class != spyd {
			continue
		}
		t, err := w.FindOrMakeTrigger(kos)
		if err != nil {
			w.Log.Warn("scenario patch incomplete", "error", err)
			return
		}
		b.Trigger.AttachCount--
		b.Trigger = t
		t.AttachCount++
	}

	los3, err := w.NewTriggerType("los3")
	if err != nil {
		w.Log.Warn("scenario patch incomplete", "error", err)
		return
	}
	los3.IsPersistant = spyd.IsPersistant
	los3.House = spyd.House
	los3.EventControl = core.MultiAnd
	los3.ActionControl = core.MultiAnd
	los3.Event1 = world.TEvent{Event: core.TEventGlobalSet, Team: -1, Value: 23}
	los3.Event2 = world.TEvent{Event: core.TEventGlobalClear, Team: -1, Value: 22}
	los3.Action1 = world.TAction{Action: core.TActionLose, Team: -1, Trigger: -1, Value: -255}
	los3.Action2 = world.TAction{Action: core.TActionTextTrigger, Team: -1, Trigger: -1, Value: 54}
}

// patchTransportWaypoints sends the two reinforcement transports to separate waypoints.
func patchTransportWaypoints(w *world.WorldState) {
	for i, c := range map[int]core.Cell{20: 9915, 21: 9919} {
		w.Scen.Waypoints[i] = c
		if mc := w.Map.Cell(c); mc != nil {
			mc.IsWaypoint = true
		}
	}
	for name, wp := range map[string]int{"rnf1": 20, "rnf2": 21} {
		if tt := w.TeamTypeByName(name); tt != nil && len(tt.Missions) > 0 {
			tt.Missions[0].Arg = wp
		}
	}
}

func patchPillboxCapture(w *world.WorldState) {
	if t := w.Rules.Registry.Type("PBOX"); t != nil {
		t.IsCaptureable = false
	}
}

func patchSniperBurst(w *world.WorldState) {
	if wp := w.Rules.Registry.Weapon("Sniper"); wp != nil {
		wp.Burst = 2
	}
}

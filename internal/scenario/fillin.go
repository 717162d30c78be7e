package scenario

import (
	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/world"
)

// FillInData derives the state a scenario file does not store: buildables, movement zones,
// the starting view, trigger scope lists, the revealed border ring, inherited objects, win
// blockage, silo contents and the bridge count.
func FillInData(w *world.WorldState) {
	w.ScenarioInit++
	w.UpdateBuildables()
	w.Map.ZoneReset()
	w.Scen.View = w.Scen.Waypoint(core.WaypointHome)
	distributeTriggers(w)
	w.ScenarioInit--

	revealBorder(w.Map)

	if w.Scen.IsToInherit {
		createCarryOver(w)
	}

	for _, tt := range w.TriggerTypes.Items() {
		if !tt.IsAllowWin() {
			continue
		}
		if h := w.House(tt.House); h != nil {
			h.Blockage++
		}
	}

	if w.Scen.IsMoneyTiberium {
		for _, h := range w.Houses {
			if h != nil {
				h.FillSilos()
			}
		}
	}

	w.Scen.BridgeCount = w.Map.IntactBridgeCount()
	w.AllToLook(w.PlayerPtr)
}

// distributeTriggers registers one instance of every trigger type in each scope it attaches to.
func distributeTriggers(w *world.WorldState) {
	for _, tt := range w.TriggerTypes.Items() {
		attach := tt.AttachesTo()
		if attach&(core.AttachMap|core.AttachGeneral|core.AttachHouse) == 0 {
			continue
		}
		t, err := w.FindOrMakeTrigger(tt)
		if err != nil {
			w.Log.Warn("trigger not distributed", "trigger", tt.Name, "error", err)
			continue
		}
		if attach&core.AttachMap != 0 {
			w.MapTriggers = world.AddUniqueTrigger(w.MapTriggers, t)
		}
		if attach&core.AttachGeneral != 0 {
			w.LogicTriggers = world.AddUniqueTrigger(w.LogicTriggers, t)
		}
		if attach&core.AttachHouse != 0 && tt.House.IsValid() {
			w.HouseTriggers[tt.House] = world.AddUniqueTrigger(w.HouseTriggers[tt.House], t)
		}
	}
}

// revealBorder maps the ring of cells just outside the playable rectangle.
func revealBorder(m *world.Map) {
	left, top := m.MapCellX-1, m.MapCellY-1
	right, bottom := m.MapCellX+m.MapCellWidth, m.MapCellY+m.MapCellHeight
	reveal := func(x, y int) {
		if x >= 0 && y >= 0 && x < core.MapCellW && y < core.MapCellH {
			m.Reveal(core.XYCell(x, y))
		}
	}
	for x := left; x <= right; x++ {
		reveal(x, top)
		reveal(x, bottom)
	}
	for y := m.MapCellY; y < bottom; y++ {
		reveal(left, y)
		reveal(right, y)
	}
}

// createCarryOver recreates the objects that survived the previous mission.
func createCarryOver(w *world.WorldState) {
	for _, co := range w.CarryOver {
		class := w.Rules.Registry.Type(co.Type)
		if class == nil {
			continue
		}
		if co.Kind == core.RTTIBuilding {
			b, err := w.CreateBuilding(class, co.House, co.Cell)
			if err != nil {
				w.Log.Warn("carry over object dropped", "type", co.Type, "error", err)
				continue
			}
			b.Strength = min(co.Strength, class.Strength)
			continue
		}
		f, err := w.CreateFoot(class, co.House)
		if err != nil {
			w.Log.Warn("carry over object dropped", "type", co.Type, "error", err)
			continue
		}
		f.Strength = min(co.Strength, class.Strength)
		if !f.Unlimbo(w, co.Cell, core.FacingN) {
			w.DeleteFoot(f)
		}
	}
}

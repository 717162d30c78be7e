// Package world holds the live simulation state: houses, the cell map, every object pool and the
// per-scenario data. A WorldState is passed explicitly to every loader and team operation; there
// are no package-level globals.
package world

import (
	"log/slog"

	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/random"
	"github.com/rasim/simcore/internal/rules"
)

// TeamPool is the view of the live team set that the world needs for clearing and for
// dropping stale target references.
type TeamPool interface {
	Clear()
	Count() int
	Detach(target core.Target)
}

// WorldState is the complete simulation state.
type WorldState struct {
	Rules   *rules.Rules
	Rand    *random.Random
	Scen    *Scenario
	Session *Session
	Log     *slog.Logger

	Houses    [core.HouseCount]*House
	PlayerPtr *House

	Map *Map

	Infantry     *Heap[Foot]
	Units        *Heap[Foot]
	Aircraft     *Heap[Foot]
	Vessels      *Heap[Foot]
	Buildings    *Heap[Building]
	Terrain      *Heap[Terrain]
	Triggers     *Heap[Trigger]
	TriggerTypes *Heap[TriggerType]
	TeamTypes    *Heap[TeamType]

	Teams TeamPool
	Base  Base

	MapTriggers   []*Trigger
	LogicTriggers []*Trigger
	HouseTriggers [core.HouseCount][]*Trigger

	// CarryOver survives scenario clears; it is filled on a win and consumed by the next load.
	CarryOver []CarryObject

	// ScenarioInit is non-zero while a scenario is being built.
	ScenarioInit int
	Frame        int

	// CallBack runs between load steps so a host can service its message loop.
	CallBack func()
}

// New builds an empty world sized from r.
func New(r *rules.Rules, seed uint32) *WorldState {
	w := &WorldState{
		Rules:   r,
		Rand:    random.New(seed),
		Scen:    NewScenario(),
		Session: NewSession(),
		Log:     slog.Default(),
		Map:     NewMap(),
		Base:    Base{House: core.HouseNone},
	}
	w.InitHeaps()
	return w
}

// InitHeaps sizes every object pool from the current rules.
func (w *WorldState) InitHeaps() {
	w.Infantry = NewHeap[Foot](w.Rules.InfantryMax)
	w.Units = NewHeap[Foot](w.Rules.UnitMax)
	w.Aircraft = NewHeap[Foot](w.Rules.AircraftMax)
	w.Vessels = NewHeap[Foot](w.Rules.VesselMax)
	w.Buildings = NewHeap[Building](w.Rules.BuildingMax)
	w.Terrain = NewHeap[Terrain](w.Rules.TerrainMax)
	w.Triggers = NewHeap[Trigger](w.Rules.TriggerMax)
	w.TriggerTypes = NewHeap[TriggerType](w.Rules.TriggerMax)
	w.TeamTypes = NewHeap[TeamType](w.Rules.TeamMax)
}

// Callback invokes the host hook if one is installed.
func (w *WorldState) Callback() {
	if w.CallBack != nil {
		w.CallBack()
	}
}

// House returns the house control block for h, or nil.
func (w *WorldState) House(h core.HouseType) *House {
	if !h.IsValid() {
		return nil
	}
	return w.Houses[h]
}

// CreateHouses allocates a control block for every house type.
func (w *WorldState) CreateHouses() {
	for h := core.HouseType(0); h < core.HouseCount; h++ {
		w.Houses[h] = NewHouse(h, w.Rules)
	}
}

// FootHeap returns the pool holding objects of kind k.
func (w *WorldState) FootHeap(k FootKind) *Heap[Foot] {
	switch k {
	case FootInfantry:
		return w.Infantry
	case FootUnit:
		return w.Units
	case FootAircraft:
		return w.Aircraft
	case FootVessel:
		return w.Vessels
	}
	panic("world: unknown foot kind")
}

// Feet returns every live foot object in kind order, each kind in allocation order.
func (w *WorldState) Feet() []*Foot {
	var out []*Foot
	for _, k := range FootKinds {
		out = append(out, w.FootHeap(k).Items()...)
	}
	return out
}

// CreateFoot allocates a foot object of type t for house. It starts in limbo.
func (w *WorldState) CreateFoot(t *rules.TechnoType, house core.HouseType) (*Foot, error) {
	kind, ok := FootKindOf(t.Kind)
	if !ok {
		return nil, ErrNotFoot
	}
	f, id, err := w.FootHeap(kind).Allocate()
	if err != nil {
		return nil, err
	}
	f.init(id, kind, t, house)
	return f, nil
}

// DeleteFoot removes a foot object from the map, its team and its pool.
func (w *WorldState) DeleteFoot(f *Foot) {
	if f.Team != nil {
		f.Team.Remove(f)
	}
	if !f.IsInLimbo {
		f.Limbo(w)
	}
	if f.Transport != nil {
		f.Transport.removeCargo(f)
	}
	for len(f.Cargo) > 0 {
		w.DeleteFoot(f.Cargo[0])
	}
	f.IsActive = false
	w.detachAll(f.AsTarget())
	w.FootHeap(f.Kind).Free(f.ID)
}

// Object resolves a target to a foot object or building.
func (w *WorldState) Object(t core.Target) Object {
	switch t.Kind {
	case core.RTTIInfantry, core.RTTIUnit, core.RTTIAircraft, core.RTTIVessel:
		if f := w.Foot(t); f != nil {
			return f
		}
	case core.RTTIBuilding:
		if b := w.Buildings.ByID(t.ID); b != nil {
			return b
		}
	}
	return nil
}

// Foot resolves a target to a foot object, or nil.
func (w *WorldState) Foot(t core.Target) *Foot {
	kind, ok := footKindOfRTTI(t.Kind)
	if !ok {
		return nil
	}
	return w.FootHeap(kind).ByID(t.ID)
}

// IsLegal reports whether t refers to something that still exists.
func (w *WorldState) IsLegal(t core.Target) bool {
	switch t.Kind {
	case core.RTTINone:
		return false
	case core.RTTICell:
		return core.Cell(t.ID).IsValid()
	case core.RTTIInfantry, core.RTTIUnit, core.RTTIAircraft, core.RTTIVessel, core.RTTIBuilding:
		o := w.Object(t)
		return o != nil && o.IsAlive(w)
	case core.RTTITeamType:
		return w.TeamTypes.ByID(t.ID) != nil
	case core.RTTITriggerType:
		return w.TriggerTypes.ByID(t.ID) != nil
	case core.RTTIHouse:
		return core.HouseType(t.ID).IsValid()
	}
	return false
}

// TargetCoord returns the coordinate a target sits at.
func (w *WorldState) TargetCoord(t core.Target) (core.Coord, bool) {
	if t.IsCell() {
		return core.CellCoord(t.Cell()), true
	}
	if o := w.Object(t); o != nil {
		return o.Center(), true
	}
	return core.Coord{}, false
}

// TargetCell returns the cell a target sits in.
func (w *WorldState) TargetCell(t core.Target) core.Cell {
	c, ok := w.TargetCoord(t)
	if !ok {
		return core.CellNone
	}
	return c.Cell()
}

// detachAll removes every reference to target held by foot objects, buildings and teams.
func (w *WorldState) detachAll(target core.Target) {
	for _, f := range w.Feet() {
		if f.TarCom == target {
			f.TarCom = core.TargetNone
		}
		if f.NavCom == target {
			f.NavCom = core.TargetNone
		}
	}
	if w.Teams != nil {
		w.Teams.Detach(target)
	}
}

// ClobberAll deletes every object owned by house.
func (w *WorldState) ClobberAll(house core.HouseType) {
	for _, f := range w.Feet() {
		if f.House == house {
			w.DeleteFoot(f)
		}
	}
	for _, b := range w.Buildings.Items() {
		if b.House == house {
			w.DeleteBuilding(b)
		}
	}
}

// SetGlobalTo sets a scenario global flag and returns its previous value. Triggers keyed on that
// global have their other event's reset applied to their first event state.
func (w *WorldState) SetGlobalTo(global int, value bool) bool {
	if global < 0 || global >= GlobalCount {
		return false
	}
	previous := w.Scen.Globals[global]
	if previous == value {
		return previous
	}
	w.Scen.Globals[global] = value
	w.Scen.IsGlobalChanged = true

	for _, tp := range w.Triggers.Items() {
		c := tp.Class
		if c == nil {
			continue
		}
		// Both branches reset the first event's state.
		if c.Event1.IsGlobal(global) {
			c.Event2.Reset(&tp.Event1)
		}
		if c.Event2.IsGlobal(global) {
			c.Event1.Reset(&tp.Event1)
		}
	}
	return previous
}

// CarryObject records a surviving object carried into the next scenario.
type CarryObject struct {
	Kind     core.RTTIType
	Type     string
	House    core.HouseType
	Cell     core.Cell
	Strength int
}

// RecordCarryOver replaces the carry-over list with every live, placed building, unit,
// infantry and vessel, in that order.
func (w *WorldState) RecordCarryOver() {
	w.CarryOver = w.CarryOver[:0]
	for _, b := range w.Buildings.Items() {
		if b.IsActive && b.Strength > 0 {
			w.CarryOver = append(w.CarryOver, CarryObject{
				Kind:     core.RTTIBuilding,
				Type:     b.Type.Name,
				House:    b.House,
				Cell:     b.Cell,
				Strength: b.Strength,
			})
		}
	}
	for _, k := range []FootKind{FootUnit, FootInfantry, FootVessel} {
		for _, f := range w.FootHeap(k).Items() {
			if f.IsInLimbo || f.Strength <= 0 {
				continue
			}
			w.CarryOver = append(w.CarryOver, CarryObject{
				Kind:     k.RTTI(),
				Type:     f.Type.Name,
				House:    f.House,
				Cell:     f.Cell(),
				Strength: f.Strength,
			})
		}
	}
}

// Reset empties the world for a new scenario: every pool, the map, the trigger scope lists
// and the houses. Scenario defaults that outlive a mission are kept.
func (w *WorldState) Reset() {
	if w.Teams != nil {
		w.Teams.Clear()
	}
	w.Infantry.Clear()
	w.Units.Clear()
	w.Aircraft.Clear()
	w.Vessels.Clear()
	w.Buildings.Clear()
	w.Terrain.Clear()
	w.Triggers.Clear()
	w.TriggerTypes.Clear()
	w.TeamTypes.Clear()

	w.MapTriggers = nil
	w.LogicTriggers = nil
	for h := range w.HouseTriggers {
		w.HouseTriggers[h] = nil
	}

	w.Base = Base{House: core.HouseNone}
	w.Houses = [core.HouseCount]*House{}
	w.PlayerPtr = nil
	w.Map.Clear()
	w.Scen.ClearMission()
	w.Frame = 0
}

// AllToLook reveals the sight range of every object owned by or allied with house.
func (w *WorldState) AllToLook(house *House) {
	if house == nil {
		return
	}
	for _, f := range w.Feet() {
		if f.IsInLimbo || !house.IsAlly(f.House) {
			continue
		}
		w.Map.RevealRadius(f.Cell(), f.Type.Sight)
	}
	for _, b := range w.Buildings.Items() {
		if !house.IsAlly(b.House) {
			continue
		}
		w.Map.RevealRadius(b.Center().Cell(), b.Type.Sight)
	}
}

// Tick advances every foot object one frame.
func (w *WorldState) Tick() {
	w.Frame++
	for _, f := range w.Feet() {
		if f.IsActive && w.FootHeap(f.Kind).ByID(f.ID) == f {
			f.Tick(w)
		}
	}
	for _, t := range w.Triggers.Items() {
		if t.Event1.Timer > 0 {
			t.Event1.Timer--
		}
		if t.Event2.Timer > 0 {
			t.Event2.Timer--
		}
	}
}

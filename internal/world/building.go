package world

import (
	"fmt"

	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/rules"
)

// Building is a placed structure.
type Building struct {
	ID       int
	Type     *rules.TechnoType
	House    core.HouseType
	Cell     core.Cell
	Facing   core.FacingType
	Strength int

	IsActive   bool
	IsSellable bool
	IsRebuild  bool
	IsInLimbo  bool // lifted off the map, e.g. while being sold back or carried
	Trigger    *Trigger
}

// AsTarget returns the handle of b.
func (b *Building) AsTarget() core.Target {
	return core.Target{Kind: core.RTTIBuilding, ID: b.ID}
}

// Center returns the centre of the footprint.
func (b *Building) Center() core.Coord {
	c := core.CellCoord(b.Cell)
	w, h := b.footprint()
	c.X += (w - 1) * core.CellLeptons / 2
	c.Y += (h - 1) * core.CellLeptons / 2
	return c
}

// Owner returns the owning house.
func (b *Building) Owner() core.HouseType { return b.House }

// TechnoType returns the type data.
func (b *Building) TechnoType() *rules.TechnoType { return b.Type }

// IsAlive reports whether the building still stands.
func (b *Building) IsAlive(*WorldState) bool { return b.IsActive && b.Strength > 0 }

// TakeDamage applies damage and removes the building when destroyed.
func (b *Building) TakeDamage(w *WorldState, damage int, _ core.Target) {
	if !b.IsAlive(w) {
		return
	}
	b.Strength -= damage
	if b.Strength <= 0 {
		b.Strength = 0
		w.DeleteBuilding(b)
	}
}

func (b *Building) footprint() (int, int) {
	width, height := b.Type.Width, b.Type.Height
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

// Occupies lists the cells under the building.
func (b *Building) Occupies() []core.Cell {
	width, height := b.footprint()
	cells := make([]core.Cell, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			cells = append(cells, core.XYCell(b.Cell.X()+x, b.Cell.Y()+y))
		}
	}
	return cells
}

// CreateBuilding places a structure with its top-left corner at cell.
func (w *WorldState) CreateBuilding(t *rules.TechnoType, house core.HouseType, cell core.Cell) (*Building, error) {
	if t.Kind != rules.KindBuilding {
		return nil, fmt.Errorf("%s is not a building", t.Name)
	}
	b, id, err := w.Buildings.Allocate()
	if err != nil {
		return nil, err
	}
	*b = Building{
		ID:         id,
		Type:       t,
		House:      house,
		Cell:       cell,
		Strength:   t.Strength,
		IsActive:   true,
		IsSellable: true,
	}
	for _, c := range b.Occupies() {
		w.Map.addObject(c, b.AsTarget())
	}
	if h := w.House(house); h != nil {
		h.Owned[t.Name]++
		h.Capacity += t.Capacity
	}
	return b, nil
}

// DeleteBuilding removes a structure from the map and its pool.
func (w *WorldState) DeleteBuilding(b *Building) {
	if !b.IsInLimbo {
		for _, c := range b.Occupies() {
			w.Map.removeObject(c, b.AsTarget())
		}
	}
	if h := w.House(b.House); h != nil {
		if h.Owned[b.Type.Name] > 0 {
			h.Owned[b.Type.Name]--
		}
		h.Capacity -= b.Type.Capacity
	}
	b.IsActive = false
	w.detachAll(b.AsTarget())
	w.Buildings.Free(b.ID)
}

// Limbo lifts b off the map without destroying it.
func (b *Building) Limbo(w *WorldState) bool {
	if b.IsInLimbo || !b.IsActive {
		return false
	}
	for _, c := range b.Occupies() {
		w.Map.removeObject(c, b.AsTarget())
	}
	b.IsInLimbo = true
	return true
}

// Unlimbo puts a limboed building back down with its top-left corner at cell.
func (b *Building) Unlimbo(w *WorldState, cell core.Cell) bool {
	if !b.IsInLimbo || w.Map.Cell(cell) == nil {
		return false
	}
	b.Cell = cell
	for _, c := range b.Occupies() {
		w.Map.addObject(c, b.AsTarget())
	}
	b.IsInLimbo = false
	return true
}

// UpdateBuildables recounts each house's buildings and storage.
func (w *WorldState) UpdateBuildables() {
	for _, h := range w.Houses {
		if h == nil {
			continue
		}
		h.Owned = make(map[string]int)
		h.Capacity = 0
	}
	for _, b := range w.Buildings.Items() {
		if h := w.House(b.House); h != nil {
			h.Owned[b.Type.Name]++
			h.Capacity += b.Type.Capacity
		}
	}
}

// Terrain is a tree or rock feature.
type Terrain struct {
	ID   int
	Name string
	Cell core.Cell
}

// CreateTerrain places a terrain feature at cell.
func (w *WorldState) CreateTerrain(name string, cell core.Cell) (*Terrain, error) {
	t, id, err := w.Terrain.Allocate()
	if err != nil {
		return nil, err
	}
	*t = Terrain{ID: id, Name: name, Cell: cell}
	w.Map.addObject(cell, core.Target{Kind: core.RTTITerrain, ID: id})
	return t, nil
}

// CaptureBuilding hands b over to house.
func (w *WorldState) CaptureBuilding(b *Building, house core.HouseType) {
	if old := w.House(b.House); old != nil {
		if old.Owned[b.Type.Name] > 0 {
			old.Owned[b.Type.Name]--
		}
		old.Capacity -= b.Type.Capacity
	}
	b.House = house
	if h := w.House(house); h != nil {
		h.Owned[b.Type.Name]++
		h.Capacity += b.Type.Capacity
	}
}

// BaseNode is one structure of the computer's authored base plan.
type BaseNode struct {
	Type *rules.TechnoType
	Cell core.Cell
}

// Base is the authored base plan from the [Base] section.
type Base struct {
	House core.HouseType
	Nodes []BaseNode
}

// IsEmpty reports whether no base plan was authored.
func (b *Base) IsEmpty() bool { return len(b.Nodes) == 0 }

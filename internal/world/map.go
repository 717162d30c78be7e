package world

import (
	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/random"
)

// TemplateNone marks a cell with no terrain template.
const TemplateNone = 0xFFFF

// Bridge templates; a bridge cell is intact while its icon is the centre piece.
const (
	templateFord2     = 130
	templateBridge1   = 131
	templateBridge2   = 133
	templateBridge1A  = 235
	templateBridge1B  = 236
	templateBridge1H  = 378
	templateBridge2H  = 379
	bridgeIntactIcon  = 6
	templateWater     = 1
	templateWater2    = 2
	maxInfantryInCell = 5
)

// MapCell is one cell of the map.
type MapCell struct {
	TType uint16
	TIcon uint8
	Land  core.LandType

	Overlay     OverlayType
	OverlayData int
	Smudge      string
	SmudgeData  int

	Trigger *Trigger

	IsMapped   bool
	IsVisible  bool
	IsWaypoint bool

	Zone int

	// Objects lists the occupants in arrival order.
	Objects []core.Target
}

// Map is the 128x128 cell array and the playable rectangle inside it.
type Map struct {
	Cells [core.MapCellTotal]MapCell

	MapCellX      int
	MapCellY      int
	MapCellWidth  int
	MapCellHeight int

	Theater core.TheaterType
}

// NewMap returns a cleared map.
func NewMap() *Map {
	m := &Map{}
	m.Clear()
	return m
}

// Clear resets every cell and the playable rectangle.
func (m *Map) Clear() {
	for i := range m.Cells {
		m.Cells[i] = MapCell{TType: TemplateNone, Overlay: OverlayNone}
	}
	m.MapCellX, m.MapCellY = 1, 1
	m.MapCellWidth, m.MapCellHeight = core.MapCellW-2, core.MapCellH-2
	m.Theater = core.TheaterTemperate
}

// Cell returns the cell record, or nil for an off-array cell.
func (m *Map) Cell(c core.Cell) *MapCell {
	if !c.IsValid() {
		return nil
	}
	return &m.Cells[c]
}

// InRadar reports whether c lies inside the playable rectangle.
func (m *Map) InRadar(c core.Cell) bool {
	if !c.IsValid() {
		return false
	}
	x, y := c.X(), c.Y()
	return x >= m.MapCellX && x < m.MapCellX+m.MapCellWidth &&
		y >= m.MapCellY && y < m.MapCellY+m.MapCellHeight
}

// SetTemplate assigns terrain art to a cell and recalculates its land type.
func (m *Map) SetTemplate(c core.Cell, ttype uint16, icon uint8) {
	cell := m.Cell(c)
	if cell == nil {
		return
	}
	cell.TType = ttype
	cell.TIcon = icon
	cell.recalcLand()
}

func (cell *MapCell) recalcLand() {
	switch {
	case cell.Overlay.IsWall():
		cell.Land = core.LandWall
	case cell.Overlay.IsTiberium():
		cell.Land = core.LandTiberium
	case cell.TType == templateWater || cell.TType == templateWater2:
		cell.Land = core.LandWater
	default:
		cell.Land = core.LandClear
	}
}

// SetOverlay places an overlay and updates the land type.
func (m *Map) SetOverlay(c core.Cell, o OverlayType, data int) {
	cell := m.Cell(c)
	if cell == nil {
		return
	}
	cell.Overlay = o
	cell.OverlayData = data
	cell.recalcLand()
}

// IsBridge reports whether a template is one of the destructible bridge pieces.
func IsBridge(ttype uint16) bool {
	switch ttype {
	case templateBridge1, templateBridge1H, templateBridge2, templateBridge2H,
		templateBridge1A, templateBridge1B:
		return true
	}
	return false
}

// IntactBridgeCount counts bridge centre cells that are still standing.
func (m *Map) IntactBridgeCount() int {
	count := 0
	for i := range m.Cells {
		if IsBridge(m.Cells[i].TType) && m.Cells[i].TIcon == bridgeIntactIcon {
			count++
		}
	}
	return count
}

// Reveal maps and shows a cell.
func (m *Map) Reveal(c core.Cell) {
	if cell := m.Cell(c); cell != nil {
		cell.IsMapped = true
		cell.IsVisible = true
	}
}

// RevealRadius reveals every cell within radius cells of c.
func (m *Map) RevealRadius(c core.Cell, radius int) {
	for y := c.Y() - radius; y <= c.Y()+radius; y++ {
		for x := c.X() - radius; x <= c.X()+radius; x++ {
			if x < 0 || y < 0 || x >= core.MapCellW || y >= core.MapCellH {
				continue
			}
			cc := core.XYCell(x, y)
			if core.CellDistance(c, cc) <= radius {
				m.Reveal(cc)
			}
		}
	}
}

func (m *Map) addObject(c core.Cell, t core.Target) {
	if cell := m.Cell(c); cell != nil {
		cell.Objects = append(cell.Objects, t)
	}
}

func (m *Map) removeObject(c core.Cell, t core.Target) {
	cell := m.Cell(c)
	if cell == nil {
		return
	}
	for i, o := range cell.Objects {
		if o == t {
			cell.Objects = append(cell.Objects[:i], cell.Objects[i+1:]...)
			return
		}
	}
}

// Building returns the building occupying c, if any.
func (m *Map) Building(c core.Cell) core.Target {
	if cell := m.Cell(c); cell != nil {
		for _, o := range cell.Objects {
			if o.Kind == core.RTTIBuilding {
				return o
			}
		}
	}
	return core.TargetNone
}

// Techno returns the first non-terrain occupant of c.
func (m *Map) Techno(c core.Cell) core.Target {
	if cell := m.Cell(c); cell != nil {
		for _, o := range cell.Objects {
			if o.Kind != core.RTTITerrain {
				return o
			}
		}
	}
	return core.TargetNone
}

// CanEnter reports whether a foot object of the given kind and speed may stand in c.
func (m *Map) CanEnter(c core.Cell, kind FootKind, speed core.SpeedType) bool {
	cell := m.Cell(c)
	if cell == nil {
		return false
	}
	if kind == FootAircraft {
		return true
	}
	if !cell.Land.Passable(speed) {
		return false
	}
	infantry := 0
	for _, o := range cell.Objects {
		switch o.Kind {
		case core.RTTIAircraft:
		case core.RTTIInfantry:
			if kind != FootInfantry {
				return false
			}
			infantry++
		default:
			return false
		}
	}
	return infantry < maxInfantryInCell
}

// NearbyLocation returns the closest cell to c, scanning outward ring by ring, that an object
// of the given kind and speed can enter. It returns CellNone when the map is full.
func (m *Map) NearbyLocation(c core.Cell, kind FootKind, speed core.SpeedType) core.Cell {
	if m.InRadar(c) && m.CanEnter(c, kind, speed) {
		return c
	}
	limit := m.MapCellWidth
	if m.MapCellHeight > limit {
		limit = m.MapCellHeight
	}
	for r := 1; r <= limit; r++ {
		for y := c.Y() - r; y <= c.Y()+r; y++ {
			for x := c.X() - r; x <= c.X()+r; x++ {
				if y != c.Y()-r && y != c.Y()+r && x != c.X()-r && x != c.X()+r {
					continue
				}
				if x < 0 || y < 0 || x >= core.MapCellW || y >= core.MapCellH {
					continue
				}
				cc := core.XYCell(x, y)
				if m.InRadar(cc) && m.CanEnter(cc, kind, speed) {
					return cc
				}
			}
		}
	}
	return core.CellNone
}

// ZoneReset floods the map with zone numbers for tracked movement. Cells in one zone are
// mutually reachable; impassable cells get zone 0.
func (m *Map) ZoneReset() {
	for i := range m.Cells {
		m.Cells[i].Zone = 0
	}
	zone := 0
	var queue []core.Cell
	for i := range m.Cells {
		c := core.Cell(i)
		if m.Cells[i].Zone != 0 || !m.InRadar(c) || !m.Cells[i].Land.Passable(core.SpeedTrack) {
			continue
		}
		zone++
		m.Cells[i].Zone = zone
		queue = append(queue[:0], c)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for f := core.FacingN; f < core.FacingCount; f++ {
				n := core.Adjacent(cur, f)
				if !m.InRadar(n) {
					continue
				}
				nc := &m.Cells[n]
				if nc.Zone != 0 || !nc.Land.Passable(core.SpeedTrack) {
					continue
				}
				nc.Zone = zone
				queue = append(queue, n)
			}
		}
	}
}

// ClipMove steps dist cells from c toward facing, stopping at the playable edge.
func (m *Map) ClipMove(c core.Cell, facing core.FacingType, dist int) core.Cell {
	dx, dy := facing.Delta()
	x := m.clipX(c.X() + dx*dist)
	y := m.clipY(c.Y() + dy*dist)
	return core.XYCell(x, y)
}

// ClipScatter moves c by up to maxDist cells along each axis at random, clipped to the
// playable rectangle.
func (m *Map) ClipScatter(c core.Cell, maxDist int, rnd *random.Random) core.Cell {
	x, y := c.X(), c.Y()

	xdist := rnd.Range(0, maxDist)
	if rnd.Percent(50) {
		x = m.clipX(x + xdist)
	} else {
		x = m.clipX(x - xdist)
	}

	ydist := rnd.Range(0, maxDist)
	if rnd.Percent(50) {
		y = m.clipY(y + ydist)
	} else {
		y = m.clipY(y - ydist)
	}
	return core.XYCell(x, y)
}

func (m *Map) clipX(x int) int {
	if x < m.MapCellX {
		return m.MapCellX
	}
	if x > m.MapCellX+m.MapCellWidth-1 {
		return m.MapCellX + m.MapCellWidth - 1
	}
	return x
}

func (m *Map) clipY(y int) int {
	if y < m.MapCellY {
		return m.MapCellY
	}
	if y > m.MapCellY+m.MapCellHeight-1 {
		return m.MapCellY + m.MapCellHeight - 1
	}
	return y
}

// RandomCell picks a cell inside the playable rectangle.
func (m *Map) RandomCell(rnd *random.Random) core.Cell {
	x := rnd.Range(m.MapCellX, m.MapCellX+m.MapCellWidth-1)
	y := rnd.Range(m.MapCellY, m.MapCellY+m.MapCellHeight-1)
	return core.XYCell(x, y)
}

package core

// Map dimensions in cells. A cell number is y*MapCellW + x.
const (
	MapCellW     = 128
	MapCellH     = 128
	MapCellTotal = MapCellW * MapCellH

	// CellLeptons is the number of coordinate units along one cell edge.
	CellLeptons = 256
)

// Cell is a map cell number.
type Cell int

// CellNone marks an unset cell (waypoints, origins).
const CellNone Cell = -1

// XYCell builds a cell number from cell coordinates.
func XYCell(x, y int) Cell {
	return Cell(y*MapCellW + x)
}

// X returns the cell column.
func (c Cell) X() int { return int(c) % MapCellW }

// Y returns the cell row.
func (c Cell) Y() int { return int(c) / MapCellW }

// IsValid reports whether c lies inside the 128x128 cell array.
func (c Cell) IsValid() bool {
	return c >= 0 && c < MapCellTotal
}

// Coord is a lepton position. Cell centres sit at 128 leptons into the cell.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CellCoord returns the centre coordinate of c.
func CellCoord(c Cell) Coord {
	return Coord{X: c.X()*CellLeptons + CellLeptons/2, Y: c.Y()*CellLeptons + CellLeptons/2}
}

// Cell returns the cell containing the coordinate.
func (c Coord) Cell() Cell {
	return XYCell(c.X/CellLeptons, c.Y/CellLeptons)
}

// Distance is the engine's octagonal distance approximation between two coordinates.
func Distance(a, b Coord) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx + dy/2
	}
	return dy + dx/2
}

// CellDistance is Distance measured in whole cells between two cell numbers.
func CellDistance(a, b Cell) int {
	dx := abs(a.X() - b.X())
	dy := abs(a.Y() - b.Y())
	if dx > dy {
		return dx + dy/2
	}
	return dy + dx/2
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// FacingType is one of the eight compass directions, clockwise from north.
type FacingType int

const (
	FacingN FacingType = iota
	FacingNE
	FacingE
	FacingSE
	FacingS
	FacingSW
	FacingW
	FacingNW

	FacingCount
)

var facingDelta = [FacingCount][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// Delta returns the x/y step of one cell in direction f.
func (f FacingType) Delta() (int, int) {
	d := facingDelta[f&7]
	return d[0], d[1]
}

// Next returns the facing one step clockwise.
func (f FacingType) Next() FacingType {
	return (f + 1) & 7
}

// Adjacent returns the neighbouring cell of c in direction f without clipping.
func Adjacent(c Cell, f FacingType) Cell {
	dx, dy := f.Delta()
	return XYCell(c.X()+dx, c.Y()+dy)
}

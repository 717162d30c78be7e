// Package geo renders map cells as simple-features geometry. Cells are stored as WKT with the
// cell column as X and the cell row as Y, so the sqlite and postgres backends share one format.
package geo

import (
	"errors"
	"fmt"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/rasim/simcore/internal/model/core"
)

// ErrTooFewCells is returned when a path has fewer than two valid cells.
var ErrTooFewCells = errors.New("path needs at least two cells")

// CellPoint returns the point of cell c.
func CellPoint(c core.Cell) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: float64(c.X()), Y: float64(c.Y())},
		Type: geom.DimXY,
	})
}

// CellPath joins the valid cells of path into a line string. Invalid cells are skipped.
func CellPath(path []core.Cell) (geom.LineString, error) {
	flat := make([]float64, 0, len(path)*2)
	for _, c := range path {
		if !c.IsValid() {
			continue
		}
		flat = append(flat, float64(c.X()), float64(c.Y()))
	}
	if len(flat) < 4 {
		return geom.LineString{}, ErrTooFewCells
	}
	return geom.NewLineString(geom.NewSequence(flat, geom.DimXY)), nil
}

// CellPathWKT is CellPath rendered as WKT, or "" when the path is too short to draw.
func CellPathWKT(path []core.Cell) string {
	ls, err := CellPath(path)
	if err != nil {
		return ""
	}
	return ls.AsText()
}

// CellSetWKT renders the valid cells as a WKT MULTIPOINT, or "" when there are none.
func CellSetWKT(cells []core.Cell) string {
	points := make([]geom.Point, 0, len(cells))
	for _, c := range cells {
		if c.IsValid() {
			points = append(points, CellPoint(c))
		}
	}
	if len(points) == 0 {
		return ""
	}
	return geom.NewMultiPoint(points).AsText()
}

// ParseCells reads a LINESTRING, MULTIPOINT or POINT written by this package back into cells.
func ParseCells(wkt string) ([]core.Cell, error) {
	if wkt == "" {
		return nil, nil
	}
	g, err := geom.UnmarshalWKT(wkt)
	if err != nil {
		return nil, fmt.Errorf("parsing cell geometry: %w", err)
	}

	var xys []geom.XY
	switch g.Type() {
	case geom.TypeLineString:
		ls, _ := g.AsLineString()
		seq := ls.Coordinates()
		for i := 0; i < seq.Length(); i++ {
			xys = append(xys, seq.GetXY(i))
		}
	case geom.TypeMultiPoint:
		mp, _ := g.AsMultiPoint()
		for i := 0; i < mp.NumPoints(); i++ {
			if xy, ok := mp.PointN(i).XY(); ok {
				xys = append(xys, xy)
			}
		}
	case geom.TypePoint:
		pt, _ := g.AsPoint()
		if xy, ok := pt.XY(); ok {
			xys = append(xys, xy)
		}
	default:
		return nil, fmt.Errorf("unsupported cell geometry %s", g.Type())
	}

	cells := make([]core.Cell, 0, len(xys))
	for _, xy := range xys {
		x, y := int(math.Round(xy.X)), int(math.Round(xy.Y))
		if x < 0 || y < 0 || x >= core.MapCellW || y >= core.MapCellH {
			return nil, fmt.Errorf("cell %d,%d is off the map", x, y)
		}
		cells = append(cells, core.XYCell(x, y))
	}
	return cells, nil
}

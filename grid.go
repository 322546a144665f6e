/*
Copyright © 2024 the WheatN authors.
This file is part of WheatN.

WheatN is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

WheatN is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with WheatN.  If not, see <http://www.gnu.org/licenses/>.
*/

package wheatn

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// Grid is a regular two-dimensional raster of floating-point values on a
// fixed geographic coordinate grid. Missing cells hold NaN.
//
// X0 is the western edge of the grid and Y0 is the northern edge; row 0
// is the northernmost row. Dx and Dy are positive cell edge lengths in the
// units of the spatial reference SR (typically degrees).
type Grid struct {
	Name  string
	Units string

	Nx, Ny int
	X0, Y0 float64
	Dx, Dy float64

	// SR is the spatial reference of the grid in WKT or Proj4 format.
	// It may be empty.
	SR string

	// Data has shape (Ny, Nx).
	Data *sparse.DenseArray
}

// NewGrid returns a grid with every cell missing.
func NewGrid(name, units string, nx, ny int, x0, y0, dx, dy float64, sr string) *Grid {
	g := &Grid{
		Name:  name,
		Units: units,
		Nx:    nx,
		Ny:    ny,
		X0:    x0,
		Y0:    y0,
		Dx:    dx,
		Dy:    dy,
		SR:    sr,
		Data:  sparse.ZerosDense(ny, nx),
	}
	for i := range g.Data.Elements {
		g.Data.Elements[i] = math.NaN()
	}
	return g
}

// Get returns the value at the given row and column.
func (g *Grid) Get(row, col int) float64 { return g.Data.Get(row, col) }

// Set sets the value at the given row and column. Zero is a valid value,
// so the element is written directly rather than through DenseArray.Set,
// which skips zeros.
func (g *Grid) Set(v float64, row, col int) {
	g.Data.Elements[g.Data.Index1d(row, col)] = v
}

// Valid returns whether the cell at the given row and column is not missing.
func (g *Grid) Valid(row, col int) bool { return !math.IsNaN(g.Data.Get(row, col)) }

// CellCenter returns the center point of the given cell.
func (g *Grid) CellCenter(row, col int) geom.Point {
	return geom.Point{
		X: g.X0 + (float64(col)+0.5)*g.Dx,
		Y: g.Y0 - (float64(row)+0.5)*g.Dy,
	}
}

// CellPolygon returns the outline of the given cell.
func (g *Grid) CellPolygon(row, col int) geom.Polygon {
	w := g.X0 + float64(col)*g.Dx
	n := g.Y0 - float64(row)*g.Dy
	e, s := w+g.Dx, n-g.Dy
	return geom.Polygon{{
		{X: w, Y: s}, {X: e, Y: s}, {X: e, Y: n}, {X: w, Y: n}, {X: w, Y: s},
	}}
}

// Bounds returns the extent of the grid.
func (g *Grid) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: g.X0, Y: g.Y0 - float64(g.Ny)*g.Dy},
		Max: geom.Point{X: g.X0 + float64(g.Nx)*g.Dx, Y: g.Y0},
	}
}

// geometryTolerance is the relative tolerance used when comparing
// the geometry of two grids.
const geometryTolerance = 1.e-9

func similar(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= geometryTolerance*math.Max(math.Abs(a), math.Abs(b))
}

// SameGeometry returns an error if g and o do not share the same extent,
// resolution, and cell count.
func (g *Grid) SameGeometry(o *Grid) error {
	if g.Nx != o.Nx || g.Ny != o.Ny {
		return fmt.Errorf("wheatn: grid %s is %dx%d but grid %s is %dx%d",
			g.Name, g.Nx, g.Ny, o.Name, o.Nx, o.Ny)
	}
	if !similar(g.X0, o.X0) || !similar(g.Y0, o.Y0) {
		return fmt.Errorf("wheatn: grid %s has origin (%g, %g) but grid %s has origin (%g, %g)",
			g.Name, g.X0, g.Y0, o.Name, o.X0, o.Y0)
	}
	if !similar(g.Dx, o.Dx) || !similar(g.Dy, o.Dy) {
		return fmt.Errorf("wheatn: grid %s has resolution (%g, %g) but grid %s has resolution (%g, %g)",
			g.Name, g.Dx, g.Dy, o.Name, o.Dx, o.Dy)
	}
	return nil
}

// Copy returns a copy of g with a new name and units.
func (g *Grid) Copy(name, units string) *Grid {
	o := *g
	o.Name, o.Units = name, units
	o.Data = g.Data.Copy()
	return &o
}

// Sum returns the sum of all non-missing cells.
func (g *Grid) Sum() float64 {
	var s float64
	for _, v := range g.Data.Elements {
		if !math.IsNaN(v) {
			s += v
		}
	}
	return s
}

// ValidCount returns the number of non-missing cells.
func (g *Grid) ValidCount() int {
	var n int
	for _, v := range g.Data.Elements {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// String summarizes the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("%s [%s] %dx%d at (%g, %g) res (%g, %g)",
		g.Name, g.Units, g.Nx, g.Ny, g.X0, g.Y0, g.Dx, g.Dy)
}

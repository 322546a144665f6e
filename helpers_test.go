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
	"math"
	"testing"

	"github.com/ctessum/geom"
)

// testGrid returns a grid with one-degree cells whose northwest corner is
// at (0, len(vals)). vals is indexed by row, then column, with row 0 in
// the north.
func testGrid(name, units string, vals [][]float64) *Grid {
	ny, nx := len(vals), len(vals[0])
	g := NewGrid(name, units, nx, ny, 0, float64(ny), 1, 1, "")
	for j, row := range vals {
		for i, v := range row {
			g.Set(v, j, i)
		}
	}
	return g
}

// rect returns an axis-aligned rectangle.
func rect(w, s, e, n float64) geom.Polygon {
	return geom.Polygon{{
		{X: w, Y: s}, {X: e, Y: s}, {X: e, Y: n}, {X: w, Y: n}, {X: w, Y: s},
	}}
}

func different(a, b, tolerance float64) bool {
	if a == b {
		return false
	}
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func checkGrid(t *testing.T, g *Grid, want [][]float64) {
	t.Helper()
	const tol = 1.e-10
	for j, row := range want {
		for i, w := range row {
			v := g.Get(j, i)
			if math.IsNaN(w) {
				if !math.IsNaN(v) {
					t.Errorf("%s[%d,%d]: have %g, want missing", g.Name, j, i, v)
				}
				continue
			}
			if different(v, w, tol) {
				t.Errorf("%s[%d,%d]: have %g, want %g", g.Name, j, i, v, w)
			}
		}
	}
}

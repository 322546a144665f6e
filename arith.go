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
)

// Apply evaluates f element-wise over the given co-registered grids and
// returns the result as a new grid with the geometry of the first input.
// A cell is missing in the output if it is missing in any input, or if
// f returns NaN or ±Inf.
func Apply(name, units string, f func(v []float64) float64, grids ...*Grid) (*Grid, error) {
	if len(grids) == 0 {
		return nil, fmt.Errorf("wheatn: Apply %s: no input grids", name)
	}
	for _, g := range grids[1:] {
		if err := grids[0].SameGeometry(g); err != nil {
			return nil, fmt.Errorf("wheatn: Apply %s: %v", name, err)
		}
	}
	out := NewGrid(name, units, grids[0].Nx, grids[0].Ny,
		grids[0].X0, grids[0].Y0, grids[0].Dx, grids[0].Dy, grids[0].SR)
	v := make([]float64, len(grids))
cells:
	for i := range out.Data.Elements {
		for j, g := range grids {
			v[j] = g.Data.Elements[i]
			if math.IsNaN(v[j]) {
				continue cells
			}
		}
		r := f(v)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		out.Data.Elements[i] = r
	}
	return out, nil
}

// Scale multiplies every cell in g by factor.
func Scale(g *Grid, factor float64, name, units string) (*Grid, error) {
	return Apply(name, units, func(v []float64) float64 { return v[0] * factor }, g)
}

// Multiply returns the element-wise product of a and b.
func Multiply(name, units string, a, b *Grid) (*Grid, error) {
	return Apply(name, units, func(v []float64) float64 { return v[0] * v[1] }, a, b)
}

// LogPolicy specifies how cells that are outside of the domain of the
// logarithm (values <= 0) are handled by Log10.
type LogPolicy interface {
	log10(v float64) float64
}

// LogMissing is a LogPolicy where non-positive cells become missing.
type LogMissing struct{}

func (LogMissing) log10(v float64) float64 {
	if v <= 0 {
		return math.NaN()
	}
	return math.Log10(v)
}

// LogFloor is a LogPolicy where cells at or below Floor are clamped to
// Floor before the transform. Floor must be > 0.
type LogFloor struct {
	Floor float64
}

func (l LogFloor) log10(v float64) float64 {
	if v <= l.Floor {
		return math.Log10(l.Floor)
	}
	return math.Log10(v)
}

// Log10 returns the base-10 logarithm of g, which is intended for
// display only. Non-positive cells are handled according to policy.
func Log10(g *Grid, policy LogPolicy, name string) (*Grid, error) {
	if policy == nil {
		policy = LogMissing{}
	}
	if f, ok := policy.(LogFloor); ok && !(f.Floor > 0) {
		return nil, fmt.Errorf("wheatn: Log10 %s: floor must be > 0 but is %g", name, f.Floor)
	}
	return Apply(name, "log10("+g.Units+")", func(v []float64) float64 {
		return policy.log10(v[0])
	}, g)
}

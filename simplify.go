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

	"github.com/ctessum/geom"
)

// SimplifyResult holds the outcome of simplifying one region.
type SimplifyResult struct {
	// Region is the simplified region, or the original region if
	// simplification failed.
	*Region

	// Simplified is false if the original geometry was kept.
	Simplified bool

	// Err is the reason the original geometry was kept, if any.
	Err error
}

// Simplify simplifies the geometry of each region using the given
// tolerance, in the units of the region coordinates. Each region is
// simplified independently: if simplification of a region fails or
// produces a degenerate shape, the original geometry of that region is
// kept and the failure is recorded in the result. The output has the
// same length and order as the input.
//
// If tolerance is <= 0, the regions are returned unchanged.
//
// Input polygons must not self-intersect; the underlying algorithm may
// not terminate otherwise.
func Simplify(regions Regions, tolerance float64) []SimplifyResult {
	o := make([]SimplifyResult, len(regions))
	for i, r := range regions {
		if tolerance <= 0 {
			o[i] = SimplifyResult{Region: r}
			continue
		}
		g, err := simplifyOne(r.Polygonal, tolerance)
		if err != nil {
			o[i] = SimplifyResult{Region: r, Err: fmt.Errorf("wheatn: simplifying %s: %v", r.Name, err)}
			continue
		}
		o[i] = SimplifyResult{Region: &Region{Polygonal: g, Name: r.Name}, Simplified: true}
	}
	return o
}

// SimplifiedRegions returns the regions in results.
func SimplifiedRegions(results []SimplifyResult) Regions {
	o := make(Regions, len(results))
	for i, r := range results {
		o[i] = r.Region
	}
	return o
}

func simplifyOne(p geom.Polygonal, tolerance float64) (g geom.Polygonal, err error) {
	defer func() {
		if r := recover(); r != nil {
			g, err = nil, fmt.Errorf("%v", r)
		}
	}()
	s := p.Simplify(tolerance)
	var ok bool
	g, ok = s.(geom.Polygonal)
	if !ok {
		return nil, fmt.Errorf("simplified geometry has type %T", s)
	}
	if err := checkPolygonal(g); err != nil {
		return nil, err
	}
	return g, nil
}

// checkPolygonal returns an error if g has no area or an outer ring
// with fewer than four points.
func checkPolygonal(g geom.Polygonal) error {
	polys := g.Polygons()
	if len(polys) == 0 {
		return fmt.Errorf("geometry is empty")
	}
	for i, p := range polys {
		if len(p) == 0 || len(p[0]) < 4 {
			return fmt.Errorf("polygon %d has a degenerate outer ring", i)
		}
	}
	if !(g.Area() > 0) {
		return fmt.Errorf("geometry has no area")
	}
	return nil
}

// FallbackCount returns the number of regions whose original geometry was
// kept because simplification failed.
func FallbackCount(results []SimplifyResult) int {
	var n int
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

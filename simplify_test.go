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
	"testing"

	"github.com/ctessum/geom"
)

// brokenPolygon fails whenever it is simplified.
type brokenPolygon struct {
	geom.Polygon
}

func (brokenPolygon) Simplify(float64) geom.Geom { panic("invalid geometry") }

// detailedSquare returns a unit square with extra points along each edge.
func detailedSquare(x, y float64) geom.Polygon {
	return geom.Polygon{{
		{X: x, Y: y}, {X: x + 0.5, Y: y}, {X: x + 1, Y: y},
		{X: x + 1, Y: y + 0.5}, {X: x + 1, Y: y + 1},
		{X: x + 0.5, Y: y + 1}, {X: x, Y: y + 1},
		{X: x, Y: y + 0.5}, {X: x, Y: y},
	}}
}

func TestSimplify(t *testing.T) {
	regions := Regions{
		{Polygonal: detailedSquare(0, 0), Name: "Good"},
		{Polygonal: brokenPolygon{rect(2, 2, 3, 3)}, Name: "Broken"},
		{Polygonal: geom.Polygon{}, Name: "Empty"},
		{Polygonal: geom.MultiPolygon{detailedSquare(5, 5), detailedSquare(7, 7)}, Name: "Multi"},
	}
	results := Simplify(regions, 0.01)
	if len(results) != len(regions) {
		t.Fatalf("have %d results, want %d", len(results), len(regions))
	}
	want := []bool{true, false, false, true}
	for i, r := range results {
		if r.Name != regions[i].Name {
			t.Errorf("result %d is %s, want %s", i, r.Name, regions[i].Name)
		}
		if r.Simplified != want[i] {
			t.Errorf("%s: simplified = %v, want %v (error %v)", r.Name, r.Simplified, want[i], r.Err)
		}
		if r.Simplified && r.Err != nil {
			t.Errorf("%s: simplified with error %v", r.Name, r.Err)
		}
		if !r.Simplified {
			if r.Err == nil {
				t.Errorf("%s: fallback without an error", r.Name)
			}
			if r.Region != regions[i] {
				t.Errorf("%s: fallback should keep the original region", r.Name)
			}
		}
	}
	if n := FallbackCount(results); n != 2 {
		t.Errorf("fallback count: have %d, want 2", n)
	}
	if a := results[0].Area(); different(a, 1, 1.e-10) {
		t.Errorf("simplified area: %g", a)
	}
	if n := len(results[0].Polygons()[0][0]); n >= 9 {
		t.Errorf("simplified ring has %d points", n)
	}
	if len(SimplifiedRegions(results)) != len(regions) {
		t.Error("SimplifiedRegions changed the number of regions")
	}
}

func TestSimplifyNoTolerance(t *testing.T) {
	regions := subNational()
	for _, tol := range []float64{0, -1} {
		results := Simplify(regions, tol)
		for i, r := range results {
			if r.Simplified || r.Err != nil || r.Region != regions[i] {
				t.Errorf("tolerance %g: region %d was modified", tol, i)
			}
		}
	}
}

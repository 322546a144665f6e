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

	"github.com/kr/pretty"
)

func TestCountryTable(t *testing.T) {
	tbl := CountryTable{
		{Country: "France", Value: 1},
		{Country: "China", Value: 3},
		{Country: "France", Value: 2},
		{Country: "India", Value: 3},
	}
	g := tbl.GroupSum()
	want := CountryTable{
		{Country: "France", Value: 3},
		{Country: "China", Value: 3},
		{Country: "India", Value: 3},
	}
	if diff := pretty.Diff(g, want); len(diff) > 0 {
		t.Errorf("GroupSum: %v", diff)
	}
	sorted := CountryTable{
		{Country: "China", Value: 3},
		{Country: "France", Value: 3},
		{Country: "India", Value: 3},
	}
	if diff := pretty.Diff(g.Sorted(), sorted); len(diff) > 0 {
		t.Errorf("Sorted: %v", diff)
	}
	if g[0].Country != "France" {
		t.Error("Sorted modified its receiver")
	}
	if v, ok := g.Lookup("China"); !ok || v != 3 {
		t.Errorf("Lookup: %g, %v", v, ok)
	}
	if _, ok := g.Lookup("Chile"); ok {
		t.Error("found a country that is not in the table")
	}
	if tot := tbl.Total(); tot != 9 {
		t.Errorf("Total: %g", tot)
	}
}

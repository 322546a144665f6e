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
	"path/filepath"
	"testing"
)

func TestNetCDFRoundTrip(t *testing.T) {
	g := testGrid("Yield", "t/ha", [][]float64{
		{1.5, nan, 3},
		{0, 4.25, -2},
	})
	g.SR = "+proj=longlat"
	f := filepath.Join(t.TempDir(), "yield.nc")
	if err := WriteNetCDF(f, g); err != nil {
		t.Fatal(err)
	}

	g2, err := ReadNetCDF(f, "Yield")
	if err != nil {
		t.Fatal(err)
	}
	if err := g.SameGeometry(g2); err != nil {
		t.Error(err)
	}
	if g2.Units != "t/ha" || g2.SR != g.SR || g2.Name != "Yield" {
		t.Errorf("metadata: %s", g2)
	}
	checkGrid(t, g2, [][]float64{
		{1.5, nan, 3},
		{0, 4.25, -2},
	})

	// A single-variable file can be read under any name.
	g3, err := ReadNetCDF(f, "HarvestedArea")
	if err != nil {
		t.Fatal(err)
	}
	if g3.Name != "HarvestedArea" || g3.Sum() != g.Sum() {
		t.Errorf("renamed read: %s", g3)
	}

	if _, err := ReadNetCDF(filepath.Join(t.TempDir(), "missing.nc"), "Yield"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

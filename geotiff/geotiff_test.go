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

package geotiff

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/spatialmodel/wheatn"
)

const wgs84 = `GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433]]`

func TestRoundTrip(t *testing.T) {
	g := wheatn.NewGrid("Yield", "t/ha", 3, 2, -180, 90, 0.5, 0.25, wgs84)
	vals := [][]float64{
		{1.5, math.NaN(), 3},
		{0, 4.25, -2},
	}
	for j, row := range vals {
		for i, v := range row {
			g.Set(v, j, i)
		}
	}
	f := filepath.Join(t.TempDir(), "yield.tif")
	if err := Write(f, g); err != nil {
		t.Fatal(err)
	}

	g2, err := Read(f, "Yield")
	if err != nil {
		t.Fatal(err)
	}
	if err := g.SameGeometry(g2); err != nil {
		t.Error(err)
	}
	if g2.SR == "" {
		t.Error("projection was not preserved")
	}
	for j, row := range vals {
		for i, want := range row {
			have := g2.Get(j, i)
			if math.IsNaN(want) {
				if !math.IsNaN(have) {
					t.Errorf("[%d,%d]: have %g, want missing", j, i, have)
				}
				continue
			}
			if have != want {
				t.Errorf("[%d,%d]: have %g, want %g", j, i, have, want)
			}
		}
	}
}

func TestReadMissing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "missing.tif"), "Yield"); err == nil {
		t.Error("expected an error")
	}
}

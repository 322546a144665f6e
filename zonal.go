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
	"github.com/ctessum/geom/index/rtree"
)

// indexedRegion is a region with its position in the input.
type indexedRegion struct {
	*Region
	i int
}

// ZonalSum returns the sum of the non-missing cells of g whose centers
// fall within each region. Each cell is credited to at most one region:
// if a cell center lies within more than one region, for example on a
// shared border, it is credited to the region that comes first in
// regions. The output has the same length and order as regions.
func ZonalSum(g *Grid, regions Regions) ([]float64, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("wheatn: zonal sum of %s: no regions", g.Name)
	}
	index := rtree.NewTree(25, 50)
	for i, r := range regions {
		if r.Polygonal == nil {
			return nil, fmt.Errorf("wheatn: zonal sum of %s: region %d (%s) has no geometry", g.Name, i, r.Name)
		}
		index.Insert(&indexedRegion{Region: r, i: i})
	}

	o := make([]float64, len(regions))
	for row := 0; row < g.Ny; row++ {
		for col := 0; col < g.Nx; col++ {
			v := g.Get(row, col)
			if math.IsNaN(v) || v == 0 {
				continue
			}
			c := g.CellCenter(row, col)
			best := -1
			for _, sI := range index.SearchIntersect(c.Bounds()) {
				r := sI.(*indexedRegion)
				if best >= 0 && r.i > best {
					continue
				}
				if c.Within(r.Polygonal) != geom.Outside {
					best = r.i
				}
			}
			if best >= 0 {
				o[best] += v
			}
		}
	}
	return o, nil
}

// ZonalTable calculates the zonal sums of g over regions and returns
// them as a table with one row per distinct region name, summing
// regions that share a name.
func ZonalTable(g *Grid, regions Regions) (CountryTable, error) {
	sums, err := ZonalSum(g, regions)
	if err != nil {
		return nil, err
	}
	t := make(CountryTable, len(regions))
	for i, r := range regions {
		t[i] = CountryValue{Country: r.Name, Value: sums[i]}
	}
	return t.GroupSum(), nil
}

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
	"os"
	"strings"
	"unicode"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
)

// DefaultNameField is the attribute in the GAUL boundary files that
// holds the country name.
const DefaultNameField = "ADM0_NAME"

// Region is a named administrative boundary.
type Region struct {
	geom.Polygonal
	Name string
}

// Regions is a set of administrative boundaries.
type Regions []*Region

// Names returns the names of the regions in order.
func (r Regions) Names() []string {
	o := make([]string, len(r))
	for i, rr := range r {
		o[i] = rr.Name
	}
	return o
}

// Index returns the index of the first region with the given name,
// or -1 if there is no such region.
func (r Regions) Index(name string) int {
	for i, rr := range r {
		if rr.Name == name {
			return i
		}
	}
	return -1
}

// Bounds returns the combined extent of the regions.
func (r Regions) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	for _, rr := range r {
		b.Extend(rr.Bounds())
	}
	return b
}

// cleanAttribute removes the padding that shapefile attributes can carry.
func cleanAttribute(s string) string {
	return strings.TrimFunc(s, func(r rune) bool { return r == 0 || unicode.IsSpace(r) })
}

// ReadRegions reads the polygons in shapefile file, labeling each one
// with the value of the attribute nameField. If dst is not nil and the
// shapefile has a .prj file, the polygons are transformed to dst.
func ReadRegions(file, nameField string, dst *proj.SR) (Regions, error) {
	d, err := shp.NewDecoder(file)
	if err != nil {
		return nil, fmt.Errorf("wheatn: opening boundary shapefile %s: %v", file, err)
	}
	defer d.Close()

	var ct proj.Transformer
	if dst != nil {
		prj := strings.TrimSuffix(file, ".shp") + ".prj"
		if _, err := os.Stat(prj); err == nil {
			src, err := d.SR()
			if err != nil {
				return nil, fmt.Errorf("wheatn: reading projection of %s: %v", file, err)
			}
			ct, err = src.NewTransform(dst)
			if err != nil {
				return nil, fmt.Errorf("wheatn: creating transform for %s: %v", file, err)
			}
		}
	}

	var o Regions
	for row := 0; ; row++ {
		g, fields, more := d.DecodeRowFields(nameField)
		if !more {
			break
		}
		if err := d.Error(); err != nil {
			return nil, fmt.Errorf("wheatn: reading row %d of boundary shapefile %s: %v", row, file, err)
		}
		if ct != nil {
			g, err = g.Transform(ct)
			if err != nil {
				return nil, fmt.Errorf("wheatn: transforming row %d of %s: %v", row, file, err)
			}
		}
		p, ok := g.(geom.Polygonal)
		if !ok {
			return nil, fmt.Errorf("wheatn: row %d of %s has geometry type %T, but it should be a polygon", row, file, g)
		}
		o = append(o, &Region{Polygonal: p, Name: cleanAttribute(fields[nameField])})
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("wheatn: reading boundary shapefile %s: %v", file, err)
	}
	if len(o) == 0 {
		return nil, fmt.Errorf("wheatn: boundary shapefile %s contains no shapes", file)
	}
	return o, nil
}

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
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
)

// Names of the tabular and vector output files.
const (
	ProductionFile  = "production_by_country.csv"
	CorrelationFile = "correlation.csv"
	NationalFile    = "national_boundaries.shp"
)

// NitrogenFile returns the name of the nitrogen balance table for the
// top n countries.
func NitrogenFile(n int) string { return fmt.Sprintf("nitrogen_top%d.csv", n) }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// WriteProductionCSV writes production by country in Mt, largest first.
func WriteProductionCSV(w io.Writer, t CountryTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"country", "production_mt"}); err != nil {
		return err
	}
	for _, r := range t.Sorted() {
		if err := cw.Write([]string{r.Country, formatFloat(r.Value)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteNitrogenCSV writes the nitrogen balance of each record in order.
func WriteNitrogenCSV(w io.Writer, records []NitrogenRecord) error {
	cw := csv.NewWriter(w)
	err := cw.Write([]string{"country", "production_mt", "nue", "n_output_mt", "n_input_mt", "n_loss_mt"})
	if err != nil {
		return err
	}
	for _, r := range records {
		err = cw.Write([]string{r.Country, formatFloat(r.Production), formatFloat(r.NUE),
			formatFloat(r.Output), formatFloat(r.Input), formatFloat(r.Loss)})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCorrelationCSV writes the correlation statistics as
// statistic/value pairs.
func WriteCorrelationCSV(w io.Writer, c Correlation) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"statistic", "value"},
		{"n", strconv.Itoa(c.N)},
		{"pearson_r", formatFloat(c.R)},
		{"slope", formatFloat(c.Slope)},
		{"intercept", formatFloat(c.Intercept)},
		{"r_squared", formatFloat(c.R2)},
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// singlePolygon returns the rings of every polygon in g as one polygon,
// which is how shapefiles store multi-part shapes.
func singlePolygon(g geom.Polygonal) geom.Polygon {
	if p, ok := g.(geom.Polygon); ok {
		return p
	}
	var o geom.Polygon
	for _, p := range g.Polygons() {
		o = append(o, p...)
	}
	return o
}

// WriteBoundaryShapefile writes the simplified national boundaries to
// a shapefile with a "name" field and a "simplified" field, which is 1
// if the geometry was simplified and 0 if the original was kept.
func WriteBoundaryShapefile(file string, results []SimplifyResult) error {
	e, err := shp.NewEncoderFromFields(file, goshp.POLYGON,
		goshp.StringField("name", 80), goshp.NumberField("simplified", 1))
	if err != nil {
		return fmt.Errorf("wheatn: creating shapefile %s: %v", file, err)
	}
	defer e.Close()
	for _, r := range results {
		s := 0
		if r.Simplified {
			s = 1
		}
		if err := e.EncodeFields(singlePolygon(r.Polygonal), r.Name, s); err != nil {
			return fmt.Errorf("wheatn: writing %s to shapefile %s: %v", r.Name, file, err)
		}
	}
	return nil
}

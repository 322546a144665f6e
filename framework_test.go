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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

type testBoundary struct {
	geom.Polygon
	Country string
}

// writeTestBoundaries writes a shapefile where "United States of
// America" covers the western column of a 2×2 one-degree grid in two
// pieces and "France" covers the eastern column.
func writeTestBoundaries(t *testing.T, dir string) string {
	t.Helper()
	file := filepath.Join(dir, "gaul.shp")
	e, err := shp.NewEncoder(file, testBoundary{})
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range []testBoundary{
		{Polygon: rect(0, 1, 1, 2), Country: "United States of America"},
		{Polygon: rect(1, 0, 2, 2), Country: "France"},
		{Polygon: rect(0, 0, 1, 1), Country: "United States of America"},
	} {
		if err := e.Encode(b); err != nil {
			t.Fatal(err)
		}
	}
	e.Close()
	return file
}

// memoryGrids returns a GridReader that serves grids from memory, keyed
// by file name.
func memoryGrids(grids map[string]*Grid) GridReader {
	return func(file, name string) (*Grid, error) {
		g, ok := grids[file]
		if !ok {
			return nil, fmt.Errorf("no such file")
		}
		return g.Copy(name, g.Units), nil
	}
}

type memoryArchive struct {
	hash       string
	production CountryTable
	nitrogen   []NitrogenRecord
}

func (m *memoryArchive) Save(hash string, production CountryTable, nitrogen []NitrogenRecord) (int64, error) {
	m.hash, m.production, m.nitrogen = hash, production, nitrogen
	return 1, nil
}

func TestAnalysis(t *testing.T) {
	dir := t.TempDir()
	boundaryFile := writeTestBoundaries(t, dir)
	nueFile := filepath.Join(dir, "nue.csv")
	if err := os.WriteFile(nueFile, []byte("Country,NUE\nUSA,0.5\nFrance,0.8\nAtlantis,0.3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	read := memoryGrids(map[string]*Grid{
		"yield.tif": testGrid("", "t/ha", [][]float64{{2, 4}, {0, 6}}),
		"area.tif":  testGrid("", "ha", [][]float64{{1, 1}, {1, 1}}),
	})
	d, err := NewDeriver(DefaultDerivedVariables, DefaultDerivedUnits,
		map[string]float64{NitrogenContentConst: DefaultNitrogenContent}, nil)
	if err != nil {
		t.Fatal(err)
	}

	logger, hook := logtest.NewNullLogger()
	ar := new(memoryArchive)
	a := &Analysis{
		Log: logger,
		InitFuncs: []Stage{
			ReadGrids(read, map[string]string{YieldVar: "yield.tif", HarvestedAreaVar: "area.tif"}),
			ReadBoundaries(boundaryFile, "Country"),
			ReadNUETable(nueFile, DefaultNUEColumns),
		},
		RunFuncs: []Stage{
			DissolveBoundaries(DissolveCollect),
			SimplifyBoundaries(0.1),
			DeriveGrids(d),
			ZonalProduction(ProductionVar),
			JoinNUE(DefaultAliases()),
			ComputeNitrogen(DefaultNitrogenContent),
			SelectTop(1),
			CorrelateLoss(),
		},
		CleanupFuncs: []Stage{
			WriteGrids(WriteNetCDF, dir, ".nc", ProductionVar),
			WriteTables(dir, 1),
			WriteNationalShapefile(dir),
			RenderLogMap(dir, ProductionVar, LogMissing{}),
			RenderBarChart(dir),
			Archive(ar, "abc"),
		},
	}
	if err := a.Init(); err != nil {
		t.Fatal(err)
	}
	if err := a.Run(); err != nil {
		t.Fatal(err)
	}
	if err := a.Cleanup(); err != nil {
		t.Fatal(err)
	}

	checkGrid(t, a.Grids[ProductionVar], [][]float64{{2e-6, 4e-6}, {0, 6e-6}})
	checkGrid(t, a.Grids[NitrogenOutputVar], [][]float64{{4e-8, 8e-8}, {0, 1.2e-7}})

	if len(a.National) != 2 {
		t.Errorf("%d national boundaries", len(a.National))
	}
	if different(a.Production.Total(), 12e-6, 1e-10) {
		t.Errorf("total production %g", a.Production.Total())
	}
	for country, want := range map[string]float64{"United States of America": 2e-6, "France": 10e-6} {
		if v, _ := a.Production.Lookup(country); different(v, want, 1e-10) {
			t.Errorf("%s production: %g, want %g", country, v, want)
		}
	}
	if a.JoinReport.Matched != 2 || len(a.JoinReport.DroppedNUE) != 1 {
		t.Errorf("join report %+v", a.JoinReport)
	}
	for _, r := range a.Nitrogen {
		if different(r.Output, r.Production*DefaultNitrogenContent, 1e-10) {
			t.Errorf("%s: output %g", r.Country, r.Output)
		}
		if r.Country == "United States of America" && different(r.Loss, r.Output, 1e-10) {
			t.Errorf("with NUE 0.5 loss should equal output: %+v", r)
		}
	}
	if len(a.Top) != 1 || a.Top[0].Country != "France" {
		t.Errorf("top: %+v", a.Top)
	}
	if a.Correlation == nil || a.Correlation.N != 2 {
		t.Errorf("correlation: %+v", a.Correlation)
	}
	if ar.hash != "abc" || len(ar.nitrogen) != 2 || len(ar.production) != 2 {
		t.Errorf("archive: %+v", ar)
	}

	for _, f := range []string{
		ProductionVar + ".nc", ProductionFile, NitrogenFile(1), CorrelationFile,
		NationalFile, ProductionVar + "_log10.pdf", BarChartFile,
	} {
		checkNonEmpty(t, filepath.Join(dir, f))
	}
	if len(a.Outputs) != 7 {
		t.Errorf("outputs: %v", a.Outputs)
	}

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["countries"] != nil {
			warned = true
		}
	}
	if !warned {
		t.Error("unmatched NUE country should be logged as a warning")
	}
}

func TestAnalysisErrors(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	a := &Analysis{
		Log: logger,
		InitFuncs: []Stage{
			ReadGrids(memoryGrids(nil), map[string]string{YieldVar: "missing.tif"}),
		},
	}
	err := a.Init()
	var se *StageError
	if !errors.As(err, &se) {
		t.Fatalf("error %v should be a StageError", err)
	}
	if se.Stage != "ReadGrids" || se.File != "missing.tif" {
		t.Errorf("stage error %+v", se)
	}

	a = &Analysis{Log: logger, RunFuncs: []Stage{ZonalProduction(ProductionVar)}}
	if err := a.Run(); err == nil {
		t.Error("expected an error for a missing grid")
	}

	a = &Analysis{
		Log:        logger,
		Production: CountryTable{{Country: "France", Value: 1}},
		NUE:        CountryTable{{Country: "Spain", Value: 0.5}},
		RunFuncs:   []Stage{JoinNUE(DefaultAliases())},
	}
	if err := a.Run(); err == nil {
		t.Error("expected an error when no countries match")
	}

	a = &Analysis{
		Log:      logger,
		Nitrogen: []NitrogenRecord{{Country: "France", Production: 1}},
		RunFuncs: []Stage{CorrelateLoss()},
	}
	if err := a.Run(); err != nil {
		t.Errorf("a single country should not be an error: %v", err)
	}
	if a.Correlation != nil {
		t.Error("correlation should be skipped")
	}
}

func TestAnalysisSingleCountry(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	d, err := NewDeriver(DefaultDerivedVariables, DefaultDerivedUnits,
		map[string]float64{NitrogenContentConst: DefaultNitrogenContent}, nil)
	if err != nil {
		t.Fatal(err)
	}
	a := &Analysis{
		Log: logger,
		Grids: map[string]*Grid{
			YieldVar:         testGrid(YieldVar, "t/ha", [][]float64{{2, 4}, {0, 6}}),
			HarvestedAreaVar: testGrid(HarvestedAreaVar, "ha", [][]float64{{1, 1}, {1, 1}}),
		},
		Regions: Regions{{Name: "United States of America", Polygonal: rect(0, 0, 2, 2)}},
		NUE:     CountryTable{{Country: "USA", Value: 0.5}},
		RunFuncs: []Stage{
			DeriveGrids(d),
			ZonalProduction(ProductionVar),
			JoinNUE(DefaultAliases()),
			ComputeNitrogen(DefaultNitrogenContent),
			SelectTop(10),
		},
	}
	if err := a.Run(); err != nil {
		t.Fatal(err)
	}
	if len(a.Top) != 1 {
		t.Fatalf("top: %+v", a.Top)
	}
	r := a.Top[0]
	for _, v := range []struct {
		name      string
		got, want float64
	}{
		{"production", r.Production, 12e-6},
		{"output", r.Output, 12e-6 * 0.02},
		{"input", r.Input, 12e-6 * 0.02 / 0.5},
		{"loss", r.Loss, r.Output},
	} {
		if different(v.got, v.want, 1e-10) {
			t.Errorf("%s: got %g, want %g", v.name, v.got, v.want)
		}
	}
}

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
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
)

// BaseUnits are the units of the grids that are read from disk.
var BaseUnits = map[string]string{
	YieldVar:         "t/ha",
	HarvestedAreaVar: "ha",
	PhysicalAreaVar:  "ha",
}

// Analysis holds the state of one run of the wheat nitrogen analysis.
// Each stage reads the results of the stages before it and adds its own.
type Analysis struct {
	// Grids holds the base and derived grids by name.
	Grids map[string]*Grid

	// Regions are the sub-national boundaries as read from disk, and
	// National holds one region per country.
	Regions, National Regions

	// Simplified holds the simplified national boundaries, which are
	// only used for display.
	Simplified []SimplifyResult

	NUE        CountryTable
	Production CountryTable // Mt by country

	Joined     []Joined
	JoinReport JoinReport

	Nitrogen []NitrogenRecord
	Top      []NitrogenRecord

	// Correlation is nil if there were too few records to calculate it.
	Correlation *Correlation

	// Outputs holds the paths of the files that have been written.
	Outputs []string

	// InitFuncs are run by Init, RunFuncs by Run, and CleanupFuncs by
	// Cleanup.
	InitFuncs, RunFuncs, CleanupFuncs []Stage

	// Log receives progress messages. If nil, the standard logrus
	// logger is used.
	Log logrus.FieldLogger
}

// Stage is one step of an Analysis.
type Stage func(*Analysis) error

// StageError is returned when a stage fails.
type StageError struct {
	Stage string

	// File is the file being read or written when the error
	// occurred, if any.
	File string

	Err error
}

func (e *StageError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("wheatn: %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("wheatn: %s: %s: %v", e.Stage, e.File, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Init runs the InitFuncs in order, stopping at the first error.
func (a *Analysis) Init() error { return a.run(a.InitFuncs) }

// Run runs the RunFuncs in order, stopping at the first error.
func (a *Analysis) Run() error { return a.run(a.RunFuncs) }

// Cleanup runs the CleanupFuncs in order, stopping at the first error.
func (a *Analysis) Cleanup() error { return a.run(a.CleanupFuncs) }

func (a *Analysis) run(stages []Stage) error {
	if a.Grids == nil {
		a.Grids = make(map[string]*Grid)
	}
	for _, s := range stages {
		if err := s(a); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analysis) log() logrus.FieldLogger {
	if a.Log == nil {
		return logrus.StandardLogger()
	}
	return a.Log
}

// ReadGrids returns a stage that reads the grids in files, which maps
// grid names to file paths, using read. All grids must share the same
// geometry.
func ReadGrids(read GridReader, files map[string]string) Stage {
	return func(a *Analysis) error {
		names := make([]string, 0, len(files))
		for n := range files {
			names = append(names, n)
		}
		sort.Strings(names)
		var first *Grid
		for _, name := range names {
			file := files[name]
			g, err := read(file, name)
			if err != nil {
				return &StageError{Stage: "ReadGrids", File: file, Err: err}
			}
			g.Name = name
			if g.Units == "" {
				g.Units = BaseUnits[name]
			}
			if first == nil {
				first = g
			} else if err := first.SameGeometry(g); err != nil {
				return &StageError{Stage: "ReadGrids", File: file, Err: err}
			}
			a.Grids[name] = g
			a.log().WithFields(logrus.Fields{
				"grid":  name,
				"file":  file,
				"nx":    g.Nx,
				"ny":    g.Ny,
				"valid": g.ValidCount(),
				"total": g.Sum(),
			}).Info("read grid")
		}
		return nil
	}
}

// ReadBoundaries returns a stage that reads the sub-national boundaries
// from a shapefile, labeling each with the value of nameField.
func ReadBoundaries(file, nameField string) Stage {
	return func(a *Analysis) error {
		r, err := ReadRegions(file, nameField, nil)
		if err != nil {
			return &StageError{Stage: "ReadBoundaries", File: file, Err: err}
		}
		a.Regions = r
		a.log().WithFields(logrus.Fields{"file": file, "features": len(r)}).Info("read boundaries")
		return nil
	}
}

// ReadNUETable returns a stage that reads the nitrogen use efficiency
// table.
func ReadNUETable(file string, cols NUEColumns) Stage {
	return func(a *Analysis) error {
		t, err := ReadNUE(file, cols)
		if err != nil {
			return &StageError{Stage: "ReadNUETable", File: file, Err: err}
		}
		a.NUE = t
		a.log().WithFields(logrus.Fields{"file": file, "countries": len(t)}).Info("read NUE table")
		return nil
	}
}

// DissolveBoundaries returns a stage that merges the sub-national
// boundaries into one region per country.
func DissolveBoundaries(method DissolveMethod) Stage {
	return func(a *Analysis) error {
		if len(a.Regions) == 0 {
			return &StageError{Stage: "DissolveBoundaries", Err: fmt.Errorf("no boundaries have been read")}
		}
		n, err := Dissolve(a.Regions, method)
		if err != nil {
			return &StageError{Stage: "DissolveBoundaries", Err: err}
		}
		a.National = n
		a.log().WithFields(logrus.Fields{
			"method":   method,
			"features": len(a.Regions),
			"national": len(n),
		}).Info("dissolved boundaries")
		return nil
	}
}

// SimplifyBoundaries returns a stage that simplifies the national
// boundaries for display. Regions that cannot be simplified keep their
// original geometry and are logged as warnings.
func SimplifyBoundaries(tolerance float64) Stage {
	return func(a *Analysis) error {
		if len(a.National) == 0 {
			return &StageError{Stage: "SimplifyBoundaries", Err: fmt.Errorf("boundaries have not been dissolved")}
		}
		a.Simplified = Simplify(a.National, tolerance)
		for _, r := range a.Simplified {
			if r.Err != nil {
				a.log().WithField("country", r.Name).Warnf("keeping original geometry: %v", r.Err)
			}
		}
		a.log().WithFields(logrus.Fields{
			"tolerance": tolerance,
			"features":  len(a.Simplified),
			"fallbacks": FallbackCount(a.Simplified),
		}).Info("simplified boundaries")
		return nil
	}
}

// DeriveGrids returns a stage that calculates the derived grids.
func DeriveGrids(d *Deriver) Stage {
	return func(a *Analysis) error {
		out, err := d.Derive(a.Grids)
		if err != nil {
			return &StageError{Stage: "DeriveGrids", Err: err}
		}
		for _, name := range d.Names() {
			g := out[name]
			a.Grids[name] = g
			a.log().WithFields(logrus.Fields{
				"grid":       name,
				"expression": d.Expression(name),
				"units":      g.Units,
				"total":      g.Sum(),
			}).Info("derived grid")
		}
		return nil
	}
}

// ZonalProduction returns a stage that sums the named grid within each
// sub-national boundary and then adds up the sums by country.
func ZonalProduction(variable string) Stage {
	return func(a *Analysis) error {
		g, ok := a.Grids[variable]
		if !ok {
			return &StageError{Stage: "ZonalProduction", Err: fmt.Errorf("grid %s has not been calculated", variable)}
		}
		if len(a.Regions) == 0 {
			return &StageError{Stage: "ZonalProduction", Err: fmt.Errorf("no boundaries have been read")}
		}
		t, err := ZonalTable(g, a.Regions)
		if err != nil {
			return &StageError{Stage: "ZonalProduction", Err: err}
		}
		a.Production = t
		a.log().WithFields(logrus.Fields{
			"grid":        variable,
			"countries":   len(t),
			"total":       t.Total(),
			"grid_total":  g.Sum(),
			"outside_any": g.Sum() - t.Total(),
		}).Info("calculated production by country")
		return nil
	}
}

// JoinNUE returns a stage that joins production by country with the
// NUE table after correcting country names with aliases. Rows that
// cannot be joined are logged as warnings.
func JoinNUE(aliases AliasTable) Stage {
	return func(a *Analysis) error {
		a.Joined, a.JoinReport = Join(a.Production, a.NUE, aliases)
		log := a.log().WithField("alias_version", aliases.Version)
		if len(a.JoinReport.DroppedNUE) > 0 {
			log.WithField("countries", a.JoinReport.DroppedNUE).
				Warnf("%d NUE countries have no matching boundary", len(a.JoinReport.DroppedNUE))
		}
		if len(a.JoinReport.DroppedProduction) > 0 {
			log.WithField("countries", a.JoinReport.DroppedProduction).
				Warnf("%d producing countries have no NUE value", len(a.JoinReport.DroppedProduction))
		}
		log.WithField("matched", a.JoinReport.Matched).Info("joined NUE table")
		if a.JoinReport.Matched == 0 {
			return &StageError{Stage: "JoinNUE", Err: fmt.Errorf("no countries matched between production and NUE tables")}
		}
		return nil
	}
}

// ComputeNitrogen returns a stage that calculates the nitrogen balance
// of each joined country.
func ComputeNitrogen(nContent float64) Stage {
	return func(a *Analysis) error {
		r, err := Balance(a.Joined, nContent)
		if err != nil {
			return &StageError{Stage: "ComputeNitrogen", Err: err}
		}
		a.Nitrogen = r
		var out, loss float64
		for _, rr := range r {
			out += rr.Output
			loss += rr.Loss
		}
		a.log().WithFields(logrus.Fields{
			"countries":   len(r),
			"n_output_mt": out,
			"n_loss_mt":   loss,
		}).Info("calculated nitrogen balance")
		return nil
	}
}

// SelectTop returns a stage that selects the n largest producers.
func SelectTop(n int) Stage {
	return func(a *Analysis) error {
		a.Top = TopN(a.Nitrogen, n)
		return nil
	}
}

// CorrelateLoss returns a stage that calculates the correlation between
// production and nitrogen loss. If there are too few countries the
// correlation is skipped with a warning.
func CorrelateLoss() Stage {
	return func(a *Analysis) error {
		c, err := Correlate(a.Nitrogen)
		if err == ErrTooFewRecords {
			a.log().Warn("skipping correlation: fewer than two countries")
			return nil
		} else if err != nil {
			return &StageError{Stage: "CorrelateLoss", Err: err}
		}
		a.Correlation = &c
		a.log().WithField("statistics", c.String()).Info("production-loss correlation")
		return nil
	}
}

// writeFile creates file and writes to it with f.
func writeFile(file string, f func(io.Writer) error) error {
	w, err := os.Create(file)
	if err != nil {
		return err
	}
	if err := f(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (a *Analysis) wrote(stage, file string) {
	a.Outputs = append(a.Outputs, file)
	a.log().WithFields(logrus.Fields{"stage": stage, "file": file}).Info("wrote output")
}

// WriteGrids returns a stage that writes the named grids to directory
// dir using write, with file names made from the grid names and ext.
func WriteGrids(write GridWriter, dir, ext string, names ...string) Stage {
	return func(a *Analysis) error {
		for _, name := range names {
			file := filepath.Join(dir, name+ext)
			g, ok := a.Grids[name]
			if !ok {
				return &StageError{Stage: "WriteGrids", File: file, Err: fmt.Errorf("grid %s has not been calculated", name)}
			}
			if err := write(file, g); err != nil {
				return &StageError{Stage: "WriteGrids", File: file, Err: err}
			}
			a.wrote("WriteGrids", file)
		}
		return nil
	}
}

// WriteTables returns a stage that writes production by country, the
// nitrogen balance of the top n countries, and the correlation
// statistics, if any, as CSV files in dir.
func WriteTables(dir string, n int) Stage {
	return func(a *Analysis) error {
		type table struct {
			file  string
			write func(io.Writer) error
		}
		tables := []table{
			{ProductionFile, func(w io.Writer) error { return WriteProductionCSV(w, a.Production) }},
			{NitrogenFile(n), func(w io.Writer) error { return WriteNitrogenCSV(w, a.Top) }},
		}
		if a.Correlation != nil {
			c := *a.Correlation
			tables = append(tables, table{CorrelationFile, func(w io.Writer) error { return WriteCorrelationCSV(w, c) }})
		}
		for _, t := range tables {
			file := filepath.Join(dir, t.file)
			if err := writeFile(file, t.write); err != nil {
				return &StageError{Stage: "WriteTables", File: file, Err: err}
			}
			a.wrote("WriteTables", file)
		}
		return nil
	}
}

// WriteNationalShapefile returns a stage that writes the simplified
// national boundaries to a shapefile in dir.
func WriteNationalShapefile(dir string) Stage {
	return func(a *Analysis) error {
		file := filepath.Join(dir, NationalFile)
		if err := WriteBoundaryShapefile(file, a.Simplified); err != nil {
			return &StageError{Stage: "WriteNationalShapefile", File: file, Err: err}
		}
		a.wrote("WriteNationalShapefile", file)
		return nil
	}
}

// outlines returns the boundaries to draw on maps.
func (a *Analysis) outlines() Regions {
	if len(a.Simplified) > 0 {
		return SimplifiedRegions(a.Simplified)
	}
	return a.National
}

// RenderLogMap returns a stage that draws a map of the base-10
// logarithm of the named grid and writes it to a PDF file in dir.
func RenderLogMap(dir, variable string, policy LogPolicy) Stage {
	return func(a *Analysis) error {
		file := filepath.Join(dir, variable+"_log10.pdf")
		g, ok := a.Grids[variable]
		if !ok {
			return &StageError{Stage: "RenderLogMap", File: file, Err: fmt.Errorf("grid %s has not been calculated", variable)}
		}
		title := fmt.Sprintf("Wheat %s", variable)
		if err := DrawLogMap(file, g, a.outlines(), policy, title); err != nil {
			return &StageError{Stage: "RenderLogMap", File: file, Err: err}
		}
		a.wrote("RenderLogMap", file)
		return nil
	}
}

// BarChartFile is the name of the nitrogen bar chart file.
const BarChartFile = "nitrogen_top_bar.pdf"

// RenderBarChart returns a stage that draws the nitrogen output and
// loss of the top countries as a bar chart in dir.
func RenderBarChart(dir string) Stage {
	return func(a *Analysis) error {
		file := filepath.Join(dir, BarChartFile)
		if err := DrawBarChart(file, a.Top); err != nil {
			return &StageError{Stage: "RenderBarChart", File: file, Err: err}
		}
		a.wrote("RenderBarChart", file)
		return nil
	}
}

// Archiver stores the results of a run.
type Archiver interface {
	// Save stores the results and returns an identifier for the run.
	Save(configHash string, production CountryTable, nitrogen []NitrogenRecord) (int64, error)
}

// Archive returns a stage that stores the production and nitrogen
// results using ar, tagged with the hash of the run configuration.
func Archive(ar Archiver, configHash string) Stage {
	return func(a *Analysis) error {
		id, err := ar.Save(configHash, a.Production, a.Nitrogen)
		if err != nil {
			return &StageError{Stage: "Archive", Err: err}
		}
		a.log().WithFields(logrus.Fields{"run": id, "config_hash": configHash}).Info("archived results")
		return nil
	}
}

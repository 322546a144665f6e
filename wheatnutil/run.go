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

package wheatnutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/wheatn"
	"github.com/spatialmodel/wheatn/geotiff"
	"github.com/spatialmodel/wheatn/internal/archive"
	"github.com/spatialmodel/wheatn/internal/hash"
)

// readGrid reads a grid from a NetCDF file if file ends in .nc and from
// a GeoTIFF file otherwise.
func readGrid(file, name string) (*wheatn.Grid, error) {
	if strings.EqualFold(filepath.Ext(file), ".nc") {
		return wheatn.ReadNetCDF(file, name)
	}
	return geotiff.Read(file, name)
}

// gridWriter returns the writer for files with the given extension.
func gridWriter(ext string) wheatn.GridWriter {
	if ext == ".nc" {
		return wheatn.WriteNetCDF
	}
	return geotiff.Write
}

// newLogger returns a logger that writes to w and to c.LogFile, and a
// function that closes the log file.
func newLogger(w io.Writer, c *Config) (*logrus.Logger, func(), error) {
	if err := os.MkdirAll(c.OutputDir, os.ModePerm); err != nil {
		return nil, nil, fmt.Errorf("wheatn: creating output directory: %v", err)
	}
	logfile, err := os.Create(c.LogFile)
	if err != nil {
		return nil, nil, fmt.Errorf("wheatn: problem creating log file: %v", err)
	}
	log := logrus.New()
	log.Out = io.MultiWriter(w, logfile)
	log.Formatter = &logrus.TextFormatter{DisableColors: true, FullTimestamp: true}
	return log, func() { logfile.Close() }, nil
}

// gridFiles returns the base grid files to read, keyed by grid name.
func gridFiles(c *Config) (map[string]string, error) {
	files := map[string]string{
		wheatn.YieldVar:         c.YieldFile,
		wheatn.HarvestedAreaVar: c.HarvestedAreaFile,
	}
	if c.PhysicalAreaFile != "" {
		files[wheatn.PhysicalAreaVar] = c.PhysicalAreaFile
	}
	for name, f := range files {
		if err := checkInputFile(name+"File", f); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func (c *Config) deriver() (*wheatn.Deriver, error) {
	return wheatn.NewDeriver(c.DerivedVariables, c.DerivedUnits,
		map[string]float64{wheatn.NitrogenContentConst: c.NitrogenContent}, nil)
}

// gridStages returns the stages that read the base grids and calculate,
// write, and draw the derived grids.
func gridStages(c *Config) (read, run, write []wheatn.Stage, err error) {
	files, err := gridFiles(c)
	if err != nil {
		return nil, nil, nil, err
	}
	d, err := c.deriver()
	if err != nil {
		return nil, nil, nil, err
	}
	read = []wheatn.Stage{wheatn.ReadGrids(readGrid, files)}
	run = []wheatn.Stage{wheatn.DeriveGrids(d)}
	write = []wheatn.Stage{wheatn.WriteGrids(gridWriter(c.GridFormat), c.OutputDir, c.GridFormat, d.Names()...)}
	if c.Render {
		for _, v := range []string{wheatn.ProductionVar, wheatn.NitrogenOutputVar} {
			if _, ok := c.DerivedVariables[v]; ok {
				write = append(write, wheatn.RenderLogMap(c.OutputDir, v, c.LogPolicy))
			}
		}
	}
	return read, run, write, nil
}

// boundaryStages returns the stages that read, dissolve, and simplify
// the boundaries.
func boundaryStages(c *Config) (read, run []wheatn.Stage, err error) {
	if err := checkInputFile("BoundaryFile", c.BoundaryFile); err != nil {
		return nil, nil, err
	}
	read = []wheatn.Stage{wheatn.ReadBoundaries(c.BoundaryFile, c.BoundaryNameField)}
	run = []wheatn.Stage{
		wheatn.DissolveBoundaries(c.DissolveMethod),
		wheatn.SimplifyBoundaries(c.SimplifyTolerance),
	}
	return read, run, nil
}

// execute runs the stages of a, logging the configuration fingerprint
// and the elapsed time.
func execute(a *wheatn.Analysis, log *logrus.Logger, command, configHash string) error {
	start := time.Now()
	log.WithFields(logrus.Fields{
		"command":     command,
		"version":     wheatn.Version,
		"config_hash": configHash,
	}).Info("starting")
	for _, f := range []func() error{a.Init, a.Run, a.Cleanup} {
		if err := f(); err != nil {
			log.WithError(err).Error("run failed")
			return err
		}
	}
	log.WithFields(logrus.Fields{
		"outputs": len(a.Outputs),
		"elapsed": time.Since(start).String(),
	}).Info("finished")
	return nil
}

// Run runs the whole analysis as configured by c, writing log messages
// to w and to c.LogFile.
func Run(w io.Writer, c *Config) error {
	files := []struct{ option, file string }{
		{"NUEFile", c.NUEFile},
	}
	if c.AliasFile != "" {
		files = append(files, struct{ option, file string }{"AliasFile", c.AliasFile})
	}
	for _, f := range files {
		if err := checkInputFile(f.option, f.file); err != nil {
			return err
		}
	}
	aliases := wheatn.DefaultAliases()
	if c.AliasFile != "" {
		var err error
		if aliases, err = wheatn.LoadAliases(c.AliasFile); err != nil {
			return err
		}
	}

	gInit, gRun, gCleanup, err := gridStages(c)
	if err != nil {
		return err
	}
	bInit, bRun, err := boundaryStages(c)
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger(w, c)
	if err != nil {
		return err
	}
	defer closeLog()

	configHash := hash.Hash(c)
	a := &wheatn.Analysis{Log: log}
	a.InitFuncs = append(append(gInit, bInit...), wheatn.ReadNUETable(c.NUEFile, c.NUEColumns))
	a.RunFuncs = append(append(bRun, gRun...),
		wheatn.ZonalProduction(wheatn.ProductionVar),
		wheatn.JoinNUE(aliases),
		wheatn.ComputeNitrogen(c.NitrogenContent),
		wheatn.SelectTop(c.TopN),
		wheatn.CorrelateLoss(),
	)
	a.CleanupFuncs = append(gCleanup,
		wheatn.WriteTables(c.OutputDir, c.TopN),
		wheatn.WriteNationalShapefile(c.OutputDir),
	)
	if c.Render {
		a.CleanupFuncs = append(a.CleanupFuncs, wheatn.RenderBarChart(c.OutputDir))
	}
	if c.ArchiveFile != "" {
		ar, err := archive.Open(c.ArchiveFile)
		if err != nil {
			return err
		}
		defer ar.Close()
		a.CleanupFuncs = append(a.CleanupFuncs, wheatn.Archive(ar, configHash))
	}
	return execute(a, log, "run", configHash)
}

// Grids calculates and writes the derived grids as configured by c.
func Grids(w io.Writer, c *Config) error {
	read, run, write, err := gridStages(c)
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(w, c)
	if err != nil {
		return err
	}
	defer closeLog()
	a := &wheatn.Analysis{Log: log, InitFuncs: read, RunFuncs: run, CleanupFuncs: write}
	return execute(a, log, "grids", hash.Hash(c))
}

// Boundaries creates and writes the national boundaries as configured
// by c.
func Boundaries(w io.Writer, c *Config) error {
	read, run, err := boundaryStages(c)
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(w, c)
	if err != nil {
		return err
	}
	defer closeLog()
	a := &wheatn.Analysis{
		Log:          log,
		InitFuncs:    read,
		RunFuncs:     run,
		CleanupFuncs: []wheatn.Stage{wheatn.WriteNationalShapefile(c.OutputDir)},
	}
	return execute(a, log, "boundaries", hash.Hash(c))
}

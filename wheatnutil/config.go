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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/wheatn"
	"github.com/spf13/cast"
)

// Config holds the resolved configuration of a run.
type Config struct {
	YieldFile, HarvestedAreaFile, PhysicalAreaFile string

	BoundaryFile, BoundaryNameField string

	NUEFile    string
	NUEColumns wheatn.NUEColumns
	AliasFile  string

	DerivedVariables, DerivedUnits map[string]string
	NitrogenContent                float64

	DissolveMethod    wheatn.DissolveMethod
	SimplifyTolerance float64
	TopN              int
	LogPolicy         wheatn.LogPolicy

	// GridFormat is the file extension of the derived grids, including
	// the leading dot.
	GridFormat string

	OutputDir, LogFile, ArchiveFile string
	Render                          bool
}

// ReadConfig reads and checks the configuration in cfg. Paths have
// their environment variables expanded. Input files are not checked
// here because each command reads a different subset of them.
func ReadConfig(cfg *viper.Viper) (*Config, error) {
	c := &Config{
		YieldFile:         os.ExpandEnv(cfg.GetString("YieldFile")),
		HarvestedAreaFile: os.ExpandEnv(cfg.GetString("HarvestedAreaFile")),
		PhysicalAreaFile:  os.ExpandEnv(cfg.GetString("PhysicalAreaFile")),
		BoundaryFile:      os.ExpandEnv(cfg.GetString("BoundaryFile")),
		BoundaryNameField: cfg.GetString("BoundaryNameField"),
		NUEFile:           os.ExpandEnv(cfg.GetString("NUEFile")),
		NUEColumns: wheatn.NUEColumns{
			Country: cfg.GetString("NUE.CountryColumn"),
			Value:   cfg.GetString("NUE.ValueColumn"),
			Sheet:   cfg.GetString("NUE.Sheet"),
		},
		AliasFile:         os.ExpandEnv(cfg.GetString("AliasFile")),
		SimplifyTolerance: cfg.GetFloat64("SimplifyTolerance"),
		Render:            cfg.GetBool("Render"),
		ArchiveFile:       os.ExpandEnv(cfg.GetString("ArchiveFile")),
	}
	var err error
	if c.DerivedVariables, err = GetStringMapString("DerivedVariables", cfg); err != nil {
		return nil, err
	}
	if c.DerivedVariables, err = checkDerivedVariables(c.DerivedVariables); err != nil {
		return nil, err
	}
	if c.DerivedUnits, err = GetStringMapString("DerivedUnits", cfg); err != nil {
		return nil, err
	}
	if c.NitrogenContent, err = checkNitrogenContent(cfg.GetFloat64("NitrogenContent")); err != nil {
		return nil, err
	}
	if c.DissolveMethod, err = checkDissolveMethod(cfg.GetString("DissolveMethod")); err != nil {
		return nil, err
	}
	if c.SimplifyTolerance < 0 {
		return nil, fmt.Errorf("wheatn: SimplifyTolerance must be >= 0 but is %g", c.SimplifyTolerance)
	}
	if c.TopN = cfg.GetInt("TopN"); c.TopN < 1 {
		return nil, fmt.Errorf("wheatn: TopN must be >= 1 but is %d", c.TopN)
	}
	if c.LogPolicy, err = checkLogFloor(cfg.GetFloat64("LogFloor")); err != nil {
		return nil, err
	}
	if c.GridFormat, err = checkGridFormat(cfg.GetString("GridFormat")); err != nil {
		return nil, err
	}
	if c.BoundaryNameField == "" {
		return nil, fmt.Errorf("wheatn: BoundaryNameField must be specified")
	}
	if c.OutputDir, err = checkOutputDir(cfg.GetString("OutputDir")); err != nil {
		return nil, err
	}
	c.LogFile = checkLogFile(cfg.GetString("LogFile"), c.OutputDir)
	return c, nil
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	switch i := cfg.Get(varName).(type) {
	case map[string]string:
		return i, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(i)
	case string:
		o := make(map[string]string)
		if strings.TrimSpace(i) == "" {
			return o, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(i))
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("wheatn: parsing %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("wheatn: invalid type for %s: %#v", varName, i)
	}
}

// checkDerivedVariables removes end lines from the derived variable
// expressions and ensures that production is calculated.
func checkDerivedVariables(vars map[string]string) (map[string]string, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("wheatn: there are no DerivedVariables specified. Please fill in " +
			"the DerivedVariables configuration and try again")
	}
	o := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o[k] = v
	}
	if _, ok := o[wheatn.ProductionVar]; !ok {
		return nil, fmt.Errorf("wheatn: DerivedVariables must define %s", wheatn.ProductionVar)
	}
	return o, nil
}

func checkNitrogenContent(v float64) (float64, error) {
	if !(v > 0 && v <= 1) {
		return v, fmt.Errorf("wheatn: NitrogenContent must be in (0, 1] but is %g", v)
	}
	return v, nil
}

func checkDissolveMethod(s string) (wheatn.DissolveMethod, error) {
	m, err := wheatn.ParseDissolveMethod(s)
	if err != nil {
		return m, fmt.Errorf("wheatn: invalid DissolveMethod: %v", err)
	}
	return m, nil
}

// checkLogFloor returns the log-scale policy for the given floor.
func checkLogFloor(floor float64) (wheatn.LogPolicy, error) {
	switch {
	case floor == 0:
		return wheatn.LogMissing{}, nil
	case floor > 0:
		return wheatn.LogFloor{Floor: floor}, nil
	default:
		return nil, fmt.Errorf("wheatn: LogFloor must be >= 0 but is %g", floor)
	}
}

func checkGridFormat(f string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(f, ".")) {
	case "tif", "tiff", "geotiff":
		return ".tif", nil
	case "nc", "netcdf":
		return ".nc", nil
	default:
		return "", fmt.Errorf("wheatn: GridFormat must be 'tif' or 'nc' but is %q", f)
	}
}

// checkOutputDir makes sure that the output directory is specified and
// expands any environment variables.
func checkOutputDir(dir string) (string, error) {
	dir = os.ExpandEnv(dir)
	if dir == "" {
		return "", fmt.Errorf(`wheatn: you need to specify an output directory configuration variable (for example: OutputDir="outputs")`)
	}
	if fi, err := os.Stat(dir); err == nil && !fi.IsDir() {
		return dir, fmt.Errorf("wheatn: OutputDir %s is not a directory", dir)
	}
	return dir, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputDir string) string {
	if logFile == "" {
		return filepath.Join(outputDir, "wheatn.log")
	}
	return os.ExpandEnv(logFile)
}

// checkInputFile makes sure that the input file given by option exists.
func checkInputFile(option, file string) error {
	if file == "" {
		return fmt.Errorf("wheatn: %s must be specified", option)
	}
	if _, err := os.Stat(file); err != nil {
		return fmt.Errorf("wheatn: %s: %v", option, err)
	}
	return nil
}

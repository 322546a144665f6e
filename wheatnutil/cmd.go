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

// Package wheatnutil contains the command-line interface to WheatN.
package wheatnutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/wheatn"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// inputs are the flag sets of commands that read the base grids.
	inputs := func() []*pflag.FlagSet {
		return []*pflag.FlagSet{runCmd.Flags(), gridsCmd.Flags()}
	}
	// boundaries are the flag sets of commands that read the boundaries.
	boundaries := func() []*pflag.FlagSet {
		return []*pflag.FlagSet{runCmd.Flags(), boundariesCmd.Flags()}
	}
	all := func() []*pflag.FlagSet {
		return []*pflag.FlagSet{runCmd.Flags(), gridsCmd.Flags(), boundariesCmd.Flags()}
	}

	// Options are the configuration options available to WheatN.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "YieldFile",
			usage: `
              YieldFile is the path to the gridded wheat yield data in t/ha,
              as a GeoTIFF or NetCDF (.nc) file. It can include environment
              variables.`,
			defaultVal: "${WHEATN_DATA}/wheat_YieldPerHectare.tif",
			flagsets:   inputs(),
		},
		{
			name: "HarvestedAreaFile",
			usage: `
              HarvestedAreaFile is the path to the gridded wheat harvested area
              in ha. It must share the grid of YieldFile.`,
			defaultVal: "${WHEATN_DATA}/wheat_HarvestedAreaHectares.tif",
			flagsets:   inputs(),
		},
		{
			name: "PhysicalAreaFile",
			usage: `
              PhysicalAreaFile is the path to the gridded physical wheat area in
              ha. It is optional; if given it is checked against the other grids,
              its total is logged, and it can be used in DerivedVariables.`,
			defaultVal: "",
			flagsets:   inputs(),
		},
		{
			name: "BoundaryFile",
			usage: `
              BoundaryFile is the path to the shapefile of administrative
              boundaries, for example GAUL level 1. Features are dissolved
              by BoundaryNameField into national boundaries.`,
			defaultVal: "${WHEATN_DATA}/g2015_2014_1.shp",
			flagsets:   boundaries(),
		},
		{
			name: "BoundaryNameField",
			usage: `
              BoundaryNameField is the attribute of BoundaryFile holding the
              country name.`,
			defaultVal: wheatn.DefaultNameField,
			flagsets:   boundaries(),
		},
		{
			name: "NUEFile",
			usage: `
              NUEFile is the path to the table of nitrogen use efficiency by
              country, as a .csv or .xlsx file.`,
			defaultVal: "${WHEATN_DATA}/NUE_Zhang_et_al_2015.xlsx",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "NUE.CountryColumn",
			usage: `
              NUE.CountryColumn is the header of the NUEFile column holding
              country names.`,
			defaultVal: wheatn.DefaultNUEColumns.Country,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "NUE.ValueColumn",
			usage: `
              NUE.ValueColumn is the header of the NUEFile column holding
              nitrogen use efficiency as a fraction.`,
			defaultVal: wheatn.DefaultNUEColumns.Value,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "NUE.Sheet",
			usage: `
              NUE.Sheet is the worksheet to read if NUEFile is an Excel file.
              If empty, the first worksheet is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "AliasFile",
			usage: `
              AliasFile is the path to a TOML file mapping NUE country names to
              boundary country names. If empty, built-in aliases are used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "DerivedVariables",
			usage: `
              DerivedVariables maps the names of grids to calculate to
              expressions of the base grids (Yield, HarvestedArea, and
              PhysicalArea), the NitrogenContent constant, and other derived
              grids. Production must be defined.`,
			defaultVal: wheatn.DefaultDerivedVariables,
			flagsets:   inputs(),
		},
		{
			name: "DerivedUnits",
			usage: `
              DerivedUnits gives the units of the DerivedVariables.`,
			defaultVal: wheatn.DefaultDerivedUnits,
			flagsets:   inputs(),
		},
		{
			name: "NitrogenContent",
			usage: `
              NitrogenContent is the nitrogen mass fraction of harvested wheat.`,
			defaultVal: wheatn.DefaultNitrogenContent,
			flagsets:   inputs(),
		},
		{
			name: "DissolveMethod",
			usage: `
              DissolveMethod specifies how features with the same name are merged:
              'collect' keeps every part, 'union' merges overlapping parts, and
              'first' keeps only the first feature.`,
			defaultVal: wheatn.DissolveCollect.String(),
			flagsets:   boundaries(),
		},
		{
			name: "SimplifyTolerance",
			usage: `
              SimplifyTolerance is the tolerance, in the units of BoundaryFile,
              used to simplify national boundaries for display. Zero disables
              simplification.`,
			defaultVal: 0.05,
			flagsets:   boundaries(),
		},
		{
			name: "TopN",
			usage: `
              TopN is the number of largest producers to include in the nitrogen
              table and bar chart.`,
			shorthand:  "n",
			defaultVal: 10,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogFloor",
			usage: `
              LogFloor is the smallest value shown on log-scale maps. Cells at
              or below it are drawn at the floor. If zero, cells <= 0 are left
              blank.`,
			defaultVal: 0.0,
			flagsets:   inputs(),
		},
		{
			name: "GridFormat",
			usage: `
              GridFormat is the format of the derived grid files: 'tif' for
              GeoTIFF or 'nc' for NetCDF.`,
			defaultVal: "tif",
			flagsets:   inputs(),
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the directory where output files are written. It is
              created if it does not exist.`,
			shorthand:  "o",
			defaultVal: "outputs",
			flagsets:   all(),
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. If LogFile is
              left blank, the logfile will be saved in OutputDir.`,
			defaultVal: "",
			flagsets:   all(),
		},
		{
			name: "ArchiveFile",
			usage: `
              ArchiveFile is the path to a SQLite database where the results of
              each run are stored. If empty, results are not archived.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Render",
			usage: `
              Render specifies whether to draw maps and charts.`,
			defaultVal: true,
			flagsets:   inputs(),
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("WHEATN")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(v)
				set.StringP(option.name, option.shorthand, strings.TrimSpace(b.String()), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(gridsCmd)
	Root.AddCommand(boundariesCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("wheatn: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "wheatn",
	Short: "Wheat production and nitrogen balance by country.",
	Long: `WheatN calculates national wheat production from gridded yield and
harvested area data, and the nitrogen applied to and lost from that production
using country-level nitrogen use efficiency estimates.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'WHEATN_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of WheatN.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("WheatN v%s\n", wheatn.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd runs the whole analysis.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the analysis.",
	Long: `run reads the gridded data, boundaries, and NUE table, calculates
production and the nitrogen balance by country, and writes grids, tables,
a national boundary shapefile, maps, and a bar chart to OutputDir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ReadConfig(Cfg)
		if err != nil {
			return err
		}
		return Run(cmd.OutOrStdout(), c)
	},
	DisableAutoGenTag: true,
}

// gridsCmd calculates and writes the derived grids only.
var gridsCmd = &cobra.Command{
	Use:   "grids",
	Short: "Calculate derived grids.",
	Long: `grids reads the gridded data and writes the DerivedVariables to
OutputDir, along with maps of production and nitrogen output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ReadConfig(Cfg)
		if err != nil {
			return err
		}
		return Grids(cmd.OutOrStdout(), c)
	},
	DisableAutoGenTag: true,
}

// boundariesCmd creates the national boundary shapefile only.
var boundariesCmd = &cobra.Command{
	Use:   "boundaries",
	Short: "Create national boundaries.",
	Long: `boundaries dissolves BoundaryFile into national boundaries,
simplifies them, and writes them to a shapefile in OutputDir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ReadConfig(Cfg)
		if err != nil {
			return err
		}
		return Boundaries(cmd.OutOrStdout(), c)
	},
	DisableAutoGenTag: true,
}

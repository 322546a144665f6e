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
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tealeg/xlsx"
)

// NUEColumns specifies where the data are in a nitrogen use efficiency
// table.
type NUEColumns struct {
	// Country and Value are the header names of the columns holding the
	// country name and the NUE fraction. Matching is case-insensitive.
	Country, Value string

	// Sheet is the name of the worksheet to read from Excel files.
	// If empty, the first sheet is used.
	Sheet string
}

// DefaultNUEColumns are the column names of the published NUE table.
var DefaultNUEColumns = NUEColumns{Country: "Country", Value: "NUE"}

// ReadNUE reads a table of nitrogen use efficiency by country from a
// CSV (.csv) or Excel (.xlsx) file. NUE values must be numbers > 0.
func ReadNUE(file string, cols NUEColumns) (CountryTable, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(file)) {
	case ".csv":
		rows, err = readCSVRows(file)
	case ".xlsx":
		rows, err = readXLSXRows(file, cols.Sheet)
	default:
		return nil, fmt.Errorf("wheatn: NUE file %s has unsupported extension; it should be .csv or .xlsx", file)
	}
	if err != nil {
		return nil, fmt.Errorf("wheatn: reading NUE file %s: %v", file, err)
	}
	t, err := parseNUE(rows, cols)
	if err != nil {
		return nil, fmt.Errorf("wheatn: NUE file %s: %v", file, err)
	}
	return t, nil
}

func readCSVRows(file string) ([][]string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func readXLSXRows(file, sheet string) ([][]string, error) {
	f, err := xlsx.OpenFile(file)
	if err != nil {
		return nil, err
	}
	var s *xlsx.Sheet
	if sheet == "" {
		if len(f.Sheets) == 0 {
			return nil, fmt.Errorf("no worksheets")
		}
		s = f.Sheets[0]
	} else {
		var ok bool
		s, ok = f.Sheet[sheet]
		if !ok {
			return nil, fmt.Errorf("no worksheet named %q", sheet)
		}
	}
	rows := make([][]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		rec := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			rec[i] = c.Value
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// parseNUE extracts the NUE table from rows, where the first row is the
// header.
func parseNUE(rows [][]string, cols NUEColumns) (CountryTable, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("table is empty")
	}
	ci, vi := -1, -1
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		switch {
		case strings.EqualFold(h, cols.Country):
			ci = i
		case strings.EqualFold(h, cols.Value):
			vi = i
		}
	}
	if ci < 0 {
		return nil, fmt.Errorf("missing country column %q", cols.Country)
	}
	if vi < 0 {
		return nil, fmt.Errorf("missing NUE column %q", cols.Value)
	}

	var t CountryTable
	for i, rec := range rows[1:] {
		line := i + 2
		if blankRow(rec) {
			continue
		}
		if ci >= len(rec) || vi >= len(rec) {
			return nil, fmt.Errorf("row %d has %d columns", line, len(rec))
		}
		name := strings.TrimSpace(rec[ci])
		if name == "" {
			return nil, fmt.Errorf("row %d has no country name", line)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[vi]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): invalid NUE value %q", line, name, rec[vi])
		}
		if !(v > 0) {
			return nil, fmt.Errorf("row %d (%s): NUE must be > 0 but is %g", line, name, v)
		}
		t = append(t, CountryValue{Country: name, Value: v})
	}
	if len(t) == 0 {
		return nil, fmt.Errorf("table has no data rows")
	}
	return t, nil
}

func blankRow(rec []string) bool {
	for _, s := range rec {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

// AliasTable maps country names used in the NUE table to the names used
// in the boundary data.
type AliasTable struct {
	Version int               `toml:"version"`
	Aliases map[string]string `toml:"aliases"`
}

// DefaultAliases returns the built-in alias table.
func DefaultAliases() AliasTable {
	return AliasTable{
		Version: 1,
		Aliases: map[string]string{
			"USA":        "United States of America",
			"RussianFed": "Russian Federation",
		},
	}
}

// LoadAliases reads an alias table from a TOML file of the form:
//
//	version = 2
//	[aliases]
//	USA = "United States of America"
func LoadAliases(file string) (AliasTable, error) {
	var a AliasTable
	if _, err := toml.DecodeFile(file, &a); err != nil {
		return AliasTable{}, fmt.Errorf("wheatn: reading alias file %s: %v", file, err)
	}
	if a.Version < 1 {
		return AliasTable{}, fmt.Errorf("wheatn: alias file %s: version must be >= 1 but is %d", file, a.Version)
	}
	if a.Aliases == nil {
		a.Aliases = make(map[string]string)
	}
	return a, nil
}

// Name returns the corrected version of name, or name itself if it has
// no alias.
func (a AliasTable) Name(name string) string {
	if n, ok := a.Aliases[name]; ok {
		return n
	}
	n := normalizeName(name)
	for k, v := range a.Aliases {
		if normalizeName(k) == n {
			return v
		}
	}
	return name
}

// Apply returns a copy of t with the country names corrected.
func (a AliasTable) Apply(t CountryTable) CountryTable {
	o := make(CountryTable, len(t))
	for i, r := range t {
		o[i] = CountryValue{Country: a.Name(r.Country), Value: r.Value}
	}
	return o
}

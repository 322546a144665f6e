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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/tealeg/xlsx"
)

func writeTestFile(t *testing.T, name, contents string) string {
	t.Helper()
	f := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(f, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestReadNUE(t *testing.T) {
	want := CountryTable{
		{Country: "USA", Value: 0.61},
		{Country: "France", Value: 0.72},
	}

	t.Run("csv", func(t *testing.T) {
		f := writeTestFile(t, "nue.csv", "Region,country, nue\nx,USA,0.61\n,,\ny,France, 0.72\n")
		tbl, err := ReadNUE(f, DefaultNUEColumns)
		if err != nil {
			t.Fatal(err)
		}
		if diff := pretty.Diff(tbl, want); len(diff) > 0 {
			t.Error(diff)
		}
	})

	t.Run("xlsx", func(t *testing.T) {
		xf := xlsx.NewFile()
		notes, err := xf.AddSheet("notes")
		if err != nil {
			t.Fatal(err)
		}
		notes.AddRow().AddCell().SetString("NUE is the fraction of applied N harvested.")
		sheet, err := xf.AddSheet("efficiency")
		if err != nil {
			t.Fatal(err)
		}
		for _, rec := range [][]string{{"Nation", "Eff"}, {"USA", "0.61"}, {"France", "0.72"}} {
			row := sheet.AddRow()
			for _, v := range rec {
				row.AddCell().SetString(v)
			}
		}
		f := filepath.Join(t.TempDir(), "nue.xlsx")
		if err := xf.Save(f); err != nil {
			t.Fatal(err)
		}
		tbl, err := ReadNUE(f, NUEColumns{Country: "nation", Value: "EFF", Sheet: "efficiency"})
		if err != nil {
			t.Fatal(err)
		}
		if diff := pretty.Diff(tbl, want); len(diff) > 0 {
			t.Error(diff)
		}
		if _, err := ReadNUE(f, NUEColumns{Country: "nation", Value: "EFF", Sheet: "missing"}); err == nil {
			t.Error("expected an error for a missing worksheet")
		}
	})
}

func TestReadNUEErrors(t *testing.T) {
	for _, test := range []struct {
		name, contents, msg string
	}{
		{"zero", "Country,NUE\nUSA,0\n", "row 2 (USA): NUE must be > 0"},
		{"negative", "Country,NUE\nUSA,0.5\nFrance,-0.1\n", "row 3 (France): NUE must be > 0"},
		{"text", "Country,NUE\nUSA,high\n", `invalid NUE value "high"`},
		{"no name", "Country,NUE\n,0.5\n", "row 2 has no country name"},
		{"no column", "Country,Efficiency\nUSA,0.5\n", `missing NUE column "NUE"`},
		{"no rows", "Country,NUE\n", "no data rows"},
	} {
		t.Run(test.name, func(t *testing.T) {
			f := writeTestFile(t, "nue.csv", test.contents)
			_, err := ReadNUE(f, DefaultNUEColumns)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), test.msg) {
				t.Errorf("error %q should contain %q", err, test.msg)
			}
		})
	}
	if _, err := ReadNUE("nue.txt", DefaultNUEColumns); err == nil {
		t.Error("expected an error for an unsupported extension")
	}
}

func TestLoadAliases(t *testing.T) {
	f := writeTestFile(t, "aliases.toml", `version = 2

[aliases]
USA = "United States of America"
"Viet Nam" = "Vietnam"
`)
	a, err := LoadAliases(f)
	if err != nil {
		t.Fatal(err)
	}
	if a.Version != 2 {
		t.Errorf("version %d", a.Version)
	}
	for in, want := range map[string]string{
		"USA":       "United States of America",
		" Viet Nam": "Vietnam",
		"France":    "France",
	} {
		if got := a.Name(in); got != want {
			t.Errorf("Name(%q) = %q; want %q", in, got, want)
		}
	}

	f = writeTestFile(t, "aliases.toml", "[aliases]\nUSA = \"United States of America\"\n")
	if _, err := LoadAliases(f); err == nil {
		t.Error("expected an error for a missing version")
	}
}

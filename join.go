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
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Joined holds the production and NUE of a country present in both
// input tables.
type Joined struct {
	Country    string
	Production float64 // Mt
	NUE        float64
}

// JoinReport describes the rows that could not be joined.
type JoinReport struct {
	Matched int

	// DroppedNUE holds the names, after alias correction, of NUE rows
	// with no matching production row.
	DroppedNUE []string

	// DroppedProduction holds the names of production rows with no
	// matching NUE row.
	DroppedProduction []string
}

// normalizeName returns name in Unicode NFC form without surrounding
// white space.
func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Join performs an inner join of production and nue on country name.
// Names on both sides are normalized, and aliases are applied to the
// names in nue before matching. Only the first NUE row for each country
// is used. The output is in the order of production.
func Join(production, nue CountryTable, aliases AliasTable) ([]Joined, JoinReport) {
	var rep JoinReport
	nueIndex := make(map[string]int)
	for i, r := range aliases.Apply(nue) {
		n := normalizeName(r.Country)
		if _, ok := nueIndex[n]; ok {
			rep.DroppedNUE = append(rep.DroppedNUE, n)
			continue
		}
		nueIndex[n] = i
	}
	matched := make(map[string]bool)
	var o []Joined
	for _, p := range production {
		n := normalizeName(p.Country)
		i, ok := nueIndex[n]
		if !ok || matched[n] {
			rep.DroppedProduction = append(rep.DroppedProduction, n)
			continue
		}
		matched[n] = true
		o = append(o, Joined{Country: n, Production: p.Value, NUE: nue[i].Value})
	}
	for n := range nueIndex {
		if !matched[n] {
			rep.DroppedNUE = append(rep.DroppedNUE, n)
		}
	}
	sort.Strings(rep.DroppedNUE)
	sort.Strings(rep.DroppedProduction)
	rep.Matched = len(o)
	return o, rep
}

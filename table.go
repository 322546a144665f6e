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

import "sort"

// CountryValue is a value associated with a country.
type CountryValue struct {
	Country string
	Value   float64
}

// CountryTable holds one value per row, keyed by country name.
type CountryTable []CountryValue

// GroupSum returns a table with one row per distinct country, holding
// the sum of the values of every row for that country. Rows are in
// order of the first appearance of each country.
func (t CountryTable) GroupSum() CountryTable {
	index := make(map[string]int)
	var o CountryTable
	for _, r := range t {
		i, ok := index[r.Country]
		if !ok {
			index[r.Country] = len(o)
			o = append(o, r)
			continue
		}
		o[i].Value += r.Value
	}
	return o
}

// Sorted returns a copy of the table sorted by value, largest first.
// Ties are ordered by country name.
func (t CountryTable) Sorted() CountryTable {
	o := make(CountryTable, len(t))
	copy(o, t)
	sort.SliceStable(o, func(i, j int) bool {
		if o[i].Value != o[j].Value {
			return o[i].Value > o[j].Value
		}
		return o[i].Country < o[j].Country
	})
	return o
}

// Lookup returns the value for the given country and whether it exists.
func (t CountryTable) Lookup(country string) (float64, bool) {
	for _, r := range t {
		if r.Country == country {
			return r.Value, true
		}
	}
	return 0, false
}

// Total returns the sum of all values in the table.
func (t CountryTable) Total() float64 {
	var s float64
	for _, r := range t {
		s += r.Value
	}
	return s
}

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
	"sort"

	"github.com/ctessum/unit"
)

// kgPerMt is the number of kilograms in a million metric tons.
const kgPerMt = 1.e9

// NitrogenRecord is the nitrogen balance of wheat production in one
// country. All masses are in million metric tons (Mt); Production is
// the mass of wheat and the rest are masses of nitrogen.
type NitrogenRecord struct {
	Country    string
	Production float64
	NUE        float64

	// Output is the nitrogen removed in the harvested grain.
	Output float64

	// Input is the nitrogen applied, Output / NUE.
	Input float64

	// Loss is the applied nitrogen that is not harvested, Input - Output.
	Loss float64
}

// Balance calculates the nitrogen balance for each joined country given
// the nitrogen mass fraction of the grain, nContent.
func Balance(joined []Joined, nContent float64) ([]NitrogenRecord, error) {
	if !(nContent > 0 && nContent <= 1) {
		return nil, fmt.Errorf("wheatn: nitrogen content must be in (0, 1] but is %g", nContent)
	}
	frac := unit.New(nContent, unit.Dimless)
	o := make([]NitrogenRecord, len(joined))
	for i, j := range joined {
		if !(j.NUE > 0) {
			return nil, fmt.Errorf("wheatn: nitrogen balance for %s: NUE must be > 0 but is %g", j.Country, j.NUE)
		}
		prod := unit.New(j.Production*kgPerMt, unit.Kilogram)
		out := unit.Mul(prod, frac)
		in := unit.Div(out, unit.New(j.NUE, unit.Dimless))
		loss := unit.Sub(in, out)
		for _, u := range []*unit.Unit{out, in, loss} {
			if err := u.Check(unit.Kilogram); err != nil {
				return nil, fmt.Errorf("wheatn: nitrogen balance for %s: %v", j.Country, err)
			}
		}
		o[i] = NitrogenRecord{
			Country:    j.Country,
			Production: j.Production,
			NUE:        j.NUE,
			Output:     out.Value() / kgPerMt,
			Input:      in.Value() / kgPerMt,
			Loss:       loss.Value() / kgPerMt,
		}
	}
	return o, nil
}

// TopN returns the n records with the largest production, largest
// first. Ties are ordered by country name. If n is larger than the
// number of records, all records are returned.
func TopN(records []NitrogenRecord, n int) []NitrogenRecord {
	o := make([]NitrogenRecord, len(records))
	copy(o, records)
	sort.SliceStable(o, func(i, j int) bool {
		if o[i].Production != o[j].Production {
			return o[i].Production > o[j].Production
		}
		return o[i].Country < o[j].Country
	})
	if n < 0 {
		n = 0
	}
	if n < len(o) {
		o = o[:n]
	}
	return o
}

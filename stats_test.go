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
	"strings"
	"testing"
)

func TestCorrelate(t *testing.T) {
	var records []NitrogenRecord
	for i, p := range []float64{1, 2, 3, 4} {
		records = append(records, NitrogenRecord{
			Country:    string(rune('A' + i)),
			Production: p,
			Loss:       0.5*p + 1,
		})
	}
	c, err := Correlate(records)
	if err != nil {
		t.Fatal(err)
	}
	if c.N != 4 {
		t.Errorf("n = %d", c.N)
	}
	for _, v := range []struct {
		name      string
		got, want float64
	}{
		{"r", c.R, 1},
		{"slope", c.Slope, 0.5},
		{"intercept", c.Intercept, 1},
		{"r2", c.R2, 1},
	} {
		if different(v.got, v.want, 1e-10) {
			t.Errorf("%s: got %g, want %g", v.name, v.got, v.want)
		}
	}
	if !strings.HasPrefix(c.String(), "n=4 r=1 ") {
		t.Errorf("String() = %q", c.String())
	}

	records[3].Loss = -100
	c, err = Correlate(records)
	if err != nil {
		t.Fatal(err)
	}
	if c.R >= 0 {
		t.Errorf("r should be negative but is %g", c.R)
	}
}

func TestCorrelateErrors(t *testing.T) {
	if _, err := Correlate([]NitrogenRecord{{Production: 1, Loss: 1}}); err != ErrTooFewRecords {
		t.Errorf("one record: %v", err)
	}
	if _, err := Correlate(nil); err != ErrTooFewRecords {
		t.Errorf("no records: %v", err)
	}
	flat := []NitrogenRecord{{Production: 1, Loss: 2}, {Production: 1, Loss: 3}}
	if _, err := Correlate(flat); err == nil {
		t.Error("constant production should give an error")
	}
}

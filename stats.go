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
	"errors"
	"fmt"
	"math"

	"github.com/GaryBoone/GoStats/stats"
	"gonum.org/v1/gonum/stat"
)

// ErrTooFewRecords is returned by Correlate when there are not enough
// records to calculate a correlation.
var ErrTooFewRecords = errors.New("wheatn: at least two records are needed to calculate a correlation")

// Correlation describes the relationship between wheat production (x)
// and nitrogen loss (y) across countries.
type Correlation struct {
	N int

	// R is the Pearson correlation coefficient.
	R float64

	// Slope, Intercept, and R2 describe the least-squares fit of
	// loss against production.
	Slope, Intercept, R2 float64
}

func (c Correlation) String() string {
	return fmt.Sprintf("n=%d r=%.4g loss = %.4g × production + %.4g (R²=%.4g)",
		c.N, c.R, c.Slope, c.Intercept, c.R2)
}

// Correlate calculates the correlation between production and nitrogen
// loss in records.
func Correlate(records []NitrogenRecord) (Correlation, error) {
	if len(records) < 2 {
		return Correlation{}, ErrTooFewRecords
	}
	x := make([]float64, len(records))
	y := make([]float64, len(records))
	for i, r := range records {
		x[i], y[i] = r.Production, r.Loss
	}
	c := Correlation{N: len(records)}
	c.R = stat.Correlation(x, y, nil)
	if math.IsNaN(c.R) {
		return Correlation{}, fmt.Errorf("wheatn: correlation is undefined because production or loss does not vary")
	}
	c.Slope, c.Intercept, c.R2, _, _, _ = stats.LinearRegression(x, y)
	return c, nil
}

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
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// GridReader reads the grid with the given name from a file.
type GridReader func(file, name string) (*Grid, error)

// GridWriter writes a grid to a file.
type GridWriter func(file string, g *Grid) error

// ReadNetCDF reads variable name from NetCDF file, which should have
// been created by WriteNetCDF. If the file holds only one variable, it is
// read regardless of its name.
func ReadNetCDF(file, name string) (*Grid, error) {
	ff, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("wheatn: opening NetCDF file: %v", err)
	}
	defer ff.Close()
	f, err := cdf.Open(ff)
	if err != nil {
		return nil, fmt.Errorf("wheatn: reading NetCDF file %s: %v", file, err)
	}

	v := name
	vars := f.Header.Variables()
	found := false
	for _, vv := range vars {
		if vv == name {
			found = true
			break
		}
	}
	if !found {
		if len(vars) != 1 {
			return nil, fmt.Errorf("wheatn: NetCDF file %s has no variable %s", file, name)
		}
		v = vars[0]
	}

	attr := func(name string) (float64, error) {
		a, ok := f.Header.GetAttribute("", name).([]float64)
		if !ok || len(a) != 1 {
			return 0, fmt.Errorf("wheatn: NetCDF file %s is missing global attribute %s", file, name)
		}
		return a[0], nil
	}
	g := &Grid{Name: name}
	for _, a := range []struct {
		name string
		v    *float64
	}{{"x0", &g.X0}, {"y0", &g.Y0}, {"dx", &g.Dx}, {"dy", &g.Dy}} {
		if *a.v, err = attr(a.name); err != nil {
			return nil, err
		}
	}
	if sr, ok := f.Header.GetAttribute("", "sr").(string); ok {
		g.SR = sr
	}
	if u, ok := f.Header.GetAttribute(v, "units").(string); ok {
		g.Units = u
	}

	dims := f.Header.Lengths(v)
	if len(dims) != 2 {
		return nil, fmt.Errorf("wheatn: NetCDF variable %s in %s has %d dimensions; it should have 2", v, file, len(dims))
	}
	g.Ny, g.Nx = dims[0], dims[1]
	g.Data = sparse.ZerosDense(g.Ny, g.Nx)
	r := f.Reader(v, nil, nil)
	if _, err = r.Read(g.Data.Elements); err != nil {
		return nil, fmt.Errorf("wheatn: reading variable %s from %s: %v", v, file, err)
	}
	return g, nil
}

// WriteNetCDF writes g to a NetCDF file, using the grid's name as the
// variable name. Missing cells are written as NaN.
func WriteNetCDF(file string, g *Grid) error {
	h := cdf.NewHeader([]string{"y", "x"}, []int{g.Ny, g.Nx})
	h.AddAttribute("", "comment", "WheatN gridded data file")
	h.AddAttribute("", "x0", []float64{g.X0})
	h.AddAttribute("", "y0", []float64{g.Y0})
	h.AddAttribute("", "dx", []float64{g.Dx})
	h.AddAttribute("", "dy", []float64{g.Dy})
	if g.SR != "" {
		h.AddAttribute("", "sr", g.SR)
	}
	h.AddVariable(g.Name, []string{"y", "x"}, []float64{0})
	if g.Units != "" {
		h.AddAttribute(g.Name, "units", g.Units)
	}
	h.Define()

	ff, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("wheatn: creating NetCDF file: %v", err)
	}
	f, err := cdf.Create(ff, h) // writes the header to ff
	if err != nil {
		ff.Close()
		return fmt.Errorf("wheatn: writing NetCDF header to %s: %v", file, err)
	}
	end := f.Header.Lengths(g.Name)
	start := make([]int, len(end))
	w := f.Writer(g.Name, start, end)
	if _, err = w.Write(g.Data.Elements); err != nil {
		ff.Close()
		return fmt.Errorf("wheatn: writing variable %s to %s: %v", g.Name, file, err)
	}
	if err = cdf.UpdateNumRecs(ff); err != nil {
		ff.Close()
		return fmt.Errorf("wheatn: writing NetCDF file %s: %v", file, err)
	}
	return ff.Close()
}

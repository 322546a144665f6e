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

// Package geotiff reads and writes WheatN grids as GeoTIFF files using
// GDAL.
package geotiff

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"
	"github.com/lukeroth/gdal"
	"github.com/spatialmodel/wheatn"
)

// NoData is the value written to cells that are missing.
const NoData = -9999.

// Read reads the first band of a GeoTIFF file into a grid with the given
// name. Cells that equal the band's nodata value become missing. The
// file must be north-up: it may not be rotated or have rows ordered from
// south to north.
func Read(file, name string) (*wheatn.Grid, error) {
	ds, err := gdal.Open(file, gdal.ReadOnly)
	if err != nil {
		return nil, fmt.Errorf("geotiff: opening %s: %v", file, err)
	}
	defer ds.Close()

	gt := ds.GeoTransform()
	if gt[2] != 0 || gt[4] != 0 {
		return nil, fmt.Errorf("geotiff: %s is rotated, which is not supported", file)
	}
	if !(gt[1] > 0 && gt[5] < 0) {
		return nil, fmt.Errorf("geotiff: %s has cell size (%g, %g); it should be north-up with positive width", file, gt[1], gt[5])
	}
	nx, ny := ds.RasterXSize(), ds.RasterYSize()
	g := &wheatn.Grid{
		Name: name,
		Nx:   nx,
		Ny:   ny,
		X0:   gt[0],
		Y0:   gt[3],
		Dx:   gt[1],
		Dy:   -gt[5],
		SR:   ds.Projection(),
		Data: sparse.ZerosDense(ny, nx),
	}

	band := ds.RasterBand(1)
	if err := band.IO(gdal.Read, 0, 0, nx, ny, g.Data.Elements, nx, ny, 0, 0); err != nil {
		return nil, fmt.Errorf("geotiff: reading %s: %v", file, err)
	}
	if nd, ok := band.NoDataValue(); ok {
		for i, v := range g.Data.Elements {
			if v == nd || (math.IsNaN(nd) && math.IsNaN(v)) {
				g.Data.Elements[i] = math.NaN()
			}
		}
	}
	return g, nil
}

// Write writes g to a single-band Float64 GeoTIFF file. Missing cells
// are written as NoData.
func Write(file string, g *wheatn.Grid) error {
	driver, err := gdal.GetDriverByName("GTiff")
	if err != nil {
		return fmt.Errorf("geotiff: %v", err)
	}
	ds := driver.Create(file, g.Nx, g.Ny, 1, gdal.Float64, nil)
	defer ds.Close()

	if err := ds.SetGeoTransform([6]float64{g.X0, g.Dx, 0, g.Y0, 0, -g.Dy}); err != nil {
		return fmt.Errorf("geotiff: setting geotransform of %s: %v", file, err)
	}
	if g.SR != "" {
		if err := ds.SetProjection(g.SR); err != nil {
			return fmt.Errorf("geotiff: setting projection of %s: %v", file, err)
		}
	}

	buf := make([]float64, len(g.Data.Elements))
	for i, v := range g.Data.Elements {
		if math.IsNaN(v) {
			v = NoData
		}
		buf[i] = v
	}
	band := ds.RasterBand(1)
	if err := band.SetNoDataValue(NoData); err != nil {
		return fmt.Errorf("geotiff: setting nodata value of %s: %v", file, err)
	}
	if err := band.IO(gdal.Write, 0, 0, g.Nx, g.Ny, buf, g.Nx, g.Ny, 0, 0); err != nil {
		return fmt.Errorf("geotiff: writing %s: %v", file, err)
	}
	return nil
}

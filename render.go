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
	"image"
	"image/color"
	"math"
	"os"

	"github.com/ctessum/geom/carto"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"
)

// Map layout.
const (
	mapWidth     = 8 * vg.Inch
	legendHeight = mapWidth * 0.1067
	titleHeight  = 0.3 * vg.Inch
)

// DrawLogMap draws the base-10 logarithm of g as a raster map with a
// color scale legend, overlays the outlines of regions as vectors, and
// writes the result to a PDF file. Non-positive cells are handled
// according to policy.
func DrawLogMap(file string, g *Grid, outlines Regions, policy LogPolicy, title string) error {
	lg, err := Log10(g, policy, "log10("+g.Name+")")
	if err != nil {
		return err
	}
	if lg.ValidCount() == 0 {
		return fmt.Errorf("wheatn: map of %s: no cells with values > 0", g.Name)
	}

	b := g.Bounds()
	mapHeight := mapWidth * vg.Length((b.Max.Y-b.Min.Y)/(b.Max.X-b.Min.X))
	figHeight := mapHeight + legendHeight + titleHeight
	pdf := vgpdf.New(mapWidth, figHeight)
	c := draw.New(pdf)

	cMap := draw.Crop(c, 0, 0, legendHeight, -titleHeight)
	cLegend := draw.Crop(c, 0, 0, 0, legendHeight-figHeight)
	m := carto.NewCanvas(b.Max.Y, b.Min.Y, b.Max.X, b.Min.X, cMap)

	cmap := carto.NewColorMap(carto.Linear)
	cmap.Font = plot.DefaultFont
	cmap.LegendWidth = mapWidth
	cmap.LegendHeight = legendHeight
	cmap.LineWidth = 0.5
	cmap.FontSize = 8
	var vals []float64
	for _, v := range lg.Data.Elements {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	cmap.AddArray(vals)
	cmap.Set()

	m.DrawImage(m.Rectangle, cellImage(lg, cmap))

	var glyph draw.GlyphStyle
	outline := draw.LineStyle{Color: color.NRGBA{A: 255}, Width: 0.2 * vg.Millimeter}
	for _, r := range outlines {
		m.DrawVector(r.Polygonal, color.NRGBA{}, outline, glyph)
	}

	font, err := vg.MakeFont(plot.DefaultFont, vg.Points(12))
	if err != nil {
		return fmt.Errorf("wheatn: map of %s: %v", g.Name, err)
	}
	ts := draw.TextStyle{Color: color.Black, Font: font, XAlign: -0.5}
	c.FillText(ts, vg.Point{X: (c.Min.X + c.Max.X) / 2, Y: c.Max.Y - titleHeight*0.8}, title)

	if err = cmap.Legend(&cLegend, fmt.Sprintf("log10 %s (%s)", g.Name, g.Units)); err != nil {
		return fmt.Errorf("wheatn: map legend for %s: %v", g.Name, err)
	}
	return writePDF(file, pdf)
}

// cellImage returns an image with one pixel per grid cell, colored by
// cmap, with missing cells left transparent. vgpdf draws the first image
// row at the bottom of the target rectangle, so the northernmost grid row
// is stored last.
func cellImage(g *Grid, cmap *carto.ColorMap) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.Nx, g.Ny))
	for row := 0; row < g.Ny; row++ {
		for col := 0; col < g.Nx; col++ {
			if g.Valid(row, col) {
				img.SetNRGBA(col, g.Ny-1-row, cmap.GetColor(g.Get(row, col)))
			}
		}
	}
	return img
}

func writePDF(file string, c *vgpdf.Canvas) error {
	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("wheatn: creating %s: %v", file, err)
	}
	if _, err = c.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("wheatn: writing %s: %v", file, err)
	}
	return f.Close()
}

// DrawBarChart draws a stacked horizontal bar chart of the nitrogen
// output and loss of each record, with the first record at the top,
// and writes it to a PDF file.
func DrawBarChart(file string, records []NitrogenRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("wheatn: bar chart: no records")
	}
	p, err := plot.New()
	if err != nil {
		return fmt.Errorf("wheatn: bar chart: %v", err)
	}
	p.Title.Text = "Nitrogen in wheat production"
	p.X.Label.Text = "Nitrogen (Mt N)"

	n := len(records)
	names := make([]string, n)
	output := make(plotter.Values, n)
	loss := make(plotter.Values, n)
	for i, r := range records {
		j := n - 1 - i
		names[j] = r.Country
		output[j] = r.Output
		loss[j] = r.Loss
	}

	const barWidth = 0.5 * vg.Centimeter
	outBars, err := plotter.NewBarChart(output, barWidth)
	if err != nil {
		return fmt.Errorf("wheatn: bar chart: %v", err)
	}
	outBars.Horizontal = true
	outBars.LineStyle.Width = 0
	outBars.Color = color.RGBA{R: 26, G: 150, B: 65, A: 255}

	lossBars, err := plotter.NewBarChart(loss, barWidth)
	if err != nil {
		return fmt.Errorf("wheatn: bar chart: %v", err)
	}
	lossBars.Horizontal = true
	lossBars.LineStyle.Width = 0
	lossBars.Color = color.RGBA{R: 215, G: 25, B: 28, A: 255}
	lossBars.StackOn(outBars)

	p.Add(outBars, lossBars)
	p.Legend.Add("Output (harvested)", outBars)
	p.Legend.Add("Loss", lossBars)
	p.Legend.Top = true
	p.NominalY(names...)

	height := vg.Length(n)*0.3*vg.Inch + 1.5*vg.Inch
	if err := p.Save(7*vg.Inch, height, file); err != nil {
		return fmt.Errorf("wheatn: writing %s: %v", file, err)
	}
	return nil
}

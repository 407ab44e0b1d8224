// Package monitor renders the analysis results for visual inspection: a PNG
// map of the aggregated partition and an HTML report of daily coverage.
package monitor

import (
	"fmt"
	"image/color"

	"github.com/peterstace/simplefeatures/geom"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/fieldwork-data/coverage.report/internal/fieldops"
)

// passPalette colors cells by pass count, cool to hot. Counts beyond the
// palette reuse the last color.
var passPalette = []color.RGBA{
	{R: 0x2b, G: 0x83, B: 0xba, A: 0xb0},
	{R: 0xab, G: 0xdd, B: 0xa4, A: 0xb0},
	{R: 0xff, G: 0xff, B: 0xbf, A: 0xb0},
	{R: 0xfd, G: 0xae, B: 0x61, A: 0xb0},
	{R: 0xd7, G: 0x19, B: 0x1c, A: 0xb0},
}

func passColor(passCount int) color.RGBA {
	if passCount < 1 {
		passCount = 1
	}
	if passCount > len(passPalette) {
		passCount = len(passPalette)
	}
	return passPalette[passCount-1]
}

// PlotPartition renders the aggregated partition as a PNG map, one filled
// polygon per cell, colored by pass count. Coordinates are the planar frame
// the cells were aggregated in.
func PlotPartition(cells []fieldops.Cell, title, path string) error {
	if len(cells) == 0 {
		return fmt.Errorf("no cells to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "East (m)"
	p.Y.Label.Text = "North (m)"

	legendSeen := make(map[int]bool)
	for _, cell := range cells {
		for _, sub := range fieldops.CollectPolygons(cell.Polygon) {
			ring, err := exteriorRing(sub)
			if err != nil {
				return err
			}
			poly, err := plotter.NewPolygon(ring)
			if err != nil {
				return fmt.Errorf("failed to build cell polygon: %w", err)
			}
			poly.Color = passColor(cell.PassCount())
			poly.LineStyle.Color = color.RGBA{A: 0xff}
			poly.LineStyle.Width = vg.Points(0.5)
			p.Add(poly)

			if !legendSeen[cell.PassCount()] {
				legendSeen[cell.PassCount()] = true
				p.Legend.Add(fmt.Sprintf("%d passes", cell.PassCount()), poly)
			}
		}
	}

	if err := p.Save(10*vg.Inch, 10*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save partition plot: %w", err)
	}
	return nil
}

// exteriorRing converts a polygon's outer ring to plottable XYs.
func exteriorRing(g geom.Geometry) (plotter.XYs, error) {
	if g.Type() != geom.TypePolygon {
		return nil, fmt.Errorf("expected polygon, got %s", g.Type())
	}
	seq := g.MustAsPolygon().ExteriorRing().Coordinates()
	ring := make(plotter.XYs, seq.Length())
	for i := 0; i < seq.Length(); i++ {
		xy := seq.GetXY(i)
		ring[i] = plotter.XY{X: xy.X, Y: xy.Y}
	}
	return ring, nil
}

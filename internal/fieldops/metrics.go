package fieldops

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/peterstace/simplefeatures/geom"
	"gonum.org/v1/gonum/stat"

	"github.com/fieldwork-data/coverage.report/internal/geoproj"
)

// EquipmentMetrics are the coverage totals derived from one equipment's
// zones over an analysis period.
type EquipmentMetrics struct {
	// TotalHectares counts every worked hectare once per day it was worked:
	// the sum over days of the day's zone-union surface.
	TotalHectares float64

	// RelativeHectares discounts repeated passes: each partition cell
	// contributes its surface divided by its pass count, so ground covered
	// on n days counts as one hectare spread across them.
	RelativeHectares float64

	// DistanceBetweenZonesMeters sums the straight-line distance between the
	// zone-union centroids of consecutive worked days.
	DistanceBetweenZonesMeters float64
}

// ComputeMetrics derives the equipment totals from the per-day zones and the
// aggregated partition. Geometries are planar meters; days with no zones
// contribute nothing and break the centroid chain.
func ComputeMetrics(daily map[string][]geom.Geometry, cells []Cell) (EquipmentMetrics, error) {
	var m EquipmentMetrics

	var prevCentroid *orb.Point
	for _, date := range SortedDates(daily) {
		zones := daily[date]
		if len(zones) == 0 {
			prevCentroid = nil
			continue
		}
		union, err := UnionAll(zones)
		if err != nil {
			return EquipmentMetrics{}, fmt.Errorf("union of %s zones: %w", date, err)
		}
		m.TotalHectares += union.Area() / geoproj.SquareMetersPerHectare

		ctr, ok := Centroid(union)
		if !ok {
			prevCentroid = nil
			continue
		}
		if prevCentroid != nil {
			m.DistanceBetweenZonesMeters += planarDistance(*prevCentroid, ctr)
		}
		c := ctr
		prevCentroid = &c
	}

	m.RelativeHectares = RelativeHectares(cells)
	return m, nil
}

// RelativeHectares is the pass-discounted surface of a partition: the sum of
// each cell's surface divided by its pass count.
func RelativeHectares(cells []Cell) float64 {
	var sum float64
	for _, c := range cells {
		if n := c.PassCount(); n > 0 {
			sum += c.Polygon.Area() / float64(n)
		}
	}
	return sum / geoproj.SquareMetersPerHectare
}

// SurfaceStats summarizes the cell surface distribution of a partition.
type SurfaceStats struct {
	Cells        int
	MeanHa       float64
	StdDevHa     float64
	MedianHa     float64
	MaxPassCount int
}

// ComputeSurfaceStats returns distribution statistics over the partition's
// cell surfaces. The zero value is returned for an empty partition.
func ComputeSurfaceStats(cells []Cell) SurfaceStats {
	if len(cells) == 0 {
		return SurfaceStats{}
	}

	surfaces := make([]float64, len(cells))
	maxPass := 0
	for i, c := range cells {
		surfaces[i] = c.SurfaceHa()
		if n := c.PassCount(); n > maxPass {
			maxPass = n
		}
	}
	sort.Float64s(surfaces)

	s := SurfaceStats{
		Cells:        len(cells),
		MeanHa:       stat.Mean(surfaces, nil),
		MedianHa:     stat.Quantile(0.5, stat.Empirical, surfaces, nil),
		MaxPassCount: maxPass,
	}
	if len(surfaces) > 1 {
		s.StdDevHa = stat.StdDev(surfaces, nil)
	}
	return s
}

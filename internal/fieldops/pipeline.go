package fieldops

import (
	"github.com/paulmach/orb"
	"github.com/peterstace/simplefeatures/geom"

	"github.com/fieldwork-data/coverage.report/internal/geoproj"
	"github.com/fieldwork-data/coverage.report/internal/monitoring"
)

// DayResult is the outcome of analyzing one equipment-day: the accepted
// worked-area polygons, the reconstructed transit tracks and the indexes of
// the fixes that stayed outside every cluster. Geometries and track lines
// are in the planar frame of the projection the day was analyzed under.
type DayResult struct {
	Date    string
	Zones   []geom.Geometry
	Tracks  []TrackLine
	Transit []int
}

// AnalyzeDay runs the full per-day computation: density clustering of the
// day's fixes, concave-hull extraction per cluster, and transit track
// reconstruction from the leftover fixes.
//
// Days with fewer than MinDayPoints fixes are skipped entirely: no zones and
// no tracks, the fixes are only labeled transit. Clusters whose hull falls
// below the surface floor produce no zone either, but their fixes stay
// in-zone and do not leak into tracks. The function is deterministic for a
// fixed input.
func AnalyzeDay(date string, day []Position, proj geoproj.Projection, p Params) DayResult {
	res := DayResult{Date: date}
	if len(day) == 0 {
		return res
	}

	if len(day) < MinDayPoints {
		res.Transit = make([]int, len(day))
		for i := range day {
			res.Transit[i] = i
		}
		return res
	}

	planar := make([]orb.Point, len(day))
	for i, pos := range day {
		planar[i] = proj.Forward(orb.Point{pos.Longitude, pos.Latitude})
	}

	clusters, noise := DBSCAN(planar, p.EpsMeters, MinClusterNeighbors)
	res.Transit = noise

	for _, members := range clusters {
		pts := make([]orb.Point, len(members))
		for i, idx := range members {
			pts[i] = planar[idx]
		}
		shapes := ExtractShapes(pts, p)
		if len(shapes) == 0 {
			monitoring.Logf("pipeline: %s cluster of %d fixes produced no zone", date, len(members))
			continue
		}
		res.Zones = append(res.Zones, shapes...)
	}

	res.Tracks = ReconstructTracks(day, planar, res.Transit, res.Zones, p)
	return res
}

// DailyClusters converts a day's zones to the dated inputs aggregation
// expects, one input per polygon.
func DailyClusters(results []DayResult) []ZoneInput {
	var inputs []ZoneInput
	for _, r := range results {
		for _, z := range r.Zones {
			inputs = append(inputs, ZoneInput{Dates: []string{r.Date}, Polygon: z})
		}
	}
	return inputs
}

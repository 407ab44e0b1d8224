package fieldops

import (
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
	"github.com/peterstace/simplefeatures/geom"

	"github.com/fieldwork-data/coverage.report/internal/monitoring"
)

// TrackLine is one reconstructed transit polyline: the path the equipment
// drove between worked zones within a day. Coordinates are planar meters;
// the caller projects back and assigns the persistent track id.
type TrackLine struct {
	Start       time.Time
	End         time.Time
	Line        orb.LineString
	PositionIDs []int64 // fixes consumed by the track, in time order
}

// ReconstructTracks builds the transit tracks of one day from the fixes that
// clustering left outside every zone.
//
// day and planar are the day's time-ordered fixes and their planar
// coordinates; transit holds the indexes DBSCAN flagged as noise. A run of
// consecutive transit fixes becomes one track; runs are split where an
// in-zone fix interrupts them or where the time gap between consecutive
// fixes exceeds TrackGap. Runs shorter than two fixes are dropped.
//
// When a run borders an in-zone fix, the polyline is extended to the point
// where the straight segment toward that fix crosses the zone boundary, so
// tracks start and end at zone edges rather than somewhere inside. If the
// crossing cannot be computed the in-zone fix itself is used.
func ReconstructTracks(day []Position, planar []orb.Point, transit []int, zones []geom.Geometry, p Params) []TrackLine {
	if len(transit) == 0 {
		return nil
	}

	idxs := append([]int{}, transit...)
	sort.Ints(idxs)
	isTransit := make(map[int]bool, len(idxs))
	for _, i := range idxs {
		isTransit[i] = true
	}

	var tracks []TrackLine
	for start := 0; start < len(idxs); {
		end := start + 1
		for end < len(idxs) {
			prev, cur := idxs[end-1], idxs[end]
			if cur != prev+1 {
				break
			}
			if day[cur].Timestamp.Sub(day[prev].Timestamp) > p.TrackGap {
				break
			}
			end++
		}

		run := idxs[start:end]
		start = end
		if len(run) < 2 {
			continue
		}

		line := buildTrackLine(day, planar, run, isTransit, zones)
		if p.TrackSimplifyMeters > 0 && len(line) > 2 {
			line = simplify.DouglasPeucker(p.TrackSimplifyMeters).LineString(line)
		}

		ids := make([]int64, len(run))
		for i, idx := range run {
			ids[i] = day[idx].ID
		}
		tracks = append(tracks, TrackLine{
			Start:       day[run[0]].Timestamp,
			End:         day[run[len(run)-1]].Timestamp,
			Line:        line,
			PositionIDs: ids,
		})
	}
	return tracks
}

// buildTrackLine assembles the polyline of one transit run, clipping both
// ends to the neighboring zone boundaries where an in-zone anchor exists.
func buildTrackLine(day []Position, planar []orb.Point, run []int, isTransit map[int]bool, zones []geom.Geometry) orb.LineString {
	line := make(orb.LineString, 0, len(run)+2)
	appendPt := func(pt orb.Point) {
		if n := len(line); n > 0 && line[n-1] == pt {
			return
		}
		line = append(line, pt)
	}

	first, last := run[0], run[len(run)-1]

	if prev := first - 1; prev >= 0 && !isTransit[prev] {
		appendPt(boundaryCrossing(planar[prev], planar[first], zones))
	}
	for _, idx := range run {
		appendPt(planar[idx])
	}
	if next := last + 1; next < len(day) && !isTransit[next] {
		appendPt(boundaryCrossing(planar[next], planar[last], zones))
	}
	return line
}

// boundaryCrossing finds where the segment from an in-zone anchor to an
// outside fix crosses the boundary of the zone containing the anchor. Among
// multiple crossings the one nearest the outside fix wins. Falls back to the
// anchor itself when no crossing can be determined.
func boundaryCrossing(inner, outer orb.Point, zones []geom.Geometry) orb.Point {
	seg, err := SegmentGeometry(inner, outer)
	if err != nil {
		return inner
	}
	innerPt, err := PointGeometry(inner[0], inner[1])
	if err != nil {
		return inner
	}

	best := inner
	bestDist := planarDistance(inner, outer)
	for _, zone := range zones {
		if !geom.Intersects(zone, innerPt) {
			continue
		}
		cross, err := geom.Intersection(seg, zone.Boundary())
		if err != nil {
			monitoring.Logf("tracks: boundary intersection discarded: %v", err)
			continue
		}
		for _, pt := range collectCoordinates(cross) {
			if d := planarDistance(pt, outer); d < bestDist {
				best, bestDist = pt, d
			}
		}
	}
	return best
}

// collectCoordinates flattens a geometry to its coordinate points. The
// segment/boundary intersection can come back as a point, several points, or
// a shared linear piece when the segment runs along the boundary.
func collectCoordinates(g geom.Geometry) []orb.Point {
	var pts []orb.Point
	switch g.Type() {
	case geom.TypePoint:
		if xy, ok := g.MustAsPoint().XY(); ok {
			pts = append(pts, orb.Point{xy.X, xy.Y})
		}
	case geom.TypeMultiPoint:
		mp := g.MustAsMultiPoint()
		for i := 0; i < mp.NumPoints(); i++ {
			if xy, ok := mp.PointN(i).XY(); ok {
				pts = append(pts, orb.Point{xy.X, xy.Y})
			}
		}
	case geom.TypeLineString:
		seq := g.MustAsLineString().Coordinates()
		for i := 0; i < seq.Length(); i++ {
			xy := seq.GetXY(i)
			pts = append(pts, orb.Point{xy.X, xy.Y})
		}
	case geom.TypeMultiLineString:
		ml := g.MustAsMultiLineString()
		for i := 0; i < ml.NumLineStrings(); i++ {
			pts = append(pts, collectCoordinates(ml.LineStringN(i).AsGeometry())...)
		}
	case geom.TypeGeometryCollection:
		gc := g.MustAsGeometryCollection()
		for i := 0; i < gc.NumGeometries(); i++ {
			pts = append(pts, collectCoordinates(gc.GeometryN(i))...)
		}
	}
	return pts
}

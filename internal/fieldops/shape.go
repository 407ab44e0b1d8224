package fieldops

import (
	"math"

	"github.com/fogleman/delaunay"
	"github.com/paulmach/orb"
	"github.com/peterstace/simplefeatures/geom"

	"github.com/fieldwork-data/coverage.report/internal/geoproj"
	"github.com/fieldwork-data/coverage.report/internal/monitoring"
)

// ExtractShapes computes the alpha shape (concave hull) of a cluster's
// planar points and returns the polygons whose surface meets minSurfaceHa.
//
// A bounded joggle is applied first so duplicate or collinear fixes cannot
// produce a degenerate triangulation. The hull of the filtered triangles can
// come back as a polygon, several disjoint polygons, or something degenerate
// (point, line, empty); degenerate results and undersized polygons are
// dropped silently, never surfaced as errors.
func ExtractShapes(points []orb.Point, p Params) []geom.Geometry {
	if len(points) < MinDayPoints {
		return nil
	}

	jittered := geoproj.Joggle(points, p.JitterScale)

	dpts := make([]delaunay.Point, len(jittered))
	for i, pt := range jittered {
		dpts[i] = delaunay.Point{X: pt[0], Y: pt[1]}
	}
	tri, err := delaunay.Triangulate(dpts)
	if err != nil {
		// Still-degenerate configuration: treat like a non-polygonal hull.
		monitoring.Logf("shape: triangulation discarded (%d points): %v", len(points), err)
		return nil
	}

	hull, ok := alphaFilteredUnion(tri, 1/p.Alpha)
	if !ok {
		return nil
	}

	minArea := p.MinSurfaceHa * geoproj.SquareMetersPerHectare
	var accepted []geom.Geometry
	for _, poly := range CollectPolygons(hull) {
		if poly.Area() >= minArea {
			accepted = append(accepted, poly)
		}
	}
	return accepted
}

// alphaFilteredUnion unions the Delaunay triangles whose circumradius is
// below maxRadius. This is the classic alpha-shape construction: the
// concavity parameter alpha admits triangles with circumradius < 1/alpha.
func alphaFilteredUnion(tri *delaunay.Triangulation, maxRadius float64) (geom.Geometry, bool) {
	var acc geom.Geometry
	found := false

	ts := tri.Triangles
	for i := 0; i+2 < len(ts); i += 3 {
		a := tri.Points[ts[i]]
		b := tri.Points[ts[i+1]]
		c := tri.Points[ts[i+2]]
		if circumradius(a, b, c) >= maxRadius {
			continue
		}

		triangle, err := PolygonFromPoints([]orb.Point{{a.X, a.Y}, {b.X, b.Y}, {c.X, c.Y}})
		if err != nil {
			continue
		}
		if !found {
			acc = triangle
			found = true
			continue
		}
		merged, err := geom.Union(acc, triangle)
		if err != nil {
			monitoring.Logf("shape: triangle union discarded: %v", err)
			continue
		}
		acc = merged
	}

	return acc, found
}

// circumradius returns the circumscribed-circle radius of a triangle, or
// +Inf for (near-)degenerate triangles so they are always filtered out.
func circumradius(a, b, c delaunay.Point) float64 {
	la := math.Hypot(b.X-a.X, b.Y-a.Y)
	lb := math.Hypot(c.X-b.X, c.Y-b.Y)
	lc := math.Hypot(a.X-c.X, a.Y-c.Y)

	// Twice the signed area via the cross product.
	cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	area2 := math.Abs(cross)
	if area2 == 0 {
		return math.Inf(1)
	}
	return la * lb * lc / (2 * area2)
}

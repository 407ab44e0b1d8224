package fieldops

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/peterstace/simplefeatures/geom"
)

// Geometry construction goes through WKT so every shape passes the library's
// parser/validator; invalid rings surface as errors instead of corrupting
// later set operations.

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PolygonFromPoints builds a polygon geometry from an exterior ring given as
// planar points. The ring is closed automatically if needed.
func PolygonFromPoints(pts []orb.Point) (geom.Geometry, error) {
	if len(pts) < 3 {
		return geom.Geometry{}, fmt.Errorf("polygon needs at least 3 points, got %d", len(pts))
	}
	var sb strings.Builder
	sb.WriteString("POLYGON((")
	for i, pt := range pts {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(formatCoord(pt[0]))
		sb.WriteString(" ")
		sb.WriteString(formatCoord(pt[1]))
	}
	if pts[0] != pts[len(pts)-1] {
		sb.WriteString(",")
		sb.WriteString(formatCoord(pts[0][0]))
		sb.WriteString(" ")
		sb.WriteString(formatCoord(pts[0][1]))
	}
	sb.WriteString("))")
	return geom.UnmarshalWKT(sb.String())
}

// PointGeometry builds a point geometry from planar coordinates.
func PointGeometry(x, y float64) (geom.Geometry, error) {
	return geom.UnmarshalWKT("POINT(" + formatCoord(x) + " " + formatCoord(y) + ")")
}

// SegmentGeometry builds a two-point line geometry.
func SegmentGeometry(a, b orb.Point) (geom.Geometry, error) {
	return geom.UnmarshalWKT("LINESTRING(" +
		formatCoord(a[0]) + " " + formatCoord(a[1]) + "," +
		formatCoord(b[0]) + " " + formatCoord(b[1]) + ")")
}

// CollectPolygons walks a geometry and returns its polygonal members.
// Points, lines and empty members are skipped. This is the exhaustive
// handling of the concave-hull result variants: Polygon and MultiPolygon
// contribute, everything degenerate contributes nothing.
func CollectPolygons(g geom.Geometry) []geom.Geometry {
	var polys []geom.Geometry
	switch g.Type() {
	case geom.TypePolygon:
		if !g.IsEmpty() {
			polys = append(polys, g)
		}
	case geom.TypeMultiPolygon:
		mp := g.MustAsMultiPolygon()
		for i := 0; i < mp.NumPolygons(); i++ {
			sub := mp.PolygonN(i).AsGeometry()
			if !sub.IsEmpty() {
				polys = append(polys, sub)
			}
		}
	case geom.TypeGeometryCollection:
		gc := g.MustAsGeometryCollection()
		for i := 0; i < gc.NumGeometries(); i++ {
			polys = append(polys, CollectPolygons(gc.GeometryN(i))...)
		}
	}
	return polys
}

// PolygonalOnly reduces a geometry to its polygonal content, dropping any
// lower-dimensional artifacts that exact overlay operations can produce at
// shared boundaries. The second return is false when nothing polygonal
// remains.
func PolygonalOnly(g geom.Geometry) (geom.Geometry, bool, error) {
	switch g.Type() {
	case geom.TypePolygon, geom.TypeMultiPolygon:
		if g.IsEmpty() {
			return geom.Geometry{}, false, nil
		}
		return g, true, nil
	}
	polys := CollectPolygons(g)
	if len(polys) == 0 {
		return geom.Geometry{}, false, nil
	}
	merged, err := UnionAll(polys)
	if err != nil {
		return geom.Geometry{}, false, err
	}
	if merged.IsEmpty() {
		return geom.Geometry{}, false, nil
	}
	return merged, true, nil
}

// UnionAll folds the union of all the given geometries.
func UnionAll(gs []geom.Geometry) (geom.Geometry, error) {
	if len(gs) == 0 {
		return geom.Geometry{}, nil
	}
	acc := gs[0]
	for _, g := range gs[1:] {
		var err error
		acc, err = geom.Union(acc, g)
		if err != nil {
			return geom.Geometry{}, fmt.Errorf("union: %w", err)
		}
	}
	return acc, nil
}

// planarDistance is the Euclidean distance between two planar points.
func planarDistance(a, b orb.Point) float64 {
	return math.Hypot(b[0]-a[0], b[1]-a[1])
}

// Centroid returns the centroid of a geometry as a planar point. The second
// return is false for empty geometries.
func Centroid(g geom.Geometry) (orb.Point, bool) {
	xy, ok := g.Centroid().XY()
	if !ok {
		return orb.Point{}, false
	}
	return orb.Point{xy.X, xy.Y}, true
}

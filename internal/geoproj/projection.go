// Package geoproj converts between WGS84 geographic coordinates and a local
// planar frame measured in meters. The analysis pipeline clusters, hulls and
// clips in the planar frame and only converts back to geographic coordinates
// at the persistence boundary.
package geoproj

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/peterstace/simplefeatures/geom"
)

// MeanEarthRadiusMeters is the IUGG mean earth radius.
const MeanEarthRadiusMeters = 6371008.8

// SquareMetersPerHectare converts planar areas to hectares.
const SquareMetersPerHectare = 1e4

// Projection is a local equirectangular projection anchored at a reference
// point. Near the anchor it preserves distances to well under GPS accuracy,
// which is what the clustering radius and surface thresholds rely on.
// Spherical Mercator would inflate distances by 1/cos(lat) away from the
// equator, so it is not used here.
type Projection struct {
	lat0Rad float64
	lon0Rad float64
	cosLat0 float64
}

// NewProjection creates a projection anchored at the given geographic point
// (longitude, latitude in degrees).
func NewProjection(origin orb.Point) Projection {
	lat0 := origin.Lat() * math.Pi / 180
	return Projection{
		lat0Rad: lat0,
		lon0Rad: origin.Lon() * math.Pi / 180,
		cosLat0: math.Cos(lat0),
	}
}

// Forward converts a geographic point (lon, lat degrees) to planar meters.
func (p Projection) Forward(pt orb.Point) orb.Point {
	lonRad := pt.Lon() * math.Pi / 180
	latRad := pt.Lat() * math.Pi / 180
	x := MeanEarthRadiusMeters * p.cosLat0 * (lonRad - p.lon0Rad)
	y := MeanEarthRadiusMeters * (latRad - p.lat0Rad)
	return orb.Point{x, y}
}

// Inverse converts a planar point in meters back to geographic degrees.
func (p Projection) Inverse(pt orb.Point) orb.Point {
	lonRad := pt[0]/(MeanEarthRadiusMeters*p.cosLat0) + p.lon0Rad
	latRad := pt[1]/MeanEarthRadiusMeters + p.lat0Rad
	return orb.Point{lonRad * 180 / math.Pi, latRad * 180 / math.Pi}
}

// ForwardXY is Forward in terms of simplefeatures coordinates, suitable for
// Geometry.TransformXY.
func (p Projection) ForwardXY(xy geom.XY) geom.XY {
	pt := p.Forward(orb.Point{xy.X, xy.Y})
	return geom.XY{X: pt[0], Y: pt[1]}
}

// InverseXY is Inverse in terms of simplefeatures coordinates.
func (p Projection) InverseXY(xy geom.XY) geom.XY {
	pt := p.Inverse(orb.Point{xy.X, xy.Y})
	return geom.XY{X: pt[0], Y: pt[1]}
}

// ForwardGeometry projects a geographic geometry into the planar frame.
func (p Projection) ForwardGeometry(g geom.Geometry) (geom.Geometry, error) {
	return g.TransformXY(p.ForwardXY), nil
}

// InverseGeometry projects a planar geometry back to geographic coordinates.
func (p Projection) InverseGeometry(g geom.Geometry) (geom.Geometry, error) {
	return g.TransformXY(p.InverseXY), nil
}

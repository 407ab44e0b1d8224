package geoproj

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/paulmach/orb"
)

// Joggle returns a copy of points with a bounded pseudo-random offset in
// [-scale, scale) added to each coordinate. Duplicate and collinear fixes are
// common in GPS traces (equipment idling, straight passes) and make the
// concave-hull triangulation degenerate; the joggle breaks those ties.
//
// The random source is seeded from the point set itself, so re-running the
// pipeline over unchanged input reproduces identical shapes.
func Joggle(points []orb.Point, scale float64) []orb.Point {
	if len(points) == 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(joggleSeed(points)))
	out := make([]orb.Point, len(points))
	for i, pt := range points {
		out[i] = orb.Point{
			pt[0] + (rng.Float64()*2-1)*scale,
			pt[1] + (rng.Float64()*2-1)*scale,
		}
	}
	return out
}

// joggleSeed derives a stable seed from the coordinate bits of the input.
func joggleSeed(points []orb.Point) int64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, pt := range points {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(pt[0]))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(pt[1]))
		h.Write(buf[:])
	}
	return int64(h.Sum64())
}

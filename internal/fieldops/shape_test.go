package fieldops

import (
	"math"
	"testing"

	"github.com/fogleman/delaunay"
	"github.com/paulmach/orb"
)

// fieldGrid builds an n x n grid of fixes spaced step meters apart.
func fieldGrid(cx, cy float64, n int, step float64) []orb.Point {
	var pts []orb.Point
	for dx := 0; dx < n; dx++ {
		for dy := 0; dy < n; dy++ {
			pts = append(pts, orb.Point{cx + float64(dx)*step, cy + float64(dy)*step})
		}
	}
	return pts
}

func TestExtractShapesSquareField(t *testing.T) {
	// 80x80 m worked square: 0.64 ha, comfortably above the 0.1 ha floor.
	pts := fieldGrid(0, 0, 5, 20)

	shapes := ExtractShapes(pts, DefaultParams())
	if len(shapes) != 1 {
		t.Fatalf("expected 1 polygon, got %d", len(shapes))
	}

	area := shapes[0].Area()
	if math.Abs(area-6400) > 6400*0.05 {
		t.Errorf("expected ~6400 m2, got %f", area)
	}
}

func TestExtractShapesBelowMinSurface(t *testing.T) {
	// 20x20 m patch is 400 m2, below the 1000 m2 minimum.
	pts := fieldGrid(0, 0, 3, 10)

	shapes := ExtractShapes(pts, DefaultParams())
	if len(shapes) != 0 {
		t.Errorf("expected undersized polygon discarded, got %d shapes", len(shapes))
	}
}

func TestExtractShapesTwoDisjointFields(t *testing.T) {
	// Two dense patches far apart: the alpha filter (radius < 1/alpha = 50 m)
	// cuts the long bridging triangles, leaving two polygons.
	pts := append(fieldGrid(0, 0, 5, 20), fieldGrid(2000, 0, 5, 20)...)

	shapes := ExtractShapes(pts, DefaultParams())
	if len(shapes) != 2 {
		t.Fatalf("expected 2 disjoint polygons, got %d", len(shapes))
	}
	for i, s := range shapes {
		if math.Abs(s.Area()-6400) > 6400*0.05 {
			t.Errorf("polygon %d: expected ~6400 m2, got %f", i, s.Area())
		}
	}
}

func TestExtractShapesCollinearPoints(t *testing.T) {
	// Three fixes on a line: after jitter the hull is a sliver far below the
	// area floor. Must discard silently, never panic.
	pts := []orb.Point{{0, 0}, {50, 0}, {100, 0}}

	shapes := ExtractShapes(pts, DefaultParams())
	if len(shapes) != 0 {
		t.Errorf("expected collinear input discarded, got %d shapes", len(shapes))
	}
}

func TestExtractShapesDuplicatePoints(t *testing.T) {
	pts := []orb.Point{{5, 5}, {5, 5}, {5, 5}, {5, 5}}

	shapes := ExtractShapes(pts, DefaultParams())
	if len(shapes) != 0 {
		t.Errorf("expected degenerate duplicates discarded, got %d shapes", len(shapes))
	}
}

func TestExtractShapesTooFewPoints(t *testing.T) {
	pts := []orb.Point{{0, 0}, {100, 100}}

	if shapes := ExtractShapes(pts, DefaultParams()); shapes != nil {
		t.Errorf("expected nil for <3 points, got %v", shapes)
	}
}

func TestCircumradiusDegenerate(t *testing.T) {
	r := circumradius(
		delaunay.Point{X: 0, Y: 0},
		delaunay.Point{X: 1, Y: 0},
		delaunay.Point{X: 2, Y: 0},
	)
	if !math.IsInf(r, 1) {
		t.Errorf("expected +Inf circumradius for collinear triangle, got %f", r)
	}
}

package geoproj

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestForwardInverseRoundTrip(t *testing.T) {
	prj := NewProjection(orb.Point{2.35, 48.85}) // Paris-ish

	points := []orb.Point{
		{2.35, 48.85},
		{2.36, 48.86},
		{2.30, 48.80},
		{2.40, 48.90},
	}
	for _, pt := range points {
		back := prj.Inverse(prj.Forward(pt))
		if math.Abs(back.Lon()-pt.Lon()) > 1e-9 || math.Abs(back.Lat()-pt.Lat()) > 1e-9 {
			t.Errorf("round trip drifted: %v -> %v", pt, back)
		}
	}
}

func TestForwardDistancesAreMetric(t *testing.T) {
	// One degree of latitude is ~111.2 km everywhere; one degree of longitude
	// shrinks with cos(lat).
	prj := NewProjection(orb.Point{0, 45})

	north := prj.Forward(orb.Point{0, 46})
	if math.Abs(north[1]-111194.9) > 100 {
		t.Errorf("expected ~111195 m per degree latitude, got %f", north[1])
	}

	east := prj.Forward(orb.Point{1, 45})
	want := 111194.9 * math.Cos(45*math.Pi/180)
	if math.Abs(east[0]-want) > 100 {
		t.Errorf("expected ~%f m per degree longitude at 45N, got %f", want, east[0])
	}
}

func TestOriginMapsToZero(t *testing.T) {
	prj := NewProjection(orb.Point{-58.4, -34.6})
	got := prj.Forward(orb.Point{-58.4, -34.6})
	if got[0] != 0 || got[1] != 0 {
		t.Errorf("expected origin at (0,0), got %v", got)
	}
}

func TestJoggleDeterministic(t *testing.T) {
	points := []orb.Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

	a := Joggle(points, 1e-6)
	b := Joggle(points, 1e-6)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("joggle not deterministic at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestJoggleBounded(t *testing.T) {
	points := []orb.Point{{5, 5}, {5, 5}, {5, 5}}
	scale := 1e-6

	out := Joggle(points, scale)
	if len(out) != len(points) {
		t.Fatalf("expected %d points, got %d", len(points), len(out))
	}
	for i, pt := range out {
		if math.Abs(pt[0]-5) > scale || math.Abs(pt[1]-5) > scale {
			t.Errorf("point %d moved beyond jitter bound: %v", i, pt)
		}
	}
}

func TestJoggleEmpty(t *testing.T) {
	if out := Joggle(nil, 1e-6); out != nil {
		t.Errorf("expected nil for empty input, got %v", out)
	}
}

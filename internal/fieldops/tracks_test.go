package fieldops

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/peterstace/simplefeatures/geom"
)

func trackDay(t *testing.T, coords []orb.Point, step time.Duration) ([]Position, []orb.Point) {
	t.Helper()
	t0 := time.Date(2023, 6, 1, 8, 0, 0, 0, time.UTC)
	day := make([]Position, len(coords))
	for i := range coords {
		day[i] = Position{
			ID:          int64(i + 1),
			EquipmentID: "eq-1",
			Timestamp:   t0.Add(time.Duration(i) * step),
		}
	}
	return day, coords
}

func TestReconstructTracksClipsToZoneBoundaries(t *testing.T) {
	zones := []geom.Geometry{
		mustSquare(t, 0, 0, 100),
		mustSquare(t, 280, 0, 100),
	}
	day, planar := trackDay(t, []orb.Point{
		{50, 50},  // working in the western zone
		{150, 50}, // transit
		{250, 50}, // transit
		{330, 50}, // working in the eastern zone
	}, time.Minute)

	tracks := ReconstructTracks(day, planar, []int{1, 2}, zones, DefaultParams())
	if len(tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(tracks))
	}

	tr := tracks[0]
	if len(tr.Line) < 2 {
		t.Fatalf("expected a polyline, got %v", tr.Line)
	}
	if got := tr.Line[0]; got != (orb.Point{100, 50}) {
		t.Errorf("expected track to start at western zone edge (100,50), got %v", got)
	}
	if got := tr.Line[len(tr.Line)-1]; got != (orb.Point{280, 50}) {
		t.Errorf("expected track to end at eastern zone edge (280,50), got %v", got)
	}
	if got, want := tr.Start, day[1].Timestamp; !got.Equal(want) {
		t.Errorf("track start time: expected %v, got %v", want, got)
	}
	if got, want := tr.End, day[2].Timestamp; !got.Equal(want) {
		t.Errorf("track end time: expected %v, got %v", want, got)
	}
	if len(tr.PositionIDs) != 2 || tr.PositionIDs[0] != 2 || tr.PositionIDs[1] != 3 {
		t.Errorf("expected position ids [2 3], got %v", tr.PositionIDs)
	}
}

func TestReconstructTracksSplitsOnTimeGap(t *testing.T) {
	day, planar := trackDay(t, []orb.Point{
		{0, 0}, {10, 0}, {20, 0}, {30, 0},
	}, time.Minute)
	// Open a gap well past TrackGap between the second and third fix.
	day[2].Timestamp = day[1].Timestamp.Add(30 * time.Minute)
	day[3].Timestamp = day[2].Timestamp.Add(time.Minute)

	tracks := ReconstructTracks(day, planar, []int{0, 1, 2, 3}, nil, DefaultParams())
	if len(tracks) != 2 {
		t.Fatalf("expected gap to split into 2 tracks, got %d", len(tracks))
	}
	if len(tracks[0].PositionIDs) != 2 || len(tracks[1].PositionIDs) != 2 {
		t.Errorf("expected 2 fixes per track, got %d and %d",
			len(tracks[0].PositionIDs), len(tracks[1].PositionIDs))
	}
}

func TestReconstructTracksSplitsOnInZoneFix(t *testing.T) {
	zones := []geom.Geometry{mustSquare(t, 140, 0, 100)}
	day, planar := trackDay(t, []orb.Point{
		{0, 50}, {50, 50}, // transit run one
		{190, 50},            // working inside the zone
		{400, 50}, {450, 50}, // transit run two
	}, time.Minute)

	tracks := ReconstructTracks(day, planar, []int{0, 1, 3, 4}, zones, DefaultParams())
	if len(tracks) != 2 {
		t.Fatalf("expected in-zone fix to split into 2 tracks, got %d", len(tracks))
	}
}

func TestReconstructTracksSingleFixDropped(t *testing.T) {
	zones := []geom.Geometry{mustSquare(t, 0, 0, 100), mustSquare(t, 200, 0, 100)}
	day, planar := trackDay(t, []orb.Point{
		{50, 50}, {150, 50}, {250, 50},
	}, time.Minute)

	tracks := ReconstructTracks(day, planar, []int{1}, zones, DefaultParams())
	if len(tracks) != 0 {
		t.Errorf("expected single-fix run dropped, got %d tracks", len(tracks))
	}
}

func TestReconstructTracksEndpointOnBoundary(t *testing.T) {
	// Transit fixes sitting exactly on the zone edges: clipping must not
	// duplicate the endpoints.
	zones := []geom.Geometry{
		mustSquare(t, 0, 0, 100),
		mustSquare(t, 280, 0, 100),
	}
	day, planar := trackDay(t, []orb.Point{
		{50, 50},
		{100, 50}, // exactly on the western edge
		{280, 50}, // exactly on the eastern edge
		{330, 50},
	}, time.Minute)

	tracks := ReconstructTracks(day, planar, []int{1, 2}, zones, DefaultParams())
	if len(tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(tracks))
	}
	line := tracks[0].Line
	if len(line) != 2 {
		t.Fatalf("expected 2-point line, got %v", line)
	}
	if line[0] != (orb.Point{100, 50}) || line[1] != (orb.Point{280, 50}) {
		t.Errorf("expected line from (100,50) to (280,50), got %v", line)
	}
}

func TestReconstructTracksNoTransit(t *testing.T) {
	day, planar := trackDay(t, []orb.Point{{0, 0}, {10, 10}}, time.Minute)
	if tracks := ReconstructTracks(day, planar, nil, nil, DefaultParams()); tracks != nil {
		t.Errorf("expected no tracks without transit fixes, got %v", tracks)
	}
}

func TestBoundaryCrossingFallsBackToAnchor(t *testing.T) {
	// Anchor outside every zone: no crossing exists, the anchor itself is
	// used so the track still connects to the last known position.
	zones := []geom.Geometry{mustSquare(t, 1000, 1000, 100)}
	got := boundaryCrossing(orb.Point{50, 50}, orb.Point{150, 50}, zones)
	if got != (orb.Point{50, 50}) {
		t.Errorf("expected fallback to anchor (50,50), got %v", got)
	}
}

func TestBoundaryCrossingPicksNearestToOutside(t *testing.T) {
	zones := []geom.Geometry{mustSquare(t, 0, 0, 100)}
	got := boundaryCrossing(orb.Point{50, 50}, orb.Point{200, 50}, zones)
	if got != (orb.Point{100, 50}) {
		t.Errorf("expected crossing at (100,50), got %v", got)
	}
}

package fieldops

import (
	"testing"

	"github.com/paulmach/orb"
)

func squareBlob(cx, cy float64) []orb.Point {
	// 3x3 grid of points 10 m apart: dense enough for eps=25/minPts=3.
	var pts []orb.Point
	for dx := 0; dx < 3; dx++ {
		for dy := 0; dy < 3; dy++ {
			pts = append(pts, orb.Point{cx + float64(dx)*10, cy + float64(dy)*10})
		}
	}
	return pts
}

func TestDBSCANEmptyInput(t *testing.T) {
	clusters, noise := DBSCAN(nil, 25, 3)
	if clusters != nil || noise != nil {
		t.Errorf("expected nil results for empty input, got %v / %v", clusters, noise)
	}
}

func TestDBSCANTwoClustersAndNoise(t *testing.T) {
	points := append(squareBlob(0, 0), squareBlob(1000, 1000)...)
	points = append(points, orb.Point{500, 500}) // isolated fix in transit

	clusters, noise := DBSCAN(points, 25, 3)

	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}
	if len(clusters[0]) != 9 || len(clusters[1]) != 9 {
		t.Errorf("expected 9 members each, got %d and %d", len(clusters[0]), len(clusters[1]))
	}
	if len(noise) != 1 || noise[0] != 18 {
		t.Errorf("expected lone transit point flagged as noise, got %v", noise)
	}
}

func TestDBSCANDeterministicOrdering(t *testing.T) {
	points := append(squareBlob(1000, 0), squareBlob(0, 0)...)

	run1, _ := DBSCAN(points, 25, 3)
	run2, _ := DBSCAN(points, 25, 3)

	if len(run1) != 2 || len(run2) != 2 {
		t.Fatalf("expected 2 clusters, got %d and %d", len(run1), len(run2))
	}
	for c := range run1 {
		if len(run1[c]) != len(run2[c]) {
			t.Fatalf("cluster %d size differs between runs", c)
		}
		for i := range run1[c] {
			if run1[c][i] != run2[c][i] {
				t.Errorf("cluster %d member %d differs between runs", c, i)
			}
		}
	}

	// Clusters come back sorted by centroid X: the blob at x=0 first.
	if run1[0][0] != 9 {
		t.Errorf("expected first cluster to be the western blob, first member 9, got %d", run1[0][0])
	}
}

func TestDBSCANAllDuplicatePoints(t *testing.T) {
	// Equipment idling: every fix at the same coordinate still clusters.
	points := []orb.Point{{5, 5}, {5, 5}, {5, 5}, {5, 5}}

	clusters, noise := DBSCAN(points, 25, 3)
	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster of duplicates, got %d", len(clusters))
	}
	if len(clusters[0]) != 4 {
		t.Errorf("expected all 4 duplicates in cluster, got %d", len(clusters[0]))
	}
	if len(noise) != 0 {
		t.Errorf("expected no noise, got %v", noise)
	}
}

func TestDBSCANBelowMinPts(t *testing.T) {
	points := []orb.Point{{0, 0}, {5, 5}}

	clusters, noise := DBSCAN(points, 25, 3)
	if len(clusters) != 0 {
		t.Errorf("expected no clusters from 2 points, got %d", len(clusters))
	}
	if len(noise) != 2 {
		t.Errorf("expected both points as noise, got %v", noise)
	}
}

func TestRegionQueryIncludesSelf(t *testing.T) {
	points := []orb.Point{{0, 0}, {10, 0}, {100, 100}}
	si := NewSpatialIndex(25)
	si.Build(points)

	neighbors := si.RegionQuery(points, 0, 25)
	found := map[int]bool{}
	for _, n := range neighbors {
		found[n] = true
	}
	if !found[0] || !found[1] {
		t.Errorf("expected points 0 and 1 in neighborhood, got %v", neighbors)
	}
	if found[2] {
		t.Errorf("point 2 should be outside eps, got %v", neighbors)
	}
}

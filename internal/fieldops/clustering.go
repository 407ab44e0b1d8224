package fieldops

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// EstimatedPointsPerCell is used for initial spatial index capacity estimation.
const EstimatedPointsPerCell = 4

// SpatialIndex provides efficient neighborhood queries over planar points
// using a regular grid. Cell size should approximately match the DBSCAN eps
// parameter.
type SpatialIndex struct {
	CellSize float64
	Grid     map[int64][]int // cell ID -> point indices
}

// NewSpatialIndex creates a spatial index with the specified cell size.
func NewSpatialIndex(cellSize float64) *SpatialIndex {
	return &SpatialIndex{
		CellSize: cellSize,
		Grid:     make(map[int64][]int),
	}
}

// Build populates the spatial index from a set of planar points.
func (si *SpatialIndex) Build(points []orb.Point) {
	si.Grid = make(map[int64][]int, len(points)/EstimatedPointsPerCell)

	for i, p := range points {
		cellID := si.cellID(cellCoord(p[0], si.CellSize), cellCoord(p[1], si.CellSize))
		si.Grid[cellID] = append(si.Grid[cellID], i)
	}
}

func cellCoord(v, cellSize float64) int64 {
	return int64(math.Floor(v / cellSize))
}

// cellID computes a unique cell identifier using Szudzik's pairing function.
// Handles negative cell coordinates via zigzag encoding.
func (si *SpatialIndex) cellID(cellX, cellY int64) int64 {
	var a, b int64
	if cellX >= 0 {
		a = 2 * cellX
	} else {
		a = -2*cellX - 1
	}
	if cellY >= 0 {
		b = 2 * cellY
	} else {
		b = -2*cellY - 1
	}

	if a >= b {
		return a*a + a + b
	}
	return a + b*b
}

// RegionQuery returns indices of all points within eps distance of
// points[idx], including the point itself. Uses squared distances to avoid
// the sqrt in the inner loop.
func (si *SpatialIndex) RegionQuery(points []orb.Point, idx int, eps float64) []int {
	p := points[idx]
	neighbors := []int{}
	eps2 := eps * eps

	baseX := cellCoord(p[0], si.CellSize)
	baseY := cellCoord(p[1], si.CellSize)

	// Search the 3x3 neighborhood of cells around the query point.
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, candidateIdx := range si.Grid[si.cellID(baseX+dx, baseY+dy)] {
				candidate := points[candidateIdx]
				ddx := candidate[0] - p[0]
				ddy := candidate[1] - p[1]
				if ddx*ddx+ddy*ddy <= eps2 {
					neighbors = append(neighbors, candidateIdx)
				}
			}
		}
	}

	return neighbors
}

// DBSCAN performs density-based clustering on planar points. It returns the
// member indices of each cluster plus the indices of noise points. The output
// is deterministic: clusters are sorted by centroid (X, then Y) and members
// keep ascending index order, so repeated runs over the same day reproduce
// identical zones.
func DBSCAN(points []orb.Point, eps float64, minPts int) (clusters [][]int, noise []int) {
	if len(points) == 0 {
		return nil, nil
	}

	n := len(points)
	labels := make([]int, n) // 0=unvisited, -1=noise, >0=clusterID
	clusterID := 0

	spatialIndex := NewSpatialIndex(eps)
	spatialIndex.Build(points)

	for i := 0; i < n; i++ {
		if labels[i] != 0 {
			continue
		}

		neighbors := spatialIndex.RegionQuery(points, i, eps)
		if len(neighbors) < minPts {
			labels[i] = -1
			continue
		}

		clusterID++
		expandCluster(points, spatialIndex, labels, i, neighbors, clusterID, eps, minPts)
	}

	return gatherClusters(points, labels, clusterID)
}

// expandCluster grows a cluster from a core point using a queue of
// reachable neighbors.
func expandCluster(points []orb.Point, si *SpatialIndex, labels []int,
	seedIdx int, neighbors []int, clusterID int, eps float64, minPts int) {

	labels[seedIdx] = clusterID

	for j := 0; j < len(neighbors); j++ {
		idx := neighbors[j]

		if labels[idx] == -1 {
			labels[idx] = clusterID // noise becomes a border point
		}
		if labels[idx] != 0 {
			continue
		}

		labels[idx] = clusterID
		newNeighbors := si.RegionQuery(points, idx, eps)
		if len(newNeighbors) >= minPts {
			neighbors = append(neighbors, newNeighbors...)
		}
	}
}

// gatherClusters collects member indices per cluster label and sorts the
// clusters by centroid for deterministic output.
func gatherClusters(points []orb.Point, labels []int, maxClusterID int) ([][]int, []int) {
	members := make([][]int, maxClusterID)
	var noise []int
	for i, label := range labels {
		if label == -1 {
			noise = append(noise, i)
			continue
		}
		members[label-1] = append(members[label-1], i)
	}

	var clusters [][]int
	type keyed struct {
		cx, cy  float64
		indices []int
	}
	var ordered []keyed
	for _, m := range members {
		if len(m) == 0 {
			continue
		}
		var sx, sy float64
		for _, idx := range m {
			sx += points[idx][0]
			sy += points[idx][1]
		}
		ordered = append(ordered, keyed{
			cx:      sx / float64(len(m)),
			cy:      sy / float64(len(m)),
			indices: m,
		})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].cx != ordered[j].cx {
			return ordered[i].cx < ordered[j].cx
		}
		return ordered[i].cy < ordered[j].cy
	})
	for _, k := range ordered {
		clusters = append(clusters, k.indices)
	}

	return clusters, noise
}

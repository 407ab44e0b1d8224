package fieldops

import (
	"fmt"
	"sort"

	"github.com/peterstace/simplefeatures/geom"
)

// minCellAreaM2 is the floor below which overlay residue is treated as
// empty. Exact overlay of nearly coincident boundaries can leave slivers a
// few float ulps wide; carrying them forward would break the pairwise
// disjointness property.
const minCellAreaM2 = 1e-6

// ZoneInput is one dated polygon entering aggregation: a daily cluster, or a
// previously aggregated cell being re-aggregated.
type ZoneInput struct {
	Dates   []string      // ISO dates; de-duplicated on the way in
	Polygon geom.Geometry // planar meters
}

// Cell is one disjoint region of the aggregated partition. Its date set is
// exactly the set of input dates whose polygon covers the region.
type Cell struct {
	Polygon geom.Geometry // planar meters
	Dates   []string      // sorted, distinct
}

// PassCount is the number of distinct dates on which the cell was covered.
func (c Cell) PassCount() int {
	return len(c.Dates)
}

// SurfaceHa is the cell's surface in hectares.
func (c Cell) SurfaceHa() float64 {
	return c.Polygon.Area() / 1e4
}

// Aggregate merges dated polygons into a minimal disjoint partition. The
// result cells are pairwise non-overlapping, their union equals the union of
// the inputs, and each cell carries the union of the date sets of every
// input polygon covering it.
//
// Implemented as a pure reduce: each step consumes the current cell list and
// one input and produces a fresh list, so no cell geometry is ever mutated
// in place. The final partition is invariant to input order; only the
// internal cell ordering depends on it.
func Aggregate(inputs []ZoneInput) ([]Cell, error) {
	var cells []Cell
	for _, in := range inputs {
		if in.Polygon.IsEmpty() {
			continue
		}
		next, err := refine(cells, in)
		if err != nil {
			return nil, err
		}
		cells = next
	}
	return cells, nil
}

// refine splits the existing cells against one incoming polygon.
//
// Every existing cell is replaced by up to two cells: the part not covered
// by the incoming polygon (keeping its dates) and the covered part (dates
// merged with the incoming dates). The incoming polygon is shrunk by each
// cell as it goes, so later cells only see its still-uncovered remainder;
// whatever survives the sweep becomes a new cell.
func refine(cells []Cell, in ZoneInput) ([]Cell, error) {
	incoming := in.Polygon
	incomingDates := normalizeDates(in.Dates)

	next := make([]Cell, 0, len(cells)+1)
	for _, cell := range cells {
		diff, err := geom.Difference(cell.Polygon, incoming)
		if err != nil {
			return nil, fmt.Errorf("cell difference: %w", err)
		}
		inter, err := geom.Intersection(cell.Polygon, incoming)
		if err != nil {
			return nil, fmt.Errorf("cell intersection: %w", err)
		}

		if g, ok, err := polygonalCell(diff); err != nil {
			return nil, err
		} else if ok {
			next = append(next, Cell{Polygon: g, Dates: cell.Dates})
		}
		if g, ok, err := polygonalCell(inter); err != nil {
			return nil, err
		} else if ok {
			next = append(next, Cell{Polygon: g, Dates: mergeDates(cell.Dates, incomingDates)})
		}

		remainder, err := geom.Difference(incoming, cell.Polygon)
		if err != nil {
			return nil, fmt.Errorf("incoming difference: %w", err)
		}
		incoming = remainder
	}

	if g, ok, err := polygonalCell(incoming); err != nil {
		return nil, err
	} else if ok {
		next = append(next, Cell{Polygon: g, Dates: incomingDates})
	}

	return next, nil
}

// polygonalCell reduces an overlay result to its polygonal content and
// applies the sliver floor.
func polygonalCell(g geom.Geometry) (geom.Geometry, bool, error) {
	poly, ok, err := PolygonalOnly(g)
	if err != nil || !ok {
		return geom.Geometry{}, false, err
	}
	if poly.Area() < minCellAreaM2 {
		return geom.Geometry{}, false, nil
	}
	return poly, true, nil
}

// normalizeDates returns a sorted copy with duplicates removed.
func normalizeDates(dates []string) []string {
	seen := make(map[string]struct{}, len(dates))
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// mergeDates unions two normalized date sets.
func mergeDates(a, b []string) []string {
	return normalizeDates(append(append([]string{}, a...), b...))
}

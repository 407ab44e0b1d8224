// Package analysis orchestrates the batch pipeline: it reads fixes from
// storage, runs the per-day computation, persists the resulting zones and
// tracks, and serves cached cross-day aggregations.
package analysis

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	orbwkt "github.com/paulmach/orb/encoding/wkt"
	"github.com/peterstace/simplefeatures/geom"

	"github.com/fieldwork-data/coverage.report/internal/db"
	"github.com/fieldwork-data/coverage.report/internal/fieldops"
	"github.com/fieldwork-data/coverage.report/internal/geoproj"
	"github.com/fieldwork-data/coverage.report/internal/monitoring"
)

// Runner wires storage, the aggregation cache and the analysis parameters
// together for one batch run or one read-side query.
type Runner struct {
	DB     *db.DB
	Cache  fieldops.PartitionCache
	Params fieldops.Params
}

func NewRunner(database *db.DB, cache fieldops.PartitionCache, params fieldops.Params) *Runner {
	return &Runner{DB: database, Cache: cache, Params: params}
}

// ProcessSummary reports what one ProcessEquipment run produced.
type ProcessSummary struct {
	EquipmentID string
	Days        int
	Zones       int
	Tracks      int
	Metrics     fieldops.EquipmentMetrics
}

// ProcessEquipment recomputes an equipment's zones and tracks from scratch:
// every day with stored fixes is re-analyzed and its persisted rows replaced.
// The projection is anchored at the equipment's first fix so repeated runs
// over the same data produce identical geometry. Cached aggregations of the
// equipment are invalidated at the end.
func (r *Runner) ProcessEquipment(equipmentID string) (*ProcessSummary, error) {
	positions, err := r.DB.GetPositions(equipmentID, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}

	summary := &ProcessSummary{EquipmentID: equipmentID}
	if len(positions) == 0 {
		monitoring.Logf("analysis: %s has no positions, nothing to process", equipmentID)
		return summary, nil
	}

	proj := geoproj.NewProjection(orb.Point{positions[0].Longitude, positions[0].Latitude})

	if err := r.DB.ClearTrackAssignments(equipmentID); err != nil {
		return nil, err
	}

	days := fieldops.GroupByDate(positions)
	daily := make(map[string][]geom.Geometry, len(days))
	var results []fieldops.DayResult

	for _, date := range fieldops.SortedDates(days) {
		day := days[date]
		res := fieldops.AnalyzeDay(date, day, proj, r.Params)
		results = append(results, res)
		daily[date] = res.Zones
		summary.Days++

		if err := r.persistDay(equipmentID, proj, day, res); err != nil {
			return nil, fmt.Errorf("failed to persist %s: %w", date, err)
		}
		summary.Zones += len(res.Zones)
		summary.Tracks += len(res.Tracks)
		monitoring.Logf("analysis: %s %s: %d fixes, %d zones, %d tracks",
			equipmentID, date, len(day), len(res.Zones), len(res.Tracks))
	}

	cells, err := fieldops.Aggregate(fieldops.DailyClusters(results))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate zones: %w", err)
	}
	summary.Metrics, err = fieldops.ComputeMetrics(daily, cells)
	if err != nil {
		return nil, fmt.Errorf("failed to compute metrics: %w", err)
	}

	err = r.DB.UpdateEquipmentMetrics(equipmentID,
		summary.Metrics.TotalHectares,
		summary.Metrics.RelativeHectares,
		summary.Metrics.DistanceBetweenZonesMeters)
	if err != nil {
		return nil, err
	}

	r.Cache.Invalidate(equipmentID)
	return summary, nil
}

// persistDay writes one day's zones and tracks, reprojected to WGS84, and
// tags the consumed fixes with their track ids. The day's hulls are folded
// into a disjoint partition before insert, so the stored rows of a date
// never overlap.
func (r *Runner) persistDay(equipmentID string, proj geoproj.Projection, day []fieldops.Position, res fieldops.DayResult) error {
	inputs := make([]fieldops.ZoneInput, len(res.Zones))
	for i, zone := range res.Zones {
		inputs[i] = fieldops.ZoneInput{Dates: []string{res.Date}, Polygon: zone}
	}
	cells, err := fieldops.Aggregate(inputs)
	if err != nil {
		return fmt.Errorf("failed to partition %s zones: %w", res.Date, err)
	}

	zones := make([]db.DailyZone, 0, len(cells))
	for _, cell := range cells {
		geographic, err := proj.InverseGeometry(cell.Polygon)
		if err != nil {
			return fmt.Errorf("failed to reproject zone: %w", err)
		}
		zones = append(zones, db.DailyZone{
			Date:        res.Date,
			GeometryWKT: geographic.AsText(),
			SurfaceHa:   cell.SurfaceHa(),
			PassCount:   cell.PassCount(),
			PointCount:  zoneFixCount(cell.Polygon, proj, day),
		})
	}
	if err := r.DB.ReplaceZonesForDate(equipmentID, res.Date, zones); err != nil {
		return err
	}

	tracks := make([]db.Track, 0, len(res.Tracks))
	assignments := make(map[string][]int64, len(res.Tracks))
	for _, tr := range res.Tracks {
		line := make(orb.LineString, len(tr.Line))
		for i, pt := range tr.Line {
			line[i] = proj.Inverse(pt)
		}
		id := uuid.NewString()
		tracks = append(tracks, db.Track{
			ID:          id,
			Date:        res.Date,
			StartTime:   tr.Start,
			EndTime:     tr.End,
			GeometryWKT: orbwkt.MarshalString(line),
		})
		assignments[id] = tr.PositionIDs
	}
	if err := r.DB.ReplaceTracksForDate(equipmentID, res.Date, tracks); err != nil {
		return err
	}
	for id, positionIDs := range assignments {
		if err := r.DB.AssignTrack(id, positionIDs); err != nil {
			return err
		}
	}
	return nil
}

// zoneFixCount counts the day's fixes covered by a planar zone.
func zoneFixCount(zone geom.Geometry, proj geoproj.Projection, day []fieldops.Position) int {
	count := 0
	for _, p := range day {
		planar := proj.Forward(orb.Point{p.Longitude, p.Latitude})
		pt, err := fieldops.PointGeometry(planar[0], planar[1])
		if err != nil {
			continue
		}
		if geom.Intersects(zone, pt) {
			count++
		}
	}
	return count
}

// AggregatedZones returns the aggregated partition and metrics of an
// equipment over an inclusive date range (empty bounds are open). Results
// are cached per equipment and period; writers invalidate through the same
// cache. Cell geometries come back in a planar frame anchored at the first
// stored zone.
func (r *Runner) AggregatedZones(equipmentID, start, end string) (fieldops.Aggregation, error) {
	key := fieldops.PeriodKey{EquipmentID: equipmentID, Start: start, End: end}
	if agg, ok := r.Cache.Get(key); ok {
		return agg, nil
	}

	rows, err := r.DB.GetZones(equipmentID, start, end)
	if err != nil {
		return fieldops.Aggregation{}, fmt.Errorf("failed to load zones: %w", err)
	}
	if len(rows) == 0 {
		empty := fieldops.Aggregation{}
		r.Cache.Put(key, empty)
		return empty, nil
	}

	geographic := make([]geom.Geometry, len(rows))
	for i, row := range rows {
		g, err := geom.UnmarshalWKT(row.GeometryWKT)
		if err != nil {
			return fieldops.Aggregation{}, fmt.Errorf("failed to parse zone %d geometry: %w", row.ID, err)
		}
		geographic[i] = g
	}

	anchor, ok := fieldops.Centroid(geographic[0])
	if !ok {
		return fieldops.Aggregation{}, fmt.Errorf("zone %d has no centroid", rows[0].ID)
	}
	proj := geoproj.NewProjection(anchor)

	inputs := make([]fieldops.ZoneInput, len(rows))
	daily := make(map[string][]geom.Geometry)
	for i, row := range rows {
		planar, err := proj.ForwardGeometry(geographic[i])
		if err != nil {
			return fieldops.Aggregation{}, fmt.Errorf("failed to project zone %d: %w", row.ID, err)
		}
		inputs[i] = fieldops.ZoneInput{Dates: []string{row.Date}, Polygon: planar}
		daily[row.Date] = append(daily[row.Date], planar)
	}

	cells, err := fieldops.Aggregate(inputs)
	if err != nil {
		return fieldops.Aggregation{}, fmt.Errorf("failed to aggregate zones: %w", err)
	}
	metrics, err := fieldops.ComputeMetrics(daily, cells)
	if err != nil {
		return fieldops.Aggregation{}, fmt.Errorf("failed to compute metrics: %w", err)
	}

	agg := fieldops.Aggregation{Cells: cells, Metrics: metrics}
	r.Cache.Put(key, agg)
	return agg, nil
}

// Recalculate reprocesses every equipment in the database.
func (r *Runner) Recalculate() error {
	all, err := r.DB.GetAllEquipment()
	if err != nil {
		return fmt.Errorf("failed to list equipment: %w", err)
	}
	for _, eq := range all {
		summary, err := r.ProcessEquipment(eq.ID)
		if err != nil {
			return fmt.Errorf("failed to process %s: %w", eq.ID, err)
		}
		monitoring.Logf("analysis: %s (%s): %d days, %d zones, %d tracks, %.2f ha total",
			eq.Name, eq.ID, summary.Days, summary.Zones, summary.Tracks,
			summary.Metrics.TotalHectares)
	}
	return nil
}

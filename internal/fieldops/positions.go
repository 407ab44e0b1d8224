// Package fieldops implements the batch worked-area analysis over equipment
// GPS traces: per-day density clustering, concave-hull zone extraction,
// overlap aggregation into a disjoint partition, transit track
// reconstruction and the derived equipment metrics.
//
// Everything in this package is pure in-memory computation in a local planar
// frame (meters); storage and projection round-trips happen at the callers.
package fieldops

import (
	"sort"
	"time"
)

// DateFormat is the calendar-day key format used throughout the pipeline.
const DateFormat = "2006-01-02"

// MinDayPoints is the minimum number of fixes a day needs before clustering
// is attempted. Days below this contribute no zones.
const MinDayPoints = 3

// MinClusterNeighbors is the DBSCAN minPts parameter. It is fixed: a worked
// area needs at least three mutually close fixes to be more than a transit.
const MinClusterNeighbors = 3

// Position is one GPS fix for a piece of equipment. Timestamps are UTC-naive
// and positions are ordered by timestamp per equipment.
type Position struct {
	ID          int64
	EquipmentID string
	Latitude    float64
	Longitude   float64
	Timestamp   time.Time
	TrackID     string // set once the fix has been consumed into a track
}

// DateKey returns the calendar date the fix belongs to.
func (p Position) DateKey() string {
	return p.Timestamp.UTC().Format(DateFormat)
}

// GroupByDate partitions positions by calendar date. Each day's slice keeps
// the input order (callers pass time-ordered positions).
func GroupByDate(positions []Position) map[string][]Position {
	days := make(map[string][]Position)
	for _, p := range positions {
		key := p.DateKey()
		days[key] = append(days[key], p)
	}
	return days
}

// SortedDates returns the keys of a day grouping in ascending date order.
func SortedDates[T any](days map[string][]T) []string {
	dates := make([]string, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Params carries the resolved analysis parameters for one pipeline run.
// Values must be positive; validation happens at the configuration boundary.
type Params struct {
	EpsMeters           float64
	MinSurfaceHa        float64
	Alpha               float64
	JitterScale         float64
	TrackGap            time.Duration
	TrackSimplifyMeters float64
}

// DefaultParams returns the parameter set used when no configuration file
// overrides anything.
func DefaultParams() Params {
	return Params{
		EpsMeters:           25,
		MinSurfaceHa:        0.1,
		Alpha:               0.02,
		JitterScale:         1e-6,
		TrackGap:            10 * time.Minute,
		TrackSimplifyMeters: 0.5,
	}
}

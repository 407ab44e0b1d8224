package db

import (
	"fmt"
)

// DailyZone is one cell of the worked-area partition persisted for an
// equipment-day: cells of the same date never overlap. Geometry is WGS84
// WKT; surface_ha was computed in the planar frame before reprojection, and
// pass_count is the number of distinct dates in the cell's date set.
type DailyZone struct {
	ID          int64   `json:"id"`
	EquipmentID string  `json:"equipment_id"`
	Date        string  `json:"date"`
	GeometryWKT string  `json:"geometry_wkt"`
	SurfaceHa   float64 `json:"surface_ha"`
	PassCount   int     `json:"pass_count"`
	PointCount  int     `json:"point_count"`
}

// ReplaceZonesForDate swaps out an equipment-day's zones atomically: the
// day's previous rows are deleted and the new ones inserted in one
// transaction, so a crashed run never leaves a day half-written.
func (db *DB) ReplaceZonesForDate(equipmentID, date string, zones []DailyZone) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM daily_zones WHERE equipment_id = ? AND date = ?`,
		equipmentID, date,
	); err != nil {
		return fmt.Errorf("failed to delete previous zones: %w", err)
	}

	for _, z := range zones {
		passCount := z.PassCount
		if passCount < 1 {
			passCount = 1
		}
		if _, err := tx.Exec(
			`INSERT INTO daily_zones (equipment_id, date, geometry_wkt, surface_ha, pass_count, point_count)
			VALUES (?, ?, ?, ?, ?, ?)`,
			equipmentID, date, z.GeometryWKT, z.SurfaceHa, passCount, z.PointCount,
		); err != nil {
			return fmt.Errorf("failed to insert zone: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit zones: %w", err)
	}
	return nil
}

// GetZones retrieves an equipment's daily zones ordered by date. Empty start
// or end leaves that side of the range open; bounds are inclusive ISO dates.
func (db *DB) GetZones(equipmentID, start, end string) ([]DailyZone, error) {
	query := `SELECT id, equipment_id, date, geometry_wkt, surface_ha, pass_count, point_count
		FROM daily_zones WHERE equipment_id = ?`
	args := []interface{}{equipmentID}

	if start != "" {
		query += ` AND date >= ?`
		args = append(args, start)
	}
	if end != "" {
		query += ` AND date <= ?`
		args = append(args, end)
	}
	query += ` ORDER BY date ASC, id ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query zones: %w", err)
	}
	defer rows.Close()

	var zones []DailyZone
	for rows.Next() {
		var z DailyZone
		if err := rows.Scan(&z.ID, &z.EquipmentID, &z.Date, &z.GeometryWKT, &z.SurfaceHa, &z.PassCount, &z.PointCount); err != nil {
			return nil, fmt.Errorf("failed to scan zone: %w", err)
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

// GetZoneDates returns the distinct dates an equipment has zones for, in
// ascending order.
func (db *DB) GetZoneDates(equipmentID string) ([]string, error) {
	rows, err := db.Query(
		`SELECT DISTINCT date FROM daily_zones WHERE equipment_id = ? ORDER BY date ASC`,
		equipmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query zone dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan zone date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

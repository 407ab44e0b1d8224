package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Track is one persisted transit polyline. Geometry is WGS84 WKT.
type Track struct {
	ID          string    `json:"id"`
	EquipmentID string    `json:"equipment_id"`
	Date        string    `json:"date"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	GeometryWKT string    `json:"geometry_wkt"`
}

// ReplaceTracksForDate swaps out an equipment-day's tracks atomically.
// Empty IDs get fresh UUIDs; the caller reads them back to tag positions.
func (db *DB) ReplaceTracksForDate(equipmentID, date string, tracks []Track) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM tracks WHERE equipment_id = ? AND date = ?`,
		equipmentID, date,
	); err != nil {
		return fmt.Errorf("failed to delete previous tracks: %w", err)
	}

	for i := range tracks {
		if tracks[i].ID == "" {
			tracks[i].ID = uuid.NewString()
		}
		if _, err := tx.Exec(
			`INSERT INTO tracks (id, equipment_id, date, start_time, end_time, geometry_wkt)
			VALUES (?, ?, ?, ?, ?, ?)`,
			tracks[i].ID, equipmentID, date,
			tracks[i].StartTime.Unix(), tracks[i].EndTime.Unix(), tracks[i].GeometryWKT,
		); err != nil {
			return fmt.Errorf("failed to insert track: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tracks: %w", err)
	}
	return nil
}

// GetTracks retrieves an equipment's tracks ordered by start time. Empty
// start or end date leaves that side of the range open.
func (db *DB) GetTracks(equipmentID, start, end string) ([]Track, error) {
	query := `SELECT id, equipment_id, date, start_time, end_time, geometry_wkt
		FROM tracks WHERE equipment_id = ?`
	args := []interface{}{equipmentID}

	if start != "" {
		query += ` AND date >= ?`
		args = append(args, start)
	}
	if end != "" {
		query += ` AND date <= ?`
		args = append(args, end)
	}
	query += ` ORDER BY start_time ASC, id ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		var t Track
		var startUnix, endUnix int64
		if err := rows.Scan(&t.ID, &t.EquipmentID, &t.Date, &startUnix, &endUnix, &t.GeometryWKT); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		t.StartTime = time.Unix(startUnix, 0).UTC()
		t.EndTime = time.Unix(endUnix, 0).UTC()
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

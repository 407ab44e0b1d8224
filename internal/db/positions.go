package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fieldwork-data/coverage.report/internal/fieldops"
)

// InsertPositions stores a batch of GPS fixes inside one transaction.
// Re-imported fixes (same equipment, coordinates and timestamp) are skipped,
// so feeding the same export twice is harmless. Returns the number of rows
// actually inserted.
func (db *DB) InsertPositions(positions []fieldops.Position) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO positions (equipment_id, latitude, longitude, timestamp)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(equipment_id, latitude, longitude, timestamp) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, p := range positions {
		res, err := stmt.Exec(p.EquipmentID, p.Latitude, p.Longitude, p.Timestamp.Unix())
		if err != nil {
			return 0, fmt.Errorf("failed to insert position: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit positions: %w", err)
	}
	return inserted, nil
}

// GetPositions retrieves an equipment's fixes ordered by timestamp. Zero
// start or end leaves that side of the range open.
func (db *DB) GetPositions(equipmentID string, start, end time.Time) ([]fieldops.Position, error) {
	query := `SELECT id, equipment_id, latitude, longitude, timestamp, track_id
		FROM positions WHERE equipment_id = ?`
	args := []interface{}{equipmentID}

	if !start.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, start.Unix())
	}
	if !end.IsZero() {
		query += ` AND timestamp <= ?`
		args = append(args, end.Unix())
	}
	query += ` ORDER BY timestamp ASC, id ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []fieldops.Position
	for rows.Next() {
		var p fieldops.Position
		var unix int64
		var trackID sql.NullString
		if err := rows.Scan(&p.ID, &p.EquipmentID, &p.Latitude, &p.Longitude, &unix, &trackID); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		p.Timestamp = time.Unix(unix, 0).UTC()
		p.TrackID = trackID.String
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// GetLastPosition returns an equipment's most recent fix, or nil when no
// fixes are stored.
func (db *DB) GetLastPosition(equipmentID string) (*fieldops.Position, error) {
	var p fieldops.Position
	var unix int64
	var trackID sql.NullString

	err := db.QueryRow(
		`SELECT id, equipment_id, latitude, longitude, timestamp, track_id
		 FROM positions WHERE equipment_id = ?
		 ORDER BY timestamp DESC, id DESC LIMIT 1`, equipmentID,
	).Scan(&p.ID, &p.EquipmentID, &p.Latitude, &p.Longitude, &unix, &trackID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last position: %w", err)
	}

	p.Timestamp = time.Unix(unix, 0).UTC()
	p.TrackID = trackID.String
	return &p, nil
}

// AssignTrack tags the given fixes with the track that consumed them.
func (db *DB) AssignTrack(trackID string, positionIDs []int64) error {
	if len(positionIDs) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE positions SET track_id = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare track assignment: %w", err)
	}
	defer stmt.Close()

	for _, id := range positionIDs {
		if _, err := stmt.Exec(trackID, id); err != nil {
			return fmt.Errorf("failed to assign track to position %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit track assignment: %w", err)
	}
	return nil
}

// ClearTrackAssignments detaches every fix of an equipment from its track.
// Called before reprocessing, together with ReplaceTracksForDate.
func (db *DB) ClearTrackAssignments(equipmentID string) error {
	_, err := db.Exec(`UPDATE positions SET track_id = NULL WHERE equipment_id = ?`, equipmentID)
	if err != nil {
		return fmt.Errorf("failed to clear track assignments: %w", err)
	}
	return nil
}

package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Equipment is one tracked machine. Positions, zones and tracks all hang off
// its id. The scalar aggregates are refreshed by the analysis pipeline after
// each full run.
type Equipment struct {
	ID                         string    `json:"id"`
	Name                       string    `json:"name"`
	TotalHectares              float64   `json:"total_hectares"`
	RelativeHectares           float64   `json:"relative_hectares"`
	DistanceBetweenZonesMeters float64   `json:"distance_between_zones_m"`
	CreatedAt                  time.Time `json:"created_at"`
}

// CreateEquipment inserts a new equipment row. An empty ID is replaced with
// a fresh UUID.
func (db *DB) CreateEquipment(eq *Equipment) error {
	if eq.ID == "" {
		eq.ID = uuid.NewString()
	}

	_, err := db.Exec(
		`INSERT INTO equipment (id, name) VALUES (?, ?)`,
		eq.ID, eq.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to create equipment: %w", err)
	}
	return nil
}

// GetEquipment retrieves one equipment by id.
func (db *DB) GetEquipment(id string) (*Equipment, error) {
	var eq Equipment
	var createdAt string

	err := db.QueryRow(
		`SELECT id, name, total_hectares, relative_hectares, distance_between_zones_m, created_at
		 FROM equipment WHERE id = ?`, id,
	).Scan(&eq.ID, &eq.Name, &eq.TotalHectares, &eq.RelativeHectares,
		&eq.DistanceBetweenZonesMeters, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("equipment %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}

	eq.CreatedAt = parseSQLiteTime(createdAt)
	return &eq, nil
}

// GetAllEquipment retrieves every equipment, ordered by name.
func (db *DB) GetAllEquipment() ([]Equipment, error) {
	rows, err := db.Query(
		`SELECT id, name, total_hectares, relative_hectares, distance_between_zones_m, created_at
		 FROM equipment ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query equipment: %w", err)
	}
	defer rows.Close()

	var all []Equipment
	for rows.Next() {
		var eq Equipment
		var createdAt string
		if err := rows.Scan(&eq.ID, &eq.Name, &eq.TotalHectares, &eq.RelativeHectares,
			&eq.DistanceBetweenZonesMeters, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan equipment: %w", err)
		}
		eq.CreatedAt = parseSQLiteTime(createdAt)
		all = append(all, eq)
	}
	return all, rows.Err()
}

// UpdateEquipmentMetrics stores the recomputed coverage aggregates on the
// equipment row.
func (db *DB) UpdateEquipmentMetrics(id string, totalHa, relativeHa, distanceM float64) error {
	res, err := db.Exec(
		`UPDATE equipment
		 SET total_hectares = ?, relative_hectares = ?, distance_between_zones_m = ?
		 WHERE id = ?`,
		totalHa, relativeHa, distanceM, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update equipment metrics: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("equipment %s not found", id)
	}
	return nil
}

// parseSQLiteTime parses the CURRENT_TIMESTAMP text format. A zero time is
// returned for anything unparseable rather than failing the read.
func parseSQLiteTime(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

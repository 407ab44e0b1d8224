package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// NewDB opens (creating if necessary) the coverage database at path and
// ensures the baseline schema exists. Migrations beyond the baseline are
// applied separately via MigrateUp.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = sqlDB.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA foreign_keys = ON;
		PRAGMA busy_timeout = 5000;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	_, err = sqlDB.Exec(`
		CREATE TABLE IF NOT EXISTS equipment (
			id                TEXT PRIMARY KEY,
			name              TEXT NOT NULL,
			total_hectares    DOUBLE NOT NULL DEFAULT 0,
			relative_hectares DOUBLE NOT NULL DEFAULT 0,
			distance_between_zones_m DOUBLE NOT NULL DEFAULT 0,
			created_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS positions (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			equipment_id      TEXT NOT NULL,
			latitude          DOUBLE NOT NULL,
			longitude         DOUBLE NOT NULL,
			timestamp         BIGINT NOT NULL,
			track_id          TEXT,
			UNIQUE(equipment_id, latitude, longitude, timestamp),
			FOREIGN KEY(equipment_id) REFERENCES equipment(id)
		);
		CREATE INDEX IF NOT EXISTS idx_positions_equipment_time
			ON positions(equipment_id, timestamp);
		CREATE TABLE IF NOT EXISTS daily_zones (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			equipment_id      TEXT NOT NULL,
			date              TEXT NOT NULL,
			geometry_wkt      TEXT NOT NULL,
			surface_ha        DOUBLE NOT NULL,
			pass_count        BIGINT NOT NULL DEFAULT 1,
			point_count       BIGINT NOT NULL DEFAULT 0,
			created_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(equipment_id) REFERENCES equipment(id)
		);
		CREATE INDEX IF NOT EXISTS idx_daily_zones_equipment_date
			ON daily_zones(equipment_id, date);
		CREATE TABLE IF NOT EXISTS tracks (
			id                TEXT PRIMARY KEY,
			equipment_id      TEXT NOT NULL,
			date              TEXT NOT NULL,
			start_time        BIGINT NOT NULL,
			end_time          BIGINT NOT NULL,
			geometry_wkt      TEXT NOT NULL,
			FOREIGN KEY(equipment_id) REFERENCES equipment(id)
		);
		CREATE INDEX IF NOT EXISTS idx_tracks_equipment_date
			ON tracks(equipment_id, date);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{sqlDB}, nil
}

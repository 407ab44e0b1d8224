package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fieldwork-data/coverage.report/internal/fieldops"
)

// newTestDB opens a fresh database in a per-test temp directory.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	database, err := NewDB(filepath.Join(t.TempDir(), "coverage.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// createTestEquipment inserts an equipment row and returns it.
func createTestEquipment(t *testing.T, database *DB, name string) *Equipment {
	t.Helper()

	eq := &Equipment{Name: name}
	if err := database.CreateEquipment(eq); err != nil {
		t.Fatalf("CreateEquipment failed: %v", err)
	}
	return eq
}

// testPositions builds a time-ordered run of fixes starting at base, one
// minute apart, walking northeast.
func testPositions(equipmentID string, base time.Time, n int) []fieldops.Position {
	positions := make([]fieldops.Position, n)
	for i := 0; i < n; i++ {
		positions[i] = fieldops.Position{
			EquipmentID: equipmentID,
			Latitude:    45.2 + float64(i)*1e-4,
			Longitude:   6.05 + float64(i)*1e-4,
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
		}
	}
	return positions
}

package testutil

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite" // Test Package

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/database"
)

// SetupTestDB returns an in-memory snapshot database with the schema
// migrated. It is closed when the test ends.
//
//	db := testutil.SetupTestDB(t)
//	store := repository.NewStockStore(db)
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA journal_mode = MEMORY"} {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to run %q: %v", pragma, err)
		}
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// TempSnapshotPath returns a path named name inside a per-test temporary directory.
func TempSnapshotPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

// WriteSnapshotFile writes content to a fresh snapshot path named name and
// returns the path.
func WriteSnapshotFile(t *testing.T, name, content string) string {
	t.Helper()
	path := TempSnapshotPath(t, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write snapshot file: %v", err)
	}
	return path
}

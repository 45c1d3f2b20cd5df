package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/database"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	portfolios *PortfolioService
}

// Health is the status reported by the health endpoint.
type Health struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Holdings      int    `json:"holdings"`
	SnapshotPath  string `json:"snapshotPath"`
	SchemaVersion *int64 `json:"schemaVersion,omitempty"`
}

// NewSystemService creates a new SystemService
func NewSystemService(portfolios *PortfolioService) *SystemService {
	return &SystemService{
		portfolios: portfolios,
	}
}

// CheckHealth reports the holdings count and snapshot location. For SQLite
// snapshots that exist it also opens the file and reports the schema version.
func (s *SystemService) CheckHealth(ctx context.Context) (Health, error) {
	h := Health{
		Status:       "healthy",
		Version:      version.Version,
		Holdings:     len(s.portfolios.ListHoldings()),
		SnapshotPath: s.portfolios.SnapshotPath(),
	}

	if !isSQLiteSnapshot(h.SnapshotPath) {
		return h, nil
	}
	db, err := openExisting(h.SnapshotPath)
	if err != nil || db == nil {
		return h, err
	}
	defer db.Close()

	if err := database.HealthCheck(ctx, db); err != nil {
		return h, fmt.Errorf("snapshot database unavailable: %w", err)
	}
	v, err := database.SchemaVersion(ctx, db)
	if err != nil {
		return h, fmt.Errorf("failed to read schema version: %w", err)
	}
	h.SchemaVersion = &v
	return h, nil
}

// CheckVersion returns the application version.
func (s *SystemService) CheckVersion() string {
	return version.Version
}

func openExisting(path string) (*sql.DB, error) {
	if !fileExists(path) {
		return nil, nil
	}
	return database.Open(path)
}

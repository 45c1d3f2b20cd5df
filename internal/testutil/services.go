package testutil

import (
	"testing"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/repository"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/service"
)

// NewTestPortfolioService creates a PortfolioService saving to a JSON snapshot
// in a per-test temporary directory.
//
// Example usage:
//
//	svc := testutil.NewTestPortfolioService(t,
//	    service.WithMarketData(testutil.NewMockMarketData().WithPrice("ANDR", 54.25, 1)),
//	)
func NewTestPortfolioService(t *testing.T, opts ...service.Option) *service.PortfolioService {
	t.Helper()
	repo := repository.NewFileRepository(repository.NewJSONRepository(), repository.NewSQLiteRepository())
	return service.NewPortfolioService(repo, TempSnapshotPath(t, "portfolio.json"), opts...)
}

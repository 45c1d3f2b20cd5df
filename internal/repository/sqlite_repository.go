package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/database"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/portfolio"
)

// SQLiteRepository stores portfolios in SQLite database files, one portfolio
// per file. The schema is migrated on every open.
type SQLiteRepository struct{}

// NewSQLiteRepository creates a SQLiteRepository.
func NewSQLiteRepository() *SQLiteRepository {
	return &SQLiteRepository{}
}

// Save replaces the portfolio stored in filename with p.
func (r *SQLiteRepository) Save(ctx context.Context, filename string, p *portfolio.Portfolio) error {
	db, err := database.OpenMigrated(ctx, filename)
	if err != nil {
		return err
	}
	defer db.Close()

	return NewStockStore(db).Save(ctx, p)
}

// Load reads the portfolio stored in filename.
func (r *SQLiteRepository) Load(ctx context.Context, filename string, opts ...portfolio.Option) (*portfolio.Portfolio, error) {
	if _, err := os.Stat(filename); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSnapshotNotFound, filename)
	}

	db, err := database.OpenMigrated(ctx, filename)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return NewStockStore(db).Load(ctx, opts...)
}

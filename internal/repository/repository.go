// Package repository persists whole portfolios to files. The file extension
// selects the storage format.
package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/portfolio"
)

// Repository saves and loads portfolio snapshots. Failures are returned as is;
// nothing is retried.
type Repository interface {
	Save(ctx context.Context, filename string, p *portfolio.Portfolio) error
	Load(ctx context.Context, filename string, opts ...portfolio.Option) (*portfolio.Portfolio, error)
}

// FileRepository routes .json files to a JSONRepository and .db, .sqlite and
// .sqlite3 files to a SQLiteRepository.
type FileRepository struct {
	json   Repository
	sqlite Repository
}

// NewFileRepository creates a FileRepository from the two format repositories.
func NewFileRepository(json *JSONRepository, sqlite *SQLiteRepository) *FileRepository {
	return &FileRepository{json: json, sqlite: sqlite}
}

// Save writes p to filename.
func (r *FileRepository) Save(ctx context.Context, filename string, p *portfolio.Portfolio) error {
	repo, err := r.repositoryFor(filename)
	if err != nil {
		return err
	}
	return repo.Save(ctx, filename, p)
}

// Load reads the portfolio stored in filename.
func (r *FileRepository) Load(ctx context.Context, filename string, opts ...portfolio.Option) (*portfolio.Portfolio, error) {
	repo, err := r.repositoryFor(filename)
	if err != nil {
		return nil, err
	}
	return repo.Load(ctx, filename, opts...)
}

func (r *FileRepository) repositoryFor(filename string) (Repository, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return r.json, nil
	case ".db", ".sqlite", ".sqlite3":
		return r.sqlite, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFormat, filename)
	}
}

package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/portfolio"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/snapshot"
)

// snapshotTTL bounds the age of an encrypted snapshot that will still be
// accepted. Snapshots are long-lived, so it is effectively unlimited.
const snapshotTTL = 100 * 365 * 24 * time.Hour

// JSONRepository stores portfolios as indented JSON files. With keys set the
// file content is a fernet token instead.
type JSONRepository struct {
	keys []*fernet.Key
}

// NewJSONRepository creates a repository writing plain JSON.
func NewJSONRepository() *JSONRepository {
	return &JSONRepository{}
}

// NewEncryptedJSONRepository creates a repository that encrypts with the
// first key and decrypts with any of them, which allows key rotation.
func NewEncryptedJSONRepository(encodedKeys ...string) (*JSONRepository, error) {
	keys, err := fernet.DecodeKeys(encodedKeys...)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot key: %w", err)
	}
	return &JSONRepository{keys: keys}, nil
}

// Encrypted reports whether snapshots are encrypted.
func (r *JSONRepository) Encrypted() bool {
	return len(r.keys) > 0
}

// Save writes p to filename, replacing it atomically.
func (r *JSONRepository) Save(_ context.Context, filename string, p *portfolio.Portfolio) error {
	raw, err := snapshot.Encode(p)
	if err != nil {
		return fmt.Errorf("failed to encode portfolio: %w", err)
	}

	var data bytes.Buffer
	if err := json.Indent(&data, raw, "", "  "); err != nil {
		return fmt.Errorf("failed to format portfolio: %w", err)
	}
	content := data.Bytes()

	if r.Encrypted() {
		content, err = fernet.EncryptAndSign(content, r.keys[0])
		if err != nil {
			return fmt.Errorf("failed to encrypt portfolio: %w", err)
		}
	}

	return writeFileAtomic(filename, content)
}

// Load reads the portfolio in filename.
func (r *JSONRepository) Load(_ context.Context, filename string, opts ...portfolio.Option) (*portfolio.Portfolio, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrSnapshotNotFound, filename)
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	if r.Encrypted() {
		content = fernet.VerifyAndDecrypt(bytes.TrimSpace(content), snapshotTTL, r.keys)
		if content == nil {
			return nil, fmt.Errorf("failed to decrypt snapshot %s: invalid key or corrupted file", filename)
		}
	}

	p, err := snapshot.Decode(content, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", filename, err)
	}
	return p, nil
}

// writeFileAtomic writes to a temporary file in the target directory and
// renames it over filename so readers never see a partial snapshot.
func writeFileAtomic(filename string, content []byte) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(filename)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

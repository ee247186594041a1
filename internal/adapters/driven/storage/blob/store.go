package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

const uploadsDir = "uploads"

// Store is a filesystem implementation of driven.BlobStore.
type Store struct {
	dir string
}

// NewStore creates a blob store under dataDir/uploads.
// If dataDir is empty, defaults to ~/.folio/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".folio", "data")
	}

	dir := filepath.Join(dataDir, uploadsDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the uploads directory.
func (s *Store) Dir() string {
	return s.dir
}

// Put writes data to a temp file and renames it into place.
func (s *Store) Put(ctx context.Context, name string, data []byte) (string, error) {
	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("moving %s into place: %w", name, err)
	}
	return path, nil
}

// Open returns the stored file.
func (s *Store) Open(_ context.Context, name string) (io.ReadSeekCloser, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path) //nolint:gosec // path is confined to the uploads dir
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return f, nil
}

// Delete removes the stored file. Missing files are ignored.
func (s *Store) Delete(_ context.Context, name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", name, err)
	}
	return nil
}

// resolve maps a stored filename to a path inside the uploads dir.
func (s *Store) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("blob name %q: %w", name, domain.ErrInvalidInput)
	}
	return filepath.Join(s.dir, name), nil
}

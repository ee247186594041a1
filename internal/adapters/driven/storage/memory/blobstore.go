package memory

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore is an in-memory implementation of driven.BlobStore for testing.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		blobs: make(map[string][]byte),
	}
}

// Put writes a copy of data under name.
func (s *BlobStore) Put(_ context.Context, name string, data []byte) (string, error) {
	if name == "" {
		return "", domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[name] = bytes.Clone(data)
	return "memory://" + name, nil
}

// Open returns a reader over the stored bytes.
func (s *BlobStore) Open(_ context.Context, name string) (io.ReadSeekCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return nopCloser{bytes.NewReader(data)}, nil
}

// Delete removes name.
func (s *BlobStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, name)
	return nil
}

// Len returns the number of stored blobs.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }

package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
	}
}

// Save stores or updates a document.
func (s *DocumentStore) Save(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" || doc.StoredFilename == "" || doc.Fingerprint == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.documents {
		other := s.documents[id]
		if id == doc.ID {
			continue
		}
		if other.Fingerprint == doc.Fingerprint || other.StoredFilename == doc.StoredFilename {
			return domain.ErrAlreadyExists
		}
	}

	now := time.Now().UTC()
	if doc.UploadDate.IsZero() {
		doc.UploadDate = now
	}
	doc.UpdatedAt = now
	if doc.Status == "" {
		doc.Status = domain.StatusPending
	}
	s.documents[doc.ID] = *doc
	return nil
}

// Get retrieves a document by ID.
func (s *DocumentStore) Get(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetByFingerprint retrieves the document with an exact fingerprint match.
func (s *DocumentStore) GetByFingerprint(_ context.Context, fp domain.Fingerprint) (*domain.Document, error) {
	return s.find(func(d *domain.Document) bool { return d.Fingerprint == fp })
}

// GetByStoredFilename retrieves the document owning a record file name.
func (s *DocumentStore) GetByStoredFilename(_ context.Context, storedFilename string) (*domain.Document, error) {
	return s.find(func(d *domain.Document) bool { return d.StoredFilename == storedFilename })
}

// List returns all documents, newest first.
func (s *DocumentStore) List(_ context.Context) ([]domain.Document, error) {
	return s.filter(func(*domain.Document) bool { return true }), nil
}

// SearchByFilename returns documents whose original filename contains query.
func (s *DocumentStore) SearchByFilename(_ context.Context, query string) ([]domain.Document, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []domain.Document{}, nil
	}
	return s.filter(func(d *domain.Document) bool {
		return strings.Contains(strings.ToLower(d.OriginalFilename), query)
	}), nil
}

// UpdateStatus changes the processing status, page count and error.
func (s *DocumentStore) UpdateStatus(
	_ context.Context, id string, status domain.ProcessingStatus, totalPages int, errMsg string,
) error {
	if !status.IsValid() {
		return domain.ErrInvalidInput
	}
	return s.update(id, func(d *domain.Document) {
		d.Status = status
		d.TotalPages = totalPages
		d.Error = errMsg
	})
}

// UpdateSummary stores the generated summary.
func (s *DocumentStore) UpdateSummary(_ context.Context, id, summary string) error {
	return s.update(id, func(d *domain.Document) { d.Summary = summary })
}

// Delete removes a document.
func (s *DocumentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	return nil
}

// Stats returns aggregate document counts.
func (s *DocumentStore) Stats(_ context.Context) (*domain.DocumentStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &domain.DocumentStats{TotalDocuments: len(s.documents)}
	for id := range s.documents {
		stats.TotalBytes += s.documents[id].FileSize
		stats.TotalPages += s.documents[id].TotalPages
	}
	return stats, nil
}

func (s *DocumentStore) find(match func(*domain.Document) bool) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id := range s.documents {
		doc := s.documents[id]
		if match(&doc) {
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *DocumentStore) filter(match func(*domain.Document) bool) []domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Document, 0, len(s.documents))
	for id := range s.documents {
		doc := s.documents[id]
		if match(&doc) {
			result = append(result, doc)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].UploadDate.Equal(result[j].UploadDate) {
			return result[i].UploadDate.After(result[j].UploadDate)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (s *DocumentStore) update(id string, apply func(*domain.Document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	apply(&doc)
	doc.UpdatedAt = time.Now().UTC()
	s.documents[id] = doc
	return nil
}

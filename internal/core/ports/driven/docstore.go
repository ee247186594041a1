package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// DocumentStore persists uploaded document metadata.
type DocumentStore interface {
	// Save stores or updates a document.
	// A second document with the same fingerprint returns domain.ErrAlreadyExists.
	Save(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// GetByFingerprint retrieves the document with an exact fingerprint match.
	GetByFingerprint(ctx context.Context, fp domain.Fingerprint) (*domain.Document, error)

	// GetByStoredFilename retrieves the document owning a record file name.
	GetByStoredFilename(ctx context.Context, storedFilename string) (*domain.Document, error)

	// List returns all documents, newest first.
	List(ctx context.Context) ([]domain.Document, error)

	// SearchByFilename returns documents whose original filename contains query.
	SearchByFilename(ctx context.Context, query string) ([]domain.Document, error)

	// UpdateStatus changes the processing status, page count and error.
	UpdateStatus(ctx context.Context, id string, status domain.ProcessingStatus, totalPages int, errMsg string) error

	// UpdateSummary stores the generated summary.
	UpdateSummary(ctx context.Context, id, summary string) error

	// Delete removes a document. Unknown IDs are a no-op.
	Delete(ctx context.Context, id string) error

	// Stats returns aggregate document counts.
	Stats(ctx context.Context) (*domain.DocumentStats, error)
}

package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// DocumentService manages uploaded documents.
type DocumentService interface {
	// List returns all documents, newest first.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetContent returns the stored pages with their tables.
	GetContent(ctx context.Context, documentID string) (*domain.DocumentContent, error)

	// Delete removes a document and all of its records.
	Delete(ctx context.Context, documentID string) error

	// Summary returns the cached summary or generates one.
	// The boolean reports whether the summary was cached.
	Summary(ctx context.Context, documentID string) (string, bool, error)

	// OpenPDF returns the original bytes of a document.
	OpenPDF(ctx context.Context, documentID string) (io.ReadSeekCloser, *domain.Document, error)

	// ExportTables returns the document's tables as a spreadsheet.
	ExportTables(ctx context.Context, documentID string) ([]byte, error)
}

package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// SearchService provides text search and statistics.
type SearchService interface {
	// Search returns matching pages with filename, page and snippet.
	Search(ctx context.Context, query string, limit int) ([]domain.SearchMatch, error)

	// SearchDocuments returns documents whose filename contains query.
	SearchDocuments(ctx context.Context, query string) ([]domain.Document, error)

	// Stats returns aggregate counts of files, pages and size.
	Stats(ctx context.Context) (*domain.Stats, error)
}

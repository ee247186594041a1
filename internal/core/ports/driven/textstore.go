package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// TextStore persists extracted page text and tables keyed by file name.
type TextStore interface {
	// StorePages writes every page of a file in one transaction and returns
	// the record ids in page order. Either all pages are committed or none.
	// An empty file name returns domain.ErrInvalidInput.
	StorePages(ctx context.Context, fileName string, pages []domain.ExtractedPage) ([]int64, error)

	// SearchText returns records whose text contains query, case-insensitively,
	// ordered by relevance then recency.
	SearchText(ctx context.Context, query string, limit int) ([]domain.StoredTextRecord, error)

	// GetFilePages returns a file's records ordered by page number.
	GetFilePages(ctx context.Context, fileName string) ([]domain.StoredTextRecord, error)

	// GetFileTables returns a file's tables ordered by page and position.
	GetFileTables(ctx context.Context, fileName string) ([]domain.StoredTable, error)

	// GetStats returns aggregate counts over all records.
	GetStats(ctx context.Context) (*domain.Stats, error)

	// DeleteFile removes all records of a file. Unknown files are a no-op.
	DeleteFile(ctx context.Context, fileName string) (int64, error)

	// CleanupOldRecords deletes records created before now minus olderThan
	// and returns the number of page records deleted.
	CleanupOldRecords(ctx context.Context, olderThan time.Duration) (int64, error)
}

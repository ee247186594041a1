package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// ArtifactWriter writes per-file output artifacts for a batch.
type ArtifactWriter interface {
	// Write stores the structured and plain-text renderings of result and
	// returns the paths written. Names derive from the source filename.
	Write(ctx context.Context, result *domain.ExtractionResult) ([]string, error)
}

// TableExporter renders stored tables to a spreadsheet.
type TableExporter interface {
	// Export returns the encoded workbook for the given tables.
	Export(ctx context.Context, title string, tables []domain.StoredTable) ([]byte, error)
}

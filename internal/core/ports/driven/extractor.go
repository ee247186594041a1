package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// ContentExtractor converts raw PDF bytes into structured pages.
// Implementations have no side effects on persistence.
type ContentExtractor interface {
	// Extract parses data and returns one ExtractedPage per PDF page.
	// Unreadable input fails with a *domain.ExtractionError of kind InvalidFormat.
	Extract(ctx context.Context, filename string, data []byte, opts domain.ExtractOptions) (*domain.ExtractionResult, error)
}

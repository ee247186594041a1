package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// UploadService accepts PDFs into the pipeline.
type UploadService interface {
	// Upload processes a single file. Byte-identical content already stored
	// returns the existing document with Duplicate set.
	Upload(ctx context.Context, filename string, data []byte) (*domain.UploadResult, error)

	// UploadBatch processes many files and reports per-file outcomes.
	UploadBatch(ctx context.Context, files []domain.InputFile, opts domain.BatchOptions) (*domain.BatchReport, error)
}

// BatchProcessor drives extraction over a set of files.
type BatchProcessor interface {
	// Process runs the batch. Per-file failures are reported, never returned.
	Process(ctx context.Context, files []domain.InputFile, opts domain.BatchOptions) (*domain.BatchReport, error)
}

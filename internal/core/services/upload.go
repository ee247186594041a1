package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ensure UploadService implements the interface.
var _ driving.UploadService = (*UploadService)(nil)

// UploadService accepts single uploads and batches.
type UploadService struct {
	pipeline      *Pipeline
	batch         driving.BatchProcessor
	extractTables bool
}

// NewUploadService creates an upload service.
// Single uploads extract tables when extractTables is set.
func NewUploadService(pipeline *Pipeline, batch driving.BatchProcessor, extractTables bool) *UploadService {
	return &UploadService{
		pipeline:      pipeline,
		batch:         batch,
		extractTables: extractTables,
	}
}

// Upload processes a single file and persists it.
func (s *UploadService) Upload(ctx context.Context, filename string, data []byte) (*domain.UploadResult, error) {
	res, err := s.pipeline.process(ctx, domain.InputFile{Filename: filename, Data: data}, domain.BatchOptions{
		ExtractTables: s.extractTables,
		Persist:       true,
	})
	if err != nil {
		return nil, err
	}
	if res.document == nil {
		return nil, errors.New("upload produced no document")
	}
	return &domain.UploadResult{
		Document:   *res.document,
		Duplicate:  res.outcome.Duplicate,
		TextLength: res.outcome.TextLength,
		Duration:   res.outcome.Duration,
	}, nil
}

// UploadBatch hands files to the batch processor.
func (s *UploadService) UploadBatch(
	ctx context.Context, files []domain.InputFile, opts domain.BatchOptions,
) (*domain.BatchReport, error) {
	if s.batch == nil {
		return nil, errors.New("batch processor not configured")
	}
	return s.batch.Process(ctx, files, opts)
}

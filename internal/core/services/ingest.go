package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// storedExtension is appended to document IDs to form stored filenames.
const storedExtension = ".pdf"

// Pipeline runs one file through duplicate check, extraction and persistence.
type Pipeline struct {
	detector  *DuplicateDetector
	extractor driven.ContentExtractor
	docStore  driven.DocumentStore
	textStore driven.TextStore
	blobStore driven.BlobStore
	artifacts driven.ArtifactWriter

	newID func() string
	now   func() time.Time
}

// NewPipeline creates an ingest pipeline.
// The blobStore parameter is optional (can be nil).
func NewPipeline(
	extractor driven.ContentExtractor,
	docStore driven.DocumentStore,
	textStore driven.TextStore,
	blobStore driven.BlobStore,
) *Pipeline {
	return &Pipeline{
		detector:  NewDuplicateDetector(docStore),
		extractor: extractor,
		docStore:  docStore,
		textStore: textStore,
		blobStore: blobStore,
		newID:     func() string { return uuid.New().String() },
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetArtifactWriter sets the writer used when SaveToFiles is requested.
func (p *Pipeline) SetArtifactWriter(w driven.ArtifactWriter) {
	p.artifacts = w
}

// Detector returns the duplicate detector.
func (p *Pipeline) Detector() *DuplicateDetector {
	return p.detector
}

// ingestResult is the outcome of one file.
type ingestResult struct {
	outcome  domain.FileOutcome
	document *domain.Document
}

// process runs ingest and turns a panic into an error for that file only.
func (p *Pipeline) process(
	ctx context.Context, file domain.InputFile, opts domain.BatchOptions,
) (res *ingestResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			res, err = nil, fmt.Errorf("processing %s: panic: %v", file.Filename, rec)
		}
	}()
	return p.ingest(ctx, file, opts)
}

// ingest processes a single file. Errors are classified with domain.KindOf.
func (p *Pipeline) ingest(ctx context.Context, file domain.InputFile, opts domain.BatchOptions) (*ingestResult, error) {
	started := time.Now()
	if strings.TrimSpace(file.Filename) == "" {
		return nil, fmt.Errorf("empty filename: %w", domain.ErrInvalidInput)
	}

	fp, existing, err := p.detector.Check(ctx, file.Data)
	if err != nil {
		return nil, fmt.Errorf("checking duplicates for %s: %w: %w", file.Filename, domain.ErrPersistence, err)
	}
	if IsDuplicate(existing) {
		logger.Info("%s is a duplicate of %s (%s)", file.Filename, existing.ID, fp.Short())
		return &ingestResult{
			outcome: domain.FileOutcome{
				Filename:   file.Filename,
				DocumentID: existing.ID,
				Duplicate:  true,
				PagesCount: existing.TotalPages,
				Duration:   time.Since(started),
			},
			document: existing,
		}, nil
	}

	if !opts.Persist {
		result, err := p.extract(ctx, file, opts)
		if err != nil {
			return nil, err
		}
		outcome := outcomeOf(file.Filename, result)
		outcome.Artifacts = p.writeArtifacts(ctx, result, opts)
		outcome.Duration = time.Since(started)
		return &ingestResult{outcome: outcome}, nil
	}

	doc, dup, err := p.register(ctx, file, fp, existing)
	if err != nil {
		return nil, err
	}
	if dup {
		return &ingestResult{
			outcome: domain.FileOutcome{
				Filename:   file.Filename,
				DocumentID: doc.ID,
				Duplicate:  true,
				PagesCount: doc.TotalPages,
				Duration:   time.Since(started),
			},
			document: doc,
		}, nil
	}

	if err := p.transition(ctx, doc, domain.StatusProcessing, 0, ""); err != nil {
		return nil, err
	}

	if p.blobStore != nil {
		if _, err := p.blobStore.Put(ctx, doc.StoredFilename, file.Data); err != nil {
			err = fmt.Errorf("saving upload %s: %w: %w", file.Filename, domain.ErrPersistence, err)
			p.fail(ctx, doc, err)
			return nil, err
		}
	}

	result, err := p.extract(ctx, file, opts)
	if err != nil {
		p.fail(ctx, doc, err)
		return nil, err
	}

	ids, err := p.textStore.StorePages(ctx, doc.StoredFilename, result.Pages)
	if err != nil {
		err = fmt.Errorf("storing pages of %s: %w: %w", file.Filename, domain.ErrPersistence, err)
		logger.Warn("%v", err)
		p.fail(ctx, doc, err)
		return nil, err
	}

	if err := p.transition(ctx, doc, domain.StatusCompleted, result.PagesCount, ""); err != nil {
		return nil, err
	}

	outcome := outcomeOf(file.Filename, result)
	outcome.DocumentID = doc.ID
	outcome.RecordIDs = ids
	outcome.Artifacts = p.writeArtifacts(ctx, result, opts)
	outcome.Duration = time.Since(started)

	logger.Info("%s: %d pages, %d tables stored as %s", file.Filename, outcome.PagesCount,
		outcome.TablesCount, doc.StoredFilename)
	return &ingestResult{outcome: outcome, document: doc}, nil
}

// register creates the document row, or reuses a failed one for a retry.
// It reports dup when a concurrent upload of the same bytes won the race.
func (p *Pipeline) register(
	ctx context.Context, file domain.InputFile, fp domain.Fingerprint, existing *domain.Document,
) (*domain.Document, bool, error) {
	if existing != nil {
		logger.Info("retrying failed document %s for %s", existing.ID, file.Filename)
		if _, err := p.textStore.DeleteFile(ctx, existing.StoredFilename); err != nil {
			return nil, false, fmt.Errorf("clearing failed records of %s: %w: %w",
				file.Filename, domain.ErrPersistence, err)
		}
		existing.OriginalFilename = file.Filename
		if err := p.docStore.Save(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("registering retry of %s: %w: %w", file.Filename, domain.ErrPersistence, err)
		}
		return existing, false, nil
	}

	id := p.newID()
	doc := &domain.Document{
		ID:               id,
		OriginalFilename: file.Filename,
		StoredFilename:   id + storedExtension,
		FileSize:         int64(len(file.Data)),
		Fingerprint:      fp,
		Status:           domain.StatusPending,
		UploadDate:       p.now(),
	}
	err := p.docStore.Save(ctx, doc)
	if errors.Is(err, domain.ErrAlreadyExists) {
		winner, findErr := p.detector.FindExisting(ctx, fp)
		if findErr == nil && winner != nil {
			return winner, true, nil
		}
	}
	if err != nil {
		return nil, false, fmt.Errorf("registering %s: %w: %w", file.Filename, domain.ErrPersistence, err)
	}
	return doc, false, nil
}

// transition moves doc to next, enforcing the status machine.
func (p *Pipeline) transition(
	ctx context.Context, doc *domain.Document, next domain.ProcessingStatus, pages int, errMsg string,
) error {
	if !doc.Status.CanTransitionTo(next) {
		return fmt.Errorf("%s: %s to %s: %w", doc.ID, doc.Status, next, domain.ErrInvalidTransition)
	}
	if err := p.docStore.UpdateStatus(ctx, doc.ID, next, pages, errMsg); err != nil {
		return fmt.Errorf("updating status of %s: %w: %w", doc.ID, domain.ErrPersistence, err)
	}
	doc.Status = next
	doc.TotalPages = pages
	doc.Error = errMsg
	return nil
}

// fail marks doc failed. It runs even when ctx is done.
func (p *Pipeline) fail(ctx context.Context, doc *domain.Document, cause error) {
	if err := p.transition(context.WithoutCancel(ctx), doc, domain.StatusFailed, 0, cause.Error()); err != nil {
		logger.Warn("marking %s failed: %v", doc.ID, err)
	}
}

// extract runs the content extractor. A panic inside it means the file
// could not be read.
func (p *Pipeline) extract(
	ctx context.Context, file domain.InputFile, opts domain.BatchOptions,
) (result *domain.ExtractionResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result, err = nil, domain.NewInvalidFormat(file.Filename, fmt.Errorf("extractor panic: %v", rec))
		}
	}()
	return p.extractor.Extract(ctx, file.Filename, file.Data, domain.ExtractOptions{Tables: opts.ExtractTables})
}

// writeArtifacts writes the per-file outputs when requested.
// Artifact failures are logged and do not fail the file.
func (p *Pipeline) writeArtifacts(
	ctx context.Context, result *domain.ExtractionResult, opts domain.BatchOptions,
) []string {
	if !opts.SaveToFiles || p.artifacts == nil {
		return nil
	}
	paths, err := p.artifacts.Write(ctx, result)
	if err != nil {
		logger.Warn("writing artifacts for %s: %v", result.OriginalFilename, err)
		return nil
	}
	return paths
}

// outcomeOf summarises an extraction result.
func outcomeOf(filename string, result *domain.ExtractionResult) domain.FileOutcome {
	return domain.FileOutcome{
		Filename:    filename,
		PagesCount:  result.PagesCount,
		TextLength:  utf8.RuneCountInString(result.ConcatenatedText),
		TablesCount: result.TablesCount(),
	}
}

// stats returns the store totals for a batch report, or nil when they
// cannot be read.
func (p *Pipeline) stats(ctx context.Context) *domain.Stats {
	if p.textStore == nil {
		return nil
	}
	stats, err := p.textStore.GetStats(ctx)
	if err != nil {
		logger.Warn("reading store stats for batch report: %v", err)
		return nil
	}
	return stats
}

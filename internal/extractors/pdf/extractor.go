package pdf

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.ContentExtractor = (*Extractor)(nil)

var disableConfigDir sync.Once

// Extractor implements driven.ContentExtractor for PDF files.
type Extractor struct {
	strategies []TableStrategy
	now        func() time.Time
}

// New creates an extractor that runs external tools with os/exec.
func New(cfg Config) *Extractor {
	return NewWithRunner(cfg, execRunner{})
}

// NewWithRunner creates an extractor with a custom command runner.
func NewWithRunner(cfg Config, runner CommandRunner) *Extractor {
	disableConfigDir.Do(api.DisableConfigDir)

	cfg = cfg.withDefaults()
	strategies := []TableStrategy{
		&nativeStrategy{rowTolerance: cfg.RowTolerance, cellGap: cfg.CellGap},
	}
	switch {
	case !cfg.OCR:
		logger.Debug("OCR table strategy off")
	case runner == nil:
		logger.Warn("OCR table strategy disabled: no command runner")
	default:
		if err := CheckAvailable(cfg.LookPath); err != nil {
			logger.Warn("OCR table strategy disabled: %v", err)
			break
		}
		strategies = append(strategies, &ocrStrategy{
			runner:     runner,
			language:   cfg.OCRLanguage,
			resolution: cfg.OCRResolution,
			cellGap:    cfg.CellGap,
		})
	}
	strategies = append(strategies, patternStrategy{})

	return &Extractor{
		strategies: strategies,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Strategies returns the table sources in the order they are tried.
func (e *Extractor) Strategies() []domain.TableSource {
	sources := make([]domain.TableSource, len(e.strategies))
	for i, s := range e.strategies {
		sources[i] = s.Source()
	}
	return sources
}

// Extract reads every page of data in document order.
// Cancelling ctx does not interrupt a file once started.
func (e *Extractor) Extract(
	ctx context.Context, filename string, data []byte, opts domain.ExtractOptions,
) (*domain.ExtractionResult, error) {
	ctx = context.WithoutCancel(ctx)

	if !bytes.HasPrefix(data, pdfSignature) {
		return nil, domain.NewInvalidFormat(filename, errMissingSignature)
	}

	pageCount, err := inspect(data)
	if err != nil {
		return nil, domain.NewInvalidFormat(filename, err)
	}
	reader, err := openReader(data)
	if err != nil {
		return nil, domain.NewInvalidFormat(filename, err)
	}
	if n := reader.numPage(); n != pageCount {
		logger.Debug("%s: pdfcpu reports %d pages, page reader %d", filename, pageCount, n)
	}

	work := &scratch{data: data}
	defer work.cleanup()

	logger.Debug("extracting %s: %d pages, tables=%t", filename, pageCount, opts.Tables)

	pages := make([]domain.ExtractedPage, 0, pageCount)
	for n := 1; n <= pageCount; n++ {
		text, glyphs, err := reader.page(n, opts.Tables)
		if err != nil {
			logger.Warn("%s: %v; page recorded empty", filename, err)
		}
		page := domain.ExtractedPage{PageNumber: n, Text: text}
		if opts.Tables {
			page.Tables = e.tables(ctx, filename, &pageInput{
				number:  n,
				text:    text,
				glyphs:  glyphs,
				scratch: work,
			})
		}
		pages = append(pages, page)
	}

	return domain.NewExtractionResult(filename, pages, e.now()), nil
}

// tables runs the strategies in order and returns the first non-empty result.
func (e *Extractor) tables(ctx context.Context, filename string, page *pageInput) []domain.Table {
	for _, strategy := range e.strategies {
		found, err := strategy.Tables(ctx, page)
		if err != nil {
			logger.Warn("%s page %d: %v: %s: %v",
				filename, page.number, domain.ErrTableExtractionDegraded, strategy.Source(), err)
			continue
		}
		if len(found) == 0 {
			continue
		}
		tables := make([]domain.Table, len(found))
		for i, t := range found {
			tables[i] = t.WithSource(strategy.Source())
		}
		return tables
	}
	return nil
}

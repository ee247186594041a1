package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// summaryMaxLength bounds generated summaries, in characters.
const summaryMaxLength = 1000

// ErrExportNotConfigured is returned when no table exporter is set.
var ErrExportNotConfigured = errors.New("table export not configured")

// DocumentService manages uploaded documents and their records.
type DocumentService struct {
	docStore  driven.DocumentStore
	textStore driven.TextStore
	blobStore driven.BlobStore
	exporter  driven.TableExporter
	chat      driven.ChatModel
}

// NewDocumentService creates a new document service.
// The blobStore parameter is optional (can be nil).
func NewDocumentService(
	docStore driven.DocumentStore,
	textStore driven.TextStore,
	blobStore driven.BlobStore,
) *DocumentService {
	return &DocumentService{
		docStore:  docStore,
		textStore: textStore,
		blobStore: blobStore,
	}
}

// SetTableExporter sets the exporter used by ExportTables.
func (s *DocumentService) SetTableExporter(exporter driven.TableExporter) {
	s.exporter = exporter
}

// SetChatModel sets the model used for summaries. Nil disables them.
func (s *DocumentService) SetChatModel(model driven.ChatModel) {
	s.chat = model
}

// List returns all documents, newest first.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.List(ctx)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.Get(ctx, documentID)
}

// GetContent returns the stored pages with their tables.
func (s *DocumentService) GetContent(ctx context.Context, documentID string) (*domain.DocumentContent, error) {
	doc, err := s.docStore.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	records, err := s.textStore.GetFilePages(ctx, doc.StoredFilename)
	if err != nil {
		return nil, fmt.Errorf("loading pages: %w", err)
	}
	tables, err := s.textStore.GetFileTables(ctx, doc.StoredFilename)
	if err != nil {
		return nil, fmt.Errorf("loading tables: %w", err)
	}

	byPage := make(map[int][]domain.Table)
	for i := range tables {
		byPage[tables[i].PageNumber] = append(byPage[tables[i].PageNumber], tables[i].Table)
	}

	content := &domain.DocumentContent{
		Document: *doc,
		Pages:    make([]domain.ExtractedPage, 0, len(records)),
	}
	texts := make([]string, 0, len(records))
	for i := range records {
		page := domain.ExtractedPage{
			PageNumber: records[i].PageNumber,
			Text:       records[i].TextContent,
			Tables:     byPage[records[i].PageNumber],
		}
		if page.Tables == nil {
			page.Tables = []domain.Table{}
		}
		content.Pages = append(content.Pages, page)
		if page.Text != "" {
			texts = append(texts, page.Text)
		}
	}
	content.Text = strings.Join(texts, "\n")
	return content, nil
}

// Delete removes a document, its records and the stored upload.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	doc, err := s.docStore.Get(ctx, documentID)
	if err != nil {
		return err
	}

	n, err := s.textStore.DeleteFile(ctx, doc.StoredFilename)
	if err != nil {
		return fmt.Errorf("deleting records: %w", err)
	}
	if s.blobStore != nil {
		if err := s.blobStore.Delete(ctx, doc.StoredFilename); err != nil {
			return fmt.Errorf("deleting upload: %w", err)
		}
	}
	if err := s.docStore.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	logger.Info("deleted document %s (%s) with %d pages", doc.ID, doc.OriginalFilename, n)
	return nil
}

// Summary returns the cached summary, generating and caching it when missing.
func (s *DocumentService) Summary(ctx context.Context, documentID string) (string, bool, error) {
	doc, err := s.docStore.Get(ctx, documentID)
	if err != nil {
		return "", false, err
	}
	if doc.Summary != "" {
		return doc.Summary, true, nil
	}
	if s.chat == nil {
		return "", false, domain.ErrLLMUnavailable
	}

	content, err := s.GetContent(ctx, documentID)
	if err != nil {
		return "", false, err
	}
	if strings.TrimSpace(content.Text) == "" {
		return "", false, fmt.Errorf("document %s has no text: %w", documentID, domain.ErrInvalidInput)
	}

	summary, err := s.chat.Summarise(ctx, truncateRunes(content.Text, maxContextRunes), summaryMaxLength)
	if err != nil {
		return "", false, fmt.Errorf("summarising %s: %w", documentID, err)
	}
	if err := s.docStore.UpdateSummary(ctx, documentID, summary); err != nil {
		logger.Warn("caching summary for %s: %v", documentID, err)
	}
	return summary, false, nil
}

// OpenPDF returns the original upload.
func (s *DocumentService) OpenPDF(ctx context.Context, documentID string) (io.ReadSeekCloser, *domain.Document, error) {
	doc, err := s.docStore.Get(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	if s.blobStore == nil {
		return nil, nil, domain.ErrNotFound
	}
	r, err := s.blobStore.Open(ctx, doc.StoredFilename)
	if err != nil {
		return nil, nil, err
	}
	return r, doc, nil
}

// ExportTables renders the document's tables as a spreadsheet.
func (s *DocumentService) ExportTables(ctx context.Context, documentID string) ([]byte, error) {
	if s.exporter == nil {
		return nil, ErrExportNotConfigured
	}
	doc, err := s.docStore.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	tables, err := s.textStore.GetFileTables(ctx, doc.StoredFilename)
	if err != nil {
		return nil, fmt.Errorf("loading tables: %w", err)
	}
	return s.exporter.Export(ctx, doc.OriginalFilename, tables)
}

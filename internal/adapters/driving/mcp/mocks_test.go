package mcp

import (
	"context"
	"io"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	matches   []domain.SearchMatch
	stats     *domain.Stats
	err       error
	lastQuery string
	lastLimit int
}

func (m *mockSearchService) Search(_ context.Context, query string, limit int) ([]domain.SearchMatch, error) {
	m.lastQuery = query
	m.lastLimit = limit
	return m.matches, m.err
}

func (m *mockSearchService) SearchDocuments(_ context.Context, _ string) ([]domain.Document, error) {
	return nil, m.err
}

func (m *mockSearchService) Stats(_ context.Context) (*domain.Stats, error) {
	return m.stats, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	content   *domain.DocumentContent
	err       error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return nil, m.err
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) (*domain.DocumentContent, error) {
	return m.content, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockDocumentService) Summary(_ context.Context, _ string) (string, bool, error) {
	return "", false, m.err
}

func (m *mockDocumentService) OpenPDF(_ context.Context, _ string) (io.ReadSeekCloser, *domain.Document, error) {
	return nil, nil, m.err
}

func (m *mockDocumentService) ExportTables(_ context.Context, _ string) ([]byte, error) {
	return nil, m.err
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	available   bool
	answer      string
	err         error
	lastID      string
	lastHistory []driven.ChatMessage
}

func (m *mockChatService) Ask(
	_ context.Context, documentID, _ string, history []driven.ChatMessage,
) (string, error) {
	m.lastID = documentID
	m.lastHistory = history
	return m.answer, m.err
}

func (m *mockChatService) Available() bool {
	return m.available
}

package tui

import (
	"context"
	"io"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

type mockSearch struct {
	matches []domain.SearchMatch
	err     error
	queries []string
}

func (m *mockSearch) Search(_ context.Context, query string, _ int) ([]domain.SearchMatch, error) {
	m.queries = append(m.queries, query)
	return m.matches, m.err
}

func (m *mockSearch) SearchDocuments(context.Context, string) ([]domain.Document, error) {
	return nil, nil
}

func (m *mockSearch) Stats(context.Context) (*domain.Stats, error) {
	return &domain.Stats{}, nil
}

type mockDocuments struct {
	content *domain.DocumentContent
	err     error
	loaded  []string
}

func (m *mockDocuments) List(context.Context) ([]domain.Document, error) {
	return nil, nil
}

func (m *mockDocuments) Get(_ context.Context, id string) (*domain.Document, error) {
	return &domain.Document{ID: id}, m.err
}

func (m *mockDocuments) GetContent(_ context.Context, id string) (*domain.DocumentContent, error) {
	m.loaded = append(m.loaded, id)
	return m.content, m.err
}

func (m *mockDocuments) Delete(context.Context, string) error {
	return nil
}

func (m *mockDocuments) Summary(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (m *mockDocuments) OpenPDF(context.Context, string) (io.ReadSeekCloser, *domain.Document, error) {
	return nil, nil, domain.ErrNotFound
}

func (m *mockDocuments) ExportTables(context.Context, string) ([]byte, error) {
	return nil, nil
}

type mockChat struct {
	answer string
	asked  []string
}

func (m *mockChat) Ask(_ context.Context, _, question string, _ []driven.ChatMessage) (string, error) {
	m.asked = append(m.asked, question)
	return m.answer, nil
}

func (m *mockChat) Available() bool {
	return true
}

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

type nopReadSeekCloser struct{ *bytes.Reader }

func (nopReadSeekCloser) Close() error { return nil }

// fakeFolio implements every driving port the server uses.
type fakeFolio struct {
	mu        sync.Mutex
	docs      map[string]*domain.Document
	blobs     map[string][]byte
	uploads   []domain.InputFile
	batchOpts domain.BatchOptions
	chatReady bool
	lastAsk   chatRequest
	failWith  error
}

func newFakeFolio() *fakeFolio {
	return &fakeFolio{
		docs:  make(map[string]*domain.Document),
		blobs: make(map[string][]byte),
	}
}

func (f *fakeFolio) services() Services {
	return Services{Upload: f, Documents: f, Search: f, Chat: f}
}

func (f *fakeFolio) add(id, filename, content string) *domain.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc := &domain.Document{
		ID:               id,
		OriginalFilename: filename,
		StoredFilename:   id + ".pdf",
		FileSize:         int64(len(content)),
		Status:           domain.StatusCompleted,
		TotalPages:       1,
		UpdatedAt:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	f.docs[id] = doc
	f.blobs[id] = []byte(content)
	return doc
}

func (f *fakeFolio) get(id string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	doc, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return doc, nil
}

func (f *fakeFolio) Upload(_ context.Context, filename string, data []byte) (*domain.UploadResult, error) {
	f.mu.Lock()
	f.uploads = append(f.uploads, domain.InputFile{Filename: filename, Data: data})
	f.mu.Unlock()
	if bytes.HasPrefix(data, []byte("corrupt")) {
		return nil, domain.NewInvalidFormat(filename, fmt.Errorf("no header"))
	}
	f.mu.Lock()
	for _, doc := range f.docs {
		if doc.OriginalFilename == filename {
			f.mu.Unlock()
			return &domain.UploadResult{Document: *doc, Duplicate: true}, nil
		}
	}
	id := fmt.Sprintf("doc-%d", len(f.docs)+1)
	f.mu.Unlock()
	doc := f.add(id, filename, string(data))
	return &domain.UploadResult{Document: *doc, TextLength: len(data)}, nil
}

func (f *fakeFolio) UploadBatch(
	_ context.Context, files []domain.InputFile, opts domain.BatchOptions,
) (*domain.BatchReport, error) {
	f.mu.Lock()
	f.uploads = append(f.uploads, files...)
	f.batchOpts = opts
	f.mu.Unlock()
	report := domain.NewBatchReport(len(files), time.Now())
	for _, file := range files {
		report.AddProcessed(domain.FileOutcome{Filename: file.Filename, PagesCount: 1})
	}
	report.Finish(time.Now())
	return report, nil
}

func (f *fakeFolio) List(context.Context) ([]domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Document, 0, len(f.docs))
	for _, doc := range f.docs {
		out = append(out, *doc)
	}
	return out, nil
}

func (f *fakeFolio) Get(_ context.Context, id string) (*domain.Document, error) {
	return f.get(id)
}

func (f *fakeFolio) GetContent(_ context.Context, id string) (*domain.DocumentContent, error) {
	doc, err := f.get(id)
	if err != nil {
		return nil, err
	}
	return &domain.DocumentContent{
		Document: *doc,
		Pages:    []domain.ExtractedPage{{PageNumber: 1, Text: string(f.blobs[id]), Tables: []domain.Table{}}},
		Text:     string(f.blobs[id]),
	}, nil
}

func (f *fakeFolio) Delete(_ context.Context, id string) error {
	if _, err := f.get(id); err != nil {
		return err
	}
	f.mu.Lock()
	delete(f.docs, id)
	f.mu.Unlock()
	return nil
}

func (f *fakeFolio) Summary(_ context.Context, id string) (string, bool, error) {
	if _, err := f.get(id); err != nil {
		return "", false, err
	}
	if !f.chatReady {
		return "", false, fmt.Errorf("summary: %w", domain.ErrLLMUnavailable)
	}
	return "short summary", true, nil
}

func (f *fakeFolio) OpenPDF(_ context.Context, id string) (io.ReadSeekCloser, *domain.Document, error) {
	doc, err := f.get(id)
	if err != nil {
		return nil, nil, err
	}
	return nopReadSeekCloser{bytes.NewReader(f.blobs[id])}, doc, nil
}

func (f *fakeFolio) ExportTables(_ context.Context, id string) ([]byte, error) {
	if _, err := f.get(id); err != nil {
		return nil, err
	}
	return []byte("PK-xlsx"), nil
}

func (f *fakeFolio) Search(_ context.Context, query string, limit int) ([]domain.SearchMatch, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return []domain.SearchMatch{{RecordID: int64(limit), Filename: "a.pdf", PageNumber: 1, Snippet: query}}, nil
}

func (f *fakeFolio) SearchDocuments(_ context.Context, query string) ([]domain.Document, error) {
	return []domain.Document{{ID: "match", OriginalFilename: query + ".pdf"}}, nil
}

func (f *fakeFolio) Stats(context.Context) (*domain.Stats, error) {
	return &domain.Stats{TotalFiles: 2, TotalPages: 5, TotalDocuments: 2}, nil
}

func (f *fakeFolio) Ask(_ context.Context, id, question string, history []driven.ChatMessage) (string, error) {
	if _, err := f.get(id); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.lastAsk = chatRequest{DocumentID: id, Question: question, History: history}
	f.mu.Unlock()
	if question == "" {
		return "", fmt.Errorf("empty question: %w", domain.ErrInvalidInput)
	}
	return "answer to " + question, nil
}

func (f *fakeFolio) Available() bool {
	return f.chatReady
}

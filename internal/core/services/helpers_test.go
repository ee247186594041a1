package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/folio/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// fakeExtractor treats data as form-feed separated page texts.
// Data starting with "corrupt" fails as InvalidFormat. Pages containing "|"
// get one native table when tables are requested.
type fakeExtractor struct {
	calls atomic.Int32
}

func (f *fakeExtractor) Extract(
	_ context.Context, filename string, data []byte, opts domain.ExtractOptions,
) (*domain.ExtractionResult, error) {
	f.calls.Add(1)
	if bytes.HasPrefix(data, []byte("corrupt")) {
		return nil, domain.NewInvalidFormat(filename, errors.New("missing %PDF- header"))
	}
	var pages []domain.ExtractedPage
	for _, text := range strings.Split(string(data), "\f") {
		page := domain.ExtractedPage{Text: text}
		if opts.Tables && strings.Contains(text, "|") {
			page.Tables = []domain.Table{
				domain.NewTable([][]string{{"item", "qty"}, {"bolt", "4"}}, domain.TableSourceNative, domain.Confidence(1)),
			}
		}
		pages = append(pages, page)
	}
	return domain.NewExtractionResult(filename, pages, time.Now().UTC()), nil
}

// fakeArtifacts records written results.
type fakeArtifacts struct {
	mu      sync.Mutex
	written []string
	err     error
}

func (f *fakeArtifacts) Write(_ context.Context, result *domain.ExtractionResult) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, result.OriginalFilename)
	return []string{result.OriginalFilename + ".json", result.OriginalFilename + ".txt"}, nil
}

// fakeChat returns canned replies and records its inputs.
type fakeChat struct {
	summaries   atomic.Int32
	lastContext string
	lastHistory []driven.ChatMessage
	err         error
}

func (f *fakeChat) Answer(_ context.Context, text, question string, history []driven.ChatMessage) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lastContext = text
	f.lastHistory = history
	return "answer to " + question, nil
}

func (f *fakeChat) Summarise(_ context.Context, content string, _ int) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.summaries.Add(1)
	f.lastContext = content
	return "summary of " + fmt.Sprint(len(content)) + " chars", nil
}

func (f *fakeChat) ModelName() string { return "fake-model" }

func (f *fakeChat) Close() error { return nil }

// fakeExporter records the tables it was given.
type fakeExporter struct {
	title  string
	tables []domain.StoredTable
}

func (f *fakeExporter) Export(_ context.Context, title string, tables []domain.StoredTable) ([]byte, error) {
	f.title = title
	f.tables = tables
	return []byte("xlsx"), nil
}

// testEnv wires a pipeline over in-memory stores.
type testEnv struct {
	extractor *fakeExtractor
	docs      *memory.DocumentStore
	texts     *memory.TextStore
	blobs     *memory.BlobStore
	artifacts *fakeArtifacts
	pipeline  *Pipeline
}

func newTestEnv() *testEnv {
	env := &testEnv{
		extractor: &fakeExtractor{},
		docs:      memory.NewDocumentStore(),
		texts:     memory.NewTextStore(),
		blobs:     memory.NewBlobStore(),
		artifacts: &fakeArtifacts{},
	}
	env.pipeline = NewPipeline(env.extractor, env.docs, env.texts, env.blobs)
	env.pipeline.SetArtifactWriter(env.artifacts)

	var seq atomic.Int32
	env.pipeline.newID = func() string { return fmt.Sprintf("doc-%d", seq.Add(1)) }
	return env
}

func (e *testEnv) orchestrator(workers int) *Orchestrator {
	return NewOrchestrator(e.pipeline, BatchConfig{Workers: workers})
}

func (e *testEnv) documents() *DocumentService {
	return NewDocumentService(e.docs, e.texts, e.blobs)
}

func (e *testEnv) upload(filename, data string) *domain.UploadResult {
	svc := NewUploadService(e.pipeline, e.orchestrator(1), true)
	res, err := svc.Upload(context.Background(), filename, []byte(data))
	if err != nil {
		panic(err)
	}
	return res
}

func inputFiles(pairs ...string) []domain.InputFile {
	files := make([]domain.InputFile, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		files = append(files, domain.InputFile{Filename: pairs[i], Data: []byte(pairs[i+1])})
	}
	return files
}

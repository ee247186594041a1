package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

type fakeUpload struct {
	result    *domain.UploadResult
	err       error
	lastName  string
	lastData  []byte
	batch     []domain.InputFile
	batchOpts domain.BatchOptions
	report    *domain.BatchReport
}

func (f *fakeUpload) Upload(_ context.Context, filename string, data []byte) (*domain.UploadResult, error) {
	f.lastName = filename
	f.lastData = data
	return f.result, f.err
}

func (f *fakeUpload) UploadBatch(
	_ context.Context, files []domain.InputFile, opts domain.BatchOptions,
) (*domain.BatchReport, error) {
	f.batch = files
	f.batchOpts = opts
	if f.report != nil {
		return f.report, f.err
	}
	report := domain.NewBatchReport(len(files), time.Now())
	for _, file := range files {
		report.AddProcessed(domain.FileOutcome{Filename: file.Filename, PagesCount: 1, DocumentID: "id-" + file.Filename})
	}
	report.Finish(time.Now())
	return report, f.err
}

type fakeDocuments struct {
	docs    []domain.Document
	content *domain.DocumentContent
	summary string
	cached  bool
	xlsx    []byte
	pdf     []byte
	err     error
	deleted []string
}

func (f *fakeDocuments) List(_ context.Context) ([]domain.Document, error) {
	return f.docs, f.err
}

func (f *fakeDocuments) Get(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.docs {
		if f.docs[i].ID == id {
			return &f.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeDocuments) GetContent(_ context.Context, _ string) (*domain.DocumentContent, error) {
	return f.content, f.err
}

func (f *fakeDocuments) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeDocuments) Summary(_ context.Context, _ string) (string, bool, error) {
	return f.summary, f.cached, f.err
}

func (f *fakeDocuments) OpenPDF(ctx context.Context, id string) (io.ReadSeekCloser, *domain.Document, error) {
	doc, err := f.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return nopSeekCloser{bytes.NewReader(f.pdf)}, doc, nil
}

func (f *fakeDocuments) ExportTables(_ context.Context, _ string) ([]byte, error) {
	return f.xlsx, f.err
}

type nopSeekCloser struct{ io.ReadSeeker }

func (nopSeekCloser) Close() error { return nil }

type fakeSearch struct {
	matches   []domain.SearchMatch
	docs      []domain.Document
	stats     *domain.Stats
	err       error
	lastQuery string
	lastLimit int
}

func (f *fakeSearch) Search(_ context.Context, query string, limit int) ([]domain.SearchMatch, error) {
	f.lastQuery = query
	f.lastLimit = limit
	return f.matches, f.err
}

func (f *fakeSearch) SearchDocuments(_ context.Context, query string) ([]domain.Document, error) {
	f.lastQuery = query
	return f.docs, f.err
}

func (f *fakeSearch) Stats(_ context.Context) (*domain.Stats, error) {
	return f.stats, f.err
}

type fakeChat struct {
	available bool
	answers   []string
	err       error
	questions []string
	histories [][]driven.ChatMessage
}

func (f *fakeChat) Ask(_ context.Context, _, question string, history []driven.ChatMessage) (string, error) {
	f.questions = append(f.questions, question)
	f.histories = append(f.histories, history)
	if f.err != nil {
		return "", f.err
	}
	if len(f.answers) == 0 {
		return "", nil
	}
	answer := f.answers[0]
	f.answers = f.answers[1:]
	return answer, nil
}

func (f *fakeChat) Available() bool {
	return f.available
}

type fakeMaintenance struct {
	olderThan time.Duration
	removed   int64
	err       error
	backupDir string
}

func (f *fakeMaintenance) Cleanup(_ context.Context, olderThan time.Duration) (int64, error) {
	f.olderThan = olderThan
	return f.removed, f.err
}

func (f *fakeMaintenance) Backup(_ context.Context, dir string) (string, error) {
	f.backupDir = dir
	if f.err != nil {
		return "", f.err
	}
	if dir == "" {
		dir = "/data/backups"
	}
	return dir + "/folio_backup_20260301_093000.db", nil
}

type fakeSettings struct {
	settings    domain.AppSettings
	validateErr error
	setErr      error
	sets        map[string]string
	llmProvider domain.AIProvider
	llmModel    string
	llmKey      string
}

func (f *fakeSettings) Get() (*domain.AppSettings, error) {
	s := f.settings
	return &s, nil
}

func (f *fakeSettings) Save(settings *domain.AppSettings) error {
	f.settings = *settings
	return nil
}

func (f *fakeSettings) Set(key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	if f.sets == nil {
		f.sets = make(map[string]string)
	}
	f.sets[key] = value
	return nil
}

func (f *fakeSettings) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	f.llmProvider, f.llmModel, f.llmKey = provider, model, apiKey
	return nil
}

func (f *fakeSettings) Validate() error {
	return f.validateErr
}

func (f *fakeSettings) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// testServices is the set of fakes installed by setupTestServices.
type testServices struct {
	upload      *fakeUpload
	documents   *fakeDocuments
	search      *fakeSearch
	chat        *fakeChat
	maintenance *fakeMaintenance
	settings    *fakeSettings
	progress    []domain.ProgressFunc
}

func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	uploaded := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	ts := &testServices{
		upload: &fakeUpload{},
		documents: &fakeDocuments{docs: []domain.Document{{
			ID:               "doc-1",
			OriginalFilename: "invoice.pdf",
			StoredFilename:   "doc-1.pdf",
			TotalPages:       2,
			FileSize:         2048,
			UploadDate:       uploaded,
			Status:           domain.StatusCompleted,
			Fingerprint:      domain.Fingerprint(strings.Repeat("ab", 32)),
		}}},
		search:      &fakeSearch{},
		chat:        &fakeChat{available: true},
		maintenance: &fakeMaintenance{},
		settings:    &fakeSettings{settings: domain.DefaultAppSettings()},
	}
	SetServices(Services{
		Upload:      ts.upload,
		Documents:   ts.documents,
		Search:      ts.search,
		Chat:        ts.chat,
		Maintenance: ts.maintenance,
		Settings:    ts.settings,
		OnProgress:  func(fn domain.ProgressFunc) { ts.progress = append(ts.progress, fn) },
	})
	t.Cleanup(func() { SetServices(Services{}) })
	return ts
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), stdin, args...)
}

func executeContext(t *testing.T, ctx context.Context, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags()
		resetContexts(rootCmd)
	})

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

// resetContexts clears contexts cobra caches on subcommands, so the next
// ExecuteContext call propagates its own context.
func resetContexts(cmd *cobra.Command) {
	for _, c := range cmd.Commands() {
		c.SetContext(nil)
		resetContexts(c)
	}
}

// resetFlags restores flag variables between command runs.
func resetFlags() {
	verbose = false
	batchDir, batchRecursive, batchTables = "", false, true
	batchSaveToFiles, batchNoStore, batchWorkers, batchJSON = false, false, 0, false
	documentListJSON, documentPage, documentOutput = false, 0, ""
	searchLimit, searchJSON, searchFiles, statsJSON = 10, false, false, false
	cleanupOlderThan, backupDir = "", ""
	serveAddr = ""
	watchInitialScan = false
	mcpPort, mcpHost = 0, "localhost"
}

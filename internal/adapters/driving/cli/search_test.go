package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func TestSearchCmd(t *testing.T) {
	t.Run("prints matches", func(t *testing.T) {
		ts := setupTestServices(t)
		ts.search.matches = []domain.SearchMatch{
			{DocumentID: "doc-1", Filename: "invoice.pdf", PageNumber: 2, Snippet: "...net total 42..."},
			{Filename: "legacy.pdf", PageNumber: 1},
		}

		out, err := execute(t, "", "search", "net", "total", "-n", "5")

		require.NoError(t, err)
		assert.Equal(t, "net total", ts.search.lastQuery)
		assert.Equal(t, 5, ts.search.lastLimit)
		assert.Contains(t, out, "[1] invoice.pdf, page 2")
		assert.Contains(t, out, "Document: doc-1")
		assert.Contains(t, out, "...net total 42...")
		assert.Contains(t, out, "[2] legacy.pdf, page 1")
	})

	t.Run("no results", func(t *testing.T) {
		setupTestServices(t)

		out, err := execute(t, "", "search", "nothing")

		require.NoError(t, err)
		assert.Contains(t, out, "No results found.")
	})

	t.Run("json", func(t *testing.T) {
		ts := setupTestServices(t)
		ts.search.matches = []domain.SearchMatch{{Filename: "a.pdf", PageNumber: 1, Snippet: "x"}}

		out, err := execute(t, "", "search", "x", "--json")

		require.NoError(t, err)
		assert.Contains(t, out, `"page_number": 1`)
	})

	t.Run("filenames", func(t *testing.T) {
		ts := setupTestServices(t)
		ts.search.docs = []domain.Document{{ID: "doc-3", OriginalFilename: "Report-2024.pdf", TotalPages: 7}}

		out, err := execute(t, "", "search", "report", "--files")

		require.NoError(t, err)
		assert.Contains(t, out, "doc-3  Report-2024.pdf (7 pages)")
	})

	t.Run("requires query", func(t *testing.T) {
		setupTestServices(t)
		_, err := execute(t, "", "search")
		assert.Error(t, err)
	})
}

func TestStatsCmd(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.stats = &domain.Stats{
		TotalDocuments: 2, TotalFiles: 2, TotalPages: 9, TotalTables: 3,
		TotalUploadBytes: 4096, TotalTextBytes: 100, DatabaseSizeBytes: 8192,
		Growth: []domain.GrowthPoint{{Day: "2026-03-01", Pages: 9}},
	}

	out, err := execute(t, "", "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Documents:    2")
	assert.Contains(t, out, "Pages:        9")
	assert.Contains(t, out, "Uploads:      4.0 KiB")
	assert.Contains(t, out, "Storage:      8.0 KiB")
	assert.Contains(t, out, "2026-03-01  9")
}

func TestServeCmd_StopsOnCancel(t *testing.T) {
	ts := setupTestServices(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := executeContext(t, ctx, "", "serve", "--addr", "127.0.0.1:0")

	require.NoError(t, err)
	assert.Contains(t, out, "Folio API listening on http://127.0.0.1:0")
	assert.Len(t, ts.progress, 1)
}

func TestWatchCmd_StopsOnCancel(t *testing.T) {
	setupTestServices(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dir := t.TempDir()

	out, err := executeContext(t, ctx, "", "watch", dir)

	require.NoError(t, err)
	assert.Contains(t, out, "Watching "+dir)
}

func TestWatchCmd_MissingDir(t *testing.T) {
	setupTestServices(t)
	_, err := execute(t, "", "watch", "/does/not/exist")
	assert.Error(t, err)
}

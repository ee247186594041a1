package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// ==================== StorePages Tests ====================

func TestTextStore_StorePages(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	texts := store.TextStore()

	ids, err := texts.StorePages(ctx, "a.pdf", pages("one", "", "three"))
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.Less(t, ids[0], ids[1])
	assert.Less(t, ids[1], ids[2])

	records, err := texts.GetFilePages(ctx, "a.pdf")
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, i+1, rec.PageNumber)
		assert.Equal(t, ids[i], rec.ID)
		assert.Equal(t, "a.pdf", rec.FileName)
		assert.False(t, rec.CreatedAt.IsZero())
	}
	assert.Equal(t, "", records[1].TextContent, "empty pages are stored")
}

func TestTextStore_StorePages_EmptyFileName(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ids, err := store.TextStore().StorePages(context.Background(), "  ", pages("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, ids)
}

func TestTextStore_StorePages_InvalidPageNumber(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.TextStore().StorePages(context.Background(), "a.pdf",
		[]domain.ExtractedPage{{PageNumber: 0, Text: "x"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTextStore_StorePages_NoPages(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ids, err := store.TextStore().StorePages(context.Background(), "empty.pdf", nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestTextStore_StorePages_RollsBackOnMidWriteFailure(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	texts := store.TextStore()

	// The third insert violates UNIQUE(file_name, page_number) after two pages were written.
	broken := []domain.ExtractedPage{
		{PageNumber: 1, Text: "one"},
		{PageNumber: 2, Text: "two"},
		{PageNumber: 2, Text: "again"},
	}
	_, err := texts.StorePages(ctx, "c.pdf", broken)
	require.Error(t, err)

	records, err := texts.GetFilePages(ctx, "c.pdf")
	require.NoError(t, err)
	assert.Empty(t, records, "a failed write leaves no partial page range")
}

func TestTextStore_StorePages_FailureKeepsPreviousSet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	texts := store.TextStore()

	_, err := texts.StorePages(ctx, "a.pdf", pages("1", "2", "3"))
	require.NoError(t, err)

	// Re-writing page 1 conflicts immediately; nothing changes.
	_, err = texts.StorePages(ctx, "a.pdf", pages("new"))
	require.Error(t, err)

	records, err := texts.GetFilePages(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestTextStore_StorePages_CancelledContext(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	texts := store.TextStore()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := texts.StorePages(ctx, "a.pdf", pages("1", "2", "3"))
	require.Error(t, err)

	records, err := texts.GetFilePages(context.Background(), "a.pdf")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestTextStore_StorePages_WithTables(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	texts := store.TextStore()

	native := domain.NewTable([][]string{{"Item", "Qty"}, {"Widget", "2", "extra"}},
		domain.TableSourceNative, domain.Confidence(0.5))
	pattern := domain.NewTable([][]string{{"a", "b"}, {"c", "d"}}, domain.TableSourceFallbackPattern, nil)

	input := []domain.ExtractedPage{
		{PageNumber: 1, Text: "page one", Tables: []domain.Table{native}},
		{PageNumber: 2, Text: "page two", Tables: []domain.Table{pattern, native}},
	}
	_, err := texts.StorePages(ctx, "t.pdf", input)
	require.NoError(t, err)

	tables, err := texts.GetFileTables(ctx, "t.pdf")
	require.NoError(t, err)
	require.Len(t, tables, 3)

	assert.Equal(t, 1, tables[0].PageNumber)
	assert.Equal(t, domain.TableSourceNative, tables[0].Table.Source)
	require.NotNil(t, tables[0].Table.Confidence)
	assert.Equal(t, 0.5, *tables[0].Table.Confidence)
	assert.Equal(t, 3, tables[0].Table.ColumnCount)
	assert.Len(t, tables[0].Table.Rows[1], 3)

	assert.Equal(t, 2, tables[1].PageNumber)
	assert.Equal(t, 0, tables[1].Index)
	assert.Equal(t, domain.TableSourceFallbackPattern, tables[1].Table.Source)
	assert.Nil(t, tables[1].Table.Confidence)
	assert.Equal(t, 1, tables[2].Index)
}

// ==================== SearchText Tests ====================

func TestTextStore_SearchText_SingleMatch(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	texts := store.TextStore()

	_, err := texts.StorePages(ctx, "a.pdf", pages("summary", "terms", "please pay this invoice", "appendix"))
	require.NoError(t, err)
	_, err = texts.StorePages(ctx, "b.pdf", pages("nothing relevant", "still nothing"))
	require.NoError(t, err)

	results, err := texts.SearchText(ctx, "invoice", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a.pdf", results[0].FileName)
	assert.Equal(t, 3, results[0].PageNumber)
}

func TestTextStore_SearchText_CaseInsensitive(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	texts := store.TextStore()

	_, err := texts.StorePages(ctx, "a.pdf", pages("Quarterly INVOICE total"))
	require.NoError(t, err)

	results, err := texts.SearchText(ctx, "Invoice", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestTextStore_SearchText_RelevanceThenRecency(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	texts := store.TextStore()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	setClock(store, base)
	_, err := texts.StorePages(ctx, "old.pdf", pages("tax", "tax tax tax"))
	require.NoError(t, err)

	setClock(store, base.Add(time.Hour))
	_, err = texts.StorePages(ctx, "new.pdf", pages("tax"))
	require.NoError(t, err)

	results, err := texts.SearchText(ctx, "tax", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "old.pdf", results[0].FileName, "most occurrences first")
	assert.Equal(t, 2, results[0].PageNumber)
	assert.Equal(t, "new.pdf", results[1].FileName, "then newest first")
	assert.Equal(t, "old.pdf", results[2].FileName)
	assert.Equal(t, 1, results[2].PageNumber)
}

func TestTextStore_SearchText_Limit(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	texts := store.TextStore()

	_, err := texts.StorePages(ctx, "a.pdf", pages("word", "word", "word", "word"))
	require.NoError(t, err)

	results, err := texts.SearchText(ctx, "word", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestTextStore_SearchText_WildcardsAreLiteral(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	texts := store.TextStore()

	_, err := texts.StorePages(ctx, "a.pdf", pages("save 50% today", "plain text", "snake_case"))
	require.NoError(t, err)

	results, err := texts.SearchText(ctx, "%", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].PageNumber)

	results, err = texts.SearchText(ctx, "_", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 3, results[0].PageNumber)
}

func TestTextStore_SearchText_QuoteIsBound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	texts := store.TextStore()

	_, err := texts.StorePages(ctx, "a.pdf", pages("it's fine"))
	require.NoError(t, err)

	results, err := texts.SearchText(ctx, "'; DROP TABLE extracted_texts; --", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = texts.SearchText(ctx, "it's", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestTextStore_SearchText_EmptyQuery(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	texts := store.TextStore()

	_, err := texts.StorePages(ctx, "a.pdf", pages("anything"))
	require.NoError(t, err)

	results, err := texts.SearchText(ctx, "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

// ==================== Delete Tests ====================

func TestTextStore_DeleteFile_Cascades(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	texts := store.TextStore()

	table := domain.NewTable([][]string{{"a", "b"}}, domain.TableSourceNative, nil)
	_, err := texts.StorePages(ctx, "a.pdf", []domain.ExtractedPage{
		{PageNumber: 1, Text: "invoice", Tables: []domain.Table{table}},
		{PageNumber: 2, Text: "invoice again"},
	})
	require.NoError(t, err)
	_, err = texts.StorePages(ctx, "b.pdf", pages("invoice elsewhere"))
	require.NoError(t, err)

	n, err := texts.DeleteFile(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	records, err := texts.GetFilePages(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Empty(t, records)

	tables, err := texts.GetFileTables(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Empty(t, tables)

	results, err := texts.SearchText(ctx, "invoice", 10)
	require.NoError(t, err)
	for _, rec := range results {
		assert.NotEqual(t, "a.pdf", rec.FileName)
	}
	assert.Len(t, results, 1)
}

func TestTextStore_DeleteFile_Idempotent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	n, err := store.TextStore().DeleteFile(context.Background(), "missing.pdf")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

// ==================== Retention Tests ====================

func TestTextStore_CleanupOldRecords(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	texts := store.TextStore()

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	table := domain.NewTable([][]string{{"a", "b"}}, domain.TableSourceNative, nil)

	setClock(store, now.Add(-45*24*time.Hour))
	_, err := texts.StorePages(ctx, "old.pdf", []domain.ExtractedPage{
		{PageNumber: 1, Text: "old one", Tables: []domain.Table{table}},
		{PageNumber: 2, Text: "old two"},
	})
	require.NoError(t, err)

	setClock(store, now.Add(-29*24*time.Hour))
	_, err = texts.StorePages(ctx, "recent.pdf", pages("recent"))
	require.NoError(t, err)

	setClock(store, now)
	_, err = texts.StorePages(ctx, "today.pdf", pages("today"))
	require.NoError(t, err)

	deleted, err := texts.CleanupOldRecords(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	old, err := texts.GetFilePages(ctx, "old.pdf")
	require.NoError(t, err)
	assert.Empty(t, old)
	oldTables, err := texts.GetFileTables(ctx, "old.pdf")
	require.NoError(t, err)
	assert.Empty(t, oldTables)

	recent, err := texts.GetFilePages(ctx, "recent.pdf")
	require.NoError(t, err)
	assert.Len(t, recent, 1)
	today, err := texts.GetFilePages(ctx, "today.pdf")
	require.NoError(t, err)
	assert.Len(t, today, 1)

	again, err := texts.CleanupOldRecords(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(0), again)
}

func TestTextStore_CleanupOldRecords_NegativeAge(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.TextStore().CleanupOldRecords(context.Background(), -time.Hour)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ==================== Stats Tests ====================

func TestTextStore_GetStats(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	texts := store.TextStore()

	day1 := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	setClock(store, day1)
	_, err := texts.StorePages(ctx, "a.pdf", []domain.ExtractedPage{
		{PageNumber: 1, Text: "abcd", Tables: []domain.Table{domain.NewTable([][]string{{"x"}}, domain.TableSourceNative, nil)}},
		{PageNumber: 2, Text: "ef"},
	})
	require.NoError(t, err)
	setClock(store, day2)
	_, err = texts.StorePages(ctx, "b.pdf", pages("g"))
	require.NoError(t, err)

	stats, err := texts.GetStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalFiles)
	assert.Equal(t, 3, stats.TotalPages)
	assert.Equal(t, 1, stats.TotalTables)
	assert.Equal(t, int64(7), stats.TotalTextBytes)
	assert.Greater(t, stats.DatabaseSizeBytes, int64(0))
	require.Len(t, stats.Growth, 2)
	assert.Equal(t, domain.GrowthPoint{Day: "2026-02-01", Pages: 2, Files: 1}, stats.Growth[0])
	assert.Equal(t, domain.GrowthPoint{Day: "2026-02-02", Pages: 1, Files: 1}, stats.Growth[1])
}

func TestTextStore_GetStats_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	stats, err := store.TextStore().GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalFiles)
	assert.Equal(t, 0, stats.TotalPages)
	assert.NotNil(t, stats.Growth)
	assert.Empty(t, stats.Growth)
}

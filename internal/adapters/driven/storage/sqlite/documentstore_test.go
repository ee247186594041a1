package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func newTestDocument(id, name string, fp domain.Fingerprint) *domain.Document {
	return &domain.Document{
		ID:               id,
		OriginalFilename: name,
		StoredFilename:   id + ".pdf",
		FileSize:         1024,
		Fingerprint:      fp,
	}
}

// ==================== Save / Get Tests ====================

func TestDocumentStore_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()

	doc := newTestDocument("doc-1", "Invoice.pdf", "fp-1")
	require.NoError(t, docs.Save(ctx, doc))
	assert.Equal(t, domain.StatusPending, doc.Status)
	assert.False(t, doc.UploadDate.IsZero())

	got, err := docs.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Invoice.pdf", got.OriginalFilename)
	assert.Equal(t, "doc-1.pdf", got.StoredFilename)
	assert.Equal(t, domain.Fingerprint("fp-1"), got.Fingerprint)
	assert.Equal(t, int64(1024), got.FileSize)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.True(t, doc.UploadDate.Equal(got.UploadDate))
}

func TestDocumentStore_Save_Update(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()

	doc := newTestDocument("doc-1", "a.pdf", "fp-1")
	require.NoError(t, docs.Save(ctx, doc))

	doc.TotalPages = 4
	doc.Status = domain.StatusCompleted
	require.NoError(t, docs.Save(ctx, doc))

	got, err := docs.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalPages)
	assert.Equal(t, domain.StatusCompleted, got.Status)

	list, err := docs.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDocumentStore_Save_InvalidInput(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()

	assert.ErrorIs(t, docs.Save(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, docs.Save(ctx, &domain.Document{ID: "x"}), domain.ErrInvalidInput)
}

func TestDocumentStore_Save_DuplicateFingerprint(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()

	require.NoError(t, docs.Save(ctx, newTestDocument("doc-1", "a.pdf", "same")))
	err := docs.Save(ctx, newTestDocument("doc-2", "b.pdf", "same"))
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = docs.Get(ctx, "doc-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_Get_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.DocumentStore().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_Lookups(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()

	require.NoError(t, docs.Save(ctx, newTestDocument("doc-1", "a.pdf", "fp-1")))

	byFP, err := docs.GetByFingerprint(ctx, "fp-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", byFP.ID)

	byName, err := docs.GetByStoredFilename(ctx, "doc-1.pdf")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", byName.ID)

	_, err = docs.GetByFingerprint(ctx, "fp-other")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== List / Search Tests ====================

func TestDocumentStore_List_NewestFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	setClock(store, base)
	require.NoError(t, docs.Save(ctx, newTestDocument("older", "a.pdf", "fp-1")))
	setClock(store, base.Add(time.Minute))
	require.NoError(t, docs.Save(ctx, newTestDocument("newer", "b.pdf", "fp-2")))

	list, err := docs.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].ID)
	assert.Equal(t, "older", list[1].ID)
}

func TestDocumentStore_List_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	list, err := store.DocumentStore().List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestDocumentStore_SearchByFilename(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()

	require.NoError(t, docs.Save(ctx, newTestDocument("doc-1", "Q1_Report.pdf", "fp-1")))
	require.NoError(t, docs.Save(ctx, newTestDocument("doc-2", "Q1-Invoice.pdf", "fp-2")))

	found, err := docs.SearchByFilename(ctx, "report")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "doc-1", found[0].ID)

	found, err = docs.SearchByFilename(ctx, "q1_")
	require.NoError(t, err)
	require.Len(t, found, 1, "underscore is matched literally")
	assert.Equal(t, "doc-1", found[0].ID)

	found, err = docs.SearchByFilename(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, found)
}

// ==================== Update Tests ====================

func TestDocumentStore_UpdateStatus(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()

	require.NoError(t, docs.Save(ctx, newTestDocument("doc-1", "a.pdf", "fp-1")))
	require.NoError(t, docs.UpdateStatus(ctx, "doc-1", domain.StatusFailed, 0, "bad header"))

	got, err := docs.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Equal(t, "bad header", got.Error)

	require.NoError(t, docs.UpdateStatus(ctx, "doc-1", domain.StatusCompleted, 7, ""))
	got, err = docs.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 7, got.TotalPages)
	assert.Empty(t, got.Error)
}

func TestDocumentStore_UpdateStatus_Errors(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()

	assert.ErrorIs(t, docs.UpdateStatus(ctx, "missing", domain.StatusCompleted, 1, ""), domain.ErrNotFound)
	assert.ErrorIs(t, docs.UpdateStatus(ctx, "missing", "bogus", 1, ""), domain.ErrInvalidInput)
}

func TestDocumentStore_UpdateSummary(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()

	require.NoError(t, docs.Save(ctx, newTestDocument("doc-1", "a.pdf", "fp-1")))
	require.NoError(t, docs.UpdateSummary(ctx, "doc-1", "short summary"))

	got, err := docs.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "short summary", got.Summary)

	assert.ErrorIs(t, docs.UpdateSummary(ctx, "missing", "x"), domain.ErrNotFound)
}

// ==================== Delete / Stats Tests ====================

func TestDocumentStore_Delete(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()

	require.NoError(t, docs.Save(ctx, newTestDocument("doc-1", "a.pdf", "fp-1")))
	require.NoError(t, docs.Delete(ctx, "doc-1"))
	require.NoError(t, docs.Delete(ctx, "doc-1"))

	_, err := docs.Get(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The fingerprint is free again.
	assert.NoError(t, docs.Save(ctx, newTestDocument("doc-2", "a.pdf", "fp-1")))
}

func TestDocumentStore_Stats(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()

	a := newTestDocument("doc-1", "a.pdf", "fp-1")
	a.TotalPages = 3
	b := newTestDocument("doc-2", "b.pdf", "fp-2")
	b.FileSize = 2048
	b.TotalPages = 2
	require.NoError(t, docs.Save(ctx, a))
	require.NoError(t, docs.Save(ctx, b))

	stats, err := docs.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalDocuments)
	assert.Equal(t, int64(3072), stats.TotalBytes)
	assert.Equal(t, 5, stats.TotalPages)
}

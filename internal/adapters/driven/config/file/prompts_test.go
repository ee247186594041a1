package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

var testPrompts = map[string]string{
	driven.PromptSummarise:    "Summarise in %d characters:\n%s",
	driven.PromptAnswerSystem: "Answer from this document:\n%s",
}

func newTestPromptStore(t *testing.T) (*PromptStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewPromptStore(dir, testPrompts)
	require.NoError(t, err)
	return store, dir
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("", testPrompts)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".folio", "prompts"), store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	store, dir := newTestPromptStore(t)

	prompt, err := store.Load(driven.PromptSummarise)

	require.NoError(t, err)
	assert.Equal(t, testPrompts[driven.PromptSummarise], prompt)
	for _, f := range []string{"summarise.txt", "answer_system.txt", "README.md"} {
		assert.FileExists(t, filepath.Join(dir, f))
	}

	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "`answer_system.txt`")
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	store, dir := newTestPromptStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summarise.txt"), []byte("\n  short: %d %s  \n"), 0o600))

	prompt, err := store.Load(driven.PromptSummarise)

	require.NoError(t, err)
	assert.Equal(t, "short: %d %s", prompt)
}

func TestPromptStore_Load_EmptyFileFallsBack(t *testing.T) {
	store, dir := newTestPromptStore(t)
	_, err := store.Load(driven.PromptSummarise)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "answer_system.txt"), []byte("  \n"), 0o600))

	prompt, err := store.Load(driven.PromptAnswerSystem)

	require.NoError(t, err)
	assert.Equal(t, testPrompts[driven.PromptAnswerSystem], prompt)
}

func TestPromptStore_Load_DeletedFileFallsBack(t *testing.T) {
	store, dir := newTestPromptStore(t)
	_, err := store.Load(driven.PromptSummarise)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "answer_system.txt")))

	prompt, err := store.Load(driven.PromptAnswerSystem)

	require.NoError(t, err)
	assert.Equal(t, testPrompts[driven.PromptAnswerSystem], prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, _ := newTestPromptStore(t)

	_, err := store.Load("nonexistent_prompt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent_prompt")
}

func TestPromptStore_Load_FileOnlyPrompt(t *testing.T) {
	store, dir := newTestPromptStore(t)
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.txt"), []byte("extra %s"), 0o600))

	prompt, err := store.Load("extra")

	require.NoError(t, err)
	assert.Equal(t, "extra %s", prompt)
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	store, dir := newTestPromptStore(t)
	first, err := store.Load(driven.PromptSummarise)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "summarise.txt"), []byte("edited %d %s"), 0o600))
	cached, err := store.Load(driven.PromptSummarise)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptSummarise)
	require.NoError(t, err)
	assert.Equal(t, "edited %d %s", fresh)
}

func TestPromptStore_DoesNotOverwriteExistingFiles(t *testing.T) {
	dir := t.TempDir()
	custom := "pre-existing %d %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summarise.txt"), []byte(custom), 0o600))

	store, err := NewPromptStore(dir, testPrompts)
	require.NoError(t, err)
	_, _ = store.Load(driven.PromptAnswerSystem)

	data, err := os.ReadFile(filepath.Join(dir, "summarise.txt"))
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))
}

func TestPromptStore_InitFailureUsesDefaults(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	store, err := NewPromptStore(filepath.Join(blocker, "prompts"), testPrompts)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptSummarise)
	require.NoError(t, err)
	assert.Equal(t, testPrompts[driven.PromptSummarise], prompt)

	_, err = store.Load("extra")
	assert.Error(t, err)
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, _ := newTestPromptStore(t)

	const goroutines = 50
	var wg sync.WaitGroup
	results := make([]string, goroutines)
	errs := make([]error, goroutines)
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = store.Load(driven.PromptAnswerSystem)
		}()
	}
	wg.Wait()

	for i := range goroutines {
		require.NoError(t, errs[i])
		assert.Equal(t, testPrompts[driven.PromptAnswerSystem], results[i])
	}
}

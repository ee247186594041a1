package file

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// promptExt is the file extension of prompt templates on disk.
const promptExt = ".txt"

// PromptStore loads LLM prompts from user-editable files on disk.
// Files are seeded from the defaults on first access and fall back to them
// when unreadable. Nothing touches the disk until the first Load.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	defaults  map[string]string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// NewPromptStore creates a file-based prompt store seeded with defaults.
// If promptDir is empty, defaults to ~/.folio/prompts/.
func NewPromptStore(promptDir string, defaults map[string]string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".folio", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		defaults:  maps.Clone(defaults),
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for name.
// A missing or unreadable file falls back to the default template.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	fallback, known := s.defaults[name]
	if s.initErr != nil {
		if known {
			return fallback, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	prompt, err := s.loadFromFile(name)
	switch {
	case err == nil && prompt != "":
	case known:
		prompt = fallback
	case err == nil:
		return "", fmt.Errorf("load prompt %q: empty file", name)
	default:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory, any missing default files and the README.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0o700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range s.defaults {
		path := filepath.Join(s.promptDir, name+promptExt)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := os.WriteFile(path, []byte(content+"\n"), 0o600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+promptExt))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme lists the prompt files. An existing README is left alone.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return nil
	}

	var b strings.Builder
	b.WriteString("# Folio Prompts\n\n")
	b.WriteString("Templates used by `folio chat` and `folio document summary`.\n")
	b.WriteString("Edit a file to change the model's behaviour; delete it to restore the default.\n\n")
	b.WriteString("## Files\n\n")
	for _, name := range slices.Sorted(maps.Keys(s.defaults)) {
		fmt.Fprintf(&b, "- `%s%s`\n", name, promptExt)
	}
	b.WriteString("\nKeep the `%s` and `%d` placeholders in the same order.\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("create prompt README: %w", err)
	}
	return nil
}

// Package watch uploads PDFs as they appear in a directory tree.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// DefaultDebounce is how long a file must stay quiet before it is uploaded.
const DefaultDebounce = 500 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	// Root is the directory to watch. Subdirectories are watched too.
	Root string

	// InitialScan uploads PDFs already present when the watcher starts.
	InitialScan bool

	// Debounce coalesces bursts of writes to the same file.
	Debounce time.Duration

	// Logger receives watcher events. Defaults to slog.Default().
	Logger *slog.Logger
}

// Result is delivered for every file the watcher handled.
type Result struct {
	Path   string
	Upload *domain.UploadResult
	Err    error
}

// Watcher feeds new or changed PDFs under a directory into an UploadService.
type Watcher struct {
	cfg    Config
	upload driving.UploadService
	log    *slog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

// New creates a watcher. It does not start watching until Run.
func New(upload driving.UploadService, cfg Config) (*Watcher, error) {
	if upload == nil {
		return nil, fmt.Errorf("watch: upload service: %w", domain.ErrInvalidInput)
	}
	info, err := os.Stat(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", cfg.Root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: not a directory: %w", cfg.Root, domain.ErrInvalidInput)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		cfg:     cfg,
		upload:  upload,
		log:     log.With("component", "watch", "root", cfg.Root),
		pending: make(map[string]*time.Timer),
	}, nil
}

// Run watches until ctx is cancelled. Each handled file is sent on results
// when results is non-nil; sends never block the watcher.
func (w *Watcher) Run(ctx context.Context, results chan<- Result) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close() //nolint:errcheck

	if err := w.addTree(ctx, fw, w.cfg.Root, w.cfg.InitialScan, results); err != nil {
		return err
	}
	w.log.Info("watching for PDFs")

	defer w.wg.Wait()
	defer w.stopPending()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fw, event, results)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

// handleEvent schedules uploads for PDF writes and follows new directories.
func (w *Watcher) handleEvent(ctx context.Context, fw *fsnotify.Watcher, event fsnotify.Event, results chan<- Result) {
	if isHidden(event.Name) {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(ctx, fw, event.Name, true, results); err != nil {
				w.log.Warn("watching new directory", "path", event.Name, "error", err)
			}
			return
		}
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !IsPDF(event.Name) {
		return
	}
	w.schedule(ctx, event.Name, results)
}

// schedule (re)starts the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string, results chan<- Result) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.cfg.Debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.cfg.Debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		if w.stopped {
			w.mu.Unlock()
			return
		}
		w.wg.Add(1)
		w.mu.Unlock()
		defer w.wg.Done()
		w.process(ctx, path, results)
	})
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

// process reads and uploads one file.
func (w *Watcher) process(ctx context.Context, path string, results chan<- Result) {
	if ctx.Err() != nil {
		return
	}
	res := Result{Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("read %s: %w", path, err)
	} else {
		res.Upload, res.Err = w.upload.Upload(ctx, filepath.Base(path), data)
	}

	switch {
	case res.Err != nil:
		w.log.Warn("upload failed", "path", path, "kind", domain.KindOf(res.Err), "error", res.Err)
	case res.Upload.Duplicate:
		w.log.Info("duplicate skipped", "path", path, "document_id", res.Upload.Document.ID)
	default:
		w.log.Info("uploaded", "path", path, "document_id", res.Upload.Document.ID,
			"pages", res.Upload.Document.TotalPages)
	}

	if results != nil {
		select {
		case results <- res:
		default:
		}
	}
}

// addTree watches root and its subdirectories. With scan set, PDFs found
// during the walk are scheduled for upload.
func (w *Watcher) addTree(
	ctx context.Context, fw *fsnotify.Watcher, root string, scan bool, results chan<- Result,
) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) {
				return nil
			}
			return walkErr
		}
		if path != root && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if err := fw.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			return nil
		}
		if scan && IsPDF(path) {
			w.schedule(ctx, path, results)
		}
		return nil
	})
}

// IsPDF reports whether path has a .pdf extension in any case.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

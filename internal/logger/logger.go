// Package logger provides the verbose pipeline log for folio.
// Debug and Info lines are printed to stderr only when verbose mode is on
// (--verbose). Warn lines are always printed.
// NewStructured builds the slog logger used by the long-running servers.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
)

var prefixes = [...]string{
	levelDebug: "[DEBUG] ",
	levelInfo:  "[INFO] ",
	levelWarn:  "[WARN] ",
}

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose turns the pipeline log on or off.
func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	mu.Unlock()
}

// IsVerbose reports whether the pipeline log is on.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects the pipeline log. A nil writer restores stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	mu.Lock()
	output = w
	mu.Unlock()
}

// Debug logs low-level detail such as per-page decisions.
func Debug(format string, args ...any) {
	logf(levelDebug, format, args...)
}

// Info logs per-file progress.
func Info(format string, args ...any) {
	logf(levelInfo, format, args...)
}

// Warn logs recoverable problems such as degraded tables or artifact
// failures. It prints even when verbose mode is off.
func Warn(format string, args ...any) {
	logf(levelWarn, format, args...)
}

// Section prints a header that groups the lines that follow.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

func logf(l level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose && l < levelWarn {
		return
	}
	fmt.Fprintf(output, prefixes[l]+format+"\n", args...)
}

package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// OCR tools.
const (
	toolPdftoppm  = "pdftoppm"
	toolTesseract = "tesseract"
)

// ErrOCRToolNotFound is returned when pdftoppm or tesseract is not installed.
var ErrOCRToolNotFound = fmt.Errorf("pdftoppm or tesseract not found in PATH: %w", domain.ErrToolNotFound)

// CommandRunner abstracts command execution for testing.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

// Run executes the command and returns its stdout.
func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// CheckAvailable verifies both OCR tools are on PATH.
func CheckAvailable(lookPath func(string) (string, error)) error {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	var errs []error
	for _, tool := range []string{toolPdftoppm, toolTesseract} {
		if _, err := lookPath(tool); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", tool, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrOCRToolNotFound}, errs...)...)
	}
	return nil
}

// InstallInstructions returns how to install the OCR tools.
func InstallInstructions() string {
	return `OCR table extraction requires pdftoppm (poppler) and tesseract.

Install with:
  macOS:   brew install poppler tesseract
  Ubuntu:  sudo apt install poppler-utils tesseract-ocr
  Fedora:  sudo dnf install poppler-utils tesseract`
}

package domain

import (
	"context"
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidFormat indicates the payload is not a readable PDF.
	// Encrypted documents that need a password fall in this class.
	ErrInvalidFormat = errors.New("invalid PDF format")

	// ErrTableExtractionDegraded indicates a table strategy failed on a page.
	// It is logged and never returned from extraction.
	ErrTableExtractionDegraded = errors.New("table extraction degraded")

	// ErrPersistence indicates the store could not durably commit a file.
	ErrPersistence = errors.New("persistence failure")

	// ErrInvalidTransition indicates a processing status change that is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrLLMUnavailable indicates no chat model is configured.
	// Summaries and chat are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrToolNotFound indicates an external command is not on PATH.
	ErrToolNotFound = errors.New("external tool not found")
)

// ErrorKind classifies failures reported in a BatchReport.
type ErrorKind string

// Error kinds.
const (
	KindInvalidFormat           ErrorKind = "invalid_format"
	KindTableExtractionDegraded ErrorKind = "table_extraction_degraded"
	KindPersistenceFailure      ErrorKind = "persistence_failure"
	KindDuplicateShortCircuit   ErrorKind = "duplicate"
	KindNotFound                ErrorKind = "not_found"
	KindCancelled               ErrorKind = "cancelled"
	KindInvalidInput            ErrorKind = "invalid_input"
	KindInternal                ErrorKind = "internal"
)

// String returns the string representation.
func (k ErrorKind) String() string {
	return string(k)
}

// ExtractionError is returned by content extractors for a single file.
type ExtractionError struct {
	Kind     ErrorKind
	Filename string
	Err      error
}

// NewInvalidFormat wraps cause as an InvalidFormat extraction error.
func NewInvalidFormat(filename string, cause error) *ExtractionError {
	return &ExtractionError{Kind: KindInvalidFormat, Filename: filename, Err: cause}
}

func (e *ExtractionError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("extracting: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("extracting %s: %s: %v", e.Filename, e.Kind, e.Err)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *ExtractionError) Unwrap() []error {
	var errs []error
	if sentinel := e.Kind.sentinel(); sentinel != nil {
		errs = append(errs, sentinel)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidFormat:
		return ErrInvalidFormat
	case KindTableExtractionDegraded:
		return ErrTableExtractionDegraded
	case KindPersistenceFailure:
		return ErrPersistence
	case KindNotFound:
		return ErrNotFound
	case KindInvalidInput:
		return ErrInvalidInput
	default:
		return nil
	}
}

// KindOf classifies err for reporting.
func KindOf(err error) ErrorKind {
	var extractErr *ExtractionError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &extractErr):
		return extractErr.Kind
	case errors.Is(err, ErrInvalidFormat):
		return KindInvalidFormat
	case errors.Is(err, ErrPersistence):
		return KindPersistenceFailure
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	default:
		return KindInternal
	}
}

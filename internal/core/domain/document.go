package domain

import "time"

// ProcessingStatus tracks where a document is in the pipeline.
type ProcessingStatus string

// Processing statuses.
const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s ProcessingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for completed and failed.
func (s ProcessingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether s may move to next.
// A failed document may be retried by moving back to processing.
func (s ProcessingStatus) CanTransitionTo(next ProcessingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusFailed
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	case StatusFailed:
		return next == StatusProcessing
	default:
		return false
	}
}

// String returns the string representation.
func (s ProcessingStatus) String() string {
	return string(s)
}

// Fingerprint is a content-addressed identifier of raw file bytes.
type Fingerprint string

// String returns the string representation.
func (f Fingerprint) String() string {
	return string(f)
}

// Short returns the first 12 characters for display.
func (f Fingerprint) Short() string {
	if len(f) <= 12 {
		return string(f)
	}
	return string(f[:12])
}

// Document is an uploaded PDF and the state of its processing.
// Its stored records share StoredFilename as their file name.
type Document struct {
	// ID is the unique identifier for the document.
	ID string `json:"id"`

	// OriginalFilename is the name the file was uploaded with.
	OriginalFilename string `json:"original_filename"`

	// StoredFilename is the unique name used for the blob and page records.
	StoredFilename string `json:"stored_filename"`

	// TotalPages is the page count once extracted.
	TotalPages int `json:"total_pages"`

	// FileSize is the upload size in bytes.
	FileSize int64 `json:"file_size"`

	// UploadDate is when the document was first received.
	UploadDate time.Time `json:"upload_date"`

	// UpdatedAt is when the document last changed.
	UpdatedAt time.Time `json:"updated_at"`

	// Status is the processing status.
	Status ProcessingStatus `json:"processing_status"`

	// Fingerprint identifies the content for duplicate detection.
	Fingerprint Fingerprint `json:"content_fingerprint"`

	// Summary is an optional LLM generated summary.
	Summary string `json:"summary,omitempty"`

	// Error holds the failure cause when Status is failed.
	Error string `json:"error,omitempty"`
}

// DocumentContent is a document with its stored pages and tables.
type DocumentContent struct {
	Document Document        `json:"document"`
	Pages    []ExtractedPage `json:"pages"`
	Text     string          `json:"text"`
}

// UploadResult is returned for a single upload.
type UploadResult struct {
	Document   Document      `json:"document"`
	Duplicate  bool          `json:"duplicate"`
	TextLength int           `json:"text_length"`
	Duration   time.Duration `json:"duration"`
}

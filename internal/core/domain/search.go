package domain

import "time"

// Search limits.
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 200
)

// NormaliseLimit applies the default and the upper bound to a search limit.
func NormaliseLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultSearchLimit
	case limit > MaxSearchLimit:
		return MaxSearchLimit
	default:
		return limit
	}
}

// SearchMatch is a single text search hit.
type SearchMatch struct {
	// RecordID is the matching StoredTextRecord.
	RecordID int64 `json:"record_id"`

	// DocumentID is empty when the records have no registered document.
	DocumentID string `json:"document_id,omitempty"`

	// Filename is the original filename when known, else the stored file name.
	Filename string `json:"filename"`

	// StoredFilename is the record's file name.
	StoredFilename string `json:"stored_filename"`

	// PageNumber is the matching page.
	PageNumber int `json:"page_number"`

	// Snippet is the text around the first occurrence.
	Snippet string `json:"snippet"`

	// CreatedAt is when the record was written.
	CreatedAt time.Time `json:"created_at"`
}

// GrowthPoint is the number of records written on one day.
type GrowthPoint struct {
	Day   string `json:"day"`
	Pages int    `json:"pages"`
	Files int    `json:"files"`
}

// Stats aggregates store and document counts.
type Stats struct {
	TotalFiles        int           `json:"total_files"`
	TotalPages        int           `json:"total_pages"`
	TotalTables       int           `json:"total_tables"`
	TotalTextBytes    int64         `json:"total_text_bytes"`
	DatabaseSizeBytes int64         `json:"database_size_bytes"`
	TotalDocuments    int           `json:"total_documents"`
	TotalUploadBytes  int64         `json:"total_upload_bytes"`
	Growth            []GrowthPoint `json:"growth_over_time"`
}

// TotalSizeEstimate returns the best available size estimate in bytes.
func (s Stats) TotalSizeEstimate() int64 {
	if s.DatabaseSizeBytes > 0 {
		return s.DatabaseSizeBytes
	}
	return s.TotalTextBytes
}

// DocumentStats aggregates the documents table.
type DocumentStats struct {
	TotalDocuments int
	TotalBytes     int64
	TotalPages     int
}

package domain

import "time"

// StoredTextRecord is one persisted page of extracted text.
type StoredTextRecord struct {
	// ID is the store's surrogate key.
	ID int64 `json:"id"`

	// FileName groups the records of one stored document.
	FileName string `json:"file_name"`

	// PageNumber is 1-indexed.
	PageNumber int `json:"page_number"`

	// TextContent is the page text.
	TextContent string `json:"text_content"`

	// CreatedAt is when the record was written.
	CreatedAt time.Time `json:"created_at"`
}

// StoredTable is one persisted table.
type StoredTable struct {
	ID         int64     `json:"id"`
	FileName   string    `json:"file_name"`
	PageNumber int       `json:"page_number"`
	Index      int       `json:"index"`
	Table      Table     `json:"table"`
	CreatedAt  time.Time `json:"created_at"`
}

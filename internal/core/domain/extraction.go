package domain

import (
	"strings"
	"time"
)

// TableSource identifies the strategy that produced a table.
type TableSource string

// Table sources in priority order.
const (
	TableSourceNative          TableSource = "native"
	TableSourceFallbackOCR     TableSource = "fallback-ocr"
	TableSourceFallbackPattern TableSource = "fallback-pattern"
)

// IsValid returns true if the source is recognised.
func (s TableSource) IsValid() bool {
	switch s {
	case TableSourceNative, TableSourceFallbackOCR, TableSourceFallbackPattern:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s TableSource) String() string {
	return string(s)
}

// Table is a grid of cell strings found on a page.
// Rows may be ragged; they are kept as extracted.
type Table struct {
	// Rows holds the cells of each row in reading order.
	Rows [][]string `json:"rows"`

	// Source is the strategy that produced this table.
	Source TableSource `json:"source"`

	// Confidence is in [0,1] when the strategy can estimate one.
	Confidence *float64 `json:"confidence,omitempty"`

	// RowCount is len(Rows).
	RowCount int `json:"row_count"`

	// ColumnCount is the length of the longest row.
	ColumnCount int `json:"column_count"`
}

// NewTable builds a Table and derives its counts from the actual rows.
func NewTable(rows [][]string, source TableSource, confidence *float64) Table {
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if confidence != nil {
		c := clamp01(*confidence)
		confidence = &c
	}
	return Table{
		Rows:        rows,
		Source:      source,
		Confidence:  confidence,
		RowCount:    len(rows),
		ColumnCount: cols,
	}
}

// WithSource returns a copy of the table tagged with source.
func (t Table) WithSource(source TableSource) Table {
	t.Source = source
	return t
}

// Confidence returns a pointer to c for use in NewTable.
func Confidence(c float64) *float64 {
	return &c
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// ExtractedPage is the text and tables of one PDF page.
type ExtractedPage struct {
	// PageNumber is 1-indexed.
	PageNumber int `json:"page_number"`

	// Text is the page's plain text. Empty when the page has no text layer.
	Text string `json:"text"`

	// Tables found on the page, in strategy output order.
	Tables []Table `json:"tables"`
}

// ExtractOptions controls what the extractor produces.
type ExtractOptions struct {
	// Tables enables table extraction.
	Tables bool
}

// ExtractionResult is the structured output for one uploaded PDF.
// It is built by NewExtractionResult and not modified afterwards.
type ExtractionResult struct {
	OriginalFilename    string          `json:"filename"`
	Pages               []ExtractedPage `json:"pages"`
	ExtractionTimestamp time.Time       `json:"extraction_timestamp"`
	PagesCount          int             `json:"pages_count"`
	ConcatenatedText    string          `json:"text"`
}

// NewExtractionResult derives PagesCount and ConcatenatedText from pages.
// Page numbers are reassigned so that pages[i].PageNumber == i+1.
func NewExtractionResult(filename string, pages []ExtractedPage, at time.Time) *ExtractionResult {
	ordered := make([]ExtractedPage, len(pages))
	texts := make([]string, 0, len(pages))
	for i, p := range pages {
		p.PageNumber = i + 1
		if p.Tables == nil {
			p.Tables = []Table{}
		}
		ordered[i] = p
		if strings.TrimSpace(p.Text) != "" {
			texts = append(texts, p.Text)
		}
	}
	return &ExtractionResult{
		OriginalFilename:    filename,
		Pages:               ordered,
		ExtractionTimestamp: at,
		PagesCount:          len(ordered),
		ConcatenatedText:    strings.Join(texts, "\n"),
	}
}

// TablesCount returns the number of tables across all pages.
func (r *ExtractionResult) TablesCount() int {
	n := 0
	for i := range r.Pages {
		n += len(r.Pages[i].Tables)
	}
	return n
}

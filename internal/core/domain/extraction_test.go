package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable_DerivesCountsFromRaggedRows(t *testing.T) {
	rows := [][]string{
		{"Item", "Qty", "Price"},
		{"Widget", "2"},
		{"Gadget", "1", "9.99", "note"},
	}

	table := NewTable(rows, TableSourceNative, nil)

	assert.Equal(t, 3, table.RowCount)
	assert.Equal(t, 4, table.ColumnCount)
	assert.Len(t, table.Rows[1], 2, "ragged rows are preserved")
	assert.Nil(t, table.Confidence)
	assert.Equal(t, TableSourceNative, table.Source)
}

func TestNewTable_ClampsConfidence(t *testing.T) {
	high := NewTable([][]string{{"a"}}, TableSourceFallbackOCR, Confidence(1.7))
	low := NewTable([][]string{{"a"}}, TableSourceFallbackOCR, Confidence(-0.2))

	require.NotNil(t, high.Confidence)
	require.NotNil(t, low.Confidence)
	assert.Equal(t, 1.0, *high.Confidence)
	assert.Equal(t, 0.0, *low.Confidence)
}

func TestNewTable_Empty(t *testing.T) {
	table := NewTable(nil, TableSourceFallbackPattern, nil)
	assert.Equal(t, 0, table.RowCount)
	assert.Equal(t, 0, table.ColumnCount)
}

func TestTable_WithSource(t *testing.T) {
	table := NewTable([][]string{{"a", "b"}}, "", nil)
	tagged := table.WithSource(TableSourceFallbackPattern)

	assert.Equal(t, TableSourceFallbackPattern, tagged.Source)
	assert.Equal(t, TableSource(""), table.Source)
}

func TestTableSource_IsValid(t *testing.T) {
	assert.True(t, TableSourceNative.IsValid())
	assert.True(t, TableSourceFallbackOCR.IsValid())
	assert.True(t, TableSourceFallbackPattern.IsValid())
	assert.False(t, TableSource("camelot").IsValid())
}

func TestNewExtractionResult_PageOrdering(t *testing.T) {
	pages := []ExtractedPage{
		{PageNumber: 7, Text: "first"},
		{PageNumber: 0, Text: ""},
		{PageNumber: 3, Text: "third"},
	}

	result := NewExtractionResult("a.pdf", pages, time.Now())

	require.Len(t, result.Pages, 3)
	for i, page := range result.Pages {
		assert.Equal(t, i+1, page.PageNumber)
		assert.NotNil(t, page.Tables)
	}
	assert.Equal(t, 3, result.PagesCount)
	assert.Equal(t, "first\nthird", result.ConcatenatedText)
	assert.Equal(t, "a.pdf", result.OriginalFilename)
}

func TestNewExtractionResult_DoesNotAliasInput(t *testing.T) {
	pages := []ExtractedPage{{PageNumber: 5, Text: "x"}}
	result := NewExtractionResult("a.pdf", pages, time.Now())

	assert.Equal(t, 5, pages[0].PageNumber)
	assert.Equal(t, 1, result.Pages[0].PageNumber)
}

func TestExtractionResult_TablesCount(t *testing.T) {
	table := NewTable([][]string{{"a", "b"}}, TableSourceNative, nil)
	result := NewExtractionResult("a.pdf", []ExtractedPage{
		{Tables: []Table{table, table}},
		{},
		{Tables: []Table{table}},
	}, time.Now())

	assert.Equal(t, 3, result.TablesCount())
}

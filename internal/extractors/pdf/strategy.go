package pdf

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// TableStrategy finds tables on one page.
// An empty result with a nil error means the strategy found nothing.
type TableStrategy interface {
	Source() domain.TableSource
	Tables(ctx context.Context, page *pageInput) ([]domain.Table, error)
}

// pageInput is what strategies see of a page.
type pageInput struct {
	number  int
	text    string
	glyphs  []Glyph
	scratch *scratch
}

// nativeStrategy reads tables from the positioned glyphs of the content stream.
type nativeStrategy struct {
	rowTolerance float64
	cellGap      float64
}

// Source returns domain.TableSourceNative.
func (s *nativeStrategy) Source() domain.TableSource {
	return domain.TableSourceNative
}

// Tables groups glyphs into rows and cells and keeps the tabular runs.
func (s *nativeStrategy) Tables(_ context.Context, page *pageInput) ([]domain.Table, error) {
	rows := groupRows(page.glyphs, s.rowTolerance)
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = rowCells(row, s.cellGap)
	}

	var tables []domain.Table
	for _, sp := range tableSpans(cells) {
		body := cells[sp.start:sp.end]
		tables = append(tables, domain.NewTable(body, domain.TableSourceNative, domain.Confidence(modalShare(body))))
	}
	return tables, nil
}

// cellSeparator splits a text line into columns.
var cellSeparator = regexp.MustCompile(`\t+| {2,}`)

// patternStrategy reads tables from whitespace-aligned lines of the page text.
type patternStrategy struct{}

// Source returns domain.TableSourceFallbackPattern.
func (patternStrategy) Source() domain.TableSource {
	return domain.TableSourceFallbackPattern
}

// Tables splits each text line on tabs or runs of two or more spaces.
func (patternStrategy) Tables(_ context.Context, page *pageInput) ([]domain.Table, error) {
	if page.text == "" {
		return nil, nil
	}
	lines := strings.Split(page.text, "\n")
	cells := make([][]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			cells = append(cells, nil)
			continue
		}
		cells = append(cells, cellSeparator.Split(line, -1))
	}

	var tables []domain.Table
	for _, sp := range tableSpans(cells) {
		tables = append(tables, domain.NewTable(cells[sp.start:sp.end], domain.TableSourceFallbackPattern, nil))
	}
	return tables, nil
}

package pdf

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// defaultFontSize is used when a glyph carries no size.
const defaultFontSize = 10.0

// minTableRows and minTableCols bound what counts as a table.
const (
	minTableRows = 2
	minTableCols = 2
)

// Glyph is a positioned piece of text from a page content stream.
// Y grows upwards, as in PDF user space.
type Glyph struct {
	X, Y     float64
	W        float64
	FontSize float64
	S        string
}

// word is a run of adjacent glyphs.
type word struct {
	text   string
	x0, x1 float64
	size   float64
}

// layoutRow is one visual line of words, left to right.
type layoutRow []word

// size returns the glyph size, or the default font size.
func (g Glyph) size() float64 {
	if g.FontSize > 0 {
		return g.FontSize
	}
	return defaultFontSize
}

// end returns the right edge of the glyph, estimating its width when missing.
func (g Glyph) end() float64 {
	if g.W > 0 {
		return g.X + g.W
	}
	return g.X + 0.5*g.size()*float64(len([]rune(g.S)))
}

// groupRows clusters glyphs into rows by baseline and rows into words.
// Rows are returned top to bottom.
func groupRows(glyphs []Glyph, rowTolerance float64) []layoutRow {
	if len(glyphs) == 0 {
		return nil
	}
	sorted := make([]Glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines [][]Glyph
	var current []Glyph
	var baseline float64
	for _, g := range sorted {
		if len(current) > 0 && math.Abs(g.Y-baseline) > rowTolerance*g.size() {
			lines = append(lines, current)
			current = nil
		}
		if len(current) == 0 {
			baseline = g.Y
		}
		current = append(current, g)
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}

	rows := make([]layoutRow, 0, len(lines))
	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
		if row := glyphWords(line); len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

// glyphWords joins glyphs of one line into words.
// Whitespace glyphs and gaps wider than a fifth of the font size split words.
func glyphWords(line []Glyph) layoutRow {
	var row layoutRow
	var b strings.Builder
	var cur word
	flush := func() {
		if b.Len() > 0 {
			cur.text = b.String()
			row = append(row, cur)
		}
		b.Reset()
		cur = word{}
	}

	var prevEnd float64
	for i, g := range line {
		if strings.TrimSpace(g.S) == "" {
			flush()
			prevEnd = g.end()
			continue
		}
		if i > 0 && b.Len() > 0 && g.X-prevEnd > 0.2*g.size() {
			flush()
		}
		if b.Len() == 0 {
			cur.x0 = g.X
		}
		b.WriteString(g.S)
		cur.x1 = g.end()
		cur.size = math.Max(cur.size, g.size())
		prevEnd = cur.x1
	}
	flush()
	return row
}

// rowCells merges the words of a row into cells.
// A gap wider than cellGap font sizes starts a new cell.
func rowCells(row layoutRow, cellGap float64) []string {
	if len(row) == 0 {
		return nil
	}
	cells := []string{row[0].text}
	for i := 1; i < len(row); i++ {
		size := math.Max(row[i].size, row[i-1].size)
		if size <= 0 {
			size = defaultFontSize
		}
		if row[i].x0-row[i-1].x1 > cellGap*size {
			cells = append(cells, row[i].text)
			continue
		}
		cells[len(cells)-1] += " " + row[i].text
	}
	return cells
}

// span is a half-open range of row indexes.
type span struct {
	start, end int
}

// tableSpans finds runs of at least minTableRows rows that each have at
// least minTableCols cells.
func tableSpans(rows [][]string) []span {
	var spans []span
	start := -1
	closeRun := func(end int) {
		if start >= 0 && end-start >= minTableRows {
			spans = append(spans, span{start: start, end: end})
		}
		start = -1
	}
	for i, cells := range rows {
		if len(cells) >= minTableCols {
			if start < 0 {
				start = i
			}
			continue
		}
		closeRun(i)
	}
	closeRun(len(rows))
	return spans
}

// modalShare returns the share of rows whose cell count is the most common one.
func modalShare(rows [][]string) float64 {
	if len(rows) == 0 {
		return 0
	}
	counts := make(map[int]int)
	best := 0
	for _, r := range rows {
		counts[len(r)]++
		if counts[len(r)] > best {
			best = counts[len(r)]
		}
	}
	return float64(best) / float64(len(rows))
}

// hasPrintable reports whether s holds any visible character.
func hasPrintable(s string) bool {
	for _, r := range s {
		if unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return true
		}
	}
	return false
}

package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func TestNativeStrategy_FindsGrid(t *testing.T) {
	var glyphs []Glyph
	glyphs = append(glyphs, textGlyphs("Invoice", 72, 760)...)
	glyphs = append(glyphs, textGlyphs("Item", 72, 720)...)
	glyphs = append(glyphs, textGlyphs("Qty", 200, 720)...)
	glyphs = append(glyphs, textGlyphs("Widget", 72, 705)...)
	glyphs = append(glyphs, textGlyphs("2", 200, 705)...)
	glyphs = append(glyphs, textGlyphs("Gadget", 72, 690)...)
	glyphs = append(glyphs, textGlyphs("10", 200, 690)...)
	glyphs = append(glyphs, textGlyphs("Note", 72, 690-15)...)
	glyphs = append(glyphs, textGlyphs("x", 200, 690-15)...)
	glyphs = append(glyphs, textGlyphs("extra", 300, 690-15)...)

	s := &nativeStrategy{rowTolerance: 0.5, cellGap: 1.0}
	tables, err := s.Tables(context.Background(), &pageInput{number: 1, glyphs: glyphs})
	require.NoError(t, err)
	require.Len(t, tables, 1)

	table := tables[0]
	assert.Equal(t, domain.TableSourceNative, table.Source)
	assert.Equal(t, [][]string{{"Item", "Qty"}, {"Widget", "2"}, {"Gadget", "10"}, {"Note", "x", "extra"}}, table.Rows)
	assert.Equal(t, 4, table.RowCount)
	assert.Equal(t, 3, table.ColumnCount)
	require.NotNil(t, table.Confidence)
	assert.InDelta(t, 0.75, *table.Confidence, 1e-9)
}

func TestNativeStrategy_NoGlyphs(t *testing.T) {
	s := &nativeStrategy{rowTolerance: 0.5, cellGap: 1.0}
	tables, err := s.Tables(context.Background(), &pageInput{number: 1})
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestPatternStrategy(t *testing.T) {
	text := "Quarterly report\n\nName    Amount\nAlice   10\nBob\t20\n\nThanks"

	tables, err := patternStrategy{}.Tables(context.Background(), &pageInput{number: 1, text: text})
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, [][]string{{"Name", "Amount"}, {"Alice", "10"}, {"Bob", "20"}}, tables[0].Rows)
	assert.Equal(t, domain.TableSourceFallbackPattern, tables[0].Source)
	assert.Nil(t, tables[0].Confidence)
}

func TestPatternStrategy_SingleSpacesAreProse(t *testing.T) {
	tables, err := patternStrategy{}.Tables(context.Background(), &pageInput{
		number: 1,
		text:   "this is a sentence\nand another one",
	})
	require.NoError(t, err)
	assert.Empty(t, tables)
}

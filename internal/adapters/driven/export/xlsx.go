package export

import (
	"context"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure XLSXExporter implements the interface.
var _ driven.TableExporter = (*XLSXExporter)(nil)

const summarySheet = "Summary"

// summaryHeaders are the column titles of the summary sheet.
var summaryHeaders = []any{"Sheet", "Page", "Index", "Source", "Confidence", "Rows", "Columns"}

// XLSXExporter writes one sheet per table plus a summary sheet.
type XLSXExporter struct{}

// NewXLSXExporter creates an exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Export returns the workbook bytes for tables.
func (e *XLSXExporter) Export(ctx context.Context, title string, tables []domain.StoredTable) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	_ = f.SetCellValue(summarySheet, "A1", title)
	_ = f.SetCellStyle(summarySheet, "A1", "A1", bold)
	_ = f.SetSheetRow(summarySheet, "A3", &summaryHeaders)
	_ = f.SetCellStyle(summarySheet, "A3", "G3", bold)

	for i := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		st := &tables[i]
		name := SheetName(st.PageNumber, st.Index)
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
		for r, row := range st.Table.Rows {
			cells := make([]any, len(row))
			for c, v := range row {
				cells[c] = v
			}
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			if err := f.SetSheetRow(name, cell, &cells); err != nil {
				return nil, fmt.Errorf("write %s row %d: %w", name, r+1, err)
			}
		}

		confidence := ""
		if st.Table.Confidence != nil {
			confidence = strconv.FormatFloat(*st.Table.Confidence, 'f', 2, 64)
		}
		summary := []any{name, st.PageNumber, st.Index, st.Table.Source.String(), confidence,
			st.Table.RowCount, st.Table.ColumnCount}
		cell, _ := excelize.CoordinatesToCellName(1, i+4)
		if err := f.SetSheetRow(summarySheet, cell, &summary); err != nil {
			return nil, fmt.Errorf("write summary row: %w", err)
		}
	}

	_ = f.SetColWidth(summarySheet, "A", "A", 18)
	_ = f.SetColWidth(summarySheet, "D", "D", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// SheetName names the sheet of a table, e.g. "p3-t1" for the second table on page 3.
func SheetName(page, index int) string {
	return fmt.Sprintf("p%d-t%d", page, index)
}

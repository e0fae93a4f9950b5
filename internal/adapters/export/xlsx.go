// Package export renders roster selections and events into downloadable documents.
package export

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/roster"
)

// SheetName is the worksheet holding the roster.
const SheetName = "Leiding"

// XLSX writes a spreadsheet with one header row and one row per leiding.
type XLSX struct{}

var _ roster.Exporter = XLSX{}

// Export writes rows as an .xlsx workbook.
// PRE: rows is non-empty
// POST: w holds a complete workbook
func (XLSX) Export(w io.Writer, rows []roster.Row) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("xlsx_close_failed", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to set sheet name: %w", err)
	}

	for i, header := range roster.ExportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell: %w", err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(roster.ExportHeader), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for r, row := range rows {
		for c, value := range row.ExportRecord() {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(SheetName, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(roster.ExportHeader))
	if err := f.SetColWidth(SheetName, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

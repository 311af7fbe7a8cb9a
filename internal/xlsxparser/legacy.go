// =============================================================================
// UltiSales Ingest - Legacy Workbook Parser
// =============================================================================
//
// Decodes BIFF8 (.xls) workbooks into raw grids.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"os"

	"github.com/shakinm/xlsReader/xls"

	"github.com/ginjaninja78/ultisales-ingest/internal/types"
)

// ParseLegacy decodes a BIFF8 (.xls) payload into the raw grid of its first
// sheet. The payload is staged in a temporary file for xlsReader.
func ParseLegacy(data []byte) (grid types.RawGrid, err error) {
	tmpFile, err := os.CreateTemp("", "ultisales-*.xls")
	if err != nil {
		return nil, fmt.Errorf("failed to stage workbook: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("failed to stage workbook: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to stage workbook: %w", err)
	}

	// xlsReader panics on some truncated streams.
	defer func() {
		if r := recover(); r != nil {
			grid = nil
			err = fmt.Errorf("failed to open legacy workbook: %v", r)
		}
	}()

	book, err := xls.OpenFile(tmpFile.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy workbook: %w", err)
	}

	sheet, err := book.GetSheet(0)
	if err != nil || sheet == nil {
		return nil, ErrNoSheet
	}

	rows := sheet.GetNumberRows()
	grid = make(types.RawGrid, 0, rows)
	for i := 0; i < rows; i++ {
		row, err := sheet.GetRow(i)
		if err != nil || row == nil {
			grid = append(grid, types.Row{})
			continue
		}

		cols := row.GetCols()
		cells := make(types.Row, len(cols))
		for c, col := range cols {
			value := col.GetString()
			if value == "" {
				continue
			}
			cells[c] = types.ParseValue(value)
		}
		grid = append(grid, trimTrailingAbsent(cells))
	}

	return trimTrailingBlankRows(grid), nil
}

func trimTrailingAbsent(row types.Row) types.Row {
	last := len(row) - 1
	for last >= 0 && types.IsEmptyCell(row[last]) {
		last--
	}
	return row[:last+1]
}

func trimTrailingBlankRows(grid types.RawGrid) types.RawGrid {
	last := len(grid) - 1
	for last >= 0 && grid[last].IsBlank() {
		last--
	}
	return grid[:last+1]
}

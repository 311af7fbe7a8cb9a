// =============================================================================
// UltiSales Ingest - Workbook Loader
// =============================================================================
//
// This module decodes UltiSales workbook exports (.xlsx, .xlsm) into a raw
// grid. Only the first sheet is read; UltiSales never writes more than one.
//
// CELL TYPING:
//   Cells are typed the way a spreadsheet reader sees them:
//
//   | Stored cell type              | Grid value                          |
//   |-------------------------------|-------------------------------------|
//   | number (or untyped)           | int64 when integral, else float64   |
//   | shared / inline / formula str | string                              |
//   | boolean                       | bool                                |
//   | empty                         | absent (nil)                        |
//
//   Dates are stored by Excel as serial numbers and stay numbers here. The
//   scanner only looks for dates written as text in banner rows.
//
// =============================================================================

package xlsxparser

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/ultisales-ingest/internal/types"
)

// ErrNoSheet is returned when a workbook has no worksheet.
var ErrNoSheet = errors.New("workbook has no sheets")

// maxExactInt is the largest integer a float64 holds exactly.
const maxExactInt = 1 << 53

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse decodes an xlsx/xlsm payload into the raw grid of its first sheet.
//
// PARAMETERS:
//   - data: The complete workbook contents.
//
// RETURNS:
//   - The raw grid. Empty rows between data rows are kept as empty rows.
//   - An error if the payload is not a readable workbook.
func Parse(data []byte) (types.RawGrid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoSheet
	}

	raw, err := readRawRows(f, sheet)
	if err != nil {
		return nil, err
	}

	grid := make(types.RawGrid, len(raw))
	for r, values := range raw {
		row := make(types.Row, len(values))
		for c, value := range values {
			if value == "" {
				continue
			}
			if !needsCellType(value) {
				row[c] = value
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, fmt.Errorf("failed to address cell at row %d col %d: %w", r+1, c+1, err)
			}
			cellType, err := f.GetCellType(sheet, cellName)
			if err != nil {
				return nil, fmt.Errorf("failed to read cell %s: %w", cellName, err)
			}
			row[c] = typedValue(cellType, value)
		}
		grid[r] = row
	}

	return grid, nil
}

// readRawRows streams the raw text of every row of the sheet. Missing rows
// between data rows come back empty; trailing empty rows are dropped.
func readRawRows(f *excelize.File, sheet string) ([][]string, error) {
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	var out [][]string
	last := 0
	for rows.Next() {
		columns, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d of sheet %q: %w", len(out)+1, sheet, err)
		}
		out = append(out, columns)
		if len(columns) > 0 {
			last = len(out)
		}
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return out[:last], nil
}

// needsCellType reports whether the stored cell type can change how raw
// text is typed. Only numeric-looking text (numbers and booleans are stored
// as digits) needs the lookup; any other text is a string whatever its type.
func needsCellType(raw string) bool {
	if raw == "TRUE" || raw == "FALSE" || raw == "true" || raw == "false" {
		return true
	}
	_, err := strconv.ParseFloat(raw, 64)
	return err == nil
}

// typedValue converts the raw text of a cell according to its stored type.
func typedValue(cellType excelize.CellType, raw string) types.Cell {
	switch cellType {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return numberValue(f)
		}
		return raw
	case excelize.CellTypeBool:
		return raw == "1" || raw == "TRUE" || raw == "true"
	default:
		return raw
	}
}

// numberValue returns int64 for integral values that fit exactly, else float64.
func numberValue(f float64) types.Cell {
	if f == math.Trunc(f) && math.Abs(f) < maxExactInt {
		return int64(f)
	}
	return f
}

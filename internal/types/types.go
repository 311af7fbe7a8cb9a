// =============================================================================
// UltiSales Ingest - Shared Types
// =============================================================================
//
// This package contains the raw grid types shared by the loaders (csvparser,
// xlsxparser) and the ingestion engine. Keeping them here avoids import
// cycles between the loaders and the engine.
//
// =============================================================================

package types

import (
	"strconv"
	"strings"
)

// =============================================================================
// GRID TYPES
// =============================================================================

// Cell is a single raw cell value as decoded from the source file.
// It is one of: nil (absent), string, int64 or float64.
type Cell = any

// Row is an ordered sequence of cells. A row may be shorter than its
// neighbours; trailing cells that were never written are simply missing.
type Row []Cell

// RawGrid is the decoded content of the first sheet of an input file.
// It is produced once per file and never modified afterwards.
type RawGrid []Row

// =============================================================================
// CELL HELPERS
// =============================================================================

// CellString returns the string form of a cell, the way a spreadsheet would
// print it. Absent cells render as the empty string.
//
// EXAMPLES:
//   nil      -> ""
//   "A100"   -> "A100"
//   int64(5) -> "5"
//   99.95    -> "99.95"
func CellString(c Cell) string {
	switch v := c.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

// IsEmptyCell reports whether a cell is absent or the empty string.
func IsEmptyCell(c Cell) bool {
	if c == nil {
		return true
	}
	s, ok := c.(string)
	return ok && s == ""
}

// IsBlank reports whether a row has no cells or only absent/empty cells.
func (r Row) IsBlank() bool {
	for _, cell := range r {
		if !IsEmptyCell(cell) {
			return false
		}
	}
	return true
}

// Join concatenates the string form of every cell with sep.
func (r Row) Join(sep string) string {
	parts := make([]string, len(r))
	for i, cell := range r {
		parts[i] = CellString(cell)
	}
	return strings.Join(parts, sep)
}

// At returns the cell at index i, or nil when the row is shorter than i+1.
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return nil
	}
	return r[i]
}

// =============================================================================
// VALUE TYPING
// =============================================================================

// ParseValue converts the text of a cell into a typed value.
// Returns int64 for integers, float64 for decimals, or the original string.
//
// Codes with a leading zero ("00123") stay strings so that item codes are
// not silently rewritten into numbers.
func ParseValue(s string) Cell {
	if s == "" {
		return s
	}
	if hasSignificantLeadingZero(s) {
		return s
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		// ParseFloat accepts "NaN", "Inf" and hex floats; keep those as text.
		if strings.ContainsAny(s, "nNiIxXpP") {
			return s
		}
		return f
	}
	return s
}

func hasSignificantLeadingZero(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return len(s) > 1 && s[0] == '0' && s[1] != '.'
}

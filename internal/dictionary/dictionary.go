// =============================================================================
// UltiSales Ingest - Code Dictionary
// =============================================================================
//
// The UltiSales point-of-sale system abbreviates every column header into a
// short uppercase code (ITM_CDE, QTY_SLD, ...). This package owns the fixed
// mapping from those legacy codes to canonical, human-readable field names
// and the translator that applies it to a header row.
//
// The dictionary is built once at process start and is read-only. There is
// deliberately no API to add or change entries at runtime.
//
// =============================================================================

package dictionary

import (
	"sort"
	"strings"

	"github.com/ginjaninja78/ultisales-ingest/internal/types"
)

// UnknownHeader is substituted for header cells that are absent or blank.
const UnknownHeader = "UNKNOWN"

// HeaderMatchThreshold is the minimum number of recognised codes a row must
// contain to be treated as a header row.
const HeaderMatchThreshold = 2

// =============================================================================
// DICTIONARY
// =============================================================================

// Dictionary maps legacy uppercase column codes to canonical field names.
// The zero value is an empty dictionary; use Default for the UltiSales table.
type Dictionary struct {
	entries map[string]string
}

// Entry is a single code -> canonical name pair, used for listings.
type Entry struct {
	Code      string `json:"code" yaml:"code"`
	Canonical string `json:"canonical" yaml:"canonical"`
}

// ultiSalesCodes is the UltiSales export column table.
var ultiSalesCodes = []Entry{
	{"ITM_CDE", "Product Code"},
	{"ITM_DSC", "Description"},
	{"QTY_SLD", "Quantity Sold"},
	{"SLS_AMT", "Sales Amount"},
	{"CST_AMT", "Cost Amount"},
	{"TRN_DTE", "Transaction Date"},
	{"REP_ID", "Sales Rep"},
	{"STK_LVL", "Stock Level"},
	{"VND_NME", "Vendor Name"},
	{"CAT_CDE", "Category"},
	{"TAX_AMT", "Tax Amount"},
	{"DSC_AMT", "Discount Amount"},
	{"DOC_NUM", "Document Number"},
	{"CUST_NME", "Customer Name"},
}

var defaultDictionary = New(ultiSalesCodes)

// Default returns the process-wide UltiSales dictionary.
func Default() *Dictionary {
	return defaultDictionary
}

// New builds a dictionary from the given entries. Codes are stored
// uppercased; later duplicates win.
func New(entries []Entry) *Dictionary {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[strings.ToUpper(e.Code)] = e.Canonical
	}
	return &Dictionary{entries: m}
}

// Lookup returns the canonical name for an exact uppercase code.
func (d *Dictionary) Lookup(code string) (string, bool) {
	name, ok := d.entries[code]
	return name, ok
}

// IsCode reports whether the trimmed, uppercased string form of a cell is a
// known legacy code.
func (d *Dictionary) IsCode(c types.Cell) bool {
	if types.IsEmptyCell(c) {
		return false
	}
	_, ok := d.entries[strings.ToUpper(strings.TrimSpace(types.CellString(c)))]
	return ok
}

// CountCodes returns how many cells of the row are known legacy codes.
func (d *Dictionary) CountCodes(row types.Row) int {
	count := 0
	for _, cell := range row {
		if d.IsCode(cell) {
			count++
		}
	}
	return count
}

// IsHeaderRow reports whether a row carries the header signature: at least
// HeaderMatchThreshold recognised codes.
func (d *Dictionary) IsHeaderRow(row types.Row) bool {
	return d.CountCodes(row) >= HeaderMatchThreshold
}

// Len returns the number of codes in the dictionary.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Entries returns a copy of the dictionary sorted by code.
func (d *Dictionary) Entries() []Entry {
	out := make([]Entry, 0, len(d.entries))
	for code, name := range d.entries {
		out = append(out, Entry{Code: code, Canonical: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// =============================================================================
// TRANSLATOR
// =============================================================================

// CleanHeader returns the trimmed label of a raw header cell, or
// UnknownHeader when the cell is absent or blank.
func CleanHeader(c types.Cell) string {
	label := strings.TrimSpace(types.CellString(c))
	if label == "" {
		return UnknownHeader
	}
	return label
}

// TranslateLabel maps a single cleaned header label to its canonical name.
// Labels without a dictionary entry are returned unchanged.
func (d *Dictionary) TranslateLabel(label string) string {
	if name, ok := d.entries[strings.ToUpper(label)]; ok {
		return name
	}
	return label
}

// Translate maps a raw header row to canonical header names.
//
// PARAMETERS:
//   - raw: The raw header cells, in column order.
//
// RETURNS:
//   - One canonical name per raw cell, in the same order. Unrecognised
//     codes keep their trimmed original label; duplicates are preserved.
func (d *Dictionary) Translate(raw types.Row) []string {
	headers := make([]string, len(raw))
	for i, cell := range raw {
		headers[i] = d.TranslateLabel(CleanHeader(cell))
	}
	return headers
}

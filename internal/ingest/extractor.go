// =============================================================================
// UltiSales Ingest - Row Extractor
// =============================================================================
//
// Projects the rows after the header onto canonical names.
//
// =============================================================================

package ingest

import (
	"github.com/ginjaninja78/ultisales-ingest/internal/dictionary"
	"github.com/ginjaninja78/ultisales-ingest/internal/types"
)

// Record is one data row keyed by canonical header name. When two columns
// translate to the same name the later column wins.
type Record map[string]types.Cell

// extraction is the output of the row walk after the header.
type extraction struct {
	records []Record

	// secondaryHeaders are grid indices of repeated header rows that were
	// dropped from the records.
	secondaryHeaders []int
}

// extractRows walks every row strictly after headerIndex. Blank rows are
// skipped silently, repeated header rows are dropped, and every other row is
// projected onto headers by position. Cells past the end of a short row map
// to absent values.
//
// A repeated header row never replaces headers: the columns after it are
// still read with the first header's layout.
func extractRows(grid types.RawGrid, headerIndex int, headers []string, dict *dictionary.Dictionary) extraction {
	var out extraction
	out.records = make([]Record, 0, max(len(grid)-headerIndex-1, 0))

	for i := headerIndex + 1; i < len(grid); i++ {
		row := grid[i]

		if row.IsBlank() {
			continue
		}

		if dict.IsHeaderRow(row) {
			out.secondaryHeaders = append(out.secondaryHeaders, i)
			continue
		}

		record := make(Record, len(headers))
		for col, name := range headers {
			record[name] = row.At(col)
		}
		out.records = append(out.records, record)
	}

	return out
}

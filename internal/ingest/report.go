// =============================================================================
// UltiSales Ingest - Ingestion Report
// =============================================================================
//
// Display lines for the per-file ingestion report.
//
// =============================================================================

package ingest

import (
	"fmt"
	"strings"
)

// Lines renders the report as independent display lines: file name, noise
// rows skipped, mapped columns and one line per metadata item. A header line
// is added only when the header was not found and row 0 was used.
func (r *IngestionReport) Lines() []string {
	lines := []string{
		r.File,
		fmt.Sprintf("Skipped %d noise rows", r.NoiseLinesSkipped),
		fmt.Sprintf("Mapped %d columns: %s", len(r.HeadersFound), strings.Join(r.HeadersFound, ", ")),
	}

	if !r.HeaderDetected {
		lines = append(lines, fmt.Sprintf("Header: not found in first %d rows, row %d used", r.ScanWindow, r.HeaderRowIndex))
	}

	if len(r.SecondaryHeaderRows) > 0 {
		lines = append(lines, fmt.Sprintf("Skipped %d repeated header rows", len(r.SecondaryHeaderRows)))
	}

	lines = append(lines, r.MetadataFound...)
	return lines
}

// String joins Lines with newlines.
func (r *IngestionReport) String() string {
	return strings.Join(r.Lines(), "\n")
}

// =============================================================================
// UltiSales Ingest - Header Scanner
// =============================================================================
//
// Locates the header row and the banner metadata above it.
//
// =============================================================================

package ingest

import (
	"regexp"
	"strings"

	"github.com/ginjaninja78/ultisales-ingest/internal/dictionary"
	"github.com/ginjaninja78/ultisales-ingest/internal/types"
)

// DefaultScanWindow is the number of leading rows searched for the header.
const DefaultScanWindow = 50

// orgMaxCells and orgMinLength bound the banner rows that can carry the
// organization name.
const (
	orgMaxCells  = 5
	orgMinLength = 3
)

// Date patterns, tried in order: ISO-like first, then day/month-first.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}[/-]\d{2}[/-]\d{2}`),
	regexp.MustCompile(`\d{2}[/-]\d{2}[/-]\d{4}`),
}

// ScanResult is the outcome of scanning the leading region of a grid.
type ScanResult struct {
	// HeaderIndex is the grid index of the header row. It is 0 when no
	// header was found inside the window.
	HeaderIndex int

	// HeaderDetected is false when HeaderIndex is the row-0 fallback.
	HeaderDetected bool

	// RawHeaders are the untranslated cells of the header row.
	RawHeaders types.Row

	// NoiseLinesSkipped counts the rows before the header that were not the
	// header, blank rows included.
	NoiseLinesSkipped int

	// ExtractedDate is the first date-like text found, or "".
	ExtractedDate string

	// CompanyName is the first banner cell taken as the organization, or "".
	CompanyName string
}

// scanner walks the leading rows once. The three flags only ever go from
// false to true; headerConfirmed ends the walk.
type scanner struct {
	dict   *dictionary.Dictionary
	window int

	dateFound       bool
	orgFound        bool
	headerConfirmed bool

	result ScanResult
}

// Scan locates the header row and harvests banner metadata.
//
// Up to window rows are examined in order. Blank rows and non-header rows
// count as noise. Date and organization are captured from any non-blank row
// up to and including the header row; the first capture wins. The walk stops
// at the first row with at least two dictionary codes.
func Scan(grid types.RawGrid, dict *dictionary.Dictionary, window int) ScanResult {
	if window <= 0 {
		window = DefaultScanWindow
	}
	s := &scanner{dict: dict, window: window}
	s.run(grid)
	return s.result
}

func (s *scanner) run(grid types.RawGrid) {
	limit := min(len(grid), s.window)

	for i := 0; i < limit && !s.headerConfirmed; i++ {
		row := grid[i]

		if row.IsBlank() {
			s.result.NoiseLinesSkipped++
			continue
		}

		s.captureDate(row)
		s.captureOrg(row)

		if s.dict.IsHeaderRow(row) {
			s.headerConfirmed = true
			s.result.HeaderIndex = i
			s.result.HeaderDetected = true
			break
		}

		s.result.NoiseLinesSkipped++
	}

	// Fallback: no header in the window, row 0 is used.
	if len(grid) > s.result.HeaderIndex {
		s.result.RawHeaders = grid[s.result.HeaderIndex]
	}
}

func (s *scanner) captureDate(row types.Row) {
	if s.dateFound {
		return
	}
	text := strings.ToUpper(row.Join(" "))
	for _, pattern := range datePatterns {
		if match := pattern.FindString(text); match != "" {
			s.result.ExtractedDate = match
			s.dateFound = true
			return
		}
	}
}

func (s *scanner) captureOrg(row types.Row) {
	if s.orgFound || len(row) >= orgMaxCells {
		return
	}
	first := types.CellString(row.At(0))
	if len([]rune(first)) > orgMinLength {
		s.result.CompanyName = first
		s.orgFound = true
	}
}

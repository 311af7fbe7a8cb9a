// =============================================================================
// UltiSales Ingest - Ingestion Engine
// =============================================================================
//
// This package turns the raw grid of one UltiSales export into a normalized
// dataset and an ingestion report. It runs in three steps:
//
//   1. Scan     : find the header row in the first rows of the grid and pick
//                 up the report date and organization from the banner
//   2. Translate: map the legacy column codes of the header to canonical names
//   3. Extract  : walk the rows after the header, drop blank rows and
//                 repeated header blocks, build one record per data row
//
// The engine is a pure function of the grid. It does no I/O, never logs and
// holds no mutable state, so one Engine can parse many files concurrently.
//
// =============================================================================

package ingest

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ginjaninja78/ultisales-ingest/internal/dictionary"
	"github.com/ginjaninja78/ultisales-ingest/internal/types"
)

// =============================================================================
// OUTPUT STRUCTURES
// =============================================================================

// Metadata holds the values harvested from the banner rows of an export.
type Metadata struct {
	ExtractedDate string `json:"extractedDate,omitempty" jsonschema_description:"First date-like text found above the header row"`
	CompanyName   string `json:"companyName,omitempty" jsonschema_description:"Organization name taken from the report banner"`
}

// NormalizedDataset is the clean row set extracted from one file.
// It is created once per file and must not be modified afterwards.
type NormalizedDataset struct {
	// ID is a fresh random identifier, unrelated to the content.
	ID string `json:"id"`

	// Name is the declared file name.
	Name string `json:"name"`

	// Headers are the canonical column names in column order. Duplicates
	// are kept.
	Headers []string `json:"headers"`

	// Rows are the data records, in file order.
	Rows []Record `json:"rows"`

	// RowCount always equals len(Rows).
	RowCount int `json:"rowCount"`

	Metadata Metadata `json:"metadata"`

	// HeaderDetected is false when no header was found in the scan window
	// and row 0 was used instead.
	HeaderDetected bool `json:"headerDetected"`
}

// IngestionReport explains how a file was read.
type IngestionReport struct {
	File              string   `json:"file"`
	DatasetID         string   `json:"datasetId"`
	NoiseLinesSkipped int      `json:"noiseLinesSkipped"`
	HeadersFound      []string `json:"headersFound"`
	MetadataFound     []string `json:"metadataFound"`

	// HeaderRowIndex is the grid index of the header row.
	HeaderRowIndex int `json:"headerRowIndex"`

	// HeaderDetected is false on the row-0 fallback.
	HeaderDetected bool `json:"headerDetected"`

	// ScanWindow is the number of rows that were searched for the header.
	ScanWindow int `json:"scanWindow"`

	// SecondaryHeaderRows are grid indices of dropped repeated header rows.
	SecondaryHeaderRows []int `json:"secondaryHeaderRows,omitempty"`

	// RawHeaders are the untranslated header labels, kept for diagnostics.
	RawHeaders []string `json:"rawHeaders"`
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine parses raw grids. The zero value is not usable; call NewEngine.
type Engine struct {
	dict       *dictionary.Dictionary
	scanWindow int
	newID      func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithDictionary replaces the default UltiSales dictionary.
func WithDictionary(dict *dictionary.Dictionary) Option {
	return func(e *Engine) {
		e.dict = dict
	}
}

// WithScanWindow sets the number of leading rows searched for the header.
// Non-positive values keep the default of 50.
func WithScanWindow(rows int) Option {
	return func(e *Engine) {
		if rows > 0 {
			e.scanWindow = rows
		}
	}
}

// WithIDGenerator replaces the dataset id source.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

// NewEngine creates an engine with the UltiSales dictionary and a 50 row
// scan window.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		dict:       dictionary.Default(),
		scanWindow: DefaultScanWindow,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dictionary returns the dictionary the engine translates with.
func (e *Engine) Dictionary() *dictionary.Dictionary {
	return e.dict
}

// ScanWindow returns the configured scan window.
func (e *Engine) ScanWindow() int {
	return e.scanWindow
}

// Parse normalizes one raw grid.
//
// PARAMETERS:
//   - name: The declared file name, copied into the dataset and the report.
//   - grid: The decoded first sheet of the file.
//
// RETURNS:
//   - The normalized dataset.
//   - The ingestion report describing what was skipped and found.
//
// A grid without a recognisable header is not an error: row 0 is used as the
// header and HeaderDetected is false on both outputs.
func (e *Engine) Parse(name string, grid types.RawGrid) (*NormalizedDataset, *IngestionReport) {
	scan := Scan(grid, e.dict, e.scanWindow)

	headers := e.dict.Translate(scan.RawHeaders)
	rows := extractRows(grid, scan.HeaderIndex, headers, e.dict)

	dataset := &NormalizedDataset{
		ID:      e.newID(),
		Name:    name,
		Headers: headers,
		Rows:    rows.records,
		Metadata: Metadata{
			ExtractedDate: scan.ExtractedDate,
			CompanyName:   scan.CompanyName,
		},
		HeaderDetected: scan.HeaderDetected,
	}
	dataset.RowCount = len(dataset.Rows)

	report := &IngestionReport{
		File:                name,
		DatasetID:           dataset.ID,
		NoiseLinesSkipped:   scan.NoiseLinesSkipped,
		HeadersFound:        append([]string(nil), headers...),
		MetadataFound:       metadataLines(scan),
		HeaderRowIndex:      scan.HeaderIndex,
		HeaderDetected:      scan.HeaderDetected,
		ScanWindow:          e.scanWindow,
		SecondaryHeaderRows: rows.secondaryHeaders,
		RawHeaders:          rawLabels(scan.RawHeaders),
	}

	return dataset, report
}

// metadataLines lists the harvested metadata, date first.
func metadataLines(scan ScanResult) []string {
	lines := []string{}
	if scan.ExtractedDate != "" {
		lines = append(lines, fmt.Sprintf("Date: %s", scan.ExtractedDate))
	}
	if scan.CompanyName != "" {
		lines = append(lines, fmt.Sprintf("Org: %s", scan.CompanyName))
	}
	return lines
}

func rawLabels(row types.Row) []string {
	labels := make([]string, len(row))
	for i, cell := range row {
		labels[i] = dictionary.CleanHeader(cell)
	}
	return labels
}

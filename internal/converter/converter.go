// =============================================================================
// UltiSales Ingest - Converter Module
// =============================================================================
//
// This module runs the pipeline for a single file, from raw bytes to a
// normalized dataset, and writes the outputs of a finished file.
//
// PIPELINE:
//   1. Read     : load the whole file into memory (the only blocking step)
//   2. Decode   : pick a loader by extension and build the raw grid
//   3. Ingest   : scan, translate and extract (internal/ingest)
//   4. Validate : collect diagnostics (internal/validation); in strict mode
//                 a warning fails the file
//
// Steps 2-4 are pure computations over the bytes. A file fails as a unit:
// either every step succeeds or the Result carries a *FileError and no
// dataset.
//
// CONCURRENCY:
//   A Converter holds no mutable state. Batches run one goroutine per file
//   against the same Converter (see batch.go).
//
// =============================================================================

package converter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ginjaninja78/ultisales-ingest/internal/config"
	"github.com/ginjaninja78/ultisales-ingest/internal/csvparser"
	"github.com/ginjaninja78/ultisales-ingest/internal/ingest"
	"github.com/ginjaninja78/ultisales-ingest/internal/types"
	"github.com/ginjaninja78/ultisales-ingest/internal/validation"
	"github.com/ginjaninja78/ultisales-ingest/internal/xlsxparser"
	"github.com/ginjaninja78/ultisales-ingest/internal/xmlwriter"
	"github.com/ginjaninja78/ultisales-ingest/pkg/utils"
)

// =============================================================================
// FORMAT DETECTION
// =============================================================================

// Format is the container type of an input file.
type Format string

const (
	FormatWorkbook       Format = "workbook"
	FormatLegacyWorkbook Format = "legacy-workbook"
	FormatDelimited      Format = "delimited"
)

// DetectFormat maps a file name to its container format by extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatWorkbook, nil
	case ".xls":
		return FormatLegacyWorkbook, nil
	case ".csv", ".tsv", ".txt":
		return FormatDelimited, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the declared name or path of the input.
	FilePath string

	// Dataset and Report are nil if processing failed.
	Dataset *ingest.NormalizedDataset
	Report  *ingest.IngestionReport

	// Issues are the diagnostics of a parsed file, kept when strict
	// validation rejected it.
	Issues []*validation.ValidationError

	// Success indicates whether the processing was successful.
	Success bool

	// Error is a *FileError if processing failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Format is the detected container format.
	Format Format

	// GridRows is the number of rows in the decoded sheet.
	GridRows int

	// RecordsExtracted equals Dataset.RowCount.
	RecordsExtracted int

	// NoiseLinesSkipped is copied from the report.
	NoiseLinesSkipped int

	// Warnings is the number of warning-level issues.
	Warnings int

	// ProcessingTime is the time taken by the decode, ingest and validate steps.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Logger is the subset of *log.Logger the converter uses.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
}

// Converter runs the single-file pipeline.
type Converter struct {
	engine    *ingest.Engine
	validator *validation.Validator
	csv       config.CSVSettings
	logger    Logger
}

// New creates a Converter from the main configuration.
//
// PARAMETERS:
//   - cfg: The main configuration (scan window, strict mode and CSV settings
//     are used).
//   - logger: Destination for progress messages. nil uses log.Default().
func New(cfg *config.MainConfig, logger Logger) *Converter {
	if logger == nil {
		logger = log.Default()
	}
	engine := ingest.NewEngine(ingest.WithScanWindow(cfg.ScanWindow))
	return &Converter{
		engine:    engine,
		validator: validation.NewValidatorWithOptions(engine.Dictionary(), validation.ValidationOptions{
			TreatWarningsAsErrors: cfg.Strict,
		}),
		csv:       cfg.CSVSettings,
		logger:    logger,
	}
}

// Engine returns the ingestion engine used by the converter.
func (c *Converter) Engine() *ingest.Engine {
	return c.engine
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// ReadFile is the I/O step: it loads the whole file into memory.
func (c *Converter) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FileError{File: path, Stage: StageRead, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{File: path, Stage: StageRead, Err: err}
	}
	return data, nil
}

// Run reads the file at path and converts it.
func (c *Converter) Run(ctx context.Context, path string) Result {
	data, err := c.ReadFile(ctx, path)
	if err != nil {
		c.logger.Error("failed to read file", "file", path, "err", err)
		return Result{FilePath: path, Error: err}
	}
	return c.Convert(path, data)
}

// Convert runs the decode, ingest and validate steps on an in-memory payload.
//
// PARAMETERS:
//   - name: The declared file name. Its extension selects the loader.
//   - data: The complete file contents.
//
// RETURNS:
//   - A Result. On failure Result.Error is a *FileError wrapping
//     ErrUnsupportedFormat, ErrEmptyFile, ErrDecode or ErrInvalid.
func (c *Converter) Convert(name string, data []byte) Result {
	startTime := time.Now()
	result := Result{FilePath: name}

	// =========================================================================
	// STEP 1: DECODE
	// =========================================================================

	format, grid, err := c.Decode(name, data)
	result.Stats.Format = format
	if err != nil {
		result.Error = &FileError{File: name, Stage: StageDecode, Err: err}
		c.logger.Error("failed to decode file", "file", name, "err", err)
		return result
	}
	result.Stats.GridRows = len(grid)

	c.logger.Debug("decoded file", "file", name, "format", format, "rows", len(grid))

	// =========================================================================
	// STEP 2: INGEST
	// =========================================================================

	dataset, report := c.engine.Parse(filepath.Base(name), grid)
	result.Dataset = dataset
	result.Report = report
	result.Stats.RecordsExtracted = dataset.RowCount
	result.Stats.NoiseLinesSkipped = report.NoiseLinesSkipped

	// =========================================================================
	// STEP 3: VALIDATE
	// =========================================================================

	checked := c.validator.ValidateDataset(dataset, report, grid)
	result.Issues = checked.Errors
	result.Stats.Warnings = checked.WarningCount
	for _, issue := range checked.Errors {
		if issue.Severity == validation.SeverityWarning {
			c.logger.Warn(issue.Message, "file", issue.File, "rule", issue.Rule, "row", issue.RowNumber)
		}
	}

	result.Stats.ProcessingTime = time.Since(startTime)

	if !checked.IsValid {
		result.Dataset = nil
		result.Report = nil
		result.Error = &FileError{
			File:  name,
			Stage: StageValidate,
			Err:   fmt.Errorf("%w: %s", ErrInvalid, firstBlocking(checked.Errors)),
		}
		c.logger.Error("dataset failed validation", "file", name, "errors", checked.ErrorCount, "warnings", checked.WarningCount)
		return result
	}

	result.Success = true

	c.logger.Info("parsed file",
		"file", name,
		"records", dataset.RowCount,
		"noise", report.NoiseLinesSkipped,
		"header_row", report.HeaderRowIndex,
	)

	return result
}

// firstBlocking returns the message of the first error-level issue, or of
// the first warning when there is none.
func firstBlocking(issues []*validation.ValidationError) string {
	for _, severity := range []string{validation.SeverityError, validation.SeverityWarning} {
		for _, issue := range issues {
			if issue.Severity == severity {
				return issue.Message
			}
		}
	}
	return "invalid dataset"
}

// Decode selects the loader for name and decodes data into a raw grid.
func (c *Converter) Decode(name string, data []byte) (Format, types.RawGrid, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return format, nil, ErrEmptyFile
	}

	var grid types.RawGrid
	switch format {
	case FormatWorkbook:
		grid, err = xlsxparser.Parse(data)
	case FormatLegacyWorkbook:
		grid, err = xlsxparser.ParseLegacy(data)
	case FormatDelimited:
		grid, err = csvparser.Parse(data, c.delimitedSettings(name))
	}
	if err != nil {
		return format, nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return format, grid, nil
}

// delimitedSettings forces tabs for .tsv files when the delimiter is sniffed.
func (c *Converter) delimitedSettings(name string) config.CSVSettings {
	settings := c.csv
	if strings.EqualFold(filepath.Ext(name), ".tsv") {
		if r, _ := settings.DelimiterRune(); r == 0 {
			settings.Delimiter = "tab"
		}
	}
	return settings
}

// =============================================================================
// OUTPUT
// =============================================================================

// WriteOutput writes the dataset of a successful result to dir.
//
// FILE NAMING:
//   <input base name>_<first 8 characters of the dataset id>.<json|xml>
//
// RETURNS:
//   - The path of the written file.
//   - A *FileError with stage "write" if the dataset could not be written.
func (c *Converter) WriteOutput(result *Result, dir, format string) (string, error) {
	if result.Dataset == nil {
		return "", &FileError{File: result.FilePath, Stage: StageWrite, Err: fmt.Errorf("no dataset")}
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case config.FormatXML:
		data, err = xmlwriter.Generate(result.Dataset)
	default:
		format = config.FormatJSON
		data, err = json.MarshalIndent(result.Dataset, "", "  ")
	}
	if err != nil {
		return "", &FileError{File: result.FilePath, Stage: StageWrite, Err: fmt.Errorf("failed to encode dataset: %w", err)}
	}

	fileName := utils.GenerateOutputFileName(result.FilePath, result.Dataset.ID, format)
	outputPath := filepath.Join(dir, fileName)

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return "", &FileError{File: result.FilePath, Stage: StageWrite, Err: err}
	}

	c.logger.Debug("wrote dataset", "file", result.FilePath, "output", outputPath)
	return outputPath, nil
}

// =============================================================================
// UltiSales Ingest - Dataset Diagnostics
// =============================================================================
//
// This module checks a normalized dataset and its ingestion report for the
// structural problems an analyst should know about before trusting the data.
// It never changes the dataset; it only reports.
//
// CHECKS:
//
//   | Rule                  | Severity | Raised when                                    |
//   |-----------------------|----------|------------------------------------------------|
//   | row_count             | error    | RowCount differs from the number of records    |
//   | header_fallback       | warning  | no header in the scan window, row 0 was used   |
//   | duplicate_header      | warning  | two columns translate to the same name         |
//   | secondary_layout      | warning  | a repeated header has a different layout; the  |
//   |                       |          | rows below it are still read with the first one|
//   | no_records            | warning  | the file produced no data rows                 |
//   | unmapped_column       | info     | a header label is not a known legacy code      |
//
// ERROR HANDLING:
//   - Issues are collected, never returned as Go errors
//   - Each issue carries the file, the field and the 1-based row number
//
// =============================================================================

package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ginjaninja78/ultisales-ingest/internal/dictionary"
	"github.com/ginjaninja78/ultisales-ingest/internal/ingest"
	"github.com/ginjaninja78/ultisales-ingest/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Rule names.
const (
	RuleRowCount        = "row_count"
	RuleHeaderFallback  = "header_fallback"
	RuleDuplicateHeader = "duplicate_header"
	RuleSecondaryLayout = "secondary_layout"
	RuleNoRecords       = "no_records"
	RuleUnmappedColumn  = "unmapped_column"
)

// =============================================================================
// VALIDATION ISSUE TYPES
// =============================================================================

// ValidationError represents a single diagnostic.
type ValidationError struct {
	// Severity is "error", "warning" or "info".
	Severity string `json:"severity"`

	// File is the declared file name of the dataset.
	File string `json:"file"`

	// Field is the header the issue is about, if any.
	Field string `json:"field,omitempty"`

	// Value is the offending raw value, if any.
	Value string `json:"value,omitempty"`

	// Rule is the check that raised the issue.
	Rule string `json:"rule"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// RowNumber is the 1-based row in the source sheet, or 0.
	RowNumber int `json:"rowNumber,omitempty"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", strings.ToUpper(e.Severity), e.File)
	if e.RowNumber > 0 {
		fmt.Fprintf(&b, ", Row %d", e.RowNumber)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ", Field '%s'", e.Field)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	if e.Value != "" {
		fmt.Fprintf(&b, " (value: '%s')", e.Value)
	}
	return b.String()
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no errors.
	IsValid bool

	// Errors contains all issues, warnings and infos included.
	Errors []*ValidationError

	ErrorCount   int
	WarningCount int
	InfoCount    int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// TreatWarningsAsErrors makes any warning invalidate the dataset.
	// Default: false
	TreatWarningsAsErrors bool

	// SkipInfo drops informational issues.
	// Default: false
	SkipInfo bool
}

// Validator checks datasets against the dictionary they were translated with.
type Validator struct {
	dict    *dictionary.Dictionary
	options ValidationOptions
}

// NewValidator creates a new Validator instance.
func NewValidator(dict *dictionary.Dictionary) *Validator {
	return &Validator{dict: dict}
}

// NewValidatorWithOptions creates a new Validator with custom options.
func NewValidatorWithOptions(dict *dictionary.Dictionary, options ValidationOptions) *Validator {
	return &Validator{dict: dict, options: options}
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// ValidateDataset runs every check and returns a detailed result.
//
// PARAMETERS:
//   - dataset: The normalized dataset.
//   - report: The report produced with the dataset.
//   - grid: The raw grid the dataset was built from. It is only needed for
//     the secondary_layout check and may be nil.
func (v *Validator) ValidateDataset(dataset *ingest.NormalizedDataset, report *ingest.IngestionReport, grid types.RawGrid) *ValidationResult {
	var issues []*ValidationError

	issues = append(issues, v.checkRowCount(dataset)...)
	issues = append(issues, v.checkHeaderFallback(dataset, report)...)
	issues = append(issues, v.checkDuplicateHeaders(dataset)...)
	issues = append(issues, v.checkSecondaryLayouts(dataset, report, grid)...)
	issues = append(issues, v.checkNoRecords(dataset)...)
	if !v.options.SkipInfo {
		issues = append(issues, v.checkUnmappedColumns(dataset, report)...)
	}

	result := &ValidationResult{IsValid: true, Errors: make([]*ValidationError, 0, len(issues))}
	for _, issue := range issues {
		result.Errors = append(result.Errors, issue)
		switch issue.Severity {
		case SeverityError:
			result.ErrorCount++
			result.IsValid = false
		case SeverityWarning:
			result.WarningCount++
			if v.options.TreatWarningsAsErrors {
				result.IsValid = false
			}
		default:
			result.InfoCount++
		}
	}
	return result
}

func (v *Validator) checkRowCount(dataset *ingest.NormalizedDataset) []*ValidationError {
	if dataset.RowCount == len(dataset.Rows) {
		return nil
	}
	return []*ValidationError{{
		Severity: SeverityError,
		File:     dataset.Name,
		Rule:     RuleRowCount,
		Message:  fmt.Sprintf("rowCount %d does not match %d records", dataset.RowCount, len(dataset.Rows)),
	}}
}

func (v *Validator) checkHeaderFallback(dataset *ingest.NormalizedDataset, report *ingest.IngestionReport) []*ValidationError {
	if report.HeaderDetected {
		return nil
	}
	return []*ValidationError{{
		Severity:  SeverityWarning,
		File:      dataset.Name,
		Rule:      RuleHeaderFallback,
		Message:   fmt.Sprintf("no row with two or more legacy codes in the first %d rows; row 1 used as header", report.ScanWindow),
		RowNumber: report.HeaderRowIndex + 1,
	}}
}

func (v *Validator) checkDuplicateHeaders(dataset *ingest.NormalizedDataset) []*ValidationError {
	var issues []*ValidationError
	seen := make(map[string]int, len(dataset.Headers))
	for col, name := range dataset.Headers {
		first, dup := seen[name]
		if !dup {
			seen[name] = col
			continue
		}
		issues = append(issues, &ValidationError{
			Severity: SeverityWarning,
			File:     dataset.Name,
			Field:    name,
			Rule:     RuleDuplicateHeader,
			Message:  fmt.Sprintf("columns %d and %d share this name; records keep column %d", first+1, col+1, col+1),
		})
	}
	return issues
}

func (v *Validator) checkSecondaryLayouts(dataset *ingest.NormalizedDataset, report *ingest.IngestionReport, grid types.RawGrid) []*ValidationError {
	var issues []*ValidationError
	for _, idx := range report.SecondaryHeaderRows {
		if idx < 0 || idx >= len(grid) {
			continue
		}
		layout := v.dict.Translate(grid[idx])
		if sameLayout(dataset.Headers, layout) {
			continue
		}
		issues = append(issues, &ValidationError{
			Severity:  SeverityWarning,
			File:      dataset.Name,
			Rule:      RuleSecondaryLayout,
			Value:     strings.Join(layout, ", "),
			Message:   "repeated header has a different column layout; following rows are still mapped with the first header",
			RowNumber: idx + 1,
		})
	}
	return issues
}

func (v *Validator) checkNoRecords(dataset *ingest.NormalizedDataset) []*ValidationError {
	if len(dataset.Rows) > 0 {
		return nil
	}
	return []*ValidationError{{
		Severity: SeverityWarning,
		File:     dataset.Name,
		Rule:     RuleNoRecords,
		Message:  "no data rows found after the header",
	}}
}

func (v *Validator) checkUnmappedColumns(dataset *ingest.NormalizedDataset, report *ingest.IngestionReport) []*ValidationError {
	var issues []*ValidationError
	for col, label := range report.RawHeaders {
		if v.dict.IsCode(label) {
			continue
		}
		issues = append(issues, &ValidationError{
			Severity: SeverityInfo,
			File:     dataset.Name,
			Field:    label,
			Rule:     RuleUnmappedColumn,
			Message:  fmt.Sprintf("column %d is not a legacy code and keeps its original label", col+1),
		})
	}
	return issues
}

// sameLayout compares two translated header rows, ignoring trailing UNKNOWN
// columns (a repeated header is often written narrower than the first one).
func sameLayout(a, b []string) bool {
	return slices.Equal(trimUnknown(a), trimUnknown(b))
}

func trimUnknown(headers []string) []string {
	end := len(headers)
	for end > 0 && headers[end-1] == dictionary.UnknownHeader {
		end--
	}
	return headers[:end]
}

// =============================================================================
// OUTPUT
// =============================================================================

// FormatErrors formats validation issues for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation issues."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d issue(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

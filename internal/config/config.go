// =============================================================================
// UltiSales Ingest - Configuration Module
// =============================================================================
//
// This module loads the application configuration (config.yaml). Every
// setting has a default, so the tool also runs without a config file.
//
// NOT CONFIGURABLE:
//   The legacy code dictionary is fixed at build time (see internal/dictionary).
//   It cannot be extended or overridden from this file.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatXML  = "xml"
)

// Batch policies.
const (
	// PolicyCollect keeps successful files and reports each failure. The
	// batch fails only when every file failed.
	PolicyCollect = "collect"

	// PolicyAbort fails the whole batch on the first failing file; nothing
	// from the batch is committed.
	PolicyAbort = "abort"
)

// Defaults.
const (
	DefaultScanWindow     = 50
	DefaultSampleSize     = 10
	DefaultMaxConcurrency = 4
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for exports when `ingest` is run without arguments.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives normalized datasets, ingestion logs and the run summary.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir is where successfully parsed inputs are moved.
	// Leave empty to keep inputs in place.
	InputArchiveDir string `yaml:"input_archive_dir"`

	// ArchiveTimestampSubdirs files archived inputs under year/month/day
	// subdirectories of InputArchiveDir.
	// Default: false
	ArchiveTimestampSubdirs bool `yaml:"archive_timestamp_subdirs"`

	// FilePatterns are glob patterns used when scanning InputDir.
	// Default: ["*.xlsx", "*.xlsm", "*.xls", "*.csv", "*.tsv", "*.txt"]
	FilePatterns []string `yaml:"file_patterns"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputFormat is the dataset file format: "json" or "xml".
	// Default: "json"
	OutputFormat string `yaml:"output_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files parsed at once.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// BatchPolicy decides what happens when a file of a batch fails.
	// Valid values: "collect", "abort"
	// Default: "collect"
	BatchPolicy string `yaml:"batch_policy"`

	// ScanWindow is the number of leading rows searched for the header.
	// Default: 50
	ScanWindow int `yaml:"scan_window"`

	// SampleSize is the number of records per file handed to the analysis
	// collaborator.
	// Default: 10
	SampleSize int `yaml:"sample_size"`

	// Strict fails a file whose validation reports a warning, such as a
	// header found only by the row-0 fallback or duplicated column names.
	// Default: false
	Strict bool `yaml:"strict"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// CSV SETTINGS
	// =========================================================================

	// CSVSettings applies to .csv, .tsv and .txt exports.
	CSVSettings CSVSettings `yaml:"csv_settings"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for reading delimited text exports.
type CSVSettings struct {
	// Delimiter is the field separator.
	// Valid values: "auto", ",", ";", "|", "tab" (or "\t")
	// "auto" sniffs the delimiter from the first lines of the file.
	// Default: "auto"
	Delimiter string `yaml:"delimiter"`

	// Encoding is the character encoding of the export.
	// Valid values: "UTF-8", "Windows-1252", "ISO-8859-1"
	// Older UltiSales terminals write Windows-1252.
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct. A missing file yields the defaults.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if len(config.FilePatterns) == 0 {
		config.FilePatterns = []string{"*.xlsx", "*.xlsm", "*.xls", "*.csv", "*.tsv", "*.txt"}
	}
	if config.OutputFormat == "" {
		config.OutputFormat = FormatJSON
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = DefaultMaxConcurrency
	}
	if config.BatchPolicy == "" {
		config.BatchPolicy = PolicyCollect
	}
	if config.ScanWindow <= 0 {
		config.ScanWindow = DefaultScanWindow
	}
	if config.SampleSize <= 0 {
		config.SampleSize = DefaultSampleSize
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = "auto"
	}
	if config.CSVSettings.Encoding == "" {
		config.CSVSettings.Encoding = "UTF-8"
	}
}

// Validate checks enumerated settings. It does not touch the filesystem;
// directories are created by the file manager when outputs are written.
func (c *MainConfig) Validate() error {
	switch strings.ToLower(c.OutputFormat) {
	case FormatJSON, FormatXML:
		c.OutputFormat = strings.ToLower(c.OutputFormat)
	default:
		return fmt.Errorf("unsupported output_format %q (expected json or xml)", c.OutputFormat)
	}

	switch strings.ToLower(c.BatchPolicy) {
	case PolicyCollect, PolicyAbort:
		c.BatchPolicy = strings.ToLower(c.BatchPolicy)
	default:
		return fmt.Errorf("unsupported batch_policy %q (expected collect or abort)", c.BatchPolicy)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log_level %q", c.LogLevel)
	}

	if _, err := c.CSVSettings.DelimiterRune(); err != nil {
		return err
	}
	if !c.CSVSettings.KnownEncoding() {
		return fmt.Errorf("unsupported csv_settings.encoding %q", c.CSVSettings.Encoding)
	}

	return nil
}

// DelimiterRune returns the configured delimiter, or 0 when it should be
// sniffed from the data.
func (s CSVSettings) DelimiterRune() (rune, error) {
	switch strings.ToLower(s.Delimiter) {
	case "", "auto":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	case "\t", `\t`, "tab":
		return '\t', nil
	}
	return 0, fmt.Errorf("unsupported csv_settings.delimiter %q", s.Delimiter)
}

// KnownEncoding reports whether Encoding names a supported charset.
func (s CSVSettings) KnownEncoding() bool {
	switch normalizeEncoding(s.Encoding) {
	case "", "utf8", "windows1252", "cp1252", "iso88591", "latin1":
		return true
	}
	return false
}

// NormalizedEncoding returns the encoding name lowercased without dashes or
// underscores ("Windows-1252" -> "windows1252").
func (s CSVSettings) NormalizedEncoding() string {
	return normalizeEncoding(s.Encoding)
}

func normalizeEncoding(name string) string {
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(name))
}

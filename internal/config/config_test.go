package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMainConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadMainConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ScanWindow != 50 {
		t.Errorf("ScanWindow = %d, want 50", cfg.ScanWindow)
	}
	if cfg.SampleSize != 10 {
		t.Errorf("SampleSize = %d, want 10", cfg.SampleSize)
	}
	if cfg.BatchPolicy != PolicyCollect {
		t.Errorf("BatchPolicy = %q, want collect", cfg.BatchPolicy)
	}
	if cfg.OutputFormat != FormatJSON {
		t.Errorf("OutputFormat = %q, want json", cfg.OutputFormat)
	}
	if cfg.CSVSettings.Delimiter != "auto" {
		t.Errorf("Delimiter = %q, want auto", cfg.CSVSettings.Delimiter)
	}
	if len(cfg.FilePatterns) == 0 {
		t.Error("expected default file patterns")
	}
}

func TestLoadMainConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
input_dir: ./exports
output_format: XML
batch_policy: abort
max_concurrency: 2
scan_window: 20
csv_settings:
  delimiter: ";"
  encoding: Windows-1252
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadMainConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.InputDir != "./exports" {
		t.Errorf("InputDir = %q", cfg.InputDir)
	}
	if cfg.OutputFormat != FormatXML {
		t.Errorf("OutputFormat = %q, want xml", cfg.OutputFormat)
	}
	if cfg.BatchPolicy != PolicyAbort {
		t.Errorf("BatchPolicy = %q, want abort", cfg.BatchPolicy)
	}
	if cfg.MaxConcurrency != 2 || cfg.ScanWindow != 20 {
		t.Errorf("MaxConcurrency/ScanWindow = %d/%d", cfg.MaxConcurrency, cfg.ScanWindow)
	}
	if r, _ := cfg.CSVSettings.DelimiterRune(); r != ';' {
		t.Errorf("DelimiterRune = %q, want ';'", r)
	}
	if cfg.CSVSettings.NormalizedEncoding() != "windows1252" {
		t.Errorf("NormalizedEncoding = %q", cfg.CSVSettings.NormalizedEncoding())
	}
}

func TestLoadMainConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"bad format", "output_format: parquet\n", "output_format"},
		{"bad policy", "batch_policy: retry\n", "batch_policy"},
		{"bad delimiter", "csv_settings:\n  delimiter: \"#\"\n", "delimiter"},
		{"bad encoding", "csv_settings:\n  encoding: EBCDIC\n", "encoding"},
		{"bad level", "log_level: chatty\n", "log_level"},
		{"bad yaml", "output_format: [\n", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadMainConfig(path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("error %q does not mention %q", err, tt.errPart)
			}
		})
	}
}

func TestDelimiterRune(t *testing.T) {
	tests := map[string]rune{
		"auto": 0,
		"":     0,
		",":    ',',
		"tab":  '\t',
		`\t`:   '\t',
		"pipe": '|',
	}
	for in, want := range tests {
		got, err := CSVSettings{Delimiter: in}.DelimiterRune()
		if err != nil {
			t.Errorf("DelimiterRune(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("DelimiterRune(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadMainConfigSwitches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "strict: true\narchive_timestamp_subdirs: true\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadMainConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Strict || !cfg.ArchiveTimestampSubdirs {
		t.Errorf("switches not loaded: strict=%v archive_timestamp_subdirs=%v", cfg.Strict, cfg.ArchiveTimestampSubdirs)
	}
	if Default().Strict || Default().ArchiveTimestampSubdirs {
		t.Error("switches must default to off")
	}
}

package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "A.XLSX", "notes.md", ".hidden.csv", "c.xls"} {
		touch(t, filepath.Join(dir, name))
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.csv"), 0755); err != nil {
		t.Fatal(err)
	}

	fm := NewFileManager(dir, t.TempDir(), "")
	files, err := fm.DiscoverInputFiles([]string{"*.xlsx", "*.csv", "*.xls", "*.CSV"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		filepath.Join(dir, "A.XLSX"),
		filepath.Join(dir, "b.csv"),
		filepath.Join(dir, "c.xls"),
	}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestDiscoverInputFilesMissingDir(t *testing.T) {
	fm := NewFileManager(filepath.Join(t.TempDir(), "nope"), "", "")
	if _, err := fm.DiscoverInputFiles([]string{"*.csv"}); err == nil {
		t.Error("expected an error for a missing input directory")
	}
}

func TestArchiveInputFile(t *testing.T) {
	inputDir := t.TempDir()
	archiveDir := filepath.Join(t.TempDir(), "archive")
	src := filepath.Join(inputDir, "export.csv")
	touch(t, src)

	fm := NewFileManager(inputDir, t.TempDir(), archiveDir)
	if err := fm.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	archived, err := fm.ArchiveInputFile(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if archived != filepath.Join(archiveDir, "export.csv") {
		t.Errorf("archived = %q", archived)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source should have been moved")
	}
	if _, err := os.Stat(archived); err != nil {
		t.Errorf("archived file missing: %v", err)
	}
}

func TestArchiveDisabled(t *testing.T) {
	src := filepath.Join(t.TempDir(), "export.csv")
	touch(t, src)

	fm := NewFileManager(filepath.Dir(src), t.TempDir(), "")
	got, err := fm.ArchiveInputFile(src)
	if err != nil || got != src {
		t.Errorf("ArchiveInputFile = %q, %v; want unchanged path", got, err)
	}
}

func TestGenerateOutputFileName(t *testing.T) {
	tests := []struct {
		input, id, ext, want string
	}{
		{"exports/March Sales.xlsx", "3f2a9c1e-0000-4000-8000-000000000000", "json", "March_Sales_3f2a9c1e.json"},
		{"a.csv", "12345678-aaaa", ".xml", "a_12345678.xml"},
		{".xlsx", "abc", "json", "dataset_abc.json"},
	}
	for _, tt := range tests {
		if got := GenerateOutputFileName(tt.input, tt.id, tt.ext); got != tt.want {
			t.Errorf("GenerateOutputFileName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestWriteIngestionLog(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteIngestionLog(IngestionLogEntry{
		File:        "acme.xlsx",
		OutputFile:  filepath.Join(dir, "acme_12345678.json"),
		ReportLines: []string{"acme.xlsx", "Skipped 3 noise rows"},
		Issues:      []string{"[INFO] acme.xlsx: something"},
	}, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "acme_12345678_ingestion.txt" {
		t.Errorf("path = %q", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Skipped 3 noise rows", "Issues (1):", "1. [INFO] acme.xlsx: something"} {
		if !strings.Contains(string(content), want) {
			t.Errorf("log missing %q:\n%s", want, content)
		}
	}
}

func TestWriteSummaryLog(t *testing.T) {
	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	summary := ProcessingSummary{
		StartTime:       start,
		EndTime:         start.Add(2 * time.Second),
		Policy:          "collect",
		Committed:       true,
		TotalFiles:      2,
		SuccessfulFiles: 1,
		FailedFiles:     1,
		TotalRecords:    4,
		ProcessedFiles:  []ProcessedFileInfo{{InputFile: "a.csv", Records: 4, HeaderRow: 3}},
		FailedFilesList: []FailedFileInfo{{InputFile: "b.pdf", Stage: "decode", ErrorMessage: "unsupported"}},
	}

	dir := t.TempDir()
	path, err := WriteSummaryLog(summary, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "processing_summary_20240115_090002.txt" {
		t.Errorf("path = %q", path)
	}

	var buf bytes.Buffer
	if err := FormatSummary(&buf, summary); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Batch Policy:   collect", "Failed:             1", "Header Row:   4", "Stage: decode"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, buf.String())
		}
	}
}

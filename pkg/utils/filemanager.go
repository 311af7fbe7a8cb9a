// =============================================================================
// UltiSales Ingest - File Manager Utility
// =============================================================================
//
// This module provides the file handling around a run:
//   - Export discovery in the input directory
//   - Archival of successfully parsed exports
//   - Output file naming
//   - Per-file ingestion logs and the run summary
//
// ARCHIVAL STRATEGY:
//   - Inputs are moved to input_archive only after they parsed successfully
//   - Failed inputs stay where they are so they can be fixed and resubmitted
//   - Nothing is archived when input_archive_dir is empty
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations around a run.
type FileManager struct {
	// InputDir is scanned for exports.
	InputDir string

	// OutputDir receives datasets and logs.
	OutputDir string

	// InputArchiveDir receives parsed exports. Empty disables archival.
	InputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: input_archive/2024/01/15/export.xlsx
	UseTimestampSubdirs bool
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:        inputDir,
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output and archive directories if they don't
// exist. The input directory is never created.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.OutputDir, fm.InputArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles scans the input directory for files matching any of
// the patterns.
//
// PARAMETERS:
//   - patterns: Glob patterns such as "*.xlsx". Matching is case-insensitive
//               on the file name so that "REPORT.XLSX" matches "*.xlsx".
//
// RETURNS:
//   - The matching file paths, sorted and without duplicates.
//   - An error if the directory cannot be read or a pattern is malformed.
func (fm *FileManager) DiscoverInputFiles(patterns []string) ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := strings.ToLower(entry.Name())
		for _, pattern := range patterns {
			ok, err := filepath.Match(strings.ToLower(pattern), name)
			if err != nil {
				return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
			}
			if ok {
				files = append(files, filepath.Join(fm.InputDir, entry.Name()))
				break
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves a parsed input into the archive directory.
//
// RETURNS:
//   - The archived path, or filePath unchanged when archival is disabled.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if fm.InputArchiveDir == "" {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(fm.InputArchiveDir, filePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// If rename fails (e.g., cross-device), try copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// getArchivePath constructs the archive path for a file.
func (fm *FileManager) getArchivePath(archiveDir, filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := time.Now()
		return filepath.Join(
			archiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}

	return filepath.Join(archiveDir, fileName)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName builds the dataset file name for an input.
//
// EXAMPLE:
//   input: "exports/March Sales.xlsx", id: "3f2a9c1e-...", ext: "json"
//   output: "March_Sales_3f2a9c1e.json"
func GenerateOutputFileName(inputPath, datasetID, ext string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	base = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, base)
	if base == "" {
		base = "dataset"
	}

	id := strings.ReplaceAll(datasetID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}

	return fmt.Sprintf("%s_%s.%s", base, id, strings.TrimPrefix(ext, "."))
}

// =============================================================================
// INGESTION LOG
// =============================================================================

// IngestionLogEntry is the log content for one parsed file.
type IngestionLogEntry struct {
	// File is the input file name.
	File string

	// OutputFile is the written dataset, if any.
	OutputFile string

	// ReportLines are the rendered ingestion report lines.
	ReportLines []string

	// Issues are the rendered validation issues.
	Issues []string
}

// WriteIngestionLog writes the ingestion log of one file next to its dataset.
//
// RETURNS:
//   - The path to the log file.
//   - An error if writing fails.
func WriteIngestionLog(entry IngestionLogEntry, outputDir string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(entry.File), filepath.Ext(entry.File))
	if entry.OutputFile != "" {
		base = strings.TrimSuffix(filepath.Base(entry.OutputFile), filepath.Ext(entry.OutputFile))
	}
	logPath := filepath.Join(outputDir, base+"_ingestion.txt")

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create ingestion log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "UltiSales Ingest - Ingestion Log\n"+
		"Generated: %s\n"+
		"================================================================================\n\n",
		time.Now().Format("2006-01-02 15:04:05"))

	writer.WriteString("Report:\n")
	for _, line := range entry.ReportLines {
		fmt.Fprintf(writer, "  %s\n", line)
	}
	if entry.OutputFile != "" {
		fmt.Fprintf(writer, "  Output: %s\n", entry.OutputFile)
	}

	fmt.Fprintf(writer, "\nIssues (%d):\n", len(entry.Issues))
	if len(entry.Issues) == 0 {
		writer.WriteString("  none\n")
	}
	for i, issue := range entry.Issues {
		fmt.Fprintf(writer, "  %d. %s\n", i+1, issue)
	}

	writer.WriteString("\n================================================================================\n" +
		"End of Ingestion Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush ingestion log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	StartTime         time.Time
	EndTime           time.Time
	Policy            string
	Committed         bool
	TotalFiles        int
	SuccessfulFiles   int
	FailedFiles       int
	TotalRecords      int
	NoiseLinesSkipped int
	Warnings          int
	ProcessedFiles    []ProcessedFileInfo
	FailedFilesList   []FailedFileInfo
}

// ProcessedFileInfo contains information about a successfully parsed file.
type ProcessedFileInfo struct {
	InputFile   string
	OutputFile  string
	ArchivePath string
	Records     int
	HeaderRow   int
	ProcessTime time.Duration
}

// FailedFileInfo contains information about a failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
	Stage        string
}

// WriteSummaryLog writes a processing summary to a log file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	timestamp := summary.EndTime.Format("20060102_150405")
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("processing_summary_%s.txt", timestamp))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := FormatSummary(writer, summary); err != nil {
		return "", err
	}
	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// FormatSummary renders the summary text to w.
func FormatSummary(w io.Writer, summary ProcessingSummary) error {
	committed := "yes"
	if !summary.Committed {
		committed = "no"
	}

	_, err := fmt.Fprintf(w, "UltiSales Ingest - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Batch Policy:   %s\n"+
		"  Committed:      %s\n\n"+
		"Statistics:\n"+
		"  Total Files:        %d\n"+
		"  Successful:         %d\n"+
		"  Failed:             %d\n"+
		"  Total Records:      %d\n"+
		"  Noise Rows Skipped: %d\n"+
		"  Warnings:           %d\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.Policy,
		committed,
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.TotalRecords,
		summary.NoiseLinesSkipped,
		summary.Warnings)
	if err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if len(summary.ProcessedFiles) > 0 {
		fmt.Fprint(w, "Successful Files:\n")
		fmt.Fprint(w, "--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(w, "  Input:        %s\n", pf.InputFile)
			if pf.OutputFile != "" {
				fmt.Fprintf(w, "  Output:       %s\n", pf.OutputFile)
			}
			if pf.ArchivePath != "" {
				fmt.Fprintf(w, "  Archived:     %s\n", pf.ArchivePath)
			}
			fmt.Fprintf(w, "  Records:      %d\n", pf.Records)
			fmt.Fprintf(w, "  Header Row:   %d\n", pf.HeaderRow+1)
			fmt.Fprintf(w, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		fmt.Fprint(w, "Failed Files:\n")
		fmt.Fprint(w, "--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(w, "  File:  %s\n", ff.InputFile)
			if ff.Stage != "" {
				fmt.Fprintf(w, "  Stage: %s\n", ff.Stage)
			}
			fmt.Fprintf(w, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	_, err = fmt.Fprint(w, "================================================================================\n"+
		"End of Summary\n")
	return err
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

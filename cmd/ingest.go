// =============================================================================
// UltiSales Ingest - Ingest Command
// =============================================================================
//
// This file defines the 'ingest' command, the main command of the tool. It
// runs the whole pipeline for one batch of exports.
//
// COMMAND USAGE:
//   ultisales ingest [files...] [flags]
//
// FLAGS:
//   --dry-run : Parse and report without writing or archiving anything
//   --format  : Override output_format (json | xml)
//   --policy  : Override batch_policy (collect | abort)
//   --context : Print the analysis data context as JSON on stdout
//   --strict  : Fail files whose validation reports a warning
//
// PROCESSING PIPELINE:
//   1. Resolve the inputs (arguments, or a scan of input_dir)
//   2. Submit the batch to a session; files are parsed concurrently
//   3. Write one dataset and one ingestion log per parsed file
//   4. Archive inputs whose outputs were written (when input_archive_dir
//      is set); a file whose outputs fail to write stays in place and
//      counts as failed
//   5. Write the processing summary
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/ultisales-ingest/internal/analysis"
	"github.com/ginjaninja78/ultisales-ingest/internal/converter"
	"github.com/ginjaninja78/ultisales-ingest/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	dryRun       bool
	formatFlag   string
	policyFlag   string
	printContext bool
	strictMode   bool
)

// =============================================================================
// INGEST COMMAND DEFINITION
// =============================================================================

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Normalize UltiSales exports into clean datasets",
	Long: `The ingest command reads UltiSales exports (xlsx, xlsm, xls, csv, tsv, txt),
locates the real header row below the report banner, translates the legacy
column codes and writes one normalized dataset per file.

Without arguments every file in input_dir matching file_patterns is ingested.

Files are parsed concurrently. With the collect policy (default) failed files
are reported and the others are kept; the command fails only when every file
failed. With the abort policy the first failure discards the whole batch.

On success:
  - The dataset is written to the output directory (json or xml)
  - An ingestion log describing skipped rows and mapped columns is written
  - The input is moved to input_archive_dir, if configured
  - A processing summary is written for the run`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd.Context(), cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Parse and report without writing output files or archiving inputs",
	)

	ingestCmd.Flags().StringVar(
		&formatFlag,
		"format",
		"",
		"Output format: json or xml (overrides output_format)",
	)

	ingestCmd.Flags().StringVar(
		&policyFlag,
		"policy",
		"",
		"Batch policy: collect or abort (overrides batch_policy)",
	)

	ingestCmd.Flags().BoolVar(
		&printContext,
		"context",
		false,
		"Print the analysis data context as JSON on stdout",
	)

	ingestCmd.Flags().BoolVar(
		&strictMode,
		"strict",
		false,
		"Fail files whose validation reports a warning (overrides strict)",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runIngest(ctx context.Context, cmd *cobra.Command, args []string) error {
	startTime := time.Now()

	// Progress goes to stderr when stdout carries the context JSON.
	out := cmd.OutOrStdout()
	if printContext {
		out = cmd.ErrOrStderr()
	}

	// =========================================================================
	// STEP 1: APPLY OVERRIDES
	// =========================================================================

	if formatFlag != "" {
		mainConfig.OutputFormat = formatFlag
	}
	if policyFlag != "" {
		mainConfig.BatchPolicy = policyFlag
	}
	if strictMode {
		mainConfig.Strict = true
	}
	if err := mainConfig.Validate(); err != nil {
		return err
	}

	fmt.Fprintln(out, "=== UltiSales Ingest ===")

	// =========================================================================
	// STEP 2: RESOLVE INPUTS
	// =========================================================================

	fm := utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir, mainConfig.InputArchiveDir)
	fm.UseTimestampSubdirs = mainConfig.ArchiveTimestampSubdirs

	paths := args
	if len(paths) == 0 {
		fmt.Fprintf(out, "Scanning %s...\n", mainConfig.InputDir)
		discovered, err := fm.DiscoverInputFiles(mainConfig.FilePatterns)
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
		paths = discovered
	}

	if len(paths) == 0 {
		fmt.Fprintln(out, "No exports found.")
		return nil
	}

	inputs := make([]converter.Input, len(paths))
	for i, p := range paths {
		inputs[i] = converter.Input{Path: p}
	}

	fmt.Fprintf(out, "Ingesting %d file(s) with the %s policy...\n", len(inputs), mainConfig.BatchPolicy)

	// =========================================================================
	// STEP 3: PARSE THE BATCH
	// =========================================================================

	conv := converter.New(mainConfig, logger)
	session := converter.NewSession(conv, mainConfig.BatchPolicy, mainConfig.MaxConcurrency)

	batch, batchErr := session.Submit(ctx, inputs)

	summary := utils.ProcessingSummary{
		StartTime:  startTime,
		Policy:     mainConfig.BatchPolicy,
		Committed:  batch.Committed,
		TotalFiles: len(inputs),
	}

	if !dryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 4: WRITE OUTPUTS AND REPORT
	// =========================================================================

	var writeErrs []error
	for i := range batch.Results {
		result := &batch.Results[i]
		if !result.Success {
			recordFailure(out, &summary, result.FilePath, result.Error)
			continue
		}

		// An aborted batch commits nothing, so its parsed files are not
		// written either.
		if !batch.Committed {
			continue
		}

		info := utils.ProcessedFileInfo{
			InputFile:   result.FilePath,
			Records:     result.Dataset.RowCount,
			HeaderRow:   result.Report.HeaderRowIndex,
			ProcessTime: result.Stats.ProcessingTime,
		}

		if !dryRun {
			written, err := finishFile(conv, fm, result, mainConfig.OutputFormat)
			if err != nil {
				logger.Error("failed to write outputs", "file", result.FilePath, "err", err)
				recordFailure(out, &summary, result.FilePath, err)
				writeErrs = append(writeErrs, err)
				continue
			}
			info.OutputFile = written.OutputFile
			info.ArchivePath = written.ArchivePath
		}

		printReport(out, result, info.OutputFile)

		summary.SuccessfulFiles++
		summary.TotalRecords += result.Dataset.RowCount
		summary.NoiseLinesSkipped += result.Report.NoiseLinesSkipped
		summary.Warnings += result.Stats.Warnings
		summary.ProcessedFiles = append(summary.ProcessedFiles, info)
	}

	// =========================================================================
	// STEP 5: SUMMARY
	// =========================================================================

	summary.EndTime = time.Now()

	fmt.Fprintln(out, "\n=== Ingestion Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Parsed:          %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Failed:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Records:         %d\n", summary.TotalRecords)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(startTime))

	if !dryRun {
		summaryPath, err := utils.WriteSummaryLog(summary, mainConfig.OutputDir)
		if err != nil {
			logger.Error("failed to write summary", "err", err)
		} else {
			fmt.Fprintf(out, "Summary:         %s\n", summaryPath)
		}
	}

	if batchErr != nil {
		return batchErr
	}
	if len(writeErrs) > 0 {
		return fmt.Errorf("failed to write outputs of %d file(s): %w", len(writeErrs), errors.Join(writeErrs...))
	}

	if printContext {
		dataContext, err := analysis.BuildContext(session.Datasets(), mainConfig.SampleSize)
		if err != nil {
			return err
		}
		data, err := dataContext.JSON()
		if err != nil {
			return fmt.Errorf("failed to encode data context: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// printReport prints the ingestion report lines of one file.
func printReport(out io.Writer, result *converter.Result, outputPath string) {
	lines := result.Report.Lines()
	fmt.Fprintf(out, "  ✓ %s\n", lines[0])
	for _, line := range lines[1:] {
		fmt.Fprintf(out, "      %s\n", line)
	}
	for _, issue := range result.Issues {
		fmt.Fprintf(out, "      ! %s\n", issue.Error())
	}
	if outputPath != "" {
		fmt.Fprintf(out, "      -> %s\n", filepath.Base(outputPath))
	}
}

// finishFile writes the dataset and the ingestion log of a parsed file and
// then archives its input. Nothing is archived unless both outputs were
// written.
//
// RETURNS:
//   - The written output and archive paths (ArchivePath is empty when
//     archival is disabled).
//   - A *converter.FileError with stage "write" if an output failed.
func finishFile(conv *converter.Converter, fm *utils.FileManager, result *converter.Result, format string) (utils.ProcessedFileInfo, error) {
	var info utils.ProcessedFileInfo

	outputPath, err := conv.WriteOutput(result, fm.OutputDir, format)
	if err != nil {
		return info, err
	}
	info.OutputFile = outputPath

	if _, err := utils.WriteIngestionLog(utils.IngestionLogEntry{
		File:        result.FilePath,
		OutputFile:  outputPath,
		ReportLines: result.Report.Lines(),
		Issues:      issueLines(result),
	}, fm.OutputDir); err != nil {
		return info, &converter.FileError{File: result.FilePath, Stage: converter.StageWrite, Err: err}
	}

	archivePath, err := fm.ArchiveInputFile(result.FilePath)
	if err != nil {
		// The outputs exist; the input stays where it is.
		logger.Warn("failed to archive input", "file", result.FilePath, "err", err)
		return info, nil
	}
	if archivePath != result.FilePath {
		info.ArchivePath = archivePath
	}
	return info, nil
}

// recordFailure prints a failed file and adds it to the summary.
func recordFailure(out io.Writer, summary *utils.ProcessingSummary, path string, err error) {
	failed := utils.FailedFileInfo{
		InputFile:    path,
		ErrorMessage: err.Error(),
	}
	var fileErr *converter.FileError
	if errors.As(err, &fileErr) {
		failed.Stage = fileErr.Stage
		failed.ErrorMessage = fileErr.Err.Error()
	}

	fmt.Fprintf(out, "  ✗ %s: %s\n", filepath.Base(path), failed.ErrorMessage)

	summary.FailedFiles++
	summary.FailedFilesList = append(summary.FailedFilesList, failed)
}

func issueLines(result *converter.Result) []string {
	lines := make([]string, len(result.Issues))
	for i, issue := range result.Issues {
		lines[i] = issue.Error()
	}
	return lines
}

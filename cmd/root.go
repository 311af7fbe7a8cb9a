// =============================================================================
// UltiSales Ingest - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (ultisales)
//   ├── ingestCmd  (ultisales ingest [files...])
//   ├── codesCmd   (ultisales codes)
//   ├── schemaCmd  (ultisales schema)
//   └── versionCmd (ultisales version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads the main configuration (--config, defaults when missing)
//   2. Creates the logger (--verbose wins over log_level)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/ultisales-ingest/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// mainConfig and logger are set by the root command before a subcommand runs.
var (
	mainConfig *config.MainConfig
	logger     *log.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "ultisales",
	Short: "UltiSales Ingest - Normalize legacy UltiSales POS exports",
	Long: `UltiSales Ingest reads spreadsheet exports from the legacy UltiSales
point-of-sale system and turns them into clean, analyzable datasets.

Exports carry report banners, blank lines, abbreviated column codes
(ITM_CDE, QTY_SLD, ...) and repeated header blocks. The ingest command finds
the real header row, translates the codes, drops the noise and writes one
normalized dataset plus an ingestion report per file.

Example Usage:
  ultisales ingest                       # Ingest every export in the input directory
  ultisales ingest march.xlsx april.csv  # Ingest specific files
  ultisales ingest --context q1/*.xlsx   # Print the analysis data context
  ultisales codes                        # List the legacy column codes`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initRuntime()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// initRuntime loads the configuration and builds the logger.
func initRuntime() error {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	if verbose {
		level = log.DebugLevel
	}

	mainConfig = cfg
	logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "ultisales",
	})
	return nil
}

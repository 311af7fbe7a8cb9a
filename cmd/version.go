// =============================================================================
// UltiSales Ingest - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   ultisales version
//
// OUTPUT:
//   UltiSales Ingest
//   Version:    1.0.0
//   Build Date: 2024-01-01
//   Go Version: go1.24.0
//   Codes:      14
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/ultisales-ingest/internal/dictionary"
)

// Set at build time:
//   go build -ldflags "-X 'github.com/ginjaninja78/ultisales-ingest/cmd.Version=1.0.0'"
var (
	Version   = "1.0.0"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, Go runtime version and the size of the built-in code dictionary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("UltiSales Ingest")
		fmt.Printf("Version:    %s\n", Version)
		fmt.Printf("Build Date: %s\n", BuildDate)
		fmt.Printf("Go Version: %s\n", runtime.Version())
		fmt.Printf("Codes:      %d\n", dictionary.Default().Len())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/ultisales-ingest/internal/dictionary"
)

// codesCmd lists the built-in legacy column codes.
var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "List the legacy UltiSales column codes",
	Long: `List every legacy column code the ingest command recognises and the
canonical field name it is translated to. A row containing at least two of
these codes is treated as a header row. Unknown codes keep their label.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-10s %s\n", "CODE", "FIELD")
		for _, entry := range dictionary.Default().Entries() {
			fmt.Fprintf(out, "%-10s %s\n", entry.Code, entry.Canonical)
		}
	},
}

func init() {
	rootCmd.AddCommand(codesCmd)
}

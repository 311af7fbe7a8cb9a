package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/ultisales-ingest/internal/analysis"
)

// schemaCmd prints the JSON schema of the data context printed by
// `ingest --context`.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the analysis data context",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(analysis.Schema(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode schema: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

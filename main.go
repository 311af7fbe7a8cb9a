// =============================================================================
// UltiSales Ingest - Main Entry Point
// =============================================================================
//
// USAGE:
//   ultisales ingest [files...] - Normalize exports into datasets
//   ultisales codes             - List the legacy column codes
//   ultisales schema            - Print the analysis context JSON schema
//   ultisales version           - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : loaders, ingestion engine, validation, writers
//   - pkg/       : shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/ultisales-ingest/cmd"
)

func main() {
	cmd.Execute()
}

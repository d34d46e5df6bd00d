// =============================================================================
// Sales Dashboard - Main Entry Point
// =============================================================================
//
// USAGE:
//   salesdash report    - Print or write every view of a sales spreadsheet
//   salesdash validate  - Check a spreadsheet for the required columns
//   salesdash serve     - Serve the views over HTTP
//   salesdash version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core logic (loaders, validation, normalization,
//                      aggregation, report writers, HTTP API)
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sales-dashboard/cmd"
)

func main() {
	cmd.Execute()
}

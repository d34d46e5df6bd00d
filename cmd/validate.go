// =============================================================================
// Sales Dashboard - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which loads a spreadsheet and
// checks the required columns without normalizing or aggregating anything.
//
// COMMAND USAGE:
//   salesdash validate --file sales.xlsx [--format csv]
//
// EXIT STATUS:
//   Non-zero when the file is unreadable or columns are missing.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-dashboard/internal/pipeline"
	"github.com/ginjaninja78/sales-dashboard/internal/types"
)

var (
	validateFile   string
	validateFormat string
)

// validateCmd loads a spreadsheet and checks the required columns without
// interpreting any row.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that a spreadsheet is readable and has the required columns",
	RunE: func(cmd *cobra.Command, args []string) error {
		src, file, err := openSource(validateFile, validateFormat)
		if err != nil {
			return err
		}
		defer file.Close()

		err = pipeline.Check(src, pipelineOptions(mainConfig))
		var schemaErr *types.SchemaError
		if errors.As(err, &schemaErr) {
			fmt.Fprintf(cmd.OutOrStdout(), "Missing required columns: %s\n", strings.Join(schemaErr.Missing, ", "))
			return err
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "OK: %s has every required column\n", validateFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "Spreadsheet to check (.xlsx or .csv)")
	validateCmd.Flags().StringVar(&validateFormat, "format", "", "Loader format: xlsx or csv (default: from the file extension)")
	validateCmd.MarkFlagRequired("file")
}

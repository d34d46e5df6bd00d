// =============================================================================
// Sales Dashboard - Report Command
// =============================================================================
//
// This file defines the 'report' command, which runs the whole pipeline on
// one spreadsheet and renders every view.
//
// COMMAND USAGE:
//   salesdash report --file sales.xlsx [flags]
//
// FLAGS:
//   --file        : Spreadsheet to read (required)
//   --format      : Loader format, xlsx or csv (default: from the extension)
//   --search      : Product search term
//   --date        : Day for the product breakdown, YYYY-MM-DD
//                   (default: the earliest date in the file)
//   --out         : table, json, xml or xlsx (default: table)
//   --output-dir  : Write the report to a file in this directory
//
// OUTPUT:
//   table, json and xml go to stdout unless --output-dir is given. xlsx is
//   always written to a file (output_dir from the configuration by default).
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-dashboard/internal/aggregate"
	"github.com/ginjaninja78/sales-dashboard/internal/logger"
	"github.com/ginjaninja78/sales-dashboard/internal/pipeline"
	"github.com/ginjaninja78/sales-dashboard/internal/reportwriter"
	"github.com/ginjaninja78/sales-dashboard/internal/types"
	"github.com/ginjaninja78/sales-dashboard/pkg/utils"
)

// reportDateLayout is the form of the --date flag.
const reportDateLayout = "2006-01-02"

// reportOptions holds the report command flags.
type reportOptions struct {
	file      string
	format    string
	search    string
	date      string
	out       string
	outputDir string
}

var reportOpts reportOptions

// reportCmd represents the 'report' command.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute and print every view of a sales spreadsheet",
	Long: `The report command loads a sales spreadsheet, checks the required columns,
drops rows whose Date cannot be read, and renders the dashboard views:
product search, customer totals, daily totals, the daily product breakdown
and the product ranking.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, reportOpts)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportOpts.file, "file", "f", "", "Spreadsheet to read (.xlsx or .csv)")
	reportCmd.Flags().StringVar(&reportOpts.format, "format", "", "Loader format: xlsx or csv (default: from the file extension)")
	reportCmd.Flags().StringVarP(&reportOpts.search, "search", "s", "", "Product search term (case-insensitive substring)")
	reportCmd.Flags().StringVarP(&reportOpts.date, "date", "d", "", "Day for the product breakdown, YYYY-MM-DD (default: earliest date)")
	reportCmd.Flags().StringVarP(&reportOpts.out, "out", "o", string(reportwriter.FormatTable), "Output format: table, json, xml or xlsx")
	reportCmd.Flags().StringVar(&reportOpts.outputDir, "output-dir", "", "Write the report to a file in this directory")

	reportCmd.MarkFlagRequired("file")
}

// runReport orchestrates load, views and rendering for one file.
func runReport(cmd *cobra.Command, opts reportOptions) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)

	// =========================================================================
	// STEP 1: CHECK FLAGS
	// =========================================================================

	outFormat, err := reportwriter.ParseFormat(opts.out)
	if err != nil {
		return err
	}

	var day *time.Time
	if opts.date != "" {
		d, err := time.Parse(reportDateLayout, strings.TrimSpace(opts.date))
		if err != nil {
			return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", opts.date)
		}
		day = &d
	}

	// =========================================================================
	// STEP 2: RUN THE PIPELINE
	// =========================================================================

	src, file, err := openSource(opts.file, opts.format)
	if err != nil {
		return err
	}
	defer file.Close()

	result, err := pipeline.Run(ctx, src, pipelineOptions(mainConfig))
	if err != nil {
		return err
	}
	reportDiagnostics(cmd.ErrOrStderr(), result.Dataset.Diagnostics)

	// =========================================================================
	// STEP 3: COMPUTE THE VIEWS
	// =========================================================================

	views, err := aggregate.ComputeViews(ctx, result.Dataset, aggregate.Query{
		Search: opts.search,
		Date:   day,
	})
	if err != nil {
		return fmt.Errorf("failed to compute views: %w", err)
	}

	// =========================================================================
	// STEP 4: RENDER
	// =========================================================================

	outputDir := opts.outputDir
	if outputDir == "" && outFormat == reportwriter.FormatXLSX {
		outputDir = mainConfig.OutputDir
	}
	if outputDir == "" {
		return reportwriter.Write(cmd.OutOrStdout(), views, outFormat)
	}

	fm := utils.NewFileManager(outputDir, mainConfig.OutputNameFormat)
	path, err := fm.WriteReport(src.Name, outFormat.Extension(), func(w io.Writer) error {
		return reportwriter.Write(w, views, outFormat)
	})
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	log.Info().Str("path", path).Str("format", string(outFormat)).Msg("report written")
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// reportDiagnostics tells the user which rows did not make it into the
// dataset.
func reportDiagnostics(w io.Writer, diag types.Diagnostics) {
	if diag.DroppedRows > 0 {
		rows := make([]string, 0, len(diag.DroppedRowNumbers))
		for _, n := range diag.DroppedRowNumbers {
			rows = append(rows, fmt.Sprint(n))
		}
		fmt.Fprintf(w, "Dropped %d row(s) with an unreadable Date: row %s\n",
			diag.DroppedRows, strings.Join(rows, ", "))
	}
	if diag.InvalidNumbers > 0 {
		fmt.Fprintf(w, "%d empty or non-numeric Quantity/Total_Price cell(s) counted as 0\n", diag.InvalidNumbers)
	}
}

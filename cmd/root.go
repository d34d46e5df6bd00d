// =============================================================================
// Sales Dashboard - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (salesdash)
//   ├── reportCmd   (salesdash report)
//   ├── validateCmd (salesdash validate)
//   ├── serveCmd    (salesdash serve)
//   └── versionCmd  (salesdash version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads the configuration file (--config, optional)
//   2. Sets up the zerolog logger (--verbose forces debug level)
//   3. Attaches the logger to the command context
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-dashboard/internal/config"
	"github.com/ginjaninja78/sales-dashboard/internal/logger"
	"github.com/ginjaninja78/sales-dashboard/internal/pipeline"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// mainConfig is the configuration loaded before a subcommand runs.
var mainConfig = config.Default()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "salesdash",
	Short: "Sales Dashboard - Summaries of a pharmacy sales spreadsheet",
	Long: `Sales Dashboard ingests a sales spreadsheet (Product, Quantity, Customer,
Total_Price, Date, Payment_Method) and derives the dashboard views from it:

  - Product search
  - Customer totals
  - Daily totals
  - Daily product breakdown
  - Product ranking

Rows whose Date cannot be read are dropped and reported.

Example Usage:
  salesdash report --file sales.xlsx                 # Print every view
  salesdash report --file sales.xlsx --out xlsx      # Write a workbook report
  salesdash validate --file sales.csv                # Check the required columns
  salesdash serve --addr :8080                       # Start the HTTP API`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadMainConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load main config: %w", err)
		}
		mainConfig = cfg

		log := newLogger(cfg, cfg.LogFormat)
		cmd.SetContext(logger.WithContext(cmd.Context(), log))
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and runs it. It is
// called by main.main(). Interrupts cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
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
		config.DefaultPath,
		"Path to the main configuration file (optional)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// newLogger builds the process logger from the configuration.
func newLogger(cfg *config.MainConfig, format string) zerolog.Logger {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return logger.NewWithConfig(level, format, os.Stderr)
}

// pipelineOptions maps the configuration onto the ingestion options.
func pipelineOptions(cfg *config.MainConfig) pipeline.Options {
	return pipeline.Options{
		DateLayouts:  cfg.DateLayouts,
		CSVDelimiter: cfg.CSVDelimiter,
	}
}

// openSource opens path as a pipeline source. format overrides the
// extension when set.
func openSource(path, format string) (pipeline.Source, *os.File, error) {
	src := pipeline.Source{Name: path}
	if format != "" {
		f, err := pipeline.ParseFormat(format)
		if err != nil {
			return src, nil, err
		}
		src.Format = f
	}

	file, err := os.Open(path)
	if err != nil {
		return src, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	src.Reader = file
	return src, file, nil
}

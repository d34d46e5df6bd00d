// =============================================================================
// Sales Dashboard - Pipeline
// =============================================================================
//
// This module orchestrates the ingestion pipeline for one uploaded file.
//
// PIPELINE:
//   1. Load the byte stream into a raw table (XLSX or CSV loader)
//   2. Validate the required columns
//   3. Normalize the Date column and map rows into records
//
// ERROR HANDLING:
//   - *types.ParseError and *types.SchemaError abort the pipeline immediately;
//     they are wrapped, so errors.As still finds them
//   - Rows with an unparseable date are dropped and only reported through
//     the Dataset diagnostics and a warning log line
//
// The resulting Dataset is read-only; views are computed from it on demand
// (see package aggregate).
//
// =============================================================================

package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/sales-dashboard/internal/csvparser"
	"github.com/ginjaninja78/sales-dashboard/internal/logger"
	"github.com/ginjaninja78/sales-dashboard/internal/normalizer"
	"github.com/ginjaninja78/sales-dashboard/internal/types"
	"github.com/ginjaninja78/sales-dashboard/internal/validation"
	"github.com/ginjaninja78/sales-dashboard/internal/xlsxparser"
)

// =============================================================================
// SOURCE
// =============================================================================

// Format identifies the loader used for a source.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatFromName picks the loader format from a file name extension.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// ParseFormat validates a format name given on the command line.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, s)
	}
}

// Source is one uploaded file.
type Source struct {
	// Name is the uploaded file name.
	Name string

	// Format selects the loader. Empty means FormatFromName(Name).
	Format Format

	// Reader is the byte stream.
	Reader io.Reader
}

// Options controls loading and normalization.
type Options struct {
	// DateLayouts are extra layouts accepted for the Date column.
	DateLayouts []string

	// CSVDelimiter is the field separator for CSV sources.
	CSVDelimiter string

	// Sheet selects an XLSX sheet by name. Empty means the first sheet.
	Sheet string
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result is the outcome of running the pipeline on one source.
type Result struct {
	// Dataset is the validated, normalized dataset.
	Dataset *types.Dataset

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about one run.
type ProcessingStats struct {
	// RowsRead is the number of data rows in the source.
	RowsRead int

	// RowsKept is the number of records in the Dataset.
	RowsKept int

	// RowsDropped is the number of rows removed for an unparseable date.
	RowsDropped int

	// ProcessingTime is the time taken by the whole pipeline.
	ProcessingTime time.Duration
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes Loader → Validator → Normalizer for src.
//
// PARAMETERS:
//   - ctx: Carries the logger (see logger.WithContext) and cancellation.
//   - src: The uploaded file.
//   - opts: Loading and normalization options.
//
// RETURNS:
//   - A Result holding the Dataset.
//   - An error wrapping *types.ParseError or *types.SchemaError on failure.
func Run(ctx context.Context, src Source, opts Options) (*Result, error) {
	startTime := time.Now()
	fields := map[string]interface{}{"source": src.Name}
	if format, err := src.resolveFormat(); err == nil {
		fields["format"] = string(format)
	}
	log := logger.WithFields(logger.FromContext(ctx), fields)

	// =========================================================================
	// STEP 1: LOAD
	// =========================================================================

	table, err := Load(src, opts)
	if err != nil {
		log.Error().Err(err).Msg("failed to load spreadsheet")
		return nil, fmt.Errorf("load: %w", err)
	}
	log.Debug().Int("rows", len(table.Rows)).Strs("columns", table.Headers).Msg("loaded spreadsheet")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 2: VALIDATE
	// =========================================================================

	if err := validation.Validate(table); err != nil {
		log.Error().Err(err).Msg("schema validation failed")
		return nil, fmt.Errorf("validate: %w", err)
	}

	// =========================================================================
	// STEP 3: NORMALIZE
	// =========================================================================

	ds, err := normalizer.Normalize(table, normalizer.Options{DateLayouts: opts.DateLayouts})
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	if ds.Diagnostics.DroppedRows > 0 {
		log.Warn().
			Int("dropped_rows", ds.Diagnostics.DroppedRows).
			Ints("row_numbers", ds.Diagnostics.DroppedRowNumbers).
			Msg("rows with unparseable dates were dropped")
	}
	if ds.Diagnostics.InvalidNumbers > 0 {
		log.Warn().
			Int("invalid_numbers", ds.Diagnostics.InvalidNumbers).
			Msg("empty or non-numeric quantities/prices were taken as zero")
	}

	result := &Result{
		Dataset: ds,
		Stats: ProcessingStats{
			RowsRead:       ds.Diagnostics.TotalRows,
			RowsKept:       ds.Len(),
			RowsDropped:    ds.Diagnostics.DroppedRows,
			ProcessingTime: time.Since(startTime),
		},
	}

	log.Info().
		Int("rows", result.Stats.RowsRead).
		Int("records", result.Stats.RowsKept).
		Dur("duration", result.Stats.ProcessingTime).
		Msg("dataset ready")

	return result, nil
}

// resolveFormat returns the explicit format or the one implied by Name.
func (s Source) resolveFormat() (Format, error) {
	if s.Format != "" {
		return s.Format, nil
	}
	return FormatFromName(s.Name)
}

// Load runs only the loader for src.
func Load(src Source, opts Options) (*types.Table, error) {
	format, err := src.resolveFormat()
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatXLSX:
		return xlsxparser.Load(src.Reader, xlsxparser.Options{SourceName: src.Name, Sheet: opts.Sheet})
	case FormatCSV:
		return csvparser.Load(src.Reader, csvparser.Options{SourceName: src.Name, Delimiter: opts.CSVDelimiter})
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, format)
	}
}

// Check runs the loader and the schema validator only. It returns nil when
// the source is readable and carries every required column.
func Check(src Source, opts Options) error {
	table, err := Load(src, opts)
	if err != nil {
		return err
	}
	return validation.Validate(table)
}

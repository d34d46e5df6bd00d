// =============================================================================
// Sales Dashboard - CSV Loader
// =============================================================================
//
// This module reads a sales export saved as CSV into the same raw Table the
// XLSX loader produces, so the rest of the pipeline does not care which
// format was uploaded.
//
// FEATURES:
//   - Configurable delimiter (comma, semicolon, pipe, tab)
//   - First row is the header row, kept verbatim (a UTF-8 BOM is removed)
//   - Rows with a different number of fields are padded or truncated
//
// ERROR HANDLING:
//   A malformed stream is returned as *types.ParseError. The format is chosen
//   by the caller, never sniffed, so a corrupt XLSX is not read as CSV.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	"github.com/ginjaninja78/sales-dashboard/internal/types"
)

// utf8BOM is prepended to the first header by some spreadsheet exports.
const utf8BOM = "\ufeff"

// =============================================================================
// LOADER OPTIONS
// =============================================================================

// Options controls how a CSV stream is read.
type Options struct {
	// SourceName is the name of the uploaded file, used in errors and logs.
	SourceName string

	// Delimiter is the field separator.
	// Common values: "," (comma), ";" (semicolon), "|" (pipe), "\t" or "tab"
	// Default: ","
	Delimiter string
}

// =============================================================================
// LOADER FUNCTIONS
// =============================================================================

// Load reads a CSV byte stream and returns the raw table.
//
// PARAMETERS:
//   - r: The uploaded byte stream.
//   - opts: Loader options.
//
// RETURNS:
//   - A pointer to the Table with headers and padded data rows.
//   - A *types.ParseError if the stream is not valid CSV.
func Load(r io.Reader, opts Options) (*types.Table, error) {
	csvReader := csv.NewReader(bufio.NewReader(r))
	configureReader(csvReader, opts.Delimiter)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, &types.ParseError{Source: opts.SourceName, Err: err}
	}

	table := &types.Table{
		SourceName: opts.SourceName,
		Headers:    []string{},
		Rows:       [][]string{},
	}

	if len(allRows) == 0 {
		return table, nil
	}

	headers := allRows[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	}
	table.Headers = headers
	table.Rows = extractDataRows(allRows[1:], len(headers))

	return table, nil
}

// configureReader configures the CSV reader for the given delimiter.
func configureReader(reader *csv.Reader, delimiter string) {
	switch delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(delimiter) > 0 {
			reader.Comma = rune(delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Allow variable number of fields per row; rows are normalized to the
	// header width afterwards.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// extractDataRows normalizes every data row to width cells.
// Rows that are entirely empty at the end of the file are dropped.
func extractDataRows(rows [][]string, width int) [][]string {
	end := len(rows)
	for end > 0 && isRowEmpty(rows[end-1]) {
		end--
	}

	dataRows := make([][]string, 0, end)
	for _, row := range rows[:end] {
		padded := make([]string, width)
		copy(padded, row)
		dataRows = append(dataRows, padded)
	}
	return dataRows
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

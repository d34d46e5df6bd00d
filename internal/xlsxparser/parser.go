// =============================================================================
// Sales Dashboard - XLSX Loader
// =============================================================================
//
// This module is responsible for reading an uploaded spreadsheet byte stream
// into a raw Table. It applies default spreadsheet parsing only:
//   - The first sheet of the workbook is read
//   - The first row is the header row
//   - Every following row is a data row
//
// CELL VALUES:
//   Cells are read with RawCellValue enabled. Date cells therefore arrive as
//   spreadsheet serial numbers (e.g. "45292") and numeric cells arrive without
//   number formatting (no thousands separators, no currency symbols). Cells
//   stored as numbers are flagged in Table.NumericCells so the normalizer
//   only reads those as serial dates.
//
// ERROR HANDLING:
//   Any failure to open or read the workbook is returned as *types.ParseError
//   carrying the underlying cause. No partial table is ever returned.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"io"
	"strings"

	"github.com/ginjaninja78/sales-dashboard/internal/types"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// LOADER OPTIONS
// =============================================================================

// Options controls how a workbook is read.
type Options struct {
	// SourceName is the name of the uploaded file, used in errors and logs.
	SourceName string

	// Sheet selects a sheet by name. Empty means the first sheet.
	Sheet string

	// Password opens an encrypted workbook.
	Password string
}

// errNoSheets is the cause reported for a workbook without any sheet.
var errNoSheets = errors.New("workbook has no sheets")

// =============================================================================
// LOADER FUNCTIONS
// =============================================================================

// Load reads a spreadsheet byte stream and returns the raw table.
//
// PARAMETERS:
//   - r: The uploaded byte stream (XLSX/XLSM).
//   - opts: Loader options.
//
// RETURNS:
//   - A pointer to the Table with headers and padded data rows.
//   - A *types.ParseError if the stream is not a readable spreadsheet.
func Load(r io.Reader, opts Options) (*types.Table, error) {
	f, err := excelize.OpenReader(r, excelize.Options{Password: opts.Password})
	if err != nil {
		return nil, &types.ParseError{Source: opts.SourceName, Err: err}
	}
	defer f.Close()

	sheetName := opts.Sheet
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, &types.ParseError{Source: opts.SourceName, Err: errNoSheets}
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &types.ParseError{Source: opts.SourceName, Err: err}
	}

	table := &types.Table{
		SourceName: opts.SourceName,
		Headers:    []string{},
		Rows:       [][]string{},
	}

	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		table.Date1904 = *props.Date1904
	}

	// A sheet with no rows at all has no header; the validator reports every
	// required column as missing.
	if len(rows) == 0 {
		return table, nil
	}

	table.Headers = append(table.Headers, rows[0]...)
	table.Rows = padRows(rows[1:], len(table.Headers))

	table.NumericCells, err = numericCells(f, sheetName, table.Rows)
	if err != nil {
		return nil, &types.ParseError{Source: opts.SourceName, Err: err}
	}

	return table, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// padRows copies rows so that each has exactly width cells.
// GetRows trims trailing empty cells, so short rows are common.
// Trailing rows that are entirely empty are dropped.
func padRows(rows [][]string, width int) [][]string {
	end := len(rows)
	for end > 0 && isRowEmpty(rows[end-1]) {
		end--
	}

	out := make([][]string, 0, end)
	for _, row := range rows[:end] {
		padded := make([]string, width)
		copy(padded, row)
		out = append(out, padded)
	}
	return out
}

// numericCells marks the non-empty data cells stored as numbers. A cell
// without a type attribute is numeric in OOXML.
func numericCells(f *excelize.File, sheet string, rows [][]string) ([][]bool, error) {
	out := make([][]bool, len(rows))
	for i, row := range rows {
		flags := make([]bool, len(row))
		for j, value := range row {
			if value == "" {
				continue
			}
			// Data row i is sheet row i+2, below the header.
			name, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, err
			}
			cellType, err := f.GetCellType(sheet, name)
			if err != nil {
				return nil, err
			}
			flags[j] = cellType == excelize.CellTypeNumber || cellType == excelize.CellTypeUnset
		}
		out[i] = flags
	}
	return out, nil
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

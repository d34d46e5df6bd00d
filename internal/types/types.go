// =============================================================================
// Sales Dashboard - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - xlsxparser / csvparser  (Table, ParseError)
//   - validation              (SchemaError)
//   - normalizer              (Record, Dataset, Diagnostics)
//   - aggregate               (view rows)
//   - pipeline, reportwriter, server
//
// =============================================================================

package types

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RAW TABLE
// =============================================================================

// Table is the raw output of a loader: a header row plus the data rows as
// read from the first sheet. Every row has exactly len(Headers) cells.
type Table struct {
	// SourceName is the name of the uploaded file (for logs and reports).
	SourceName string

	// Headers contains the column labels from the first row, verbatim.
	Headers []string

	// Rows contains the data rows. Short rows are padded with empty cells.
	Rows [][]string

	// NumericCells marks the cells stored as numbers in the source, aligned
	// with Rows. Only numeric cells are read as spreadsheet serial dates.
	// Nil for text sources such as CSV.
	NumericCells [][]bool

	// Date1904 is true when the workbook uses the 1904 date system.
	// Serial date cells must be converted accordingly.
	Date1904 bool
}

// IsNumeric reports whether the cell at row, col was stored as a number.
func (t *Table) IsNumeric(row, col int) bool {
	if t == nil || row < 0 || row >= len(t.NumericCells) {
		return false
	}
	cells := t.NumericCells[row]
	return col >= 0 && col < len(cells) && cells[col]
}

// =============================================================================
// RECORDS AND DATASET
// =============================================================================

// Record is one row of the sales table: a single sale line item.
type Record struct {
	Product       string          `json:"product" xml:"Product"`
	Quantity      decimal.Decimal `json:"quantity" xml:"Quantity"`
	Customer      string          `json:"customer" xml:"Customer"`
	TotalPrice    decimal.Decimal `json:"total_price" xml:"TotalPrice"`
	Date          time.Time       `json:"date" xml:"Date"`
	PaymentMethod string          `json:"payment_method" xml:"PaymentMethod"`

	// RowNumber is the 1-based row in the source sheet (header is row 1).
	RowNumber int `json:"row_number" xml:"RowNumber,attr"`
}

// Day returns the calendar date of the record with the time-of-day removed.
func (r Record) Day() time.Time {
	return DateOf(r.Date)
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Diagnostics describes what normalization discarded or coerced.
type Diagnostics struct {
	// TotalRows is the number of data rows read from the source.
	TotalRows int `json:"total_rows"`

	// DroppedRows is the number of rows removed because Date did not parse.
	DroppedRows int `json:"dropped_rows"`

	// DroppedRowNumbers lists the source row numbers of dropped rows.
	DroppedRowNumbers []int `json:"dropped_row_numbers,omitempty"`

	// InvalidNumbers counts Quantity/Total_Price cells that were empty or
	// non-numeric and were taken as zero.
	InvalidNumbers int `json:"invalid_numbers"`
}

// Dataset is the validated, date-normalized table of sales records.
// It is never mutated after normalization.
type Dataset struct {
	SourceName  string
	Columns     []string
	Records     []Record
	Diagnostics Diagnostics
}

// Len returns the number of retained records. A nil Dataset has none.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// =============================================================================
// AGGREGATE ROWS
// =============================================================================

// CustomerTotal is one row of the Customer Totals view.
type CustomerTotal struct {
	Customer   string          `json:"customer" xml:"Customer"`
	TotalSpent decimal.Decimal `json:"total_spent" xml:"TotalSpent"`
}

// DailyTotal is one row of the Daily Totals view.
type DailyTotal struct {
	Date          time.Time       `json:"date" xml:"Date"`
	TotalQuantity decimal.Decimal `json:"total_quantity" xml:"TotalQuantity"`
	TotalSales    decimal.Decimal `json:"total_sales" xml:"TotalSales"`
}

// ProductSales is one row of the Daily Product Breakdown view.
type ProductSales struct {
	Product       string          `json:"product" xml:"Product"`
	TotalQuantity decimal.Decimal `json:"total_quantity" xml:"TotalQuantity"`
	TotalSales    decimal.Decimal `json:"total_sales" xml:"TotalSales"`
}

// DailyBreakdown is the Daily Product Breakdown for a single date.
// NoSales is set when nothing was sold that day; this is not an error and
// callers should show an explicit notice instead of an empty table.
type DailyBreakdown struct {
	Date     time.Time      `json:"date" xml:"Date,attr"`
	Products []ProductSales `json:"products" xml:"Product"`
	NoSales  bool           `json:"no_sales" xml:"NoSales,attr"`
}

// ProductRevenue is one row of the Product Ranking view.
type ProductRevenue struct {
	Product string          `json:"product" xml:"Product"`
	Revenue decimal.Decimal `json:"revenue" xml:"Revenue"`
}

// Summary holds the headline figures for a Dataset.
type Summary struct {
	RecordCount   int             `json:"record_count" xml:"RecordCount"`
	TotalQuantity decimal.Decimal `json:"total_quantity" xml:"TotalQuantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue" xml:"TotalRevenue"`
	DateFrom      *time.Time      `json:"date_from,omitempty" xml:"DateFrom,omitempty"`
	DateTo        *time.Time      `json:"date_to,omitempty" xml:"DateTo,omitempty"`
}

// Views bundles every derived view computed from one Dataset.
type Views struct {
	Source         string           `json:"source" xml:"source,attr"`
	Search         string           `json:"search" xml:"search,attr"`
	Summary        Summary          `json:"summary" xml:"Summary"`
	Products       []Record         `json:"products" xml:"Products>Record"`
	CustomerTotals []CustomerTotal  `json:"customer_totals" xml:"CustomerTotals>CustomerTotal"`
	DailyTotals    []DailyTotal     `json:"daily_totals" xml:"DailyTotals>DailyTotal"`
	DailyBreakdown DailyBreakdown   `json:"daily_breakdown" xml:"DailyBreakdown"`
	ProductRanking []ProductRevenue `json:"product_ranking" xml:"ProductRanking>ProductRevenue"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrUnsupportedFormat is returned when no loader exists for a file format.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ParseError reports that the input is not a readable spreadsheet.
// It is fatal to the whole pipeline.
type ParseError struct {
	// Source is the name of the file that failed to parse.
	Source string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("could not read spreadsheet: %v", e.Err)
	}
	return fmt.Sprintf("could not read spreadsheet %q: %v", e.Source, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// SchemaError reports required columns that are absent from the table.
type SchemaError struct {
	// Missing lists the absent columns in required-column order.
	Missing []string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return "required columns missing: " + strings.Join(e.Missing, ", ")
}

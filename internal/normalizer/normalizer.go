// =============================================================================
// Sales Dashboard - Date Normalizer
// =============================================================================
//
// This module turns a validated raw Table into the immutable Dataset that
// every view reads from.
//
// NORMALIZATION STEPS (per row):
//   1. Attempt to parse the Date cell (ParseSerial for numeric cells,
//      ParseDate for text)
//   2. On failure, mark the row for exclusion and move on
//   3. On success, map the row into a types.Record:
//        - Product, Customer, Payment_Method are kept verbatim
//        - Quantity and Total_Price are parsed as decimals
//
// INVARIANTS:
//   - Every retained Record has a valid date
//   - Rows with an unparseable date are removed, never repaired and never
//     defaulted to "today" or any sentinel
//   - Surviving rows keep their original order
//   - Dropping every row is not an error; the result is an empty Dataset
//
// =============================================================================

package normalizer

import (
	"time"

	"github.com/ginjaninja78/sales-dashboard/internal/types"
	"github.com/ginjaninja78/sales-dashboard/internal/validation"
)

// Options controls normalization.
type Options struct {
	// DateLayouts are extra Go time layouts tried before the defaults.
	DateLayouts []string
}

// columnPositions holds the index of each required column in a row.
type columnPositions struct {
	product, quantity, customer, totalPrice, date, paymentMethod int
}

// Normalize converts a loaded table into a Dataset.
//
// PARAMETERS:
//   - table: The raw table from a loader.
//   - opts: Normalization options.
//
// RETURNS:
//   - The normalized Dataset, with Diagnostics describing dropped rows and
//     coerced numbers.
//   - A *types.SchemaError if the table lacks required columns.
func Normalize(table *types.Table, opts Options) (*types.Dataset, error) {
	if err := validation.Validate(table); err != nil {
		return nil, err
	}

	index := validation.ColumnIndex(table.Headers)
	pos := columnPositions{
		product:       index[validation.ColumnProduct],
		quantity:      index[validation.ColumnQuantity],
		customer:      index[validation.ColumnCustomer],
		totalPrice:    index[validation.ColumnTotalPrice],
		date:          index[validation.ColumnDate],
		paymentMethod: index[validation.ColumnPaymentMethod],
	}

	ds := &types.Dataset{
		SourceName: table.SourceName,
		Columns:    append([]string(nil), table.Headers...),
		Records:    make([]types.Record, 0, len(table.Rows)),
		Diagnostics: types.Diagnostics{
			TotalRows: len(table.Rows),
		},
	}

	for i, row := range table.Rows {
		// Header is sheet row 1, so the first data row is row 2.
		rowNumber := i + 2

		date, ok := parseDateCell(table, i, pos.date, opts.DateLayouts)
		if !ok {
			ds.Diagnostics.DroppedRows++
			ds.Diagnostics.DroppedRowNumbers = append(ds.Diagnostics.DroppedRowNumbers, rowNumber)
			continue
		}

		quantity, ok := ParseNumber(cell(row, pos.quantity))
		if !ok {
			ds.Diagnostics.InvalidNumbers++
		}
		totalPrice, ok := ParseNumber(cell(row, pos.totalPrice))
		if !ok {
			ds.Diagnostics.InvalidNumbers++
		}

		ds.Records = append(ds.Records, types.Record{
			Product:       cell(row, pos.product),
			Quantity:      quantity,
			Customer:      cell(row, pos.customer),
			TotalPrice:    totalPrice,
			Date:          date,
			PaymentMethod: cell(row, pos.paymentMethod),
			RowNumber:     rowNumber,
		})
	}

	return ds, nil
}

// parseDateCell reads numeric cells as spreadsheet serials and text cells
// as date strings.
func parseDateCell(table *types.Table, row, col int, layouts []string) (time.Time, bool) {
	value := cell(table.Rows[row], col)
	if table.IsNumeric(row, col) {
		return ParseSerial(value, table.Date1904)
	}
	return ParseDate(value, layouts)
}

// cell safely returns row[i].
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

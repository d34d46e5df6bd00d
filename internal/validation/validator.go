// =============================================================================
// Sales Dashboard - Schema Validator
// =============================================================================
//
// This module confirms that an uploaded table carries every column the
// dashboard needs before any row is interpreted.
//
// VALIDATION STRATEGY:
//   - The required column set is fixed (see RequiredColumns)
//   - Column labels must match exactly (case-sensitive, no trimming)
//   - Extra columns are tolerated and ignored
//   - Missing columns are reported in RequiredColumns order
//
// ERROR HANDLING:
//   A table with missing columns fails with *types.SchemaError. There is no
//   partial validation and no column defaulting: the pipeline stops here.
//
// =============================================================================

package validation

import (
	"github.com/ginjaninja78/sales-dashboard/internal/types"
)

// =============================================================================
// REQUIRED COLUMNS
// =============================================================================

// Column labels of the sales table.
const (
	ColumnProduct       = "Product"
	ColumnQuantity      = "Quantity"
	ColumnCustomer      = "Customer"
	ColumnTotalPrice    = "Total_Price"
	ColumnDate          = "Date"
	ColumnPaymentMethod = "Payment_Method"
)

// RequiredColumns is the fixed schema requirement, in reporting order.
var RequiredColumns = []string{
	ColumnProduct,
	ColumnQuantity,
	ColumnCustomer,
	ColumnTotalPrice,
	ColumnDate,
	ColumnPaymentMethod,
}

// =============================================================================
// VALIDATION FUNCTIONS
// =============================================================================

// Validate checks a loaded table against the schema requirement.
func Validate(table *types.Table) error {
	if table == nil {
		return &types.SchemaError{Missing: append([]string(nil), RequiredColumns...)}
	}
	return ValidateColumns(table.Headers)
}

// ValidateColumns computes RequiredColumns minus headers.
//
// PARAMETERS:
//   - headers: The column labels of the table, verbatim.
//
// RETURNS:
//   - nil if every required column is present.
//   - A *types.SchemaError naming the missing columns otherwise.
func ValidateColumns(headers []string) error {
	missing := MissingColumns(headers)
	if len(missing) > 0 {
		return &types.SchemaError{Missing: missing}
	}
	return nil
}

// MissingColumns returns the required columns absent from headers, in
// RequiredColumns order. It returns nil when nothing is missing.
func MissingColumns(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// ColumnIndex maps each column label to its position in headers.
// When a label appears more than once the first occurrence wins.
func ColumnIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, exists := index[h]; !exists {
			index[h] = i
		}
	}
	return index
}

package normalizer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseNumber reads a Quantity or Total_Price cell.
// Surrounding whitespace and thousands separators are ignored. An empty or
// non-numeric cell yields zero and ok == false.
func ParseNumber(value string) (d decimal.Decimal, ok bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, false
	}

	value = strings.ReplaceAll(value, ",", "")
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

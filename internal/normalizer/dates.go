package normalizer

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"
)

// maxExcelSerial is the serial number of 9999-12-31, the last date a
// spreadsheet can represent.
const maxExcelSerial = 2958465

// ParseDate coerces a text cell to a point in time.
//
// Accepted inputs, in order:
//  1. the Go time layouts passed by the caller;
//  2. any common date or date-time form: ISO 8601 with or without offset,
//     "1/5/2024 10:00:00 AM", "2024-1-5", "Jan 5 2024", "5 January 2024",
//     a bare year "2024" or "20240105".
//
// Other plain numbers are rejected: a spreadsheet serial is only meaningful
// for cells stored as numbers (see ParseSerial). Values without a zone are
// read as UTC.
//
// The second return value is false when nothing matched. The caller decides
// what to do with such rows; ParseDate never substitutes a value.
func ParseDate(value string, layouts []string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	if isPlainNumber(value) && !isYearOrCompactDate(value) {
		return time.Time{}, false
	}

	// Month first is the usual spreadsheet export locale; day first only
	// when that reading is impossible, e.g. "13/01/2024".
	t, err := dateparse.ParseIn(value, time.UTC, dateparse.PreferMonthFirst(true))
	if err != nil {
		t, err = dateparse.ParseIn(value, time.UTC, dateparse.PreferMonthFirst(false))
	}
	if err != nil || t.Year() < 1 {
		return time.Time{}, false
	}
	return t, true
}

// ParseSerial converts a numeric spreadsheet cell to a point in time,
// honoring the workbook's 1904 date system flag. Serials outside the
// representable range are rejected.
func ParseSerial(value string, date1904 bool) (time.Time, bool) {
	serial, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || serial <= 0 || serial > maxExcelSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func isPlainNumber(value string) bool {
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

// isYearOrCompactDate matches "2006" and "20060102".
func isYearOrCompactDate(value string) bool {
	if len(value) != 4 && len(value) != 8 {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

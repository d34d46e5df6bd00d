package reportwriter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sales-dashboard/internal/types"
)

// Sheet names of the workbook report, in tab order.
const (
	SheetSummary       = "Summary"
	SheetProducts      = "Products"
	SheetCustomers     = "Customers"
	SheetDailyTotals   = "Daily Totals"
	SheetDailyProducts = "Daily Products"
	SheetRanking       = "Ranking"
)

const (
	defaultExcelSheet  = "Sheet1"
	rankingChartAnchor = "D2"
	rankingChartTitle  = "Revenue by Product"
)

// WriteXLSX writes views as a workbook with one sheet per view. The Ranking
// sheet also carries a column chart of revenue per product.
func WriteXLSX(w io.Writer, views *types.Views) error {
	f, err := BuildWorkbook(views)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// BuildWorkbook lays views out in a new in-memory workbook. The caller owns
// the returned file and must Close it.
func BuildWorkbook(views *types.Views) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(defaultExcelSheet, SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{SheetSummary, summaryRows(views)},
		{SheetProducts, productRows(views.Products)},
		{SheetCustomers, customerRows(views.CustomerTotals)},
		{SheetDailyTotals, dailyTotalRows(views.DailyTotals)},
		{SheetDailyProducts, breakdownRows(views.DailyBreakdown)},
		{SheetRanking, rankingRows(views.ProductRanking)},
	}

	for _, s := range sheets {
		if s.name != SheetSummary {
			if _, err := f.NewSheet(s.name); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to add sheet %q: %w", s.name, err)
			}
		}
		if err := writeRows(f, s.name, s.rows); err != nil {
			f.Close()
			return nil, err
		}
	}

	if n := len(views.ProductRanking); n > 0 {
		if err := f.AddChart(SheetRanking, rankingChartAnchor, rankingChart(n)); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to add ranking chart: %w", err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// rankingChart plots Ranking!B (revenue) against Ranking!A (product) for
// n data rows below the header.
func rankingChart(n int) *excelize.Chart {
	last := n + 1
	return &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("%s!$B$1", SheetRanking),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", SheetRanking, last),
				Values:     fmt.Sprintf("%s!$B$2:$B$%d", SheetRanking, last),
			},
		},
		Title:  []excelize.RichTextRun{{Text: rankingChartTitle}},
		Legend: excelize.ChartLegend{Position: "none"},
	}
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// =============================================================================
// SHEET LAYOUTS
// =============================================================================

func summaryRows(v *types.Views) [][]interface{} {
	rows := [][]interface{}{
		{"Source", v.Source},
		{"Records", v.Summary.RecordCount},
		{"Total Quantity", v.Summary.TotalQuantity.InexactFloat64()},
		{"Total Revenue", v.Summary.TotalRevenue.InexactFloat64()},
	}
	if v.Summary.DateFrom != nil && v.Summary.DateTo != nil {
		rows = append(rows,
			[]interface{}{"Date From", v.Summary.DateFrom.Format(dateLayout)},
			[]interface{}{"Date To", v.Summary.DateTo.Format(dateLayout)},
		)
	}
	if v.Search != "" {
		rows = append(rows, []interface{}{"Search", v.Search})
	}
	return rows
}

func productRows(records []types.Record) [][]interface{} {
	rows := [][]interface{}{{"Product", "Quantity", "Customer", "Total_Price", "Date", "Payment_Method"}}
	for _, r := range records {
		rows = append(rows, []interface{}{
			r.Product,
			r.Quantity.InexactFloat64(),
			r.Customer,
			r.TotalPrice.InexactFloat64(),
			r.Date.Format(dateLayout),
			r.PaymentMethod,
		})
	}
	return rows
}

func customerRows(totals []types.CustomerTotal) [][]interface{} {
	rows := [][]interface{}{{"Customer", "Total Spent"}}
	for _, r := range totals {
		rows = append(rows, []interface{}{r.Customer, r.TotalSpent.InexactFloat64()})
	}
	return rows
}

func dailyTotalRows(totals []types.DailyTotal) [][]interface{} {
	rows := [][]interface{}{{"Date", "Quantity", "Sales"}}
	for _, r := range totals {
		rows = append(rows, []interface{}{
			r.Date.Format(dateLayout),
			r.TotalQuantity.InexactFloat64(),
			r.TotalSales.InexactFloat64(),
		})
	}
	return rows
}

func breakdownRows(b types.DailyBreakdown) [][]interface{} {
	date := ""
	if !b.Date.IsZero() {
		date = b.Date.Format(dateLayout)
	}
	rows := [][]interface{}{{"Date", date}}
	if b.NoSales {
		return append(rows, []interface{}{NoSalesNotice})
	}

	rows = append(rows, []interface{}{"Product", "Quantity", "Sales"})
	for _, r := range b.Products {
		rows = append(rows, []interface{}{
			r.Product,
			r.TotalQuantity.InexactFloat64(),
			r.TotalSales.InexactFloat64(),
		})
	}
	return rows
}

func rankingRows(ranking []types.ProductRevenue) [][]interface{} {
	rows := [][]interface{}{{"Product", "Revenue"}}
	for _, r := range ranking {
		rows = append(rows, []interface{}{r.Product, r.Revenue.InexactFloat64()})
	}
	return rows
}

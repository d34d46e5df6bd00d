package reportwriter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sales-dashboard/internal/types"
)

// NoSalesNotice is printed in place of an empty daily product breakdown.
const NoSalesNotice = "No sales recorded on this date."

const dateLayout = "2006-01-02"

// WriteTable renders every view as an aligned plain-text table, in the
// order the dashboard shows them.
func WriteTable(w io.Writer, views *types.Views) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	p := &printer{w: tw}

	p.summary(views)
	p.products(views)
	p.customers(views.CustomerTotals)
	p.dailyTotals(views.DailyTotals)
	p.breakdown(views.DailyBreakdown)
	p.ranking(views.ProductRanking)

	if p.err != nil {
		return fmt.Errorf("failed to write table: %w", p.err)
	}
	return tw.Flush()
}

// printer remembers the first write error so the sections stay readable.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) heading(title string) {
	p.line("")
	p.line("%s", title)
}

func (p *printer) summary(v *types.Views) {
	p.line("Source:\t%s", v.Source)
	p.line("Records:\t%d", v.Summary.RecordCount)
	p.line("Total quantity:\t%s", v.Summary.TotalQuantity.String())
	p.line("Total revenue:\t%s", money(v.Summary.TotalRevenue))
	if v.Summary.DateFrom != nil && v.Summary.DateTo != nil {
		p.line("Date range:\t%s to %s", v.Summary.DateFrom.Format(dateLayout), v.Summary.DateTo.Format(dateLayout))
	}
}

func (p *printer) products(v *types.Views) {
	if v.Search != "" {
		p.heading(fmt.Sprintf("Products matching %q", v.Search))
	} else {
		p.heading("Products")
	}
	p.line("Product\tQuantity\tCustomer\tTotal_Price\tDate\tPayment_Method")
	for _, r := range v.Products {
		p.line("%s\t%s\t%s\t%s\t%s\t%s",
			r.Product, r.Quantity.String(), r.Customer, money(r.TotalPrice),
			r.Date.Format(dateLayout), r.PaymentMethod)
	}
}

func (p *printer) customers(rows []types.CustomerTotal) {
	p.heading("Customer Totals")
	p.line("Customer\tTotal Spent")
	for _, r := range rows {
		p.line("%s\t%s", r.Customer, money(r.TotalSpent))
	}
}

func (p *printer) dailyTotals(rows []types.DailyTotal) {
	p.heading("Daily Totals")
	p.line("Date\tQuantity\tSales")
	for _, r := range rows {
		p.line("%s\t%s\t%s", r.Date.Format(dateLayout), r.TotalQuantity.String(), money(r.TotalSales))
	}
}

func (p *printer) breakdown(b types.DailyBreakdown) {
	if b.Date.IsZero() {
		p.heading("Daily Product Breakdown")
	} else {
		p.heading("Daily Product Breakdown for " + b.Date.Format(dateLayout))
	}
	if b.NoSales {
		p.line("%s", NoSalesNotice)
		return
	}
	p.line("Product\tQuantity\tSales")
	for _, r := range b.Products {
		p.line("%s\t%s\t%s", r.Product, r.TotalQuantity.String(), money(r.TotalSales))
	}
}

func (p *printer) ranking(rows []types.ProductRevenue) {
	p.heading("Product Ranking")
	p.line("Product\tRevenue")
	for _, r := range rows {
		p.line("%s\t%s", r.Product, money(r.Revenue))
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// =============================================================================
// Sales Dashboard - Aggregators
// =============================================================================
//
// This module computes the derived views of a normalized Dataset:
//   - Product Search           (SearchProducts)
//   - Customer Totals          (CustomerTotals)
//   - Daily Totals             (DailyTotals)
//   - Daily Product Breakdown  (DailyProductBreakdown)
//   - Product Ranking          (ProductRanking)
//
// CONTRACT:
//   - Every function is a pure, read-only computation over the Dataset
//   - None of them mutates the Dataset or shares state with another view
//   - An empty (or nil) Dataset produces an empty result, never an error
//   - Grouping keys are exact values (no trimming, no case folding)
//
// =============================================================================

package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/ginjaninja78/sales-dashboard/internal/types"
	"github.com/shopspring/decimal"
)

// dayKeyLayout formats a calendar date as a grouping key.
const dayKeyLayout = "2006-01-02"

// =============================================================================
// GROUPING
// =============================================================================

// group accumulates the sums for one grouping key.
type group struct {
	key      string
	day      time.Time
	quantity decimal.Decimal
	sales    decimal.Decimal
}

// groupRecords sums quantity and sales per key. Groups are returned in the
// order their key was first seen in records.
func groupRecords(records []types.Record, keyOf func(types.Record) string) []*group {
	byKey := make(map[string]*group)
	groups := []*group{}

	for _, rec := range records {
		key := keyOf(rec)
		g, exists := byKey[key]
		if !exists {
			g = &group{
				key:      key,
				day:      rec.Day(),
				quantity: decimal.Zero,
				sales:    decimal.Zero,
			}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.quantity = g.quantity.Add(rec.Quantity)
		g.sales = g.sales.Add(rec.TotalPrice)
	}

	return groups
}

// sortBySalesDesc orders groups by summed sales, largest first. Ties keep
// their first-seen order.
func sortBySalesDesc(groups []*group) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].sales.GreaterThan(groups[j].sales)
	})
}

func records(ds *types.Dataset) []types.Record {
	if ds == nil {
		return nil
	}
	return ds.Records
}

// =============================================================================
// PRODUCT SEARCH
// =============================================================================

// SearchProducts returns the records whose Product contains term, ignoring
// case. An empty term returns every record. Order is preserved and the
// returned slice never aliases the Dataset.
func SearchProducts(ds *types.Dataset, term string) []types.Record {
	all := records(ds)
	if term == "" {
		return append(make([]types.Record, 0, len(all)), all...)
	}

	needle := strings.ToLower(term)
	matches := make([]types.Record, 0)
	for _, rec := range all {
		if strings.Contains(strings.ToLower(rec.Product), needle) {
			matches = append(matches, rec)
		}
	}
	return matches
}

// =============================================================================
// CUSTOMER TOTALS
// =============================================================================

// CustomerTotals sums Total_Price per customer, sorted by total spent
// descending. Customers with equal totals appear in first-seen order.
func CustomerTotals(ds *types.Dataset) []types.CustomerTotal {
	groups := groupRecords(records(ds), func(r types.Record) string { return r.Customer })
	sortBySalesDesc(groups)

	out := make([]types.CustomerTotal, 0, len(groups))
	for _, g := range groups {
		out = append(out, types.CustomerTotal{Customer: g.key, TotalSpent: g.sales})
	}
	return out
}

// =============================================================================
// DAILY TOTALS
// =============================================================================

// DailyTotals sums Quantity and Total_Price per calendar date, ordered by
// date ascending. The time-of-day of each record is ignored.
func DailyTotals(ds *types.Dataset) []types.DailyTotal {
	groups := groupRecords(records(ds), func(r types.Record) string {
		return r.Day().Format(dayKeyLayout)
	})
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].day.Before(groups[j].day)
	})

	out := make([]types.DailyTotal, 0, len(groups))
	for _, g := range groups {
		out = append(out, types.DailyTotal{
			Date:          g.day,
			TotalQuantity: g.quantity,
			TotalSales:    g.sales,
		})
	}
	return out
}

// =============================================================================
// DAILY PRODUCT BREAKDOWN
// =============================================================================

// DefaultDate returns the earliest calendar date in the Dataset. It reports
// false for an empty Dataset.
func DefaultDate(ds *types.Dataset) (time.Time, bool) {
	all := records(ds)
	if len(all) == 0 {
		return time.Time{}, false
	}

	earliest := all[0].Day()
	for _, rec := range all[1:] {
		if d := rec.Day(); d.Before(earliest) {
			earliest = d
		}
	}
	return earliest, true
}

// DailyProductBreakdown sums Quantity and Total_Price per product for the
// records sold on day. Products are ordered by name.
//
// When nothing was sold on day the result has NoSales set and no products;
// this is an expected state, not an error.
func DailyProductBreakdown(ds *types.Dataset, day time.Time) types.DailyBreakdown {
	target := types.DateOf(day)

	var sameDay []types.Record
	for _, rec := range records(ds) {
		if rec.Day().Equal(target) {
			sameDay = append(sameDay, rec)
		}
	}

	breakdown := types.DailyBreakdown{
		Date:     target,
		Products: []types.ProductSales{},
	}
	if len(sameDay) == 0 {
		breakdown.NoSales = true
		return breakdown
	}

	groups := groupRecords(sameDay, func(r types.Record) string { return r.Product })
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].key < groups[j].key
	})

	for _, g := range groups {
		breakdown.Products = append(breakdown.Products, types.ProductSales{
			Product:       g.key,
			TotalQuantity: g.quantity,
			TotalSales:    g.sales,
		})
	}
	return breakdown
}

// DailyProductBreakdownDefault runs DailyProductBreakdown for DefaultDate.
// An empty Dataset yields a NoSales breakdown with a zero date.
func DailyProductBreakdownDefault(ds *types.Dataset) types.DailyBreakdown {
	day, ok := DefaultDate(ds)
	if !ok {
		return types.DailyBreakdown{Products: []types.ProductSales{}, NoSales: true}
	}
	return DailyProductBreakdown(ds, day)
}

// =============================================================================
// PRODUCT RANKING
// =============================================================================

// ProductRanking sums Total_Price per product, largest revenue first. Ties
// keep first-seen order. The result is a chart-ready key/value series.
func ProductRanking(ds *types.Dataset) []types.ProductRevenue {
	groups := groupRecords(records(ds), func(r types.Record) string { return r.Product })
	sortBySalesDesc(groups)

	out := make([]types.ProductRevenue, 0, len(groups))
	for _, g := range groups {
		out = append(out, types.ProductRevenue{Product: g.key, Revenue: g.sales})
	}
	return out
}

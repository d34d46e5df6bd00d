package aggregate

import (
	"context"
	"time"

	"github.com/ginjaninja78/sales-dashboard/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Query carries the collaborator inputs of the views: the search box and
// the selected date.
type Query struct {
	// Search filters Product Search. Empty means no filter.
	Search string

	// Date selects the Daily Product Breakdown day. Nil means the earliest
	// date in the Dataset.
	Date *time.Time
}

// ComputeViews computes every view of ds. The views share nothing but the
// read-only Dataset, so they run concurrently; the result is identical to
// calling each function in turn. The only error is ctx cancellation.
func ComputeViews(ctx context.Context, ds *types.Dataset, q Query) (*types.Views, error) {
	views := &types.Views{Search: q.Search}
	if ds != nil {
		views.Source = ds.SourceName
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		views.Summary = Summarize(ds)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		views.Products = SearchProducts(ds, q.Search)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		views.CustomerTotals = CustomerTotals(ds)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		views.DailyTotals = DailyTotals(ds)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if q.Date != nil {
			views.DailyBreakdown = DailyProductBreakdown(ds, *q.Date)
		} else {
			views.DailyBreakdown = DailyProductBreakdownDefault(ds)
		}
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		views.ProductRanking = ProductRanking(ds)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

// Summarize returns the headline figures of ds: record count, total
// quantity, total revenue and the covered date range.
func Summarize(ds *types.Dataset) types.Summary {
	summary := types.Summary{
		TotalQuantity: decimal.Zero,
		TotalRevenue:  decimal.Zero,
	}

	all := records(ds)
	summary.RecordCount = len(all)
	if len(all) == 0 {
		return summary
	}

	from, to := all[0].Day(), all[0].Day()
	for _, rec := range all {
		summary.TotalQuantity = summary.TotalQuantity.Add(rec.Quantity)
		summary.TotalRevenue = summary.TotalRevenue.Add(rec.TotalPrice)
		d := rec.Day()
		if d.Before(from) {
			from = d
		}
		if d.After(to) {
			to = d
		}
	}
	summary.DateFrom = &from
	summary.DateTo = &to

	return summary
}

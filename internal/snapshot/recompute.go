// Package snapshot turns fetched market records and a retailer's own
// quote history into the derived state the UI renders: the "today"
// ranking, robust market averages, quote-vs-market deltas and the
// per-product trend charts.
//
// Recompute is pure and is invoked from scratch whenever the reference
// date or a filter changes; nothing is cached or patched between calls.
// The Service in this package owns the fetch side and the context.
package snapshot

import (
	"time"

	"fuelmarket/internal/domain"
	"fuelmarket/internal/market"
)

// Filters narrows a snapshot to a subset of the market.
type Filters struct {
	// ActiveDistributors restricts the min-price ranking and, when the
	// caller also filtered the fetch, everything else. nil means every
	// distributor observed; an explicit empty slice means none, which
	// yields "no minimum" rather than an error.
	ActiveDistributors []string

	// TrackedBrands are the brands the user quotes under; each gets its
	// own chart line.
	TrackedBrands []string
}

// RecomputeInput is a fully-materialized batch for one request cycle.
// The caller guarantees it is coherent: never a partial fetch, never a
// mix of two requests.
type RecomputeInput struct {
	Base          string
	RefDay        time.Time
	Today         time.Time
	TodayRecords  []*domain.PriceRecord
	AvailableDays []time.Time
	WindowRecords []*domain.PriceRecord
	UserHistory   []*domain.UserQuote
	Filters       Filters
}

// ProductSummary is the "today" view for one product. Average is nil
// when no price data exists for the day; it is never a placeholder zero.
// Delta is the user's own best quote minus the market average, present
// only when both sides exist.
type ProductSummary struct {
	Product   string
	Min       domain.MinPriceInfo
	Average   *float64
	UserPrice *float64
	Delta     *float64
}

// DerivedState is everything the rendering layer needs for one
// reference date. It is rebuilt whole on every change.
type DerivedState struct {
	Base         string
	RefDay       time.Time
	Window       domain.DateWindow
	Distributors []string
	Products     []ProductSummary
	Charts       []domain.ProductChart
}

// Recompute derives the full display state from one coherent batch.
// Given identical inputs it returns identical output; it performs no
// I/O and never fails, degrading to empty slices and nil values when
// the batch is empty.
func Recompute(in RecomputeInput) *DerivedState {
	index, universe := market.BuildIndex(in.TodayRecords)

	active := in.Filters.ActiveDistributors
	if active == nil {
		active = universe
	}

	window := market.SelectWindow(in.AvailableDays, in.RefDay, in.Today)

	charts := market.BuildCharts(market.ChartInput{
		Window:        window,
		MarketRecords: in.WindowRecords,
		UserQuotes:    in.UserHistory,
		TrackedBrands: in.Filters.TrackedBrands,
	})

	userAtRef := bestUserPrices(in.UserHistory, in.RefDay)

	seen := make(map[string]struct{}, len(index)+len(userAtRef))
	products := make([]string, 0, len(index)+len(userAtRef))
	for p := range index {
		products = append(products, p)
		seen[p] = struct{}{}
	}
	for p := range userAtRef {
		if _, dup := seen[p]; !dup {
			products = append(products, p)
		}
	}
	domain.SortProducts(products)

	summaries := make([]ProductSummary, 0, len(products))
	for _, product := range products {
		byDistributor := index[product]

		summary := ProductSummary{
			Product: product,
			Min:     market.MinAmong(byDistributor, active),
		}
		if avg, ok := market.IQRAverage(market.Flatten(byDistributor)); ok {
			v := avg
			summary.Average = &v
		}
		if userPrice, ok := userAtRef[product]; ok {
			v := userPrice
			summary.UserPrice = &v
			if summary.Average != nil {
				delta := userPrice - *summary.Average
				summary.Delta = &delta
			}
		}
		summaries = append(summaries, summary)
	}

	return &DerivedState{
		Base:         in.Base,
		RefDay:       domain.DayOf(in.RefDay),
		Window:       window,
		Distributors: universe,
		Products:     summaries,
		Charts:       charts,
	}
}

// bestUserPrices returns, per product, the lowest price the user quoted
// on the reference day across all their brands.
func bestUserPrices(history []*domain.UserQuote, refDay time.Time) map[string]float64 {
	refDay = domain.DayOf(refDay)

	best := make(map[string]float64)
	for _, q := range history {
		if q == nil || q.Product == "" || !domain.DayOf(q.Day).Equal(refDay) {
			continue
		}
		if current, ok := best[q.Product]; !ok || q.Price < current {
			best[q.Product] = q.Price
		}
	}
	return best
}

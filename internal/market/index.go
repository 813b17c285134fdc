// Package market implements the market-aggregation core: indexing raw
// price records, outlier-robust statistics, min-price ranking and the
// recency-biased date window used for trend charts. Everything in this
// package is a pure transform over already-fetched data; fetching and
// cancellation live with the callers.
package market

import (
	"sort"

	"fuelmarket/internal/domain"
)

// BuildIndex groups raw price records by product, then by distributor,
// keeping every price a distributor submitted. Records with a nil price,
// empty product or empty distributor are dropped. The second return value
// is the distributor universe observed in the surviving records,
// lexicographically sorted for stable display order.
//
// An empty input yields an empty index and no distributors; that is a
// valid steady state, not an error.
func BuildIndex(records []*domain.PriceRecord) (domain.ProductPriceIndex, []string) {
	index := make(domain.ProductPriceIndex)
	seen := make(map[string]struct{})

	for _, r := range records {
		if !usable(r) {
			continue
		}
		byDistributor, ok := index[r.Product]
		if !ok {
			byDistributor = make(map[string][]float64)
			index[r.Product] = byDistributor
		}
		byDistributor[r.Distributor] = append(byDistributor[r.Distributor], *r.Price)
		seen[r.Distributor] = struct{}{}
	}

	distributors := make([]string, 0, len(seen))
	for d := range seen {
		distributors = append(distributors, d)
	}
	sort.Strings(distributors)

	return index, distributors
}

// usable reports whether a record survives ingestion. Upstream data
// regularly contains incomplete rows; they are dropped silently, never
// surfaced as errors.
func usable(r *domain.PriceRecord) bool {
	return r != nil && r.Price != nil && r.Product != "" && r.Distributor != ""
}

// Flatten collapses one product's per-distributor price lists into a
// single sequence. Order is unspecified; callers that need determinism
// sort the result themselves.
func Flatten(pricesByDistributor map[string][]float64) []float64 {
	var out []float64
	for _, prices := range pricesByDistributor {
		out = append(out, prices...)
	}
	return out
}

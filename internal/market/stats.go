package market

import "sort"

// Distributor prices are typed in by hand and occasionally carry a
// misplaced decimal or an extra digit. Both statistics below fence the
// input on [Q1-1.5*IQR, Q3+1.5*IQR] so a single bad entry cannot drag the
// displayed market average or maximum.

// IQRAverage returns the mean of the prices that survive the
// interquartile fence. Quartiles use linear interpolation over the sorted
// input. When the fence would retain nothing (degenerate inputs), the
// plain mean of the full set is returned instead.
//
// The second return value is false when prices is empty: "no data" is an
// explicit absent value here, never a zero price.
func IQRAverage(prices []float64) (float64, bool) {
	if len(prices) == 0 {
		return 0, false
	}

	retained := fenceRetained(prices)
	if len(retained) == 0 {
		return mean(prices), true
	}
	return mean(retained), true
}

// FencedMax returns the maximum of the fence-surviving prices for one
// product on one day, flattened across distributors. Using the retained
// maximum (not the raw one) keeps a single erroneous high quote from one
// distributor off the "market max" line. Falls back to the true maximum
// when the fence retains nothing, and reports false on empty input.
func FencedMax(pricesByDistributor map[string][]float64) (float64, bool) {
	prices := Flatten(pricesByDistributor)
	if len(prices) == 0 {
		return 0, false
	}

	retained := fenceRetained(prices)
	if len(retained) == 0 {
		retained = prices
	}

	max := retained[0]
	for _, p := range retained[1:] {
		if p > max {
			max = p
		}
	}
	return max, true
}

// fenceRetained returns the values of prices inside the interquartile
// outlier fence. The input is not modified.
func fenceRetained(prices []float64) []float64 {
	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	lo := q1 - 1.5*iqr
	hi := q3 + 1.5*iqr

	var retained []float64
	for _, p := range prices {
		if p >= lo && p <= hi {
			retained = append(retained, p)
		}
	}
	return retained
}

// quantile uses linear interpolation between the two nearest ranks.
// sorted must be pre-sorted ASC and non-empty; q is in [0, 1].
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}

	idx := q * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// mean is the arithmetic mean; callers guarantee a non-empty input.
func mean(prices []float64) float64 {
	sum := 0.0
	for _, p := range prices {
		sum += p
	}
	return sum / float64(len(prices))
}

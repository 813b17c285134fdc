package market

import "fuelmarket/internal/domain"

// MinAmong finds the lowest price for one product among the active
// distributors, and which distributor quoted it. A distributor with more
// than one price for the day is collapsed to its own minimum first. Ties
// go to the distributor listed first in active, so the result is stable
// for a given caller ordering.
//
// An empty active set, or no active distributor with data, yields a zero
// MinPriceInfo (nil price, empty distributor). Never panics.
func MinAmong(pricesByDistributor map[string][]float64, active []string) domain.MinPriceInfo {
	var info domain.MinPriceInfo

	for _, name := range active {
		prices, ok := pricesByDistributor[name]
		if !ok || len(prices) == 0 {
			continue
		}

		min := prices[0]
		for _, p := range prices[1:] {
			if p < min {
				min = p
			}
		}

		if info.Price == nil || min < *info.Price {
			v := min
			info.Price = &v
			info.Distributor = name
		}
	}

	return info
}

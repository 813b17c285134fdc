package domain

import "time"

// PriceRecord is a single distributor price quote for one fuel product,
// one base and one calendar day, as stored in the shared market database.
// Day is a UTC-midnight time.Time (see DayOf). Price is nil when the
// upstream row carries no usable value; such records are dropped at
// indexing, not at storage.
type PriceRecord struct {
	Distributor string
	Product     string
	Base        string
	Day         time.Time
	Price       *float64
}

// ProductPriceIndex groups prices by product, then by distributor.
// A distributor may have submitted more than one price for the same
// product and day; duplicates are kept, callers decide how to collapse.
type ProductPriceIndex map[string]map[string][]float64

// MinPriceInfo is the lowest price found for a product among the active
// distributors. Price is nil (and Distributor empty) when no active
// distributor has data for the product.
type MinPriceInfo struct {
	Price       *float64
	Distributor string
}

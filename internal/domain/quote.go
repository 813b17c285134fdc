package domain

import "time"

// UserQuote is one price a retailer submitted for a product under one of
// the brands they track. At most one quote exists per
// (user, base, product, brand, day); re-submissions replace the price.
type UserQuote struct {
	QuoteID string
	UserID  string
	Base    string
	Product string
	Brand   string
	Day     time.Time
	Price   float64
}

package storage

import (
	"context"
	"time"

	"fuelmarket/internal/domain"
)

// MarketRecordStore provides access to the shared market price table.
// A nil or empty distributors filter means "all distributors". Duplicate
// rows for the same (base, day, distributor, product) are legal and are
// stored as-is; deduplication is not this layer's job.
type MarketRecordStore interface {
	// InsertBulk appends a batch of records.
	InsertBulk(ctx context.Context, records []*domain.PriceRecord) error

	// ListDays returns the distinct days that have any record for the
	// base, ascending and deduplicated.
	ListDays(ctx context.Context, base string, distributors []string) ([]time.Time, error)

	// GetByDay retrieves all records for a base on one day.
	GetByDay(ctx context.Context, base string, day time.Time, distributors []string) ([]*domain.PriceRecord, error)

	// GetByDayRange retrieves all records for a base within [from, to] inclusive.
	GetByDayRange(ctx context.Context, base string, from, to time.Time, distributors []string) ([]*domain.PriceRecord, error)
}

// UserQuoteStore provides access to a retailer's own submitted quotes.
type UserQuoteStore interface {
	// Upsert inserts a quote or, when the QuoteID already exists,
	// replaces its price.
	Upsert(ctx context.Context, q *domain.UserQuote) error

	// GetByID retrieves one quote. Returns ErrNotFound if it does not exist.
	GetByID(ctx context.Context, quoteID string) (*domain.UserQuote, error)

	// GetByUserAndRange retrieves a user's quotes for a base within
	// [from, to] inclusive, ordered by day ASC.
	GetByUserAndRange(ctx context.Context, userID, base string, from, to time.Time) ([]*domain.UserQuote, error)
}

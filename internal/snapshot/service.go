package snapshot

import (
	"context"
	"fmt"
	"log"
	"time"

	"fuelmarket/internal/domain"
	"fuelmarket/internal/idhash"
	"fuelmarket/internal/market"
	"fuelmarket/internal/observability"
	"fuelmarket/internal/storage"
)

// Service is the fetch-then-compute orchestrator. It issues the store
// reads for one request cycle with the caller's context and hands the
// materialized batch to Recompute. Cancellation stops here: a caller
// that supersedes a request cancels its context and discards the
// result, it never merges a stale snapshot.
type Service struct {
	marketStore storage.MarketRecordStore
	quoteStore  storage.UserQuoteStore
	logger      *log.Logger

	// now is swapped in tests to pin "today".
	now func() time.Time
}

// NewService creates a snapshot service backed by the given stores.
func NewService(marketStore storage.MarketRecordStore, quoteStore storage.UserQuoteStore, logger *log.Logger) *Service {
	return &Service{
		marketStore: marketStore,
		quoteStore:  quoteStore,
		logger:      logger,
		now:         time.Now,
	}
}

// Snapshot fetches everything one reference date needs and derives the
// display state. userID may be empty for an anonymous market view; the
// user history and deltas are simply absent then.
func (s *Service) Snapshot(ctx context.Context, userID, base string, ref time.Time, filters Filters) (*DerivedState, error) {
	start := time.Now()
	ref = domain.DayOf(ref)
	today := domain.DayOf(s.now())

	days, err := s.marketStore.ListDays(ctx, base, filters.ActiveDistributors)
	if err != nil {
		return nil, fmt.Errorf("list days for %s: %w", base, err)
	}

	window := market.SelectWindow(days, ref, today)

	var windowRecords []*domain.PriceRecord
	var history []*domain.UserQuote
	if window.Size() > 0 {
		from := window.Days[0]
		to := window.Days[window.Size()-1]

		windowRecords, err = s.marketStore.GetByDayRange(ctx, base, from, to, filters.ActiveDistributors)
		if err != nil {
			return nil, fmt.Errorf("fetch windowed records for %s: %w", base, err)
		}

		if userID != "" {
			history, err = s.quoteStore.GetByUserAndRange(ctx, userID, base, from, to)
			if err != nil {
				return nil, fmt.Errorf("fetch quote history for %s: %w", userID, err)
			}
		}
	}

	todayRecords, err := s.marketStore.GetByDay(ctx, base, ref, filters.ActiveDistributors)
	if err != nil {
		return nil, fmt.Errorf("fetch records for %s on %s: %w", base, domain.FormatDay(ref), err)
	}

	state := Recompute(RecomputeInput{
		Base:          base,
		RefDay:        ref,
		Today:         today,
		TodayRecords:  todayRecords,
		AvailableDays: days,
		WindowRecords: windowRecords,
		UserHistory:   history,
		Filters:       filters,
	})

	observability.RecordSnapshot(time.Since(start).Seconds(), len(todayRecords)+len(windowRecords))
	s.logger.Printf("snapshot base=%s ref=%s window=%d products=%d in %v",
		base, domain.FormatDay(ref), state.Window.Size(), len(state.Products), time.Since(start))

	return state, nil
}

// AvailableDays lists the days with any market data for a base,
// ascending, optionally restricted to the given distributors.
func (s *Service) AvailableDays(ctx context.Context, base string, distributors []string) ([]time.Time, error) {
	days, err := s.marketStore.ListDays(ctx, base, distributors)
	if err != nil {
		return nil, fmt.Errorf("list days for %s: %w", base, err)
	}
	return days, nil
}

// QuoteSubmission is one price the user is quoting right now.
type QuoteSubmission struct {
	UserID  string
	Base    string
	Product string
	Brand   string
	Day     time.Time
	Price   float64
}

// SubmitQuote persists a user quote idempotently: submitting the same
// product/brand/day again replaces the earlier price.
func (s *Service) SubmitQuote(ctx context.Context, sub QuoteSubmission) (*domain.UserQuote, error) {
	if sub.UserID == "" || sub.Base == "" || sub.Product == "" || sub.Brand == "" {
		return nil, storage.ErrInvalidInput
	}
	if sub.Price <= 0 {
		return nil, storage.ErrInvalidInput
	}

	quote := &domain.UserQuote{
		QuoteID: idhash.ComputeQuoteID(sub.UserID, sub.Base, sub.Product, sub.Brand, sub.Day),
		UserID:  sub.UserID,
		Base:    sub.Base,
		Product: sub.Product,
		Brand:   sub.Brand,
		Day:     domain.DayOf(sub.Day),
		Price:   sub.Price,
	}

	if err := s.quoteStore.Upsert(ctx, quote); err != nil {
		return nil, fmt.Errorf("upsert quote %s: %w", quote.QuoteID, err)
	}

	observability.RecordQuoteUpserted()
	return quote, nil
}

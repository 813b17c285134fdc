// Package memory provides in-memory store implementations for tests and
// for running the server without external databases.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"fuelmarket/internal/domain"
	"fuelmarket/internal/storage"
)

// MarketRecordStore is an in-memory implementation of storage.MarketRecordStore.
type MarketRecordStore struct {
	mu      sync.RWMutex
	records []*domain.PriceRecord
}

// NewMarketRecordStore creates a new in-memory market record store.
func NewMarketRecordStore() *MarketRecordStore {
	return &MarketRecordStore{}
}

// Compile-time interface check.
var _ storage.MarketRecordStore = (*MarketRecordStore)(nil)

// InsertBulk appends a batch of records. Duplicates are stored as-is.
func (s *MarketRecordStore) InsertBulk(_ context.Context, records []*domain.PriceRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if r == nil || r.Base == "" {
			return storage.ErrInvalidInput
		}
		cp := *r
		cp.Day = domain.DayOf(r.Day)
		s.records = append(s.records, &cp)
	}
	return nil
}

// ListDays returns the distinct days with any record for the base,
// ascending and deduplicated.
func (s *MarketRecordStore) ListDays(_ context.Context, base string, distributors []string) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed := distributorSet(distributors)
	seen := make(map[time.Time]struct{})
	for _, r := range s.records {
		if r.Base != base || !allowed(r.Distributor) {
			continue
		}
		seen[r.Day] = struct{}{}
	}

	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}

// GetByDay retrieves all records for a base on one day.
func (s *MarketRecordStore) GetByDay(ctx context.Context, base string, day time.Time, distributors []string) ([]*domain.PriceRecord, error) {
	day = domain.DayOf(day)
	return s.GetByDayRange(ctx, base, day, day, distributors)
}

// GetByDayRange retrieves all records for a base within [from, to] inclusive.
func (s *MarketRecordStore) GetByDayRange(_ context.Context, base string, from, to time.Time, distributors []string) ([]*domain.PriceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from = domain.DayOf(from)
	to = domain.DayOf(to)
	allowed := distributorSet(distributors)

	var out []*domain.PriceRecord
	for _, r := range s.records {
		if r.Base != base || !allowed(r.Distributor) {
			continue
		}
		if r.Day.Before(from) || r.Day.After(to) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

// distributorSet turns a filter into a predicate; nil or empty means all.
func distributorSet(distributors []string) func(string) bool {
	if len(distributors) == 0 {
		return func(string) bool { return true }
	}
	set := make(map[string]struct{}, len(distributors))
	for _, d := range distributors {
		set[d] = struct{}{}
	}
	return func(name string) bool {
		_, ok := set[name]
		return ok
	}
}

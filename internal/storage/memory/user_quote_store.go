package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"fuelmarket/internal/domain"
	"fuelmarket/internal/storage"
)

// UserQuoteStore is an in-memory implementation of storage.UserQuoteStore.
type UserQuoteStore struct {
	mu   sync.RWMutex
	data map[string]*domain.UserQuote // keyed by quote_id
}

// NewUserQuoteStore creates a new in-memory user quote store.
func NewUserQuoteStore() *UserQuoteStore {
	return &UserQuoteStore{
		data: make(map[string]*domain.UserQuote),
	}
}

// Compile-time interface check.
var _ storage.UserQuoteStore = (*UserQuoteStore)(nil)

// Upsert inserts a quote or replaces the price of an existing one.
func (s *UserQuoteStore) Upsert(_ context.Context, q *domain.UserQuote) error {
	if q == nil || q.QuoteID == "" || q.UserID == "" || q.Base == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *q
	cp.Day = domain.DayOf(q.Day)
	s.data[q.QuoteID] = &cp
	return nil
}

// GetByID retrieves one quote. Returns ErrNotFound if it does not exist.
func (s *UserQuoteStore) GetByID(_ context.Context, quoteID string) (*domain.UserQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.data[quoteID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

// GetByUserAndRange retrieves a user's quotes for a base within [from, to],
// ordered by day ASC.
func (s *UserQuoteStore) GetByUserAndRange(_ context.Context, userID, base string, from, to time.Time) ([]*domain.UserQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from = domain.DayOf(from)
	to = domain.DayOf(to)

	var out []*domain.UserQuote
	for _, q := range s.data {
		if q.UserID != userID || q.Base != base {
			continue
		}
		if q.Day.Before(from) || q.Day.After(to) {
			continue
		}
		cp := *q
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Day.Equal(out[j].Day) {
			return out[i].Day.Before(out[j].Day)
		}
		return out[i].QuoteID < out[j].QuoteID
	})
	return out, nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"fuelmarket/internal/domain"
	"fuelmarket/internal/storage"
)

// UserQuoteStore implements storage.UserQuoteStore using PostgreSQL.
type UserQuoteStore struct {
	pool *Pool
}

// NewUserQuoteStore creates a new UserQuoteStore.
func NewUserQuoteStore(pool *Pool) *UserQuoteStore {
	return &UserQuoteStore{pool: pool}
}

// Compile-time interface check.
var _ storage.UserQuoteStore = (*UserQuoteStore)(nil)

// Upsert inserts a quote or replaces the price of an existing one.
func (s *UserQuoteStore) Upsert(ctx context.Context, q *domain.UserQuote) error {
	if q == nil || q.QuoteID == "" || q.UserID == "" || q.Base == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO user_quotes (
			quote_id, user_id, base, product, brand, day, price
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		ON CONFLICT (quote_id) DO UPDATE
		SET price = EXCLUDED.price, updated_at = now()
	`

	_, err := s.pool.Exec(ctx, query,
		q.QuoteID, q.UserID, q.Base, q.Product, q.Brand, domain.DayOf(q.Day), q.Price,
	)
	if err != nil {
		return fmt.Errorf("upsert user quote: %w", err)
	}
	return nil
}

// GetByID retrieves one quote. Returns ErrNotFound if it does not exist.
func (s *UserQuoteStore) GetByID(ctx context.Context, quoteID string) (*domain.UserQuote, error) {
	query := `
		SELECT quote_id, user_id, base, product, brand, day, price
		FROM user_quotes
		WHERE quote_id = $1
	`

	var q domain.UserQuote
	var day time.Time
	err := s.pool.QueryRow(ctx, query, quoteID).Scan(
		&q.QuoteID, &q.UserID, &q.Base, &q.Product, &q.Brand, &day, &q.Price,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user quote: %w", err)
	}

	q.Day = domain.DayOf(day)
	return &q, nil
}

// GetByUserAndRange retrieves a user's quotes for a base within [from, to]
// inclusive, ordered by day ASC.
func (s *UserQuoteStore) GetByUserAndRange(ctx context.Context, userID, base string, from, to time.Time) ([]*domain.UserQuote, error) {
	query := `
		SELECT quote_id, user_id, base, product, brand, day, price
		FROM user_quotes
		WHERE user_id = $1 AND base = $2 AND day >= $3 AND day <= $4
		ORDER BY day ASC, quote_id ASC
	`

	rows, err := s.pool.Query(ctx, query, userID, base, domain.DayOf(from), domain.DayOf(to))
	if err != nil {
		return nil, fmt.Errorf("query user quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*domain.UserQuote
	for rows.Next() {
		var q domain.UserQuote
		var day time.Time
		if err := rows.Scan(&q.QuoteID, &q.UserID, &q.Base, &q.Product, &q.Brand, &day, &q.Price); err != nil {
			return nil, fmt.Errorf("scan user quote: %w", err)
		}
		q.Day = domain.DayOf(day)
		quotes = append(quotes, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user quotes: %w", err)
	}

	return quotes, nil
}

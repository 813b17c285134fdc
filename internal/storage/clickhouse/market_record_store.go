package clickhouse

import (
	"context"
	"fmt"
	"time"

	"fuelmarket/internal/domain"
	"fuelmarket/internal/storage"
)

// MarketRecordStore implements storage.MarketRecordStore using ClickHouse.
type MarketRecordStore struct {
	conn *Conn
}

// NewMarketRecordStore creates a new MarketRecordStore.
func NewMarketRecordStore(conn *Conn) *MarketRecordStore {
	return &MarketRecordStore{conn: conn}
}

// Compile-time interface check.
var _ storage.MarketRecordStore = (*MarketRecordStore)(nil)

// InsertBulk appends a batch of records. The market table tolerates
// duplicate rows, so no duplicate check happens here.
func (s *MarketRecordStore) InsertBulk(ctx context.Context, records []*domain.PriceRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if r == nil || r.Base == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO market_price_records (
			base, day, distributor, product, price
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		if err := batch.Append(r.Base, domain.DayOf(r.Day), r.Distributor, r.Product, r.Price); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// ListDays returns the distinct days with any record for the base,
// ascending and deduplicated.
func (s *MarketRecordStore) ListDays(ctx context.Context, base string, distributors []string) ([]time.Time, error) {
	query := `
		SELECT DISTINCT day
		FROM market_price_records
		WHERE base = ?
	`
	args := []any{base}
	if len(distributors) > 0 {
		query += " AND distributor IN (?)"
		args = append(args, distributors)
	}
	query += " ORDER BY day ASC"

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query distinct days: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}
		days = append(days, domain.DayOf(day))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate days: %w", err)
	}

	return days, nil
}

// GetByDay retrieves all records for a base on one day.
func (s *MarketRecordStore) GetByDay(ctx context.Context, base string, day time.Time, distributors []string) ([]*domain.PriceRecord, error) {
	day = domain.DayOf(day)
	return s.GetByDayRange(ctx, base, day, day, distributors)
}

// GetByDayRange retrieves all records for a base within [from, to] inclusive.
func (s *MarketRecordStore) GetByDayRange(ctx context.Context, base string, from, to time.Time, distributors []string) ([]*domain.PriceRecord, error) {
	query := `
		SELECT base, day, distributor, product, price
		FROM market_price_records
		WHERE base = ? AND day >= ? AND day <= ?
	`
	args := []any{base, domain.DayOf(from), domain.DayOf(to)}
	if len(distributors) > 0 {
		query += " AND distributor IN (?)"
		args = append(args, distributors)
	}
	query += " ORDER BY day ASC, distributor ASC, product ASC"

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query market records: %w", err)
	}
	defer rows.Close()

	var records []*domain.PriceRecord
	for rows.Next() {
		var r domain.PriceRecord
		var day time.Time
		if err := rows.Scan(&r.Base, &day, &r.Distributor, &r.Product, &r.Price); err != nil {
			return nil, fmt.Errorf("scan market record: %w", err)
		}
		r.Day = domain.DayOf(day)
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate market records: %w", err)
	}

	return records, nil
}

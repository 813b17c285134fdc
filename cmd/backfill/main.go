// Package main provides the backfill tool that imports historical
// market price records from CSV into ClickHouse.
//
// Expected CSV columns: base,date,distributor,product,price
// The date column is YYYY-MM-DD. An empty price column is stored as a
// null price (the distributor listed the product without a value).
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"fuelmarket/internal/domain"
	"fuelmarket/internal/observability"
	"fuelmarket/internal/storage"
	chstore "fuelmarket/internal/storage/clickhouse"
	"fuelmarket/internal/storage/migrations"
)

const columns = 5

func main() {
	csvPath := flag.String("csv", "", "Path to CSV file with price records")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	batchSize := flag.Int("batch-size", 5000, "Rows per insert batch")
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall import timeout")

	flag.Parse()

	logger := log.New(os.Stdout, "[backfill] ", log.LstdFlags|log.Lshortfile)

	if *csvPath == "" {
		logger.Fatal("--csv is required")
	}
	if *clickhouseDSN == "" {
		logger.Fatal("--clickhouse-dsn is required")
	}
	if *batchSize <= 0 {
		logger.Fatal("--batch-size must be positive")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
	if err != nil {
		logger.Fatalf("Failed to connect to ClickHouse: %v", err)
	}
	defer conn.Close()

	file, err := os.Open(*csvPath)
	if err != nil {
		logger.Fatalf("Failed to open CSV: %v", err)
	}
	defer file.Close()

	store := chstore.NewMarketRecordStore(conn)
	start := time.Now()

	imported, skipped, err := importCSV(ctx, file, store, *batchSize, logger)
	if err != nil {
		logger.Fatalf("Import failed: %v", err)
	}

	observability.RecordBackfillRows(imported, skipped)
	logger.Printf("Import complete in %v: %d rows imported, %d skipped", time.Since(start), imported, skipped)
}

// importCSV streams rows from r into the store in batches. Malformed
// rows are skipped and counted, never fatal; store errors are fatal.
func importCSV(ctx context.Context, r io.Reader, store storage.MarketRecordStore, batchSize int, logger *log.Logger) (imported, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // row width checked per row

	batch := make([]*domain.PriceRecord, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := store.InsertBulk(ctx, batch); err != nil {
			return fmt.Errorf("insert batch of %d: %w", len(batch), err)
		}
		imported += len(batch)
		batch = batch[:0]
		return nil
	}

	line := 0
	for {
		row, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		line++
		if readErr != nil {
			logger.Printf("line %d: %v, skipping", line, readErr)
			skipped++
			continue
		}

		if line == 1 && looksLikeHeader(row) {
			continue
		}

		record, parseErr := parseRow(row)
		if parseErr != nil {
			logger.Printf("line %d: %v, skipping", line, parseErr)
			skipped++
			continue
		}

		batch = append(batch, record)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return imported, skipped, err
			}
		}
	}

	if err := flush(); err != nil {
		return imported, skipped, err
	}
	return imported, skipped, nil
}

// parseRow converts one CSV row into a price record.
func parseRow(row []string) (*domain.PriceRecord, error) {
	if len(row) != columns {
		return nil, fmt.Errorf("expected %d columns, got %d", columns, len(row))
	}

	base := strings.TrimSpace(row[0])
	distributor := strings.TrimSpace(row[2])
	product := strings.TrimSpace(row[3])
	if base == "" || distributor == "" || product == "" {
		return nil, fmt.Errorf("base, distributor and product are required")
	}

	day, err := domain.ParseDay(strings.TrimSpace(row[1]))
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", row[1], err)
	}

	var price *float64
	if raw := strings.TrimSpace(row[4]); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid price %q: %w", row[4], err)
		}
		if v <= 0 {
			return nil, fmt.Errorf("price must be positive, got %v", v)
		}
		price = &v
	}

	return &domain.PriceRecord{
		Base:        base,
		Day:         day,
		Distributor: distributor,
		Product:     product,
		Price:       price,
	}, nil
}

// looksLikeHeader reports whether the first row is a column header
// rather than data.
func looksLikeHeader(row []string) bool {
	if len(row) != columns {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(row[0]), "base")
}

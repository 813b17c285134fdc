package memory

import (
	"context"
	"errors"
	"testing"

	"fuelmarket/internal/domain"
	"fuelmarket/internal/storage"
)

func price(v float64) *float64 { return &v }

func TestMarketRecordStore_InsertAndGetByDay(t *testing.T) {
	store := NewMarketRecordStore()
	ctx := context.Background()
	day := domain.NewDay(2024, 5, 20)

	err := store.InsertBulk(ctx, []*domain.PriceRecord{
		{Base: "cuiaba", Day: day, Distributor: "vibra", Product: "Etanol", Price: price(3.89)},
		{Base: "cuiaba", Day: day, Distributor: "shell", Product: "Etanol", Price: price(3.95)},
		{Base: "rondonopolis", Day: day, Distributor: "vibra", Product: "Etanol", Price: price(3.80)},
	})
	if err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByDay(ctx, "cuiaba", day, nil)
	if err != nil {
		t.Fatalf("GetByDay failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records for cuiaba, got %d", len(got))
	}
}

func TestMarketRecordStore_DuplicatesKept(t *testing.T) {
	store := NewMarketRecordStore()
	ctx := context.Background()
	day := domain.NewDay(2024, 5, 20)
	rec := &domain.PriceRecord{Base: "cuiaba", Day: day, Distributor: "vibra", Product: "Etanol", Price: price(3.89)}

	if err := store.InsertBulk(ctx, []*domain.PriceRecord{rec, rec}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByDay(ctx, "cuiaba", day, nil)
	if err != nil {
		t.Fatalf("GetByDay failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("duplicate rows must be kept, got %d", len(got))
	}
}

func TestMarketRecordStore_InvalidInput(t *testing.T) {
	store := NewMarketRecordStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.PriceRecord{{Base: ""}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMarketRecordStore_ListDays(t *testing.T) {
	store := NewMarketRecordStore()
	ctx := context.Background()

	// Inserted out of order, with one day duplicated and one day only
	// reachable through the shell filter.
	err := store.InsertBulk(ctx, []*domain.PriceRecord{
		{Base: "cuiaba", Day: domain.NewDay(2024, 5, 22), Distributor: "vibra", Product: "Etanol", Price: price(3.91)},
		{Base: "cuiaba", Day: domain.NewDay(2024, 5, 20), Distributor: "vibra", Product: "Etanol", Price: price(3.89)},
		{Base: "cuiaba", Day: domain.NewDay(2024, 5, 20), Distributor: "shell", Product: "Etanol", Price: price(3.95)},
		{Base: "cuiaba", Day: domain.NewDay(2024, 5, 21), Distributor: "shell", Product: "Etanol", Price: price(3.93)},
	})
	if err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	days, err := store.ListDays(ctx, "cuiaba", nil)
	if err != nil {
		t.Fatalf("ListDays failed: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("expected 3 distinct days, got %d", len(days))
	}
	for i := 1; i < len(days); i++ {
		if !days[i-1].Before(days[i]) {
			t.Fatalf("days not ascending: %v", days)
		}
	}

	days, err = store.ListDays(ctx, "cuiaba", []string{"shell"})
	if err != nil {
		t.Fatalf("ListDays with filter failed: %v", err)
	}
	if len(days) != 2 {
		t.Errorf("expected 2 days with shell data, got %d", len(days))
	}
}

func TestMarketRecordStore_GetByDayRange(t *testing.T) {
	store := NewMarketRecordStore()
	ctx := context.Background()

	for d := 1; d <= 10; d++ {
		err := store.InsertBulk(ctx, []*domain.PriceRecord{
			{Base: "cuiaba", Day: domain.NewDay(2024, 5, d), Distributor: "vibra", Product: "Etanol", Price: price(3.89)},
		})
		if err != nil {
			t.Fatalf("InsertBulk failed: %v", err)
		}
	}

	got, err := store.GetByDayRange(ctx, "cuiaba", domain.NewDay(2024, 5, 3), domain.NewDay(2024, 5, 6), nil)
	if err != nil {
		t.Fatalf("GetByDayRange failed: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("expected 4 records in inclusive range, got %d", len(got))
	}
}

func TestMarketRecordStore_ReturnsCopies(t *testing.T) {
	store := NewMarketRecordStore()
	ctx := context.Background()
	day := domain.NewDay(2024, 5, 20)

	err := store.InsertBulk(ctx, []*domain.PriceRecord{
		{Base: "cuiaba", Day: day, Distributor: "vibra", Product: "Etanol", Price: price(3.89)},
	})
	if err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, _ := store.GetByDay(ctx, "cuiaba", day, nil)
	got[0].Product = "mutated"

	again, _ := store.GetByDay(ctx, "cuiaba", day, nil)
	if again[0].Product != "Etanol" {
		t.Error("store leaked internal record to caller")
	}
}

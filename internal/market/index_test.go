package market

import (
	"reflect"
	"testing"

	"fuelmarket/internal/domain"
)

func price(v float64) *float64 { return &v }

func TestBuildIndex_GroupsByProductAndDistributor(t *testing.T) {
	day := domain.NewDay(2024, 5, 20)
	records := []*domain.PriceRecord{
		{Distributor: "vibra", Product: "Etanol", Base: "cuiaba", Day: day, Price: price(3.89)},
		{Distributor: "shell", Product: "Etanol", Base: "cuiaba", Day: day, Price: price(3.95)},
		{Distributor: "vibra", Product: "Etanol", Base: "cuiaba", Day: day, Price: price(3.91)},
		{Distributor: "vibra", Product: "Diesel S10", Base: "cuiaba", Day: day, Price: price(5.99)},
	}

	index, distributors := BuildIndex(records)

	if len(index) != 2 {
		t.Fatalf("expected 2 products, got %d", len(index))
	}
	if got := index["Etanol"]["vibra"]; !reflect.DeepEqual(got, []float64{3.89, 3.91}) {
		t.Errorf("expected both vibra prices kept in order, got %v", got)
	}
	if got := index["Etanol"]["shell"]; !reflect.DeepEqual(got, []float64{3.95}) {
		t.Errorf("unexpected shell prices: %v", got)
	}
	if got := index["Diesel S10"]["vibra"]; !reflect.DeepEqual(got, []float64{5.99}) {
		t.Errorf("unexpected diesel prices: %v", got)
	}
	if !reflect.DeepEqual(distributors, []string{"shell", "vibra"}) {
		t.Errorf("expected sorted distributor universe, got %v", distributors)
	}
}

func TestBuildIndex_DropsMalformedRecords(t *testing.T) {
	day := domain.NewDay(2024, 5, 20)
	records := []*domain.PriceRecord{
		nil,
		{Distributor: "vibra", Product: "Etanol", Day: day, Price: nil},
		{Distributor: "", Product: "Etanol", Day: day, Price: price(3.89)},
		{Distributor: "vibra", Product: "", Day: day, Price: price(3.89)},
		{Distributor: "shell", Product: "Etanol", Day: day, Price: price(3.95)},
	}

	index, distributors := BuildIndex(records)

	if len(index) != 1 || len(index["Etanol"]) != 1 {
		t.Fatalf("expected only the one complete record indexed, got %v", index)
	}
	if !reflect.DeepEqual(distributors, []string{"shell"}) {
		t.Errorf("dropped records must not contribute distributors, got %v", distributors)
	}
}

func TestBuildIndex_EmptyInput(t *testing.T) {
	index, distributors := BuildIndex(nil)

	if len(index) != 0 {
		t.Errorf("expected empty index, got %v", index)
	}
	if len(distributors) != 0 {
		t.Errorf("expected no distributors, got %v", distributors)
	}
}

func TestFlatten(t *testing.T) {
	flat := Flatten(map[string][]float64{
		"vibra": {3.89, 3.91},
		"shell": {3.95},
	})

	if len(flat) != 3 {
		t.Errorf("expected 3 prices, got %v", flat)
	}

	if out := Flatten(nil); out != nil {
		t.Errorf("expected nil for empty input, got %v", out)
	}
}

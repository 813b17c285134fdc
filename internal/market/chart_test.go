package market

import (
	"math"
	"testing"
	"time"

	"fuelmarket/internal/domain"
)

func chartWindow(start time.Time, n int) domain.DateWindow {
	return domain.DateWindow{Days: dayRange(start, n)}
}

func findDataset(t *testing.T, chart domain.ProductChart, label string) domain.ChartDataset {
	t.Helper()
	for _, ds := range chart.Datasets {
		if ds.Label == label {
			return ds
		}
	}
	t.Fatalf("dataset %q not found in chart for %s", label, chart.Product)
	return domain.ChartDataset{}
}

func TestBuildCharts_DatasetsAlignedToWindow(t *testing.T) {
	window := chartWindow(domain.NewDay(2024, 5, 1), 5)
	d2 := window.Days[1]
	d4 := window.Days[3]

	in := ChartInput{
		Window: window,
		MarketRecords: []*domain.PriceRecord{
			{Distributor: "vibra", Product: "Etanol", Day: d2, Price: price(3.89)},
			{Distributor: "shell", Product: "Etanol", Day: d2, Price: price(3.95)},
			{Distributor: "vibra", Product: "Etanol", Day: d4, Price: price(3.91)},
		},
	}

	charts := BuildCharts(in)
	if len(charts) != 1 {
		t.Fatalf("expected 1 chart, got %d", len(charts))
	}

	chart := charts[0]
	if chart.Product != "Etanol" {
		t.Errorf("unexpected product %q", chart.Product)
	}
	if len(chart.Dates) != window.Size() {
		t.Fatalf("expected %d dates, got %d", window.Size(), len(chart.Dates))
	}
	for _, ds := range chart.Datasets {
		if len(ds.Values) != window.Size() {
			t.Errorf("dataset %q has %d values, expected %d", ds.Label, len(ds.Values), window.Size())
		}
	}

	min := findDataset(t, chart, "Mínimo")
	for _, i := range []int{0, 2, 4} {
		if min.Values[i] != nil {
			t.Errorf("day %d has no data, expected nil, got %v", i, *min.Values[i])
		}
	}
	if min.Values[1] == nil || *min.Values[1] != 3.89 {
		t.Errorf("expected min 3.89 on day 1, got %v", min.Values[1])
	}
	if min.Values[3] == nil || *min.Values[3] != 3.91 {
		t.Errorf("expected min 3.91 on day 3, got %v", min.Values[3])
	}

	avg := findDataset(t, chart, "Média")
	if avg.Values[1] == nil || math.Abs(*avg.Values[1]-3.92) > 1e-9 {
		t.Errorf("expected avg 3.92 on day 1, got %v", avg.Values[1])
	}

	max := findDataset(t, chart, "Máximo")
	if max.Values[1] == nil || *max.Values[1] != 3.95 {
		t.Errorf("expected max 3.95 on day 1, got %v", max.Values[1])
	}
}

func TestBuildCharts_MinLineIsUnfenced(t *testing.T) {
	// A suspiciously low quote still drives the minimum line: it is the
	// true best price available. The max line fences its outliers.
	window := chartWindow(domain.NewDay(2024, 5, 1), 1)
	day := window.Days[0]

	in := ChartInput{
		Window: window,
		MarketRecords: []*domain.PriceRecord{
			{Distributor: "a", Product: "Etanol", Day: day, Price: price(5.10)},
			{Distributor: "b", Product: "Etanol", Day: day, Price: price(5.12)},
			{Distributor: "c", Product: "Etanol", Day: day, Price: price(5.09)},
			{Distributor: "d", Product: "Etanol", Day: day, Price: price(5.11)},
			{Distributor: "e", Product: "Etanol", Day: day, Price: price(9.99)},
		},
	}

	chart := BuildCharts(in)[0]

	min := findDataset(t, chart, "Mínimo")
	if min.Values[0] == nil || *min.Values[0] != 5.09 {
		t.Errorf("expected unfenced min 5.09, got %v", min.Values[0])
	}

	max := findDataset(t, chart, "Máximo")
	if max.Values[0] == nil || *max.Values[0] != 5.12 {
		t.Errorf("expected fenced max 5.12, got %v", max.Values[0])
	}
}

func TestBuildCharts_BrandDatasets(t *testing.T) {
	window := chartWindow(domain.NewDay(2024, 5, 1), 3)

	in := ChartInput{
		Window: window,
		MarketRecords: []*domain.PriceRecord{
			{Distributor: "vibra", Product: "Etanol", Day: window.Days[0], Price: price(3.89)},
		},
		UserQuotes: []*domain.UserQuote{
			{Product: "Etanol", Brand: "shell", Day: window.Days[1], Price: 3.79},
			{Product: "Etanol", Brand: "untracked", Day: window.Days[1], Price: 1.00},
		},
		TrackedBrands: []string{"shell", "ipiranga"},
	}

	chart := BuildCharts(in)[0]

	// 3 market datasets + one per tracked brand, even brands with no data.
	if len(chart.Datasets) != 5 {
		t.Fatalf("expected 5 datasets, got %d", len(chart.Datasets))
	}
	if len(chart.Series) != len(chart.Datasets) {
		t.Fatalf("series/datasets misaligned: %d vs %d", len(chart.Series), len(chart.Datasets))
	}

	shell := findDataset(t, chart, "shell")
	if shell.Values[1] == nil || *shell.Values[1] != 3.79 {
		t.Errorf("expected shell quote 3.79 on day 1, got %v", shell.Values[1])
	}
	if shell.Values[0] != nil || shell.Values[2] != nil {
		t.Error("expected nil for days without a shell quote")
	}

	ipiranga := findDataset(t, chart, "ipiranga")
	for i, v := range ipiranga.Values {
		if v != nil {
			t.Errorf("expected all-nil dataset for brand without quotes, day %d has %v", i, *v)
		}
	}

	for _, ds := range chart.Datasets {
		if ds.Label == "untracked" {
			t.Error("untracked brand must not produce a dataset")
		}
	}
}

func TestBuildCharts_CanonicalProductOrder(t *testing.T) {
	window := chartWindow(domain.NewDay(2024, 5, 1), 1)
	day := window.Days[0]

	in := ChartInput{
		Window: window,
		MarketRecords: []*domain.PriceRecord{
			{Distributor: "a", Product: "Querosene", Day: day, Price: price(7.00)},
			{Distributor: "a", Product: "Etanol", Day: day, Price: price(3.89)},
			{Distributor: "a", Product: "Arla 32", Day: day, Price: price(2.50)},
			{Distributor: "a", Product: "Gasolina Comum", Day: day, Price: price(5.79)},
		},
	}

	charts := BuildCharts(in)

	got := make([]string, len(charts))
	for i, c := range charts {
		got[i] = c.Product
	}
	want := []string{"Gasolina Comum", "Etanol", "Arla 32", "Querosene"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestBuildCharts_ProductOnlyInUserQuotes(t *testing.T) {
	window := chartWindow(domain.NewDay(2024, 5, 1), 2)

	in := ChartInput{
		Window: window,
		UserQuotes: []*domain.UserQuote{
			{Product: "GNV", Brand: "shell", Day: window.Days[0], Price: 4.59},
		},
		TrackedBrands: []string{"shell"},
	}

	charts := BuildCharts(in)
	if len(charts) != 1 || charts[0].Product != "GNV" {
		t.Fatalf("expected a GNV chart, got %+v", charts)
	}

	min := findDataset(t, charts[0], "Mínimo")
	if min.Values[0] != nil {
		t.Error("expected nil market values for a quote-only product")
	}
}

func TestBuildCharts_EmptyWindow(t *testing.T) {
	charts := BuildCharts(ChartInput{})
	if charts != nil {
		t.Errorf("expected nil for empty window, got %v", charts)
	}
}

func TestBuildCharts_RecordsOutsideWindowIgnored(t *testing.T) {
	window := chartWindow(domain.NewDay(2024, 5, 10), 2)

	in := ChartInput{
		Window: window,
		MarketRecords: []*domain.PriceRecord{
			{Distributor: "a", Product: "Etanol", Day: domain.NewDay(2024, 5, 1), Price: price(3.89)},
		},
	}

	charts := BuildCharts(in)
	if len(charts) != 0 {
		t.Errorf("records outside the window must not produce charts, got %d", len(charts))
	}
}

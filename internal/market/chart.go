package market

import (
	"time"

	"fuelmarket/internal/domain"
)

// Colors match the web client's palette.
const (
	colorMin = "#2ca02c"
	colorAvg = "#1f77b4"
	colorMax = "#d62728"
)

// brandPalette is cycled through for per-brand series.
var brandPalette = []string{
	"#ff7f0e", "#9467bd", "#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// ChartInput carries everything BuildCharts needs, already fetched and
// already restricted to the selected window and distributor filter.
type ChartInput struct {
	Window        domain.DateWindow
	MarketRecords []*domain.PriceRecord
	UserQuotes    []*domain.UserQuote
	TrackedBrands []string
}

// BuildCharts merges the windowed market records and the user's own quote
// history into one chart payload per product, in canonical product order.
//
// Every product gets three market datasets ("min" is the plain minimum so
// the line reflects the true best price; "avg" and "max" are the fenced
// statistics) plus one dataset per tracked brand. All datasets carry
// exactly Window.Size() values aligned to Window.Days; a day with no data
// is nil.
func BuildCharts(in ChartInput) []domain.ProductChart {
	if in.Window.Size() == 0 {
		return nil
	}

	dayIndex := make(map[time.Time]int, in.Window.Size())
	for i, d := range in.Window.Days {
		dayIndex[domain.DayOf(d)] = i
	}

	// Market records by product, then day. Malformed records are dropped
	// here with the same predicate BuildIndex uses, so a product that only
	// ever appears on unusable rows never gets a chart.
	marketByProduct := make(map[string]map[time.Time][]*domain.PriceRecord)
	for _, r := range in.MarketRecords {
		if !usable(r) {
			continue
		}
		day := domain.DayOf(r.Day)
		if _, inWindow := dayIndex[day]; !inWindow {
			continue
		}
		byDay, ok := marketByProduct[r.Product]
		if !ok {
			byDay = make(map[time.Time][]*domain.PriceRecord)
			marketByProduct[r.Product] = byDay
		}
		byDay[day] = append(byDay[day], r)
	}

	tracked := make(map[string]bool, len(in.TrackedBrands))
	for _, b := range in.TrackedBrands {
		tracked[b] = true
	}

	// User quotes by product, then brand, then day. Untracked brands do
	// not contribute datasets or products.
	quotesByProduct := make(map[string]map[string]map[time.Time]float64)
	for _, q := range in.UserQuotes {
		if q == nil || q.Product == "" || !tracked[q.Brand] {
			continue
		}
		day := domain.DayOf(q.Day)
		if _, inWindow := dayIndex[day]; !inWindow {
			continue
		}
		byBrand, ok := quotesByProduct[q.Product]
		if !ok {
			byBrand = make(map[string]map[time.Time]float64)
			quotesByProduct[q.Product] = byBrand
		}
		byDay, ok := byBrand[q.Brand]
		if !ok {
			byDay = make(map[time.Time]float64)
			byBrand[q.Brand] = byDay
		}
		byDay[day] = q.Price
	}

	products := make([]string, 0, len(marketByProduct)+len(quotesByProduct))
	for p := range marketByProduct {
		products = append(products, p)
	}
	for p := range quotesByProduct {
		if _, dup := marketByProduct[p]; !dup {
			products = append(products, p)
		}
	}
	domain.SortProducts(products)

	charts := make([]domain.ProductChart, 0, len(products))
	for _, product := range products {
		charts = append(charts, buildProductChart(product, in, marketByProduct[product], quotesByProduct[product]))
	}
	return charts
}

func buildProductChart(
	product string,
	in ChartInput,
	marketByDay map[time.Time][]*domain.PriceRecord,
	quotesByBrand map[string]map[time.Time]float64,
) domain.ProductChart {
	size := in.Window.Size()
	minValues := make([]*float64, size)
	avgValues := make([]*float64, size)
	maxValues := make([]*float64, size)

	for i, d := range in.Window.Days {
		records := marketByDay[domain.DayOf(d)]
		if len(records) == 0 {
			continue
		}

		index, _ := BuildIndex(records)
		byDistributor := index[product]
		prices := Flatten(byDistributor)
		if len(prices) == 0 {
			continue
		}

		min := prices[0]
		for _, p := range prices[1:] {
			if p < min {
				min = p
			}
		}
		minValues[i] = &min

		if avg, ok := IQRAverage(prices); ok {
			v := avg
			avgValues[i] = &v
		}
		if max, ok := FencedMax(byDistributor); ok {
			v := max
			maxValues[i] = &v
		}
	}

	dates := make([]time.Time, size)
	copy(dates, in.Window.Days)

	chart := domain.ProductChart{
		Product: product,
		Dates:   dates,
		Series: []domain.ChartSeries{
			{Key: domain.SeriesKeyMin, Name: "Mínimo", Color: colorMin, Kind: domain.SeriesKindMarket, Visible: true},
			{Key: domain.SeriesKeyAvg, Name: "Média", Color: colorAvg, Kind: domain.SeriesKindMarket, Visible: true},
			{Key: domain.SeriesKeyMax, Name: "Máximo", Color: colorMax, Kind: domain.SeriesKindMarket, Visible: true},
		},
		Datasets: []domain.ChartDataset{
			{Label: "Mínimo", Values: minValues},
			{Label: "Média", Values: avgValues},
			{Label: "Máximo", Values: maxValues},
		},
	}

	for bi, brand := range in.TrackedBrands {
		values := make([]*float64, size)
		for i, d := range in.Window.Days {
			if byDay, ok := quotesByBrand[brand]; ok {
				if price, ok := byDay[domain.DayOf(d)]; ok {
					v := price
					values[i] = &v
				}
			}
		}
		chart.Series = append(chart.Series, domain.ChartSeries{
			Key:     "brand:" + brand,
			Name:    brand,
			Color:   brandPalette[bi%len(brandPalette)],
			Kind:    domain.SeriesKindDistributor,
			Visible: true,
		})
		chart.Datasets = append(chart.Datasets, domain.ChartDataset{Label: brand, Values: values})
	}

	return chart
}

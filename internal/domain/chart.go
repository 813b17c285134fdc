package domain

import "time"

// SeriesKind distinguishes aggregate market lines from per-brand lines.
type SeriesKind string

const (
	SeriesKindMarket      SeriesKind = "market"
	SeriesKindDistributor SeriesKind = "distributor"
)

// Keys of the three market series every product chart carries.
const (
	SeriesKeyMin = "min"
	SeriesKeyAvg = "avg"
	SeriesKeyMax = "max"
)

// ChartSeries describes one named line of a product chart.
type ChartSeries struct {
	Key     string
	Name    string
	Color   string
	Kind    SeriesKind
	Visible bool
}

// ChartDataset holds the values of one series, positionally aligned to the
// chart's date axis. A date with no data is nil, never omitted and never
// zero.
type ChartDataset struct {
	Label  string
	Values []*float64
}

// DateWindow is the bounded, ascending slice of calendar days a chart is
// drawn over.
type DateWindow struct {
	Days []time.Time
}

// Size returns the number of days in the window.
func (w DateWindow) Size() int {
	return len(w.Days)
}

// ProductChart is the full chart payload for one product: every dataset in
// Datasets has exactly len(Dates) values, so series plot without
// client-side realignment. Series and Datasets are index-aligned.
type ProductChart struct {
	Product  string
	Dates    []time.Time
	Series   []ChartSeries
	Datasets []ChartDataset
}

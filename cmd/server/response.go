package main

import (
	"fuelmarket/internal/domain"
	"fuelmarket/internal/snapshot"
)

// SnapshotResponse is the JSON shape for a derived snapshot.
type SnapshotResponse struct {
	Base         string        `json:"base"`
	RefDay       string        `json:"ref_day"`
	Window       []string      `json:"window"`
	Distributors []string      `json:"distributors"`
	Products     []ProductView `json:"products"`
	Charts       []ChartView   `json:"charts"`
}

// ProductView is the "today" row for one product. Absent values are
// JSON null, never zero.
type ProductView struct {
	Product        string   `json:"product"`
	MinPrice       *float64 `json:"min_price"`
	MinDistributor string   `json:"min_distributor,omitempty"`
	Average        *float64 `json:"average"`
	UserPrice      *float64 `json:"user_price"`
	Delta          *float64 `json:"delta"`
}

// ChartView is one product's trend chart.
type ChartView struct {
	Product  string        `json:"product"`
	Dates    []string      `json:"dates"`
	Series   []SeriesView  `json:"series"`
	Datasets []DatasetView `json:"datasets"`
}

// SeriesView describes one chart line.
type SeriesView struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Kind    string `json:"kind"`
	Visible bool   `json:"visible"`
}

// DatasetView carries one line's values aligned to the chart dates.
// Days without data are null.
type DatasetView struct {
	Label  string     `json:"label"`
	Values []*float64 `json:"values"`
}

// snapshotResponse converts derived state into its JSON shape.
func snapshotResponse(state *snapshot.DerivedState) SnapshotResponse {
	resp := SnapshotResponse{
		Base:         state.Base,
		RefDay:       domain.FormatDay(state.RefDay),
		Window:       make([]string, 0, state.Window.Size()),
		Distributors: state.Distributors,
		Products:     make([]ProductView, 0, len(state.Products)),
		Charts:       make([]ChartView, 0, len(state.Charts)),
	}

	for _, d := range state.Window.Days {
		resp.Window = append(resp.Window, domain.FormatDay(d))
	}

	for _, p := range state.Products {
		resp.Products = append(resp.Products, ProductView{
			Product:        p.Product,
			MinPrice:       p.Min.Price,
			MinDistributor: p.Min.Distributor,
			Average:        p.Average,
			UserPrice:      p.UserPrice,
			Delta:          p.Delta,
		})
	}

	for _, c := range state.Charts {
		chart := ChartView{
			Product:  c.Product,
			Dates:    make([]string, 0, len(c.Dates)),
			Series:   make([]SeriesView, 0, len(c.Series)),
			Datasets: make([]DatasetView, 0, len(c.Datasets)),
		}
		for _, d := range c.Dates {
			chart.Dates = append(chart.Dates, domain.FormatDay(d))
		}
		for _, s := range c.Series {
			chart.Series = append(chart.Series, SeriesView{
				Key:     s.Key,
				Name:    s.Name,
				Color:   s.Color,
				Kind:    string(s.Kind),
				Visible: s.Visible,
			})
		}
		for _, ds := range c.Datasets {
			chart.Datasets = append(chart.Datasets, DatasetView{
				Label:  ds.Label,
				Values: ds.Values,
			})
		}
		resp.Charts = append(resp.Charts, chart)
	}

	return resp
}

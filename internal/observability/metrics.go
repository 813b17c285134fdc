// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Snapshot metrics
	SnapshotsComputed prometheus.Counter
	SnapshotDuration  prometheus.Histogram
	RecordsIndexed    prometheus.Counter

	// Quote metrics
	QuotesUpserted prometheus.Counter

	// Storage metrics
	StoreQueryDuration *prometheus.HistogramVec
	StoreQueryErrors   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec

	// WebSocket metrics
	WSClients prometheus.Gauge

	// Backfill metrics
	BackfillRowsImported prometheus.Counter
	BackfillRowsSkipped  prometheus.Counter
}

// NewMetrics creates and registers all metrics with the given namespace.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "fuelmarket"
	}

	return &Metrics{
		SnapshotsComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "computed_total",
			Help:      "Total number of market snapshots computed",
		}),
		SnapshotDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "duration_seconds",
			Help:      "Snapshot computation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		RecordsIndexed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "records_indexed_total",
			Help:      "Total number of price records fetched and indexed for snapshots",
		}),

		QuotesUpserted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quotes",
			Name:      "upserted_total",
			Help:      "Total number of user quotes inserted or replaced",
		}),

		StoreQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "query_duration_seconds",
			Help:      "Storage query duration in seconds by store and operation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"store", "operation"}),
		StoreQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "query_errors_total",
			Help:      "Total number of storage query errors by store and operation",
		}, []string{"store", "operation"}),

		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by endpoint and status",
		}, []string{"endpoint", "status"}),

		WSClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "clients",
			Help:      "Current number of connected websocket clients",
		}),

		BackfillRowsImported: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backfill",
			Name:      "rows_imported_total",
			Help:      "Total number of price rows imported by the backfill tool",
		}),
		BackfillRowsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backfill",
			Name:      "rows_skipped_total",
			Help:      "Total number of malformed price rows skipped by the backfill tool",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSnapshot records one computed snapshot with its duration and the
// number of price records it indexed.
func RecordSnapshot(durationSeconds float64, records int) {
	DefaultMetrics.SnapshotsComputed.Inc()
	DefaultMetrics.SnapshotDuration.Observe(durationSeconds)
	DefaultMetrics.RecordsIndexed.Add(float64(records))
}

// RecordQuoteUpserted records a user quote insert or replace.
func RecordQuoteUpserted() {
	DefaultMetrics.QuotesUpserted.Inc()
}

// RecordStoreQuery records a storage query duration and, if err is non-nil,
// an error for the given store and operation.
func RecordStoreQuery(store, operation string, durationSeconds float64, err error) {
	DefaultMetrics.StoreQueryDuration.WithLabelValues(store, operation).Observe(durationSeconds)
	if err != nil {
		DefaultMetrics.StoreQueryErrors.WithLabelValues(store, operation).Inc()
	}
}

// RecordHTTPRequest records an HTTP request by endpoint and status code class.
func RecordHTTPRequest(endpoint, status string) {
	DefaultMetrics.HTTPRequests.WithLabelValues(endpoint, status).Inc()
}

// AddWSClient increments the connected websocket client gauge.
func AddWSClient() {
	DefaultMetrics.WSClients.Inc()
}

// RemoveWSClient decrements the connected websocket client gauge.
func RemoveWSClient() {
	DefaultMetrics.WSClients.Dec()
}

// RecordBackfillRows records imported and skipped rows from a backfill run.
func RecordBackfillRows(imported, skipped int) {
	DefaultMetrics.BackfillRowsImported.Add(float64(imported))
	DefaultMetrics.BackfillRowsSkipped.Add(float64(skipped))
}

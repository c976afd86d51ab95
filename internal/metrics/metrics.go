// Package metrics exposes Prometheus instrumentation for ingestion runs and
// the HTTP API. Collectors register with the default registry at init.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion Metrics
	IngestRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_ingest_runs_total",
			Help: "Total number of ingestion runs by outcome",
		},
		[]string{"outcome"}, // "completed", "partial", "rejected"
	)

	IngestTableRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_ingest_table_runs_total",
			Help: "Total number of per-table ingestions by status and failing stage",
		},
		[]string{"table", "status", "stage"},
	)

	IngestRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_ingest_rows_total",
			Help: "Rows read from snapshots by outcome",
		},
		[]string{"table", "outcome"}, // "inserted", "skipped"
	)

	IngestTableDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "explorer_ingest_table_duration_seconds",
			Help:    "Duration of per-table ingestion in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"table"},
	)

	SnapshotBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_snapshot_bytes_total",
			Help: "Bytes read from snapshot objects",
		},
		[]string{"table"},
	)

	IngestInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "explorer_ingest_in_progress",
			Help: "1 while an ingestion run is active",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "explorer_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	QueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_query_errors_total",
			Help: "Total number of failed read queries",
		},
		[]string{"operation"},
	)
)

// RecordTableRun records the outcome of ingesting one table.
// stage is empty for a committed table.
func RecordTableRun(table, status, stage string, inserted, skipped int, bytes int64, duration time.Duration) {
	IngestTableRuns.WithLabelValues(table, status, stage).Inc()
	IngestTableDuration.WithLabelValues(table).Observe(duration.Seconds())
	if bytes > 0 {
		SnapshotBytes.WithLabelValues(table).Add(float64(bytes))
	}
	if inserted > 0 {
		IngestRows.WithLabelValues(table, "inserted").Add(float64(inserted))
	}
	if skipped > 0 {
		IngestRows.WithLabelValues(table, "skipped").Add(float64(skipped))
	}
}

// RecordRun records the outcome of a whole ingestion run.
func RecordRun(outcome string) {
	IngestRuns.WithLabelValues(outcome).Inc()
}

// TrackIngest flips the in-progress gauge.
func TrackIngest(active bool) {
	if active {
		IngestInProgress.Set(1)
	} else {
		IngestInProgress.Set(0)
	}
}

// RecordAPIRequest records API request metrics.
func RecordAPIRequest(method, route string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordQueryError counts a failed read query.
func RecordQueryError(operation string) {
	QueryErrors.WithLabelValues(operation).Inc()
}

// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	QuotesInserted  prometheus.Counter
	ResultsUpserted prometheus.Counter
	SnapshotsTaken  prometheus.Counter
	FetchErrors     *prometheus.CounterVec
	QuotaRemaining  prometheus.Gauge

	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  *prometheus.HistogramVec
	RowsRebuilt       *prometheus.GaugeVec

	// Quality metrics
	QualityChecksTotal *prometheus.CounterVec
	MappedShare        prometheus.Gauge
	MissingResults     prometheus.Gauge

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulSnapshot prometheus.Gauge
	LastSuccessfulPipeline prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "moneyline_lab"
	}

	return &Metrics{
		// Ingestion metrics
		QuotesInserted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "quotes_inserted_total",
			Help:      "Total number of price quotes appended to the raw store",
		}),
		ResultsUpserted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "results_upserted_total",
			Help:      "Total number of game result records upserted",
		}),
		SnapshotsTaken: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "snapshots_taken_total",
			Help:      "Total number of odds snapshots taken",
		}),
		FetchErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "fetch_errors_total",
			Help:      "Total number of upstream fetch errors by source",
		}, []string{"source"}),
		QuotaRemaining: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "odds_api_quota_remaining",
			Help:      "Requests remaining on the odds API key as of the last snapshot",
		}),

		// Pipeline metrics
		PipelineRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"status"}),
		PipelineDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline execution duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"phase"}),
		RowsRebuilt: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "rows_rebuilt",
			Help:      "Rows written per derived table on the last run",
		}, []string{"table"}),

		// Quality metrics
		QualityChecksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quality",
			Name:      "checks_total",
			Help:      "Total number of quality check runs by status",
		}, []string{"status"}),
		MappedShare: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "quality",
			Name:      "mapped_share",
			Help:      "Share of best-market events with a result mapping as of the last check",
		}),
		MissingResults: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "quality",
			Name:      "missing_results",
			Help:      "Best-market events without a joined fact as of the last check",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulSnapshot: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_snapshot_timestamp",
			Help:      "Unix timestamp of the last successful odds snapshot",
		}),
		LastSuccessfulPipeline: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_pipeline_timestamp",
			Help:      "Unix timestamp of the last successful pipeline run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSnapshot records a completed odds snapshot. The quota header is the
// API's own string; unparsable values leave the gauge untouched.
func RecordSnapshot(quotes int, quotaRemaining string) {
	DefaultMetrics.SnapshotsTaken.Inc()
	DefaultMetrics.QuotesInserted.Add(float64(quotes))
	DefaultMetrics.LastSuccessfulSnapshot.SetToCurrentTime()
	if v, err := strconv.ParseFloat(quotaRemaining, 64); err == nil {
		DefaultMetrics.QuotaRemaining.Set(v)
	}
}

// RecordResultsPull records upserted game result records.
func RecordResultsPull(records int) {
	DefaultMetrics.ResultsUpserted.Add(float64(records))
}

// RecordFetchError records an upstream fetch error.
func RecordFetchError(source string) {
	DefaultMetrics.FetchErrors.WithLabelValues(source).Inc()
}

// RecordPipelineRun records a pipeline run.
func RecordPipelineRun(status string, durationSeconds float64) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.PipelineDuration.WithLabelValues("full").Observe(durationSeconds)
	if status == "success" {
		DefaultMetrics.LastSuccessfulPipeline.SetToCurrentTime()
	}
}

// RecordRowsRebuilt records the row count for one derived table.
func RecordRowsRebuilt(table string, rows int) {
	DefaultMetrics.RowsRebuilt.WithLabelValues(table).Set(float64(rows))
}

// RecordQualityCheck records a quality check outcome.
func RecordQualityCheck(status string, mappedShare *float64, missingResults int) {
	DefaultMetrics.QualityChecksTotal.WithLabelValues(status).Inc()
	if mappedShare != nil {
		DefaultMetrics.MappedShare.Set(*mappedShare)
	}
	DefaultMetrics.MissingResults.Set(float64(missingResults))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

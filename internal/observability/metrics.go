package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "accident_trends"

// Metrics holds the Prometheus counters, histograms, and gauges for the query service.
type Metrics struct {
	Queries       *prometheus.CounterVec   // labels: operation, dimension
	QueryDuration *prometheus.HistogramVec // labels: operation

	// Data quality.
	YearsSkipped       *prometheus.CounterVec // labels: reason={time_column_missing,no_parsable_times}
	DegenerateFits     *prometheus.CounterVec // labels: dimension
	ClampedPredictions *prometheus.CounterVec // labels: dimension

	DatasetRecords prometheus.Gauge
	DatasetYears   prometheus.Gauge

	InvalidRequests *prometheus.CounterVec // labels: endpoint
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates all service metrics and registers them with reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.Queries,
		m.QueryDuration,
		m.YearsSkipped,
		m.DegenerateFits,
		m.ClampedPredictions,
		m.DatasetRecords,
		m.DatasetYears,
		m.InvalidRequests,
	)
	return m
}

// NewMetricsForTesting creates Metrics with no registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Queries served by operation and dimension.",
		}, []string{"operation", "dimension"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Time spent computing a query result.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"operation"}),
		YearsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "years_skipped_total",
			Help:      "Years excluded from a query because their time column could not be used.",
		}, []string{"reason"}),
		DegenerateFits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degenerate_fits_total",
			Help:      "Labels predicted as zero because no trend line could be fitted.",
		}, []string{"dimension"}),
		ClampedPredictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clamped_predictions_total",
			Help:      "Negative label predictions clamped to zero.",
		}, []string{"dimension"}),
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Records in the loaded workbook.",
		}),
		DatasetYears: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_years",
			Help:      "Yearly sheets in the loaded workbook.",
		}),
		InvalidRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_requests_total",
			Help:      "API requests rejected by decoding or validation.",
		}, []string{"endpoint"}),
	}
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "threat_level"

// Metrics holds the Prometheus counters, histograms, and gauges for the monitor.
type Metrics struct {
	// Update cycle metrics.
	CyclesTotal      *prometheus.CounterVec // labels: outcome={success,failure}
	CycleDuration    prometheus.Histogram
	SourceFallbacks  *prometheus.CounterVec // labels: source
	SchedulerRunning prometheus.Gauge

	// Fetch metrics.
	FetchRequests *prometheus.CounterVec   // labels: source, outcome={success,forbidden,http-error,network-error}
	FetchDuration *prometheus.HistogramVec // labels: source

	// Current reading, exported as a gauge for dashboards.
	CurrentOrdinal     prometheus.Gauge
	LastSuccessSeconds prometheus.Gauge
	ReadingInfo        *prometheus.GaugeVec // labels: level, source, match
	PublishErrors      prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CyclesTotal,
		m.CycleDuration,
		m.SourceFallbacks,
		m.SchedulerRunning,
		m.FetchRequests,
		m.FetchDuration,
		m.CurrentOrdinal,
		m.LastSuccessSeconds,
		m.ReadingInfo,
		m.PublishErrors,
	)
	return m
}

// NewUnregisteredMetrics creates Metrics that are not exported on /metrics,
// for one-shot commands.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

// NewMetricsForTesting creates Metrics with no registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "update_cycles_total",
			Help:      "Update cycles by outcome.",
		}, []string{"outcome"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "update_cycle_duration_seconds",
			Help:      "Duration of a complete fetch-parse update cycle.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		}),
		SourceFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fallbacks_total",
			Help:      "Times a source was exhausted and the next source was tried.",
		}, []string{"source"}),
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduler_running",
			Help:      "1 when the polling scheduler is active, 0 when shut down.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Source fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Source fetch duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"source"}),
		CurrentOrdinal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ordinal",
			Help:      "Current UK threat level as 1 (LOW) to 5 (CRITICAL); 0 before the first reading.",
		}),
		LastSuccessSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful update cycle.",
		}),
		ReadingInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reading_info",
			Help:      "Always 1 for the current reading; labels carry the level name, source URL and match kind.",
		}, []string{"level", "source", "match"}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Readings that could not be delivered to a downstream sink.",
		}),
	}
}

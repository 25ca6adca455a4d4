package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fmi_weather"

// Metrics holds the Prometheus counters, histograms, and gauges for the refresh service.
type Metrics struct {
	RefreshCycles      *prometheus.CounterVec // labels: outcome={success,failed,timeout}
	CycleDuration      prometheus.Histogram
	RefresherRunning   prometheus.Gauge
	SnapshotsPublished prometheus.Counter
	StrikesRetained    prometheus.Gauge

	// FMI feed metrics.
	FeedRequests *prometheus.CounterVec   // labels: feed={current,forecast,lightning,sealevel}, outcome={success,error}
	FeedDuration *prometheus.HistogramVec // labels: feed

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RefreshCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_cycles_total",
			Help:      "Refresh cycles by outcome.",
		}, []string{"outcome"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_cycle_duration_seconds",
			Help:      "Duration of a complete refresh cycle.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		}),
		RefresherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresher_running",
			Help:      "1 while the scheduler is running, 0 when shut down.",
		}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_published_total",
			Help:      "Snapshots written to the Kafka topic.",
		}),
		StrikesRetained: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lightning_strikes_retained",
			Help:      "Lightning strikes in the latest snapshot.",
		}),
		FeedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_requests_total",
			Help:      "FMI feed requests by feed and outcome.",
		}, []string{"feed", "outcome"}),
		FeedDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_request_duration_seconds",
			Help:      "FMI feed request duration in seconds, parsing included.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"feed"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Reverse geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Nominatim API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when reverse geocoding is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.RefreshCycles,
		m.CycleDuration,
		m.RefresherRunning,
		m.SnapshotsPublished,
		m.StrikesRetained,
		m.FeedRequests,
		m.FeedDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewUnregisteredMetrics()
}

// NewUnregisteredMetrics creates Metrics that are not registered with the
// default registry, for one-shot tools that expose no /metrics endpoint.
func NewUnregisteredMetrics() *Metrics {
	return &Metrics{
		RefreshCycles:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "refresh_cycles_total"}, []string{"outcome"}),
		CycleDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "refresh_cycle_duration_seconds"}),
		RefresherRunning:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "refresher_running"}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "snapshots_published_total"}),
		StrikesRetained:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "lightning_strikes_retained"}),
		FeedRequests:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "feed_requests_total"}, []string{"feed", "outcome"}),
		FeedDuration:       prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "feed_request_duration_seconds"}, []string{"feed"}),
		GeocodeRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "geocode_requests_total"}, []string{"outcome"}),
		GeocodeCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "geocode_cache_total"}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "geocode_api_duration_seconds"}),
		GeocodeEnabled:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "geocode_enabled"}),
	}
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the proxy.
type Metrics struct {
	// Upstream metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: upstream={cyclone,warnings}, outcome={success,transport_error,decode_error,internal_error}
	UpstreamDuration *prometheus.HistogramVec // labels: upstream={cyclone,warnings}

	// Handler metrics.
	Responses *prometheus.CounterVec // labels: route, status

	// Warning metrics.
	WarningsFetched   prometheus.Counter
	WarningsMatched   prometheus.Counter
	WarningsPublished *prometheus.CounterVec // labels: outcome={success,error}
	PublisherEnabled  prometheus.Gauge
}

// NewMetrics creates and registers all proxy metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewMetricsWith(prometheus.NewRegistry())
}

// NewMetricsWith creates all proxy metrics and registers them with reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cwa_proxy",
			Name:      "upstream_requests_total",
			Help:      "CWA upstream requests by upstream and outcome.",
		}, []string{"upstream", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cwa_proxy",
			Name:      "upstream_duration_seconds",
			Help:      "CWA upstream request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"upstream"}),
		Responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cwa_proxy",
			Name:      "responses_total",
			Help:      "Proxy responses by route and HTTP status.",
		}, []string{"route", "status"}),
		WarningsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cwa_proxy",
			Name:      "warnings_fetched_total",
			Help:      "Total RSS items read from the warnings feed.",
		}),
		WarningsMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cwa_proxy",
			Name:      "warnings_matched_total",
			Help:      "Total RSS items kept by the keyword filter.",
		}),
		WarningsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cwa_proxy",
			Name:      "warnings_published_total",
			Help:      "Matched warnings published to Kafka by outcome.",
		}, []string{"outcome"}),
		PublisherEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cwa_proxy",
			Name:      "publisher_enabled",
			Help:      "1 when the Kafka warning publisher is enabled, 0 otherwise.",
		}),
	}

	reg.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.Responses,
		m.WarningsFetched,
		m.WarningsMatched,
		m.WarningsPublished,
		m.PublisherEnabled,
	)

	return m
}

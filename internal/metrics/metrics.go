package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeInvalid       = "invalid"
	OutcomeUpstreamError = "upstream_error"
	OutcomeFailure       = "failure"
)

type Metrics struct {
	registry         *prometheus.Registry
	searchRequests   *prometheus.CounterVec
	upstreamDuration prometheus.Histogram
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		searchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flightproxy",
			Name:      "search_requests_total",
			Help:      "Flight search requests by outcome.",
		}, []string{"outcome"}),
		upstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flightproxy",
			Name:      "upstream_duration_seconds",
			Help:      "Duration of flight offer calls to the upstream provider.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	registry.MustRegister(m.searchRequests, m.upstreamDuration)
	return m
}

func (m *Metrics) ObserveSearch(outcome string) {
	if m == nil {
		return
	}
	m.searchRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveUpstream(d time.Duration) {
	if m == nil {
		return
	}
	m.upstreamDuration.Observe(d.Seconds())
}

func (m *Metrics) SearchRequests() *prometheus.CounterVec {
	return m.searchRequests
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

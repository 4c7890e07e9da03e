package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the engine's Prometheus metrics on a private registry so
// the /metrics endpoint only exposes what this service owns.
type Collector struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	SubReviewsSubmitted  *prometheus.CounterVec
	RatingsApproved      prometheus.Counter
	CalibrationsDecided  *prometheus.CounterVec
	CyclesLocked         prometheus.Counter
	ConcurrencyConflicts prometheus.Counter
}

func New() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "perfreview",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status class.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "perfreview",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		SubReviewsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "perfreview",
			Name:      "sub_reviews_submitted_total",
			Help:      "Sub-review submissions by kind.",
		}, []string{"kind"}),
		RatingsApproved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "perfreview",
			Name:      "ratings_approved_total",
			Help:      "Ratings moved to approved.",
		}),
		CalibrationsDecided: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "perfreview",
			Name:      "calibrations_decided_total",
			Help:      "Calibration decisions by outcome.",
		}, []string{"outcome"}),
		CyclesLocked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "perfreview",
			Name:      "cycles_locked_total",
			Help:      "Review cycles locked.",
		}),
		ConcurrencyConflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "perfreview",
			Name:      "concurrency_conflicts_total",
			Help:      "Writes rejected by optimistic concurrency checks.",
		}),
	}
}

func (c *Collector) RecordHTTP(method, route string, status int, duration time.Duration) {
	class := "2xx"
	switch {
	case status >= 500:
		class = "5xx"
	case status >= 400:
		class = "4xx"
	case status >= 300:
		class = "3xx"
	}
	c.httpRequests.WithLabelValues(method, route, class).Inc()
	c.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

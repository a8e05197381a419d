// Package metrics exposes Prometheus collectors for backend calls and the
// local web UI.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dynbook"

var (
	// BackendRequestsTotal counts calls to the dynamic-book API by operation and status.
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Total number of requests sent to the dynamic-book API",
		},
		[]string{"operation", "status"},
	)

	// BackendRequestDuration observes API latency by operation.
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Dynamic-book API request duration in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"operation"},
	)

	// UIRequestsTotal counts requests served by the local web UI.
	UIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ui",
			Name:      "requests_total",
			Help:      "Total number of requests served by the web UI",
		},
		[]string{"method", "route", "status"},
	)

	// StoriesGeneratedTotal counts successful scenario generations.
	StoriesGeneratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stories_generated_total",
			Help:      "Total number of alternate storylines generated",
		},
	)
)

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PredictionsTotal counts completed predictions by the tier that produced them.
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcast_predictions_total",
			Help: "Total number of predictions served, by source",
		},
		[]string{"source"},
	)

	// FallbacksTotal counts transitions into the synthetic fallback, by error kind.
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcast_fallbacks_total",
			Help: "Total number of synthetic fallbacks, by error kind",
		},
		[]string{"kind"},
	)

	// FetchAttemptsTotal counts individual market-data attempts.
	FetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcast_fetch_attempts_total",
			Help: "Market data fetch attempts, by outcome",
		},
		[]string{"outcome"},
	)

	// ModelLoadsTotal counts registry loads by how the ticker was matched.
	ModelLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcast_model_loads_total",
			Help: "Model registry resolutions that reached the store, by match",
		},
		[]string{"match"},
	)

	// HTTPRequestDuration observes API latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockcast_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

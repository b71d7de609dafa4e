// Package metrics holds the Prometheus collectors shared by the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "productcat_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "productcat_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	UpstreamAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "productcat_upstream_attempts_total",
			Help: "Retailer API request attempts by step and outcome",
		},
		[]string{"step", "outcome"},
	)

	ModelCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "productcat_model_calls_total",
			Help: "Language model calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	ModelDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "productcat_model_call_duration_seconds",
			Help:    "Language model call latency",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"provider"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "productcat_cache_lookups_total",
			Help: "Categorization cache lookups by result",
		},
		[]string{"variant", "result"},
	)
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, route pattern, and status
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "labelcheck_http_requests_total",
		Help: "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks HTTP request latency by method and route pattern
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "labelcheck_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// CacheHits counts fresh cache reads by namespace
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "labelcheck_cache_hits_total",
		Help: "Cache hits by namespace",
	}, []string{"namespace"})

	// CacheMisses counts cache misses (absent, expired, or unreadable) by namespace
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "labelcheck_cache_misses_total",
		Help: "Cache misses by namespace",
	}, []string{"namespace"})

	// SourceRequestsTotal counts upstream product-source requests by source and outcome
	SourceRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "labelcheck_source_requests_total",
		Help: "Upstream source requests by source and outcome (success, not_found, error)",
	}, []string{"source", "outcome"})

	// ModelRequestsTotal counts generative model calls by outcome
	ModelRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "labelcheck_model_requests_total",
		Help: "Generative model requests by outcome (success, error, disabled)",
	}, []string{"outcome"})

	// ModelLatency tracks generative model call latency
	ModelLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "labelcheck_model_latency_seconds",
		Help:    "Generative model request latency",
		Buckets: []float64{0.5, 1, 2, 5, 10, 15},
	})
)

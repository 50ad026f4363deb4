package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kitaplik/reading-assistant/internal/core/domain"
)

// SearchMetrics implements the orchestrator's observer contract over a
// dedicated Prometheus registry.
type SearchMetrics struct {
	registry *prometheus.Registry

	searchTotal    *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	stageDuration  *prometheus.HistogramVec
	bucketSize     *prometheus.HistogramVec
	strategyErrors *prometheus.CounterVec
}

func NewSearchMetrics(service string) *SearchMetrics {
	registry := prometheus.NewRegistry()

	searchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ra",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total search requests by route mode, tail policy and cache outcome.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"mode", "tail_policy", "cache"},
	)
	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ra",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "End-to-end search duration in seconds by route mode.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"mode"},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ra",
			Subsystem: "search",
			Name:      "stage_duration_seconds",
			Help:      "Per-stage duration in seconds (route, expand, retrieve, fuse, rerank).",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"stage"},
	)
	bucketSize := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ra",
			Subsystem: "search",
			Name:      "bucket_size",
			Help:      "Candidate counts per strategy bucket after variant merging.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"bucket"},
	)
	strategyErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ra",
			Subsystem: "search",
			Name:      "strategy_failures_total",
			Help:      "Strategy calls that degraded the result instead of failing it.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"bucket"},
	)

	registry.MustRegister(searchTotal, searchDuration, stageDuration, bucketSize, strategyErrors)

	return &SearchMetrics{
		registry:       registry,
		searchTotal:    searchTotal,
		searchDuration: searchDuration,
		stageDuration:  stageDuration,
		bucketSize:     bucketSize,
		strategyErrors: strategyErrors,
	}
}

func (m *SearchMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *SearchMetrics) ObserveSearch(mode domain.RetrievalMode, policy string, cacheHit bool, duration time.Duration) {
	cache := "miss"
	if cacheHit {
		cache = "hit"
	}
	m.searchTotal.WithLabelValues(string(mode), policy, cache).Inc()
	m.searchDuration.WithLabelValues(string(mode)).Observe(duration.Seconds())
}

func (m *SearchMetrics) ObserveStage(stage string, duration time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

func (m *SearchMetrics) ObserveBucket(bucket domain.Bucket, size int) {
	m.bucketSize.WithLabelValues(string(bucket)).Observe(float64(size))
}

func (m *SearchMetrics) StrategyFailure(bucket domain.Bucket) {
	m.strategyErrors.WithLabelValues(string(bucket)).Inc()
}

package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EngineMetrics exposes the engine's Prometheus instrumentation.
type EngineMetrics struct {
	RecommendationRequests *prometheus.CounterVec
	RecommendationLatency  prometheus.Histogram
	StrategyResults        *prometheus.CounterVec
	CacheHits              *prometheus.CounterVec
	FeedbackEvents         *prometheus.CounterVec
}

func NewEngineMetrics() *EngineMetrics {
	return &EngineMetrics{
		RecommendationRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cinerec_recommendation_requests_total",
			Help: "Recommendation requests by outcome",
		}, []string{"status"}),
		RecommendationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cinerec_recommendation_duration_seconds",
			Help:    "End-to-end recommendation generation latency",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		StrategyResults: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cinerec_strategy_results_total",
			Help: "Results produced per strategy",
		}, []string{"strategy"}),
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cinerec_recommendation_cache_total",
			Help: "Recommendation cache lookups by outcome",
		}, []string{"outcome"}),
		FeedbackEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cinerec_feedback_events_total",
			Help: "Recommendation feedback events by kind",
		}, []string{"feedback"}),
	}
}

func (m *EngineMetrics) ObserveRequest(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RecommendationRequests.WithLabelValues(status).Inc()
	m.RecommendationLatency.Observe(duration.Seconds())
}

// Package metrics exposes Prometheus metrics for the recommendation engine and HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "memefeed_recommendations_total",
			Help: "Total number of recommendation lists computed",
		},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "memefeed_recommend_duration_seconds",
			Help:    "Time to aggregate the preference vector and rank the store",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	FeedbackEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memefeed_feedback_events_total",
			Help: "Total number of accepted feedback events",
		},
		[]string{"action"},
	)

	FeedbackRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "memefeed_feedback_rejected_total",
			Help: "Total number of feedback events rejected for an invalid index or action",
		},
	)

	StoreItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "memefeed_store_items",
			Help: "Number of items in the active vector store",
		},
	)

	StoreReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memefeed_store_reloads_total",
			Help: "Vector store reload attempts triggered by data file changes",
		},
		[]string{"result"}, // "ok", "load_error", "rejected"
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memefeed_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
)

// Package metrics defines the Prometheus collectors for movierec.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendations counts title lookups by outcome (ok, not_found).
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_recommendations_total",
			Help: "Title recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	// HistoryUploads counts watch-history uploads by outcome
	// (cards, empty, parse_error).
	HistoryUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_history_uploads_total",
			Help: "Watch-history uploads by outcome",
		},
		[]string{"outcome"},
	)

	// EnrichmentCalls counts outbound enrichment calls by collaborator
	// (poster, platforms) and outcome.
	EnrichmentCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_enrichment_calls_total",
			Help: "Outbound enrichment calls by collaborator and outcome",
		},
		[]string{"collaborator", "outcome"},
	)

	// EnrichmentDuration observes outbound enrichment latency.
	EnrichmentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movierec_enrichment_duration_seconds",
			Help:    "Outbound enrichment call latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 10},
		},
		[]string{"collaborator"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "movierec_circuit_breaker_state",
			Help: "Enrichment circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)
)

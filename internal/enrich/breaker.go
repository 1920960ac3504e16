// Package enrich attaches poster images and streaming-platform guesses to
// recommended titles. Every collaborator here swallows its own failures and
// reports them as placeholder or sentinel values; nothing returns an error to
// the caller.
package enrich

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"movierec/internal/logging"
	"movierec/internal/metrics"
)

// newBreaker trips after five consecutive failures and lets a single trial
// request through after 30 seconds.
func newBreaker[T any](name string) *gobreaker.CircuitBreaker[T] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			l := logging.With().Str("breaker", name).Logger()
			l.Info().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
}

// isSuccessful does not count a caller cancelling its own request against
// the upstream.
func isSuccessful(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func observe(collaborator, outcome string, start time.Time) {
	metrics.EnrichmentCalls.WithLabelValues(collaborator, outcome).Inc()
	metrics.EnrichmentDuration.WithLabelValues(collaborator).Observe(time.Since(start).Seconds())
}

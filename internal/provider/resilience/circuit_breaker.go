// Package resilience wraps calls to external lookup services with a circuit
// breaker, bounded retries and per-provider health tracking.
package resilience

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig holds configuration for a provider's circuit breaker.
type BreakerConfig struct {
	// MaxRequests is the number of probe requests allowed while half-open.
	MaxRequests uint32

	// Interval clears the failure counts while closed. Zero keeps them until
	// the state changes.
	Interval time.Duration

	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration

	// ConsecutiveFailures trips the breaker once reached.
	ConsecutiveFailures uint32

	// OnStateChange is called on every transition.
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultBreakerConfig returns the breaker settings used for lookup providers.
// Position lookups are optional, so the breaker opens quickly and stays open
// long enough to keep a failing service off the request path.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         1,
		Interval:            time.Minute,
		OpenTimeout:         30 * time.Second,
		ConsecutiveFailures: 3,
	}
}

func newBreaker[T any](name string, cfg BreakerConfig) *gobreaker.CircuitBreaker[T] {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 3
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: cfg.OnStateChange,
	}

	return gobreaker.NewCircuitBreaker[T](settings)
}

// StateName returns the lower-case name of a breaker state as reported by
// the status endpoint.
func StateName(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half_open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

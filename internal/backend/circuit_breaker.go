package backend

import (
	"fmt"
	"net/http"

	"proedualt/internal/config"
	"proedualt/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker wraps backend round trips with the circuit breaker pattern.
// Only requests that never completed count as failures; any HTTP response,
// including 4xx/5xx business errors, is a success for the breaker.
type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[*http.Response]
}

// NewCircuitBreaker creates a circuit breaker, or nil when disabled
func NewCircuitBreaker(name string, cfg config.CircuitBreakerConfig, logger *errors.Logger) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("Backend-%s", name),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests &&
				failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.MaxRequests,
				"failure_threshold", cfg.FailureThreshold)
		},
	}

	return &CircuitBreaker{
		cb: gobreaker.NewCircuitBreaker[*http.Response](settings),
	}
}

// Execute executes the provided function with circuit breaker protection
func (cb *CircuitBreaker) Execute(fn func() (*http.Response, error)) (*http.Response, error) {
	if cb == nil || cb.cb == nil {
		return fn()
	}
	return cb.cb.Execute(fn)
}

// GetStats returns circuit breaker statistics
func (cb *CircuitBreaker) GetStats() map[string]any {
	if cb == nil || cb.cb == nil {
		return map[string]any{
			"enabled": false,
		}
	}

	return map[string]any{
		"name":    cb.cb.Name(),
		"state":   cb.cb.State().String(),
		"counts":  cb.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true if the circuit breaker is in closed state
func (cb *CircuitBreaker) IsHealthy() bool {
	if cb == nil || cb.cb == nil {
		return true
	}
	return cb.cb.State() == gobreaker.StateClosed
}

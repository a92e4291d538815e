// Package breaker wraps store adapters in circuit breakers. While a breaker is
// open, calls fail immediately with domain.ErrPersistence instead of waiting
// on a dead backend.
package breaker

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/geoclick/clicktracker/internal/core/domain"
)

// Config controls when a breaker opens and how long it stays open.
type Config struct {
	FailureThreshold uint32
	OpenTimeout      time.Duration
	HalfOpenRequests uint32
}

func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenRequests: 1,
	}
}

func newCircuitBreaker(name string, cfg Config, log zerolog.Logger) *gobreaker.CircuitBreaker[any] {
	if cfg.FailureThreshold == 0 {
		cfg = DefaultConfig()
	}
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// Only backend failures count; not-found, duplicates and friends are
		// normal answers from a healthy store.
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, domain.ErrPersistence)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
}

func execute[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%s: %w: %w", cb.Name(), domain.ErrPersistence, err)
		}
		return zero, err
	}
	out, _ := res.(T)
	return out, nil
}

func executeErr(cb *gobreaker.CircuitBreaker[any], fn func() error) error {
	_, err := execute(cb, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

package core

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy determines retry behavior for failed attempts.
type RetryPolicy interface {
	// NextDelay returns the delay before the next attempt and whether to retry.
	// If ok is false, no more attempts should be made.
	// attempt starts at 0 for the first retry after the initial failure.
	NextDelay(attempt int, err error) (delay time.Duration, ok bool)
}

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retries after the first attempt (0..10)
	BaseDelay  time.Duration // Delay before the first retry (default: 250ms)
	MaxDelay   time.Duration // Delay cap (default: 3s)
}

// Backoff defaults. The same schedule applies to transport failures
// and to HTTP 429/5xx responses.
const (
	DefaultBaseDelay = 250 * time.Millisecond
	DefaultMaxDelay  = 3 * time.Second
)

// NewRetryPolicy creates an exponential retry policy without jitter:
// delay = min(BaseDelay * 2^attempt, MaxDelay).
func NewRetryPolicy(cfg RetryConfig) RetryPolicy {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxDelay
	}
	return &exponentialBackoff{cfg: cfg}
}

type exponentialBackoff struct {
	cfg RetryConfig
}

func (e *exponentialBackoff) NextDelay(attempt int, err error) (time.Duration, bool) {
	if attempt >= e.cfg.MaxRetries {
		return 0, false
	}
	if !IsRetryable(err) {
		return 0, false
	}
	return Backoff(attempt, e.cfg.BaseDelay, e.cfg.MaxDelay), true
}

// Backoff returns min(base * 2^attempt, ceiling).
func Backoff(attempt int, base, ceiling time.Duration) time.Duration {
	delay := base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= ceiling {
			return ceiling
		}
	}
	return min(delay, ceiling)
}

// IsRetryable determines if an error should trigger another attempt:
// timeouts, network failures and HTTP 429/5xx.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// The caller gave up; per-attempt deadlines surface as ErrTimeout instead.
	if errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrNetwork) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}

	return false
}

// IsRetryableStatus checks if an HTTP status code indicates a retryable error.
func IsRetryableStatus(status int) bool {
	return status == 429 || status >= 500
}

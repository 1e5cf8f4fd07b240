package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestBackoffSchedule(t *testing.T) {
	want := []time.Duration{
		250 * time.Millisecond,
		500 * time.Millisecond,
		1000 * time.Millisecond,
		2000 * time.Millisecond,
		3000 * time.Millisecond,
		3000 * time.Millisecond,
	}
	for attempt, expected := range want {
		got := Backoff(attempt, DefaultBaseDelay, DefaultMaxDelay)
		if got != expected {
			t.Errorf("Backoff(%d) = %v, want %v", attempt, got, expected)
		}
	}
}

func TestBackoffLargeAttemptStaysCapped(t *testing.T) {
	if got := Backoff(200, DefaultBaseDelay, DefaultMaxDelay); got != DefaultMaxDelay {
		t.Errorf("Backoff(200) = %v, want %v", got, DefaultMaxDelay)
	}
}

func TestRetryPolicyRetryableErrors(t *testing.T) {
	policy := NewRetryPolicy(RetryConfig{MaxRetries: 2})

	tests := []struct {
		name string
		err  error
	}{
		{"ErrTimeout", ErrTimeout},
		{"ErrNetwork", ErrNetwork},
		{"TimeoutError", &TimeoutError{Method: "GET", URL: "/v1/models", After: time.Second}},
		{"NetworkError", &NetworkError{Method: "GET", URL: "/v1/models", Err: errors.New("refused")}},
		{"APIError 429", &APIError{Status: 429, Err: ErrRemote}},
		{"APIError 500", &APIError{Status: 500, Err: ErrHTTP}},
		{"APIError 503", &APIError{Status: 503, Err: ErrHTTP}},
		{"wrapped APIError 502", fmt.Errorf("call: %w", &APIError{Status: 502, Err: ErrHTTP})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delay, ok := policy.NextDelay(0, tt.err)
			if !ok {
				t.Fatalf("NextDelay(0, %v) retry = false, want true", tt.err)
			}
			if delay != DefaultBaseDelay {
				t.Errorf("NextDelay(0) delay = %v, want %v", delay, DefaultBaseDelay)
			}
		})
	}
}

func TestRetryPolicyNonRetryableErrors(t *testing.T) {
	policy := NewRetryPolicy(RetryConfig{MaxRetries: 5})

	tests := []struct {
		name string
		err  error
	}{
		{"nil", nil},
		{"context.Canceled", context.Canceled},
		{"ErrSchema", &SchemaError{Target: "generate request", Message: "bad"}},
		{"ErrDecode", ErrDecode},
		{"APIError 400", &APIError{Status: 400, Err: ErrRemote}},
		{"APIError 401", &APIError{Status: 401, Err: ErrRemote}},
		{"APIError 404", &APIError{Status: 404, Err: ErrHTTP}},
		{"plain error", errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := policy.NextDelay(0, tt.err); ok {
				t.Errorf("NextDelay(0, %v) retry = true, want false", tt.err)
			}
		})
	}
}

func TestRetryPolicyStopsAtMaxRetries(t *testing.T) {
	policy := NewRetryPolicy(RetryConfig{MaxRetries: 2})

	for attempt := 0; attempt < 2; attempt++ {
		if _, ok := policy.NextDelay(attempt, ErrNetwork); !ok {
			t.Errorf("NextDelay(%d) retry = false, want true", attempt)
		}
	}
	if _, ok := policy.NextDelay(2, ErrNetwork); ok {
		t.Error("NextDelay(2) retry = true, want false after MaxRetries")
	}
}

func TestRetryPolicyZeroRetries(t *testing.T) {
	policy := NewRetryPolicy(RetryConfig{MaxRetries: 0})
	if _, ok := policy.NextDelay(0, ErrTimeout); ok {
		t.Error("NextDelay(0) retry = true, want false with MaxRetries=0")
	}
}

func TestRetryPolicyNegativeRetriesClamped(t *testing.T) {
	policy := NewRetryPolicy(RetryConfig{MaxRetries: -3})
	if _, ok := policy.NextDelay(0, ErrTimeout); ok {
		t.Error("negative MaxRetries should behave as zero")
	}
}

func TestIsRetryableStatus(t *testing.T) {
	tests := map[int]bool{
		200: false,
		400: false,
		401: false,
		404: false,
		422: false,
		429: true,
		500: true,
		502: true,
		503: true,
		504: true,
	}
	for status, want := range tests {
		if got := IsRetryableStatus(status); got != want {
			t.Errorf("IsRetryableStatus(%d) = %v, want %v", status, got, want)
		}
	}
}

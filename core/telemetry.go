package core

import "time"

// TelemetryHook receives notifications about request lifecycle events.
// Implementations can use this for logging, metrics, tracing, etc.
//
// # Security Considerations
//
// Events carry operational metadata only: method, path, timing, attempt
// counts and status. API keys, prompts, image payloads and SVG bodies are
// never included, so events can be logged as-is.
type TelemetryHook interface {
	// OnRequestStart is called once per logical operation, before the first attempt.
	OnRequestStart(e RequestStartEvent)

	// OnRequestEnd is called once per logical operation, after the last attempt.
	OnRequestEnd(e RequestEndEvent)
}

// RequestStartEvent contains metadata about a starting operation.
type RequestStartEvent struct {
	RequestID string    // Client-generated ID shared by all attempts
	Method    string    // HTTP method
	Path      string    // API path, e.g. /v1/svgs/generations
	Stream    bool      // Whether an event stream was requested
	Start     time.Time // When the operation started
}

// RequestEndEvent contains metadata about a completed operation.
type RequestEndEvent struct {
	RequestID string
	Method    string
	Path      string
	Stream    bool
	Start     time.Time
	End       time.Time
	Attempts  int   // Attempts made, including the first
	Status    int   // Last HTTP status, 0 if no response was received
	Err       error // Error if the operation failed, nil otherwise
}

// Duration returns the elapsed time for the operation.
func (e RequestEndEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// NoopTelemetryHook is a no-op implementation of TelemetryHook.
type NoopTelemetryHook struct{}

// OnRequestStart does nothing.
func (NoopTelemetryHook) OnRequestStart(RequestStartEvent) {}

// OnRequestEnd does nothing.
func (NoopTelemetryHook) OnRequestEnd(RequestEndEvent) {}

var _ TelemetryHook = NoopTelemetryHook{}

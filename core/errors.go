package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Sentinel errors for classification. Every typed error in this package
// unwraps to exactly one of these, so callers can branch with errors.Is.
var (
	ErrConfigInvalid = errors.New("config invalid")
	ErrConfigCorrupt = errors.New("config corrupt")
	ErrSchema        = errors.New("schema violation")
	ErrTimeout       = errors.New("request timed out")
	ErrNetwork       = errors.New("network error")
	ErrRemote        = errors.New("remote error")
	ErrHTTP          = errors.New("http error")
	ErrRequestFailed = errors.New("request failed")
	ErrDecode        = errors.New("decode error")
)

// Validation errors with actionable guidance.
var (
	ErrImageSource = errors.New("provide exactly one of an image URL or a base64 image payload")
	ErrWaitTimeout = errors.New("timed out waiting for generation")
)

// Kind is a stable, machine-readable name for an error class.
type Kind string

const (
	KindConfigInvalid Kind = "config_invalid"
	KindConfigCorrupt Kind = "config_corrupt"
	KindSchema        Kind = "schema_error"
	KindTimeout       Kind = "timeout_error"
	KindNetwork       Kind = "network_error"
	KindRemote        Kind = "remote_error"
	KindHTTP          Kind = "http_error"
	KindRequestFailed Kind = "request_failed"
	KindDecode        Kind = "decode_error"
	KindUnknown       Kind = "error"
)

// KindOf returns the outermost taxonomy kind of err.
// RequestFailed is checked first because it wraps the other transport kinds.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRequestFailed):
		return KindRequestFailed
	case errors.Is(err, ErrConfigInvalid):
		return KindConfigInvalid
	case errors.Is(err, ErrConfigCorrupt):
		return KindConfigCorrupt
	case errors.Is(err, ErrSchema):
		return KindSchema
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrRemote):
		return KindRemote
	case errors.Is(err, ErrHTTP):
		return KindHTTP
	case errors.Is(err, ErrDecode):
		return KindDecode
	default:
		return KindUnknown
	}
}

// ConfigError reports an invalid effective configuration or an unreadable
// config file. Err is ErrConfigInvalid or ErrConfigCorrupt.
type ConfigError struct {
	Path    string
	Field   string
	Message string
	Err     error
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	var b strings.Builder
	if errors.Is(e.Err, ErrConfigCorrupt) {
		b.WriteString("invalid config file")
		if e.Path != "" {
			b.WriteString(" " + e.Path)
		}
	} else {
		b.WriteString("invalid config")
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": %s", e.Field)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	return b.String()
}

// Unwrap returns the sentinel and the underlying cause.
func (e *ConfigError) Unwrap() []error {
	return unwrapPair(e.Err, e.Cause)
}

// SchemaError reports a request or response payload that violates its schema.
type SchemaError struct {
	// Target names the payload, e.g. "generate request" or "svg response".
	Target string
	Field  string
	// Message is the first violation.
	Message string
	// Issues lists every violation found, first one included.
	Issues []string
	Err    error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s: %s", e.Target, e.Field, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Target, e.Message)
}

// IsRequest reports whether the invalid payload is an outgoing request
// rather than a server response.
func (e *SchemaError) IsRequest() bool {
	return strings.HasSuffix(e.Target, "request")
}

// Unwrap returns ErrSchema and the specific rule error, if any.
func (e *SchemaError) Unwrap() []error {
	return unwrapPair(ErrSchema, e.Err)
}

// TimeoutError reports a single attempt that exceeded its deadline.
type TimeoutError struct {
	Method string
	URL    string
	After  time.Duration
	Err    error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %s: timed out after %s", e.Method, e.URL, e.After)
}

// Unwrap returns ErrTimeout and the transport error.
func (e *TimeoutError) Unwrap() []error {
	return unwrapPair(ErrTimeout, e.Err)
}

// NetworkError reports a transport-level failure such as a refused connection.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns ErrNetwork and the transport error.
func (e *NetworkError) Unwrap() []error {
	return unwrapPair(ErrNetwork, e.Err)
}

// APIError represents a non-2xx response from the API.
// Err is ErrRemote when the body was a recognizable error envelope,
// ErrHTTP otherwise.
type APIError struct {
	// Status is the envelope's status for ErrRemote, else the HTTP status.
	Status int
	// HTTPStatus is the status line of the response.
	HTTPStatus int

	StatusText string
	Code       string
	Message    string
	RequestID  string
	// Details carries the parsed body, or the raw text when it was not JSON.
	Details any
	Err     error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if errors.Is(e.Err, ErrRemote) {
		msg := fmt.Sprintf("HTTP %d %s: %s", e.Status, e.Code, e.Message)
		if e.RequestID != "" {
			msg += fmt.Sprintf(" (request_id=%s)", e.RequestID)
		}
		return msg
	}
	text := e.StatusText
	if text == "" {
		text = http.StatusText(e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, text)
}

// Unwrap returns the classification sentinel.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the HTTP status warrants another attempt.
// The envelope status is ignored.
func (e *APIError) Retryable() bool {
	if e.HTTPStatus != 0 {
		return IsRetryableStatus(e.HTTPStatus)
	}
	return IsRetryableStatus(e.Status)
}

// RequestFailedError is returned once every attempt has been used up.
type RequestFailedError struct {
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *RequestFailedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("request failed after %d attempts", e.Attempts)
	}
	return fmt.Sprintf("request failed after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap returns ErrRequestFailed and the last attempt's error.
func (e *RequestFailedError) Unwrap() []error {
	return unwrapPair(ErrRequestFailed, e.Err)
}

// GenerationFailedError reports a generation the server marked as failed.
type GenerationFailedError struct {
	ID     string
	Reason string
}

// Error implements the error interface.
func (e *GenerationFailedError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "unknown error"
	}
	return fmt.Sprintf("generation %s failed: %s", e.ID, reason)
}

func unwrapPair(sentinel, cause error) []error {
	if cause == nil {
		return []error{sentinel}
	}
	return []error{sentinel, cause}
}

package quiver

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/petal-labs/svgen/core"
)

// Config holds configuration for the Quiver client.
type Config struct {
	// APIKey is sent as a bearer token on every request.
	APIKey core.Secret

	// BaseURL is the API endpoint. Defaults to https://api.quiver.ai
	BaseURL string

	// HTTPClient is the HTTP client to use. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Timeout bounds each individual attempt, body read included.
	Timeout time.Duration

	// Retries is the number of additional attempts after the first (0..10).
	Retries int

	// RetryPolicy overrides the default exponential backoff and Retries.
	RetryPolicy core.RetryPolicy

	// UserAgent is sent as the User-Agent header.
	UserAgent string

	// Logger receives per-attempt debug logs. Defaults to a no-op logger.
	Logger *zap.Logger

	// Telemetry receives request lifecycle events.
	Telemetry core.TelemetryHook
}

const (
	// DefaultBaseURL is the default API endpoint.
	DefaultBaseURL = "https://api.quiver.ai"

	// DefaultTimeout is the default per-attempt timeout.
	DefaultTimeout = 60 * time.Second

	// DefaultRetries is the default number of retries.
	DefaultRetries = 2

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "svgen"
)

// Option configures the client.
type Option func(*Config)

// WithBaseURL sets the API endpoint.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithRetries sets how many times a failed attempt is retried.
func WithRetries(n int) Option {
	return func(c *Config) {
		c.Retries = n
	}
}

// WithRetryPolicy replaces the backoff policy. The policy decides the retry
// count as well, so WithRetries has no effect when it is set.
func WithRetryPolicy(policy core.RetryPolicy) Option {
	return func(c *Config) {
		c.RetryPolicy = policy
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Config) {
		c.UserAgent = ua
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithTelemetry sets the telemetry hook.
func WithTelemetry(hook core.TelemetryHook) Option {
	return func(c *Config) {
		c.Telemetry = hook
	}
}

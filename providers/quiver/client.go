// Package quiver is the HTTP client for the Quiver SVG generation API.
package quiver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/petal-labs/svgen/core"
	"github.com/petal-labs/svgen/providers/internal/normalize"
)

const (
	pathModels         = "/v1/models"
	pathGenerations    = "/v1/svgs/generations"
	pathVectorizations = "/v1/svgs/vectorizations"
)

// Client is the API client. Every method performs one logical operation
// through the retrying executor. Client is safe for concurrent use.
type Client struct {
	config      Config
	logger      *zap.Logger
	telemetry   core.TelemetryHook
	retryPolicy core.RetryPolicy

	// sleep waits between attempts and between polls.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a client with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	cfg := Config{
		APIKey:     core.NewSecret(apiKey),
		BaseURL:    DefaultBaseURL,
		HTTPClient: http.DefaultClient,
		Timeout:    DefaultTimeout,
		Retries:    DefaultRetries,
		UserAgent:  DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	c := &Client{
		config:      cfg,
		logger:      cfg.Logger,
		telemetry:   cfg.Telemetry,
		retryPolicy: cfg.RetryPolicy,
		sleep:       sleepContext,
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.telemetry == nil {
		c.telemetry = core.NoopTelemetryHook{}
	}
	if c.retryPolicy == nil {
		c.retryPolicy = core.NewRetryPolicy(core.RetryConfig{MaxRetries: cfg.Retries})
	}
	return c
}

// BaseURL returns the endpoint without a trailing slash.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// ListModels returns the models available to the caller.
func (c *Client) ListModels(ctx context.Context) (*core.ModelList, error) {
	data, err := c.requestJSON(ctx, call{method: http.MethodGet, path: pathModels})
	if err != nil {
		return nil, err
	}

	var list core.ModelList
	if err := core.Decode(core.Open, data, &list); err != nil {
		return nil, normalize.DecodeError(err)
	}
	return &list, nil
}

// GetModel returns a single model by ID.
func (c *Client) GetModel(ctx context.Context, id string) (*core.Model, error) {
	data, err := c.requestJSON(ctx, call{method: http.MethodGet, path: pathModels + "/" + url.PathEscape(id)})
	if err != nil {
		return nil, err
	}

	var model core.Model
	if err := core.Decode(core.Open, data, &model); err != nil {
		return nil, normalize.DecodeError(err)
	}
	return &model, nil
}

// Generate creates SVGs from a text prompt and waits for the full response.
// req.Stream is ignored.
func (c *Client) Generate(ctx context.Context, req *core.GenerateRequest) (*core.SvgResponse, error) {
	payload := *req
	payload.Stream = false
	return c.postSvg(ctx, pathGenerations, &payload)
}

// GenerateStream creates SVGs from a text prompt as an event stream.
// The stream is read to completion before decoding.
func (c *Client) GenerateStream(ctx context.Context, req *core.GenerateRequest) ([]core.SSEEvent, error) {
	payload := *req
	payload.Stream = true
	return c.postStream(ctx, pathGenerations, &payload)
}

// Vectorize converts a raster image into SVGs.
// req.Stream is ignored.
func (c *Client) Vectorize(ctx context.Context, req *core.VectorizeRequest) (*core.SvgResponse, error) {
	payload := *req
	payload.Stream = false
	return c.postSvg(ctx, pathVectorizations, &payload)
}

// VectorizeStream converts a raster image into SVGs as an event stream.
func (c *Client) VectorizeStream(ctx context.Context, req *core.VectorizeRequest) ([]core.SSEEvent, error) {
	payload := *req
	payload.Stream = true
	return c.postStream(ctx, pathVectorizations, &payload)
}

// GetGeneration returns the current payload of a generation. The status
// endpoint has no fixed schema, so the body is returned unparsed.
func (c *Client) GetGeneration(ctx context.Context, id string) (json.RawMessage, error) {
	return c.requestJSON(ctx, call{method: http.MethodGet, path: pathGenerations + "/" + url.PathEscape(id)})
}

func (c *Client) postSvg(ctx context.Context, path string, req core.Request) (*core.SvgResponse, error) {
	body, err := encodeRequest(req)
	if err != nil {
		return nil, err
	}

	data, err := c.requestJSON(ctx, call{method: http.MethodPost, path: path, body: body})
	if err != nil {
		return nil, err
	}
	return core.ValidateResponse(data)
}

func (c *Client) postStream(ctx context.Context, path string, req core.Request) ([]core.SSEEvent, error) {
	body, err := encodeRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.execute(ctx, call{method: http.MethodPost, path: path, body: body, stream: true})
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, normalize.Classify(resp.Status, resp.StatusText, resp.Body)
	}
	return core.DecodeSSE(string(resp.Body)), nil
}

// requestJSON executes cl and returns the JSON body of a 2xx response.
// A blank body is treated as an empty object.
func (c *Client) requestJSON(ctx context.Context, cl call) (json.RawMessage, error) {
	resp, err := c.execute(ctx, cl)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, normalize.Classify(resp.Status, resp.StatusText, resp.Body)
	}

	trimmed := bytes.TrimSpace(resp.Body)
	if len(trimmed) == 0 {
		return json.RawMessage("{}"), nil
	}

	var payload json.RawMessage
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, normalize.DecodeError(err)
	}
	return payload, nil
}

// encodeRequest validates req and marshals it. Invalid requests are never sent.
func encodeRequest(req core.Request) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return body, nil
}

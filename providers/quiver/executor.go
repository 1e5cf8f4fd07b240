package quiver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/petal-labs/svgen/core"
	"github.com/petal-labs/svgen/providers/internal/normalize"
)

const (
	headerRequestID   = "X-Request-Id"
	contentTypeJSON   = "application/json"
	contentTypeStream = "text/event-stream"
)

// call describes one logical API operation.
type call struct {
	method string
	path   string
	body   []byte
	stream bool
}

// rawResponse is a fully read HTTP response.
type rawResponse struct {
	Status     int
	StatusText string
	Header     http.Header
	Body       []byte
}

func (r *rawResponse) ok() bool {
	return r.Status >= 200 && r.Status < 300
}

// execute runs c with bounded retries.
//
// Each attempt gets its own deadline of config.Timeout. Transport failures
// and 429/5xx responses are retried while the policy allows; once it refuses,
// the last attempt's error is wrapped in a *core.RequestFailedError. Any
// other response, successful or not, is returned as-is for the caller to
// interpret.
func (c *Client) execute(ctx context.Context, cl call) (*rawResponse, error) {
	target := c.config.BaseURL + cl.path
	if _, err := url.Parse(target); err != nil {
		return nil, fmt.Errorf("invalid request URL: %w", err)
	}

	requestID := uuid.NewString()
	start := time.Now()
	c.telemetry.OnRequestStart(core.RequestStartEvent{
		RequestID: requestID,
		Method:    cl.method,
		Path:      cl.path,
		Stream:    cl.stream,
		Start:     start,
	})

	var (
		attempts int
		status   int
		err      error
		resp     *rawResponse
	)
	defer func() {
		c.telemetry.OnRequestEnd(core.RequestEndEvent{
			RequestID: requestID,
			Method:    cl.method,
			Path:      cl.path,
			Stream:    cl.stream,
			Start:     start,
			End:       time.Now(),
			Attempts:  attempts,
			Status:    status,
			Err:       err,
		})
	}()

	log := c.logger.With(
		zap.String("request_id", requestID),
		zap.String("method", cl.method),
		zap.String("path", cl.path),
	)

	for attempt := 0; ; attempt++ {
		attempts = attempt + 1

		var lastErr error
		resp, lastErr = c.attempt(ctx, cl, target, requestID)
		switch {
		case lastErr != nil:
			if ctx.Err() != nil {
				err = ctx.Err()
				return nil, err
			}
			log.Debug("attempt failed", zap.Int("attempt", attempts), zap.Error(lastErr))
		case core.IsRetryableStatus(resp.Status):
			status = resp.Status
			lastErr = normalize.Classify(resp.Status, resp.StatusText, resp.Body)
			log.Debug("attempt returned retryable status", zap.Int("attempt", attempts), zap.Int("status", resp.Status))
		default:
			status = resp.Status
			log.Debug("attempt completed", zap.Int("attempt", attempts), zap.Int("status", resp.Status))
			return resp, nil
		}

		delay, retry := c.retryPolicy.NextDelay(attempt, lastErr)
		if !retry {
			err = &core.RequestFailedError{Attempts: attempts, Err: lastErr}
			return nil, err
		}

		log.Info("retrying request", zap.Int("attempt", attempts), zap.Duration("backoff", delay), zap.Error(lastErr))
		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			err = sleepErr
			return nil, err
		}
	}
}

// attempt performs a single round trip under its own deadline and reads the
// whole body before the deadline is released.
func (c *Client) attempt(ctx context.Context, cl call, target, requestID string) (*rawResponse, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var body io.Reader
	if cl.body != nil {
		body = bytes.NewReader(cl.body)
	}

	req, err := http.NewRequestWithContext(attemptCtx, cl.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range c.buildHeaders(cl, requestID) {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return nil, normalize.Transport(attemptCtx, cl.method, target, c.config.Timeout, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, normalize.Transport(attemptCtx, cl.method, target, c.config.Timeout, err)
	}

	return &rawResponse{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// buildHeaders constructs the HTTP headers for an API request.
func (c *Client) buildHeaders(cl call, requestID string) http.Header {
	headers := make(http.Header)

	headers.Set("Authorization", "Bearer "+c.config.APIKey.Expose())
	headers.Set("User-Agent", c.config.UserAgent)
	headers.Set(headerRequestID, requestID)

	if cl.stream {
		headers.Set("Accept", contentTypeStream)
	} else {
		headers.Set("Accept", contentTypeJSON)
	}
	if cl.body != nil {
		headers.Set("Content-Type", contentTypeJSON)
	}

	return headers
}

// statusText returns the reason phrase of resp, e.g. "Service Unavailable".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

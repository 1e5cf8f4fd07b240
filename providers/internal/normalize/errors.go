// Package normalize classifies raw HTTP outcomes into core errors.
package normalize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/petal-labs/svgen/core"
)

// Classify converts a non-2xx response into a *core.APIError.
//
// A body matching the error envelope yields ErrRemote with the envelope's
// status, code, message and request ID. Any other body yields ErrHTTP with
// the parsed JSON, or the raw text when it is not JSON, as details.
func Classify(status int, statusText string, body []byte) error {
	if statusText == "" {
		statusText = http.StatusText(status)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return HTTPError(status, statusText, nil)
	}

	var payload any
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return HTTPError(status, statusText, string(body))
	}

	if env, ok := core.ParseErrorEnvelope(trimmed); ok {
		return RemoteError(status, env, statusText, payload)
	}

	return HTTPError(status, statusText, payload)
}

// RemoteError builds an ErrRemote error from a parsed envelope received with
// the given HTTP status.
func RemoteError(httpStatus int, env *core.ErrorEnvelope, statusText string, details any) error {
	apiErr := &core.APIError{
		Status:     *env.Status,
		HTTPStatus: httpStatus,
		StatusText: statusText,
		Code:       *env.Code,
		Message:    env.Message,
		Details:    details,
		Err:        core.ErrRemote,
	}
	if env.RequestID != nil {
		apiErr.RequestID = *env.RequestID
	}
	return apiErr
}

// HTTPError builds an ErrHTTP error for a response without an envelope.
func HTTPError(status int, statusText string, details any) error {
	if statusText == "" {
		statusText = http.StatusText(status)
	}
	return &core.APIError{
		Status:     status,
		HTTPStatus: status,
		StatusText: statusText,
		Message:    statusText,
		Details:    details,
		Err:        core.ErrHTTP,
	}
}

// Transport wraps a failed round trip. attemptCtx is the per-attempt
// context; when its deadline fired the failure is a timeout.
func Transport(attemptCtx context.Context, method, url string, timeout time.Duration, err error) error {
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &core.TimeoutError{Method: method, URL: url, After: timeout, Err: err}
	}
	return &core.NetworkError{Method: method, URL: url, Err: err}
}

// DecodeError wraps a 2xx body that could not be parsed.
func DecodeError(err error) error {
	return fmt.Errorf("%w: expected JSON response from API: %v", core.ErrDecode, err)
}

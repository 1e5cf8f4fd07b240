package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/petal-labs/svgen/core"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

var (
	errConflictingOutput = errors.New("use either --json or --plain, not both")
	errMissingAPIKey     = errors.New("missing API key: set SVGEN_API_KEY (or QUIVERAI_API_KEY) or run: printf 'KEY' | svgen cfg set apiKey -")
)

// exitError wraps an error with an exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func (e *exitError) ExitCode() int {
	return e.code
}

func exitWithCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

func usageError(err error) error {
	return exitWithCode(ExitUsage, err)
}

func usageErrorf(format string, args ...any) error {
	return usageError(fmt.Errorf(format, args...))
}

// exitCodeFor maps an error to a process exit status. Bad input (flags,
// request payloads, config values) exits 2; everything else, including a
// malformed server response, exits 1.
func exitCodeFor(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}

	var schemaErr *core.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		if schemaErr.IsRequest() {
			return ExitUsage
		}
		return ExitFailure
	case errors.Is(err, core.ErrConfigInvalid):
		return ExitUsage
	case isCobraUsageError(err):
		return ExitUsage
	default:
		return ExitFailure
	}
}

var cobraUsagePrefixes = []string{
	"unknown command",
	"unknown flag",
	"unknown shorthand flag",
	"accepts ",
	"requires at least",
	"required flag",
	"if any flags in the group",
	"invalid argument",
}

// isCobraUsageError detects argument errors cobra reports as plain strings.
func isCobraUsageError(err error) bool {
	msg := err.Error()
	for _, prefix := range cobraUsagePrefixes {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}

// reportError prints err and returns it with its exit code attached.
// In JSON mode the error is written to stdout as a single object.
func (a *App) reportError(err error) error {
	code := exitCodeFor(err)

	if a.jsonOutput {
		output := map[string]any{
			"error": errorPayload(err, code),
		}
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(output)
	} else {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		var apiErr *core.APIError
		if a.verbose && errors.As(err, &apiErr) && apiErr.Details != nil {
			if details, jerr := json.Marshal(apiErr.Details); jerr == nil {
				fmt.Fprintf(a.stderr, "  details: %s\n", details)
			}
		}
	}

	return exitWithCode(code, err)
}

func errorPayload(err error, code int) map[string]any {
	payload := map[string]any{
		"type":     string(core.KindOf(err)),
		"message":  err.Error(),
		"exitCode": code,
	}

	var apiErr *core.APIError
	if errors.As(err, &apiErr) {
		payload["status"] = apiErr.Status
		if apiErr.Code != "" {
			payload["code"] = apiErr.Code
		}
		if apiErr.RequestID != "" {
			payload["request_id"] = apiErr.RequestID
		}
	}
	var failed *core.RequestFailedError
	if errors.As(err, &failed) {
		payload["attempts"] = failed.Attempts
	}
	var schemaErr *core.SchemaError
	if errors.As(err, &schemaErr) && len(schemaErr.Issues) > 0 {
		payload["issues"] = schemaErr.Issues
	}
	return payload
}

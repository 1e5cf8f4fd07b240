package core

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// GenerationState is the coarse status of an asynchronous generation.
type GenerationState string

const (
	GenerationPending GenerationState = "pending"
	GenerationDone    GenerationState = "done"
	GenerationFailed  GenerationState = "failed"
)

// GenerationStatus is the result of InferGenerationState.
type GenerationStatus struct {
	State  GenerationState
	Reason string
}

var (
	doneStatuses    = []string{"done", "completed", "complete", "succeeded", "success"}
	pendingStatuses = []string{"queued", "pending", "processing", "running", "in_progress"}
	failedStatuses  = []string{"failed", "error", "cancelled", "canceled"}
)

// InferGenerationState guesses whether a generation payload is finished.
// The status endpoint has no fixed schema, so this looks at a few common
// shapes and defaults to pending.
func InferGenerationState(payload json.RawMessage) GenerationStatus {
	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil || doc == nil {
		return GenerationStatus{State: GenerationPending}
	}

	if data, ok := doc["data"].([]any); ok && len(data) > 0 {
		return GenerationStatus{State: GenerationDone}
	}

	message, _ := doc["message"].(string)

	switch status := doc["status"].(type) {
	case float64:
		if status >= 400 {
			if message == "" {
				message = fmt.Sprintf("HTTP %d", int(status))
			}
			return GenerationStatus{State: GenerationFailed, Reason: message}
		}
	case string:
		s := strings.ToLower(status)
		switch {
		case slices.Contains(doneStatuses, s):
			return GenerationStatus{State: GenerationDone}
		case slices.Contains(pendingStatuses, s):
			return GenerationStatus{State: GenerationPending}
		case slices.Contains(failedStatuses, s):
			if message == "" {
				message = "status=" + s
			}
			return GenerationStatus{State: GenerationFailed, Reason: message}
		}
	}

	return GenerationStatus{State: GenerationPending}
}

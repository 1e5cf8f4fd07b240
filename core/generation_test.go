package core

import "testing"

func TestInferGenerationState(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantState  GenerationState
		wantReason string
	}{
		{"data present", `{"id":"g","data":[{"svg":"<svg/>"}]}`, GenerationDone, ""},
		{"empty data", `{"id":"g","data":[]}`, GenerationPending, ""},
		{"status completed", `{"status":"Completed"}`, GenerationDone, ""},
		{"status running", `{"status":"running"}`, GenerationPending, ""},
		{"status in_progress", `{"status":"in_progress"}`, GenerationPending, ""},
		{"status failed with message", `{"status":"failed","message":"content policy"}`, GenerationFailed, "content policy"},
		{"status canceled", `{"status":"canceled"}`, GenerationFailed, "status=canceled"},
		{"numeric error status", `{"status":500}`, GenerationFailed, "HTTP 500"},
		{"numeric ok status", `{"status":200}`, GenerationPending, ""},
		{"unknown status", `{"status":"mystery"}`, GenerationPending, ""},
		{"not json", `<html>`, GenerationPending, ""},
		{"null", `null`, GenerationPending, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferGenerationState([]byte(tt.payload))
			if got.State != tt.wantState {
				t.Errorf("State = %q, want %q", got.State, tt.wantState)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.wantReason)
			}
		})
	}
}

package commands

import (
	"bytes"
	"encoding/json"
	"runtime"
	"strings"
	"testing"
)

func TestVersionVariables(t *testing.T) {
	// Verify default values are set
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if Commit == "" {
		t.Error("Commit should not be empty")
	}
	if BuildDate == "" {
		t.Error("BuildDate should not be empty")
	}
}

func TestVersionCommand(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, out string)
	}{
		{
			name: "human",
			args: []string{"version"},
			check: func(t *testing.T, out string) {
				if !strings.HasPrefix(out, "svgen "+Version+"\n") {
					t.Errorf("output = %q, want svgen %s header", out, Version)
				}
				if !strings.Contains(out, runtime.GOOS+"/"+runtime.GOARCH) {
					t.Errorf("output = %q, want platform", out)
				}
			},
		},
		{
			name: "plain",
			args: []string{"--plain", "version"},
			check: func(t *testing.T, out string) {
				if out != Version+"\n" {
					t.Errorf("output = %q, want %q", out, Version+"\n")
				}
			},
		},
		{
			name: "json",
			args: []string{"--json", "version"},
			check: func(t *testing.T, out string) {
				var info versionInfo
				if err := json.Unmarshal([]byte(out), &info); err != nil {
					t.Fatalf("invalid JSON %q: %v", out, err)
				}
				if info.Version != Version || info.GoVersion != runtime.Version() {
					t.Errorf("info = %+v", info)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			app := NewApp(WithIO(strings.NewReader(""), &stdout, &stderr))
			app.SetArgs(tt.args)
			if err := app.Execute(); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			tt.check(t, stdout.String())
		})
	}
}

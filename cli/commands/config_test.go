package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigSetGetUnset(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")

	res := run(t, "", "--config", path, "--plain", "config", "set", "model", "arrow-pro")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "model\n", res.stdout)

	res = run(t, "", "--config", path, "--plain", "cfg", "set", "timeout=30000", "retries=4")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "timeout\nretries\n", res.stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"timeout\": 30000,\n  \"retries\": 4,\n  \"model\": \"arrow-pro\"\n}\n", string(data))

	res = run(t, "", "--config", path, "--plain", "config", "get", "model", "timeout", "retries")
	require.NoError(t, res.err)
	assert.Equal(t, "model=arrow-pro\ntimeout=30000\nretries=4\n", res.stdout)

	res = run(t, "", "--config", path, "--json", "config", "get", "model")
	require.NoError(t, res.err)
	assert.JSONEq(t, `{"values":{"model":"arrow-pro"}}`, res.stdout)

	res = run(t, "", "--config", path, "--plain", "config", "unset", "model", "retries")
	require.NoError(t, res.err)
	assert.Equal(t, "model\nretries\n", res.stdout)

	res = run(t, "", "--config", path, "--plain", "config", "get", "model", "retries")
	require.NoError(t, res.err)
	assert.Equal(t, "model=arrow-preview\nretries=2\n", res.stdout)
}

func TestConfigEnvBeatsFile(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")

	res := run(t, "", "--config", path, "config", "set", "model", "from-file")
	require.NoError(t, res.err)

	t.Setenv("SVGEN_MODEL", "from-env")
	res = run(t, "", "--config", path, "--plain", "config", "get", "model")
	require.NoError(t, res.err)
	assert.Equal(t, "model=from-env\n", res.stdout)

	res = run(t, "", "--config", path, "--retries", "7", "--plain", "config", "get", "retries")
	require.NoError(t, res.err)
	assert.Equal(t, "retries=7\n", res.stdout)
}

func TestConfigSetSecret(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")

	res := run(t, "", "--config", path, "config", "set", "apiKey", "sk-argv")
	assert.Equal(t, ExitUsage, res.exitCode())
	assert.Contains(t, res.stderr, "refusing to set secret key")
	assert.NoFileExists(t, path)

	res = run(t, "sk-stdin\n", "--config", path, "config", "set", "apiKey", "-")
	require.NoError(t, res.err, res.stderr)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"apiKey":"sk-stdin"}`, string(data))

	res = run(t, "", "--config", path, "--plain", "config", "get", "apiKey")
	require.NoError(t, res.err)
	assert.Equal(t, "apiKey=[REDACTED]\n", res.stdout)
	assert.NotContains(t, res.stdout, "sk-stdin")

	res = run(t, "", "--config", path, "config", "export")
	require.NoError(t, res.err)
	assert.NotContains(t, res.stdout, "sk-stdin")
}

func TestConfigSetErrors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"unknown key", "", []string{"config", "set", "colour", "blue"}},
		{"unknown key in token", "", []string{"config", "set", "model=x", "colour=blue"}},
		{"malformed token", "", []string{"config", "set", "model"}},
		{"empty value", "", []string{"config", "set", "model="}},
		{"empty stdin value", "  \n", []string{"config", "set", "model", "-"}},
		{"non-integer", "", []string{"config", "set", "retries", "many"}},
		{"out of range", "", []string{"config", "set", "retries", "11"}},
		{"invalid url", "", []string{"config", "set", "endpoint", "not a url"}},
		{"unset unknown key", "", []string{"config", "unset", "colour"}},
		{"get unknown key", "", []string{"config", "get", "colour"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			path := filepath.Join(t.TempDir(), "config.json")

			res := run(t, tt.stdin, append([]string{"--config", path}, tt.args...)...)
			assert.Equal(t, ExitUsage, res.exitCode(), "stderr: %s", res.stderr)
			assert.NoFileExists(t, path)
		})
	}
}

func TestConfigCorruptFile(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	res := run(t, "", "--config", path, "config", "list")
	assert.Equal(t, ExitFailure, res.exitCode())
	assert.Contains(t, res.stderr, path)
}

func TestConfigListAndPath(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")

	res := run(t, "", "--config", path, "--plain", "config", "ls")
	require.NoError(t, res.err)
	assert.Equal(t, "endpoint=https://api.quiver.ai\nmodel=arrow-preview\npollInterval=2000\nretries=2\ntimeout=60000\n", res.stdout)

	res = run(t, "", "--config", path, "--json", "config", "list")
	require.NoError(t, res.err)
	var out struct {
		ConfigPath string         `json:"configPath"`
		Config     map[string]any `json:"config"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, path, out.ConfigPath)
	assert.Equal(t, "arrow-preview", out.Config["model"])

	res = run(t, "", "--config", path, "--plain", "config", "path")
	require.NoError(t, res.err)
	assert.Equal(t, path+"\n", res.stdout)

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	res = run(t, "", "--plain", "config", "path")
	require.NoError(t, res.err)
	assert.Equal(t, filepath.Join(xdg, "svgen", "config.json")+"\n", res.stdout)
}

func TestConfigImport(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")

	res := run(t, `{"model":"m"}`, "--config", path, "config", "import")
	assert.Equal(t, ExitUsage, res.exitCode())

	res = run(t, "", "--config", path, "--json", "config", "import")
	assert.Equal(t, ExitUsage, res.exitCode())

	res = run(t, `{"model":"m","colour":"blue"}`, "--config", path, "--json", "config", "import")
	assert.Equal(t, ExitUsage, res.exitCode())
	assert.NoFileExists(t, path)

	res = run(t, ` {"model":"imported","retries":5} `, "--config", path, "--json", "config", "import")
	require.NoError(t, res.err, res.stdout)
	assert.JSONEq(t, `{"imported":true,"path":"`+path+`"}`, res.stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"model":"imported","retries":5}`, string(data))
}

func TestConfigExport(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	t.Setenv("SVGEN_REGION", "eu")

	res := run(t, "", "--config", path, "config", "export")
	require.NoError(t, res.err)
	assert.JSONEq(t, `{"config":{
		"endpoint":"https://api.quiver.ai",
		"region":"eu",
		"timeout":60000,
		"retries":2,
		"pollInterval":2000,
		"model":"arrow-preview",
		"apiKey":""
	}}`, res.stdout)

	res = run(t, "", "--config", path, "config", "export", "--format", "yaml")
	require.NoError(t, res.err)
	assert.Equal(t, `config:
  endpoint: https://api.quiver.ai
  region: eu
  timeout: 60000
  retries: 2
  pollInterval: 2000
  model: arrow-preview
`, res.stdout)

	res = run(t, "", "--config", path, "config", "export", "--format", "toml")
	assert.Equal(t, ExitUsage, res.exitCode())
}

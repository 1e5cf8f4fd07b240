package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petal-labs/svgen/core"
)

func ptr[T any](v T) *T { return &v }

func TestDefaultConfigPathXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	assert.Equal(t, filepath.Join(dir, "svgen", "config.json"), DefaultConfigPath())
}

func TestDefaultConfigPathHome(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("home fallback is not used when APPDATA is set")
	}
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".config", "svgen", "config.json"), DefaultConfigPath())
}

func TestDefaultConfigPathWithoutHome(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("home lookup only depends on $HOME on unix")
	}
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "")

	assert.Equal(t, filepath.Join(".svgen", "config.json"), DefaultConfigPath())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope", "config.json"))
	require.NoError(t, err)
	assert.Equal(t, PersistedConfig{}, cfg)
}

func TestLoadCorruptFile(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantField string
		wantMsg   string
	}{
		{"invalid json", `{"endpoint":`, "", "contains invalid JSON"},
		{"empty file", ``, "", "contains invalid JSON"},
		{"null", "null\n", "", "expected a JSON object"},
		{"array", `[{"model":"x"}]`, "", "expected a JSON object"},
		{"unknown key", `{"colour":"red"}`, "", "does not match expected schema"},
		{"wrong type", `{"timeout":"fast"}`, "", "does not match expected schema"},
		{"out of range", `{"retries":11}`, "retries", "must be <= 10"},
		{"bad url", `{"endpoint":"not a url"}`, "endpoint", "must be a valid URL"},
		{"empty model", `{"model":""}`, "model", "must not be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := Load(path)
			require.ErrorIs(t, err, core.ErrConfigCorrupt)

			var cfgErr *core.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, path, cfgErr.Path)
			assert.Equal(t, tt.wantField, cfgErr.Field)
			assert.Contains(t, cfgErr.Message, tt.wantMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "svgen", "config.json")
	cfg := PersistedConfig{
		Endpoint:     ptr("https://eu.api.quiver.ai"),
		Retries:      ptr(0),
		PollInterval: ptr(500),
	}

	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "{\n  \"endpoint\": \"https://eu.api.quiver.ai\",\n  \"retries\": 0,\n  \"pollInterval\": 500\n}\n"
	assert.Equal(t, want, string(data))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSaveRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	err := Save(path, PersistedConfig{Timeout: ptr(0)})
	require.ErrorIs(t, err, core.ErrConfigInvalid)

	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "invalid config must not be written")
}

func TestSetAndUnset(t *testing.T) {
	var cfg PersistedConfig

	require.NoError(t, cfg.Set(KeyTimeout, "1500"))
	require.NoError(t, cfg.Set(KeyModel, "arrow-1"))
	require.NoError(t, cfg.Set(KeyAPIKey, "sk-1"))
	assert.Equal(t, 1500, *cfg.Timeout)
	assert.Equal(t, "arrow-1", *cfg.Model)
	assert.Equal(t, "sk-1", *cfg.APIKey)

	err := cfg.Set(KeyRetries, "two")
	assert.ErrorIs(t, err, core.ErrConfigInvalid)

	err = cfg.Set("colour", "red")
	assert.ErrorIs(t, err, core.ErrConfigInvalid)
	assert.Contains(t, err.Error(), "unknown config key")

	require.NoError(t, cfg.Unset(KeyModel))
	assert.Nil(t, cfg.Model)
	assert.Error(t, cfg.Unset("colour"))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{"apiKey", "endpoint", "model", "pollInterval", "region", "retries", "timeout"}, Keys())
	assert.True(t, IsSecretKey("apiKey"))
	assert.False(t, IsSecretKey("model"))
}

func TestPersistedConfigJSONKeys(t *testing.T) {
	data, err := json.Marshal(PersistedConfig{PollInterval: ptr(250), APIKey: ptr("sk")})
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"pollInterval":250`))
	assert.True(t, strings.Contains(string(data), `"apiKey":"sk"`))
}

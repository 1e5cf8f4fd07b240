// Package config resolves the svgen configuration from defaults, the
// persisted config file, the environment and command-line overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
	"github.com/knadh/koanf/providers/file"

	"github.com/petal-labs/svgen/core"
)

// AppName names the config directory.
const AppName = "svgen"

// Built-in defaults, the lowest-precedence layer.
const (
	DefaultEndpoint       = "https://api.quiver.ai"
	DefaultModel          = "arrow-preview"
	DefaultTimeoutMS      = 60_000
	DefaultRetries        = 2
	DefaultPollIntervalMS = 2_000
)

// Config keys, as they appear in the config file.
const (
	KeyEndpoint     = "endpoint"
	KeyRegion       = "region"
	KeyTimeout      = "timeout"
	KeyRetries      = "retries"
	KeyPollInterval = "pollInterval"
	KeyModel        = "model"
	KeyAPIKey       = "apiKey"
)

var (
	knownKeys   = []string{KeyAPIKey, KeyEndpoint, KeyModel, KeyPollInterval, KeyRegion, KeyRetries, KeyTimeout}
	numericKeys = []string{KeyTimeout, KeyRetries, KeyPollInterval}
	secretKeys  = []string{KeyAPIKey}
)

// Keys returns every known config key in sorted order.
func Keys() []string {
	return slices.Clone(knownKeys)
}

// IsKnownKey reports whether key is a config key.
func IsKnownKey(key string) bool {
	return slices.Contains(knownKeys, key)
}

// IsSecretKey reports whether key holds a credential. Secrets are never
// accepted on the command line and are redacted on output.
func IsSecretKey(key string) bool {
	return slices.Contains(secretKeys, key)
}

// PersistedConfig is the content of the config file. Every field is
// optional; nil means the file does not define the key.
type PersistedConfig struct {
	Endpoint     *string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" validate:"omitempty,url"`
	Region       *string `json:"region,omitempty" yaml:"region,omitempty" validate:"omitempty,min=1"`
	Timeout      *int    `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"omitempty,min=1,max=600000"`
	Retries      *int    `json:"retries,omitempty" yaml:"retries,omitempty" validate:"omitempty,min=0,max=10"`
	PollInterval *int    `json:"pollInterval,omitempty" yaml:"pollInterval,omitempty" validate:"omitempty,min=250,max=60000"`
	Model        *string `json:"model,omitempty" yaml:"model,omitempty" validate:"omitempty,min=1"`
	APIKey       *string `json:"apiKey,omitempty" yaml:"apiKey,omitempty" validate:"omitempty,min=1"`
}

// Set assigns the raw value to key. Numeric keys must parse as integers.
func (p *PersistedConfig) Set(key, raw string) error {
	if !IsKnownKey(key) {
		return UnknownKeyError(key)
	}

	if slices.Contains(numericKeys, key) {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return &core.ConfigError{Field: key, Message: "expected an integer value", Err: core.ErrConfigInvalid, Cause: err}
		}
		switch key {
		case KeyTimeout:
			p.Timeout = &n
		case KeyRetries:
			p.Retries = &n
		case KeyPollInterval:
			p.PollInterval = &n
		}
		return nil
	}

	value := raw
	switch key {
	case KeyEndpoint:
		p.Endpoint = &value
	case KeyRegion:
		p.Region = &value
	case KeyModel:
		p.Model = &value
	case KeyAPIKey:
		p.APIKey = &value
	}
	return nil
}

// Unset removes key from the config.
func (p *PersistedConfig) Unset(key string) error {
	switch key {
	case KeyEndpoint:
		p.Endpoint = nil
	case KeyRegion:
		p.Region = nil
	case KeyTimeout:
		p.Timeout = nil
	case KeyRetries:
		p.Retries = nil
	case KeyPollInterval:
		p.PollInterval = nil
	case KeyModel:
		p.Model = nil
	case KeyAPIKey:
		p.APIKey = nil
	default:
		return UnknownKeyError(key)
	}
	return nil
}

// Validate checks every defined key against its bounds.
func (p *PersistedConfig) Validate() error {
	return validateValues(p, "")
}

// layer returns the defined keys as a flat map.
func (p *PersistedConfig) layer() map[string]any {
	layer := make(map[string]any)
	putString := func(key string, v *string) {
		if v != nil {
			layer[key] = *v
		}
	}
	putInt := func(key string, v *int) {
		if v != nil {
			layer[key] = *v
		}
	}
	putString(KeyEndpoint, p.Endpoint)
	putString(KeyRegion, p.Region)
	putInt(KeyTimeout, p.Timeout)
	putInt(KeyRetries, p.Retries)
	putInt(KeyPollInterval, p.PollInterval)
	putString(KeyModel, p.Model)
	putString(KeyAPIKey, p.APIKey)
	return layer
}

// DefaultConfigPath returns the config file location for the current platform:
// $XDG_CONFIG_HOME/svgen/config.json when set, %APPDATA%\svgen\config.json on
// Windows, and ~/.config/svgen/config.json otherwise.
//
// When no home directory can be determined the result is the relative path
// .svgen/config.json, resolved against the working directory. Pass an explicit
// path (--config) in such environments to keep the API key out of the
// working tree.
func DefaultConfigPath() string {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, AppName, "config.json")
	}
	if runtime.GOOS == "windows" {
		if base := os.Getenv("APPDATA"); base != "" {
			return filepath.Join(base, AppName, "config.json")
		}
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		// Relative to the working directory
		return filepath.Join("."+AppName, "config.json")
	}
	return filepath.Join(home, ".config", AppName, "config.json")
}

// Load reads the config file at path. A missing file is an empty config.
// Malformed JSON, a top-level value that is not an object (including null),
// unknown keys and out-of-range values are reported as core.ErrConfigCorrupt.
func Load(path string) (PersistedConfig, error) {
	var cfg PersistedConfig

	data, err := file.Provider(path).ReadBytes()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := core.Decode(core.Closed, data, &cfg); err != nil {
		msg := "does not match expected schema: " + strings.TrimPrefix(err.Error(), "json: ")
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) || len(strings.TrimSpace(string(data))) == 0 {
			msg = "contains invalid JSON"
		}
		return PersistedConfig{}, &core.ConfigError{Path: path, Message: msg, Err: core.ErrConfigCorrupt, Cause: err}
	}

	if err := validateValues(&cfg, path); err != nil {
		return PersistedConfig{}, err
	}
	return cfg, nil
}

// Save validates cfg and writes it to path as indented JSON, replacing the
// previous content. Parent directories are created as needed.
func Save(path string, cfg PersistedConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// UnknownKeyError reports a key that is not a config key.
func UnknownKeyError(key string) error {
	return &core.ConfigError{
		Field:   key,
		Message: "unknown config key (known: " + strings.Join(knownKeys, ", ") + ")",
		Err:     core.ErrConfigInvalid,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]; name != "" && name != "-" {
			return name
		}
		return f.Tag.Get("koanf")
	})
	return v
}

// validateValues checks v against its validate tags. A non-empty path marks
// the values as coming from the config file, which makes a violation
// ErrConfigCorrupt rather than ErrConfigInvalid.
func validateValues(v any, path string) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	sentinel := core.ErrConfigInvalid
	if path != "" {
		sentinel = core.ErrConfigCorrupt
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &core.ConfigError{Path: path, Message: err.Error(), Err: sentinel, Cause: err}
	}
	fe := verrs[0]
	return &core.ConfigError{Path: path, Field: fe.Field(), Message: describe(fe), Err: sentinel}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "min":
		if fe.Kind() == reflect.String {
			return "must not be empty"
		}
		return "must be >= " + fe.Param()
	case "max":
		return "must be <= " + fe.Param()
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}

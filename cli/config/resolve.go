package config

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"

	"github.com/petal-labs/svgen/core"
)

// Environment variables read by the resolver.
const (
	EnvPrefix         = "SVGEN_"
	EnvEndpoint       = "SVGEN_ENDPOINT"
	EnvRegion         = "SVGEN_REGION"
	EnvTimeout        = "SVGEN_TIMEOUT"
	EnvRetries        = "SVGEN_RETRIES"
	EnvPollInterval   = "SVGEN_POLL_INTERVAL"
	EnvModel          = "SVGEN_MODEL"
	EnvAPIKey         = "SVGEN_API_KEY"
	EnvFallbackAPIKey = "QUIVERAI_API_KEY"
)

var envKeys = map[string]string{
	EnvEndpoint:       KeyEndpoint,
	EnvRegion:         KeyRegion,
	EnvTimeout:        KeyTimeout,
	EnvRetries:        KeyRetries,
	EnvPollInterval:   KeyPollInterval,
	EnvModel:          KeyModel,
	EnvAPIKey:         KeyAPIKey,
	EnvFallbackAPIKey: KeyAPIKey,
}

// EffectiveConfig is the fully defaulted configuration an operation runs
// with. Every field except Region and APIKey always has a value.
type EffectiveConfig struct {
	Endpoint     string      `json:"endpoint" yaml:"endpoint"`
	Region       string      `json:"region,omitempty" yaml:"region,omitempty"`
	Timeout      int         `json:"timeout" yaml:"timeout"`
	Retries      int         `json:"retries" yaml:"retries"`
	PollInterval int         `json:"pollInterval" yaml:"pollInterval"`
	Model        string      `json:"model" yaml:"model"`
	APIKey       core.Secret `json:"apiKey" yaml:"apiKey,omitempty"`
}

// TimeoutDuration returns the per-attempt timeout.
func (c EffectiveConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// PollIntervalDuration returns the wait between status checks.
func (c EffectiveConfig) PollIntervalDuration() time.Duration {
	return time.Duration(c.PollInterval) * time.Millisecond
}

// Get returns the value of key. The API key comes back redacted.
func (c EffectiveConfig) Get(key string) (any, error) {
	switch key {
	case KeyEndpoint:
		return c.Endpoint, nil
	case KeyRegion:
		return c.Region, nil
	case KeyTimeout:
		return c.Timeout, nil
	case KeyRetries:
		return c.Retries, nil
	case KeyPollInterval:
		return c.PollInterval, nil
	case KeyModel:
		return c.Model, nil
	case KeyAPIKey:
		return c.APIKey.String(), nil
	default:
		return nil, UnknownKeyError(key)
	}
}

// resolvedFields is the koanf unmarshal target. Bounds match PersistedConfig,
// but mandatory keys must be present.
type resolvedFields struct {
	Endpoint     string `koanf:"endpoint" validate:"required,url"`
	Region       string `koanf:"region" validate:"omitempty,min=1"`
	Timeout      int    `koanf:"timeout" validate:"min=1,max=600000"`
	Retries      int    `koanf:"retries" validate:"min=0,max=10"`
	PollInterval int    `koanf:"pollInterval" validate:"min=250,max=60000"`
	Model        string `koanf:"model" validate:"required"`
	APIKey       string `koanf:"apiKey"`
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	ConfigPath string
	Persisted  PersistedConfig
	Effective  EffectiveConfig
}

// Resolver merges configuration layers. The zero value reads the default
// config path and no dotenv file.
type Resolver struct {
	// Path is the config file. Defaults to DefaultConfigPath().
	Path string

	// EnvFile is an optional dotenv file. Its values rank below the
	// process environment and are never exported to it.
	EnvFile string
}

// ConfigPath returns the config file the resolver reads.
func (r Resolver) ConfigPath() string {
	if r.Path != "" {
		return r.Path
	}
	return DefaultConfigPath()
}

// Defaults returns the built-in layer.
func Defaults() map[string]any {
	return map[string]any{
		KeyEndpoint:     DefaultEndpoint,
		KeyTimeout:      DefaultTimeoutMS,
		KeyRetries:      DefaultRetries,
		KeyPollInterval: DefaultPollIntervalMS,
		KeyModel:        DefaultModel,
	}
}

// Resolve folds, lowest precedence first: built-in defaults, the config
// file, the dotenv file, the process environment, and overrides. Each layer
// only asserts the keys it defines. The file is re-read on every call.
func (r Resolver) Resolve(overrides PersistedConfig) (*Resolution, error) {
	path := r.ConfigPath()

	persisted, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := overrides.Validate(); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if err := k.Load(confmap.Provider(persisted.layer(), "."), nil); err != nil {
		return nil, fmt.Errorf("load config file: %w", err)
	}
	if r.EnvFile != "" {
		vars, err := godotenv.Read(r.EnvFile)
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", r.EnvFile, err)
		}
		if err := k.Load(confmap.Provider(envLayer(vars), "."), nil); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}
	// The fallback key is loaded on its own so SVGEN_API_KEY always wins.
	if err := k.Load(env.ProviderWithValue(EnvFallbackAPIKey, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := k.Load(confmap.Provider(overrides.layer(), "."), nil); err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}

	var fields resolvedFields
	if err := k.Unmarshal("", &fields); err != nil {
		return nil, &core.ConfigError{Message: err.Error(), Err: core.ErrConfigInvalid, Cause: err}
	}
	if err := validateValues(&fields, ""); err != nil {
		return nil, err
	}

	return &Resolution{
		ConfigPath: path,
		Persisted:  persisted,
		Effective: EffectiveConfig{
			Endpoint:     fields.Endpoint,
			Region:       fields.Region,
			Timeout:      fields.Timeout,
			Retries:      fields.Retries,
			PollInterval: fields.PollInterval,
			Model:        fields.Model,
			APIKey:       core.NewSecret(fields.APIKey),
		},
	}, nil
}

// envValue maps an environment variable onto a config key. Unknown
// variables, empty values and non-integer values for numeric keys are
// dropped by returning an empty key.
func envValue(name, value string) (string, any) {
	key, ok := envKeys[name]
	if !ok || value == "" {
		return "", nil
	}
	if !slices.Contains(numericKeys, key) {
		return key, value
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return "", nil
	}
	return key, n
}

// envLayer converts dotenv variables with the same rules and precedence as
// the process environment.
func envLayer(vars map[string]string) map[string]any {
	layer := make(map[string]any)
	if key, value := envValue(EnvFallbackAPIKey, vars[EnvFallbackAPIKey]); key != "" {
		layer[key] = value
	}

	rest := maps.Clone(vars)
	delete(rest, EnvFallbackAPIKey)
	for name, raw := range rest {
		if key, value := envValue(name, raw); key != "" {
			layer[key] = value
		}
	}
	return layer
}

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/petal-labs/svgen/cli/config"
	"github.com/petal-labs/svgen/core"
)

// stdinValue marks a config value to be read from stdin.
const stdinValue = "-"

// setItem is one key/value pair given to config set.
type setItem struct {
	key   string
	value string
}

func (a *App) newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Manage svgen configuration",
		Long: `Manage the persisted svgen configuration.

Known keys: ` + strings.Join(config.Keys(), ", ") + `.
Secrets such as apiKey are only accepted on stdin:

  printf 'KEY' | svgen cfg set apiKey -`,
	}

	cmd.AddCommand(a.newConfigListCommand())
	cmd.AddCommand(a.newConfigPathCommand())
	cmd.AddCommand(a.newConfigGetCommand())
	cmd.AddCommand(a.newConfigSetCommand())
	cmd.AddCommand(a.newConfigUnsetCommand())
	cmd.AddCommand(a.newConfigImportCommand())
	cmd.AddCommand(a.newConfigExportCommand())

	return cmd
}

func (a *App) newConfigListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the effective configuration",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.resolveConfig()
			if err != nil {
				return err
			}

			var lines []string
			for _, key := range config.Keys() {
				value, _ := res.Effective.Get(key)
				if value == "" {
					continue
				}
				lines = append(lines, fmt.Sprintf("%s=%v", key, value))
			}

			return a.writeOutput(map[string]any{
				"configPath": res.ConfigPath,
				"config":     res.Effective,
			}, lines)
		},
	}
}

func (a *App) newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.resolver().ConfigPath()
			return a.writeOutput(map[string]any{"path": path}, []string{path})
		},
	}
}

func (a *App) newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>...",
		Short: "Print effective config values",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, key := range args {
				if !config.IsKnownKey(key) {
					return config.UnknownKeyError(key)
				}
			}

			res, err := a.resolveConfig()
			if err != nil {
				return err
			}

			values := make(map[string]any, len(args))
			lines := make([]string, 0, len(args))
			for _, key := range args {
				value, err := res.Effective.Get(key)
				if err != nil {
					return err
				}
				values[key] = value
				lines = append(lines, fmt.Sprintf("%s=%v", key, value))
			}

			return a.writeOutput(map[string]any{"values": values}, lines)
		},
	}
}

func (a *App) newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value> | <key=value>...",
		Short: "Set persisted config values",
		Example: `  svgen config set model arrow-preview
  svgen config set timeout=30000 retries=3
  printf 'KEY' | svgen cfg set apiKey -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := parseSetItems(args)
			if err != nil {
				return err
			}

			path := a.resolver().ConfigPath()
			persisted, err := config.Load(path)
			if err != nil {
				return err
			}

			updated := make([]string, 0, len(items))
			for _, item := range items {
				value := item.value
				if config.IsSecretKey(item.key) && value != stdinValue {
					return usageErrorf("refusing to set secret key %q via argv; use stdin: printf '...' | svgen cfg set %s -", item.key, item.key)
				}
				if value == stdinValue {
					if value, err = a.readSecret(item.key); err != nil {
						return err
					}
				}
				if value == "" {
					return usageErrorf("value for %s cannot be empty", item.key)
				}
				if err := persisted.Set(item.key, value); err != nil {
					return err
				}
				updated = append(updated, item.key)
			}

			if err := config.Save(path, persisted); err != nil {
				return err
			}
			a.logger.Debug("config saved")

			return a.writeOutput(map[string]any{"updated": updated, "path": path}, updated)
		},
	}
}

func (a *App) newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>...",
		Short: "Remove persisted config values",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.resolver().ConfigPath()
			persisted, err := config.Load(path)
			if err != nil {
				return err
			}

			for _, key := range args {
				if err := persisted.Unset(key); err != nil {
					return err
				}
			}

			if err := config.Save(path, persisted); err != nil {
				return err
			}
			return a.writeOutput(map[string]any{"unset": args, "path": path}, args)
		},
	}
}

func (a *App) newConfigImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Replace the persisted config with JSON read from stdin",
		Example: `  svgen config export --json | svgen config import --json
  echo '{"model":"arrow-preview"}' | svgen config import --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.jsonOutput {
				return usageErrorf("use --json for config import")
			}

			payload, err := a.readStdinText()
			if err != nil {
				return err
			}
			if payload == "" {
				return usageErrorf("no JSON payload found on stdin")
			}

			var persisted config.PersistedConfig
			if err := core.Decode(core.Closed, []byte(payload), &persisted); err != nil {
				return &core.ConfigError{Message: "import payload: " + strings.TrimPrefix(err.Error(), "json: "), Err: core.ErrConfigInvalid, Cause: err}
			}

			path := a.resolver().ConfigPath()
			if err := config.Save(path, persisted); err != nil {
				return err
			}
			return a.writeOutput(map[string]any{"imported": true, "path": path}, []string{path})
		},
	}
}

func (a *App) newConfigExportCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the effective configuration",
		Long: `Export the effective configuration as JSON or YAML.

The API key is always redacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.resolveConfig()
			if err != nil {
				return err
			}

			doc := map[string]any{"config": res.Effective}
			switch strings.ToLower(format) {
			case "json":
				return a.writeJSON(doc)
			case "yaml", "yml":
				enc := yaml.NewEncoder(a.stdout)
				enc.SetIndent(2)
				if err := enc.Encode(doc); err != nil {
					return err
				}
				return enc.Close()
			default:
				return usageErrorf("unsupported export format %q (use json or yaml)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	return cmd
}

// parseSetItems accepts either one "key value" pair or any number of
// "key=value" tokens.
func parseSetItems(tokens []string) ([]setItem, error) {
	if len(tokens) == 2 && !strings.Contains(tokens[0], "=") {
		if !config.IsKnownKey(tokens[0]) {
			return nil, config.UnknownKeyError(tokens[0])
		}
		return []setItem{{key: tokens[0], value: tokens[1]}}, nil
	}

	items := make([]setItem, 0, len(tokens))
	for _, token := range tokens {
		key, value, ok := strings.Cut(token, "=")
		if !ok || key == "" {
			return nil, usageErrorf("invalid set token %q: use key=value or key value", token)
		}
		if !config.IsKnownKey(key) {
			return nil, config.UnknownKeyError(key)
		}
		items = append(items, setItem{key: key, value: value})
	}
	return items, nil
}

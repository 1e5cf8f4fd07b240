// Package commands implements the svgen command tree using Cobra.
package commands

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/petal-labs/svgen/cli/config"
)

// TerminalCheck reports whether r is an interactive terminal.
type TerminalCheck func(r io.Reader) bool

// AppOption customizes App dependencies.
type AppOption func(*App)

// App holds CLI state and runtime dependencies.
type App struct {
	root *cobra.Command

	httpClient *http.Client
	isTerminal TerminalCheck
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer

	// Global flags.
	cfgFile    string
	envFile    string
	jsonOutput bool
	plain      bool
	quiet      bool
	verbose    bool
	timeout    int
	retries    int
	endpoint   string
	region     string

	logger *zap.Logger
	faint  lipgloss.Style
}

// WithIO injects process I/O streams.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) AppOption {
	return func(a *App) {
		if stdin != nil {
			a.stdin = stdin
		}
		if stdout != nil {
			a.stdout = stdout
		}
		if stderr != nil {
			a.stderr = stderr
		}
	}
}

// WithHTTPClient injects the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) AppOption {
	return func(a *App) {
		if client != nil {
			a.httpClient = client
		}
	}
}

// WithTerminalCheck injects the interactive-terminal check used before
// reading stdin.
func WithTerminalCheck(check TerminalCheck) AppOption {
	return func(a *App) {
		if check != nil {
			a.isTerminal = check
		}
	}
}

// NewApp creates a new CLI app with default dependencies.
func NewApp(opts ...AppOption) *App {
	a := &App{
		httpClient: http.DefaultClient,
		isTerminal: isTerminal,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	a.root = a.newRootCommand()
	return a
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "svgen",
		Short: "Generate and vectorize SVGs via the QuiverAI API",
		Long: `svgen is a command-line client for the QuiverAI SVG API.

Generate SVGs from prompts, vectorize raster images, and poll
asynchronous generations. Configuration is read from the config file,
SVGEN_* environment variables and global flags, in that order.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initRuntime()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	// Global flags available to all commands.
	flags := root.PersistentFlags()
	flags.BoolVar(&a.jsonOutput, "json", false, "output a single JSON object")
	flags.BoolVar(&a.plain, "plain", false, "output stable plain-text lines")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "suppress non-essential stderr logs")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.IntVar(&a.timeout, "timeout", 0, "request timeout in milliseconds")
	flags.IntVar(&a.retries, "retries", 0, "retry count for retryable requests")
	flags.StringVar(&a.endpoint, "endpoint", "", "API endpoint base URL")
	flags.StringVar(&a.region, "region", "", "optional region label")
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/svgen/config.json)")
	flags.StringVar(&a.envFile, "env-file", "", "dotenv file with SVGEN_* variables")

	root.AddCommand(a.newGenCommand())
	root.AddCommand(a.newVectorizeCommand())
	root.AddCommand(a.newResultCommand())
	root.AddCommand(a.newWaitCommand())
	root.AddCommand(a.newModelsCommand())
	root.AddCommand(a.newConfigCommand())
	root.AddCommand(a.newVersionCommand())

	return root
}

// initRuntime checks output flags and sets up logging.
func (a *App) initRuntime() error {
	if a.jsonOutput && a.plain {
		return usageError(errConflictingOutput)
	}

	a.logger = newLogger(a.stderr, a.verbose, a.quiet)
	a.faint = lipgloss.NewRenderer(a.stderr).NewStyle().Faint(true)
	return nil
}

// overrides collects the config overrides given as global flags.
func (a *App) overrides() config.PersistedConfig {
	var o config.PersistedConfig
	flags := a.root.PersistentFlags()
	if flags.Changed("endpoint") {
		o.Endpoint = &a.endpoint
	}
	if flags.Changed("region") {
		o.Region = &a.region
	}
	if flags.Changed("timeout") {
		o.Timeout = &a.timeout
	}
	if flags.Changed("retries") {
		o.Retries = &a.retries
	}
	return o
}

// resolver returns the config resolver for the current flags.
func (a *App) resolver() config.Resolver {
	return config.Resolver{Path: a.cfgFile, EnvFile: a.envFile}
}

// SetArgs sets the arguments for the next Execute call.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// Execute runs the root command. Failures are reported on the app's
// output streams and returned as errors carrying an exit code.
func (a *App) Execute() error {
	return a.ExecuteContext(context.Background())
}

// ExecuteContext is Execute with a context that cancels in-flight requests
// and waits.
func (a *App) ExecuteContext(ctx context.Context) error {
	err := a.root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	return a.reportError(err)
}

var defaultApp = NewApp()

// Execute runs the default app root command.
func Execute() error {
	return defaultApp.Execute()
}

// ExecuteContext runs the default app root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return defaultApp.ExecuteContext(ctx)
}

package commands

import (
	"context"

	"github.com/petal-labs/svgen/cli/config"
	"github.com/petal-labs/svgen/providers/quiver"
)

// session is a resolved config plus a client built from it.
type session struct {
	config *config.Resolution
	client *quiver.Client
}

// resolveConfig resolves the layered configuration for the current flags.
func (a *App) resolveConfig() (*config.Resolution, error) {
	return a.resolver().Resolve(a.overrides())
}

// newSession resolves configuration and builds an API client. A missing
// API key is reported before any request is made.
func (a *App) newSession() (*session, error) {
	res, err := a.resolveConfig()
	if err != nil {
		return nil, err
	}
	if res.Effective.APIKey.IsEmpty() {
		return nil, exitWithCode(ExitFailure, errMissingAPIKey)
	}

	client := quiver.New(res.Effective.APIKey.Expose(),
		quiver.WithBaseURL(res.Effective.Endpoint),
		quiver.WithTimeout(res.Effective.TimeoutDuration()),
		quiver.WithRetries(res.Effective.Retries),
		quiver.WithHTTPClient(a.httpClient),
		quiver.WithUserAgent("svgen/"+Version),
		quiver.WithLogger(a.logger),
		quiver.WithTelemetry(logTelemetry{logger: a.logger}),
	)
	a.logger.Debug("client ready")
	return &session{config: res, client: client}, nil
}

// requestContext returns the context the command tree was executed with.
func (a *App) requestContext() context.Context {
	if ctx := a.root.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

package quiver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/petal-labs/svgen/core"
)

const (
	// DefaultPollInterval is the wait between status checks.
	DefaultPollInterval = 2 * time.Second

	// DefaultMaxWait bounds WaitForGeneration.
	DefaultMaxWait = 5 * time.Minute
)

// WaitOptions configures WaitForGeneration.
type WaitOptions struct {
	// Interval between status checks. Defaults to DefaultPollInterval.
	Interval time.Duration

	// MaxWait is the total time budget. Defaults to DefaultMaxWait.
	MaxWait time.Duration

	// OnPending is called after each check that found the generation
	// still pending, before sleeping.
	OnPending func(id string, elapsed time.Duration)
}

// WaitForGeneration polls a generation until it is done or failed.
//
// The finished payload is returned as-is. A failed generation yields a
// *core.GenerationFailedError, and running out of MaxWait yields an error
// wrapping core.ErrWaitTimeout. Request errors end the wait immediately.
func (c *Client) WaitForGeneration(ctx context.Context, id string, opts WaitOptions) (json.RawMessage, error) {
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = DefaultMaxWait
	}

	start := time.Now()
	for polls := 1; time.Since(start) <= opts.MaxWait; polls++ {
		payload, err := c.GetGeneration(ctx, id)
		if err != nil {
			return nil, err
		}

		status := core.InferGenerationState(payload)
		switch status.State {
		case core.GenerationDone:
			c.logger.Debug("generation finished", zap.String("id", id), zap.Int("polls", polls))
			return payload, nil
		case core.GenerationFailed:
			return payload, &core.GenerationFailedError{ID: id, Reason: status.Reason}
		}

		if opts.OnPending != nil {
			opts.OnPending(id, time.Since(start))
		}
		if err := c.sleep(ctx, opts.Interval); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w %s after %s", core.ErrWaitTimeout, id, opts.MaxWait)
}

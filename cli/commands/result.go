package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/petal-labs/svgen/core"
	"github.com/petal-labs/svgen/providers/quiver"
)

func (a *App) newResultCommand() *cobra.Command {
	var saveDir string

	cmd := &cobra.Command{
		Use:   "result <id>",
		Short: "Fetch a generation result by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession()
			if err != nil {
				return err
			}

			payload, err := s.client.GetGeneration(a.requestContext(), args[0])
			if err != nil {
				return err
			}
			return a.writeGeneration(payload, saveDir)
		},
	}

	cmd.Flags().StringVar(&saveDir, "save-dir", "", "directory to write SVG files to")
	return cmd
}

func (a *App) newWaitCommand() *cobra.Command {
	var (
		intervalMS int
		maxWaitMS  int
		saveDir    string
	)

	cmd := &cobra.Command{
		Use:   "wait <id>",
		Short: "Poll a generation until it is finished",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession()
			if err != nil {
				return err
			}

			interval := s.config.Effective.PollIntervalDuration()
			if cmd.Flags().Changed("interval") {
				if intervalMS <= 0 {
					return usageErrorf("--interval must be a positive number of milliseconds")
				}
				interval = time.Duration(intervalMS) * time.Millisecond
			}
			if maxWaitMS <= 0 {
				return usageErrorf("--max-wait must be a positive number of milliseconds")
			}

			payload, err := s.client.WaitForGeneration(a.requestContext(), args[0], quiver.WaitOptions{
				Interval: interval,
				MaxWait:  time.Duration(maxWaitMS) * time.Millisecond,
				OnPending: func(id string, _ time.Duration) {
					a.logInfo("waiting for %s...", id)
				},
			})
			var failed *core.GenerationFailedError
			if errors.As(err, &failed) {
				a.logger.Debug("generation failed", zap.String("id", failed.ID), zap.ByteString("payload", payload))
			}
			if err != nil {
				return err
			}
			return a.writeGeneration(payload, saveDir)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&intervalMS, "interval", 0, "polling interval in milliseconds (default from config)")
	flags.IntVar(&maxWaitMS, "max-wait", int(quiver.DefaultMaxWait/time.Millisecond), "maximum wait in milliseconds")
	flags.StringVar(&saveDir, "save-dir", "", "directory to write SVG files to")
	return cmd
}

// writeGeneration prints a generation status payload as returned by the
// server. When the payload is a complete SVG response and saveDir is set,
// its documents are saved and plain output lists the files.
func (a *App) writeGeneration(payload json.RawMessage, saveDir string) error {
	var files []string
	if saveDir != "" {
		if resp, err := core.ValidateResponse(payload); err == nil {
			if files, err = saveSvgResponse(resp, saveDir); err != nil {
				return err
			}
		}
	}

	plain := files
	if len(plain) == 0 {
		plain = []string{generationLine(payload)}
	}
	return a.writeOutput(payload, plain)
}

// generationLine is the id of an object payload, or the compact payload.
func generationLine(payload json.RawMessage) string {
	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err == nil {
		if id, ok := doc["id"]; ok {
			return fmt.Sprint(id)
		}
	}
	if line, err := jsonCompact(payload); err == nil {
		return line
	}
	return string(payload)
}

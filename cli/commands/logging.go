package commands

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/petal-labs/svgen/core"
)

// newLogger builds a console logger on w: debug with --verbose, nothing
// with --quiet, warnings and errors otherwise.
func newLogger(w io.Writer, verbose, quiet bool) *zap.Logger {
	if quiet && !verbose {
		return zap.NewNop()
	}

	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = ""
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	return zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(w),
		level,
	))
}

// logTelemetry reports API operations to a zap logger.
type logTelemetry struct {
	logger *zap.Logger
}

func (t logTelemetry) OnRequestStart(e core.RequestStartEvent) {
	t.logger.Debug("request started",
		zap.String("request_id", e.RequestID),
		zap.String("method", e.Method),
		zap.String("path", e.Path),
		zap.Bool("stream", e.Stream),
	)
}

func (t logTelemetry) OnRequestEnd(e core.RequestEndEvent) {
	fields := []zap.Field{
		zap.String("request_id", e.RequestID),
		zap.String("method", e.Method),
		zap.String("path", e.Path),
		zap.Int("attempts", e.Attempts),
		zap.Int("status", e.Status),
		zap.Duration("duration", e.Duration()),
	}
	if e.Err != nil {
		t.logger.Debug("request failed", append(fields, zap.Error(e.Err))...)
		return
	}
	t.logger.Debug("request completed", fields...)
}

var _ core.TelemetryHook = logTelemetry{}

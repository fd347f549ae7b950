// Package logging builds the ectologger loggers used across clover, backed by zap
package logging

import (
	"fmt"
	"maps"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	clovercontext "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// NewZap returns a JSON production logger, or a colored console logger when pretty is set
func NewZap(level string, pretty bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	var cfg zap.Config
	if pretty {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// New wraps zapLogger in an ectologger.Logger. Messages logged through WithContext carry
// the run ID, source file and trace IDs found in that context.
func New(zapLogger *zap.Logger) ectologger.Logger {
	return zapadapter.NewZapEctoLogger(zapLogger, withContextFields)
}

func withContextFields(msg ectologger.EctoLogMessage) ectologger.EctoLogMessage {
	if msg.Ctx == nil {
		return msg
	}

	extra := map[string]any{}
	if runID := clovercontext.GetRunID(msg.Ctx); runID != "" {
		extra["run_id"] = runID
	}
	if source := clovercontext.GetSource(msg.Ctx); source != "" {
		extra["source"] = source
	}
	if traceID := tracing.GetTraceID(msg.Ctx); traceID != "" {
		extra["trace_id"] = traceID
		extra["span_id"] = tracing.GetSpanID(msg.Ctx)
	}
	if len(extra) == 0 {
		return msg
	}

	// sub-loggers hand over their own field map, so build a new one
	fields := make(map[string]any, len(msg.Fields)+len(extra))
	maps.Copy(fields, msg.Fields)
	maps.Copy(fields, extra)
	msg.Fields = fields
	return msg
}

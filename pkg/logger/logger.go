package logger

import (
	"context"
	"os"

	"go.uber.org/zap"

	"homeplan/pkg/trace"
)

// NewLogger builds the production JSON logger. LOG_LEVEL=debug lowers the level.
func NewLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(levelFromEnv()); err == nil {
		cfg.Level = lvl
	}
	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return l
}

// WithTrace adds the trace_id found in ctx to logger.
func WithTrace(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if traceID := trace.FromContext(ctx); traceID != "" {
		return logger.With(zap.String("trace_id", traceID))
	}
	return logger
}

func levelFromEnv() string {
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "info"
}

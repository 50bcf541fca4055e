package vizquery

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExecutionTrace carries the per-call correlation id and logger an
// Execute invocation threads through every pipeline stage, the way the
// teacher threads a request-scoped logger through entity operations.
type ExecutionTrace struct {
	CorrelationID uuid.UUID
	Logger        *zap.SugaredLogger
	start         time.Time
}

// NewExecutionTrace mints a correlation id and derives a sugared logger
// tagged with it, so every log line for this call can be grepped by id.
func NewExecutionTrace(base *zap.Logger) *ExecutionTrace {
	id := uuid.New()
	return &ExecutionTrace{
		CorrelationID: id,
		Logger:        base.Sugar().With("correlationId", id.String()),
		start:         time.Now(),
	}
}

// Stage logs a debug-level event for one pipeline stage (filter,
// group+pivot, sort, paginate, select, label, format).
func (t *ExecutionTrace) Stage(name string, fields ...any) {
	t.Logger.Debugw("executing stage", append([]any{"stage", name}, fields...)...)
}

// Done logs the info-level summary for the whole Execute call, and
// flags slow queries per LoggingConfig.SlowQueryThreshold.
func (t *ExecutionTrace) Done(cfg LoggingConfig, rowCount int, err error) {
	elapsed := time.Since(t.start)
	fields := []any{"elapsedMs", elapsed.Milliseconds(), "rowCount", rowCount}
	if err != nil {
		t.Logger.Errorw("query execution failed", append(fields, "error", err)...)
		return
	}
	if cfg.LogSlowQueries && elapsed >= cfg.SlowQueryThreshold {
		t.Logger.Warnw("slow query", fields...)
		return
	}
	if cfg.EnableQueryLogging {
		t.Logger.Infow("query executed", fields...)
	}
}

// NewLogger builds the base zap.Logger for an ExecutionConfig's
// LoggingConfig: JSON production config at "json"/anything else,
// console config for "console", with level parsed from cfg.Level.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, &ConfigError{Field: "logging.level", Message: err.Error()}
	}
	zcfg.Level = level
	return zcfg.Build()
}

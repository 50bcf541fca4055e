package vizquery

import (
	"go.uber.org/zap"
)

// Engine is the entry point: it owns configuration, a base logger, and
// a default Formatter, and exposes Execute as the single operation that
// validates a Query and runs it to completion (§4).
type Engine struct {
	Config    *ExecutionConfig
	Formatter Formatter
	logger    *zap.Logger
}

// NewEngine builds an Engine from cfg (DefaultConfig() if nil), failing
// if cfg doesn't validate.
func NewEngine(cfg *ExecutionConfig) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}
	return &Engine{Config: cfg, Formatter: DefaultFormatter{}, logger: logger}, nil
}

// runPipeline is implemented by internal/engine.RunPipeline; Execute
// calls it through this indirection so the root package never imports
// internal/engine directly in a cyclic way (the pipeline type is
// injected by the factory package, which can see both).
type PipelineRunner func(table *DataTable, q *Query, collator *Collator, formatter Formatter, maxRows int, trace *ExecutionTrace) (*DataTable, error)

// Execute validates q against table's schema and, if valid, runs it
// through runPipeline. Locale defaults to cfg.Locale.DefaultLocale when
// table.Locale is empty.
func (e *Engine) Execute(table *DataTable, q *Query, runPipeline PipelineRunner) (*DataTable, error) {
	trace := NewExecutionTrace(e.logger)

	if err := q.Validate(table); err != nil {
		trace.Done(e.Config.Logging, 0, err)
		return nil, err
	}

	locale := table.Locale
	if locale == "" {
		locale = e.Config.Locale.DefaultLocale
	}
	collator := NewCollator(locale)

	result, err := runPipeline(table, q, collator, e.Formatter, e.Config.Query.MaxRows, trace)
	if err != nil {
		trace.Done(e.Config.Logging, 0, err)
		return nil, err
	}
	trace.Done(e.Config.Logging, len(result.Rows), nil)
	return result, nil
}

// Package factory wires together an Engine, its execution pipeline, and
// an optional DataSource — the composition root kept separate from the
// core so the root package never has to import internal/engine.
package factory

import (
	vizquery "github.com/lychee-technology/vizquery"
	"github.com/lychee-technology/vizquery/internal/engine"
)

// NewEngine builds a vizquery.Engine from cfg (nil for defaults).
//
// Usage:
//
//	import (
//	    vizquery "github.com/lychee-technology/vizquery"
//	    "github.com/lychee-technology/vizquery/factory"
//	)
//
//	eng, err := factory.NewEngine(vizquery.DefaultConfig())
//	table, err := factory.Execute(eng, dataTable, query)
func NewEngine(cfg *vizquery.ExecutionConfig) (*vizquery.Engine, error) {
	return vizquery.NewEngine(cfg)
}

// Execute runs q against table using eng, wiring internal/engine.RunPipeline
// as the pipeline runner.
func Execute(eng *vizquery.Engine, table *vizquery.DataTable, q *vizquery.Query) (*vizquery.DataTable, error) {
	return eng.Execute(table, q, engine.RunPipeline)
}

// ExecuteAgainstSource splits q by src's declared Capability, runs the
// source portion against src, and completes the remainder in-memory
// (§4.6's query splitting).
func ExecuteAgainstSource(eng *vizquery.Engine, src vizquery.DataSource, q *vizquery.Query) (*vizquery.DataTable, error) {
	if err := q.Validate(src.Schema()); err != nil {
		return nil, err
	}
	sourceQuery, completionQuery := engine.Split(q, src.Capability())
	partial, err := src.Execute(sourceQuery)
	if err != nil {
		return nil, err
	}
	return Execute(eng, partial, completionQuery)
}

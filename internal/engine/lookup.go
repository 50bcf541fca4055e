// Package engine implements the in-memory execution pipeline: filter,
// group+pivot, sort, paginate, select, label, and format, run in that
// fixed order against a vizquery.DataTable.
package engine

import (
	"fmt"

	vq "github.com/lychee-technology/vizquery"
)

// IdentityLookup resolves AbstractColumns directly against a table's raw
// cells: Simple columns by id, ScalarFunction columns by recursively
// evaluating their arguments. It is used before any GROUP BY/PIVOT has
// happened, where aggregation columns cannot legally appear (§4.5 rule 3).
type IdentityLookup struct {
	Table *vq.DataTable
}

func (l *IdentityLookup) Value(row *vq.Row, col vq.AbstractColumn) (vq.Value, error) {
	return evaluateColumn(row, col, l)
}

func (l *IdentityLookup) cellFor(row *vq.Row, columnID string) (vq.Value, bool) {
	idx := l.Table.ColumnIndex(columnID)
	if idx < 0 {
		return vq.Value{}, false
	}
	return row.Cells[idx].Value, true
}

// GenericLookup resolves AbstractColumns against an explicit id->value
// dictionary for a single synthesized row, ignoring the row argument.
// RunPipeline does not use it: after group/pivot it resolves columns
// with an IdentityLookup over the staged table.
type GenericLookup struct {
	Values map[string]vq.Value
}

func NewGenericLookup() *GenericLookup {
	return &GenericLookup{Values: make(map[string]vq.Value)}
}

func (l *GenericLookup) Set(col vq.AbstractColumn, v vq.Value) {
	l.Values[col.ID()] = v
}

func (l *GenericLookup) Value(row *vq.Row, col vq.AbstractColumn) (vq.Value, error) {
	v, ok := l.Values[col.ID()]
	if !ok {
		return vq.Value{}, vq.NewInternalError(fmt.Sprintf("no value staged for column %q", col.ID()))
	}
	return v, nil
}

// PivotedLookupMap indexes a GenericLookup per pivot-vector key, so a
// single output row spanning several pivot branches (one column group
// per distinct pivot value combination) can be resolved without
// flattening the branches into separate rows first.
type PivotedLookupMap struct {
	ByPivotKey map[string]*GenericLookup
}

func NewPivotedLookupMap() *PivotedLookupMap {
	return &PivotedLookupMap{ByPivotKey: make(map[string]*GenericLookup)}
}

func (m *PivotedLookupMap) Branch(pivotKey string) *GenericLookup {
	b, ok := m.ByPivotKey[pivotKey]
	if !ok {
		b = NewGenericLookup()
		m.ByPivotKey[pivotKey] = b
	}
	return b
}

// evaluateColumn computes col's value against row using lookup for its
// Simple leaves, recursing through ScalarFunction arguments. Aggregation
// columns must already have been resolved by the caller's lookup
// implementation (GenericLookup) or are a programming error here.
func evaluateColumn(row *vq.Row, col vq.AbstractColumn, lookup interface {
	cellFor(row *vq.Row, columnID string) (vq.Value, bool)
}) (vq.Value, error) {
	switch c := col.(type) {
	case *vq.LiteralColumn:
		return c.Value, nil
	case *vq.SimpleColumn:
		v, ok := lookup.cellFor(row, c.ColumnID)
		if !ok {
			return vq.Value{}, vq.NewInvalidQueryError(vq.CodeUnknownColumn, "unknown column").WithField(c.ColumnID)
		}
		return v, nil
	case *vq.ScalarFunctionColumn:
		args := make([]vq.Value, len(c.Args))
		for i, a := range c.Args {
			v, err := evaluateColumn(row, a, lookup)
			if err != nil {
				return vq.Value{}, err
			}
			args[i] = v
		}
		return ApplyScalarFunction(c.Fn, args)
	case *vq.AggregationColumn:
		// Only reachable post-group/pivot, where the staged table carries
		// a real column named by the aggregation's generated id.
		v, ok := lookup.cellFor(row, c.ID())
		if !ok {
			return vq.Value{}, vq.NewInternalError("aggregation column " + c.ID() + " not staged")
		}
		return v, nil
	default:
		return vq.Value{}, vq.NewInternalError("unknown abstract column variant")
	}
}

package engine

import (
	"strings"

	vq "github.com/lychee-technology/vizquery"
)

// aggregationColumnsIn collects every distinct aggregation column
// (by id) reachable from the selection and sort clauses — the set the
// tree needs to track running state for.
func aggregationColumnsIn(q *vq.Query) []*vq.AggregationColumn {
	seen := make(map[string]struct{})
	var out []*vq.AggregationColumn
	collect := func(cols []vq.AbstractColumn) {
		for _, c := range cols {
			for _, agg := range c.AllAggregationColumns() {
				if _, ok := seen[agg.ID()]; !ok {
					seen[agg.ID()] = struct{}{}
					out = append(out, agg)
				}
			}
		}
	}
	collect(q.Selection)
	sortCols := make([]vq.AbstractColumn, len(q.Sort))
	for i, s := range q.Sort {
		sortCols[i] = s.Column
	}
	collect(sortCols)
	return out
}

// RunGroupPivot folds table's rows into the aggregation tree keyed by
// q.Group/q.Pivot and materializes a staging *vq.DataTable whose rows
// are IdentityLookup-resolvable: group key columns keep their original
// ids, and aggregation columns are named by their generated id
// ("op-target"), once per distinct pivot vector prefixed with that
// vector's values joined by spaces (§4, §9's row/column title ordering).
// Pivot key values appear only in those prefixes, not as columns of
// their own.
func RunGroupPivot(table *vq.DataTable, q *vq.Query, collator *vq.Collator) (*vq.DataTable, []string, error) {
	aggCols := aggregationColumnsIn(q)

	tree := NewAggTree(q.Group, q.Pivot, aggCols, collator)
	identity := &IdentityLookup{Table: table}

	for i := range table.Rows {
		row := &table.Rows[i]
		groupKeys := make([]vq.Value, len(q.Group))
		for gi, col := range q.Group {
			v, err := identity.Value(row, col)
			if err != nil {
				return nil, nil, err
			}
			groupKeys[gi] = v
		}
		pivotKeys := make([]vq.Value, len(q.Pivot))
		for pi, col := range q.Pivot {
			v, err := identity.Value(row, col)
			if err != nil {
				return nil, nil, err
			}
			pivotKeys[pi] = v
		}
		aggValues := make(map[string]vq.Value, len(aggCols))
		for _, agg := range aggCols {
			v, err := identity.Value(row, agg.Target)
			if err != nil {
				return nil, nil, err
			}
			aggValues[agg.ID()] = v
		}
		tree.Add(groupKeys, pivotKeys, aggValues)
	}

	globalPivots := tree.AllPivotVectors()
	groupRows := tree.Rows(globalPivots)

	columns := make([]vq.ColumnDescription, 0, len(q.Group)+len(aggCols)*len(globalPivots))
	for _, col := range q.Group {
		t, _ := col.ValueType(table)
		columns = append(columns, vq.ColumnDescription{ID: col.ID(), Type: t})
	}

	outputColumnIDs := make([][]string, len(globalPivots))
	for pi, pivotVec := range globalPivots {
		prefix := pivotColumnPrefix(pivotVec)
		ids := make([]string, len(aggCols))
		for ai, agg := range aggCols {
			resultType := AggregationTargetType(agg, table)
			id := agg.ID()
			if prefix != "" {
				id = prefix + " " + agg.ID()
			}
			ids[ai] = id
			columns = append(columns, vq.ColumnDescription{ID: id, Type: resultType})
		}
		outputColumnIDs[pi] = ids
	}

	out, err := vq.NewDataTable(columns)
	if err != nil {
		return nil, nil, err
	}
	out.Locale = table.Locale

	for _, gr := range groupRows {
		values := make([]vq.Value, 0, len(columns))
		values = append(values, gr.GroupKeys...)
		for pi := range globalPivots {
			branch := gr.Branches[pi]
			for _, agg := range aggCols {
				resultType := AggregationTargetType(agg, table)
				if branch == nil {
					values = append(values, vq.NullOf(resultType))
					continue
				}
				state := branch.aggregates[agg.ID()]
				if state == nil {
					values = append(values, vq.NullOf(resultType))
					continue
				}
				values = append(values, state.finalize(agg.Op, resultType))
			}
		}
		if err := out.AddRow(values); err != nil {
			return nil, nil, err
		}
	}

	flatIDs := make([]string, 0, len(aggCols)*len(globalPivots))
	for _, ids := range outputColumnIDs {
		flatIDs = append(flatIDs, ids...)
	}
	return out, flatIDs, nil
}

func pivotColumnPrefix(pivotVec []vq.Value) string {
	if len(pivotVec) == 0 {
		return ""
	}
	parts := make([]string, len(pivotVec))
	for i, v := range pivotVec {
		parts[i] = v.ToString()
	}
	return strings.Join(parts, " ")
}

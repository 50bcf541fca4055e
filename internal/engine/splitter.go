package engine

import vq "github.com/lychee-technology/vizquery"

// Split partitions q into a data-source query (what src.Execute should
// run) and a completion query (what RunPipeline must still do against
// the source's result), based on src's declared Capability (§4.7).
//
//   - NONE: the source query is empty (select *, no filter/sort/page);
//     the completion query is q unchanged.
//   - SELECT: the source gets a selection of every simple column id
//     referenced anywhere in q (so scalar functions can be evaluated
//     against them); the completion query is q itself.
//   - SORT_AND_PAGINATION: falls back to NONE if q has scalar functions;
//     data-source is empty if q has filter, group, or pivot; otherwise
//     the source gets sort and (unless SKIPPING is present) limit+offset,
//     and completion carries selection/options/labels/formatting plus
//     skipping+limit+offset when SKIPPING is present.
//   - SQL: falls back to NONE if q has scalar functions, or pivots with
//     labels/formats on an aggregation column. With PIVOT, the source
//     groups by G++P and selects G++aggregations++P; the completion
//     query groups by G, pivots by P, and re-aggregates each prior
//     aggregation via MIN (each (G,P) group holds a single row after the
//     first stage). Without PIVOT, the source gets everything except
//     options/labels/formats, which move to completion, and skipping
//     moves limit+offset to completion alongside it.
//   - ALL: the source query is q itself; the completion query is empty.
func Split(q *vq.Query, capability vq.Capability) (sourceQuery *vq.Query, completionQuery *vq.Query) {
	switch capability {
	case vq.CapabilityAll:
		return q, vq.NewQuery()

	case vq.CapabilityNone:
		return vq.NewQuery(), q

	case vq.CapabilitySelect:
		source := vq.NewQuery()
		source.Selection = simpleColumnSelection(q)
		return source, q

	case vq.CapabilitySortAndPagination:
		return splitSortAndPagination(q)

	case vq.CapabilitySQL:
		return splitSQL(q)

	default:
		return vq.NewQuery(), q
	}
}

func splitSortAndPagination(q *vq.Query) (*vq.Query, *vq.Query) {
	if hasScalarFunctions(q) {
		return vq.NewQuery(), q
	}
	if q.Filter != nil || q.HasGroupOrPivot() {
		return vq.NewQuery(), q
	}

	source := vq.NewQuery()
	source.Sort = q.Sort

	completion := vq.NewQuery()
	completion.Selection = passthroughSelection(q.Selection)
	completion.Labels = q.Labels
	completion.Formats = q.Formats
	completion.Options = q.Options

	if q.Skip > 0 {
		completion.Skip = q.Skip
		completion.Limit = q.Limit
		completion.Offset = q.Offset
	} else {
		source.Limit = q.Limit
		source.Offset = q.Offset
	}
	return source, completion
}

func splitSQL(q *vq.Query) (*vq.Query, *vq.Query) {
	if hasScalarFunctions(q) || pivotLabelsOrFormatsOnAggregation(q) {
		return vq.NewQuery(), q
	}
	if len(q.Pivot) > 0 {
		return splitSQLPivot(q)
	}

	source := cloneQuery(q)
	source.Labels = nil
	source.Formats = nil
	source.Options = vq.QueryOptions{}

	completion := vq.NewQuery()
	completion.Selection = passthroughSelection(q.Selection)
	completion.Labels = q.Labels
	completion.Formats = q.Formats
	completion.Options = q.Options

	if q.Skip > 0 {
		completion.Skip = q.Skip
		completion.Limit = q.Limit
		completion.Offset = q.Offset
		source.Skip = 0
		source.Limit = -1
		source.Offset = 0
	}
	return source, completion
}

// splitSQLPivot implements §4.7's SQL+PIVOT rewrite (also §8's E6): the
// source query flattens GROUP BY to G++P with no pivot of its own (a SQL
// backend cannot express PIVOT) and selects G++aggregations++P; the
// completion query groups by G, pivots by P, and re-aggregates each
// prior aggregation's result column via MIN.
func splitSQLPivot(q *vq.Query) (*vq.Query, *vq.Query) {
	source := vq.NewQuery()
	source.Filter = q.Filter
	source.Group = append(append([]vq.AbstractColumn{}, q.Group...), q.Pivot...)
	source.Selection = append(append([]vq.AbstractColumn{}, q.Selection...), q.Pivot...)

	completion := vq.NewQuery()
	completion.Group = q.Group
	completion.Pivot = q.Pivot
	completion.Selection = make([]vq.AbstractColumn, len(q.Selection))
	for i, c := range q.Selection {
		if agg, ok := c.(*vq.AggregationColumn); ok {
			completion.Selection[i] = reaggregateAsMinOfResult(agg)
			continue
		}
		completion.Selection[i] = c
	}
	completion.Sort = q.Sort
	completion.Labels = q.Labels
	completion.Formats = q.Formats
	completion.Options = q.Options
	completion.Skip = q.Skip
	completion.Limit = q.Limit
	completion.Offset = q.Offset
	return source, completion
}

// reaggregateAsMinOfResult builds a fresh AggregationColumn over a Simple
// reference to orig's own result id, rather than mutating orig: orig still
// denotes the untouched aggregation pushed to the source query.
func reaggregateAsMinOfResult(orig *vq.AggregationColumn) *vq.AggregationColumn {
	resultCol, err := vq.NewSimpleColumn(orig.ID())
	if err != nil {
		resultCol = &vq.SimpleColumn{ColumnID: orig.ID()}
	}
	return vq.NewAggregationColumn(resultCol, vq.AggMin)
}

// hasScalarFunctions reports whether any clause of q references a scalar
// function column — the SORT_AND_PAGINATION and SQL capabilities cannot
// evaluate those themselves and must fall back to NONE (§4.7).
func hasScalarFunctions(q *vq.Query) bool {
	anyScalar := func(cols []vq.AbstractColumn) bool {
		for _, c := range cols {
			if len(c.AllScalarFunctionColumns()) > 0 {
				return true
			}
		}
		return false
	}
	if anyScalar(q.Selection) || anyScalar(q.Group) || anyScalar(q.Pivot) {
		return true
	}
	sortCols := make([]vq.AbstractColumn, len(q.Sort))
	for i, s := range q.Sort {
		sortCols[i] = s.Column
	}
	if anyScalar(sortCols) {
		return true
	}
	if q.Filter != nil {
		return anyScalar(q.Filter.AllColumns())
	}
	return false
}

// pivotLabelsOrFormatsOnAggregation reports whether q pivots and also
// labels or formats one of its aggregation columns — a combination the
// SQL capability cannot push down (§4.7's SQL fallback condition).
func pivotLabelsOrFormatsOnAggregation(q *vq.Query) bool {
	if len(q.Pivot) == 0 {
		return false
	}
	aggIDs := make(map[string]struct{})
	for _, agg := range aggregationColumnsIn(q) {
		aggIDs[agg.ID()] = struct{}{}
	}
	for id := range q.Labels {
		if _, ok := aggIDs[id]; ok {
			return true
		}
	}
	for id := range q.Formats {
		if _, ok := aggIDs[id]; ok {
			return true
		}
	}
	return false
}

// simpleColumnLeaves walks col down to the raw Simple columns it reads
// from — an aggregation's own Target counts (unlike AllSimpleColumns,
// which is reserved for columns exposed directly, not via an aggregation).
func simpleColumnLeaves(col vq.AbstractColumn) []*vq.SimpleColumn {
	switch c := col.(type) {
	case *vq.SimpleColumn:
		return []*vq.SimpleColumn{c}
	case *vq.AggregationColumn:
		return simpleColumnLeaves(c.Target)
	case *vq.ScalarFunctionColumn:
		var out []*vq.SimpleColumn
		for _, a := range c.Args {
			out = append(out, simpleColumnLeaves(a)...)
		}
		return out
	default:
		return nil
	}
}

// simpleColumnSelection collects every distinct simple column id
// referenced anywhere in q, for the SELECT capability's data-source query.
func simpleColumnSelection(q *vq.Query) []vq.AbstractColumn {
	seen := make(map[string]struct{})
	var out []vq.AbstractColumn
	collect := func(cols []vq.AbstractColumn) {
		for _, c := range cols {
			for _, simple := range simpleColumnLeaves(c) {
				if _, ok := seen[simple.ColumnID]; !ok {
					seen[simple.ColumnID] = struct{}{}
					out = append(out, simple)
				}
			}
		}
	}
	collect(q.Selection)
	collect(q.Group)
	collect(q.Pivot)
	sortCols := make([]vq.AbstractColumn, len(q.Sort))
	for i, s := range q.Sort {
		sortCols[i] = s.Column
	}
	collect(sortCols)
	if q.Filter != nil {
		collect(q.Filter.AllColumns())
	}
	return out
}

func passthroughSelection(selection []vq.AbstractColumn) []vq.AbstractColumn {
	out := make([]vq.AbstractColumn, len(selection))
	for i, col := range selection {
		simple, err := vq.NewSimpleColumn(col.ID())
		if err != nil {
			out[i] = col
			continue
		}
		out[i] = simple
	}
	return out
}

func cloneQuery(q *vq.Query) *vq.Query {
	clone := *q
	return &clone
}

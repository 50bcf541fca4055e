package engine

import vq "github.com/lychee-technology/vizquery"

// RunPipeline executes a validated Query against table in the fixed
// stage order of §4: filter, group+pivot, sort, skip+paginate, select,
// label, format. Callers (vizquery.Engine.Execute) must have already
// called q.Validate.
func RunPipeline(table *vq.DataTable, q *vq.Query, collator *vq.Collator, formatter vq.Formatter, maxRows int, trace *vq.ExecutionTrace) (*vq.DataTable, error) {
	stage := func(name string) {
		if trace != nil {
			trace.Stage(name)
		}
	}

	stage("filter")
	filtered, err := RunFilter(table, q.Filter)
	if err != nil {
		return nil, err
	}

	current := filtered
	var lookup vq.ColumnLookup = &IdentityLookup{Table: current}
	groupedOrPivoted := q.HasGroupOrPivot()

	if groupedOrPivoted {
		stage("group_pivot")
		staged, _, err := RunGroupPivot(current, q, collator)
		if err != nil {
			return nil, err
		}
		current = staged
		lookup = &IdentityLookup{Table: current}
	}

	if len(q.Sort) > 0 {
		stage("sort")
		if err := RunSort(current, q.Sort, lookup, collator); err != nil {
			return nil, err
		}
	}

	stage("paginate")
	current = RunPaginate(current, q.Skip, q.Offset, q.Limit, maxRows)

	stage("select")
	var projected *vq.DataTable
	if groupedOrPivoted {
		projected, err = RunSelectAfterGroupPivot(current, q.Selection)
	} else {
		projected, err = RunSelect(current, q.Selection, lookup)
	}
	if err != nil {
		return nil, err
	}

	stage("label")
	ApplyLabelsAndFormats(projected, q.Labels, q.Formats)

	stage("format")
	if err := RunFormat(projected, formatter, q.Options); err != nil {
		return nil, err
	}
	StripValues(projected, q.Options)

	return projected, nil
}

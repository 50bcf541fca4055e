package engine

import (
	"strings"

	vq "github.com/lychee-technology/vizquery"
)

// RunSelect projects q.Selection out of table into a new table whose
// columns are exactly the selection, in order, resolving each cell with
// lookup so the same stage works pre- or post-group/pivot.
func RunSelect(table *vq.DataTable, selection []vq.AbstractColumn, lookup vq.ColumnLookup) (*vq.DataTable, error) {
	if len(selection) == 0 {
		return table, nil
	}
	columns := make([]vq.ColumnDescription, len(selection))
	for i, col := range selection {
		t, err := col.ValueType(table)
		if err != nil {
			return nil, err
		}
		columns[i] = vq.ColumnDescription{ID: col.ID(), Type: t, Label: col.ID()}
	}
	out, err := vq.NewDataTable(columns)
	if err != nil {
		return nil, err
	}
	out.Locale = table.Locale

	for i := range table.Rows {
		row := &table.Rows[i]
		values := make([]vq.Value, len(selection))
		for ci, col := range selection {
			v, err := lookup.Value(row, col)
			if err != nil {
				return nil, err
			}
			values[ci] = v
		}
		if err := out.AddRow(values); err != nil {
			return nil, err
		}
	}
	out.Warnings = append(out.Warnings, table.Warnings...)
	return out, nil
}

// RunSelectAfterGroupPivot projects a selection against a staged
// group/pivot table. Group key columns and aggregation columns with no
// PIVOT clause are a 1:1 copy by generated id (a PIVOT key column has no
// staged column, so selecting one is an error); aggregation
// columns under a PIVOT expand into every staged column whose id ends
// in " "+agg.ID(), one per distinct pivot vector, in the staged table's
// existing (sorted) column order — there is no single per-row value to
// ask a ColumnLookup for once an aggregate has fanned out across pivot
// columns.
func RunSelectAfterGroupPivot(staged *vq.DataTable, selection []vq.AbstractColumn) (*vq.DataTable, error) {
	if len(selection) == 0 {
		return staged, nil
	}
	var columns []vq.ColumnDescription
	var sourceIdx [][]int // per output column group, the staged column indexes it copies from

	for _, col := range selection {
		if _, isAgg := col.(*vq.AggregationColumn); isAgg {
			matched := matchAggregationColumns(staged, col.ID())
			for _, idx := range matched {
				columns = append(columns, staged.Columns[idx])
				sourceIdx = append(sourceIdx, []int{idx})
			}
			continue
		}
		idx := staged.ColumnIndex(col.ID())
		if idx < 0 {
			return nil, vq.NewInvalidQueryError(vq.CodeUnknownColumn, "selected column not present after group/pivot").WithField(col.ID())
		}
		t, err := col.ValueType(staged)
		if err != nil {
			return nil, err
		}
		columns = append(columns, vq.ColumnDescription{ID: col.ID(), Type: t, Label: col.ID()})
		sourceIdx = append(sourceIdx, []int{idx})
	}

	out, err := vq.NewDataTable(columns)
	if err != nil {
		return nil, err
	}
	out.Locale = staged.Locale
	out.Warnings = append(out.Warnings, staged.Warnings...)

	for ri := range staged.Rows {
		values := make([]vq.Value, 0, len(columns))
		for _, group := range sourceIdx {
			for _, idx := range group {
				values = append(values, staged.Rows[ri].Cells[idx].Value)
			}
		}
		if err := out.AddRow(values); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// matchAggregationColumns finds every staged column whose id is
// exactly aggID (no pivot) or ends in " "+aggID (pivoted), preserving
// staged column order.
func matchAggregationColumns(staged *vq.DataTable, aggID string) []int {
	var matched []int
	suffix := " " + aggID
	for i, col := range staged.Columns {
		if col.ID == aggID || strings.HasSuffix(col.ID, suffix) {
			matched = append(matched, i)
		}
	}
	return matched
}

// ApplyLabelsAndFormats overwrites each selected column's Label and
// Pattern from q.Labels/q.Formats (§4.2's label/format clauses, §4.5
// rule 11 already guarantees every key names a selected column).
func ApplyLabelsAndFormats(table *vq.DataTable, labels, formats map[string]string) {
	for i := range table.Columns {
		col := &table.Columns[i]
		if label, ok := labels[col.ID]; ok {
			col.Label = label
		}
		if pattern, ok := formats[col.ID]; ok {
			col.Pattern = pattern
		}
	}
}

package engine

import vq "github.com/lychee-technology/vizquery"

// RunFilter keeps only the rows of table that satisfy f, evaluated
// against the raw table (aggregations cannot appear here — enforced at
// validation time, §4.5 rule 3).
func RunFilter(table *vq.DataTable, f vq.Filter) (*vq.DataTable, error) {
	if f == nil {
		return table, nil
	}
	lookup := &IdentityLookup{Table: table}
	out := table.Clone()
	out.Rows = out.Rows[:0]
	for i := range table.Rows {
		row := &table.Rows[i]
		keep, err := f.Evaluate(row, lookup)
		if err != nil {
			return nil, err
		}
		if keep {
			out.Rows = append(out.Rows, *row)
		}
	}
	return out, nil
}

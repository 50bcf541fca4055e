package engine

import (
	"sort"

	vq "github.com/lychee-technology/vizquery"
)

// RunSort orders table's rows by spec, stably, using lookup to resolve
// each sort column's value per row (lookup lets the same stage sort a
// raw table or a post-group/pivot staging table).
func RunSort(table *vq.DataTable, spec []vq.SortSpec, lookup vq.ColumnLookup, collator *vq.Collator) error {
	if len(spec) == 0 {
		return nil
	}
	var sortErr error
	rows := table.Rows
	sort.SliceStable(rows, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		for _, s := range spec {
			vi, err := lookup.Value(&rows[i], s.Column)
			if err != nil {
				sortErr = err
				return false
			}
			vj, err := lookup.Value(&rows[j], s.Column)
			if err != nil {
				sortErr = err
				return false
			}
			cmp, ok := collator.Compare(vi, vj)
			if !ok || cmp == 0 {
				continue
			}
			if s.Direction == vq.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return sortErr
}

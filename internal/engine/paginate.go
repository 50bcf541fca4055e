package engine

import vq "github.com/lychee-technology/vizquery"

// RunPaginate applies skipping (stride sampling: rows at input positions
// 0, skip, 2*skip, … survive, applied before pagination per §9's resolved
// open question), then offset, then limit, then finally the
// configuration's hard MaxRows ceiling — attaching a DATA_TRUNCATED
// warning when that ceiling, rather than the query's own limit, is what
// cut the result short.
func RunPaginate(table *vq.DataTable, skip, offset, limit, maxRows int) *vq.DataTable {
	rows := table.Rows
	if skip > 0 {
		strided := make([]vq.Row, 0, len(rows)/skip+1)
		for i, r := range rows {
			if i%skip == 0 {
				strided = append(strided, r)
			}
		}
		rows = strided
	}
	if offset > 0 {
		if offset >= len(rows) {
			rows = nil
		} else {
			rows = rows[offset:]
		}
	}
	truncatedByLimit := false
	if limit >= 0 && limit < len(rows) {
		rows = rows[:limit]
		truncatedByLimit = true
	}
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
		if !truncatedByLimit {
			table.AddWarning(vq.WarningDataTruncated, "result truncated to the configured maximum row count")
		}
	}
	table.Rows = rows
	return table
}

package engine

import vq "github.com/lychee-technology/vizquery"

// RunFormat fills in each cell's FormattedText using formatter and the
// owning column's Pattern/table locale. Columns with no Pattern are left
// with HasFormatted=false so a renderer knows to fall back to the raw
// value. Skipped entirely when opts.NoFormat is set (§4.2's options
// clause).
func RunFormat(table *vq.DataTable, formatter vq.Formatter, opts vq.QueryOptions) error {
	if opts.NoFormat || formatter == nil {
		return nil
	}
	for ci, col := range table.Columns {
		if col.Pattern == "" {
			continue
		}
		for ri := range table.Rows {
			cell := &table.Rows[ri].Cells[ci]
			text, err := formatter.Format(cell.Value, col.Pattern, table.Locale)
			if err != nil {
				table.AddWarning(vq.WarningIllegalFormattingPattern,
					"pattern "+col.Pattern+" could not be applied to column "+col.ID)
				continue
			}
			cell.FormattedText = text
			cell.HasFormatted = true
		}
	}
	return nil
}

// StripValues clears Value payloads when opts.NoValues is set, leaving
// only FormattedText — callers must have already run RunFormat first.
func StripValues(table *vq.DataTable, opts vq.QueryOptions) {
	if !opts.NoValues {
		return
	}
	for ri := range table.Rows {
		for ci := range table.Rows[ri].Cells {
			cell := &table.Rows[ri].Cells[ci]
			cell.Value = vq.NullOf(table.Columns[ci].Type)
		}
	}
}

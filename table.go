package vizquery

import "fmt"

// ColumnDescription is a column's schema: id, type, label, optional
// formatting pattern, and custom properties. Column ids are unique within
// a DataTable.
type ColumnDescription struct {
	ID         string
	Type       Type
	Label      string
	Pattern    string
	Properties map[string]string
}

// Cell is (value, optional formatted text, custom properties). A null
// cell with non-empty formatted text is legal — the formatted text
// survives stages that don't touch it.
type Cell struct {
	Value          Value
	FormattedText  string
	HasFormatted   bool
	Properties     map[string]string
}

// Row is an ordered sequence of cells, one per column of the owning table.
type Row struct {
	Cells      []Cell
	Properties map[string]string
}

// WarningCode enumerates the non-fatal diagnostics the pipeline can attach
// to an output table.
type WarningCode string

const (
	WarningDataTruncated            WarningCode = CodeDataTruncated
	WarningIllegalFormattingPattern WarningCode = CodeIllegalFormattingPattern
)

// Warning is a non-fatal diagnostic attached to an output table (§3, §7).
type Warning struct {
	Code    WarningCode
	Message string
}

// DataTable is an ordered list of typed columns plus an ordered list of
// rows, each with exactly one cell per column (§3).
type DataTable struct {
	Columns    []ColumnDescription
	Rows       []Row
	Warnings   []Warning
	Locale     string
	Properties map[string]string
}

// NewDataTable constructs an empty table over the given columns. Column
// ids must be unique; duplicates are a programming error.
func NewDataTable(columns []ColumnDescription) (*DataTable, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, dup := seen[c.ID]; dup {
			return nil, NewInternalErrorWithCode(CodeDuplicateColumn, fmt.Sprintf("duplicate column id %q", c.ID))
		}
		seen[c.ID] = struct{}{}
	}
	cols := make([]ColumnDescription, len(columns))
	copy(cols, columns)
	return &DataTable{Columns: cols}, nil
}

// ColumnIndex returns the position of the column with the given id, or -1.
func (t *DataTable) ColumnIndex(id string) int {
	for i, c := range t.Columns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// AddWarning appends a non-fatal diagnostic.
func (t *DataTable) AddWarning(code WarningCode, message string) {
	t.Warnings = append(t.Warnings, Warning{Code: code, Message: message})
}

// AddRow appends values in column order. Fewer values than columns pads
// the remainder with typed nulls (§3); more values than columns, or a
// value whose type doesn't match its column (and isn't that column's
// null), is a type-mismatch error that propagates to the caller — unlike
// the silent row-drop the group+pivot staging table uses internally
// (SPEC_FULL §12, spec.md §9 open question 2).
func (t *DataTable) AddRow(values []Value) error {
	if len(values) > len(t.Columns) {
		return NewInvalidQueryError(CodeTypeMismatch, fmt.Sprintf("row has %d values for %d columns", len(values), len(t.Columns)))
	}
	cells := make([]Cell, len(t.Columns))
	for i, col := range t.Columns {
		if i < len(values) {
			v := values[i]
			if !v.IsNull() && v.TypeOf() != col.Type {
				return NewInvalidQueryError(CodeTypeMismatch,
					fmt.Sprintf("column %q expects %s, got %s", col.ID, col.Type, v.TypeOf())).
					WithField(col.ID)
			}
			cells[i] = Cell{Value: v}
		} else {
			cells[i] = Cell{Value: NullOf(col.Type)}
		}
	}
	t.Rows = append(t.Rows, Row{Cells: cells})
	return nil
}

// Clone produces a shallow structural copy: column descriptions and row
// slices are copied, but Properties maps are shared (they are treated as
// immutable once attached, per §5's "implementations may share immutable
// column descriptions across tables").
func (t *DataTable) Clone() *DataTable {
	cols := make([]ColumnDescription, len(t.Columns))
	copy(cols, t.Columns)
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		cells := make([]Cell, len(r.Cells))
		copy(cells, r.Cells)
		rows[i] = Row{Cells: cells, Properties: r.Properties}
	}
	warnings := make([]Warning, len(t.Warnings))
	copy(warnings, t.Warnings)
	return &DataTable{
		Columns:    cols,
		Rows:       rows,
		Warnings:   warnings,
		Locale:     t.Locale,
		Properties: t.Properties,
	}
}

// CellValue returns the value at (row, columnIndex).
func (t *DataTable) CellValue(rowIdx, columnIdx int) Value {
	return t.Rows[rowIdx].Cells[columnIdx].Value
}

package vizquery

import "fmt"

// SortDirection is ASC or DESC for a single sort spec entry.
type SortDirection string

const (
	Ascending  SortDirection = "ASC"
	Descending SortDirection = "DESC"
)

// SortSpec is one entry of the ORDER BY clause.
type SortSpec struct {
	Column    AbstractColumn
	Direction SortDirection
}

// QueryOptions carries the NO_VALUES / NO_FORMAT rendering switches
// (§4.2's options clause).
type QueryOptions struct {
	NoValues bool
	NoFormat bool
}

// Query is the fully-parsed, not-yet-validated request: one clause per
// field, assembled by an external parser or built programmatically and
// then run through Validate exactly once before execution (§4.2, §4.5).
type Query struct {
	Selection []AbstractColumn
	Filter    Filter // nil means "no filter"
	Group     []AbstractColumn
	Pivot     []AbstractColumn
	Sort      []SortSpec
	Skip      int
	Limit     int // <0 means "no limit"
	Offset    int
	Labels    map[string]string // column id -> label override
	Formats   map[string]string // column id -> format pattern override
	Options   QueryOptions
}

// NewQuery returns a Query with defaults matching an empty clause list:
// Limit -1 (unbounded), Skip/Offset 0.
func NewQuery() *Query {
	return &Query{Limit: -1}
}

// Validate runs the eleven cross-clause rules of §4.5 against schema.
// It is idempotent and side-effect free; callers run it exactly once
// before handing the query to the execution pipeline.
func (q *Query) Validate(schema Schema) error {
	if err := q.validateColumnsExist(schema); err != nil {
		return err
	}
	if err := q.validateNoDuplicateSelection(); err != nil {
		return err
	}
	if err := q.validateNoSimpleAggregationCollision(); err != nil {
		return err
	}
	if err := q.validateNoAggregationInFilter(); err != nil {
		return err
	}
	if err := q.validateNoAggregationInGroupOrPivot(); err != nil {
		return err
	}
	if err := q.validateNoColumnInBothGroupAndPivot(); err != nil {
		return err
	}
	if err := q.validateGroupPivotRequiresAggregation(); err != nil {
		return err
	}
	if err := q.validateSelectionAgainstGroupPivot(); err != nil {
		return err
	}
	if err := q.validateSort(); err != nil {
		return err
	}
	if err := q.validateLabelsAndFormats(); err != nil {
		return err
	}
	if err := q.validateSkip(); err != nil {
		return err
	}
	return nil
}

// allReferencedColumns returns every AbstractColumn referenced anywhere
// in the query, for existence checking (rule 1).
func (q *Query) allReferencedColumns() []AbstractColumn {
	var out []AbstractColumn
	out = append(out, q.Selection...)
	if q.Filter != nil {
		out = append(out, q.Filter.AllColumns()...)
	}
	out = append(out, q.Group...)
	out = append(out, q.Pivot...)
	for _, s := range q.Sort {
		out = append(out, s.Column)
	}
	return out
}

// Rule 1: every column referenced anywhere must resolve against schema.
func (q *Query) validateColumnsExist(schema Schema) error {
	for _, col := range q.allReferencedColumns() {
		if err := col.Validate(schema); err != nil {
			return err
		}
	}
	return nil
}

// Rule 3: no duplicate columns within selection, sort, group-by, or pivot
// (each clause is checked independently by generated id).
func (q *Query) validateNoDuplicateSelection() error {
	if err := validateNoDuplicateIDs(q.Selection); err != nil {
		return err
	}
	sortCols := make([]AbstractColumn, len(q.Sort))
	for i, s := range q.Sort {
		sortCols[i] = s.Column
	}
	if err := validateNoDuplicateIDs(sortCols); err != nil {
		return err
	}
	if err := validateNoDuplicateIDs(q.Group); err != nil {
		return err
	}
	if err := validateNoDuplicateIDs(q.Pivot); err != nil {
		return err
	}
	return nil
}

func validateNoDuplicateIDs(cols []AbstractColumn) error {
	seen := make(map[string]struct{}, len(cols))
	for _, col := range cols {
		id := col.ID()
		if _, dup := seen[id]; dup {
			return NewInvalidQueryError(CodeColSelectedTwice, fmt.Sprintf("column %q selected more than once", id)).WithField(id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Rule 6: selecting the same simple column both plainly and as an
// aggregation target is forbidden, e.g. SELECT amount, SUM(amount).
func (q *Query) validateNoSimpleAggregationCollision() error {
	aggregatedTargets := make(map[string]struct{})
	for _, col := range q.Selection {
		if agg, ok := col.(*AggregationColumn); ok {
			aggregatedTargets[agg.Target.ColumnID] = struct{}{}
		}
	}
	for _, col := range q.Selection {
		simple, ok := col.(*SimpleColumn)
		if !ok {
			continue
		}
		if _, collides := aggregatedTargets[simple.ColumnID]; collides {
			return NewInvalidQueryError(CodeColSelectedTwice,
				fmt.Sprintf("column %q selected both plainly and as an aggregation", simple.ColumnID)).WithField(simple.ColumnID)
		}
	}
	return nil
}

// Rule 3: aggregation functions cannot appear in the filter clause —
// grouping/pivoting happens after filtering, so no running aggregate
// exists yet to filter against.
func (q *Query) validateNoAggregationInFilter() error {
	if q.Filter == nil {
		return nil
	}
	for _, col := range q.Filter.AllColumns() {
		if IsAggregation(col) {
			return NewInvalidQueryError(CodeAggInGroupPivotWhere, "aggregation not allowed in WHERE clause").WithField(col.ID())
		}
	}
	return nil
}

// Rule 4/5: columns in GROUP BY and PIVOT cannot themselves be
// aggregations — they name the key columns the aggregation tree groups
// rows by.
func (q *Query) validateNoAggregationInGroupOrPivot() error {
	for _, col := range q.Group {
		if IsAggregation(col) {
			return NewInvalidQueryError(CodeAggInGroupBy, "aggregation not allowed in GROUP BY").WithField(col.ID())
		}
	}
	for _, col := range q.Pivot {
		if IsAggregation(col) {
			return NewInvalidQueryError(CodeAggInGroupBy, "aggregation not allowed in PIVOT").WithField(col.ID())
		}
	}
	return nil
}

// Rule 6: a column cannot appear in both GROUP BY and PIVOT.
func (q *Query) validateNoColumnInBothGroupAndPivot() error {
	groupIDs := make(map[string]struct{}, len(q.Group))
	for _, col := range q.Group {
		groupIDs[col.ID()] = struct{}{}
	}
	for _, col := range q.Pivot {
		if _, inGroup := groupIDs[col.ID()]; inGroup {
			return NewInvalidQueryError(CodeColInBothGroupAndPivot, fmt.Sprintf("column %q in both GROUP BY and PIVOT", col.ID())).WithField(col.ID())
		}
	}
	return nil
}

// Rule 7: GROUP BY/PIVOT without at least one aggregation in SELECT is
// meaningless — there would be nothing to aggregate per group.
func (q *Query) validateGroupPivotRequiresAggregation() error {
	if len(q.Group) == 0 && len(q.Pivot) == 0 {
		return nil
	}
	for _, col := range q.Selection {
		if IsAggregation(col) {
			return nil
		}
	}
	return NewInvalidQueryError(CodeCannotGroupPivotWithoutAgg, "GROUP BY/PIVOT requires at least one aggregation in SELECT")
}

// Rule 8: when GROUP BY/PIVOT is present, every selected column must
// either be an aggregation or match a GROUP BY or PIVOT column by
// generated id. A scalar function over a key column (e.g. year(d) under
// GROUP BY d) is rejected unless that same scalar-function column is
// itself a GROUP BY/PIVOT entry.
func (q *Query) validateSelectionAgainstGroupPivot() error {
	if len(q.Group) == 0 && len(q.Pivot) == 0 {
		return nil
	}
	keyIDs := make(map[string]struct{}, len(q.Group)+len(q.Pivot))
	for _, col := range q.Group {
		keyIDs[col.ID()] = struct{}{}
	}
	for _, col := range q.Pivot {
		keyIDs[col.ID()] = struct{}{}
	}
	for _, col := range q.Selection {
		if IsAggregation(col) {
			continue
		}
		if _, isKey := keyIDs[col.ID()]; isKey {
			continue
		}
		return NewInvalidQueryError(CodeColAggNotInSelect,
			fmt.Sprintf("column %q must be aggregated or appear in GROUP BY/PIVOT", col.ID())).WithField(col.ID())
	}
	return nil
}

// Rule 9/10: ORDER BY columns must appear in SELECT (when SELECT is
// non-empty), and ORDER BY cannot reference an aggregation column when
// PIVOT is present — a pivoted aggregation explodes into one output
// column per pivot value, so a single ORDER BY target is ambiguous.
func (q *Query) validateSort() error {
	selectedIDs := make(map[string]struct{}, len(q.Selection))
	for _, col := range q.Selection {
		selectedIDs[col.ID()] = struct{}{}
	}
	for _, s := range q.Sort {
		if len(q.Selection) > 0 {
			if _, ok := selectedIDs[s.Column.ID()]; !ok {
				return NewInvalidQueryError(CodeOrderByNotInSelect, fmt.Sprintf("ORDER BY column %q not in SELECT", s.Column.ID())).WithField(s.Column.ID())
			}
		}
		if len(q.Pivot) > 0 && IsAggregation(s.Column) {
			return NewInvalidQueryError(CodeOrderByAggWithPivot, fmt.Sprintf("cannot ORDER BY aggregated column %q when PIVOT is used", s.Column.ID())).WithField(s.Column.ID())
		}
	}
	return nil
}

// Rule 11: LABEL and FORMAT targets must name a selected column.
func (q *Query) validateLabelsAndFormats() error {
	selectedIDs := make(map[string]struct{}, len(q.Selection))
	for _, col := range q.Selection {
		selectedIDs[col.ID()] = struct{}{}
	}
	check := func(id string) error {
		if len(q.Selection) == 0 {
			return nil
		}
		if _, ok := selectedIDs[id]; !ok {
			return NewInvalidQueryError(CodeLabelFormatNotInSelect, fmt.Sprintf("LABEL/FORMAT target %q not in SELECT", id)).WithField(id)
		}
		return nil
	}
	for id := range q.Labels {
		if err := check(id); err != nil {
			return err
		}
	}
	for id := range q.Formats {
		if err := check(id); err != nil {
			return err
		}
	}
	return nil
}

// skip/offset must be non-negative (§4.2).
func (q *Query) validateSkip() error {
	if q.Skip < 0 {
		return NewInvalidQueryError(CodeNegativeSkip, "SKIP must be non-negative")
	}
	if q.Offset < 0 {
		return NewInvalidQueryError(CodeNegativeSkip, "OFFSET must be non-negative")
	}
	return nil
}

// HasGroupOrPivot reports whether the query collapses rows via GROUP BY
// or PIVOT.
func (q *Query) HasGroupOrPivot() bool {
	return len(q.Group) > 0 || len(q.Pivot) > 0
}

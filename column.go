package vizquery

import "strings"

// Schema is the minimal surface an AbstractColumn needs to resolve its own
// value type and validate itself: a lookup from column id to declared
// type. *DataTable implements it directly.
type Schema interface {
	ColumnType(id string) (Type, bool)
}

// ColumnType implements Schema for *DataTable.
func (t *DataTable) ColumnType(id string) (Type, bool) {
	idx := t.ColumnIndex(id)
	if idx < 0 {
		return "", false
	}
	return t.Columns[idx].Type, true
}

// AggOp is one of the five aggregation operators (§4.2's aggregation row,
// §6).
type AggOp string

const (
	AggCount AggOp = "count"
	AggSum   AggOp = "sum"
	AggAvg   AggOp = "avg"
	AggMin   AggOp = "min"
	AggMax   AggOp = "max"
)

// AbstractColumn is the sum type over Simple/Aggregation/ScalarFunction
// (§4's Column AST). Every variant exposes its generated id, its value
// type against a given schema, validation, recursive accessors, and a
// query-string rendering — the stable identity used to match columns
// across pipeline stages is always ID().
type AbstractColumn interface {
	ID() string
	ValueType(schema Schema) (Type, error)
	Validate(schema Schema) error
	AllSimpleColumns() []*SimpleColumn
	AllAggregationColumns() []*AggregationColumn
	AllScalarFunctionColumns() []*ScalarFunctionColumn
	ToQueryString() string
	Equals(other AbstractColumn) bool
}

// SimpleColumn references a column of the table directly by id.
type SimpleColumn struct {
	ColumnID string
}

// NewSimpleColumn validates that id contains no backtick (§4's AST rule)
// and constructs a SimpleColumn.
func NewSimpleColumn(id string) (*SimpleColumn, error) {
	if strings.Contains(id, "`") {
		return nil, NewInvalidQueryError(CodeUnknownColumn, "column id must not contain a backtick").WithField(id)
	}
	return &SimpleColumn{ColumnID: id}, nil
}

func (s *SimpleColumn) ID() string { return s.ColumnID }

func (s *SimpleColumn) ValueType(schema Schema) (Type, error) {
	t, ok := schema.ColumnType(s.ColumnID)
	if !ok {
		return "", NewInvalidQueryError(CodeUnknownColumn, "unknown column").WithField(s.ColumnID)
	}
	return t, nil
}

func (s *SimpleColumn) Validate(schema Schema) error {
	_, err := s.ValueType(schema)
	return err
}

func (s *SimpleColumn) AllSimpleColumns() []*SimpleColumn { return []*SimpleColumn{s} }
func (s *SimpleColumn) AllAggregationColumns() []*AggregationColumn { return nil }
func (s *SimpleColumn) AllScalarFunctionColumns() []*ScalarFunctionColumn { return nil }
func (s *SimpleColumn) ToQueryString() string { return "`" + s.ColumnID + "`" }
func (s *SimpleColumn) Equals(other AbstractColumn) bool {
	o, ok := other.(*SimpleColumn)
	return ok && o.ColumnID == s.ColumnID
}

// AggregationColumn pairs a target Simple column with an operator
// (§4's Column AST: Aggregation(target, op)).
type AggregationColumn struct {
	Target *SimpleColumn
	Op     AggOp
}

// NewAggregationColumn constructs an aggregation over target.
func NewAggregationColumn(target *SimpleColumn, op AggOp) *AggregationColumn {
	return &AggregationColumn{Target: target, Op: op}
}

func (a *AggregationColumn) ID() string {
	return string(a.Op) + "-" + a.Target.ColumnID
}

func (a *AggregationColumn) ValueType(schema Schema) (Type, error) {
	targetType, err := a.Target.ValueType(schema)
	if err != nil {
		return "", err
	}
	switch a.Op {
	case AggCount:
		return Number, nil
	case AggSum, AggAvg:
		if targetType != Number {
			return "", NewInvalidQueryError(CodeAvgSumOnlyNumeric,
				"SUM/AVG only accept NUMBER columns").WithField(a.Target.ColumnID)
		}
		return Number, nil
	case AggMin, AggMax:
		return targetType, nil
	default:
		return "", NewInternalErrorWithCode(CodeUnknownAggregationOp, "unknown aggregation operator "+string(a.Op))
	}
}

func (a *AggregationColumn) Validate(schema Schema) error {
	_, err := a.ValueType(schema)
	return err
}

func (a *AggregationColumn) AllSimpleColumns() []*SimpleColumn { return nil }
func (a *AggregationColumn) AllAggregationColumns() []*AggregationColumn {
	return []*AggregationColumn{a}
}
func (a *AggregationColumn) AllScalarFunctionColumns() []*ScalarFunctionColumn { return nil }
func (a *AggregationColumn) ToQueryString() string {
	return string(a.Op) + "(" + a.Target.ToQueryString() + ")"
}
func (a *AggregationColumn) Equals(other AbstractColumn) bool {
	o, ok := other.(*AggregationColumn)
	return ok && o.Op == a.Op && o.Target.Equals(a.Target)
}

// ScalarFunctionColumn applies a named scalar function to a list of
// (arbitrarily nested) abstract column arguments.
type ScalarFunctionColumn struct {
	Fn   string
	Args []AbstractColumn
}

// NewScalarFunctionColumn constructs a scalar-function column. fn must
// name a function in the catalog (checked by Validate, not here, so
// AST construction never needs the catalog).
func NewScalarFunctionColumn(fn string, args []AbstractColumn) *ScalarFunctionColumn {
	return &ScalarFunctionColumn{Fn: strings.ToLower(fn), Args: args}
}

func (s *ScalarFunctionColumn) ID() string {
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.ID()
	}
	return s.Fn + "_" + strings.Join(parts, ",")
}

func (s *ScalarFunctionColumn) ValueType(schema Schema) (Type, error) {
	fn, ok := LookupScalarFunc(s.Fn)
	if !ok {
		return "", NewInvalidQueryError(CodeUnknownColumn, "unknown scalar function "+s.Fn)
	}
	if len(s.Args) < fn.MinArgs || (fn.MaxArgs >= 0 && len(s.Args) > fn.MaxArgs) {
		return "", NewInvalidQueryError(CodeAggOpTypeMismatch,
			"wrong number of arguments to "+s.Fn).WithField(s.Fn)
	}
	argTypes := make([]Type, len(s.Args))
	for i, a := range s.Args {
		t, err := a.ValueType(schema)
		if err != nil {
			return "", err
		}
		argTypes[i] = t
	}
	if err := fn.Validate(argTypes); err != nil {
		return "", err
	}
	return fn.ReturnType(argTypes), nil
}

func (s *ScalarFunctionColumn) Validate(schema Schema) error {
	for _, a := range s.Args {
		if err := a.Validate(schema); err != nil {
			return err
		}
	}
	_, err := s.ValueType(schema)
	return err
}

func (s *ScalarFunctionColumn) AllSimpleColumns() []*SimpleColumn {
	var out []*SimpleColumn
	for _, a := range s.Args {
		out = append(out, a.AllSimpleColumns()...)
	}
	return out
}

func (s *ScalarFunctionColumn) AllAggregationColumns() []*AggregationColumn {
	var out []*AggregationColumn
	for _, a := range s.Args {
		out = append(out, a.AllAggregationColumns()...)
	}
	return out
}

func (s *ScalarFunctionColumn) AllScalarFunctionColumns() []*ScalarFunctionColumn {
	out := []*ScalarFunctionColumn{s}
	for _, a := range s.Args {
		out = append(out, a.AllScalarFunctionColumns()...)
	}
	return out
}

func (s *ScalarFunctionColumn) ToQueryString() string {
	argStrings := make([]string, len(s.Args))
	for i, a := range s.Args {
		argStrings[i] = a.ToQueryString()
	}
	fn, ok := LookupScalarFunc(s.Fn)
	if !ok {
		return s.Fn + "(" + strings.Join(argStrings, ", ") + ")"
	}
	return fn.ToQueryString(argStrings)
}

func (s *ScalarFunctionColumn) Equals(other AbstractColumn) bool {
	o, ok := other.(*ScalarFunctionColumn)
	if !ok || o.Fn != s.Fn || len(o.Args) != len(s.Args) {
		return false
	}
	for i := range s.Args {
		if !s.Args[i].Equals(o.Args[i]) {
			return false
		}
	}
	return true
}

// LiteralColumn wraps an embedded Value so it can stand in as the sole
// argument to constant(v) (§4.2) — it carries no column reference, only
// the literal's own value and type.
type LiteralColumn struct {
	Value Value
}

// NewLiteralColumn constructs a LiteralColumn wrapping v.
func NewLiteralColumn(v Value) *LiteralColumn {
	return &LiteralColumn{Value: v}
}

func (l *LiteralColumn) ID() string { return "literal_" + l.ToQueryString() }

func (l *LiteralColumn) ValueType(schema Schema) (Type, error) { return l.Value.TypeOf(), nil }

func (l *LiteralColumn) Validate(schema Schema) error { return nil }

func (l *LiteralColumn) AllSimpleColumns() []*SimpleColumn { return nil }
func (l *LiteralColumn) AllAggregationColumns() []*AggregationColumn { return nil }
func (l *LiteralColumn) AllScalarFunctionColumns() []*ScalarFunctionColumn { return nil }
func (l *LiteralColumn) ToQueryString() string {
	s, err := l.Value.ToQueryString()
	if err != nil {
		return ""
	}
	return s
}
func (l *LiteralColumn) Equals(other AbstractColumn) bool {
	o, ok := other.(*LiteralColumn)
	return ok && o.Value == l.Value
}

// IsAggregation reports whether col is, or recursively contains, an
// aggregation subcolumn — used throughout the validator (§4.5 rules 5-10).
func IsAggregation(col AbstractColumn) bool {
	return len(col.AllAggregationColumns()) > 0
}

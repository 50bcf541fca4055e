package vizquery

import "fmt"

// ErrorKind is the top-level taxonomy from §7: the engine maps every
// failure onto one of three kinds, never a bespoke error type per call
// site.
type ErrorKind string

const (
	// ErrorKindInvalidQuery covers semantic validation failures, parse
	// errors surfaced by the external parser, and scalar-function misuse —
	// all "surfaced to caller" per §7's recovery column.
	ErrorKindInvalidQuery ErrorKind = "invalid_query"
	// ErrorKindInternal covers programming errors unreachable through a
	// validated query: an empty compound filter, an unknown aggregation
	// operator reaching the evaluator.
	ErrorKindInternal ErrorKind = "internal"
	// ErrorKindWarning is never returned as an error; it is attached to
	// the output table instead (pagination truncation, bad format pattern).
	ErrorKindWarning ErrorKind = "warning"
)

// Stable error codes, named after the validator rules and pipeline stages
// that raise them (§4.5, §7).
const (
	CodeUnknownColumn            = "UNKNOWN_COLUMN"
	CodeAggOpTypeMismatch        = "AGG_OP_TYPE_MISMATCH"
	CodeAvgSumOnlyNumeric        = "AVG_SUM_ONLY_NUMERIC"
	CodeDuplicateColumn          = "DUPLICATE_COLUMN"
	CodeAggInGroupPivotWhere     = "AGG_IN_GROUP_PIVOT_WHERE"
	CodeColAggNotInSelect        = "COL_AGG_NOT_IN_SELECT"
	CodeColSelectedTwice         = "COL_SELECTED_TWICE"
	CodeAggInGroupBy             = "AGG_IN_GROUP_BY"
	CodeCannotGroupPivotWithoutAgg = "CANNOT_GROUP_PIVOT_WITHOUT_AGG"
	CodeColInBothGroupAndPivot   = "COL_IN_BOTH_GROUP_AND_PIVOT"
	CodeOrderByNotInSelect       = "ORDER_BY_NOT_IN_SELECT"
	CodeOrderByAggWithPivot      = "ORDER_BY_AGG_WITH_PIVOT"
	CodeLabelFormatNotInSelect   = "LABEL_FORMAT_NOT_IN_SELECT"
	CodeNegativeSkip             = "NEGATIVE_SKIP"
	CodeUnsupportedCapability    = "UNSUPPORTED_CAPABILITY"

	CodeDataTruncated            = "DATA_TRUNCATED"
	CodeIllegalFormattingPattern = "ILLEGAL_FORMATTING_PATTERNS"

	CodeEmptyCompoundFilter  = "EMPTY_COMPOUND_FILTER"
	CodeUnknownAggregationOp = "UNKNOWN_AGGREGATION_OP"
	CodeTypeMismatch         = "TYPE_MISMATCH"
)

// QueryError is the engine's single error type. Every validation failure,
// scalar-function misuse and internal bug is reported through it, so
// callers can branch on Kind/Code instead of parsing messages.
type QueryError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Field   string
	Details map[string]any
	Cause   error
}

func (e *QueryError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s:%s] field '%s': %s", e.Kind, e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Code, e.Message)
}

func (e *QueryError) Unwrap() error { return e.Cause }

// WithDetail attaches a single diagnostic key/value and returns e for
// chaining.
func (e *QueryError) WithDetail(key string, value any) *QueryError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithField sets the field the error pertains to.
func (e *QueryError) WithField(field string) *QueryError {
	e.Field = field
	return e
}

// WithCause attaches an underlying cause.
func (e *QueryError) WithCause(cause error) *QueryError {
	e.Cause = cause
	return e
}

// NewInvalidQueryError builds a validation-kind error with a stable code.
func NewInvalidQueryError(code, message string) *QueryError {
	return &QueryError{Kind: ErrorKindInvalidQuery, Code: code, Message: message}
}

// NewInternalError builds an internal-kind error for states that must be
// unreachable given a validated query (§7, §9: empty compound filter list,
// unknown aggregation operator reaching the evaluator).
func NewInternalError(message string) *QueryError {
	return &QueryError{Kind: ErrorKindInternal, Code: CodeUnknownAggregationOp, Message: message}
}

// NewInternalErrorWithCode builds an internal-kind error carrying a
// specific stable code instead of the generic default.
func NewInternalErrorWithCode(code, message string) *QueryError {
	return &QueryError{Kind: ErrorKindInternal, Code: code, Message: message}
}

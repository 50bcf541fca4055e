package vizquery

import "strings"

// ScalarFunc describes one entry of the scalar-function catalog (§4.4):
// its arity/type validation, its return type, and how it re-renders as a
// query-string call. Names are matched case-insensitively at parse time
// and always emitted lowercase (§4.4's canonicalization rule). Render
// overrides the default "name(args)" rendering; binary numeric functions
// render as "(a op b)" per §4.2's to_query_string rule.
type ScalarFunc struct {
	Name       string
	MinArgs    int
	MaxArgs    int // -1 means unbounded
	Validate   func(argTypes []Type) error
	ReturnType func(argTypes []Type) Type
	Render     func(args []string) string
}

func (f ScalarFunc) ToQueryString(args []string) string {
	if f.Render != nil {
		return f.Render(args)
	}
	return f.Name + "(" + strings.Join(args, ", ") + ")"
}

func fixedArity(n int) (int, int) { return n, n }

// temporalArg requires DATE or DATETIME, for year/month/day/quarter/dayofweek
// and both sides of datediff (§4.2's DATE ∪ DATETIME row).
func temporalArg(fnName string, t Type) error {
	if t != Date && t != DateTime {
		return NewInvalidQueryError(CodeAggOpTypeMismatch, fnName+" requires a DATE or DATETIME argument")
	}
	return nil
}

// clockArg requires TIMEOFDAY or DATETIME, for hour/minute/second/millisecond
// (§4.2's TIMEOFDAY ∪ DATETIME row) — distinct from temporalArg since these
// four read the time-of-day portion, not the calendar-date portion.
func clockArg(fnName string, t Type) error {
	if t != TimeOfDay && t != DateTime {
		return NewInvalidQueryError(CodeAggOpTypeMismatch, fnName+" requires a TIMEOFDAY or DATETIME argument")
	}
	return nil
}

func numericArg(fnName string, t Type) error {
	if t != Number {
		return NewInvalidQueryError(CodeAggOpTypeMismatch, fnName+" requires a NUMBER argument")
	}
	return nil
}

var scalarFuncCatalog = buildScalarFuncCatalog()

func buildScalarFuncCatalog() map[string]ScalarFunc {
	catalog := make(map[string]ScalarFunc)

	add := func(f ScalarFunc) { catalog[f.Name] = f }

	dateComponent := func(name string) ScalarFunc {
		min, max := fixedArity(1)
		return ScalarFunc{
			Name: name, MinArgs: min, MaxArgs: max,
			Validate:   func(a []Type) error { return temporalArg(name, a[0]) },
			ReturnType: func(a []Type) Type { return Number },
		}
	}
	add(dateComponent("year"))
	add(dateComponent("month"))
	add(dateComponent("day"))
	add(dateComponent("quarter"))
	add(dateComponent("dayofweek"))

	clockComponent := func(name string) ScalarFunc {
		min, max := fixedArity(1)
		return ScalarFunc{
			Name: name, MinArgs: min, MaxArgs: max,
			Validate:   func(a []Type) error { return clockArg(name, a[0]) },
			ReturnType: func(a []Type) Type { return Number },
		}
	}
	add(clockComponent("hour"))
	add(clockComponent("minute"))
	add(clockComponent("second"))
	add(clockComponent("millisecond"))

	add(ScalarFunc{
		Name: "now", MinArgs: 0, MaxArgs: 0,
		Validate:   func(a []Type) error { return nil },
		ReturnType: func(a []Type) Type { return DateTime },
	})

	add(ScalarFunc{
		Name: "datediff", MinArgs: 2, MaxArgs: 2,
		Validate: func(a []Type) error {
			if err := temporalArg("datediff", a[0]); err != nil {
				return err
			}
			return temporalArg("datediff", a[1])
		},
		ReturnType: func(a []Type) Type { return Number },
	})

	add(ScalarFunc{
		Name: "todate", MinArgs: 1, MaxArgs: 1,
		Validate: func(a []Type) error {
			if a[0] != Date && a[0] != DateTime && a[0] != Number {
				return NewInvalidQueryError(CodeAggOpTypeMismatch, "toDate requires a DATE, DATETIME or NUMBER argument")
			}
			return nil
		},
		ReturnType: func(a []Type) Type { return Date },
	})

	binaryNumeric := func(name, symbol string) ScalarFunc {
		min, max := fixedArity(2)
		return ScalarFunc{
			Name: name, MinArgs: min, MaxArgs: max,
			Validate: func(a []Type) error {
				if err := numericArg(name, a[0]); err != nil {
					return err
				}
				return numericArg(name, a[1])
			},
			ReturnType: func(a []Type) Type { return Number },
			Render: func(args []string) string {
				return "(" + args[0] + " " + symbol + " " + args[1] + ")"
			},
		}
	}
	add(binaryNumeric("sum", "+"))
	add(binaryNumeric("difference", "-"))
	add(binaryNumeric("product", "*"))
	add(binaryNumeric("quotient", "/"))
	add(binaryNumeric("modulo", "%"))

	add(ScalarFunc{
		Name: "lower", MinArgs: 1, MaxArgs: 1,
		Validate: func(a []Type) error {
			if a[0] != Text {
				return NewInvalidQueryError(CodeAggOpTypeMismatch, "lower requires a TEXT argument")
			}
			return nil
		},
		ReturnType: func(a []Type) Type { return Text },
	})
	add(ScalarFunc{
		Name: "upper", MinArgs: 1, MaxArgs: 1,
		Validate: func(a []Type) error {
			if a[0] != Text {
				return NewInvalidQueryError(CodeAggOpTypeMismatch, "upper requires a TEXT argument")
			}
			return nil
		},
		ReturnType: func(a []Type) Type { return Text },
	})

	// constant(v) (§4.2) takes no column reference, only an embedded
	// literal (a *LiteralColumn) whose own type is its return type; it
	// reuses the Args-based machinery with exactly one argument so
	// evaluation and query-string rendering need no special case.
	add(ScalarFunc{
		Name: "constant", MinArgs: 1, MaxArgs: 1,
		Validate:   func(a []Type) error { return nil },
		ReturnType: func(a []Type) Type { return a[0] },
	})

	return catalog
}

// LookupScalarFunc resolves a function name (already lowercased by the
// caller's normalization) against the catalog.
func LookupScalarFunc(name string) (ScalarFunc, bool) {
	f, ok := scalarFuncCatalog[strings.ToLower(name)]
	return f, ok
}

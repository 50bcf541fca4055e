package engine

import (
	"strings"
	"time"

	vq "github.com/lychee-technology/vizquery"
)

// timeOfDayEpoch mirrors the synthetic calendar day vq's TIMEOFDAY values
// are anchored to, so a TIMEOFDAY argument compares and arithmetics the
// same way it does inside vq.Value itself.
const timeOfDayEpochYear, timeOfDayEpochMonth, timeOfDayEpochDay = 1899, 12, 30

// ApplyScalarFunction evaluates a scalar function by name against already
// evaluated argument values. The catalog in vq.LookupScalarFunc has
// already checked arity and argument types by this point (§4.4); this is
// purely the runtime behavior.
func ApplyScalarFunction(name string, args []vq.Value) (vq.Value, error) {
	switch strings.ToLower(name) {
	case "year", "month", "day", "quarter", "dayofweek":
		return applyDateComponent(name, args[0])
	case "hour", "minute", "second", "millisecond":
		return applyClockComponent(name, args[0])
	case "now":
		n := time.Now().UTC()
		return vq.NewDateTime(n.Year(), int(n.Month())-1, n.Day(), n.Hour(), n.Minute(), n.Second(), n.Nanosecond()/1e6)
	case "datediff":
		return applyDateDiff(args[0], args[1])
	case "todate":
		return applyToDate(args[0])
	case "sum":
		return applyBinaryNumeric(args[0], args[1], func(a, b float64) float64 { return a + b })
	case "difference":
		return applyBinaryNumeric(args[0], args[1], func(a, b float64) float64 { return a - b })
	case "product":
		return applyBinaryNumeric(args[0], args[1], func(a, b float64) float64 { return a * b })
	case "quotient":
		return applyBinaryNumeric(args[0], args[1], func(a, b float64) float64 { return a / b })
	case "modulo":
		return applyBinaryNumeric(args[0], args[1], func(a, b float64) float64 {
			return float64(int64(a) % int64(b))
		})
	case "lower":
		if args[0].IsNull() {
			return vq.NullOf(vq.Text), nil
		}
		s, _ := args[0].AsText()
		return vq.TextValue(strings.ToLower(s)), nil
	case "upper":
		if args[0].IsNull() {
			return vq.NullOf(vq.Text), nil
		}
		s, _ := args[0].AsText()
		return vq.TextValue(strings.ToUpper(s)), nil
	case "constant":
		return args[0], nil
	default:
		return vq.Value{}, vq.NewInvalidQueryError(vq.CodeUnknownColumn, "unknown scalar function "+name)
	}
}

// asTime maps a DATE, DATETIME or TIMEOFDAY value onto time.Time so date
// arithmetic shares one implementation. TIMEOFDAY is anchored to the same
// synthetic epoch vq.Value uses for its own ordering.
func asTime(v vq.Value) (time.Time, bool) {
	switch v.TypeOf() {
	case vq.Date:
		d, ok := v.AsDate()
		if !ok {
			return time.Time{}, false
		}
		return time.Date(d.Year, time.Month(d.Month+1), d.Day, 0, 0, 0, 0, time.UTC), true
	case vq.DateTime:
		d, ok := v.AsDateTime()
		if !ok {
			return time.Time{}, false
		}
		return time.Date(d.Year, time.Month(d.Month+1), d.Day, d.Hour, d.Minute, d.Second, d.Millisecond*1e6, time.UTC), true
	case vq.TimeOfDay:
		t, ok := v.AsTimeOfDay()
		if !ok {
			return time.Time{}, false
		}
		return time.Date(timeOfDayEpochYear, timeOfDayEpochMonth, timeOfDayEpochDay,
			t.Hour, t.Minute, t.Second, t.Millisecond*1e6, time.UTC), true
	default:
		return time.Time{}, false
	}
}

func applyDateComponent(fn string, v vq.Value) (vq.Value, error) {
	t, ok := asTime(v)
	if !ok {
		return vq.NullOf(vq.Number), nil
	}
	switch strings.ToLower(fn) {
	case "year":
		return vq.NumberValue(float64(t.Year())), nil
	case "month":
		return vq.NumberValue(float64(int(t.Month()) - 1)), nil
	case "day":
		return vq.NumberValue(float64(t.Day())), nil
	case "quarter":
		return vq.NumberValue(float64(int(t.Month()-1)/3 + 1)), nil
	case "dayofweek":
		return vq.NumberValue(float64(int(t.Weekday()) + 1)), nil
	default:
		return vq.Value{}, vq.NewInternalError("unreachable date component function " + fn)
	}
}

func applyClockComponent(fn string, v vq.Value) (vq.Value, error) {
	if v.TypeOf() == vq.Date {
		return vq.NullOf(vq.Number), nil
	}
	t, ok := asTime(v)
	if !ok {
		return vq.NullOf(vq.Number), nil
	}
	switch strings.ToLower(fn) {
	case "hour":
		return vq.NumberValue(float64(t.Hour())), nil
	case "minute":
		return vq.NumberValue(float64(t.Minute())), nil
	case "second":
		return vq.NumberValue(float64(t.Second())), nil
	case "millisecond":
		return vq.NumberValue(float64(t.Nanosecond() / 1e6)), nil
	default:
		return vq.Value{}, vq.NewInternalError("unreachable clock component function " + fn)
	}
}

func applyDateDiff(a, b vq.Value) (vq.Value, error) {
	ta, okA := asTime(a)
	tb, okB := asTime(b)
	if !okA || !okB {
		return vq.NullOf(vq.Number), nil
	}
	days := ta.Sub(tb).Hours() / 24
	return vq.NumberValue(days), nil
}

// applyToDate truncates DATE/DATETIME onto their calendar date, and reads a
// NUMBER as milliseconds since the Unix epoch (§4.2).
func applyToDate(v vq.Value) (vq.Value, error) {
	if v.IsNull() {
		return vq.NullOf(vq.Date), nil
	}
	switch v.TypeOf() {
	case vq.Date:
		return v, nil
	case vq.DateTime:
		d, _ := v.AsDateTime()
		return vq.NewDate(d.Year, d.Month, d.Day)
	case vq.Number:
		ms, _ := v.AsNumber()
		t := time.UnixMilli(int64(ms)).UTC()
		return vq.NewDate(t.Year(), int(t.Month())-1, t.Day())
	default:
		return vq.NullOf(vq.Date), nil
	}
}

func applyBinaryNumeric(a, b vq.Value, op func(a, b float64) float64) (vq.Value, error) {
	if a.IsNull() || b.IsNull() {
		return vq.NullOf(vq.Number), nil
	}
	av, _ := a.AsNumber()
	bv, _ := b.AsNumber()
	return vq.NumberValue(op(av, bv)), nil
}

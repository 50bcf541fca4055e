package vizquery

import (
	"fmt"
	"strings"
	"time"
)

// Type is the discriminator of the six scalar types a Value can carry.
type Type string

const (
	Boolean   Type = "boolean"
	Number    Type = "number"
	Text      Type = "text"
	Date      Type = "date"
	DateTime  Type = "datetime"
	TimeOfDay Type = "timeofday"
)

// DateParts is the (year, zero-indexed month, day) payload of a DATE value.
type DateParts struct {
	Year  int
	Month int // 0-indexed, January == 0
	Day   int
}

// DateTimeParts is the payload of a DATETIME value, GMT.
type DateTimeParts struct {
	Year        int
	Month       int // 0-indexed
	Day         int
	Hour        int
	Minute      int
	Second      int
	Millisecond int
}

// TimeOfDayParts is the payload of a TIMEOFDAY value.
type TimeOfDayParts struct {
	Hour        int
	Minute      int
	Second      int
	Millisecond int
}

// timeOfDayEpoch is the synthetic calendar day TIMEOFDAY values are anchored
// to so they can be compared with the same machinery as DATETIME.
const timeOfDayEpochYear, timeOfDayEpochMonth, timeOfDayEpochDay = 1899, 12, 30

// Value is an immutable, typed scalar with a null inhabitant per type.
// Every field set is exhaustive for its Type; fields unused by the current
// Type are always zero, which keeps Value comparable (usable as a map key)
// and keeps struct equality equivalent to value equality.
type Value struct {
	typ      Type
	null     bool
	boolVal  bool
	numVal   float64
	textVal  string
	date     DateParts
	dateTime DateTimeParts
	tod      TimeOfDayParts
}

// TypeOf returns the value's type tag.
func (v Value) TypeOf() Type { return v.typ }

// IsNull reports whether v is the null inhabitant of its type.
func (v Value) IsNull() bool { return v.null }

// NullOf returns the null inhabitant of t. It is a total function: every
// Type constant has exactly one null value.
func NullOf(t Type) Value {
	return Value{typ: t, null: true}
}

// BoolValue constructs a non-null BOOLEAN value.
func BoolValue(b bool) Value {
	return Value{typ: Boolean, boolVal: b}
}

// NumberValue constructs a non-null NUMBER value.
func NumberValue(n float64) Value {
	return Value{typ: Number, numVal: n}
}

// TextValue constructs a non-null TEXT value. An empty string is a valid,
// non-null TEXT value distinct from NullOf(Text) — see SPEC_FULL's open
// question carried over from spec.md §9: null text is never modeled as "".
func TextValue(s string) Value {
	return Value{typ: Text, textVal: s}
}

// NewDate validates and constructs a DATE value. month is 0-indexed.
func NewDate(year, month, day int) (Value, error) {
	d := DateParts{Year: year, Month: month, Day: day}
	if err := validateDate(d); err != nil {
		return Value{}, err
	}
	return Value{typ: Date, date: d}, nil
}

// NewDateTime validates and constructs a DATETIME value. month is 0-indexed.
func NewDateTime(year, month, day, hour, minute, second, millisecond int) (Value, error) {
	dt := DateTimeParts{
		Year: year, Month: month, Day: day,
		Hour: hour, Minute: minute, Second: second, Millisecond: millisecond,
	}
	if err := validateDate(DateParts{Year: year, Month: month, Day: day}); err != nil {
		return Value{}, err
	}
	if err := validateTimeOfDay(TimeOfDayParts{hour, minute, second, millisecond}); err != nil {
		return Value{}, err
	}
	return Value{typ: DateTime, dateTime: dt}, nil
}

// NewTimeOfDay validates and constructs a TIMEOFDAY value.
func NewTimeOfDay(hour, minute, second, millisecond int) (Value, error) {
	tod := TimeOfDayParts{hour, minute, second, millisecond}
	if err := validateTimeOfDay(tod); err != nil {
		return Value{}, err
	}
	return Value{typ: TimeOfDay, tod: tod}, nil
}

func validateDate(d DateParts) error {
	t := time.Date(d.Year, time.Month(d.Month+1), d.Day, 0, 0, 0, 0, time.UTC)
	if t.Year() != d.Year || int(t.Month())-1 != d.Month || t.Day() != d.Day {
		return NewInternalError(fmt.Sprintf("invalid date: year=%d month=%d day=%d", d.Year, d.Month, d.Day))
	}
	return nil
}

func validateTimeOfDay(t TimeOfDayParts) error {
	if t.Hour < 0 || t.Hour > 23 {
		return NewInternalError(fmt.Sprintf("invalid hour: %d", t.Hour))
	}
	if t.Minute < 0 || t.Minute > 59 {
		return NewInternalError(fmt.Sprintf("invalid minute: %d", t.Minute))
	}
	if t.Second < 0 || t.Second > 59 {
		return NewInternalError(fmt.Sprintf("invalid second: %d", t.Second))
	}
	if t.Millisecond < 0 || t.Millisecond > 999 {
		return NewInternalError(fmt.Sprintf("invalid millisecond: %d", t.Millisecond))
	}
	return nil
}

// AsBool returns the payload of a non-null BOOLEAN value.
func (v Value) AsBool() (bool, bool) {
	if v.typ != Boolean || v.null {
		return false, false
	}
	return v.boolVal, true
}

// AsNumber returns the payload of a non-null NUMBER value.
func (v Value) AsNumber() (float64, bool) {
	if v.typ != Number || v.null {
		return 0, false
	}
	return v.numVal, true
}

// AsText returns the payload of a non-null TEXT value.
func (v Value) AsText() (string, bool) {
	if v.typ != Text || v.null {
		return "", false
	}
	return v.textVal, true
}

// AsDate returns the payload of a non-null DATE value.
func (v Value) AsDate() (DateParts, bool) {
	if v.typ != Date || v.null {
		return DateParts{}, false
	}
	return v.date, true
}

// AsDateTime returns the payload of a non-null DATETIME value.
func (v Value) AsDateTime() (DateTimeParts, bool) {
	if v.typ != DateTime || v.null {
		return DateTimeParts{}, false
	}
	return v.dateTime, true
}

// AsTimeOfDay returns the payload of a non-null TIMEOFDAY value.
func (v Value) AsTimeOfDay() (TimeOfDayParts, bool) {
	if v.typ != TimeOfDay || v.null {
		return TimeOfDayParts{}, false
	}
	return v.tod, true
}

// asComparableTime maps DATE/DATETIME/TIMEOFDAY payloads onto time.Time so
// ordering and datediff-style arithmetic share one implementation. Null
// values are never passed in — callers special-case nulls before calling.
func (v Value) asComparableTime() time.Time {
	switch v.typ {
	case Date:
		return time.Date(v.date.Year, time.Month(v.date.Month+1), v.date.Day, 0, 0, 0, 0, time.UTC)
	case DateTime:
		return time.Date(v.dateTime.Year, time.Month(v.dateTime.Month+1), v.dateTime.Day,
			v.dateTime.Hour, v.dateTime.Minute, v.dateTime.Second, v.dateTime.Millisecond*1e6, time.UTC)
	case TimeOfDay:
		return time.Date(timeOfDayEpochYear, timeOfDayEpochMonth, timeOfDayEpochDay,
			v.tod.Hour, v.tod.Minute, v.tod.Second, v.tod.Millisecond*1e6, time.UTC)
	default:
		return time.Time{}
	}
}

// Compare gives the total order within a type: null < any non-null of the
// same type, null == null. Comparing values of different types is
// undefined by the core (§4.1) — the second return is false in that case
// and callers (filters, sort) must not treat the int as meaningful.
func (v Value) Compare(other Value) (int, bool) {
	if v.typ != other.typ {
		return 0, false
	}
	if v.null && other.null {
		return 0, true
	}
	if v.null {
		return -1, true
	}
	if other.null {
		return 1, true
	}
	switch v.typ {
	case Boolean:
		switch {
		case v.boolVal == other.boolVal:
			return 0, true
		case !v.boolVal:
			return -1, true
		default:
			return 1, true
		}
	case Number:
		switch {
		case v.numVal < other.numVal:
			return -1, true
		case v.numVal > other.numVal:
			return 1, true
		default:
			return 0, true
		}
	case Text:
		return strings.Compare(v.textVal, other.textVal), true
	case Date, DateTime, TimeOfDay:
		a, b := v.asComparableTime(), other.asComparableTime()
		switch {
		case a.Before(b):
			return -1, true
		case a.After(b):
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

// ToString renders the value's text form for CONTAINS/STARTS WITH/ENDS
// WITH/MATCHES/LIKE comparisons (§4.3). Unlike ToQueryString this never
// errors: null renders as the empty string.
func (v Value) ToString() string {
	if v.null {
		return ""
	}
	switch v.typ {
	case Boolean:
		if v.boolVal {
			return "true"
		}
		return "false"
	case Number:
		return formatNumberPlain(v.numVal)
	case Text:
		return v.textVal
	case Date:
		return fmt.Sprintf("%04d-%02d-%02d", v.date.Year, v.date.Month+1, v.date.Day)
	case DateTime:
		return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", v.dateTime.Year, v.dateTime.Month+1,
			v.dateTime.Day, v.dateTime.Hour, v.dateTime.Minute, v.dateTime.Second)
	case TimeOfDay:
		return fmt.Sprintf("%02d:%02d:%02d", v.tod.Hour, v.tod.Minute, v.tod.Second)
	default:
		return ""
	}
}

// ToQueryString produces the literal the external parser round-trips
// (§4.1). It errors on null: the query language has no null literal.
func (v Value) ToQueryString() (string, error) {
	if v.null {
		return "", NewInternalError(fmt.Sprintf("cannot render null %s value as a query literal", v.typ))
	}
	switch v.typ {
	case Boolean:
		if v.boolVal {
			return "true", nil
		}
		return "false", nil
	case Number:
		return formatNumberPlain(v.numVal), nil
	case Text:
		return quoteTextLiteral(v.textVal)
	case Date:
		return fmt.Sprintf("DATE '%04d-%d-%d'", v.date.Year, v.date.Month+1, v.date.Day), nil
	case DateTime:
		return "DATETIME '" + formatDateTimeLiteral(v.dateTime) + "'", nil
	case TimeOfDay:
		return "TIMEOFDAY '" + formatTimeOfDayLiteral(v.tod) + "'", nil
	default:
		return "", NewInternalError("unknown value type")
	}
}

func formatNumberPlain(n float64) string {
	s := fmt.Sprintf("%g", n)
	return s
}

func quoteTextLiteral(s string) (string, error) {
	hasDouble := strings.Contains(s, `"`)
	hasSingle := strings.Contains(s, "'")
	switch {
	case !hasDouble:
		return `"` + s + `"`, nil
	case !hasSingle:
		return "'" + s + "'", nil
	default:
		return "", NewInternalError("text literal contains both quote characters and cannot be emitted")
	}
}

func formatDateTimeLiteral(dt DateTimeParts) string {
	base := fmt.Sprintf("%04d-%d-%d %d:%d:%d", dt.Year, dt.Month+1, dt.Day, dt.Hour, dt.Minute, dt.Second)
	if dt.Millisecond != 0 {
		base += fmt.Sprintf(".%03d", dt.Millisecond)
	}
	return base
}

func formatTimeOfDayLiteral(t TimeOfDayParts) string {
	base := fmt.Sprintf("%d:%d:%d", t.Hour, t.Minute, t.Second)
	if t.Millisecond != 0 {
		base += fmt.Sprintf(".%03d", t.Millisecond)
	}
	return base
}

// GetObjectToFormat exposes the raw Go payload a Formatter can render:
// bool, float64, string or time.Time. Null values return nil.
func (v Value) GetObjectToFormat() any {
	if v.null {
		return nil
	}
	switch v.typ {
	case Boolean:
		return v.boolVal
	case Number:
		return v.numVal
	case Text:
		return v.textVal
	case Date, DateTime, TimeOfDay:
		return v.asComparableTime()
	default:
		return nil
	}
}

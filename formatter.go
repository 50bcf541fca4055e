package vizquery

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders a Value's FormattedText for a column given its
// pattern and the table's locale. The core never formats on its own
// initiative (§1 scopes locale-aware pattern formatting as an external
// collaborator) — Formatter is the seam; DefaultFormatter is a
// reference implementation good enough for NUMBER/DATE/DATETIME/
// TIMEOFDAY patterns without a full ICU-style pattern grammar.
type Formatter interface {
	Format(v Value, pattern string, locale string) (string, error)
}

// DefaultFormatter supports a practical subset of patterns: NUMBER
// columns accept "#,##0.00"-style patterns translated to decimal
// places, temporal columns accept Go-style reference-time layouts
// ("2006-01-02 15:04:05"). There is no general ICU pattern engine in
// the example corpus, so this much is hand-rolled on top of
// golang.org/x/text/number and the standard library's time.Format —
// documented in DESIGN.md as the one stdlib-grounded piece of the
// ambient stack.
type DefaultFormatter struct{}

func (DefaultFormatter) Format(v Value, pattern string, locale string) (string, error) {
	if v.IsNull() {
		return "", nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	switch v.TypeOf() {
	case Number:
		n, _ := v.AsNumber()
		return formatNumberPattern(tag, n, pattern)
	case Date, DateTime, TimeOfDay:
		t, ok := v.asComparableTimeExported()
		if !ok {
			return v.ToString(), nil
		}
		if pattern == "" {
			return v.ToString(), nil
		}
		return t.Format(goLayoutFromPattern(pattern)), nil
	case Boolean:
		b, _ := v.AsBool()
		if b {
			return "true", nil
		}
		return "false", nil
	case Text:
		s, _ := v.AsText()
		return s, nil
	default:
		return v.ToString(), nil
	}
}

// asComparableTimeExported exposes Value.asComparableTime to the
// formatter without widening the unexported method's visibility.
func (v Value) asComparableTimeExported() (time.Time, bool) {
	if v.IsNull() {
		return time.Time{}, false
	}
	return v.asComparableTime(), true
}

func formatNumberPattern(tag language.Tag, n float64, pattern string) (string, error) {
	if pattern == "" {
		return formatNumberPlain(n), nil
	}
	decimals := countPatternDecimals(pattern)
	p := message.NewPrinter(tag)
	return p.Sprintf("%v", number.Decimal(n, number.MaxFractionDigits(decimals), number.MinFractionDigits(decimals))), nil
}

// countPatternDecimals counts digits/zeros after the decimal point in a
// "#,##0.00"-style pattern.
func countPatternDecimals(pattern string) int {
	idx := strings.IndexByte(pattern, '.')
	if idx < 0 {
		return 0
	}
	count := 0
	for _, r := range pattern[idx+1:] {
		if r == '0' || r == '#' {
			count++
		}
	}
	return count
}

// goLayoutFromPattern translates a small set of common date/time
// tokens (yyyy, MM, dd, HH, mm, ss, SSS) into a Go reference-time
// layout. Unrecognized characters pass through unchanged.
func goLayoutFromPattern(pattern string) string {
	replacer := strings.NewReplacer(
		"yyyy", "2006",
		"yy", "06",
		"MM", "01",
		"dd", "02",
		"HH", "15",
		"mm", "04",
		"ss", "05",
		"SSS", "000",
	)
	return replacer.Replace(pattern)
}

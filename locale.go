package vizquery

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collator orders Values the way a DataTable's declared locale
// requires: TEXT comparisons go through golang.org/x/text/collate so
// accented and case-variant strings sort the way a human reader of that
// locale expects, while every other type falls back to Value.Compare's
// ordinal ordering (§4.1's locale-aware TEXT comparator).
type Collator struct {
	locale language.Tag
	col    *collate.Collator
}

// NewCollator builds a Collator for a BCP-47 locale tag (e.g. "en-US",
// "fr", "de-DE"). An unparseable tag falls back to language.Und, which
// collate.New treats as a root/default ordering.
func NewCollator(locale string) *Collator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return &Collator{locale: tag, col: collate.New(tag)}
}

// Compare orders a and b the way Value.Compare does for every type
// except TEXT, where it defers to the locale collator. The second
// return mirrors Value.Compare: false when the two values have
// different types.
func (c *Collator) Compare(a, b Value) (int, bool) {
	if a.TypeOf() != b.TypeOf() {
		return 0, false
	}
	if a.TypeOf() != Text {
		return a.Compare(b)
	}
	if a.IsNull() && b.IsNull() {
		return 0, true
	}
	if a.IsNull() {
		return -1, true
	}
	if b.IsNull() {
		return 1, true
	}
	at, _ := a.AsText()
	bt, _ := b.AsText()
	return c.col.CompareString(at, bt), true
}

// Locale returns the resolved BCP-47 tag backing this collator.
func (c *Collator) Locale() string { return c.locale.String() }

package vizquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollatorFallsBackToUndOnBadLocale(t *testing.T) {
	c := NewCollator("not-a-locale-tag!!!")
	assert.Equal(t, "und", c.Locale())
}

func TestCollatorComparesTextByLocale(t *testing.T) {
	c := NewCollator("en")
	cmp, ok := c.Compare(TextValue("a"), TextValue("b"))
	require.True(t, ok)
	assert.Equal(t, -1, cmp)
}

func TestCollatorFallsBackToValueCompareForNonText(t *testing.T) {
	c := NewCollator("en")
	cmp, ok := c.Compare(NumberValue(1), NumberValue(2))
	require.True(t, ok)
	assert.Equal(t, -1, cmp)
}

func TestCollatorNullOrdering(t *testing.T) {
	c := NewCollator("en")
	cmp, ok := c.Compare(NullOf(Text), TextValue("a"))
	require.True(t, ok)
	assert.Equal(t, -1, cmp)
}

func TestCollatorRejectsMixedTypes(t *testing.T) {
	c := NewCollator("en")
	_, ok := c.Compare(TextValue("1"), NumberValue(1))
	assert.False(t, ok)
}

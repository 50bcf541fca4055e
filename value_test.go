package vizquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueCompareSameType(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want int
	}{
		{"bool false<true", BoolValue(false), BoolValue(true), -1},
		{"number less", NumberValue(1), NumberValue(2), -1},
		{"number equal", NumberValue(5), NumberValue(5), 0},
		{"text lexical", TextValue("a"), TextValue("b"), -1},
		{"null less than non-null", NullOf(Number), NumberValue(1), -1},
		{"null equals null", NullOf(Text), NullOf(Text), 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := c.a.Compare(c.b)
			require.True(t, ok)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestValueCompareDifferentTypesIsUndefined(t *testing.T) {
	_, ok := NumberValue(1).Compare(TextValue("1"))
	assert.False(t, ok)
}

func TestTextValueEmptyIsNotNull(t *testing.T) {
	empty := TextValue("")
	assert.False(t, empty.IsNull())
	s, ok := empty.AsText()
	assert.True(t, ok)
	assert.Equal(t, "", s)

	null := NullOf(Text)
	assert.True(t, null.IsNull())
	assert.Equal(t, "", null.ToString())
}

func TestNewDateRejectsInvalidCalendarDate(t *testing.T) {
	_, err := NewDate(2024, 1, 30) // Feb 30 (0-indexed month 1 = February)
	require.Error(t, err)
}

func TestNewDateTimeRoundTripsToComparableTime(t *testing.T) {
	a, err := NewDateTime(2024, 0, 15, 10, 30, 0, 0)
	require.NoError(t, err)
	b, err := NewDateTime(2024, 0, 15, 10, 31, 0, 0)
	require.NoError(t, err)
	got, ok := a.Compare(b)
	require.True(t, ok)
	assert.Equal(t, -1, got)
}

func TestValueToQueryStringNullErrors(t *testing.T) {
	_, err := NullOf(Number).ToQueryString()
	assert.Error(t, err)
}

func TestValueToQueryStringLiterals(t *testing.T) {
	s, err := BoolValue(true).ToQueryString()
	require.NoError(t, err)
	assert.Equal(t, "true", s)

	s, err = TextValue("hello").ToQueryString()
	require.NoError(t, err)
	assert.Equal(t, `"hello"`, s)

	d, err := NewDate(2024, 5, 1)
	require.NoError(t, err)
	s, err = d.ToQueryString()
	require.NoError(t, err)
	assert.Equal(t, "DATE '2024-6-1'", s)
}

func TestValueToQueryStringRejectsMixedQuotes(t *testing.T) {
	v := TextValue(`it's a "test"`)
	_, err := v.ToQueryString()
	assert.Error(t, err)
}

func TestGetObjectToFormat(t *testing.T) {
	assert.Nil(t, NullOf(Text).GetObjectToFormat())
	assert.Equal(t, true, BoolValue(true).GetObjectToFormat())
	assert.Equal(t, 3.5, NumberValue(3.5).GetObjectToFormat())
	assert.Equal(t, "x", TextValue("x").GetObjectToFormat())
}

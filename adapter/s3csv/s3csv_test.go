package s3csv

import (
	"errors"
	"fmt"
	"testing"

	smithy "github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"

	vizquery "github.com/lychee-technology/vizquery"
)

func TestParseCellEmptyStringIsNull(t *testing.T) {
	assert.True(t, parseCell("", vizquery.Number).IsNull())
}

func TestParseCellNumberParsesValidFloat(t *testing.T) {
	v := parseCell("42.5", vizquery.Number)
	n, ok := v.AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 42.5, n)
}

func TestParseCellNumberFallsBackToNullOnBadInput(t *testing.T) {
	assert.True(t, parseCell("not-a-number", vizquery.Number).IsNull())
}

func TestParseCellBooleanParsesValid(t *testing.T) {
	v := parseCell("true", vizquery.Boolean)
	b, ok := v.AsBool()
	assert.True(t, ok)
	assert.True(t, b)
}

func TestParseCellTextPassesThrough(t *testing.T) {
	v := parseCell("hello", vizquery.Text)
	assert.Equal(t, "hello", v.ToString())
}

type fakeAPIError struct{}

func (fakeAPIError) Error() string                   { return "boom" }
func (fakeAPIError) ErrorCode() string                { return "NoSuchKey" }
func (fakeAPIError) ErrorMessage() string             { return "the object was not found" }
func (fakeAPIError) ErrorFault() smithy.ErrorFault     { return smithy.FaultClient }

type wrappedError struct {
	inner error
}

func (w wrappedError) Error() string { return fmt.Sprintf("wrapped: %v", w.inner) }
func (w wrappedError) Unwrap() error { return w.inner }

func TestAsSmithyAPIErrorFindsDirectMatch(t *testing.T) {
	var target smithy.APIError
	ok := asSmithyAPIError(fakeAPIError{}, &target)
	assert.True(t, ok)
	assert.Equal(t, "NoSuchKey", target.ErrorCode())
}

func TestAsSmithyAPIErrorUnwrapsWrappedError(t *testing.T) {
	var target smithy.APIError
	ok := asSmithyAPIError(wrappedError{inner: fakeAPIError{}}, &target)
	assert.True(t, ok)
	assert.Equal(t, "NoSuchKey", target.ErrorCode())
}

func TestAsSmithyAPIErrorReturnsFalseForPlainError(t *testing.T) {
	var target smithy.APIError
	ok := asSmithyAPIError(errors.New("plain"), &target)
	assert.False(t, ok)
}

func TestSourceCapabilityAndSchema(t *testing.T) {
	src := &Source{Columns: []vizquery.ColumnDescription{{ID: "region", Type: vizquery.Text}}}
	assert.Equal(t, vizquery.CapabilityNone, src.Capability())
	typ, ok := src.Schema().ColumnType("region")
	assert.True(t, ok)
	assert.Equal(t, vizquery.Text, typ)
}

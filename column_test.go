package vizquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *DataTable {
	t, _ := NewDataTable([]ColumnDescription{
		{ID: "amount", Type: Number},
		{ID: "name", Type: Text},
	})
	return t
}

func TestNewSimpleColumnRejectsBacktick(t *testing.T) {
	_, err := NewSimpleColumn("bad`col")
	assert.Error(t, err)
}

func TestSimpleColumnValueType(t *testing.T) {
	schema := testSchema()
	col, err := NewSimpleColumn("amount")
	require.NoError(t, err)
	typ, err := col.ValueType(schema)
	require.NoError(t, err)
	assert.Equal(t, Number, typ)
}

func TestSimpleColumnUnknownColumn(t *testing.T) {
	schema := testSchema()
	col, err := NewSimpleColumn("missing")
	require.NoError(t, err)
	_, err = col.ValueType(schema)
	assert.Error(t, err)
}

func TestAggregationColumnID(t *testing.T) {
	amount, err := NewSimpleColumn("amount")
	require.NoError(t, err)
	agg := NewAggregationColumn(amount, AggSum)
	assert.Equal(t, "sum-amount", agg.ID())
}

func TestAggregationColumnSumRejectsNonNumeric(t *testing.T) {
	schema := testSchema()
	name, err := NewSimpleColumn("name")
	require.NoError(t, err)
	agg := NewAggregationColumn(name, AggSum)
	_, err = agg.ValueType(schema)
	assert.Error(t, err)
}

func TestAggregationColumnCountIsAlwaysNumber(t *testing.T) {
	schema := testSchema()
	name, err := NewSimpleColumn("name")
	require.NoError(t, err)
	agg := NewAggregationColumn(name, AggCount)
	typ, err := agg.ValueType(schema)
	require.NoError(t, err)
	assert.Equal(t, Number, typ)
}

func TestAggregationColumnMinMaxPreservesTargetType(t *testing.T) {
	schema := testSchema()
	name, err := NewSimpleColumn("name")
	require.NoError(t, err)
	agg := NewAggregationColumn(name, AggMax)
	typ, err := agg.ValueType(schema)
	require.NoError(t, err)
	assert.Equal(t, Text, typ)
}

func TestScalarFunctionColumnLowercasesName(t *testing.T) {
	amount, err := NewSimpleColumn("amount")
	require.NoError(t, err)
	col := NewScalarFunctionColumn("YEAR", []AbstractColumn{amount})
	assert.Equal(t, "year", col.Fn)
}

func TestScalarFunctionColumnUnknownFunction(t *testing.T) {
	schema := testSchema()
	amount, err := NewSimpleColumn("amount")
	require.NoError(t, err)
	col := NewScalarFunctionColumn("not_a_function", []AbstractColumn{amount})
	_, err = col.ValueType(schema)
	assert.Error(t, err)
}

func TestScalarFunctionColumnArityMismatch(t *testing.T) {
	schema := testSchema()
	col := NewScalarFunctionColumn("now", []AbstractColumn{&SimpleColumn{ColumnID: "amount"}})
	_, err := col.ValueType(schema)
	assert.Error(t, err)
}

func TestIsAggregationRecursesThroughScalarFunction(t *testing.T) {
	amount, err := NewSimpleColumn("amount")
	require.NoError(t, err)
	agg := NewAggregationColumn(amount, AggSum)
	wrapped := NewScalarFunctionColumn("toDate", []AbstractColumn{agg})
	assert.True(t, IsAggregation(wrapped))

	plain := NewScalarFunctionColumn("lower", []AbstractColumn{amount})
	assert.False(t, IsAggregation(plain))
}

func TestAbstractColumnEquals(t *testing.T) {
	a, _ := NewSimpleColumn("amount")
	b, _ := NewSimpleColumn("amount")
	c, _ := NewSimpleColumn("name")
	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
}

package vizquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDataTableRejectsDuplicateColumns(t *testing.T) {
	_, err := NewDataTable([]ColumnDescription{
		{ID: "a", Type: Text},
		{ID: "a", Type: Number},
	})
	require.Error(t, err)
}

func TestAddRowPadsMissingValuesWithNull(t *testing.T) {
	table, err := NewDataTable([]ColumnDescription{
		{ID: "a", Type: Text},
		{ID: "b", Type: Number},
	})
	require.NoError(t, err)
	require.NoError(t, table.AddRow([]Value{TextValue("x")}))
	assert.True(t, table.CellValue(0, 1).IsNull())
}

func TestAddRowRejectsTypeMismatch(t *testing.T) {
	table, err := NewDataTable([]ColumnDescription{{ID: "a", Type: Number}})
	require.NoError(t, err)
	err = table.AddRow([]Value{TextValue("not a number")})
	assert.Error(t, err)
}

func TestAddRowRejectsTooManyValues(t *testing.T) {
	table, err := NewDataTable([]ColumnDescription{{ID: "a", Type: Text}})
	require.NoError(t, err)
	err = table.AddRow([]Value{TextValue("x"), TextValue("y")})
	assert.Error(t, err)
}

func TestCloneIsIndependentOfOriginal(t *testing.T) {
	table, err := NewDataTable([]ColumnDescription{{ID: "a", Type: Text}})
	require.NoError(t, err)
	require.NoError(t, table.AddRow([]Value{TextValue("x")}))

	clone := table.Clone()
	clone.Rows[0].Cells[0] = Cell{Value: TextValue("changed")}

	assert.Equal(t, "x", table.CellValue(0, 0).ToString())
	assert.Equal(t, "changed", clone.CellValue(0, 0).ToString())
}

func TestColumnIndex(t *testing.T) {
	table, err := NewDataTable([]ColumnDescription{{ID: "a", Type: Text}, {ID: "b", Type: Number}})
	require.NoError(t, err)
	assert.Equal(t, 1, table.ColumnIndex("b"))
	assert.Equal(t, -1, table.ColumnIndex("missing"))
}

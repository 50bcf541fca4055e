package engine

import (
	"testing"

	vq "github.com/lychee-technology/vizquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSelectStageTable(t *testing.T) *vq.DataTable {
	t.Helper()
	table, err := vq.NewDataTable([]vq.ColumnDescription{
		{ID: "region", Type: vq.Text},
		{ID: "amount", Type: vq.Number},
	})
	require.NoError(t, err)
	require.NoError(t, table.AddRow([]vq.Value{vq.TextValue("west"), vq.NumberValue(10)}))
	require.NoError(t, table.AddRow([]vq.Value{vq.TextValue("east"), vq.NumberValue(20)}))
	return table
}

func TestRunSelectEmptySelectionReturnsSameTable(t *testing.T) {
	table := buildSelectStageTable(t)
	out, err := RunSelect(table, nil, &IdentityLookup{Table: table})
	require.NoError(t, err)
	assert.Same(t, table, out)
}

func TestRunSelectProjectsOnlyRequestedColumns(t *testing.T) {
	table := buildSelectStageTable(t)
	region, _ := vq.NewSimpleColumn("region")
	out, err := RunSelect(table, []vq.AbstractColumn{region}, &IdentityLookup{Table: table})
	require.NoError(t, err)
	require.Len(t, out.Columns, 1)
	assert.Equal(t, "region", out.Columns[0].ID)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "west", out.Rows[0].Cells[0].Value.ToString())
}

func TestRunSelectCarriesWarningsForward(t *testing.T) {
	table := buildSelectStageTable(t)
	table.AddWarning(vq.WarningDataTruncated, "truncated")
	region, _ := vq.NewSimpleColumn("region")
	out, err := RunSelect(table, []vq.AbstractColumn{region}, &IdentityLookup{Table: table})
	require.NoError(t, err)
	require.Len(t, out.Warnings, 1)
}

func TestRunSelectAfterGroupPivotCopiesKeyAndPlainAggregation(t *testing.T) {
	region, _ := vq.NewSimpleColumn("region")
	amount, _ := vq.NewSimpleColumn("amount")
	sumAgg := vq.NewAggregationColumn(amount, vq.AggSum)

	staged, err := vq.NewDataTable([]vq.ColumnDescription{
		{ID: "region", Type: vq.Text},
		{ID: sumAgg.ID(), Type: vq.Number},
	})
	require.NoError(t, err)
	require.NoError(t, staged.AddRow([]vq.Value{vq.TextValue("west"), vq.NumberValue(10)}))

	out, err := RunSelectAfterGroupPivot(staged, []vq.AbstractColumn{region, sumAgg})
	require.NoError(t, err)
	require.Len(t, out.Columns, 2)
	assert.Equal(t, "west", out.Rows[0].Cells[0].Value.ToString())
}

func TestRunSelectAfterGroupPivotExpandsAggregationAcrossPivotColumns(t *testing.T) {
	amount, _ := vq.NewSimpleColumn("amount")
	sumAgg := vq.NewAggregationColumn(amount, vq.AggSum)

	staged, err := vq.NewDataTable([]vq.ColumnDescription{
		{ID: "a " + sumAgg.ID(), Type: vq.Number},
		{ID: "b " + sumAgg.ID(), Type: vq.Number},
	})
	require.NoError(t, err)
	require.NoError(t, staged.AddRow([]vq.Value{vq.NumberValue(1), vq.NumberValue(2)}))

	out, err := RunSelectAfterGroupPivot(staged, []vq.AbstractColumn{sumAgg})
	require.NoError(t, err)
	require.Len(t, out.Columns, 2)
	assert.Equal(t, "a "+sumAgg.ID(), out.Columns[0].ID)
	assert.Equal(t, "b "+sumAgg.ID(), out.Columns[1].ID)
}

func TestRunSelectAfterGroupPivotUnknownColumnErrors(t *testing.T) {
	staged, err := vq.NewDataTable([]vq.ColumnDescription{{ID: "region", Type: vq.Text}})
	require.NoError(t, err)
	missing, _ := vq.NewSimpleColumn("missing")

	_, err = RunSelectAfterGroupPivot(staged, []vq.AbstractColumn{missing})
	assert.Error(t, err)
}

func TestApplyLabelsAndFormatsOverwritesOnlyNamedColumns(t *testing.T) {
	table := buildSelectStageTable(t)
	ApplyLabelsAndFormats(table, map[string]string{"region": "Region"}, map[string]string{"amount": "#,##0"})
	assert.Equal(t, "Region", table.Columns[0].Label)
	assert.Equal(t, "#,##0", table.Columns[1].Pattern)
}

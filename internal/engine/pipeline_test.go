package engine

import (
	"testing"

	vq "github.com/lychee-technology/vizquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPipelineTable(t *testing.T) *vq.DataTable {
	t.Helper()
	table, err := vq.NewDataTable([]vq.ColumnDescription{
		{ID: "region", Type: vq.Text},
		{ID: "amount", Type: vq.Number},
	})
	require.NoError(t, err)
	rows := [][2]any{
		{"west", 10.0},
		{"west", 20.0},
		{"east", 5.0},
		{"east", 50.0},
	}
	for _, r := range rows {
		require.NoError(t, table.AddRow([]vq.Value{vq.TextValue(r[0].(string)), vq.NumberValue(r[1].(float64))}))
	}
	return table
}

func TestRunPipelineFilterSortPaginate(t *testing.T) {
	table := buildPipelineTable(t)
	region, _ := vq.NewSimpleColumn("region")
	amount, _ := vq.NewSimpleColumn("amount")

	q := vq.NewQuery()
	q.Selection = []vq.AbstractColumn{region, amount}
	q.Filter = &vq.ColumnValue{Column: amount, Op: vq.OpGreaterThan, Operand: vq.NumberValue(8)}
	q.Sort = []vq.SortSpec{{Column: amount, Direction: vq.Descending}}
	q.Limit = 2

	collator := vq.NewCollator("en")
	out, err := RunPipeline(table, q, collator, nil, 1000, nil)
	require.NoError(t, err)
	require.Len(t, out.Rows, 2)

	amountIdx := out.ColumnIndex("amount")
	first, _ := out.Rows[0].Cells[amountIdx].Value.AsNumber()
	second, _ := out.Rows[1].Cells[amountIdx].Value.AsNumber()
	assert.Equal(t, 50.0, first)
	assert.Equal(t, 20.0, second)
}

func TestRunPipelineGroupByEndToEnd(t *testing.T) {
	table := buildPipelineTable(t)
	region, _ := vq.NewSimpleColumn("region")
	amount, _ := vq.NewSimpleColumn("amount")
	sumAgg := vq.NewAggregationColumn(amount, vq.AggSum)

	q := vq.NewQuery()
	q.Group = []vq.AbstractColumn{region}
	q.Selection = []vq.AbstractColumn{region, sumAgg}
	q.Sort = []vq.SortSpec{{Column: region, Direction: vq.Ascending}}

	collator := vq.NewCollator("en")
	out, err := RunPipeline(table, q, collator, nil, 1000, nil)
	require.NoError(t, err)
	require.Len(t, out.Rows, 2)

	regionIdx := out.ColumnIndex("region")
	sumIdx := out.ColumnIndex("sum-amount")
	assert.Equal(t, "east", out.Rows[0].Cells[regionIdx].Value.ToString())
	eastSum, _ := out.Rows[0].Cells[sumIdx].Value.AsNumber()
	assert.Equal(t, 55.0, eastSum)
}

func TestRunPipelineMaxRowsTruncatesAndWarns(t *testing.T) {
	table := buildPipelineTable(t)
	region, _ := vq.NewSimpleColumn("region")
	amount, _ := vq.NewSimpleColumn("amount")

	q := vq.NewQuery()
	q.Selection = []vq.AbstractColumn{region, amount}

	collator := vq.NewCollator("en")
	out, err := RunPipeline(table, q, collator, nil, 2, nil)
	require.NoError(t, err)
	require.Len(t, out.Rows, 2)
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, vq.WarningDataTruncated, out.Warnings[0].Code)
}

func TestRunPipelineNoValuesStripsCellValues(t *testing.T) {
	table := buildPipelineTable(t)
	region, _ := vq.NewSimpleColumn("region")

	q := vq.NewQuery()
	q.Selection = []vq.AbstractColumn{region}
	q.Options.NoValues = true

	collator := vq.NewCollator("en")
	out, err := RunPipeline(table, q, collator, nil, 1000, nil)
	require.NoError(t, err)
	for _, row := range out.Rows {
		assert.True(t, row.Cells[0].Value.IsNull())
	}
}

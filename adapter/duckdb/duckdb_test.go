package duckdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vizquery "github.com/lychee-technology/vizquery"
)

func TestTranslateSimpleSelectionQuotesIdentifiers(t *testing.T) {
	region, _ := vizquery.NewSimpleColumn("region")
	q := vizquery.NewQuery()
	q.Selection = []vizquery.AbstractColumn{region}

	sqlText, err := translate(q, "sales")
	require.NoError(t, err)
	assert.Equal(t, `SELECT "region" FROM "sales"`, sqlText)
}

func TestTranslateFilterAndSortAndLimitOffset(t *testing.T) {
	amount, _ := vizquery.NewSimpleColumn("amount")
	q := vizquery.NewQuery()
	q.Filter = &vizquery.ColumnValue{Column: amount, Op: vizquery.OpGreaterThan, Operand: vizquery.NumberValue(10)}
	q.Sort = []vizquery.SortSpec{{Column: amount, Direction: vizquery.Descending}}
	q.Limit = 3
	q.Offset = 1

	sqlText, err := translate(q, "sales")
	require.NoError(t, err)
	assert.Contains(t, sqlText, `WHERE "amount" > 10`)
	assert.Contains(t, sqlText, `ORDER BY "amount" DESC`)
	assert.Contains(t, sqlText, "LIMIT 3")
	assert.Contains(t, sqlText, "OFFSET 1")
}

func TestExecuteRejectsGroupOrPivot(t *testing.T) {
	src := NewSource(nil, "sales", []vizquery.ColumnDescription{{ID: "region", Type: vizquery.Text}})
	region, _ := vizquery.NewSimpleColumn("region")
	q := vizquery.NewQuery()
	q.Group = []vizquery.AbstractColumn{region}
	q.Selection = []vizquery.AbstractColumn{vizquery.NewAggregationColumn(region, vizquery.AggCount)}

	_, err := src.Execute(q)
	assert.Error(t, err)
}

func TestExecuteAgainstRealInMemoryDatabase(t *testing.T) {
	src, err := Open(":memory:", "sales", []vizquery.ColumnDescription{
		{ID: "region", Type: vizquery.Text},
		{ID: "amount", Type: vizquery.Number},
	})
	require.NoError(t, err)
	defer src.DB.Close()

	_, err = src.DB.Exec(`CREATE TABLE "sales" (region VARCHAR, amount DOUBLE)`)
	require.NoError(t, err)
	_, err = src.DB.Exec(`INSERT INTO "sales" VALUES ('west', 10), ('east', 20)`)
	require.NoError(t, err)

	amount, _ := vizquery.NewSimpleColumn("amount")
	region, _ := vizquery.NewSimpleColumn("region")
	q := vizquery.NewQuery()
	q.Selection = []vizquery.AbstractColumn{region, amount}
	q.Filter = &vizquery.ColumnValue{Column: amount, Op: vizquery.OpGreaterThan, Operand: vizquery.NumberValue(15)}

	out, err := src.Execute(q)
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "east", out.Rows[0].Cells[0].Value.ToString())
}

func TestToValueHandlesNilAndByteSlice(t *testing.T) {
	assert.True(t, toValue(nil).IsNull())
	v := toValue([]byte("hello"))
	assert.Equal(t, "hello", v.ToString())
}

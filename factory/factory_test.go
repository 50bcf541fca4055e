package factory

import (
	"testing"

	vizquery "github.com/lychee-technology/vizquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFactoryTable(t *testing.T) *vizquery.DataTable {
	t.Helper()
	table, err := vizquery.NewDataTable([]vizquery.ColumnDescription{
		{ID: "region", Type: vizquery.Text},
		{ID: "amount", Type: vizquery.Number},
	})
	require.NoError(t, err)
	require.NoError(t, table.AddRow([]vizquery.Value{vizquery.TextValue("west"), vizquery.NumberValue(10)}))
	require.NoError(t, table.AddRow([]vizquery.Value{vizquery.TextValue("east"), vizquery.NumberValue(20)}))
	return table
}

func TestExecuteRunsSimpleSelection(t *testing.T) {
	eng, err := NewEngine(vizquery.DefaultConfig())
	require.NoError(t, err)

	table := buildFactoryTable(t)
	region, _ := vizquery.NewSimpleColumn("region")
	q := vizquery.NewQuery()
	q.Selection = []vizquery.AbstractColumn{region}

	out, err := Execute(eng, table, q)
	require.NoError(t, err)
	assert.Len(t, out.Rows, 2)
	assert.Len(t, out.Columns, 1)
}

func TestExecuteRejectsInvalidQuery(t *testing.T) {
	eng, err := NewEngine(vizquery.DefaultConfig())
	require.NoError(t, err)

	table := buildFactoryTable(t)
	missing, _ := vizquery.NewSimpleColumn("missing")
	q := vizquery.NewQuery()
	q.Selection = []vizquery.AbstractColumn{missing}

	_, err = Execute(eng, table, q)
	assert.Error(t, err)
}

// fakeSource is a minimal in-memory DataSource used to exercise
// ExecuteAgainstSource's split/execute/complete wiring without a real
// adapter and its external dependency.
type fakeSource struct {
	table      *vizquery.DataTable
	capability vizquery.Capability
}

func (f *fakeSource) Capability() vizquery.Capability { return f.capability }
func (f *fakeSource) Schema() vizquery.Schema         { return f.table }
func (f *fakeSource) Execute(q *vizquery.Query) (*vizquery.DataTable, error) {
	return f.table.Clone(), nil
}

func TestExecuteAgainstSourceWithNoneCapabilityCompletesInMemory(t *testing.T) {
	eng, err := NewEngine(vizquery.DefaultConfig())
	require.NoError(t, err)

	src := &fakeSource{table: buildFactoryTable(t), capability: vizquery.CapabilityNone}
	region, _ := vizquery.NewSimpleColumn("region")
	amount, _ := vizquery.NewSimpleColumn("amount")
	q := vizquery.NewQuery()
	q.Selection = []vizquery.AbstractColumn{region, amount}
	q.Filter = &vizquery.ColumnValue{Column: amount, Op: vizquery.OpGreaterThan, Operand: vizquery.NumberValue(15)}

	out, err := ExecuteAgainstSource(eng, src, q)
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "east", out.Rows[0].Cells[0].Value.ToString())
}

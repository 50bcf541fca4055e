package jsonsource

import (
	"encoding/json"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vizquery "github.com/lychee-technology/vizquery"
)

var sampleColumns = []vizquery.ColumnDescription{
	{ID: "region", Type: vizquery.Text},
	{ID: "amount", Type: vizquery.Number},
}

// mustSchema builds a jsonschema.Schema by marshaling a plain map and
// unmarshaling it into the typed struct, rather than constructing it
// as a literal whose field types aren't guaranteed stable across the
// library's versions.
func mustSchema(t *testing.T, raw map[string]any) *jsonschema.Schema {
	t.Helper()
	b, err := json.Marshal(raw)
	require.NoError(t, err)
	var schema jsonschema.Schema
	require.NoError(t, json.Unmarshal(b, &schema))
	return &schema
}

func TestNewSourceRejectsMalformedJSON(t *testing.T) {
	_, err := NewSource([]byte("not json"), nil, sampleColumns)
	assert.Error(t, err)
}

func TestNewSourceValidatesAgainstSchema(t *testing.T) {
	schema := mustSchema(t, map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"region": map[string]any{"type": "string"},
				"amount": map[string]any{"type": "number"},
			},
			"required": []string{"region", "amount"},
		},
	})
	raw := []byte(`[{"region":"west","amount":10}]`)
	_, err := NewSource(raw, schema, sampleColumns)
	require.NoError(t, err)
}

func TestNewSourceRejectsDocumentViolatingSchema(t *testing.T) {
	schema := mustSchema(t, map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":     "object",
			"required": []string{"region", "amount"},
		},
	})
	raw := []byte(`[{"region":"west"}]`)
	_, err := NewSource(raw, schema, sampleColumns)
	assert.Error(t, err)
}

func TestExecuteDefaultSelectionProjectsAllColumns(t *testing.T) {
	raw := []byte(`[{"region":"west","amount":10},{"region":"east","amount":20}]`)
	src, err := NewSource(raw, nil, sampleColumns)
	require.NoError(t, err)

	out, err := src.Execute(vizquery.NewQuery())
	require.NoError(t, err)
	require.Len(t, out.Columns, 2)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "west", out.Rows[0].Cells[0].Value.ToString())
}

func TestExecuteProjectsOnlySelectedSimpleColumns(t *testing.T) {
	raw := []byte(`[{"region":"west","amount":10}]`)
	src, err := NewSource(raw, nil, sampleColumns)
	require.NoError(t, err)

	region, _ := vizquery.NewSimpleColumn("region")
	q := vizquery.NewQuery()
	q.Selection = []vizquery.AbstractColumn{region}

	out, err := src.Execute(q)
	require.NoError(t, err)
	require.Len(t, out.Columns, 1)
	assert.Equal(t, "region", out.Columns[0].ID)
}

func TestExecuteRejectsNonSimpleColumnSelection(t *testing.T) {
	raw := []byte(`[{"region":"west","amount":10}]`)
	src, err := NewSource(raw, nil, sampleColumns)
	require.NoError(t, err)

	amount, _ := vizquery.NewSimpleColumn("amount")
	sumAgg := vizquery.NewAggregationColumn(amount, vizquery.AggSum)
	q := vizquery.NewQuery()
	q.Selection = []vizquery.AbstractColumn{sumAgg}

	_, err = src.Execute(q)
	assert.Error(t, err)
}

func TestExecuteMissingFieldBecomesNull(t *testing.T) {
	raw := []byte(`[{"region":"west"}]`)
	src, err := NewSource(raw, nil, sampleColumns)
	require.NoError(t, err)

	out, err := src.Execute(vizquery.NewQuery())
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.True(t, out.Rows[0].Cells[1].Value.IsNull())
}

func TestSourceCapabilityIsSelect(t *testing.T) {
	src, err := NewSource([]byte(`[]`), nil, sampleColumns)
	require.NoError(t, err)
	assert.Equal(t, vizquery.CapabilitySelect, src.Capability())
}

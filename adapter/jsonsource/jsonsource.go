// Package jsonsource adapts a schema-validated JSON array of row
// objects into a vizquery.DataSource with SELECT capability (§11.4): it
// can project the simple columns the splitter pushes down to it, but
// everything else — scalar functions, filtering, sorting, grouping and
// pagination — always completes in memory upstream.
package jsonsource

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	vizquery "github.com/lychee-technology/vizquery"
)

// Source is a DataSource backed by an in-memory JSON document: an
// array of flat objects, one per row, validated against JSONSchema
// before being accepted.
type Source struct {
	Columns    []vizquery.ColumnDescription
	JSONSchema *jsonschema.Schema
	raw        []byte
}

// NewSource builds a Source from raw JSON bytes (an array of row
// objects) and a JSON Schema describing that array, validating eagerly
// so a malformed document fails at construction rather than at query
// time.
func NewSource(raw []byte, schema *jsonschema.Schema, columns []vizquery.ColumnDescription) (*Source, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, vizquery.NewInvalidQueryError(vizquery.CodeTypeMismatch, fmt.Sprintf("invalid JSON document: %v", err))
	}
	if schema != nil {
		resolved, err := schema.Resolve(nil)
		if err != nil {
			return nil, vizquery.NewInternalError(fmt.Sprintf("failed to resolve JSON schema: %v", err))
		}
		if err := resolved.Validate(doc); err != nil {
			return nil, vizquery.NewInvalidQueryError(vizquery.CodeTypeMismatch, fmt.Sprintf("document does not satisfy schema: %v", err))
		}
	}
	return &Source{Columns: columns, JSONSchema: schema, raw: raw}, nil
}

func (s *Source) Capability() vizquery.Capability { return vizquery.CapabilitySelect }

func (s *Source) Schema() vizquery.Schema {
	t, _ := vizquery.NewDataTable(s.Columns)
	return t
}

// Execute decodes every row object and projects q's selection, which
// the splitter always reduces to plain Simple columns before handing a
// query to a SELECT-capability source — scalar functions, aggregations,
// and everything else stay in the completion query.
func (s *Source) Execute(q *vizquery.Query) (*vizquery.DataTable, error) {
	var rowObjs []map[string]any
	if err := json.Unmarshal(s.raw, &rowObjs); err != nil {
		return nil, vizquery.NewInternalError(fmt.Sprintf("failed to decode row objects: %v", err))
	}

	selection := q.Selection
	if len(selection) == 0 {
		selection = make([]vizquery.AbstractColumn, len(s.Columns))
		for i, c := range s.Columns {
			simple, err := vizquery.NewSimpleColumn(c.ID)
			if err != nil {
				return nil, err
			}
			selection[i] = simple
		}
	}

	typeByID := make(map[string]vizquery.Type, len(s.Columns))
	for _, c := range s.Columns {
		typeByID[c.ID] = c.Type
	}

	columns := make([]vizquery.ColumnDescription, len(selection))
	for i, col := range selection {
		simple, ok := col.(*vizquery.SimpleColumn)
		if !ok {
			return nil, vizquery.NewInvalidQueryError(vizquery.CodeUnsupportedCapability,
				"jsonsource only supports simple column selection")
		}
		t, ok := typeByID[simple.ColumnID]
		if !ok {
			return nil, vizquery.NewInvalidQueryError(vizquery.CodeUnknownColumn, "unknown column").WithField(simple.ColumnID)
		}
		columns[i] = vizquery.ColumnDescription{ID: simple.ColumnID, Type: t}
	}

	table, err := vizquery.NewDataTable(columns)
	if err != nil {
		return nil, err
	}
	for _, obj := range rowObjs {
		values := make([]vizquery.Value, len(selection))
		for i, col := range selection {
			simple := col.(*vizquery.SimpleColumn)
			values[i] = jsonValueToVizquery(obj[simple.ColumnID], columns[i].Type)
		}
		if err := table.AddRow(values); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func jsonValueToVizquery(v any, t vizquery.Type) vizquery.Value {
	if v == nil {
		return vizquery.NullOf(t)
	}
	switch val := v.(type) {
	case bool:
		return vizquery.BoolValue(val)
	case float64:
		return vizquery.NumberValue(val)
	case string:
		return vizquery.TextValue(val)
	default:
		return vizquery.NullOf(t)
	}
}

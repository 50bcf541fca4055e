// Package duckdb adapts an in-process DuckDB table into a
// vizquery.DataSource with SORT_AND_PAGINATION capability (§11.2): it
// can filter, select, sort and paginate via SQL, but GROUP BY/PIVOT
// always completes in memory.
package duckdb

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
	vizquery "github.com/lychee-technology/vizquery"
)

// Source is a DataSource backed by a DuckDB table reachable through
// database/sql, using github.com/duckdb/duckdb-go/v2 as the driver.
type Source struct {
	DB        *sql.DB
	TableName string
	columns   []vizquery.ColumnDescription
}

// NewSource builds a Source over an already-open DuckDB *sql.DB.
func NewSource(db *sql.DB, tableName string, columns []vizquery.ColumnDescription) *Source {
	return &Source{DB: db, TableName: tableName, columns: columns}
}

// Open opens a DuckDB database file (or ":memory:") through the
// database/sql driver registered by duckdb-go/v2 and wraps tableName in
// a Source.
func Open(path, tableName string, columns []vizquery.ColumnDescription) (*Source, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, vizquery.NewInternalError(fmt.Sprintf("failed to open duckdb database: %v", err))
	}
	return NewSource(db, tableName, columns), nil
}

func (s *Source) Capability() vizquery.Capability { return vizquery.CapabilitySortAndPagination }

func (s *Source) Schema() vizquery.Schema {
	t, _ := vizquery.NewDataTable(s.columns)
	return t
}

// Execute runs the filter/select/sort/pagination portion of q (the
// splitter never hands this source a GROUP BY or PIVOT clause) as SQL
// against TableName.
func (s *Source) Execute(q *vizquery.Query) (*vizquery.DataTable, error) {
	if q.HasGroupOrPivot() {
		return nil, vizquery.NewInvalidQueryError(vizquery.CodeUnsupportedCapability,
			"duckdb adapter cannot execute GROUP BY/PIVOT")
	}
	sqlText, err := translate(q, s.TableName)
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.Query(sqlText)
	if err != nil {
		return nil, vizquery.NewInternalError(fmt.Sprintf("duckdb query failed: %v", err))
	}
	defer rows.Close()

	colNames, err := rows.Columns()
	if err != nil {
		return nil, vizquery.NewInternalError(err.Error())
	}
	declaredTypes := make(map[string]vizquery.Type, len(s.columns))
	for _, c := range s.columns {
		declaredTypes[c.ID] = c.Type
	}
	columns := make([]vizquery.ColumnDescription, len(colNames))
	for i, name := range colNames {
		t, ok := declaredTypes[name]
		if !ok {
			t = vizquery.Text
		}
		columns[i] = vizquery.ColumnDescription{ID: name, Type: t}
	}
	table, err := vizquery.NewDataTable(columns)
	if err != nil {
		return nil, err
	}

	scanTargets := make([]any, len(colNames))
	scanValues := make([]any, len(colNames))
	for i := range scanTargets {
		scanTargets[i] = &scanValues[i]
	}
	for rows.Next() {
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, vizquery.NewInternalError(fmt.Sprintf("duckdb row scan failed: %v", err))
		}
		values := make([]vizquery.Value, len(scanValues))
		for i, v := range scanValues {
			values[i] = toValue(v)
		}
		if err := table.AddRow(values); err != nil {
			return nil, err
		}
	}
	return table, rows.Err()
}

func toValue(v any) vizquery.Value {
	if v == nil {
		return vizquery.NullOf(vizquery.Text)
	}
	switch val := v.(type) {
	case bool:
		return vizquery.BoolValue(val)
	case float64:
		return vizquery.NumberValue(val)
	case int64:
		return vizquery.NumberValue(float64(val))
	case string:
		return vizquery.TextValue(val)
	case []byte:
		return vizquery.TextValue(string(val))
	default:
		return vizquery.TextValue(fmt.Sprintf("%v", val))
	}
}

func translate(q *vizquery.Query, table string) (string, error) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if len(q.Selection) == 0 {
		sb.WriteString("*")
	} else {
		parts := make([]string, len(q.Selection))
		for i, col := range q.Selection {
			parts[i] = quoteIdentifierTree(col)
		}
		sb.WriteString(strings.Join(parts, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(`"` + strings.ReplaceAll(table, `"`, `""`) + `"`)

	if q.Filter != nil {
		clause, err := translateFilter(q.Filter)
		if err != nil {
			return "", err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(clause)
	}

	if len(q.Sort) > 0 {
		parts := make([]string, len(q.Sort))
		for i, s := range q.Sort {
			dir := "ASC"
			if s.Direction == vizquery.Descending {
				dir = "DESC"
			}
			parts[i] = quoteIdentifierTree(s.Column) + " " + dir
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}

	if q.Limit >= 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}
	if q.Offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", q.Offset)
	}
	return sb.String(), nil
}

func quoteIdentifierTree(col vizquery.AbstractColumn) string {
	switch c := col.(type) {
	case *vizquery.SimpleColumn:
		return `"` + strings.ReplaceAll(c.ColumnID, `"`, `""`) + `"`
	case *vizquery.ScalarFunctionColumn:
		parts := make([]string, len(c.Args))
		for i, a := range c.Args {
			parts[i] = quoteIdentifierTree(a)
		}
		return c.Fn + "(" + strings.Join(parts, ", ") + ")"
	default:
		return "NULL"
	}
}

func translateFilter(f vizquery.Filter) (string, error) {
	switch filt := f.(type) {
	case *vizquery.ColumnIsNull:
		op := "IS NULL"
		if filt.Negate {
			op = "IS NOT NULL"
		}
		return quoteIdentifierTree(filt.Column) + " " + op, nil
	case *vizquery.ColumnValue:
		lit, err := filt.Operand.ToQueryString()
		if err != nil {
			return "", err
		}
		return quoteIdentifierTree(filt.Column) + " " + string(filt.Op) + " " + lit, nil
	case *vizquery.ColumnColumn:
		return quoteIdentifierTree(filt.Left) + " " + string(filt.Op) + " " + quoteIdentifierTree(filt.Right), nil
	case *vizquery.Negation:
		inner, err := translateFilter(filt.Inner)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	case *vizquery.Compound:
		parts := make([]string, len(filt.Operands))
		for i, op := range filt.Operands {
			clause, err := translateFilter(op)
			if err != nil {
				return "", err
			}
			parts[i] = clause
		}
		joiner := " AND "
		if filt.Op == vizquery.BoolOr {
			joiner = " OR "
		}
		return "(" + strings.Join(parts, joiner) + ")", nil
	default:
		return "", vizquery.NewInternalError("unsupported filter node for SQL translation")
	}
}

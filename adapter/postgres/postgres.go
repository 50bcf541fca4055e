// Package postgres adapts a Postgres table, reachable over pgx, into a
// vizquery.DataSource with full SQL capability (§11.1 of the expanded
// spec): filter, select, sort, pagination, and group/pivot (via the MIN
// re-aggregation transform the splitter applies) are all pushed down as
// SQL text.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	vizquery "github.com/lychee-technology/vizquery"
)

// pgxQuerier is the slice of *pgxpool.Pool that Execute needs, narrowed so
// tests can substitute pgxmock's pool double without a live database.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Source is a DataSource backed by a single Postgres table/view.
type Source struct {
	Pool      pgxQuerier
	TableName string
	columns   []vizquery.ColumnDescription
}

// NewSource builds a Source over tableName using an already-open pool.
// columns describes the table's schema; Postgres has no portable way to
// map every SQL type back onto the six scalar Types without a catalog
// lookup, so callers supply it explicitly.
func NewSource(pool *pgxpool.Pool, tableName string, columns []vizquery.ColumnDescription) *Source {
	return &Source{Pool: pool, TableName: tableName, columns: columns}
}

func (s *Source) Capability() vizquery.Capability { return vizquery.CapabilitySQL }

func (s *Source) Schema() vizquery.Schema {
	t, _ := vizquery.NewDataTable(s.columns)
	return t
}

// Execute translates q into a SELECT against TableName and scans the
// result into a DataTable. Aggregation targets, GROUP BY and PIVOT key
// columns, ORDER BY, OFFSET/LIMIT and WHERE all translate directly;
// scalar functions translate to their SQL equivalents of the same name.
func (s *Source) Execute(q *vizquery.Query) (*vizquery.DataTable, error) {
	sqlText, args, err := translate(q, s.TableName)
	if err != nil {
		return nil, err
	}
	rows, err := s.Pool.Query(context.Background(), sqlText, args...)
	if err != nil {
		return nil, vizquery.NewInternalError(fmt.Sprintf("postgres query failed: %v", err))
	}
	defer rows.Close()
	return scanRows(rows, s.columns)
}

func scanRows(rows pgx.Rows, declared []vizquery.ColumnDescription) (*vizquery.DataTable, error) {
	declaredTypes := make(map[string]vizquery.Type, len(declared))
	for _, c := range declared {
		declaredTypes[c.ID] = c.Type
	}
	fields := rows.FieldDescriptions()
	columns := make([]vizquery.ColumnDescription, len(fields))
	for i, f := range fields {
		// The wire protocol tells us the column name, not its vizquery
		// Type: a field named like a declared column takes that column's
		// Type, and any other field is typed Text.
		t, ok := declaredTypes[string(f.Name)]
		if !ok {
			t = vizquery.Text
		}
		columns[i] = vizquery.ColumnDescription{ID: string(f.Name), Type: t}
	}
	table, err := vizquery.NewDataTable(columns)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		raw, err := rows.Values()
		if err != nil {
			return nil, vizquery.NewInternalError(fmt.Sprintf("postgres row scan failed: %v", err))
		}
		values := make([]vizquery.Value, len(raw))
		for i, v := range raw {
			values[i] = toValue(v, columns[i].Type)
		}
		if err := table.AddRow(values); err != nil {
			return nil, err
		}
	}
	return table, rows.Err()
}

func toValue(v any, t vizquery.Type) vizquery.Value {
	if v == nil {
		return vizquery.NullOf(t)
	}
	switch val := v.(type) {
	case bool:
		return vizquery.BoolValue(val)
	case float64:
		return vizquery.NumberValue(val)
	case int64:
		return vizquery.NumberValue(float64(val))
	case int32:
		return vizquery.NumberValue(float64(val))
	case string:
		return vizquery.TextValue(val)
	default:
		return vizquery.TextValue(fmt.Sprintf("%v", val))
	}
}

// translate renders a pushed-down Query as parameterized SQL. It covers
// the subset the splitter ever hands to a SQL-capable source: simple
// selection/aggregation columns, a flat or AND/OR WHERE tree over
// column/literal comparisons, GROUP BY, ORDER BY, LIMIT/OFFSET.
func translate(q *vizquery.Query, table string) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if len(q.Selection) == 0 {
		sb.WriteString("*")
	} else {
		parts := make([]string, len(q.Selection))
		for i, col := range q.Selection {
			parts[i] = translateColumn(col)
		}
		sb.WriteString(strings.Join(parts, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(pgx.Identifier{table}.Sanitize())

	var args []any
	if q.Filter != nil {
		clause, err := translateFilter(q.Filter, &args)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(clause)
	}

	if len(q.Group) > 0 {
		groupParts := make([]string, len(q.Group))
		for i, col := range q.Group {
			groupParts[i] = translateColumn(col)
		}
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(groupParts, ", "))
	}

	if len(q.Sort) > 0 {
		orderParts := make([]string, len(q.Sort))
		for i, s := range q.Sort {
			dir := "ASC"
			if s.Direction == vizquery.Descending {
				dir = "DESC"
			}
			orderParts[i] = translateColumn(s.Column) + " " + dir
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(orderParts, ", "))
	}

	if q.Limit >= 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}
	if q.Offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", q.Offset)
	}

	return sb.String(), args, nil
}

func translateColumn(col vizquery.AbstractColumn) string {
	switch c := col.(type) {
	case *vizquery.SimpleColumn:
		return pgx.Identifier{c.ColumnID}.Sanitize()
	case *vizquery.AggregationColumn:
		return strings.ToUpper(string(c.Op)) + "(" + translateColumn(c.Target) + ")"
	case *vizquery.ScalarFunctionColumn:
		argStrings := make([]string, len(c.Args))
		for i, a := range c.Args {
			argStrings[i] = translateColumn(a)
		}
		return c.Fn + "(" + strings.Join(argStrings, ", ") + ")"
	default:
		return "NULL"
	}
}

func translateFilter(f vizquery.Filter, args *[]any) (string, error) {
	switch filt := f.(type) {
	case *vizquery.ColumnIsNull:
		op := "IS NULL"
		if filt.Negate {
			op = "IS NOT NULL"
		}
		return translateColumn(filt.Column) + " " + op, nil
	case *vizquery.ColumnValue:
		*args = append(*args, toSQLLiteral(filt.Operand))
		placeholder := fmt.Sprintf("$%d", len(*args))
		return translateColumn(filt.Column) + " " + sqlOp(filt.Op) + " " + placeholder, nil
	case *vizquery.ColumnColumn:
		return translateColumn(filt.Left) + " " + sqlOp(filt.Op) + " " + translateColumn(filt.Right), nil
	case *vizquery.Negation:
		inner, err := translateFilter(filt.Inner, args)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	case *vizquery.Compound:
		parts := make([]string, len(filt.Operands))
		for i, op := range filt.Operands {
			clause, err := translateFilter(op, args)
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

func sqlOp(op vizquery.CompareOp) string {
	switch op {
	case vizquery.OpContains:
		return "LIKE"
	case vizquery.OpStartsWith, vizquery.OpEndsWith:
		return "LIKE"
	case vizquery.OpMatches:
		return "~"
	case vizquery.OpLike:
		return "LIKE"
	default:
		return string(op)
	}
}

func toSQLLiteral(v vizquery.Value) any {
	switch v.TypeOf() {
	case vizquery.Number:
		n, _ := v.AsNumber()
		return n
	case vizquery.Boolean:
		b, _ := v.AsBool()
		return b
	default:
		return v.ToString()
	}
}

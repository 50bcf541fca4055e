// Command demo builds a small in-memory table and runs one GROUP BY
// query against it through the factory-wired Engine, printing the
// resulting table — a smoke test for the execution pipeline.
package main

import (
	"fmt"
	"os"

	vizquery "github.com/lychee-technology/vizquery"
	"github.com/lychee-technology/vizquery/factory"
)

func buildSampleTable() (*vizquery.DataTable, error) {
	table, err := vizquery.NewDataTable([]vizquery.ColumnDescription{
		{ID: "region", Type: vizquery.Text},
		{ID: "product", Type: vizquery.Text},
		{ID: "amount", Type: vizquery.Number},
	})
	if err != nil {
		return nil, err
	}
	rows := [][3]any{
		{"west", "widget", 10.0},
		{"west", "gadget", 25.0},
		{"east", "widget", 7.0},
		{"east", "gadget", 40.0},
	}
	for _, r := range rows {
		if err := table.AddRow([]vizquery.Value{
			vizquery.TextValue(r[0].(string)),
			vizquery.TextValue(r[1].(string)),
			vizquery.NumberValue(r[2].(float64)),
		}); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func main() {
	eng, err := factory.NewEngine(vizquery.DefaultConfig())
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build engine:", err)
		os.Exit(1)
	}

	table, err := buildSampleTable()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build sample table:", err)
		os.Exit(1)
	}

	region, err := vizquery.NewSimpleColumn("region")
	if err != nil {
		panic(err)
	}
	amount, err := vizquery.NewSimpleColumn("amount")
	if err != nil {
		panic(err)
	}
	sumAmount := vizquery.NewAggregationColumn(amount, vizquery.AggSum)

	q := vizquery.NewQuery()
	q.Group = []vizquery.AbstractColumn{region}
	q.Selection = []vizquery.AbstractColumn{region, sumAmount}
	q.Sort = []vizquery.SortSpec{{Column: region, Direction: vizquery.Ascending}}

	result, err := factory.Execute(eng, table, q)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query failed:", err)
		os.Exit(1)
	}

	printTable(result)
}

func printTable(t *vizquery.DataTable) {
	for _, c := range t.Columns {
		fmt.Printf("%-12s", c.ID)
	}
	fmt.Println()
	for _, row := range t.Rows {
		for _, cell := range row.Cells {
			fmt.Printf("%-12s", cell.Value.ToString())
		}
		fmt.Println()
	}
	for _, w := range t.Warnings {
		fmt.Println("warning:", w.Code, w.Message)
	}
}

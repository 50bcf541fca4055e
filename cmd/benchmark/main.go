// Command benchmark times RunPipeline over a synthetic table of
// configurable size — a quick way to see how group/pivot cost scales
// with row count without reaching for go test -bench.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	vizquery "github.com/lychee-technology/vizquery"
	"github.com/lychee-technology/vizquery/factory"
)

func buildTable(rows int, seed int64) (*vizquery.DataTable, error) {
	table, err := vizquery.NewDataTable([]vizquery.ColumnDescription{
		{ID: "region", Type: vizquery.Text},
		{ID: "category", Type: vizquery.Text},
		{ID: "amount", Type: vizquery.Number},
	})
	if err != nil {
		return nil, err
	}
	regions := []string{"north", "south", "east", "west"}
	categories := []string{"a", "b", "c", "d", "e"}
	r := rand.New(rand.NewSource(seed))
	for i := 0; i < rows; i++ {
		err := table.AddRow([]vizquery.Value{
			vizquery.TextValue(regions[r.Intn(len(regions))]),
			vizquery.TextValue(categories[r.Intn(len(categories))]),
			vizquery.NumberValue(r.Float64() * 1000),
		})
		if err != nil {
			return nil, err
		}
	}
	return table, nil
}

func main() {
	rows := flag.Int("rows", 100000, "number of synthetic rows to generate")
	seed := flag.Int64("seed", 42, "random seed for synthetic data")
	flag.Parse()

	table, err := buildTable(*rows, *seed)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build table:", err)
		os.Exit(1)
	}

	eng, err := factory.NewEngine(vizquery.DefaultConfig())
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build engine:", err)
		os.Exit(1)
	}

	region, _ := vizquery.NewSimpleColumn("region")
	category, _ := vizquery.NewSimpleColumn("category")
	amount, _ := vizquery.NewSimpleColumn("amount")
	sumAmount := vizquery.NewAggregationColumn(amount, vizquery.AggSum)
	avgAmount := vizquery.NewAggregationColumn(amount, vizquery.AggAvg)

	q := vizquery.NewQuery()
	q.Group = []vizquery.AbstractColumn{region}
	q.Pivot = []vizquery.AbstractColumn{category}
	q.Selection = []vizquery.AbstractColumn{region, sumAmount, avgAmount}

	start := time.Now()
	result, err := factory.Execute(eng, table, q)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query failed:", err)
		os.Exit(1)
	}

	fmt.Printf("rows=%d group+pivot elapsed=%s output_rows=%d output_cols=%d\n",
		*rows, elapsed, len(result.Rows), len(result.Columns))
}

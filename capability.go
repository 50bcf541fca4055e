package vizquery

// Capability describes how much of a Query a DataSource can execute
// itself before handing the remainder back to the in-memory pipeline
// (§4.6). The splitter (internal/engine.Split) switches on it to decide
// what goes to the source and what the in-memory completion query must
// still do.
type Capability string

const (
	// CapabilityNone means the source can only hand back raw rows; the
	// full pipeline (filter, group+pivot, sort, paginate, select, label,
	// format) runs in memory.
	CapabilityNone Capability = "NONE"
	// CapabilitySelect means the source can project plain simple columns
	// but not evaluate scalar functions, filter, group, sort, or paginate.
	CapabilitySelect Capability = "SELECT"
	// CapabilitySortAndPagination means the source can sort and paginate;
	// filtering, selection, grouping and pivoting complete in memory.
	CapabilitySortAndPagination Capability = "SORT_AND_PAGINATION"
	// CapabilitySQL means the source accepts a query translated into its
	// own query language, including filter and group; PIVOT is rewritten
	// into a flat GROUP BY, and queries with scalar functions stay in memory.
	CapabilitySQL Capability = "SQL"
	// CapabilityAll means the source can execute the entire query itself;
	// the completion query is the identity (select *, no further work).
	CapabilityAll Capability = "ALL"
)

// DataSource is the interface an external store implements to
// participate in query splitting (§4.6, §1 — parsing, transport and
// concrete adapters are out of the core's scope; this is the seam).
type DataSource interface {
	Capability() Capability
	Schema() Schema
	Execute(q *Query) (*DataTable, error)
}

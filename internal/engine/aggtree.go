package engine

import (
	"sort"
	"strings"

	vq "github.com/lychee-technology/vizquery"
)

// AggState is the running accumulator for one aggregation target within
// one (group path, pivot path) cell of the tree.
type AggState struct {
	Count       int
	Sum         float64
	Min, Max    vq.Value
	HasMinMax   bool
}

func newAggState() *AggState {
	return &AggState{}
}

func (s *AggState) update(op vq.AggOp, v vq.Value, col *vq.Collator) {
	if op == vq.AggCount {
		if !v.IsNull() {
			s.Count++
		}
		return
	}
	if v.IsNull() {
		return
	}
	s.Count++
	switch op {
	case vq.AggSum, vq.AggAvg:
		n, _ := v.AsNumber()
		s.Sum += n
	case vq.AggMin:
		if !s.HasMinMax {
			s.Min, s.HasMinMax = v, true
		} else if cmp, ok := col.Compare(v, s.Min); ok && cmp < 0 {
			s.Min = v
		}
	case vq.AggMax:
		if !s.HasMinMax {
			s.Max, s.HasMinMax = v, true
		} else if cmp, ok := col.Compare(v, s.Max); ok && cmp > 0 {
			s.Max = v
		}
	}
}

func (s *AggState) finalize(op vq.AggOp, resultType vq.Type) vq.Value {
	switch op {
	case vq.AggCount:
		return vq.NumberValue(float64(s.Count))
	case vq.AggSum:
		if s.Count == 0 {
			return vq.NullOf(vq.Number)
		}
		return vq.NumberValue(s.Sum)
	case vq.AggAvg:
		if s.Count == 0 {
			return vq.NullOf(vq.Number)
		}
		return vq.NumberValue(s.Sum / float64(s.Count))
	case vq.AggMin:
		if !s.HasMinMax {
			return vq.NullOf(resultType)
		}
		return s.Min
	case vq.AggMax:
		if !s.HasMinMax {
			return vq.NullOf(resultType)
		}
		return s.Max
	default:
		return vq.NullOf(resultType)
	}
}

// pivotBranch is one column-group's worth of running aggregates, keyed
// by aggregation column id, for a single distinct pivot-vector value
// within one group row.
type pivotBranch struct {
	pivotValues []vq.Value
	aggregates  map[string]*AggState
}

// groupNode is one level of the group-key trie. Non-leaf nodes (depth <
// len(groupCols)) only carry Children; leaf nodes (depth ==
// len(groupCols)) carry the pivot branches for that group row. This is
// the "arena + index" representation: nodes live in a single slice and
// reference children by index rather than by pointer, so the tree never
// needs a Scala-style Map[Value, Node] with parent back-references.
type groupNode struct {
	key      vq.Value
	children map[vq.Value]int
}

// AggTree accumulates GROUP BY/PIVOT results row-by-row and finalizes
// them into the group (row) and pivot (column) titles plus per-cell
// aggregate values the group+pivot stage needs to build output rows.
type AggTree struct {
	arena      []groupNode
	leaves     map[int]map[string]*pivotBranch // group-node index -> pivot key -> branch
	groupCols  []vq.AbstractColumn
	pivotCols  []vq.AbstractColumn
	aggCols    []*vq.AggregationColumn
	collator   *vq.Collator
}

// NewAggTree constructs an empty tree for the given group/pivot/aggregation
// column sets. collator governs TEXT key ordering.
func NewAggTree(groupCols, pivotCols []vq.AbstractColumn, aggCols []*vq.AggregationColumn, collator *vq.Collator) *AggTree {
	t := &AggTree{
		groupCols: groupCols,
		pivotCols: pivotCols,
		aggCols:   aggCols,
		collator:  collator,
		leaves:    make(map[int]map[string]*pivotBranch),
	}
	t.arena = append(t.arena, groupNode{children: make(map[vq.Value]int)})
	return t
}

// Add folds one source row into the tree: it resolves the group key
// path, descends/creates nodes for it, resolves the pivot key, and
// updates every aggregation target's running state for that cell.
func (t *AggTree) Add(groupKeys []vq.Value, pivotKeys []vq.Value, aggValues map[string]vq.Value) {
	nodeIdx := 0
	for _, k := range groupKeys {
		child, ok := t.arena[nodeIdx].children[k]
		if !ok {
			child = len(t.arena)
			t.arena = append(t.arena, groupNode{key: k, children: make(map[vq.Value]int)})
			t.arena[nodeIdx].children[k] = child
		}
		nodeIdx = child
	}

	pivotKey := serializePivotKey(pivotKeys)
	branches, ok := t.leaves[nodeIdx]
	if !ok {
		branches = make(map[string]*pivotBranch)
		t.leaves[nodeIdx] = branches
	}
	branch, ok := branches[pivotKey]
	if !ok {
		branch = &pivotBranch{pivotValues: pivotKeys, aggregates: make(map[string]*AggState)}
		branches[pivotKey] = branch
	}

	for _, agg := range t.aggCols {
		state, ok := branch.aggregates[agg.ID()]
		if !ok {
			state = newAggState()
			branch.aggregates[agg.ID()] = state
		}
		state.update(agg.Op, aggValues[agg.ID()], t.collator)
	}
}

func serializePivotKey(keys []vq.Value) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.ToString()
	}
	return strings.Join(parts, "\x1f")
}

// GroupRow is one finalized output row: the group key values (in
// groupCols order) and one branch slot per entry of the tree's global
// pivot-vector list — nil where this row has no data for that pivot
// column group, so every row ends up with the same column shape.
type GroupRow struct {
	GroupKeys []vq.Value
	Branches  []*pivotBranch
}

// AllPivotVectors returns every distinct pivot-key vector seen anywhere
// in the tree, sorted lexicographically (§9's column title ordering).
// With no PIVOT clause this is a single empty vector.
func (t *AggTree) AllPivotVectors() [][]vq.Value {
	seen := make(map[string][]vq.Value)
	order := []string{}
	for _, branches := range t.leaves {
		for key, b := range branches {
			if _, ok := seen[key]; !ok {
				seen[key] = b.pivotValues
				order = append(order, key)
			}
		}
	}
	if len(seen) == 0 {
		return [][]vq.Value{{}}
	}
	list := make([][]vq.Value, 0, len(seen))
	for _, key := range order {
		list = append(list, seen[key])
	}
	sort.Slice(list, func(i, j int) bool {
		return t.comparePivotVectors(list[i], list[j]) < 0
	})
	return list
}

// Rows walks the tree depth-first in group-key sort order and returns
// one GroupRow per leaf, with Branches aligned to globalPivots so every
// row has the same number of column groups.
func (t *AggTree) Rows(globalPivots [][]vq.Value) []GroupRow {
	globalKeys := make([]string, len(globalPivots))
	for i, v := range globalPivots {
		globalKeys[i] = serializePivotKey(v)
	}

	var rows []GroupRow
	var walk func(nodeIdx int, prefix []vq.Value)
	walk = func(nodeIdx int, prefix []vq.Value) {
		if len(prefix) == len(t.groupCols) {
			branches := t.leaves[nodeIdx]
			aligned := make([]*pivotBranch, len(globalKeys))
			for i, key := range globalKeys {
				aligned[i] = branches[key]
			}
			keys := make([]vq.Value, len(prefix))
			copy(keys, prefix)
			rows = append(rows, GroupRow{GroupKeys: keys, Branches: aligned})
			return
		}
		node := t.arena[nodeIdx]
		children := make([]int, 0, len(node.children))
		for _, idx := range node.children {
			children = append(children, idx)
		}
		sort.Slice(children, func(i, j int) bool {
			return collatorLess(t.collator, t.arena[children[i]].key, t.arena[children[j]].key)
		})
		for _, childIdx := range children {
			walk(childIdx, append(prefix, t.arena[childIdx].key))
		}
	}
	walk(0, nil)
	return rows
}

func (t *AggTree) comparePivotVectors(a, b []vq.Value) int {
	for i := range a {
		if i >= len(b) {
			return 1
		}
		if cmp, ok := t.collator.Compare(a[i], b[i]); ok && cmp != 0 {
			return cmp
		}
	}
	if len(b) > len(a) {
		return -1
	}
	return 0
}

// collatorLess orders two key values for tree traversal, falling back
// to equal-order (false) when the collator can't compare them (should
// not happen within one tree level, since all keys there share a type).
func collatorLess(c *vq.Collator, a, b vq.Value) bool {
	cmp, ok := c.Compare(a, b)
	if !ok {
		return false
	}
	return cmp < 0
}

// AggregationTargetType resolves an aggregation column's MIN/MAX result
// type against schema, used when finalizing a still-empty AggState.
func AggregationTargetType(agg *vq.AggregationColumn, schema vq.Schema) vq.Type {
	t, err := agg.ValueType(schema)
	if err != nil {
		return vq.Number
	}
	return t
}

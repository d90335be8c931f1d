package counts

import (
	"fmt"
	"sort"

	"github.com/cognicore/rootfreq/pkg/rootfreq/internalerr"
)

// Tables maintains per-group and global root counts.
//
// Tables are filled during ingestion and frozen before analysis; after
// Freeze every read is safe from any goroutine.
type Tables struct {
	total  int64                    // total root tokens
	global map[string]int64         // root -> count across all groups
	groups map[int]map[string]int64 // group -> root -> count
	totals map[int]int64            // group -> token total
	frozen bool
}

// NewTables creates empty count tables.
func NewTables() *Tables {
	return &Tables{
		global: make(map[string]int64),
		groups: make(map[int]map[string]int64),
		totals: make(map[int]int64),
	}
}

// Add records one occurrence of root in group.
func (t *Tables) Add(group int, root string) error {
	if t.frozen {
		return internalerr.ErrFrozen
	}
	g := t.groups[group]
	if g == nil {
		g = make(map[string]int64)
		t.groups[group] = g
	}
	g[root]++
	t.totals[group]++
	t.global[root]++
	t.total++
	return nil
}

// Freeze makes the tables read-only.
func (t *Tables) Freeze() {
	t.frozen = true
}

// Frozen reports whether Freeze has been called.
func (t *Tables) Frozen() bool {
	return t.frozen
}

// Groups returns the group ids in ascending order.
func (t *Tables) Groups() []int {
	ids := make([]int, 0, len(t.groups))
	for id := range t.groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Group returns the root counts of one group. The map is shared and must
// not be modified.
func (t *Tables) Group(id int) map[string]int64 {
	return t.groups[id]
}

// GroupTotal returns the number of root tokens in a group.
func (t *Tables) GroupTotal(id int) int64 {
	return t.totals[id]
}

// GroupCount returns the count of root within a group.
func (t *Tables) GroupCount(id int, root string) int64 {
	return t.groups[id][root]
}

// GlobalCount returns the corpus-wide count of root.
func (t *Tables) GlobalCount(root string) int64 {
	return t.global[root]
}

// Total returns the number of root tokens across all groups.
func (t *Tables) Total() int64 {
	return t.total
}

// VocabSize returns the number of distinct roots.
func (t *Tables) VocabSize() int {
	return len(t.global)
}

// NumGroups returns the number of groups seen.
func (t *Tables) NumGroups() int {
	return len(t.groups)
}

// Roots returns the global vocabulary in ascending order.
func (t *Tables) Roots() []string {
	roots := make([]string, 0, len(t.global))
	for r := range t.global {
		roots = append(roots, r)
	}
	sort.Strings(roots)
	return roots
}

// Check verifies that global counts, group totals and the running total
// agree with each other.
func (t *Tables) Check() error {
	var globalSum int64
	for _, c := range t.global {
		globalSum += c
	}
	if globalSum != t.total {
		return fmt.Errorf("%w: global counts sum to %d, total is %d", internalerr.ErrInvariant, globalSum, t.total)
	}

	var groupSum int64
	for id, g := range t.groups {
		var n int64
		for _, c := range g {
			n += c
		}
		if n != t.totals[id] {
			return fmt.Errorf("%w: group %d counts sum to %d, total is %d", internalerr.ErrInvariant, id, n, t.totals[id])
		}
		groupSum += n
	}
	if groupSum != t.total {
		return fmt.Errorf("%w: group totals sum to %d, total is %d", internalerr.ErrInvariant, groupSum, t.total)
	}
	return nil
}

// Package fusion deduplicates mapped entities and relations into
// canonical records, resolving property conflicts by a configurable
// strategy. Clustering is deterministic for a given input order.
package fusion

// DisjointSet is an array-indexed union-find. The smaller root index
// always wins a union, so cluster roots do not depend on the order
// unions are applied in.
type DisjointSet struct {
	parent []int
}

// NewDisjointSet returns n singleton sets.
func NewDisjointSet(n int) *DisjointSet {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &DisjointSet{parent: parent}
}

// Find returns the root of i, compressing the path.
func (d *DisjointSet) Find(i int) int {
	for d.parent[i] != i {
		d.parent[i] = d.parent[d.parent[i]]
		i = d.parent[i]
	}
	return i
}

// Union merges the sets containing a and b.
func (d *DisjointSet) Union(a, b int) {
	ra, rb := d.Find(a), d.Find(b)
	if ra == rb {
		return
	}
	if ra > rb {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
}

// Groups returns the members of each set, ordered by root index.
// Members within a group are ascending.
func (d *DisjointSet) Groups() [][]int {
	byRoot := make(map[int][]int)
	var roots []int
	for i := range d.parent {
		root := d.Find(i)
		if _, seen := byRoot[root]; !seen {
			roots = append(roots, root)
		}
		byRoot[root] = append(byRoot[root], i)
	}
	// A root is never larger than its members, so iterating members
	// in index order encounters each root first and roots come out
	// ascending.
	groups := make([][]int, 0, len(roots))
	for _, root := range roots {
		groups = append(groups, byRoot[root])
	}
	return groups
}

package graph

import "sort"

// components groups entity ids into connected components, treating
// relations as undirected. Components and their members are in
// first-seen entity order.
func components(entities []Entity, relations []Relation) [][]string {
	if len(entities) == 0 {
		return nil
	}
	idx := make(map[string]int, len(entities))
	for i, e := range entities {
		idx[e.ID] = i
	}

	parent := make([]int, len(entities))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	for _, r := range relations {
		a, b := find(idx[r.Source]), find(idx[r.Target])
		if a == b {
			continue
		}
		if a > b {
			a, b = b, a
		}
		// Smaller index wins so grouping is order-independent.
		parent[b] = a
	}

	groups := make(map[int][]string)
	var roots []int
	for i, e := range entities {
		root := find(i)
		if _, seen := groups[root]; !seen {
			roots = append(roots, root)
		}
		groups[root] = append(groups[root], e.ID)
	}
	sort.Ints(roots)

	out := make([][]string, 0, len(roots))
	for _, root := range roots {
		out = append(out, groups[root])
	}
	return out
}

// Components returns the connected components of the graph as groups
// of entity ids, largest first.
func (g *KnowledgeGraph) Components() [][]string {
	comps := components(g.Entities, g.Relations)
	sort.SliceStable(comps, func(i, j int) bool {
		return len(comps[i]) > len(comps[j])
	})
	return comps
}

// Neighbors returns the ids of entities directly connected to id,
// in either direction, without duplicates.
func (g *KnowledgeGraph) Neighbors(id string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(nid string) {
		if _, dup := seen[nid]; !dup {
			seen[nid] = struct{}{}
			out = append(out, nid)
		}
	}
	for _, r := range g.Relations {
		switch id {
		case r.Source:
			add(r.Target)
		case r.Target:
			add(r.Source)
		}
	}
	return out
}

// Traverse walks the graph breadth-first from the seed entity ids up
// to maxDepth hops and returns all reached entity ids, seeds
// included. Unknown seeds are ignored.
func (g *KnowledgeGraph) Traverse(seeds []string, maxDepth int) []string {
	known := make(map[string]struct{}, len(g.Entities))
	for _, e := range g.Entities {
		known[e.ID] = struct{}{}
	}

	visited := make(map[string]struct{})
	var queue, out []string
	for _, id := range seeds {
		if _, ok := known[id]; !ok {
			continue
		}
		if _, dup := visited[id]; dup {
			continue
		}
		visited[id] = struct{}{}
		queue = append(queue, id)
		out = append(out, id)
	}

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var next []string
		for _, id := range queue {
			for _, nid := range g.Neighbors(id) {
				if _, dup := visited[nid]; dup {
					continue
				}
				visited[nid] = struct{}{}
				next = append(next, nid)
				out = append(out, nid)
			}
		}
		queue = next
	}
	return out
}

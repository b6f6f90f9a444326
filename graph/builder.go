package graph

import (
	"log/slog"
	"sort"
)

// Build assembles entities and relations into a KnowledgeGraph and
// computes its statistics. Input slices are copied; relations whose
// endpoints are not among the entities are dropped with a warning.
func Build(entities []Entity, relations []Relation) *KnowledgeGraph {
	g := &KnowledgeGraph{
		Entities: append([]Entity(nil), entities...),
	}

	known := make(map[string]struct{}, len(entities))
	for _, e := range entities {
		known[e.ID] = struct{}{}
	}
	for _, r := range relations {
		_, okS := known[r.Source]
		_, okT := known[r.Target]
		if !okS || !okT {
			slog.Warn("dropping relation with unknown endpoint",
				"relation", r.ID, "type", r.Type)
			continue
		}
		g.Relations = append(g.Relations, r)
	}

	g.Statistics = computeStatistics(g.Entities, g.Relations)
	return g
}

func computeStatistics(entities []Entity, relations []Relation) Statistics {
	s := Statistics{
		EntityCount:   len(entities),
		RelationCount: len(relations),
		EntityTypes:   make(map[string]int),
		RelationTypes: make(map[string]int),
	}
	for _, e := range entities {
		s.EntityTypes[e.Type]++
	}
	for _, r := range relations {
		s.RelationTypes[r.Type]++
	}

	n := len(entities)
	if n > 0 {
		// Each relation contributes one degree at both ends.
		s.AvgDegree = 2 * float64(len(relations)) / float64(n)
	}
	if n > 1 {
		s.Density = float64(len(relations)) / float64(n*(n-1))
	}
	s.ConnectedComponents = len(components(entities, relations))
	return s
}

// Truncate returns a graph capped at maxNodes entities by dropping
// lowest-degree nodes first, breaking ties toward the
// lexicographically greater id. Relations touching a dropped node go
// with it and statistics are recomputed. A non-positive maxNodes or
// a graph already within the cap returns the receiver unchanged.
func (g *KnowledgeGraph) Truncate(maxNodes int) *KnowledgeGraph {
	if maxNodes <= 0 || len(g.Entities) <= maxNodes {
		return g
	}

	degree := make(map[string]int, len(g.Entities))
	for _, r := range g.Relations {
		degree[r.Source]++
		degree[r.Target]++
	}

	order := append([]Entity(nil), g.Entities...)
	sort.Slice(order, func(i, j int) bool {
		di, dj := degree[order[i].ID], degree[order[j].ID]
		if di != dj {
			return di < dj
		}
		return order[i].ID > order[j].ID
	})

	dropped := make(map[string]struct{})
	for _, e := range order[:len(order)-maxNodes] {
		dropped[e.ID] = struct{}{}
	}

	var (
		entities  []Entity
		relations []Relation
	)
	for _, e := range g.Entities {
		if _, gone := dropped[e.ID]; !gone {
			entities = append(entities, e)
		}
	}
	for _, r := range g.Relations {
		_, sGone := dropped[r.Source]
		_, tGone := dropped[r.Target]
		if !sGone && !tGone {
			relations = append(relations, r)
		}
	}
	return Build(entities, relations)
}

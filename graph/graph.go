// Package graph assembles fused entities and relations into an
// immutable knowledge graph with derived statistics, and exports it
// as JSON, DOT or XLSX.
package graph

// Property is a fused property value with provenance. NeedsReview is
// set when conflicting values were kept for manual resolution, with
// the losing values in Alternatives.
type Property struct {
	Value        string   `json:"value"`
	Sources      []string `json:"sources,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
	NeedsReview  bool     `json:"needs_review,omitempty"`
}

// Entity is a canonical graph node. ID is deterministic for a given
// type and name.
type Entity struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Type       string              `json:"type"`
	Aliases    []string            `json:"aliases,omitempty"`
	Properties map[string]Property `json:"properties,omitempty"`

	// Provenance lists contributing source documents, when recorded.
	Provenance []string `json:"provenance,omitempty"`

	// Mentions is the number of fused mentions.
	Mentions int `json:"mentions"`
}

// Relation is a directed canonical edge between two entities.
type Relation struct {
	ID         string              `json:"id"`
	Type       string              `json:"type"`
	Source     string              `json:"source"`
	Target     string              `json:"target"`
	Confidence float64             `json:"confidence"`
	Properties map[string]Property `json:"properties,omitempty"`
	Provenance []string            `json:"provenance,omitempty"`
}

// Statistics summarizes a graph.
type Statistics struct {
	EntityCount         int            `json:"entity_count"`
	RelationCount       int            `json:"relation_count"`
	EntityTypes         map[string]int `json:"entity_types"`
	RelationTypes       map[string]int `json:"relation_types"`
	AvgDegree           float64        `json:"avg_degree"`
	ConnectedComponents int            `json:"connected_components"`
	Density             float64        `json:"density"`
}

// KnowledgeGraph is the final pipeline output. It is not mutated
// after Build returns; derive modified graphs with Truncate.
type KnowledgeGraph struct {
	Entities   []Entity   `json:"entities"`
	Relations  []Relation `json:"relations"`
	Statistics Statistics `json:"statistics"`
}

// Entity returns the node with the given id.
func (g *KnowledgeGraph) Entity(id string) (Entity, bool) {
	for _, e := range g.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return Entity{}, false
}

package fusion

import (
	"fmt"

	"github.com/kgraphdev/kgraph/graph"
)

// Strategy selects how conflicting property values resolve when
// records merge.
type Strategy string

const (
	// HighestConfidence keeps the value from the most confident
	// record, ties going to the earliest.
	HighestConfidence Strategy = "highest_confidence"

	// Latest keeps the value seen last in document order.
	Latest Strategy = "latest"

	// Vote keeps the most frequent value; ties go to the highest
	// confidence, then to the earliest.
	Vote Strategy = "vote"

	// ManualReview keeps the first value, flags the property for
	// review and retains the losing values.
	ManualReview Strategy = "manual_review"
)

// ParseStrategy validates a strategy name from configuration.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case HighestConfidence, Latest, Vote, ManualReview:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown conflict resolution strategy %q", s)
}

// observation is one property value with the evidence backing it.
// Order is the observation's position in document order.
type observation struct {
	value      string
	confidence float64
	order      int
	source     string
}

// resolve merges observations of one property key into a single
// Property. The second return is true when the property was flagged
// for manual review.
func resolve(strategy Strategy, obs []observation, withProvenance bool) (graph.Property, bool) {
	if len(obs) == 0 {
		return graph.Property{}, false
	}

	distinct := distinctValues(obs)
	if len(distinct) == 1 {
		return withSources(graph.Property{Value: obs[0].value}, obs, withProvenance), false
	}

	switch strategy {
	case Latest:
		best := obs[0]
		for _, o := range obs[1:] {
			if o.order >= best.order {
				best = o
			}
		}
		return withSources(graph.Property{Value: best.value}, obs, withProvenance), false

	case Vote:
		counts := make(map[string]int)
		for _, o := range obs {
			counts[o.value]++
		}
		best := obs[0]
		bestCount := counts[best.value]
		for _, o := range obs[1:] {
			c := counts[o.value]
			switch {
			case c > bestCount:
				best, bestCount = o, c
			case c == bestCount && o.value != best.value && o.confidence > best.confidence:
				best, bestCount = o, c
			}
		}
		return withSources(graph.Property{Value: best.value}, obs, withProvenance), false

	case ManualReview:
		p := graph.Property{
			Value:       obs[0].value,
			NeedsReview: true,
		}
		for _, v := range distinct {
			if v != p.Value {
				p.Alternatives = append(p.Alternatives, v)
			}
		}
		return withSources(p, obs, withProvenance), true

	default: // HighestConfidence
		best := obs[0]
		for _, o := range obs[1:] {
			if o.confidence > best.confidence {
				best = o
			}
		}
		return withSources(graph.Property{Value: best.value}, obs, withProvenance), false
	}
}

// distinctValues preserves first-seen order.
func distinctValues(obs []observation) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, o := range obs {
		if _, dup := seen[o.value]; !dup {
			seen[o.value] = struct{}{}
			out = append(out, o.value)
		}
	}
	return out
}

func withSources(p graph.Property, obs []observation, withProvenance bool) graph.Property {
	if !withProvenance {
		return p
	}
	seen := make(map[string]struct{})
	for _, o := range obs {
		if _, dup := seen[o.source]; !dup {
			seen[o.source] = struct{}{}
			p.Sources = append(p.Sources, o.source)
		}
	}
	return p
}

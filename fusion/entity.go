package fusion

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/kgraphdev/kgraph/graph"
	"github.com/kgraphdev/kgraph/mapping"
)

// Config controls fusion thresholds and behavior.
type Config struct {
	EntityThreshold   float64
	RelationThreshold float64
	Strategy          Strategy

	// MergeSimilar enables similarity-based merging; off, only
	// byte-identical names of the same type merge.
	MergeSimilar bool

	// PreserveProvenance records source documents on fused records.
	PreserveProvenance bool
}

// Scorer is the similarity contract fusion needs.
type Scorer interface {
	Similarity(a, b string) float64
}

// nearExact caps the merge score of distinct surface forms. Two
// different names never score a perfect 1 even when they normalize
// identically, so a threshold of 1.0 fuses byte-identical names only.
const nearExact = 0.995

// EntityFuser clusters mapped entities of the same type and elects a
// canonical record per cluster.
type EntityFuser struct {
	cfg Config
	sim Scorer
}

// NewEntityFuser builds a fuser scored by sim.
func NewEntityFuser(cfg Config, sim Scorer) *EntityFuser {
	return &EntityFuser{cfg: cfg, sim: sim}
}

// Fuse clusters entities and returns canonical records in cluster
// discovery order, a sequence-number to canonical-id translation
// covering every input entity, and the number of properties flagged
// for manual review.
//
// Fusing the output again yields the same records: every pair was
// compared, so surviving canonicals of distinct clusters always
// score below the threshold.
func (f *EntityFuser) Fuse(entities []mapping.Entity) ([]graph.Entity, map[int]string, int) {
	ents := append([]mapping.Entity(nil), entities...)
	sort.SliceStable(ents, func(i, j int) bool { return ents[i].Seq < ents[j].Seq })

	ds := NewDisjointSet(len(ents))
	for i := range ents {
		for j := i + 1; j < len(ents); j++ {
			if ents[i].Type != ents[j].Type {
				continue
			}
			if f.mergeScore(&ents[i], &ents[j]) >= f.cfg.EntityThreshold {
				ds.Union(i, j)
			}
		}
	}

	var (
		out       []graph.Entity
		seqToID   = make(map[int]string, len(ents))
		conflicts int
	)
	for _, members := range ds.Groups() {
		canon := electCanonical(ents, members)
		ent := graph.Entity{
			ID:       entityID(canon.Type, canon.Name),
			Name:     canon.Name,
			Type:     canon.Type,
			Mentions: len(members),
		}

		// Aliases: every other surface form, sorted.
		aliasSet := make(map[string]struct{})
		for _, mi := range members {
			if ents[mi].Name != canon.Name {
				aliasSet[ents[mi].Name] = struct{}{}
			}
		}
		for a := range aliasSet {
			ent.Aliases = append(ent.Aliases, a)
		}
		sort.Strings(ent.Aliases)

		props, flagged := f.mergeProperties(ents, members)
		if len(props) > 0 {
			ent.Properties = props
		}
		conflicts += flagged

		if f.cfg.PreserveProvenance {
			ent.Provenance = provenance(ents, members)
		}

		for _, mi := range members {
			seqToID[ents[mi].Seq] = ent.ID
		}
		out = append(out, ent)
	}
	return out, seqToID, conflicts
}

// mergeScore compares two entities for fusion. Similarity-based
// merging works on normalized names, capped below 1 for distinct
// surface forms. With MergeSimilar off only identical names merge.
func (f *EntityFuser) mergeScore(a, b *mapping.Entity) float64 {
	if a.Name == b.Name {
		return 1
	}
	if !f.cfg.MergeSimilar {
		return 0
	}
	s := f.sim.Similarity(a.Norm, b.Norm)
	if s > nearExact {
		s = nearExact
	}
	return s
}

// electCanonical picks the member with the highest mapping score,
// breaking ties by most frequent surface form and then by earliest
// sequence number.
func electCanonical(ents []mapping.Entity, members []int) *mapping.Entity {
	counts := make(map[string]int)
	for _, mi := range members {
		counts[ents[mi].Name]++
	}
	best := members[0]
	for _, mi := range members[1:] {
		a, b := &ents[mi], &ents[best]
		switch {
		case a.Score > b.Score:
			best = mi
		case a.Score == b.Score && counts[a.Name] > counts[b.Name]:
			best = mi
		}
	}
	return &ents[best]
}

func (f *EntityFuser) mergeProperties(ents []mapping.Entity, members []int) (map[string]graph.Property, int) {
	byKey := make(map[string][]observation)
	var keys []string
	for order, mi := range members {
		e := &ents[mi]
		var pkeys []string
		for k := range e.Properties {
			pkeys = append(pkeys, k)
		}
		sort.Strings(pkeys)
		for _, k := range pkeys {
			if _, seen := byKey[k]; !seen {
				keys = append(keys, k)
			}
			byKey[k] = append(byKey[k], observation{
				value:      e.Properties[k],
				confidence: e.Confidence,
				order:      order,
				source:     docID(e.Doc),
			})
		}
	}

	props := make(map[string]graph.Property, len(keys))
	flagged := 0
	for _, k := range keys {
		p, review := resolve(f.cfg.Strategy, byKey[k], f.cfg.PreserveProvenance)
		if review {
			flagged++
		}
		props[k] = p
	}
	return props, flagged
}

func provenance(ents []mapping.Entity, members []int) []string {
	docs := make(map[int]struct{})
	for _, mi := range members {
		docs[ents[mi].Doc] = struct{}{}
	}
	ids := make([]int, 0, len(docs))
	for d := range docs {
		ids = append(ids, d)
	}
	sort.Ints(ids)
	out := make([]string, 0, len(ids))
	for _, d := range ids {
		out = append(out, docID(d))
	}
	return out
}

func docID(doc int) string {
	return fmt.Sprintf("doc_%d", doc)
}

// entityID derives a stable id from the entity's type and canonical
// name, so repeated runs over the same input agree.
func entityID(entityType, name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("kgraph://entity/"+entityType+"/"+name)).String()
}

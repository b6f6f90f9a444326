package fusion

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/kgraphdev/kgraph/graph"
	"github.com/kgraphdev/kgraph/mapping"
)

// RelationFuser merges mapped relations that connect the same
// canonical endpoints with the same type.
type RelationFuser struct {
	cfg Config
	sim Scorer
}

// NewRelationFuser builds a fuser scored by sim.
func NewRelationFuser(cfg Config, sim Scorer) *RelationFuser {
	return &RelationFuser{cfg: cfg, sim: sim}
}

// Fuse rewrites relation endpoints to canonical entity ids via
// entityID, merges duplicates, and returns canonical relations plus
// the number of properties flagged for manual review. Confidence of
// a merged relation combines as 1 - prod(1 - c_i), never below the
// strongest member and never above 1.
func (f *RelationFuser) Fuse(relations []mapping.Relation, entityID map[int]string) ([]graph.Relation, int) {
	rels := append([]mapping.Relation(nil), relations...)
	sort.SliceStable(rels, func(i, j int) bool { return rels[i].Seq < rels[j].Seq })

	type key struct {
		src, dst, typ string
	}
	groups := make(map[key][]int)
	var order []key
	for i := range rels {
		src, okS := entityID[rels[i].SourceSeq]
		dst, okT := entityID[rels[i].TargetSeq]
		if !okS || !okT {
			slog.Warn("relation references entity missing from fusion output",
				"type", rels[i].Type, "doc", rels[i].Doc)
			continue
		}
		k := key{src, dst, rels[i].Type}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	var (
		out       []graph.Relation
		conflicts int
	)
	for _, k := range order {
		members := groups[k]

		ds := NewDisjointSet(len(members))
		for i := range members {
			for j := i + 1; j < len(members); j++ {
				a, b := &rels[members[i]], &rels[members[j]]
				if f.relationMergeScore(a, b) >= f.cfg.RelationThreshold {
					ds.Union(i, j)
				}
			}
		}

		for ci, cluster := range ds.Groups() {
			rel := graph.Relation{
				ID:     relationID(k.src, k.typ, k.dst, ci),
				Type:   k.typ,
				Source: k.src,
				Target: k.dst,
			}

			conf := 1.0
			byKey := make(map[string][]observation)
			var keys []string
			docs := make(map[int]struct{})
			for oi, li := range cluster {
				r := &rels[members[li]]
				conf *= 1 - r.Confidence
				docs[r.Doc] = struct{}{}

				var pkeys []string
				for pk := range r.Properties {
					pkeys = append(pkeys, pk)
				}
				sort.Strings(pkeys)
				for _, pk := range pkeys {
					if _, seen := byKey[pk]; !seen {
						keys = append(keys, pk)
					}
					byKey[pk] = append(byKey[pk], observation{
						value:      r.Properties[pk],
						confidence: r.Confidence,
						order:      oi,
						source:     docID(r.Doc),
					})
				}
			}
			rel.Confidence = 1 - conf

			props := make(map[string]graph.Property, len(keys))
			for _, pk := range keys {
				p, review := resolve(f.cfg.Strategy, byKey[pk], f.cfg.PreserveProvenance)
				if review {
					conflicts++
				}
				props[pk] = p
			}
			if len(props) > 0 {
				rel.Properties = props
			}

			if f.cfg.PreserveProvenance {
				ids := make([]int, 0, len(docs))
				for d := range docs {
					ids = append(ids, d)
				}
				sort.Ints(ids)
				for _, d := range ids {
					rel.Provenance = append(rel.Provenance, docID(d))
				}
			}

			out = append(out, rel)
		}
	}
	return out, conflicts
}

// relationMergeScore lets duplicates merge either on the strength of
// their combined confidence or on phrase similarity alone.
func (f *RelationFuser) relationMergeScore(a, b *mapping.Relation) float64 {
	combined := 1 - (1-a.Confidence)*(1-b.Confidence)
	phrase := f.sim.Similarity(a.Phrase, b.Phrase)
	if phrase > combined {
		return phrase
	}
	return combined
}

// relationID derives a stable id from the endpoints and type. The
// ordinal separates unmerged duplicates sharing all three.
func relationID(src, typ, dst string, ordinal int) string {
	name := fmt.Sprintf("kgraph://relation/%s/%s/%s/%d", src, typ, dst, ordinal)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

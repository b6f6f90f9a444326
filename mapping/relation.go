package mapping

import (
	"fmt"
	"sort"

	"github.com/kgraphdev/kgraph/extract"
	"github.com/kgraphdev/kgraph/ontology"
	"github.com/kgraphdev/kgraph/similarity"
)

// RelationMapper maps raw relation candidates onto ontology relation
// types, enforcing domain and range. It is stateless and safe for
// concurrent use.
type RelationMapper struct {
	reg *ontology.Registry
	sim *similarity.Engine
	cfg Config
}

// NewRelationMapper builds a mapper over reg scored by sim.
func NewRelationMapper(reg *ontology.Registry, sim *similarity.Engine, cfg Config) *RelationMapper {
	return &RelationMapper{reg: reg, sim: sim, cfg: cfg}
}

// Map processes raws against the entities mapped from the same
// document. index translates raw entity indexes to positions in
// entities. A candidate whose best-scoring type violates domain or
// range is dropped with an invalid-endpoints diagnostic; the run
// continues.
func (m *RelationMapper) Map(doc int, raws []extract.RawRelation, entities []Entity, index map[int]int) ([]Relation, []Diagnostic) {
	var (
		out   []Relation
		diags []Diagnostic
	)

	for _, raw := range raws {
		si, okS := index[raw.Source]
		ti, okT := index[raw.Target]
		if !okS || !okT {
			diags = append(diags, Diagnostic{
				Kind:   DiagUnmappedRelation,
				Doc:    doc,
				Name:   raw.Phrase,
				Detail: "endpoint entity was not mapped",
			})
			continue
		}
		src, dst := &entities[si], &entities[ti]

		type scored struct {
			name  string
			score float64
		}
		var cands []scored
		for _, tn := range m.reg.RelationTypeNames() {
			rt, _ := m.reg.RelationType(tn)
			sc := 0.0
			for _, p := range rt.Phrases {
				if s := m.sim.Similarity(raw.Phrase, p); s > sc {
					sc = s
				}
			}
			if raw.TypeHint == tn && raw.Confidence > sc {
				sc = raw.Confidence
			}
			cands = append(cands, scored{tn, sc})
		}
		sort.SliceStable(cands, func(i, j int) bool {
			if cands[i].score != cands[j].score {
				return cands[i].score > cands[j].score
			}
			return cands[i].name < cands[j].name
		})

		accepted := ""
		score := 0.0
		typeInvalid := ""
		for _, c := range cands {
			if c.score < m.cfg.RelationThreshold {
				break
			}
			if !m.reg.ValidateRelation(c.name, src.Type, dst.Type) {
				if typeInvalid == "" {
					typeInvalid = c.name
				}
				continue
			}
			accepted, score = c.name, c.score
			break
		}

		switch {
		case accepted != "":
			out = append(out, Relation{
				Seq:        raw.Seq,
				Doc:        doc,
				SourceSeq:  src.Seq,
				TargetSeq:  dst.Seq,
				Type:       accepted,
				Phrase:     raw.Phrase,
				Score:      score,
				Confidence: raw.Confidence,
				Properties: map[string]string{
					"phrase": raw.Phrase,
				},
			})
		case typeInvalid != "":
			diags = append(diags, Diagnostic{
				Kind: DiagInvalidEndpoints,
				Doc:  doc,
				Name: raw.Phrase,
				Detail: fmt.Sprintf("%s does not admit %s -> %s",
					typeInvalid, src.Type, dst.Type),
			})
		default:
			diags = append(diags, Diagnostic{
				Kind:   DiagUnmappedRelation,
				Doc:    doc,
				Name:   raw.Phrase,
				Detail: fmt.Sprintf("no relation type scored above %.2f", m.cfg.RelationThreshold),
			})
		}
	}

	return out, diags
}

package mapping

import (
	"fmt"
	"sort"

	"github.com/kgraphdev/kgraph/extract"
	"github.com/kgraphdev/kgraph/ontology"
	"github.com/kgraphdev/kgraph/similarity"
)

// EntityMapper maps raw entities of one document onto the ontology.
// It remembers entities already mapped in the same document so that
// repeat mentions adopt the earlier mention's type. Use a fresh
// mapper per document.
type EntityMapper struct {
	reg  *ontology.Registry
	sim  *similarity.Engine
	cfg  Config
	seen []Entity

	typeNames     []string
	exemplarNorms map[string][]string
}

// NewEntityMapper builds a mapper over reg scored by sim.
func NewEntityMapper(reg *ontology.Registry, sim *similarity.Engine, cfg Config) *EntityMapper {
	m := &EntityMapper{
		reg:           reg,
		sim:           sim,
		cfg:           cfg,
		typeNames:     reg.EntityTypeNames(),
		exemplarNorms: make(map[string][]string),
	}
	for _, name := range m.typeNames {
		et, _ := reg.EntityType(name)
		norms := make([]string, 0, len(et.Exemplars))
		for _, ex := range et.Exemplars {
			norms = append(norms, Normalize(ex))
		}
		m.exemplarNorms[name] = norms
	}
	return m
}

// Map processes raws in extraction order. It returns the mapped
// entities, a raw-index to mapped-index translation for relation
// mapping, and diagnostics for dropped mentions.
func (m *EntityMapper) Map(doc int, raws []extract.RawEntity) ([]Entity, map[int]int, []Diagnostic) {
	var (
		out   []Entity
		diags []Diagnostic
		index = make(map[int]int)
	)

	for i, raw := range raws {
		norm := Normalize(raw.Name)

		// Instance-level: closest entity already mapped in this
		// document.
		instScore, instIdx := 0.0, -1
		for si := range m.seen {
			s := &m.seen[si]
			sc := m.sim.SimilarityInContext(norm, s.Norm, raw.Context, s.Context)
			if sc > instScore {
				instScore, instIdx = sc, si
			}
		}

		// Type-level: best exemplar similarity per registered type,
		// floored by the extractor's own hint strength.
		typeScore, typeName := 0.0, ""
		for _, tn := range m.typeNames {
			sc := 0.0
			for _, ex := range m.exemplarNorms[tn] {
				if s := m.sim.Similarity(norm, ex); s > sc {
					sc = s
				}
			}
			if raw.TypeHint == tn && raw.Confidence > sc {
				sc = raw.Confidence
			}
			if sc > typeScore {
				typeScore, typeName = sc, tn
			}
		}

		var mappedType string
		var score float64
		switch {
		case instIdx >= 0 && instScore >= m.cfg.EntityThreshold && instScore >= typeScore:
			mappedType, score = m.seen[instIdx].Type, instScore
		case typeName != "" && typeScore >= m.cfg.EntityThreshold:
			mappedType, score = typeName, typeScore
		default:
			diags = append(diags, Diagnostic{
				Kind: DiagUnmappedEntity,
				Doc:  doc,
				Name: raw.Name,
				Detail: fmt.Sprintf("best score %.2f below threshold %.2f",
					maxFloat(instScore, typeScore), m.cfg.EntityThreshold),
			})
			continue
		}

		ent := Entity{
			Seq:        raw.Seq,
			Doc:        doc,
			Name:       raw.Name,
			Norm:       norm,
			Type:       mappedType,
			Score:      score,
			Confidence: raw.Confidence,
			Start:      raw.Start,
			End:        raw.End,
			Context:    raw.Context,
		}
		index[i] = len(out)
		out = append(out, ent)
		m.seen = append(m.seen, ent)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, index, diags
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

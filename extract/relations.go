package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// relationTemplate is a literal phrase template with two name slots.
// When reversed, the names appear target-first in text.
type relationTemplate struct {
	typeHint   string
	format     string
	confidence float64
	reversed   bool
}

var relationTemplates = []relationTemplate{
	{"works_for", "%s在%s工作", 0.9, false},
	{"works_for", "%s在%s任职", 0.9, false},
	{"works_for", "%s在%s就职", 0.9, false},
	{"works_for", "%s是%s的教授", 0.95, false},
	{"works_for", "%s是%s的研究员", 0.95, false},
	{"works_for", "%s是%s的员工", 0.95, false},
	{"works_for", "%s是%s的工程师", 0.95, false},
	{"works_for", "%s担任%s", 0.8, false},

	{"graduated_from", "%s毕业于%s", 0.95, false},
	{"graduated_from", "%s就读于%s", 0.9, false},
	{"graduated_from", "%s是%s的学生", 0.8, false},
	{"graduated_from", "%s是%s的博士", 0.8, false},

	{"founder_of", "%s创立了%s", 0.95, false},
	{"founder_of", "%s创办了%s", 0.95, false},
	{"founder_of", "%s创建了%s", 0.95, false},
	{"founder_of", "%s创立%s", 0.9, false},
	{"founder_of", "%s是%s的创始人", 0.95, false},
	{"founder_of", "%s由%s创立", 0.9, true},
	{"founder_of", "%s由%s创办", 0.9, true},
	{"founder_of", "%s由%s创建", 0.9, true},

	{"born_in", "%s出生于%s", 0.9, false},
	{"born_in", "%s生于%s", 0.85, false},

	{"located_in", "%s位于%s", 0.9, false},
	{"located_in", "%s坐落于%s", 0.9, false},
	{"located_in", "%s的总部位于%s", 0.9, false},
	{"located_in", "%s总部位于%s", 0.9, false},
	{"located_in", "%s总部设在%s", 0.85, false},

	{"occurred_at", "%s在%s举行", 0.85, false},
	{"occurred_at", "%s在%s召开", 0.85, false},
	{"occurred_at", "%s于%s举行", 0.85, false},

	{"participated_in", "%s参加了%s", 0.85, false},
	{"participated_in", "%s出席了%s", 0.85, false},
	{"participated_in", "%s参与了%s", 0.8, false},

	{"produces", "%s发布了%s", 0.85, false},
	{"produces", "%s推出了%s", 0.85, false},
	{"produces", "%s开发了%s", 0.85, false},
	{"produces", "%s生产%s", 0.8, false},

	{"parent_of", "%s是%s的父亲", 0.9, false},
	{"parent_of", "%s是%s的母亲", 0.9, false},
	{"spouse_of", "%s的妻子是%s", 0.9, false},
	{"spouse_of", "%s的丈夫是%s", 0.9, false},
	{"spouse_of", "%s和%s结婚", 0.85, false},
	{"friend_of", "%s和%s是朋友", 0.8, false},
	{"friend_of", "%s与%s是好友", 0.8, false},
}

// fallbackConfidence scores proximity-only candidates whose
// connecting phrase matched no template. Mapping decides their fate
// by phrase similarity against the ontology.
const fallbackConfidence = 0.3

// maxFallbackPhrase is the longest connecting phrase, in characters,
// still proposed as a proximity-only candidate.
const maxFallbackPhrase = 10

// relations proposes relation candidates between entity pairs whose
// spans are within MaxContextWindow characters of each other.
func (x *Extractor) relations(doc string, entities []RawEntity) []RawRelation {
	var rels []RawRelation
	for i := range entities {
		for j := i + 1; j < len(entities); j++ {
			a, b := &entities[i], &entities[j]
			if b.Start < a.End {
				continue
			}
			gap := utf8.RuneCountInString(doc[a.End:b.Start])
			if gap > x.cfg.MaxContextWindow {
				break
			}

			rel, ok := x.matchPair(doc, a, b)
			if !ok {
				continue
			}
			rel.Seq = len(rels)
			rel.Source, rel.Target = a.Seq, b.Seq
			if rel.reversedMatch {
				rel.Source, rel.Target = b.Seq, a.Seq
			}
			rel.Context = contextWindow(doc, a.Start, b.End, contextRunes)
			rels = append(rels, rel.RawRelation)
		}
	}
	return rels
}

type pairMatch struct {
	RawRelation
	reversedMatch bool
}

// matchPair scores the text joining a and b against the template
// table, falling back to a typeless proximity candidate when the
// phrase is short.
func (x *Extractor) matchPair(doc string, a, b *RawEntity) (pairMatch, bool) {
	// Segment spanning both mentions plus a short tail for trailing
	// verbs such as 工作 or 举行.
	end := b.End
	for i := 0; i < 8 && end < len(doc); i++ {
		_, size := utf8.DecodeRuneInString(doc[end:])
		end += size
	}
	segment := doc[a.Start:end]

	var best pairMatch
	for _, t := range relationTemplates {
		phrase := fmt.Sprintf(t.format, a.Name, b.Name)
		if !strings.Contains(segment, phrase) {
			continue
		}
		if t.confidence > best.Confidence {
			best = pairMatch{
				RawRelation: RawRelation{
					TypeHint:   t.typeHint,
					Phrase:     templateConnector(t.format),
					Confidence: t.confidence,
				},
				reversedMatch: t.reversed,
			}
		}
	}
	if best.Confidence > 0 {
		return best, true
	}

	between := strings.TrimSpace(doc[a.End:b.Start])
	if between == "" || utf8.RuneCountInString(between) > maxFallbackPhrase {
		return pairMatch{}, false
	}
	return pairMatch{
		RawRelation: RawRelation{
			Phrase:     between,
			Confidence: fallbackConfidence,
		},
	}, true
}

// templateConnector strips the name slots from a template, leaving
// the connecting words.
func templateConnector(format string) string {
	s := strings.ReplaceAll(format, "%s", " ")
	return strings.TrimSpace(s)
}

package extract

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kgraphdev/kgraph/similarity"
)

// Config controls extraction strategies and filters.
type Config struct {
	// SimilarityThreshold gates approximate dictionary matching.
	SimilarityThreshold float64

	// MinEntityLength is the minimum name length in characters.
	MinEntityLength int

	// MinConfidence drops entity candidates scored below it.
	MinConfidence float64

	// MaxContextWindow is the maximum character distance between two
	// entities for a relation candidate.
	MaxContextWindow int

	UsePatterns   bool
	UsePOSTagging bool
	UseDictionary bool

	// Dictionary maps known entity names to type names. Nil selects
	// the built-in dictionary.
	Dictionary map[string]string
}

// DefaultConfig returns extraction defaults for mixed Chinese/English
// text with all strategies enabled.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.8,
		MinEntityLength:     2,
		MinConfidence:       0.5,
		MaxContextWindow:    50,
		UsePatterns:         true,
		UsePOSTagging:       true,
		UseDictionary:       true,
	}
}

// Extractor runs the configured strategies over single documents. It
// is stateless across calls and safe for concurrent use.
type Extractor struct {
	cfg      Config
	dict     map[string]string
	dictKeys []string
}

// New builds an Extractor from cfg.
func New(cfg Config) *Extractor {
	dict := cfg.Dictionary
	if dict == nil && cfg.UseDictionary {
		dict = DefaultDictionary()
	}

	keys := make([]string, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}
	// Longer keys first so nested names resolve to the longest span,
	// ties alphabetical for determinism.
	sort.Slice(keys, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(keys[i]), utf8.RuneCountInString(keys[j])
		if li != lj {
			return li > lj
		}
		return keys[i] < keys[j]
	})

	return &Extractor{cfg: cfg, dict: dict, dictKeys: keys}
}

// candidate is a pre-resolution entity mention.
type candidate struct {
	name     string
	typeHint string
	start    int
	end      int
	conf     float64
	strategy string
}

func strategyPriority(s string) int {
	switch s {
	case StrategyPattern:
		return 3
	case StrategyDictionary:
		return 2
	case StrategyPOS:
		return 1
	}
	return 0
}

// Extract runs all enabled strategies over doc and returns entity
// mentions in span order plus relation candidates between them.
// Empty or whitespace-only input is an error.
func (x *Extractor) Extract(doc string) ([]RawEntity, []RawRelation, error) {
	if strings.TrimSpace(doc) == "" {
		return nil, nil, ErrEmptyDocument
	}

	var cands []candidate
	if x.cfg.UsePatterns {
		cands = append(cands, x.patternCandidates(doc)...)
	}
	if x.cfg.UseDictionary {
		cands = append(cands, x.dictionaryCandidates(doc)...)
	}
	if x.cfg.UsePOSTagging {
		cands = append(cands, x.posCandidates(doc)...)
	}

	entities := x.resolve(doc, cands)
	relations := x.relations(doc, entities)
	return entities, relations, nil
}

// resolve combines same-span candidates, settles overlaps in favor of
// the longer span, applies filters, and assigns sequence numbers.
func (x *Extractor) resolve(doc string, cands []candidate) []RawEntity {
	// Combine candidates sharing an exact span. Confidence combines
	// as 1 - prod(1 - s_i); the highest-priority strategy supplies
	// the type hint.
	type spanKey struct{ start, end int }
	merged := make(map[spanKey]*RawEntity)
	for _, c := range cands {
		key := spanKey{c.start, c.end}
		ent, ok := merged[key]
		if !ok {
			merged[key] = &RawEntity{
				Name:       c.name,
				TypeHint:   c.typeHint,
				Start:      c.start,
				End:        c.end,
				Confidence: c.conf,
				Signals:    []string{c.strategy},
			}
			continue
		}
		ent.Confidence = 1 - (1-ent.Confidence)*(1-c.conf)
		if strategyPriority(c.strategy) > maxPriority(ent.Signals) {
			ent.TypeHint = c.typeHint
		}
		if !containsString(ent.Signals, c.strategy) {
			ent.Signals = append(ent.Signals, c.strategy)
		}
	}

	spans := make([]*RawEntity, 0, len(merged))
	for _, ent := range merged {
		spans = append(spans, ent)
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})

	// Overlap resolution: longest span wins, then confidence, then
	// strategy priority.
	var kept []*RawEntity
	for _, s := range spans {
		if len(kept) == 0 || s.Start >= kept[len(kept)-1].End {
			kept = append(kept, s)
			continue
		}
		last := kept[len(kept)-1]
		if spanBeats(s, last) {
			kept[len(kept)-1] = s
		}
	}

	var out []RawEntity
	for _, ent := range kept {
		if utf8.RuneCountInString(ent.Name) < x.cfg.MinEntityLength {
			continue
		}
		if ent.Confidence < x.cfg.MinConfidence {
			continue
		}
		if !hasLetter(ent.Name) {
			continue
		}
		ent.Seq = len(out)
		ent.Context = contextWindow(doc, ent.Start, ent.End, contextRunes)
		sort.Slice(ent.Signals, func(i, j int) bool {
			return strategyPriority(ent.Signals[i]) > strategyPriority(ent.Signals[j])
		})
		out = append(out, *ent)
	}
	return out
}

// contextRunes is the context window radius in characters.
const contextRunes = 20

func spanBeats(a, b *RawEntity) bool {
	la := utf8.RuneCountInString(a.Name)
	lb := utf8.RuneCountInString(b.Name)
	if la != lb {
		return la > lb
	}
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return strategyPriority(topSignal(a.Signals)) > strategyPriority(topSignal(b.Signals))
}

func topSignal(signals []string) string {
	best := ""
	for _, s := range signals {
		if strategyPriority(s) > strategyPriority(best) {
			best = s
		}
	}
	return best
}

func maxPriority(signals []string) int {
	max := 0
	for _, s := range signals {
		if p := strategyPriority(s); p > max {
			max = p
		}
	}
	return max
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// contextWindow returns up to radius characters either side of the
// span [start, end).
func contextWindow(doc string, start, end, radius int) string {
	left := start
	for i := 0; i < radius && left > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(doc[:left])
		left -= size
	}
	right := end
	for i := 0; i < radius && right < len(doc); i++ {
		_, size := utf8.DecodeRuneInString(doc[right:])
		right += size
	}
	return doc[left:right]
}

// dictionaryCandidates finds exact occurrences of dictionary names
// plus, when SimilarityThreshold permits, near-miss tokens.
func (x *Extractor) dictionaryCandidates(doc string) []candidate {
	var cands []candidate
	for _, name := range x.dictKeys {
		for pos := 0; ; {
			idx := strings.Index(doc[pos:], name)
			if idx < 0 {
				break
			}
			start := pos + idx
			cands = append(cands, candidate{
				name:     name,
				typeHint: x.dict[name],
				start:    start,
				end:      start + len(name),
				conf:     1.0,
				strategy: StrategyDictionary,
			})
			pos = start + len(name)
		}
	}

	if x.cfg.SimilarityThreshold < 1 {
		cands = append(cands, x.fuzzyDictionaryCandidates(doc, cands)...)
	}
	return cands
}

// fuzzyDictionaryCandidates matches whole tokens against dictionary
// names by lexical similarity, catching variant spellings the exact
// scan misses. Tokens touching an exact hit are off limits: such a
// token is the hit plus adjacent filler, and its longer span would
// displace the exact match during overlap resolution.
func (x *Extractor) fuzzyDictionaryCandidates(doc string, exact []candidate) []candidate {
	var cands []candidate
	for _, tok := range tokenize(doc) {
		if _, ok := x.dict[tok.text]; ok {
			continue
		}
		if overlapsExact(tok, exact) {
			continue
		}
		tokLen := utf8.RuneCountInString(tok.text)
		for _, name := range x.dictKeys {
			nameLen := utf8.RuneCountInString(name)
			if tokLen < nameLen-1 || tokLen > nameLen+1 {
				continue
			}
			s := similarity.Lexical(tok.text, name)
			if s >= x.cfg.SimilarityThreshold {
				cands = append(cands, candidate{
					name:     tok.text,
					typeHint: x.dict[name],
					start:    tok.start,
					end:      tok.end,
					conf:     0.85 * s,
					strategy: StrategyDictionary,
				})
				break
			}
		}
	}
	return cands
}

func overlapsExact(tok token, exact []candidate) bool {
	for i := range exact {
		if tok.start < exact[i].end && exact[i].start < tok.end {
			return true
		}
	}
	return false
}

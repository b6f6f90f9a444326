package extract

import (
	"regexp"
	"unicode/utf8"
)

// entityPattern ties a compiled regex to an entity type. When the
// regex has a capture group, group 1 is the entity name; otherwise
// the whole match is.
type entityPattern struct {
	typeHint   string
	re         *regexp.Regexp
	confidence float64
}

// boundary consumes the character before a person name so that the
// name patterns do not fire mid-phrase.
const boundary = `(?:^|[\s，。、；：！？“”‘’（）《》由和与的了是在])`

var entityPatterns = []entityPattern{
	// Person: name plus title, or name plus speech verb.
	{"Person", regexp.MustCompile(boundary + `([\p{Han}]{2,3})(?:先生|女士|教授|博士|院士|老师)`), 0.8},
	{"Person", regexp.MustCompile(boundary + `([\p{Han}]{2,3})(?:说|表示|认为|指出|强调)`), 0.75},
	// Latin-script multi-word proper names.
	{"Person", regexp.MustCompile(`\b([A-Z][a-z]{1,15}(?: [A-Z][a-z]{1,15})+)\b`), 0.6},

	{"Organization", regexp.MustCompile(`([\p{Han}]{2,8}(?:公司|集团|企业|银行|大学|学院|学校|医院|研究所|研究院|委员会|协会))`), 0.8},
	{"Location", regexp.MustCompile(`([\p{Han}]{2,6}(?:省|市|县|区|镇|村|街道))`), 0.8},
	{"Event", regexp.MustCompile(`([\p{Han}]{2,10}(?:会议|论坛|峰会|大会|展览|比赛|锦标赛))`), 0.75},

	{"Product", regexp.MustCompile(`\b((?:iPhone|iPad|MacBook|Windows|Android|Linux) ?[0-9]*[A-Za-z]*)\b`), 0.85},
	{"Product", regexp.MustCompile(`([\p{Han}A-Za-z0-9]{2,10}(?:软件|系统|平台))`), 0.7},
}

func (x *Extractor) patternCandidates(doc string) []candidate {
	var cands []candidate
	for _, p := range entityPatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(doc, -1) {
			start, end := m[0], m[1]
			if len(m) > 2 && m[2] >= 0 {
				start, end = m[2], m[3]
			}
			name := doc[start:end]
			name, start = trimAtParticle(name, start)
			if utf8.RuneCountInString(name) < 2 {
				continue
			}
			cands = append(cands, candidate{
				name:     name,
				typeHint: p.typeHint,
				start:    start,
				end:      end,
				conf:     p.confidence,
				strategy: StrategyPattern,
			})
		}
	}
	return cands
}

// trimAtParticle cuts a captured name after its last function-word
// character. Greedy Han prefixes otherwise swallow preceding text,
// as in 在北京大学 or 张三在北京大学.
func trimAtParticle(name string, start int) (string, int) {
	cut := -1
	for i, r := range name {
		if _, ok := particles[r]; ok {
			cut = i + utf8.RuneLen(r)
		}
	}
	if cut < 0 {
		return name, start
	}
	return name[cut:], start + cut
}

// particles are Chinese function words that separate entity names
// from surrounding text.
var particles = map[rune]struct{}{
	'的': {}, '了': {}, '在': {}, '是': {}, '和': {}, '与': {}, '由': {},
	'于': {}, '到': {}, '从': {}, '对': {}, '将': {}, '被': {}, '把': {},
	'为': {}, '等': {}, '及': {}, '或': {}, '并': {}, '而': {}, '其': {},
	'该': {}, '这': {}, '那': {}, '就': {}, '都': {}, '也': {}, '曾': {},
}

package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// token is a particle-delimited text run with byte offsets.
type token struct {
	text  string
	start int
	end   int
}

// tokenize splits doc into runs of letters and digits, breaking on
// whitespace, punctuation and Chinese function words. It stands in
// for real word segmentation.
func tokenize(doc string) []token {
	var (
		toks  []token
		start = -1
	)
	flush := func(end int) {
		if start >= 0 {
			toks = append(toks, token{text: doc[start:end], start: start, end: end})
			start = -1
		}
	}
	for i, r := range doc {
		_, particle := particles[r]
		if particle || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(doc))
	return toks
}

// Indicator suffixes classifying a token by its head noun.
var (
	personSuffixes   = []string{"先生", "女士", "教授", "博士", "院士", "老师", "主席", "总裁", "经理"}
	orgSuffixes      = []string{"公司", "集团", "企业", "银行", "大学", "学院", "学校", "医院", "研究所", "研究院", "委员会", "协会", "机构", "部门"}
	locationSuffixes = []string{"省", "市", "县", "区", "镇", "村", "街道"}
	eventSuffixes    = []string{"会议", "论坛", "峰会", "大会", "展览", "比赛"}
	productSuffixes  = []string{"软件", "系统", "平台", "应用", "手机"}
)

// posCandidates classifies tokens by indicator suffix. This is a
// coarse stand-in for part-of-speech tagging and scores accordingly.
func (x *Extractor) posCandidates(doc string) []candidate {
	var cands []candidate
	for _, tok := range tokenize(doc) {
		hint, minLen := classifyToken(tok.text)
		if hint == "" {
			continue
		}
		if utf8.RuneCountInString(tok.text) < minLen {
			continue
		}
		cands = append(cands, candidate{
			name:     tok.text,
			typeHint: hint,
			start:    tok.start,
			end:      tok.end,
			conf:     0.7,
			strategy: StrategyPOS,
		})
	}
	return cands
}

// classifyToken returns the type suggested by the token's suffix and
// the minimum token length for that class. Single-character location
// suffixes need a longer token to avoid junk like 城市.
func classifyToken(text string) (string, int) {
	for _, s := range personSuffixes {
		if strings.HasSuffix(text, s) {
			return "Person", 4
		}
	}
	for _, s := range orgSuffixes {
		if strings.HasSuffix(text, s) {
			return "Organization", 4
		}
	}
	for _, s := range eventSuffixes {
		if strings.HasSuffix(text, s) {
			return "Event", 4
		}
	}
	for _, s := range productSuffixes {
		if strings.HasSuffix(text, s) {
			return "Product", 4
		}
	}
	for _, s := range locationSuffixes {
		if strings.HasSuffix(text, s) {
			return "Location", 3
		}
	}
	return "", 0
}

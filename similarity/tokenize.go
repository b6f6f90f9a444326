package similarity

import (
	"unicode"
	"unicode/utf8"
)

// Chinese function words excluded from context keywords.
var stopwords = map[string]struct{}{
	"的": {}, "了": {}, "在": {}, "是": {}, "我": {}, "有": {}, "和": {},
	"就": {}, "不": {}, "人": {}, "都": {}, "一": {}, "一个": {}, "上": {},
	"也": {}, "很": {}, "到": {}, "说": {}, "要": {}, "去": {}, "你": {},
	"会": {}, "着": {}, "没有": {}, "看": {}, "好": {}, "自己": {}, "这": {},
	"与": {}, "及": {}, "被": {}, "对": {}, "为": {}, "而": {}, "等": {},
	"the": {}, "a": {}, "an": {}, "of": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "and": {}, "or": {}, "is": {}, "was": {}, "for": {},
}

// keywords extracts a keyword set from text for context comparison.
// Runs of Han characters contribute their character bigrams; other
// letter/digit runs contribute whole lowercased tokens. Stopwords and
// single characters are dropped.
func keywords(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range splitRuns(text) {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		r, _ := utf8.DecodeRuneInString(tok)
		if unicode.Is(unicode.Han, r) {
			runes := []rune(tok)
			if len(runes) < 2 {
				continue
			}
			for i := 0; i+1 < len(runes); i++ {
				gram := string(runes[i : i+2])
				if _, stop := stopwords[gram]; !stop {
					set[gram] = struct{}{}
				}
			}
			continue
		}
		if utf8.RuneCountInString(tok) < 2 {
			continue
		}
		set[tok] = struct{}{}
	}
	return set
}

// splitRuns splits text into maximal runs of same-script letters or
// digits, lowercasing Latin runs. Punctuation, whitespace and
// function-word characters act as separators for Han runs.
func splitRuns(text string) []string {
	var (
		toks []string
		cur  []rune
		han  bool
	)
	flush := func() {
		if len(cur) > 0 {
			toks = append(toks, string(cur))
			cur = cur[:0]
		}
	}
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			if !han {
				flush()
				han = true
			}
			if _, stop := stopwords[string(r)]; stop {
				flush()
				continue
			}
			cur = append(cur, r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if han {
				flush()
				han = false
			}
			cur = append(cur, unicode.ToLower(r))
		default:
			flush()
		}
	}
	flush()
	return toks
}

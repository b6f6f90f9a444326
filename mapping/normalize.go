package mapping

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Corporate suffixes stripped for comparison, longest first.
var corporateSuffixes = []string{
	"股份有限公司",
	"有限责任公司",
	"有限公司",
	"集团",
	"公司",
}

// Normalize produces the comparison form of an entity name: Unicode
// NFC, trimmed, Latin letters lowercased, and one trailing corporate
// suffix stripped so 腾讯公司 and 腾讯 compare equal. The surface
// form is kept separately for display.
func Normalize(name string) string {
	s := norm.NFC.String(name)
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if r < utf8.RuneSelf {
			return unicode.ToLower(r)
		}
		return r
	}, s)

	for _, suffix := range corporateSuffixes {
		if rest, ok := strings.CutSuffix(s, suffix); ok {
			if utf8.RuneCountInString(rest) >= 2 {
				s = rest
			}
			break
		}
	}
	return s
}

package htmlutil

import (
	"strings"
	"unicode"

	"github.com/k3a/html2text"
)

// ToText converts an HTML fragment to plain text, decoding entities and
// dropping tags.
func ToText(s string) string {
	return html2text.HTML2Text(s)
}

// StripSpace removes every whitespace rune. Useful for matching notices
// that the text conversion may have wrapped across lines.
func StripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Excerpt collapses runs of whitespace and truncates to limit runes.
func Excerpt(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if limit > 0 && len(r) > limit {
		return string(r[:limit]) + "…"
	}
	return s
}

package question

import (
	"strings"
	"unicode"
)

// trimPreface strips leading filler and connector tokens from a segment.
// A topic-then-question segment is returned untouched. Stripping stops
// before it would leave fewer than two content runes.
func (m *matcher) trimPreface(seg string) string {
	if m.topicShape(seg) {
		return seg
	}

	out := seg
	for i := 0; i < m.maxPrefaceStrips; i++ {
		next, ok := m.stripLeading(out)
		if !ok || countContent(next) < 2 {
			break
		}
		out = next
	}
	return out
}

// stripLeading removes one leading preface token and the separators after it
func (m *matcher) stripLeading(s string) (string, bool) {
	orig := []rune(strings.TrimLeftFunc(s, unicode.IsSpace))
	folded := foldRunes(string(orig))

	end := m.prefaceEnd(folded)
	if end == 0 {
		return s, false
	}
	for end < len(orig) && m.marks.isSeparator(orig[end]) {
		end++
	}
	return string(orig[end:]), true
}

// prefaceEnd returns the rune length of the leading preface token, or 0
func (m *matcher) prefaceEnd(folded []rune) int {
	for _, c := range m.connectors {
		if c.at(folded, 0) && len(c.runes) < len(folded) {
			return len(c.runes)
		}
	}
	for _, f := range m.fillers {
		if !f.at(folded, 0) || len(f.runes) >= len(folded) {
			continue
		}
		next := folded[len(f.runes)]
		// Short kana fillers double as ordinary words, so they need a
		// separator after them
		if f.latin || len(f.runes) >= 3 || m.marks.isSeparator(next) {
			return len(f.runes)
		}
	}
	return 0
}

package question

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// normalize folds full-width ASCII and lower-cases s for matching
func normalize(s string) string {
	return strings.ToLower(width.Fold.String(s))
}

// foldRunes normalizes rune by rune so indexes line up with []rune(s)
func foldRunes(s string) []rune {
	src := []rune(s)
	out := make([]rune, len(src))
	for i, r := range src {
		out[i] = r
		n := normalize(string(r))
		if utf8.RuneCountInString(n) == 1 {
			out[i], _ = utf8.DecodeRuneInString(n)
		}
	}
	return out
}

func hasPrefixRunes(s, prefix []rune) bool {
	if len(prefix) == 0 || len(prefix) > len(s) {
		return false
	}
	for i, r := range prefix {
		if s[i] != r {
			return false
		}
	}
	return true
}

func hasSuffixRunes(s, suffix []rune) bool {
	if len(suffix) == 0 || len(suffix) > len(s) {
		return false
	}
	off := len(s) - len(suffix)
	for i, r := range suffix {
		if s[off+i] != r {
			return false
		}
	}
	return true
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana) || r == 'ー' || r == '々'
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == 'ー'
}

// isLatinWord reports whether every letter of s is Latin; such entries
// only match on word boundaries
func isLatinWord(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !unicode.Is(unicode.Latin, r) {
				return false
			}
			hasLetter = true
		}
	}
	return hasLetter
}

// isSeparator is punctuation or space that is not a question mark
func (s runeSet) isSeparator(r rune) bool {
	return (unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)) && !s.has(r)
}

// countContent counts runes that are neither punctuation nor space
func countContent(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSpace(r) && !unicode.IsSymbol(r) {
			n++
		}
	}
	return n
}

type runeSet map[rune]bool

func newRuneSet(entries []string) runeSet {
	set := make(runeSet, len(entries)*2)
	for _, e := range entries {
		r, _ := utf8.DecodeRuneInString(e)
		set[r] = true
		// Match the folded form too
		if n := normalize(e); n != "" {
			fr, _ := utf8.DecodeRuneInString(n)
			set[fr] = true
		}
	}
	return set
}

func (s runeSet) has(r rune) bool {
	return s[r]
}

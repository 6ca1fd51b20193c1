package question

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// refine normalizes a validated candidate into clean question text. When the
// cleaned text degenerates the candidate is returned verbatim.
func (m *matcher) refine(candidate string) string {
	candidate = strings.TrimSpace(candidate)
	hadMark := m.endsWithMark(candidate)

	tokens := m.tokenize(normalize(candidate))
	tokens = m.dropFillers(tokens)
	tokens = collapseRepeats(tokens)

	text := joinTokens(tokens)
	text = m.stripTrailingParticles(text)

	if text != "" && (hadMark || m.hasInterrogative(text) || m.shapeAccepts(text)) {
		text += questionMarkFor(text)
	}
	text = capitalizeLatin(text)

	if utf8.RuneCountInString(text) < 3 || countContent(text) < 2 {
		return candidate
	}
	return text
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}

func (m *matcher) tokenize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return isPunctOrSpace(r) && !isApostrophe(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if f = strings.TrimFunc(f, isApostrophe); f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func (m *matcher) dropFillers(tokens []string) []string {
	out := tokens[:0]
	for _, tok := range tokens {
		if !m.isFiller(tok) {
			out = append(out, tok)
		}
	}
	return out
}

func (m *matcher) isFiller(tok string) bool {
	r := []rune(tok)
	for _, f := range m.fillers {
		if len(f.runes) == len(r) && hasPrefixRunes(r, f.runes) {
			return true
		}
	}
	return false
}

// collapseRepeats drops a token identical to the one before it
func collapseRepeats(tokens []string) []string {
	out := tokens[:0]
	for _, tok := range tokens {
		if len(out) > 0 && tok == out[len(out)-1] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// joinTokens uses an ideographic comma between two Japanese tokens and a
// single space otherwise
func joinTokens(tokens []string) string {
	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			prev, _ := utf8.DecodeLastRuneInString(tokens[i-1])
			next, _ := utf8.DecodeRuneInString(tok)
			if isCJK(prev) && isCJK(next) {
				b.WriteString("、")
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(tok)
	}
	return b.String()
}

// stripTrailingParticles removes at most one content-free ending
func (m *matcher) stripTrailingParticles(text string) string {
	r := []rune(text)
	for _, t := range m.trailing {
		if !t.suffixOf(r) {
			continue
		}
		rest := strings.TrimRightFunc(string(r[:len(r)-len(t.runes)]), isPunctOrSpace)
		if countContent(rest) >= 2 {
			return rest
		}
		break
	}
	return text
}

func questionMarkFor(text string) string {
	for _, r := range text {
		if isCJK(r) {
			return "？"
		}
	}
	return "?"
}

func capitalizeLatin(text string) string {
	r, size := utf8.DecodeRuneInString(text)
	if r == utf8.RuneError || !unicode.Is(unicode.Latin, r) || !unicode.IsLower(r) {
		return text
	}
	return string(unicode.ToUpper(r)) + text[size:]
}

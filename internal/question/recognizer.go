package question

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

type term struct {
	runes []rune
	latin bool
}

func compileTerms(entries []string) []term {
	sorted := byLengthDesc(entries)
	out := make([]term, len(sorted))
	for i, e := range sorted {
		out[i] = term{runes: []rune(e), latin: isLatinWord(e)}
	}
	return out
}

// at reports whether t occurs in s at pos. Latin terms need word boundaries.
func (t term) at(s []rune, pos int) bool {
	if pos < 0 || !hasPrefixRunes(s[pos:], t.runes) {
		return false
	}
	if !t.latin {
		return true
	}
	if pos > 0 && isWordRune(s[pos-1]) {
		return false
	}
	end := pos + len(t.runes)
	return end == len(s) || !isWordRune(s[end])
}

// suffixOf reports whether t ends s
func (t term) suffixOf(s []rune) bool {
	if !hasSuffixRunes(s, t.runes) {
		return false
	}
	start := len(s) - len(t.runes)
	return !t.latin || start == 0 || !isWordRune(s[start-1])
}

// matcher is a lexicon compiled for matching
type matcher struct {
	terminators    runeSet
	marks          runeSet
	connectors     []term
	fillers        []term
	polite         []term
	interrogatives []term
	excluded       []term
	openers        []term
	endings        []term
	trailing       []term
	topic          *regexp.Regexp

	minConnectorRunes int
	maxPrefaceStrips  int
}

func newMatcher(lex *Lexicon) (*matcher, error) {
	if err := lex.Validate(); err != nil {
		return nil, err
	}

	m := &matcher{
		terminators:       newRuneSet(lex.Terminators),
		marks:             newRuneSet(lex.QuestionMarks),
		connectors:        compileTerms(lex.Connectors),
		fillers:           compileTerms(lex.Fillers),
		polite:            compileTerms(lex.PoliteSuffixes),
		interrogatives:    compileTerms(lex.Interrogatives),
		excluded:          compileTerms(lex.NonInterrogatives),
		openers:           compileTerms(lex.QuestionOpeners),
		endings:           compileTerms(lex.QuestionEndings),
		trailing:          compileTerms(lex.TrailingParticles),
		minConnectorRunes: lex.MinConnectorSplitRunes,
		maxPrefaceStrips:  lex.MaxPrefaceStrips,
	}

	if markers := byLengthDesc(lex.TopicMarkers); len(markers) > 0 {
		quoted := make([]string, len(markers))
		for i, mk := range markers {
			quoted[i] = regexp.QuoteMeta(mk)
		}
		maxTopic := lex.MaxTopicRunes
		if maxTopic <= 0 {
			maxTopic = 24
		}
		pattern := fmt.Sprintf(`^[^、,，\s]{1,%d}?(?:%s)[、,，]\s*`, maxTopic, strings.Join(quoted, "|"))
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile topic pattern: %w", err)
		}
		m.topic = re
	}

	return m, nil
}

func (m *matcher) isMark(r rune) bool {
	return m.marks.has(r)
}

func isPunctOrSpace(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}

// core returns the folded text without surrounding punctuation and space
func core(s string) []rune {
	r := foldRunes(s)
	start, end := 0, len(r)
	for start < end && isPunctOrSpace(r[start]) {
		start++
	}
	for end > start && isPunctOrSpace(r[end-1]) {
		end--
	}
	return r[start:end]
}

// endsWithMark reports whether s ends in a question mark, ignoring space
func (m *matcher) endsWithMark(s string) bool {
	r := []rune(strings.TrimRightFunc(s, unicode.IsSpace))
	return len(r) > 0 && m.isMark(r[len(r)-1])
}

func (m *matcher) hasPoliteSuffix(s string) bool {
	c := core(s)
	for _, t := range m.polite {
		if t.suffixOf(c) {
			return true
		}
	}
	return false
}

// interrogativeAt reports an interrogative at pos that does not start a
// non-interrogative word
func (m *matcher) interrogativeAt(c []rune, pos int) bool {
	for _, t := range m.excluded {
		if t.at(c, pos) {
			return false
		}
	}
	for _, t := range m.interrogatives {
		if t.at(c, pos) {
			return true
		}
	}
	return false
}

func (m *matcher) hasInterrogative(s string) bool {
	c := core(s)
	for i := range c {
		if m.interrogativeAt(c, i) {
			return true
		}
	}
	return false
}

// shapeAccepts is the interrogative shape recognizer: a leading
// interrogative, a leading question opener or a question-particle ending
func (m *matcher) shapeAccepts(s string) bool {
	c := core(s)
	if len(c) == 0 {
		return false
	}
	if m.interrogativeAt(c, 0) {
		return true
	}
	for _, t := range m.openers {
		if t.at(c, 0) {
			return true
		}
	}
	for _, t := range m.endings {
		if t.suffixOf(c) {
			return true
		}
	}
	return false
}

// endsAsQuestion is true for an explicit mark or a question ending
func (m *matcher) endsAsQuestion(s string) bool {
	if m.endsWithMark(s) {
		return true
	}
	c := core(s)
	for _, t := range m.endings {
		if t.suffixOf(c) {
			return true
		}
	}
	return false
}

// topicShape reports a leading topic clause followed by a question ending
func (m *matcher) topicShape(s string) bool {
	if m.topic == nil {
		return false
	}
	folded := string(foldRunes(strings.TrimSpace(s)))
	loc := m.topic.FindStringIndex(folded)
	if loc == nil {
		return false
	}
	rest := folded[loc[1]:]
	return countContent(rest) > 0 && m.endsAsQuestion(rest)
}

// structuralSpans isolates the question and request stretches of a whole
// transcript, folded and stripped of surrounding punctuation
func (m *matcher) structuralSpans(transcript string) []string {
	var spans []string
	for _, seg := range splitKeep(transcript, m.terminators) {
		if !m.endsAsQuestion(seg) && !m.hasPoliteSuffix(seg) {
			continue
		}
		if c := core(seg); len(c) > 0 {
			spans = append(spans, string(c))
		}
	}
	return spans
}

// structuralAccepts reports whether candidate lies inside a detected span
func structuralAccepts(spans []string, candidate string) bool {
	c := string(core(candidate))
	if c == "" {
		return false
	}
	for _, span := range spans {
		if strings.Contains(span, c) {
			return true
		}
	}
	return false
}

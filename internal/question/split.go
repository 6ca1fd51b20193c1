package question

import (
	"strings"
	"unicode/utf8"
)

// splitKeep cuts s after every rune in set. The cutting rune stays with its
// segment; blank segments are dropped.
func splitKeep(s string, set runeSet) []string {
	var (
		out   []string
		start int
	)
	for i, r := range s {
		if !set.has(r) {
			continue
		}
		end := i + utf8.RuneLen(r)
		if seg := strings.TrimSpace(s[start:end]); countContent(seg) > 0 {
			out = append(out, seg)
		}
		start = end
	}
	if seg := strings.TrimSpace(s[start:]); countContent(seg) > 0 {
		out = append(out, seg)
	}
	return out
}

// split breaks a transcript into ordered segments: strong terminators,
// then embedded question marks, then connectors inside long runs
func (m *matcher) split(transcript string) []string {
	var segments []string
	for _, coarse := range splitKeep(transcript, m.terminators) {
		for _, seg := range splitKeep(coarse, m.marks) {
			if m.minConnectorRunes > 0 && utf8.RuneCountInString(seg) >= m.minConnectorRunes {
				segments = append(segments, m.splitConnectors(seg)...)
				continue
			}
			segments = append(segments, seg)
		}
	}
	return segments
}

// splitConnectors starts a new segment at each connector that follows content
func (m *matcher) splitConnectors(seg string) []string {
	orig := []rune(seg)
	folded := foldRunes(seg)

	var (
		out  []string
		prev int
	)
	for i := 1; i < len(folded); i++ {
		for _, c := range m.connectors {
			if !c.at(folded, i) {
				continue
			}
			if piece := strings.TrimSpace(string(orig[prev:i])); countContent(piece) > 0 {
				out = append(out, piece)
				prev = i
			}
			i += len(c.runes) - 1
			break
		}
	}
	if piece := strings.TrimSpace(string(orig[prev:])); countContent(piece) > 0 {
		out = append(out, piece)
	}
	return out
}

// Package question extracts clean question strings from transcripts.
//
// A transcript passes through a pre-filter, a sentence splitter, preface
// trimming, a candidate filter, two validators and finally refinement.
// All language knowledge lives in a Lexicon.
package question

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DetectedQuestion is one question found in a transcript
type DetectedQuestion struct {
	ID          string    `json:"id"`
	RawText     string    `json:"raw_text"`
	RefinedText string    `json:"refined_text"`
	Timestamp   time.Time `json:"timestamp"`
	Confidence  float64   `json:"confidence"`
}

// Candidate is a validated segment in transcript order
type Candidate struct {
	Index      int    // Position among the transcript's segments
	Raw        string // Segment as split from the transcript
	Text       string // Segment after preface trimming
	Structural bool   // Accepted by the whole-transcript detector
	Shape      bool   // Accepted by the shape recognizer
}

// Pipeline runs question extraction with a fixed lexicon. It holds no
// mutable state and is safe for concurrent use.
type Pipeline struct {
	m           *matcher
	minChars    int
	parallelism int
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithMinChars sets the pre-filter minimum trimmed length
func WithMinChars(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.minChars = n
		}
	}
}

// WithParallelism bounds concurrent refinements; zero or less is unbounded
func WithParallelism(n int) Option {
	return func(p *Pipeline) {
		p.parallelism = n
	}
}

// NewPipeline compiles the lexicon. A nil lexicon uses DefaultLexicon.
func NewPipeline(lex *Lexicon, opts ...Option) (*Pipeline, error) {
	if lex == nil {
		lex = DefaultLexicon()
	}
	m, err := newMatcher(lex)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{m: m, minChars: 3, parallelism: 4}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Candidates runs every stage before refinement
func (p *Pipeline) Candidates(transcript string) []Candidate {
	transcript = strings.TrimSpace(transcript)
	if utf8.RuneCountInString(transcript) < p.minChars {
		return nil
	}

	spans := p.m.structuralSpans(transcript)

	var out []Candidate
	for i, seg := range p.m.split(transcript) {
		text := strings.TrimSpace(p.m.trimPreface(seg))
		if !p.isCandidate(text) {
			continue
		}

		c := Candidate{
			Index:      i,
			Raw:        seg,
			Text:       text,
			Structural: structuralAccepts(spans, text),
			Shape:      p.m.shapeAccepts(text),
		}
		if c.Structural || c.Shape {
			out = append(out, c)
		}
	}
	return out
}

func (p *Pipeline) isCandidate(text string) bool {
	if utf8.RuneCountInString(text) < 2 {
		return false
	}
	return p.m.endsWithMark(text) || p.m.hasPoliteSuffix(text) || p.m.shapeAccepts(text)
}

// Refine cleans one validated candidate
func (p *Pipeline) Refine(candidate string) string {
	return p.m.refine(candidate)
}

// Extract returns the questions in a transcript in left-to-right order.
// Refinement runs concurrently per candidate; a refinement panic is
// returned as an error and no questions are produced.
func (p *Pipeline) Extract(ctx context.Context, transcript string, at time.Time, confidence float64) ([]DetectedQuestion, error) {
	candidates := p.Candidates(transcript)
	if len(candidates) == 0 {
		return nil, nil
	}

	refined := make([]string, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	if p.parallelism > 0 {
		g.SetLimit(p.parallelism)
	}
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("refinement of candidate %d panicked: %v", c.Index, r)
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			refined[i] = p.m.refine(c.Text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(refined))
	questions := make([]DetectedQuestion, 0, len(refined))
	for i, text := range refined {
		if seen[text] {
			continue
		}
		seen[text] = true
		questions = append(questions, DetectedQuestion{
			ID:          uuid.NewString(),
			RawText:     candidates[i].Raw,
			RefinedText: text,
			Timestamp:   at,
			Confidence:  confidence,
		})
	}
	return questions, nil
}

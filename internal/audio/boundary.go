package audio

import "time"

// Reason names the predicate that caused a chunk boundary
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonDuration     Reason = "duration"
	ReasonInterval     Reason = "interval"
	ReasonWords        Reason = "words"
	ReasonQuestion     Reason = "question_hint"
	ReasonEarlyTrigger Reason = "early_trigger"
	ReasonFlush        Reason = "flush"
)

// Signals are the inputs to a boundary decision
type Signals struct {
	Duration       time.Duration // Accumulated audio
	SinceBoundary  time.Duration // Wall clock since the previous cut
	EstimatedWords int
	QuestionHint   bool          // A question-likely hint was asserted since the previous cut
	HintAge        time.Duration // Age of that hint
}

// BoundaryPolicy decides when accumulated audio becomes a chunk.
// A zero limit disables its predicate.
type BoundaryPolicy struct {
	MaxDuration time.Duration
	MaxInterval time.Duration
	MaxWords    int
	HintWindow  time.Duration
}

// DefaultBoundaryPolicy returns the standard limits
func DefaultBoundaryPolicy() BoundaryPolicy {
	return BoundaryPolicy{
		MaxDuration: 2000 * time.Millisecond,
		MaxInterval: 4000 * time.Millisecond,
		MaxWords:    40,
		HintWindow:  3000 * time.Millisecond,
	}
}

// Decide is the logical OR of the four predicates
func (p BoundaryPolicy) Decide(s Signals) (bool, Reason) {
	switch {
	case p.MaxDuration > 0 && s.Duration >= p.MaxDuration:
		return true, ReasonDuration
	case p.MaxInterval > 0 && s.SinceBoundary >= p.MaxInterval:
		return true, ReasonInterval
	case p.MaxWords > 0 && s.EstimatedWords >= p.MaxWords:
		return true, ReasonWords
	case s.QuestionHint && s.HintAge >= 0 && s.HintAge <= p.HintWindow:
		return true, ReasonQuestion
	}
	return false, ReasonNone
}

// SignalsFrom builds signals from an accumulator snapshot and hint state
func SignalsFrom(snap Snapshot, hinted bool, hintAge time.Duration) Signals {
	return Signals{
		Duration:       snap.Duration,
		SinceBoundary:  snap.SinceBoundary,
		EstimatedWords: snap.EstimatedWords,
		QuestionHint:   hinted,
		HintAge:        hintAge,
	}
}

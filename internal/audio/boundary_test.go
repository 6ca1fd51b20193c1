package audio

import (
	"testing"
	"time"
)

func TestBoundaryPolicy_Decide(t *testing.T) {
	p := DefaultBoundaryPolicy()

	tests := []struct {
		name    string
		signals Signals
		cut     bool
		reason  Reason
	}{
		{"nothing reached", Signals{Duration: time.Second, SinceBoundary: time.Second, EstimatedWords: 3}, false, ReasonNone},
		{"duration", Signals{Duration: 2 * time.Second}, true, ReasonDuration},
		{"interval", Signals{SinceBoundary: 4 * time.Second}, true, ReasonInterval},
		{"words", Signals{EstimatedWords: 40}, true, ReasonWords},
		{"fresh hint", Signals{QuestionHint: true, HintAge: time.Second}, true, ReasonQuestion},
		{"hint at window edge", Signals{QuestionHint: true, HintAge: 3 * time.Second}, true, ReasonQuestion},
		{"stale hint", Signals{QuestionHint: true, HintAge: 3*time.Second + time.Millisecond}, false, ReasonNone},
		{"duration wins over words", Signals{Duration: 3 * time.Second, EstimatedWords: 50}, true, ReasonDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cut, reason := p.Decide(tt.signals)
			if cut != tt.cut {
				t.Errorf("Expected cut=%v, got %v", tt.cut, cut)
			}
			if reason != tt.reason {
				t.Errorf("Expected reason %q, got %q", tt.reason, reason)
			}
		})
	}
}

func TestBoundaryPolicy_ZeroLimitsDisabled(t *testing.T) {
	p := BoundaryPolicy{}

	cut, _ := p.Decide(Signals{Duration: time.Hour, SinceBoundary: time.Hour, EstimatedWords: 1000})
	if cut {
		t.Error("Expected zero limits to never cut")
	}

	// With no window only a hint from this instant counts
	if cut, _ := p.Decide(Signals{QuestionHint: true, HintAge: time.Millisecond}); cut {
		t.Error("Expected aged hint to be ignored with zero window")
	}
}

func TestSignalsFrom(t *testing.T) {
	snap := Snapshot{Duration: time.Second, SinceBoundary: 2 * time.Second, EstimatedWords: 7}
	s := SignalsFrom(snap, true, 500*time.Millisecond)

	if s.Duration != time.Second || s.SinceBoundary != 2*time.Second || s.EstimatedWords != 7 {
		t.Errorf("Expected snapshot counters copied, got %+v", s)
	}
	if !s.QuestionHint || s.HintAge != 500*time.Millisecond {
		t.Errorf("Expected hint state copied, got %+v", s)
	}
}

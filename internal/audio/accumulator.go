package audio

import (
	"sync"
	"time"
)

// Batch is one delivery of normalized samples from the capture boundary
type Batch struct {
	Samples   []float32
	ArrivedAt time.Time
}

// Snapshot describes what has accumulated since the last chunk boundary
type Snapshot struct {
	Samples        int
	Duration       time.Duration
	SinceBoundary  time.Duration
	EstimatedWords int
	LastBoundary   time.Time
}

// Drained is the result of a successful drain: the contiguous samples plus
// the counters as they stood at the cut
type Drained struct {
	Snapshot
	Samples []float32
	CutAt   time.Time
}

// AccumulatorConfig configures the sample accumulator
type AccumulatorConfig struct {
	SampleRate     int
	WordsPerSecond float64
	VAD            *VADConfig
}

// Accumulator owns pending audio between chunk boundaries.
// Ingest and every drain variant are mutually exclusive, so each sample is
// handed out exactly once even when several triggers race to cut.
type Accumulator struct {
	mu             sync.Mutex
	sampleRate     int
	wordsPerSecond float64
	samples        []float32
	voiced         int
	lastBoundary   time.Time
	vad            *VADDetector
}

// NewAccumulator creates an accumulator; the boundary clock starts at Reset
func NewAccumulator(cfg AccumulatorConfig) *Accumulator {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	return &Accumulator{
		sampleRate:     cfg.SampleRate,
		wordsPerSecond: cfg.WordsPerSecond,
		vad:            NewVADDetector(cfg.VAD),
	}
}

// SampleRate returns the rate samples are interpreted at
func (a *Accumulator) SampleRate() int {
	return a.sampleRate
}

// Ingest appends a batch and returns the updated counters
func (a *Accumulator) Ingest(b Batch) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(b.Samples) > 0 {
		a.samples = append(a.samples, b.Samples...)
		a.voiced += a.vad.Process(b.Samples)
	}
	return a.snapshotLocked(b.ArrivedAt)
}

// Snapshot returns the counters as of now without changing them
func (a *Accumulator) Snapshot(now time.Time) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked(now)
}

// Drain unconditionally cuts whatever has accumulated.
// It reports false, and changes nothing, when there is nothing to cut.
func (a *Accumulator) Drain(now time.Time) (Drained, bool) {
	return a.DrainIf(now, nil)
}

// DrainIf evaluates decide and drains within a single critical section.
// A nil decide always cuts. Nothing is cut from an empty accumulator.
func (a *Accumulator) DrainIf(now time.Time, decide func(Snapshot) bool) (Drained, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.samples) == 0 {
		return Drained{}, false
	}

	snap := a.snapshotLocked(now)
	if decide != nil && !decide(snap) {
		return Drained{}, false
	}

	d := Drained{
		Snapshot: snap,
		Samples:  a.samples,
		CutAt:    now,
	}

	a.samples = nil
	a.voiced = 0
	a.lastBoundary = now

	return d, true
}

// Discard drops pending audio without producing a chunk and returns the dropped count
func (a *Accumulator) Discard() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.samples)
	a.samples = nil
	a.voiced = 0
	a.vad.Reset()
	return n
}

// Reset discards pending audio and restarts the boundary clock
func (a *Accumulator) Reset(now time.Time) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.samples)
	a.samples = nil
	a.voiced = 0
	a.lastBoundary = now
	a.vad.Reset()
	return n
}

func (a *Accumulator) snapshotLocked(now time.Time) Snapshot {
	snap := Snapshot{
		Samples:      len(a.samples),
		Duration:     SamplesDuration(len(a.samples), a.sampleRate),
		LastBoundary: a.lastBoundary,
	}
	if !a.lastBoundary.IsZero() && now.After(a.lastBoundary) {
		snap.SinceBoundary = now.Sub(a.lastBoundary)
	}
	if a.wordsPerSecond > 0 {
		voicedSeconds := float64(a.voiced) / float64(a.sampleRate)
		snap.EstimatedWords = int(voicedSeconds * a.wordsPerSecond)
	}
	return snap
}

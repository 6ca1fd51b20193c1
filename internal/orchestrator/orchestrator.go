// Package orchestrator ties audio accumulation, chunk boundaries,
// transcription and question extraction into one listening session.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lexiqai/question-stream/internal/audio"
	"github.com/lexiqai/question-stream/internal/hints"
	"github.com/lexiqai/question-stream/internal/observability"
	"github.com/lexiqai/question-stream/internal/question"
	"github.com/lexiqai/question-stream/internal/stt"
)

// Config holds the per-session pipeline settings
type Config struct {
	SampleRate     int
	Policy         audio.BoundaryPolicy
	WordsPerSecond float64
	VAD            *audio.VADConfig
	Hints          hints.Config
	Language       string // Passed to the gateway, empty for its default
}

// DefaultConfig returns the standard session settings
func DefaultConfig() Config {
	return Config{
		SampleRate:     16000,
		Policy:         audio.DefaultBoundaryPolicy(),
		WordsPerSecond: 2.5,
		VAD:            audio.DefaultVADConfig(),
		Hints:          hints.DefaultConfig(),
	}
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithSessionID overrides the generated session id
func WithSessionID(id string) Option {
	return func(o *Orchestrator) {
		o.sessionID = id
	}
}

// WithClock overrides the wall clock
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithContext sets the context passed to gateway calls
func WithContext(ctx context.Context) Option {
	return func(o *Orchestrator) {
		o.ctx = ctx
	}
}

// Orchestrator is the listening state machine for one session:
// Idle, Listening, and Listening while Processing.
//
// Events are queued while the state lock is held and delivered outside it,
// so observers see them in the order they occurred and may call back into
// the orchestrator.
type Orchestrator struct {
	cfg       Config
	sessionID string
	gateway   stt.Gateway
	pipeline  *question.Pipeline
	acc       *audio.Accumulator
	tracker   *hints.Tracker
	metrics   *observability.Metrics
	logger    zerolog.Logger
	now       func() time.Time
	ctx       context.Context

	mu           sync.Mutex
	listening    bool
	epoch        uint64
	seq          *sequencer
	lastActivity time.Time
	questions    []question.DetectedQuestion
	stats        Stats

	// Event delivery
	queue       []Event
	eventSeq    uint64
	dispatching bool
	drained     *sync.Cond
	observers   map[int]Observer
	nextObs     int

	wg sync.WaitGroup
}

// New creates an idle orchestrator
func New(cfg Config, gateway stt.Gateway, pipeline *question.Pipeline, opts ...Option) *Orchestrator {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if pipeline == nil {
		// The default lexicon always compiles
		pipeline, _ = question.NewPipeline(nil)
	}

	o := &Orchestrator{
		cfg:       cfg,
		sessionID: uuid.NewString(),
		gateway:   gateway,
		pipeline:  pipeline,
		now:       time.Now,
		ctx:       context.Background(),
		seq:       newSequencer(),
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(o)
	}

	o.drained = sync.NewCond(&o.mu)
	o.acc = audio.NewAccumulator(audio.AccumulatorConfig{
		SampleRate:     cfg.SampleRate,
		WordsPerSecond: cfg.WordsPerSecond,
		VAD:            cfg.VAD,
	})
	o.tracker = hints.NewTracker(cfg.Hints)
	o.metrics = observability.NewSessionMetrics(o.sessionID)
	o.logger = observability.SessionLogger(o.sessionID).With().Str("component", "orchestrator").Logger()

	return o
}

// SessionID returns the session identifier
func (o *Orchestrator) SessionID() string {
	return o.sessionID
}

// Subscribe registers an observer and returns a function that removes it
func (o *Orchestrator) Subscribe(obs Observer) func() {
	o.mu.Lock()
	id := o.nextObs
	o.nextObs++
	o.observers[id] = obs
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.observers, id)
		o.mu.Unlock()
	}
}

// StartListening begins a session. It is a no-op while already listening.
func (o *Orchestrator) StartListening() {
	defer o.flush()

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.listening {
		return
	}

	now := o.now()
	o.listening = true
	o.epoch++
	o.seq = newSequencer()
	o.lastActivity = now
	o.acc.Reset(now)
	o.tracker.Reset()
	o.metrics.RecordListenStart()

	o.logger.Info().Uint64("epoch", o.epoch).Msg("Listening started")
	o.enqueueStateLocked()
}

// StopListening ends the session. Accumulated audio is discarded, not
// flushed, and results of calls still in flight are dropped when they
// arrive. It is a no-op while idle.
func (o *Orchestrator) StopListening() {
	defer o.flush()

	o.mu.Lock()
	defer o.mu.Unlock()

	o.stopLocked("requested")
}

func (o *Orchestrator) stopLocked(reason string) {
	if !o.listening {
		return
	}

	discarded := o.acc.Discard()
	o.stats.DiscardedSamples += int64(discarded)
	o.metrics.RecordSamples("discarded", discarded)

	o.listening = false
	o.epoch++
	o.seq = newSequencer()
	o.tracker.Reset()
	o.metrics.RecordListenEnd()

	o.logger.Info().
		Str("reason", reason).
		Int("discarded_samples", discarded).
		Msg("Listening stopped")
	o.enqueueStateLocked()
}

// SubmitAudio ingests little-endian PCM16 mono bytes. Batches submitted
// while idle, and empty or odd-length batches, are ignored.
func (o *Orchestrator) SubmitAudio(pcm []byte) {
	defer o.flush()
	defer o.recoverInternal("chunk creation")

	samples, err := audio.DecodePCM16(pcm)
	if err != nil {
		o.mu.Lock()
		o.stats.IgnoredBatches++
		o.mu.Unlock()
		o.logger.Debug().Err(err).Int("bytes", len(pcm)).Msg("Ignoring malformed audio batch")
		return
	}
	o.SubmitSamples(samples)
}

// SubmitSamples ingests normalized samples directly
func (o *Orchestrator) SubmitSamples(samples []float32) {
	defer o.flush()
	defer o.recoverInternal("chunk creation")

	if len(samples) == 0 {
		return
	}

	now := o.now()
	if !o.ingest(samples, now) {
		return
	}

	if o.tracker.Poll(now) {
		o.cut(now, audio.ReasonEarlyTrigger)
	}
	o.cut(now, audio.ReasonNone)
}

// SubmitPartialText feeds interim transcript text to the streaming hint
// buffer. A positive scan cuts any accumulated audio immediately.
func (o *Orchestrator) SubmitPartialText(text string) {
	defer o.flush()
	defer o.recoverInternal("streaming hint")

	o.mu.Lock()
	listening := o.listening
	o.mu.Unlock()
	if !listening {
		return
	}

	now := o.now()
	if o.tracker.Append(text, now) {
		o.cut(now, audio.ReasonEarlyTrigger)
	}
}

// Flush cuts any accumulated audio into a chunk regardless of the boundary
// policy. It is a no-op while idle or when nothing is accumulated.
func (o *Orchestrator) Flush() {
	defer o.flush()
	defer o.recoverInternal("chunk creation")

	o.cut(o.now(), audio.ReasonFlush)
}

func (o *Orchestrator) ingest(samples []float32, now time.Time) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.listening {
		o.stats.IgnoredBatches++
		return false
	}

	o.acc.Ingest(audio.Batch{Samples: samples, ArrivedAt: now})
	o.lastActivity = now
	o.stats.IngestedSamples += int64(len(samples))
	o.metrics.RecordSamples("ingested", len(samples))
	return true
}

// cut creates a chunk if the boundary policy says so, or unconditionally when
// forced with a reason. Concurrent cuts resolve to at most one chunk.
func (o *Orchestrator) cut(now time.Time, forced audio.Reason) {
	c, epoch, slot, ok := o.cutLocked(now, forced)
	if !ok {
		return
	}

	o.wg.Add(1)
	go o.transcribe(epoch, slot, c)
}

func (o *Orchestrator) cutLocked(now time.Time, forced audio.Reason) (chunk, uint64, uint64, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.listening {
		return chunk{}, 0, 0, false
	}

	var reason audio.Reason
	decide := func(s audio.Snapshot) bool {
		if forced != audio.ReasonNone {
			reason = forced
			return true
		}
		hinted, age := o.tracker.QuestionLikely(s.LastBoundary, now)
		var cut bool
		cut, reason = o.cfg.Policy.Decide(audio.SignalsFrom(s, hinted, age))
		return cut
	}

	d, ok := o.acc.DrainIf(now, decide)
	if !ok {
		return chunk{}, 0, 0, false
	}

	c := chunk{
		info: ChunkInfo{
			ID:             uuid.NewString(),
			Timestamp:      d.CutAt,
			DurationMs:     d.Duration.Milliseconds(),
			EstimatedWords: d.EstimatedWords,
			Samples:        len(d.Samples),
			Reason:         string(reason),
			RMS:            audio.CalculateRMS(d.Samples),
		},
		samples: d.Samples,
	}

	o.stats.ChunkedSamples += int64(len(d.Samples))
	o.stats.Chunks++
	o.metrics.RecordSamples("chunked", len(d.Samples))
	o.metrics.RecordChunk(string(reason), d.Duration)
	if forced == audio.ReasonEarlyTrigger {
		o.metrics.RecordEarlyTrigger()
	}

	slot := o.seq.reserve()
	info := c.info
	o.enqueueLocked(Event{Type: EventChunkRecorded, Chunk: &info})
	if o.seq.outstanding() == 1 {
		o.enqueueStateLocked()
	}

	o.logger.Debug().
		Str("chunk_id", info.ID).
		Str("reason", info.Reason).
		Int64("duration_ms", info.DurationMs).
		Int("estimated_words", info.EstimatedWords).
		Msg("Chunk recorded")

	return c, o.epoch, slot, true
}

// transcribe makes the single gateway call for a chunk and releases its
// result in chunk order
func (o *Orchestrator) transcribe(epoch, slot uint64, c chunk) {
	defer o.wg.Done()

	res := o.process(c)
	trigger := o.complete(epoch, slot, res)
	if trigger {
		o.cut(o.now(), audio.ReasonEarlyTrigger)
	}
	o.flush()
}

func (o *Orchestrator) process(c chunk) (res chunkResult) {
	res.chunkID = c.info.ID
	defer func() {
		if r := recover(); r != nil {
			res = chunkResult{chunkID: c.info.ID, err: &ErrorInfo{
				Kind:    ErrorKindInternal,
				Message: fmt.Sprintf("transcription pipeline panicked: %v", r),
				ChunkID: c.info.ID,
				Fatal:   true,
			}}
		}
	}()

	wav, err := audio.EncodeWAV(c.samples, o.cfg.SampleRate)
	if err != nil {
		res.err = &ErrorInfo{Kind: ErrorKindInternal, Message: err.Error(), ChunkID: c.info.ID, Fatal: true}
		return res
	}

	start := time.Now()
	tr, err := o.gateway.Transcribe(o.ctx, &stt.TranscriptionRequest{
		ChunkID:    c.info.ID,
		Audio:      wav,
		SampleRate: o.cfg.SampleRate,
		Duration:   time.Duration(c.info.DurationMs) * time.Millisecond,
		Language:   o.cfg.Language,
	})
	o.metrics.RecordSTT(time.Since(start), err == nil)
	if err != nil {
		res.err = &ErrorInfo{Kind: ErrorKindGateway, Message: err.Error(), ChunkID: c.info.ID}
		return res
	}
	if tr == nil {
		tr = &stt.Transcript{}
	}

	res.transcription = &TranscriptionResult{
		ID:            uuid.NewString(),
		Text:          tr.Text,
		Timestamp:     c.info.Timestamp,
		Confidence:    tr.Confidence,
		SourceChunkID: c.info.ID,
		Provider:      tr.Provider,
		Language:      tr.Language,
	}

	questions, err := o.pipeline.Extract(o.ctx, tr.Text, c.info.Timestamp, tr.Confidence)
	if err != nil {
		res.err = &ErrorInfo{Kind: ErrorKindInternal, Message: err.Error(), ChunkID: c.info.ID, Fatal: true}
		return res
	}
	res.questions = questions
	return res
}

// complete releases results in chunk order. It reports whether the
// streaming hint asked for an early cut.
func (o *Orchestrator) complete(epoch, slot uint64, res chunkResult) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if epoch != o.epoch || !o.listening {
		o.logger.Debug().Str("chunk_id", res.chunkID).Msg("Dropping result from a stopped session")
		return false
	}

	trigger := false
	for _, r := range o.seq.complete(slot, res) {
		now := o.now()
		if r.transcription != nil {
			o.enqueueLocked(Event{Type: EventTranscriptionCompleted, Transcription: r.transcription})
			o.tracker.Observe(r.transcription.Text, now)
			if o.tracker.Append(r.transcription.Text, now) {
				trigger = true
			}
		}

		for i := range r.questions {
			q := r.questions[i]
			o.questions = append(o.questions, q)
			o.enqueueLocked(Event{Type: EventQuestionDetected, Question: &q})
		}
		if len(r.questions) > 0 {
			o.metrics.RecordQuestions(len(r.questions))
			o.logger.Info().
				Str("chunk_id", r.chunkID).
				Int("questions", len(r.questions)).
				Msg("Questions detected")
		}

		if r.err != nil {
			o.metrics.RecordError(r.err.Kind, "orchestrator")
			o.enqueueLocked(Event{Type: EventError, Error: r.err})
			if r.err.Fatal {
				o.logger.Error().Str("chunk_id", r.chunkID).Str("error", r.err.Message).Msg("Internal pipeline error, stopping")
				o.stopLocked("internal error")
				return false
			}
			o.logger.Warn().Str("chunk_id", r.chunkID).Str("error", r.err.Message).Msg("Transcription failed")
		}

		if o.seq.outstanding() == 0 {
			o.enqueueStateLocked()
		}
	}
	return trigger
}

// recoverInternal turns a panic on the ingestion path into an error event
// and a fail-safe stop
func (o *Orchestrator) recoverInternal(stage string) {
	r := recover()
	if r == nil {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	msg := fmt.Sprintf("%s panicked: %v", stage, r)
	o.metrics.RecordError(ErrorKindInternal, "orchestrator")
	o.logger.Error().Str("stage", stage).Interface("panic", r).Msg("Internal pipeline error, stopping")
	o.enqueueLocked(Event{Type: EventError, Error: &ErrorInfo{Kind: ErrorKindInternal, Message: msg, Fatal: true}})
	o.stopLocked("internal error")
}

// State returns a snapshot of the session state
func (o *Orchestrator) State() StateSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Questions returns a copy of the question log
func (o *Orchestrator) Questions() []question.DetectedQuestion {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]question.DetectedQuestion(nil), o.questions...)
}

// ClearQuestions empties the question log
func (o *Orchestrator) ClearQuestions() {
	defer o.flush()

	o.mu.Lock()
	defer o.mu.Unlock()

	o.questions = nil
	o.enqueueStateLocked()
}

// Stats returns the sample accounting counters
func (o *Orchestrator) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stats
}

// Wait blocks until every dispatched transcription has finished and its
// events have been delivered
func (o *Orchestrator) Wait() {
	o.wg.Wait()

	o.mu.Lock()
	for o.dispatching || len(o.queue) > 0 {
		o.drained.Wait()
	}
	o.mu.Unlock()
}

func (o *Orchestrator) snapshotLocked() StateSnapshot {
	inFlight := o.seq.outstanding()
	return StateSnapshot{
		Listening:    o.listening,
		Processing:   o.listening && inFlight > 0,
		InFlight:     inFlight,
		LastActivity: o.lastActivity,
		Questions:    append([]question.DetectedQuestion(nil), o.questions...),
	}
}

func (o *Orchestrator) enqueueStateLocked() {
	snap := o.snapshotLocked()
	o.enqueueLocked(Event{Type: EventStateChanged, State: &snap})
}

func (o *Orchestrator) enqueueLocked(ev Event) {
	o.eventSeq++
	ev.Seq = o.eventSeq
	ev.SessionID = o.sessionID
	ev.Timestamp = o.now()
	o.queue = append(o.queue, ev)
}

// flush delivers queued events. Only one goroutine delivers at a time; a
// concurrent or nested flush leaves its events to the active one.
func (o *Orchestrator) flush() {
	o.mu.Lock()
	if o.dispatching {
		o.mu.Unlock()
		return
	}
	o.dispatching = true

	for len(o.queue) > 0 {
		ev := o.queue[0]
		o.queue = o.queue[1:]
		observers := make([]Observer, 0, len(o.observers))
		for id := 0; id < o.nextObs; id++ {
			if obs, ok := o.observers[id]; ok {
				observers = append(observers, obs)
			}
		}
		o.mu.Unlock()

		for _, obs := range observers {
			o.deliver(obs, ev)
		}

		o.mu.Lock()
	}

	o.dispatching = false
	o.drained.Broadcast()
	o.mu.Unlock()
}

func (o *Orchestrator) deliver(obs Observer, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Interface("panic", r).Str("event", string(ev.Type)).Msg("Observer panicked")
		}
	}()
	obs(ev)
}

package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session metrics
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "question_stream_active_sessions",
		Help: "Number of sessions currently listening",
	})

	sessionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "question_stream_session_duration_seconds",
		Help:    "Duration of listening sessions in seconds",
		Buckets: []float64{1, 5, 10, 30, 60, 300, 900, 3600},
	})

	// Audio metrics
	audioSamples = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "question_stream_audio_samples_total",
		Help: "Audio samples by disposition",
	}, []string{"disposition"}) // ingested, chunked, discarded

	chunksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "question_stream_chunks_total",
		Help: "Audio chunks cut, by boundary reason",
	}, []string{"reason"})

	chunkDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "question_stream_chunk_duration_seconds",
		Help:    "Audio duration of each chunk in seconds",
		Buckets: []float64{0.25, 0.5, 1.0, 1.5, 2.0, 3.0, 4.0, 6.0},
	})

	// STT metrics
	sttRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "question_stream_stt_requests_total",
		Help: "Total number of transcription requests",
	}, []string{"status"})

	sttLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "question_stream_stt_latency_seconds",
		Help:    "Transcription latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
	})

	// Extraction metrics
	questionsDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "question_stream_questions_detected_total",
		Help: "Total number of questions emitted",
	})

	earlyTriggers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "question_stream_early_triggers_total",
		Help: "Streaming hint scans that matched an interrogative pattern",
	})

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "question_stream_errors_total",
		Help: "Total number of errors",
	}, []string{"type", "component"})

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "question_stream_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"service"})

	circuitBreakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "question_stream_circuit_breaker_failures_total",
		Help: "Total circuit breaker failures",
	}, []string{"service"})
)

// Metrics tracks metrics for a single listening session
type Metrics struct {
	sessionID string
	startTime time.Time
	listening bool
	mu        sync.Mutex
}

// NewSessionMetrics creates a new metrics tracker for a session
func NewSessionMetrics(sessionID string) *Metrics {
	return &Metrics{sessionID: sessionID}
}

// RecordListenStart records the start of a listening session
func (m *Metrics) RecordListenStart() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listening {
		return
	}
	m.listening = true
	m.startTime = time.Now()
	activeSessions.Inc()
}

// RecordListenEnd records the end of a listening session
func (m *Metrics) RecordListenEnd() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.listening {
		return
	}
	m.listening = false
	activeSessions.Dec()
	sessionDuration.Observe(time.Since(m.startTime).Seconds())
}

// RecordSamples records audio samples by disposition
func (m *Metrics) RecordSamples(disposition string, n int) {
	if n <= 0 {
		return
	}
	audioSamples.WithLabelValues(disposition).Add(float64(n))
}

// RecordChunk records a chunk cut
func (m *Metrics) RecordChunk(reason string, duration time.Duration) {
	chunksTotal.WithLabelValues(reason).Inc()
	chunkDuration.Observe(duration.Seconds())
}

// RecordSTT records one transcription call
func (m *Metrics) RecordSTT(latency time.Duration, success bool) {
	sttLatency.Observe(latency.Seconds())

	status := "success"
	if !success {
		status = "error"
	}
	sttRequests.WithLabelValues(status).Inc()
}

// RecordQuestions records emitted questions
func (m *Metrics) RecordQuestions(n int) {
	if n > 0 {
		questionsDetected.Add(float64(n))
	}
}

// RecordEarlyTrigger records a positive streaming hint scan
func (m *Metrics) RecordEarlyTrigger() {
	earlyTriggers.Inc()
}

// RecordError records an error
func (m *Metrics) RecordError(errorType, component string) {
	errorsTotal.WithLabelValues(errorType, component).Inc()
}

// UpdateCircuitBreakerState updates circuit breaker state metric
func UpdateCircuitBreakerState(service string, state int) {
	circuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// IncrementCircuitBreakerFailures increments circuit breaker failure counter
func IncrementCircuitBreakerFailures(service string) {
	circuitBreakerFailures.WithLabelValues(service).Inc()
}

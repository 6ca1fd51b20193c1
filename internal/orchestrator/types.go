package orchestrator

import (
	"time"

	"github.com/lexiqai/question-stream/internal/question"
)

// EventType names a consumer-facing notification
type EventType string

const (
	EventStateChanged           EventType = "state-changed"
	EventChunkRecorded          EventType = "chunk-recorded"
	EventTranscriptionCompleted EventType = "transcription-completed"
	EventQuestionDetected       EventType = "question-detected"
	EventError                  EventType = "error"
)

// Error kinds carried by EventError
const (
	ErrorKindGateway  = "gateway"
	ErrorKindInternal = "internal"
)

// Event is one notification. Exactly one payload field is set for its type.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`

	State         *StateSnapshot             `json:"state,omitempty"`
	Chunk         *ChunkInfo                 `json:"chunk,omitempty"`
	Transcription *TranscriptionResult       `json:"transcription,omitempty"`
	Question      *question.DetectedQuestion `json:"question,omitempty"`
	Error         *ErrorInfo                 `json:"error,omitempty"`
}

// Observer receives events in the order they occurred. Observers run on the
// delivering goroutine and must not block for long.
type Observer func(Event)

// ChunkInfo is the metadata of a cut chunk; the samples are not included
type ChunkInfo struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	DurationMs     int64     `json:"duration_ms"`
	EstimatedWords int       `json:"estimated_word_count"`
	Samples        int       `json:"samples"`
	Reason         string    `json:"reason"`
	RMS            float64   `json:"rms"`
}

// TranscriptionResult is the transcript of one chunk
type TranscriptionResult struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	Timestamp     time.Time `json:"timestamp"`
	Confidence    float64   `json:"confidence"`
	SourceChunkID string    `json:"source_chunk_id"`
	Provider      string    `json:"provider,omitempty"`
	Language      string    `json:"language,omitempty"`
}

// ErrorInfo describes a failure. Fatal errors stopped listening.
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	ChunkID string `json:"chunk_id,omitempty"`
	Fatal   bool   `json:"fatal"`
}

// StateSnapshot is a copy of the session state
type StateSnapshot struct {
	Listening    bool                        `json:"listening"`
	Processing   bool                        `json:"processing"`
	InFlight     int                         `json:"in_flight"`
	LastActivity time.Time                   `json:"last_activity"`
	Questions    []question.DetectedQuestion `json:"questions"`
}

// Stats counts samples for accounting. Ingested equals Chunked plus
// Discarded plus whatever is still pending.
type Stats struct {
	IngestedSamples  int64 `json:"ingested_samples"`
	ChunkedSamples   int64 `json:"chunked_samples"`
	DiscardedSamples int64 `json:"discarded_samples"`
	Chunks           int64 `json:"chunks"`
	IgnoredBatches   int64 `json:"ignored_batches"`
}

// chunk is an immutable cut of accumulated audio
type chunk struct {
	info    ChunkInfo
	samples []float32
}

// chunkResult is everything a chunk produced, released in chunk order
type chunkResult struct {
	chunkID       string
	transcription *TranscriptionResult
	questions     []question.DetectedQuestion
	err           *ErrorInfo
}

package stt

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyAudio is returned when a request carries no audio payload
var ErrEmptyAudio = errors.New("transcription request has no audio")

// TranscriptionRequest is one chunk handed to a speech-to-text backend
type TranscriptionRequest struct {
	// ChunkID identifies the source chunk
	ChunkID string

	// Audio is the chunk packaged as a mono 16-bit PCM WAV file
	Audio []byte

	// SampleRate of the payload in Hz
	SampleRate int

	// Duration of the audio
	Duration time.Duration

	// Language hint, empty to use the gateway default
	Language string
}

// Transcript is the backend's answer for one chunk. Text may be empty for
// silence or noise.
type Transcript struct {
	Text       string
	Confidence float64
	Language   string
	Provider   string
}

// Gateway transcribes one chunk per call. Implementations never retry.
type Gateway interface {
	// Transcribe sends the chunk and waits for the transcript
	Transcribe(ctx context.Context, req *TranscriptionRequest) (*Transcript, error)

	// Name identifies the backend in logs and metrics
	Name() string
}

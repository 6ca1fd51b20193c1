package stt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	listenClient "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"
	"github.com/rs/zerolog"

	"github.com/lexiqai/question-stream/internal/config"
	"github.com/lexiqai/question-stream/internal/observability"
)

// deepgramStreamer is the part of the Deepgram REST client the gateway uses
type deepgramStreamer interface {
	DoStream(ctx context.Context, src io.Reader, options *interfaces.PreRecordedTranscriptionOptions, resBody interface{}) error
}

// deepgramResponse is the subset of the prerecorded response we read
type deepgramResponse struct {
	Results struct {
		Channels []struct {
			DetectedLanguage string `json:"detected_language"`
			Alternatives     []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// DeepgramGateway transcribes chunks with Deepgram's prerecorded API
type DeepgramGateway struct {
	client   deepgramStreamer
	model    string
	language string
	logger   zerolog.Logger
}

// NewDeepgramGateway creates a Deepgram REST gateway
func NewDeepgramGateway(cfg *config.Config) (*DeepgramGateway, error) {
	if cfg.DeepgramAPIKey == "" {
		return nil, fmt.Errorf("deepgram API key is required")
	}

	client := listenClient.NewREST(cfg.DeepgramAPIKey, &interfaces.ClientOptions{})

	return newDeepgramGateway(client, cfg.DeepgramModel, cfg.DeepgramLanguage), nil
}

func newDeepgramGateway(client deepgramStreamer, model, language string) *DeepgramGateway {
	return &DeepgramGateway{
		client:   client,
		model:    model,
		language: language,
		logger:   observability.GetLogger().With().Str("component", "stt").Str("provider", "deepgram").Logger(),
	}
}

// Name returns the provider name
func (d *DeepgramGateway) Name() string {
	return config.ProviderDeepgram
}

// Transcribe sends one WAV chunk to Deepgram
func (d *DeepgramGateway) Transcribe(ctx context.Context, req *TranscriptionRequest) (*Transcript, error) {
	if req == nil || len(req.Audio) == 0 {
		return nil, ErrEmptyAudio
	}

	language := d.language
	if req.Language != "" {
		language = req.Language
	}

	options := &interfaces.PreRecordedTranscriptionOptions{
		Model:       d.model,
		Language:    language,
		Punctuate:   true,
		SmartFormat: true,
	}

	var resp deepgramResponse
	if err := d.client.DoStream(ctx, bytes.NewReader(req.Audio), options, &resp); err != nil {
		return nil, fmt.Errorf("deepgram transcription failed: %w", err)
	}

	transcript := &Transcript{Language: language, Provider: d.Name()}
	if len(resp.Results.Channels) > 0 {
		channel := resp.Results.Channels[0]
		if channel.DetectedLanguage != "" {
			transcript.Language = channel.DetectedLanguage
		}
		if len(channel.Alternatives) > 0 {
			// Best alternative comes first
			alt := channel.Alternatives[0]
			transcript.Text = strings.TrimSpace(alt.Transcript)
			transcript.Confidence = alt.Confidence
		}
	}

	d.logger.Debug().
		Str("chunk_id", req.ChunkID).
		Int("chars", len(transcript.Text)).
		Float64("confidence", transcript.Confidence).
		Msg("Deepgram transcription received")

	return transcript, nil
}

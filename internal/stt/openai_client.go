package stt

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/lexiqai/question-stream/internal/config"
	"github.com/lexiqai/question-stream/internal/observability"
)

// whisperClient is the part of the OpenAI client the gateway uses
type whisperClient interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// OpenAIGateway transcribes chunks with an OpenAI-compatible Whisper endpoint
type OpenAIGateway struct {
	client   whisperClient
	model    string
	language string
	logger   zerolog.Logger
}

// NewOpenAIGateway creates a Whisper gateway; OPENAI_BASE_URL selects a
// compatible self-hosted server
func NewOpenAIGateway(cfg *config.Config) (*OpenAIGateway, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAIBaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: 60 * time.Second}

	return newOpenAIGateway(openai.NewClientWithConfig(clientConfig), cfg.OpenAIModel, cfg.OpenAILanguage), nil
}

func newOpenAIGateway(client whisperClient, model, language string) *OpenAIGateway {
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAIGateway{
		client:   client,
		model:    model,
		language: language,
		logger:   observability.GetLogger().With().Str("component", "stt").Str("provider", "openai").Logger(),
	}
}

// Name returns the provider name
func (o *OpenAIGateway) Name() string {
	return config.ProviderOpenAI
}

// Transcribe uploads one WAV chunk to the transcription endpoint
func (o *OpenAIGateway) Transcribe(ctx context.Context, req *TranscriptionRequest) (*Transcript, error) {
	if req == nil || len(req.Audio) == 0 {
		return nil, ErrEmptyAudio
	}

	language := o.language
	if req.Language != "" {
		language = req.Language
	}

	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.model,
		FilePath: "chunk.wav",
		Reader:   bytes.NewReader(req.Audio),
		Language: language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("openai transcription failed: %w", err)
	}

	transcript := &Transcript{
		Text:       strings.TrimSpace(resp.Text),
		Confidence: segmentConfidence(resp),
		Language:   language,
		Provider:   o.Name(),
	}
	if resp.Language != "" {
		transcript.Language = resp.Language
	}

	o.logger.Debug().
		Str("chunk_id", req.ChunkID).
		Int("chars", len(transcript.Text)).
		Float64("confidence", transcript.Confidence).
		Msg("Whisper transcription received")

	return transcript, nil
}

// segmentConfidence averages exp(avg_logprob) over the returned segments.
// Without segments the confidence is unknown and reported as 0.
func segmentConfidence(resp openai.AudioResponse) float64 {
	if len(resp.Segments) == 0 {
		return 0
	}
	var sum float64
	for _, seg := range resp.Segments {
		sum += math.Exp(seg.AvgLogprob)
	}
	return sum / float64(len(resp.Segments))
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Supported transcription providers
const (
	ProviderDeepgram = "deepgram"
	ProviderOpenAI   = "openai"
)

// Config holds all configuration for the question stream service
type Config struct {
	// Server configuration
	Port     string `envconfig:"PORT" default:"8080"`
	GRPCPort string `envconfig:"GRPC_PORT" default:"50051"` // gRPC health service

	// Audio ingestion
	SampleRate int `envconfig:"SAMPLE_RATE" default:"16000"` // Hz, mono PCM16

	// Chunk boundary policy
	ChunkMaxDurationMs   int `envconfig:"CHUNK_MAX_DURATION_MS" default:"2000"`   // Accumulated audio ceiling
	ChunkMaxIntervalMs   int `envconfig:"CHUNK_MAX_INTERVAL_MS" default:"4000"`   // Wall-clock ceiling since last cut
	ChunkMaxWords        int `envconfig:"CHUNK_MAX_WORDS" default:"40"`           // Estimated word ceiling
	QuestionHintWindowMs int `envconfig:"QUESTION_HINT_WINDOW_MS" default:"3000"` // Question-likely validity window

	// Streaming hints
	HintRingSize    int `envconfig:"HINT_RING_SIZE" default:"10"`     // Recent transcripts kept
	HintBufferChars int `envconfig:"HINT_BUFFER_CHARS" default:"500"` // Partial text buffer cap (runes)
	HintDebounceMs  int `envconfig:"HINT_DEBOUNCE_MS" default:"500"`   // Minimum interval between scans

	// Word estimate
	WordsPerSecond     float64 `envconfig:"WORDS_PER_SECOND" default:"2.5"`
	VADEnergyThreshold float64 `envconfig:"VAD_ENERGY_THRESHOLD" default:"0.015"` // Normalized RMS threshold
	VADFrameMs         int     `envconfig:"VAD_FRAME_MS" default:"20"`

	// Question extraction
	MinTranscriptChars int    `envconfig:"MIN_TRANSCRIPT_CHARS" default:"3"`
	LexiconPath        string `envconfig:"LEXICON_PATH" default:""` // Optional YAML lexicon

	// Transcription provider
	STTProvider string `envconfig:"STT_PROVIDER" default:"deepgram"` // deepgram, openai

	// Deepgram STT API configuration
	DeepgramAPIKey   string `envconfig:"DEEPGRAM_API_KEY" default:""`
	DeepgramModel    string `envconfig:"DEEPGRAM_MODEL" default:"nova-2"`
	DeepgramLanguage string `envconfig:"DEEPGRAM_LANGUAGE" default:"ja"`

	// OpenAI Whisper configuration
	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIModel    string `envconfig:"OPENAI_MODEL" default:"whisper-1"`
	OpenAIBaseURL  string `envconfig:"OPENAI_BASE_URL" default:""`
	OpenAILanguage string `envconfig:"OPENAI_LANGUAGE" default:"ja"`

	// Resilience configuration
	CircuitBreakerMaxFailures  int `envconfig:"CIRCUIT_BREAKER_MAX_FAILURES" default:"5"`   // Failures before opening circuit
	CircuitBreakerResetTimeout int `envconfig:"CIRCUIT_BREAKER_RESET_TIMEOUT" default:"30"` // Seconds before attempting recovery

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks provider credentials and numeric bounds
func (c *Config) Validate() error {
	c.STTProvider = strings.ToLower(strings.TrimSpace(c.STTProvider))

	switch c.STTProvider {
	case ProviderDeepgram:
		if c.DeepgramAPIKey == "" {
			return fmt.Errorf("DEEPGRAM_API_KEY is required")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required")
		}
	default:
		return fmt.Errorf("unsupported STT_PROVIDER %q", c.STTProvider)
	}

	if c.SampleRate <= 0 {
		return fmt.Errorf("SAMPLE_RATE must be positive, got %d", c.SampleRate)
	}
	if c.ChunkMaxDurationMs <= 0 || c.ChunkMaxIntervalMs <= 0 {
		return fmt.Errorf("chunk duration limits must be positive")
	}
	if c.HintRingSize <= 0 || c.HintBufferChars <= 0 {
		return fmt.Errorf("hint buffer sizes must be positive")
	}

	return nil
}

// ChunkMaxDuration returns the accumulated-audio ceiling
func (c *Config) ChunkMaxDuration() time.Duration {
	return time.Duration(c.ChunkMaxDurationMs) * time.Millisecond
}

// ChunkMaxInterval returns the wall-clock ceiling between cuts
func (c *Config) ChunkMaxInterval() time.Duration {
	return time.Duration(c.ChunkMaxIntervalMs) * time.Millisecond
}

// QuestionHintWindow returns how long a question hint stays valid
func (c *Config) QuestionHintWindow() time.Duration {
	return time.Duration(c.QuestionHintWindowMs) * time.Millisecond
}

// HintDebounce returns the minimum interval between streaming scans
func (c *Config) HintDebounce() time.Duration {
	return time.Duration(c.HintDebounceMs) * time.Millisecond
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

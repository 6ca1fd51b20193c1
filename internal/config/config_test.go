package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	os.Setenv("STT_PROVIDER", "deepgram")
	os.Setenv("DEEPGRAM_API_KEY", "test-deepgram-key")
	defer os.Unsetenv("STT_PROVIDER")
	defer os.Unsetenv("DEEPGRAM_API_KEY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.DeepgramAPIKey != "test-deepgram-key" {
		t.Errorf("Expected DeepgramAPIKey 'test-deepgram-key', got '%s'", cfg.DeepgramAPIKey)
	}
	if cfg.STTProvider != ProviderDeepgram {
		t.Errorf("Expected STTProvider '%s', got '%s'", ProviderDeepgram, cfg.STTProvider)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv("DEEPGRAM_API_KEY")
	os.Unsetenv("STT_PROVIDER")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when the provider key is missing")
	}
}

func TestLoad_OpenAIProvider(t *testing.T) {
	os.Setenv("STT_PROVIDER", "OpenAI")
	os.Setenv("OPENAI_API_KEY", "test-openai-key")
	os.Unsetenv("DEEPGRAM_API_KEY")
	defer os.Unsetenv("STT_PROVIDER")
	defer os.Unsetenv("OPENAI_API_KEY")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}
	if cfg.STTProvider != ProviderOpenAI {
		t.Errorf("Expected provider normalized to 'openai', got '%s'", cfg.STTProvider)
	}
	if cfg.OpenAIModel != "whisper-1" {
		t.Errorf("Expected default OpenAIModel 'whisper-1', got '%s'", cfg.OpenAIModel)
	}
}

func TestLoad_UnknownProvider(t *testing.T) {
	os.Setenv("STT_PROVIDER", "carrier-pigeon")
	defer os.Unsetenv("STT_PROVIDER")

	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error for unsupported provider")
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("DEEPGRAM_API_KEY", "test-deepgram-key")
	defer os.Unsetenv("DEEPGRAM_API_KEY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default Port '8080', got '%s'", cfg.Port)
	}
	if cfg.SampleRate != 16000 {
		t.Errorf("Expected default SampleRate 16000, got %d", cfg.SampleRate)
	}
	if cfg.ChunkMaxDuration() != 2*time.Second {
		t.Errorf("Expected default ChunkMaxDuration 2s, got %v", cfg.ChunkMaxDuration())
	}
	if cfg.ChunkMaxInterval() != 4*time.Second {
		t.Errorf("Expected default ChunkMaxInterval 4s, got %v", cfg.ChunkMaxInterval())
	}
	if cfg.ChunkMaxWords != 40 {
		t.Errorf("Expected default ChunkMaxWords 40, got %d", cfg.ChunkMaxWords)
	}
	if cfg.QuestionHintWindow() != 3*time.Second {
		t.Errorf("Expected default QuestionHintWindow 3s, got %v", cfg.QuestionHintWindow())
	}
	if cfg.HintRingSize != 10 {
		t.Errorf("Expected default HintRingSize 10, got %d", cfg.HintRingSize)
	}
	if cfg.HintBufferChars != 500 {
		t.Errorf("Expected default HintBufferChars 500, got %d", cfg.HintBufferChars)
	}
	if cfg.HintDebounce() != 500*time.Millisecond {
		t.Errorf("Expected default HintDebounce 500ms, got %v", cfg.HintDebounce())
	}
	if cfg.MinTranscriptChars != 3 {
		t.Errorf("Expected default MinTranscriptChars 3, got %d", cfg.MinTranscriptChars)
	}
	if cfg.DeepgramModel != "nova-2" {
		t.Errorf("Expected default DeepgramModel 'nova-2', got '%s'", cfg.DeepgramModel)
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_KEY", "test-value")
	defer os.Unsetenv("TEST_KEY")

	value := GetEnv("TEST_KEY", "default")
	if value != "test-value" {
		t.Errorf("Expected 'test-value', got '%s'", value)
	}

	value = GetEnv("NON_EXISTENT_KEY", "default")
	if value != "default" {
		t.Errorf("Expected 'default', got '%s'", value)
	}
}

func TestConfig_ObservabilityDefaults(t *testing.T) {
	os.Setenv("DEEPGRAM_API_KEY", "test-deepgram-key")
	os.Unsetenv("LOG_LEVEL")
	defer os.Unsetenv("DEEPGRAM_API_KEY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default LogLevel 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.LogPretty {
		t.Error("Expected default LogPretty false, got true")
	}
	if !cfg.MetricsEnabled {
		t.Error("Expected default MetricsEnabled true, got false")
	}
	if cfg.CircuitBreakerMaxFailures != 5 {
		t.Errorf("Expected default CircuitBreakerMaxFailures 5, got %d", cfg.CircuitBreakerMaxFailures)
	}
}

func TestValidate_RejectsNonPositiveSampleRate(t *testing.T) {
	cfg := &Config{
		STTProvider:        ProviderDeepgram,
		DeepgramAPIKey:     "k",
		SampleRate:         0,
		ChunkMaxDurationMs: 2000,
		ChunkMaxIntervalMs: 4000,
		HintRingSize:       10,
		HintBufferChars:    500,
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for zero sample rate")
	}
}

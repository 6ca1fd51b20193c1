package orchestrator

import (
	"fmt"

	"github.com/lexiqai/question-stream/internal/audio"
	"github.com/lexiqai/question-stream/internal/config"
	"github.com/lexiqai/question-stream/internal/hints"
	"github.com/lexiqai/question-stream/internal/question"
)

// ConfigFrom maps service configuration onto session settings
func ConfigFrom(cfg *config.Config) Config {
	frameSize := cfg.SampleRate * cfg.VADFrameMs / 1000
	if frameSize <= 0 {
		frameSize = audio.DefaultVADConfig().FrameSize
	}

	h := hints.DefaultConfig()
	h.RingSize = cfg.HintRingSize
	h.BufferRunes = cfg.HintBufferChars
	h.Debounce = cfg.HintDebounce()
	h.Window = cfg.QuestionHintWindow()

	return Config{
		SampleRate: cfg.SampleRate,
		Policy: audio.BoundaryPolicy{
			MaxDuration: cfg.ChunkMaxDuration(),
			MaxInterval: cfg.ChunkMaxInterval(),
			MaxWords:    cfg.ChunkMaxWords,
			HintWindow:  cfg.QuestionHintWindow(),
		},
		WordsPerSecond: cfg.WordsPerSecond,
		VAD: &audio.VADConfig{
			EnergyThreshold: cfg.VADEnergyThreshold,
			SilenceFrames:   audio.DefaultVADConfig().SilenceFrames,
			FrameSize:       frameSize,
		},
		Hints: h,
	}
}

// PipelineFrom builds the question pipeline, loading the lexicon file if one
// is configured
func PipelineFrom(cfg *config.Config) (*question.Pipeline, error) {
	lex := question.DefaultLexicon()
	if cfg.LexiconPath != "" {
		loaded, err := question.LoadLexicon(cfg.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load lexicon: %w", err)
		}
		lex = loaded
	}
	return question.NewPipeline(lex, question.WithMinChars(cfg.MinTranscriptChars))
}

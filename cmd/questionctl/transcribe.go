package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexiqai/question-stream/internal/audio"
	"github.com/lexiqai/question-stream/internal/config"
	"github.com/lexiqai/question-stream/internal/orchestrator"
	"github.com/lexiqai/question-stream/internal/stt"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <file.wav>",
	Short: "Run a recorded mono PCM16 WAV file through a listening session and print its events",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranscribe,
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	info, pcm, err := audio.DecodeWAV(data)
	if err != nil {
		return err
	}
	samples, err := audio.DecodePCM16(pcm)
	if err != nil {
		return err
	}
	samples = audio.Resample(samples, int(info.SampleRate), cfg.SampleRate)

	if path, _ := cmd.Flags().GetString("lexicon"); path != "" {
		cfg.LexiconPath = path
	}
	pipeline, err := orchestrator.PipelineFrom(cfg)
	if err != nil {
		return err
	}
	gateway, err := stt.New(cfg)
	if err != nil {
		return err
	}

	// The session clock follows the file position, not the wall clock
	var (
		clockMu sync.Mutex
		clock   = time.Now()
	)
	now := func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		return clock
	}

	o := orchestrator.New(orchestrator.ConfigFrom(cfg), gateway, pipeline,
		orchestrator.WithClock(now),
		orchestrator.WithContext(cmd.Context()))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	var encMu sync.Mutex
	o.Subscribe(func(ev orchestrator.Event) {
		encMu.Lock()
		defer encMu.Unlock()
		enc.Encode(ev)
	})

	batchMs, _ := cmd.Flags().GetInt("batch-ms")
	if batchMs <= 0 {
		batchMs = 20
	}
	batch := cfg.SampleRate * batchMs / 1000

	o.StartListening()
	for start := 0; start < len(samples); start += batch {
		end := start + batch
		if end > len(samples) {
			end = len(samples)
		}

		clockMu.Lock()
		clock = clock.Add(audio.SamplesDuration(end-start, cfg.SampleRate))
		clockMu.Unlock()

		o.SubmitSamples(samples[start:end])
	}
	o.Flush()
	o.Wait()
	o.StopListening()

	stats := o.Stats()
	fmt.Fprintf(cmd.ErrOrStderr(), "%d chunks, %d questions, %.1fs of audio\n",
		stats.Chunks, len(o.Questions()), info.Duration)
	return nil
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lexiqai/question-stream/internal/config"
	"github.com/lexiqai/question-stream/internal/observability"
	"github.com/lexiqai/question-stream/internal/orchestrator"
	"github.com/lexiqai/question-stream/internal/resilience"
	"github.com/lexiqai/question-stream/internal/stream"
	"github.com/lexiqai/question-stream/internal/stt"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("port", cfg.Port).
		Str("stt_provider", cfg.STTProvider).
		Int("sample_rate", cfg.SampleRate).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("Question stream service starting")

	pipeline, err := orchestrator.PipelineFrom(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build question pipeline")
	}

	// One gateway and breaker shared by all sessions
	gateway, err := stt.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create transcription gateway")
	}

	sessionCfg := orchestrator.ConfigFrom(cfg)
	newSession := func(ctx context.Context, sessionID string) *orchestrator.Orchestrator {
		return orchestrator.New(sessionCfg, gateway, pipeline,
			orchestrator.WithSessionID(sessionID),
			orchestrator.WithContext(ctx))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/streams/audio", stream.Handler(newSession))
	mux.HandleFunc("/health", observability.HealthCheckHandler())

	transcriptionCheck := func(ctx context.Context) (bool, error) {
		if state := gateway.Breaker().State(); state == resilience.StateOpen {
			return false, fmt.Errorf("%s circuit is %s", gateway.Name(), state)
		}
		return true, nil
	}
	mux.HandleFunc("/ready", observability.ReadinessHandler(map[string]observability.HealthCheckFunc{
		gateway.Name(): transcriptionCheck,
	}))

	if cfg.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info().Msg("Prometheus metrics enabled at /metrics")
	}

	// No write timeout: streams are long-lived
	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	grpcHealth, err := observability.NewGRPCHealth(cfg.GRPCPort)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to start gRPC health service")
	}
	go func() {
		logger.Info().Str("addr", grpcHealth.Addr()).Msg("gRPC health service listening")
		if err := grpcHealth.Serve(); err != nil {
			logger.Error().Err(err).Msg("gRPC health service stopped")
		}
	}()

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("endpoint", fmt.Sprintf("ws://localhost:%s/streams/audio", cfg.Port)).
			Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()
	grpcHealth.SetServing(true)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	grpcHealth.SetServing(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	grpcHealth.Stop()

	logger.Info().Msg("Server exited gracefully")
}

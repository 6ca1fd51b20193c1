package stt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lexiqai/question-stream/internal/config"
	"github.com/lexiqai/question-stream/internal/observability"
	"github.com/lexiqai/question-stream/internal/resilience"
)

// GuardedGateway fails fast through a circuit breaker once the backend
// keeps failing. Each request is still attempted at most once.
type GuardedGateway struct {
	next    Gateway
	breaker *resilience.CircuitBreaker
}

// NewGuardedGateway wraps next with breaker
func NewGuardedGateway(next Gateway, breaker *resilience.CircuitBreaker) *GuardedGateway {
	breaker.OnStateChange(func(name string, state resilience.CircuitState) {
		observability.UpdateCircuitBreakerState(name, int(state))
		logger := observability.GetLogger()
		logger.Warn().
			Str("service", name).
			Str("state", state.String()).
			Msg("Transcription circuit breaker changed state")
	})
	return &GuardedGateway{next: next, breaker: breaker}
}

// Name returns the wrapped provider name
func (g *GuardedGateway) Name() string {
	return g.next.Name()
}

// Breaker exposes the breaker for readiness checks
func (g *GuardedGateway) Breaker() *resilience.CircuitBreaker {
	return g.breaker
}

// Transcribe calls the wrapped gateway unless the circuit is open
func (g *GuardedGateway) Transcribe(ctx context.Context, req *TranscriptionRequest) (*Transcript, error) {
	var out *Transcript
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		t, err := g.next.Transcribe(ctx, req)
		if err != nil {
			return err
		}
		out = t
		return nil
	})

	if err != nil {
		if !errors.Is(err, resilience.ErrCircuitOpen) && ctx.Err() == nil {
			observability.IncrementCircuitBreakerFailures(g.breaker.Name())
		}
		return nil, err
	}
	return out, nil
}

// New builds the configured gateway wrapped in a circuit breaker
func New(cfg *config.Config) (*GuardedGateway, error) {
	var (
		gw  Gateway
		err error
	)
	switch cfg.STTProvider {
	case config.ProviderDeepgram:
		gw, err = NewDeepgramGateway(cfg)
	case config.ProviderOpenAI:
		gw, err = NewOpenAIGateway(cfg)
	default:
		return nil, fmt.Errorf("unsupported STT provider %q", cfg.STTProvider)
	}
	if err != nil {
		return nil, err
	}

	breaker := resilience.NewCircuitBreaker(
		gw.Name(),
		cfg.CircuitBreakerMaxFailures,
		time.Duration(cfg.CircuitBreakerResetTimeout)*time.Second,
	)
	return NewGuardedGateway(gw, breaker), nil
}

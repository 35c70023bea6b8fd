package ai

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sony/gobreaker"
)

// BreakerEmbedder guards an Embedder with a circuit breaker so that an
// unavailable embedding service fails fast instead of stalling every caller.
type BreakerEmbedder struct {
	embedder Embedder
	cb       *gobreaker.CircuitBreaker
	logger   *slog.Logger
}

var _ Embedder = (*BreakerEmbedder)(nil)

// NewBreakerEmbedder wraps embedder with a circuit breaker named name.
// When cfg.Enabled is false the embedder is returned unchanged.
func NewBreakerEmbedder(embedder Embedder, name string, cfg BreakerConfig, logger *slog.Logger) Embedder {
	if !cfg.Enabled || embedder == nil {
		return embedder
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "embedder-breaker", "breaker", name)

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests || counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				logger.Warn("embedding circuit opened", "from", from.String(), "to", to.String())
				return
			}
			logger.Info("embedding circuit state changed", "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellations say nothing about service health
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	}

	return &BreakerEmbedder{
		embedder: embedder,
		cb:       gobreaker.NewCircuitBreaker(st),
		logger:   logger,
	}
}

// EmbedText implements Embedder.
func (b *BreakerEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.embedder.EmbedText(ctx, text)
	})
	if err != nil {
		return nil, err
	}
	return res.([]float32), nil
}

// EmbedTexts implements Embedder.
func (b *BreakerEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.embedder.EmbedTexts(ctx, texts)
	})
	if err != nil {
		return nil, err
	}
	return res.([][]float32), nil
}

// State reports the current breaker state.
func (b *BreakerEmbedder) State() gobreaker.State {
	return b.cb.State()
}

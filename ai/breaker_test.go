package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBreakerEmbedder_Disabled(t *testing.T) {
	inner := EmbedderFunc(func(context.Context, string) ([]float32, error) {
		return []float32{1}, nil
	})
	wrapped := NewBreakerEmbedder(inner, "test", BreakerConfig{}, nil)
	_, isBreaker := wrapped.(*BreakerEmbedder)
	assert.False(t, isBreaker, "disabled breaker should return the inner embedder")
}

func TestBreakerEmbedder_TripsAfterFailures(t *testing.T) {
	calls := 0
	inner := EmbedderFunc(func(context.Context, string) ([]float32, error) {
		calls++
		return nil, errors.New("service down")
	})
	cfg := BreakerConfig{
		Enabled:      true,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  3,
		FailureRatio: 0.5,
	}
	embedder := NewBreakerEmbedder(inner, "test", cfg, nil)
	breaker, ok := embedder.(*BreakerEmbedder)
	require.True(t, ok)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := embedder.EmbedText(ctx, "q")
		assert.EqualError(t, err, "service down")
	}
	assert.Equal(t, gobreaker.StateOpen, breaker.State())

	_, err := embedder.EmbedText(ctx, "q")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, calls, "open breaker must not reach the service")
}

func TestBreakerEmbedder_PassesThrough(t *testing.T) {
	inner := EmbedderFunc(func(_ context.Context, text string) ([]float32, error) {
		return []float32{float32(len(text))}, nil
	})
	embedder := NewBreakerEmbedder(inner, "test", DefaultBreakerConfig(), nil)

	vector, err := embedder.EmbedText(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, []float32{3}, vector)

	vectors, err := embedder.EmbedTexts(context.Background(), []string{"a", "ab"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {2}}, vectors)
}

func TestBreakerEmbedder_IgnoresCancellation(t *testing.T) {
	inner := EmbedderFunc(func(ctx context.Context, _ string) ([]float32, error) {
		return nil, ctx.Err()
	})
	cfg := DefaultBreakerConfig()
	cfg.MinRequests = 1
	embedder := NewBreakerEmbedder(inner, "test", cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		_, err := embedder.EmbedText(ctx, "q")
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, gobreaker.StateClosed, embedder.(*BreakerEmbedder).State())
}

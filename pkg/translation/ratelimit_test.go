package translation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveRateLimit(t *testing.T) {
	t.Run("exact match", func(t *testing.T) {
		cfg := ResolveRateLimit("gpt-4o-mini")
		assert.Equal(t, 500, cfg.RPM)
		assert.Equal(t, 50, cfg.RecommendedConcurrency)
	})

	t.Run("substring match covers versioned names", func(t *testing.T) {
		cfg := ResolveRateLimit("gemini-1.5-pro-002")
		assert.Equal(t, 2, cfg.RPM)
		assert.Equal(t, 30*time.Second, cfg.Delay)
	})

	t.Run("unknown model falls back to conservative default", func(t *testing.T) {
		cfg := ResolveRateLimit("some-brand-new-model")
		assert.Equal(t, DefaultRateLimit, cfg)
		assert.Equal(t, 10, cfg.RPM)
		assert.Equal(t, 2, cfg.RecommendedConcurrency)
		assert.Equal(t, 6*time.Second, cfg.Delay)
	})

	t.Run("sequential model flagged", func(t *testing.T) {
		cfg := ResolveRateLimit("gemini-2.5-flash-preview-05-20")
		assert.True(t, cfg.Sequential)
		assert.Equal(t, 1, cfg.RecommendedConcurrency)
	})
}

func TestEffectiveConcurrency(t *testing.T) {
	cfg := RateLimitConfig{RecommendedConcurrency: 3}

	assert.Equal(t, 3, EffectiveConcurrency(0, cfg), "unset request uses recommendation")
	assert.Equal(t, 2, EffectiveConcurrency(2, cfg), "lower request wins")
	assert.Equal(t, 3, EffectiveConcurrency(10, cfg), "recommendation caps the request")
}

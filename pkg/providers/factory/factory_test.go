package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordflux/wordflux/pkg/providers"
)

func TestSupported(t *testing.T) {
	assert.True(t, Supported(providers.ProviderOpenAI))
	assert.True(t, Supported(providers.ProviderOllamaCloud))
	assert.False(t, Supported("bedrock"))
	assert.Contains(t, SupportedList(), providers.ProviderGroq)
}

func TestNew(t *testing.T) {
	t.Run("openai compatible provider", func(t *testing.T) {
		c, err := New(providers.ProviderOpenRouter, "sk-test")
		require.NoError(t, err)
		assert.Equal(t, providers.ProviderOpenRouter, c.Name())
	})

	t.Run("ollama cloud gets native client", func(t *testing.T) {
		c, err := New(providers.ProviderOllamaCloud, "key")
		require.NoError(t, err)
		assert.Equal(t, providers.ProviderOllamaCloud, c.Name())
	})

	t.Run("local ollama needs no key", func(t *testing.T) {
		c, err := New(providers.ProviderOllama, "")
		require.NoError(t, err)
		assert.Equal(t, providers.ProviderOllama, c.Name())
	})

	t.Run("missing key rejected", func(t *testing.T) {
		_, err := New(providers.ProviderOpenAI, "")
		assert.Error(t, err)
	})

	t.Run("unknown provider rejected", func(t *testing.T) {
		_, err := New("bedrock", "key")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid provider")
	})
}

func TestIsFreeModel(t *testing.T) {
	assert.True(t, IsFreeModel(providers.ProviderOpenRouter, "qwen/qwen3-30b:free"))
	assert.True(t, IsFreeModel(providers.ProviderGroq, "llama-3.1-8b-instant"))
	assert.True(t, IsFreeModel(providers.ProviderOllama, "qwen3:8b"))
	assert.False(t, IsFreeModel(providers.ProviderOpenAI, "gpt-4o"))
	assert.False(t, IsFreeModel(providers.ProviderDeepSeek, "deepseek-chat"))
}

// Package factory 按提供商名称构造 LLM 客户端
package factory

import (
	"fmt"
	"strings"

	"github.com/wordflux/wordflux/pkg/providers"
	"github.com/wordflux/wordflux/pkg/providers/ollamacloud"
	"github.com/wordflux/wordflux/pkg/providers/openai"
)

// supportedProviders 提供商名称 → 是否需要 API key
var supportedProviders = map[string]bool{
	providers.ProviderOpenAI:      true,
	providers.ProviderOpenRouter:  true,
	providers.ProviderGroq:        true,
	providers.ProviderGemini:      true,
	providers.ProviderOllama:      false, // 本地实例不需要 key
	providers.ProviderOllamaCloud: true,
	providers.ProviderDeepSeek:    true,
}

// Supported 判断提供商是否受支持
func Supported(provider string) bool {
	_, ok := supportedProviders[provider]
	return ok
}

// SupportedList 返回所有受支持的提供商名称（用于错误提示）
func SupportedList() string {
	names := make([]string, 0, len(supportedProviders))
	for name := range supportedProviders {
		names = append(names, name)
	}
	// map 迭代无序，提示文案不要求稳定顺序
	return strings.Join(names, ", ")
}

// New 创建指定提供商的客户端
func New(provider, apiKey string) (providers.Client, error) {
	needsKey, ok := supportedProviders[provider]
	if !ok {
		return nil, fmt.Errorf("invalid provider %q, supported: %s", provider, SupportedList())
	}
	if needsKey && apiKey == "" {
		return nil, fmt.Errorf("api key required for provider %q", provider)
	}

	if provider == providers.ProviderOllamaCloud {
		return ollamacloud.New(apiKey), nil
	}

	if provider == providers.ProviderOllama && apiKey == "" {
		apiKey = "ollama"
	}
	return openai.New(provider, apiKey)
}

// IsFreeModel 判断模型是否免费档（OpenRouter :free 后缀、
// Groq/Gemini 免费层、Ollama 本地模型）
func IsFreeModel(provider, model string) bool {
	if strings.HasSuffix(model, ":free") {
		return true
	}
	switch provider {
	case providers.ProviderGroq, providers.ProviderGemini, providers.ProviderOllama:
		return true
	}
	return false
}

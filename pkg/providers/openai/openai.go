// Package openai 基于 OpenAI 兼容 REST 接口的客户端，
// 覆盖 openai、openrouter、groq、gemini、ollama（本地）、deepseek。
package openai

import (
	"context"
	"errors"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/wordflux/wordflux/pkg/providers"
	"github.com/wordflux/wordflux/pkg/translation"
)

// baseURLs 各提供商的 OpenAI 兼容端点，空串表示官方默认端点
var baseURLs = map[string]string{
	providers.ProviderOpenAI:     "",
	providers.ProviderOpenRouter: "https://openrouter.ai/api/v1",
	providers.ProviderGroq:       "https://api.groq.com/openai/v1",
	providers.ProviderGemini:     "https://generativelanguage.googleapis.com/v1beta/openai/",
	providers.ProviderOllama:     "http://localhost:11434/v1",
	providers.ProviderDeepSeek:   "https://api.deepseek.com/v1",
}

// Client OpenAI 兼容客户端
type Client struct {
	name   string
	client *goopenai.Client
}

// New 为指定提供商创建客户端。Ollama 本地不校验 API key（调用方传占位值）。
func New(provider, apiKey string) (*Client, error) {
	baseURL, ok := baseURLs[provider]
	if !ok {
		return nil, errors.New("unsupported openai-compatible provider: " + provider)
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Client{
		name:   provider,
		client: goopenai.NewClientWithConfig(cfg),
	}, nil
}

// Name 实现 providers.Client
func (c *Client) Name() string {
	return c.name
}

// Complete 实现 providers.Client，错误被归入核心错误分类
func (c *Client) Complete(ctx context.Context, model string, messages []providers.Message) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model:    model,
		Messages: make([]goopenai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, goopenai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", translation.NewServerError("empty response from "+c.name, 500)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// classify 把 SDK 错误映射到核心错误分类
func classify(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return translation.ClassifyHTTPStatus(apiErr.HTTPStatusCode, apiErr.Message, 0)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return translation.ClassifyHTTPStatus(reqErr.HTTPStatusCode, reqErr.Error(), 0)
	}
	if translation.IsRateLimit(err) {
		return translation.NewRateLimitError(err.Error(), 0)
	}
	return err
}

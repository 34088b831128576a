// Package ollamacloud Ollama Cloud 原生 /api/chat 客户端。
// 接口形状与 OpenAI 不同，这里归一化为 providers.Client。
package ollamacloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wordflux/wordflux/pkg/providers"
	"github.com/wordflux/wordflux/pkg/translation"
)

const defaultBaseURL = "https://ollama.com/api"

// Client Ollama Cloud 客户端
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New 创建客户端
func New(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// Name 实现 providers.Client
func (c *Client) Name() string {
	return providers.ProviderOllamaCloud
}

type chatRequest struct {
	Model    string              `json:"model"`
	Messages []providers.Message `json:"messages"`
	Stream   bool                `json:"stream"`
	Options  map[string]any      `json:"options,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	DoneReason string `json:"done_reason"`
}

// Complete 实现 providers.Client。模型名的 -cloud 后缀在请求前去掉
// （Ollama Cloud 端点不使用该后缀）。
func (c *Client) Complete(ctx context.Context, model string, messages []providers.Message) (string, error) {
	model = strings.TrimSuffix(model, "-cloud")

	payload, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
		Options:  map[string]any{"temperature": 0.3},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		retryAfter := 0
		if v := resp.Header.Get("Retry-After"); v != "" {
			retryAfter, _ = strconv.Atoi(v)
		}
		msg := fmt.Sprintf("ollama cloud api error: %s", strings.TrimSpace(string(body)))
		return "", translation.ClassifyHTTPStatus(resp.StatusCode, msg, retryAfter)
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", translation.NewServerError("ollama cloud returned malformed response", resp.StatusCode)
	}

	return strings.TrimSpace(out.Message.Content), nil
}

// Package providers 定义翻译 oracle 的客户端抽象。
// 引擎只依赖 Client 接口；具体提供商（OpenAI 兼容 REST、Ollama Cloud
// 原生 REST）在子包中实现并归一化到同一返回类型。
package providers

import "context"

// 消息角色
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message 一条对话消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client LLM 聊天补全客户端
type Client interface {
	// Complete 发送消息并返回模型输出文本
	Complete(ctx context.Context, model string, messages []Message) (string, error)

	// Name 提供商名称
	Name() string
}

// 已知提供商名称
const (
	ProviderOpenAI      = "openai"
	ProviderOpenRouter  = "openrouter"
	ProviderGroq        = "groq"
	ProviderGemini      = "gemini"
	ProviderOllama      = "ollama"
	ProviderOllamaCloud = "ollama-cloud"
	ProviderDeepSeek    = "deepseek"
)

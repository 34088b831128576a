package translation

import (
	"strings"
	"time"
)

// RateLimitConfig 单个模型的速率限制配置
type RateLimitConfig struct {
	RPM                    int           // 每分钟请求数上限
	RecommendedConcurrency int           // 推荐并发数
	Delay                  time.Duration // 请求前延迟
	Sequential             bool          // 极低 RPM 模型：整个引擎串行执行
}

// modelRateLimits 已知模型的速率限制表。
// 以模型标识为键，先精确匹配，再做双向子串匹配（覆盖 preview 版本号）。
var modelRateLimits = map[string]RateLimitConfig{
	// Gemini 免费档
	"gemini-2.5-pro-preview-06-05":   {RPM: 5, RecommendedConcurrency: 1, Delay: 12 * time.Second},
	"gemini-2.5-flash-preview-05-20": {RPM: 10, RecommendedConcurrency: 1, Delay: 10 * time.Second, Sequential: true},
	"gemini-2.5-pro":                 {RPM: 5, RecommendedConcurrency: 1, Delay: 12 * time.Second},
	"gemini-2.5-flash":               {RPM: 10, RecommendedConcurrency: 2, Delay: 6 * time.Second},
	"gemini-2.0-flash":               {RPM: 15, RecommendedConcurrency: 3, Delay: 4 * time.Second},
	"gemini-2.0-flash-lite":          {RPM: 30, RecommendedConcurrency: 5, Delay: 2 * time.Second},
	"gemini-1.5-flash":               {RPM: 15, RecommendedConcurrency: 3, Delay: 4 * time.Second},
	"gemini-1.5-flash-8b":            {RPM: 15, RecommendedConcurrency: 3, Delay: 4 * time.Second},
	"gemini-1.5-pro":                 {RPM: 2, RecommendedConcurrency: 1, Delay: 30 * time.Second},
	// Groq（实际受 TPM 限制）
	"llama-3.3-70b-versatile": {RPM: 30, RecommendedConcurrency: 3, Delay: 2 * time.Second},
	"llama-3.1-8b-instant":    {RPM: 30, RecommendedConcurrency: 5, Delay: 2 * time.Second},
	"gemma2-9b-it":            {RPM: 30, RecommendedConcurrency: 5, Delay: 2 * time.Second},
	"mixtral-8x7b-32768":      {RPM: 30, RecommendedConcurrency: 3, Delay: 2 * time.Second},
	// OpenAI 付费档
	"gpt-4o-mini": {RPM: 500, RecommendedConcurrency: 50},
	"gpt-4o":      {RPM: 500, RecommendedConcurrency: 50},
	"gpt-4":       {RPM: 200, RecommendedConcurrency: 20},
	// Ollama 本地（取决于硬件）
	"qwen3:8b":    {RPM: 60, RecommendedConcurrency: 2, Delay: time.Second},
	"qwen3:4b":    {RPM: 60, RecommendedConcurrency: 3, Delay: time.Second},
	"qwen2.5:7b":  {RPM: 60, RecommendedConcurrency: 2, Delay: time.Second},
	"llama3.1:8b": {RPM: 60, RecommendedConcurrency: 2, Delay: time.Second},
	"gemma2:9b":   {RPM: 60, RecommendedConcurrency: 2, Delay: time.Second},
	"mistral:7b":  {RPM: 60, RecommendedConcurrency: 2, Delay: time.Second},
	// Ollama Cloud
	"qwen3:235b-cloud":       {RPM: 30, RecommendedConcurrency: 5, Delay: 2 * time.Second},
	"qwen3-vl:235b-cloud":    {RPM: 30, RecommendedConcurrency: 5, Delay: 2 * time.Second},
	"qwen3-coder:480b-cloud": {RPM: 30, RecommendedConcurrency: 5, Delay: 2 * time.Second},
	"llama4:maverick-cloud":  {RPM: 30, RecommendedConcurrency: 5, Delay: 2 * time.Second},
	"llama4:scout-cloud":     {RPM: 30, RecommendedConcurrency: 5, Delay: 2 * time.Second},
	"deepseek-r1:671b-cloud": {RPM: 20, RecommendedConcurrency: 3, Delay: 3 * time.Second},
	"gemma3:27b-cloud":       {RPM: 30, RecommendedConcurrency: 5, Delay: 2 * time.Second},
	// DeepSeek
	"deepseek-chat":     {RPM: 60, RecommendedConcurrency: 10, Delay: time.Second},
	"deepseek-reasoner": {RPM: 30, RecommendedConcurrency: 5, Delay: 2 * time.Second},
}

// DefaultRateLimit 未知模型的保守默认配置
var DefaultRateLimit = RateLimitConfig{
	RPM:                    10,
	RecommendedConcurrency: 2,
	Delay:                  6 * time.Second,
}

// ResolveRateLimit 解析模型的速率限制配置：精确匹配优先，
// 其次双向子串匹配，最后回退到保守默认值。
func ResolveRateLimit(model string) RateLimitConfig {
	if cfg, ok := modelRateLimits[model]; ok {
		return cfg
	}

	for known, cfg := range modelRateLimits {
		if strings.Contains(model, known) || strings.Contains(known, model) {
			return cfg
		}
	}

	return DefaultRateLimit
}

// EffectiveConcurrency 取用户请求与模型推荐并发数的较小值
func EffectiveConcurrency(requested int, cfg RateLimitConfig) int {
	if requested <= 0 {
		return cfg.RecommendedConcurrency
	}
	if requested > cfg.RecommendedConcurrency {
		return cfg.RecommendedConcurrency
	}
	return requested
}

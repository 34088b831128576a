package translation

import (
	"errors"
	"fmt"
	"strings"
)

// 预定义错误
var (
	// ErrNoClient LLM 客户端未设置
	ErrNoClient = errors.New("llm client not configured")

	// ErrEmptyText 空文本
	ErrEmptyText = errors.New("empty text provided")

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrCheckpointCorrupt 检查点与当前文档不匹配
	ErrCheckpointCorrupt = errors.New("checkpoint does not match current document")
)

// 错误代码常量
const (
	CodeRateLimit  = "RATE_LIMIT"
	CodeServer     = "SERVER_ERROR"
	CodeClient     = "CLIENT_ERROR"
	CodeMarker     = "MARKER_VALIDATION"
	CodeCache      = "CACHE_IO"
	CodeCheckpoint = "CHECKPOINT_IO"
	CodeUnknown    = "UNKNOWN"
)

// Error 带错误类别与重试语义的翻译错误
type Error struct {
	Code       string // 错误代码
	Message    string // 错误消息
	StatusCode int    // HTTP 状态码（如适用）
	RetryAfter int    // 服务端建议的重试延迟（秒，0 表示未提供）
	Retryable  bool   // 是否可重试
	Cause      error  // 原因
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] %s (status %d)", e.Code, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回原因错误
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewRateLimitError 创建速率限制错误（429/配额耗尽，可重试，
// retryAfter 为服务端建议的等待秒数）
func NewRateLimitError(message string, retryAfter int) *Error {
	return &Error{
		Code:       CodeRateLimit,
		Message:    message,
		StatusCode: 429,
		RetryAfter: retryAfter,
		Retryable:  true,
	}
}

// NewServerError 创建服务端错误（5xx，可重试）
func NewServerError(message string, statusCode int) *Error {
	return &Error{
		Code:       CodeServer,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  true,
	}
}

// NewClientError 创建客户端错误（4xx，不可重试）
func NewClientError(message string, statusCode int) *Error {
	return &Error{
		Code:       CodeClient,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  false,
	}
}

// IsRetryable 判断错误是否可重试。未知错误按服务端错误对待（重试），
// 明确的客户端错误不重试。
func IsRetryable(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Retryable
	}
	// 未分类的错误：按消息嗅探速率限制信号，否则视为未知可重试
	if IsRateLimit(err) {
		return true
	}
	return true
}

// IsRateLimit 判断错误是否为速率限制。除结构化错误外，还按消息嗅探
// 429/quota/resource exhausted 等信号（部分 SDK 只透出字符串）。
func IsRateLimit(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Code == CodeRateLimit
	}
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "resource exhausted")
}

// RetryAfterHint 提取服务端建议的重试延迟秒数，未提供时返回 0
func RetryAfterHint(err error) int {
	var te *Error
	if errors.As(err, &te) {
		return te.RetryAfter
	}
	return 0
}

// ClassifyHTTPStatus 按 HTTP 状态码构造对应类别的错误
func ClassifyHTTPStatus(statusCode int, message string, retryAfter int) *Error {
	switch {
	case statusCode == 429:
		return NewRateLimitError(message, retryAfter)
	case statusCode >= 500:
		return NewServerError(message, statusCode)
	case statusCode >= 400:
		return NewClientError(message, statusCode)
	default:
		return &Error{Code: CodeUnknown, Message: message, StatusCode: statusCode, Retryable: true}
	}
}

package translation

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy 指数退避重试策略
type RetryPolicy struct {
	MaxRetries      int           // 最大重试次数（不含首次尝试）
	BaseDelay       time.Duration // 初始延迟
	MaxDelay        time.Duration // 延迟上限
	ExponentialBase float64       // 退避底数
}

// DefaultRetryPolicy 返回默认重试策略
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		BaseDelay:       time.Second,
		MaxDelay:        60 * time.Second,
		ExponentialBase: 2.0,
	}
}

// Delay 计算第 attempt 次重试（0 起）的等待时间。
// 服务端建议的 retryAfter 优先（仍受上限约束）；否则指数退避并附加
// [0,25%] 的抖动。去抖动的基础延迟随 attempt 单调不减。
func (p RetryPolicy) Delay(attempt int, retryAfter int) time.Duration {
	if retryAfter > 0 {
		d := time.Duration(retryAfter) * time.Second
		if d > p.MaxDelay {
			return p.MaxDelay
		}
		return d
	}

	base := float64(p.BaseDelay) * math.Pow(p.ExponentialBase, float64(attempt))
	jitter := base * rand.Float64() * 0.25
	d := time.Duration(base + jitter)

	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// BaseDelayAt 返回去抖动的基础延迟（受上限约束），用于测试单调性
func (p RetryPolicy) BaseDelayAt(attempt int) time.Duration {
	d := time.Duration(float64(p.BaseDelay) * math.Pow(p.ExponentialBase, float64(attempt)))
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Execute 带重试地执行 fn。速率限制与服务端错误按策略退避后重试，
// 客户端错误立即放弃，未知错误按服务端错误处理。
// 重试耗尽时返回最后一次的错误；是否进一步降级由调用方决定
// （文档内翻译调用降级为返回原文，而不是让整个文档失败）。
func (p RetryPolicy) Execute(ctx context.Context, logger *zap.Logger, fn func() (string, error)) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		var te *Error
		if errors.As(err, &te) && !te.Retryable {
			logger.Error("client error, not retrying", zap.Error(err))
			return "", err
		}
		if !IsRetryable(err) {
			return "", err
		}

		if attempt == p.MaxRetries {
			break
		}

		delay := p.Delay(attempt, RetryAfterHint(err))
		logger.Warn("request failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", p.MaxRetries),
			zap.Duration("delay", delay))

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	logger.Error("retries exhausted", zap.Error(lastErr), zap.Int("max_retries", p.MaxRetries))
	return "", lastErr
}

// Package providertest 提供测试用的 mock LLM 客户端
package providertest

import (
	"context"
	"sync"

	"github.com/wordflux/wordflux/pkg/providers"
)

// MockClient 可编程的 mock oracle。
// 默认行为是回声：原样返回最后一条 user 消息的内容（标记全部保留）。
type MockClient struct {
	// Respond 自定义响应函数，入参为 user 消息内容
	Respond func(userContent string) (string, error)

	// FailFirst 前 N 次调用返回 FailWith 错误，之后恢复正常
	FailFirst int
	FailWith  error

	mu       sync.Mutex
	calls    int
	requests []string
}

// Name 实现 providers.Client
func (m *MockClient) Name() string {
	return "mock"
}

// Complete 实现 providers.Client
func (m *MockClient) Complete(ctx context.Context, model string, messages []providers.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var user string
	for _, msg := range messages {
		if msg.Role == providers.RoleUser {
			user = msg.Content
		}
	}

	m.mu.Lock()
	m.calls++
	call := m.calls
	m.requests = append(m.requests, user)
	m.mu.Unlock()

	if m.FailWith != nil && call <= m.FailFirst {
		return "", m.FailWith
	}

	if m.Respond != nil {
		return m.Respond(user)
	}
	return user, nil
}

// Calls 已收到的调用次数
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Requests 已收到的 user 消息内容副本
func (m *MockClient) Requests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.requests))
	copy(out, m.requests)
	return out
}

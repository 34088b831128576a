package translation

import "sync"

// ContextWindow 最近 N 条译文的有界 FIFO，注入提示词以保证跨段一致性。
// 窗口大小为 0 时整个功能关闭：不记录、不输出提示词片段。
type ContextWindow struct {
	size int

	mu      sync.Mutex
	entries []string
}

// NewContextWindow 创建上下文窗口，size<=0 表示禁用
func NewContextWindow(size int) *ContextWindow {
	if size < 0 {
		size = 0
	}
	return &ContextWindow{size: size}
}

// Enabled 窗口是否启用
func (w *ContextWindow) Enabled() bool {
	return w != nil && w.size > 0
}

// Add 追加一条译文，超出窗口时淘汰最旧的
func (w *ContextWindow) Add(translated string) {
	if !w.Enabled() {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.entries = append(w.entries, translated)
	if len(w.entries) > w.size {
		w.entries = w.entries[len(w.entries)-w.size:]
	}
}

// Snapshot 按插入顺序返回当前窗口内容的副本
func (w *ContextWindow) Snapshot() []string {
	if !w.Enabled() {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, len(w.entries))
	copy(out, w.entries)
	return out
}

// Len 当前窗口内条目数
func (w *ContextWindow) Len() int {
	if !w.Enabled() {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

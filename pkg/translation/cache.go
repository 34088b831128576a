package translation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CacheEntry 缓存条目
type CacheEntry struct {
	Source     string `json:"source"`
	Translated string `json:"translated"`
	Timestamp  string `json:"timestamp"`
}

// Cache 以内容哈希为键的翻译缓存，落盘为单个 JSON 文件。
// 键是源文本的 sha256（不做归一化，精确匹配）：同一段文本无论出现在
// 文档何处、哪个文件、哪次运行，都直接命中而不再调用 oracle。
//
// 整块请求的缓存键是带标记的组合文本，因此 max_chunk_size 变化会使
// 对应的块级条目失效——这是有意保留的行为（条目更少，代价是命中率
// 对分块边界敏感）。
type Cache struct {
	path    string
	enabled bool
	logger  *zap.Logger

	mu      sync.RWMutex
	entries map[string]CacheEntry
}

// NewCache 创建缓存并加载已有文件。文件缺失或损坏时从空缓存开始，
// 不报错。
func NewCache(path string, enabled bool, logger *zap.Logger) *Cache {
	c := &Cache{
		path:    path,
		enabled: enabled,
		logger:  logger,
		entries: make(map[string]CacheEntry),
	}
	c.load()
	return c
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) load() {
	if !c.enabled {
		return
	}

	raw, err := os.ReadFile(c.path)
	if err != nil {
		return
	}
	if err := json.Unmarshal(raw, &c.entries); err != nil {
		c.logger.Warn("cache file corrupted, starting fresh", zap.String("path", c.path), zap.Error(err))
		c.entries = make(map[string]CacheEntry)
	}
}

// Get 按源文本查询缓存。禁用时恒为未命中。
func (c *Cache) Get(sourceText string) (string, bool) {
	if !c.enabled {
		return "", false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[hashText(sourceText)]
	if !ok {
		return "", false
	}
	return entry.Translated, true
}

// Set 写入缓存并落盘。禁用时不做任何事。
// 落盘失败只记日志，缓存降级为直通，绝不让翻译失败。
func (c *Cache) Set(sourceText, translated string) {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	c.entries[hashText(sourceText)] = CacheEntry{
		Source:     sourceText,
		Translated: translated,
		Timestamp:  time.Now().Format(time.RFC3339),
	}
	raw, err := json.MarshalIndent(c.entries, "", "  ")
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("cache serialize failed", zap.Error(err))
		return
	}
	if err := os.WriteFile(c.path, raw, 0o644); err != nil {
		c.logger.Warn("cache save failed", zap.String("path", c.path), zap.Error(err))
	}
}

// Size 返回缓存条目数
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear 清空缓存并删除文件
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]CacheEntry)
	_ = os.Remove(c.path)
}

package docs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const manifestVersion = "1.0"

// ManifestFileName 清单文件名，放在输出目录根部
const ManifestFileName = ".wordflux_manifest.json"

// ManifestEntry 单个文件的翻译记录
type ManifestEntry struct {
	SourceHash   string `json:"source_hash"`
	OutputPath   string `json:"output_path"`
	TranslatedAt string `json:"translated_at"`
}

// Manifest 增量翻译清单：按源文件哈希判断是否需要重新翻译，
// 未变化的文件在后续运行中直接跳过。
type Manifest struct {
	Version   string                   `json:"version"`
	SourceDir string                   `json:"source_dir"`
	OutputDir string                   `json:"output_dir"`
	CreatedAt string                   `json:"created_at"`
	UpdatedAt string                   `json:"updated_at"`
	Files     map[string]ManifestEntry `json:"files"`

	path   string
	logger *zap.Logger
}

// NewManifest 创建空清单
func NewManifest(path string, logger *zap.Logger) *Manifest {
	return &Manifest{
		Version: manifestVersion,
		Files:   map[string]ManifestEntry{},
		path:    path,
		logger:  logger,
	}
}

// Load 加载既有清单。文件缺失、损坏或版本不匹配时保持空清单。
func (m *Manifest) Load() bool {
	raw, err := os.ReadFile(m.path)
	if err != nil {
		return false
	}

	var loaded Manifest
	if err := json.Unmarshal(raw, &loaded); err != nil {
		m.logger.Warn("failed to parse manifest, starting fresh", zap.Error(err))
		return false
	}
	if loaded.Version != manifestVersion {
		m.logger.Warn("manifest version mismatch, starting fresh",
			zap.String("found", loaded.Version))
		return false
	}

	m.SourceDir = loaded.SourceDir
	m.OutputDir = loaded.OutputDir
	m.CreatedAt = loaded.CreatedAt
	if loaded.Files != nil {
		m.Files = loaded.Files
	}
	m.logger.Info("loaded manifest", zap.Int("entries", len(m.Files)))
	return true
}

// Save 写回清单文件
func (m *Manifest) Save() error {
	m.UpdatedAt = time.Now().Format(time.RFC3339)

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, raw, 0o644)
}

// SetDirectories 记录源目录与输出目录
func (m *Manifest) SetDirectories(sourceDir, outputDir string) {
	m.SourceDir = sourceDir
	m.OutputDir = outputDir
	if m.CreatedAt == "" {
		m.CreatedAt = time.Now().Format(time.RFC3339)
	}
}

// IsChanged 判断文件自上次翻译后是否变化（新文件视为已变化）
func (m *Manifest) IsChanged(relativePath, sourceHash string) bool {
	entry, ok := m.Files[relativePath]
	if !ok {
		return true
	}
	return entry.SourceHash != sourceHash
}

// Update 记录一次成功翻译
func (m *Manifest) Update(relativePath, sourceHash, outputPath string) {
	m.Files[relativePath] = ManifestEntry{
		SourceHash:   sourceHash,
		OutputPath:   outputPath,
		TranslatedAt: time.Now().Format(time.RFC3339),
	}
}

// Len 清单条目数
func (m *Manifest) Len() int {
	return len(m.Files)
}

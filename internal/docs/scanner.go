package docs

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// skipDirs 扫描时跳过的目录（构建产物、依赖、版本控制）
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".github":      true,
	".next":        true,
	".nuxt":        true,
	"dist":         true,
	"build":        true,
	".cache":       true,
}

// assetExts 原样复制到输出目录的资源文件扩展名
var assetExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true, ".webp": true,
	".json": true, ".yaml": true, ".yml": true, ".toml": true,
	".css": true, ".scss": true, ".less": true,
	".js": true, ".ts": true, ".jsx": true, ".tsx": true,
}

// DocFile 待翻译的文档文件
type DocFile struct {
	SourcePath   string
	RelativePath string
	OutputPath   string
	FileType     string // "md" 或 "mdx"
	SourceHash   string
}

// Scanner 递归扫描文档目录，收集 .md/.mdx 文件并镜像输出目录结构
type Scanner struct {
	sourceDir string
	outputDir string
	logger    *zap.Logger
}

// NewScanner 创建扫描器
func NewScanner(sourceDir, outputDir string, logger *zap.Logger) *Scanner {
	return &Scanner{sourceDir: sourceDir, outputDir: outputDir, logger: logger}
}

// Scan 收集全部 .md/.mdx 文件，相对路径决定输出位置
func (s *Scanner) Scan() ([]DocFile, error) {
	var files []DocFile

	err := s.walk(func(path, rel string) error {
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".md" && ext != ".mdx" {
			return nil
		}

		hash, err := hashFile(path)
		if err != nil {
			s.logger.Warn("failed to hash source file", zap.String("path", path), zap.Error(err))
		}
		files = append(files, DocFile{
			SourcePath:   path,
			RelativePath: rel,
			OutputPath:   filepath.Join(s.outputDir, rel),
			FileType:     ext[1:],
			SourceHash:   hash,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("documentation scan complete",
		zap.String("source_dir", s.sourceDir),
		zap.Int("files", len(files)))
	return files, nil
}

// CopyAssets 把图片、样式、脚本等资源原样复制到输出目录
func (s *Scanner) CopyAssets() (int, error) {
	copied := 0

	err := s.walk(func(path, rel string) error {
		if !assetExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		dst := filepath.Join(s.outputDir, rel)
		if err := copyFile(path, dst); err != nil {
			s.logger.Warn("failed to copy asset", zap.String("path", path), zap.Error(err))
			return nil
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, err
	}

	s.logger.Info("assets copied", zap.Int("count", copied))
	return copied, nil
}

func (s *Scanner) walk(visit func(path, rel string) error) error {
	return filepath.WalkDir(s.sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.sourceDir && skipDirs[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(s.sourceDir, path)
		if err != nil {
			return err
		}
		return visit(path, rel)
	})
}

func hashFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

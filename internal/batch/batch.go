// Package batch 顺序批量翻译目录下的多个 DOCX 文件。
// 串行执行是有意为之：多个文档共享同一份 API 速率配额。
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/wordflux/wordflux/internal/config"
	"github.com/wordflux/wordflux/internal/docx"
	"github.com/wordflux/wordflux/pkg/providers"
)

// Status 单个文件的处理结果状态
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Result 单个文件的批处理结果
type Result struct {
	File       string
	Status     Status
	OutputPath string
	Segments   int
	Err        error
}

// Summary 批处理汇总
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

// FindDocxFiles 列出目录下的 .docx 文件，跳过 Word 的 ~$ 临时文件，
// 按文件名排序。
func FindDocxFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("directory not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "~$") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".docx") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// Processor 批处理器：每个文件用独立的翻译器实例，单个文件失败
// 不影响其余文件。
type Processor struct {
	cfg    *config.Config
	client providers.Client
	logger *zap.Logger

	// Progress 文件级进度回调（当前、总数、文件名），可为 nil
	Progress func(current, total int, filename string)
}

// NewProcessor 创建批处理器
func NewProcessor(cfg *config.Config, client providers.Client, logger *zap.Logger) *Processor {
	return &Processor{cfg: cfg, client: client, logger: logger}
}

// Process 顺序翻译所有文件。上下文取消时立即返回已有结果。
func (p *Processor) Process(ctx context.Context, files []string) ([]Result, error) {
	total := len(files)
	p.logger.Info("starting batch processing", zap.Int("files", total))

	results := make([]Result, 0, total)
	for i, file := range files {
		filename := filepath.Base(file)
		if p.Progress != nil {
			p.Progress(i+1, total, filename)
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		p.logger.Info("processing file",
			zap.Int("current", i+1),
			zap.Int("total", total),
			zap.String("file", filename))

		translator := docx.NewTranslator(p.cfg, p.client, p.logger)
		result, err := translator.TranslateFile(ctx, file)
		if err != nil {
			if ctx.Err() != nil {
				results = append(results, Result{File: file, Status: StatusFailed, Err: err})
				return results, ctx.Err()
			}
			p.logger.Error("file failed", zap.String("file", filename), zap.Error(err))
			results = append(results, Result{File: file, Status: StatusFailed, Err: err})
			continue
		}

		p.logger.Info("file complete", zap.String("file", filename), zap.String("output", result.OutputPath))
		results = append(results, Result{
			File:       file,
			Status:     StatusSuccess,
			OutputPath: result.OutputPath,
			Segments:   result.Segments,
		})
	}

	summary := Summarize(results)
	p.logger.Info("batch complete",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed))
	return results, nil
}

// Summarize 汇总批处理结果
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			s.Succeeded++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}

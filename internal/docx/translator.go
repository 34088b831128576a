package docx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wordflux/wordflux/internal/config"
	"github.com/wordflux/wordflux/pkg/document"
	"github.com/wordflux/wordflux/pkg/providers"
	"github.com/wordflux/wordflux/pkg/translation"
)

// 共享缓存文件名：同目录下多个文档共用一份缓存
const cacheFileName = ".wordflux_cache.json"

// Result 单个文档的翻译结果
type Result struct {
	OutputPath string
	Stats      translation.Stats
	Segments   int
}

// Translator 单个 DOCX 文件的翻译流水线：
// 提取 → 检查点 → 翻译引擎 → 回注 → 成功后清理检查点。
type Translator struct {
	cfg    *config.Config
	client providers.Client
	logger *zap.Logger

	// Progress 每完成一个翻译单元调用一次（completed, total），可为 nil
	Progress func(completed, total int)
}

// NewTranslator 创建翻译器
func NewTranslator(cfg *config.Config, client providers.Client, logger *zap.Logger) *Translator {
	return &Translator{cfg: cfg, client: client, logger: logger}
}

// derivePaths 按输入文件名派生检查点、输出与缓存路径
func (t *Translator) derivePaths(inputPath string) (checkpointPath, outputPath, cachePath string, err error) {
	outDir := t.cfg.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(inputPath)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", "", "", fmt.Errorf("create output dir failed: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	checkpointPath = filepath.Join(outDir, base+"_checkpoint.json")
	outputPath = filepath.Join(outDir, base+"_translated.docx")

	cachePath = t.cfg.CachePath
	if cachePath == "" {
		cachePath = filepath.Join(outDir, cacheFileName)
	}
	return checkpointPath, outputPath, cachePath, nil
}

// TranslateFile 翻译一个 DOCX 文件，返回输出文件路径。
// 存在匹配的检查点且开启恢复时，已完成的片段不再重新翻译。
func (t *Translator) TranslateFile(ctx context.Context, inputPath string) (*Result, error) {
	checkpointPath, outputPath, cachePath, err := t.derivePaths(inputPath)
	if err != nil {
		return nil, err
	}

	cm := translation.NewCheckpointManager(checkpointPath, t.logger)

	data, err := NewExtractor(t.logger).Extract(inputPath)
	if err != nil {
		return nil, err
	}

	// 恢复探测：检查点结构与当前文档一致时沿用其中的已有译文
	if t.cfg.Resume && cm.Exists() {
		if saved, loadErr := cm.LoadData(); loadErr == nil && sameStructure(data, saved) {
			data = saved
			if p := cm.Progress(); p != nil {
				t.logger.Info("resuming from checkpoint",
					zap.Int("completed", p.Completed),
					zap.Int("total", p.Total))
			}
		} else {
			t.logger.Warn("checkpoint does not match document, starting fresh",
				zap.String("checkpoint", checkpointPath))
		}
	}

	if err := cm.SaveData(data); err != nil {
		return nil, err
	}

	glossary, err := translation.LoadGlossary(t.cfg.GlossaryPath)
	if err != nil {
		return nil, fmt.Errorf("glossary load failed: %w", err)
	}

	cache := translation.NewCache(cachePath, t.cfg.UseCache, t.logger)
	window := translation.NewContextWindow(t.cfg.ContextWindow)

	engine := translation.NewEngine(t.client, translation.EngineConfig{
		Model:         t.cfg.Model,
		SourceLang:    t.cfg.SourceLang,
		TargetLang:    t.cfg.TargetLang,
		MaxChunkSize:  t.cfg.MaxChunkSize,
		MaxConcurrent: t.cfg.Concurrency,
		Retry:         retryPolicy(t.cfg.MaxRetries),
	}, cache, window, glossary, t.logger)

	total := engine.TotalUnits(data)
	if t.Progress != nil {
		var completed atomic.Int64
		engine.Progress = func() {
			t.Progress(int(completed.Add(1)), total)
		}
	}

	if err := engine.TranslateAll(ctx, data); err != nil {
		// 翻译中断：检查点留在磁盘上供下次恢复
		saveCheckpoint(cm, data, t.logger)
		return nil, err
	}

	saveCheckpoint(cm, data, t.logger)

	if err := NewInjector(t.logger).Inject(inputPath, data, outputPath); err != nil {
		return nil, err
	}

	cm.Clear()

	stats := engine.Stats()
	t.logger.Info("translation complete",
		zap.String("output", outputPath),
		zap.Int64("api_calls", stats.APICalls),
		zap.Int64("cache_hits", stats.CacheHits),
		zap.Int64("degraded", stats.Degraded))

	return &Result{
		OutputPath: outputPath,
		Stats:      stats,
		Segments:   data.TotalSegments(),
	}, nil
}

// saveCheckpoint 持久化片段数据与进度快照
func saveCheckpoint(cm *translation.CheckpointManager, data *document.CheckpointData, logger *zap.Logger) {
	if err := cm.SaveData(data); err != nil {
		logger.Error("checkpoint save failed", zap.Error(err))
		return
	}

	indices := make(map[int]bool)
	translations := make(map[int]string)
	idx := 0
	for _, seg := range data.TextSegments {
		if allRunsTranslated(seg.Runs) {
			indices[idx] = true
			translations[idx] = document.JoinRuns(seg.Runs)
		}
		idx++
	}
	for _, seg := range data.TableCellSegments {
		if allRunsTranslated(seg.Runs) {
			indices[idx] = true
			translations[idx] = document.JoinRuns(seg.Runs)
		}
		idx++
	}
	for _, seg := range data.ChartSegments {
		if seg.TranslatedText != "" {
			indices[idx] = true
			translations[idx] = seg.TranslatedText
		}
		idx++
	}
	for _, seg := range data.SmartArtSegments {
		if seg.TranslatedText != "" {
			indices[idx] = true
			translations[idx] = seg.TranslatedText
		}
		idx++
	}

	if err := cm.Save(data, indices, translations); err != nil {
		logger.Error("checkpoint state save failed", zap.Error(err))
	}
}

func allRunsTranslated(runs []document.RunInfo) bool {
	if len(runs) == 0 {
		return false
	}
	for _, r := range runs {
		if r.TranslatedText == "" {
			return false
		}
	}
	return true
}

// sameStructure 判断检查点是否对应当前文档（逐片段比较原文，
// 忽略译文字段：恢复允许检查点里已有部分译文）。
func sameStructure(fresh, saved *document.CheckpointData) bool {
	if len(fresh.TextSegments) != len(saved.TextSegments) ||
		len(fresh.TableCellSegments) != len(saved.TableCellSegments) ||
		len(fresh.ChartSegments) != len(saved.ChartSegments) ||
		len(fresh.SmartArtSegments) != len(saved.SmartArtSegments) {
		return false
	}

	for i, seg := range fresh.TextSegments {
		if seg.SegIdx != saved.TextSegments[i].SegIdx || !sameRunTexts(seg.Runs, saved.TextSegments[i].Runs) {
			return false
		}
	}
	for i, seg := range fresh.TableCellSegments {
		other := saved.TableCellSegments[i]
		if seg.TableIdx != other.TableIdx || seg.RowIdx != other.RowIdx ||
			seg.CellIdx != other.CellIdx || seg.ParaIdx != other.ParaIdx ||
			!sameRunTexts(seg.Runs, other.Runs) {
			return false
		}
	}
	for i, seg := range fresh.ChartSegments {
		if seg.Text != saved.ChartSegments[i].Text {
			return false
		}
	}
	for i, seg := range fresh.SmartArtSegments {
		if seg.Text != saved.SmartArtSegments[i].Text {
			return false
		}
	}
	return true
}

func sameRunTexts(a, b []document.RunInfo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Text != b[i].Text {
			return false
		}
	}
	return true
}

func retryPolicy(maxRetries int) translation.RetryPolicy {
	policy := translation.DefaultRetryPolicy()
	if maxRetries > 0 {
		policy.MaxRetries = maxRetries
	}
	return policy
}

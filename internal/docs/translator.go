package docs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wordflux/wordflux/internal/config"
	"github.com/wordflux/wordflux/pkg/providers"
	"github.com/wordflux/wordflux/pkg/translation"
)

// 共享缓存文件名：与 DOCX 流水线同名，放在各自输出目录下
const cacheFileName = ".wordflux_cache.json"

// maxGlossaryTermsInPrompt 提示词中术语表条目的上限
const maxGlossaryTermsInPrompt = 50

// Stats 目录翻译统计
type Stats struct {
	FilesTranslated int
	FilesCached     int
	FilesFailed     int
	APICalls        int
	CacheHits       int
}

type parser interface {
	Parse(content string) (*Document, error)
	Reconstruct(doc *Document) (string, error)
	TranslatableFields() []string
}

// Translator Markdown/MDX 文档翻译器。单文件走
// 解析 → 遮蔽 → 翻译 → 还原 → 结构校验；整目录翻译在此之上
// 叠加清单驱动的增量跳过与资源复制。
type Translator struct {
	cfg    *config.Config
	client providers.Client
	logger *zap.Logger

	md  parser
	mdx parser

	glossary *translation.Glossary
	cache    *translation.Cache
	retry    translation.RetryPolicy
	rate     translation.RateLimitConfig

	stats Stats

	// Progress 目录翻译的进度回调（当前、总数、文件名），可为 nil
	Progress func(current, total int, filename string)
}

// NewTranslator 创建文档翻译器
func NewTranslator(cfg *config.Config, client providers.Client, logger *zap.Logger) *Translator {
	glossary, err := translation.LoadGlossary(cfg.GlossaryPath)
	if err != nil {
		logger.Warn("glossary load failed, using defaults", zap.Error(err))
		glossary = translation.NewGlossary()
	}

	retry := translation.DefaultRetryPolicy()
	if cfg.MaxRetries > 0 {
		retry.MaxRetries = cfg.MaxRetries
	}

	return &Translator{
		cfg:      cfg,
		client:   client,
		logger:   logger,
		md:       NewMarkdownParser(),
		mdx:      NewMDXParser(),
		glossary: glossary,
		retry:    retry,
		rate:     translation.ResolveRateLimit(cfg.Model),
	}
}

// Stats 当前累计统计
func (t *Translator) Stats() Stats {
	return t.stats
}

func (t *Translator) parserFor(path string) parser {
	if strings.EqualFold(filepath.Ext(path), ".mdx") {
		return t.mdx
	}
	return t.md
}

func (t *Translator) ensureCache(dir string) {
	if t.cache != nil {
		return
	}
	path := t.cfg.CachePath
	if path == "" {
		path = filepath.Join(dir, cacheFileName)
	}
	t.cache = translation.NewCache(path, t.cfg.UseCache, t.logger)
}

// TranslateFile 翻译单个 Markdown/MDX 文件并返回译文。
// outputPath 非空时写入译文文件。
func (t *Translator) TranslateFile(ctx context.Context, sourcePath, outputPath string) (string, error) {
	raw, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", fmt.Errorf("read source failed: %w", err)
	}
	content := string(raw)

	dir := filepath.Dir(sourcePath)
	if outputPath != "" {
		dir = filepath.Dir(outputPath)
	}
	t.ensureCache(dir)

	p := t.parserFor(sourcePath)
	doc, err := p.Parse(content)
	if err != nil {
		return "", err
	}

	// 前置元数据里的标题、摘要等字段单独翻译
	for _, field := range p.TranslatableFields() {
		value, ok := doc.Frontmatter.Get(field)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		translated, err := t.translateText(ctx, value)
		if err != nil {
			return "", err
		}
		doc.Frontmatter.Set(field, translated)
	}

	if strings.TrimSpace(doc.Body) != "" {
		translated, err := t.translateText(ctx, doc.Body)
		if err != nil {
			return "", err
		}
		doc.Body = translated
	} else {
		t.logger.Debug("no translatable content", zap.String("path", sourcePath))
	}

	out, err := p.Reconstruct(doc)
	if err != nil {
		return "", err
	}

	VerifyStructure(content, out, filepath.Base(sourcePath), t.logger)

	if outputPath != "" {
		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			return "", err
		}
		if err := os.WriteFile(outputPath, []byte(out), 0o644); err != nil {
			return "", fmt.Errorf("write output failed: %w", err)
		}
	}

	return out, nil
}

// TranslateDirectory 翻译整个文档目录。force 为 false 时按清单做
// 增量翻译，源文件哈希未变的直接跳过；单个文件失败不影响其余文件。
func (t *Translator) TranslateDirectory(ctx context.Context, sourceDir, outputDir string, force bool) (Stats, error) {
	t.logger.Info("starting docs translation",
		zap.String("source", sourceDir),
		zap.String("output", outputDir))

	scanner := NewScanner(sourceDir, outputDir, t.logger)
	manifest := NewManifest(filepath.Join(outputDir, ManifestFileName), t.logger)
	if !force {
		manifest.Load()
	}
	manifest.SetDirectories(sourceDir, outputDir)

	files, err := scanner.Scan()
	if err != nil {
		return t.stats, err
	}
	if len(files) == 0 {
		t.logger.Warn("no documentation files found", zap.String("source", sourceDir))
		return t.stats, nil
	}

	if _, err := scanner.CopyAssets(); err != nil {
		t.logger.Warn("asset copy incomplete", zap.Error(err))
	}

	t.ensureCache(outputDir)

	total := len(files)
	for i, f := range files {
		if t.Progress != nil {
			t.Progress(i+1, total, filepath.Base(f.SourcePath))
		}

		if !force && !manifest.IsChanged(f.RelativePath, f.SourceHash) {
			t.logger.Debug("skipping unchanged file", zap.String("file", f.RelativePath))
			t.stats.FilesCached++
			continue
		}

		if _, err := t.TranslateFile(ctx, f.SourcePath, f.OutputPath); err != nil {
			if ctx.Err() != nil {
				// 取消时保留已完成条目的清单供下次增量续跑
				saveManifest(manifest, t.logger)
				return t.stats, err
			}
			t.logger.Error("file translation failed",
				zap.String("file", f.RelativePath),
				zap.Error(err))
			t.stats.FilesFailed++
			continue
		}

		manifest.Update(f.RelativePath, f.SourceHash, f.OutputPath)
		t.stats.FilesTranslated++
	}

	saveManifest(manifest, t.logger)

	t.logger.Info("docs translation complete",
		zap.Int("files_translated", t.stats.FilesTranslated),
		zap.Int("files_cached", t.stats.FilesCached),
		zap.Int("files_failed", t.stats.FilesFailed),
		zap.Int("api_calls", t.stats.APICalls),
		zap.Int("cache_hits", t.stats.CacheHits))

	return t.stats, nil
}

// translateText 翻译一段遮蔽后的文本：缓存命中直接返回，
// 否则按模型速率限制延迟后调用接口，成功写回缓存。
func (t *Translator) translateText(ctx context.Context, text string) (string, error) {
	if cached, ok := t.cache.Get(text); ok {
		t.stats.CacheHits++
		return cached, nil
	}

	if t.rate.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(t.rate.Delay):
		}
	}

	messages := []providers.Message{
		{Role: providers.RoleSystem, Content: t.systemPrompt()},
		{Role: providers.RoleUser, Content: "Translate the following documentation text:\n\n" + text},
	}

	translated, err := t.retry.Execute(ctx, t.logger, func() (string, error) {
		return t.client.Complete(ctx, t.cfg.Model, messages)
	})
	if err != nil {
		return "", err
	}
	t.stats.APICalls++

	translated = strings.TrimSpace(translated)
	t.cache.Set(text, translated)
	return translated, nil
}

// systemPrompt 文档翻译的系统提示词：保持 Markdown 结构，
// 占位符逐字保留。
func (t *Translator) systemPrompt() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are a professional technical documentation translator from %s to %s.\n\n",
		t.cfg.SourceLang, t.cfg.TargetLang)
	sb.WriteString("TRANSLATION GUIDELINES:\n")
	sb.WriteString("- Translate naturally while maintaining technical accuracy\n")
	sb.WriteString("- Preserve all markdown formatting (headers, lists, bold, italic, etc.)\n")
	sb.WriteString("- Keep all placeholders like __CODE_BLOCK_0__, __INLINE_CODE_0__, __URL_0__ unchanged\n")
	sb.WriteString("- Do not translate code, URLs, file paths, or technical identifiers\n")
	sb.WriteString("- Maintain the same paragraph structure\n")

	if terms := t.glossary.SortedTerms(); len(terms) > 0 {
		sb.WriteString("\nGLOSSARY (use these exact translations):\n")
		if len(terms) > maxGlossaryTermsInPrompt {
			terms = terms[:maxGlossaryTermsInPrompt]
		}
		for _, pair := range terms {
			fmt.Fprintf(&sb, "- %s → %s\n", pair[0], pair[1])
		}
	}

	if keep := t.glossary.KeepTerms; len(keep) > 0 {
		sb.WriteString("\nDO NOT TRANSLATE these terms (keep as-is):\n")
		sb.WriteString(strings.Join(keep, ", "))
		sb.WriteString("\n")
	}

	sb.WriteString("\nIMPORTANT:\n")
	sb.WriteString("- Return ONLY the translated text\n")
	sb.WriteString("- Do not add explanations or notes\n")
	sb.WriteString("- Preserve all special placeholders exactly as they appear")

	return sb.String()
}

func saveManifest(manifest *Manifest, logger *zap.Logger) {
	if err := manifest.Save(); err != nil {
		logger.Error("manifest save failed", zap.Error(err))
	}
}

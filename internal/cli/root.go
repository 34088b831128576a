package cli

import (
	"fmt"
	"sync"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/wordflux/wordflux/internal/config"
)

var (
	// 命令行标志变量
	cfgFile       string
	providerFlag  string
	modelFlag     string
	apiKeyFlag    string
	sourceLang    string
	targetLang    string
	chunkSize     int
	concurrency   int
	maxRetries    int
	noCache       bool
	cachePath     string
	glossaryPath  string
	contextWindow int
	outputDir     string
	noResume      bool
	debugMode     bool
	quietMode     bool
)

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wordflux",
		Short: "wordflux 是一个结构保持的 LLM 文档翻译工具",
		Long: `wordflux 是一个结构保持的 LLM 文档翻译工具。

DOCX 文档按段落、表格、图表与 SmartArt 提取文本，翻译后回注原文件，
保留全部格式；Markdown/MDX 文档目录支持清单驱动的增量翻译。

支持的提供商:
  - openai: OpenAI GPT 模型
  - openrouter: OpenRouter 聚合接口
  - groq: Groq 推理加速
  - gemini: Google Gemini（OpenAI 兼容端点）
  - ollama: Ollama 本地模型
  - ollama-cloud: Ollama Cloud
  - deepseek: DeepSeek`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "配置文件路径（默认查找 .wordflux.yaml）")
	pf.StringVar(&providerFlag, "provider", "", "LLM 提供商")
	pf.StringVarP(&modelFlag, "model", "m", "", "模型标识")
	pf.StringVar(&apiKeyFlag, "api-key", "", "API key（默认读环境变量）")
	pf.StringVarP(&sourceLang, "source", "s", "", "源语言")
	pf.StringVarP(&targetLang, "target", "t", "", "目标语言")
	pf.IntVar(&chunkSize, "chunk-size", 0, "请求分块大小（字符数）")
	pf.IntVar(&concurrency, "concurrency", 0, "并行请求数（0 用模型推荐值）")
	pf.IntVar(&maxRetries, "max-retries", 0, "请求失败最大重试次数")
	pf.BoolVar(&noCache, "no-cache", false, "禁用翻译缓存")
	pf.StringVar(&cachePath, "cache-path", "", "缓存文件路径")
	pf.StringVar(&glossaryPath, "glossary", "", "术语表文件路径")
	pf.IntVar(&contextWindow, "context-window", 0, "注入提示词的最近译文条数")
	pf.StringVarP(&outputDir, "output-dir", "o", "", "输出目录")
	pf.BoolVar(&noResume, "no-resume", false, "忽略检查点，从头翻译")
	pf.BoolVar(&debugMode, "debug", false, "调试日志")
	pf.BoolVarP(&quietMode, "quiet", "q", false, "静默模式（仅错误输出）")

	rootCmd.AddCommand(newDocxCommand())
	rootCmd.AddCommand(newDocsCommand())

	return rootCmd
}

// loadConfig 加载配置文件并用显式设置的命令行标志覆盖
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	pf := cmd.Root().PersistentFlags()
	if pf.Changed("provider") {
		cfg.Provider = providerFlag
	}
	if pf.Changed("model") {
		cfg.Model = modelFlag
	}
	if pf.Changed("api-key") {
		cfg.APIKey = apiKeyFlag
	}
	if pf.Changed("source") {
		cfg.SourceLang = config.NormalizeLanguage(sourceLang)
	}
	if pf.Changed("target") {
		cfg.TargetLang = config.NormalizeLanguage(targetLang)
	}
	if pf.Changed("chunk-size") {
		cfg.MaxChunkSize = chunkSize
	}
	if pf.Changed("concurrency") {
		cfg.Concurrency = concurrency
	}
	if pf.Changed("max-retries") {
		cfg.MaxRetries = maxRetries
	}
	if pf.Changed("cache-path") {
		cfg.CachePath = cachePath
	}
	if pf.Changed("glossary") {
		cfg.GlossaryPath = glossaryPath
	}
	if pf.Changed("context-window") {
		cfg.ContextWindow = contextWindow
	}
	if pf.Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if noCache {
		cfg.UseCache = false
	}
	if noResume {
		cfg.Resume = false
	}
	if debugMode {
		cfg.Debug = true
	}
	if quietMode {
		cfg.Quiet = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// progressBar 懒初始化的 pterm 进度条：总数在第一次回调时才可知
type progressBar struct {
	title string
	quiet bool

	mu  sync.Mutex
	bar *pterm.ProgressbarPrinter
}

func newProgressBar(title string, quiet bool) *progressBar {
	return &progressBar{title: title, quiet: quiet}
}

// update 推进进度条。翻译引擎的回调可能并发触发。
func (p *progressBar) update(total int, label string) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		bar, err := pterm.DefaultProgressbar.WithTotal(total).WithTitle(p.title).Start()
		if err != nil {
			p.quiet = true
			return
		}
		p.bar = bar
	}
	if label != "" {
		p.bar.UpdateTitle(label)
	}
	p.bar.Increment()
}

func (p *progressBar) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_, _ = p.bar.Stop()
	}
}

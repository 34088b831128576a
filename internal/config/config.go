package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config 保存翻译流水线的所有配置
type Config struct {
	Provider string `mapstructure:"provider"` // LLM 提供商
	Model    string `mapstructure:"model"`    // 模型标识
	APIKey   string `mapstructure:"api_key"`  // API key，空时从环境变量解析

	SourceLang string `mapstructure:"source_lang"` // 源语言（英文名称）
	TargetLang string `mapstructure:"target_lang"` // 目标语言（英文名称）

	MaxChunkSize  int  `mapstructure:"max_chunk_size"` // 请求分块大小（字符数）
	Concurrency   int  `mapstructure:"concurrency"`    // 并行请求数，0 表示用模型推荐值
	MaxRetries    int  `mapstructure:"max_retries"`    // 请求失败最大重试次数
	UseCache      bool `mapstructure:"use_cache"`      // 启用翻译缓存
	ContextWindow int  `mapstructure:"context_window"` // 提示词注入的最近译文条数，0 禁用

	CachePath    string `mapstructure:"cache_path"`    // 缓存文件路径，空时按输入目录派生
	GlossaryPath string `mapstructure:"glossary_path"` // 术语表文件路径
	OutputDir    string `mapstructure:"output_dir"`    // 输出目录，空时与输入同目录

	Resume bool `mapstructure:"resume"` // 从检查点恢复
	Debug  bool `mapstructure:"debug"`  // 调试日志
	Quiet  bool `mapstructure:"quiet"`  // 静默模式（仅错误输出）
}

// providerKeyEnvs 各提供商的 API key 环境变量
var providerKeyEnvs = map[string]string{
	"openai":       "OPENAI_API_KEY",
	"openrouter":   "OPENROUTER_API_KEY",
	"groq":         "GROQ_API_KEY",
	"gemini":       "GEMINI_API_KEY",
	"ollama":       "OLLAMA_API_KEY",
	"ollama-cloud": "OLLAMA_API_KEY",
	"deepseek":     "DEEPSEEK_API_KEY",
}

// Load 从文件加载配置。configPath 为空时按 .wordflux.yaml 在当前目录与
// 家目录中查找；文件缺失不报错，直接使用默认值与环境变量。
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName(".wordflux")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("WORDFLUX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// 搜索模式下找不到配置文件不是错误；显式指定的路径必须存在
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.SourceLang = NormalizeLanguage(cfg.SourceLang)
	cfg.TargetLang = NormalizeLanguage(cfg.TargetLang)

	if cfg.APIKey == "" {
		cfg.APIKey = resolveAPIKey(cfg.Provider)
	}

	return &cfg, nil
}

// Default 创建默认配置
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "openai")
	v.SetDefault("model", "gpt-4o-mini")
	v.SetDefault("source_lang", "English")
	v.SetDefault("target_lang", "Vietnamese")
	v.SetDefault("max_chunk_size", 3000)
	v.SetDefault("concurrency", 0)
	v.SetDefault("max_retries", 3)
	v.SetDefault("use_cache", true)
	v.SetDefault("context_window", 0)
	v.SetDefault("resume", true)
}

// resolveAPIKey 从环境变量解析 API key：通用的 WORDFLUX_API_KEY 优先，
// 其次是提供商惯用的变量名。
func resolveAPIKey(provider string) string {
	if key := os.Getenv("WORDFLUX_API_KEY"); key != "" {
		return key
	}
	if env, ok := providerKeyEnvs[provider]; ok {
		return os.Getenv(env)
	}
	return ""
}

// Validate 校验配置的基本约束（提供商与 key 的校验由客户端工厂负责）
func (c *Config) Validate() error {
	if c.Provider == "" {
		return errors.New("provider is required")
	}
	if c.Model == "" {
		return errors.New("model is required")
	}
	if c.SourceLang == "" || c.TargetLang == "" {
		return errors.New("source and target languages are required")
	}
	if strings.EqualFold(c.SourceLang, c.TargetLang) {
		return fmt.Errorf("source and target languages are both %q", c.SourceLang)
	}
	if c.MaxChunkSize <= 0 {
		return errors.New("max_chunk_size must be positive")
	}
	if c.Concurrency < 0 {
		return errors.New("concurrency cannot be negative")
	}
	if c.MaxRetries < 0 {
		return errors.New("max_retries cannot be negative")
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults without config file", func(t *testing.T) {
		cfg := Default()
		assert.Equal(t, "openai", cfg.Provider)
		assert.Equal(t, "gpt-4o-mini", cfg.Model)
		assert.Equal(t, "English", cfg.SourceLang)
		assert.Equal(t, 3000, cfg.MaxChunkSize)
		assert.True(t, cfg.UseCache)
		assert.True(t, cfg.Resume)
	})

	t.Run("config file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wordflux.yaml")
		content := `provider: groq
model: llama-3.3-70b-versatile
target_lang: French
max_chunk_size: 5000
use_cache: false
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "groq", cfg.Provider)
		assert.Equal(t, "llama-3.3-70b-versatile", cfg.Model)
		assert.Equal(t, "French", cfg.TargetLang)
		assert.Equal(t, 5000, cfg.MaxChunkSize)
		assert.False(t, cfg.UseCache)
		assert.Equal(t, "English", cfg.SourceLang, "unset keys keep defaults")
	})

	t.Run("languages normalized from bcp47 tags", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wordflux.yaml")
		require.NoError(t, os.WriteFile(path, []byte("source_lang: en\ntarget_lang: vi\n"), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "English", cfg.SourceLang)
		assert.Equal(t, "Vietnamese", cfg.TargetLang)
	})

	t.Run("env vars override", func(t *testing.T) {
		t.Setenv("WORDFLUX_MODEL", "deepseek-chat")
		t.Setenv("WORDFLUX_PROVIDER", "deepseek")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "deepseek-chat", cfg.Model)
		assert.Equal(t, "deepseek", cfg.Provider)
	})

	t.Run("api key resolved from provider env", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wordflux.yaml")
		require.NoError(t, os.WriteFile(path, []byte("provider: groq\n"), 0o644))
		t.Setenv("GROQ_API_KEY", "gsk-test")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "gsk-test", cfg.APIKey)
	})

	t.Run("generic key env wins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wordflux.yaml")
		require.NoError(t, os.WriteFile(path, []byte("provider: groq\n"), 0o644))
		t.Setenv("WORDFLUX_API_KEY", "generic")
		t.Setenv("GROQ_API_KEY", "specific")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "generic", cfg.APIKey)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		return cfg
	}

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("same source and target rejected", func(t *testing.T) {
		cfg := valid()
		cfg.TargetLang = "english"
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing model rejected", func(t *testing.T) {
		cfg := valid()
		cfg.Model = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive chunk size rejected", func(t *testing.T) {
		cfg := valid()
		cfg.MaxChunkSize = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestNormalizeLanguage(t *testing.T) {
	cases := map[string]string{
		"en":         "English",
		"vi":         "Vietnamese",
		"zh":         "Chinese",
		"fr":         "French",
		"Vietnamese": "Vietnamese",
		"french":     "French",
		"":           "",
		"xx-invalid": "xx-invalid",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeLanguage(in), "input %q", in)
	}
}

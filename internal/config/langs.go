package config

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// NormalizeLanguage 把语言标识归一化为英文名称，供提示词使用。
// 接受 BCP 47 标签（"vi"、"zh-CN"）和已经是名称的输入（"Vietnamese"）。
// 无法解析时原样返回：提示词里的陌生语言名称交给模型处理。
func NormalizeLanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return lang
	}

	// 看起来已经是语言名称的输入不做二次解析
	if len(lang) > 3 && !strings.ContainsAny(lang, "-_") {
		return title(lang)
	}

	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}

	name := display.English.Languages().Name(tag)
	if name == "" {
		return lang
	}
	return name
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

package translation

import (
	"fmt"
	"strings"

	"github.com/wordflux/wordflux/pkg/providers"
)

// maxKeepTermsInPrompt 提示词中保留术语的上限，避免系统提示过长
const maxKeepTermsInPrompt = 30

// PromptBuilder 构建翻译提示词：语言对、术语表、保留术语、
// 标记保真规则，以及可选的最近译文上下文。
type PromptBuilder struct {
	sourceLang string
	targetLang string
	glossary   *Glossary
	context    *ContextWindow
}

// NewPromptBuilder 创建提示词构建器。glossary 与 context 可为 nil。
func NewPromptBuilder(sourceLang, targetLang string, glossary *Glossary, context *ContextWindow) *PromptBuilder {
	if glossary == nil {
		glossary = NewGlossary()
	}
	return &PromptBuilder{
		sourceLang: sourceLang,
		targetLang: targetLang,
		glossary:   glossary,
		context:    context,
	}
}

// SystemPrompt 构建系统提示词。标记保真规则用精确示例驱动：
// 逐字复制每个标记、不合并不丢弃不发明、只翻译标记内的文本。
func (b *PromptBuilder) SystemPrompt() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are a professional translator from %s to %s.\n\n", b.sourceLang, b.targetLang)
	sb.WriteString("TRANSLATION GUIDELINES:\n")
	sb.WriteString("- Translate naturally and fluently, preserving the original meaning and tone\n")
	sb.WriteString("- Maintain the context and style appropriate for technical documentation\n")
	fmt.Fprintf(&sb, "- Ensure the translation reads naturally in %s\n\n", b.targetLang)

	if terms := b.glossary.SortedTerms(); len(terms) > 0 {
		sb.WriteString("GLOSSARY (use these exact translations):\n")
		for _, pair := range terms {
			fmt.Fprintf(&sb, "- %s → %s\n", pair[0], pair[1])
		}
		sb.WriteString("\n")
	}

	if keep := b.glossary.KeepTerms; len(keep) > 0 {
		if len(keep) > maxKeepTermsInPrompt {
			keep = keep[:maxKeepTermsInPrompt]
		}
		sb.WriteString("DO NOT TRANSLATE these terms (keep as-is):\n")
		sb.WriteString(strings.Join(keep, ", "))
		sb.WriteString("\n\n")
	}

	sb.WriteString("ALSO DO NOT TRANSLATE:\n")
	sb.WriteString("- URLs, file paths, code snippets, commands\n")
	sb.WriteString("- Variable names, function names, class names\n")
	sb.WriteString("- Brand names, product names, proper nouns\n")
	sb.WriteString("- Text inside backticks (`code`)\n\n")

	sb.WriteString("CRITICAL - MARKER PRESERVATION RULES:\n")
	sb.WriteString("The text contains XML-like markers that MUST be preserved:\n")
	sb.WriteString("- Opening tags: <R0>, <R1>, <SEG0>, <CELL0-0-0-0>, etc.\n")
	sb.WriteString("- Closing tags: </R0>, </R1>, </SEG0>, </CELL0-0-0-0>, etc.\n\n")
	sb.WriteString("STRICT RULES:\n")
	sb.WriteString("1. COPY every marker EXACTLY (including numbers and format)\n")
	sb.WriteString("2. NEVER remove, modify, or merge markers\n")
	sb.WriteString("3. NEVER add new markers that don't exist in input\n")
	sb.WriteString("4. Translate ONLY the text between <Rx> and </Rx> tags\n")
	sb.WriteString("5. Keep whitespace inside markers exactly as input\n")
	sb.WriteString("6. If input has <R0>text</R0>, output MUST have <R0>translated</R0>\n\n")
	sb.WriteString("EXAMPLE:\n")
	sb.WriteString("Input:  <R0>Hello </R0><R1>world</R1>\n")
	sb.WriteString("Output: <R0>Xin chào </R0><R1>thế giới</R1>\n\n")
	sb.WriteString("WRONG OUTPUT (missing markers):\n")
	sb.WriteString("[X] Xin chào thế giới\n")
	sb.WriteString("[X] <R0>Xin chào thế giới</R0>")

	if b.context.Enabled() {
		if recent := b.context.Snapshot(); len(recent) > 0 {
			sb.WriteString("\n\nRECENT TRANSLATIONS (for terminology and style consistency):\n")
			for _, entry := range recent {
				fmt.Fprintf(&sb, "- %s\n", truncate(entry, 200))
			}
		}
	}

	return sb.String()
}

// UserPrompt 构建用户提示词
func (b *PromptBuilder) UserPrompt(text string) string {
	return "Translate the following text:\n\n" + text
}

// Messages 构建完整的消息数组
func (b *PromptBuilder) Messages(text string) []providers.Message {
	return []providers.Message{
		{Role: providers.RoleSystem, Content: b.SystemPrompt()},
		{Role: providers.RoleUser, Content: b.UserPrompt(text)},
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

package docs

import (
	"fmt"
	"regexp"
	"strings"
)

// 默认参与翻译的前置元数据字段
var defaultTranslatableFields = []string{"title", "description", "summary", "excerpt"}

var (
	codeBlockPattern  = regexp.MustCompile("(?s)```(\\w*)\\n(.*?)```")
	inlineCodePattern = regexp.MustCompile("`([^`]+)`")
	urlPattern        = regexp.MustCompile(`https?://[^\s<>\[\]()]+`)
	linkPattern       = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	imagePattern      = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
)

type codeBlock struct {
	lang string
	code string
}

type docLink struct {
	text string
	url  string
}

type docImage struct {
	alt string
	url string
}

// maskSet 记录被占位符替换掉的不可翻译片段，按遮蔽顺序保存，
// 重建时逆序还原。
type maskSet struct {
	codeBlocks  []codeBlock
	inlineCodes []string
	urls        []string
	links       []docLink
	images      []docImage

	// MDX 专用
	components []component
	jsxExprs   []string
}

// Document 解析后的 Markdown/MDX 文档。Body 是遮蔽了代码、链接等
// 不可翻译片段后的正文，翻译后经 Reconstruct 还原。
type Document struct {
	Frontmatter *Frontmatter
	Imports     []string
	Exports     []string
	Body        string

	masks maskSet
}

// MarkdownParser 结构保持的 Markdown 解析器：代码块、行内代码、
// URL、链接与图片在翻译期间以 __XXX_{i}__ 占位符保护。
type MarkdownParser struct {
	translatableFields []string
}

// NewMarkdownParser 创建解析器。fields 为空时使用默认的
// title/description/summary/excerpt。
func NewMarkdownParser(fields ...string) *MarkdownParser {
	if len(fields) == 0 {
		fields = defaultTranslatableFields
	}
	return &MarkdownParser{translatableFields: fields}
}

// TranslatableFields 参与翻译的前置元数据字段名
func (p *MarkdownParser) TranslatableFields() []string {
	return p.translatableFields
}

// Parse 解析 Markdown 内容
func (p *MarkdownParser) Parse(content string) (*Document, error) {
	doc := &Document{}
	doc.Frontmatter, content = splitFrontmatter(content)
	doc.Body = maskMarkdown(content, &doc.masks)
	return doc, nil
}

// Reconstruct 还原占位符并拼回完整文档
func (p *MarkdownParser) Reconstruct(doc *Document) (string, error) {
	var sb strings.Builder

	fm, err := doc.Frontmatter.Render()
	if err != nil {
		return "", err
	}
	sb.WriteString(fm)
	sb.WriteString(unmaskMarkdown(doc.Body, &doc.masks))

	return sb.String(), nil
}

// maskMarkdown 按固定顺序遮蔽不可翻译片段：代码块、行内代码、URL、
// 链接（链接文本保留参与翻译）、图片。
func maskMarkdown(content string, masks *maskSet) string {
	content = replaceGroups(codeBlockPattern, content, func(groups []string) string {
		placeholder := fmt.Sprintf("__CODE_BLOCK_%d__", len(masks.codeBlocks))
		masks.codeBlocks = append(masks.codeBlocks, codeBlock{lang: groups[1], code: groups[2]})
		return placeholder
	})

	content = replaceGroups(inlineCodePattern, content, func(groups []string) string {
		placeholder := fmt.Sprintf("__INLINE_CODE_%d__", len(masks.inlineCodes))
		masks.inlineCodes = append(masks.inlineCodes, groups[1])
		return placeholder
	})

	content = replaceGroups(urlPattern, content, func(groups []string) string {
		placeholder := fmt.Sprintf("__URL_%d__", len(masks.urls))
		masks.urls = append(masks.urls, groups[0])
		return placeholder
	})

	content = replaceGroups(linkPattern, content, func(groups []string) string {
		placeholder := fmt.Sprintf("__LINK_%d__", len(masks.links))
		masks.links = append(masks.links, docLink{text: groups[1], url: groups[2]})
		return fmt.Sprintf("[%s](%s)", groups[1], placeholder)
	})

	content = replaceGroups(imagePattern, content, func(groups []string) string {
		placeholder := fmt.Sprintf("__IMAGE_%d__", len(masks.images))
		masks.images = append(masks.images, docImage{alt: groups[1], url: groups[2]})
		return placeholder
	})

	return content
}

// unmaskMarkdown 逆遮蔽顺序还原占位符
func unmaskMarkdown(content string, masks *maskSet) string {
	for i, img := range masks.images {
		content = strings.ReplaceAll(content,
			fmt.Sprintf("__IMAGE_%d__", i),
			fmt.Sprintf("![%s](%s)", img.alt, img.url))
	}

	// 链接占位符只占 URL 位置，链接文本已随正文翻译
	for i, link := range masks.links {
		content = strings.ReplaceAll(content, fmt.Sprintf("__LINK_%d__", i), link.url)
	}

	for i, url := range masks.urls {
		content = strings.ReplaceAll(content, fmt.Sprintf("__URL_%d__", i), url)
	}

	for i, code := range masks.inlineCodes {
		content = strings.ReplaceAll(content,
			fmt.Sprintf("__INLINE_CODE_%d__", i),
			fmt.Sprintf("`%s`", code))
	}

	for i, block := range masks.codeBlocks {
		content = strings.ReplaceAll(content,
			fmt.Sprintf("__CODE_BLOCK_%d__", i),
			fmt.Sprintf("```%s\n%s```", block.lang, block.code))
	}

	return content
}

// replaceGroups 带捕获组的回调替换
func replaceGroups(re *regexp.Regexp, content string, fn func(groups []string) string) string {
	return re.ReplaceAllStringFunc(content, func(match string) string {
		return fn(re.FindStringSubmatch(match))
	})
}

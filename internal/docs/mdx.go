package docs

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
)

var (
	importPattern      = regexp.MustCompile(`(?m)^import\s+.*?(?:from\s+['"][^'"]+['"])?;?\s*$`)
	exportPattern      = regexp.MustCompile(`(?m)^export\s+.*?;?\s*$`)
	selfClosingPattern = regexp.MustCompile(`<([A-Z][a-zA-Z0-9]*)\s*([^>]*?)\s*/>`)
	jsxExprPattern     = regexp.MustCompile(`\{[^{}]*\}`)

	// 成对组件的闭合标签用反向引用匹配，标准库 regexp 不支持
	pairedComponentPattern = regexp2.MustCompile(`(?s)<([A-Z][a-zA-Z0-9]*)\s*([^>]*?)\s*>(.*?)</\1\s*>`, regexp2.None)
)

// component MDX 正文中被遮蔽的 JSX 组件
type component struct {
	name        string
	props       string
	content     string
	selfClosing bool
}

// MDXParser 在 Markdown 解析之上处理 MDX 特有结构：
// import/export 语句、JSX 组件与 {expr} 表达式。
type MDXParser struct {
	*MarkdownParser
}

// NewMDXParser 创建 MDX 解析器
func NewMDXParser(fields ...string) *MDXParser {
	return &MDXParser{MarkdownParser: NewMarkdownParser(fields...)}
}

// Parse 解析 MDX 内容
func (p *MDXParser) Parse(content string) (*Document, error) {
	doc := &Document{}
	doc.Frontmatter, content = splitFrontmatter(content)

	doc.Imports = importPattern.FindAllString(content, -1)
	for _, imp := range doc.Imports {
		content = strings.Replace(content, imp, "", 1)
	}

	doc.Exports = exportPattern.FindAllString(content, -1)
	for _, exp := range doc.Exports {
		content = strings.Replace(content, exp, "", 1)
	}

	content = maskComponents(content, &doc.masks)
	content = maskJSXExprs(content, &doc.masks)
	doc.Body = maskMarkdown(content, &doc.masks)

	return doc, nil
}

// Reconstruct 还原占位符并拼回完整 MDX 文档
func (p *MDXParser) Reconstruct(doc *Document) (string, error) {
	var sb strings.Builder

	fm, err := doc.Frontmatter.Render()
	if err != nil {
		return "", err
	}
	sb.WriteString(fm)

	if len(doc.Imports) > 0 {
		sb.WriteString(strings.Join(doc.Imports, "\n"))
		sb.WriteString("\n\n")
	}
	if len(doc.Exports) > 0 {
		sb.WriteString(strings.Join(doc.Exports, "\n"))
		sb.WriteString("\n\n")
	}

	body := unmaskMarkdown(doc.Body, &doc.masks)
	sb.WriteString(unmaskMDX(body, &doc.masks))

	return sb.String(), nil
}

// maskComponents 遮蔽 JSX 组件：先自闭合，再用反向引用匹配成对
// 组件（不处理同名嵌套）。组件内容不参与翻译。
func maskComponents(content string, masks *maskSet) string {
	content = replaceGroups(selfClosingPattern, content, func(groups []string) string {
		placeholder := fmt.Sprintf("__COMPONENT_%d__", len(masks.components))
		masks.components = append(masks.components, component{
			name:        groups[1],
			props:       groups[2],
			selfClosing: true,
		})
		return placeholder
	})

	replaced, err := pairedComponentPattern.ReplaceFunc(content, func(m regexp2.Match) string {
		placeholder := fmt.Sprintf("__COMPONENT_%d__", len(masks.components))
		masks.components = append(masks.components, component{
			name:    m.GroupByNumber(1).String(),
			props:   m.GroupByNumber(2).String(),
			content: m.GroupByNumber(3).String(),
		})
		return placeholder
	}, -1, -1)
	if err != nil {
		// 匹配失败时保留原文
		return content
	}
	return replaced
}

func maskJSXExprs(content string, masks *maskSet) string {
	return replaceGroups(jsxExprPattern, content, func(groups []string) string {
		placeholder := fmt.Sprintf("__JSX_EXPR_%d__", len(masks.jsxExprs))
		masks.jsxExprs = append(masks.jsxExprs, groups[0])
		return placeholder
	})
}

// unmaskMDX 还原 JSX 表达式与组件占位符
func unmaskMDX(content string, masks *maskSet) string {
	for i, expr := range masks.jsxExprs {
		content = strings.ReplaceAll(content, fmt.Sprintf("__JSX_EXPR_%d__", i), expr)
	}

	for i, comp := range masks.components {
		var rendered string
		switch {
		case comp.selfClosing && comp.props != "":
			rendered = fmt.Sprintf("<%s %s />", comp.name, comp.props)
		case comp.selfClosing:
			rendered = fmt.Sprintf("<%s />", comp.name)
		case comp.props != "":
			rendered = fmt.Sprintf("<%s %s>%s</%s>", comp.name, comp.props, comp.content, comp.name)
		default:
			rendered = fmt.Sprintf("<%s>%s</%s>", comp.name, comp.content, comp.name)
		}
		content = strings.ReplaceAll(content, fmt.Sprintf("__COMPONENT_%d__", i), rendered)
	}

	return content
}

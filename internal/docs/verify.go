package docs

import (
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"
)

// structureCounts 文档的结构指纹：标题、围栏代码块与链接数量
type structureCounts struct {
	headings   int
	codeFences int
	links      int
}

func countStructure(content string) structureCounts {
	md := goldmark.New(goldmark.WithExtensions(meta.Meta))
	root := md.Parser().Parse(text.NewReader([]byte(content)))

	var counts structureCounts
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindHeading:
			counts.headings++
		case ast.KindFencedCodeBlock:
			counts.codeFences++
		case ast.KindLink, ast.KindAutoLink:
			counts.links++
		}
		return ast.WalkContinue, nil
	})
	return counts
}

// VerifyStructure 对比翻译前后的结构指纹。不一致只告警不中断：
// 译文仍可用，但值得人工复核。
func VerifyStructure(source, translated, name string, logger *zap.Logger) bool {
	src := countStructure(source)
	got := countStructure(translated)
	if src == got {
		return true
	}

	logger.Warn("document structure drifted during translation",
		zap.String("file", name),
		zap.Int("source_headings", src.headings),
		zap.Int("translated_headings", got.headings),
		zap.Int("source_code_fences", src.codeFences),
		zap.Int("translated_code_fences", got.codeFences),
		zap.Int("source_links", src.links),
		zap.Int("translated_links", got.links),
	)
	return false
}

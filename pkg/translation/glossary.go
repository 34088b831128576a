package translation

import (
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// defaultKeepTerms 默认保持原样的技术术语
var defaultKeepTerms = []string{
	"API", "URL", "HTTP", "HTTPS", "JSON", "XML", "HTML", "CSS", "JavaScript",
	"TypeScript", "Python", "React", "Next.js", "Node.js", "npm", "yarn",
	"Git", "GitHub", "Docker", "Kubernetes", "AWS", "Azure", "GCP",
	"SQL", "NoSQL", "MongoDB", "PostgreSQL", "MySQL", "Redis",
	"REST", "GraphQL", "WebSocket", "OAuth", "JWT", "SSL", "TLS",
	"CI/CD", "DevOps", "Agile", "Scrum", "Sprint",
}

// Glossary 自定义术语表：source → target 的固定译法，
// 外加一组保持原样不翻译的术语。
type Glossary struct {
	Terms     map[string]string
	KeepTerms []string
}

// NewGlossary 创建空术语表（仅默认保留术语）
func NewGlossary() *Glossary {
	return &Glossary{
		Terms:     make(map[string]string),
		KeepTerms: defaultKeepTerms,
	}
}

// LoadGlossary 从 YAML 文件加载术语表，文件缺失时返回默认术语表
func LoadGlossary(path string) (*Glossary, error) {
	g := NewGlossary()
	if path == "" {
		return g, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return g, nil
		}
		return nil, err
	}

	var file struct {
		Terms map[string]string `yaml:"terms"`
		Keep  []string          `yaml:"keep"`
	}
	err = yaml.Unmarshal(raw, &file)
	if err != nil || (len(file.Terms) == 0 && len(file.Keep) == 0) {
		// 也接受扁平的 {source: target} 形式（未知键不会让结构化解析
		// 报错，所以空结果同样走这条回退路径）
		flat := make(map[string]string)
		if err2 := yaml.Unmarshal(raw, &flat); err2 != nil {
			if err != nil {
				return nil, err
			}
			return nil, err2
		}
		g.Terms = flat
		return g, nil
	}

	for k, v := range file.Terms {
		g.Terms[k] = v
	}
	g.KeepTerms = append(g.KeepTerms, file.Keep...)
	return g, nil
}

// SortedTerms 按源术语排序返回词条，保证提示词稳定可复现
func (g *Glossary) SortedTerms() [][2]string {
	keys := make([]string, 0, len(g.Terms))
	for k := range g.Terms {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, g.Terms[k]})
	}
	return out
}

// Size 词条数量
func (g *Glossary) Size() int {
	return len(g.Terms)
}

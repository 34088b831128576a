package docs

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FrontmatterFormat 前置元数据的序列化格式
type FrontmatterFormat string

const (
	FrontmatterYAML FrontmatterFormat = "yaml"
	FrontmatterTOML FrontmatterFormat = "toml"
)

var (
	yamlFrontmatterPattern = regexp.MustCompile(`(?s)\A---\s*\n(.*?)\n---\s*\n`)
	tomlFrontmatterPattern = regexp.MustCompile(`(?s)\A\+\+\+\s*\n(.*?)\n\+\+\+\s*\n`)
)

// Frontmatter 文档前置元数据。YAML 以节点树保存以维持键序，
// TOML 解码为映射（BurntSushi 编码器按键排序输出）。
type Frontmatter struct {
	Format FrontmatterFormat

	node   yaml.Node
	fields map[string]any
}

// splitFrontmatter 从文档开头剥离 YAML（---）或 TOML（+++）前置元数据。
// 解析失败时按无前置元数据处理，返回原内容。
func splitFrontmatter(content string) (*Frontmatter, string) {
	if m := yamlFrontmatterPattern.FindStringSubmatch(content); m != nil {
		fm := &Frontmatter{Format: FrontmatterYAML}
		if err := yaml.Unmarshal([]byte(m[1]), &fm.node); err != nil {
			return nil, content
		}
		if fm.mapping() == nil {
			return nil, content
		}
		return fm, content[len(m[0]):]
	}

	if m := tomlFrontmatterPattern.FindStringSubmatch(content); m != nil {
		fm := &Frontmatter{Format: FrontmatterTOML, fields: map[string]any{}}
		if err := toml.Unmarshal([]byte(m[1]), &fm.fields); err != nil {
			return nil, content
		}
		return fm, content[len(m[0]):]
	}

	return nil, content
}

func (f *Frontmatter) mapping() *yaml.Node {
	if f.node.Kind != yaml.DocumentNode || len(f.node.Content) == 0 {
		return nil
	}
	if root := f.node.Content[0]; root.Kind == yaml.MappingNode {
		return root
	}
	return nil
}

// Get 读取顶层字符串字段的值
func (f *Frontmatter) Get(field string) (string, bool) {
	if f == nil {
		return "", false
	}

	if f.Format == FrontmatterTOML {
		if v, ok := f.fields[field].(string); ok {
			return v, true
		}
		return "", false
	}

	m := f.mapping()
	if m == nil {
		return "", false
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, value := m.Content[i], m.Content[i+1]
		if key.Value == field && value.Kind == yaml.ScalarNode && value.Tag == "!!str" {
			return value.Value, true
		}
	}
	return "", false
}

// Set 覆写顶层字符串字段的值，字段不存在时忽略
func (f *Frontmatter) Set(field, value string) {
	if f == nil {
		return
	}

	if f.Format == FrontmatterTOML {
		if _, ok := f.fields[field].(string); ok {
			f.fields[field] = value
		}
		return
	}

	m := f.mapping()
	if m == nil {
		return
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, node := m.Content[i], m.Content[i+1]
		if key.Value == field && node.Kind == yaml.ScalarNode && node.Tag == "!!str" {
			node.Value = value
			node.Style = 0
			return
		}
	}
}

// Render 重新序列化为带分隔符的前置元数据块
func (f *Frontmatter) Render() (string, error) {
	if f == nil {
		return "", nil
	}

	if f.Format == FrontmatterTOML {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(f.fields); err != nil {
			return "", fmt.Errorf("encode frontmatter: %w", err)
		}
		body := strings.TrimRight(buf.String(), "\n")
		return "+++\n" + body + "\n+++\n\n", nil
	}

	raw, err := yaml.Marshal(&f.node)
	if err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	return "---\n" + string(raw) + "---\n\n", nil
}

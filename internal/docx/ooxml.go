// Package docx 实现 DOCX 的结构化提取与回注：正文段落、表格单元格、
// 图表与 SmartArt 的文本走翻译流水线，其余字节原样保留。
package docx

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// OOXML 命名空间
const (
	wordNS  = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	drawNS  = "http://schemas.openxmlformats.org/drawingml/2006/main"
	chartNS = "http://schemas.openxmlformats.org/drawingml/2006/chart"
)

// xmlNode 保序的通用 XML 树节点。encoding/xml 的结构体映射在这里不够用：
// 提取与回注都依赖元素在文档中的出现顺序。
type xmlNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Content string     `xml:",chardata"`
	Nodes   []*xmlNode `xml:",any"`
}

func parseXML(raw []byte) (*xmlNode, error) {
	var root xmlNode
	if err := xml.Unmarshal(raw, &root); err != nil {
		return nil, err
	}
	return &root, nil
}

func (n *xmlNode) is(space, local string) bool {
	return n.XMLName.Local == local && n.XMLName.Space == space
}

// children 返回指定名称的直接子节点
func (n *xmlNode) children(space, local string) []*xmlNode {
	var out []*xmlNode
	for _, c := range n.Nodes {
		if c.is(space, local) {
			out = append(out, c)
		}
	}
	return out
}

// child 返回第一个匹配的直接子节点
func (n *xmlNode) child(space, local string) *xmlNode {
	for _, c := range n.Nodes {
		if c.is(space, local) {
			return c
		}
	}
	return nil
}

// walk 前序深度优先遍历所有后代（不含 n 本身）
func (n *xmlNode) walk(fn func(*xmlNode)) {
	for _, c := range n.Nodes {
		fn(c)
		c.walk(fn)
	}
}

// descendants 按文档顺序收集所有匹配的后代
func (n *xmlNode) descendants(space, local string) []*xmlNode {
	var out []*xmlNode
	n.walk(func(c *xmlNode) {
		if c.is(space, local) {
			out = append(out, c)
		}
	})
	return out
}

// hasDescendant 是否存在匹配的后代
func (n *xmlNode) hasDescendant(space, local string) bool {
	found := false
	n.walk(func(c *xmlNode) {
		if c.is(space, local) {
			found = true
		}
	})
	return found
}

// toggleOn 解析 OOXML 的开关属性：元素出现即为开，
// 除非 w:val 显式给出否定值。
func toggleOn(n *xmlNode) bool {
	if n == nil {
		return false
	}
	for _, a := range n.Attrs {
		if a.Name.Local == "val" {
			switch strings.ToLower(a.Value) {
			case "false", "0", "none":
				return false
			}
		}
	}
	return true
}

func attrVal(n *xmlNode, local string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func escapeXML(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

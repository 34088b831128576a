// Package marker 实现基于合成标记的分段/重组协议。
//
// 每个可翻译单元被 <TAG{id}>...</TAG{id}> 包裹后送入 LLM，返回后按同样的
// 标记切回。标记词汇表是封闭的（R/SEG/CELL/CHART/SMART）且保证不嵌套：
// 结构包裹标记（SEG、CELL、CHART、SMART）内部只会出现 R 标记或纯空白，
// 因此正则扫描是安全的，不需要真正的解析器。
package marker

import (
	"fmt"
	"regexp"
	"strings"
)

// 标记标签词汇表
const (
	TagRun      = "R"     // 单个格式 run
	TagSegment  = "SEG"   // 正文段落
	TagCell     = "CELL"  // 表格单元格，复合 id：table-row-cell-para
	TagChart    = "CHART" // 图表元素
	TagSmartArt = "SMART" // SmartArt 元素
)

// openTagPattern 匹配任意开始标记，如 <R0>、<SEG12>、<CELL0-1-2-0>
var openTagPattern = regexp.MustCompile(`<[A-Z]+\d[^>]*>`)

// Wrap 为每个非空白单元按出现顺序分配稠密的 R 标记（每次请求从 0 开始，
// 而不是全局编号，这样每次调用里 LLM 看到的标记词汇都很短）。
// 纯空白单元原样拼接且不进入可翻译索引列表。
// 返回拼接后的标记文本和获得标记的单元在 units 中的原始下标。
func Wrap(units []string) (string, []int) {
	var b strings.Builder
	translatable := make([]int, 0, len(units))

	markerIdx := 0
	for i, text := range units {
		if strings.TrimSpace(text) == "" {
			b.WriteString(text)
			continue
		}
		fmt.Fprintf(&b, "<%s%d>%s</%s%d>", TagRun, markerIdx, text, TagRun, markerIdx)
		translatable = append(translatable, i)
		markerIdx++
	}

	return b.String(), translatable
}

// Unwrap 按 Wrap 分配的稠密标记从译文中提取每个单元。
// 某个标记缺失时，该单元回退到原文并将整体 success 置为 false，
// 但不中断其余单元的提取（部分降级而非整批失败）。
// 返回的切片与 units 等长，未标记的空白单元保持原文。
func Unwrap(marked string, units []string, translatable []int) ([]string, bool) {
	out := make([]string, len(units))
	copy(out, units)

	success := true
	for markerIdx, unitIdx := range translatable {
		text, ok := Extract(marked, TagRun, fmt.Sprintf("%d", markerIdx))
		if !ok {
			success = false
			continue
		}
		out[unitIdx] = text
	}

	return out, success
}

// ValidateIntegrity 检查原文中出现的所有开始标记是否都出现在译文中。
// 这是翻译引擎决定重试还是接受一次调用结果的唯一闸门。
func ValidateIntegrity(original, translated string) bool {
	markers := openTagPattern.FindAllString(original, -1)
	if len(markers) == 0 {
		return true
	}

	for _, m := range markers {
		if !strings.Contains(translated, m) {
			return false
		}
	}
	return true
}

// WrapBlock 用结构包裹标记包住已标记的 run 文本，内容独占行：
// <SEG0>\n...\n</SEG0>
func WrapBlock(tag, id, inner string) string {
	return fmt.Sprintf("<%s%s>\n%s\n</%s%s>", tag, id, inner, tag, id)
}

// WrapInline 用结构标记包住单行文本（图表与 SmartArt 元素）：
// <CHART0-title-0>...</CHART0-title-0>
func WrapInline(tag, id, text string) string {
	return fmt.Sprintf("<%s%s>%s</%s%s>", tag, id, text, tag, id)
}

// Extract 提取指定标记对之间的内容。id 可能包含连字符（CELL 复合 id），
// 因此参与正则前必须转义。
func Extract(marked, tag, id string) (string, bool) {
	open := regexp.QuoteMeta(fmt.Sprintf("<%s%s>", tag, id))
	close := regexp.QuoteMeta(fmt.Sprintf("</%s%s>", tag, id))
	re := regexp.MustCompile(`(?s)` + open + `(.*?)` + close)

	m := re.FindStringSubmatch(marked)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractBlock 提取结构包裹标记的内容并去掉 WrapBlock 加入的换行
func ExtractBlock(marked, tag, id string) (string, bool) {
	inner, ok := Extract(marked, tag, id)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(inner), true
}

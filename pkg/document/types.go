package document

import "strings"

// RunInfo 表示段落内共享同一套格式属性的连续文本片段。
// 提取阶段会把格式完全相同的相邻 run 合并为一个，以减少标记数量。
// TranslatedText 在翻译引擎填充之前为空，重建时回退到 Text。
type RunInfo struct {
	Text           string `json:"text"`
	Bold           bool   `json:"bold"`
	Italic         bool   `json:"italic"`
	Underline      bool   `json:"underline"`
	Superscript    bool   `json:"superscript"`
	Subscript      bool   `json:"subscript"`
	TranslatedText string `json:"translated_text,omitempty"`
}

// SameFormat 判断两个 run 的格式属性是否完全一致
func (r RunInfo) SameFormat(other RunInfo) bool {
	return r.Bold == other.Bold &&
		r.Italic == other.Italic &&
		r.Underline == other.Underline &&
		r.Superscript == other.Superscript &&
		r.Subscript == other.Subscript
}

// Output 返回重建时应写入文档的文本
func (r RunInfo) Output() string {
	if r.TranslatedText != "" {
		return r.TranslatedText
	}
	return r.Text
}

// TextSegment 正文段落片段
type TextSegment struct {
	SegIdx            int       `json:"seg_idx"`
	FullText          string    `json:"full_text"`
	HasEmbeddedObject bool      `json:"has_embedded_object"`
	Runs              []RunInfo `json:"runs_list"`
}

// TableCellSegment 表格单元格内的一个段落
type TableCellSegment struct {
	TableIdx int       `json:"table_idx"`
	RowIdx   int       `json:"row_idx"`
	CellIdx  int       `json:"cell_idx"`
	ParaIdx  int       `json:"para_idx"`
	Runs     []RunInfo `json:"runs_list"`
}

// ChartElementType 图表元素类型
type ChartElementType string

const (
	ChartTitle ChartElementType = "title"
	ChartValue ChartElementType = "value"
)

// ChartSegment 图表中的一个文本元素（标题或非数值的数据标签）
type ChartSegment struct {
	ChartIdx       int              `json:"chart_idx"`
	ElementType    ChartElementType `json:"element_type"`
	ElementIdx     int              `json:"element_idx"`
	Text           string           `json:"text"`
	TranslatedText string           `json:"translated_text,omitempty"`
	SourceFile     string           `json:"file_path"`
}

// Output 返回重建时应写入图表的文本
func (s ChartSegment) Output() string {
	if s.TranslatedText != "" {
		return s.TranslatedText
	}
	return s.Text
}

// SmartArtSegment SmartArt 图示中的一个文本元素
type SmartArtSegment struct {
	DiagramIdx     int    `json:"smartart_idx"`
	ElementIdx     int    `json:"element_idx"`
	Text           string `json:"text"`
	TranslatedText string `json:"translated_text,omitempty"`
	SourceFile     string `json:"file_path"`
}

// Output 返回重建时应写入图示的文本
func (s SmartArtSegment) Output() string {
	if s.TranslatedText != "" {
		return s.TranslatedText
	}
	return s.Text
}

// CheckpointData 是提取与翻译阶段之间的唯一事实来源。
// 提取器创建它，翻译引擎原地填充 translated_text，注入器只读。
type CheckpointData struct {
	TextSegments      []TextSegment      `json:"text_segments"`
	TableCellSegments []TableCellSegment `json:"table_cell_segments"`
	ChartSegments     []ChartSegment     `json:"chart_segments"`
	SmartArtSegments  []SmartArtSegment  `json:"smartart_segments"`
}

// TotalSegments 返回所有类别的片段总数
func (c *CheckpointData) TotalSegments() int {
	return len(c.TextSegments) + len(c.TableCellSegments) +
		len(c.ChartSegments) + len(c.SmartArtSegments)
}

// MergeRuns 合并格式完全相同的相邻 run，空文本的 run 被丢弃
func MergeRuns(runs []RunInfo) []RunInfo {
	merged := make([]RunInfo, 0, len(runs))
	for _, run := range runs {
		if run.Text == "" {
			continue
		}
		if n := len(merged); n > 0 && merged[n-1].SameFormat(run) {
			merged[n-1].Text += run.Text
			continue
		}
		merged = append(merged, run)
	}
	return merged
}

// JoinRuns 拼接所有 run 的输出文本
func JoinRuns(runs []RunInfo) string {
	var b strings.Builder
	for _, run := range runs {
		b.WriteString(run.Output())
	}
	return b.String()
}

// IsNumeric 判断文本是否为纯数值（图表数据中的数字不需要翻译）
func IsNumeric(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	text = strings.TrimPrefix(text, "-")
	text = strings.TrimPrefix(text, "+")
	if text == "" {
		return false
	}
	nonDigit := 0
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' || r == ',' || r == '%':
			nonDigit++
		default:
			return false
		}
	}
	return nonDigit < len(text)
}

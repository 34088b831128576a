package docx

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/wordflux/wordflux/pkg/document"
)

// Extractor 从 DOCX 中提取可翻译内容。
// 正文段落与表格单元格来自 word/document.xml，图表与 SmartArt 直接
// 读取包内对应的 XML 部件。
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor 创建提取器
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract 提取全部可翻译内容。
// seg_idx 对正文所有段落连续编号（含空段落），空段落不产生片段，
// 这样编号在提取与回注之间保持稳定。
func (e *Extractor) Extract(path string) (*document.CheckpointData, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx failed: %w", err)
	}
	defer zr.Close()

	data := &document.CheckpointData{}

	body, err := documentBody(&zr.Reader)
	if err != nil {
		return nil, err
	}

	segIdx := 0
	tableIdx := 0
	for _, child := range body.Nodes {
		switch {
		case child.is(wordNS, "p"):
			e.extractParagraph(data, child, segIdx)
			segIdx++
		case child.is(wordNS, "tbl"):
			e.extractTable(data, child, tableIdx)
			tableIdx++
		}
	}

	e.extractCharts(data, &zr.Reader)
	e.extractSmartArts(data, &zr.Reader)

	e.logger.Info("extraction complete",
		zap.String("file", path),
		zap.Int("text_segments", len(data.TextSegments)),
		zap.Int("table_cells", len(data.TableCellSegments)),
		zap.Int("chart_elements", len(data.ChartSegments)),
		zap.Int("smartart_elements", len(data.SmartArtSegments)))

	return data, nil
}

// documentBody 读取并解析 word/document.xml 的 body 节点
func documentBody(zr *zip.Reader) (*xmlNode, error) {
	raw, err := readEntry(zr, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("not a docx file: %w", err)
	}

	root, err := parseXML(raw)
	if err != nil {
		return nil, fmt.Errorf("document.xml parse failed: %w", err)
	}

	body := root.child(wordNS, "body")
	if body == nil {
		return nil, fmt.Errorf("document.xml has no body element")
	}
	return body, nil
}

func readEntry(zr *zip.Reader, name string) ([]byte, error) {
	f, err := zr.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (e *Extractor) extractParagraph(data *document.CheckpointData, p *xmlNode, segIdx int) {
	runs, fullText := paragraphRuns(p)
	if fullText == "" {
		return
	}

	data.TextSegments = append(data.TextSegments, document.TextSegment{
		SegIdx:            segIdx,
		FullText:          fullText,
		HasEmbeddedObject: p.hasDescendant(wordNS, "drawing"),
		Runs:              runs,
	})
}

func (e *Extractor) extractTable(data *document.CheckpointData, tbl *xmlNode, tableIdx int) {
	for rowIdx, row := range tbl.children(wordNS, "tr") {
		for cellIdx, cell := range row.children(wordNS, "tc") {
			for paraIdx, p := range cell.children(wordNS, "p") {
				runs, fullText := paragraphRuns(p)
				if fullText == "" {
					continue
				}
				data.TableCellSegments = append(data.TableCellSegments, document.TableCellSegment{
					TableIdx: tableIdx,
					RowIdx:   rowIdx,
					CellIdx:  cellIdx,
					ParaIdx:  paraIdx,
					Runs:     runs,
				})
			}
		}
	}
}

// paragraphRuns 提取段落的 run 列表（相邻同格式合并）与修剪后的全文
func paragraphRuns(p *xmlNode) ([]document.RunInfo, string) {
	var raw []document.RunInfo
	var full strings.Builder

	for _, r := range p.children(wordNS, "r") {
		text := runText(r)
		full.WriteString(text)
		if text == "" {
			continue
		}
		raw = append(raw, runInfo(r, text))
	}

	return document.MergeRuns(raw), strings.TrimSpace(full.String())
}

func runText(r *xmlNode) string {
	var b strings.Builder
	for _, t := range r.children(wordNS, "t") {
		b.WriteString(t.Content)
	}
	return b.String()
}

func runInfo(r *xmlNode, text string) document.RunInfo {
	info := document.RunInfo{Text: text}

	props := r.child(wordNS, "rPr")
	if props == nil {
		return info
	}

	info.Bold = toggleOn(props.child(wordNS, "b"))
	info.Italic = toggleOn(props.child(wordNS, "i"))
	info.Underline = toggleOn(props.child(wordNS, "u"))

	switch attrVal(props.child(wordNS, "vertAlign"), "val") {
	case "superscript":
		info.Superscript = true
	case "subscript":
		info.Subscript = true
	}

	return info
}

// chartEntries 包内图表部件列表，按归档顺序（回注按同样的顺序对齐下标）
func chartEntries(zr *zip.Reader) []string {
	return entriesMatching(zr, "chart")
}

func diagramEntries(zr *zip.Reader) []string {
	return entriesMatching(zr, "diagram")
}

func entriesMatching(zr *zip.Reader, substr string) []string {
	var out []string
	for _, f := range zr.File {
		name := strings.ToLower(f.Name)
		if strings.Contains(name, substr) && strings.HasSuffix(name, ".xml") {
			out = append(out, f.Name)
		}
	}
	return out
}

// extractCharts 提取图表标题与非数值的数据标签。
// 单个部件解析失败只记警告，不影响其余部件。
func (e *Extractor) extractCharts(data *document.CheckpointData, zr *zip.Reader) {
	for chartIdx, name := range chartEntries(zr) {
		raw, err := readEntry(zr, name)
		if err != nil {
			e.logger.Warn("chart part unreadable", zap.String("part", name), zap.Error(err))
			continue
		}
		root, err := parseXML(raw)
		if err != nil {
			e.logger.Warn("chart part parse failed", zap.String("part", name), zap.Error(err))
			continue
		}

		for titleIdx, title := range root.descendants(chartNS, "title") {
			for _, t := range title.descendants(drawNS, "t") {
				text := strings.TrimSpace(t.Content)
				if text == "" {
					continue
				}
				data.ChartSegments = append(data.ChartSegments, document.ChartSegment{
					ChartIdx:    chartIdx,
					ElementType: document.ChartTitle,
					ElementIdx:  titleIdx,
					Text:        text,
					SourceFile:  name,
				})
			}
		}

		vIdx := 0
		for _, v := range root.descendants(chartNS, "v") {
			text := strings.TrimSpace(v.Content)
			if text == "" || document.IsNumeric(text) {
				continue
			}
			data.ChartSegments = append(data.ChartSegments, document.ChartSegment{
				ChartIdx:    chartIdx,
				ElementType: document.ChartValue,
				ElementIdx:  vIdx,
				Text:        text,
				SourceFile:  name,
			})
			vIdx++
		}
	}
}

// extractSmartArts 提取 SmartArt 文本元素。
// element_idx 对部件内所有 a:t 节点编号（含空节点），保证回注对齐。
func (e *Extractor) extractSmartArts(data *document.CheckpointData, zr *zip.Reader) {
	for diagramIdx, name := range diagramEntries(zr) {
		raw, err := readEntry(zr, name)
		if err != nil {
			e.logger.Warn("diagram part unreadable", zap.String("part", name), zap.Error(err))
			continue
		}
		root, err := parseXML(raw)
		if err != nil {
			e.logger.Warn("diagram part parse failed", zap.String("part", name), zap.Error(err))
			continue
		}

		for elemIdx, t := range root.descendants(drawNS, "t") {
			text := strings.TrimSpace(t.Content)
			if text == "" {
				continue
			}
			data.SmartArtSegments = append(data.SmartArtSegments, document.SmartArtSegment{
				DiagramIdx: diagramIdx,
				ElementIdx: elemIdx,
				Text:       text,
				SourceFile: name,
			})
		}
	}
}

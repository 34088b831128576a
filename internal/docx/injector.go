package docx

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/wordflux/wordflux/pkg/document"
)

// Injector 把译文写回 DOCX：输出包与输入逐字节一致，只有承载译文的
// 文本节点被替换。run 合并组的首个 w:t 承载整组译文，被并掉的 run 清空，
// 以保持组内格式由首个 run 决定。
type Injector struct {
	logger *zap.Logger
}

// NewInjector 创建回注器
func NewInjector(logger *zap.Logger) *Injector {
	return &Injector{logger: logger}
}

// Inject 读取原始 DOCX，替换译文后写出到 outputPath。
// 文本节点的定位通过重放提取遍历完成，因此回注不要求检查点以外的
// 任何额外状态。
func (i *Injector) Inject(inputPath string, data *document.CheckpointData, outputPath string) error {
	zr, err := zip.OpenReader(inputPath)
	if err != nil {
		return fmt.Errorf("open docx failed: %w", err)
	}
	defer zr.Close()

	modified := make(map[string][]byte)

	docRewritten, err := i.rewriteDocument(&zr.Reader, data)
	if err != nil {
		return err
	}
	modified["word/document.xml"] = docRewritten

	for part, raw := range i.rewriteCharts(&zr.Reader, data) {
		modified[part] = raw
	}
	for part, raw := range i.rewriteDiagrams(&zr.Reader, data) {
		modified[part] = raw
	}

	return writeZip(&zr.Reader, outputPath, modified)
}

// rewriteDocument 替换 word/document.xml 中段落与表格单元格的 run 文本
func (i *Injector) rewriteDocument(zr *zip.Reader, data *document.CheckpointData) ([]byte, error) {
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

	texts := make(map[int]document.TextSegment, len(data.TextSegments))
	for _, seg := range data.TextSegments {
		texts[seg.SegIdx] = seg
	}
	cells := make(map[[4]int]document.TableCellSegment, len(data.TableCellSegments))
	for _, cell := range data.TableCellSegments {
		cells[[4]int{cell.TableIdx, cell.RowIdx, cell.CellIdx, cell.ParaIdx}] = cell
	}

	// 重放提取遍历，为需要替换的 w:t 节点计算新文本
	byNode := make(map[*xmlNode]string)
	segIdx := 0
	tableIdx := 0
	for _, child := range body.Nodes {
		switch {
		case child.is(wordNS, "p"):
			if seg, ok := texts[segIdx]; ok {
				assignRunTexts(child, seg.Runs, byNode)
			}
			segIdx++
		case child.is(wordNS, "tbl"):
			for rowIdx, row := range child.children(wordNS, "tr") {
				for cellIdx, cell := range row.children(wordNS, "tc") {
					for paraIdx, p := range cell.children(wordNS, "p") {
						if seg, ok := cells[[4]int{tableIdx, rowIdx, cellIdx, paraIdx}]; ok {
							assignRunTexts(p, seg.Runs, byNode)
						}
					}
				}
			}
			tableIdx++
		}
	}

	// 节点指针 → 全文档 w:t 出现序号
	byIndex := make(map[int]string)
	for idx, t := range root.descendants(wordNS, "t") {
		if text, ok := byNode[t]; ok {
			byIndex[idx] = text
		}
	}

	out, count := rewriteTagged(raw, "w:t", byIndex)
	if expected := len(root.descendants(wordNS, "t")); count != expected {
		return nil, fmt.Errorf("document.xml uses unexpected namespace prefixes (%d text nodes, matched %d)", expected, count)
	}
	return out, nil
}

// assignRunTexts 重放 run 合并，把每个合并组的译文放进组内首个 w:t，
// 其余 w:t 清空。合并算法与提取器一致，因此组下标与检查点对齐。
func assignRunTexts(p *xmlNode, runs []document.RunInfo, byNode map[*xmlNode]string) {
	group := -1
	var groupFmt document.RunInfo

	for _, r := range p.children(wordNS, "r") {
		text := runText(r)
		if text == "" {
			continue
		}
		info := runInfo(r, text)

		newGroup := group < 0 || !info.SameFormat(groupFmt)
		if newGroup {
			group++
			groupFmt = info
		}
		if group >= len(runs) {
			return
		}

		for ti, t := range r.children(wordNS, "t") {
			if newGroup && ti == 0 {
				byNode[t] = runs[group].Output()
			} else {
				byNode[t] = ""
			}
		}
	}
}

// rewriteCharts 替换图表部件中的标题与数据标签文本
func (i *Injector) rewriteCharts(zr *zip.Reader, data *document.CheckpointData) map[string][]byte {
	byFile := make(map[string][]document.ChartSegment)
	for _, seg := range data.ChartSegments {
		byFile[seg.SourceFile] = append(byFile[seg.SourceFile], seg)
	}

	out := make(map[string][]byte)
	for part, segs := range byFile {
		raw, err := readEntry(zr, part)
		if err != nil {
			i.logger.Warn("chart part unreadable, skipping injection", zap.String("part", part), zap.Error(err))
			continue
		}
		root, err := parseXML(raw)
		if err != nil {
			i.logger.Warn("chart part parse failed, skipping injection", zap.String("part", part), zap.Error(err))
			continue
		}

		titleRepl := make(map[*xmlNode]string)
		for titleIdx, title := range root.descendants(chartNS, "title") {
			matching := filterCharts(segs, document.ChartTitle, titleIdx)
			j := 0
			for _, t := range title.descendants(drawNS, "t") {
				if strings.TrimSpace(t.Content) == "" {
					continue
				}
				if j < len(matching) {
					titleRepl[t] = matching[j].Output()
					j++
				}
			}
		}

		byIndexT := make(map[int]string)
		for idx, t := range root.descendants(drawNS, "t") {
			if text, ok := titleRepl[t]; ok {
				byIndexT[idx] = text
			}
		}

		byIndexV := make(map[int]string)
		vIdx := 0
		for idx, v := range root.descendants(chartNS, "v") {
			text := strings.TrimSpace(v.Content)
			if text == "" || document.IsNumeric(text) {
				continue
			}
			for _, seg := range segs {
				if seg.ElementType == document.ChartValue && seg.ElementIdx == vIdx {
					byIndexV[idx] = seg.Output()
					break
				}
			}
			vIdx++
		}

		rewritten, countT := rewriteTagged(raw, "a:t", byIndexT)
		if countT != len(root.descendants(drawNS, "t")) {
			i.logger.Warn("chart part uses unexpected prefixes, skipping injection", zap.String("part", part))
			continue
		}
		rewritten, countV := rewriteTagged(rewritten, "c:v", byIndexV)
		if countV != len(root.descendants(chartNS, "v")) {
			i.logger.Warn("chart part uses unexpected prefixes, skipping injection", zap.String("part", part))
			continue
		}
		out[part] = rewritten
	}
	return out
}

func filterCharts(segs []document.ChartSegment, elemType document.ChartElementType, elemIdx int) []document.ChartSegment {
	var out []document.ChartSegment
	for _, seg := range segs {
		if seg.ElementType == elemType && seg.ElementIdx == elemIdx {
			out = append(out, seg)
		}
	}
	return out
}

// rewriteDiagrams 替换 SmartArt 部件中的文本元素
func (i *Injector) rewriteDiagrams(zr *zip.Reader, data *document.CheckpointData) map[string][]byte {
	byFile := make(map[string][]document.SmartArtSegment)
	for _, seg := range data.SmartArtSegments {
		byFile[seg.SourceFile] = append(byFile[seg.SourceFile], seg)
	}

	out := make(map[string][]byte)
	for part, segs := range byFile {
		raw, err := readEntry(zr, part)
		if err != nil {
			i.logger.Warn("diagram part unreadable, skipping injection", zap.String("part", part), zap.Error(err))
			continue
		}
		root, err := parseXML(raw)
		if err != nil {
			i.logger.Warn("diagram part parse failed, skipping injection", zap.String("part", part), zap.Error(err))
			continue
		}

		byIndex := make(map[int]string)
		for elemIdx := range root.descendants(drawNS, "t") {
			for _, seg := range segs {
				if seg.ElementIdx == elemIdx {
					byIndex[elemIdx] = seg.Output()
					break
				}
			}
		}

		rewritten, count := rewriteTagged(raw, "a:t", byIndex)
		if count != len(root.descendants(drawNS, "t")) {
			i.logger.Warn("diagram part uses unexpected prefixes, skipping injection", zap.String("part", part))
			continue
		}
		out[part] = rewritten
	}
	return out
}

// rewriteTagged 按出现顺序替换第 k 个 <tag> 元素的内容（k 在 repl 中时）。
// 返回重写后的字节与匹配到的元素总数，调用方用总数校验前缀假设。
func rewriteTagged(raw []byte, tag string, repl map[int]string) ([]byte, int) {
	pattern := regexp.MustCompile(`(?s)<` + regexp.QuoteMeta(tag) + `(\s[^>]*)?(/>|>.*?</` + regexp.QuoteMeta(tag) + `>)`)

	idx := -1
	out := pattern.ReplaceAllStringFunc(string(raw), func(m string) string {
		idx++
		text, ok := repl[idx]
		if !ok {
			return m
		}

		sm := pattern.FindStringSubmatch(m)
		attrs := sm[1]
		if sm[2] == "/>" && text == "" {
			return m
		}

		// 译文带前后空白时需要 xml:space，否则 Word 会修剪
		if strings.TrimSpace(text) != text && !strings.Contains(attrs, "xml:space") {
			attrs += ` xml:space="preserve"`
		}
		return "<" + tag + attrs + ">" + escapeXML(text) + "</" + tag + ">"
	})

	return []byte(out), idx + 1
}

// writeZip 写出新包：被修改的部件用新内容，其余部件原样复制
func writeZip(zr *zip.Reader, outputPath string, modified map[string][]byte) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output failed: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, f := range zr.File {
		header := &zip.FileHeader{
			Name:     f.Name,
			Method:   f.Method,
			Modified: f.Modified,
		}
		w, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("write entry %s failed: %w", f.Name, err)
		}

		if raw, ok := modified[f.Name]; ok {
			if _, err := w.Write(raw); err != nil {
				return fmt.Errorf("write entry %s failed: %w", f.Name, err)
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("read entry %s failed: %w", f.Name, err)
		}
		if _, err := io.Copy(w, rc); err != nil {
			rc.Close()
			return fmt.Errorf("copy entry %s failed: %w", f.Name, err)
		}
		rc.Close()
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize output failed: %w", err)
	}
	return nil
}

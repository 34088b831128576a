package translation

import (
	"sort"

	"github.com/wordflux/wordflux/pkg/document"
)

// ChunkTextSegments 按累计长度贪心打包段落片段。
// 追加会越界且当前块非空时关闭当前块；单个片段永远不会被拆开，
// 因此超长片段独占一个块（块大小上界仅在这种情况下被突破）。
func ChunkTextSegments(segments []document.TextSegment, maxChunkSize int) [][]document.TextSegment {
	var chunks [][]document.TextSegment
	var current []document.TextSegment
	currentSize := 0

	for _, seg := range segments {
		segSize := len(seg.FullText)
		if currentSize+segSize > maxChunkSize && len(current) > 0 {
			chunks = append(chunks, current)
			current = nil
			currentSize = 0
		}
		current = append(current, seg)
		currentSize += segSize
	}

	if len(current) > 0 {
		chunks = append(chunks, current)
	}

	return chunks
}

// GroupTableCells 按 table_idx 分组。每张表不论大小都是一个请求：
// 表内上下文（如列头）对翻译质量的影响大于请求体积的经济性。
// 返回按表序号排序的组，保证请求顺序可复现。
func GroupTableCells(segments []document.TableCellSegment) []TableGroup {
	byTable := make(map[int][]int)
	for i, seg := range segments {
		byTable[seg.TableIdx] = append(byTable[seg.TableIdx], i)
	}

	groups := make([]TableGroup, 0, len(byTable))
	for idx, cells := range byTable {
		groups = append(groups, TableGroup{TableIdx: idx, CellIndices: cells})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].TableIdx < groups[j].TableIdx })
	return groups
}

// TableGroup 一张表的所有单元格片段（按原切片下标引用）
type TableGroup struct {
	TableIdx    int
	CellIndices []int
}

// GroupCharts 按 chart_idx 分组
func GroupCharts(segments []document.ChartSegment) []ParentGroup {
	return groupByParent(len(segments), func(i int) int { return segments[i].ChartIdx })
}

// GroupSmartArts 按 smartart_idx 分组
func GroupSmartArts(segments []document.SmartArtSegment) []ParentGroup {
	return groupByParent(len(segments), func(i int) int { return segments[i].DiagramIdx })
}

// ParentGroup 同一结构父级（图表或 SmartArt）下的元素组
type ParentGroup struct {
	ParentIdx      int
	ElementIndices []int
}

func groupByParent(n int, parentOf func(i int) int) []ParentGroup {
	byParent := make(map[int][]int)
	for i := 0; i < n; i++ {
		p := parentOf(i)
		byParent[p] = append(byParent[p], i)
	}

	groups := make([]ParentGroup, 0, len(byParent))
	for idx, elems := range byParent {
		groups = append(groups, ParentGroup{ParentIdx: idx, ElementIndices: elems})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ParentIdx < groups[j].ParentIdx })
	return groups
}

// EffectiveChunkSize 低 RPM 模型抬高块大小下限：请求更少、单个更大，
// 换取不触碰每分钟请求数的硬顶。
func EffectiveChunkSize(configured int, rate RateLimitConfig) int {
	switch {
	case rate.RPM <= 5 && configured < 20000:
		return 20000
	case rate.RPM <= 10 && configured < 15000:
		return 15000
	default:
		return configured
	}
}

package translation

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/wordflux/wordflux/pkg/document"
	"github.com/wordflux/wordflux/pkg/marker"
	"github.com/wordflux/wordflux/pkg/providers"
)

// markerRetries 标记校验失败时的有界重试次数。
// 耗尽后接受最后一次输出并打警告（已知的有损降级策略：
// 缺失的标记可能让相邻 run 的译文被合并，但绝不阻塞整个文档）。
const markerRetries = 2

// Stats 翻译过程计数器
type Stats struct {
	APICalls  int64
	CacheHits int64
	Degraded  int64 // 标记校验最终失败或请求耗尽重试的单元数
}

// EngineConfig 翻译引擎配置
type EngineConfig struct {
	Model         string
	SourceLang    string
	TargetLang    string
	MaxChunkSize  int
	MaxConcurrent int
	Retry         RetryPolicy
}

// Engine 翻译引擎：构建提示词 → 调用 oracle → 校验标记 → 写缓存 →
// 喂上下文 → 提取每个单元的结果。四类内容并发执行，
// sequential 模型例外（全引擎一次只飞一个单元）。
type Engine struct {
	client  providers.Client
	prompt  *PromptBuilder
	cache   *Cache
	context *ContextWindow
	logger  *zap.Logger

	model        string
	rate         RateLimitConfig
	sem          *semaphore.Weighted
	retry        RetryPolicy
	maxChunkSize int

	apiCalls  atomic.Int64
	cacheHits atomic.Int64
	degraded  atomic.Int64

	// Progress 每完成一个单元（块/表/图表/图示）调用一次，可为 nil
	Progress func()
}

// NewEngine 创建翻译引擎。并发上限取用户配置与模型推荐值的较小者；
// 低 RPM 模型会抬高有效块大小下限。
func NewEngine(client providers.Client, cfg EngineConfig, cache *Cache, ctxWindow *ContextWindow, glossary *Glossary, logger *zap.Logger) *Engine {
	rate := ResolveRateLimit(cfg.Model)
	concurrency := EffectiveConcurrency(cfg.MaxConcurrent, rate)

	return &Engine{
		client:       client,
		prompt:       NewPromptBuilder(cfg.SourceLang, cfg.TargetLang, glossary, ctxWindow),
		cache:        cache,
		context:      ctxWindow,
		logger:       logger,
		model:        cfg.Model,
		rate:         rate,
		sem:          semaphore.NewWeighted(int64(concurrency)),
		retry:        cfg.Retry,
		maxChunkSize: EffectiveChunkSize(cfg.MaxChunkSize, rate),
	}
}

// Stats 返回当前计数器快照
func (e *Engine) Stats() Stats {
	return Stats{
		APICalls:  e.apiCalls.Load(),
		CacheHits: e.cacheHits.Load(),
		Degraded:  e.degraded.Load(),
	}
}

// MaxChunkSize 返回生效的块大小（含低 RPM 下限抬升）
func (e *Engine) MaxChunkSize() int {
	return e.maxChunkSize
}

// Sequential 当前模型是否强制串行
func (e *Engine) Sequential() bool {
	return e.rate.Sequential
}

// TotalUnits 计算任务总数（进度条用）
func (e *Engine) TotalUnits(data *document.CheckpointData) int {
	total := len(ChunkTextSegments(data.TextSegments, e.maxChunkSize))
	total += len(GroupTableCells(data.TableCellSegments))
	total += len(GroupCharts(data.ChartSegments))
	total += len(GroupSmartArts(data.SmartArtSegments))
	return total
}

// TranslateAll 翻译检查点中的全部内容，原地填充 translated_text。
// 四个内容类别作为兄弟任务并发启动，用收集错误的屏障汇合：
// 单元级失败已在内部降级为原文，一个类别的问题不会取消其它类别。
func (e *Engine) TranslateAll(ctx context.Context, data *document.CheckpointData) error {
	chunks := ChunkTextSegments(data.TextSegments, e.maxChunkSize)
	tables := GroupTableCells(data.TableCellSegments)
	charts := GroupCharts(data.ChartSegments)
	smartarts := GroupSmartArts(data.SmartArtSegments)

	if len(chunks)+len(tables)+len(charts)+len(smartarts) == 0 {
		e.logger.Info("no content to translate")
		return nil
	}

	e.logger.Info("starting translation",
		zap.Int("text_chunks", len(chunks)),
		zap.Int("tables", len(tables)),
		zap.Int("charts", len(charts)),
		zap.Int("smartarts", len(smartarts)),
		zap.Bool("sequential", e.rate.Sequential))

	if e.rate.Sequential {
		return e.translateSequential(ctx, data, chunks, tables, charts, smartarts)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return e.translateChunks(gctx, data, chunks) })
	g.Go(func() error { return e.translateTables(gctx, data, tables) })
	g.Go(func() error { return e.translateCharts(gctx, data, charts) })
	g.Go(func() error { return e.translateSmartArts(gctx, data, smartarts) })

	if err := g.Wait(); err != nil {
		return err
	}
	// 单元级失败降级为原文不报错，但取消必须向上传：调用方要据此
	// 保留检查点而不是清理它
	return ctx.Err()
}

// translateSequential 极低 RPM 模型：所有类别的所有单元严格串行
func (e *Engine) translateSequential(ctx context.Context, data *document.CheckpointData, chunks [][]document.TextSegment, tables []TableGroup, charts, smartarts []ParentGroup) error {
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.translateChunk(ctx, data, chunk)
	}
	for _, group := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.translateTable(ctx, data, group)
	}
	for _, group := range charts {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.translateChart(ctx, data, group)
	}
	for _, group := range smartarts {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.translateSmartArt(ctx, data, group)
	}
	return nil
}

func (e *Engine) translateChunks(ctx context.Context, data *document.CheckpointData, chunks [][]document.TextSegment) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, chunk := range chunks {
		chunk := chunk
		g.Go(func() error {
			e.translateChunk(gctx, data, chunk)
			return nil
		})
	}
	return g.Wait()
}

func (e *Engine) translateTables(ctx context.Context, data *document.CheckpointData, groups []TableGroup) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, group := range groups {
		group := group
		g.Go(func() error {
			e.translateTable(gctx, data, group)
			return nil
		})
	}
	return g.Wait()
}

func (e *Engine) translateCharts(ctx context.Context, data *document.CheckpointData, groups []ParentGroup) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, group := range groups {
		group := group
		g.Go(func() error {
			e.translateChart(gctx, data, group)
			return nil
		})
	}
	return g.Wait()
}

func (e *Engine) translateSmartArts(ctx context.Context, data *document.CheckpointData, groups []ParentGroup) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, group := range groups {
		group := group
		g.Go(func() error {
			e.translateSmartArt(gctx, data, group)
			return nil
		})
	}
	return g.Wait()
}

// translateChunk 翻译一个段落块。每个段落包成 <SEG{seg_idx}> 块，
// 块间以空行分隔，整块作为一次请求。
func (e *Engine) translateChunk(ctx context.Context, data *document.CheckpointData, chunk []document.TextSegment) {
	defer e.progressed()

	// 恢复运行：整块都已有译文时跳过
	done := true
	for _, seg := range chunk {
		if !runsDone(seg.Runs) {
			done = false
			break
		}
	}
	if done {
		return
	}

	type segMarking struct {
		segIdx       int
		translatable []int
	}

	blocks := make([]string, 0, len(chunk))
	markings := make([]segMarking, 0, len(chunk))

	for _, seg := range chunk {
		units := runTexts(seg.Runs)
		markedRuns, translatable := marker.Wrap(units)
		blocks = append(blocks, marker.WrapBlock(marker.TagSegment, fmt.Sprintf("%d", seg.SegIdx), markedRuns))
		markings = append(markings, segMarking{segIdx: seg.SegIdx, translatable: translatable})
	}

	combined := strings.Join(blocks, "\n\n")
	translated, _ := e.translateMarked(ctx, combined)

	for i := range chunk {
		seg := findTextSegment(data, markings[i].segIdx)
		if seg == nil {
			continue
		}
		inner, ok := marker.ExtractBlock(translated, marker.TagSegment, fmt.Sprintf("%d", seg.SegIdx))
		if !ok {
			// 包裹标记整个丢失：该段落所有 run 保持原文
			e.logger.Warn("segment marker not found, keeping original", zap.Int("seg_idx", seg.SegIdx))
			fillOriginal(seg.Runs)
			continue
		}
		applyRunTranslations(seg.Runs, inner, markings[i].translatable)
		seg.FullText = document.JoinRuns(seg.Runs)
	}
}

// translateTable 一张表的全部单元格进一次请求，
// 单元格 id 为复合的 table-row-cell-para。
func (e *Engine) translateTable(ctx context.Context, data *document.CheckpointData, group TableGroup) {
	defer e.progressed()

	done := true
	for _, idx := range group.CellIndices {
		if !runsDone(data.TableCellSegments[idx].Runs) {
			done = false
			break
		}
	}
	if done {
		return
	}

	type cellMarking struct {
		cellID       string
		segIndex     int
		translatable []int
	}

	blocks := make([]string, 0, len(group.CellIndices))
	markings := make([]cellMarking, 0, len(group.CellIndices))

	for _, idx := range group.CellIndices {
		cell := &data.TableCellSegments[idx]
		cellID := fmt.Sprintf("%d-%d-%d-%d", cell.TableIdx, cell.RowIdx, cell.CellIdx, cell.ParaIdx)
		markedRuns, translatable := marker.Wrap(runTexts(cell.Runs))
		blocks = append(blocks, marker.WrapBlock(marker.TagCell, cellID, markedRuns))
		markings = append(markings, cellMarking{cellID: cellID, segIndex: idx, translatable: translatable})
	}

	combined := strings.Join(blocks, "\n\n")
	if strings.TrimSpace(combined) == "" {
		return
	}

	translated, _ := e.translateMarked(ctx, combined)

	for _, m := range markings {
		cell := &data.TableCellSegments[m.segIndex]
		inner, ok := marker.ExtractBlock(translated, marker.TagCell, m.cellID)
		if !ok {
			e.logger.Warn("cell marker not found, keeping original", zap.String("cell_id", m.cellID))
			fillOriginal(cell.Runs)
			continue
		}
		applyRunTranslations(cell.Runs, inner, m.translatable)
	}
}

// translateChart 一张图表的全部文本元素进一次请求
func (e *Engine) translateChart(ctx context.Context, data *document.CheckpointData, group ParentGroup) {
	defer e.progressed()

	done := true
	for _, idx := range group.ElementIndices {
		if data.ChartSegments[idx].TranslatedText == "" {
			done = false
			break
		}
	}
	if done {
		return
	}

	blocks := make([]string, 0, len(group.ElementIndices))
	for _, idx := range group.ElementIndices {
		elem := &data.ChartSegments[idx]
		if strings.TrimSpace(elem.Text) == "" {
			continue
		}
		id := fmt.Sprintf("%d-%s-%d", elem.ChartIdx, elem.ElementType, elem.ElementIdx)
		blocks = append(blocks, marker.WrapInline(marker.TagChart, id, elem.Text))
	}
	if len(blocks) == 0 {
		return
	}

	translated, _ := e.translateMarked(ctx, strings.Join(blocks, "\n\n"))

	for _, idx := range group.ElementIndices {
		elem := &data.ChartSegments[idx]
		id := fmt.Sprintf("%d-%s-%d", elem.ChartIdx, elem.ElementType, elem.ElementIdx)
		if inner, ok := marker.Extract(translated, marker.TagChart, id); ok {
			elem.TranslatedText = inner
			continue
		}
		if strings.TrimSpace(elem.Text) != "" {
			e.logger.Warn("chart marker not found, keeping original", zap.String("element_id", id))
		}
		elem.TranslatedText = elem.Text
	}
}

// translateSmartArt 一个 SmartArt 图示的全部文本元素进一次请求
func (e *Engine) translateSmartArt(ctx context.Context, data *document.CheckpointData, group ParentGroup) {
	defer e.progressed()

	done := true
	for _, idx := range group.ElementIndices {
		if data.SmartArtSegments[idx].TranslatedText == "" {
			done = false
			break
		}
	}
	if done {
		return
	}

	blocks := make([]string, 0, len(group.ElementIndices))
	for _, idx := range group.ElementIndices {
		elem := &data.SmartArtSegments[idx]
		if strings.TrimSpace(elem.Text) == "" {
			continue
		}
		id := fmt.Sprintf("%d-%d", elem.DiagramIdx, elem.ElementIdx)
		blocks = append(blocks, marker.WrapInline(marker.TagSmartArt, id, elem.Text))
	}
	if len(blocks) == 0 {
		return
	}

	translated, _ := e.translateMarked(ctx, strings.Join(blocks, "\n\n"))

	for _, idx := range group.ElementIndices {
		elem := &data.SmartArtSegments[idx]
		id := fmt.Sprintf("%d-%d", elem.DiagramIdx, elem.ElementIdx)
		if inner, ok := marker.Extract(translated, marker.TagSmartArt, id); ok {
			elem.TranslatedText = inner
			continue
		}
		if strings.TrimSpace(elem.Text) != "" {
			e.logger.Warn("smartart marker not found, keeping original", zap.String("element_id", id))
		}
		elem.TranslatedText = elem.Text
	}
}

// translateMarked 翻译一段带标记的组合文本。
// 状态机：缓存查询 → 请求（信号量 + 请求前延迟 + 分类重试）→
// 标记校验（有界重试后接受）→ 写缓存 → 喂上下文。
// 缓存键是带标记的组合文本本身（块级键）。
// 请求重试耗尽时降级为返回原文而不是让整个文档失败。
func (e *Engine) translateMarked(ctx context.Context, text string) (string, bool) {
	if cached, ok := e.cache.Get(text); ok {
		e.cacheHits.Add(1)
		return cached, true
	}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return text, false
	}
	defer e.sem.Release(1)

	if e.rate.Delay > 0 {
		select {
		case <-ctx.Done():
			return text, false
		case <-time.After(e.rate.Delay):
		}
	}

	var translated string
	valid := false

	for attempt := 0; attempt <= markerRetries; attempt++ {
		out, err := e.retry.Execute(ctx, e.logger, func() (string, error) {
			e.apiCalls.Add(1)
			return e.client.Complete(ctx, e.model, e.prompt.Messages(text))
		})
		if err != nil {
			// 重试耗尽：单元降级为原文，多小时的任务不因一个片段中断
			e.logger.Error("translation failed, keeping original text", zap.Error(err))
			e.degraded.Add(1)
			return text, false
		}

		translated = out
		if marker.ValidateIntegrity(text, translated) {
			valid = true
			break
		}

		e.logger.Warn("marker validation failed",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", markerRetries+1))

		if attempt < markerRetries {
			select {
			case <-ctx.Done():
				return text, false
			case <-time.After(e.retry.BaseDelay + e.rate.Delay):
			}
		}
	}

	if !valid {
		e.degraded.Add(1)
	}
	e.checkSuspectEcho(text, translated)

	// 即使标记校验失败也写缓存：重跑时不再浪费一次请求
	e.cache.Set(text, translated)
	e.context.Add(translated)

	return translated, valid
}

// checkSuspectEcho 译文与原文几乎一致时记警告（模型可能原样回吐）。
// 同语言术语多的文本会有合理的高相似度，所以只记日志，不判失败。
func (e *Engine) checkSuspectEcho(original, translated string) {
	if len(original) == 0 || len(translated) == 0 || original == translated {
		if original == translated {
			e.logger.Warn("translation identical to source text")
		}
		return
	}
	// 编辑距离相对长度过小视为可疑回声
	dist := fuzzy.LevenshteinDistance(original, translated)
	longer := len([]rune(original))
	if l2 := len([]rune(translated)); l2 > longer {
		longer = l2
	}
	if longer > 0 && float64(dist)/float64(longer) < 0.05 {
		e.logger.Warn("translation suspiciously close to source",
			zap.Int("edit_distance", dist))
	}
}

func (e *Engine) progressed() {
	if e.Progress != nil {
		e.Progress()
	}
}

func runTexts(runs []document.RunInfo) []string {
	out := make([]string, len(runs))
	for i, run := range runs {
		out[i] = run.Text
	}
	return out
}

// runsDone 该段所有 run 都已有译文（检查点恢复时用于跳过）
func runsDone(runs []document.RunInfo) bool {
	if len(runs) == 0 {
		return false
	}
	for _, r := range runs {
		if r.TranslatedText == "" {
			return false
		}
	}
	return true
}

// fillOriginal 所有 run 的译文回退为原文
func fillOriginal(runs []document.RunInfo) {
	for i := range runs {
		runs[i].TranslatedText = runs[i].Text
	}
}

// applyRunTranslations 用 Unwrap 的结果填充每个 run 的 translated_text
func applyRunTranslations(runs []document.RunInfo, inner string, translatable []int) bool {
	texts, ok := marker.Unwrap(inner, runTexts(runs), translatable)
	for i := range runs {
		runs[i].TranslatedText = texts[i]
	}
	return ok
}

// findTextSegment 按 seg_idx 定位段落片段
func findTextSegment(data *document.CheckpointData, segIdx int) *document.TextSegment {
	for i := range data.TextSegments {
		if data.TextSegments[i].SegIdx == segIdx {
			return &data.TextSegments[i]
		}
	}
	return nil
}

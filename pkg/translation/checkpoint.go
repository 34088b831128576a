package translation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wordflux/wordflux/pkg/document"
)

// CheckpointState 恢复快照：已翻译的片段下标集合与对应译文。
// segments_hash 是全部片段规范化 JSON 序列化的摘要，仅用于 Validate
// 检测磁盘上的检查点是否还对应当前文档。
type CheckpointState struct {
	Timestamp         string         `json:"timestamp"`
	TotalSegments     int            `json:"total_segments"`
	TranslatedIndices []int          `json:"translated_indices"`
	Translations      map[int]string `json:"translations"`
	SegmentsHash      string         `json:"segments_hash"`
}

// CheckpointManager 管理单个文档翻译的检查点。
// 生命周期：提取时创建，翻译引擎读写，注入器只读，整个流水线成功后
// 删除（它只是恢复工件）；任何失败都把它留在磁盘上供下次恢复。
type CheckpointManager struct {
	dataPath  string // 片段数据（阶段间的唯一事实来源）
	statePath string // 恢复快照
	logger    *zap.Logger
}

// NewCheckpointManager 创建检查点管理器。恢复快照与片段数据分开存放，
// 快照路径由数据路径派生。
func NewCheckpointManager(dataPath string, logger *zap.Logger) *CheckpointManager {
	statePath := strings.TrimSuffix(dataPath, ".json") + "_state.json"
	return &CheckpointManager{
		dataPath:  dataPath,
		statePath: statePath,
		logger:    logger,
	}
}

// DataPath 片段数据文件路径
func (m *CheckpointManager) DataPath() string {
	return m.dataPath
}

// SaveData 原子写入片段数据（临时文件 + rename）。
// 保存失败是致命的：静默丢进度比崩溃更糟。
func (m *CheckpointManager) SaveData(data *document.CheckpointData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("checkpoint serialize failed: %w", err)
	}
	return m.atomicWrite(m.dataPath, raw)
}

// LoadData 读取片段数据
func (m *CheckpointManager) LoadData() (*document.CheckpointData, error) {
	raw, err := os.ReadFile(m.dataPath)
	if err != nil {
		return nil, fmt.Errorf("checkpoint read failed: %w", err)
	}
	var data document.CheckpointData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("checkpoint parse failed: %w", err)
	}
	return &data, nil
}

// Save 原子写入恢复快照
func (m *CheckpointManager) Save(data *document.CheckpointData, translatedIndices map[int]bool, translations map[int]string) error {
	indices := make([]int, 0, len(translatedIndices))
	for idx := range translatedIndices {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	if translations == nil {
		translations = map[int]string{}
	}

	state := CheckpointState{
		Timestamp:         time.Now().Format(time.RFC3339),
		TotalSegments:     data.TotalSegments(),
		TranslatedIndices: indices,
		Translations:      translations,
		SegmentsHash:      hashSegments(data),
	}

	raw, err := json.MarshalIndent(&state, "", "  ")
	if err != nil {
		return fmt.Errorf("checkpoint state serialize failed: %w", err)
	}
	return m.atomicWrite(m.statePath, raw)
}

// Load 读取恢复快照。文件缺失或损坏时返回空集而不是报错：
// 恢复降级为完整重跑，绝不因此崩溃。
func (m *CheckpointManager) Load() (map[int]bool, map[int]string) {
	indices := make(map[int]bool)
	translations := make(map[int]string)

	raw, err := os.ReadFile(m.statePath)
	if err != nil {
		return indices, translations
	}

	var state CheckpointState
	if err := json.Unmarshal(raw, &state); err != nil {
		m.logger.Warn("checkpoint state corrupted, ignoring", zap.String("path", m.statePath), zap.Error(err))
		return indices, translations
	}

	for _, idx := range state.TranslatedIndices {
		indices[idx] = true
	}
	for idx, text := range state.Translations {
		translations[idx] = text
	}
	return indices, translations
}

// Progress 廉价读取进度信息，用于恢复时的用户提示。
// 没有可用检查点时返回 nil。
func (m *CheckpointManager) Progress() *struct{ Total, Completed int } {
	raw, err := os.ReadFile(m.statePath)
	if err != nil {
		return nil
	}
	var state CheckpointState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil
	}
	return &struct{ Total, Completed int }{
		Total:     state.TotalSegments,
		Completed: len(state.TranslatedIndices),
	}
}

// Validate 校验磁盘上的快照是否仍对应当前片段集合
// （例如源文件在两次运行之间被改过）。
func (m *CheckpointManager) Validate(data *document.CheckpointData) bool {
	raw, err := os.ReadFile(m.statePath)
	if err != nil {
		return false
	}
	var state CheckpointState
	if err := json.Unmarshal(raw, &state); err != nil {
		return false
	}
	return state.SegmentsHash == hashSegments(data)
}

// Exists 片段数据文件是否存在
func (m *CheckpointManager) Exists() bool {
	_, err := os.Stat(m.dataPath)
	return err == nil
}

// Clear 删除检查点文件（流水线成功后调用）
func (m *CheckpointManager) Clear() {
	_ = os.Remove(m.dataPath)
	_ = os.Remove(m.statePath)
}

func (m *CheckpointManager) atomicWrite(path string, raw []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("checkpoint write failed: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("checkpoint rename failed: %w", err)
	}
	return nil
}

// hashSegments 全部片段规范化 JSON 序列化的 sha256
func hashSegments(data *document.CheckpointData) string {
	raw, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

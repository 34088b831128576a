package translation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wordflux/wordflux/pkg/document"
)

func sampleData() *document.CheckpointData {
	return &document.CheckpointData{
		TextSegments: []document.TextSegment{
			{SegIdx: 0, FullText: "Hello", Runs: []document.RunInfo{{Text: "Hello"}}},
			{SegIdx: 1, FullText: "World", Runs: []document.RunInfo{{Text: "World"}}},
		},
		TableCellSegments: []document.TableCellSegment{
			{TableIdx: 0, RowIdx: 0, CellIdx: 0, ParaIdx: 0, Runs: []document.RunInfo{{Text: "Header"}}},
		},
	}
}

func TestCheckpointData(t *testing.T) {
	logger := zap.NewNop()

	t.Run("save and load round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc_checkpoint.json")
		m := NewCheckpointManager(path, logger)

		data := sampleData()
		require.NoError(t, m.SaveData(data))
		assert.True(t, m.Exists())

		loaded, err := m.LoadData()
		require.NoError(t, err)
		assert.Equal(t, data, loaded)
	})

	t.Run("load missing file errors", func(t *testing.T) {
		m := NewCheckpointManager(filepath.Join(t.TempDir(), "nope.json"), logger)
		_, err := m.LoadData()
		assert.Error(t, err)
		assert.False(t, m.Exists())
	})
}

func TestCheckpointState(t *testing.T) {
	logger := zap.NewNop()

	t.Run("save and load state", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc_checkpoint.json")
		m := NewCheckpointManager(path, logger)
		data := sampleData()

		translated := map[int]bool{0: true, 2: true}
		translations := map[int]string{0: "Bonjour", 2: "En-tête"}
		require.NoError(t, m.Save(data, translated, translations))

		gotIndices, gotTranslations := m.Load()
		assert.Equal(t, translated, gotIndices)
		assert.Equal(t, translations, gotTranslations)
	})

	t.Run("missing state loads empty", func(t *testing.T) {
		m := NewCheckpointManager(filepath.Join(t.TempDir(), "doc_checkpoint.json"), logger)
		indices, translations := m.Load()
		assert.Empty(t, indices)
		assert.Empty(t, translations)
	})

	t.Run("corrupt state loads empty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc_checkpoint.json")
		statePath := filepath.Join(filepath.Dir(path), "doc_checkpoint_state.json")
		require.NoError(t, os.WriteFile(statePath, []byte("garbage"), 0o644))

		m := NewCheckpointManager(path, logger)
		indices, translations := m.Load()
		assert.Empty(t, indices)
		assert.Empty(t, translations)
	})

	t.Run("progress snapshot", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc_checkpoint.json")
		m := NewCheckpointManager(path, logger)
		data := sampleData()

		assert.Nil(t, m.Progress())

		require.NoError(t, m.Save(data, map[int]bool{0: true}, nil))
		p := m.Progress()
		require.NotNil(t, p)
		assert.Equal(t, 3, p.Total)
		assert.Equal(t, 1, p.Completed)
	})

	t.Run("validate detects changed document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc_checkpoint.json")
		m := NewCheckpointManager(path, logger)
		data := sampleData()

		require.NoError(t, m.Save(data, map[int]bool{0: true}, nil))
		assert.True(t, m.Validate(data))

		data.TextSegments[0].FullText = "Hello edited"
		data.TextSegments[0].Runs[0].Text = "Hello edited"
		assert.False(t, m.Validate(data))
	})

	t.Run("clear removes both files", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc_checkpoint.json")
		m := NewCheckpointManager(path, logger)
		data := sampleData()

		require.NoError(t, m.SaveData(data))
		require.NoError(t, m.Save(data, map[int]bool{0: true}, nil))
		m.Clear()

		assert.False(t, m.Exists())
		indices, _ := m.Load()
		assert.Empty(t, indices)
	})
}

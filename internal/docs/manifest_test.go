package docs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestManifestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestFileName)
	logger := zap.NewNop()

	m := NewManifest(path, logger)
	assert.False(t, m.Load(), "no manifest on disk yet")
	assert.True(t, m.IsChanged("guide.md", "abc"), "unknown file counts as changed")

	m.SetDirectories("/src", "/out")
	m.Update("guide.md", "abc", "/out/guide.md")
	require.NoError(t, m.Save())

	loaded := NewManifest(path, logger)
	require.True(t, loaded.Load())
	assert.Equal(t, 1, loaded.Len())
	assert.Equal(t, "/src", loaded.SourceDir)
	assert.False(t, loaded.IsChanged("guide.md", "abc"))
	assert.True(t, loaded.IsChanged("guide.md", "def"), "hash drift forces retranslation")

	entry := loaded.Files["guide.md"]
	assert.Equal(t, "/out/guide.md", entry.OutputPath)
	assert.NotEmpty(t, entry.TranslatedAt)
}

func TestManifestRejectsBadFile(t *testing.T) {
	logger := zap.NewNop()

	t.Run("corrupt json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ManifestFileName)
		require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
		assert.False(t, NewManifest(path, logger).Load())
	})

	t.Run("version mismatch", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ManifestFileName)
		require.NoError(t, os.WriteFile(path, []byte(`{"version":"0.1","files":{}}`), 0o644))

		m := NewManifest(path, logger)
		assert.False(t, m.Load())
		assert.Equal(t, 0, m.Len())
	})
}

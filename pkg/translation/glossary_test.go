package translation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGlossary(t *testing.T) {
	t.Run("structured file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "glossary.yaml")
		content := `terms:
  checkpoint: point de contrôle
  pipeline: pipeline de traitement
keep:
  - WordFlux
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		g, err := LoadGlossary(path)
		require.NoError(t, err)
		assert.Equal(t, "point de contrôle", g.Terms["checkpoint"])
		assert.Contains(t, g.KeepTerms, "WordFlux")
		assert.Contains(t, g.KeepTerms, "API", "defaults still present")
	})

	t.Run("flat mapping accepted", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "glossary.yaml")
		require.NoError(t, os.WriteFile(path, []byte("hello: bonjour\nworld: monde\n"), 0o644))

		g, err := LoadGlossary(path)
		require.NoError(t, err)
		assert.Equal(t, "bonjour", g.Terms["hello"])
		assert.Equal(t, "monde", g.Terms["world"])
	})

	t.Run("missing file returns defaults", func(t *testing.T) {
		g, err := LoadGlossary(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, 0, g.Size())
		assert.NotEmpty(t, g.KeepTerms)
	})

	t.Run("empty path returns defaults", func(t *testing.T) {
		g, err := LoadGlossary("")
		require.NoError(t, err)
		assert.Equal(t, 0, g.Size())
	})
}

func TestGlossarySortedTerms(t *testing.T) {
	g := NewGlossary()
	g.Terms["zebra"] = "z"
	g.Terms["apple"] = "a"
	g.Terms["mango"] = "m"

	terms := g.SortedTerms()
	require.Len(t, terms, 3)
	assert.Equal(t, "apple", terms[0][0])
	assert.Equal(t, "mango", terms[1][0])
	assert.Equal(t, "zebra", terms[2][0])
}

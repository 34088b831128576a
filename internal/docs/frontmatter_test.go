package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFrontmatterYAML(t *testing.T) {
	content := "---\ntitle: Getting Started\ndraft: true\n---\n\n# Body\n"

	fm, rest := splitFrontmatter(content)
	require.NotNil(t, fm)
	assert.Equal(t, FrontmatterYAML, fm.Format)
	assert.Equal(t, "# Body\n", rest)

	title, ok := fm.Get("title")
	require.True(t, ok)
	assert.Equal(t, "Getting Started", title)

	// 非字符串字段不参与翻译
	_, ok = fm.Get("draft")
	assert.False(t, ok)

	fm.Set("title", "Premiers pas")
	rendered, err := fm.Render()
	require.NoError(t, err)
	assert.Contains(t, rendered, "title: Premiers pas")
	assert.Contains(t, rendered, "draft: true")
	assert.True(t, len(rendered) > 0 && rendered[0] == '-')
}

func TestSplitFrontmatterTOML(t *testing.T) {
	content := "+++\ntitle = \"Hello\"\nweight = 3\n+++\n\nBody text.\n"

	fm, rest := splitFrontmatter(content)
	require.NotNil(t, fm)
	assert.Equal(t, FrontmatterTOML, fm.Format)
	assert.Equal(t, "Body text.\n", rest)

	title, ok := fm.Get("title")
	require.True(t, ok)
	assert.Equal(t, "Hello", title)

	fm.Set("title", "Bonjour")
	rendered, err := fm.Render()
	require.NoError(t, err)
	assert.Contains(t, rendered, `title = "Bonjour"`)
	assert.Contains(t, rendered, "weight = 3")
	assert.True(t, len(rendered) > 0 && rendered[0] == '+')
}

func TestSplitFrontmatterAbsentOrBroken(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no frontmatter", "# Just a heading\n"},
		{"unterminated", "---\ntitle: x\n"},
		{"invalid yaml", "---\n\t{bad\n---\n\nBody\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, rest := splitFrontmatter(tt.content)
			assert.Nil(t, fm)
			assert.Equal(t, tt.content, rest)
		})
	}
}

func TestFrontmatterNilSafe(t *testing.T) {
	var fm *Frontmatter

	_, ok := fm.Get("title")
	assert.False(t, ok)

	fm.Set("title", "x")

	rendered, err := fm.Render()
	require.NoError(t, err)
	assert.Empty(t, rendered)
}

package batch

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wordflux/wordflux/internal/config"
	"github.com/wordflux/wordflux/pkg/providers/providertest"
)

const minimalDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
 <w:body>
  <w:p><w:r><w:t>Hello</w:t></w:r></w:p>
 </w:body>
</w:document>`

func writeMinimalDocx(t *testing.T, dir, name string) string {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(minimalDocumentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func batchConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Model = "gpt-4o"
	cfg.TargetLang = "French"
	cfg.OutputDir = t.TempDir()
	cfg.UseCache = false
	return cfg
}

func echoFrench() *providertest.MockClient {
	return &providertest.MockClient{
		Respond: func(user string) (string, error) {
			return strings.ReplaceAll(user, "Hello", "Bonjour"), nil
		},
	}
}

func TestFindDocxFiles(t *testing.T) {
	dir := t.TempDir()
	writeMinimalDocx(t, dir, "b.docx")
	writeMinimalDocx(t, dir, "a.docx")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "~$a.docx"), []byte("lock"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.docx"), 0o755))

	files, err := FindDocxFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.docx", filepath.Base(files[0]), "sorted by name")
	assert.Equal(t, "b.docx", filepath.Base(files[1]))
}

func TestFindDocxFilesErrors(t *testing.T) {
	_, err := FindDocxFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "plain.docx")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = FindDocxFiles(file)
	assert.Error(t, err)
}

func TestProcessIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeMinimalDocx(t, dir, "good.docx")
	bad := filepath.Join(dir, "broken.docx")
	require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0o644))

	cfg := batchConfig(t)
	p := NewProcessor(cfg, echoFrench(), zap.NewNop())

	var seen []string
	p.Progress = func(current, total int, filename string) {
		seen = append(seen, filename)
		assert.Equal(t, 2, total)
	}

	results, err := p.Process(context.Background(), []string{bad, good})
	require.NoError(t, err, "a broken file does not abort the batch")
	require.Len(t, results, 2)
	assert.Equal(t, []string{"broken.docx", "good.docx"}, seen)

	assert.Equal(t, StatusFailed, results[0].Status)
	assert.Error(t, results[0].Err)

	assert.Equal(t, StatusSuccess, results[1].Status)
	assert.FileExists(t, results[1].OutputPath)

	summary := Summarize(results)
	assert.Equal(t, Summary{Total: 2, Succeeded: 1, Failed: 1}, summary)
}

func TestProcessCancelled(t *testing.T) {
	dir := t.TempDir()
	file := writeMinimalDocx(t, dir, "doc.docx")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProcessor(batchConfig(t), echoFrench(), zap.NewNop())
	_, err := p.Process(ctx, []string{file})
	assert.Error(t, err)
}

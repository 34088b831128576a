package docx

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wordflux/wordflux/internal/config"
	"github.com/wordflux/wordflux/pkg/providers/providertest"
	"github.com/wordflux/wordflux/pkg/translation"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Model = "gpt-4o"
	cfg.TargetLang = "French"
	cfg.OutputDir = t.TempDir()
	cfg.UseCache = false
	return cfg
}

func frenchMock() *providertest.MockClient {
	replacer := strings.NewReplacer(
		"Hello", "Bonjour",
		"Wide open ", "Grand ouvert ",
		"World", "Monde",
		"Header", "En-tête",
		"Revenue", "Revenu",
		"North", "Nord",
		"Plan", "Planifier",
		"Ship", "Expédier",
	)
	return &providertest.MockClient{
		Respond: func(user string) (string, error) {
			return replacer.Replace(user), nil
		},
	}
}

func TestTranslateFile(t *testing.T) {
	logger := zap.NewNop()
	cfg := testConfig(t)
	input := simpleDocx(t)

	tr := NewTranslator(cfg, frenchMock(), logger)

	var lastCompleted, lastTotal int
	tr.Progress = func(completed, total int) {
		lastCompleted, lastTotal = completed, total
	}

	result, err := tr.TranslateFile(context.Background(), input)
	require.NoError(t, err)

	assert.FileExists(t, result.OutputPath)
	assert.True(t, strings.HasSuffix(result.OutputPath, "input_translated.docx"))
	assert.Equal(t, 8, result.Segments)
	assert.Equal(t, lastTotal, lastCompleted, "progress reaches total")

	got, err := NewExtractor(logger).Extract(result.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", got.TextSegments[0].FullText)
	assert.Equal(t, "Grand ouvert Monde", got.TextSegments[1].FullText)
	assert.Equal(t, "En-tête", got.TableCellSegments[0].Runs[0].Text)
	assert.Equal(t, "Revenu", got.ChartSegments[0].Text)
	assert.Equal(t, "Planifier", got.SmartArtSegments[0].Text)

	// 成功后检查点被清理
	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), "_checkpoint")
	}
}

func TestTranslateFileResume(t *testing.T) {
	logger := zap.NewNop()
	cfg := testConfig(t)
	input := simpleDocx(t)

	// 预置一个全部翻译完成的检查点
	data, err := NewExtractor(logger).Extract(input)
	require.NoError(t, err)
	for i := range data.TextSegments {
		for j := range data.TextSegments[i].Runs {
			data.TextSegments[i].Runs[j].TranslatedText = "X"
		}
	}
	for i := range data.TableCellSegments {
		for j := range data.TableCellSegments[i].Runs {
			data.TableCellSegments[i].Runs[j].TranslatedText = "X"
		}
	}
	for i := range data.ChartSegments {
		data.ChartSegments[i].TranslatedText = "X"
	}
	for i := range data.SmartArtSegments {
		data.SmartArtSegments[i].TranslatedText = "X"
	}

	checkpointPath, _, _, err := NewTranslator(cfg, nil, logger).derivePaths(input)
	require.NoError(t, err)
	require.NoError(t, translation.NewCheckpointManager(checkpointPath, logger).SaveData(data))

	// 所有单元都已完成：mock 一旦被调用就失败
	mock := &providertest.MockClient{
		FailFirst: 1000,
		FailWith:  translation.NewClientError("must not be called", 400),
	}
	tr := NewTranslator(cfg, mock, logger)

	result, err := tr.TranslateFile(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 0, mock.Calls())

	got, err := NewExtractor(logger).Extract(result.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "X", got.TextSegments[0].FullText)
}

func TestTranslateFileStaleCheckpointIgnored(t *testing.T) {
	logger := zap.NewNop()
	cfg := testConfig(t)
	input := simpleDocx(t)

	// 与文档不匹配的检查点：结构校验失败后全新开始
	checkpointPath, _, _, err := NewTranslator(cfg, nil, logger).derivePaths(input)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(checkpointPath, []byte(`{"text_segments":[]}`), 0o644))

	mock := frenchMock()
	result, err := NewTranslator(cfg, mock, logger).TranslateFile(context.Background(), input)
	require.NoError(t, err)
	assert.Greater(t, mock.Calls(), 0)

	got, err := NewExtractor(logger).Extract(result.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", got.TextSegments[0].FullText)
}

func TestTranslateFileCancelKeepsCheckpoint(t *testing.T) {
	logger := zap.NewNop()
	cfg := testConfig(t)
	input := simpleDocx(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTranslator(cfg, frenchMock(), logger).TranslateFile(ctx, input)
	require.Error(t, err)

	checkpointPath, _, _, err := NewTranslator(cfg, nil, logger).derivePaths(input)
	require.NoError(t, err)
	assert.FileExists(t, checkpointPath, "checkpoint survives for the next run")
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wordflux/wordflux/internal/batch"
	"github.com/wordflux/wordflux/internal/config"
	"github.com/wordflux/wordflux/internal/docx"
	"github.com/wordflux/wordflux/internal/logger"
	"github.com/wordflux/wordflux/pkg/providers"
	"github.com/wordflux/wordflux/pkg/providers/factory"
)

func newDocxCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "docx <file-or-directory>",
		Short: "翻译 DOCX 文档，参数为目录时批量处理",
		Args:  cobra.ExactArgs(1),
		RunE:  runDocx,
	}
}

// shortRunID 本次运行的标识，方便从日志里区分多次执行
func shortRunID() string {
	return uuid.NewString()[:8]
}

func runDocx(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Debug, cfg.Quiet).With(zap.String("run_id", shortRunID()))
	defer func() {
		_ = log.Sync()
	}()

	client, err := factory.New(cfg.Provider, cfg.APIKey)
	if err != nil {
		return err
	}

	info, err := os.Stat(args[0])
	if err != nil {
		return err
	}

	if info.IsDir() {
		return runDocxBatch(cmd.Context(), cfg, client, log, args[0])
	}
	return runDocxFile(cmd.Context(), cfg, client, log, args[0])
}

func runDocxFile(ctx context.Context, cfg *config.Config, client providers.Client, log *zap.Logger, path string) error {
	tr := docx.NewTranslator(cfg, client, log)

	bar := newProgressBar("Translating "+filepath.Base(path), cfg.Quiet)
	tr.Progress = func(completed, total int) {
		bar.update(total, "")
	}

	result, err := tr.TranslateFile(ctx, path)
	bar.stop()
	if err != nil {
		return err
	}

	printDocxSummary(cfg.Quiet, result)
	return nil
}

func runDocxBatch(ctx context.Context, cfg *config.Config, client providers.Client, log *zap.Logger, dir string) error {
	files, err := batch.FindDocxFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .docx files found in %s", dir)
	}

	p := batch.NewProcessor(cfg, client, log)
	bar := newProgressBar("Batch translation", cfg.Quiet)
	p.Progress = func(current, total int, filename string) {
		bar.update(total, filename)
	}

	results, err := p.Process(ctx, files)
	bar.stop()

	printBatchSummary(cfg.Quiet, results)
	return err
}

func printDocxSummary(quiet bool, result *docx.Result) {
	if quiet {
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Output", "Segments", "API Calls", "Cache Hits", "Degraded"})
	tw.AppendRow(table.Row{
		result.OutputPath,
		result.Segments,
		result.Stats.APICalls,
		result.Stats.CacheHits,
		result.Stats.Degraded,
	})
	tw.Render()
}

func printBatchSummary(quiet bool, results []batch.Result) {
	if quiet {
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"File", "Status", "Output / Error"})
	for _, r := range results {
		detail := r.OutputPath
		if r.Err != nil {
			detail = r.Err.Error()
		}
		tw.AppendRow(table.Row{filepath.Base(r.File), string(r.Status), detail})
	}

	s := batch.Summarize(results)
	tw.AppendFooter(table.Row{"total", fmt.Sprintf("%d ok / %d failed", s.Succeeded, s.Failed), ""})
	tw.Render()
}

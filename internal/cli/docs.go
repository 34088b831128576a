package cli

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wordflux/wordflux/internal/docs"
	"github.com/wordflux/wordflux/internal/logger"
	"github.com/wordflux/wordflux/pkg/providers/factory"
)

var forceRetranslate bool

func newDocsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs <source-dir> <output-dir>",
		Short: "翻译 Markdown/MDX 文档目录，按清单做增量更新",
		Args:  cobra.ExactArgs(2),
		RunE:  runDocs,
	}
	cmd.Flags().BoolVar(&forceRetranslate, "force", false, "忽略清单，全部重新翻译")
	return cmd
}

func runDocs(cmd *cobra.Command, args []string) error {
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

	tr := docs.NewTranslator(cfg, client, log)
	bar := newProgressBar("Translating docs", cfg.Quiet)
	tr.Progress = func(current, total int, filename string) {
		bar.update(total, filename)
	}

	stats, err := tr.TranslateDirectory(cmd.Context(), args[0], args[1], forceRetranslate)
	bar.stop()

	printDocsSummary(cfg.Quiet, stats)
	return err
}

func printDocsSummary(quiet bool, stats docs.Stats) {
	if quiet {
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Translated", "Cached", "Failed", "API Calls", "Cache Hits"})
	tw.AppendRow(table.Row{
		stats.FilesTranslated,
		stats.FilesCached,
		stats.FilesFailed,
		stats.APICalls,
		stats.CacheHits,
	})
	tw.Render()
}

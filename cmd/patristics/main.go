// Package main provides the patristics binary, a terminal browser over the
// citation corpus: book and chapter heatmaps, per-verse citation cards and
// the era timeline.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bitflora/patristics-explorer/internal/config"
	"github.com/bitflora/patristics-explorer/internal/corpus"
	"github.com/bitflora/patristics-explorer/internal/explore"
	"github.com/bitflora/patristics-explorer/internal/filter"
	"github.com/bitflora/patristics-explorer/internal/logging"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	source     string
	categories []string
	logLevel   string
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "patristics",
		Short: "Browse Bible citations in the Church Fathers",
		Long: `patristics reads the citation corpus (a static gzip JSON tree or the
builder's SQLite database) and prints heatmaps of where the Fathers cite
Scripture, the citing passages for a verse, and a timeline by era.

Counts can be restricted to categories of works with --category.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (default: patristics.yaml in this or a parent directory)")
	cmd.PersistentFlags().StringVar(&g.source, "source", "", "Corpus source: static or sqlite (overrides config)")
	cmd.PersistentFlags().StringSliceVar(&g.categories, "category", nil, "Active work category; repeat for several (default: all)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		booksCmd(g),
		categoriesCmd(g),
		chaptersCmd(g),
		versesCmd(g),
		citeCmd(g),
		timelineCmd(g),
	)
	return cmd
}

// session is an opened corpus with the categories to count.
type session struct {
	explorer *explore.Explorer
	active   filter.Categories
	close    func() error
}

// open loads configuration, applies flag overrides and opens the corpus.
func (g *globalFlags) open(ctx context.Context) (*session, error) {
	cfg, err := config.NewLoader(nil).Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.source != "" {
		cfg.Source.Kind = g.source
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	format, _ := logging.ParseFormat(cfg.Log.Format)
	logger := logging.InitLogger(level, format)

	var src corpus.Source
	closeFn := func() error { return nil }
	switch cfg.Source.Kind {
	case config.SourceSQLite:
		s, err := corpus.OpenSQLite(cfg.Source.DBPath, cfg.Source.ManuscriptsDir, logger)
		if err != nil {
			return nil, err
		}
		src, closeFn = s, s.Close
	default:
		src = corpus.NewStaticSource(cfg.Source.StaticDir, logger)
	}

	e, err := explore.New(ctx, src, explore.Options{
		FetchConcurrency: cfg.Fetch.Concurrency,
		BucketWidth:      cfg.View.BucketWidth,
		Logger:           logger,
	})
	if err != nil {
		_ = closeFn()
		return nil, err
	}

	names := g.categories
	if len(names) == 0 {
		names = cfg.View.Categories
	}
	active := e.AllCategories()
	if len(names) > 0 {
		active = filter.NewCategories(names...)
	}
	return &session{explorer: e, active: active, close: closeFn}, nil
}

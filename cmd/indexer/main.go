// Command indexer builds the committed index from a document source and
// writes it to the data directory as a single segment file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geodoc-io/geodoc/internal/analysis"
	"github.com/geodoc-io/geodoc/internal/index"
	"github.com/geodoc-io/geodoc/internal/index/segment"
	"github.com/geodoc-io/geodoc/internal/schema"
	"github.com/geodoc-io/geodoc/internal/source"
	"github.com/geodoc-io/geodoc/pkg/config"
	"github.com/geodoc-io/geodoc/pkg/logger"
	"github.com/geodoc-io/geodoc/pkg/metrics"
	"github.com/geodoc-io/geodoc/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	docsDir := flag.String("docs", "", "documents folder (overrides config)")
	indexDir := flag.String("index", "", "index output folder (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *docsDir != "" {
		cfg.Source.DocsDir = *docsDir
	}
	if *indexDir != "" {
		cfg.Index.DataDir = *indexDir
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting index build",
		"source", cfg.Source.Type,
		"data_dir", cfg.Index.DataDir,
		"language", cfg.Index.Language,
	)

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, m); err != nil {
		slog.Error("index build failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, m *metrics.Metrics) error {
	s := schema.DublinCore()

	analyzer, err := analysis.New(cfg.Index.Analyzer, cfg.Index.Language)
	if err != nil {
		return fmt.Errorf("building analyzer: %w", err)
	}

	src, cleanup, err := openSource(cfg, s)
	if err != nil {
		return err
	}
	defer cleanup()

	builder := index.NewBuilder(s, analyzer)
	rejected := 0
	stats, err := src.Each(ctx, func(rec schema.Record) error {
		if err := builder.AddDocument(rec); err != nil {
			rejected++
			m.DocsSkippedTotal.WithLabelValues("schema").Inc()
			return err
		}
		m.DocsIndexedTotal.Inc()
		return nil
	})
	if err != nil {
		return fmt.Errorf("streaming documents: %w", err)
	}
	// Whatever the source skipped before the builder saw it was an IO problem.
	m.DocsSkippedTotal.WithLabelValues("io").Add(float64(stats.Failed - rejected))

	commitStart := time.Now()
	store, err := builder.Commit()
	if err != nil {
		return fmt.Errorf("committing index: %w", err)
	}
	if err := segment.Write(cfg.Index.DataDir, store); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	m.IndexCommitSeconds.Observe(time.Since(commitStart).Seconds())
	m.IndexDocCount.Set(float64(store.DocumentCount()))
	m.IndexTermCount.Set(float64(store.TermCount()))

	slog.Info("index build complete",
		"docs_indexed", store.DocumentCount(),
		"docs_skipped", stats.Failed,
		"distinct_terms", store.TermCount(),
		"data_dir", cfg.Index.DataDir,
		"elapsed", time.Since(commitStart).Round(time.Millisecond),
	)
	return nil
}

// openSource picks the configured record source. The cleanup closes whatever
// the source holds open.
func openSource(cfg *config.Config, s *schema.Schema) (source.Source, func(), error) {
	switch cfg.Source.Type {
	case "fs", "":
		return source.NewFS(cfg.Source.DocsDir), func() {}, nil
	case "postgres":
		client, err := postgres.New(cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return source.NewPG(client, cfg.Source.Table, s), func() { client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown source type %q", cfg.Source.Type)
	}
}

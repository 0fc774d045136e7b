// Command searcher runs queries against a committed index. With -queries it
// processes a query file in batch mode; without it, it reads queries
// interactively from stdin. Results go to stdout (or -output), logs to
// stderr.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/geodoc-io/geodoc/internal/analysis"
	"github.com/geodoc-io/geodoc/internal/batch"
	"github.com/geodoc-io/geodoc/internal/index/segment"
	"github.com/geodoc-io/geodoc/internal/search/executor"
	"github.com/geodoc-io/geodoc/internal/search/parser"
	"github.com/geodoc-io/geodoc/internal/search/scorer"
	"github.com/geodoc-io/geodoc/pkg/config"
	"github.com/geodoc-io/geodoc/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	indexDir := flag.String("index", "", "index folder (overrides config)")
	queriesPath := flag.String("queries", "", "query file, one query per line; omit for interactive mode")
	outputPath := flag.String("output", "", "results file; defaults to stdout")
	limit := flag.Int("limit", -1, "max results per query; 0 = unlimited, -1 = config default")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *indexDir != "" {
		cfg.Index.DataDir = *indexDir
	}
	if *limit < 0 {
		*limit = cfg.Search.DefaultLimit
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	store, err := segment.Open(cfg.Index.DataDir)
	if err != nil {
		slog.Error("failed to open index", "data_dir", cfg.Index.DataDir, "error", err)
		os.Exit(1)
	}
	analyzer, err := analysis.New(cfg.Index.Analyzer, cfg.Index.Language)
	if err != nil {
		slog.Error("failed to build analyzer", "error", err)
		os.Exit(1)
	}
	sc, err := scorer.New(cfg.Search.Model, store)
	if err != nil {
		slog.Error("failed to build scorer", "error", err)
		os.Exit(1)
	}
	p := parser.New(store.Schema(), analyzer)
	exec := executor.New(store, sc)

	slog.Info("index opened",
		"data_dir", cfg.Index.DataDir,
		"docs", store.DocumentCount(),
		"model", cfg.Search.Model,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := io.Writer(os.Stdout)
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			slog.Error("failed to create output file", "path", *outputPath, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if *queriesPath != "" {
		runBatch(ctx, cfg, p, exec, *queriesPath, *limit, out)
		return
	}
	runInteractive(p, exec, *limit, cfg.Search.IDRule, os.Stdin, out)
}

func runBatch(ctx context.Context, cfg *config.Config, p *parser.Parser, exec *executor.Executor, queriesPath string, limit int, out io.Writer) {
	in, err := os.Open(queriesPath)
	if err != nil {
		slog.Error("failed to open query file", "path", queriesPath, "error", err)
		os.Exit(1)
	}
	defer in.Close()

	driver := batch.New(p, exec, limit, cfg.Search.IDRule)
	summary, err := driver.Run(ctx, in, out)
	if err != nil {
		slog.Error("batch run failed", "error", err)
		os.Exit(1)
	}
	slog.Info("batch run complete",
		"queries", summary.Queries,
		"matched", summary.Matched,
		"malformed", summary.Malformed,
	)
}

// runInteractive reads one query per input line and prints its results; a
// line of just "q" (or end of input) exits. Spatial-combined queries use the
// same delimited line as batch mode; numbering follows the order queries
// were typed.
func runInteractive(p *parser.Parser, exec *executor.Executor, limit int, idRule string, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	queryNum := 0
	fmt.Fprint(os.Stderr, "query> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Fprint(os.Stderr, "query> ")
			continue
		}
		if line == "q" {
			return
		}
		queryNum++

		q, err := p.Parse(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "malformed query: %v\n", err)
		}
		results := exec.Execute(q, limit)
		if q.Spatial != nil {
			fmt.Fprint(out, batch.FormatSpatialLine(queryNum, results, idRule))
		} else {
			for _, r := range results {
				fmt.Fprintln(out, r.Path)
			}
		}
		fmt.Fprintf(os.Stderr, "%d result(s)\nquery> ", len(results))
	}
}

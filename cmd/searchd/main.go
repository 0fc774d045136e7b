// Command searchd serves ranked retrieval over HTTP, with an optional
// Redis-backed query cache and a Prometheus metrics endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/geodoc-io/geodoc/internal/analysis"
	"github.com/geodoc-io/geodoc/internal/index/segment"
	"github.com/geodoc-io/geodoc/internal/search/cache"
	"github.com/geodoc-io/geodoc/internal/search/executor"
	"github.com/geodoc-io/geodoc/internal/search/handler"
	"github.com/geodoc-io/geodoc/internal/search/parser"
	"github.com/geodoc-io/geodoc/internal/search/scorer"
	"github.com/geodoc-io/geodoc/pkg/config"
	"github.com/geodoc-io/geodoc/pkg/health"
	"github.com/geodoc-io/geodoc/pkg/logger"
	"github.com/geodoc-io/geodoc/pkg/metrics"
	"github.com/geodoc-io/geodoc/pkg/middleware"
	pkgredis "github.com/geodoc-io/geodoc/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	indexDir := flag.String("index", "", "index folder (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *indexDir != "" {
		cfg.Index.DataDir = *indexDir
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "data_dir", cfg.Index.DataDir)

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
	slog.Info("index opened", "docs", store.DocumentCount(), "model", cfg.Search.Model)

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, query caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis)
			slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		if store.DocumentCount() > 0 {
			return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d docs", store.DocumentCount())}
		}
		return health.ComponentHealth{Status: health.StatusDegraded, Message: "index is empty"}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	m := metrics.New()
	m.IndexDocCount.Set(float64(store.DocumentCount()))
	m.IndexTermCount.Set(float64(store.TermCount()))
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			_ = shutdownMetrics(ctx)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := handler.New(p, exec, queryCache, m, cfg.Search.DefaultLimit, cfg.Search.MaxResults)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /search", h.Search)
	mux.HandleFunc("GET /cache/stats", h.CacheStats)
	mux.HandleFunc("POST /cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}

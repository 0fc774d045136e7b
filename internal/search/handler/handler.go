// Package handler exposes ranked retrieval over HTTP for the searchd
// service.
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/geodoc-io/geodoc/internal/search/cache"
	"github.com/geodoc-io/geodoc/internal/search/executor"
	"github.com/geodoc-io/geodoc/internal/search/parser"
	gderrors "github.com/geodoc-io/geodoc/pkg/errors"
	"github.com/geodoc-io/geodoc/pkg/metrics"
)

// SearchResponse is the JSON body returned by the search endpoint.
type SearchResponse struct {
	Query   string            `json:"query"`
	Total   int               `json:"total"`
	Results []executor.Result `json:"results"`
}

// Handler serves search, cache administration and health endpoints.
type Handler struct {
	parser       *parser.Parser
	executor     *executor.Executor
	cache        *cache.QueryCache
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// New creates a handler. cache and m may be nil.
func New(p *parser.Parser, exec *executor.Executor, queryCache *cache.QueryCache, m *metrics.Metrics, defaultLimit, maxResults int) *Handler {
	return &Handler{
		parser:       p,
		executor:     exec,
		cache:        queryCache,
		metrics:      m,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// Search handles GET /search?q=<query>&limit=<n>.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	raw := r.URL.Query().Get("q")
	if raw == "" {
		h.writeAppError(w, gderrors.Newf(gderrors.ErrMalformedQuery, http.StatusBadRequest,
			"query parameter 'q' is required"))
		return
	}

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeAppError(w, gderrors.Newf(gderrors.ErrMalformedQuery, http.StatusBadRequest,
				"limit must be a positive integer, got %q", limitStr))
			return
		}
		if parsed > h.maxResults {
			parsed = h.maxResults
		}
		limit = parsed
	}

	// Malformed clauses are dropped, not fatal: the query runs with
	// whatever parsed, same as in batch mode.
	q, err := h.parser.Parse(raw)
	if err != nil {
		h.countQuery("malformed")
		h.logger.Warn("query partially malformed", "query", raw, "error", err)
	}
	if q.IsEmpty() {
		h.writeAppError(w, gderrors.Newf(gderrors.ErrMalformedQuery, http.StatusBadRequest,
			"query has no usable clauses"))
		return
	}

	var results []executor.Result
	cacheHit := false
	if h.cache != nil {
		results, cacheHit, err = h.cache.GetOrCompute(ctx, raw, limit, func() ([]executor.Result, error) {
			return h.executor.Execute(q, limit), nil
		})
		if err != nil {
			h.logger.Error("search execution failed", "query", raw, "error", err)
			h.writeError(w, http.StatusInternalServerError, "search failed")
			return
		}
	} else {
		results = h.executor.Execute(q, limit)
	}

	if results == nil {
		results = []executor.Result{}
	}
	h.observe(results, cacheHit, time.Since(start))

	h.logger.Info("search completed",
		"query", raw,
		"returned", len(results),
		"cache_hit", cacheHit,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, SearchResponse{
		Query:   raw,
		Total:   len(results),
		Results: results,
	})
}

// CacheStats handles GET /cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// CacheInvalidate handles POST /cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) observe(results []executor.Result, cacheHit bool, elapsed time.Duration) {
	if h.metrics == nil {
		return
	}
	outcome := "hit"
	if len(results) == 0 {
		outcome = "zero_result"
	}
	h.metrics.QueriesTotal.WithLabelValues(outcome).Inc()
	h.metrics.SearchResultsCount.Observe(float64(len(results)))
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		h.metrics.CacheHitsTotal.Inc()
	} else if h.cache != nil {
		h.metrics.CacheMissesTotal.Inc()
	}
	h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(elapsed.Seconds())
}

func (h *Handler) countQuery(outcome string) {
	if h.metrics != nil {
		h.metrics.QueriesTotal.WithLabelValues(outcome).Inc()
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// writeAppError renders a classified error; the status comes from the error
// itself via the shared mapping.
func (h *Handler) writeAppError(w http.ResponseWriter, err error) {
	h.writeJSON(w, gderrors.HTTPStatusCode(err), map[string]string{"error": err.Error()})
}

// Package cache is the Redis-backed query result cache used by searchd.
// The committed index is immutable, so cached entries can only go stale by
// pointing at a replaced index; the TTL and explicit invalidation cover
// that.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/geodoc-io/geodoc/internal/search/executor"
	"github.com/geodoc-io/geodoc/pkg/config"
	pkgredis "github.com/geodoc-io/geodoc/pkg/redis"
)

const keyPrefix = "geodoc:search:"

// QueryCache stores ranked result lists keyed by (query, limit).
type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a cache over an established Redis client.
func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// Get returns the cached results for the query, if present.
func (c *QueryCache) Get(ctx context.Context, query string, limit int) ([]executor.Result, bool) {
	key := c.buildKey(query, limit)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var results []executor.Result
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return results, true
}

// Set stores results with the configured TTL.
func (c *QueryCache) Set(ctx context.Context, query string, limit int, results []executor.Result) {
	key := c.buildKey(query, limit)
	data, err := json.Marshal(results)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns cached results or computes and stores them, with
// singleflight collapsing concurrent identical queries.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	query string,
	limit int,
	computeFn func() ([]executor.Result, error),
) ([]executor.Result, bool, error) {
	if results, ok := c.Get(ctx, query, limit); ok {
		return results, true, nil
	}
	v, err, _ := c.group.Do(c.buildKey(query, limit), func() (any, error) {
		results, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, query, limit, results)
		return results, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]executor.Result), false, nil
}

// Invalidate removes every cached result list.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating query cache: %w", err)
	}
	c.logger.Info("query cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns hit and miss counters since startup.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) buildKey(query string, limit int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%d", query, limit))
	return fmt.Sprintf("%s%x", keyPrefix, sum[:16])
}

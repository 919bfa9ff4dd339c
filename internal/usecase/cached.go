package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/naka-gawa/portfolio/internal/cache"
	"github.com/naka-gawa/portfolio/internal/domain"
)

// CachedAggregator serves aggregate results from a cache and falls back to next.
// Only successful results are stored; cache failures are logged and ignored.
type CachedAggregator struct {
	next   ProjectSource
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedAggregator(next ProjectSource, c cache.Cache, ttl time.Duration, logger *slog.Logger) *CachedAggregator {
	return &CachedAggregator{next: next, cache: c, ttl: ttl, logger: logger}
}

func (c *CachedAggregator) Aggregate(ctx context.Context, user string) (*domain.AggregateResult, error) {
	key := "aggregate:" + user

	var cached domain.AggregateResult
	hit, err := c.cache.Get(ctx, key, &cached)
	if err != nil {
		c.logger.Warn("failed to read aggregate cache", "key", key, "error", err)
	} else if hit {
		c.logger.Debug("aggregate cache hit", "key", key)
		return &cached, nil
	}

	result, err := c.next.Aggregate(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, result, c.ttl); err != nil {
		c.logger.Warn("failed to write aggregate cache", "key", key, "error", err)
	}
	return result, nil
}

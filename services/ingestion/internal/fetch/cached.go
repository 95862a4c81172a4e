package fetch

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/common/cache"
	"github.com/fahadnasir13/actuaryhub-backend/common/telemetry"

	"go.uber.org/zap"
)

const cacheKeyPrefix = "ingestion:page:"

// Cached serves pages from a cache for ttl before fetching them again. Cache faults
// fall through to the wrapped fetcher.
type Cached struct {
	next   Fetcher
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCached(next Fetcher, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Cached {
	return &Cached{
		next:   next,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *Cached) Fetch(ctx context.Context, url string) (string, error) {
	ctx, span := tracer.Start(ctx, "Cached.Fetch")
	defer span.End()

	key := cacheKeyPrefix + url
	var page string
	err := c.cache.Get(ctx, key, &page)
	switch {
	case err == nil:
		span.SetAttributes(telemetry.String("cache.result", "hit"))
		c.logger.Debug("cache hit for page", zap.String("url", url))
		return page, nil
	case stderrors.Is(err, cache.ErrNotFound):
		span.SetAttributes(telemetry.String("cache.result", "miss"))
	default:
		span.SetAttributes(telemetry.String("cache.result", "error"))
		span.RecordError(err)
		c.logger.Warn("cache error for page", zap.String("url", url), zap.Error(err))
	}

	page, err = c.next.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	if err := c.cache.Set(ctx, key, page, c.ttl); err != nil {
		c.logger.Warn("failed to cache page", zap.String("url", url), zap.Error(err))
	}
	return page, nil
}

func (c *Cached) Close() error {
	if err := c.cache.Close(); err != nil {
		c.logger.Warn("failed to close page cache", zap.Error(err))
	}
	return c.next.Close()
}

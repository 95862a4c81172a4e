// Package memory is the in-process cache used when no Redis address is configured.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/common/cache"

	"github.com/allegro/bigcache/v3"
)

type Cache struct {
	mu     sync.RWMutex
	big    *bigcache.BigCache
	closed bool
}

// New builds a bigcache instance whose life window is opts.DefaultTTL. bigcache has no
// per-entry expiry, so the ttl argument of Set is ignored.
func New(opts cache.Options) (*Cache, error) {
	defaults := cache.DefaultOptions()
	if opts.DefaultTTL == 0 {
		opts.DefaultTTL = defaults.DefaultTTL
	}
	if opts.CleanupInterval == 0 {
		opts.CleanupInterval = defaults.CleanupInterval
	}

	cfg := bigcache.DefaultConfig(opts.DefaultTTL)
	cfg.CleanWindow = opts.CleanupInterval
	cfg.Verbose = false

	big, err := bigcache.NewBigCache(cfg)
	if err != nil {
		return nil, err
	}
	return &Cache{big: big}, nil
}

func (c *Cache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if key == "" {
		return cache.ErrInvalidKey
	}
	data, err := cache.Encode(value)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return cache.ErrClosed
	}
	return c.big.Set(key, data)
}

func (c *Cache) Get(_ context.Context, key string, value interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return cache.ErrClosed
	}

	raw, err := c.big.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return cache.ErrNotFound
	}
	if err != nil {
		return err
	}
	return cache.Decode(raw, value)
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return cache.ErrClosed
	}

	err := c.big.Delete(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (c *Cache) Clear(_ context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return cache.ErrClosed
	}
	return c.big.Reset()
}

func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.big.Close()
}

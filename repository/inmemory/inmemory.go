package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/mohammad-safakhou/jobradar/models"
)

type entry struct {
	result  models.RankedResult
	written time.Time
}

// resultCache is an in-process cache. Freshness is enforced on read; a
// cron-scheduled sweeper reclaims expired entries so the map does not grow
// without bound.
type resultCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	freshness time.Duration

	stop chan struct{}
	once sync.Once
	now  func() time.Time
}

func NewResultCache(freshness time.Duration, sweepSpec string) (*resultCache, error) {
	expr, err := cronexpr.Parse(sweepSpec)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep spec %q: %w", sweepSpec, err)
	}
	c := &resultCache{
		entries:   make(map[string]entry),
		freshness: freshness,
		stop:      make(chan struct{}),
		now:       time.Now,
	}
	go c.sweep(expr)
	return c, nil
}

func (c *resultCache) Get(_ context.Context, fingerprint string) (models.RankedResult, error) {
	c.mu.RLock()
	e, ok := c.entries[fingerprint]
	c.mu.RUnlock()
	if !ok || c.now().Sub(e.written) > c.freshness {
		return models.RankedResult{}, models.ErrResultNotFound
	}
	return e.result, nil
}

func (c *resultCache) Put(_ context.Context, fingerprint string, result models.RankedResult) error {
	c.mu.Lock()
	c.entries[fingerprint] = entry{result: result, written: c.now()}
	c.mu.Unlock()
	return nil
}

func (c *resultCache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

func (c *resultCache) sweep(expr *cronexpr.Expression) {
	for {
		next := expr.Next(c.now())
		if next.IsZero() {
			return
		}
		select {
		case <-time.After(next.Sub(c.now())):
			c.evictExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *resultCache) evictExpired() {
	now := c.now()
	c.mu.Lock()
	for k, e := range c.entries {
		if now.Sub(e.written) > c.freshness {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

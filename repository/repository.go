package repository

import (
	"context"
	"fmt"

	"github.com/mohammad-safakhou/jobradar/config"
	"github.com/mohammad-safakhou/jobradar/models"
	"github.com/mohammad-safakhou/jobradar/repository/inmemory"
	"github.com/mohammad-safakhou/jobradar/repository/redis_repository"
)

// ResultCache maps a criteria fingerprint to a previously computed ranked
// result. Get returns models.ErrResultNotFound for a miss or a stale entry;
// Put overwrites unconditionally (last writer wins per fingerprint).
type ResultCache interface {
	Get(ctx context.Context, fingerprint string) (models.RankedResult, error)
	Put(ctx context.Context, fingerprint string, result models.RankedResult) error
	Close() error
}

// NewResultCache builds the cache configured in cfg. The cache is
// constructed once at process start and injected; nothing reaches for it as
// ambient state.
func NewResultCache(ctx context.Context, cfg config.CacheConfig) (ResultCache, error) {
	switch cfg.Type {
	case "redis":
		client, err := redis_repository.Conn(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Timeout)
		if err != nil {
			return nil, err
		}
		return redis_repository.NewResultCache(client, cfg.Freshness), nil
	case "memory":
		return inmemory.NewResultCache(cfg.Freshness, cfg.SweepSpec)
	}
	return nil, fmt.Errorf("invalid cache type: %s", cfg.Type)
}

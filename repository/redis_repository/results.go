package redis_repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mohammad-safakhou/jobradar/models"
	"github.com/redis/go-redis/v9"
)

const resultKeyPrefix = "result:"

// redisResultCache stores ranked results as JSON values whose TTL is the
// freshness window, so redis itself enforces staleness.
type redisResultCache struct {
	client    *redis.Client
	freshness time.Duration
}

func NewResultCache(client *redis.Client, freshness time.Duration) *redisResultCache {
	return &redisResultCache{client: client, freshness: freshness}
}

func (r *redisResultCache) Get(ctx context.Context, fingerprint string) (models.RankedResult, error) {
	val, err := r.client.Get(ctx, resultKeyPrefix+fingerprint).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.RankedResult{}, models.ErrResultNotFound
		}
		return models.RankedResult{}, err
	}

	var result models.RankedResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return models.RankedResult{}, err
	}
	return result, nil
}

func (r *redisResultCache) Put(ctx context.Context, fingerprint string, result models.RankedResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, resultKeyPrefix+fingerprint, data, r.freshness).Err()
}

func (r *redisResultCache) Close() error {
	return r.client.Close()
}

package redis_repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mohammad-safakhou/jobradar/models"
	"github.com/redis/go-redis/v9"
)

func testCache(t *testing.T, freshness time.Duration) (*redisResultCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewResultCache(client, freshness), mr
}

func TestRedisResultCache_PutThenGet(t *testing.T) {
	cache, _ := testCache(t, time.Hour)

	want := models.RankedResult{
		Jobs: []models.JobListing{{
			ID:             "1",
			JobTitle:       "Backend Engineer",
			Company:        "Acme",
			ApplyLink:      "https://jobs.acme.com/1",
			RelevanceScore: 0.9,
		}},
		Ranked:    true,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := cache.Put(context.Background(), "fp", want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := cache.Get(context.Background(), "fp")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Jobs) != 1 || got.Jobs[0].JobTitle != "Backend Engineer" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if !got.Ranked || got.Jobs[0].RelevanceScore != 0.9 {
		t.Fatalf("ranking fields lost in the round trip: %+v", got)
	}
}

func TestRedisResultCache_MissReturnsNotFound(t *testing.T) {
	cache, _ := testCache(t, time.Hour)

	_, err := cache.Get(context.Background(), "absent")
	if !errors.Is(err, models.ErrResultNotFound) {
		t.Fatalf("expected ErrResultNotFound, got %v", err)
	}
}

func TestRedisResultCache_EntryExpiresWithFreshness(t *testing.T) {
	cache, mr := testCache(t, time.Hour)

	if err := cache.Put(context.Background(), "fp", models.RankedResult{Ranked: true}); err != nil {
		t.Fatalf("put: %v", err)
	}
	mr.FastForward(2 * time.Hour)

	_, err := cache.Get(context.Background(), "fp")
	if !errors.Is(err, models.ErrResultNotFound) {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
}

func TestRedisResultCache_KeysAreNamespaced(t *testing.T) {
	cache, mr := testCache(t, time.Hour)

	if err := cache.Put(context.Background(), "fp", models.RankedResult{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !mr.Exists("result:fp") {
		t.Fatalf("expected key under the result: prefix, keys: %v", mr.Keys())
	}
}

func TestRedisResultCache_CorruptValueSurfacesError(t *testing.T) {
	cache, mr := testCache(t, time.Hour)

	mr.Set("result:fp", "{not json")
	if _, err := cache.Get(context.Background(), "fp"); err == nil {
		t.Fatalf("expected an error for a corrupt cache value")
	}
}

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		LLM: LLMConfig{Provider: "openai"},
		Ranking: RankingConfig{
			ScoreCutoff: 0.5,
			BatchSize:   10,
			Concurrency: 4,
			CallSpacing: time.Second,
		},
		Sources: SourcesConfig{
			FetchTimeout: 20 * time.Second,
			Priority:     []string{"LinkedIn", "Indeed", "Glassdoor"},
		},
		Cache: CacheConfig{Type: "redis", Freshness: 4 * time.Hour},
	}
}

func TestValidateConfig_AcceptsCompleteConfig(t *testing.T) {
	if err := validateConfig(validConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateConfig_RejectsMissingKnobs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"score cutoff unset", func(c *Config) { c.Ranking.ScoreCutoff = 0 }, "score_cutoff"},
		{"score cutoff above one", func(c *Config) { c.Ranking.ScoreCutoff = 1.5 }, "score_cutoff"},
		{"batch size unset", func(c *Config) { c.Ranking.BatchSize = 0 }, "batch_size"},
		{"concurrency unset", func(c *Config) { c.Ranking.Concurrency = 0 }, "concurrency"},
		{"fetch timeout unset", func(c *Config) { c.Sources.FetchTimeout = 0 }, "fetch_timeout"},
		{"freshness unset", func(c *Config) { c.Cache.Freshness = 0 }, "freshness"},
		{"provider unset", func(c *Config) { c.LLM.Provider = "" }, "llm.provider"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := validateConfig(cfg)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestValidateConfig_RejectsUnknownCacheType(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Type = "memcached"
	if err := validateConfig(cfg); err == nil {
		t.Fatalf("expected an error for unknown cache type")
	}
}

func TestValidateConfig_RejectsUnknownPrioritySource(t *testing.T) {
	cfg := validConfig()
	cfg.Sources.Priority = []string{"LinkedIn", "Monster"}
	if err := validateConfig(cfg); err == nil {
		t.Fatalf("expected an error for unknown source in priority")
	}
}

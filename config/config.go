package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the job search service
type Config struct {
	General GeneralConfig `mapstructure:"general"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Ranking RankingConfig `mapstructure:"ranking"`
	Sources SourcesConfig `mapstructure:"sources"`
	Cache   CacheConfig   `mapstructure:"cache"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Listen   string `mapstructure:"listen"`
}

// LLMConfig contains external model settings
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // openai
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Backoff     time.Duration `mapstructure:"backoff"`
}

// RankingConfig bounds the relevance/summary stages. Cutoff, batch size and
// concurrency are deployment decisions; there are no baked-in numbers.
type RankingConfig struct {
	ScoreCutoff float64       `mapstructure:"score_cutoff"` // 0..1, listings below are dropped
	BatchSize   int           `mapstructure:"batch_size"`
	Concurrency int           `mapstructure:"concurrency"`
	CallSpacing time.Duration `mapstructure:"call_spacing"` // minimum gap between model calls
}

// SourcesConfig contains per-board adapter settings
type SourcesConfig struct {
	FetchTimeout time.Duration   `mapstructure:"fetch_timeout"` // shared deadline for the fan-out
	Priority     []string        `mapstructure:"priority"`      // tie-break order, first wins
	LinkedIn     LinkedInConfig  `mapstructure:"linkedin"`
	Indeed       BoardAPIConfig  `mapstructure:"indeed"`
	Glassdoor    BoardAPIConfig  `mapstructure:"glassdoor"`
}

// LinkedInConfig contains the browser-backed adapter settings
type LinkedInConfig struct {
	Email      string `mapstructure:"email"`
	Password   string `mapstructure:"password"`
	MaxResults int    `mapstructure:"max_results"`
}

// BoardAPIConfig contains settings for HTTP API backed boards
type BoardAPIConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Endpoint   string `mapstructure:"endpoint"`
	MaxResults int    `mapstructure:"max_results"`
}

// CacheConfig contains result cache settings
type CacheConfig struct {
	Type      string        `mapstructure:"type"`      // redis or memory
	Freshness time.Duration `mapstructure:"freshness"` // max entry age served as a hit
	SweepSpec string        `mapstructure:"sweep_spec"` // cron spec for the in-memory sweeper
	Redis     RedisConfig   `mapstructure:"redis"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("jobradar")
		viper.SetConfigType("json")
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("JOBRADAR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	overrideFromEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values. Ranking cutoff, cache
// freshness and the fetch deadline have no defaults on purpose: they must be
// chosen per deployment and validateConfig rejects a zero value.
func setDefaults() {
	viper.SetDefault("general.debug", false)
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.listen", ":10011")

	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.base_url", "https://api.openai.com/v1")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.max_tokens", 2048)
	viper.SetDefault("llm.timeout", "30s")
	viper.SetDefault("llm.max_retries", 3)
	viper.SetDefault("llm.backoff", "300ms")

	viper.SetDefault("sources.priority", []string{"LinkedIn", "Indeed", "Glassdoor"})
	viper.SetDefault("sources.indeed.endpoint", "https://api.indeed.com/ads/apisearch")
	viper.SetDefault("sources.indeed.max_results", 25)
	viper.SetDefault("sources.glassdoor.endpoint", "https://api.glassdoor.com/api/api.htm")
	viper.SetDefault("sources.glassdoor.max_results", 25)
	viper.SetDefault("sources.linkedin.max_results", 25)

	viper.SetDefault("cache.type", "redis")
	viper.SetDefault("cache.sweep_spec", "*/5 * * * *")
	viper.SetDefault("cache.redis.host", "localhost")
	viper.SetDefault("cache.redis.port", 6379)
	viper.SetDefault("cache.redis.db", 0)
	viper.SetDefault("cache.redis.timeout", "5s")
}

// overrideFromEnv overrides configuration with environment variables for
// secrets that should never live in a config file
func overrideFromEnv() {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		viper.Set("llm.api_key", apiKey)
	}
	if email := os.Getenv("LINKEDIN_EMAIL"); email != "" {
		viper.Set("sources.linkedin.email", email)
	}
	if pass := os.Getenv("LINKEDIN_PASSWORD"); pass != "" {
		viper.Set("sources.linkedin.password", pass)
	}
	if apiKey := os.Getenv("INDEED_API_KEY"); apiKey != "" {
		viper.Set("sources.indeed.api_key", apiKey)
	}
	if apiKey := os.Getenv("GLASSDOOR_API_KEY"); apiKey != "" {
		viper.Set("sources.glassdoor.api_key", apiKey)
	}
	if host := os.Getenv("REDIS_HOST"); host != "" {
		viper.Set("cache.redis.host", host)
	}
	if port := os.Getenv("REDIS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			viper.Set("cache.redis.port", p)
		}
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		viper.Set("cache.redis.password", password)
	}
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.LLM.Provider == "" {
		return fmt.Errorf("llm.provider must be configured")
	}
	if config.Ranking.ScoreCutoff <= 0 || config.Ranking.ScoreCutoff > 1 {
		return fmt.Errorf("ranking.score_cutoff must be configured in (0, 1]")
	}
	if config.Ranking.BatchSize <= 0 {
		return fmt.Errorf("ranking.batch_size must be configured")
	}
	if config.Ranking.Concurrency <= 0 {
		return fmt.Errorf("ranking.concurrency must be configured")
	}
	if config.Sources.FetchTimeout <= 0 {
		return fmt.Errorf("sources.fetch_timeout must be configured")
	}
	if config.Cache.Freshness <= 0 {
		return fmt.Errorf("cache.freshness must be configured")
	}
	switch config.Cache.Type {
	case "redis", "memory":
	default:
		return fmt.Errorf("cache.type must be redis or memory, got %q", config.Cache.Type)
	}
	for _, p := range config.Sources.Priority {
		switch p {
		case "LinkedIn", "Indeed", "Glassdoor":
		default:
			return fmt.Errorf("unknown source %q in sources.priority", p)
		}
	}
	return nil
}

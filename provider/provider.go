package provider

import (
	"context"
	"errors"

	"github.com/mohammad-safakhou/jobradar/config"
	"github.com/mohammad-safakhou/jobradar/models"
	openai_provider "github.com/mohammad-safakhou/jobradar/provider/openai"
)

// Score is one relevance judgment from the external model. HardExcluded
// marks a mismatch in kind (e.g. onsite-only listing against a remote-only
// requirement) that drops the listing regardless of score.
type Score = openai_provider.Score

// Provider is the interface to the external language model. Scoring is not
// bit-exact across calls; callers must treat scores as approximate.
type Provider interface {
	RankListings(ctx context.Context, criteria models.SearchCriteria, listings []models.JobListing) ([]Score, error)
	SummarizeListing(ctx context.Context, listing models.JobListing) (string, error)
}

// NewProvider creates an LLM client based on the provided configuration
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.APIKey == "" {
			return nil, errors.New("llm.api_key not set")
		}
		return openai_provider.NewClient(cfg), nil
	default:
		return nil, errors.New("unsupported LLM provider: " + cfg.Provider)
	}
}

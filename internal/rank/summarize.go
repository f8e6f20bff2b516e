package rank

import (
	"context"
	"log"
	"sync"

	"github.com/mohammad-safakhou/jobradar/config"
	"github.com/mohammad-safakhou/jobradar/models"
	"github.com/mohammad-safakhou/jobradar/provider"
)

// Summarizer fills in the summary field for listings that survived ranking.
// A listing whose summary fails stays in the result with the field empty.
type Summarizer struct {
	provider  provider.Provider
	logger    *log.Logger
	semaphore chan struct{}
	pacer     *pacer
}

func NewSummarizer(p provider.Provider, cfg config.RankingConfig, logger *log.Logger) *Summarizer {
	if logger == nil {
		logger = log.New(log.Writer(), "[SUMMARY] ", log.LstdFlags)
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Summarizer{
		provider:  p,
		logger:    logger,
		semaphore: make(chan struct{}, concurrency),
		pacer:     newPacer(cfg.CallSpacing),
	}
}

// Summarize runs summaries concurrently up to the configured limit and
// returns a new slice; the input is not mutated. Listings that already carry
// a summary are left alone.
func (s *Summarizer) Summarize(ctx context.Context, listings []models.JobListing) []models.JobListing {
	out := make([]models.JobListing, len(listings))
	copy(out, listings)

	var wg sync.WaitGroup
	for i := range out {
		if out[i].Summary != "" || out[i].Description == "" {
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			select {
			case s.semaphore <- struct{}{}:
				defer func() { <-s.semaphore }()
			case <-ctx.Done():
				return
			}
			s.pacer.wait(ctx)
			summary, err := s.provider.SummarizeListing(ctx, out[i])
			if err != nil {
				summaryFailures.Inc()
				s.logger.Printf("summary for %q unavailable: %v", out[i].JobTitle, err)
				return
			}
			out[i].Summary = summary
		}(i)
	}
	wg.Wait()
	return out
}

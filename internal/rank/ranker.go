package rank

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/mohammad-safakhou/jobradar/config"
	"github.com/mohammad-safakhou/jobradar/models"
	"github.com/mohammad-safakhou/jobradar/provider"
)

// ErrRankingUnavailable means the external model could not be reached after
// the configured retries. The pipeline degrades to the unranked deduped set
// instead of failing the request.
var ErrRankingUnavailable = errors.New("ranking unavailable")

// scoreEpsilon is the tolerance under which two model scores count as a tie.
// Model scoring is not bit-exact across calls, so ordering must not hinge on
// tiny differences.
const scoreEpsilon = 1e-6

// Ranker scores deduped listings against the criteria in batches.
type Ranker struct {
	provider provider.Provider
	cfg      config.RankingConfig
	retries  int
	backoff  time.Duration
	priority map[models.Source]int
	logger   *log.Logger

	pacer *pacer
}

func NewRanker(p provider.Provider, cfg config.RankingConfig, llm config.LLMConfig, priority []models.Source, logger *log.Logger) *Ranker {
	if logger == nil {
		logger = log.New(log.Writer(), "[RANK] ", log.LstdFlags)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	rank := make(map[models.Source]int, len(priority))
	for i, s := range priority {
		rank[s] = i
	}
	return &Ranker{
		provider: p,
		cfg:      cfg,
		retries:  llm.MaxRetries,
		backoff:  llm.Backoff,
		priority: rank,
		logger:   logger,
		pacer:    newPacer(cfg.CallSpacing),
	}
}

// Rank returns the listings that survive scoring, ordered by descending
// relevance, ties broken by source priority then original fetch order.
func (r *Ranker) Rank(ctx context.Context, criteria models.SearchCriteria, listings []models.JobListing) ([]models.JobListing, error) {
	if len(listings) == 0 {
		return nil, nil
	}

	lex, err := LexicalScores(criteria, listings)
	if err != nil {
		// The prefilter is an optimization; ranking proceeds without it.
		r.logger.Printf("lexical prefilter failed: %v", err)
		lex = map[string]float64{}
	}

	fetchOrder := make(map[string]int, len(listings))
	for i, l := range listings {
		fetchOrder[l.ID] = i
	}

	// Send the lexically strongest listings first so an interrupted run has
	// judged the most promising candidates.
	ordered := make([]models.JobListing, len(listings))
	copy(ordered, listings)
	sort.SliceStable(ordered, func(i, j int) bool {
		return lex[ordered[i].ID] > lex[ordered[j].ID]
	})

	scores := make(map[string]provider.Score, len(listings))
	for start := 0; start < len(ordered); start += r.cfg.BatchSize {
		end := start + r.cfg.BatchSize
		if end > len(ordered) {
			end = len(ordered)
		}
		batch := ordered[start:end]

		batchScores, err := r.rankBatch(ctx, criteria, batch)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRankingUnavailable, err)
		}
		for _, s := range batchScores {
			scores[s.ListingID] = s
		}
	}

	var kept []models.JobListing
	for _, l := range listings {
		s, ok := scores[l.ID]
		if !ok || s.HardExcluded || s.Score < r.cfg.ScoreCutoff {
			continue
		}
		l.RelevanceScore = s.Score
		kept = append(kept, l)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if math.Abs(a.RelevanceScore-b.RelevanceScore) > scoreEpsilon {
			return a.RelevanceScore > b.RelevanceScore
		}
		if r.priority[a.Source] != r.priority[b.Source] {
			return r.priority[a.Source] < r.priority[b.Source]
		}
		return fetchOrder[a.ID] < fetchOrder[b.ID]
	})
	return kept, nil
}

func (r *Ranker) rankBatch(ctx context.Context, criteria models.SearchCriteria, batch []models.JobListing) ([]provider.Score, error) {
	var lastErr error
	tries := r.retries + 1
	for attempt := 0; attempt < tries; attempt++ {
		r.pacer.wait(ctx)
		scores, err := r.provider.RankListings(ctx, criteria, batch)
		if err == nil {
			return scores, nil
		}
		lastErr = err
		r.logger.Printf("rank batch attempt %d/%d failed: %v", attempt+1, tries, err)

		if attempt < tries-1 {
			llmRetries.Inc()
			select {
			case <-time.After(r.backoff * time.Duration(1<<attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

// pacer enforces a minimum gap between consecutive external model calls.
type pacer struct {
	mu      sync.Mutex
	spacing time.Duration
	last    time.Time
}

func newPacer(spacing time.Duration) *pacer {
	return &pacer{spacing: spacing}
}

func (p *pacer) wait(ctx context.Context) {
	if p.spacing <= 0 {
		return
	}
	p.mu.Lock()
	now := time.Now()
	next := p.last.Add(p.spacing)
	var gap time.Duration
	if now.Before(next) {
		gap = next.Sub(now)
		p.last = next
	} else {
		p.last = now
	}
	p.mu.Unlock()
	if gap <= 0 {
		return
	}
	select {
	case <-time.After(gap):
	case <-ctx.Done():
	}
}

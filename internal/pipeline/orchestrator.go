package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mohammad-safakhou/jobradar/internal/rank"
	"github.com/mohammad-safakhou/jobradar/internal/source"
	"github.com/mohammad-safakhou/jobradar/models"
	"github.com/mohammad-safakhou/jobradar/repository"
)

// ErrAllSourcesUnavailable is the only fatal pipeline error: every
// configured source failed, leaving nothing to work with.
var ErrAllSourcesUnavailable = errors.New("all sources unavailable")

// State names the pipeline stages for logging.
type State string

const (
	StateFetching    State = "FETCHING"
	StateNormalizing State = "NORMALIZING"
	StateDeduping    State = "DEDUPING"
	StateRanking     State = "RANKING"
	StateSummarizing State = "SUMMARIZING"
	StateDone        State = "DONE"
)

// Ranker scores listings against criteria.
type Ranker interface {
	Rank(ctx context.Context, criteria models.SearchCriteria, listings []models.JobListing) ([]models.JobListing, error)
}

// Summarizer fills listing summaries.
type Summarizer interface {
	Summarize(ctx context.Context, listings []models.JobListing) []models.JobListing
}

// Orchestrator runs one search request through the pipeline: concurrent
// source fan-out under a shared deadline, normalization, deduplication,
// ranking, summaries, cache write-through.
type Orchestrator struct {
	adapters     []source.Adapter
	ranker       Ranker
	summarizer   Summarizer
	cache        repository.ResultCache
	priority     []models.Source
	fetchTimeout time.Duration
	logger       *log.Logger
}

func NewOrchestrator(adapters []source.Adapter, ranker Ranker, summarizer Summarizer, cache repository.ResultCache, priority []models.Source, fetchTimeout time.Duration, logger *log.Logger) (*Orchestrator, error) {
	if len(adapters) == 0 {
		return nil, errors.New("at least one source adapter is required")
	}
	if cache == nil {
		return nil, errors.New("result cache is required")
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	}
	return &Orchestrator{
		adapters:     adapters,
		ranker:       ranker,
		summarizer:   summarizer,
		cache:        cache,
		priority:     priority,
		fetchTimeout: fetchTimeout,
		logger:       logger,
	}, nil
}

// Search answers one request. refresh forces a recompute past the cache.
func (o *Orchestrator) Search(ctx context.Context, criteria models.SearchCriteria, refresh bool) (models.RankedResult, error) {
	started := time.Now()
	defer func() { pipelineDuration.Observe(time.Since(started).Seconds()) }()

	fingerprint := criteria.Fingerprint()
	if !refresh {
		if cached, err := o.cache.Get(ctx, fingerprint); err == nil {
			cacheLookups.WithLabelValues("hit").Inc()
			o.logger.Printf("cache hit for %s", fingerprint[:12])
			return cached, nil
		} else if !errors.Is(err, models.ErrResultNotFound) {
			// A broken cache degrades to a recompute, never a failed request.
			o.logger.Printf("cache read failed: %v", err)
		}
		cacheLookups.WithLabelValues("miss").Inc()
	}

	o.logger.Printf("state=%s sources=%d", StateFetching, len(o.adapters))
	batches, failures, err := o.fetchAll(ctx, criteria)
	if err != nil {
		return models.RankedResult{}, err
	}

	o.logger.Printf("state=%s", StateNormalizing)
	var listings []models.JobListing
	for _, b := range batches {
		normalized, dropped := NormalizeBatch(b.raws)
		if dropped > 0 {
			malformedDropped.WithLabelValues(string(b.source)).Add(float64(dropped))
			o.logger.Printf("dropped %d malformed listings from %s", dropped, b.source)
		}
		listings = append(listings, normalized...)
	}

	o.logger.Printf("state=%s listings=%d", StateDeduping, len(listings))
	deduped := Deduplicate(listings, o.priority)

	o.logger.Printf("state=%s deduped=%d", StateRanking, len(deduped))
	ranked, rankErr := o.ranker.Rank(ctx, criteria, deduped)
	if rankErr != nil {
		if !errors.Is(rankErr, rank.ErrRankingUnavailable) {
			return models.RankedResult{}, rankErr
		}
		// Model unreachable: serve the deduped set unranked rather than
		// failing. Not cache-written so the next request retries ranking.
		rankingDegraded.Inc()
		o.logger.Printf("ranking unavailable, degrading to unranked result: %v", rankErr)
		return models.RankedResult{
			Jobs:      deduped,
			Ranked:    false,
			Failures:  failures,
			CreatedAt: time.Now(),
		}, nil
	}

	o.logger.Printf("state=%s ranked=%d", StateSummarizing, len(ranked))
	summarized := ranked
	if o.summarizer != nil {
		summarized = o.summarizer.Summarize(ctx, ranked)
	}

	result := models.RankedResult{
		Jobs:      summarized,
		Ranked:    true,
		Failures:  failures,
		CreatedAt: time.Now(),
	}
	if err := o.cache.Put(ctx, fingerprint, result); err != nil {
		o.logger.Printf("cache write failed: %v", err)
	}
	o.logger.Printf("state=%s jobs=%d", StateDone, len(result.Jobs))
	return result, nil
}

type sourceBatch struct {
	source models.Source
	raws   []source.RawListing
}

// fetchAll fans out to every adapter under one shared deadline. A source
// that fails or times out contributes nothing and is recorded as a note;
// only the loss of every source fails the request.
func (o *Orchestrator) fetchAll(ctx context.Context, criteria models.SearchCriteria) ([]sourceBatch, []models.SourceFailure, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, o.fetchTimeout)
	defer cancel()

	type outcome struct {
		batch sourceBatch
		err   error
	}
	outcomes := make([]outcome, len(o.adapters))

	var wg sync.WaitGroup
	for i, adapter := range o.adapters {
		wg.Add(1)
		go func(i int, adapter source.Adapter) {
			defer wg.Done()
			raws, err := adapter.Fetch(fetchCtx, criteria)
			outcomes[i] = outcome{batch: sourceBatch{source: adapter.Name(), raws: raws}, err: err}
		}(i, adapter)
	}
	wg.Wait()

	var batches []sourceBatch
	var failures []models.SourceFailure
	for _, oc := range outcomes {
		if oc.err != nil {
			fetchFailures.WithLabelValues(string(oc.batch.source), failureKind(oc.err)).Inc()
			o.logger.Printf("source %s failed: %v", oc.batch.source, oc.err)
			failures = append(failures, models.SourceFailure{Source: oc.batch.source, Reason: oc.err.Error()})
			continue
		}
		fetchTotal.WithLabelValues(string(oc.batch.source)).Add(float64(len(oc.batch.raws)))
		batches = append(batches, oc.batch)
	}

	if len(batches) == 0 {
		return nil, nil, fmt.Errorf("%w: %d sources failed", ErrAllSourcesUnavailable, len(failures))
	}
	return batches, failures, nil
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, source.ErrSourceTimeout):
		return "timeout"
	case errors.Is(err, source.ErrSourceFormatChanged):
		return "format_changed"
	default:
		return "unavailable"
	}
}

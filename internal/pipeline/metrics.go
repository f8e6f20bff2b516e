package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobradar_source_fetch_total",
		Help: "Listings fetched per source.",
	}, []string{"source"})

	fetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobradar_source_failures_total",
		Help: "Source failures by kind.",
	}, []string{"source", "kind"})

	malformedDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobradar_malformed_listings_total",
		Help: "Raw listings dropped during normalization.",
	}, []string{"source"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobradar_cache_lookups_total",
		Help: "Result cache lookups by outcome.",
	}, []string{"outcome"})

	rankingDegraded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobradar_ranking_degraded_total",
		Help: "Requests served unranked because the model was unreachable.",
	})

	pipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jobradar_pipeline_duration_seconds",
		Help:    "End to end pipeline duration.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})
)

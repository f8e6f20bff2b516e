package rank

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	llmRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobradar_llm_retries_total",
		Help: "Model call attempts retried after a failure.",
	})

	summaryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobradar_summary_failures_total",
		Help: "Listings whose summary call failed and shipped empty.",
	})
)

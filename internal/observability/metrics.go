package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PromptsBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prompts_built_total",
			Help: "Prompts rendered, by kind (global, customer).",
		},
		[]string{"kind"},
	)

	DriversDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "drivers_dropped_total",
			Help: "Malformed driver entries dropped while loading customer scores.",
		},
	)

	LLMCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_calls_total",
			Help: "Language model calls, by outcome (ok, error).",
		},
		[]string{"outcome"},
	)

	LLMLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "llm_call_latency_seconds",
			Help:    "Latency of language model calls.",
			Buckets: prometheus.DefBuckets,
		},
	)

	PromptCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "global_prompt_cache_total",
			Help: "Global prompt cache lookups, by result (hit, miss).",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

// Register adds the collectors to the default registry. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(PromptsBuilt, DriversDropped, LLMCalls, LLMLatency, PromptCache)
	})
}

// Start registers the collectors and serves /metrics on port.
func Start(port string) {
	Register()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(":"+port, mux)
}

// Package metrics exposes the console's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APIRequests counts upstream API calls by endpoint and outcome
	// (ok, api_error, transport_error).
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sentinel_console",
		Name:      "api_requests_total",
		Help:      "Upstream SENTINEL API requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	// PollCycles counts dashboard refresh cycles by trigger (interval, manual).
	PollCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sentinel_console",
		Name:      "dashboard_poll_cycles_total",
		Help:      "Dashboard aggregation refresh cycles.",
	}, []string{"trigger"})

	// FAQFallbacks counts assistant replies served from the built-in FAQ.
	FAQFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sentinel_console",
		Name:      "faq_fallbacks_total",
		Help:      "Assistant replies answered by the offline FAQ matcher.",
	})

	// CacheHits and CacheMisses track the API response cache.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sentinel_console",
		Name:      "cache_hits_total",
		Help:      "API response cache hits.",
	})
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sentinel_console",
		Name:      "cache_misses_total",
		Help:      "API response cache misses.",
	})
)

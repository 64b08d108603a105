// Package metrics exposes the Prometheus instrumentation shared across the
// pipeline and the ingest path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchCycles counts completed fetch cycles by outcome ("success" or
	// "error").
	FetchCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homescout_fetch_cycles_total",
		Help: "Completed listing fetch cycles by outcome.",
	}, []string{"outcome"})

	// StaleFetchesDiscarded counts fetch completions dropped because a newer
	// generation had already been issued.
	StaleFetchesDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "homescout_stale_fetches_discarded_total",
		Help: "Fetch results discarded by the generation guard.",
	})

	// ListingsUpserted counts listings written by the ingest processor.
	ListingsUpserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "homescout_listings_upserted_total",
		Help: "Listings upserted into the store by the ingest processor.",
	})

	// FeedPagesFetched counts pages pulled from the upstream feed.
	FeedPagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "homescout_feed_pages_fetched_total",
		Help: "Pages fetched from the upstream listings feed.",
	})
)

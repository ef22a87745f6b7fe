package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// searchesTotal counts completed /paths requests by outcome:
	// found, none, not_found, error.
	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wikihop_searches_total",
		Help: "Completed path searches by outcome.",
	}, []string{"result"})

	// searchDuration tracks end-to-end search latency, including title
	// resolution and path enumeration.
	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wikihop_search_duration_seconds",
		Help:    "End-to-end duration of path searches.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	})
)

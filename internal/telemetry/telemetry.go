// Package telemetry registers the engine's prometheus collectors.
// Metrics are counters only; exposition is left to the embedding
// application.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchAttempts counts transport attempts by path ("direct" or "relay").
	FetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coinlens_fetch_attempts_total",
		Help: "Transport attempts against the market data source, by routing path",
	}, []string{"path"})

	// FetchFailures counts fetches that exhausted both routing paths,
	// by request kind ("candles" or "funding").
	FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coinlens_fetch_failures_total",
		Help: "Fetches that failed on both the direct and relay paths, by request kind",
	}, []string{"kind"})

	// CacheHits counts run-cache hits.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinlens_cache_hits_total",
		Help: "Run cache hits",
	})

	// CacheMisses counts run-cache misses.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinlens_cache_misses_total",
		Help: "Run cache misses",
	})

	// RunsTotal counts completed refresh runs.
	RunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinlens_runs_total",
		Help: "Completed refresh runs",
	})

	// ValidAssets reports the valid-asset count of the latest run.
	ValidAssets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coinlens_valid_assets",
		Help: "Assets with usable candle history in the latest run",
	})
)

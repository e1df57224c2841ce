package data

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/coinlens/coinlens/internal/telemetry"
)

// RunCache holds fetched series for the lifetime of one refresh run.
// Candle entries are keyed by symbol+interval+limit, funding entries by
// symbol. The orchestrator resets it at the start of every run so a
// manual refresh never sees stale data.
type RunCache struct {
	mu      sync.RWMutex
	candles map[string]AssetSeries
	funding map[string][]FundingObservation
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewRunCache creates an empty run cache.
func NewRunCache() *RunCache {
	return &RunCache{
		candles: make(map[string]AssetSeries),
		funding: make(map[string][]FundingObservation),
	}
}

// CandleKey builds the candle cache key for a request.
func CandleKey(symbol, interval string, limit int) string {
	return fmt.Sprintf("%s|%s|%d", symbol, interval, limit)
}

// Candles returns the cached series for key, if present.
func (c *RunCache) Candles(key string) (AssetSeries, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.candles[key]
	c.record(ok)
	return s, ok
}

// PutCandles stores a fetched series under key.
func (c *RunCache) PutCandles(key string, s AssetSeries) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.candles[key] = s
}

// Funding returns the cached funding history for symbol, if present.
func (c *RunCache) Funding(symbol string) ([]FundingObservation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.funding[symbol]
	c.record(ok)
	return f, ok
}

// PutFunding stores a fetched funding history for symbol.
func (c *RunCache) PutFunding(symbol string, obs []FundingObservation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.funding[symbol] = obs
}

// Reset drops every entry. Called at the start of each orchestrated run.
func (c *RunCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.candles = make(map[string]AssetSeries)
	c.funding = make(map[string][]FundingObservation)
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats reports hit/miss counts and entry totals for the current run.
func (c *RunCache) Stats() (hits, misses int64, entries int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits.Load(), c.misses.Load(), len(c.candles) + len(c.funding)
}

func (c *RunCache) record(hit bool) {
	if hit {
		c.hits.Add(1)
		telemetry.CacheHits.Inc()
	} else {
		c.misses.Add(1)
		telemetry.CacheMisses.Inc()
	}
}

// Package scan orchestrates one refresh: concurrent data acquisition
// for the whole universe, valid-asset filtering, and fan-out to the
// metric processors.
package scan

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/coinlens/coinlens/internal/config"
	"github.com/coinlens/coinlens/internal/data"
	"github.com/coinlens/coinlens/internal/factors"
	"github.com/coinlens/coinlens/internal/market"
	"github.com/coinlens/coinlens/internal/telemetry"
)

// Snapshot is the aggregate result of one refresh. Consumers must
// handle empty lists: an empty metric means the contributing assets had
// insufficient data this run, not a failure.
type Snapshot struct {
	RunID       string                    `json:"run_id"`
	GeneratedAt time.Time                 `json:"generated_at"`
	ValidAssets []string                  `json:"valid_assets"`
	Funding     []market.FundingMetric    `json:"funding"`
	Volatility  []market.VolatilityMetric `json:"volatility"`
	Volume      []market.VolumeMetric     `json:"volume"`
	Correlation market.CorrelationResult  `json:"correlation"`
	Factors     factors.Result            `json:"factors"`
	Breadth     market.BreadthResult      `json:"breadth"`
}

// Scanner owns one gateway and runs the full pipeline. It performs
// exactly one fetch batch per Run call; serializing overlapping runs is
// the caller's responsibility.
type Scanner struct {
	gateway *data.Gateway
	cfg     *config.Config
	now     func() time.Time
}

// New builds a scanner over the given gateway and configuration.
func New(gateway *data.Gateway, cfg *config.Config) *Scanner {
	return &Scanner{
		gateway: gateway,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Run executes one refresh and returns the aggregate snapshot. There is
// no fatal error path: transport failures resolve to absent assets, a
// missing reference asset empties only the dependent processors
// (correlation, breadth), and everything else still computes.
func (s *Scanner) Run(ctx context.Context) *Snapshot {
	start := s.now()
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()

	// Never reuse data across runs; a manual refresh must see the
	// source's current state.
	s.gateway.Cache().Reset()

	symbols := s.cfg.Universe.Symbols
	logger.Info().Int("symbols", len(symbols)).Msg("refresh started")

	series := make(map[string]data.AssetSeries, len(symbols))
	funding := make(map[string][]data.FundingObservation, len(symbols))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			// Each asset's failure is isolated: an exhausted fetch
			// resolves to an empty result and must not delay the rest
			// of the batch.
			candles := s.gateway.FetchCandles(ctx, symbol, s.cfg.Source.Interval, s.cfg.Source.CandleLimit)
			rates := s.gateway.FetchFunding(ctx, symbol)

			mu.Lock()
			if len(candles) > 0 {
				series[symbol] = candles
			}
			if len(rates) > 0 {
				funding[symbol] = rates
			}
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()

	valid := make([]string, 0, len(series))
	for symbol := range series {
		valid = append(valid, symbol)
	}
	sort.Strings(valid)
	telemetry.ValidAssets.Set(float64(len(valid)))

	now := s.now()
	ref := s.cfg.Universe.ReferenceSymbol

	snapshot := &Snapshot{
		RunID:       runID,
		GeneratedAt: now,
		ValidAssets: valid,
		Funding:     market.FundingPercentiles(now, funding),
		Volatility:  market.VolatilityRegimes(series),
		Volume:      market.VolumeAnomalies(series),
		Correlation: market.Correlations(ref, series),
		Factors:     factors.NewEngine(now, series, funding).Compute(),
		Breadth:     market.BreadthSeries(ref, series),
	}

	telemetry.RunsTotal.Inc()
	hits, misses, entries := s.gateway.Cache().Stats()
	logger.Info().
		Int("valid_assets", len(valid)).
		Int64("cache_hits", hits).
		Int64("cache_misses", misses).
		Int("cache_entries", entries).
		Dur("elapsed", s.now().Sub(start)).
		Msg("refresh complete")

	return snapshot
}

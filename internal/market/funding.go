// Package market holds the per-metric processors that turn raw candle
// and funding history into ranked, comparable scores. Each processor is
// independent: an asset excluded from one metric can still appear in
// the others.
package market

import (
	"sort"
	"time"

	"github.com/coinlens/coinlens/internal/data"
	"github.com/coinlens/coinlens/internal/stats"
)

const (
	// fundingWindow bounds the funding history considered per asset.
	fundingWindow = 90 * 24 * time.Hour

	// annualizeFactor converts an 8h funding print to a yearly rate
	// (three prints per day).
	annualizeFactor = 3 * 365
)

// FundingMetric is one asset's funding stress reading. CurrentRate is
// annualized; Percentile ranks its magnitude within the asset's own
// 90-day history.
type FundingMetric struct {
	Symbol      string  `json:"symbol"`
	CurrentRate float64 `json:"current_rate"`
	Percentile  float64 `json:"percentile"`
}

// FundingPercentiles ranks each asset's latest annualized funding rate
// by magnitude against its own recent history. Assets with no
// observation inside the 90-day window are dropped.
func FundingPercentiles(now time.Time, funding map[string][]data.FundingObservation) []FundingMetric {
	out := make([]FundingMetric, 0, len(funding))
	cutoff := now.Add(-fundingWindow)

	for symbol, obs := range funding {
		annualized := make([]float64, 0, len(obs))
		var latest data.FundingObservation
		haveLatest := false
		for _, o := range obs {
			if o.Timestamp.Before(cutoff) {
				continue
			}
			annualized = append(annualized, o.Rate*annualizeFactor)
			if !haveLatest || o.Timestamp.After(latest.Timestamp) {
				latest = o
				haveLatest = true
			}
		}
		if len(annualized) == 0 {
			continue
		}

		current := latest.Rate * annualizeFactor
		out = append(out, FundingMetric{
			Symbol:      symbol,
			CurrentRate: current,
			Percentile:  stats.PercentileRank(annualized, current, true),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

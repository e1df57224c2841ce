package market

import (
	"sort"

	"github.com/coinlens/coinlens/internal/data"
	"github.com/coinlens/coinlens/internal/stats"
)

const (
	volMinCandles  = 50
	volWindow      = 21
	volHistoryDays = 180
)

// VolatilityMetric is one asset's volatility regime reading.
// CurrentVol is the latest 21-period exponentially weighted daily
// volatility; Percentile ranks it within up to 180 trailing readings.
type VolatilityMetric struct {
	Symbol     string  `json:"symbol"`
	CurrentVol float64 `json:"current_vol"`
	Percentile float64 `json:"percentile"`
}

// VolatilityRegimes computes the volatility percentile for every asset
// with at least 50 candles. Volatility is already non-negative, so the
// rank is direct rather than by magnitude.
func VolatilityRegimes(series map[string]data.AssetSeries) []VolatilityMetric {
	out := make([]VolatilityMetric, 0, len(series))

	for symbol, s := range series {
		if len(s) < volMinCandles {
			continue
		}
		returns := s.LogReturns()

		// One reading per trailing day, newest first, stopping early
		// once prior returns run out.
		history := make([]float64, 0, volHistoryDays)
		for end := len(returns); end >= volWindow && len(history) < volHistoryDays; end-- {
			history = append(history, stats.ExpWeightedVol(returns[:end], volWindow))
		}
		if len(history) == 0 {
			continue
		}

		current := history[0]
		out = append(out, VolatilityMetric{
			Symbol:     symbol,
			CurrentVol: current,
			Percentile: stats.PercentileRank(history, current, false),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

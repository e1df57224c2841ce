package factors

import (
	"sort"

	"github.com/coinlens/coinlens/internal/stats"
)

// Metric is one asset's scalar score for one factor.
type Metric struct {
	Symbol string  `json:"symbol"`
	Score  float64 `json:"score"`
}

// SignalFunc computes the raw signal of one asset over one lookback
// period. ok=false excludes the asset from that period's cross-section.
type SignalFunc func(symbol string, period int) (signal float64, ok bool)

// CombineFunc turns a raw signal and that period's cross-sectional
// median into the per-period score contribution.
type CombineFunc func(signal, median float64) float64

// ScoreUniverse runs the generic multi-period scoring pass: for each
// period, compute every member's signal, take the cross-sectional
// median of the valid ones, combine per asset, then average each
// asset's combined values across the periods where it had a signal.
// Assets with no valid period are dropped. Result sorted descending by
// score.
func ScoreUniverse(universe []string, periods []int, signal SignalFunc, combine CombineFunc) []Metric {
	sums := make(map[string]float64, len(universe))
	counts := make(map[string]int, len(universe))

	for _, period := range periods {
		signals := make(map[string]float64, len(universe))
		values := make([]float64, 0, len(universe))
		for _, symbol := range universe {
			if v, ok := signal(symbol, period); ok {
				signals[symbol] = v
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		median := stats.Median(values)
		for symbol, v := range signals {
			sums[symbol] += combine(v, median)
			counts[symbol]++
		}
	}

	out := make([]Metric, 0, len(sums))
	for symbol, sum := range sums {
		out = append(out, Metric{Symbol: symbol, Score: sum / float64(counts[symbol])})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

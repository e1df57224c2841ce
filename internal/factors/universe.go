// Package factors builds the liquidity universes and computes the four
// multi-horizon factor scores: momentum, mean-reversion, carry and
// trend-following.
package factors

import (
	"sort"

	"github.com/coinlens/coinlens/internal/data"
)

const (
	dollarVolumeDays = 30
	universeSize     = 25
)

// BuildUniverses splits the asset set by trailing 30-day dollar volume:
// the top 25 liquidity leaders and the 25 lowest-dollar-volume names.
// Any symbol in the top set is removed from the bottom set, so the two
// are disjoint even for small universes.
func BuildUniverses(series map[string]data.AssetSeries) (top, bottom []string) {
	type ranked struct {
		symbol string
		value  float64
	}
	all := make([]ranked, 0, len(series))
	for symbol, s := range series {
		if len(s) == 0 {
			continue
		}
		tail := s
		if len(tail) > dollarVolumeDays {
			tail = tail[len(tail)-dollarVolumeDays:]
		}
		dv := 0.0
		for _, c := range tail {
			dv += c.Close * c.Volume
		}
		all = append(all, ranked{symbol: symbol, value: dv})
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].value != all[j].value {
			return all[i].value > all[j].value
		}
		return all[i].symbol < all[j].symbol
	})

	topN := universeSize
	if topN > len(all) {
		topN = len(all)
	}
	inTop := make(map[string]bool, topN)
	for _, r := range all[:topN] {
		top = append(top, r.symbol)
		inTop[r.symbol] = true
	}

	bottomStart := len(all) - universeSize
	if bottomStart < 0 {
		bottomStart = 0
	}
	for _, r := range all[bottomStart:] {
		if inTop[r.symbol] {
			continue
		}
		bottom = append(bottom, r.symbol)
	}
	return top, bottom
}

package market

import (
	"github.com/coinlens/coinlens/internal/data"
)

const (
	breadthMinRefCandles = 600
	breadthTimelineDays  = 500
)

// breadthLookbacks are the SMA / range windows aggregated per date.
var breadthLookbacks = [3]int{20, 50, 100}

// BreadthPoint is one date's universe-wide aggregate for the three
// lookback lengths.
type BreadthPoint struct {
	Date   string  `json:"date"`
	Val20  float64 `json:"val20"`
	Val50  float64 `json:"val50"`
	Val100 float64 `json:"val100"`
}

// BreadthResult holds the two breadth series: percentage of eligible
// assets above their SMA, and average range position scaled to 0-100.
type BreadthResult struct {
	AboveSMA      []BreadthPoint `json:"above_sma"`
	RangePosition []BreadthPoint `json:"range_position"`
}

// assetWindows precomputes everything one asset needs for O(1) lookups
// per timeline date: a date index, close prefix sums, and rolling
// min/max arrays per lookback (monotonic deque, one pass each).
type assetWindows struct {
	closes  []float64
	prefix  []float64
	dateIdx map[string]int
	mins    map[int][]float64
	maxs    map[int][]float64
}

func newAssetWindows(s data.AssetSeries) *assetWindows {
	closes := s.Closes()
	prefix := make([]float64, len(closes)+1)
	for i, c := range closes {
		prefix[i+1] = prefix[i] + c
	}
	dateIdx := make(map[string]int, len(s))
	for i, c := range s {
		dateIdx[data.DateKey(c.CloseTime)] = i
	}

	aw := &assetWindows{
		closes:  closes,
		prefix:  prefix,
		dateIdx: dateIdx,
		mins:    make(map[int][]float64, len(breadthLookbacks)),
		maxs:    make(map[int][]float64, len(breadthLookbacks)),
	}
	for _, p := range breadthLookbacks {
		aw.mins[p] = rollingExtrema(closes, p, true)
		aw.maxs[p] = rollingExtrema(closes, p, false)
	}
	return aw
}

// sma returns the simple moving average of the trailing p closes ending
// at idx. Caller guarantees idx+1 >= p.
func (aw *assetWindows) sma(idx, p int) float64 {
	return (aw.prefix[idx+1] - aw.prefix[idx+1-p]) / float64(p)
}

// rollingExtrema computes the min (or max) over the window of length w
// ending at each index, valid for indexes >= w-1. Standard monotonic
// deque, O(n).
func rollingExtrema(xs []float64, w int, min bool) []float64 {
	out := make([]float64, len(xs))
	deque := make([]int, 0, len(xs))
	better := func(a, b float64) bool {
		if min {
			return a <= b
		}
		return a >= b
	}
	for i, x := range xs {
		for len(deque) > 0 && better(x, xs[deque[len(deque)-1]]) {
			deque = deque[:len(deque)-1]
		}
		deque = append(deque, i)
		if deque[0] <= i-w {
			deque = deque[1:]
		}
		out[i] = xs[deque[0]]
	}
	return out
}

// BreadthSeries aggregates above-SMA percentages and range positions
// across the universe over a 500-day timeline taken from the reference
// asset's candle dates. Requires the reference asset to have at least
// 600 candles; otherwise both series are empty. Eligibility ("has at
// least p prior candles as of this date") is recomputed independently
// per date, so assets with shorter history join the denominators
// partway through the timeline.
func BreadthSeries(refSymbol string, series map[string]data.AssetSeries) BreadthResult {
	ref, ok := series[refSymbol]
	if !ok || len(ref) < breadthMinRefCandles {
		return BreadthResult{}
	}

	refDates := ref.Dates()
	timeline := refDates
	if len(timeline) > breadthTimelineDays {
		timeline = timeline[len(timeline)-breadthTimelineDays:]
	}

	windows := make(map[string]*assetWindows, len(series))
	for symbol, s := range series {
		if len(s) == 0 {
			continue
		}
		windows[symbol] = newAssetWindows(s)
	}

	above := make([]BreadthPoint, 0, len(timeline))
	rangePos := make([]BreadthPoint, 0, len(timeline))

	for _, date := range timeline {
		var aboveVals, rangeVals [3]float64

		for pi, p := range breadthLookbacks {
			eligible, aboveCount := 0, 0
			rpSum, rpCount := 0.0, 0

			for _, aw := range windows {
				idx, ok := aw.dateIdx[date]
				if !ok || idx+1 < p {
					continue
				}
				eligible++

				price := aw.closes[idx]
				if price > aw.sma(idx, p) {
					aboveCount++
				}

				lo, hi := aw.mins[p][idx], aw.maxs[p][idx]
				if hi > lo {
					rp := (price - lo) / (hi - lo)
					if rp < 0 {
						rp = 0
					}
					rpSum += rp
					rpCount++
				}
			}

			if eligible > 0 {
				aboveVals[pi] = float64(aboveCount) / float64(eligible) * 100
			}
			if rpCount > 0 {
				rangeVals[pi] = rpSum / float64(rpCount) * 100
			}
		}

		above = append(above, BreadthPoint{Date: date, Val20: aboveVals[0], Val50: aboveVals[1], Val100: aboveVals[2]})
		rangePos = append(rangePos, BreadthPoint{Date: date, Val20: rangeVals[0], Val50: rangeVals[1], Val100: rangeVals[2]})
	}

	return BreadthResult{AboveSMA: above, RangePosition: rangePos}
}

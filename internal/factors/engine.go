package factors

import (
	"time"

	"github.com/coinlens/coinlens/internal/data"
	"github.com/coinlens/coinlens/internal/stats"
)

var (
	// returnPeriods drive momentum, mean-reversion and carry.
	returnPeriods = []int{5, 10, 20}

	// trendPeriods add a slower horizon for trend-following.
	trendPeriods = []int{5, 10, 20, 40}
)

const carryMinObservations = 3

// Engine computes the four factor score lists for one run. Signals are
// derived from the fetched candle and funding histories; universes are
// rebuilt from scratch every run.
type Engine struct {
	series  map[string]data.AssetSeries
	funding map[string][]data.FundingObservation
	closes  map[string][]float64
	now     time.Time
}

// NewEngine prepares per-asset close series for signal computation.
func NewEngine(now time.Time, series map[string]data.AssetSeries, funding map[string][]data.FundingObservation) *Engine {
	closes := make(map[string][]float64, len(series))
	for symbol, s := range series {
		closes[symbol] = s.Closes()
	}
	return &Engine{
		series:  series,
		funding: funding,
		closes:  closes,
		now:     now,
	}
}

// Result carries the four labeled factor score lists.
type Result struct {
	Momentum      []Metric `json:"momentum"`
	MeanReversion []Metric `json:"mean_reversion"`
	Carry         []Metric `json:"carry"`
	Trend         []Metric `json:"trend"`
}

// Compute builds the universes and scores all four factors.
func (e *Engine) Compute() Result {
	top, bottom := BuildUniverses(e.series)
	full := make([]string, 0, len(e.series))
	for symbol := range e.series {
		full = append(full, symbol)
	}

	aboveMedian := func(s, m float64) float64 { return s - m }
	belowMedian := func(s, m float64) float64 { return -(s - m) }
	raw := func(s, _ float64) float64 { return s }

	return Result{
		// Same risk-normalized return signal, inverted reading for the
		// illiquid set.
		Momentum:      ScoreUniverse(top, returnPeriods, e.returnSignal, aboveMedian),
		MeanReversion: ScoreUniverse(bottom, returnPeriods, e.returnSignal, belowMedian),
		Carry:         ScoreUniverse(full, returnPeriods, e.carrySignal, belowMedian),
		Trend:         ScoreUniverse(full, trendPeriods, e.trendSignal, raw),
	}
}

// returnSignal is the cumulative return over the window divided by the
// standard deviation of the window's daily returns.
func (e *Engine) returnSignal(symbol string, period int) (float64, bool) {
	closes := e.closes[symbol]
	if len(closes) < period+1 {
		return 0, false
	}
	window := closes[len(closes)-period-1:]
	if window[0] <= 0 {
		return 0, false
	}

	rets := make([]float64, period)
	for i := 1; i <= period; i++ {
		if window[i-1] <= 0 {
			return 0, false
		}
		rets[i-1] = window[i]/window[i-1] - 1
	}
	sd := stats.StdDev(rets)
	if sd == 0 {
		return 0, false
	}
	cumulative := window[period]/window[0] - 1
	return cumulative / sd, true
}

// carrySignal is the mean funding rate over the trailing period days
// divided by its standard deviation; undefined below 3 observations.
func (e *Engine) carrySignal(symbol string, period int) (float64, bool) {
	obs := e.funding[symbol]
	if len(obs) == 0 {
		return 0, false
	}
	cutoff := e.now.Add(-time.Duration(period) * 24 * time.Hour)
	rates := make([]float64, 0, len(obs))
	for _, o := range obs {
		if o.Timestamp.Before(cutoff) {
			continue
		}
		rates = append(rates, o.Rate)
	}
	if len(rates) < carryMinObservations {
		return 0, false
	}
	sd := stats.StdDev(rates)
	if sd == 0 {
		return 0, false
	}
	return stats.Mean(rates) / sd, true
}

// trendSignal smooths a rolling range-position oscillator: for each of
// the 2*period trailing points, 4*(close-midpoint)/range over the
// window of period days ending there, then an EMA with period
// max(2, period/4). The smoothed final value is inherently directional
// and is used without median-centering.
func (e *Engine) trendSignal(symbol string, period int) (float64, bool) {
	closes := e.closes[symbol]
	points := 2 * period
	// The oldest of the 2*period points still needs a full window.
	if len(closes) < points+period-1 {
		return 0, false
	}

	raw := make([]float64, 0, points)
	for t := len(closes) - points; t < len(closes); t++ {
		window := closes[t-period+1 : t+1]
		lo, hi := window[0], window[0]
		for _, c := range window[1:] {
			if c < lo {
				lo = c
			}
			if c > hi {
				hi = c
			}
		}
		if hi == lo {
			raw = append(raw, 0)
			continue
		}
		mid := (hi + lo) / 2
		raw = append(raw, 4*(closes[t]-mid)/(hi-lo))
	}

	smoothing := period / 4
	if smoothing < 2 {
		smoothing = 2
	}
	return stats.EMA(raw, smoothing), true
}

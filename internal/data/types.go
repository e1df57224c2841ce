// Package data implements the market data gateway: candle and funding
// fetches with a single relay fallback and a per-run cache.
package data

import (
	"math"
	"time"
)

// Candle is one OHLCV observation at one period boundary. Immutable
// once fetched.
type Candle struct {
	OpenTime  time.Time `json:"open_time"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	CloseTime time.Time `json:"close_time"`
}

// FundingObservation is one funding-rate print. Rate is the raw
// per-interval fraction, not annualized.
type FundingObservation struct {
	Symbol    string    `json:"symbol"`
	Rate      float64   `json:"rate"`
	Timestamp time.Time `json:"timestamp"`
}

// AssetSeries is the chronological candle history of one symbol,
// oldest first. No two candles share a close time; gaps are tolerated
// and never filled.
type AssetSeries []Candle

// Closes returns the close prices in series order.
func (s AssetSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}

// Volumes returns the volumes in series order.
func (s AssetSeries) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Volume
	}
	return out
}

// LogReturns returns ln(close[t]/close[t-1]) for t=1..len-1. Pairs with
// a non-positive close are emitted as 0 to keep indexes aligned with
// the candle series.
func (s AssetSeries) LogReturns() []float64 {
	if len(s) < 2 {
		return nil
	}
	out := make([]float64, len(s)-1)
	for i := 1; i < len(s); i++ {
		if s[i].Close > 0 && s[i-1].Close > 0 {
			out[i-1] = math.Log(s[i].Close / s[i-1].Close)
		}
	}
	return out
}

// DateKey formats a timestamp as the daily alignment key used across
// processors.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Dates returns the close-time date keys in series order.
func (s AssetSeries) Dates() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = DateKey(c.CloseTime)
	}
	return out
}

// ReturnsByDate builds the date-indexed daily log-return mapping for
// one pass alignment: chronological return dates plus a lookup map.
// The return for candle t is keyed by candle t's close date.
func (s AssetSeries) ReturnsByDate() ([]string, map[string]float64) {
	if len(s) < 2 {
		return nil, nil
	}
	rets := s.LogReturns()
	dates := make([]string, 0, len(rets))
	byDate := make(map[string]float64, len(rets))
	for i, r := range rets {
		d := DateKey(s[i+1].CloseTime)
		dates = append(dates, d)
		byDate[d] = r
	}
	return dates, byDate
}

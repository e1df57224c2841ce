package market

import (
	"time"

	"github.com/coinlens/coinlens/internal/data"
)

var seriesStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// dailySeries builds n daily candles starting at seriesStart, with
// closes and volumes supplied per index.
func dailySeries(n int, closeAt func(i int) float64, volumeAt func(i int) float64) data.AssetSeries {
	s := make(data.AssetSeries, n)
	for i := 0; i < n; i++ {
		open := seriesStart.AddDate(0, 0, i)
		c := closeAt(i)
		v := 1000.0
		if volumeAt != nil {
			v = volumeAt(i)
		}
		s[i] = data.Candle{
			OpenTime:  open,
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    v,
			CloseTime: open.Add(23 * time.Hour),
		}
	}
	return s
}

// dailySeriesFrom is dailySeries with an explicit start day offset, so
// shorter histories can align with the tail of a longer reference.
func dailySeriesFrom(offsetDays, n int, closeAt func(i int) float64) data.AssetSeries {
	s := make(data.AssetSeries, n)
	for i := 0; i < n; i++ {
		open := seriesStart.AddDate(0, 0, offsetDays+i)
		c := closeAt(i)
		s[i] = data.Candle{
			OpenTime:  open,
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1000,
			CloseTime: open.Add(23 * time.Hour),
		}
	}
	return s
}

func constantClose(v float64) func(int) float64 {
	return func(int) float64 { return v }
}

// wavyClose produces a non-constant, strictly positive close series.
func wavyClose(i int) float64 {
	return 100 + float64(i%7) + float64(i%3)
}

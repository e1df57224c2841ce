package factors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinlens/coinlens/internal/data"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func dailySeries(n int, closeAt func(i int) float64, volumeAt func(i int) float64) data.AssetSeries {
	s := make(data.AssetSeries, n)
	for i := 0; i < n; i++ {
		open := testStart.AddDate(0, 0, i)
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

func wavyClose(i int) float64 {
	return 100 + float64(i%7) + float64(i%3)
}

func syntheticUniverse(n int) map[string]data.AssetSeries {
	series := make(map[string]data.AssetSeries, n)
	for i := 0; i < n; i++ {
		symbol := fmt.Sprintf("A%03dUSDT", i)
		volume := float64((i + 1) * 100)
		series[symbol] = dailySeries(120, wavyClose, func(int) float64 { return volume })
	}
	return series
}

func TestBuildUniverses_Disjoint(t *testing.T) {
	series := syntheticUniverse(60)
	top, bottom := BuildUniverses(series)

	require.Len(t, top, 25)
	require.Len(t, bottom, 25)

	seen := make(map[string]bool, len(top))
	for _, s := range top {
		seen[s] = true
	}
	for _, s := range bottom {
		assert.False(t, seen[s], "symbol %s in both universes", s)
	}
}

func TestBuildUniverses_SmallUniverseStaysDisjoint(t *testing.T) {
	series := syntheticUniverse(30)
	top, bottom := BuildUniverses(series)

	require.Len(t, top, 25)
	// Bottom 25 of a 30-asset list overlaps the top by 20; the overlap
	// is removed, leaving the 5 true laggards.
	require.Len(t, bottom, 5)

	seen := make(map[string]bool, len(top))
	for _, s := range top {
		seen[s] = true
	}
	for _, s := range bottom {
		assert.False(t, seen[s])
	}
}

func TestBuildUniverses_RankedByDollarVolume(t *testing.T) {
	series := syntheticUniverse(60)
	top, _ := BuildUniverses(series)

	// Highest index carries the highest volume.
	assert.Equal(t, "A059USDT", top[0])
}

func TestScoreUniverse_MedianCentering(t *testing.T) {
	signals := map[string]float64{"AAA": 1, "BBB": 2, "CCC": 3}
	signal := func(symbol string, period int) (float64, bool) {
		v, ok := signals[symbol]
		return v, ok
	}
	combine := func(s, m float64) float64 { return s - m }

	out := ScoreUniverse([]string{"AAA", "BBB", "CCC"}, []int{1}, signal, combine)
	require.Len(t, out, 3)

	// Sorted descending: CCC (+1), BBB (0), AAA (-1).
	assert.Equal(t, "CCC", out[0].Symbol)
	assert.InDelta(t, 1.0, out[0].Score, 1e-12)
	assert.Equal(t, "BBB", out[1].Symbol)
	assert.InDelta(t, 0.0, out[1].Score, 1e-12)
	assert.Equal(t, "AAA", out[2].Symbol)
	assert.InDelta(t, -1.0, out[2].Score, 1e-12)
}

func TestScoreUniverse_DropsAssetsWithNoValidPeriod(t *testing.T) {
	signal := func(symbol string, period int) (float64, bool) {
		if symbol == "DEADUSDT" {
			return 0, false
		}
		return float64(period), true
	}
	combine := func(s, m float64) float64 { return s - m }

	out := ScoreUniverse([]string{"AAAUSDT", "DEADUSDT"}, []int{5, 10}, signal, combine)
	require.Len(t, out, 1)
	assert.Equal(t, "AAAUSDT", out[0].Symbol)
}

func TestScoreUniverse_AveragesAcrossValidPeriodsOnly(t *testing.T) {
	signal := func(symbol string, period int) (float64, bool) {
		if symbol == "HALFUSDT" && period == 10 {
			return 0, false
		}
		return 1, true
	}
	calls := 0
	combine := func(s, m float64) float64 {
		calls++
		return s
	}

	out := ScoreUniverse([]string{"HALFUSDT", "FULLUSDT"}, []int{5, 10}, signal, combine)
	require.Len(t, out, 2)
	for _, m := range out {
		assert.InDelta(t, 1.0, m.Score, 1e-12)
	}
	assert.Equal(t, 3, calls)
}

func TestReturnSignal(t *testing.T) {
	e := NewEngine(testStart, map[string]data.AssetSeries{
		"WAVYUSDT": dailySeries(60, wavyClose, nil),
		"FLATUSDT": dailySeries(60, func(int) float64 { return 100 }, nil),
		"TINYUSDT": dailySeries(4, wavyClose, nil),
	}, nil)

	_, ok := e.returnSignal("WAVYUSDT", 20)
	assert.True(t, ok)

	// Zero return dispersion leaves the signal undefined.
	_, ok = e.returnSignal("FLATUSDT", 20)
	assert.False(t, ok)

	// Not enough closes for the window.
	_, ok = e.returnSignal("TINYUSDT", 5)
	assert.False(t, ok)
}

func TestCarrySignal_RequiresThreeObservations(t *testing.T) {
	now := testStart.AddDate(0, 0, 120)
	obs := func(symbol string, ages []int, rates []float64) []data.FundingObservation {
		out := make([]data.FundingObservation, len(ages))
		for i := range ages {
			out[i] = data.FundingObservation{
				Symbol:    symbol,
				Rate:      rates[i],
				Timestamp: now.Add(-time.Duration(ages[i]) * time.Hour),
			}
		}
		return out
	}

	e := NewEngine(now, nil, map[string][]data.FundingObservation{
		"FEWUSDT":  obs("FEWUSDT", []int{8, 16}, []float64{0.001, 0.002}),
		"FULLUSDT": obs("FULLUSDT", []int{8, 16, 24, 32}, []float64{0.001, 0.002, -0.001, 0.003}),
	})

	_, ok := e.carrySignal("FEWUSDT", 5)
	assert.False(t, ok)

	v, ok := e.carrySignal("FULLUSDT", 5)
	require.True(t, ok)
	assert.NotZero(t, v)
}

func TestTrendSignal(t *testing.T) {
	rising := func(i int) float64 { return 100 + float64(i) }
	e := NewEngine(testStart, map[string]data.AssetSeries{
		"UPUSDT":   dailySeries(120, rising, nil),
		"FLATUSDT": dailySeries(120, func(int) float64 { return 100 }, nil),
		"TINYUSDT": dailySeries(10, rising, nil),
	}, nil)

	// A monotone rise closes at the top of every window: the raw
	// oscillator is the constant +2 and so is its EMA.
	v, ok := e.trendSignal("UPUSDT", 20)
	require.True(t, ok)
	assert.InDelta(t, 2.0, v, 1e-9)

	// Zero range is defined as zero signal.
	v, ok = e.trendSignal("FLATUSDT", 20)
	require.True(t, ok)
	assert.Equal(t, 0.0, v)

	_, ok = e.trendSignal("TINYUSDT", 20)
	assert.False(t, ok)
}

func TestEngineCompute_EndToEnd(t *testing.T) {
	series := syntheticUniverse(60)
	now := testStart.AddDate(0, 0, 120)

	funding := make(map[string][]data.FundingObservation, len(series))
	for symbol := range series {
		obs := make([]data.FundingObservation, 0, 12)
		for i := 1; i <= 12; i++ {
			obs = append(obs, data.FundingObservation{
				Symbol:    symbol,
				Rate:      0.0001 * float64(i%5-2),
				Timestamp: now.Add(-time.Duration(i*8) * time.Hour),
			})
		}
		funding[symbol] = obs
	}

	res := NewEngine(now, series, funding).Compute()

	assert.NotEmpty(t, res.Momentum)
	assert.NotEmpty(t, res.MeanReversion)
	assert.NotEmpty(t, res.Carry)
	assert.NotEmpty(t, res.Trend)

	assert.LessOrEqual(t, len(res.Momentum), 25)
	assert.LessOrEqual(t, len(res.MeanReversion), 25)

	for _, list := range [][]Metric{res.Momentum, res.MeanReversion, res.Carry, res.Trend} {
		for i := 1; i < len(list); i++ {
			assert.GreaterOrEqual(t, list[i-1].Score, list[i].Score)
		}
	}
}

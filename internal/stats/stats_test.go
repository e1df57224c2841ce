package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-12)
}

func TestStdDev_Population(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	// Population stddev of {2,4,4,4,5,5,7,9} is exactly 2.
	assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
	assert.Equal(t, 0.0, StdDev([]float64{3, 3, 3}))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.InDelta(t, 3.0, Median([]float64{5, 1, 3}), 1e-12)
	assert.InDelta(t, 2.5, Median([]float64{4, 1, 2, 3}), 1e-12)
}

func TestCorrelation_Identity(t *testing.T) {
	x := []float64{1, 2, 4, 3, 5, 7}
	assert.InDelta(t, 1.0, Correlation(x, x), 1e-12)
}

func TestCorrelation_Symmetry(t *testing.T) {
	x := []float64{1, 2, 4, 3, 5, 7}
	y := []float64{2, 1, 3, 5, 4, 6}
	assert.InDelta(t, Correlation(x, y), Correlation(y, x), 1e-12)
}

func TestCorrelation_Fallbacks(t *testing.T) {
	// Constant series has zero variance: correlation is undefined and
	// resolves to the 0 sentinel.
	constant := []float64{2, 2, 2, 2}
	moving := []float64{1, 2, 3, 4}
	assert.Equal(t, 0.0, Correlation(constant, moving))
	assert.Equal(t, 0.0, Correlation(moving, constant))
	assert.Equal(t, 0.0, Correlation(nil, nil))
	assert.Equal(t, 0.0, Correlation([]float64{1, 2}, []float64{1, 2, 3}))
}

func TestCorrelation_PerfectInverse(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{4, 3, 2, 1}
	assert.InDelta(t, -1.0, Correlation(x, y), 1e-12)
}

func TestPercentileRank_Bounds(t *testing.T) {
	data := []float64{10, 20, 30, 40, 50}

	// Probe below the minimum ranks at 0.
	assert.Equal(t, 0.0, PercentileRank(data, 5, false))

	// Probe equal to the maximum lands on the last sorted element:
	// position (n-1)/n.
	assert.InDelta(t, 80.0, PercentileRank(data, 50, false), 1e-12)

	// Probe above the maximum ranks at 100.
	assert.Equal(t, 100.0, PercentileRank(data, 51, false))
}

func TestPercentileRank_TiesRankLow(t *testing.T) {
	data := []float64{1, 2, 2, 2, 3}
	// First element >= 2 sits at index 1: ties count as above the probe.
	assert.InDelta(t, 20.0, PercentileRank(data, 2, false), 1e-12)
}

func TestPercentileRank_Absolute(t *testing.T) {
	data := []float64{-0.5, 0.1, -0.2, 0.3}
	// By magnitude the sorted set is {0.1, 0.2, 0.3, 0.5}; probe |−0.4|
	// ranks at position 3.
	assert.InDelta(t, 75.0, PercentileRank(data, -0.4, true), 1e-12)
	assert.Equal(t, 0.0, PercentileRank(nil, 1, true))
}

func TestExpWeightedVol_ShortInput(t *testing.T) {
	assert.Equal(t, 0.0, ExpWeightedVol([]float64{0.01, 0.02}, 21))
	assert.Equal(t, 0.0, ExpWeightedVol(nil, 5))
}

func TestExpWeightedVol_Properties(t *testing.T) {
	returns := []float64{0.01, -0.02, 0.03, -0.01, 0.02, 0.005, -0.015, 0.01}
	vol := ExpWeightedVol(returns, 5)
	require.Greater(t, vol, 0.0)

	// Constant returns carry zero variance around the simple mean.
	flat := []float64{0.01, 0.01, 0.01, 0.01, 0.01}
	assert.InDelta(t, 0.0, ExpWeightedVol(flat, 5), 1e-12)
}

func TestExpWeightedVol_RecentObservationsDominate(t *testing.T) {
	calm := []float64{0, 0, 0, 0, 0.1}
	stale := []float64{0.1, 0, 0, 0, 0}
	// The shock sits on the highest weight in calm and the lowest in
	// stale, so the decayed estimate must differ in that order.
	assert.Greater(t, ExpWeightedVol(calm, 5), ExpWeightedVol(stale, 5))
}

func TestZScore(t *testing.T) {
	history := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 0.0, ZScore(3, history), 1e-12)
	assert.Greater(t, ZScore(6, history), 0.0)
	assert.Equal(t, 0.0, ZScore(10, []float64{2, 2, 2}))
}

func TestEMA(t *testing.T) {
	assert.Equal(t, 0.0, EMA(nil, 5))
	assert.InDelta(t, 7.0, EMA([]float64{7}, 3), 1e-12)

	// alpha = 0.5 for period 3; seeded by the first value.
	// 1 -> (2*0.5 + 1*0.5)=1.5 -> (3*0.5 + 1.5*0.5)=2.25
	assert.InDelta(t, 2.25, EMA([]float64{1, 2, 3}, 3), 1e-12)
}

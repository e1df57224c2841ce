// Package stats provides the pure numeric primitives the metric
// processors are built on. All functions are stateless and treat an
// empty input as a zero result rather than an error.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation of xs (divide by N),
// or 0 for an empty slice.
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := Mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}

// Median returns the median of xs, averaging the two middle elements
// when the count is even. Returns 0 for an empty slice.
func Median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Correlation returns the Pearson correlation coefficient of x and y
// using the sum-based formula. It returns 0 when the lengths differ,
// either series is empty, or the denominator is 0 (constant series).
// The 0 fallback is a defined sentinel, not a measurement: callers must
// not read it as "no correlation."
func Correlation(x, y []float64) float64 {
	n := len(x)
	if n == 0 || n != len(y) {
		return 0
	}
	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}
	fn := float64(n)
	num := fn*sumXY - sumX*sumY
	den := math.Sqrt((fn*sumX2 - sumX*sumX) * (fn*sumY2 - sumY*sumY))
	if den == 0 {
		return 0
	}
	return num / den
}

// PercentileRank ranks value within data as a 0-100 score using the
// position of the first sorted element >= value. Ties with the probe
// count as above it, biasing the rank slightly low. With useAbsolute
// both the dataset and the probe are ranked by magnitude.
func PercentileRank(data []float64, value float64, useAbsolute bool) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := make([]float64, len(data))
	if useAbsolute {
		for i, d := range data {
			sorted[i] = math.Abs(d)
		}
		value = math.Abs(value)
	} else {
		copy(sorted, data)
	}
	sort.Float64s(sorted)

	pos := len(sorted)
	for i, d := range sorted {
		if d >= value {
			pos = i
			break
		}
	}
	return float64(pos) / float64(len(sorted)) * 100
}

// ewmaDecay is the per-step geometric decay applied to return weights.
const ewmaDecay = 0.94

// ExpWeightedVol returns the exponentially weighted volatility of the
// most recent windowSize returns, with decay^i weights (i=0 on the most
// recent observation) normalized to sum to 1. Variance is computed
// around the simple mean of the window. Returns 0 when fewer than
// windowSize returns are available.
func ExpWeightedVol(returns []float64, windowSize int) float64 {
	if windowSize <= 0 || len(returns) < windowSize {
		return 0
	}
	window := returns[len(returns)-windowSize:]

	weights := make([]float64, windowSize)
	weightSum := 0.0
	for i := 0; i < windowSize; i++ {
		weights[i] = math.Pow(ewmaDecay, float64(i))
		weightSum += weights[i]
	}

	mean := Mean(window)
	variance := 0.0
	for i := 0; i < windowSize; i++ {
		// weights[0] belongs to the newest return in the window
		d := window[windowSize-1-i] - mean
		variance += weights[i] / weightSum * d * d
	}
	return math.Sqrt(variance)
}

// ZScore returns (value - mean(history)) / stddev(history), or 0 when
// the history has zero deviation.
func ZScore(value float64, history []float64) float64 {
	sd := StdDev(history)
	if sd == 0 {
		return 0
	}
	return (value - Mean(history)) / sd
}

// EMA applies a standard exponential moving average over series, seeded
// with the first value and smoothed by 2/(period+1), and returns the
// final value only. Returns 0 for an empty series.
func EMA(series []float64, period int) float64 {
	if len(series) == 0 {
		return 0
	}
	alpha := 2.0 / (float64(period) + 1.0)
	ema := series[0]
	for _, v := range series[1:] {
		ema = v*alpha + ema*(1-alpha)
	}
	return ema
}

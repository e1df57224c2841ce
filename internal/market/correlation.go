package market

import (
	"sort"

	"github.com/coinlens/coinlens/internal/data"
	"github.com/coinlens/coinlens/internal/stats"
)

const (
	matrixWindow     = 30
	rollingReportLen = 90
)

// rollingWindows are the trailing lookbacks emitted per rolling point.
var rollingWindows = [4]int{10, 30, 60, 90}

// CorrelationMatrix is the pairwise Pearson correlation of daily log
// returns over the reference asset's most recent 30 trading dates.
// Symmetric with a fixed diagonal of 1.
type CorrelationMatrix struct {
	Assets []string    `json:"assets"`
	Matrix [][]float64 `json:"matrix"`
}

// RollingPoint is one date's rolling correlation between the reference
// asset and the equal-weighted average-alt return series, over four
// trailing windows.
type RollingPoint struct {
	Date string  `json:"date"`
	W10  float64 `json:"w10"`
	W30  float64 `json:"w30"`
	W60  float64 `json:"w60"`
	W90  float64 `json:"w90"`
}

// CorrelationResult bundles both outputs of the correlation pass.
type CorrelationResult struct {
	Matrix  CorrelationMatrix `json:"matrix"`
	Rolling []RollingPoint    `json:"rolling"`
}

// Correlations computes the static matrix and the rolling history in
// one pass over date-indexed return maps. Alignment is exact date
// match; gaps are never filled. A missing or short reference series
// degrades to an empty result.
func Correlations(refSymbol string, series map[string]data.AssetSeries) CorrelationResult {
	ref, ok := series[refSymbol]
	if !ok {
		return CorrelationResult{}
	}
	refDates, refByDate := ref.ReturnsByDate()
	if len(refDates) == 0 {
		return CorrelationResult{}
	}

	// Build each alt's date index once; downstream lookups are O(1).
	altSymbols := make([]string, 0, len(series))
	altByDate := make(map[string]map[string]float64, len(series))
	for symbol, s := range series {
		if symbol == refSymbol {
			continue
		}
		_, byDate := s.ReturnsByDate()
		if len(byDate) == 0 {
			continue
		}
		altSymbols = append(altSymbols, symbol)
		altByDate[symbol] = byDate
	}
	sort.Strings(altSymbols)

	return CorrelationResult{
		Matrix:  correlationMatrix(refSymbol, refDates, refByDate, altSymbols, altByDate),
		Rolling: rollingCorrelations(refDates, refByDate, altSymbols, altByDate),
	}
}

func correlationMatrix(refSymbol string, refDates []string, refByDate map[string]float64, altSymbols []string, altByDate map[string]map[string]float64) CorrelationMatrix {
	if len(refDates) < matrixWindow {
		return CorrelationMatrix{}
	}
	anchor := refDates[len(refDates)-matrixWindow:]

	// An asset missing any anchor date is excluded outright.
	included := []string{refSymbol}
	vectors := [][]float64{alignReturns(anchor, refByDate)}
	for _, symbol := range altSymbols {
		byDate := altByDate[symbol]
		aligned := alignReturns(anchor, byDate)
		if aligned == nil {
			continue
		}
		included = append(included, symbol)
		vectors = append(vectors, aligned)
	}

	n := len(included)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			c := stats.Correlation(vectors[i], vectors[j])
			matrix[i][j] = c
			matrix[j][i] = c
		}
	}

	return CorrelationMatrix{Assets: included, Matrix: matrix}
}

// alignReturns maps dates to returns, or nil if any date is missing.
func alignReturns(dates []string, byDate map[string]float64) []float64 {
	out := make([]float64, len(dates))
	for i, d := range dates {
		r, ok := byDate[d]
		if !ok {
			return nil
		}
		out[i] = r
	}
	return out
}

func rollingCorrelations(refDates []string, refByDate map[string]float64, altSymbols []string, altByDate map[string]map[string]float64) []RollingPoint {
	// Equal-weighted average-alt return per date; assets missing a date
	// drop out of that day's average only.
	type aligned struct {
		date string
		ref  float64
		alt  float64
	}
	history := make([]aligned, 0, len(refDates))
	for _, d := range refDates {
		sum := 0.0
		count := 0
		for _, symbol := range altSymbols {
			if r, ok := altByDate[symbol][d]; ok {
				sum += r
				count++
			}
		}
		if count == 0 {
			continue
		}
		history = append(history, aligned{date: d, ref: refByDate[d], alt: sum / float64(count)})
	}

	// A date is reportable once 90 days of prior history exist.
	maxWindow := rollingWindows[len(rollingWindows)-1]
	first := maxWindow - 1
	if first >= len(history) {
		return nil
	}
	reportable := len(history) - first
	if reportable > rollingReportLen {
		first = len(history) - rollingReportLen
	}

	refSeries := make([]float64, len(history))
	altSeries := make([]float64, len(history))
	for i, h := range history {
		refSeries[i] = h.ref
		altSeries[i] = h.alt
	}

	points := make([]RollingPoint, 0, len(history)-first)
	for i := first; i < len(history); i++ {
		vals := [4]float64{}
		for w, window := range rollingWindows {
			vals[w] = stats.Correlation(refSeries[i-window+1:i+1], altSeries[i-window+1:i+1])
		}
		points = append(points, RollingPoint{
			Date: history[i].date,
			W10:  vals[0],
			W30:  vals[1],
			W60:  vals[2],
			W90:  vals[3],
		})
	}
	return points
}

package market

import (
	"sort"

	"github.com/coinlens/coinlens/internal/data"
	"github.com/coinlens/coinlens/internal/stats"
)

const (
	volumeLookback = 90
	volumeRecent   = 7
)

// VolumeStatus labels a volume anomaly. Exactly three terminal states,
// recomputed fresh each run with no hysteresis.
type VolumeStatus string

const (
	VolumeIncrease VolumeStatus = "INCREASE"
	VolumeDecrease VolumeStatus = "DECREASE"
	VolumeNeutral  VolumeStatus = "NEUTRAL"
)

// VolumeMetric is one asset's volume anomaly reading: the 7-day average
// z-scored against the trailing 90 daily volumes.
type VolumeMetric struct {
	Symbol       string       `json:"symbol"`
	ZScore       float64      `json:"z_score"`
	ChangeStatus VolumeStatus `json:"change_status"`
	Last7DayAvg  float64      `json:"last_7_day_avg"`
	Last90DayAvg float64      `json:"last_90_day_avg"`
}

// ClassifyVolume maps a z-score to its anomaly label: above +1 is
// INCREASE, below -1 is DECREASE, everything else NEUTRAL.
func ClassifyVolume(z float64) VolumeStatus {
	switch {
	case z > 1:
		return VolumeIncrease
	case z < -1:
		return VolumeDecrease
	default:
		return VolumeNeutral
	}
}

// VolumeAnomalies computes the volume metric for every asset with at
// least 90 candles.
func VolumeAnomalies(series map[string]data.AssetSeries) []VolumeMetric {
	out := make([]VolumeMetric, 0, len(series))

	for symbol, s := range series {
		if len(s) < volumeLookback {
			continue
		}
		volumes := s.Volumes()
		last90 := volumes[len(volumes)-volumeLookback:]
		last7 := last90[len(last90)-volumeRecent:]

		avg7 := stats.Mean(last7)
		avg90 := stats.Mean(last90)
		z := stats.ZScore(avg7, last90)

		out = append(out, VolumeMetric{
			Symbol:       symbol,
			ZScore:       z,
			ChangeStatus: ClassifyVolume(z),
			Last7DayAvg:  avg7,
			Last90DayAvg: avg90,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

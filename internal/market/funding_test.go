package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinlens/coinlens/internal/data"
)

func fundingObs(symbol string, age time.Duration, rate float64, now time.Time) data.FundingObservation {
	return data.FundingObservation{Symbol: symbol, Rate: rate, Timestamp: now.Add(-age)}
}

func TestFundingPercentiles_Annualization(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	funding := map[string][]data.FundingObservation{
		"AAAUSDT": {
			fundingObs("AAAUSDT", 10*24*time.Hour, 0.0002, now),
			fundingObs("AAAUSDT", time.Hour, 0.0001, now),
		},
	}

	out := FundingPercentiles(now, funding)
	require.Len(t, out, 1)

	// Most recent print annualized: 0.0001 * 3 * 365.
	assert.InDelta(t, 0.0001*3*365, out[0].CurrentRate, 1e-12)

	// By magnitude the current rate is the smaller of the two, so the
	// "first >=" rule ranks it at position 0.
	assert.Equal(t, 0.0, out[0].Percentile)
}

func TestFundingPercentiles_WindowFilter(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	funding := map[string][]data.FundingObservation{
		// Only stale prints: outside the 90-day window, dropped.
		"OLDUSDT": {
			fundingObs("OLDUSDT", 91*24*time.Hour, 0.001, now),
			fundingObs("OLDUSDT", 200*24*time.Hour, 0.002, now),
		},
		// One in-window print is enough.
		"NEWUSDT": {
			fundingObs("NEWUSDT", 89*24*time.Hour, -0.0005, now),
		},
	}

	out := FundingPercentiles(now, funding)
	require.Len(t, out, 1)
	assert.Equal(t, "NEWUSDT", out[0].Symbol)
	assert.InDelta(t, -0.0005*3*365, out[0].CurrentRate, 1e-12)
}

func TestFundingPercentiles_ExtremeRateRanksHigh(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]data.FundingObservation, 0, 10)
	for i := 9; i >= 1; i-- {
		obs = append(obs, fundingObs("BBBUSDT", time.Duration(i)*24*time.Hour, 0.0001, now))
	}
	// The newest print is a large negative rate: extremity is ranked by
	// magnitude, not sign.
	obs = append(obs, fundingObs("BBBUSDT", time.Hour, -0.01, now))

	out := FundingPercentiles(now, map[string][]data.FundingObservation{"BBBUSDT": obs})
	require.Len(t, out, 1)
	assert.InDelta(t, 90.0, out[0].Percentile, 1e-9)
}

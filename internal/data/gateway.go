package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/coinlens/coinlens/internal/config"
	"github.com/coinlens/coinlens/internal/telemetry"
)

const (
	pathDirect = "direct"
	pathRelay  = "relay"

	klinesEndpoint  = "/fapi/v1/klines"
	fundingEndpoint = "/fapi/v1/fundingRate"
)

// Gateway fetches candles and funding history from the market data
// source. Resilience contract: one direct attempt, then exactly one
// retry through the relay path; when both fail the fetch resolves to an
// empty result and the asset is unavailable for this run.
type Gateway struct {
	cfg      config.SourceConfig
	client   *http.Client
	limiter  *rate.Limiter
	breakers map[string]*gobreaker.CircuitBreaker
	cache    *RunCache
}

// NewGateway builds a gateway around the configured source endpoints.
func NewGateway(cfg config.SourceConfig) *Gateway {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(rps) * 2
	}

	breakers := make(map[string]*gobreaker.CircuitBreaker, 2)
	for _, path := range []string{pathDirect, pathRelay} {
		breakers[path] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    path,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().
					Str("path", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("transport breaker state change")
			},
		})
	}

	return &Gateway{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout()},
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		breakers: breakers,
		cache:    NewRunCache(),
	}
}

// Cache exposes the run cache for orchestrator resets and stats.
func (g *Gateway) Cache() *RunCache {
	return g.cache
}

// FetchCandles returns the candle history for one symbol, oldest first.
// An empty series means the asset is unavailable this run; it is never
// an error.
func (g *Gateway) FetchCandles(ctx context.Context, symbol, interval string, limit int) AssetSeries {
	key := CandleKey(symbol, interval, limit)
	if cached, ok := g.cache.Candles(key); ok {
		return cached
	}

	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("interval", interval)
	query.Set("limit", strconv.Itoa(limit))

	body, err := g.get(ctx, klinesEndpoint, query)
	if err != nil {
		telemetry.FetchFailures.WithLabelValues("candles").Inc()
		log.Warn().Err(err).Str("symbol", symbol).Msg("candle fetch exhausted both paths")
		g.cache.PutCandles(key, nil)
		return nil
	}

	series, err := parseKlines(body)
	if err != nil {
		telemetry.FetchFailures.WithLabelValues("candles").Inc()
		log.Warn().Err(err).Str("symbol", symbol).Msg("candle payload unreadable")
		g.cache.PutCandles(key, nil)
		return nil
	}

	g.cache.PutCandles(key, series)
	return series
}

// FetchFunding returns the funding-rate history for one symbol, oldest
// first. Empty means unavailable this run.
func (g *Gateway) FetchFunding(ctx context.Context, symbol string) []FundingObservation {
	if cached, ok := g.cache.Funding(symbol); ok {
		return cached
	}

	query := url.Values{}
	query.Set("symbol", symbol)
	if g.cfg.FundingLimit > 0 {
		query.Set("limit", strconv.Itoa(g.cfg.FundingLimit))
	}

	body, err := g.get(ctx, fundingEndpoint, query)
	if err != nil {
		telemetry.FetchFailures.WithLabelValues("funding").Inc()
		log.Warn().Err(err).Str("symbol", symbol).Msg("funding fetch exhausted both paths")
		g.cache.PutFunding(symbol, nil)
		return nil
	}

	obs, err := parseFunding(body)
	if err != nil {
		telemetry.FetchFailures.WithLabelValues("funding").Inc()
		log.Warn().Err(err).Str("symbol", symbol).Msg("funding payload unreadable")
		g.cache.PutFunding(symbol, nil)
		return nil
	}

	g.cache.PutFunding(symbol, obs)
	return obs
}

// get performs the two-path transport sequence: direct first, then one
// retry through the relay. No backoff, no further retries.
func (g *Gateway) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	body, directErr := g.attempt(ctx, pathDirect, g.cfg.BaseURL, endpoint, query)
	if directErr == nil {
		return body, nil
	}

	if g.cfg.RelayURL == "" {
		return nil, directErr
	}

	log.Debug().Err(directErr).Str("endpoint", endpoint).Msg("direct path failed, trying relay")
	body, relayErr := g.attempt(ctx, pathRelay, g.cfg.RelayURL, endpoint, query)
	if relayErr == nil {
		return body, nil
	}
	return nil, fmt.Errorf("direct: %v; relay: %w", directErr, relayErr)
}

func (g *Gateway) attempt(ctx context.Context, path, base, endpoint string, query url.Values) ([]byte, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	telemetry.FetchAttempts.WithLabelValues(path).Inc()

	result, err := g.breakers[path].Execute(func() (interface{}, error) {
		reqURL := base + endpoint + "?" + query.Encode()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := g.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			io.Copy(io.Discard, resp.Body)
			return nil, fmt.Errorf("%s returned status %d", path, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// parseKlines decodes the source's array-form kline rows. Price and
// volume fields arrive as decimal strings and are parsed to float64.
// Rows that fail to parse are skipped rather than failing the series.
func parseKlines(body []byte) (AssetSeries, error) {
	var raw [][]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal klines: %w", err)
	}

	series := make(AssetSeries, 0, len(raw))
	for _, row := range raw {
		c, err := parseKlineRow(row)
		if err != nil {
			continue
		}
		series = append(series, c)
	}
	return series, nil
}

func parseKlineRow(row []interface{}) (Candle, error) {
	if len(row) < 7 {
		return Candle{}, fmt.Errorf("kline row has %d fields", len(row))
	}

	openMs, ok := row[0].(float64)
	if !ok {
		return Candle{}, fmt.Errorf("open time is not numeric")
	}
	closeMs, ok := row[6].(float64)
	if !ok {
		return Candle{}, fmt.Errorf("close time is not numeric")
	}

	fields := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		s, ok := row[i].(string)
		if !ok {
			return Candle{}, fmt.Errorf("field %d is not a string", i)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Candle{}, fmt.Errorf("field %d: %w", i, err)
		}
		fields[i-1] = v
	}

	return Candle{
		OpenTime:  time.UnixMilli(int64(openMs)).UTC(),
		Open:      fields[0],
		High:      fields[1],
		Low:       fields[2],
		Close:     fields[3],
		Volume:    fields[4],
		CloseTime: time.UnixMilli(int64(closeMs)).UTC(),
	}, nil
}

type fundingRow struct {
	Symbol      string `json:"symbol"`
	FundingRate string `json:"fundingRate"`
	FundingTime int64  `json:"fundingTime"`
}

func parseFunding(body []byte) ([]FundingObservation, error) {
	var rows []fundingRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal funding: %w", err)
	}

	obs := make([]FundingObservation, 0, len(rows))
	for _, r := range rows {
		v, err := strconv.ParseFloat(r.FundingRate, 64)
		if err != nil {
			continue
		}
		obs = append(obs, FundingObservation{
			Symbol:    r.Symbol,
			Rate:      v,
			Timestamp: time.UnixMilli(r.FundingTime).UTC(),
		})
	}
	return obs, nil
}

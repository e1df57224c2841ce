// Package config loads the engine configuration: the target universe,
// the reference asset, and the data source endpoints.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for one engine instance.
type Config struct {
	Universe UniverseConfig `yaml:"universe"`
	Source   SourceConfig   `yaml:"source"`
}

// UniverseConfig names the target symbols and the reference asset used
// as the correlation and breadth anchor.
type UniverseConfig struct {
	Symbols         []string `yaml:"symbols"`
	ReferenceSymbol string   `yaml:"reference_symbol"`
}

// SourceConfig describes the market data source endpoints and the
// transport budget applied to them.
type SourceConfig struct {
	BaseURL           string  `yaml:"base_url"`
	RelayURL          string  `yaml:"relay_url"`
	Interval          string  `yaml:"interval"`
	CandleLimit       int     `yaml:"candle_limit"`
	FundingLimit      int     `yaml:"funding_limit"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Default returns the built-in configuration used when no file is
// supplied. The candle limit covers the union of all processor
// lookbacks with margin; processors trim the tail they need.
func Default() *Config {
	return &Config{
		Universe: UniverseConfig{
			ReferenceSymbol: "BTCUSDT",
			Symbols: []string{
				"BTCUSDT", "ETHUSDT", "BNBUSDT", "SOLUSDT", "XRPUSDT",
				"ADAUSDT", "DOGEUSDT", "AVAXUSDT", "DOTUSDT", "LINKUSDT",
				"MATICUSDT", "LTCUSDT", "ATOMUSDT", "UNIUSDT", "NEARUSDT",
				"APTUSDT", "FILUSDT", "ARBUSDT", "OPUSDT", "INJUSDT",
			},
		},
		Source: SourceConfig{
			BaseURL:           "https://fapi.binance.com",
			RelayURL:          "",
			Interval:          "1d",
			CandleLimit:       700,
			FundingLimit:      300,
			TimeoutSeconds:    10,
			RequestsPerSecond: 10,
			Burst:             20,
		},
	}
}

// Load reads and validates a YAML configuration file. Fields left unset
// in the file keep their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}

// Validate checks the invariants the orchestrator relies on.
func (c *Config) Validate() error {
	if len(c.Universe.Symbols) == 0 {
		return fmt.Errorf("universe has no symbols")
	}
	if c.Universe.ReferenceSymbol == "" {
		return fmt.Errorf("reference symbol is required")
	}
	found := false
	for _, s := range c.Universe.Symbols {
		if s == c.Universe.ReferenceSymbol {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("reference symbol %s is not part of the universe", c.Universe.ReferenceSymbol)
	}
	if c.Source.BaseURL == "" {
		return fmt.Errorf("source base_url is required")
	}
	if c.Source.CandleLimit <= 0 {
		return fmt.Errorf("candle_limit must be positive")
	}
	return nil
}

// Timeout returns the per-request transport timeout.
func (c *SourceConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

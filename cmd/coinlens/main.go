package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coinlens/coinlens/internal/config"
	"github.com/coinlens/coinlens/internal/data"
	"github.com/coinlens/coinlens/internal/scan"
)

const (
	appName = "coinlens"
	version = "v0.3.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Cross-sectional crypto market statistics engine",
		Version: version,
		Long: `coinlens ingests daily market data for a configured asset universe and
derives funding extremity, volatility regime, volume anomaly, correlation,
factor score and breadth metrics in one refresh.`,
	}

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one refresh and emit the snapshot as JSON",
		RunE:  runScan,
	}
	scanCmd.Flags().String("config", "", "Path to YAML config (built-in defaults when empty)")
	scanCmd.Flags().String("out", "", "Write the snapshot to this file instead of stdout")
	scanCmd.Flags().String("symbols", "", "Comma-separated symbol override")
	scanCmd.Flags().String("reference", "", "Reference symbol override")
	scanCmd.Flags().Duration("timeout", 5*time.Minute, "Overall refresh deadline")

	rootCmd.AddCommand(scanCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	outPath, _ := cmd.Flags().GetString("out")
	symbolsFlag, _ := cmd.Flags().GetString("symbols")
	referenceFlag, _ := cmd.Flags().GetString("reference")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if symbolsFlag != "" {
		cfg.Universe.Symbols = splitSymbols(symbolsFlag)
	}
	if referenceFlag != "" {
		cfg.Universe.ReferenceSymbol = referenceFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	gateway := data.NewGateway(cfg.Source)
	snapshot := scan.New(gateway, cfg).Run(ctx)

	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if outPath == "" {
		fmt.Println(string(payload))
		return nil
	}
	if err := os.WriteFile(outPath, payload, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	log.Info().Str("path", outPath).Msg("snapshot written")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func splitSymbols(flag string) []string {
	parts := strings.Split(flag, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, strings.ToUpper(s))
		}
	}
	return out
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.Name != "crossarb" {
		t.Errorf("App.Name = %q, want crossarb", cfg.App.Name)
	}
	if cfg.Arbitrage.PollInterval != 60*time.Second {
		t.Errorf("PollInterval = %s, want 60s", cfg.Arbitrage.PollInterval)
	}
	if cfg.Arbitrage.FailureBackoff != 10*time.Second {
		t.Errorf("FailureBackoff = %s, want 10s", cfg.Arbitrage.FailureBackoff)
	}
	if len(cfg.Arbitrage.Symbols) == 0 {
		t.Error("default symbol set is empty")
	}
	if len(cfg.Arbitrage.ActiveVenues) != 3 {
		t.Errorf("ActiveVenues = %v, want three venues", cfg.Arbitrage.ActiveVenues)
	}

	if got := cfg.Arbitrage.MinProfitUSDDecimal(); !got.Equal(decimal.RequireFromString("0.2")) {
		t.Errorf("MinProfitUSD = %s, want 0.2", got)
	}
	if got := cfg.Arbitrage.TradingFeeRateDecimal(); !got.Equal(decimal.RequireFromString("0.001")) {
		t.Errorf("TradingFeeRate = %s, want 0.001", got)
	}
	if got := cfg.Rates.FallbackDecimal(); !got.Equal(decimal.RequireFromString("15000")) {
		t.Errorf("Rates fallback = %s, want 15000", got)
	}

	fees := cfg.Arbitrage.TransferFeesDecimal()
	if got, ok := fees["XRP"]; !ok || !got.Equal(decimal.RequireFromString("0.1")) {
		t.Errorf("TransferFees[XRP] = %s, want 0.1", got)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
app:
  dry_run: true
arbitrage:
  symbols: ["BTC"]
  active_venues: ["binance", "kucoin"]
  poll_interval: 30s
  min_profit_usd: 1.5
  transfer_fees:
    btc: 0.0005
wallets:
  binance:
    btc: "bc1qdeposit"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !cfg.App.DryRun {
		t.Error("DryRun = false, want true")
	}
	if cfg.Arbitrage.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %s, want 30s", cfg.Arbitrage.PollInterval)
	}
	if got := cfg.Arbitrage.MinProfitUSDDecimal(); !got.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("MinProfitUSD = %s, want 1.5", got)
	}

	// Map keys are normalized: fee lookups are uppercase.
	fees := cfg.Arbitrage.TransferFeesDecimal()
	if got, ok := fees["BTC"]; !ok || !got.Equal(decimal.RequireFromString("0.0005")) {
		t.Errorf("TransferFees[BTC] = %s, want 0.0005", got)
	}

	if entry, ok := cfg.Wallets.Lookup("binance", "BTC"); !ok || entry != "bc1qdeposit" {
		t.Errorf("wallet lookup = %q/%v, want bc1qdeposit/true", entry, ok)
	}
}

func TestLoadRejectsEmptyVenues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("arbitrage:\n  active_venues: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted a config with no active venues")
	}
}

func TestLoadBindsEnvironment(t *testing.T) {
	t.Setenv("ARB_DRY_RUN", "true")
	t.Setenv("BINANCE_API_KEY", "test-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.App.DryRun {
		t.Error("DryRun = false, want true from ARB_DRY_RUN")
	}
	if cfg.Venues.Binance.APIKey != "test-key" {
		t.Errorf("Binance.APIKey = %q, want test-key", cfg.Venues.Binance.APIKey)
	}
}

// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Arbitrage ArbitrageConfig `mapstructure:"arbitrage"`
	Venues    VenuesConfig    `mapstructure:"venues"`
	Rates     RatesConfig     `mapstructure:"rates"`
	Wallets   WalletsConfig   `mapstructure:"wallets"`
	Journal   JournalConfig   `mapstructure:"journal"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	DataDir     string `mapstructure:"data_dir"`
	DryRun      bool   `mapstructure:"dry_run"`
}

// ArbitrageConfig holds detection and execution settings.
type ArbitrageConfig struct {
	Symbols          []string           `mapstructure:"symbols"`
	ActiveVenues     []string           `mapstructure:"active_venues"`
	PollInterval     time.Duration      `mapstructure:"poll_interval"`
	CallTimeout      time.Duration      `mapstructure:"call_timeout"`
	FailureBackoff   time.Duration      `mapstructure:"failure_backoff"`
	ShutdownGrace    time.Duration      `mapstructure:"shutdown_grace"`
	MinProfitUSD     float64            `mapstructure:"min_profit_usd"`
	MinProfitPercent float64            `mapstructure:"min_profit_percent"`
	TradingFeeRate   float64            `mapstructure:"trading_fee_rate"`
	FiatTransferFee  float64            `mapstructure:"fiat_transfer_fee_usd"`
	TransferFees     map[string]float64 `mapstructure:"transfer_fees"`
	MinTradeSizes    map[string]float64 `mapstructure:"min_trade_sizes"`
}

// MinProfitUSDDecimal returns the USD profit floor as decimal.Decimal.
func (c *ArbitrageConfig) MinProfitUSDDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinProfitUSD)
}

// MinProfitPercentDecimal returns the percent profit floor as decimal.Decimal.
func (c *ArbitrageConfig) MinProfitPercentDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinProfitPercent)
}

// TradingFeeRateDecimal returns the per-leg trading fee rate as decimal.Decimal.
func (c *ArbitrageConfig) TradingFeeRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.TradingFeeRate)
}

// FiatTransferFeeDecimal returns the flat fiat conversion fee as decimal.Decimal.
func (c *ArbitrageConfig) FiatTransferFeeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.FiatTransferFee)
}

// TransferFeesDecimal returns per-symbol flat transfer fees as decimals.
func (c *ArbitrageConfig) TransferFeesDecimal() map[string]decimal.Decimal {
	return toDecimalMap(c.TransferFees)
}

// MinTradeSizesDecimal returns per-symbol minimum trade sizes as decimals.
func (c *ArbitrageConfig) MinTradeSizesDecimal() map[string]decimal.Decimal {
	return toDecimalMap(c.MinTradeSizes)
}

func toDecimalMap(m map[string]float64) map[string]decimal.Decimal {
	result := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		result[strings.ToUpper(k)] = decimal.NewFromFloat(v)
	}
	return result
}

// VenuesConfig holds per-venue API credentials and endpoints.
type VenuesConfig struct {
	Binance BinanceConfig `mapstructure:"binance"`
	Kucoin  KucoinConfig  `mapstructure:"kucoin"`
	Indodax IndodaxConfig `mapstructure:"indodax"`
}

// BinanceConfig holds Binance API configuration.
type BinanceConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// KucoinConfig holds KuCoin API configuration.
type KucoinConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	APISecret  string `mapstructure:"api_secret"`
	Passphrase string `mapstructure:"passphrase"`
}

// IndodaxConfig holds Indodax API configuration.
type IndodaxConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// RatesConfig holds FX rate lookup settings.
type RatesConfig struct {
	LookupURL   string        `mapstructure:"lookup_url"`
	Override    float64       `mapstructure:"override_usd_to_idr"`
	Fallback    float64       `mapstructure:"fallback_usd_to_idr"`
	CacheFile   string        `mapstructure:"cache_file"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

// FallbackDecimal returns the configured default rate as decimal.Decimal.
func (c *RatesConfig) FallbackDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Fallback)
}

// OverrideDecimal returns the override rate, or zero when unset.
func (c *RatesConfig) OverrideDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Override)
}

// WalletsConfig maps venue -> symbol -> "address[:tag[:network]]".
type WalletsConfig map[string]map[string]string

// Lookup returns the raw wallet entry for (venue, symbol), case-insensitively.
func (w WalletsConfig) Lookup(venue, symbol string) (string, bool) {
	symbols, ok := w[strings.ToLower(venue)]
	if !ok {
		return "", false
	}
	entry, ok := symbols[strings.ToUpper(symbol)]
	if !ok {
		// viper lower-cases map keys read from files
		entry, ok = symbols[strings.ToLower(symbol)]
	}
	return entry, ok
}

// JournalConfig holds the optional transfer journal settings.
type JournalConfig struct {
	DatabaseURL string `mapstructure:"database_url"`
}

// TelegramConfig holds the optional Telegram reporter settings.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	ZipkinEndpoint string `mapstructure:"zipkin_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("ARB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind env vars to config keys
	bindEnvVars(v)

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")
	v.BindEnv("app.dry_run", "ARB_DRY_RUN", "NO_TRADE_MODE")

	// Arbitrage
	v.BindEnv("arbitrage.symbols", "ARB_SYMBOLS", "SUPPORTED_SYMBOLS")
	v.BindEnv("arbitrage.active_venues", "ARB_ACTIVE_VENUES", "ACTIVE_EXCHANGES")
	v.BindEnv("arbitrage.min_profit_usd", "ARB_MIN_PROFIT_USD", "MIN_PROFIT_THRESHOLD_USD")
	v.BindEnv("arbitrage.min_profit_percent", "ARB_MIN_PROFIT_PERCENT", "MIN_PROFIT_THRESHOLD_PERCENT")
	v.BindEnv("arbitrage.poll_interval", "ARB_POLL_INTERVAL")
	v.BindEnv("arbitrage.call_timeout", "ARB_CALL_TIMEOUT")

	// Venue credentials
	v.BindEnv("venues.binance.api_key", "ARB_BINANCE_API_KEY", "BINANCE_API_KEY")
	v.BindEnv("venues.binance.secret_key", "ARB_BINANCE_SECRET_KEY", "BINANCE_SECRET_KEY")
	v.BindEnv("venues.kucoin.api_key", "ARB_KUCOIN_API_KEY", "KUCOIN_API_KEY")
	v.BindEnv("venues.kucoin.api_secret", "ARB_KUCOIN_API_SECRET", "KUCOIN_API_SECRET")
	v.BindEnv("venues.kucoin.passphrase", "ARB_KUCOIN_PASSPHRASE", "KUCOIN_API_PASSPHRASE")
	v.BindEnv("venues.indodax.api_key", "ARB_INDODAX_API_KEY", "INDODAX_API_KEY")
	v.BindEnv("venues.indodax.secret_key", "ARB_INDODAX_SECRET_KEY", "INDODAX_SECRET_KEY")

	// Rates
	v.BindEnv("rates.override_usd_to_idr", "ARB_USD_TO_IDR_RATE", "USD_TO_IDR_RATE")
	v.BindEnv("rates.fallback_usd_to_idr", "ARB_FALLBACK_USD_TO_IDR_RATE", "FALLBACK_USD_TO_IDR_RATE")

	// Journal
	v.BindEnv("journal.database_url", "ARB_DATABASE_URL", "DATABASE_URL")

	// Telegram
	v.BindEnv("telegram.bot_token", "ARB_TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("telegram.chat_id", "ARB_TELEGRAM_CHAT_ID", "TELEGRAM_CHAT_ID")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ARB_TELEMETRY_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.zipkin_endpoint", "ARB_ZIPKIN_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "crossarb")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.data_dir", "data")
	v.SetDefault("app.dry_run", false)

	// Arbitrage defaults
	v.SetDefault("arbitrage.symbols", []string{"BTC", "XRP", "SHIB", "BNB"})
	v.SetDefault("arbitrage.active_venues", []string{"binance", "indodax", "kucoin"})
	v.SetDefault("arbitrage.poll_interval", "60s")
	v.SetDefault("arbitrage.call_timeout", "10s")
	v.SetDefault("arbitrage.failure_backoff", "10s")
	v.SetDefault("arbitrage.shutdown_grace", "30s")
	v.SetDefault("arbitrage.min_profit_usd", 0.2)
	v.SetDefault("arbitrage.min_profit_percent", 0.1)
	v.SetDefault("arbitrage.trading_fee_rate", 0.001)
	v.SetDefault("arbitrage.fiat_transfer_fee_usd", 0.65)
	v.SetDefault("arbitrage.transfer_fees", map[string]float64{
		"BTC":  0.000002,
		"XRP":  0.1,
		"SHIB": 1000000,
		"BNB":  0.001,
	})
	v.SetDefault("arbitrage.min_trade_sizes", map[string]float64{
		"BTC":  0.00001,
		"ETH":  0.0001,
		"BNB":  0.001,
		"XRP":  1,
		"SHIB": 1000000,
	})

	// Venue defaults
	v.SetDefault("venues.binance.base_url", "https://api.binance.com")
	v.SetDefault("venues.kucoin.base_url", "https://api.kucoin.com")
	v.SetDefault("venues.indodax.base_url", "https://indodax.com")

	// Rates defaults
	v.SetDefault("rates.lookup_url", "https://api.frankfurter.app")
	v.SetDefault("rates.fallback_usd_to_idr", 15000)
	v.SetDefault("rates.cache_file", "last_rate.json")
	v.SetDefault("rates.http_timeout", "10s")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "crossarb")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Arbitrage.Symbols) == 0 {
		return fmt.Errorf("arbitrage.symbols cannot be empty")
	}
	if len(c.Arbitrage.ActiveVenues) == 0 {
		return fmt.Errorf("arbitrage.active_venues cannot be empty")
	}
	if c.Arbitrage.PollInterval <= 0 {
		return fmt.Errorf("arbitrage.poll_interval must be positive")
	}
	if c.Arbitrage.CallTimeout <= 0 {
		return fmt.Errorf("arbitrage.call_timeout must be positive")
	}
	if c.Arbitrage.MinProfitUSD < 0 {
		return fmt.Errorf("arbitrage.min_profit_usd cannot be negative")
	}
	if c.Arbitrage.TradingFeeRate < 0 || c.Arbitrage.TradingFeeRate >= 1 {
		return fmt.Errorf("arbitrage.trading_fee_rate must be in [0, 1)")
	}
	if c.Rates.Fallback <= 0 {
		return fmt.Errorf("rates.fallback_usd_to_idr must be positive")
	}
	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id are required when telegram is enabled")
	}
	return nil
}

// Package frankfurter implements the USD-to-local-currency rate provider
// backed by the frankfurter.app API, with a persisted-rate and configured
// default fallback chain. The provider never returns an error: some rate is
// always produced.
package frankfurter

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crossarb/crossarb/internal/httpclient"
	"github.com/crossarb/crossarb/internal/logger"
)

const (
	defaultLookupURL = "https://api.frankfurter.app"

	defaultHTTPTimeout = 10 * time.Second
)

// Config holds the provider's settings.
type Config struct {
	LookupURL string
	// Override, when positive, short-circuits every lookup.
	Override decimal.Decimal
	// Fallback is the last-resort rate when both the live lookup and the
	// persisted rate are unavailable.
	Fallback decimal.Decimal
	// CacheFile is where the last successful live rate is persisted.
	CacheFile   string
	HTTPTimeout time.Duration
}

// Provider resolves USD to local-currency rates.
type Provider struct {
	client httpclient.Client
	config Config
	logger logger.LoggerInterface

	mu sync.Mutex
}

// New creates a rate provider.
func New(cfg Config, log logger.LoggerInterface) (*Provider, error) {
	if cfg.LookupURL == "" {
		cfg.LookupURL = defaultLookupURL
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("frankfurter"),
		httpclient.WithBaseURL(cfg.LookupURL),
		httpclient.WithRequestTimeout(cfg.HTTPTimeout),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, err
	}

	return &Provider{
		client: client,
		config: cfg,
		logger: log,
	}, nil
}

// USDToLocal returns the USD -> currency rate. Resolution order: configured
// override, live lookup (persisted on success), last persisted rate,
// configured default.
func (p *Provider) USDToLocal(ctx context.Context, currency string) decimal.Decimal {
	if p.config.Override.IsPositive() {
		return p.config.Override
	}

	if rate, ok := p.fetchLive(ctx, currency); ok {
		p.persist(ctx, currency, rate)
		return rate
	}

	if rate, ok := p.loadPersisted(currency); ok {
		p.logger.Warn(ctx, "rate lookup failed, using last persisted rate",
			"currency", currency, "rate", rate.String())
		return rate
	}

	p.logger.Warn(ctx, "rate lookup failed and no persisted rate, using configured default",
		"currency", currency, "rate", p.config.Fallback.String())
	return p.config.Fallback
}

type latestResponse struct {
	Rates map[string]json.Number `json:"rates"`
}

func (p *Provider) fetchLive(ctx context.Context, currency string) (decimal.Decimal, bool) {
	var result latestResponse
	resp, err := p.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "latest")),
	).
		SetQueryParam("from", "USD").
		SetQueryParam("to", currency).
		SetResult(&result).
		Get(ctx, "/latest")
	if err != nil {
		p.logger.Warn(ctx, "live rate lookup failed", "currency", currency, "error", err)
		return decimal.Zero, false
	}
	if resp.IsError() {
		p.logger.Warn(ctx, "live rate lookup rejected",
			"currency", currency, "status", resp.StatusCode)
		return decimal.Zero, false
	}

	raw, ok := result.Rates[currency]
	if !ok {
		return decimal.Zero, false
	}
	rate, err := decimal.NewFromString(raw.String())
	if err != nil || !rate.IsPositive() {
		return decimal.Zero, false
	}
	return rate, true
}

// cacheEntry is the persisted rate file format.
type cacheEntry struct {
	Rates     map[string]string `json:"rates"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (p *Provider) persist(ctx context.Context, currency string, rate decimal.Decimal) {
	if p.config.CacheFile == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	entry := p.readCache()
	if entry.Rates == nil {
		entry.Rates = make(map[string]string)
	}
	entry.Rates[currency] = rate.String()
	entry.UpdatedAt = time.Now()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(p.config.CacheFile), 0o755); err != nil {
		p.logger.Warn(ctx, "failed to create rate cache dir", "error", err)
		return
	}
	if err := os.WriteFile(p.config.CacheFile, data, 0o644); err != nil {
		p.logger.Warn(ctx, "failed to persist rate", "error", err)
	}
}

func (p *Provider) loadPersisted(currency string) (decimal.Decimal, bool) {
	if p.config.CacheFile == "" {
		return decimal.Zero, false
	}

	p.mu.Lock()
	entry := p.readCache()
	p.mu.Unlock()

	raw, ok := entry.Rates[currency]
	if !ok {
		return decimal.Zero, false
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil || !rate.IsPositive() {
		return decimal.Zero, false
	}
	return rate, true
}

func (p *Provider) readCache() cacheEntry {
	var entry cacheEntry
	data, err := os.ReadFile(p.config.CacheFile)
	if err != nil {
		return entry
	}
	_ = json.Unmarshal(data, &entry)
	return entry
}

// Package market implements the market bounded context: venue adapters, the
// FX rate provider, and the price aggregator.
package market

import (
	"context"
	"strings"

	"github.com/crossarb/crossarb/business/market/app"
	marketDI "github.com/crossarb/crossarb/business/market/di"
	"github.com/crossarb/crossarb/business/market/infra/binance"
	"github.com/crossarb/crossarb/business/market/infra/frankfurter"
	"github.com/crossarb/crossarb/business/market/infra/indodax"
	"github.com/crossarb/crossarb/business/market/infra/kucoin"
	"github.com/crossarb/crossarb/internal/apperror"
	"github.com/crossarb/crossarb/internal/config"
	"github.com/crossarb/crossarb/internal/di"
	"github.com/crossarb/crossarb/internal/logger"
	"github.com/crossarb/crossarb/internal/monolith"
)

// Module implements the market bounded context.
type Module struct{}

// RegisterServices registers all market services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register venue adapters. A venue whose credentials are missing is
	// excluded from the active set; the zero-venue check happens at startup.
	di.RegisterToken(c, marketDI.VenueAdapters, func(sr di.ServiceRegistry) []app.VenueAdapter {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		ctx := context.Background()
		var adapters []app.VenueAdapter

		for _, name := range cfg.Arbitrage.ActiveVenues {
			adapter, err := buildAdapter(strings.ToLower(strings.TrimSpace(name)), cfg, log)
			if err != nil {
				log.Warn(ctx, "venue excluded from active set",
					"venue", name, "error", err)
				continue
			}
			adapters = append(adapters, adapter)
			log.Info(ctx, "venue initialized", "venue", adapter.Name())
		}
		return adapters
	})

	// Register RateProvider - private dependency
	di.RegisterToken(c, marketDI.RateProvider, func(sr di.ServiceRegistry) app.RateProvider {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		provider, err := frankfurter.New(frankfurter.Config{
			LookupURL:   cfg.Rates.LookupURL,
			Override:    cfg.Rates.OverrideDecimal(),
			Fallback:    cfg.Rates.FallbackDecimal(),
			CacheFile:   cfg.Rates.CacheFile,
			HTTPTimeout: cfg.Rates.HTTPTimeout,
		}, log)
		if err != nil {
			panic("failed to create rate provider: " + err.Error())
		}
		return provider
	})

	// Register Aggregator (public - exposed to the arbitrage module)
	di.RegisterToken(c, marketDI.Aggregator, func(sr di.ServiceRegistry) *app.Aggregator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewAggregator(
			marketDI.GetVenueAdapters(sr),
			marketDI.GetRateProvider(sr),
			cfg.Arbitrage.Symbols,
			cfg.Arbitrage.CallTimeout,
			log,
		)
	})

	return nil
}

// Startup verifies at least one venue survived initialization. Zero active
// venues is the only fatal startup condition for this context.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	adapters := marketDI.GetVenueAdapters(mono.Services())
	if len(adapters) == 0 {
		return apperror.New(apperror.CodeVenueInitFailed,
			apperror.WithContext("no venue could be initialized, check credentials"))
	}

	names := make([]string, len(adapters))
	for i, a := range adapters {
		names[i] = a.Name()
	}
	mono.Logger().Info(ctx, "market module started", "venues", strings.Join(names, ","))
	return nil
}

func buildAdapter(name string, cfg *config.Config, log logger.LoggerInterface) (app.VenueAdapter, error) {
	switch name {
	case "binance":
		return binance.New(binance.Config{
			BaseURL:   cfg.Venues.Binance.BaseURL,
			APIKey:    cfg.Venues.Binance.APIKey,
			SecretKey: cfg.Venues.Binance.SecretKey,
		}, log)
	case "kucoin":
		return kucoin.New(kucoin.Config{
			BaseURL:    cfg.Venues.Kucoin.BaseURL,
			APIKey:     cfg.Venues.Kucoin.APIKey,
			APISecret:  cfg.Venues.Kucoin.APISecret,
			Passphrase: cfg.Venues.Kucoin.Passphrase,
		}, log)
	case "indodax":
		return indodax.New(indodax.Config{
			BaseURL:   cfg.Venues.Indodax.BaseURL,
			APIKey:    cfg.Venues.Indodax.APIKey,
			SecretKey: cfg.Venues.Indodax.SecretKey,
		}, log)
	default:
		return nil, apperror.New(apperror.CodeVenueInitFailed,
			apperror.WithContext("unknown venue "+name))
	}
}

// Package arbitrage implements the arbitrage bounded context: detection,
// profit and feasibility evaluation, balance rotation, and transfer execution.
package arbitrage

import (
	"context"

	"github.com/crossarb/crossarb/business/arbitrage/app"
	arbitrageDI "github.com/crossarb/crossarb/business/arbitrage/di"
	"github.com/crossarb/crossarb/business/arbitrage/domain"
	"github.com/crossarb/crossarb/business/arbitrage/infra"
	marketDI "github.com/crossarb/crossarb/business/market/di"
	"github.com/crossarb/crossarb/internal/config"
	"github.com/crossarb/crossarb/internal/di"
	"github.com/crossarb/crossarb/internal/logger"
	"github.com/crossarb/crossarb/internal/monolith"
)

// Module implements the arbitrage bounded context.
type Module struct{}

// RegisterServices registers all arbitrage services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, arbitrageDI.VenueSet, func(sr di.ServiceRegistry) *app.VenueSet {
		return app.NewVenueSet(marketDI.GetVenueAdapters(sr))
	})

	di.RegisterToken(c, arbitrageDI.WalletDirectory, func(sr di.ServiceRegistry) app.WalletDirectory {
		cfg := sr.Get("config").(*config.Config)
		return infra.NewConfigWalletDirectory(cfg.Wallets)
	})

	di.RegisterToken(c, arbitrageDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		reporters := []app.Reporter{infra.NewConsoleReporter()}
		if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" {
			reporters = append(reporters,
				infra.NewTelegramReporter(cfg.Telegram.BotToken, cfg.Telegram.ChatID, log))
		}
		if len(reporters) == 1 {
			return reporters[0]
		}
		return infra.NewFanoutReporter(reporters...)
	})

	di.RegisterToken(c, arbitrageDI.Journal, func(sr di.ServiceRegistry) app.Journal {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		if cfg.Journal.DatabaseURL == "" {
			return infra.NewNoopJournal()
		}
		journal, err := infra.NewPostgresJournal(context.Background(), cfg.Journal.DatabaseURL)
		if err != nil {
			log.Warn(context.Background(),
				"journal database unavailable, transfers will not be persisted", "error", err)
			return infra.NewNoopJournal()
		}
		return journal
	})

	di.RegisterToken(c, arbitrageDI.Detector, func(sr di.ServiceRegistry) *app.Detector {
		return app.NewDetector()
	})

	di.RegisterToken(c, arbitrageDI.Calculator, func(sr di.ServiceRegistry) *app.ProfitCalculator {
		cfg := sr.Get("config").(*config.Config)
		fees := domain.FeeSchedule{
			TradingFeeRate:   cfg.Arbitrage.TradingFeeRateDecimal(),
			CoinTransferFees: cfg.Arbitrage.TransferFeesDecimal(),
			FiatTransferFee:  cfg.Arbitrage.FiatTransferFeeDecimal(),
		}
		return app.NewProfitCalculator(fees,
			cfg.Arbitrage.MinProfitUSDDecimal(),
			cfg.Arbitrage.MinProfitPercentDecimal())
	})

	di.RegisterToken(c, arbitrageDI.Feasibility, func(sr di.ServiceRegistry) *app.FeasibilityCalculator {
		cfg := sr.Get("config").(*config.Config)
		return app.NewFeasibilityCalculator(
			cfg.Arbitrage.MinTradeSizesDecimal(),
			cfg.Arbitrage.MinProfitUSDDecimal())
	})

	di.RegisterToken(c, arbitrageDI.Rotator, func(sr di.ServiceRegistry) *app.BalanceRotator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewBalanceRotator(
			arbitrageDI.GetVenueSet(sr),
			arbitrageDI.GetWalletDirectory(sr),
			arbitrageDI.GetJournal(sr),
			cfg.Arbitrage.CallTimeout,
			cfg.App.DryRun,
			log)
	})

	di.RegisterToken(c, arbitrageDI.Executor, func(sr di.ServiceRegistry) *app.TransferExecutor {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewTransferExecutor(
			arbitrageDI.GetVenueSet(sr),
			arbitrageDI.GetWalletDirectory(sr),
			arbitrageDI.GetJournal(sr),
			arbitrageDI.GetReporter(sr),
			cfg.Arbitrage.CallTimeout,
			cfg.App.DryRun,
			log)
	})

	di.RegisterToken(c, arbitrageDI.Orchestrator, func(sr di.ServiceRegistry) *app.Orchestrator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewOrchestrator(
			marketDI.GetAggregator(sr),
			arbitrageDI.GetVenueSet(sr),
			di.GetToken(sr, arbitrageDI.Detector),
			di.GetToken(sr, arbitrageDI.Calculator),
			di.GetToken(sr, arbitrageDI.Feasibility),
			di.GetToken(sr, arbitrageDI.Rotator),
			di.GetToken(sr, arbitrageDI.Executor),
			arbitrageDI.GetReporter(sr),
			app.OrchestratorConfig{
				PollInterval:   cfg.Arbitrage.PollInterval,
				FailureBackoff: cfg.Arbitrage.FailureBackoff,
				CallTimeout:    cfg.Arbitrage.CallTimeout,
			},
			log)
	})

	return nil
}

// Startup logs the operating mode for the arbitrage context.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	mono.Logger().Info(ctx, "arbitrage module started",
		"symbols", len(cfg.Arbitrage.Symbols),
		"dry_run", cfg.App.DryRun,
		"min_profit_usd", cfg.Arbitrage.MinProfitUSD,
		"min_profit_percent", cfg.Arbitrage.MinProfitPercent)
	return nil
}

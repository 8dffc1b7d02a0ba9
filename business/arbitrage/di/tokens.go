// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/crossarb/crossarb/business/arbitrage/app"
	"github.com/crossarb/crossarb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Orchestrator = di.NewToken[*app.Orchestrator]("arbitrage.Orchestrator")
)

// Private dependency tokens - internal to arbitrage module
var (
	VenueSet        = di.NewToken[*app.VenueSet]("arbitrage:venueSet")
	Detector        = di.NewToken[*app.Detector]("arbitrage:detector")
	Calculator      = di.NewToken[*app.ProfitCalculator]("arbitrage:calculator")
	Feasibility     = di.NewToken[*app.FeasibilityCalculator]("arbitrage:feasibility")
	Rotator         = di.NewToken[*app.BalanceRotator]("arbitrage:rotator")
	Executor        = di.NewToken[*app.TransferExecutor]("arbitrage:executor")
	Reporter        = di.NewToken[app.Reporter]("arbitrage:reporter")
	Journal         = di.NewToken[app.Journal]("arbitrage:journal")
	WalletDirectory = di.NewToken[app.WalletDirectory]("arbitrage:walletDirectory")
)

// Helper functions for type-safe access
func GetOrchestrator(c di.ServiceRegistry) *app.Orchestrator {
	return di.GetToken(c, Orchestrator)
}

func GetVenueSet(c di.ServiceRegistry) *app.VenueSet {
	return di.GetToken(c, VenueSet)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}

func GetJournal(c di.ServiceRegistry) app.Journal {
	return di.GetToken(c, Journal)
}

func GetWalletDirectory(c di.ServiceRegistry) app.WalletDirectory {
	return di.GetToken(c, WalletDirectory)
}

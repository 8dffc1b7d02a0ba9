package app

import (
	"context"
	"errors"
	"time"

	"github.com/crossarb/crossarb/business/arbitrage/domain"
	marketDomain "github.com/crossarb/crossarb/business/market/domain"
	"github.com/crossarb/crossarb/internal/apperror"
	"github.com/crossarb/crossarb/internal/logger"
)

// TransferExecutor realizes an accepted opportunity: it resolves the buy
// venue's deposit wallet and invokes the sell venue's transfer capability.
// No automatic retry: the opportunity persisting across cycles is the retry
// path while the spread holds.
type TransferExecutor struct {
	venues      *VenueSet
	wallets     WalletDirectory
	journal     Journal
	reporter    Reporter
	callTimeout time.Duration
	dryRun      bool
	log         logger.LoggerInterface
}

// NewTransferExecutor creates a TransferExecutor.
func NewTransferExecutor(
	venues *VenueSet,
	wallets WalletDirectory,
	journal Journal,
	reporter Reporter,
	callTimeout time.Duration,
	dryRun bool,
	log logger.LoggerInterface,
) *TransferExecutor {
	return &TransferExecutor{
		venues:      venues,
		wallets:     wallets,
		journal:     journal,
		reporter:    reporter,
		callTimeout: callTimeout,
		dryRun:      dryRun,
		log:         log,
	}
}

// Execute moves the opportunity's volume from the sell venue to the buy
// venue's deposit address. The outcome is always definite: completed, failed,
// or unresolved when the call deadline hit mid-flight.
func (e *TransferExecutor) Execute(ctx context.Context, opp *domain.Opportunity) error {
	sellVenue, ok := e.venues.Get(opp.SellVenue)
	if !ok {
		return apperror.New(apperror.CodeTransferFailed,
			apperror.WithContext("sell venue "+opp.SellVenue+" not in active set"))
	}

	wallet, ok := e.wallets.Lookup(opp.BuyVenue, opp.Symbol)
	if !ok {
		e.log.Warn(ctx, "no deposit wallet configured, skipping opportunity",
			"venue", opp.BuyVenue, "symbol", opp.Symbol)
		return apperror.New(apperror.CodeWalletNotFound,
			apperror.WithContext(opp.BuyVenue+"/"+opp.Symbol))
	}

	rec := domain.TransferRecord{
		Symbol:     opp.Symbol,
		FromVenue:  opp.SellVenue,
		ToVenue:    opp.BuyVenue,
		Amount:     opp.Plan.RequiredAmount,
		Address:    wallet.Address,
		NetProfit:  opp.Profit.NetProfit,
		ExecutedAt: time.Now(),
	}

	if e.dryRun {
		e.log.Info(ctx, "dry run: transfer planned but not sent",
			"symbol", opp.Symbol,
			"from", opp.SellVenue,
			"to", opp.BuyVenue,
			"amount", opp.Plan.RequiredAmount.String())
		rec.Status = domain.TransferSkipped
		e.finish(ctx, rec)
		return nil
	}

	e.log.Info(ctx, "executing transfer",
		"symbol", opp.Symbol,
		"from", opp.SellVenue,
		"to", opp.BuyVenue,
		"amount", opp.Plan.RequiredAmount.String())

	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	err := sellVenue.Transfer(callCtx, marketDomain.TransferRequest{
		Symbol:  opp.Symbol,
		Amount:  opp.Plan.RequiredAmount,
		Address: wallet.Address,
		Tag:     wallet.Tag,
		Network: wallet.Network,
	})

	switch {
	case err == nil:
		rec.Status = domain.TransferCompleted
		e.log.Info(ctx, "transfer completed",
			"symbol", opp.Symbol,
			"net_profit_usd", opp.Profit.NetProfit.String())
		e.finish(ctx, rec)
		return nil

	case errors.Is(err, context.DeadlineExceeded):
		// The withdrawal may or may not have been accepted upstream.
		rec.Status = domain.TransferUnresolved
		rec.Reason = err.Error()
		e.log.Error(ctx, "transfer outcome unknown, needs manual reconciliation",
			"symbol", opp.Symbol,
			"from", opp.SellVenue,
			"to", opp.BuyVenue,
			"error", err)
		e.finish(ctx, rec)
		return apperror.New(apperror.CodeTransferUnresolved, apperror.WithCause(err))

	default:
		rec.Status = domain.TransferFailed
		rec.Reason = err.Error()
		e.log.Error(ctx, "transfer failed",
			"symbol", opp.Symbol, "error", err)
		e.finish(ctx, rec)
		return apperror.New(apperror.CodeTransferFailed, apperror.WithCause(err))
	}
}

func (e *TransferExecutor) finish(ctx context.Context, rec domain.TransferRecord) {
	if err := e.journal.Record(ctx, rec); err != nil {
		e.log.Warn(ctx, "journal write failed", "error", err)
	}
	e.reporter.ReportTransfer(ctx, rec)
}

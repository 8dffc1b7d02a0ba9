package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crossarb/crossarb/business/arbitrage/domain"
	marketApp "github.com/crossarb/crossarb/business/market/app"
	marketDomain "github.com/crossarb/crossarb/business/market/domain"
	"github.com/crossarb/crossarb/internal/logger"
)

// BalanceRotator tops up a deficient sell venue from a surplus venue before
// an opportunity executes. It is a small per-opportunity state machine:
// CHECK_BALANCE -> SEEK_SOURCE -> TRANSFER_IN -> DONE | FAILED.
type BalanceRotator struct {
	venues      *VenueSet
	wallets     WalletDirectory
	journal     Journal
	callTimeout time.Duration
	dryRun      bool
	log         logger.LoggerInterface
}

// NewBalanceRotator creates a BalanceRotator.
func NewBalanceRotator(
	venues *VenueSet,
	wallets WalletDirectory,
	journal Journal,
	callTimeout time.Duration,
	dryRun bool,
	log logger.LoggerInterface,
) *BalanceRotator {
	return &BalanceRotator{
		venues:      venues,
		wallets:     wallets,
		journal:     journal,
		callTimeout: callTimeout,
		dryRun:      dryRun,
		log:         log,
	}
}

// Prepare runs the rotation machine for one opportunity and returns the
// terminal state. A FAILED result means the opportunity must not execute
// this cycle.
func (r *BalanceRotator) Prepare(ctx context.Context, opp *domain.Opportunity) domain.RotationResult {
	path := []domain.RotationState{domain.RotationCheckBalance}

	sellVenue, ok := r.venues.Get(opp.SellVenue)
	if !ok {
		return finishRotation(path, domain.RotationResult{
			State:  domain.RotationFailed,
			Reason: "sell venue not in active set",
		})
	}

	free := r.freeBalance(ctx, sellVenue.Name(), opp.Symbol)
	if free.GreaterThanOrEqual(opp.Plan.RequiredAmount) {
		return finishRotation(path, domain.RotationResult{State: domain.RotationDone})
	}

	shortfall := opp.Plan.RequiredAmount.Sub(free)
	r.log.Warn(ctx, "sell venue balance short, seeking source",
		"symbol", opp.Symbol,
		"venue", opp.SellVenue,
		"free", free.String(),
		"shortfall", shortfall.String())

	// First venue with enough free balance wins, in configured order; no
	// multi-source splitting.
	path = append(path, domain.RotationSeekSource)
	for _, name := range r.venues.Names() {
		if name == sellVenue.Name() {
			continue
		}
		source, _ := r.venues.Get(name)
		if r.freeBalance(ctx, name, opp.Symbol).LessThan(shortfall) {
			continue
		}

		path = append(path, domain.RotationTransferIn)
		return finishRotation(path, r.transferIn(ctx, opp, source, shortfall))
	}

	return finishRotation(path, domain.RotationResult{
		State:  domain.RotationFailed,
		Reason: "no venue holds enough " + opp.Symbol + " to cover the shortfall",
	})
}

// finishRotation closes the result's path with its terminal state.
func finishRotation(path []domain.RotationState, res domain.RotationResult) domain.RotationResult {
	if res.State.Terminal() {
		path = append(path, res.State)
	}
	res.Path = path
	return res
}

func (r *BalanceRotator) transferIn(
	ctx context.Context,
	opp *domain.Opportunity,
	source marketApp.VenueAdapter,
	shortfall decimal.Decimal,
) domain.RotationResult {
	wallet, ok := r.wallets.Lookup(opp.SellVenue, opp.Symbol)
	if !ok {
		return domain.RotationResult{
			State:       domain.RotationFailed,
			SourceVenue: source.Name(),
			Shortfall:   shortfall,
			Reason:      "no deposit wallet configured for " + opp.SellVenue + "/" + opp.Symbol,
		}
	}

	rec := domain.TransferRecord{
		Symbol:     opp.Symbol,
		FromVenue:  source.Name(),
		ToVenue:    opp.SellVenue,
		Amount:     shortfall,
		Address:    wallet.Address,
		ExecutedAt: time.Now(),
	}

	if r.dryRun {
		r.log.Info(ctx, "dry run: rotation transfer planned but not sent",
			"symbol", opp.Symbol,
			"from", source.Name(),
			"to", opp.SellVenue,
			"amount", shortfall.String())
		rec.Status = domain.TransferSkipped
		r.record(ctx, rec)
		return domain.RotationResult{
			State:       domain.RotationDone,
			SourceVenue: source.Name(),
			Shortfall:   shortfall,
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	err := source.Transfer(callCtx, marketDomain.TransferRequest{
		Symbol:  opp.Symbol,
		Amount:  shortfall,
		Address: wallet.Address,
		Tag:     wallet.Tag,
		Network: wallet.Network,
	})
	if err != nil {
		rec.Status = domain.TransferFailed
		rec.Reason = err.Error()
		r.record(ctx, rec)
		return domain.RotationResult{
			State:       domain.RotationFailed,
			SourceVenue: source.Name(),
			Shortfall:   shortfall,
			Reason:      "rotation transfer failed: " + err.Error(),
		}
	}

	r.log.Info(ctx, "rotation transfer sent",
		"symbol", opp.Symbol,
		"from", source.Name(),
		"to", opp.SellVenue,
		"amount", shortfall.String())
	rec.Status = domain.TransferCompleted
	r.record(ctx, rec)

	return domain.RotationResult{
		State:       domain.RotationDone,
		SourceVenue: source.Name(),
		Shortfall:   shortfall,
	}
}

func (r *BalanceRotator) freeBalance(ctx context.Context, venue, symbol string) decimal.Decimal {
	adapter, ok := r.venues.Get(venue)
	if !ok {
		return decimal.Zero
	}

	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	sheet, err := adapter.FetchBalances(callCtx)
	if err != nil {
		r.log.Warn(ctx, "balance fetch failed, treating as zero",
			"venue", venue, "error", err)
		return decimal.Zero
	}
	return sheet.Free(symbol)
}

func (r *BalanceRotator) record(ctx context.Context, rec domain.TransferRecord) {
	if err := r.journal.Record(ctx, rec); err != nil {
		r.log.Warn(ctx, "journal write failed", "error", err)
	}
}

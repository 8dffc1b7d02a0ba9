package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crossarb/crossarb/business/arbitrage/domain"
	marketApp "github.com/crossarb/crossarb/business/market/app"
	"github.com/crossarb/crossarb/internal/apperror"
)

func executionOpp(t *testing.T) *domain.Opportunity {
	t.Helper()
	return &domain.Opportunity{
		Symbol:    "BTC",
		BuyVenue:  "binance",
		SellVenue: "kucoin",
		BuyPrice:  decimal.RequireFromString("64900"),
		SellPrice: decimal.RequireFromString("65150"),
		Profit: domain.ProfitResult{
			NetProfit: decimal.RequireFromString("1.798"),
			Qualifies: true,
		},
		Plan: domain.TradePlan{
			RequiredAmount: decimal.RequireFromString("0.5"),
			Executable:     true,
		},
	}
}

func newExecutor(venues []marketApp.VenueAdapter, wallets WalletDirectory, journal Journal, reporter Reporter, dryRun bool) *TransferExecutor {
	return NewTransferExecutor(NewVenueSet(venues), wallets, journal, reporter, time.Second, dryRun, discardLogger())
}

func TestExecutorMovesVolumeToBuyVenueWallet(t *testing.T) {
	kucoin := &stubVenue{name: "kucoin", base: "USDT"}
	wallets := &stubWallets{wallets: map[string]Wallet{
		"binance/BTC": {Address: "bn-deposit", Tag: "", Network: "BTC"},
	}}
	journal := &stubJournal{}
	reporter := &stubReporter{}

	exec := newExecutor([]marketApp.VenueAdapter{kucoin}, wallets, journal, reporter, false)
	if err := exec.Execute(context.Background(), executionOpp(t)); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(kucoin.transfers) != 1 {
		t.Fatalf("got %d transfers, want 1", len(kucoin.transfers))
	}
	req := kucoin.transfers[0]
	if req.Address != "bn-deposit" {
		t.Errorf("Address = %q, want bn-deposit", req.Address)
	}
	if !req.Amount.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("Amount = %s, want 0.5", req.Amount)
	}

	if len(journal.records) != 1 || journal.records[0].Status != domain.TransferCompleted {
		t.Errorf("journal = %+v, want one completed record", journal.records)
	}
	if len(reporter.transfers) != 1 {
		t.Errorf("got %d transfer reports, want 1", len(reporter.transfers))
	}
}

func TestExecutorMissingWallet(t *testing.T) {
	kucoin := &stubVenue{name: "kucoin", base: "USDT"}

	exec := newExecutor([]marketApp.VenueAdapter{kucoin}, &stubWallets{}, &stubJournal{}, &stubReporter{}, false)
	err := exec.Execute(context.Background(), executionOpp(t))

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperror.CodeWalletNotFound {
		t.Fatalf("err = %v, want code %s", err, apperror.CodeWalletNotFound)
	}
	if len(kucoin.transfers) != 0 {
		t.Error("transfer must not be attempted without a wallet")
	}
}

func TestExecutorDryRunRecordsSkipped(t *testing.T) {
	kucoin := &stubVenue{name: "kucoin", base: "USDT"}
	wallets := &stubWallets{wallets: map[string]Wallet{
		"binance/BTC": {Address: "bn-deposit"},
	}}
	journal := &stubJournal{}

	exec := newExecutor([]marketApp.VenueAdapter{kucoin}, wallets, journal, &stubReporter{}, true)
	if err := exec.Execute(context.Background(), executionOpp(t)); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(kucoin.transfers) != 0 {
		t.Error("dry run must not send the transfer")
	}
	if len(journal.records) != 1 || journal.records[0].Status != domain.TransferSkipped {
		t.Errorf("journal = %+v, want one skipped record", journal.records)
	}
}

func TestExecutorTransferFailure(t *testing.T) {
	kucoin := &stubVenue{name: "kucoin", base: "USDT", transferErr: errors.New("insufficient funds")}
	wallets := &stubWallets{wallets: map[string]Wallet{
		"binance/BTC": {Address: "bn-deposit"},
	}}
	journal := &stubJournal{}

	exec := newExecutor([]marketApp.VenueAdapter{kucoin}, wallets, journal, &stubReporter{}, false)
	err := exec.Execute(context.Background(), executionOpp(t))

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperror.CodeTransferFailed {
		t.Fatalf("err = %v, want code %s", err, apperror.CodeTransferFailed)
	}
	if len(journal.records) != 1 || journal.records[0].Status != domain.TransferFailed {
		t.Errorf("journal = %+v, want one failed record", journal.records)
	}
}

func TestExecutorTimeoutIsUnresolved(t *testing.T) {
	// A deadline hit mid-flight means the withdrawal may still have been
	// accepted upstream: the record is unresolved, not failed.
	kucoin := &stubVenue{name: "kucoin", base: "USDT", transferErr: context.DeadlineExceeded}
	wallets := &stubWallets{wallets: map[string]Wallet{
		"binance/BTC": {Address: "bn-deposit"},
	}}
	journal := &stubJournal{}

	exec := newExecutor([]marketApp.VenueAdapter{kucoin}, wallets, journal, &stubReporter{}, false)
	err := exec.Execute(context.Background(), executionOpp(t))

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperror.CodeTransferUnresolved {
		t.Fatalf("err = %v, want code %s", err, apperror.CodeTransferUnresolved)
	}
	if len(journal.records) != 1 || journal.records[0].Status != domain.TransferUnresolved {
		t.Errorf("journal = %+v, want one unresolved record", journal.records)
	}
}

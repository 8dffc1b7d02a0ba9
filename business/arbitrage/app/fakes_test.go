package app

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/crossarb/crossarb/business/arbitrage/domain"
	marketDomain "github.com/crossarb/crossarb/business/market/domain"
	"github.com/crossarb/crossarb/internal/logger"
)

type stubVenue struct {
	name        string
	base        string
	prices      map[string]string // native pair -> last price
	balances    marketDomain.BalanceSheet
	balanceErr  error
	transferErr error
	transfers   []marketDomain.TransferRequest
}

func (s *stubVenue) Name() string         { return s.name }
func (s *stubVenue) BaseCurrency() string { return s.base }
func (s *stubVenue) PairFor(symbol string) string {
	return symbol
}

func (s *stubVenue) FetchTicker(_ context.Context, native string) (decimal.Decimal, error) {
	if raw, ok := s.prices[native]; ok {
		return decimal.RequireFromString(raw), nil
	}
	return decimal.Zero, nil
}

func (s *stubVenue) FetchBalances(context.Context) (marketDomain.BalanceSheet, error) {
	if s.balanceErr != nil {
		return nil, s.balanceErr
	}
	return s.balances, nil
}

func (s *stubVenue) Transfer(_ context.Context, req marketDomain.TransferRequest) error {
	s.transfers = append(s.transfers, req)
	return s.transferErr
}

type stubRates struct {
	rate  string
	calls int
}

func (s *stubRates) USDToLocal(context.Context, string) decimal.Decimal {
	s.calls++
	return decimal.RequireFromString(s.rate)
}

type stubWallets struct {
	wallets map[string]Wallet // "venue/symbol" -> wallet
}

func (s *stubWallets) Lookup(venue, symbol string) (Wallet, bool) {
	w, ok := s.wallets[venue+"/"+symbol]
	return w, ok
}

type stubJournal struct {
	records []domain.TransferRecord
}

func (s *stubJournal) Record(_ context.Context, rec domain.TransferRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func (s *stubJournal) Close() error { return nil }

type stubReporter struct {
	opportunities []*domain.Opportunity
	transfers     []domain.TransferRecord
}

func (s *stubReporter) Report(_ context.Context, opp *domain.Opportunity) {
	s.opportunities = append(s.opportunities, opp)
}

func (s *stubReporter) ReportTransfer(_ context.Context, rec domain.TransferRecord) {
	s.transfers = append(s.transfers, rec)
}

func discardLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func sheet(t *testing.T, free map[string]string) marketDomain.BalanceSheet {
	t.Helper()
	out := make(marketDomain.BalanceSheet, len(free))
	for asset, amount := range free {
		out[asset] = marketDomain.Balance{Free: decimal.RequireFromString(amount)}
	}
	return out
}

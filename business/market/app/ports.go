// Package app contains application services and port definitions for the market context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/crossarb/crossarb/business/market/domain"
)

// VenueAdapter is the uniform capability interface every trading venue
// implements. The set of venues is closed and chosen at configuration time.
type VenueAdapter interface {
	// Name returns the venue identity, lowercase.
	Name() string

	// BaseCurrency returns the venue's settlement currency ("USDT" or "IDR").
	BaseCurrency() string

	// PairFor maps a canonical symbol to the venue-native pair name,
	// e.g. BTC -> BTCUSDT, BTC-USDT, btc_idr.
	PairFor(symbol string) string

	// FetchTicker returns the last traded price for a venue-native pair,
	// denominated in the venue's settlement currency.
	FetchTicker(ctx context.Context, nativeSymbol string) (decimal.Decimal, error)

	// FetchBalances returns all asset balances on the venue.
	FetchBalances(ctx context.Context) (domain.BalanceSheet, error)

	// Transfer withdraws an asset to an external deposit address.
	Transfer(ctx context.Context, req domain.TransferRequest) error
}

// RateProvider supplies the USD to local-currency conversion rate. It never
// fails: implementations fall back to a cached and then a configured default
// rate.
type RateProvider interface {
	USDToLocal(ctx context.Context, currency string) decimal.Decimal
}

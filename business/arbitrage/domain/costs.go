// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FeeSchedule is the fee snapshot one cycle's profit numbers derive from:
// a uniform per-leg trading fee rate, a flat per-symbol coin transfer fee,
// and a flat fiat conversion fee charged when a leg settles in fiat.
type FeeSchedule struct {
	TradingFeeRate   decimal.Decimal
	CoinTransferFees map[string]decimal.Decimal
	FiatTransferFee  decimal.Decimal
}

// CoinFee returns the flat transfer fee for a symbol, zero when unknown.
func (f FeeSchedule) CoinFee(symbol string) decimal.Decimal {
	if fee, ok := f.CoinTransferFees[strings.ToUpper(symbol)]; ok {
		return fee
	}
	return decimal.Zero
}

// ProfitResult contains the calculated profit for a candidate.
type ProfitResult struct {
	GrossProfit      decimal.Decimal
	TradingFee       decimal.Decimal
	CoinTransferFee  decimal.Decimal
	FiatTransferFee  decimal.Decimal
	TotalFee         decimal.Decimal
	NetProfit        decimal.Decimal
	NetProfitPercent decimal.Decimal
	// Qualifies is true when net profit clears both configured floors,
	// each with a strict comparison.
	Qualifies bool
}

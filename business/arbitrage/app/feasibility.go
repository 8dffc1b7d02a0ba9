package app

import (
	"github.com/crossarb/crossarb/business/arbitrage/domain"
	"github.com/shopspring/decimal"
)

const defaultMinTradeSize = "0.001"

// FeasibilityCalculator decides how much of a candidate can actually be
// traded given current balances, and whether that volume clears both the
// symbol minimum and the profit-floor-derived minimum.
type FeasibilityCalculator struct {
	minTradeSizes map[string]decimal.Decimal
	minProfitUSD  decimal.Decimal
}

// NewFeasibilityCalculator creates a FeasibilityCalculator.
func NewFeasibilityCalculator(minTradeSizes map[string]decimal.Decimal, minProfitUSD decimal.Decimal) *FeasibilityCalculator {
	return &FeasibilityCalculator{
		minTradeSizes: minTradeSizes,
		minProfitUSD:  minProfitUSD,
	}
}

// Evaluate computes the trade plan for a candidate against a balance
// snapshot. The volume is bounded by what the buy side can afford and what
// the sell side holds. A non-positive spread makes the profit-derived
// minimum unreachable, so the plan is never executable.
func (f *FeasibilityCalculator) Evaluate(cand domain.Candidate, balances domain.BalanceSnapshot) domain.TradePlan {
	maxFromBuy := decimal.Zero
	if cand.BuyPrice.IsPositive() {
		maxFromBuy = balances.BuySideUSD.Div(cand.BuyPrice)
	}

	tradeAmount := decimal.Min(balances.SellSideSymbol, maxFromBuy)
	minSize := f.minTradeSize(cand.Symbol)

	spread := cand.Spread()
	if !spread.IsPositive() {
		return domain.TradePlan{
			RequiredAmount:     tradeAmount,
			MinBalanceRequired: minSize,
			Executable:         false,
			Balances:           balances,
		}
	}

	minForProfit := decimal.Max(f.minProfitUSD.Div(spread), minSize)

	return domain.TradePlan{
		RequiredAmount:     tradeAmount,
		MinBalanceRequired: decimal.Max(minSize, minForProfit),
		Executable: tradeAmount.GreaterThanOrEqual(minSize) &&
			tradeAmount.GreaterThanOrEqual(minForProfit),
		Balances: balances,
	}
}

func (f *FeasibilityCalculator) minTradeSize(symbol string) decimal.Decimal {
	if size, ok := f.minTradeSizes[symbol]; ok {
		return size
	}
	return decimal.RequireFromString(defaultMinTradeSize)
}

package app

import (
	"github.com/crossarb/crossarb/business/arbitrage/domain"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// ProfitCalculator computes gross and net profit for a candidate from a fee
// schedule. The calculation is pure and deterministic: identical prices and
// schedule always produce identical results.
type ProfitCalculator struct {
	fees             domain.FeeSchedule
	minProfitUSD     decimal.Decimal
	minProfitPercent decimal.Decimal
}

// NewProfitCalculator creates a ProfitCalculator with the given fee schedule
// and profit floors.
func NewProfitCalculator(fees domain.FeeSchedule, minProfitUSD, minProfitPercent decimal.Decimal) *ProfitCalculator {
	return &ProfitCalculator{
		fees:             fees,
		minProfitUSD:     minProfitUSD,
		minProfitPercent: minProfitPercent,
	}
}

// Calculate computes the per-unit profit for a candidate. fiatLeg marks that
// at least one leg settles in fiat, which adds the flat conversion fee.
// An opportunity qualifies only when net profit strictly clears both floors.
func (c *ProfitCalculator) Calculate(cand domain.Candidate, fiatLeg bool) domain.ProfitResult {
	grossProfit := cand.SellPrice.Sub(cand.BuyPrice)
	tradingFee := cand.BuyPrice.Add(cand.SellPrice).Mul(c.fees.TradingFeeRate)
	coinFee := c.fees.CoinFee(cand.Symbol)

	fiatFee := decimal.Zero
	if fiatLeg {
		fiatFee = c.fees.FiatTransferFee
	}

	totalFee := tradingFee.Add(coinFee).Add(fiatFee)
	netProfit := grossProfit.Sub(totalFee)

	netProfitPercent := decimal.Zero
	if cand.BuyPrice.IsPositive() {
		netProfitPercent = netProfit.Div(cand.BuyPrice).Mul(oneHundred)
	}

	return domain.ProfitResult{
		GrossProfit:      grossProfit,
		TradingFee:       tradingFee,
		CoinTransferFee:  coinFee,
		FiatTransferFee:  fiatFee,
		TotalFee:         totalFee,
		NetProfit:        netProfit,
		NetProfitPercent: netProfitPercent,
		Qualifies: netProfit.GreaterThan(c.minProfitUSD) &&
			netProfitPercent.GreaterThan(c.minProfitPercent),
	}
}

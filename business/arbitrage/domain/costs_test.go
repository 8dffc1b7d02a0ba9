package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFeeScheduleCoinFee(t *testing.T) {
	schedule := FeeSchedule{
		TradingFeeRate: decimal.RequireFromString("0.001"),
		CoinTransferFees: map[string]decimal.Decimal{
			"BTC": decimal.RequireFromString("0.0005"),
			"XRP": decimal.RequireFromString("0.25"),
		},
	}

	tests := []struct {
		name   string
		symbol string
		want   string
	}{
		{name: "known symbol", symbol: "BTC", want: "0.0005"},
		{name: "lowercase symbol", symbol: "xrp", want: "0.25"},
		{name: "unknown symbol falls back to zero", symbol: "DOGE", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := schedule.CoinFee(tt.symbol)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("CoinFee(%q) = %s, want %s", tt.symbol, got, tt.want)
			}
		})
	}
}

func TestCandidateSpread(t *testing.T) {
	cand := Candidate{
		BuyPrice:  decimal.RequireFromString("100"),
		SellPrice: decimal.RequireFromString("102.5"),
	}
	if got := cand.Spread(); !got.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("Spread = %s, want 2.5", got)
	}
}

package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Balance is one asset's balance on a venue.
type Balance struct {
	Free   decimal.Decimal
	Locked decimal.Decimal
}

// Total returns free plus locked funds.
func (b Balance) Total() decimal.Decimal {
	return b.Free.Add(b.Locked)
}

// BalanceSheet maps asset tickers to balances for one venue. Lookups are
// case-insensitive on the asset ticker.
type BalanceSheet map[string]Balance

// Free returns the free balance for an asset, zero when absent.
func (s BalanceSheet) Free(asset string) decimal.Decimal {
	if b, ok := s[asset]; ok {
		return b.Free
	}
	for k, b := range s {
		if strings.EqualFold(k, asset) {
			return b.Free
		}
	}
	return decimal.Zero
}

// TransferRequest describes a withdrawal from one venue to an external
// deposit address.
type TransferRequest struct {
	Symbol  string
	Amount  decimal.Decimal
	Address string
	Tag     string
	Network string
}

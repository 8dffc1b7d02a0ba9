// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candidate is a raw detection result: the cheapest and the most expensive
// venue for one symbol in a single price matrix, before profit and
// feasibility are evaluated.
type Candidate struct {
	Symbol    string
	BuyVenue  string
	SellVenue string
	BuyPrice  decimal.Decimal
	SellPrice decimal.Decimal
}

// Spread returns sell price minus buy price.
func (c Candidate) Spread() decimal.Decimal {
	return c.SellPrice.Sub(c.BuyPrice)
}

// BalanceSnapshot captures the balances an opportunity's feasibility was
// judged against: the buy venue's settlement funds in USD and the sell
// venue's free holding of the traded symbol.
type BalanceSnapshot struct {
	BuySideUSD     decimal.Decimal
	SellSideSymbol decimal.Decimal
}

// TradePlan is the feasibility verdict for a candidate.
type TradePlan struct {
	// RequiredAmount is the trade volume, bounded by both venues' balances.
	RequiredAmount decimal.Decimal
	// MinBalanceRequired is a diagnostic: the smallest holding that would
	// have made the opportunity executable.
	MinBalanceRequired decimal.Decimal
	Executable         bool
	Balances           BalanceSnapshot
}

// Opportunity is a fully evaluated arbitrage opportunity. Created fresh each
// cycle, immutable after creation, consumed at most once.
//
// Invariants: BuyPrice <= SellPrice, BuyVenue != SellVenue, and Profit and
// Plan derive from the same fee schedule snapshot as the prices.
type Opportunity struct {
	Symbol    string
	BuyVenue  string
	SellVenue string
	BuyPrice  decimal.Decimal
	SellPrice decimal.Decimal
	Spread    decimal.Decimal

	Profit ProfitResult
	Plan   TradePlan

	DetectedAt time.Time
}

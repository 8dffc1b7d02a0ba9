// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"context"
	"strings"

	"github.com/crossarb/crossarb/business/arbitrage/domain"
	marketApp "github.com/crossarb/crossarb/business/market/app"
)

// Wallet is a deposit destination for one (venue, symbol).
type Wallet struct {
	Address string
	Tag     string
	Network string
}

// WalletDirectory resolves deposit wallets from configuration.
type WalletDirectory interface {
	// Lookup returns the wallet for (venue, symbol), or false when no
	// wallet is configured.
	Lookup(venue, symbol string) (Wallet, bool)
}

// Reporter publishes evaluated opportunities and transfer outcomes.
type Reporter interface {
	Report(ctx context.Context, opp *domain.Opportunity)
	ReportTransfer(ctx context.Context, rec domain.TransferRecord)
}

// Journal persists transfer attempts for audit and reconciliation.
type Journal interface {
	Record(ctx context.Context, rec domain.TransferRecord) error
	Close() error
}

// VenueSet holds the active venue adapters with a stable iteration order.
// The order is the configured one; tie-breaks and source seeking use it.
type VenueSet struct {
	names    []string
	adapters map[string]marketApp.VenueAdapter
}

// NewVenueSet builds a VenueSet preserving the adapters' order.
func NewVenueSet(adapters []marketApp.VenueAdapter) *VenueSet {
	s := &VenueSet{
		adapters: make(map[string]marketApp.VenueAdapter, len(adapters)),
	}
	for _, a := range adapters {
		name := strings.ToLower(a.Name())
		s.names = append(s.names, name)
		s.adapters[name] = a
	}
	return s
}

// Names returns the venue names in configured order.
func (s *VenueSet) Names() []string {
	return s.names
}

// Get returns the adapter for a venue name, case-insensitively.
func (s *VenueSet) Get(name string) (marketApp.VenueAdapter, bool) {
	a, ok := s.adapters[strings.ToLower(name)]
	return a, ok
}

// IsFiatSettled reports whether a venue settles in a local fiat currency
// rather than a USD stablecoin.
func (s *VenueSet) IsFiatSettled(name string) bool {
	a, ok := s.Get(name)
	if !ok {
		return false
	}
	switch a.BaseCurrency() {
	case "USD", "USDT", "USDC":
		return false
	}
	return true
}

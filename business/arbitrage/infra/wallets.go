package infra

import (
	"strings"

	"github.com/crossarb/crossarb/business/arbitrage/app"
	"github.com/crossarb/crossarb/internal/config"
)

// ConfigWalletDirectory resolves deposit wallets from configuration entries
// of the form "address[:tag[:network]]".
type ConfigWalletDirectory struct {
	wallets config.WalletsConfig
}

// NewConfigWalletDirectory creates a wallet directory over the configured
// wallet table.
func NewConfigWalletDirectory(wallets config.WalletsConfig) *ConfigWalletDirectory {
	return &ConfigWalletDirectory{wallets: wallets}
}

// Lookup implements app.WalletDirectory.
func (d *ConfigWalletDirectory) Lookup(venue, symbol string) (app.Wallet, bool) {
	entry, ok := d.wallets.Lookup(venue, symbol)
	if !ok || entry == "" {
		return app.Wallet{}, false
	}

	parts := strings.Split(entry, ":")
	wallet := app.Wallet{Address: parts[0]}
	if wallet.Address == "" {
		return app.Wallet{}, false
	}
	if len(parts) > 1 {
		wallet.Tag = parts[1]
	}
	if len(parts) > 2 {
		wallet.Network = parts[2]
	}
	return wallet, true
}

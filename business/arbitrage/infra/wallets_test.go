package infra

import (
	"testing"

	"github.com/crossarb/crossarb/internal/config"
)

func TestConfigWalletDirectoryLookup(t *testing.T) {
	dir := NewConfigWalletDirectory(config.WalletsConfig{
		"binance": {
			"BTC": "bc1qdeposit",
			"XRP": "rDeposit:12345:XRP",
			"ETH": "0xdeposit::ERC20",
			"SOL": "",
		},
	})

	tests := []struct {
		name        string
		venue       string
		symbol      string
		wantAddress string
		wantTag     string
		wantNetwork string
		wantFound   bool
	}{
		{
			name:        "plain address",
			venue:       "binance",
			symbol:      "BTC",
			wantAddress: "bc1qdeposit",
			wantFound:   true,
		},
		{
			name:        "address with tag and network",
			venue:       "binance",
			symbol:      "XRP",
			wantAddress: "rDeposit",
			wantTag:     "12345",
			wantNetwork: "XRP",
			wantFound:   true,
		},
		{
			name:        "address with network but no tag",
			venue:       "binance",
			symbol:      "ETH",
			wantAddress: "0xdeposit",
			wantNetwork: "ERC20",
			wantFound:   true,
		},
		{
			name:      "case-insensitive lookup",
			venue:     "Binance",
			symbol:    "btc",
			wantFound: true, wantAddress: "bc1qdeposit",
		},
		{
			name:   "empty entry is not a wallet",
			venue:  "binance",
			symbol: "SOL",
		},
		{
			name:   "unknown venue",
			venue:  "kucoin",
			symbol: "BTC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wallet, found := dir.Lookup(tt.venue, tt.symbol)
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if !found {
				return
			}
			if wallet.Address != tt.wantAddress {
				t.Errorf("Address = %q, want %q", wallet.Address, tt.wantAddress)
			}
			if wallet.Tag != tt.wantTag {
				t.Errorf("Tag = %q, want %q", wallet.Tag, tt.wantTag)
			}
			if wallet.Network != tt.wantNetwork {
				t.Errorf("Network = %q, want %q", wallet.Network, tt.wantNetwork)
			}
		})
	}
}

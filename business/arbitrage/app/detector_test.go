package app

import (
	"testing"

	"github.com/shopspring/decimal"

	marketDomain "github.com/crossarb/crossarb/business/market/domain"
)

func buildMatrix(t *testing.T, venues, symbols []string, prices map[string]map[string]string) *marketDomain.PriceMatrix {
	t.Helper()
	matrix := marketDomain.NewPriceMatrix(venues, symbols)
	for venue, row := range prices {
		for symbol, price := range row {
			matrix.Set(venue, symbol, decimal.RequireFromString(price))
		}
	}
	return matrix
}

func TestDetectorDetect(t *testing.T) {
	venues := []string{"binance", "kucoin", "indodax"}

	tests := []struct {
		name          string
		symbols       []string
		prices        map[string]map[string]string
		wantCount     int
		wantBuyVenue  string
		wantSellVenue string
		wantSpread    string
	}{
		{
			name:    "buy low sell high across three venues",
			symbols: []string{"BTC"},
			prices: map[string]map[string]string{
				"binance": {"BTC": "65000"},
				"kucoin":  {"BTC": "65150"},
				"indodax": {"BTC": "64900"},
			},
			wantCount:     1,
			wantBuyVenue:  "indodax",
			wantSellVenue: "kucoin",
			wantSpread:    "250",
		},
		{
			name:    "zero price venue is excluded",
			symbols: []string{"BTC"},
			prices: map[string]map[string]string{
				"binance": {"BTC": "0"},
				"kucoin":  {"BTC": "65150"},
				"indodax": {"BTC": "64900"},
			},
			wantCount:     1,
			wantBuyVenue:  "indodax",
			wantSellVenue: "kucoin",
			wantSpread:    "250",
		},
		{
			name:    "single valid venue emits nothing",
			symbols: []string{"BTC"},
			prices: map[string]map[string]string{
				"binance": {"BTC": "65000"},
			},
			wantCount: 0,
		},
		{
			name:    "identical prices everywhere emit nothing",
			symbols: []string{"BTC"},
			prices: map[string]map[string]string{
				"binance": {"BTC": "65000"},
				"kucoin":  {"BTC": "65000"},
				"indodax": {"BTC": "65000"},
			},
			wantCount: 0,
		},
	}

	detector := NewDetector()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matrix := buildMatrix(t, venues, tt.symbols, tt.prices)
			candidates := detector.Detect(matrix)

			if len(candidates) != tt.wantCount {
				t.Fatalf("got %d candidates, want %d", len(candidates), tt.wantCount)
			}
			if tt.wantCount == 0 {
				return
			}

			cand := candidates[0]
			if cand.BuyVenue != tt.wantBuyVenue {
				t.Errorf("BuyVenue = %q, want %q", cand.BuyVenue, tt.wantBuyVenue)
			}
			if cand.SellVenue != tt.wantSellVenue {
				t.Errorf("SellVenue = %q, want %q", cand.SellVenue, tt.wantSellVenue)
			}
			if !cand.Spread().Equal(decimal.RequireFromString(tt.wantSpread)) {
				t.Errorf("Spread = %s, want %s", cand.Spread(), tt.wantSpread)
			}
		})
	}
}

func TestDetectorTiesResolveToFirstVenue(t *testing.T) {
	// Two venues share the minimum price; the one listed first wins the
	// buy side so repeated detections stay deterministic.
	matrix := buildMatrix(t,
		[]string{"binance", "kucoin", "indodax"},
		[]string{"BTC"},
		map[string]map[string]string{
			"binance": {"BTC": "64900"},
			"kucoin":  {"BTC": "64900"},
			"indodax": {"BTC": "65100"},
		})

	detector := NewDetector()
	for i := 0; i < 3; i++ {
		candidates := detector.Detect(matrix)
		if len(candidates) != 1 {
			t.Fatalf("got %d candidates, want 1", len(candidates))
		}
		if candidates[0].BuyVenue != "binance" {
			t.Fatalf("run %d: BuyVenue = %q, want binance", i, candidates[0].BuyVenue)
		}
	}
}

func TestDetectorScansEachSymbolIndependently(t *testing.T) {
	matrix := buildMatrix(t,
		[]string{"binance", "kucoin"},
		[]string{"BTC", "XRP", "SOL"},
		map[string]map[string]string{
			"binance": {"BTC": "65000", "XRP": "0.52", "SOL": "150"},
			"kucoin":  {"BTC": "65100", "XRP": "0.52", "SOL": "0"},
		})

	candidates := NewDetector().Detect(matrix)

	// XRP prices are equal and SOL has one valid venue: only BTC remains.
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
	if candidates[0].Symbol != "BTC" {
		t.Errorf("Symbol = %q, want BTC", candidates[0].Symbol)
	}
}

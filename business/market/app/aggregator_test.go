package app

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crossarb/crossarb/business/market/domain"
	"github.com/crossarb/crossarb/internal/logger"
)

type fakeVenue struct {
	name     string
	base     string
	prices   map[string]string // native pair -> price
	failures map[string]error  // native pair -> error
	calls    int
}

func (f *fakeVenue) Name() string         { return f.name }
func (f *fakeVenue) BaseCurrency() string { return f.base }

func (f *fakeVenue) PairFor(symbol string) string {
	return symbol
}

func (f *fakeVenue) FetchTicker(_ context.Context, native string) (decimal.Decimal, error) {
	f.calls++
	if err, ok := f.failures[native]; ok {
		return decimal.Zero, err
	}
	raw, ok := f.prices[native]
	if !ok {
		return decimal.Zero, errors.New("no such pair")
	}
	return decimal.RequireFromString(raw), nil
}

func (f *fakeVenue) FetchBalances(context.Context) (domain.BalanceSheet, error) {
	return domain.BalanceSheet{}, nil
}

func (f *fakeVenue) Transfer(context.Context, domain.TransferRequest) error {
	return nil
}

type fakeRates struct {
	rate string
}

func (f *fakeRates) USDToLocal(context.Context, string) decimal.Decimal {
	return decimal.RequireFromString(f.rate)
}

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func newAggregator(venues []VenueAdapter, rates RateProvider, symbols []string) *Aggregator {
	return NewAggregator(venues, rates, symbols, time.Second, testLogger())
}

func TestAggregatorBuildsMatrix(t *testing.T) {
	binance := &fakeVenue{
		name:   "binance",
		base:   "USDT",
		prices: map[string]string{"BTC": "65000", "XRP": "0.52"},
	}
	kucoin := &fakeVenue{
		name:   "kucoin",
		base:   "USDT",
		prices: map[string]string{"BTC": "65100", "XRP": "0.51"},
	}

	agg := newAggregator([]VenueAdapter{binance, kucoin}, &fakeRates{rate: "15000"}, []string{"BTC", "XRP"})
	matrix := agg.Collect(context.Background())

	if got := matrix.Price("binance", "BTC"); !got.Equal(decimal.RequireFromString("65000")) {
		t.Errorf("binance BTC = %s, want 65000", got)
	}
	if got := matrix.Price("kucoin", "XRP"); !got.Equal(decimal.RequireFromString("0.51")) {
		t.Errorf("kucoin XRP = %s, want 0.51", got)
	}
	if got := matrix.QuoteCount(); got != 4 {
		t.Errorf("QuoteCount = %d, want 4", got)
	}
}

func TestAggregatorFailureIsolation(t *testing.T) {
	// One venue's BTC ticker fails: only that cell degrades to zero.
	binance := &fakeVenue{
		name:     "binance",
		base:     "USDT",
		prices:   map[string]string{"XRP": "0.52"},
		failures: map[string]error{"BTC": errors.New("timeout")},
	}
	kucoin := &fakeVenue{
		name:   "kucoin",
		base:   "USDT",
		prices: map[string]string{"BTC": "65100", "XRP": "0.51"},
	}

	agg := newAggregator([]VenueAdapter{binance, kucoin}, &fakeRates{rate: "15000"}, []string{"BTC", "XRP"})
	matrix := agg.Collect(context.Background())

	if got := matrix.Price("binance", "BTC"); !got.IsZero() {
		t.Errorf("failed cell = %s, want 0", got)
	}
	if got := matrix.Price("binance", "XRP"); got.IsZero() {
		t.Error("sibling symbol should be unaffected by one failed ticker")
	}
	if got := matrix.Price("kucoin", "BTC"); got.IsZero() {
		t.Error("other venue's BTC should be unaffected")
	}
}

func TestAggregatorConvertsFiatPrices(t *testing.T) {
	// Indodax quotes in IDR; cells must land in USD.
	indodax := &fakeVenue{
		name:   "indodax",
		base:   "IDR",
		prices: map[string]string{"BTC": "975000000"},
	}

	agg := newAggregator([]VenueAdapter{indodax}, &fakeRates{rate: "15000"}, []string{"BTC"})
	matrix := agg.Collect(context.Background())

	want := decimal.RequireFromString("65000")
	if got := matrix.Price("indodax", "BTC"); !got.Equal(want) {
		t.Errorf("indodax BTC = %s, want %s", got, want)
	}
	// The matrix carries the rate the conversion used so downstream fiat
	// amounts in the same cycle convert identically.
	if got := matrix.RateFor("IDR"); !got.Equal(decimal.RequireFromString("15000")) {
		t.Errorf("RateFor(IDR) = %s, want 15000", got)
	}
}

func TestAggregatorNonPositivePriceDegradesToZero(t *testing.T) {
	venue := &fakeVenue{
		name:   "binance",
		base:   "USDT",
		prices: map[string]string{"BTC": "0", "XRP": "-1"},
	}

	agg := newAggregator([]VenueAdapter{venue}, &fakeRates{rate: "15000"}, []string{"BTC", "XRP"})
	matrix := agg.Collect(context.Background())

	if got := matrix.Price("binance", "BTC"); !got.IsZero() {
		t.Errorf("zero price cell = %s, want 0", got)
	}
	if got := matrix.Price("binance", "XRP"); !got.IsZero() {
		t.Errorf("negative price cell = %s, want 0", got)
	}
}

func TestAggregatorIdempotentForUnchangedResponses(t *testing.T) {
	venues := []VenueAdapter{
		&fakeVenue{name: "binance", base: "USDT", prices: map[string]string{"BTC": "65000"}},
		&fakeVenue{name: "indodax", base: "IDR", prices: map[string]string{"BTC": "975000000"}},
	}

	agg := newAggregator(venues, &fakeRates{rate: "15000"}, []string{"BTC"})
	first := agg.Collect(context.Background())
	second := agg.Collect(context.Background())

	for _, venue := range first.Venues() {
		for _, symbol := range first.Symbols() {
			a, b := first.Price(venue, symbol), second.Price(venue, symbol)
			if !a.Equal(b) {
				t.Errorf("matrix not idempotent: %s/%s %s != %s", venue, symbol, a, b)
			}
		}
	}
}

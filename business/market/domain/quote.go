// Package domain contains the core domain types for the market context.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a single observed price for a symbol on a venue, normalized to USD.
// Quotes are ephemeral: each aggregation cycle overwrites the previous one.
type Quote struct {
	Venue      string
	Symbol     string
	PriceUSD   decimal.Decimal
	ObservedAt time.Time
}

// IsValid reports whether the quote carries a usable price.
func (q Quote) IsValid() bool {
	return q.PriceUSD.IsPositive()
}

// PriceMatrix is the venue×symbol quote table produced by one aggregation
// cycle. A zero price means the quote was unavailable that cycle. The matrix
// is built fresh every cycle and handed downstream as a read-only value,
// together with the exchange-rate snapshot the cycle's conversions used.
type PriceMatrix struct {
	venues  []string
	symbols []string
	quotes  map[string]map[string]Quote
	rates   map[string]decimal.Decimal
	builtAt time.Time
}

// NewPriceMatrix creates an empty matrix for the given venue and symbol sets.
// The venue order is preserved: downstream consumers that resolve ties use
// first-seen-wins over this order.
func NewPriceMatrix(venues, symbols []string) *PriceMatrix {
	quotes := make(map[string]map[string]Quote, len(venues))
	for _, v := range venues {
		row := make(map[string]Quote, len(symbols))
		for _, s := range symbols {
			row[s] = Quote{Venue: v, Symbol: s, PriceUSD: decimal.Zero}
		}
		quotes[v] = row
	}
	return &PriceMatrix{
		venues:  append([]string(nil), venues...),
		symbols: append([]string(nil), symbols...),
		quotes:  quotes,
		rates:   make(map[string]decimal.Decimal),
		builtAt: time.Now(),
	}
}

// Set records a quote for a (venue, symbol) cell. Non-positive prices are
// stored as zero, marking the cell unavailable.
func (m *PriceMatrix) Set(venue, symbol string, price decimal.Decimal) {
	row, ok := m.quotes[venue]
	if !ok {
		return
	}
	if !price.IsPositive() {
		price = decimal.Zero
	}
	row[symbol] = Quote{Venue: venue, Symbol: symbol, PriceUSD: price, ObservedAt: time.Now()}
}

// Price returns the USD price for a cell, or zero when unavailable.
func (m *PriceMatrix) Price(venue, symbol string) decimal.Decimal {
	q, _ := m.Quote(venue, symbol)
	return q.PriceUSD
}

// Quote returns the full quote for a cell. The second return is false when
// the cell is outside the matrix.
func (m *PriceMatrix) Quote(venue, symbol string) (Quote, bool) {
	if row, ok := m.quotes[venue]; ok {
		if q, ok := row[symbol]; ok {
			return q, true
		}
	}
	return Quote{}, false
}

// SetRate records the USD -> currency rate this cycle's conversions used.
func (m *PriceMatrix) SetRate(currency string, rate decimal.Decimal) {
	m.rates[currency] = rate
}

// RateFor returns the cycle's USD -> currency rate, or zero when the
// currency was not part of the cycle. Every consumer of fiat amounts in the
// same cycle must convert with this rate, never with a fresh lookup.
func (m *PriceMatrix) RateFor(currency string) decimal.Decimal {
	if rate, ok := m.rates[currency]; ok {
		return rate
	}
	return decimal.Zero
}

// Venues returns the venue names in their configured order.
func (m *PriceMatrix) Venues() []string {
	return m.venues
}

// Symbols returns the symbol set the matrix was built for.
func (m *PriceMatrix) Symbols() []string {
	return m.symbols
}

// BuiltAt returns when the matrix was created.
func (m *PriceMatrix) BuiltAt() time.Time {
	return m.builtAt
}

// QuoteCount returns the number of cells holding a valid quote.
func (m *PriceMatrix) QuoteCount() int {
	n := 0
	for _, row := range m.quotes {
		for _, q := range row {
			if q.IsValid() {
				n++
			}
		}
	}
	return n
}

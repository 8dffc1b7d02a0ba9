package app

import (
	"github.com/crossarb/crossarb/business/arbitrage/domain"
	marketDomain "github.com/crossarb/crossarb/business/market/domain"
)

// Detector finds, per symbol, the minimum-price and maximum-price venue in a
// price matrix. Detection is pure: it reads the matrix and emits candidates.
type Detector struct{}

// NewDetector creates a Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect scans the matrix symbol by symbol. Only venues reporting a strictly
// positive price participate; comparisons are strict, so the first venue seen
// at a given price wins ties. A symbol with fewer than two valid venues, an
// identical buy and sell venue, or a non-positive spread emits nothing.
func (d *Detector) Detect(matrix *marketDomain.PriceMatrix) []domain.Candidate {
	var candidates []domain.Candidate

	for _, symbol := range matrix.Symbols() {
		var c domain.Candidate
		valid := 0

		for _, venue := range matrix.Venues() {
			price := matrix.Price(venue, symbol)
			if !price.IsPositive() {
				continue
			}
			valid++

			if c.BuyVenue == "" || price.LessThan(c.BuyPrice) {
				c.BuyVenue = venue
				c.BuyPrice = price
			}
			if c.SellVenue == "" || price.GreaterThan(c.SellPrice) {
				c.SellVenue = venue
				c.SellPrice = price
			}
		}

		if valid < 2 || c.BuyVenue == c.SellVenue {
			continue
		}
		if !c.Spread().IsPositive() {
			continue
		}

		c.Symbol = symbol
		candidates = append(candidates, c)
	}

	return candidates
}

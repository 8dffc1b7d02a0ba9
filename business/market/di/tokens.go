// Package di contains dependency injection tokens for the market context.
package di

import (
	"github.com/crossarb/crossarb/business/market/app"
	"github.com/crossarb/crossarb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Aggregator    = di.NewToken[*app.Aggregator]("market.Aggregator")
	VenueAdapters = di.NewToken[[]app.VenueAdapter]("market.VenueAdapters")
	RateProvider  = di.NewToken[app.RateProvider]("market.RateProvider")
)

// Helper functions for type-safe access
func GetAggregator(c di.ServiceRegistry) *app.Aggregator {
	return di.GetToken(c, Aggregator)
}

func GetVenueAdapters(c di.ServiceRegistry) []app.VenueAdapter {
	return di.GetToken(c, VenueAdapters)
}

func GetRateProvider(c di.ServiceRegistry) app.RateProvider {
	return di.GetToken(c, RateProvider)
}

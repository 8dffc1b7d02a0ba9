package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/crossarb/crossarb/business/market/domain"
	"github.com/crossarb/crossarb/internal/logger"
)

const meterName = "crossarb/market"

// Aggregator polls every venue for the configured symbols and builds the
// venue×symbol USD price matrix for one cycle. A bad quote from one venue
// never aborts the cycle: the cell is recorded as zero and collection
// continues.
type Aggregator struct {
	venues      []VenueAdapter
	rates       RateProvider
	symbols     []string
	callTimeout time.Duration
	log         logger.LoggerInterface

	quotesFetched metric.Int64Counter
	quotesFailed  metric.Int64Counter
	cycleDuration metric.Float64Histogram
}

// NewAggregator creates an Aggregator over the given venue adapters.
func NewAggregator(
	venues []VenueAdapter,
	rates RateProvider,
	symbols []string,
	callTimeout time.Duration,
	log logger.LoggerInterface,
) *Aggregator {
	meter := otel.Meter(meterName)
	quotesFetched, _ := meter.Int64Counter("market_quotes_fetched_total",
		metric.WithDescription("Quotes fetched successfully, by venue"))
	quotesFailed, _ := meter.Int64Counter("market_quotes_failed_total",
		metric.WithDescription("Quote fetches that failed or returned a non-positive price, by venue"))
	cycleDuration, _ := meter.Float64Histogram("market_collect_duration_seconds",
		metric.WithDescription("Duration of one price collection cycle"))

	return &Aggregator{
		venues:        venues,
		rates:         rates,
		symbols:       symbols,
		callTimeout:   callTimeout,
		log:           log,
		quotesFetched: quotesFetched,
		quotesFailed:  quotesFailed,
		cycleDuration: cycleDuration,
	}
}

// Collect builds a fresh price matrix. Venues are polled concurrently; all
// results are gathered before the matrix is returned. Prices from fiat-settled
// venues are converted to USD using this cycle's exchange rate.
func (a *Aggregator) Collect(ctx context.Context) *domain.PriceMatrix {
	start := time.Now()

	names := make([]string, len(a.venues))
	for i, v := range a.venues {
		names[i] = v.Name()
	}
	matrix := domain.NewPriceMatrix(names, a.symbols)

	// One rate snapshot per cycle, shared by every conversion below and
	// carried on the matrix so downstream fiat conversions reuse it.
	cycleRates := a.snapshotRates(ctx)
	for cur, rate := range cycleRates {
		matrix.SetRate(cur, rate)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, venue := range a.venues {
		venue := venue
		g.Go(func() error {
			a.collectVenue(gctx, venue, cycleRates, matrix)
			return nil
		})
	}
	// Barrier: detection must not start on a partial matrix.
	_ = g.Wait()

	elapsed := time.Since(start)
	a.cycleDuration.Record(ctx, elapsed.Seconds())
	a.log.Debug(ctx, "price collection finished",
		"venues", len(a.venues),
		"symbols", len(a.symbols),
		"quotes", matrix.QuoteCount(),
		"elapsed", elapsed.String())

	return matrix
}

// snapshotRates resolves the USD conversion rate for every non-USD settlement
// currency in the active venue set. The RateProvider never fails.
func (a *Aggregator) snapshotRates(ctx context.Context) map[string]decimal.Decimal {
	rates := make(map[string]decimal.Decimal)
	for _, v := range a.venues {
		cur := v.BaseCurrency()
		if isUSDSettled(cur) {
			continue
		}
		if _, ok := rates[cur]; ok {
			continue
		}
		rates[cur] = a.rates.USDToLocal(ctx, cur)
	}
	return rates
}

func (a *Aggregator) collectVenue(
	ctx context.Context,
	venue VenueAdapter,
	cycleRates map[string]decimal.Decimal,
	matrix *domain.PriceMatrix,
) {
	name := venue.Name()
	attrs := metric.WithAttributes(attribute.String("venue", name))

	for _, symbol := range a.symbols {
		price, err := a.fetchOne(ctx, venue, symbol)
		if err != nil || !price.IsPositive() {
			if err != nil {
				a.log.Warn(ctx, "quote unavailable",
					"venue", name, "symbol", symbol, "error", err)
			} else {
				a.log.Warn(ctx, "quote non-positive, treating as unavailable",
					"venue", name, "symbol", symbol)
			}
			a.quotesFailed.Add(ctx, 1, attrs)
			matrix.Set(name, symbol, decimal.Zero)
			continue
		}

		if cur := venue.BaseCurrency(); !isUSDSettled(cur) {
			rate := cycleRates[cur]
			if !rate.IsPositive() {
				a.quotesFailed.Add(ctx, 1, attrs)
				matrix.Set(name, symbol, decimal.Zero)
				continue
			}
			price = price.Div(rate)
		}

		matrix.Set(name, symbol, price)
		a.quotesFetched.Add(ctx, 1, attrs)
	}
}

func (a *Aggregator) fetchOne(ctx context.Context, venue VenueAdapter, symbol string) (decimal.Decimal, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()
	return venue.FetchTicker(callCtx, venue.PairFor(symbol))
}

func isUSDSettled(currency string) bool {
	switch currency {
	case "USD", "USDT", "USDC":
		return true
	}
	return false
}

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/crossarb/crossarb/business/arbitrage/domain"
	marketApp "github.com/crossarb/crossarb/business/market/app"
	marketDomain "github.com/crossarb/crossarb/business/market/domain"
	"github.com/crossarb/crossarb/internal/apm"
	"github.com/crossarb/crossarb/internal/apperror"
	"github.com/crossarb/crossarb/internal/logger"
)

const meterName = "crossarb/arbitrage"

// OrchestratorConfig holds the loop timings.
type OrchestratorConfig struct {
	PollInterval   time.Duration
	FailureBackoff time.Duration
	CallTimeout    time.Duration
}

// Orchestrator drives the periodic arbitrage cycle:
// aggregate -> detect -> evaluate -> rotate -> execute.
// Cycles run strictly sequentially; a failure processing one opportunity
// never aborts the others, and a cycle-level failure only shortens the wait
// before the next cycle.
type Orchestrator struct {
	aggregator  *marketApp.Aggregator
	venues      *VenueSet
	detector    *Detector
	calculator  *ProfitCalculator
	feasibility *FeasibilityCalculator
	rotator     *BalanceRotator
	executor    *TransferExecutor
	reporter    Reporter
	config      OrchestratorConfig
	log         logger.LoggerInterface
	tracer      apm.Tracer

	cycles        metric.Int64Counter
	cycleFailures metric.Int64Counter
	cycleDuration metric.Float64Histogram
	oppsFound     metric.Int64Counter
	oppsExecuted  metric.Int64Counter
	oppsFailed    metric.Int64Counter
}

// NewOrchestrator wires the cycle components together.
func NewOrchestrator(
	aggregator *marketApp.Aggregator,
	venues *VenueSet,
	detector *Detector,
	calculator *ProfitCalculator,
	feasibility *FeasibilityCalculator,
	rotator *BalanceRotator,
	executor *TransferExecutor,
	reporter Reporter,
	config OrchestratorConfig,
	log logger.LoggerInterface,
) *Orchestrator {
	meter := otel.Meter(meterName)
	cycles, _ := meter.Int64Counter("arbitrage_cycles_total",
		metric.WithDescription("Completed arbitrage cycles"))
	cycleFailures, _ := meter.Int64Counter("arbitrage_cycle_failures_total",
		metric.WithDescription("Cycles that ended in a cycle-level failure"))
	cycleDuration, _ := meter.Float64Histogram("arbitrage_cycle_duration_seconds",
		metric.WithDescription("Duration of one full arbitrage cycle"))
	oppsFound, _ := meter.Int64Counter("arbitrage_opportunities_found_total",
		metric.WithDescription("Opportunities clearing both profit floors, by symbol"))
	oppsExecuted, _ := meter.Int64Counter("arbitrage_opportunities_executed_total",
		metric.WithDescription("Opportunities whose transfer was executed, by symbol"))
	oppsFailed, _ := meter.Int64Counter("arbitrage_opportunities_failed_total",
		metric.WithDescription("Opportunities that failed during rotation or execution, by symbol"))

	return &Orchestrator{
		aggregator:    aggregator,
		venues:        venues,
		detector:      detector,
		calculator:    calculator,
		feasibility:   feasibility,
		rotator:       rotator,
		executor:      executor,
		reporter:      reporter,
		config:        config,
		log:           log,
		tracer:        apm.NewTracer(meterName),
		cycles:        cycles,
		cycleFailures: cycleFailures,
		cycleDuration: cycleDuration,
		oppsFound:     oppsFound,
		oppsExecuted:  oppsExecuted,
		oppsFailed:    oppsFailed,
	}
}

// Run drives cycles until the context is canceled. The loop never terminates
// on a recoverable error: a cycle failure is logged and followed by the
// shorter failure backoff instead of the full poll interval.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.log.Info(ctx, "orchestrator starting",
		"poll_interval", o.config.PollInterval.String(),
		"failure_backoff", o.config.FailureBackoff.String())

	for {
		wait := o.config.PollInterval

		if err := o.runCycle(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			o.cycleFailures.Add(ctx, 1)
			o.log.Error(ctx, "cycle failed, backing off", "error", err)
			wait = o.config.FailureBackoff
		}

		select {
		case <-ctx.Done():
			o.log.Info(ctx, "orchestrator stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	o.log.Info(ctx, "orchestrator stopping", "reason", ctx.Err())
	return ctx.Err()
}

// runCycle executes one full aggregate-to-execute pass.
func (o *Orchestrator) runCycle(ctx context.Context) (err error) {
	ctx, span := o.tracer.StartSpanFromContext(ctx, "arbitrage.cycle")
	defer func() {
		// A cycle must never take the loop down.
		if r := recover(); r != nil {
			err = apperror.New(apperror.CodeCycleFailed,
				apperror.WithContext(fmt.Sprintf("panic: %v", r)))
		}
		if err != nil {
			span.NoticeError(err)
		}
		span.End()
	}()

	start := time.Now()

	matrix := o.aggregator.Collect(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	balances := o.collectBalances(ctx)
	candidates := o.detector.Detect(matrix)

	executed, failed := 0, 0
	for _, cand := range candidates {
		opp, ok := o.evaluate(cand, matrix, balances)
		if !ok {
			continue
		}
		o.oppsFound.Add(ctx, 1, metric.WithAttributes(attribute.String("symbol", opp.Symbol)))
		o.reporter.Report(ctx, opp)

		if !opp.Plan.Executable {
			continue
		}

		// Isolation: one opportunity's failure must not abort the rest.
		if o.process(ctx, opp) {
			executed++
		} else {
			failed++
			o.oppsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("symbol", opp.Symbol)))
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	elapsed := time.Since(start)
	o.cycles.Add(ctx, 1)
	o.cycleDuration.Record(ctx, elapsed.Seconds())
	span.SetAttributes(
		attribute.Int("candidates", len(candidates)),
		attribute.Int("executed", executed),
		attribute.Int("failed", failed))
	o.log.Info(ctx, "cycle finished",
		"candidates", len(candidates),
		"executed", executed,
		"failed", failed,
		"elapsed", elapsed.String())

	return nil
}

// evaluate runs the profit model and the feasibility calculation for one
// candidate. Only candidates clearing both profit floors become
// opportunities.
func (o *Orchestrator) evaluate(
	cand domain.Candidate,
	matrix *marketDomain.PriceMatrix,
	balances map[string]marketDomain.BalanceSheet,
) (*domain.Opportunity, bool) {
	fiatLeg := o.venues.IsFiatSettled(cand.BuyVenue) || o.venues.IsFiatSettled(cand.SellVenue)
	profit := o.calculator.Calculate(cand, fiatLeg)
	if !profit.Qualifies {
		return nil, false
	}

	plan := o.feasibility.Evaluate(cand, domain.BalanceSnapshot{
		BuySideUSD:     o.buySideUSD(cand.BuyVenue, matrix, balances),
		SellSideSymbol: balances[cand.SellVenue].Free(cand.Symbol),
	})

	return &domain.Opportunity{
		Symbol:     cand.Symbol,
		BuyVenue:   cand.BuyVenue,
		SellVenue:  cand.SellVenue,
		BuyPrice:   cand.BuyPrice,
		SellPrice:  cand.SellPrice,
		Spread:     cand.Spread(),
		Profit:     profit,
		Plan:       plan,
		DetectedAt: time.Now(),
	}, true
}

// process rotates balances and executes one executable opportunity.
func (o *Orchestrator) process(ctx context.Context, opp *domain.Opportunity) bool {
	rotation := o.rotator.Prepare(ctx, opp)
	if !rotation.Succeeded() {
		o.log.Warn(ctx, "rotation failed, opportunity skipped this cycle",
			"symbol", opp.Symbol,
			"sell_venue", opp.SellVenue,
			"state", string(rotation.State),
			"path", fmt.Sprintf("%v", rotation.Path),
			"reason", rotation.Reason)
		return false
	}

	if err := o.executor.Execute(ctx, opp); err != nil {
		return false
	}
	o.oppsExecuted.Add(ctx, 1, metric.WithAttributes(attribute.String("symbol", opp.Symbol)))
	return true
}

// collectBalances fetches every venue's balance sheet concurrently. A failed
// fetch degrades that venue to an empty sheet, which downstream reads as
// zero balances.
func (o *Orchestrator) collectBalances(ctx context.Context) map[string]marketDomain.BalanceSheet {
	names := o.venues.Names()
	sheets := make([]marketDomain.BalanceSheet, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		adapter, _ := o.venues.Get(name)
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, o.config.CallTimeout)
			defer cancel()

			sheet, err := adapter.FetchBalances(callCtx)
			if err != nil {
				o.log.Warn(ctx, "balance fetch failed, venue treated as empty this cycle",
					"venue", name, "error", err)
				return nil
			}
			sheets[i] = sheet
			return nil
		})
	}
	_ = g.Wait()

	balances := make(map[string]marketDomain.BalanceSheet, len(names))
	for i, name := range names {
		if sheets[i] == nil {
			sheets[i] = marketDomain.BalanceSheet{}
		}
		balances[name] = sheets[i]
	}
	return balances
}

// buySideUSD returns the buy venue's free settlement balance in USD. Fiat
// balances convert with the rate the matrix was built with, so every
// consumer in the cycle sees the same rate.
func (o *Orchestrator) buySideUSD(
	venue string,
	matrix *marketDomain.PriceMatrix,
	balances map[string]marketDomain.BalanceSheet,
) decimal.Decimal {
	adapter, ok := o.venues.Get(venue)
	if !ok {
		return decimal.Zero
	}

	currency := adapter.BaseCurrency()
	free := balances[venue].Free(currency)

	if !o.venues.IsFiatSettled(venue) {
		return free
	}

	rate := matrix.RateFor(currency)
	if !rate.IsPositive() {
		return decimal.Zero
	}
	return free.Div(rate)
}

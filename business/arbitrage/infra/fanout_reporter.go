package infra

import (
	"context"

	"github.com/crossarb/crossarb/business/arbitrage/app"
	"github.com/crossarb/crossarb/business/arbitrage/domain"
)

// FanoutReporter dispatches every report to all configured reporters.
type FanoutReporter struct {
	reporters []app.Reporter
}

// NewFanoutReporter creates a FanoutReporter.
func NewFanoutReporter(reporters ...app.Reporter) *FanoutReporter {
	return &FanoutReporter{reporters: reporters}
}

// Report implements app.Reporter.
func (f *FanoutReporter) Report(ctx context.Context, opp *domain.Opportunity) {
	for _, r := range f.reporters {
		r.Report(ctx, opp)
	}
}

// ReportTransfer implements app.Reporter.
func (f *FanoutReporter) ReportTransfer(ctx context.Context, rec domain.TransferRecord) {
	for _, r := range f.reporters {
		r.ReportTransfer(ctx, rec)
	}
}

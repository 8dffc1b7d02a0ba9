// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/crossarb/crossarb/business/arbitrage/domain"
)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a new ConsoleReporter writing to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{out: os.Stdout}
}

// NewConsoleReporterTo creates a ConsoleReporter writing to w.
func NewConsoleReporterTo(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: w}
}

const rule = "--------------------------------------------------------------------------------"

// Report prints an opportunity card to the console.
func (r *ConsoleReporter) Report(_ context.Context, opp *domain.Opportunity) {
	status := "EXECUTABLE"
	if !opp.Plan.Executable {
		status = fmt.Sprintf("MINIMUM BALANCE: %s %s",
			opp.Plan.MinBalanceRequired.StringFixed(6), opp.Symbol)
	}

	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintf(r.out, "ARBITRAGE OPPORTUNITY: %s\n", opp.Symbol)
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintf(r.out, "Detected:       %s\n", opp.DetectedAt.Format(time.RFC3339))
	fmt.Fprintf(r.out, "Buy on:         %-10s $%s\n", strings.ToUpper(opp.BuyVenue), opp.BuyPrice.StringFixed(6))
	fmt.Fprintf(r.out, "Sell on:        %-10s $%s\n", strings.ToUpper(opp.SellVenue), opp.SellPrice.StringFixed(6))
	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "Spread:         $%s\n", opp.Spread.StringFixed(6))
	fmt.Fprintf(r.out, "Fees:           $%s\n", opp.Profit.TotalFee.StringFixed(6))
	fmt.Fprintf(r.out, "Net profit:     $%s (%s%%)\n",
		opp.Profit.NetProfit.StringFixed(6), opp.Profit.NetProfitPercent.StringFixed(2))
	fmt.Fprintf(r.out, "Volume:         %s %s\n", opp.Plan.RequiredAmount.StringFixed(6), opp.Symbol)
	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "Status:         %s\n", status)
	fmt.Fprintln(r.out, "================================================================================")
}

// ReportTransfer prints a transfer outcome line.
func (r *ConsoleReporter) ReportTransfer(_ context.Context, rec domain.TransferRecord) {
	fmt.Fprintf(r.out, "[%s] transfer %s: %s %s %s -> %s\n",
		rec.ExecutedAt.Format("15:04:05"),
		rec.Status,
		rec.Amount.StringFixed(6),
		rec.Symbol,
		rec.FromVenue,
		rec.ToVenue)
}

// Package infra contains infrastructure adapters for the swap context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vaultic/shroff/business/swap/app"
)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a new ConsoleReporter.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{
		out: os.Stdout,
	}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "Shroff Quote Watcher Started")
	fmt.Fprintln(r.out, "============================")
	return nil
}

// ReportBest outputs the winning venue for one watched pair.
func (r *ConsoleReporter) ReportBest(finding *app.BestFinding) {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintf(r.out, "Time:           %s\n", finding.ObservedAt.Format(time.RFC3339))
	fmt.Fprintf(r.out, "Pair:           %s\n", finding.Pair)
	fmt.Fprintf(r.out, "Best Venue:     %s\n", finding.Venue)
	fmt.Fprintf(r.out, "You Pay:        %s\n", finding.SourceAmount)
	fmt.Fprintf(r.out, "You Receive:    %s\n", finding.TargetAmount)
	fmt.Fprintf(r.out, "Rate:           %s\n", finding.Rate)
	if finding.Impact != nil {
		fmt.Fprintf(r.out, "Price Impact:   %s%% (%s)\n",
			finding.Impact.Percent.StringFixed(2), finding.Impact.Level)
	}
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
}

// ReportUnavailable notes a pair with no serving venue.
func (r *ConsoleReporter) ReportUnavailable(pair string, reason error) {
	fmt.Fprintf(r.out, "[%s] %s: no venue available (%v)\n",
		time.Now().Format("15:04:05"), pair, reason)
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Shroff Quote Watcher Stopped")
	return nil
}

// Package app contains application services and port definitions for the swap context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vaultic/shroff/business/swap/domain"
	"github.com/vaultic/shroff/internal/agent"
)

// TaggedQuote pairs a quote with the generation it was stored under. The
// tag must be handed back to Swap; a newer quote invalidates older tags.
type TaggedQuote struct {
	Quote      *domain.Quote
	Generation domain.Generation
}

// Shroff is one venue-bound swap session for a (pair, principal) tuple.
//
// GetQuote may be called repeatedly; each call replaces the stored quote
// and bumps the generation. Swap executes the stored quote end to end and
// is not retried on failure: funds may be left mid-venue and the returned
// error's message says how to recover.
type Shroff interface {
	// Venue identifies the adapter.
	Venue() domain.Venue

	// Targets lists every canister this session will touch, for the host
	// to pre-authorize signing scope.
	Targets() []agent.Principal

	// GetQuote prices a swap of amount raw source units.
	GetQuote(ctx context.Context, amount decimal.Decimal) (*TaggedQuote, error)

	// Swap executes the quote stored under gen.
	Swap(ctx context.Context, gen domain.Generation) error
}

// ShroffBuilder configures and constructs a venue session. Build performs
// read-only venue queries and never mutates chain state.
type ShroffBuilder interface {
	WithSource(ledger agent.Principal) ShroffBuilder
	WithTarget(ledger agent.Principal) ShroffBuilder
	Build(ctx context.Context, user agent.Principal) (Shroff, error)
}

// BuilderFactory creates fresh builders for one venue.
type BuilderFactory interface {
	Venue() domain.Venue
	NewBuilder() ShroffBuilder
}

// Reporter receives best-venue findings from the watcher loop.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// ReportBest publishes the winning quote for one watched pair.
	ReportBest(finding *BestFinding)

	// ReportUnavailable notes that a watched pair currently has no venue.
	ReportUnavailable(pair string, reason error)

	// Stop gracefully shuts down the reporter.
	Stop() error
}

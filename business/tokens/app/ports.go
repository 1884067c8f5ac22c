// Package app contains application services and port definitions for the tokens context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vaultic/shroff/business/tokens/domain"
	"github.com/vaultic/shroff/internal/agent"
)

// Registry resolves ledger principals to token descriptors.
type Registry interface {
	// Lookup returns the token behind a ledger canister.
	Lookup(ctx context.Context, ledger agent.Principal) (domain.Token, error)
}

// PriceOracle supplies USD prices for tokens. A token without a listed
// price returns ok=false, not an error; callers degrade gracefully.
type PriceOracle interface {
	USDPrice(ctx context.Context, ledger agent.Principal) (price decimal.Decimal, ok bool, err error)
}

// Package rates implements the PriceOracle against an on-chain rates
// canister that indexes USD prices for ICRC tokens.
package rates

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vaultic/shroff/business/tokens/app"
	"github.com/vaultic/shroff/internal/agent"
	"github.com/vaultic/shroff/internal/logger"
)

const (
	tracerName = "rates"

	// tableTTL bounds staleness of the cached price table. Prices drive
	// the price impact indicator, not settlement, so a minute is fine.
	tableTTL = time.Minute
)

// Ensure Oracle implements the app port.
var _ app.PriceOracle = (*Oracle)(nil)

// tokenRate is one row of the rates canister reply.
type tokenRate struct {
	LedgerID string `json:"ledger_id"`
	Symbol   string `json:"symbol"`
	PriceUSD string `json:"price_usd"`
}

// Oracle fetches the full price table from the rates canister and serves
// lookups from a TTL cache.
type Oracle struct {
	agent    agent.Agent
	canister agent.Principal
	logger   logger.LoggerInterface
	tracer   trace.Tracer

	mu        sync.Mutex
	table     map[string]decimal.Decimal
	fetchedAt time.Time
}

// NewOracle creates a rates-canister-backed price oracle.
func NewOracle(a agent.Agent, canister agent.Principal, log logger.LoggerInterface) *Oracle {
	return &Oracle{
		agent:    a,
		canister: canister,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
		table:    make(map[string]decimal.Decimal),
	}
}

// USDPrice returns the USD price of a token. Tokens absent from the table
// return ok=false.
func (o *Oracle) USDPrice(ctx context.Context, ledger agent.Principal) (decimal.Decimal, bool, error) {
	ctx, span := o.tracer.Start(ctx, "rates.usd_price")
	defer span.End()

	o.mu.Lock()
	defer o.mu.Unlock()

	if time.Since(o.fetchedAt) >= tableTTL {
		if err := o.refreshLocked(ctx); err != nil {
			// A stale table still beats no answer.
			if len(o.table) == 0 {
				return decimal.Zero, false, err
			}
			o.logger.Warn(ctx, "rates refresh failed, serving stale table", "error", err)
		}
	}

	price, ok := o.table[ledger.Text()]
	return price, ok, nil
}

func (o *Oracle) refreshLocked(ctx context.Context) error {
	var rows []tokenRate
	if err := o.agent.Query(ctx, o.canister, "get_all_tokens", nil, &rows); err != nil {
		return fmt.Errorf("rates: fetch price table: %w", err)
	}

	table := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		price, err := decimal.NewFromString(row.PriceUSD)
		if err != nil {
			o.logger.Debug(ctx, "skipping unparsable price",
				"ledger", row.LedgerID, "symbol", row.Symbol, "price", row.PriceUSD)
			continue
		}
		table[row.LedgerID] = price
	}

	o.table = table
	o.fetchedAt = time.Now()
	o.logger.Debug(ctx, "price table refreshed", "tokens", len(table))
	return nil
}

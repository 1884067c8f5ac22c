// Package icrcregistry implements the token Registry against ICRC ledger
// metadata queries.
package icrcregistry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/vaultic/shroff/business/tokens/app"
	"github.com/vaultic/shroff/business/tokens/domain"
	"github.com/vaultic/shroff/internal/agent"
	"github.com/vaultic/shroff/internal/logger"
)

const (
	tracerName = "icrcregistry"
	meterName  = "icrcregistry"

	// metadataTTL bounds how long ledger metadata is served from cache.
	// Symbols and decimals never change in practice; fees occasionally do.
	metadataTTL = 15 * time.Minute
)

// Ensure Registry implements the app port.
var _ app.Registry = (*Registry)(nil)

type cacheEntry struct {
	token     domain.Token
	fetchedAt time.Time
}

// Registry resolves tokens by querying the ledger canisters themselves,
// with an in-memory TTL cache seeded from the well-known set.
type Registry struct {
	agent  agent.Agent
	logger logger.LoggerInterface
	tracer trace.Tracer

	mu    sync.RWMutex
	cache map[string]cacheEntry

	lookupsTotal metric.Int64Counter
	cacheMisses  metric.Int64Counter
}

// NewRegistry creates a ledger-backed token registry.
func NewRegistry(a agent.Agent, log logger.LoggerInterface) (*Registry, error) {
	r := &Registry{
		agent:  a,
		logger: log,
		tracer: otel.Tracer(tracerName),
		cache:  make(map[string]cacheEntry),
	}

	for _, token := range domain.WellKnown() {
		r.cache[token.Ledger.Text()] = cacheEntry{token: token, fetchedAt: time.Now()}
	}

	if err := r.initMetrics(); err != nil {
		return nil, err
	}
	return r, nil
}

// initMetrics initializes OTEL metric instruments.
func (r *Registry) initMetrics() error {
	meter := otel.Meter(meterName)

	var err error
	r.lookupsTotal, err = meter.Int64Counter("token_registry_lookups_total",
		metric.WithDescription("Total token registry lookups"))
	if err != nil {
		return err
	}
	r.cacheMisses, err = meter.Int64Counter("token_registry_cache_misses_total",
		metric.WithDescription("Registry lookups that hit the ledger"))
	if err != nil {
		return err
	}
	return nil
}

// Lookup returns the token behind a ledger, serving from cache when fresh.
func (r *Registry) Lookup(ctx context.Context, ledger agent.Principal) (domain.Token, error) {
	ctx, span := r.tracer.Start(ctx, "registry.lookup",
		trace.WithAttributes(attribute.String("ic.ledger", ledger.Text())))
	defer span.End()

	r.lookupsTotal.Add(ctx, 1)

	key := ledger.Text()
	r.mu.RLock()
	entry, hit := r.cache[key]
	r.mu.RUnlock()
	if hit && time.Since(entry.fetchedAt) < metadataTTL {
		return entry.token, nil
	}

	r.cacheMisses.Add(ctx, 1)

	token, err := r.fetch(ctx, ledger)
	if err != nil {
		// Serve stale metadata over failing the lookup.
		if hit {
			r.logger.Warn(ctx, "metadata refresh failed, serving cached token",
				"ledger", key, "error", err)
			return entry.token, nil
		}
		return domain.Token{}, err
	}

	r.mu.Lock()
	r.cache[key] = cacheEntry{token: token, fetchedAt: time.Now()}
	r.mu.Unlock()

	return token, nil
}

func (r *Registry) fetch(ctx context.Context, ledger agent.Principal) (domain.Token, error) {
	token := domain.Token{Ledger: ledger}

	if err := r.agent.Query(ctx, ledger, "icrc1_symbol", nil, &token.Symbol); err != nil {
		return domain.Token{}, fmt.Errorf("icrcregistry: symbol of %s: %w", ledger.Text(), err)
	}
	if err := r.agent.Query(ctx, ledger, "icrc1_name", nil, &token.Name); err != nil {
		return domain.Token{}, fmt.Errorf("icrcregistry: name of %s: %w", ledger.Text(), err)
	}
	if err := r.agent.Query(ctx, ledger, "icrc1_decimals", nil, &token.Decimals); err != nil {
		return domain.Token{}, fmt.Errorf("icrcregistry: decimals of %s: %w", ledger.Text(), err)
	}
	if err := r.agent.Query(ctx, ledger, "icrc1_fee", nil, &token.Fee); err != nil {
		return domain.Token{}, fmt.Errorf("icrcregistry: fee of %s: %w", ledger.Text(), err)
	}

	r.logger.Debug(ctx, "ledger metadata fetched",
		"ledger", ledger.Text(), "symbol", token.Symbol,
		"decimals", token.Decimals, "fee", token.Fee)
	return token, nil
}

package icpswap

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"

	"github.com/vaultic/shroff/business/swap/app"
	"github.com/vaultic/shroff/business/swap/domain"
	tokensApp "github.com/vaultic/shroff/business/tokens/app"
	"github.com/vaultic/shroff/internal/agent"
	"github.com/vaultic/shroff/internal/apperror"
	"github.com/vaultic/shroff/internal/icrc"
	"github.com/vaultic/shroff/internal/logger"
)

// Ensure Builder implements the app port.
var _ app.ShroffBuilder = (*Builder)(nil)

// Factory creates builders for the pool venue.
type Factory struct {
	client       *Client
	icAgent      agent.Agent
	tokenService *tokensApp.TokenService
	rates        agent.Principal
	slippage     decimal.Decimal
	logger       logger.LoggerInterface
}

// NewFactory creates the venue factory.
func NewFactory(
	client *Client,
	icAgent agent.Agent,
	tokenService *tokensApp.TokenService,
	rates agent.Principal,
	slippage decimal.Decimal,
	log logger.LoggerInterface,
) *Factory {
	return &Factory{
		client:       client,
		icAgent:      icAgent,
		tokenService: tokenService,
		rates:        rates,
		slippage:     slippage,
		logger:       log,
	}
}

// Venue identifies the factory's venue.
func (f *Factory) Venue() domain.Venue {
	return domain.VenueICPSwap
}

// NewBuilder returns a fresh builder.
func (f *Factory) NewBuilder() app.ShroffBuilder {
	return &Builder{factory: f}
}

// Builder configures and constructs a pool-venue session. Build only
// performs read queries.
type Builder struct {
	factory *Factory
	source  agent.Principal
	target  agent.Principal
}

// WithSource sets the source ledger.
func (b *Builder) WithSource(ledger agent.Principal) app.ShroffBuilder {
	b.source = ledger
	return b
}

// WithTarget sets the target ledger.
func (b *Builder) WithTarget(ledger agent.Principal) app.ShroffBuilder {
	b.target = ledger
	return b
}

// Build resolves token metadata and the pool, returning a ready session.
// Missing liquidity passes through; any other failure means the venue is
// unavailable.
func (b *Builder) Build(ctx context.Context, user agent.Principal) (app.Shroff, error) {
	f := b.factory

	pair, err := f.tokenService.ResolvePair(ctx, b.source, b.target)
	if err != nil {
		return nil, apperror.ServiceUnavailable(string(domain.VenueICPSwap), err)
	}

	pool, err := f.client.GetPool(ctx, pair.Source, pair.Target)
	if err != nil {
		if apperror.HasCode(err, apperror.CodeLiquidityUnavailable) {
			return nil, err
		}
		return nil, apperror.ServiceUnavailable(string(domain.VenueICPSwap), err)
	}

	return &Shroff{
		client:       f.client,
		sourceLedger: icrc.NewLedger(f.icAgent, pair.Source.Ledger, f.logger),
		tokenService: f.tokenService,
		pair:         pair,
		pool:         pool,
		zeroForOne:   pool.ZeroForOne(pair.Source.Ledger),
		user:         user,
		rates:        f.rates,
		slippage:     f.slippage,
		logger:       f.logger,
		tracer:       otel.Tracer(tracerName),
		state:        domain.StateIdle,
	}, nil
}

package kongswap

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

// Factory creates builders for the ledger-routed venue.
type Factory struct {
	client       *Client
	icAgent      agent.Agent
	tokenService *tokensApp.TokenService
	rates        agent.Principal
	slippage     decimal.Decimal
	widgetRate   decimal.Decimal
	logger       logger.LoggerInterface
}

// NewFactory creates the venue factory.
func NewFactory(
	client *Client,
	icAgent agent.Agent,
	tokenService *tokensApp.TokenService,
	rates agent.Principal,
	slippage decimal.Decimal,
	widgetRate decimal.Decimal,
	log logger.LoggerInterface,
) *Factory {
	return &Factory{
		client:       client,
		icAgent:      icAgent,
		tokenService: tokenService,
		rates:        rates,
		slippage:     slippage,
		widgetRate:   widgetRate,
		logger:       log,
	}
}

// Venue identifies the factory's venue.
func (f *Factory) Venue() domain.Venue {
	return domain.VenueKongSwap
}

// NewBuilder returns a fresh builder.
func (f *Factory) NewBuilder() app.ShroffBuilder {
	return &Builder{factory: f}
}

// Builder configures and constructs a session. Build only performs read
// queries.
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

// Build resolves token metadata and probes the pools listing in both
// token orders; a pair listed in neither order has no liquidity here.
func (b *Builder) Build(ctx context.Context, user agent.Principal) (app.Shroff, error) {
	f := b.factory

	pair, err := f.tokenService.ResolvePair(ctx, b.source, b.target)
	if err != nil {
		return nil, apperror.ServiceUnavailable(string(domain.VenueKongSwap), err)
	}

	exists, err := f.client.PoolExists(ctx, pair.Source, pair.Target)
	if err != nil {
		return nil, apperror.ServiceUnavailable(string(domain.VenueKongSwap), err)
	}
	if !exists {
		return nil, apperror.Liquidity(string(domain.VenueKongSwap))
	}

	return &Shroff{
		client:       f.client,
		sourceLedger: icrc.NewLedger(f.icAgent, pair.Source.Ledger, f.logger),
		tokenService: f.tokenService,
		pair:         pair,
		user:         user,
		rates:        f.rates,
		slippage:     f.slippage,
		widgetRate:   f.widgetRate,
		logger:       f.logger,
		tracer:       otel.Tracer(tracerName),
		state:        domain.StateIdle,
	}, nil
}

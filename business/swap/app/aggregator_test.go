package app

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vaultic/shroff/business/swap/domain"
	tokens "github.com/vaultic/shroff/business/tokens/domain"
	"github.com/vaultic/shroff/internal/agent"
	"github.com/vaultic/shroff/internal/apperror"
	"github.com/vaultic/shroff/internal/logger"
)

var (
	testSource = agent.MustPrincipal("ryjl3-tyaaa-aaaaa-aaaba-cai")
	testTarget = agent.MustPrincipal("mxzaz-hqaaa-aaaar-qaada-cai")
	testUser   = agent.AnonymousPrincipal
)

func testQuote(t *testing.T, venue domain.Venue, rawQuote int64) *domain.Quote {
	t.Helper()

	source := tokens.Token{Ledger: tokens.ICP.Ledger, Symbol: "ICP", Decimals: 8, Fee: 10_000}
	target := tokens.Token{Ledger: tokens.CKBTC.Ledger, Symbol: "ckBTC", Decimals: 8, Fee: 10}
	pair, err := tokens.NewPair(source, target)
	require.NoError(t, err)

	model := domain.ICPSwapFeeModel()
	if venue == domain.VenueKongSwap {
		model = domain.KongSwapFeeModel(decimal.RequireFromString("0.00875"))
	}
	calc, err := domain.NewCalculator(model, source, decimal.NewFromInt(100_000_000))
	require.NoError(t, err)

	quote, err := domain.NewQuote(calc, decimal.NewFromInt(rawQuote), pair,
		decimal.NewFromInt(2), domain.USDPrices{}, domain.VenueQuoteSpec{})
	require.NoError(t, err)
	return quote
}

type fakeShroff struct {
	venue    domain.Venue
	quote    *domain.Quote
	quoteErr error

	mu      sync.Mutex
	gen     domain.Generation
	swapped []domain.Generation
}

func (f *fakeShroff) Venue() domain.Venue        { return f.venue }
func (f *fakeShroff) Targets() []agent.Principal { return nil }

func (f *fakeShroff) GetQuote(_ context.Context, _ decimal.Decimal) (*TaggedQuote, error) {
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	return &TaggedQuote{Quote: f.quote, Generation: f.gen}, nil
}

func (f *fakeShroff) Swap(_ context.Context, gen domain.Generation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.swapped = append(f.swapped, gen)
	if gen != f.gen {
		return apperror.New(apperror.CodeStaleQuote)
	}
	return nil
}

type fakeBuilder struct {
	shroff Shroff
	err    error
}

func (b *fakeBuilder) WithSource(agent.Principal) ShroffBuilder { return b }
func (b *fakeBuilder) WithTarget(agent.Principal) ShroffBuilder { return b }

func (b *fakeBuilder) Build(context.Context, agent.Principal) (Shroff, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.shroff, nil
}

type fakeFactory struct {
	venue   domain.Venue
	builder *fakeBuilder
}

func (f *fakeFactory) Venue() domain.Venue       { return f.venue }
func (f *fakeFactory) NewBuilder() ShroffBuilder { return f.builder }

func okFactory(venue domain.Venue, shroff *fakeShroff) BuilderFactory {
	return &fakeFactory{venue: venue, builder: &fakeBuilder{shroff: shroff}}
}

func errFactory(venue domain.Venue, err error) BuilderFactory {
	return &fakeFactory{venue: venue, builder: &fakeBuilder{err: err}}
}

func TestGetSwapProviders(t *testing.T) {
	ctx := context.Background()
	liquidityErr := apperror.New(apperror.CodeLiquidityUnavailable)
	venueDown := apperror.New(apperror.CodeServiceUnavailable)

	tests := []struct {
		name      string
		factories []BuilderFactory
		wantLen   int
		wantCode  apperror.Code
	}{
		{
			name: "one_venue_without_liquidity_is_skipped",
			factories: []BuilderFactory{
				errFactory(domain.VenueICPSwap, liquidityErr),
				okFactory(domain.VenueKongSwap, &fakeShroff{venue: domain.VenueKongSwap}),
			},
			wantLen: 1,
		},
		{
			name:     "no_registered_venues",
			wantCode: apperror.CodeServiceUnavailable,
		},
		{
			name: "all_venues_failed",
			factories: []BuilderFactory{
				errFactory(domain.VenueICPSwap, venueDown),
				errFactory(domain.VenueKongSwap, venueDown),
			},
			wantCode: apperror.CodeServiceUnavailable,
		},
		{
			name: "no_venue_has_liquidity",
			factories: []BuilderFactory{
				errFactory(domain.VenueICPSwap, liquidityErr),
				errFactory(domain.VenueKongSwap, liquidityErr),
			},
			wantCode: apperror.CodeLiquidityUnavailable,
		},
		{
			name: "mixed_failure_and_missing_liquidity",
			factories: []BuilderFactory{
				errFactory(domain.VenueICPSwap, venueDown),
				errFactory(domain.VenueKongSwap, liquidityErr),
			},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSwapService(tt.factories, logger.NewNop())
			providers, err := service.GetSwapProviders(ctx, testSource, testTarget, testUser)
			if tt.wantCode != "" {
				require.Error(t, err)
				require.True(t, apperror.HasCode(err, tt.wantCode),
					"err = %v, want code %s", err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			require.Len(t, providers, tt.wantLen)
		})
	}
}

func TestBestQuote_PicksLargestReturn(t *testing.T) {
	ctx := context.Background()
	icpswap := &fakeShroff{
		venue: domain.VenueICPSwap,
		quote: testQuote(t, domain.VenueICPSwap, 100_000_000),
	}
	kongswap := &fakeShroff{
		venue: domain.VenueKongSwap,
		quote: testQuote(t, domain.VenueKongSwap, 105_000_000),
	}

	service := NewSwapService([]BuilderFactory{
		okFactory(domain.VenueICPSwap, icpswap),
		okFactory(domain.VenueKongSwap, kongswap),
	}, logger.NewNop())

	providers := map[domain.Venue]Shroff{
		domain.VenueICPSwap:  icpswap,
		domain.VenueKongSwap: kongswap,
	}

	best, tagged, err := service.BestQuote(ctx, providers, decimal.NewFromInt(100_000_000))
	require.NoError(t, err)
	require.Equal(t, domain.VenueKongSwap, best.Venue())
	require.Equal(t, "1.0499999", tagged.Quote.TargetAmountPrettified().String())
}

func TestBestQuote_TieGoesToFirstRegistered(t *testing.T) {
	ctx := context.Background()
	icpswap := &fakeShroff{
		venue: domain.VenueICPSwap,
		quote: testQuote(t, domain.VenueICPSwap, 100_000_000),
	}
	kongswap := &fakeShroff{
		venue: domain.VenueKongSwap,
		quote: testQuote(t, domain.VenueKongSwap, 100_000_000),
	}

	service := NewSwapService([]BuilderFactory{
		okFactory(domain.VenueICPSwap, icpswap),
		okFactory(domain.VenueKongSwap, kongswap),
	}, logger.NewNop())

	providers := map[domain.Venue]Shroff{
		domain.VenueICPSwap:  icpswap,
		domain.VenueKongSwap: kongswap,
	}

	best, _, err := service.BestQuote(ctx, providers, decimal.NewFromInt(100_000_000))
	require.NoError(t, err)
	require.Equal(t, domain.VenueICPSwap, best.Venue())
}

func TestBestQuote_OneFailureAbortsSelection(t *testing.T) {
	ctx := context.Background()
	icpswap := &fakeShroff{
		venue: domain.VenueICPSwap,
		quote: testQuote(t, domain.VenueICPSwap, 100_000_000),
	}
	kongswap := &fakeShroff{
		venue:    domain.VenueKongSwap,
		quoteErr: apperror.New(apperror.CodeServiceUnavailable),
	}

	service := NewSwapService([]BuilderFactory{
		okFactory(domain.VenueICPSwap, icpswap),
		okFactory(domain.VenueKongSwap, kongswap),
	}, logger.NewNop())

	providers := map[domain.Venue]Shroff{
		domain.VenueICPSwap:  icpswap,
		domain.VenueKongSwap: kongswap,
	}

	_, _, err := service.BestQuote(ctx, providers, decimal.NewFromInt(100_000_000))
	require.Error(t, err)
	require.True(t, apperror.HasCode(err, apperror.CodeLiquidityUnavailable))
}

func TestBestQuote_NoProviders(t *testing.T) {
	service := NewSwapService(nil, logger.NewNop())
	_, _, err := service.BestQuote(context.Background(), nil, decimal.NewFromInt(1))
	require.Error(t, err)
	require.True(t, apperror.HasCode(err, apperror.CodeLiquidityUnavailable))
}

package app

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vaultic/shroff/business/swap/domain"
	"github.com/vaultic/shroff/internal/agent"
	"github.com/vaultic/shroff/internal/apperror"
	"github.com/vaultic/shroff/internal/logger"
)

// SwapService aggregates venue adapters: it discovers which venues can
// serve a pair and picks the venue quoting the best return.
type SwapService struct {
	factories []BuilderFactory
	log       logger.LoggerInterface
}

// NewSwapService creates the aggregator over the given venue factories.
// Factory order fixes tie-breaking order in BestQuote.
func NewSwapService(factories []BuilderFactory, log logger.LoggerInterface) *SwapService {
	return &SwapService{factories: factories, log: log}
}

// Venues lists the registered venues in selection order.
func (s *SwapService) Venues() []domain.Venue {
	venues := make([]domain.Venue, 0, len(s.factories))
	for _, f := range s.factories {
		venues = append(venues, f.Venue())
	}
	return venues
}

// GetSwapProviders builds a session per venue for the pair. A venue absent
// from the returned map has no liquidity for the pair.
//
// The call succeeds when at least one venue built or cleanly reported
// missing liquidity. It fails with SERVICE_UNAVAILABLE when every venue
// failed for another reason, and with LIQUIDITY_UNAVAILABLE when every
// venue reported no liquidity.
func (s *SwapService) GetSwapProviders(
	ctx context.Context,
	source, target agent.Principal,
	user agent.Principal,
) (map[domain.Venue]Shroff, error) {
	providers := make(map[domain.Venue]Shroff, len(s.factories))

	var liquidityMissing, failed int
	var lastErr error

	for _, factory := range s.factories {
		venue := factory.Venue()
		shroff, err := factory.NewBuilder().
			WithSource(source).
			WithTarget(target).
			Build(ctx, user)
		if err != nil {
			if apperror.HasCode(err, apperror.CodeLiquidityUnavailable) {
				s.log.Debug(ctx, "venue has no liquidity for pair",
					"venue", venue, "source", source.Text(), "target", target.Text())
				liquidityMissing++
				continue
			}
			s.log.Warn(ctx, "venue builder failed",
				"venue", venue, "source", source.Text(), "target", target.Text(), "error", err)
			failed++
			lastErr = err
			continue
		}
		providers[venue] = shroff
	}

	if len(providers) == 0 {
		switch {
		case liquidityMissing == 0 && failed == 0:
			return nil, apperror.New(apperror.CodeServiceUnavailable,
				apperror.WithContext("no venues registered"))
		case liquidityMissing == 0:
			return nil, apperror.New(apperror.CodeServiceUnavailable, apperror.WithCause(lastErr))
		case failed == 0:
			return nil, apperror.New(apperror.CodeLiquidityUnavailable)
		}
		// Mixed outcome: at least one venue answered "no liquidity", which
		// is informative, so the empty map stands.
	}

	return providers, nil
}

type quoteResult struct {
	order  int
	shroff Shroff
	tagged *TaggedQuote
	err    error
}

// BestQuote quotes every available venue concurrently and returns the
// session and quote with the largest received amount. Ties go to the
// earliest-registered venue.
//
// Selection is all or nothing: one venue failing to quote aborts the
// whole call, surfaced as LIQUIDITY_UNAVAILABLE.
func (s *SwapService) BestQuote(
	ctx context.Context,
	providers map[domain.Venue]Shroff,
	amount decimal.Decimal,
) (Shroff, *TaggedQuote, error) {
	if len(providers) == 0 {
		return nil, nil, apperror.New(apperror.CodeLiquidityUnavailable)
	}

	results := make(chan quoteResult, len(providers))
	var wg sync.WaitGroup

	order := 0
	for _, factory := range s.factories {
		shroff, ok := providers[factory.Venue()]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(order int, shroff Shroff) {
			defer wg.Done()
			tagged, err := shroff.GetQuote(ctx, amount)
			results <- quoteResult{order: order, shroff: shroff, tagged: tagged, err: err}
		}(order, shroff)
		order++
	}

	wg.Wait()
	close(results)

	var best *quoteResult
	for result := range results {
		result := result
		if result.err != nil {
			s.log.Warn(ctx, "venue quote failed, aborting selection",
				"venue", result.shroff.Venue(), "error", result.err)
			return nil, nil, apperror.New(apperror.CodeLiquidityUnavailable,
				apperror.WithVenue(string(result.shroff.Venue())),
				apperror.WithCause(result.err))
		}
		if best == nil {
			best = &result
			continue
		}
		current := result.tagged.Quote.TargetAmountPrettified()
		leader := best.tagged.Quote.TargetAmountPrettified()
		if current.Cmp(leader) > 0 || (current.Cmp(leader) == 0 && result.order < best.order) {
			best = &result
		}
	}

	s.log.Info(ctx, "best venue selected",
		"venue", best.shroff.Venue(),
		"target_amount", best.tagged.Quote.TargetAmountPrettified().String())
	return best.shroff, best.tagged, nil
}

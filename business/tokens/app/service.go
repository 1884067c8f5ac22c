package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vaultic/shroff/business/tokens/domain"
	"github.com/vaultic/shroff/internal/agent"
	"github.com/vaultic/shroff/internal/apperror"
	"github.com/vaultic/shroff/internal/logger"
)

// TokenService resolves swap pairs and their USD prices.
type TokenService struct {
	registry Registry
	oracle   PriceOracle
	log      logger.LoggerInterface
}

// NewTokenService creates a TokenService with the given ports.
func NewTokenService(registry Registry, oracle PriceOracle, log logger.LoggerInterface) *TokenService {
	return &TokenService{registry: registry, oracle: oracle, log: log}
}

// Resolve returns the token behind a ledger principal.
func (s *TokenService) Resolve(ctx context.Context, ledger agent.Principal) (domain.Token, error) {
	token, err := s.registry.Lookup(ctx, ledger)
	if err != nil {
		return domain.Token{}, apperror.New(apperror.CodeTokenNotFound,
			apperror.WithContext(ledger.Text()), apperror.WithCause(err))
	}
	return token, nil
}

// ResolvePair resolves both legs of a swap pair.
func (s *TokenService) ResolvePair(ctx context.Context, source, target agent.Principal) (domain.Pair, error) {
	src, err := s.Resolve(ctx, source)
	if err != nil {
		return domain.Pair{}, err
	}
	tgt, err := s.Resolve(ctx, target)
	if err != nil {
		return domain.Pair{}, err
	}
	return domain.NewPair(src, tgt)
}

// USDPricePair holds the USD prices of both legs. A leg without a listed
// price has its Known flag cleared.
type USDPricePair struct {
	Source      decimal.Decimal
	Target      decimal.Decimal
	SourceKnown bool
	TargetKnown bool
}

// USDPrices fetches USD prices for both legs. Oracle failures degrade to
// unknown prices rather than failing the quote.
func (s *TokenService) USDPrices(ctx context.Context, pair domain.Pair) USDPricePair {
	var prices USDPricePair

	price, ok, err := s.oracle.USDPrice(ctx, pair.Source.Ledger)
	if err != nil {
		s.log.Warn(ctx, "source price lookup failed", "token", pair.Source.Symbol, "error", err)
	} else if ok {
		prices.Source, prices.SourceKnown = price, true
	}

	price, ok, err = s.oracle.USDPrice(ctx, pair.Target.Ledger)
	if err != nil {
		s.log.Warn(ctx, "target price lookup failed", "token", pair.Target.Symbol, "error", err)
	} else if ok {
		prices.Target, prices.TargetKnown = price, true
	}

	return prices
}

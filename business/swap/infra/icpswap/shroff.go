package icpswap

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vaultic/shroff/business/swap/app"
	"github.com/vaultic/shroff/business/swap/domain"
	tokensApp "github.com/vaultic/shroff/business/tokens/app"
	tokens "github.com/vaultic/shroff/business/tokens/domain"
	"github.com/vaultic/shroff/internal/agent"
	"github.com/vaultic/shroff/internal/apperror"
	"github.com/vaultic/shroff/internal/icrc"
	"github.com/vaultic/shroff/internal/logger"
)

// lpFeeDenominator converts the pool fee tier to a rate (3000 -> 0.003).
var lpFeeDenominator = decimal.NewFromInt(1_000_000)

// Ensure Shroff implements the app port.
var _ app.Shroff = (*Shroff)(nil)

// Shroff is one swap session on the pool venue, bound to a pair, a pool
// and a user principal.
type Shroff struct {
	client       *Client
	sourceLedger *icrc.Ledger
	tokenService *tokensApp.TokenService
	pair         tokens.Pair
	pool         Pool
	zeroForOne   bool
	user         agent.Principal
	rates        agent.Principal
	slippage     decimal.Decimal
	logger       logger.LoggerInterface
	tracer       trace.Tracer

	mu         sync.Mutex
	state      domain.SessionState
	quote      *domain.Quote
	generation domain.Generation
}

// Venue identifies the adapter.
func (s *Shroff) Venue() domain.Venue {
	return domain.VenueICPSwap
}

// Targets lists every canister this session touches, for signing scope.
func (s *Shroff) Targets() []agent.Principal {
	return []agent.Principal{
		s.pair.Source.Ledger,
		s.pair.Target.Ledger,
		s.pool.Canister,
		s.rates,
		s.client.factory,
	}
}

// State returns the session state for inspection.
func (s *Shroff) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// GetQuote prices a swap of amount raw source units and stores the quote
// under a fresh generation.
func (s *Shroff) GetQuote(ctx context.Context, amount decimal.Decimal) (*app.TaggedQuote, error) {
	ctx, span := s.tracer.Start(ctx, "icpswap.shroff.get_quote",
		trace.WithAttributes(attribute.String("pair", s.pair.String())))
	defer span.End()

	calc, err := domain.NewCalculator(domain.ICPSwapFeeModel(), s.pair.Source, amount)
	if err != nil {
		return nil, err
	}

	usd := s.tokenService.USDPrices(ctx, s.pair)

	rawQuote, err := s.client.Quote(ctx, s.pool, calc.SourceSwapAmount(), s.zeroForOne)
	if err != nil {
		return nil, s.classifyQuoteErr(err)
	}

	lpFee := calc.SourceSwapAmount().
		Mul(decimal.NewFromUint64(s.pool.Fee)).
		Div(lpFeeDenominator).
		Round(0)

	quote, err := domain.NewQuote(calc, rawQuote, s.pair, s.slippage,
		domain.USDPrices{
			Source:      usd.Source,
			Target:      usd.Target,
			SourceKnown: usd.SourceKnown,
			TargetKnown: usd.TargetKnown,
		},
		domain.VenueQuoteSpec{LPFee: lpFee, LPFeeToken: s.pair.Source},
	)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.quote = quote
	s.generation++
	s.state = domain.StateQuoted
	gen := s.generation
	s.mu.Unlock()

	s.logger.Info(ctx, "quote stored",
		"venue", s.Venue(), "pair", s.pair.String(),
		"generation", gen, "rate", quote.QuoteRateString())
	return &app.TaggedQuote{Quote: quote, Generation: gen}, nil
}

// classifyQuoteErr maps a quote failure: venue downtime and transport
// errors propagate, every other venue answer means no route.
func (s *Shroff) classifyQuoteErr(err error) error {
	var venueErr *domain.VenueError
	if !errors.As(err, &venueErr) {
		return err
	}
	if venueErr.Code == domain.VenueInternal {
		return apperror.ServiceUnavailable(string(domain.VenueICPSwap), venueErr)
	}
	return apperror.New(apperror.CodeLiquidityUnavailable,
		apperror.WithVenue(string(domain.VenueICPSwap)), apperror.WithCause(venueErr))
}

// Swap executes the stored quote: transfer to the pool's subaccount,
// deposit, swap, withdraw. No step is retried; a failure freezes the
// session at the broken step.
func (s *Shroff) Swap(ctx context.Context, gen domain.Generation) error {
	s.mu.Lock()
	if s.quote == nil {
		s.mu.Unlock()
		return apperror.New(apperror.CodeQuoteRequired, apperror.WithVenue(string(domain.VenueICPSwap)))
	}
	if gen != s.generation {
		have := s.generation
		s.mu.Unlock()
		return apperror.New(apperror.CodeStaleQuote,
			apperror.WithVenue(string(domain.VenueICPSwap)),
			apperror.WithContext(fmt.Sprintf("have generation %d, got %d", have, gen)))
	}
	if s.state.InFlight() {
		s.mu.Unlock()
		return apperror.New(apperror.CodeSwapFailed,
			apperror.WithVenue(string(domain.VenueICPSwap)),
			apperror.WithContext("swap already in flight"))
	}
	quote := s.quote
	s.state = domain.StateTransferring
	s.mu.Unlock()

	ctx, span := s.tracer.Start(ctx, "icpswap.shroff.swap",
		trace.WithAttributes(attribute.String("pair", s.pair.String())))
	defer span.End()

	calc := quote.Calculator()

	// Transfer funding to the account the pool keeps for this user.
	fee := s.pair.Source.Fee
	to := icrc.DerivedAccount(s.pool.Canister, s.user)
	if _, err := s.sourceLedger.Transfer(ctx, icrc.TransferArgs{
		To:     to,
		Amount: rawUint64(quote.TransferToSwapAmount()),
		Fee:    &fee,
	}); err != nil {
		s.setState(domain.StateFailed)
		return apperror.ContactSupport(string(domain.VenueICPSwap), err)
	}
	s.logger.Info(ctx, "funding transferred", "pair", s.pair.String(), "account", to.String())

	// Register the transfer in the pool's accounting.
	s.setState(domain.StateDepositing)
	depositAmount := calc.SourceSwapAmount().Add(calc.SourceFee())
	if _, err := s.client.Deposit(ctx, s.pool, s.pair.Source, depositAmount); err != nil {
		s.setState(domain.StateFailed)
		return apperror.Deposit(string(domain.VenueICPSwap), err)
	}
	s.logger.Info(ctx, "deposit confirmed", "pair", s.pair.String(), "amount", depositAmount.String())

	// Execute with the guaranteed amount as the floor.
	s.setState(domain.StateSwapping)
	received, err := s.client.Swap(ctx, s.pool, calc.SourceSwapAmount(), s.zeroForOne, quote.MinimumOutRaw())
	if err != nil {
		s.setState(domain.StateFailed)
		if domain.IsVenueCode(err, domain.VenueSlippage) {
			return apperror.SlippageSwap(string(domain.VenueICPSwap), err)
		}
		return apperror.Swap(string(domain.VenueICPSwap), err)
	}
	s.logger.Info(ctx, "swap executed", "pair", s.pair.String(), "received", received.String())

	// Release the proceeds back to the user.
	s.setState(domain.StateWithdrawing)
	if _, err := s.client.Withdraw(ctx, s.pool, s.pair.Target, quote.TargetAmount()); err != nil {
		s.setState(domain.StateFailed)
		return apperror.Withdraw(string(domain.VenueICPSwap), err)
	}

	s.setState(domain.StateCompleted)
	s.logger.Info(ctx, "swap completed", "venue", s.Venue(), "pair", s.pair.String())
	return nil
}

func (s *Shroff) setState(state domain.SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// UnusedBalance reports the user's undeposited funds in the pool, the
// amount to reclaim after a mid-swap failure.
func (s *Shroff) UnusedBalance(ctx context.Context) (UnusedBalances, error) {
	return s.client.UnusedBalance(ctx, s.pool, s.user)
}

// rawUint64 converts a raw-unit decimal to uint64 for ledger calls.
// Raw amounts are non-negative integers by construction.
func rawUint64(d decimal.Decimal) uint64 {
	return d.BigInt().Uint64()
}

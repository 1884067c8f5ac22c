package kongswap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

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

// approveExpiry bounds how long the allowance granted for one swap stays
// spendable.
const approveExpiry = 60 * time.Second

// Ensure Shroff implements the app port.
var _ app.Shroff = (*Shroff)(nil)

// Shroff is one swap session on the ledger-routed venue.
type Shroff struct {
	client       *Client
	sourceLedger *icrc.Ledger
	tokenService *tokensApp.TokenService
	pair         tokens.Pair
	user         agent.Principal
	rates        agent.Principal
	slippage     decimal.Decimal
	widgetRate   decimal.Decimal
	logger       logger.LoggerInterface
	tracer       trace.Tracer

	mu         sync.Mutex
	state      domain.SessionState
	quote      *domain.Quote
	venueQuote *VenueQuote
	generation domain.Generation
}

// Venue identifies the adapter.
func (s *Shroff) Venue() domain.Venue {
	return domain.VenueKongSwap
}

// Targets lists every canister this session touches, for signing scope.
func (s *Shroff) Targets() []agent.Principal {
	return []agent.Principal{
		s.pair.Source.Ledger,
		s.pair.Target.Ledger,
		s.client.backend,
		s.rates,
	}
}

// State returns the session state for inspection.
func (s *Shroff) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// VenueQuote returns the venue's own reply behind the stored quote, or
// nil before the first quote.
func (s *Shroff) VenueQuote() *VenueQuote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.venueQuote
}

// GetQuote prices a swap of amount raw source units and stores the quote
// under a fresh generation.
func (s *Shroff) GetQuote(ctx context.Context, amount decimal.Decimal) (*app.TaggedQuote, error) {
	ctx, span := s.tracer.Start(ctx, "kongswap.shroff.get_quote",
		trace.WithAttributes(attribute.String("pair", s.pair.String())))
	defer span.End()

	calc, err := domain.NewCalculator(domain.KongSwapFeeModel(s.widgetRate), s.pair.Source, amount)
	if err != nil {
		return nil, err
	}

	usd := s.tokenService.USDPrices(ctx, s.pair)

	venueQuote, err := s.client.SwapAmounts(ctx, s.pair.Source, s.pair.Target, calc.SourceSwapAmount())
	if err != nil {
		var vErr *domain.VenueError
		if errors.As(err, &vErr) {
			return nil, apperror.New(apperror.CodeLiquidityUnavailable,
				apperror.WithVenue(string(domain.VenueKongSwap)), apperror.WithCause(vErr))
		}
		return nil, err
	}

	quote, err := domain.NewQuote(calc, venueQuote.ReceiveAmount, s.pair, s.slippage,
		domain.USDPrices{
			Source:      usd.Source,
			Target:      usd.Target,
			SourceKnown: usd.SourceKnown,
			TargetKnown: usd.TargetKnown,
		},
		domain.VenueQuoteSpec{
			LPFee:            venueQuote.LPFeeTotal,
			LPFeeToken:       s.pair.Target,
			EmbeddedSlippage: venueQuote.Slippage,
		},
	)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.quote = quote
	s.venueQuote = &venueQuote
	s.generation++
	s.state = domain.StateQuoted
	gen := s.generation
	s.mu.Unlock()

	s.logger.Info(ctx, "quote stored",
		"venue", s.Venue(), "pair", s.pair.String(),
		"generation", gen, "rate", quote.QuoteRateString())
	return &app.TaggedQuote{Quote: quote, Generation: gen}, nil
}

// Swap executes the stored quote. Funding goes through an allowance when
// the source ledger speaks ICRC-2, otherwise through a direct transfer to
// the venue's root account referenced by block index. The venue folds
// deposit, swap and payout into the single swap call.
func (s *Shroff) Swap(ctx context.Context, gen domain.Generation) error {
	s.mu.Lock()
	if s.quote == nil {
		s.mu.Unlock()
		return apperror.New(apperror.CodeQuoteRequired, apperror.WithVenue(string(domain.VenueKongSwap)))
	}
	if gen != s.generation {
		have := s.generation
		s.mu.Unlock()
		return apperror.New(apperror.CodeStaleQuote,
			apperror.WithVenue(string(domain.VenueKongSwap)),
			apperror.WithContext(fmt.Sprintf("have generation %d, got %d", have, gen)))
	}
	if s.state.InFlight() {
		s.mu.Unlock()
		return apperror.New(apperror.CodeSwapFailed,
			apperror.WithVenue(string(domain.VenueKongSwap)),
			apperror.WithContext("swap already in flight"))
	}
	quote := s.quote
	s.state = domain.StateTransferring
	s.mu.Unlock()

	ctx, span := s.tracer.Start(ctx, "kongswap.shroff.swap",
		trace.WithAttributes(attribute.String("pair", s.pair.String())))
	defer span.End()

	calc := quote.Calculator()

	fundingBlock, err := s.fund(ctx, calc)
	if err != nil {
		s.setState(domain.StateFailed)
		return apperror.Deposit(string(domain.VenueKongSwap), err)
	}

	s.setState(domain.StateSwapping)
	received, err := s.client.Swap(ctx, Submission{
		Source:       s.pair.Source,
		Target:       s.pair.Target,
		PayAmount:    calc.SourceSwapAmount(),
		ExpectedOut:  quote.TargetAmount(),
		MaxSlippage:  s.slippage,
		FundingBlock: fundingBlock,
	})
	if err != nil {
		s.setState(domain.StateFailed)
		return apperror.ContactSupport(string(domain.VenueKongSwap), err)
	}

	s.setState(domain.StateCompleted)
	s.logger.Info(ctx, "swap completed",
		"venue", s.Venue(), "pair", s.pair.String(), "received", received.String())
	return nil
}

func (s *Shroff) setState(state domain.SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// fund makes the swap amount spendable by the backend and returns the
// funding block index for the transfer path, nil for the allowance path.
func (s *Shroff) fund(ctx context.Context, calc domain.Calculator) (*uint64, error) {
	fee := s.pair.Source.Fee

	if s.sourceLedger.SupportsICRC2(ctx) {
		expires := uint64(time.Now().Add(approveExpiry).UnixNano())
		amount := calc.SourceSwapAmount().Add(calc.SourceFee())
		if _, err := s.sourceLedger.Approve(ctx, icrc.ApproveArgs{
			Spender:   icrc.DefaultAccount(s.client.backend),
			Amount:    rawUint64(amount),
			ExpiresAt: &expires,
			Fee:       &fee,
		}); err != nil {
			return nil, err
		}
		s.logger.Info(ctx, "allowance granted",
			"pair", s.pair.String(), "amount", amount.String())
		return nil, nil
	}

	block, err := s.sourceLedger.Transfer(ctx, icrc.TransferArgs{
		To:     icrc.DefaultAccount(s.client.backend),
		Amount: rawUint64(calc.SourceSwapAmount()),
		Fee:    &fee,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "funding transferred",
		"pair", s.pair.String(), "block", block)
	return &block, nil
}

// PayoutWidgetFee transfers the collected widget fee to the treasury
// account. It is not part of the swap sequence; callers opt in after a
// completed swap.
func (s *Shroff) PayoutWidgetFee(ctx context.Context, treasury icrc.Account) (uint64, error) {
	s.mu.Lock()
	quote := s.quote
	state := s.state
	s.mu.Unlock()

	if quote == nil || state != domain.StateCompleted {
		return 0, apperror.New(apperror.CodeSwapFailed,
			apperror.WithVenue(string(domain.VenueKongSwap)),
			apperror.WithContext("widget fee payout requires a completed swap"))
	}

	widgetFee := quote.Calculator().WidgetFee()
	if widgetFee.Sign() <= 0 {
		return 0, nil
	}

	fee := s.pair.Source.Fee
	return s.sourceLedger.Transfer(ctx, icrc.TransferArgs{
		To:     treasury,
		Amount: rawUint64(widgetFee),
		Fee:    &fee,
	})
}

// rawUint64 converts a raw-unit decimal to uint64 for ledger calls.
// Raw amounts are non-negative integers by construction.
func rawUint64(d decimal.Decimal) uint64 {
	return d.BigInt().Uint64()
}

package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	tokens "github.com/vaultic/shroff/business/tokens/domain"
	"github.com/vaultic/shroff/internal/apperror"
)

// Generation tags a quote held by a venue session. Swap execution takes
// the tag back and fails closed when a newer quote has replaced it.
type Generation uint64

// ImpactLevel classifies how much value a swap loses to the route.
type ImpactLevel string

const (
	ImpactLow    ImpactLevel = "low"
	ImpactMedium ImpactLevel = "medium"
	ImpactHigh   ImpactLevel = "high"
)

var (
	hundred         = decimal.NewFromInt(100)
	impactLowFloor  = decimal.NewFromInt(-1)
	impactMedFloor  = decimal.NewFromInt(-5)
)

// PriceImpact is the USD value delta of a quote, as a percentage of the
// source value.
type PriceImpact struct {
	Percent decimal.Decimal
	Level   ImpactLevel
}

// USDPrices carries the optional USD unit prices of both legs. A missing
// price means the impact indicator is simply not computed.
type USDPrices struct {
	Source      decimal.Decimal
	Target      decimal.Decimal
	SourceKnown bool
	TargetKnown bool
}

// VenueQuoteSpec carries the venue-specific facts of one quote reply.
type VenueQuoteSpec struct {
	// LPFee is the liquidity provider fee in raw units of LPFeeToken.
	LPFee      decimal.Decimal
	LPFeeToken tokens.Token
	// EmbeddedSlippage is the slippage percentage the venue already
	// folded into the raw quote, zero for venues that quote mid-price.
	EmbeddedSlippage decimal.Decimal
}

// Quote is one priced swap offer. Raw amounts are in smallest token units;
// prettified amounts are human-readable decimals.
type Quote struct {
	calc      Calculator
	rawQuote  decimal.Decimal
	pair      tokens.Pair
	slippage  decimal.Decimal
	prices    USDPrices
	venueSpec VenueQuoteSpec
	createdAt time.Time
}

// NewQuote validates and builds a quote. It fails with a liquidity error
// when the quoted amount cannot cover the target ledger's payout fee.
func NewQuote(
	calc Calculator,
	rawQuote decimal.Decimal,
	pair tokens.Pair,
	slippage decimal.Decimal,
	prices USDPrices,
	venueSpec VenueQuoteSpec,
) (*Quote, error) {
	if rawQuote.Cmp(pair.Target.FeeDecimal()) <= 0 {
		return nil, apperror.New(apperror.CodeLiquidityUnavailable,
			apperror.WithVenue(string(calc.Model().Venue())),
			apperror.WithContext(fmt.Sprintf("quote %s cannot cover %s payout fee %d",
				rawQuote, pair.Target.Symbol, pair.Target.Fee)))
	}

	return &Quote{
		calc:      calc,
		rawQuote:  rawQuote,
		pair:      pair,
		slippage:  slippage,
		prices:    prices,
		venueSpec: venueSpec,
		createdAt: time.Now(),
	}, nil
}

// Venue returns the quoting venue.
func (q *Quote) Venue() Venue {
	return q.calc.Model().Venue()
}

// Pair returns the quoted token pair.
func (q *Quote) Pair() tokens.Pair {
	return q.pair
}

// Calculator returns the source-amount breakdown behind this quote.
func (q *Quote) Calculator() Calculator {
	return q.calc
}

// Slippage returns the user's slippage tolerance in percent.
func (q *Quote) Slippage() decimal.Decimal {
	return q.slippage
}

// CreatedAt returns when the quote was constructed.
func (q *Quote) CreatedAt() time.Time {
	return q.createdAt
}

// TargetAmount returns the venue's raw quoted amount in target units.
func (q *Quote) TargetAmount() decimal.Decimal {
	return q.rawQuote
}

// TargetAmountPrettified returns what the user actually receives: the raw
// quote net of the target ledger payout fee, in human units.
func (q *Quote) TargetAmountPrettified() decimal.Decimal {
	return q.pair.Target.ToHuman(q.rawQuote.Sub(q.pair.Target.FeeDecimal()))
}

// SourceAmountPrettified returns the amount the user typed, in human units.
func (q *Quote) SourceAmountPrettified() decimal.Decimal {
	return q.pair.Source.ToHuman(q.calc.UserInputAmount())
}

// QuoteRate returns the effective unit rate: target received per source
// unit actually swapped.
func (q *Quote) QuoteRate() decimal.Decimal {
	sourceSwap := q.pair.Source.ToHuman(q.calc.SourceSwapAmount())
	if sourceSwap.IsZero() {
		return decimal.Zero
	}
	return q.pair.Target.ToHuman(q.rawQuote).Div(sourceSwap)
}

// QuoteRateString renders the rate as "1 SRC = X TGT".
func (q *Quote) QuoteRateString() string {
	return fmt.Sprintf("1 %s = %s %s",
		q.pair.Source.Symbol, q.QuoteRate().String(), q.pair.Target.Symbol)
}

// GuaranteedAmount returns the worst-case human-unit amount at the user's
// slippage tolerance. Venues that embed their own slippage in the raw
// quote have it backed out first so the tolerance is not applied twice.
func (q *Quote) GuaranteedAmount() decimal.Decimal {
	amount := q.TargetAmountPrettified()
	if !q.venueSpec.EmbeddedSlippage.IsZero() {
		amount = amount.Div(hundred.Sub(q.venueSpec.EmbeddedSlippage)).Mul(hundred)
	}
	return amount.Mul(hundred.Sub(q.slippage)).Div(hundred)
}

// MinimumOutRaw returns the guaranteed amount in raw target units, the
// bound venue adapters pass as minimum-out.
func (q *Quote) MinimumOutRaw() decimal.Decimal {
	return q.pair.Target.FromHuman(q.GuaranteedAmount())
}

// SourceUSDValue returns the USD value of the typed amount, if priced.
func (q *Quote) SourceUSDValue() (decimal.Decimal, bool) {
	if !q.prices.SourceKnown {
		return decimal.Zero, false
	}
	return q.SourceAmountPrettified().Mul(q.prices.Source), true
}

// TargetUSDValue returns the USD value of the received amount, if priced.
func (q *Quote) TargetUSDValue() (decimal.Decimal, bool) {
	if !q.prices.TargetKnown {
		return decimal.Zero, false
	}
	return q.TargetAmountPrettified().Mul(q.prices.Target), true
}

// PriceImpact returns the USD value delta of the swap, or nil when either
// leg has no listed price. The basis is the amount actually sent to the
// venue against the raw quote, so transfer fees and the widget fee do not
// register as impact.
func (q *Quote) PriceImpact() *PriceImpact {
	if !q.prices.SourceKnown || !q.prices.TargetKnown {
		return nil
	}
	sourceUSD := q.pair.Source.ToHuman(q.calc.SourceSwapAmount()).Mul(q.prices.Source)
	if sourceUSD.IsZero() {
		return nil
	}
	targetUSD := q.pair.Target.ToHuman(q.rawQuote).Mul(q.prices.Target)

	percent := targetUSD.Sub(sourceUSD).Div(sourceUSD).Mul(hundred)

	level := ImpactHigh
	switch {
	case percent.Cmp(impactLowFloor) >= 0:
		level = ImpactLow
	case percent.Cmp(impactMedFloor) >= 0:
		level = ImpactMedium
	}

	return &PriceImpact{Percent: percent, Level: level}
}

// TransferToSwapAmount returns the raw amount of the funding transfer.
func (q *Quote) TransferToSwapAmount() decimal.Decimal {
	return q.calc.Model().TransferToSwapAmount(q.calc.SourceSwapAmount(), q.calc.SourceFee())
}

// EstimatedTransferFees returns the fee display schedule for this quote.
func (q *Quote) EstimatedTransferFees() []FeeEstimate {
	return q.calc.Model().EstimatedTransferFees(q.pair.Source, q.pair.Target)
}

// LiquidityProviderFee returns the venue's LP fee for this quote.
func (q *Quote) LiquidityProviderFee() FeeEstimate {
	return FeeEstimate{Amount: q.venueSpec.LPFee, Token: q.venueSpec.LPFeeToken}
}

// WidgetFee returns the widget fee charged on the source leg.
func (q *Quote) WidgetFee() FeeEstimate {
	return FeeEstimate{Amount: q.calc.WidgetFee(), Token: q.pair.Source}
}

// WidgetFeePrettified renders the widget fee in human units with symbol.
func (q *Quote) WidgetFeePrettified() string {
	return fmt.Sprintf("%s %s",
		q.pair.Source.ToHuman(q.calc.WidgetFee()).String(), q.pair.Source.Symbol)
}

// TargetAmountPrettifiedWithSymbol renders the received amount for display.
func (q *Quote) TargetAmountPrettifiedWithSymbol() string {
	return fmt.Sprintf("%s %s", q.TargetAmountPrettified().String(), q.pair.Target.Symbol)
}

// SourceAmountPrettifiedWithSymbol renders the typed amount for display.
func (q *Quote) SourceAmountPrettifiedWithSymbol() string {
	return fmt.Sprintf("%s %s", q.SourceAmountPrettified().String(), q.pair.Source.Symbol)
}

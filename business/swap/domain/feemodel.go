package domain

import (
	"github.com/shopspring/decimal"

	tokens "github.com/vaultic/shroff/business/tokens/domain"
)

// transferLegsReserved is how many ledger transfer fees are reserved from
// the user's input before quoting, across all venues: funding, payout and
// one spare leg.
const transferLegsReserved = 3

// FeeEstimate is one entry of the estimated-transfer-fee display list.
type FeeEstimate struct {
	Amount decimal.Decimal
	Token  tokens.Token
}

// feeLeg describes one line of a venue's estimated fee schedule.
type feeLeg struct {
	count    int64
	onTarget bool
}

// FeeModel captures how a venue splits the user's input into widget fee,
// swappable amount and transfer legs. Both venues share the reserved-leg
// rule; they differ in widget fee and whether the funding transfer carries
// an extra fee unit for the deposit step.
type FeeModel struct {
	venue             Venue
	widgetFeeRate     decimal.Decimal
	depositCarriesFee bool
	legs              []feeLeg
}

// ICPSwapFeeModel returns the fee model for the pool-based venue: no
// widget fee, funding transfer carries one extra fee unit for the deposit,
// fees estimated as three source legs plus two target legs.
func ICPSwapFeeModel() FeeModel {
	return FeeModel{
		venue:             VenueICPSwap,
		depositCarriesFee: true,
		legs: []feeLeg{
			{count: 3, onTarget: false},
			{count: 2, onTarget: true},
		},
	}
}

// KongSwapFeeModel returns the fee model for the ledger-routed venue: a
// widget fee at the given rate, funding transfer of exactly the swap
// amount, fees estimated as two source legs.
func KongSwapFeeModel(widgetFeeRate decimal.Decimal) FeeModel {
	return FeeModel{
		venue:         VenueKongSwap,
		widgetFeeRate: widgetFeeRate,
		legs: []feeLeg{
			{count: 2, onTarget: false},
		},
	}
}

// Venue returns the venue this model belongs to.
func (m FeeModel) Venue() Venue {
	return m.venue
}

// TransferLegCount returns the number of transfer fees reserved from the
// user's input.
func (m FeeModel) TransferLegCount() int64 {
	return transferLegsReserved
}

// HasWidgetFee reports whether this venue charges a widget fee.
func (m FeeModel) HasWidgetFee() bool {
	return !m.widgetFeeRate.IsZero()
}

// ComputeWidgetFee returns the widget fee in raw source units, rounded to
// the nearest unit: rate × (input − reserved transfer fees).
func (m FeeModel) ComputeWidgetFee(userInput, sourceFee decimal.Decimal) decimal.Decimal {
	if m.widgetFeeRate.IsZero() {
		return decimal.Zero
	}
	base := userInput.Sub(sourceFee.Mul(decimal.NewFromInt(transferLegsReserved)))
	return base.Mul(m.widgetFeeRate).Round(0)
}

// ComputeSourceSwapAmount returns the raw amount actually swapped:
// input minus reserved transfer fees minus widget fee.
func (m FeeModel) ComputeSourceSwapAmount(userInput, sourceFee decimal.Decimal) decimal.Decimal {
	reserved := sourceFee.Mul(decimal.NewFromInt(transferLegsReserved))
	return userInput.Sub(reserved).Sub(m.ComputeWidgetFee(userInput, sourceFee))
}

// TransferToSwapAmount returns the amount of the funding transfer. Venues
// with a separate deposit step need one extra fee unit on top of the swap
// amount.
func (m FeeModel) TransferToSwapAmount(sourceSwapAmount, sourceFee decimal.Decimal) decimal.Decimal {
	if m.depositCarriesFee {
		return sourceSwapAmount.Add(sourceFee)
	}
	return sourceSwapAmount
}

// EstimatedTransferFees returns the fee display schedule for the pair.
func (m FeeModel) EstimatedTransferFees(source, target tokens.Token) []FeeEstimate {
	estimates := make([]FeeEstimate, 0, len(m.legs))
	for _, leg := range m.legs {
		token := source
		fee := source.FeeDecimal()
		if leg.onTarget {
			token = target
			fee = target.FeeDecimal()
		}
		estimates = append(estimates, FeeEstimate{
			Amount: fee.Mul(decimal.NewFromInt(leg.count)),
			Token:  token,
		})
	}
	return estimates
}

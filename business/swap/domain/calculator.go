package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	tokens "github.com/vaultic/shroff/business/tokens/domain"
	"github.com/vaultic/shroff/internal/apperror"
)

// Calculator splits a user's raw input amount into widget fee, reserved
// transfer fees and the amount actually sent to the venue. Amounts are in
// raw source-ledger units.
type Calculator struct {
	userInput  decimal.Decimal
	sourceFee  decimal.Decimal
	widgetFee  decimal.Decimal
	sourceSwap decimal.Decimal
	model      FeeModel
}

// NewCalculator builds a calculator for one quote request. It fails with
// an insufficient-amount error when the input does not cover the reserved
// transfer fees and widget fee.
func NewCalculator(model FeeModel, source tokens.Token, userInput decimal.Decimal) (Calculator, error) {
	sourceFee := source.FeeDecimal()
	sourceSwap := model.ComputeSourceSwapAmount(userInput, sourceFee)
	if sourceSwap.Sign() <= 0 {
		return Calculator{}, apperror.New(apperror.CodeInsufficientAmount,
			apperror.WithVenue(string(model.Venue())),
			apperror.WithContext(fmt.Sprintf("input %s does not cover %d transfer fees of %s %s",
				userInput, model.TransferLegCount(), sourceFee, source.Symbol)))
	}

	return Calculator{
		userInput:  userInput,
		sourceFee:  sourceFee,
		widgetFee:  model.ComputeWidgetFee(userInput, sourceFee),
		sourceSwap: sourceSwap,
		model:      model,
	}, nil
}

// UserInputAmount returns the raw amount the user typed.
func (c Calculator) UserInputAmount() decimal.Decimal {
	return c.userInput
}

// SourceFee returns the source ledger transfer fee.
func (c Calculator) SourceFee() decimal.Decimal {
	return c.sourceFee
}

// WidgetFee returns the widget fee in raw source units.
func (c Calculator) WidgetFee() decimal.Decimal {
	return c.widgetFee
}

// SourceSwapAmount returns the raw amount submitted to the venue.
func (c Calculator) SourceSwapAmount() decimal.Decimal {
	return c.sourceSwap
}

// Model returns the fee model the calculator was built from.
func (c Calculator) Model() FeeModel {
	return c.model
}

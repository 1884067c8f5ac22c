package domain

import (
	"testing"

	"github.com/shopspring/decimal"

	tokens "github.com/vaultic/shroff/business/tokens/domain"
	"github.com/vaultic/shroff/internal/apperror"
)

func icpToken() tokens.Token {
	return tokens.Token{
		Ledger:   tokens.ICP.Ledger,
		Symbol:   "ICP",
		Decimals: 8,
		Fee:      10_000,
	}
}

func TestFeeModel_ComputeWidgetFee(t *testing.T) {
	rate := decimal.RequireFromString("0.00875")

	tests := []struct {
		name      string
		model     FeeModel
		userInput string
		want      string
	}{
		{
			name:      "kong_one_icp",
			model:     KongSwapFeeModel(rate),
			userInput: "100000000",
			// 0.00875 * (100000000 - 30000) = 874737.5, rounds up
			want: "874738",
		},
		{
			name:      "kong_small_input",
			model:     KongSwapFeeModel(rate),
			userInput: "40000",
			// 0.00875 * 10000 = 87.5, rounds to 88
			want: "88",
		},
		{
			name:      "icpswap_never_charges",
			model:     ICPSwapFeeModel(),
			userInput: "100000000",
			want:      "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := decimal.RequireFromString(tt.userInput)
			got := tt.model.ComputeWidgetFee(input, decimal.NewFromInt(10_000))

			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("ComputeWidgetFee = %s, want %s", got, want)
			}
		})
	}
}

func TestFeeModel_SourceSwapAmount(t *testing.T) {
	rate := decimal.RequireFromString("0.00875")
	fee := decimal.NewFromInt(10_000)
	input := decimal.NewFromInt(100_000_000)

	// ICPSwap keeps everything after the reserved legs.
	icpswap := ICPSwapFeeModel().ComputeSourceSwapAmount(input, fee)
	if !icpswap.Equal(decimal.NewFromInt(99_970_000)) {
		t.Errorf("icpswap source swap = %s, want 99970000", icpswap)
	}

	// KongSwap additionally deducts the widget fee.
	kong := KongSwapFeeModel(rate).ComputeSourceSwapAmount(input, fee)
	if !kong.Equal(decimal.NewFromInt(99_095_262)) {
		t.Errorf("kong source swap = %s, want 99095262", kong)
	}

	// The split always reassembles to the input.
	widget := KongSwapFeeModel(rate).ComputeWidgetFee(input, fee)
	sum := kong.Add(widget).Add(fee.Mul(decimal.NewFromInt(3)))
	if !sum.Equal(input) {
		t.Errorf("widget + swap + 3*fee = %s, want %s", sum, input)
	}
}

func TestFeeModel_TransferToSwapAmount(t *testing.T) {
	swapAmount := decimal.NewFromInt(99_970_000)
	fee := decimal.NewFromInt(10_000)

	if got := ICPSwapFeeModel().TransferToSwapAmount(swapAmount, fee); !got.Equal(decimal.NewFromInt(99_980_000)) {
		t.Errorf("icpswap transfer amount = %s, want 99980000", got)
	}
	if got := KongSwapFeeModel(decimal.Zero).TransferToSwapAmount(swapAmount, fee); !got.Equal(swapAmount) {
		t.Errorf("kong transfer amount = %s, want %s", got, swapAmount)
	}
}

func TestNewCalculator_InsufficientAmount(t *testing.T) {
	tests := []struct {
		name      string
		userInput string
		wantErr   bool
	}{
		{name: "covers_fees", userInput: "100000000", wantErr: false},
		{name: "exactly_three_fees", userInput: "30000", wantErr: true},
		{name: "below_fees", userInput: "29999", wantErr: true},
		{name: "one_unit_over", userInput: "30001", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := decimal.RequireFromString(tt.userInput)
			_, err := NewCalculator(ICPSwapFeeModel(), icpToken(), input)

			if tt.wantErr {
				if !apperror.HasCode(err, apperror.CodeInsufficientAmount) {
					t.Fatalf("err = %v, want INSUFFICIENT_AMOUNT", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCalculator_Monotonic(t *testing.T) {
	// A larger input never swaps less.
	model := KongSwapFeeModel(decimal.RequireFromString("0.00875"))
	source := icpToken()

	prev := decimal.Zero
	for _, raw := range []int64{50_000, 100_000, 1_000_000, 100_000_000, 5_000_000_000} {
		calc, err := NewCalculator(model, source, decimal.NewFromInt(raw))
		if err != nil {
			t.Fatalf("input %d: %v", raw, err)
		}
		if calc.SourceSwapAmount().Cmp(prev) < 0 {
			t.Fatalf("input %d swaps %s, less than previous %s", raw, calc.SourceSwapAmount(), prev)
		}
		prev = calc.SourceSwapAmount()
	}
}

func TestEstimatedTransferFees(t *testing.T) {
	source := icpToken()
	target := tokens.Token{Ledger: tokens.CKBTC.Ledger, Symbol: "ckBTC", Decimals: 8, Fee: 10}

	icpswap := ICPSwapFeeModel().EstimatedTransferFees(source, target)
	if len(icpswap) != 2 {
		t.Fatalf("icpswap legs = %d, want 2", len(icpswap))
	}
	if !icpswap[0].Amount.Equal(decimal.NewFromInt(30_000)) || icpswap[0].Token.Symbol != "ICP" {
		t.Errorf("icpswap source leg = %s %s", icpswap[0].Amount, icpswap[0].Token.Symbol)
	}
	if !icpswap[1].Amount.Equal(decimal.NewFromInt(20)) || icpswap[1].Token.Symbol != "ckBTC" {
		t.Errorf("icpswap target leg = %s %s", icpswap[1].Amount, icpswap[1].Token.Symbol)
	}

	kong := KongSwapFeeModel(decimal.Zero).EstimatedTransferFees(source, target)
	if len(kong) != 1 {
		t.Fatalf("kong legs = %d, want 1", len(kong))
	}
	if !kong[0].Amount.Equal(decimal.NewFromInt(20_000)) || kong[0].Token.Symbol != "ICP" {
		t.Errorf("kong source leg = %s %s", kong[0].Amount, kong[0].Token.Symbol)
	}
}

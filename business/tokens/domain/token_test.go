package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTokenConversions(t *testing.T) {
	icp := Token{Ledger: ICP.Ledger, Symbol: "ICP", Decimals: 8, Fee: 10_000}
	usdc := Token{Ledger: CKUSDC.Ledger, Symbol: "ckUSDC", Decimals: 6, Fee: 10_000}

	tests := []struct {
		name      string
		token     Token
		raw       string
		wantHuman string
	}{
		{"whole_unit", icp, "100000000", "1"},
		{"fractional", icp, "95000000", "0.95"},
		{"below_one_raw_unit_of_display", icp, "1", "0.00000001"},
		{"six_decimals", usdc, "1500000", "1.5"},
		{"zero", icp, "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := decimal.RequireFromString(tt.raw)
			human := tt.token.ToHuman(raw)
			if human.String() != tt.wantHuman {
				t.Errorf("ToHuman(%s) = %s, want %s", tt.raw, human, tt.wantHuman)
			}
			if back := tt.token.FromHuman(human); !back.Equal(raw) {
				t.Errorf("FromHuman(ToHuman(%s)) = %s", tt.raw, back)
			}
		})
	}
}

func TestFromHuman_TruncatesSubUnitPrecision(t *testing.T) {
	icp := Token{Ledger: ICP.Ledger, Symbol: "ICP", Decimals: 8, Fee: 10_000}

	// More precision than the ledger carries is dropped, never rounded up.
	got := icp.FromHuman(decimal.RequireFromString("0.123456789"))
	if got.String() != "12345678" {
		t.Errorf("FromHuman = %s, want 12345678", got)
	}
}

func TestNewPair(t *testing.T) {
	icp := Token{Ledger: ICP.Ledger, Symbol: "ICP", Decimals: 8}
	ckbtc := Token{Ledger: CKBTC.Ledger, Symbol: "ckBTC", Decimals: 8}

	pair, err := NewPair(icp, ckbtc)
	if err != nil {
		t.Fatalf("NewPair: %v", err)
	}
	if got := pair.String(); got != "ICP-ckBTC" {
		t.Errorf("String() = %q, want ICP-ckBTC", got)
	}

	inverted := pair.Invert()
	if got := inverted.String(); got != "ckBTC-ICP" {
		t.Errorf("Invert().String() = %q, want ckBTC-ICP", got)
	}

	if _, err := NewPair(icp, icp); err == nil {
		t.Error("NewPair accepted identical ledgers")
	}
}

func TestWellKnown(t *testing.T) {
	known := WellKnown()
	if len(known) == 0 {
		t.Fatal("WellKnown() is empty")
	}
	for _, token := range known {
		if token.Symbol == "" || token.Decimals == 0 {
			t.Errorf("incomplete well-known token %s", token.Ledger.Text())
		}
	}
}

// Package domain contains the core token types for the tokens context.
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vaultic/shroff/internal/agent"
)

// Token describes one ICRC ledger asset: identity, display data and the
// ledger transfer fee in raw units.
type Token struct {
	Ledger   agent.Principal
	Symbol   string
	Name     string
	Decimals uint8
	Fee      uint64
	LogoURL  string
}

// FeeDecimal returns the transfer fee as a raw-unit decimal.
func (t Token) FeeDecimal() decimal.Decimal {
	return decimal.NewFromUint64(t.Fee)
}

// scale returns 10^decimals.
func (t Token) scale() decimal.Decimal {
	return decimal.New(1, int32(t.Decimals))
}

// ToHuman converts raw ledger units to a human-readable amount.
func (t Token) ToHuman(raw decimal.Decimal) decimal.Decimal {
	return raw.Div(t.scale())
}

// FromHuman converts a human-readable amount to raw ledger units,
// truncating sub-unit precision.
func (t Token) FromHuman(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(t.scale()).Truncate(0)
}

// String returns "SYMBOL (ledger)".
func (t Token) String() string {
	return fmt.Sprintf("%s (%s)", t.Symbol, t.Ledger.Text())
}

// Pair is a directed source/target token pair for a swap.
type Pair struct {
	Source Token
	Target Token
}

// NewPair creates a swap pair. Source and target must differ.
func NewPair(source, target Token) (Pair, error) {
	if source.Ledger.Equals(target.Ledger) {
		return Pair{}, fmt.Errorf("tokens: pair needs two distinct ledgers, got %s twice", source.Ledger.Text())
	}
	return Pair{Source: source, Target: target}, nil
}

// String returns the pair symbol (e.g. "ICP-ckBTC").
func (p Pair) String() string {
	return p.Source.Symbol + "-" + p.Target.Symbol
}

// Invert returns the pair with source and target swapped.
func (p Pair) Invert() Pair {
	return Pair{Source: p.Target, Target: p.Source}
}

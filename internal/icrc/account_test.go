package icrc

import (
	"testing"

	"github.com/vaultic/shroff/internal/agent"
)

func TestDefaultAccount(t *testing.T) {
	owner := agent.MustPrincipal("2ipq2-uqaaa-aaaar-qailq-cai")
	account := DefaultAccount(owner)

	if !account.Owner.Equals(owner) {
		t.Error("owner mismatch")
	}
	if account.Subaccount != nil {
		t.Errorf("default account has subaccount %x", account.Subaccount)
	}
	if got := account.String(); got != owner.Text() {
		t.Errorf("String() = %q, want %q", got, owner.Text())
	}
}

func TestDerivedAccount(t *testing.T) {
	canister := agent.MustPrincipal("4mmnk-kiaaa-aaaag-qbllq-cai")
	user := agent.MustPrincipal("ryjl3-tyaaa-aaaaa-aaaba-cai")

	account := DerivedAccount(canister, user)
	if !account.Owner.Equals(canister) {
		t.Error("derived account must be owned by the canister")
	}
	if len(account.Subaccount) != 32 {
		t.Fatalf("subaccount length = %d, want 32", len(account.Subaccount))
	}

	sub := user.Subaccount()
	for i := range sub {
		if account.Subaccount[i] != sub[i] {
			t.Fatalf("subaccount byte %d = %#x, want %#x", i, account.Subaccount[i], sub[i])
		}
	}

	// Distinct users land in distinct subaccounts of the same canister.
	other := DerivedAccount(canister, agent.MustPrincipal("mxzaz-hqaaa-aaaar-qaada-cai"))
	if account.String() == other.String() {
		t.Error("distinct users derived the same account")
	}
}

func TestLedgerErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  LedgerError
		want string
	}{
		{"bad_fee", LedgerError{BadFee: &struct{ ExpectedFee uint64 }{10_000}}, "BadFee expected=10000"},
		{"insufficient", LedgerError{InsufficientFunds: &struct{ Balance uint64 }{5}}, "InsufficientFunds balance=5"},
		{"too_old", LedgerError{TooOld: &struct{}{}}, "TooOld"},
		{"unknown", LedgerError{}, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

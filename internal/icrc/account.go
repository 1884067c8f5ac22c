// Package icrc implements a client for ICRC-1/ICRC-2 token ledgers.
package icrc

import (
	"encoding/hex"
	"fmt"

	"github.com/vaultic/shroff/internal/agent"
)

// Account is an ICRC-1 account: a principal plus an optional 32-byte
// subaccount. A nil subaccount means the default subaccount.
type Account struct {
	Owner      agent.Principal
	Subaccount []byte
}

// DefaultAccount returns the owner's default-subaccount account.
func DefaultAccount(owner agent.Principal) Account {
	return Account{Owner: owner}
}

// DerivedAccount returns the account a canister keeps for a user: owned by
// the canister, subaccount derived from the user's principal.
func DerivedAccount(canister, user agent.Principal) Account {
	sub := user.Subaccount()
	return Account{Owner: canister, Subaccount: sub[:]}
}

// String renders owner.subaccount-hex, or just the owner for the default
// subaccount.
func (a Account) String() string {
	if len(a.Subaccount) == 0 {
		return a.Owner.Text()
	}
	return fmt.Sprintf("%s.%s", a.Owner.Text(), hex.EncodeToString(a.Subaccount))
}

// wireAccount is the JSON form sent to ledgers.
type wireAccount struct {
	Owner      string `json:"owner"`
	Subaccount []byte `json:"subaccount,omitempty"`
}

func (a Account) wire() wireAccount {
	return wireAccount{Owner: a.Owner.Text(), Subaccount: a.Subaccount}
}

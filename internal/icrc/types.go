package icrc

import "fmt"

// TransferArgs are the arguments to icrc1_transfer.
type TransferArgs struct {
	To             Account
	Amount         uint64
	Fee            *uint64
	Memo           []byte
	FromSubaccount []byte
	CreatedAtTime  *uint64
}

// ApproveArgs are the arguments to icrc2_approve.
type ApproveArgs struct {
	Spender   Account
	Amount    uint64
	ExpiresAt *uint64
	Fee       *uint64
}

// Standard is one entry of icrc1_supported_standards.
type Standard struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// StandardICRC2 is the standard name advertised by ledgers that support
// the approve/transfer_from flow.
const StandardICRC2 = "ICRC-2"

type wireTransferArgs struct {
	To             wireAccount `json:"to"`
	Amount         uint64      `json:"amount"`
	Fee            *uint64     `json:"fee,omitempty"`
	Memo           []byte      `json:"memo,omitempty"`
	FromSubaccount []byte      `json:"from_subaccount,omitempty"`
	CreatedAtTime  *uint64     `json:"created_at_time,omitempty"`
}

type wireApproveArgs struct {
	Spender   wireAccount `json:"spender"`
	Amount    uint64      `json:"amount"`
	ExpiresAt *uint64     `json:"expires_at,omitempty"`
	Fee       *uint64     `json:"fee,omitempty"`
}

type wireAllowanceArgs struct {
	Account wireAccount `json:"account"`
	Spender wireAccount `json:"spender"`
}

type wireAllowance struct {
	Allowance uint64  `json:"allowance"`
	ExpiresAt *uint64 `json:"expires_at,omitempty"`
}

// LedgerError is the error variant shared by transfer and approve replies.
// Exactly one field is set.
type LedgerError struct {
	BadFee                 *struct{ ExpectedFee uint64 }   `json:"BadFee,omitempty"`
	BadBurn                *struct{ MinBurnAmount uint64 } `json:"BadBurn,omitempty"`
	InsufficientFunds      *struct{ Balance uint64 }       `json:"InsufficientFunds,omitempty"`
	InsufficientAllowance  *struct{ Allowance uint64 }     `json:"InsufficientAllowance,omitempty"`
	TooOld                 *struct{}                       `json:"TooOld,omitempty"`
	CreatedInFuture        *struct{ LedgerTime uint64 }    `json:"CreatedInFuture,omitempty"`
	Duplicate              *struct{ DuplicateOf uint64 }   `json:"Duplicate,omitempty"`
	TemporarilyUnavailable *struct{}                       `json:"TemporarilyUnavailable,omitempty"`
	GenericError           *struct {
		ErrorCode uint64 `json:"error_code"`
		Message   string `json:"message"`
	} `json:"GenericError,omitempty"`
}

func (e *LedgerError) String() string {
	switch {
	case e == nil:
		return "none"
	case e.BadFee != nil:
		return fmt.Sprintf("BadFee expected=%d", e.BadFee.ExpectedFee)
	case e.BadBurn != nil:
		return fmt.Sprintf("BadBurn min=%d", e.BadBurn.MinBurnAmount)
	case e.InsufficientFunds != nil:
		return fmt.Sprintf("InsufficientFunds balance=%d", e.InsufficientFunds.Balance)
	case e.InsufficientAllowance != nil:
		return fmt.Sprintf("InsufficientAllowance allowance=%d", e.InsufficientAllowance.Allowance)
	case e.TooOld != nil:
		return "TooOld"
	case e.CreatedInFuture != nil:
		return fmt.Sprintf("CreatedInFuture ledger_time=%d", e.CreatedInFuture.LedgerTime)
	case e.Duplicate != nil:
		return fmt.Sprintf("Duplicate of=%d", e.Duplicate.DuplicateOf)
	case e.TemporarilyUnavailable != nil:
		return "TemporarilyUnavailable"
	case e.GenericError != nil:
		return fmt.Sprintf("GenericError code=%d message=%s", e.GenericError.ErrorCode, e.GenericError.Message)
	default:
		return "unknown"
	}
}

// ledgerResult is the Ok/Err union returned by mutating ledger methods.
type ledgerResult struct {
	Ok  *uint64      `json:"Ok,omitempty"`
	Err *LedgerError `json:"Err,omitempty"`
}

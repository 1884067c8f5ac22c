package domain

// SessionState tracks a swap session through its on-chain steps. A failed
// session freezes at the step that broke so error guidance can name it.
type SessionState string

const (
	StateIdle         SessionState = "idle"
	StateQuoted       SessionState = "quoted"
	StateTransferring SessionState = "transferring"
	StateDepositing   SessionState = "depositing"
	StateSwapping     SessionState = "swapping"
	StateWithdrawing  SessionState = "withdrawing"
	StateCompleted    SessionState = "completed"
	StateFailed       SessionState = "failed"
)

// InFlight reports whether funds may currently be mid-venue.
func (s SessionState) InFlight() bool {
	switch s {
	case StateTransferring, StateDepositing, StateSwapping, StateWithdrawing:
		return true
	}
	return false
}

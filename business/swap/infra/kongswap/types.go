// Package kongswap implements the Shroff adapter for the ledger-routed venue.
package kongswap

import "github.com/vaultic/shroff/business/swap/domain"

// tokenID renders a ledger principal the way the backend expects tokens.
func tokenID(ledger string) string {
	return "IC." + ledger
}

// swapAmountsArgs are the arguments to swap_amounts.
type swapAmountsArgs struct {
	PayToken     string `json:"pay_token"`
	PayAmount    string `json:"pay_amount"`
	ReceiveToken string `json:"receive_token"`
}

// swapAmountsTx is one hop of the quoted route.
type swapAmountsTx struct {
	PoolSymbol    string `json:"pool_symbol"`
	PayAmount     string `json:"pay_amount"`
	ReceiveAmount string `json:"receive_amount"`
	LPFee         string `json:"lp_fee"`
	GasFee        string `json:"gas_fee"`
}

// swapAmountsReply is the venue's quote breakdown.
type swapAmountsReply struct {
	PayAmount     string          `json:"pay_amount"`
	ReceiveAmount string          `json:"receive_amount"`
	Price         string          `json:"price"`
	Slippage      string          `json:"slippage"`
	Txs           []swapAmountsTx `json:"txs"`
}

// poolReply is one pool row of the pools reply.
type poolReply struct {
	Symbol   string `json:"symbol"`
	Balance0 string `json:"balance_0"`
	Balance1 string `json:"balance_1"`
}

// poolsReply wraps the pools listing.
type poolsReply struct {
	Pools []poolReply `json:"pools"`
}

// poolsArgs optionally narrow the listing to one pool symbol.
type poolsArgs struct {
	Symbol *string `json:"symbol,omitempty"`
}

// payTxID references the funding transfer when the venue is funded by a
// plain ledger transfer instead of an allowance.
type payTxID struct {
	BlockIndex uint64 `json:"BlockIndex"`
}

// swapCallArgs are the arguments to swap.
type swapCallArgs struct {
	PayToken       string   `json:"pay_token"`
	PayAmount      string   `json:"pay_amount"`
	PayTxID        *payTxID `json:"pay_tx_id,omitempty"`
	ReceiveToken   string   `json:"receive_token"`
	ReceiveAmount  string   `json:"receive_amount"`
	MaxSlippage    string   `json:"max_slippage"`
	ReceiveAddress *string  `json:"receive_address,omitempty"`
}

// swapReply is the venue's execution receipt.
type swapReply struct {
	TxID          uint64 `json:"tx_id"`
	ReceiveAmount string `json:"receive_amount"`
	Price         string `json:"price"`
	Slippage      string `json:"slippage"`
	Status        string `json:"status"`
}

// The backend answers every method with an Ok/Err union where Err is a
// plain message.
type swapAmountsResult struct {
	Ok  *swapAmountsReply `json:"Ok,omitempty"`
	Err *string           `json:"Err,omitempty"`
}

type poolsResult struct {
	Ok  *poolsReply `json:"Ok,omitempty"`
	Err *string     `json:"Err,omitempty"`
}

type swapResult struct {
	Ok  *swapReply `json:"Ok,omitempty"`
	Err *string    `json:"Err,omitempty"`
}

// venueError wraps the backend's message as a structured error.
func venueErr(message string) *domain.VenueError {
	return &domain.VenueError{Venue: domain.VenueKongSwap, Code: domain.VenueCommon, Message: message}
}

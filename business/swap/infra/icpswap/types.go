// Package icpswap implements the Shroff adapter for the pool-based venue.
package icpswap

import (
	"strings"

	"github.com/vaultic/shroff/business/swap/domain"
)

// tokenStandard is the standard tag the factory expects for ICRC ledgers.
const tokenStandard = "ICRC1"

// poolToken identifies one side of a pool in factory calls.
type poolToken struct {
	Address  string `json:"address"`
	Standard string `json:"standard"`
}

// getPoolArgs are the arguments to SwapFactory.getPool.
type getPoolArgs struct {
	Token0 poolToken `json:"token0"`
	Token1 poolToken `json:"token1"`
	Fee    uint64    `json:"fee"`
}

// poolData is the factory's pool descriptor.
type poolData struct {
	CanisterID string    `json:"canisterId"`
	Token0     poolToken `json:"token0"`
	Token1     poolToken `json:"token1"`
	Fee        uint64    `json:"fee"`
}

// swapArgs drive both quote and swap on the pool canister.
type swapArgs struct {
	AmountIn         string `json:"amountIn"`
	ZeroForOne       bool   `json:"zeroForOne"`
	AmountOutMinimum string `json:"amountOutMinimum"`
}

// depositArgs are shared by deposit and withdraw.
type depositArgs struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
	Fee    uint64 `json:"fee"`
}

// unusedBalance is the reply of getUserUnusedBalance.
type unusedBalance struct {
	Balance0 string `json:"balance0"`
	Balance1 string `json:"balance1"`
}

// venueError is the venue's error variant; exactly one field is set.
type venueError struct {
	InternalError     *string   `json:"InternalError,omitempty"`
	UnsupportedToken  *string   `json:"UnsupportedToken,omitempty"`
	InsufficientFunds *struct{} `json:"InsufficientFunds,omitempty"`
	CommonError       *struct{} `json:"CommonError,omitempty"`
}

// classify maps the raw variant to a structured code. Slippage rejections
// arrive as InternalError with a recognizable payload; this is the single
// place that inspects it.
func (e *venueError) classify() *domain.VenueError {
	switch {
	case e.InternalError != nil:
		code := domain.VenueInternal
		if strings.Contains(strings.ToLower(*e.InternalError), "slippage") {
			code = domain.VenueSlippage
		}
		return &domain.VenueError{Venue: domain.VenueICPSwap, Code: code, Message: *e.InternalError}
	case e.UnsupportedToken != nil:
		return &domain.VenueError{Venue: domain.VenueICPSwap, Code: domain.VenueUnsupportedToken, Message: *e.UnsupportedToken}
	case e.InsufficientFunds != nil:
		return &domain.VenueError{Venue: domain.VenueICPSwap, Code: domain.VenueInsufficientFunds}
	default:
		return &domain.VenueError{Venue: domain.VenueICPSwap, Code: domain.VenueCommon}
	}
}

// poolResult is the factory's Ok/Err union.
type poolResult struct {
	Ok  *poolData   `json:"Ok,omitempty"`
	Err *venueError `json:"Err,omitempty"`
}

// natResult is the pool's Ok/Err union for amount-returning methods.
type natResult struct {
	Ok  *string     `json:"Ok,omitempty"`
	Err *venueError `json:"Err,omitempty"`
}

// balanceResult is the Ok/Err union for getUserUnusedBalance.
type balanceResult struct {
	Ok  *unusedBalance `json:"Ok,omitempty"`
	Err *venueError    `json:"Err,omitempty"`
}

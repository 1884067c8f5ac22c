package domain

import (
	"errors"
	"fmt"
)

// VenueErrorCode classifies a venue's structured error reply. Adapters
// map raw venue payloads to these codes once, at the client boundary;
// everything above matches on the code.
type VenueErrorCode string

const (
	VenueInternal          VenueErrorCode = "internal"
	VenueUnsupportedToken  VenueErrorCode = "unsupported_token"
	VenueInsufficientFunds VenueErrorCode = "insufficient_funds"
	VenueCommon            VenueErrorCode = "common"
	VenueSlippage          VenueErrorCode = "slippage"
)

// VenueError is a venue's own rejection, classified.
type VenueError struct {
	Venue   Venue
	Code    VenueErrorCode
	Message string
}

// Error implements the error interface.
func (e *VenueError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", e.Venue, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Venue, e.Code, e.Message)
}

// IsVenueCode reports whether err carries a VenueError with the given code.
func IsVenueCode(err error, code VenueErrorCode) bool {
	var venueErr *VenueError
	return errors.As(err, &venueErr) && venueErr.Code == code
}

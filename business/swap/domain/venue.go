// Package domain contains the core quoting types for the swap context.
package domain

import "fmt"

// Venue identifies a swap venue. The set is closed; adding a venue means
// adding an adapter under business/swap/infra.
type Venue string

const (
	VenueICPSwap  Venue = "icpswap"
	VenueKongSwap Venue = "kongswap"
)

// AllVenues returns every registered venue in stable order.
func AllVenues() []Venue {
	return []Venue{VenueICPSwap, VenueKongSwap}
}

// ParseVenue validates a venue name from config or flags.
func ParseVenue(s string) (Venue, error) {
	switch Venue(s) {
	case VenueICPSwap, VenueKongSwap:
		return Venue(s), nil
	default:
		return "", fmt.Errorf("swap: unknown venue %q", s)
	}
}

// String implements fmt.Stringer.
func (v Venue) String() string {
	return string(v)
}

package booking

import "errors"

// ErrCityNotFound is fatal for a run: the search page does not know the city.
var ErrCityNotFound = errors.New("city not found")

// Reasons a center or place attempt ends without a booking. None of them
// escalate past the center being tried.
var (
	ErrNoMotive       = errors.New("no matching motive")
	ErrNoAvailability = errors.New("no availabilities")
	ErrNoSlot         = errors.New("no slot found")
	ErrMalformedSlot  = errors.New("malformed slot")
	ErrSlotTaken      = errors.New("appointment not available anymore")
	ErrNoSecondShot   = errors.New("no second shot found")
)

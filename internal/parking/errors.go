package parking

import "errors"

var (
	ErrNoSpotAvailable = errors.New("no spot available")
	ErrInvalidTicket   = errors.New("invalid ticket")
	ErrTicketClosed    = errors.New("ticket already closed")
	ErrUnknownTicket   = errors.New("unknown ticket")
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrUnknownGate     = errors.New("unknown gate")
	ErrUnknownSpot     = errors.New("unknown spot")
	ErrDuplicateSpot   = errors.New("duplicate spot id")
	ErrUnknownCategory = errors.New("unknown vehicle category")
	ErrUnknownPolicy   = errors.New("unknown pricing policy")
	ErrNegativeRate    = errors.New("rate must not be negative")

	// Guarded spot transitions.
	ErrSpotOccupied    = errors.New("spot already occupied")
	ErrSpotAlreadyFree = errors.New("spot already free")
)

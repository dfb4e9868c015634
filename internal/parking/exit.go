package parking

import (
	"errors"
	"fmt"
	"time"
)

type ExitGate struct {
	ID       string
	policy   PricingPolicy
	registry *Registry
	tickets  *TicketBook
}

func NewExitGate(id string, policy PricingPolicy, registry *Registry, tickets *TicketBook) *ExitGate {
	return &ExitGate{
		ID:       id,
		policy:   policy,
		registry: registry,
		tickets:  tickets,
	}
}

func (g *ExitGate) Policy() PricingPolicy {
	return g.policy
}

// Receipt describes a processed exit.
type Receipt struct {
	TicketID  string
	LicenseID string
	SpotID    int
	Gate      string
	Policy    string
	EntryTime time.Time
	ExitTime  time.Time
	Fee       Money
	Paid      bool
}

func (r Receipt) Duration() time.Duration {
	return r.ExitTime.Sub(r.EntryTime)
}

func (g *ExitGate) Fee(ticket *Ticket, now time.Time) (Money, error) {
	if ticket == nil {
		return 0, ErrInvalidTicket
	}
	return g.policy.Fee(ticket.EntryTime, now), nil
}

// ProcessExit prices the stay and frees the spot. The spot is released
// regardless of payment; payment is simulated and always succeeds. A ticket
// can be processed once. A ticket naming a spot outside the registry is
// rejected before it is closed, so the exit can be retried.
func (g *ExitGate) ProcessExit(ticket *Ticket, now time.Time) (Receipt, error) {
	if ticket == nil {
		return Receipt{}, ErrInvalidTicket
	}
	if _, ok := g.registry.Spot(ticket.SpotID); !ok {
		return Receipt{}, fmt.Errorf("%w: %d", ErrUnknownSpot, ticket.SpotID)
	}
	if err := g.tickets.Close(ticket.ID, now); err != nil {
		return Receipt{}, err
	}

	fee := g.policy.Fee(ticket.EntryTime, now)

	if err := g.registry.Release(ticket.SpotID); err != nil && !errors.Is(err, ErrSpotAlreadyFree) {
		return Receipt{}, err
	}

	return Receipt{
		TicketID:  ticket.ID,
		LicenseID: ticket.Vehicle.LicenseID,
		SpotID:    ticket.SpotID,
		Gate:      g.ID,
		Policy:    g.policy.Name(),
		EntryTime: ticket.EntryTime,
		ExitTime:  now,
		Fee:       fee,
		Paid:      true,
	}, nil
}

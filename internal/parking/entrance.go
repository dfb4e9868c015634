package parking

import (
	"time"
)

type EntranceGate struct {
	ID       string
	registry *Registry
	tickets  *TicketBook
}

func NewEntranceGate(id string, registry *Registry, tickets *TicketBook) *EntranceGate {
	return &EntranceGate{
		ID:       id,
		registry: registry,
		tickets:  tickets,
	}
}

// FindSpot reports the first free spot for the category. A false result is
// a normal outcome: the caller turns the vehicle away.
func (g *EntranceGate) FindSpot(category Category) (*Spot, bool) {
	return g.registry.FindFree(category)
}

// SetOccupancy occupies or frees a spot through the registry. Occupying an
// occupied spot or freeing a free one is rejected and leaves the spot as is.
func (g *EntranceGate) SetOccupancy(spot *Spot, occupy bool) error {
	if spot == nil {
		return ErrUnknownSpot
	}
	return g.registry.SetOccupancy(spot.ID, occupy)
}

// Admit assigns a spot to the vehicle and issues a ticket stamped with now.
func (g *EntranceGate) Admit(vehicle Vehicle, now time.Time) (*Ticket, error) {
	spot, err := g.registry.Claim(vehicle.Category)
	if err != nil {
		return nil, err
	}

	ticket := NewTicket(vehicle, spot, g.ID, now)
	g.tickets.Open(ticket)
	return ticket, nil
}

package parking

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ticket binds a vehicle's stay in a spot to its entry time.
type Ticket struct {
	ID        string
	Vehicle   Vehicle
	SpotID    int
	EntryTime time.Time
	Gate      string
}

func NewTicket(vehicle Vehicle, spot *Spot, gate string, entry time.Time) *Ticket {
	return &Ticket{
		ID:        uuid.New().String(),
		Vehicle:   vehicle,
		SpotID:    spot.ID,
		EntryTime: entry,
		Gate:      gate,
	}
}

// TicketBook records which tickets are open so an exit can be processed at
// most once per ticket.
type TicketBook struct {
	mu     sync.Mutex
	open   map[string]*Ticket
	closed map[string]time.Time
}

func NewTicketBook() *TicketBook {
	return &TicketBook{
		open:   make(map[string]*Ticket),
		closed: make(map[string]time.Time),
	}
}

func (b *TicketBook) Open(ticket *Ticket) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open[ticket.ID] = ticket
}

// Close marks the ticket closed and fails if it already was. Tickets that
// were never opened here are closed as well: a presented ticket is trusted.
func (b *TicketBook) Close(id string, at time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, done := b.closed[id]; done {
		return fmt.Errorf("%w: %s", ErrTicketClosed, id)
	}
	delete(b.open, id)
	b.closed[id] = at
	return nil
}

func (b *TicketBook) Get(id string) (*Ticket, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ticket, ok := b.open[id]; ok {
		return ticket, nil
	}
	if _, done := b.closed[id]; done {
		return nil, fmt.Errorf("%w: %s", ErrTicketClosed, id)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownTicket, id)
}

func (b *TicketBook) IsClosed(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, done := b.closed[id]
	return done
}

func (b *TicketBook) FindByLicense(licenseID string) (*Ticket, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ticket := range b.open {
		if ticket.Vehicle.LicenseID == licenseID {
			return ticket, true
		}
	}
	return nil, false
}

func (b *TicketBook) OpenCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.open)
}

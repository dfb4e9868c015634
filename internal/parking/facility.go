package parking

import (
	"fmt"
	"time"
)

type SpotDef struct {
	ID       int
	Category Category
}

type ExitDef struct {
	ID     string
	Policy PricingPolicy
}

// Layout describes the spots and gates a facility is built from.
type Layout struct {
	Spots     []SpotDef
	Entrances []string
	Exits     []ExitDef
}

// DefaultLayout is the four-spot, two-entrance, two-exit setup used by the
// demo: a per-minute exit and a per-hour exit.
func DefaultLayout() Layout {
	return Layout{
		Spots: []SpotDef{
			{ID: 1, Category: TwoWheeler},
			{ID: 2, Category: FourWheeler},
			{ID: 3, Category: FourWheeler},
			{ID: 4, Category: TwoWheeler},
		},
		Entrances: []string{"Entrance-1", "Entrance-2"},
		Exits: []ExitDef{
			{ID: "Exit-1", Policy: PerMinute{Rate: DefaultRatePerMinute}},
			{ID: "Exit-2", Policy: PerHour{Rate: DefaultRatePerHour}},
		},
	}
}

type Facility struct {
	registry  *Registry
	tickets   *TicketBook
	entrances map[string]*EntranceGate
	exits     map[string]*ExitGate

	entranceIDs []string
	exitIDs     []string
}

func NewFacility(layout Layout) (*Facility, error) {
	registry, err := NewRegistry()
	if err != nil {
		return nil, err
	}
	for _, def := range layout.Spots {
		if err := registry.Add(NewSpot(def.ID, def.Category)); err != nil {
			return nil, err
		}
	}

	f := &Facility{
		registry:  registry,
		tickets:   NewTicketBook(),
		entrances: make(map[string]*EntranceGate),
		exits:     make(map[string]*ExitGate),
	}

	for _, id := range layout.Entrances {
		if _, dup := f.entrances[id]; dup {
			return nil, fmt.Errorf("duplicate entrance gate %q", id)
		}
		f.entrances[id] = NewEntranceGate(id, registry, f.tickets)
		f.entranceIDs = append(f.entranceIDs, id)
	}

	for _, def := range layout.Exits {
		if _, dup := f.exits[def.ID]; dup {
			return nil, fmt.Errorf("duplicate exit gate %q", def.ID)
		}
		if def.Policy == nil {
			return nil, fmt.Errorf("exit gate %q: %w", def.ID, ErrUnknownPolicy)
		}
		f.exits[def.ID] = NewExitGate(def.ID, def.Policy, registry, f.tickets)
		f.exitIDs = append(f.exitIDs, def.ID)
	}

	return f, nil
}

func (f *Facility) Registry() *Registry {
	return f.registry
}

func (f *Facility) Tickets() *TicketBook {
	return f.tickets
}

func (f *Facility) EntranceIDs() []string {
	return append([]string(nil), f.entranceIDs...)
}

func (f *Facility) ExitIDs() []string {
	return append([]string(nil), f.exitIDs...)
}

func (f *Facility) EntranceGate(id string) (*EntranceGate, error) {
	gate, ok := f.entrances[id]
	if !ok {
		return nil, fmt.Errorf("%w: entrance %q", ErrUnknownGate, id)
	}
	return gate, nil
}

func (f *Facility) ExitGate(id string) (*ExitGate, error) {
	gate, ok := f.exits[id]
	if !ok {
		return nil, fmt.Errorf("%w: exit %q", ErrUnknownGate, id)
	}
	return gate, nil
}

// UnknownGateLabel stands in for gate ids that are not part of the layout.
const UnknownGateLabel = "unknown"

// GateLabel returns id when it names a configured entrance or exit and
// UnknownGateLabel otherwise, so metric labels stay within the layout.
func (f *Facility) GateLabel(id string) string {
	if _, ok := f.entrances[id]; ok {
		return id
	}
	if _, ok := f.exits[id]; ok {
		return id
	}
	return UnknownGateLabel
}

func (f *Facility) Enter(gateID string, vehicle Vehicle, now time.Time) (*Ticket, error) {
	if !vehicle.Category.Valid() {
		return nil, ErrUnknownCategory
	}
	gate, err := f.EntranceGate(gateID)
	if err != nil {
		return nil, err
	}
	return gate.Admit(vehicle, now)
}

func (f *Facility) Exit(gateID, ticketID string, now time.Time) (Receipt, error) {
	gate, err := f.ExitGate(gateID)
	if err != nil {
		return Receipt{}, err
	}
	ticket, err := f.tickets.Get(ticketID)
	if err != nil {
		return Receipt{}, err
	}
	return gate.ProcessExit(ticket, now)
}

// Quote prices an open ticket at the given exit without closing it.
func (f *Facility) Quote(gateID, ticketID string, now time.Time) (Money, error) {
	gate, err := f.ExitGate(gateID)
	if err != nil {
		return 0, err
	}
	ticket, err := f.tickets.Get(ticketID)
	if err != nil {
		return 0, err
	}
	return gate.Fee(ticket, now)
}

func (f *Facility) Ticket(id string) (*Ticket, error) {
	return f.tickets.Get(id)
}

func (f *Facility) FindByLicense(licenseID string) (*Ticket, error) {
	ticket, ok := f.tickets.FindByLicense(licenseID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrVehicleNotFound, licenseID)
	}
	return ticket, nil
}

type Status struct {
	Spots        []SpotState
	Availability map[Category]Availability
	OpenTickets  int
}

func (s Status) Occupied() int {
	n := 0
	for _, spot := range s.Spots {
		if spot.Occupied {
			n++
		}
	}
	return n
}

func (f *Facility) Status() Status {
	return Status{
		Spots:        f.registry.Snapshot(),
		Availability: f.registry.Availability(),
		OpenTickets:  f.tickets.OpenCount(),
	}
}

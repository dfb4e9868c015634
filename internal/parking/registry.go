package parking

import (
	"fmt"
	"sort"
	"sync"
)

// Registry owns every spot of a facility, keyed by id. Entrance and exit
// gates share one registry; all occupancy changes go through it so they are
// serialised by a single lock.
type Registry struct {
	mu    sync.Mutex
	spots map[int]*Spot
	order []int
}

func NewRegistry(spots ...*Spot) (*Registry, error) {
	r := &Registry{
		spots: make(map[int]*Spot, len(spots)),
	}
	for _, spot := range spots {
		if err := r.Add(spot); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Add(spot *Spot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.spots[spot.ID]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateSpot, spot.ID)
	}
	if !spot.Category.Valid() {
		return fmt.Errorf("spot %d: %w", spot.ID, ErrUnknownCategory)
	}

	r.spots[spot.ID] = spot
	r.order = append(r.order, spot.ID)
	sort.Ints(r.order)
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.spots)
}

func (r *Registry) Spot(id int) (*Spot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	spot, ok := r.spots[id]
	return spot, ok
}

// FindFree returns the lowest-id free spot of the given category.
func (r *Registry) FindFree(category Category) (*Spot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findFreeLocked(category)
}

func (r *Registry) findFreeLocked(category Category) (*Spot, bool) {
	for _, id := range r.order {
		spot := r.spots[id]
		if spot.Category == category && !spot.occupied {
			return spot, true
		}
	}
	return nil, false
}

func (r *Registry) SetOccupancy(id int, occupy bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	spot, ok := r.spots[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSpot, id)
	}
	if occupy {
		return spot.occupy()
	}
	return spot.free()
}

// Claim finds and occupies a free spot in one step.
func (r *Registry) Claim(category Category) (*Spot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	spot, ok := r.findFreeLocked(category)
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrNoSpotAvailable, category)
	}
	if err := spot.occupy(); err != nil {
		return nil, err
	}
	return spot, nil
}

func (r *Registry) Release(id int) error {
	return r.SetOccupancy(id, false)
}

// Snapshot returns the state of every spot ordered by id.
func (r *Registry) Snapshot() []SpotState {
	r.mu.Lock()
	defer r.mu.Unlock()

	states := make([]SpotState, 0, len(r.order))
	for _, id := range r.order {
		states = append(states, r.spots[id].state())
	}
	return states
}

type Availability struct {
	Total int
	Free  int
}

func (r *Registry) Availability() map[Category]Availability {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[Category]Availability)
	for _, spot := range r.spots {
		a := out[spot.Category]
		a.Total++
		if !spot.occupied {
			a.Free++
		}
		out[spot.Category] = a
	}
	return out
}

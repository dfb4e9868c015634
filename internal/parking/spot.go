package parking

import "fmt"

// Spot is a single parking space. Its category is fixed at creation and the
// occupied flag only changes through the Registry, under its lock.
type Spot struct {
	ID       int
	Category Category
	occupied bool
}

func NewSpot(id int, category Category) *Spot {
	return &Spot{
		ID:       id,
		Category: category,
	}
}

func (s *Spot) IsOccupied() bool {
	return s.occupied
}

func (s *Spot) occupy() error {
	if s.occupied {
		return fmt.Errorf("spot %d: %w", s.ID, ErrSpotOccupied)
	}
	s.occupied = true
	return nil
}

func (s *Spot) free() error {
	if !s.occupied {
		return fmt.Errorf("spot %d: %w", s.ID, ErrSpotAlreadyFree)
	}
	s.occupied = false
	return nil
}

// SpotState is a point-in-time copy of a spot, safe to hand out of the registry.
type SpotState struct {
	ID       int
	Category Category
	Occupied bool
}

func (s *Spot) state() SpotState {
	return SpotState{
		ID:       s.ID,
		Category: s.Category,
		Occupied: s.occupied,
	}
}

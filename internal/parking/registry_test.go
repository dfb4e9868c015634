package parking

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(
		NewSpot(1, TwoWheeler),
		NewSpot(2, FourWheeler),
		NewSpot(3, FourWheeler),
		NewSpot(4, TwoWheeler),
	)
	require.NoError(t, err)
	return r
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(NewSpot(1, TwoWheeler), NewSpot(1, FourWheeler))
	require.ErrorIs(t, err, ErrDuplicateSpot)
}

func TestNewRegistryRejectsUnknownCategory(t *testing.T) {
	_, err := NewRegistry(NewSpot(1, Category(42)))
	require.ErrorIs(t, err, ErrUnknownCategory)
}

func TestRegistryFindFreeInIDOrder(t *testing.T) {
	r, err := NewRegistry(
		NewSpot(4, TwoWheeler),
		NewSpot(2, FourWheeler),
		NewSpot(1, TwoWheeler),
	)
	require.NoError(t, err)

	spot, ok := r.FindFree(TwoWheeler)
	require.True(t, ok)
	assert.Equal(t, 1, spot.ID)

	require.NoError(t, r.SetOccupancy(1, true))

	spot, ok = r.FindFree(TwoWheeler)
	require.True(t, ok)
	assert.Equal(t, 4, spot.ID)

	_, ok = r.FindFree(ThreeWheeler)
	assert.False(t, ok)
}

func TestRegistryFindFreeNeverReturnsOccupied(t *testing.T) {
	r := newTestRegistry(t)

	for {
		spot, ok := r.FindFree(FourWheeler)
		if !ok {
			break
		}
		require.False(t, spot.IsOccupied())
		require.Equal(t, FourWheeler, spot.Category)
		require.NoError(t, r.SetOccupancy(spot.ID, true))
	}

	for _, s := range r.Snapshot() {
		if s.Category == FourWheeler {
			assert.True(t, s.Occupied, "spot %d", s.ID)
		}
	}
}

func TestRegistrySetOccupancy(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.SetOccupancy(2, true))
	spot, _ := r.Spot(2)
	assert.True(t, spot.IsOccupied())

	assert.ErrorIs(t, r.SetOccupancy(2, true), ErrSpotOccupied)
	assert.True(t, spot.IsOccupied())

	require.NoError(t, r.SetOccupancy(2, false))
	assert.False(t, spot.IsOccupied())

	assert.ErrorIs(t, r.SetOccupancy(2, false), ErrSpotAlreadyFree)
	assert.False(t, spot.IsOccupied())

	assert.ErrorIs(t, r.SetOccupancy(99, true), ErrUnknownSpot)
}

func TestRegistryClaimWhenFullLeavesSpotsUntouched(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Claim(TwoWheeler)
	require.NoError(t, err)
	_, err = r.Claim(TwoWheeler)
	require.NoError(t, err)

	before := r.Snapshot()
	_, err = r.Claim(TwoWheeler)
	require.ErrorIs(t, err, ErrNoSpotAvailable)
	assert.Equal(t, before, r.Snapshot())
}

func TestRegistryAvailability(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.SetOccupancy(3, true))

	a := r.Availability()
	assert.Equal(t, Availability{Total: 2, Free: 2}, a[TwoWheeler])
	assert.Equal(t, Availability{Total: 2, Free: 1}, a[FourWheeler])
	assert.NotContains(t, a, ThreeWheeler)
}

func TestRegistryConcurrentClaims(t *testing.T) {
	spots := make([]*Spot, 0, 50)
	for i := 1; i <= 50; i++ {
		spots = append(spots, NewSpot(i, FourWheeler))
	}
	r, err := NewRegistry(spots...)
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		claimed = make(map[int]int)
		full    int
	)
	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			spot, err := r.Claim(FourWheeler)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				full++
				return
			}
			claimed[spot.ID]++
		}()
	}
	wg.Wait()

	assert.Len(t, claimed, 50)
	assert.Equal(t, 30, full)
	for id, n := range claimed {
		assert.Equal(t, 1, n, "spot %d claimed more than once", id)
	}
}

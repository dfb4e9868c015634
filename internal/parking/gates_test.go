package parking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gateFixture struct {
	registry *Registry
	tickets  *TicketBook
	entrance *EntranceGate
	minute   *ExitGate
	hour     *ExitGate
}

func newGateFixture(t *testing.T) gateFixture {
	t.Helper()
	registry := newTestRegistry(t)
	tickets := NewTicketBook()
	return gateFixture{
		registry: registry,
		tickets:  tickets,
		entrance: NewEntranceGate("Entrance-1", registry, tickets),
		minute:   NewExitGate("Exit-1", PerMinute{Rate: DefaultRatePerMinute}, registry, tickets),
		hour:     NewExitGate("Exit-2", PerHour{Rate: DefaultRatePerHour}, registry, tickets),
	}
}

func TestEntranceSetOccupancy(t *testing.T) {
	fx := newGateFixture(t)
	spot, ok := fx.entrance.FindSpot(TwoWheeler)
	require.True(t, ok)

	require.NoError(t, fx.entrance.SetOccupancy(spot, true))
	assert.True(t, spot.IsOccupied())

	require.NoError(t, fx.entrance.SetOccupancy(spot, false))
	assert.False(t, spot.IsOccupied())
}

func TestTwoWheelerPerMinuteScenario(t *testing.T) {
	fx := newGateFixture(t)
	vehicle := NewVehicle("KA-01-1234", TwoWheeler)

	spot, ok := fx.entrance.FindSpot(vehicle.Category)
	require.True(t, ok)
	assert.Equal(t, 1, spot.ID)

	require.NoError(t, fx.entrance.SetOccupancy(spot, true))
	assert.True(t, spot.IsOccupied())

	ticket := NewTicket(*vehicle, spot, fx.entrance.ID, baseTime)

	receipt, err := fx.minute.ProcessExit(ticket, baseTime.Add(8*time.Second))
	require.NoError(t, err)
	assert.Equal(t, DefaultRatePerMinute, receipt.Fee)
	assert.Equal(t, 1, receipt.SpotID)
	assert.True(t, receipt.Paid)
	assert.Equal(t, 8*time.Second, receipt.Duration())
	assert.False(t, spot.IsOccupied())
}

func TestFourWheelerPerHourScenario(t *testing.T) {
	fx := newGateFixture(t)

	ticket, err := fx.entrance.Admit(Vehicle{LicenseID: "MH-02-5678", Category: FourWheeler}, baseTime)
	require.NoError(t, err)
	assert.Equal(t, 2, ticket.SpotID)
	assert.Equal(t, "Entrance-1", ticket.Gate)
	assert.NotEmpty(t, ticket.ID)

	spot, _ := fx.registry.Spot(2)
	assert.True(t, spot.IsOccupied())

	receipt, err := fx.hour.ProcessExit(ticket, baseTime.Add(2*time.Second))
	require.NoError(t, err)
	assert.Equal(t, DefaultRatePerHour, receipt.Fee)
	assert.Equal(t, PolicyPerHour, receipt.Policy)
	assert.False(t, spot.IsOccupied())
}

func TestProcessExitNilTicket(t *testing.T) {
	fx := newGateFixture(t)
	_, err := fx.entrance.Admit(Vehicle{LicenseID: "A", Category: TwoWheeler}, baseTime)
	require.NoError(t, err)

	before := fx.registry.Snapshot()
	_, err = fx.minute.ProcessExit(nil, baseTime)
	require.ErrorIs(t, err, ErrInvalidTicket)
	assert.Equal(t, before, fx.registry.Snapshot())
	assert.Equal(t, 1, fx.tickets.OpenCount())
}

func TestProcessExitTwice(t *testing.T) {
	fx := newGateFixture(t)
	ticket, err := fx.entrance.Admit(Vehicle{LicenseID: "A", Category: TwoWheeler}, baseTime)
	require.NoError(t, err)

	_, err = fx.minute.ProcessExit(ticket, baseTime.Add(time.Minute))
	require.NoError(t, err)

	// Another vehicle takes the freed spot; a replayed ticket must not free it.
	next, err := fx.entrance.Admit(Vehicle{LicenseID: "B", Category: TwoWheeler}, baseTime.Add(2*time.Minute))
	require.NoError(t, err)
	require.Equal(t, ticket.SpotID, next.SpotID)

	_, err = fx.hour.ProcessExit(ticket, baseTime.Add(3*time.Minute))
	require.ErrorIs(t, err, ErrTicketClosed)

	spot, _ := fx.registry.Spot(next.SpotID)
	assert.True(t, spot.IsOccupied())
}

func TestProcessExitReleasesAlreadyFreedSpot(t *testing.T) {
	fx := newGateFixture(t)
	ticket, err := fx.entrance.Admit(Vehicle{LicenseID: "A", Category: FourWheeler}, baseTime)
	require.NoError(t, err)

	require.NoError(t, fx.registry.Release(ticket.SpotID))

	receipt, err := fx.hour.ProcessExit(ticket, baseTime.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2*DefaultRatePerHour, receipt.Fee)
}

func TestAdmitWhenFull(t *testing.T) {
	fx := newGateFixture(t)

	for i := 0; i < 2; i++ {
		_, err := fx.entrance.Admit(Vehicle{LicenseID: "A", Category: FourWheeler}, baseTime)
		require.NoError(t, err)
	}

	before := fx.registry.Snapshot()
	_, ok := fx.entrance.FindSpot(FourWheeler)
	assert.False(t, ok)

	ticket, err := fx.entrance.Admit(Vehicle{LicenseID: "C", Category: FourWheeler}, baseTime)
	require.ErrorIs(t, err, ErrNoSpotAvailable)
	assert.Nil(t, ticket)
	assert.Equal(t, before, fx.registry.Snapshot())
	assert.Equal(t, 2, fx.tickets.OpenCount())
}

func TestExitGateFee(t *testing.T) {
	fx := newGateFixture(t)
	ticket, err := fx.entrance.Admit(Vehicle{LicenseID: "A", Category: TwoWheeler}, baseTime)
	require.NoError(t, err)

	fee, err := fx.minute.Fee(ticket, baseTime.Add(61*time.Second))
	require.NoError(t, err)
	assert.Equal(t, Money(10), fee)

	fee, err = fx.hour.Fee(ticket, baseTime.Add(61*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, Money(600), fee)
	assert.False(t, fx.tickets.IsClosed(ticket.ID))
}

func TestGatesRejectNil(t *testing.T) {
	fx := newGateFixture(t)

	assert.ErrorIs(t, fx.entrance.SetOccupancy(nil, true), ErrUnknownSpot)

	fee, err := fx.minute.Fee(nil, baseTime)
	assert.ErrorIs(t, err, ErrInvalidTicket)
	assert.Zero(t, fee)
}

func TestExitWithUnknownSpotKeepsTicketOpen(t *testing.T) {
	fx := newGateFixture(t)
	ticket := NewTicket(Vehicle{LicenseID: "Z", Category: TwoWheeler}, NewSpot(99, TwoWheeler), "Entrance-1", baseTime)
	fx.tickets.Open(ticket)

	for i := 0; i < 2; i++ {
		_, err := fx.minute.ProcessExit(ticket, baseTime.Add(time.Minute))
		require.ErrorIs(t, err, ErrUnknownSpot)
	}
	assert.False(t, fx.tickets.IsClosed(ticket.ID))
	assert.Equal(t, 1, fx.tickets.OpenCount())
}

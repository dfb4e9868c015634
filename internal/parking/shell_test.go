package parking

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func runShell(t *testing.T, f *InstrumentedFacility, now func() time.Time, input string) string {
	t.Helper()
	var out bytes.Buffer
	shell := NewShell(f, f.telemetry, strings.NewReader(input), &out).WithClock(now)
	shell.Run(context.Background())
	return out.String()
}

func TestShellEnterStatusFind(t *testing.T) {
	f, _ := newInstrumentedFacility(t)
	now := func() time.Time { return baseTime }

	out := runShell(t, f, now, strings.Join([]string{
		"enter Entrance-1 KA-01-1234 two-wheeler",
		"enter Entrance-1 X-1 bus",
		"enter Entrance-1 X-2",
		"status",
		"find KA-01-1234",
		"find nobody",
		"gates",
		"fly",
	}, "\n"))

	assert.Contains(t, out, "Vehicle KA-01-1234 parked at spot 1\n")
	assert.Contains(t, out, "Invalid category: bus\n")
	assert.Contains(t, out, "Usage: enter <gate> <license> <category>\n")
	assert.Contains(t, out, "1\ttwo-wheeler\toccupied\n")
	assert.Contains(t, out, "2\tfour-wheeler\tfree\n")
	assert.Contains(t, out, "Not found\n")
	assert.Contains(t, out, "Exits: Exit-1 (per-minute), Exit-2 (per-hour)\n")
	assert.Contains(t, out, "Unknown command: fly\n")
}

func TestShellExitFlow(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	telemetry := NewLocalTelemetryProvider(reader)
	f, err := NewInstrumentedFacility(DefaultLayout(), telemetry)
	require.NoError(t, err)

	clock := baseTime
	now := func() time.Time { return clock }

	out := runShell(t, f, now, "enter Entrance-2 MH-02-5678 four-wheeler\n")
	m := regexp.MustCompile(`Ticket: (\S+)`).FindStringSubmatch(out)
	require.Len(t, m, 2)
	ticketID := m[1]

	clock = baseTime.Add(61 * time.Minute)
	out = runShell(t, f, now, strings.Join([]string{
		"fee Exit-2 " + ticketID,
		"exit Exit-2 " + ticketID,
		"exit Exit-2 " + ticketID,
		"exit Exit-2",
	}, "\n"))

	assert.Contains(t, out, "Fee so far: $6.00\n")
	assert.Contains(t, out, "Payment due: $6.00\n")
	assert.Contains(t, out, "Vehicle with license MH-02-5678 exited. Spot 2 is now free.\n")
	assert.Contains(t, out, "Exit failed: ticket already closed")
	assert.Contains(t, out, "Usage: exit <gate> <ticket>\n")
}

func TestShellReportsFullFacility(t *testing.T) {
	f, _ := newInstrumentedFacility(t)
	now := func() time.Time { return baseTime }

	out := runShell(t, f, now, strings.Repeat("enter Entrance-1 A two-wheeler\n", 3))
	assert.Equal(t, 2, strings.Count(out, "parked at spot"))
	assert.Contains(t, out, "No parking spot available for two-wheeler\n")
}

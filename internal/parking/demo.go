package parking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

type DemoOptions struct {
	FirstStay  time.Duration
	SecondStay time.Duration
	Now        func() time.Time
	// Wait blocks for the simulated stay. Defaults to a context-aware sleep.
	Wait func(ctx context.Context, d time.Duration) error
}

func DefaultDemoOptions() DemoOptions {
	return DemoOptions{
		FirstStay:  8 * time.Second,
		SecondStay: 2 * time.Second,
		Now:        time.Now,
		Wait:       sleep,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type demoVisit struct {
	label    string
	vehicle  Vehicle
	entrance string
	exit     string
	stay     time.Duration
}

// RunDemo parks a two-wheeler and a four-wheeler in turn, waits, and sends
// each out through a different exit gate. It needs two entrances and two
// exits.
func RunDemo(ctx context.Context, facility *InstrumentedFacility, out io.Writer, opts DemoOptions) ([]Receipt, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Wait == nil {
		opts.Wait = sleep
	}

	entrances, exits := facility.EntranceIDs(), facility.ExitIDs()
	if len(entrances) < 2 || len(exits) < 2 {
		return nil, fmt.Errorf("demo needs two entrances and two exits, have %d and %d", len(entrances), len(exits))
	}

	visits := []demoVisit{
		{"Vehicle 1", Vehicle{LicenseID: "KA-01-1234", Category: TwoWheeler}, entrances[0], exits[0], opts.FirstStay},
		{"Vehicle 2", Vehicle{LicenseID: "MH-02-5678", Category: FourWheeler}, entrances[1], exits[1], opts.SecondStay},
	}

	var receipts []Receipt
	for i, v := range visits {
		if i > 0 {
			fmt.Fprintln(out, "-----")
		}

		ticket, err := facility.Enter(ctx, v.entrance, v.vehicle, opts.Now())
		if errors.Is(err, ErrNoSpotAvailable) {
			fmt.Fprintf(out, "No parking spot available for %s of type %s\n", v.label, v.vehicle.Category)
			continue
		}
		if err != nil {
			return receipts, err
		}
		fmt.Fprintf(out, "%s parked at spot %d\n", v.label, ticket.SpotID)

		if err := opts.Wait(ctx, v.stay); err != nil {
			return receipts, err
		}

		receipt, err := facility.Exit(ctx, v.exit, ticket.ID, opts.Now())
		if err != nil {
			fmt.Fprintf(out, "%s exit failed: %s\n", v.label, err)
			continue
		}
		fmt.Fprintf(out, "Payment due: %s\n", receipt.Fee)
		fmt.Fprintf(out, "Vehicle with license %s exited. Spot %d is now free.\n", receipt.LicenseID, receipt.SpotID)
		fmt.Fprintf(out, "%s has successfully exited.\n", v.label)
		receipts = append(receipts, receipt)
	}

	return receipts, nil
}

package parking

import (
	"fmt"
	"strings"
	"time"
)

// Money is an amount in minor currency units (cents).
type Money int64

func (m Money) String() string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s$%d.%02d", sign, int64(m)/100, int64(m)%100)
}

const (
	DefaultRatePerMinute Money = 5
	DefaultRatePerHour   Money = 300

	PolicyPerMinute = "per-minute"
	PolicyPerHour   = "per-hour"
)

type PricingPolicy interface {
	Name() string
	Fee(entry, exit time.Time) Money
}

type PerMinute struct {
	Rate Money
}

func (p PerMinute) Name() string { return PolicyPerMinute }

func (p PerMinute) Fee(entry, exit time.Time) Money {
	return Money(billableUnits(exit.Sub(entry), time.Minute)) * p.Rate
}

type PerHour struct {
	Rate Money
}

func (p PerHour) Name() string { return PolicyPerHour }

func (p PerHour) Fee(entry, exit time.Time) Money {
	return Money(billableUnits(exit.Sub(entry), time.Hour)) * p.Rate
}

// billableUnits counts whole units, rounding any remainder up. Non-positive
// durations bill nothing.
func billableUnits(d, unit time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	units := int64(d / unit)
	if d%unit != 0 {
		units++
	}
	return units
}

// NewPolicy builds a policy by name. A zero rate is kept as is: that exit
// charges nothing.
func NewPolicy(name string, rate Money) (PricingPolicy, error) {
	if rate < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeRate, rate)
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PolicyPerMinute, "minute":
		return PerMinute{Rate: rate}, nil
	case PolicyPerHour, "hourly", "hour":
		return PerHour{Rate: rate}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

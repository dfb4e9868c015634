package parking

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"parking-gates/internal/logging"
)

type InstrumentedFacility struct {
	*Facility
	telemetry *TelemetryProvider

	// Metrics
	entryOperations   metric.Int64Counter
	exitOperations    metric.Int64Counter
	occupancyGauge    metric.Int64UpDownCounter
	totalSpotsGauge   metric.Int64UpDownCounter
	feesCollected     metric.Int64Counter
	operationDuration metric.Float64Histogram
}

func NewInstrumentedFacility(layout Layout, telemetry *TelemetryProvider) (*InstrumentedFacility, error) {
	base, err := NewFacility(layout)
	if err != nil {
		return nil, err
	}

	meter := telemetry.Meter()

	entryOperations, err := meter.Int64Counter("parking_entries_total",
		metric.WithDescription("Total number of entrance gate operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	exitOperations, err := meter.Int64Counter("parking_exits_total",
		metric.WithDescription("Total number of exit gate operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("parking_spot_occupancy",
		metric.WithDescription("Current number of occupied spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	totalSpotsGauge, err := meter.Int64UpDownCounter("parking_spots_total",
		metric.WithDescription("Total number of spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	feesCollected, err := meter.Int64Counter("parking_fees_cents_total",
		metric.WithDescription("Fees charged at exit gates in cents"),
		metric.WithUnit("{cent}"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("parking_operation_duration_seconds",
		metric.WithDescription("Duration of facility operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	f := &InstrumentedFacility{
		Facility:          base,
		telemetry:         telemetry,
		entryOperations:   entryOperations,
		exitOperations:    exitOperations,
		occupancyGauge:    occupancyGauge,
		totalSpotsGauge:   totalSpotsGauge,
		feesCollected:     feesCollected,
		operationDuration: operationDuration,
	}

	ctx := context.Background()
	for category, a := range base.registry.Availability() {
		totalSpotsGauge.Add(ctx, int64(a.Total), metric.WithAttributes(
			attribute.String("category", category.String())))
	}

	return f, nil
}

func (f *InstrumentedFacility) Enter(ctx context.Context, gateID string, vehicle Vehicle, now time.Time) (*Ticket, error) {
	ctx, span := f.telemetry.Tracer().Start(ctx, "facility.enter",
		trace.WithAttributes(
			attribute.String("gate.id", gateID),
			attribute.String("vehicle.license_id", vehicle.LicenseID),
			attribute.String("vehicle.category", vehicle.Category.String()),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("finding_available_spot")

	ticket, err := f.Facility.Enter(gateID, vehicle, now)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "enter"),
		attribute.String("gate", f.GateLabel(gateID)),
		attribute.String("category", vehicle.Category.String()),
	}

	switch {
	case errors.Is(err, ErrNoSpotAvailable):
		// A full facility is an expected outcome, not a span error.
		span.AddEvent("no_spot_available")
		labels = append(labels, attribute.String("status", "full"))
		logging.Info(ctx, "no spot available",
			"gate", gateID, "license", vehicle.LicenseID, "category", vehicle.Category.String())
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
		logging.Warn(ctx, "entry rejected", "gate", gateID, "license", vehicle.LicenseID, "error", err)
	default:
		labels = append(labels, attribute.String("status", "success"))
		span.SetAttributes(
			attribute.Int("spot.id", ticket.SpotID),
			attribute.String("ticket.id", ticket.ID),
		)
		span.AddEvent("spot_assigned", trace.WithAttributes(
			attribute.Int("spot_id", ticket.SpotID),
		))
		f.occupancyGauge.Add(ctx, 1, metric.WithAttributes(
			attribute.String("category", vehicle.Category.String())))
		logging.Info(ctx, "vehicle parked",
			"gate", gateID, "license", vehicle.LicenseID, "spotId", ticket.SpotID, "ticketId", ticket.ID)
	}

	f.entryOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	f.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return ticket, err
}

func (f *InstrumentedFacility) Exit(ctx context.Context, gateID, ticketID string, now time.Time) (Receipt, error) {
	ctx, span := f.telemetry.Tracer().Start(ctx, "facility.exit",
		trace.WithAttributes(
			attribute.String("gate.id", gateID),
			attribute.String("ticket.id", ticketID),
		))
	defer span.End()

	start := time.Now()

	// Category is looked up before the exit so occupancy can be decremented.
	var category Category
	if ticket, err := f.tickets.Get(ticketID); err == nil {
		category = ticket.Vehicle.Category
	}

	span.AddEvent("processing_exit")

	receipt, err := f.Facility.Exit(gateID, ticketID, now)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "exit"),
		attribute.String("gate", f.GateLabel(gateID)),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", exitStatus(err)))
		logging.Warn(ctx, "exit rejected", "gate", gateID, "ticketId", ticketID, "error", err)
	} else {
		labels = append(labels,
			attribute.String("status", "success"),
			attribute.String("policy", receipt.Policy),
		)
		span.SetAttributes(
			attribute.Int("spot.id", receipt.SpotID),
			attribute.Int64("fee.cents", int64(receipt.Fee)),
			attribute.String("pricing.policy", receipt.Policy),
		)
		span.AddEvent("spot_released")

		f.occupancyGauge.Add(ctx, -1, metric.WithAttributes(
			attribute.String("category", category.String())))
		f.feesCollected.Add(ctx, int64(receipt.Fee), metric.WithAttributes(
			attribute.String("gate", f.GateLabel(gateID)),
			attribute.String("policy", receipt.Policy),
		))

		logging.Info(ctx, "payment due",
			"gate", gateID, "ticketId", receipt.TicketID, "fee", receipt.Fee.String(), "policy", receipt.Policy)
		logging.Info(ctx, "vehicle exited",
			"gate", gateID, "license", receipt.LicenseID, "spotId", receipt.SpotID)
	}

	f.exitOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	f.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return receipt, err
}

func exitStatus(err error) string {
	switch {
	case errors.Is(err, ErrTicketClosed):
		return "closed"
	case errors.Is(err, ErrUnknownTicket), errors.Is(err, ErrInvalidTicket):
		return "invalid_ticket"
	default:
		return "failed"
	}
}

func (f *InstrumentedFacility) Quote(ctx context.Context, gateID, ticketID string, now time.Time) (Money, error) {
	ctx, span := f.telemetry.Tracer().Start(ctx, "facility.quote",
		trace.WithAttributes(
			attribute.String("gate.id", gateID),
			attribute.String("ticket.id", ticketID),
		))
	defer span.End()

	fee, err := f.Facility.Quote(gateID, ticketID, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Int64("fee.cents", int64(fee)))
	logging.Debug(ctx, "fee quoted", "gate", gateID, "ticketId", ticketID, "fee", fee.String())
	return fee, nil
}

func (f *InstrumentedFacility) Status(ctx context.Context) Status {
	ctx, span := f.telemetry.Tracer().Start(ctx, "facility.status")
	defer span.End()

	start := time.Now()

	span.AddEvent("retrieving_status")

	status := f.Facility.Status()

	duration := time.Since(start).Seconds()

	span.SetAttributes(
		attribute.Int("occupied_spots_count", status.Occupied()),
		attribute.Int("total_spots", len(status.Spots)),
		attribute.Int("open_tickets", status.OpenTickets),
	)

	labels := []attribute.KeyValue{
		attribute.String("operation", "status"),
		attribute.String("status", "success"),
	}

	f.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return status
}

func (f *InstrumentedFacility) FindByLicense(ctx context.Context, licenseID string) (*Ticket, error) {
	ctx, span := f.telemetry.Tracer().Start(ctx, "facility.find_by_license",
		trace.WithAttributes(
			attribute.String("vehicle.license_id", licenseID),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("searching_by_license")

	ticket, err := f.Facility.FindByLicense(licenseID)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "find_by_license"),
	}

	if err != nil {
		span.AddEvent("vehicle_not_found")
		labels = append(labels, attribute.String("status", "not_found"))
	} else {
		span.SetAttributes(attribute.Int("found_spot_id", ticket.SpotID))
		span.AddEvent("vehicle_found", trace.WithAttributes(
			attribute.Int("spot_id", ticket.SpotID),
		))
		labels = append(labels, attribute.String("status", "found"))
	}

	f.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return ticket, err
}

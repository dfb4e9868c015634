package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Shell is a line-oriented console for a facility.
type Shell struct {
	facility  *InstrumentedFacility
	telemetry *TelemetryProvider
	scanner   *bufio.Scanner
	out       io.Writer
	now       func() time.Time
}

func NewShell(facility *InstrumentedFacility, telemetry *TelemetryProvider, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		facility:  facility,
		telemetry: telemetry,
		scanner:   bufio.NewScanner(in),
		out:       out,
		now:       time.Now,
	}
}

// WithClock replaces the time source used to stamp entries and exits.
func (s *Shell) WithClock(now func() time.Time) *Shell {
	s.now = now
	return s
}

func (s *Shell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for {
		if ctx.Err() != nil {
			break
		}
		if !s.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))

		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	span.AddEvent("shell_ended")
}

func (s *Shell) processCommand(ctx context.Context, input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	command := parts[0]
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("command.name", command))

	switch command {
	case "enter":
		s.handleEnter(ctx, parts)
	case "exit":
		s.handleExit(ctx, parts)
	case "fee":
		s.handleFee(ctx, parts)
	case "status":
		s.handleStatus(ctx)
	case "find":
		s.handleFind(ctx, parts)
	case "gates":
		s.handleGates()
	default:
		trace.SpanFromContext(ctx).AddEvent("unknown_command", trace.WithAttributes(
			attribute.String("unknown_command", command),
		))
		s.printf("Unknown command: %s\n", command)
	}
}

func (s *Shell) handleEnter(ctx context.Context, parts []string) {
	if len(parts) != 4 {
		s.printf("Usage: enter <gate> <license> <category>\n")
		return
	}

	category, err := ParseCategory(parts[3])
	if err != nil {
		s.printf("Invalid category: %s\n", parts[3])
		return
	}

	vehicle := NewVehicle(parts[2], category)
	ticket, err := s.facility.Enter(ctx, parts[1], *vehicle, s.now())
	switch {
	case errors.Is(err, ErrNoSpotAvailable):
		s.printf("No parking spot available for %s\n", category)
	case err != nil:
		s.printf("Error: %s\n", err.Error())
	default:
		s.printf("Vehicle %s parked at spot %d\n", vehicle.LicenseID, ticket.SpotID)
		s.printf("Ticket: %s\n", ticket.ID)
	}
}

func (s *Shell) handleExit(ctx context.Context, parts []string) {
	if len(parts) != 3 {
		s.printf("Usage: exit <gate> <ticket>\n")
		return
	}

	receipt, err := s.facility.Exit(ctx, parts[1], parts[2], s.now())
	if err != nil {
		s.printf("Exit failed: %s\n", err.Error())
		return
	}

	s.printf("Payment due: %s\n", receipt.Fee)
	s.printf("Vehicle with license %s exited. Spot %d is now free.\n", receipt.LicenseID, receipt.SpotID)
}

func (s *Shell) handleFee(ctx context.Context, parts []string) {
	if len(parts) != 3 {
		s.printf("Usage: fee <gate> <ticket>\n")
		return
	}

	fee, err := s.facility.Quote(ctx, parts[1], parts[2], s.now())
	if err != nil {
		s.printf("Error: %s\n", err.Error())
		return
	}
	s.printf("Fee so far: %s\n", fee)
}

func (s *Shell) handleStatus(ctx context.Context) {
	status := s.facility.Status(ctx)
	if len(status.Spots) == 0 {
		s.printf("Facility has no spots\n")
		return
	}

	s.printf("Spot\tCategory\tStatus\n")
	for _, spot := range status.Spots {
		state := "free"
		if spot.Occupied {
			state = "occupied"
		}
		s.printf("%d\t%s\t%s\n", spot.ID, spot.Category, state)
	}
}

func (s *Shell) handleFind(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.printf("Usage: find <license>\n")
		return
	}

	ticket, err := s.facility.FindByLicense(ctx, parts[1])
	if err != nil {
		s.printf("Not found\n")
		return
	}
	s.printf("%d\t%s\n", ticket.SpotID, ticket.ID)
}

func (s *Shell) handleGates() {
	s.printf("Entrances: %s\n", strings.Join(s.facility.EntranceIDs(), ", "))
	exits := make([]string, 0)
	for _, id := range s.facility.ExitIDs() {
		gate, err := s.facility.ExitGate(id)
		if err != nil {
			continue
		}
		exits = append(exits, fmt.Sprintf("%s (%s)", id, gate.Policy().Name()))
	}
	s.printf("Exits: %s\n", strings.Join(exits, ", "))
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

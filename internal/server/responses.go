package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"parking-gates/internal/parking"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type EnterRequest struct {
	Gate     string `json:"gate"`
	License  string `json:"license"`
	Category string `json:"category"`
}

type ExitRequest struct {
	Gate     string `json:"gate"`
	TicketID string `json:"ticket_id"`
}

type TicketResponse struct {
	TicketID  string    `json:"ticket_id"`
	License   string    `json:"license"`
	Category  string    `json:"category"`
	SpotID    int       `json:"spot_id"`
	Gate      string    `json:"gate"`
	EntryTime time.Time `json:"entry_time"`

	// Set when a quote was requested with ?gate=
	FeeDue string `json:"fee_due,omitempty"`
}

type ReceiptResponse struct {
	TicketID        string    `json:"ticket_id"`
	License         string    `json:"license"`
	SpotID          int       `json:"spot_id"`
	Gate            string    `json:"gate"`
	Policy          string    `json:"policy"`
	EntryTime       time.Time `json:"entry_time"`
	ExitTime        time.Time `json:"exit_time"`
	DurationSeconds float64   `json:"duration_seconds"`
	FeeCents        int64     `json:"fee_cents"`
	Fee             string    `json:"fee"`
	Paid            bool      `json:"paid"`
}

type SpotStatus struct {
	SpotID   int    `json:"spot_id"`
	Category string `json:"category"`
	Occupied bool   `json:"occupied"`
}

type CategoryAvailability struct {
	Total int `json:"total"`
	Free  int `json:"free"`
}

type StatusResponse struct {
	Capacity     int                             `json:"capacity"`
	Occupied     int                             `json:"occupied"`
	Available    int                             `json:"available"`
	OpenTickets  int                             `json:"open_tickets"`
	Availability map[string]CategoryAvailability `json:"availability"`
	Spots        []SpotStatus                    `json:"spots"`
}

func newTicketResponse(t *parking.Ticket) TicketResponse {
	return TicketResponse{
		TicketID:  t.ID,
		License:   t.Vehicle.LicenseID,
		Category:  t.Vehicle.Category.String(),
		SpotID:    t.SpotID,
		Gate:      t.Gate,
		EntryTime: t.EntryTime,
	}
}

func newReceiptResponse(r parking.Receipt) ReceiptResponse {
	return ReceiptResponse{
		TicketID:        r.TicketID,
		License:         r.LicenseID,
		SpotID:          r.SpotID,
		Gate:            r.Gate,
		Policy:          r.Policy,
		EntryTime:       r.EntryTime,
		ExitTime:        r.ExitTime,
		DurationSeconds: r.Duration().Seconds(),
		FeeCents:        int64(r.Fee),
		Fee:             r.Fee.String(),
		Paid:            r.Paid,
	}
}

func newStatusResponse(s parking.Status) StatusResponse {
	spots := make([]SpotStatus, 0, len(s.Spots))
	for _, spot := range s.Spots {
		spots = append(spots, SpotStatus{
			SpotID:   spot.ID,
			Category: spot.Category.String(),
			Occupied: spot.Occupied,
		})
	}

	availability := make(map[string]CategoryAvailability, len(s.Availability))
	for category, a := range s.Availability {
		availability[category.String()] = CategoryAvailability{Total: a.Total, Free: a.Free}
	}

	occupied := s.Occupied()
	return StatusResponse{
		Capacity:     len(s.Spots),
		Occupied:     occupied,
		Available:    len(s.Spots) - occupied,
		OpenTickets:  s.OpenTickets,
		Availability: availability,
		Spots:        spots,
	}
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"parking-gates/internal/parking"
)

type Handler struct {
	facility    *parking.InstrumentedFacility
	metrics     *Metrics
	serviceName string
	now         func() time.Time
}

func NewHandler(facility *parking.InstrumentedFacility, metrics *Metrics, serviceName string) *Handler {
	return &Handler{
		facility:    facility,
		metrics:     metrics,
		serviceName: serviceName,
		now:         time.Now,
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, parking.ErrNoSpotAvailable), errors.Is(err, parking.ErrTicketClosed):
		return http.StatusConflict
	case errors.Is(err, parking.ErrUnknownGate), errors.Is(err, parking.ErrUnknownTicket),
		errors.Is(err, parking.ErrVehicleNotFound):
		return http.StatusNotFound
	case errors.Is(err, parking.ErrUnknownCategory), errors.Is(err, parking.ErrInvalidTicket):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, parking.ErrNoSpotAvailable):
		return "no_spot"
	case errors.Is(err, parking.ErrTicketClosed):
		return "ticket_closed"
	case errors.Is(err, parking.ErrUnknownTicket), errors.Is(err, parking.ErrInvalidTicket):
		return "invalid_ticket"
	default:
		return "error"
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Meta:    extractMeta(r.Context()),
	})
}

func (h *Handler) Enter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req EnterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Gate == "" || req.License == "" || req.Category == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Gate, license and category are required")
		return
	}

	category, err := parking.ParseCategory(req.Category)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	vehicle := parking.NewVehicle(strings.TrimSpace(req.License), category)
	ticket, err := h.facility.Enter(ctx, req.Gate, *vehicle, h.now())
	h.metrics.GateOutcomes.WithLabelValues(h.facility.GateLabel(req.Gate), resultLabel(err)).Inc()
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, "Vehicle parked successfully", newTicketResponse(ticket))
}

func (h *Handler) Exit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ExitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Gate == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Gate is required")
		return
	}
	if req.TicketID == "" {
		h.metrics.GateOutcomes.WithLabelValues(h.facility.GateLabel(req.Gate), resultLabel(parking.ErrInvalidTicket)).Inc()
		WriteError(ctx, w, http.StatusBadRequest, parking.ErrInvalidTicket.Error())
		return
	}

	receipt, err := h.facility.Exit(ctx, req.Gate, req.TicketID, h.now())
	h.metrics.GateOutcomes.WithLabelValues(h.facility.GateLabel(req.Gate), resultLabel(err)).Inc()
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, "Vehicle exited successfully", newReceiptResponse(receipt))
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := h.facility.Status(ctx)
	WriteSuccess(ctx, w, "Status retrieved successfully", newStatusResponse(status))
}

// GetTicket returns an open ticket. With ?gate=<exit> it also quotes the fee
// due at that exit right now.
func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	ticket, err := h.facility.Ticket(id)
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	resp := newTicketResponse(ticket)
	if gate := r.URL.Query().Get("gate"); gate != "" {
		fee, err := h.facility.Quote(ctx, gate, id, h.now())
		if err != nil {
			WriteError(ctx, w, statusFor(err), err.Error())
			return
		}
		resp.FeeDue = fee.String()
	}

	WriteSuccess(ctx, w, "Ticket found", resp)
}

func (h *Handler) FindByLicense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	license := chi.URLParam(r, "license")
	if license == "" {
		WriteError(ctx, w, http.StatusBadRequest, "License is required")
		return
	}

	ticket, err := h.facility.FindByLicense(ctx, license)
	if err != nil {
		WriteError(ctx, w, http.StatusNotFound, "Vehicle not found")
		return
	}

	WriteSuccess(ctx, w, "Vehicle found", newTicketResponse(ticket))
}

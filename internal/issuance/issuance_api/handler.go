package issuance_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"eventgate/internal/auth"
	"eventgate/internal/billing"
	"eventgate/internal/events"
	"eventgate/internal/issuance"
	"eventgate/internal/logger"
	"eventgate/internal/models"
	"eventgate/internal/qr"
	"eventgate/internal/ticketing"
)

type Handler struct {
	IssuanceService *issuance.Service
	EventService    *events.Service
	PlanGate        billing.PlanGate
	Logger          *logger.Logger
}

func NewHandler(issuanceService *issuance.Service, eventService *events.Service, gate billing.PlanGate, log *logger.Logger) *Handler {
	return &Handler{
		IssuanceService: issuanceService,
		EventService:    eventService,
		PlanGate:        gate,
		Logger:          log,
	}
}

// Routes registers the organizer-facing issuance endpoints. Claim is
// registered separately because attendees hit it without a session.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/events/{eventId}/attendees", h.IssueTicket)
	r.Get("/events/{eventId}/attendees", h.ListAttendees)
	r.Delete("/events/{eventId}/attendees/{attendeeId}", h.RemoveAttendee)
	r.Post("/events/{eventId}/attendees/{attendeeId}/complete-reservation", h.CompleteReservation)
	r.Post("/events/{eventId}/attendees/reconcile", h.ReconcileUnsigned)
	r.Post("/events/{eventId}/paper-tickets", h.GeneratePaperTickets)
	r.Get("/events/{eventId}/paper-tickets", h.ListPaperTickets)
}

// PublicRoutes are reachable without an organizer session: the attendee
// claim flow and QR rendering for ticket display.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/events/{eventId}/paper-tickets/{paperId}/claim", h.ClaimPaperTicket)
	r.Get("/tickets/qr", h.RenderQR)
}

func (h *Handler) IssueTicket(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if !h.requireOwnership(w, r, eventID) {
		return
	}

	var req issuance.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	req.EventID = eventID

	attendee, err := h.IssuanceService.IssueTicket(r.Context(), req)
	if err != nil {
		h.writeFailure(w, "IssueTicket", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, attendee)
}

func (h *Handler) ListAttendees(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if !h.requireOwnership(w, r, eventID) {
		return
	}

	attendees, err := h.IssuanceService.ListAttendees(r.Context(), eventID)
	if err != nil {
		h.writeFailure(w, "ListAttendees", err)
		return
	}
	if attendees == nil {
		attendees = []models.Attendee{}
	}
	h.writeJSON(w, http.StatusOK, attendees)
}

func (h *Handler) RemoveAttendee(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if !h.requireOwnership(w, r, eventID) {
		return
	}

	if err := h.IssuanceService.RemoveAttendee(r.Context(), chi.URLParam(r, "attendeeId")); err != nil {
		h.writeFailure(w, "RemoveAttendee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CompleteReservation(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if !h.requireOwnership(w, r, eventID) {
		return
	}

	if err := h.IssuanceService.CompleteReservation(r.Context(), chi.URLParam(r, "attendeeId")); err != nil {
		h.writeFailure(w, "CompleteReservation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ReconcileUnsigned(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if !h.requireOwnership(w, r, eventID) {
		return
	}

	repaired, err := h.IssuanceService.ReconcileUnsigned(r.Context(), eventID)
	if err != nil {
		h.writeFailure(w, "ReconcileUnsigned", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"repaired": repaired})
}

type generateRequest struct {
	Count int `json:"count"`
}

func (h *Handler) GeneratePaperTickets(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	organizerID := auth.UserID(r.Context())
	if !h.requireOwnership(w, r, eventID) {
		return
	}
	if !h.requireFeature(w, r, organizerID, models.FeaturePaperTickets) {
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Count < 1 || req.Count > 1000 {
		http.Error(w, "count must be between 1 and 1000", http.StatusBadRequest)
		return
	}

	issues, err := h.IssuanceService.GeneratePaperTickets(r.Context(), eventID, req.Count)
	if err != nil {
		h.writeFailure(w, "GeneratePaperTickets", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, issues)
}

func (h *Handler) ListPaperTickets(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if !h.requireOwnership(w, r, eventID) {
		return
	}

	tickets, err := h.IssuanceService.ListPaperTickets(r.Context(), eventID)
	if err != nil {
		h.writeFailure(w, "ListPaperTickets", err)
		return
	}
	if tickets == nil {
		tickets = []models.PaperTicket{}
	}
	h.writeJSON(w, http.StatusOK, tickets)
}

func (h *Handler) ClaimPaperTicket(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	paperID := chi.URLParam(r, "paperId")

	var req issuance.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	attendee, err := h.IssuanceService.ClaimPaperTicket(r.Context(), paperID, eventID, req)
	if err != nil {
		h.writeFailure(w, "ClaimPaperTicket", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, attendee)
}

// RenderQR returns a PNG for the given ticket token. The token itself is
// the QR payload, so no lookup is needed.
func (h *Handler) RenderQR(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "token query parameter is required", http.StatusBadRequest)
		return
	}

	png, err := qr.Render(token)
	if err != nil {
		h.writeFailure(w, "RenderQR", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Failed to write QR image: %v", err))
	}
}

func (h *Handler) requireOwnership(w http.ResponseWriter, r *http.Request, eventID string) bool {
	if _, err := h.EventService.VerifyOwnership(r.Context(), eventID, auth.UserID(r.Context())); err != nil {
		h.writeFailure(w, "requireOwnership", err)
		return false
	}
	return true
}

func (h *Handler) requireFeature(w http.ResponseWriter, r *http.Request, organizerID, feature string) bool {
	allowed, err := h.PlanGate.Allows(r.Context(), organizerID, feature)
	if err != nil {
		h.writeFailure(w, "requireFeature", err)
		return false
	}
	if !allowed {
		h.writeJSON(w, http.StatusPaymentRequired, map[string]string{
			"error": fmt.Sprintf("feature %q requires a paid plan", feature),
			"code":  "plan_required",
		})
		return false
	}
	return true
}

func (h *Handler) writeFailure(w http.ResponseWriter, op string, err error) {
	h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
	h.writeJSON(w, ticketing.HTTPStatus(err), map[string]string{
		"error": err.Error(),
		"code":  ticketing.Code(err),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Failed to encode response: %v", err))
	}
}

package tombola_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventgate/internal/auth"
	"eventgate/internal/billing"
	"eventgate/internal/events"
	"eventgate/internal/logger"
	"eventgate/internal/models"
	"eventgate/internal/ticketing"
	"eventgate/internal/tombola"
)

type Handler struct {
	TombolaService *tombola.Service
	EventService   *events.Service
	PlanGate       billing.PlanGate
	Logger         *logger.Logger
}

func NewHandler(tombolaService *tombola.Service, eventService *events.Service, gate billing.PlanGate, log *logger.Logger) *Handler {
	return &Handler{
		TombolaService: tombolaService,
		EventService:   eventService,
		PlanGate:       gate,
		Logger:         log,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/events/{eventId}/tombola/items", h.CreateItem)
	r.Get("/events/{eventId}/tombola/items", h.ListItems)
	r.Delete("/events/{eventId}/tombola/items/{itemId}", h.RemoveItem)
	r.Post("/events/{eventId}/tombola/draw", h.Draw)
	r.Post("/events/{eventId}/tombola/draws/{drawId}/approve", h.Approve)
	r.Post("/events/{eventId}/tombola/draws/{drawId}/reject", h.Reject)
}

type createItemRequest struct {
	Name string `json:"name"`
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if !h.requireTombolaAccess(w, r, eventID) {
		return
	}

	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.TombolaService.CreateItem(r.Context(), eventID, req.Name)
	if err != nil {
		h.writeFailure(w, "CreateItem", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if !h.requireTombolaAccess(w, r, eventID) {
		return
	}

	items, err := h.TombolaService.ListItems(r.Context(), eventID)
	if err != nil {
		h.writeFailure(w, "ListItems", err)
		return
	}
	if items == nil {
		items = []models.TombolaItem{}
	}
	h.writeJSON(w, http.StatusOK, items)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if !h.requireTombolaAccess(w, r, eventID) {
		return
	}

	if err := h.TombolaService.RemoveItem(r.Context(), chi.URLParam(r, "itemId")); err != nil {
		h.writeFailure(w, "RemoveItem", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Draw runs a weighted draw over all items of the event. Results stay
// staged until the organizer approves or rejects them.
func (h *Handler) Draw(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if !h.requireTombolaAccess(w, r, eventID) {
		return
	}

	result, err := h.TombolaService.Draw(r.Context(), eventID)
	if err != nil {
		h.writeFailure(w, "Draw", err)
		return
	}
	h.Logger.LogTombola("draw", eventID, fmt.Sprintf("Staged draw %s with %d results", result.DrawID, len(result.Results)))
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	drawID := chi.URLParam(r, "drawId")
	if !h.requireTombolaAccess(w, r, eventID) {
		return
	}

	if err := h.TombolaService.Approve(r.Context(), drawID); err != nil {
		h.writeFailure(w, "Approve", err)
		return
	}
	h.Logger.LogTombola("approve", eventID, fmt.Sprintf("Committed draw %s", drawID))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	drawID := chi.URLParam(r, "drawId")
	if !h.requireTombolaAccess(w, r, eventID) {
		return
	}

	if err := h.TombolaService.Reject(drawID); err != nil {
		h.writeFailure(w, "Reject", err)
		return
	}
	h.Logger.LogTombola("reject", eventID, fmt.Sprintf("Discarded draw %s", drawID))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireTombolaAccess(w http.ResponseWriter, r *http.Request, eventID string) bool {
	organizerID := auth.UserID(r.Context())
	if _, err := h.EventService.VerifyOwnership(r.Context(), eventID, organizerID); err != nil {
		h.writeFailure(w, "requireTombolaAccess", err)
		return false
	}

	allowed, err := h.PlanGate.Allows(r.Context(), organizerID, models.FeatureTombola)
	if err != nil {
		h.writeFailure(w, "requireTombolaAccess", err)
		return false
	}
	if !allowed {
		h.writeJSON(w, http.StatusPaymentRequired, map[string]string{
			"error": "tombola requires a paid plan",
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

package events_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventgate/internal/auth"
	"eventgate/internal/events"
	"eventgate/internal/logger"
	"eventgate/internal/models"
	"eventgate/internal/ticketing"
)

type Handler struct {
	EventService *events.Service
	Logger       *logger.Logger
}

func NewHandler(eventService *events.Service, log *logger.Logger) *Handler {
	return &Handler{EventService: eventService, Logger: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/events", h.CreateEvent)
	r.Get("/events", h.ListEvents)
	r.Get("/events/{eventId}", h.GetEvent)
	r.Put("/events/{eventId}", h.UpdateEvent)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req events.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	event, err := h.EventService.CreateEvent(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		h.writeFailure(w, "CreateEvent", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, event)
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.EventService.ListEvents(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.writeFailure(w, "ListEvents", err)
		return
	}
	if list == nil {
		list = []models.Event{}
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.EventService.VerifyOwnership(r.Context(), chi.URLParam(r, "eventId"), auth.UserID(r.Context()))
	if err != nil {
		h.writeFailure(w, "GetEvent", err)
		return
	}
	h.writeJSON(w, http.StatusOK, event)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req events.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	event, err := h.EventService.UpdateEvent(r.Context(), chi.URLParam(r, "eventId"), auth.UserID(r.Context()), req)
	if err != nil {
		h.writeFailure(w, "UpdateEvent", err)
		return
	}
	h.writeJSON(w, http.StatusOK, event)
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

package analytics_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventgate/internal/analytics"
	"eventgate/internal/auth"
	"eventgate/internal/events"
	"eventgate/internal/logger"
	"eventgate/internal/ticketing"
)

type Handler struct {
	AnalyticsService *analytics.Service
	EventService     *events.Service
	Logger           *logger.Logger
}

func NewHandler(analyticsService *analytics.Service, eventService *events.Service, log *logger.Logger) *Handler {
	return &Handler{
		AnalyticsService: analyticsService,
		EventService:     eventService,
		Logger:           log,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/events/{eventId}/stats", h.GetEventStats)
}

func (h *Handler) GetEventStats(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	if _, err := h.EventService.VerifyOwnership(r.Context(), eventID, auth.UserID(r.Context())); err != nil {
		h.writeFailure(w, err)
		return
	}

	stats, err := h.AnalyticsService.EventStats(r.Context(), eventID)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Failed to encode stats response: %v", err))
	}
}

func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	h.Logger.Error("API", fmt.Sprintf("GetEventStats: %v", err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ticketing.HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
		"code":  ticketing.Code(err),
	})
}

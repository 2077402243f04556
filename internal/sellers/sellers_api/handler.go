package sellers_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventgate/internal/auth"
	"eventgate/internal/events"
	"eventgate/internal/logger"
	"eventgate/internal/models"
	"eventgate/internal/sellers"
	"eventgate/internal/ticketing"
)

type Handler struct {
	SellerService *sellers.Service
	EventService  *events.Service
	Logger        *logger.Logger
}

func NewHandler(sellerService *sellers.Service, eventService *events.Service, log *logger.Logger) *Handler {
	return &Handler{
		SellerService: sellerService,
		EventService:  eventService,
		Logger:        log,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/events/{eventId}/sellers", h.RegisterSeller)
	r.Get("/events/{eventId}/sellers", h.ListSellers)
	r.Delete("/events/{eventId}/sellers/{sellerId}", h.RemoveSeller)
	r.Get("/events/{eventId}/settlement", h.Settlement)
}

type registerRequest struct {
	Email string `json:"email"`
}

func (h *Handler) RegisterSeller(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if !h.requireOwnership(w, r, eventID) {
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	seller, err := h.SellerService.RegisterSeller(r.Context(), eventID, req.Email)
	if err != nil {
		h.writeFailure(w, "RegisterSeller", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, seller)
}

func (h *Handler) ListSellers(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if !h.requireOwnership(w, r, eventID) {
		return
	}

	list, err := h.SellerService.ListSellers(r.Context(), eventID)
	if err != nil {
		h.writeFailure(w, "ListSellers", err)
		return
	}
	if list == nil {
		list = []models.Seller{}
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) RemoveSeller(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if !h.requireOwnership(w, r, eventID) {
		return
	}

	if err := h.SellerService.RemoveSeller(r.Context(), chi.URLParam(r, "sellerId")); err != nil {
		h.writeFailure(w, "RemoveSeller", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Settlement(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if !h.requireOwnership(w, r, eventID) {
		return
	}

	settlement, err := h.SellerService.Settlement(r.Context(), eventID)
	if err != nil {
		h.writeFailure(w, "Settlement", err)
		return
	}
	h.writeJSON(w, http.StatusOK, settlement)
}

func (h *Handler) requireOwnership(w http.ResponseWriter, r *http.Request, eventID string) bool {
	if _, err := h.EventService.VerifyOwnership(r.Context(), eventID, auth.UserID(r.Context())); err != nil {
		h.writeFailure(w, "requireOwnership", err)
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

package checkin_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventgate/internal/auth"
	"eventgate/internal/checkin"
	"eventgate/internal/events"
	"eventgate/internal/logger"
	"eventgate/internal/sse"
	"eventgate/internal/ticketing"
)

type Handler struct {
	CheckinService *checkin.Service
	EventService   *events.Service
	DoorFeed       *sse.DoorFeed
	Logger         *logger.Logger
}

func NewHandler(checkinService *checkin.Service, eventService *events.Service, doorFeed *sse.DoorFeed, log *logger.Logger) *Handler {
	return &Handler{
		CheckinService: checkinService,
		EventService:   eventService,
		DoorFeed:       doorFeed,
		Logger:         log,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/events/{eventId}/scans/resolve", h.ResolveTicket)
	r.Post("/events/{eventId}/scans/enter", h.MarkEntered)
	r.Post("/events/{eventId}/scans/exit", h.MarkExited)
	r.Get("/events/{eventId}/door-feed", h.HandleDoorFeed)
}

type scanRequest struct {
	ScannedPayload string `json:"scanned_payload"`
	Station        string `json:"station,omitempty"`
}

// ResolveTicket shows door staff who a scanned code belongs to, without
// changing entry state.
func (h *Handler) ResolveTicket(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	req, ok := h.decodeScan(w, r, eventID)
	if !ok {
		return
	}

	view, err := h.CheckinService.Resolve(r.Context(), req.ScannedPayload, eventID)
	if err != nil {
		h.writeFailure(w, "ResolveTicket", err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) MarkEntered(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	req, ok := h.decodeScan(w, r, eventID)
	if !ok {
		return
	}

	view, err := h.CheckinService.MarkEntered(r.Context(), req.ScannedPayload, eventID, req.Station)
	if err != nil {
		h.writeFailure(w, "MarkEntered", err)
		return
	}
	h.Logger.LogScan("entry", view.ID, fmt.Sprintf("%s entered (%d guests)", view.Name, view.GuestCount))
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) MarkExited(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	req, ok := h.decodeScan(w, r, eventID)
	if !ok {
		return
	}

	view, err := h.CheckinService.MarkExited(r.Context(), req.ScannedPayload, eventID, req.Station)
	if err != nil {
		h.writeFailure(w, "MarkExited", err)
		return
	}
	h.Logger.LogScan("exit", view.ID, fmt.Sprintf("%s exited", view.Name))
	h.writeJSON(w, http.StatusOK, view)
}

// HandleDoorFeed streams scan events for an event over SSE to the
// dashboard's live attendance view.
func (h *Handler) HandleDoorFeed(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	if _, err := h.EventService.VerifyOwnership(r.Context(), eventID, auth.UserID(r.Context())); err != nil {
		h.writeFailure(w, "HandleDoorFeed", err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	scanChan := h.DoorFeed.SubscribeToEvent(ctx, eventID)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"eventID\":\"%s\"}\n\n", eventID)
	flusher.Flush()

	h.Logger.Info("SSE", fmt.Sprintf("Client connected to door feed for event: %s", eventID))

	for {
		select {
		case scan, ok := <-scanChan:
			if !ok {
				return
			}
			jsonData, err := json.Marshal(scan)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize scan event: %v", err))
				continue
			}
			fmt.Fprintf(w, "event: scan\ndata: %s\n\n", jsonData)
			flusher.Flush()
		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("Door feed client disconnected for event: %s", eventID))
			return
		}
	}
}

func (h *Handler) decodeScan(w http.ResponseWriter, r *http.Request, eventID string) (*scanRequest, bool) {
	// Door staff auth: the scanning station must belong to the event's
	// organizer.
	if _, err := h.EventService.VerifyOwnership(r.Context(), eventID, auth.UserID(r.Context())); err != nil {
		h.writeFailure(w, "decodeScan", err)
		return nil, false
	}

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if req.ScannedPayload == "" {
		http.Error(w, "scanned_payload is required", http.StatusBadRequest)
		return nil, false
	}
	return &req, true
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

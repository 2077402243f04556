package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"eventgate/internal/models"
	"eventgate/internal/ticketing"
)

type DBLayer interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	ListEventsByOrganizer(ctx context.Context, organizerID string) ([]models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
}

type Service struct {
	DB DBLayer
}

func NewService(db DBLayer) *Service {
	return &Service{DB: db}
}

type CreateRequest struct {
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	Date         time.Time `json:"date"`
	Price        float64   `json:"price"`
	TombolaPrice float64   `json:"tombola_price"`
}

func (s *Service) CreateEvent(ctx context.Context, organizerID string, req CreateRequest) (*models.Event, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("event name is required")
	}
	event := &models.Event{
		ID:           uuid.New().String(),
		OrganizerID:  organizerID,
		Name:         req.Name,
		Location:     req.Location,
		Date:         req.Date,
		Price:        req.Price,
		TombolaPrice: req.TombolaPrice,
	}
	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return s.DB.GetEventByID(ctx, id)
}

func (s *Service) ListEvents(ctx context.Context, organizerID string) ([]models.Event, error) {
	return s.DB.ListEventsByOrganizer(ctx, organizerID)
}

// UpdateEvent rewrites the mutable fields of an event the organizer owns.
func (s *Service) UpdateEvent(ctx context.Context, eventID, organizerID string, req CreateRequest) (*models.Event, error) {
	event, err := s.VerifyOwnership(ctx, eventID, organizerID)
	if err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, fmt.Errorf("event name is required")
	}
	event.Name = req.Name
	event.Location = req.Location
	event.Date = req.Date
	event.Price = req.Price
	event.TombolaPrice = req.TombolaPrice
	if err := s.DB.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

// VerifyOwnership confirms the organizer owns the event before any
// event-scoped operation touches core state.
func (s *Service) VerifyOwnership(ctx context.Context, eventID, organizerID string) (*models.Event, error) {
	event, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != organizerID {
		return nil, fmt.Errorf("event %s: %w", eventID, ticketing.ErrEventMismatch)
	}
	return event, nil
}

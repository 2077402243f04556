package checkin

import (
	"context"
	"fmt"
	"time"

	"eventgate/internal/logger"
	"eventgate/internal/models"
	"eventgate/internal/ticketing"
	"eventgate/internal/token"
)

type AttendeeDBLayer interface {
	GetAttendeeByID(ctx context.Context, id string) (*models.Attendee, error)
	SetEntered(ctx context.Context, id string, entered bool) error
}

type PaperTicketDBLayer interface {
	GetPaperTicketByID(ctx context.Context, id string) (*models.PaperTicket, error)
}

type TicketVerifier interface {
	VerifyTicket(raw string) (token.TicketPayload, error)
}

type ScanPublisher interface {
	PublishScan(scan models.ScanEvent) error
}

type DoorFeed interface {
	Emit(scan models.ScanEvent)
}

type Service struct {
	Attendees AttendeeDBLayer
	Papers    PaperTicketDBLayer
	Tokens    TicketVerifier
	Publisher ScanPublisher
	Feed      DoorFeed
	Logger    *logger.Logger
}

func NewService(attendees AttendeeDBLayer, papers PaperTicketDBLayer, tokens TicketVerifier, publisher ScanPublisher, feed DoorFeed, log *logger.Logger) *Service {
	return &Service{
		Attendees: attendees,
		Papers:    papers,
		Tokens:    tokens,
		Publisher: publisher,
		Feed:      feed,
		Logger:    log,
	}
}

// Resolve maps a scanned payload to the attendee it stands for, scoped to
// expectedEventID. Read-only: safe to call repeatedly from multiple
// scanning stations.
func (s *Service) Resolve(ctx context.Context, scannedPayload, expectedEventID string) (*models.AttendeeView, error) {
	attendee, err := s.resolveAttendee(ctx, scannedPayload, expectedEventID)
	if err != nil {
		return nil, err
	}
	return attendee.View(), nil
}

// MarkEntered re-resolves the ticket and flips the attendee to entered. The
// re-resolution is deliberate: a cached resolution could act on a stale
// paper-ticket binding.
func (s *Service) MarkEntered(ctx context.Context, scannedPayload, expectedEventID, station string) (*models.AttendeeView, error) {
	return s.transition(ctx, scannedPayload, expectedEventID, station, true)
}

// MarkExited re-resolves the ticket and flips the attendee back to not
// entered, allowing re-entry.
func (s *Service) MarkExited(ctx context.Context, scannedPayload, expectedEventID, station string) (*models.AttendeeView, error) {
	return s.transition(ctx, scannedPayload, expectedEventID, station, false)
}

func (s *Service) transition(ctx context.Context, scannedPayload, expectedEventID, station string, entered bool) (*models.AttendeeView, error) {
	attendee, err := s.resolveAttendee(ctx, scannedPayload, expectedEventID)
	if err != nil {
		return nil, err
	}

	if err := s.Attendees.SetEntered(ctx, attendee.ID, entered); err != nil {
		return nil, fmt.Errorf("failed to update entry state for attendee %s: %w", attendee.ID, err)
	}
	attendee.IsEntered = entered

	direction := models.ScanDirectionEntry
	if !entered {
		direction = models.ScanDirectionExit
	}
	scan := models.ScanEvent{
		EventID:    attendee.EventID,
		AttendeeID: attendee.ID,
		Direction:  direction,
		GuestCount: attendee.GuestCount,
		Station:    station,
		ScannedAt:  time.Now().UTC(),
	}

	// Publishing is best effort: the door must keep moving even when the
	// broker is down.
	if s.Publisher != nil {
		if err := s.Publisher.PublishScan(scan); err != nil && s.Logger != nil {
			s.Logger.Error("SCAN", fmt.Sprintf("Failed to publish scan event for attendee %s: %v", attendee.ID, err))
		}
	}
	if s.Feed != nil {
		s.Feed.Emit(scan)
	}

	return attendee.View(), nil
}

func (s *Service) resolveAttendee(ctx context.Context, scannedPayload, expectedEventID string) (*models.Attendee, error) {
	payload, err := s.Tokens.VerifyTicket(scannedPayload)
	if err != nil {
		return nil, err
	}

	var attendeeID string
	switch p := payload.(type) {
	case token.PaperPayload:
		paper, err := s.Papers.GetPaperTicketByID(ctx, p.PaperTicketID)
		if err != nil {
			return nil, err
		}
		if paper.AssignedCustomer == nil {
			return nil, fmt.Errorf("paper ticket %s: %w", paper.NineDigitCode, ticketing.ErrUnclaimed)
		}
		attendeeID = *paper.AssignedCustomer
	case token.DigitalPayload:
		attendeeID = p.AttendeeID
	default:
		return nil, ticketing.ErrInvalidToken
	}

	attendee, err := s.Attendees.GetAttendeeByID(ctx, attendeeID)
	if err != nil {
		return nil, err
	}
	if attendee.Hidden {
		// Soft-deleted attendees no longer grant entry.
		return nil, fmt.Errorf("attendee %s: %w", attendee.ID, ticketing.ErrNotFound)
	}
	if attendee.EventID != expectedEventID {
		return nil, fmt.Errorf("attendee %s: %w", attendee.ID, ticketing.ErrEventMismatch)
	}
	return attendee, nil
}

package issuance

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"eventgate/internal/logger"
	"eventgate/internal/models"
	"eventgate/internal/ticketing"
)

type DBLayer interface {
	CreateAttendee(ctx context.Context, attendee *models.Attendee) error
	UpdateAttendeeToken(ctx context.Context, id, ticketToken string) error
	ListAttendees(ctx context.Context, eventID string) ([]models.Attendee, error)
	ListUnsignedAttendees(ctx context.Context, eventID string) ([]models.Attendee, error)
	HideAttendee(ctx context.Context, id string) error
	ClearReservation(ctx context.Context, id string) error

	PaperCodeExists(ctx context.Context, code string) (bool, error)
	CreatePaperTickets(ctx context.Context, tickets []models.PaperTicket) error
	GetPaperTicketByID(ctx context.Context, id string) (*models.PaperTicket, error)
	ListPaperTickets(ctx context.Context, eventID string) ([]models.PaperTicket, error)
	AssignPaperTicket(ctx context.Context, paperID, attendeeID string) (bool, error)
}

type TicketSigner interface {
	SignDigital(attendeeID string) (string, error)
	SignPaper(paperTicketID, nineDigitCode string) (string, error)
}

type Service struct {
	DB     DBLayer
	Tokens TicketSigner
	Logger *logger.Logger
}

func NewService(db DBLayer, tokens TicketSigner, log *logger.Logger) *Service {
	return &Service{DB: db, Tokens: tokens, Logger: log}
}

// IssueRequest carries the attendee identity fields for a single manual
// issuance from the organizer dashboard.
type IssueRequest struct {
	EventID         string  `json:"event_id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	GuestCount      int     `json:"guest_count"`
	Reservation     bool    `json:"reservation"`
	SellerID        string  `json:"seller_id,omitempty"`
	TombolaSellerID string  `json:"tombola_seller_id,omitempty"`
	TombolaWeight   float64 `json:"tombola_weight,omitempty"`
}

// IssueTicket creates an attendee record with a signed digital ticket. The
// attendee id is allocated client-side so the token can be signed before the
// insert, keeping issuance a single write instead of insert-sign-update.
func (s *Service) IssueTicket(ctx context.Context, req IssueRequest) (*models.Attendee, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("attendee name is required")
	}
	if req.GuestCount < 1 {
		req.GuestCount = 1
	}
	if req.TombolaWeight < 0 {
		return nil, fmt.Errorf("tombola weight must not be negative")
	}

	id := uuid.New().String()
	signed, err := s.Tokens.SignDigital(id)
	if err != nil {
		return nil, fmt.Errorf("failed to sign ticket: %w", err)
	}

	attendee := &models.Attendee{
		ID:              id,
		EventID:         req.EventID,
		Name:            req.Name,
		Email:           req.Email,
		GuestCount:      req.GuestCount,
		TicketToken:     signed,
		Reservation:     req.Reservation,
		SellerID:        req.SellerID,
		TombolaSellerID: req.TombolaSellerID,
		TombolaWeight:   req.TombolaWeight,
	}

	if err := s.DB.CreateAttendee(ctx, attendee); err != nil {
		return nil, fmt.Errorf("failed to create attendee: %w", err)
	}
	if s.Logger != nil {
		s.Logger.LogIssuance("DIGITAL", attendee.ID, fmt.Sprintf("Issued ticket for %s (%d guests)", attendee.Name, attendee.GuestCount))
	}
	return attendee, nil
}

// ListAttendees returns the non-hidden attendees of an event.
func (s *Service) ListAttendees(ctx context.Context, eventID string) ([]models.Attendee, error) {
	return s.DB.ListAttendees(ctx, eventID)
}

// RemoveAttendee soft-deletes an attendee; the record stays for settlement.
func (s *Service) RemoveAttendee(ctx context.Context, id string) error {
	return s.DB.HideAttendee(ctx, id)
}

// CompleteReservation promotes a reservation to a full ticket once checkout
// finished.
func (s *Service) CompleteReservation(ctx context.Context, id string) error {
	return s.DB.ClearReservation(ctx, id)
}

// ReconcileUnsigned signs tokens for attendee rows that have none. Such rows
// can only come from an interrupted writer; absence of a token marks an
// incomplete issuance, and this sweep is the safe retry.
func (s *Service) ReconcileUnsigned(ctx context.Context, eventID string) (int, error) {
	unsigned, err := s.DB.ListUnsignedAttendees(ctx, eventID)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, attendee := range unsigned {
		signed, err := s.Tokens.SignDigital(attendee.ID)
		if err != nil {
			return repaired, fmt.Errorf("failed to sign ticket for attendee %s: %w", attendee.ID, err)
		}
		if err := s.DB.UpdateAttendeeToken(ctx, attendee.ID, signed); err != nil {
			return repaired, fmt.Errorf("failed to store ticket for attendee %s: %w", attendee.ID, err)
		}
		repaired++
	}
	if s.Logger != nil && repaired > 0 {
		s.Logger.LogIssuance("RECONCILE", eventID, fmt.Sprintf("Signed %d token-less attendee records", repaired))
	}
	return repaired, nil
}

// ClaimRequest carries the attendee identity for binding a paper ticket.
type ClaimRequest struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	GuestCount      int     `json:"guest_count"`
	SellerID        string  `json:"seller_id,omitempty"`
	TombolaSellerID string  `json:"tombola_seller_id,omitempty"`
	TombolaWeight   float64 `json:"tombola_weight,omitempty"`
}

// ClaimPaperTicket binds a pre-printed paper ticket to a new attendee
// record. A paper ticket can be claimed exactly once; the assigned-customer
// field is never cleared or reassigned afterwards.
func (s *Service) ClaimPaperTicket(ctx context.Context, paperID, expectedEventID string, req ClaimRequest) (*models.Attendee, error) {
	paper, err := s.DB.GetPaperTicketByID(ctx, paperID)
	if err != nil {
		return nil, err
	}
	if paper.EventID != expectedEventID {
		return nil, fmt.Errorf("paper ticket %s: %w", paper.NineDigitCode, ticketing.ErrEventMismatch)
	}
	if paper.AssignedCustomer != nil {
		return nil, fmt.Errorf("paper ticket %s: %w", paper.NineDigitCode, ticketing.ErrAlreadyClaimed)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("attendee name is required")
	}
	if req.GuestCount < 1 {
		req.GuestCount = 1
	}

	// The attendee carries the paper ticket's own token: binding is the one
	// case where a record's token originates outside its own issuance.
	attendee := &models.Attendee{
		ID:              uuid.New().String(),
		EventID:         paper.EventID,
		Name:            req.Name,
		Email:           req.Email,
		GuestCount:      req.GuestCount,
		TicketToken:     paper.TicketToken,
		PaperCode:       paper.NineDigitCode,
		SellerID:        req.SellerID,
		TombolaSellerID: req.TombolaSellerID,
		TombolaWeight:   req.TombolaWeight,
	}
	if err := s.DB.CreateAttendee(ctx, attendee); err != nil {
		return nil, fmt.Errorf("failed to create attendee: %w", err)
	}

	assigned, err := s.DB.AssignPaperTicket(ctx, paper.ID, attendee.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to bind paper ticket %s: %w", paper.ID, err)
	}
	if !assigned {
		// Lost a race against another claim. Hide the orphaned attendee so
		// it never shows up in listings or settlement.
		_ = s.DB.HideAttendee(ctx, attendee.ID)
		return nil, fmt.Errorf("paper ticket %s: %w", paper.NineDigitCode, ticketing.ErrAlreadyClaimed)
	}

	if s.Logger != nil {
		s.Logger.LogIssuance("CLAIM", paper.ID, fmt.Sprintf("Paper code %s bound to attendee %s", paper.NineDigitCode, attendee.ID))
	}
	return attendee, nil
}

// ListPaperTickets returns all pre-generated paper tickets of an event.
func (s *Service) ListPaperTickets(ctx context.Context, eventID string) ([]models.PaperTicket, error) {
	return s.DB.ListPaperTickets(ctx, eventID)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	// lib/pq: "duplicate key value violates unique constraint"
	// sqlite:  "UNIQUE constraint failed"
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

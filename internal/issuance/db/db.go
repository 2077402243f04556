package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"eventgate/internal/models"
	"eventgate/internal/ticketing"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- ATTENDEES ----------------

func (d *DB) CreateAttendee(ctx context.Context, attendee *models.Attendee) error {
	_, err := d.Bun.NewInsert().Model(attendee).Exec(ctx)
	return err
}

func (d *DB) UpdateAttendeeToken(ctx context.Context, id, ticketToken string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Attendee)(nil)).
		Set("ticket_token = ?", ticketToken).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// ListAttendees → all non-hidden attendees of an event, newest first
func (d *DB) ListAttendees(ctx context.Context, eventID string) ([]models.Attendee, error) {
	var attendees []models.Attendee
	err := d.Bun.NewSelect().
		Model(&attendees).
		Where("event_id = ?", eventID).
		Where("hidden = ?", false).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return attendees, nil
}

// ListUnsignedAttendees → rows left token-less by an interrupted issuance
func (d *DB) ListUnsignedAttendees(ctx context.Context, eventID string) ([]models.Attendee, error) {
	var attendees []models.Attendee
	err := d.Bun.NewSelect().
		Model(&attendees).
		Where("event_id = ?", eventID).
		Where("hidden = ?", false).
		Where("ticket_token = '' OR ticket_token IS NULL").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return attendees, nil
}

// HideAttendee → soft delete; the record stays for settlement
func (d *DB) HideAttendee(ctx context.Context, id string) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Attendee)(nil)).
		Set("hidden = ?", true).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("attendee %s: %w", id, ticketing.ErrNotFound)
	}
	return nil
}

func (d *DB) ClearReservation(ctx context.Context, id string) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Attendee)(nil)).
		Set("reservation = ?", false).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("attendee %s: %w", id, ticketing.ErrNotFound)
	}
	return nil
}

// ---------------- PAPER TICKETS ----------------

// PaperCodeExists checks a candidate 9-digit code against all existing
// codes, across all events.
func (d *DB) PaperCodeExists(ctx context.Context, code string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.PaperTicket)(nil)).
		Where("nine_digit_code = ?", code).
		Exists(ctx)
}

func (d *DB) CreatePaperTickets(ctx context.Context, tickets []models.PaperTicket) error {
	if len(tickets) == 0 {
		return nil
	}
	_, err := d.Bun.NewInsert().Model(&tickets).Exec(ctx)
	return err
}

func (d *DB) GetPaperTicketByID(ctx context.Context, id string) (*models.PaperTicket, error) {
	var paper models.PaperTicket
	err := d.Bun.NewSelect().
		Model(&paper).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("paper ticket %s: %w", id, ticketing.ErrNotFound)
		}
		return nil, err
	}
	return &paper, nil
}

func (d *DB) ListPaperTickets(ctx context.Context, eventID string) ([]models.PaperTicket, error) {
	var tickets []models.PaperTicket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// AssignPaperTicket sets the assigned-customer binding, guarded so the
// transition from null happens exactly once. Returns false when another
// claim already won.
func (d *DB) AssignPaperTicket(ctx context.Context, paperID, attendeeID string) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.PaperTicket)(nil)).
		Set("assigned_customer = ?", attendeeID).
		Where("id = ?", paperID).
		Where("assigned_customer IS NULL").
		Exec(ctx)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

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

// GetAttendeeByID → fetch one attendee by its ID
func (d *DB) GetAttendeeByID(ctx context.Context, id string) (*models.Attendee, error) {
	var attendee models.Attendee
	err := d.Bun.NewSelect().
		Model(&attendee).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("attendee %s: %w", id, ticketing.ErrNotFound)
		}
		return nil, err
	}
	return &attendee, nil
}

// GetPaperTicketByID → fetch one paper ticket by its ID
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

// SetEntered → unconditional write of the entry flag; last write wins across
// scanning stations.
func (d *DB) SetEntered(ctx context.Context, id string, entered bool) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Attendee)(nil)).
		Set("is_entered = ?", entered).
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

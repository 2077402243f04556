package db

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"eventgate/internal/models"
	"eventgate/internal/ticketing"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateItem(ctx context.Context, item *models.TombolaItem) error {
	_, err := d.Bun.NewInsert().Model(item).Exec(ctx)
	return err
}

func (d *DB) ListItems(ctx context.Context, eventID string) ([]models.TombolaItem, error) {
	var items []models.TombolaItem
	err := d.Bun.NewSelect().
		Model(&items).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (d *DB) RemoveItem(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.TombolaItem)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("tombola item %s: %w", id, ticketing.ErrNotFound)
	}
	return nil
}

func (d *DB) SetItemWinner(ctx context.Context, itemID, winnerID string) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.TombolaItem)(nil)).
		Set("winner_id = ?", winnerID).
		Where("id = ?", itemID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("tombola item %s: %w", itemID, ticketing.ErrNotFound)
	}
	return nil
}

// ListEntrants → attendees holding at least one raffle entry
func (d *DB) ListEntrants(ctx context.Context, eventID string) ([]models.Attendee, error) {
	var attendees []models.Attendee
	err := d.Bun.NewSelect().
		Model(&attendees).
		Where("event_id = ?", eventID).
		Where("hidden = ?", false).
		Where("tombola_weight > 0").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return attendees, nil
}

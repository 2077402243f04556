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

func (d *DB) CreateSeller(ctx context.Context, seller *models.Seller) error {
	_, err := d.Bun.NewInsert().Model(seller).Exec(ctx)
	return err
}

func (d *DB) ListSellers(ctx context.Context, eventID string) ([]models.Seller, error) {
	var sellers []models.Seller
	err := d.Bun.NewSelect().
		Model(&sellers).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return sellers, nil
}

func (d *DB) RemoveSeller(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Seller)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("seller %s: %w", id, ticketing.ErrNotFound)
	}
	return nil
}

func (d *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", email, ticketing.ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event %s: %w", id, ticketing.ErrNotFound)
		}
		return nil, err
	}
	return &event, nil
}

// CountTicketsSold → non-reservation, non-hidden attendees sold by a seller
func (d *DB) CountTicketsSold(ctx context.Context, eventID, sellerID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Attendee)(nil)).
		Where("event_id = ?", eventID).
		Where("seller_id = ?", sellerID).
		Where("reservation = ?", false).
		Where("hidden = ?", false).
		Count(ctx)
}

// CountReservations → reservation-flagged attendees sold by a seller
func (d *DB) CountReservations(ctx context.Context, eventID, sellerID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Attendee)(nil)).
		Where("event_id = ?", eventID).
		Where("seller_id = ?", sellerID).
		Where("reservation = ?", true).
		Where("hidden = ?", false).
		Count(ctx)
}

// SumTombolaWeight → raffle entries attributed on the independent tombola
// seller axis
func (d *DB) SumTombolaWeight(ctx context.Context, eventID, tombolaSellerID string) (float64, error) {
	var sum sql.NullFloat64
	err := d.Bun.NewSelect().
		Model((*models.Attendee)(nil)).
		ColumnExpr("SUM(tombola_weight)").
		Where("event_id = ?", eventID).
		Where("tombola_seller_id = ?", tombolaSellerID).
		Where("hidden = ?", false).
		Scan(ctx, &sum)
	if err != nil {
		return 0, err
	}
	if !sum.Valid {
		return 0, nil
	}
	return sum.Float64, nil
}

package analytics

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"eventgate/internal/models"
)

// Service aggregates live attendance numbers for the organizer dashboard.
type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// EventStats is the dashboard headline block for one event.
type EventStats struct {
	EventID          string  `json:"event_id"`
	TicketsIssued    int     `json:"tickets_issued"`
	GuestsExpected   int     `json:"guests_expected"`
	Entered          int     `json:"entered"`
	GuestsInside     int     `json:"guests_inside"`
	OpenReservations int     `json:"open_reservations"`
	PaperUnclaimed   int     `json:"paper_unclaimed"`
	TombolaPot       float64 `json:"tombola_pot"`
}

func (s *Service) EventStats(ctx context.Context, eventID string) (*EventStats, error) {
	stats := &EventStats{EventID: eventID}

	err := s.db.NewSelect().
		Model((*models.Attendee)(nil)).
		ColumnExpr("COUNT(*) AS tickets_issued").
		ColumnExpr("COALESCE(SUM(guest_count), 0) AS guests_expected").
		ColumnExpr("COUNT(*) FILTER (WHERE is_entered) AS entered").
		ColumnExpr("COALESCE(SUM(guest_count) FILTER (WHERE is_entered), 0) AS guests_inside").
		ColumnExpr("COUNT(*) FILTER (WHERE reservation) AS open_reservations").
		ColumnExpr("COALESCE(SUM(tombola_weight), 0) AS tombola_pot").
		Where("event_id = ?", eventID).
		Where("hidden = ?", false).
		Scan(ctx, &stats.TicketsIssued, &stats.GuestsExpected, &stats.Entered,
			&stats.GuestsInside, &stats.OpenReservations, &stats.TombolaPot)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate attendance stats: %w", err)
	}

	unclaimed, err := s.db.NewSelect().
		Model((*models.PaperTicket)(nil)).
		Where("event_id = ?", eventID).
		Where("assigned_customer IS NULL").
		Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count unclaimed paper tickets: %w", err)
	}
	stats.PaperUnclaimed = unclaimed

	return stats, nil
}

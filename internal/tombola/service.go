package tombola

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventgate/internal/logger"
	"eventgate/internal/models"
	"eventgate/internal/ticketing"
)

type DBLayer interface {
	CreateItem(ctx context.Context, item *models.TombolaItem) error
	ListItems(ctx context.Context, eventID string) ([]models.TombolaItem, error)
	RemoveItem(ctx context.Context, id string) error
	SetItemWinner(ctx context.Context, itemID, winnerID string) error
	ListEntrants(ctx context.Context, eventID string) ([]models.Attendee, error)
}

// Service runs tombola draws. Draws are staged in memory and only written
// to the item records on approval: draws are re-rolled live in front of an
// audience before being finalized.
type Service struct {
	DB     DBLayer
	Logger *logger.Logger

	mu     sync.Mutex
	staged map[string]*stagedDraw
	rng    *rand.Rand
}

type stagedDraw struct {
	eventID string
	results []models.TombolaDrawResult
}

func NewService(db DBLayer, log *logger.Logger) *Service {
	return &Service{
		DB:     db,
		Logger: log,
		staged: make(map[string]*stagedDraw),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type DrawResult struct {
	DrawID  string                     `json:"draw_id"`
	EventID string                     `json:"event_id"`
	Results []models.TombolaDrawResult `json:"results"`
}

func (s *Service) CreateItem(ctx context.Context, eventID, name string) (*models.TombolaItem, error) {
	if name == "" {
		return nil, fmt.Errorf("item name is required")
	}
	item := &models.TombolaItem{
		ID:      uuid.New().String(),
		EventID: eventID,
		Name:    name,
	}
	if err := s.DB.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create tombola item: %w", err)
	}
	return item, nil
}

func (s *Service) ListItems(ctx context.Context, eventID string) ([]models.TombolaItem, error) {
	return s.DB.ListItems(ctx, eventID)
}

func (s *Service) RemoveItem(ctx context.Context, id string) error {
	return s.DB.RemoveItem(ctx, id)
}

// Draw picks a winner per item, weighted by tombola weight. Attendees with
// zero weight have zero probability. The result is staged, not persisted.
func (s *Service) Draw(ctx context.Context, eventID string) (*DrawResult, error) {
	items, err := s.DB.ListItems(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("event %s has no tombola items: %w", eventID, ticketing.ErrNotFound)
	}

	entrants, err := s.DB.ListEntrants(ctx, eventID)
	if err != nil {
		return nil, err
	}
	var total float64
	for _, e := range entrants {
		total += e.TombolaWeight
	}
	if total <= 0 {
		return nil, fmt.Errorf("event %s has no tombola entries: %w", eventID, ticketing.ErrNotFound)
	}

	results := make([]models.TombolaDrawResult, 0, len(items))
	for _, item := range items {
		winner := s.pickWeighted(entrants, total)
		results = append(results, models.TombolaDrawResult{
			ItemID:      item.ID,
			ItemName:    item.Name,
			WinnerID:    winner.ID,
			WinnerName:  winner.Name,
			WinnerEmail: winner.Email,
		})
	}

	drawID := uuid.New().String()
	s.mu.Lock()
	s.staged[drawID] = &stagedDraw{eventID: eventID, results: results}
	s.mu.Unlock()

	if s.Logger != nil {
		s.Logger.LogTombola("DRAW", eventID, fmt.Sprintf("Staged draw %s for %d items", drawID, len(items)))
	}
	return &DrawResult{DrawID: drawID, EventID: eventID, Results: results}, nil
}

// Approve commits a staged draw's winners to the item records.
func (s *Service) Approve(ctx context.Context, drawID string) error {
	s.mu.Lock()
	draw, ok := s.staged[drawID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("draw %s: %w", drawID, ticketing.ErrNotFound)
	}

	for _, result := range draw.results {
		if err := s.DB.SetItemWinner(ctx, result.ItemID, result.WinnerID); err != nil {
			return fmt.Errorf("failed to persist winner for item %s: %w", result.ItemID, err)
		}
	}

	s.mu.Lock()
	delete(s.staged, drawID)
	s.mu.Unlock()

	if s.Logger != nil {
		s.Logger.LogTombola("APPROVE", draw.eventID, fmt.Sprintf("Committed draw %s", drawID))
	}
	return nil
}

// Reject discards a staged draw with no persistence, allowing a re-draw.
func (s *Service) Reject(drawID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.staged[drawID]; !ok {
		return fmt.Errorf("draw %s: %w", drawID, ticketing.ErrNotFound)
	}
	delete(s.staged, drawID)
	return nil
}

func (s *Service) pickWeighted(entrants []models.Attendee, total float64) *models.Attendee {
	s.mu.Lock()
	r := s.rng.Float64() * total
	s.mu.Unlock()

	for i := range entrants {
		if entrants[i].TombolaWeight <= 0 {
			continue
		}
		r -= entrants[i].TombolaWeight
		if r < 0 {
			return &entrants[i]
		}
	}
	// floating point edge: fall back to the last weighted entrant
	for i := len(entrants) - 1; i >= 0; i-- {
		if entrants[i].TombolaWeight > 0 {
			return &entrants[i]
		}
	}
	return &entrants[0]
}

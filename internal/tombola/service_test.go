package tombola_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventgate/internal/models"
	"eventgate/internal/ticketing"
	"eventgate/internal/tombola"
)

type fakeTombolaDB struct {
	mu       sync.Mutex
	items    map[string]*models.TombolaItem
	entrants []models.Attendee
}

func newFakeTombolaDB() *fakeTombolaDB {
	return &fakeTombolaDB{items: make(map[string]*models.TombolaItem)}
}

func (f *fakeTombolaDB) CreateItem(ctx context.Context, item *models.TombolaItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeTombolaDB) ListItems(ctx context.Context, eventID string) ([]models.TombolaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TombolaItem
	for _, item := range f.items {
		if item.EventID == eventID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeTombolaDB) RemoveItem(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

func (f *fakeTombolaDB) SetItemWinner(ctx context.Context, itemID, winnerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[itemID]
	if !ok {
		return ticketing.ErrNotFound
	}
	item.WinnerID = &winnerID
	return nil
}

func (f *fakeTombolaDB) ListEntrants(ctx context.Context, eventID string) ([]models.Attendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Attendee
	for _, a := range f.entrants {
		if a.EventID == eventID && !a.Hidden && a.TombolaWeight > 0 {
			out = append(out, a)
		}
	}
	return out, nil
}

func seedEntrants(db *fakeTombolaDB, eventID string, weights map[string]float64) {
	for name, weight := range weights {
		db.entrants = append(db.entrants, models.Attendee{
			ID:            uuid.New().String(),
			EventID:       eventID,
			Name:          name,
			GuestCount:    1,
			TombolaWeight: weight,
		})
	}
}

func TestDrawStagesWithoutPersisting(t *testing.T) {
	db := newFakeTombolaDB()
	svc := tombola.NewService(db, nil)
	ctx := context.Background()
	eventID := uuid.New().String()

	_, err := svc.CreateItem(ctx, eventID, "Gift Basket")
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, eventID, "Wine Bottle")
	require.NoError(t, err)
	seedEntrants(db, eventID, map[string]float64{"Anna": 5, "Ben": 3, "Cleo": 0})

	draw, err := svc.Draw(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, draw.Results, 2)

	for _, result := range draw.Results {
		assert.NotEmpty(t, result.WinnerID)
		// zero-weight attendees must never win
		assert.NotEqual(t, "Cleo", result.WinnerName)
	}

	// nothing persisted before approval
	items, err := db.ListItems(ctx, eventID)
	require.NoError(t, err)
	for _, item := range items {
		assert.Nil(t, item.WinnerID)
	}
}

func TestApproveCommitsWinners(t *testing.T) {
	db := newFakeTombolaDB()
	svc := tombola.NewService(db, nil)
	ctx := context.Background()
	eventID := uuid.New().String()

	_, err := svc.CreateItem(ctx, eventID, "Gift Basket")
	require.NoError(t, err)
	seedEntrants(db, eventID, map[string]float64{"Anna": 2})

	draw, err := svc.Draw(ctx, eventID)
	require.NoError(t, err)

	require.NoError(t, svc.Approve(ctx, draw.DrawID))

	items, err := db.ListItems(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].WinnerID)
	assert.Equal(t, draw.Results[0].WinnerID, *items[0].WinnerID)

	// an approved draw is gone; approving again fails
	err = svc.Approve(ctx, draw.DrawID)
	assert.True(t, errors.Is(err, ticketing.ErrNotFound))
}

func TestRejectDiscardsDraw(t *testing.T) {
	db := newFakeTombolaDB()
	svc := tombola.NewService(db, nil)
	ctx := context.Background()
	eventID := uuid.New().String()

	_, err := svc.CreateItem(ctx, eventID, "Gift Basket")
	require.NoError(t, err)
	seedEntrants(db, eventID, map[string]float64{"Anna": 2, "Ben": 1})

	draw, err := svc.Draw(ctx, eventID)
	require.NoError(t, err)

	require.NoError(t, svc.Reject(draw.DrawID))

	items, err := db.ListItems(ctx, eventID)
	require.NoError(t, err)
	assert.Nil(t, items[0].WinnerID)

	// a rejected draw cannot be approved, but a re-draw works
	err = svc.Approve(ctx, draw.DrawID)
	assert.True(t, errors.Is(err, ticketing.ErrNotFound))

	_, err = svc.Draw(ctx, eventID)
	assert.NoError(t, err)
}

func TestDrawWithoutEntriesFails(t *testing.T) {
	db := newFakeTombolaDB()
	svc := tombola.NewService(db, nil)
	ctx := context.Background()
	eventID := uuid.New().String()

	_, err := svc.CreateItem(ctx, eventID, "Gift Basket")
	require.NoError(t, err)
	seedEntrants(db, eventID, map[string]float64{"Cleo": 0})

	_, err = svc.Draw(ctx, eventID)
	assert.True(t, errors.Is(err, ticketing.ErrNotFound))
}

func TestWeightedDrawFavorsHeavierEntrants(t *testing.T) {
	db := newFakeTombolaDB()
	svc := tombola.NewService(db, nil)
	ctx := context.Background()
	eventID := uuid.New().String()

	_, err := svc.CreateItem(ctx, eventID, "Prize")
	require.NoError(t, err)
	seedEntrants(db, eventID, map[string]float64{"Heavy": 99, "Light": 1})

	wins := map[string]int{}
	for i := 0; i < 200; i++ {
		draw, err := svc.Draw(ctx, eventID)
		require.NoError(t, err)
		wins[draw.Results[0].WinnerName]++
		require.NoError(t, svc.Reject(draw.DrawID))
	}
	assert.Greater(t, wins["Heavy"], wins["Light"])
}

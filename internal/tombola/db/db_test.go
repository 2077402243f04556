package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"eventgate/internal/models"
	"eventgate/internal/ticketing"
	"eventgate/internal/tombola/db"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	if err := bunDB.ResetModel(context.Background(), (*models.TombolaItem)(nil)); err != nil {
		t.Fatalf("Failed to create tombola_items table: %v", err)
	}
	if err := bunDB.ResetModel(context.Background(), (*models.Attendee)(nil)); err != nil {
		t.Fatalf("Failed to create attendees table: %v", err)
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func TestItemLifecycle(t *testing.T) {
	tombolaDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	eventID := uuid.New().String()
	item := models.TombolaItem{
		ID:      uuid.New().String(),
		EventID: eventID,
		Name:    "Wellness weekend",
	}
	require.NoError(t, tombolaDB.CreateItem(context.Background(), &item))

	items, err := tombolaDB.ListItems(context.Background(), eventID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Wellness weekend", items[0].Name)
	assert.Nil(t, items[0].WinnerID)

	err = tombolaDB.SetItemWinner(context.Background(), item.ID, "attendee-1")
	require.NoError(t, err)

	items, err = tombolaDB.ListItems(context.Background(), eventID)
	require.NoError(t, err)
	require.NotNil(t, items[0].WinnerID)
	assert.Equal(t, "attendee-1", *items[0].WinnerID)

	require.NoError(t, tombolaDB.RemoveItem(context.Background(), item.ID))

	err = tombolaDB.RemoveItem(context.Background(), item.ID)
	assert.True(t, errors.Is(err, ticketing.ErrNotFound))
}

func TestSetItemWinnerMissing(t *testing.T) {
	tombolaDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	err := tombolaDB.SetItemWinner(context.Background(), "missing", "attendee-1")
	assert.True(t, errors.Is(err, ticketing.ErrNotFound))
}

func TestListEntrants(t *testing.T) {
	tombolaDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	eventID := uuid.New().String()
	attendees := []models.Attendee{
		{ID: uuid.New().String(), EventID: eventID, Name: "Buyer", GuestCount: 1, TombolaWeight: 3},
		{ID: uuid.New().String(), EventID: eventID, Name: "No entries", GuestCount: 1, TombolaWeight: 0},
		{ID: uuid.New().String(), EventID: eventID, Name: "Hidden buyer", GuestCount: 1, TombolaWeight: 2, Hidden: true},
		{ID: uuid.New().String(), EventID: uuid.New().String(), Name: "Other event", GuestCount: 1, TombolaWeight: 5},
	}
	_, err := bunDB.NewInsert().Model(&attendees).Exec(context.Background())
	require.NoError(t, err)

	entrants, err := tombolaDB.ListEntrants(context.Background(), eventID)
	require.NoError(t, err)
	require.Len(t, entrants, 1)
	assert.Equal(t, "Buyer", entrants[0].Name)
}

package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"eventgate/internal/models"
	"eventgate/internal/sellers/db"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	for _, model := range []interface{}{
		(*models.Seller)(nil),
		(*models.User)(nil),
		(*models.Event)(nil),
		(*models.Attendee)(nil),
	} {
		if err := bunDB.ResetModel(context.Background(), model); err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func TestCreateAndListSellers(t *testing.T) {
	sellersDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()
	eventID := uuid.New().String()

	seller := &models.Seller{ID: uuid.New().String(), EventID: eventID, Email: "anna@example.com"}
	require.NoError(t, sellersDB.CreateSeller(ctx, seller))

	got, err := sellersDB.ListSellers(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "anna@example.com", got[0].Email)

	require.NoError(t, sellersDB.RemoveSeller(ctx, seller.ID))
	got, err = sellersDB.ListSellers(ctx, eventID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSettlementCounts(t *testing.T) {
	sellersDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()
	eventID := uuid.New().String()
	sellerID := uuid.New().String()

	attendees := []models.Attendee{
		{ID: uuid.New().String(), EventID: eventID, Name: "A", GuestCount: 1, TicketToken: "t1", SellerID: sellerID},
		{ID: uuid.New().String(), EventID: eventID, Name: "B", GuestCount: 1, TicketToken: "t2", SellerID: sellerID},
		{ID: uuid.New().String(), EventID: eventID, Name: "C", GuestCount: 1, TicketToken: "t3", SellerID: sellerID, Reservation: true},
		{ID: uuid.New().String(), EventID: eventID, Name: "D", GuestCount: 1, TicketToken: "t4", SellerID: sellerID, Hidden: true},
		// tombola sold by this seller for a ticket sold by someone else
		{ID: uuid.New().String(), EventID: eventID, Name: "E", GuestCount: 1, TicketToken: "t5", TombolaSellerID: sellerID, TombolaWeight: 3},
		{ID: uuid.New().String(), EventID: eventID, Name: "F", GuestCount: 1, TicketToken: "t6", TombolaSellerID: sellerID, TombolaWeight: 2},
	}
	for i := range attendees {
		_, err := bunDB.NewInsert().Model(&attendees[i]).Exec(ctx)
		require.NoError(t, err)
	}

	sold, err := sellersDB.CountTicketsSold(ctx, eventID, sellerID)
	require.NoError(t, err)
	assert.Equal(t, 2, sold)

	reservations, err := sellersDB.CountReservations(ctx, eventID, sellerID)
	require.NoError(t, err)
	assert.Equal(t, 1, reservations)

	weight, err := sellersDB.SumTombolaWeight(ctx, eventID, sellerID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, weight)

	// seller with no attributed records at all
	sold, err = sellersDB.CountTicketsSold(ctx, eventID, "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, sold)

	weight, err = sellersDB.SumTombolaWeight(ctx, eventID, "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0.0, weight)
}

func TestGetUserAndEvent(t *testing.T) {
	sellersDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	user := models.User{ID: uuid.New().String(), Email: "anna@example.com", FullName: "Anna Roth", CreatedAt: time.Now()}
	_, err := bunDB.NewInsert().Model(&user).Exec(ctx)
	require.NoError(t, err)

	event := models.Event{ID: uuid.New().String(), OrganizerID: "org", Name: "Sommerfest", Date: time.Now(), Price: 12, TombolaPrice: 1}
	_, err = bunDB.NewInsert().Model(&event).Exec(ctx)
	require.NoError(t, err)

	gotUser, err := sellersDB.GetUserByEmail(ctx, "anna@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, gotUser.ID)

	gotEvent, err := sellersDB.GetEventByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.0, gotEvent.Price)
}

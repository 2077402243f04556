package db_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"eventgate/internal/issuance/db"
	"eventgate/internal/models"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	if err := bunDB.ResetModel(context.Background(), (*models.Attendee)(nil)); err != nil {
		t.Fatalf("Failed to create attendees table: %v", err)
	}
	if err := bunDB.ResetModel(context.Background(), (*models.PaperTicket)(nil)); err != nil {
		t.Fatalf("Failed to create paper_tickets table: %v", err)
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func TestCreateAndListAttendees(t *testing.T) {
	issuanceDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()
	eventID := uuid.New().String()

	visible := &models.Attendee{
		ID:          uuid.New().String(),
		EventID:     eventID,
		Name:        "Visible",
		GuestCount:  1,
		TicketToken: "tok-1",
	}
	hidden := &models.Attendee{
		ID:          uuid.New().String(),
		EventID:     eventID,
		Name:        "Hidden",
		GuestCount:  1,
		TicketToken: "tok-2",
		Hidden:      true,
	}
	require.NoError(t, issuanceDB.CreateAttendee(ctx, visible))
	require.NoError(t, issuanceDB.CreateAttendee(ctx, hidden))

	attendees, err := issuanceDB.ListAttendees(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, attendees, 1)
	assert.Equal(t, "Visible", attendees[0].Name)
}

func TestHideAndClearReservation(t *testing.T) {
	issuanceDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()
	eventID := uuid.New().String()

	attendee := &models.Attendee{
		ID:          uuid.New().String(),
		EventID:     eventID,
		Name:        "R",
		GuestCount:  1,
		TicketToken: "tok",
		Reservation: true,
	}
	require.NoError(t, issuanceDB.CreateAttendee(ctx, attendee))

	require.NoError(t, issuanceDB.ClearReservation(ctx, attendee.ID))
	attendees, err := issuanceDB.ListAttendees(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, attendees, 1)
	assert.False(t, attendees[0].Reservation)

	require.NoError(t, issuanceDB.HideAttendee(ctx, attendee.ID))
	attendees, err = issuanceDB.ListAttendees(ctx, eventID)
	require.NoError(t, err)
	assert.Empty(t, attendees)
}

func TestListUnsignedAttendees(t *testing.T) {
	issuanceDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()
	eventID := uuid.New().String()

	unsigned := &models.Attendee{
		ID:         uuid.New().String(),
		EventID:    eventID,
		Name:       "No Token",
		GuestCount: 1,
	}
	signed := &models.Attendee{
		ID:          uuid.New().String(),
		EventID:     eventID,
		Name:        "Signed",
		GuestCount:  1,
		TicketToken: "tok",
	}
	require.NoError(t, issuanceDB.CreateAttendee(ctx, unsigned))
	require.NoError(t, issuanceDB.CreateAttendee(ctx, signed))

	rows, err := issuanceDB.ListUnsignedAttendees(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, unsigned.ID, rows[0].ID)

	require.NoError(t, issuanceDB.UpdateAttendeeToken(ctx, unsigned.ID, "new-tok"))
	rows, err = issuanceDB.ListUnsignedAttendees(ctx, eventID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPaperCodeUniqueness(t *testing.T) {
	issuanceDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	first := []models.PaperTicket{{
		ID:            uuid.New().String(),
		EventID:       "event-a",
		NineDigitCode: "123456789",
		TicketToken:   "tok-1",
	}}
	require.NoError(t, issuanceDB.CreatePaperTickets(ctx, first))

	exists, err := issuanceDB.PaperCodeExists(ctx, "123456789")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = issuanceDB.PaperCodeExists(ctx, "987654321")
	require.NoError(t, err)
	assert.False(t, exists)

	// The unique index is global: the same code for a different event is
	// rejected too.
	dup := []models.PaperTicket{{
		ID:            uuid.New().String(),
		EventID:       "event-b",
		NineDigitCode: "123456789",
		TicketToken:   "tok-2",
	}}
	err = issuanceDB.CreatePaperTickets(ctx, dup)
	assert.Error(t, err)
}

func TestAssignPaperTicketExactlyOnce(t *testing.T) {
	issuanceDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	paper := models.PaperTicket{
		ID:            uuid.New().String(),
		EventID:       "event-a",
		NineDigitCode: "111222333",
		TicketToken:   "tok",
	}
	require.NoError(t, issuanceDB.CreatePaperTickets(ctx, []models.PaperTicket{paper}))

	assigned, err := issuanceDB.AssignPaperTicket(ctx, paper.ID, "attendee-1")
	require.NoError(t, err)
	assert.True(t, assigned)

	// the binding never transitions twice
	assigned, err = issuanceDB.AssignPaperTicket(ctx, paper.ID, "attendee-2")
	require.NoError(t, err)
	assert.False(t, assigned)

	got, err := issuanceDB.GetPaperTicketByID(ctx, paper.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedCustomer)
	assert.Equal(t, "attendee-1", *got.AssignedCustomer)
}

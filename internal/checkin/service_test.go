package checkin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"eventgate/internal/checkin"
	"eventgate/internal/models"
	"eventgate/internal/ticketing"
	"eventgate/internal/token"
)

// MockAttendeeDB is a mock implementation of the AttendeeDBLayer interface
type MockAttendeeDB struct {
	mock.Mock
}

func (m *MockAttendeeDB) GetAttendeeByID(ctx context.Context, id string) (*models.Attendee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attendee), args.Error(1)
}

func (m *MockAttendeeDB) SetEntered(ctx context.Context, id string, entered bool) error {
	args := m.Called(ctx, id, entered)
	return args.Error(0)
}

// MockPaperDB is a mock implementation of the PaperTicketDBLayer interface
type MockPaperDB struct {
	mock.Mock
}

func (m *MockPaperDB) GetPaperTicketByID(ctx context.Context, id string) (*models.PaperTicket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaperTicket), args.Error(1)
}

// MockPublisher records scan events instead of writing to Kafka
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishScan(scan models.ScanEvent) error {
	args := m.Called(scan)
	return args.Error(0)
}

func newService(attendees *MockAttendeeDB, papers *MockPaperDB, tokens *token.Service, publisher *MockPublisher) *checkin.Service {
	var pub checkin.ScanPublisher
	if publisher != nil {
		pub = publisher
	}
	return &checkin.Service{
		Attendees: attendees,
		Papers:    papers,
		Tokens:    tokens,
		Publisher: pub,
	}
}

func TestResolveDigitalTicket(t *testing.T) {
	tokens := token.NewService("test-secret")
	attendeeID := uuid.New().String()
	eventID := uuid.New().String()

	signed, err := tokens.SignDigital(attendeeID)
	require.NoError(t, err)

	attendee := &models.Attendee{
		ID:         attendeeID,
		EventID:    eventID,
		Name:       "Jonas Becker",
		Email:      "jonas@example.com",
		GuestCount: 2,
	}

	mockDB := new(MockAttendeeDB)
	mockDB.On("GetAttendeeByID", mock.Anything, attendeeID).Return(attendee, nil)

	svc := newService(mockDB, new(MockPaperDB), tokens, nil)

	view, err := svc.Resolve(context.Background(), signed, eventID)
	require.NoError(t, err)
	assert.Equal(t, attendeeID, view.ID)
	assert.Equal(t, 2, view.GuestCount)
	assert.False(t, view.IsEntered)
	mockDB.AssertExpectations(t)
}

func TestResolveEventMismatch(t *testing.T) {
	tokens := token.NewService("test-secret")
	attendeeID := uuid.New().String()

	signed, err := tokens.SignDigital(attendeeID)
	require.NoError(t, err)

	attendee := &models.Attendee{ID: attendeeID, EventID: "event-a", Name: "X", GuestCount: 1}

	mockDB := new(MockAttendeeDB)
	mockDB.On("GetAttendeeByID", mock.Anything, attendeeID).Return(attendee, nil)

	svc := newService(mockDB, new(MockPaperDB), tokens, nil)

	// A ticket valid for event A must not be accepted at event B's door,
	// and the failure must say "wrong event", not "fake ticket".
	_, err = svc.Resolve(context.Background(), signed, "event-b")
	assert.True(t, errors.Is(err, ticketing.ErrEventMismatch))
	assert.False(t, errors.Is(err, ticketing.ErrInvalidToken))
}

func TestResolveInvalidToken(t *testing.T) {
	tokens := token.NewService("test-secret")
	svc := newService(new(MockAttendeeDB), new(MockPaperDB), tokens, nil)

	_, err := svc.Resolve(context.Background(), "garbage", "event-a")
	assert.True(t, errors.Is(err, ticketing.ErrInvalidToken))
}

func TestResolveUnclaimedPaperTicket(t *testing.T) {
	tokens := token.NewService("test-secret")
	paperID := uuid.New().String()

	signed, err := tokens.SignPaper(paperID, "123456789")
	require.NoError(t, err)

	paper := &models.PaperTicket{
		ID:            paperID,
		EventID:       "event-a",
		NineDigitCode: "123456789",
	}

	mockPapers := new(MockPaperDB)
	mockPapers.On("GetPaperTicketByID", mock.Anything, paperID).Return(paper, nil)

	svc := newService(new(MockAttendeeDB), mockPapers, tokens, nil)

	_, err = svc.Resolve(context.Background(), signed, "event-a")
	assert.True(t, errors.Is(err, ticketing.ErrUnclaimed))
	assert.False(t, errors.Is(err, ticketing.ErrNotFound))
}

func TestResolveClaimedPaperTicket(t *testing.T) {
	tokens := token.NewService("test-secret")
	paperID := uuid.New().String()
	attendeeID := uuid.New().String()
	eventID := uuid.New().String()

	signed, err := tokens.SignPaper(paperID, "987654321")
	require.NoError(t, err)

	paper := &models.PaperTicket{
		ID:               paperID,
		EventID:          eventID,
		NineDigitCode:    "987654321",
		AssignedCustomer: &attendeeID,
	}
	attendee := &models.Attendee{
		ID:         attendeeID,
		EventID:    eventID,
		Name:       "Mara Vogel",
		GuestCount: 1,
		PaperCode:  "987654321",
	}

	mockPapers := new(MockPaperDB)
	mockPapers.On("GetPaperTicketByID", mock.Anything, paperID).Return(paper, nil)
	mockDB := new(MockAttendeeDB)
	mockDB.On("GetAttendeeByID", mock.Anything, attendeeID).Return(attendee, nil)

	svc := newService(mockDB, mockPapers, tokens, nil)

	view, err := svc.Resolve(context.Background(), signed, eventID)
	require.NoError(t, err)
	assert.Equal(t, attendeeID, view.ID)
	assert.Equal(t, "987654321", view.PaperCode)
}

func TestResolveHiddenAttendee(t *testing.T) {
	tokens := token.NewService("test-secret")
	attendeeID := uuid.New().String()

	signed, err := tokens.SignDigital(attendeeID)
	require.NoError(t, err)

	attendee := &models.Attendee{ID: attendeeID, EventID: "event-a", Hidden: true}

	mockDB := new(MockAttendeeDB)
	mockDB.On("GetAttendeeByID", mock.Anything, attendeeID).Return(attendee, nil)

	svc := newService(mockDB, new(MockPaperDB), tokens, nil)

	_, err = svc.Resolve(context.Background(), signed, "event-a")
	assert.True(t, errors.Is(err, ticketing.ErrNotFound))
}

func TestEntryExitCycle(t *testing.T) {
	tokens := token.NewService("test-secret")
	attendeeID := uuid.New().String()
	eventID := uuid.New().String()

	signed, err := tokens.SignDigital(attendeeID)
	require.NoError(t, err)

	attendee := &models.Attendee{ID: attendeeID, EventID: eventID, Name: "X", GuestCount: 1}

	mockDB := new(MockAttendeeDB)
	mockDB.On("GetAttendeeByID", mock.Anything, attendeeID).Return(attendee, nil)
	mockDB.On("SetEntered", mock.Anything, attendeeID, true).Return(nil)
	mockDB.On("SetEntered", mock.Anything, attendeeID, false).Return(nil)

	publisher := new(MockPublisher)
	publisher.On("PublishScan", mock.Anything).Return(nil)

	svc := newService(mockDB, new(MockPaperDB), tokens, publisher)
	ctx := context.Background()

	// entered → exited → entered, no error at any step
	view, err := svc.MarkEntered(ctx, signed, eventID, "door-1")
	require.NoError(t, err)
	assert.True(t, view.IsEntered)

	view, err = svc.MarkExited(ctx, signed, eventID, "door-1")
	require.NoError(t, err)
	assert.False(t, view.IsEntered)

	view, err = svc.MarkEntered(ctx, signed, eventID, "door-2")
	require.NoError(t, err)
	assert.True(t, view.IsEntered)

	mockDB.AssertNumberOfCalls(t, "SetEntered", 3)
	publisher.AssertNumberOfCalls(t, "PublishScan", 3)
}

func TestTransitionAbortsOnResolutionFailure(t *testing.T) {
	tokens := token.NewService("test-secret")
	attendeeID := uuid.New().String()

	signed, err := tokens.SignDigital(attendeeID)
	require.NoError(t, err)

	attendee := &models.Attendee{ID: attendeeID, EventID: "event-a"}

	mockDB := new(MockAttendeeDB)
	mockDB.On("GetAttendeeByID", mock.Anything, attendeeID).Return(attendee, nil)

	svc := newService(mockDB, new(MockPaperDB), tokens, nil)

	_, err = svc.MarkEntered(context.Background(), signed, "event-b", "")
	assert.True(t, errors.Is(err, ticketing.ErrEventMismatch))
	// no SetEntered expectation set: the mock would fail the test on a write
	mockDB.AssertExpectations(t)
}

func TestTransitionSurvivesPublishFailure(t *testing.T) {
	tokens := token.NewService("test-secret")
	attendeeID := uuid.New().String()
	eventID := uuid.New().String()

	signed, err := tokens.SignDigital(attendeeID)
	require.NoError(t, err)

	attendee := &models.Attendee{ID: attendeeID, EventID: eventID, GuestCount: 1}

	mockDB := new(MockAttendeeDB)
	mockDB.On("GetAttendeeByID", mock.Anything, attendeeID).Return(attendee, nil)
	mockDB.On("SetEntered", mock.Anything, attendeeID, true).Return(nil)

	publisher := new(MockPublisher)
	publisher.On("PublishScan", mock.Anything).Return(errors.New("broker down"))

	svc := newService(mockDB, new(MockPaperDB), tokens, publisher)

	view, err := svc.MarkEntered(context.Background(), signed, eventID, "door-1")
	require.NoError(t, err)
	assert.True(t, view.IsEntered)
}

package token_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventgate/internal/ticketing"
	"eventgate/internal/token"
)

func TestSignAndVerifyDigital(t *testing.T) {
	svc := token.NewService("test-secret")
	attendeeID := uuid.New().String()

	signed, err := svc.SignDigital(attendeeID)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	payload, err := svc.VerifyTicket(signed)
	require.NoError(t, err)

	digital, ok := payload.(token.DigitalPayload)
	require.True(t, ok, "expected a digital payload")
	assert.Equal(t, attendeeID, digital.AttendeeID)
}

func TestSignAndVerifyPaper(t *testing.T) {
	svc := token.NewService("test-secret")
	paperID := uuid.New().String()

	signed, err := svc.SignPaper(paperID, "123456789")
	require.NoError(t, err)

	payload, err := svc.VerifyTicket(signed)
	require.NoError(t, err)

	paper, ok := payload.(token.PaperPayload)
	require.True(t, ok, "expected a paper payload")
	assert.Equal(t, paperID, paper.PaperTicketID)
	assert.Equal(t, "123456789", paper.NineDigitCode)
}

func TestVerifyRejectsTampering(t *testing.T) {
	svc := token.NewService("test-secret")
	other := token.NewService("other-secret")

	signed, err := svc.SignDigital(uuid.New().String())
	require.NoError(t, err)

	_, err = other.VerifyTicket(signed)
	assert.True(t, errors.Is(err, ticketing.ErrInvalidToken))

	_, err = svc.VerifyTicket("not-a-token")
	assert.True(t, errors.Is(err, ticketing.ErrInvalidToken))

	_, err = svc.VerifyTicket(signed + "x")
	assert.True(t, errors.Is(err, ticketing.ErrInvalidToken))
}

func TestTicketTokensDoNotExpire(t *testing.T) {
	svc := token.NewService("test-secret")

	signed, err := svc.SignDigital(uuid.New().String())
	require.NoError(t, err)

	// An identity token parsed as a ticket would carry an expiry; a ticket
	// token must verify without one.
	_, err = svc.VerifyTicket(signed)
	assert.NoError(t, err)
}

// The two token families must never cross over: a dashboard session token
// scanned at the door is not a ticket, and a ticket pasted into an
// Authorization header is not a session.
func TestTokenFamiliesAreDistinct(t *testing.T) {
	svc := token.NewService("test-secret")

	identity, err := svc.SignIdentity(uuid.New().String(), true, time.Hour)
	require.NoError(t, err)

	_, err = svc.VerifyTicket(identity)
	assert.True(t, errors.Is(err, ticketing.ErrInvalidToken))

	ticket, err := svc.SignDigital(uuid.New().String())
	require.NoError(t, err)

	_, err = svc.VerifyIdentity(ticket)
	assert.True(t, errors.Is(err, ticketing.ErrInvalidToken))
}

func TestIdentityTokenExpiry(t *testing.T) {
	svc := token.NewService("test-secret")
	userID := uuid.New().String()

	signed, err := svc.SignIdentity(userID, true, time.Hour)
	require.NoError(t, err)

	claims, err := svc.VerifyIdentity(signed)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
	assert.True(t, claims.Verified)

	expired, err := svc.SignIdentity(userID, true, -time.Minute)
	require.NoError(t, err)

	_, err = svc.VerifyIdentity(expired)
	assert.True(t, errors.Is(err, ticketing.ErrInvalidToken))
}

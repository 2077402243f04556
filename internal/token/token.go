package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"eventgate/internal/ticketing"
)

// Service signs and verifies the two token families the system uses:
// ticket tokens (no expiry, embedded in QR codes) and identity tokens
// (expiring, used for dashboard sessions).
type Service struct {
	secret []byte
}

func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

// TicketPayload is the decoded content of a verified ticket token. The two
// variants are distinct types so callers branch on the variant explicitly
// instead of probing optional fields.
type TicketPayload interface {
	isTicketPayload()
}

// DigitalPayload carries the attendee id directly.
type DigitalPayload struct {
	AttendeeID string
}

// PaperPayload carries the paper-ticket id; the attendee must be resolved
// through the paper ticket's assigned-customer binding.
type PaperPayload struct {
	PaperTicketID string
	NineDigitCode string
}

func (DigitalPayload) isTicketPayload() {}
func (PaperPayload) isTicketPayload()   {}

// Token family discriminators. Each Verify rejects the other family's
// tokens outright, so a leaked session token can never pass as a ticket.
const (
	typTicket   = "ticket"
	typIdentity = "identity"
)

type ticketClaims struct {
	Typ   string `json:"typ"`
	Paper bool   `json:"paper"`
	Code  string `json:"code,omitempty"`
	jwt.RegisteredClaims
}

// SignDigital signs a ticket token for an attendee record. Ticket tokens
// carry no expiry: the ticket stays scannable for the lifetime of the event.
func (s *Service) SignDigital(attendeeID string) (string, error) {
	claims := ticketClaims{
		Typ:   typTicket,
		Paper: false,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  attendeeID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	return s.sign(claims)
}

// SignPaper signs a ticket token for a pre-generated paper ticket. The
// payload is fixed at pre-generation time, before any attendee is bound.
func (s *Service) SignPaper(paperTicketID, nineDigitCode string) (string, error) {
	claims := ticketClaims{
		Typ:   typTicket,
		Paper: true,
		Code:  nineDigitCode,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  paperTicketID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	return s.sign(claims)
}

// VerifyTicket verifies a scanned payload and returns its decoded variant.
// Any signature or format failure maps to ticketing.ErrInvalidToken.
func (s *Service) VerifyTicket(raw string) (TicketPayload, error) {
	var claims ticketClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ticketing.ErrInvalidToken, err)
	}
	if !tok.Valid || claims.Subject == "" || claims.Typ != typTicket {
		return nil, ticketing.ErrInvalidToken
	}
	if claims.Paper {
		return PaperPayload{PaperTicketID: claims.Subject, NineDigitCode: claims.Code}, nil
	}
	return DigitalPayload{AttendeeID: claims.Subject}, nil
}

// IdentityClaims is the payload of an expiring dashboard session token.
type IdentityClaims struct {
	Typ      string `json:"typ"`
	Verified bool   `json:"verified"`
	jwt.RegisteredClaims
}

// SignIdentity signs an identity token for a user with the given TTL.
func (s *Service) SignIdentity(userID string, verified bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := IdentityClaims{
		Typ:      typIdentity,
		Verified: verified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return s.sign(claims)
}

// VerifyIdentity verifies an identity token, rejecting expired ones.
func (s *Service) VerifyIdentity(raw string) (*IdentityClaims, error) {
	var claims IdentityClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ticketing.ErrInvalidToken, err)
	}
	if !tok.Valid || claims.Subject == "" || claims.Typ != typIdentity {
		return nil, ticketing.ErrInvalidToken
	}
	return &claims, nil
}

func (s *Service) sign(claims jwt.Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) keyFunc(t *jwt.Token) (interface{}, error) {
	return s.secret, nil
}

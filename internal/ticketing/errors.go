package ticketing

import (
	"errors"
	"net/http"
)

// Failure taxonomy for the ticketing core. Handlers map these to distinct
// HTTP statuses and machine-readable codes so the door UI can branch on the
// failure kind instead of matching error strings.
var (
	// ErrInvalidToken means the scanned payload failed signature or format
	// verification. Never retried automatically.
	ErrInvalidToken = errors.New("invalid ticket token")

	// ErrNotFound means a referenced record is absent.
	ErrNotFound = errors.New("record not found")

	// ErrUnclaimed means a paper ticket has not been bound to an attendee yet.
	// Surfaced distinctly from ErrNotFound so the door UI can prompt a claim
	// flow instead of showing a generic "invalid ticket" message.
	ErrUnclaimed = errors.New("paper ticket not claimed")

	// ErrEventMismatch means the ticket is valid but belongs to a different
	// event. Must never be conflated with ErrInvalidToken: staff should see
	// "wrong event", not "fake ticket".
	ErrEventMismatch = errors.New("ticket belongs to a different event")

	// ErrAlreadyClaimed means a paper ticket is already bound to an attendee.
	ErrAlreadyClaimed = errors.New("paper ticket already claimed")

	// ErrExhaustedRetries means paper-code generation hit its retry cap
	// without finding a free code.
	ErrExhaustedRetries = errors.New("exhausted retries generating paper code")
)

// Code returns the machine-readable failure code for an error from the
// ticketing core, or "internal_error" for anything outside the taxonomy.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnclaimed):
		return "unclaimed"
	case errors.Is(err, ErrEventMismatch):
		return "event_mismatch"
	case errors.Is(err, ErrAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, ErrExhaustedRetries):
		return "exhausted_retries"
	default:
		return "internal_error"
	}
}

// HTTPStatus returns the HTTP status a handler should respond with for an
// error from the ticketing core.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnclaimed):
		return http.StatusConflict
	case errors.Is(err, ErrEventMismatch):
		return http.StatusForbidden
	case errors.Is(err, ErrAlreadyClaimed):
		return http.StatusConflict
	case errors.Is(err, ErrExhaustedRetries):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

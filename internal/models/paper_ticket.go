package models

import (
	"time"

	"github.com/uptrace/bun"
)

type PaperTicket struct {
	bun.BaseModel `bun:"table:paper_tickets"`

	ID      string `bun:"id,pk" json:"id"`
	EventID string `bun:"event_id,notnull" json:"event_id"`

	// NineDigitCode is printed on the physical ticket. Unique across the
	// whole system, not just per event.
	NineDigitCode string `bun:"nine_digit_code,unique,notnull" json:"nine_digit_code"`

	// TicketToken is fixed at pre-generation time, before any attendee is
	// bound. It embeds the paper ticket's own id, not an attendee id.
	TicketToken string `bun:"ticket_token,notnull" json:"-"`

	// AssignedCustomer transitions from null to an attendee id exactly once,
	// at claim time, and is never cleared or reassigned.
	AssignedCustomer *string `bun:"assigned_customer" json:"assigned_customer,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// PaperTicketIssue is one printable unit returned by bulk pre-generation.
type PaperTicketIssue struct {
	PaperTicketID string `json:"paper_ticket_id"`
	NineDigitCode string `json:"nine_digit_code"`
	TicketToken   string `json:"ticket_token"`
}

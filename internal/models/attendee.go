package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Attendee struct {
	bun.BaseModel `bun:"table:attendees"`

	ID         string `bun:"id,pk" json:"id"`
	EventID    string `bun:"event_id,notnull" json:"event_id"`
	Name       string `bun:"name,notnull" json:"name"`
	Email      string `bun:"email" json:"email"`
	GuestCount int    `bun:"guest_count,notnull" json:"guest_count"`

	// TicketToken is the signed ticket embedded in the attendee's QR code.
	// Empty only while an issuance is incomplete (see ReconcileUnsigned).
	TicketToken string `bun:"ticket_token" json:"-"`
	// PaperCode is set when the attendee was created by claiming a
	// pre-printed paper ticket.
	PaperCode string `bun:"paper_code,nullzero" json:"paper_code,omitempty"`

	IsEntered   bool `bun:"is_entered" json:"is_entered"`
	Reservation bool `bun:"reservation" json:"reservation"`
	Hidden      bool `bun:"hidden" json:"-"`

	// Seller attribution. The tombola axis is independent: a raffle ticket
	// can be sold by a different seller than the event ticket.
	SellerID        string  `bun:"seller_id,nullzero" json:"seller_id,omitempty"`
	TombolaSellerID string  `bun:"tombola_seller_id,nullzero" json:"tombola_seller_id,omitempty"`
	TombolaWeight   float64 `bun:"tombola_weight" json:"tombola_weight"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// AttendeeView is the read-only projection shown to door staff after a scan.
type AttendeeView struct {
	ID            string  `json:"id"`
	EventID       string  `json:"event_id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	GuestCount    int     `json:"guest_count"`
	IsEntered     bool    `json:"is_entered"`
	Reservation   bool    `json:"reservation"`
	SellerID      string  `json:"seller_id,omitempty"`
	TombolaWeight float64 `json:"tombola_weight"`
	PaperCode     string  `json:"paper_code,omitempty"`
}

// View builds the door-staff projection of an attendee record.
func (a *Attendee) View() *AttendeeView {
	return &AttendeeView{
		ID:            a.ID,
		EventID:       a.EventID,
		Name:          a.Name,
		Email:         a.Email,
		GuestCount:    a.GuestCount,
		IsEntered:     a.IsEntered,
		Reservation:   a.Reservation,
		SellerID:      a.SellerID,
		TombolaWeight: a.TombolaWeight,
		PaperCode:     a.PaperCode,
	}
}

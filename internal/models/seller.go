package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Seller is an (event, email) pair rather than a user reference: a seller
// need not have registered an account yet when the organizer adds them.
type Seller struct {
	bun.BaseModel `bun:"table:sellers"`

	ID        string    `bun:"id,pk" json:"id"`
	EventID   string    `bun:"event_id,notnull" json:"event_id"`
	Email     string    `bun:"email,notnull" json:"email"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// SellerSettlement is the per-seller payout summary for an event.
type SellerSettlement struct {
	Email        string  `json:"email"`
	Registered   bool    `json:"registered"`
	TicketsSold  int     `json:"tickets_sold"`
	Reservations int     `json:"reservations"`
	TombolaSold  float64 `json:"tombola_sold"`
	AmountOwed   float64 `json:"amount_owed"`
}

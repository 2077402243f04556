package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Plan feature identifiers gated by the subscription paywall.
const (
	FeaturePaperTickets = "paper_tickets"
	FeatureTombola      = "tombola"
)

// OrganizerPlan mirrors the organizer's subscription state, kept current by
// the Stripe webhook so plan checks never block on the payment processor.
type OrganizerPlan struct {
	bun.BaseModel `bun:"table:organizer_plans"`

	OrganizerID      string    `bun:"organizer_id,pk" json:"organizer_id"`
	StripeCustomerID string    `bun:"stripe_customer_id" json:"stripe_customer_id"`
	Plan             string    `bun:"plan" json:"plan"`
	Active           bool      `bun:"active" json:"active"`
	UpdatedAt        time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

package billing

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"eventgate/internal/models"
)

// PlanGate answers whether an organizer's subscription covers a feature.
// The ticketing core never talks to the payment processor; handlers consult
// the gate at the boundary.
type PlanGate interface {
	Allows(ctx context.Context, organizerID, feature string) (bool, error)
}

// OpenGate allows everything; used when billing is disabled (self-hosted).
type OpenGate struct{}

func (OpenGate) Allows(ctx context.Context, organizerID, feature string) (bool, error) {
	return true, nil
}

// DBGate reads the organizer's mirrored plan state. The Stripe webhook
// keeps the mirror current, so a plan check is a single local read.
type DBGate struct {
	Bun *bun.DB
}

func (g *DBGate) Allows(ctx context.Context, organizerID, feature string) (bool, error) {
	var plan models.OrganizerPlan
	err := g.Bun.NewSelect().
		Model(&plan).
		Where("organizer_id = ?", organizerID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No subscription record at all: free tier, gated features off.
			return false, nil
		}
		return false, err
	}
	if !plan.Active {
		return false, nil
	}
	switch feature {
	case models.FeaturePaperTickets, models.FeatureTombola:
		return plan.Plan == "pro" || plan.Plan == "premium", nil
	default:
		return true, nil
	}
}

// SetPlan upserts the mirrored plan state; called by the webhook handler.
func (g *DBGate) SetPlan(ctx context.Context, plan *models.OrganizerPlan) error {
	_, err := g.Bun.NewInsert().
		Model(plan).
		On("CONFLICT (organizer_id) DO UPDATE").
		Set("stripe_customer_id = EXCLUDED.stripe_customer_id").
		Set("plan = EXCLUDED.plan").
		Set("active = EXCLUDED.active").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// GetPlan returns the mirrored plan state for an organizer, or nil when the
// organizer has never subscribed.
func (g *DBGate) GetPlan(ctx context.Context, organizerID string) (*models.OrganizerPlan, error) {
	var plan models.OrganizerPlan
	err := g.Bun.NewSelect().
		Model(&plan).
		Where("organizer_id = ?", organizerID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

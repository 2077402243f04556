package billing

import (
	"errors"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"eventgate/internal/logger"
)

var ErrStripeClientInitFailed = errors.New("failed to initialize Stripe client")

// StripeService wraps the Stripe client for subscription lookups. Used by
// the webhook handler to confirm subscription state before mirroring it.
type StripeService struct {
	client *client.API
	log    *logger.Logger
}

func NewStripeService(secretKey string, log *logger.Logger) (*StripeService, error) {
	if secretKey == "" {
		if log != nil {
			log.Error("STRIPE", "Stripe secret key not configured")
		}
		return nil, ErrStripeClientInitFailed
	}

	sc := client.New(secretKey, nil)
	if sc == nil {
		return nil, ErrStripeClientInitFailed
	}

	if log != nil {
		log.Info("STRIPE", "Stripe client initialized successfully")
	}
	return &StripeService{client: sc, log: log}, nil
}

// HasActiveSubscription checks whether the customer holds any active
// subscription on Stripe's side.
func (s *StripeService) HasActiveSubscription(customerID string) (bool, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Limit = stripe.Int64(1)

	iter := s.client.Subscriptions.List(params)
	for iter.Next() {
		return true, nil
	}
	if err := iter.Err(); err != nil {
		return false, err
	}
	return false, nil
}

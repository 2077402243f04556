package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"

	"eventgate/internal/billing"
	"eventgate/internal/logger"
	"eventgate/internal/models"
)

// WebhookHandler mirrors Stripe subscription lifecycle events into the
// organizer plan table. It runs on the billing listener, separate from the
// dashboard API.
type WebhookHandler struct {
	gate   *billing.DBGate
	stripe *billing.StripeService
	logger *logger.Logger
}

func NewWebhookHandler(gate *billing.DBGate, stripeService *billing.StripeService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		gate:   gate,
		stripe: stripeService,
		logger: log,
	}
}

func (h *WebhookHandler) Register(r *gin.Engine) {
	r.POST("/billing/webhook", h.HandleWebhook)
	r.GET("/billing/plan/:organizerId", h.GetPlan)
}

// Serve starts the billing listener on its own port and returns the server
// so the caller can shut it down alongside the main API.
func (h *WebhookHandler) Serve(addr string) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	h.Register(engine)

	server := &http.Server{
		Addr:    addr,
		Handler: engine,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("BILLING", fmt.Sprintf("Billing listener error: %v", err))
		}
	}()
	return server
}

// HandleWebhook processes subscription created/updated/deleted events.
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	var event stripe.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload"})
		return
	}

	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
	default:
		// Not a subscription event; acknowledge and move on.
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.logger.Error("STRIPE", fmt.Sprintf("Failed to parse subscription from event %s: %v", event.ID, err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription payload"})
		return
	}

	organizerID := sub.Metadata["organizer_id"]
	if organizerID == "" {
		h.logger.Warn("STRIPE", fmt.Sprintf("Subscription %s carries no organizer_id metadata", sub.ID))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	active := sub.Status == stripe.SubscriptionStatusActive || sub.Status == stripe.SubscriptionStatusTrialing
	// Double-check against Stripe on deletions: webhook ordering is not
	// guaranteed and a stale delete must not strip an active plan.
	if event.Type == "customer.subscription.deleted" && h.stripe != nil && sub.Customer != nil {
		confirmed, err := h.stripe.HasActiveSubscription(sub.Customer.ID)
		if err != nil {
			h.logger.Error("STRIPE", fmt.Sprintf("Failed to confirm subscription state for %s: %v", sub.Customer.ID, err))
		} else {
			active = confirmed
		}
	}

	plan := &models.OrganizerPlan{
		OrganizerID: organizerID,
		Plan:        sub.Metadata["plan"],
		Active:      active,
		UpdatedAt:   time.Now().UTC(),
	}
	if sub.Customer != nil {
		plan.StripeCustomerID = sub.Customer.ID
	}

	if err := h.gate.SetPlan(c.Request.Context(), plan); err != nil {
		h.logger.Error("STRIPE", fmt.Sprintf("Failed to store plan for organizer %s: %v", organizerID, err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store plan"})
		return
	}

	h.logger.Info("STRIPE", fmt.Sprintf("Plan for organizer %s set to %s (active=%t)", organizerID, plan.Plan, plan.Active))
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// GetPlan exposes the mirrored plan state to the dashboard.
func (h *WebhookHandler) GetPlan(c *gin.Context) {
	organizerID := c.Param("organizerId")

	plan, err := h.gate.GetPlan(c.Request.Context(), organizerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load plan"})
		return
	}
	if plan == nil {
		c.JSON(http.StatusOK, gin.H{"organizer_id": organizerID, "plan": "free", "active": false})
		return
	}
	c.JSON(http.StatusOK, plan)
}

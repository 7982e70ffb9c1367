package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vitrinelabs/vitrine/app/models"
)

// WebhookOutcome reports what a webhook notification did. Found=false is
// not an error: notifications can arrive for payments created outside this
// system or before the payment row is visible.
type WebhookOutcome struct {
	Found     bool
	Processed bool
	Action    string
}

// HandlePaymentWebhook reconciles a provider payment notification against
// local state. It is safe to call any number of times for the same
// notification; every side effect is gated on a conditional state
// transition.
func (s *Service) HandlePaymentWebhook(ctx context.Context, providerPaymentID string) (*WebhookOutcome, error) {
	payment, err := s.repos.Payment.GetByProviderPaymentID(providerPaymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("webhook: no local payment for provider id %s", providerPaymentID)
			return &WebhookOutcome{Found: false}, nil
		}
		return nil, err
	}

	status, err := s.provider.GetPayment(ctx, providerPaymentID)
	if err != nil {
		return nil, fmt.Errorf("webhook: provider status lookup: %w", err)
	}

	switch status.Status {
	case "approved":
		if err := s.confirmPayment(payment); err != nil {
			return nil, err
		}
		return &WebhookOutcome{Found: true, Processed: true, Action: "confirmed"}, nil
	case "rejected", "cancelled":
		reason := status.Status
		if status.StatusDetail != "" {
			reason = fmt.Sprintf("%s (%s)", status.Status, status.StatusDetail)
		}
		if err := s.repos.Payment.MarkFailed(payment.ID, reason); err != nil {
			return nil, err
		}
		return &WebhookOutcome{Found: true, Processed: true, Action: "failed"}, nil
	default:
		// pending, in_process and friends carry no state change yet.
		return &WebhookOutcome{Found: true, Processed: true, Action: "ignored"}, nil
	}
}

// confirmPayment marks the payment and order paid and runs the order-type
// specific side effects exactly once. MarkPaidIfPending is the gate: a
// replayed notification finds the order already PAID and does nothing.
func (s *Service) confirmPayment(payment *models.Payment) error {
	if err := s.repos.Payment.MarkPaid(payment.ID); err != nil {
		return err
	}

	transitioned, err := s.repos.Order.MarkPaidIfPending(payment.OrderID)
	if err != nil {
		return err
	}
	if !transitioned {
		return nil
	}

	order, err := s.repos.Order.GetByID(payment.OrderID)
	if err != nil {
		return err
	}

	switch order.Type {
	case models.OrderTypeSubscription:
		return s.activateSubscriptionFromOrder(order, payment)
	default:
		cart, err := s.repos.Cart.GetOrCreateByUser(order.UserID)
		if err != nil {
			log.Printf("webhook: cart lookup failed (order=%d): %v", order.ID, err)
			return nil
		}
		s.consumeStockAndClearCart(order, cart.ID)
		return nil
	}
}

// activateSubscriptionFromOrder creates the subscription a paid PIX
// subscription order stands for. The order's single line item references
// the plan; its SKU carries the plan slug.
func (s *Service) activateSubscriptionFromOrder(order *models.Order, payment *models.Payment) error {
	exists, err := s.repos.Subscription.ExistsActiveByUser(order.UserID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	plan, err := s.planFromOrder(order)
	if err != nil {
		return err
	}

	sub := &models.Subscription{
		UserID:                 order.UserID,
		PlanID:                 plan.ID,
		ProviderSubscriptionID: payment.ProviderPaymentID,
		Status:                 models.SubscriptionStatusActive,
	}
	now := time.Now()
	cycle := &models.SubscriptionCycle{
		PeriodStart: now,
		PeriodEnd:   now.Add(firstCyclePeriod),
		Amount:      payment.Amount,
		Paid:        true,
		PaymentID:   &payment.ID,
	}
	return s.repos.Subscription.CreateWithFirstCycle(sub, cycle)
}

func (s *Service) planFromOrder(order *models.Order) (*models.Plan, error) {
	if len(order.Items) == 0 {
		return nil, fmt.Errorf("subscription order %d has no line item", order.ID)
	}
	item := order.Items[0]
	if slug, ok := strings.CutPrefix(item.SKU, "plan-"); ok {
		if plan, err := s.repos.Plan.GetBySlug(slug); err == nil {
			return plan, nil
		}
	}
	return s.repos.Plan.GetByID(item.ProductID)
}

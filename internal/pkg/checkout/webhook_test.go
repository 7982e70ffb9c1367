package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinelabs/vitrine/app/models"
	"github.com/vitrinelabs/vitrine/internal/pkg/mercadopago"
)

func TestHandlePaymentWebhook_UnknownPaymentIsNotFatal(t *testing.T) {
	_, repos := setupTestDB(t)
	svc := newTestService(t, repos, &fakeProvider{})

	outcome, err := svc.HandlePaymentWebhook(context.Background(), "mp-unknown")
	require.NoError(t, err)
	assert.False(t, outcome.Found)
}

func TestHandlePaymentWebhook_ApprovedPixProductOrder(t *testing.T) {
	db, repos := setupTestDB(t)
	provider := &fakeProvider{
		pixResult: approvedPix(),
		status:    &mercadopago.PaymentStatus{PaymentID: "mp-123", Status: "approved"},
	}
	svc := newTestService(t, repos, provider)
	user, address := seedUserWithAddress(t, repos)
	product := seedProduct(t, db, 25.00, 5)
	addToCart(t, repos, user.ID, product, 2)

	result := svc.ProcessProductCheckout(context.Background(), user.ID, ProductCheckoutRequest{
		AddressID:   address.ID,
		PaymentData: pixPayment(),
	})
	require.True(t, result.Success, "error: %s (%s)", result.Error, result.ErrorCode)

	outcome, err := svc.HandlePaymentWebhook(context.Background(), "mp-123")
	require.NoError(t, err)
	assert.True(t, outcome.Found)
	assert.Equal(t, "confirmed", outcome.Action)

	order, err := repos.Order.GetByID(result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	require.NotNil(t, order.CanonicalPayment())
	assert.Equal(t, models.PaymentStatusPaid, order.CanonicalPayment().Status)

	refreshed, err := repos.Product.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, refreshed.Stock)

	cart, err := repos.Cart.GetOrCreateByUser(user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestHandlePaymentWebhook_ReplayIsIdempotent(t *testing.T) {
	db, repos := setupTestDB(t)
	provider := &fakeProvider{
		pixResult: approvedPix(),
		status:    &mercadopago.PaymentStatus{PaymentID: "mp-123", Status: "approved"},
	}
	svc := newTestService(t, repos, provider)
	user, address := seedUserWithAddress(t, repos)
	product := seedProduct(t, db, 25.00, 5)
	addToCart(t, repos, user.ID, product, 2)

	result := svc.ProcessProductCheckout(context.Background(), user.ID, ProductCheckoutRequest{
		AddressID:   address.ID,
		PaymentData: pixPayment(),
	})
	require.True(t, result.Success, "error: %s (%s)", result.Error, result.ErrorCode)

	for i := 0; i < 3; i++ {
		_, err := svc.HandlePaymentWebhook(context.Background(), "mp-123")
		require.NoError(t, err)
	}

	// stock decremented exactly once despite three deliveries
	refreshed, err := repos.Product.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, refreshed.Stock)
}

func TestHandlePaymentWebhook_ApprovedPixSubscriptionOrder(t *testing.T) {
	db, repos := setupTestDB(t)
	provider := &fakeProvider{
		pixResult: approvedPix(),
		status:    &mercadopago.PaymentStatus{PaymentID: "mp-123", Status: "approved"},
	}
	svc := newTestService(t, repos, provider)
	user, address := seedUserWithAddress(t, repos)
	plan := seedPlan(t, repos, db)

	result := svc.ProcessSubscriptionCheckout(context.Background(), user.ID, SubscriptionCheckoutRequest{
		PlanSlug:    plan.Slug,
		AddressID:   address.ID,
		PaymentData: pixPayment(),
	})
	require.True(t, result.Success, "error: %s (%s)", result.Error, result.ErrorCode)

	for i := 0; i < 3; i++ {
		_, err := svc.HandlePaymentWebhook(context.Background(), "mp-123")
		require.NoError(t, err)
	}

	// exactly one subscription despite the replays
	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	sub, err := repos.Subscription.GetActiveByUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, sub.PlanID)
	require.Len(t, sub.Cycles, 1)
	assert.True(t, sub.Cycles[0].Paid)
}

func TestHandlePaymentWebhook_RejectedMarksPaymentFailed(t *testing.T) {
	db, repos := setupTestDB(t)
	provider := &fakeProvider{
		pixResult: approvedPix(),
		status: &mercadopago.PaymentStatus{
			PaymentID:    "mp-123",
			Status:       "rejected",
			StatusDetail: "expired",
		},
	}
	svc := newTestService(t, repos, provider)
	user, address := seedUserWithAddress(t, repos)
	product := seedProduct(t, db, 25.00, 5)
	addToCart(t, repos, user.ID, product, 1)

	result := svc.ProcessProductCheckout(context.Background(), user.ID, ProductCheckoutRequest{
		AddressID:   address.ID,
		PaymentData: pixPayment(),
	})
	require.True(t, result.Success, "error: %s (%s)", result.Error, result.ErrorCode)

	outcome, err := svc.HandlePaymentWebhook(context.Background(), "mp-123")
	require.NoError(t, err)
	assert.Equal(t, "failed", outcome.Action)

	order, err := repos.Order.GetByID(result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusFailed, order.CanonicalPayment().Status)

	// no stock consumed for a failed payment
	refreshed, err := repos.Product.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, refreshed.Stock)
}

func TestHandlePaymentWebhook_PendingIsNoOp(t *testing.T) {
	db, repos := setupTestDB(t)
	provider := &fakeProvider{
		pixResult: approvedPix(),
		status:    &mercadopago.PaymentStatus{PaymentID: "mp-123", Status: "pending"},
	}
	svc := newTestService(t, repos, provider)
	user, address := seedUserWithAddress(t, repos)
	product := seedProduct(t, db, 25.00, 5)
	addToCart(t, repos, user.ID, product, 1)

	result := svc.ProcessProductCheckout(context.Background(), user.ID, ProductCheckoutRequest{
		AddressID:   address.ID,
		PaymentData: pixPayment(),
	})
	require.True(t, result.Success, "error: %s (%s)", result.Error, result.ErrorCode)

	outcome, err := svc.HandlePaymentWebhook(context.Background(), "mp-123")
	require.NoError(t, err)
	assert.Equal(t, "ignored", outcome.Action)

	order, err := repos.Order.GetByID(result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

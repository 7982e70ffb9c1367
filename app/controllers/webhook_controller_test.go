package controllers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vitrinelabs/vitrine/app/models"
	"github.com/vitrinelabs/vitrine/app/repository"
	"github.com/vitrinelabs/vitrine/internal/pkg/cartcheck"
	"github.com/vitrinelabs/vitrine/internal/pkg/checkout"
	"github.com/vitrinelabs/vitrine/internal/pkg/mercadopago"
)

const testWebhookSecret = "whsec-test"

// statusProvider only serves GetPayment; the checkout creation paths are
// not exercised by webhook deliveries.
type statusProvider struct {
	status      *mercadopago.PaymentStatus
	statusErr   error
	statusCalls int
}

func (p *statusProvider) CreatePixPayment(ctx context.Context, req mercadopago.PixPaymentRequest) (*mercadopago.PixPaymentResult, error) {
	return nil, errors.New("not used")
}

func (p *statusProvider) CreateCardPayment(ctx context.Context, req mercadopago.CardPaymentRequest) (*mercadopago.CardPaymentResult, error) {
	return nil, errors.New("not used")
}

func (p *statusProvider) GetPayment(ctx context.Context, paymentID string) (*mercadopago.PaymentStatus, error) {
	p.statusCalls++
	if p.statusErr != nil {
		return nil, p.statusErr
	}
	return p.status, nil
}

// The repository factory is a process-wide singleton, so the webhook tests
// share one database and app, keyed apart by payment and event ids.
var (
	webhookSetupOnce sync.Once
	webhookApp       *fiber.App
	webhookDB        *gorm.DB
	webhookRepos     *repository.Repositories
	webhookProvider  *statusProvider
)

func setupWebhookApp(t *testing.T) (*fiber.App, *gorm.DB, *repository.Repositories, *statusProvider) {
	t.Helper()
	webhookSetupOnce.Do(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		require.NoError(t, err)

		require.NoError(t, db.AutoMigrate(
			&models.User{}, &models.Address{},
			&models.Product{}, &models.ProductVariant{},
			&models.Cart{}, &models.CartItem{},
			&models.Order{}, &models.OrderItem{}, &models.Payment{},
			&models.Plan{}, &models.Subscription{}, &models.SubscriptionCycle{},
			&models.PaymentWebhookEvent{},
		))

		repository.InitializeFactory(db)
		repos := repository.GetGlobalFactory().GetRepositories()

		provider := &statusProvider{}
		SetCheckoutService(checkout.NewService(repos, provider, cartcheck.NewValidator(repos.Cart, repos.Product)))
		SetWebhookSecret(testWebhookSecret)

		app := fiber.New()
		app.Post("/api/v1/webhooks/mercadopago", HandleMercadoPagoWebhook)

		webhookApp, webhookDB, webhookRepos, webhookProvider = app, db, repos, provider
	})

	webhookProvider.status = nil
	webhookProvider.statusErr = nil
	return webhookApp, webhookDB, webhookRepos, webhookProvider
}

func seedPendingPixOrder(t *testing.T, db *gorm.DB, providerPaymentID string) (*models.Order, *models.Payment) {
	t.Helper()
	user, err := models.CreateUser("Maria Silva", "maria+"+providerPaymentID+"@example.com", "s3nh4forte")
	require.NoError(t, err)
	require.NoError(t, db.Create(user).Error)

	order := &models.Order{
		UserID:            user.ID,
		Type:              models.OrderTypeProduct,
		Status:            models.OrderStatusPending,
		ExternalReference: "ext-" + providerPaymentID,
		Subtotal:          100,
		Total:             100,
		ShipRecipient:     "Maria Silva",
		ShipStreet:        "Rua das Flores",
		ShipNumber:        "100",
		ShipDistrict:      "Centro",
		ShipCity:          "São Paulo",
		ShipState:         "SP",
		ShipZipCode:       "01001-000",
	}
	require.NoError(t, db.Create(order).Error)

	payment := &models.Payment{
		OrderID:           order.ID,
		Provider:          models.PaymentProviderMercadoPago,
		ProviderPaymentID: providerPaymentID,
		Method:            models.PaymentMethodPix,
		Amount:            100,
		Status:            models.PaymentStatusPending,
	}
	require.NoError(t, db.Create(payment).Error)

	return order, payment
}

func signedWebhookRequest(t *testing.T, eventID int, dataID string) *http.Request {
	t.Helper()
	body := fmt.Sprintf(`{"id": %d, "type": "payment", "action": "payment.updated", "data": {"id": %s}}`,
		eventID, dataID)

	ts := "1700000000"
	requestID := "req-abc"
	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", dataID, requestID, ts)
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write([]byte(manifest))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/mercadopago", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-request-id", requestID)
	req.Header.Set("x-signature", fmt.Sprintf("ts=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil))))
	return req
}

func storedEvent(t *testing.T, db *gorm.DB, eventID string) *models.PaymentWebhookEvent {
	t.Helper()
	var event models.PaymentWebhookEvent
	require.NoError(t, db.Where("provider_event_id = ?", eventID).First(&event).Error)
	return &event
}

func TestWebhookRedeliveryAfterTransientFailure(t *testing.T) {
	app, db, repos, provider := setupWebhookApp(t)
	order, _ := seedPendingPixOrder(t, db, "900")

	// First delivery: the provider status lookup times out.
	provider.statusErr = errors.New("provider timeout")
	resp, err := app.Test(signedWebhookRequest(t, 777, "900"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	event := storedEvent(t, db, "777")
	assert.NotEmpty(t, event.ProcessingError)

	reloaded, err := repos.Order.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, reloaded.Status)

	// Retry with the same notification id must reprocess, not short-circuit.
	provider.statusErr = nil
	provider.status = &mercadopago.PaymentStatus{PaymentID: "900", Status: "approved"}
	resp, err = app.Test(signedWebhookRequest(t, 777, "900"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	reloaded, err = repos.Order.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, reloaded.Status)

	event = storedEvent(t, db, "777")
	assert.Empty(t, event.ProcessingError)
	assert.NotNil(t, event.ProcessedAt)

	// A third delivery of the now-completed event is a true duplicate.
	callsBefore := provider.statusCalls
	resp, err = app.Test(signedWebhookRequest(t, 777, "900"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, callsBefore, provider.statusCalls)
}

func TestWebhookUnknownPaymentIsRetriedNotAcked(t *testing.T) {
	app, db, repos, provider := setupWebhookApp(t)
	provider.status = &mercadopago.PaymentStatus{PaymentID: "901", Status: "approved"}

	// The notification can beat the local write of the provider payment id.
	resp, err := app.Test(signedWebhookRequest(t, 888, "901"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	event := storedEvent(t, db, "888")
	assert.NotEmpty(t, event.ProcessingError)

	// Once the payment row is visible, the redelivery completes normally.
	order, _ := seedPendingPixOrder(t, db, "901")
	resp, err = app.Test(signedWebhookRequest(t, 888, "901"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	reloaded, err := repos.Order.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, reloaded.Status)
}

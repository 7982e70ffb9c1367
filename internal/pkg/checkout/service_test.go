package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vitrinelabs/vitrine/app/models"
	"github.com/vitrinelabs/vitrine/app/repository"
	"github.com/vitrinelabs/vitrine/internal/pkg/cartcheck"
	"github.com/vitrinelabs/vitrine/internal/pkg/mercadopago"
	"github.com/vitrinelabs/vitrine/internal/pkg/shipping"
)

var shippingOptionPAC = shipping.Option{
	Carrier:      "Correios",
	Service:      "PAC",
	ServiceCode:  "pac",
	Price:        10.00,
	DeliveryDays: 5,
}

type fakeProvider struct {
	pixResult  *mercadopago.PixPaymentResult
	pixErr     error
	cardResult *mercadopago.CardPaymentResult
	cardErr    error
	status     *mercadopago.PaymentStatus
	statusErr  error

	pixCalls  int
	cardCalls int
}

func (f *fakeProvider) CreatePixPayment(ctx context.Context, req mercadopago.PixPaymentRequest) (*mercadopago.PixPaymentResult, error) {
	f.pixCalls++
	if f.pixErr != nil {
		return nil, f.pixErr
	}
	return f.pixResult, nil
}

func (f *fakeProvider) CreateCardPayment(ctx context.Context, req mercadopago.CardPaymentRequest) (*mercadopago.CardPaymentResult, error) {
	f.cardCalls++
	if f.cardErr != nil {
		return nil, f.cardErr
	}
	return f.cardResult, nil
}

func (f *fakeProvider) GetPayment(ctx context.Context, paymentID string) (*mercadopago.PaymentStatus, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.status, nil
}

func approvedPix() *mercadopago.PixPaymentResult {
	return &mercadopago.PixPaymentResult{
		PaymentID:      "mp-123",
		Status:         "pending",
		QRCode:         "qr-data",
		QRCodeBase64:   "cXItZGF0YQ==",
		PixCopyPaste:   "qr-data",
		TicketURL:      "https://mp.example/ticket/123",
		ExpirationDate: time.Now().Add(30 * time.Minute),
	}
}

func setupTestDB(t *testing.T) (*gorm.DB, *repository.Repositories) {
	t.Helper()
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

	return db, repository.NewRepositories(db)
}

func newTestService(t *testing.T, repos *repository.Repositories, provider *fakeProvider) *Service {
	t.Helper()
	return NewService(repos, provider, cartcheck.NewValidator(repos.Cart, repos.Product))
}

func seedUserWithAddress(t *testing.T, repos *repository.Repositories) (*models.User, *models.Address) {
	t.Helper()
	user, err := models.CreateUser("Maria Silva", "maria@example.com", "s3nh4forte")
	require.NoError(t, err)
	require.NoError(t, repos.User.Create(user))

	address := &models.Address{
		UserID:    user.ID,
		Recipient: "Maria Silva",
		Street:    "Rua das Flores",
		Number:    "100",
		District:  "Centro",
		City:      "São Paulo",
		State:     "SP",
		ZipCode:   "01001-000",
	}
	require.NoError(t, repos.Address.Create(address))
	return user, address
}

func seedPlan(t *testing.T, repos *repository.Repositories, db *gorm.DB) *models.Plan {
	t.Helper()
	plan := &models.Plan{
		Slug:            "clube-ouro",
		Name:            "Clube Ouro",
		Price:           49.90,
		DiscountPercent: 20,
		IsActive:        true,
	}
	require.NoError(t, db.Create(plan).Error)
	return plan
}

func seedProduct(t *testing.T, db *gorm.DB, price float64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Title:    "Caneca Esmaltada",
		Slug:     "caneca-esmaltada",
		SKU:      "CAN-001",
		Price:    price,
		Stock:    stock,
		IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func addToCart(t *testing.T, repos *repository.Repositories, userID uint, product *models.Product, qty int) *models.Cart {
	t.Helper()
	cart, err := repos.Cart.GetOrCreateByUser(userID)
	require.NoError(t, err)
	require.NoError(t, repos.Cart.AddItem(cart.ID, &models.CartItem{
		ProductID: product.ID,
		Quantity:  qty,
		UnitPrice: product.Price,
	}))
	cart, err = repos.Cart.GetOrCreateByUser(userID)
	require.NoError(t, err)
	return cart
}

func pixPayment() PaymentData {
	return PaymentData{Method: models.PaymentMethodPix}
}

func cardPayment(token string) PaymentData {
	return PaymentData{
		Method:       models.PaymentMethodCreditCard,
		CardToken:    token,
		CardBrand:    "visa",
		CardLastFour: "4242",
		Installments: 1,
	}
}

func TestSubscriptionCheckout_PlanNotFound(t *testing.T) {
	_, repos := setupTestDB(t)
	svc := newTestService(t, repos, &fakeProvider{})
	user, address := seedUserWithAddress(t, repos)

	result := svc.ProcessSubscriptionCheckout(context.Background(), user.ID, SubscriptionCheckoutRequest{
		PlanSlug:    "nao-existe",
		AddressID:   address.ID,
		PaymentData: pixPayment(),
	})

	assert.False(t, result.Success)
	assert.Equal(t, ErrCodePlanNotFound, result.ErrorCode)
}

func TestSubscriptionCheckout_AlreadySubscribed(t *testing.T) {
	db, repos := setupTestDB(t)
	svc := newTestService(t, repos, &fakeProvider{})
	user, address := seedUserWithAddress(t, repos)
	plan := seedPlan(t, repos, db)

	require.NoError(t, db.Create(&models.Subscription{
		UserID: user.ID,
		PlanID: plan.ID,
		Status: models.SubscriptionStatusActive,
	}).Error)

	result := svc.ProcessSubscriptionCheckout(context.Background(), user.ID, SubscriptionCheckoutRequest{
		PlanSlug:    plan.Slug,
		AddressID:   address.ID,
		PaymentData: pixPayment(),
	})

	assert.False(t, result.Success)
	assert.Equal(t, ErrCodeAlreadySubscribed, result.ErrorCode)
}

func TestSubscriptionCheckout_AddressNotFound(t *testing.T) {
	db, repos := setupTestDB(t)
	svc := newTestService(t, repos, &fakeProvider{})
	user, _ := seedUserWithAddress(t, repos)
	plan := seedPlan(t, repos, db)

	result := svc.ProcessSubscriptionCheckout(context.Background(), user.ID, SubscriptionCheckoutRequest{
		PlanSlug:    plan.Slug,
		AddressID:   9999,
		PaymentData: pixPayment(),
	})

	assert.False(t, result.Success)
	assert.Equal(t, ErrCodeAddressNotFound, result.ErrorCode)
}

func TestSubscriptionCheckout_PixStaysPendingUntilWebhook(t *testing.T) {
	db, repos := setupTestDB(t)
	provider := &fakeProvider{pixResult: approvedPix()}
	svc := newTestService(t, repos, provider)
	user, address := seedUserWithAddress(t, repos)
	plan := seedPlan(t, repos, db)

	result := svc.ProcessSubscriptionCheckout(context.Background(), user.ID, SubscriptionCheckoutRequest{
		PlanSlug:    plan.Slug,
		AddressID:   address.ID,
		PaymentData: pixPayment(),
	})

	require.True(t, result.Success, "error: %s (%s)", result.Error, result.ErrorCode)
	require.NotNil(t, result.PaymentPreference)
	assert.Equal(t, "qr-data", result.PaymentPreference.QRCode)
	assert.Equal(t, 1, provider.pixCalls)

	order, err := repos.Order.GetByID(result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.OrderTypeSubscription, order.Type)
	assert.Equal(t, 49.90, order.Total)

	payment := order.CanonicalPayment()
	require.NotNil(t, payment)
	assert.Equal(t, models.PaymentProviderMercadoPago, payment.Provider)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, 49.90, payment.Amount)
	assert.Equal(t, "mp-123", payment.ProviderPaymentID)

	// no subscription until the webhook confirms the PIX payment
	exists, err := repos.Subscription.ExistsActiveByUser(user.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSubscriptionCheckout_PixProviderError(t *testing.T) {
	db, repos := setupTestDB(t)
	provider := &fakeProvider{pixErr: errors.New("mercado pago unavailable")}
	svc := newTestService(t, repos, provider)
	user, address := seedUserWithAddress(t, repos)
	plan := seedPlan(t, repos, db)

	result := svc.ProcessSubscriptionCheckout(context.Background(), user.ID, SubscriptionCheckoutRequest{
		PlanSlug:    plan.Slug,
		AddressID:   address.ID,
		PaymentData: pixPayment(),
	})

	assert.False(t, result.Success)
	assert.Equal(t, ErrCodePixCreationFailed, result.ErrorCode)

	// failed provider call still leaves an auditable failed payment
	var payment models.Payment
	require.NoError(t, db.First(&payment).Error)
	assert.Equal(t, models.PaymentStatusFailed, payment.Status)
}

func TestSubscriptionCheckout_CardMissingToken(t *testing.T) {
	db, repos := setupTestDB(t)
	provider := &fakeProvider{}
	svc := newTestService(t, repos, provider)
	user, address := seedUserWithAddress(t, repos)
	plan := seedPlan(t, repos, db)

	result := svc.ProcessSubscriptionCheckout(context.Background(), user.ID, SubscriptionCheckoutRequest{
		PlanSlug:    plan.Slug,
		AddressID:   address.ID,
		PaymentData: cardPayment(""),
	})

	assert.False(t, result.Success)
	assert.Equal(t, ErrCodePaymentFailed, result.ErrorCode)
	assert.Equal(t, "Token do cartão não fornecido", result.Error)
	assert.Zero(t, provider.cardCalls, "provider must not be called without a token")
}

func TestSubscriptionCheckout_CardApprovedCreatesSubscription(t *testing.T) {
	db, repos := setupTestDB(t)
	provider := &fakeProvider{cardResult: &mercadopago.CardPaymentResult{
		Approved:      true,
		TransactionID: "mp-777",
		Status:        "approved",
	}}
	svc := newTestService(t, repos, provider)
	user, address := seedUserWithAddress(t, repos)
	plan := seedPlan(t, repos, db)

	result := svc.ProcessSubscriptionCheckout(context.Background(), user.ID, SubscriptionCheckoutRequest{
		PlanSlug:    plan.Slug,
		AddressID:   address.ID,
		PaymentData: cardPayment("tok-abc"),
	})

	require.True(t, result.Success, "error: %s (%s)", result.Error, result.ErrorCode)
	assert.NotZero(t, result.SubscriptionID)

	order, err := repos.Order.GetByID(result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)

	sub, err := repos.Subscription.GetActiveByUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, sub.PlanID)
	require.Len(t, sub.Cycles, 1)
	assert.True(t, sub.Cycles[0].Paid)
	assert.Equal(t, 49.90, sub.Cycles[0].Amount)
}

func TestSubscriptionCheckout_CardDeclined(t *testing.T) {
	db, repos := setupTestDB(t)
	provider := &fakeProvider{cardResult: &mercadopago.CardPaymentResult{
		Approved:     false,
		Status:       "rejected",
		StatusDetail: "cc_rejected_insufficient_amount",
		Message:      "Saldo insuficiente",
	}}
	svc := newTestService(t, repos, provider)
	user, address := seedUserWithAddress(t, repos)
	plan := seedPlan(t, repos, db)

	result := svc.ProcessSubscriptionCheckout(context.Background(), user.ID, SubscriptionCheckoutRequest{
		PlanSlug:    plan.Slug,
		AddressID:   address.ID,
		PaymentData: cardPayment("tok-abc"),
	})

	assert.False(t, result.Success)
	assert.Equal(t, ErrCodePaymentFailed, result.ErrorCode)
	assert.Equal(t, "Saldo insuficiente", result.Error)

	exists, err := repos.Subscription.ExistsActiveByUser(user.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProductCheckout_EmptyCart(t *testing.T) {
	_, repos := setupTestDB(t)
	svc := newTestService(t, repos, &fakeProvider{})
	user, address := seedUserWithAddress(t, repos)

	result := svc.ProcessProductCheckout(context.Background(), user.ID, ProductCheckoutRequest{
		AddressID:   address.ID,
		PaymentData: pixPayment(),
	})

	assert.False(t, result.Success)
	assert.Equal(t, ErrCodeEmptyCart, result.ErrorCode)
}

func TestProductCheckout_InvalidTotalCreatesNoOrder(t *testing.T) {
	for _, unitPrice := range []float64{0, -10.50} {
		db, repos := setupTestDB(t)
		provider := &fakeProvider{pixResult: approvedPix()}
		svc := newTestService(t, repos, provider)
		user, address := seedUserWithAddress(t, repos)
		product := seedProduct(t, db, 50, 5)
		cart := addToCart(t, repos, user.ID, product, 1)

		// Corrupt the stored unit price snapshot so the computed total is
		// not a chargeable amount.
		require.NoError(t, db.Model(&models.CartItem{}).
			Where("cart_id = ?", cart.ID).
			Update("unit_price", unitPrice).Error)

		result := svc.ProcessProductCheckout(context.Background(), user.ID, ProductCheckoutRequest{
			AddressID:   address.ID,
			PaymentData: pixPayment(),
		})

		assert.False(t, result.Success)
		assert.Equal(t, ErrCodeInvalidTotal, result.ErrorCode)

		var orders int64
		require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
		assert.Zero(t, orders, "unit price %.2f must not create an order", unitPrice)
		assert.Zero(t, provider.pixCalls)
	}
}

func TestProductCheckout_CartValidationFails(t *testing.T) {
	db, repos := setupTestDB(t)
	svc := newTestService(t, repos, &fakeProvider{})
	user, address := seedUserWithAddress(t, repos)
	product := seedProduct(t, db, 59.90, 1)
	addToCart(t, repos, user.ID, product, 3)

	result := svc.ProcessProductCheckout(context.Background(), user.ID, ProductCheckoutRequest{
		AddressID:   address.ID,
		PaymentData: pixPayment(),
	})

	assert.False(t, result.Success)
	assert.Equal(t, ErrCodeCartValidationFailed, result.ErrorCode)
	assert.Contains(t, result.Error, "estoque")
}

func TestProductCheckout_SubscriberDiscountApplied(t *testing.T) {
	db, repos := setupTestDB(t)
	provider := &fakeProvider{pixResult: approvedPix()}
	svc := newTestService(t, repos, provider)
	user, address := seedUserWithAddress(t, repos)
	plan := seedPlan(t, repos, db)
	product := seedProduct(t, db, 50.00, 10)
	addToCart(t, repos, user.ID, product, 2)

	require.NoError(t, db.Create(&models.Subscription{
		UserID: user.ID,
		PlanID: plan.ID,
		Status: models.SubscriptionStatusActive,
	}).Error)

	result := svc.ProcessProductCheckout(context.Background(), user.ID, ProductCheckoutRequest{
		AddressID:   address.ID,
		PaymentData: pixPayment(),
		ShippingOption: &shippingOptionPAC,
	})

	require.True(t, result.Success, "error: %s (%s)", result.Error, result.ErrorCode)

	order, err := repos.Order.GetByID(result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, 100.00, order.Subtotal)
	assert.Equal(t, 20.00, order.Discount)
	assert.Equal(t, 10.00, order.ShippingAmount)
	assert.Equal(t, 90.00, order.Total)
}

func TestProductCheckout_NoSubscriptionNoDiscount(t *testing.T) {
	db, repos := setupTestDB(t)
	provider := &fakeProvider{pixResult: approvedPix()}
	svc := newTestService(t, repos, provider)
	user, address := seedUserWithAddress(t, repos)
	product := seedProduct(t, db, 50.00, 10)
	addToCart(t, repos, user.ID, product, 2)

	result := svc.ProcessProductCheckout(context.Background(), user.ID, ProductCheckoutRequest{
		AddressID:   address.ID,
		PaymentData: pixPayment(),
	})

	require.True(t, result.Success, "error: %s (%s)", result.Error, result.ErrorCode)

	order, err := repos.Order.GetByID(result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, 0.00, order.Discount)
	assert.Equal(t, 100.00, order.Total)
}

func TestProductCheckout_CardApprovedConsumesStockAndClearsCart(t *testing.T) {
	db, repos := setupTestDB(t)
	provider := &fakeProvider{cardResult: &mercadopago.CardPaymentResult{
		Approved:      true,
		TransactionID: "mp-888",
		Status:        "approved",
	}}
	svc := newTestService(t, repos, provider)
	user, address := seedUserWithAddress(t, repos)
	product := seedProduct(t, db, 25.00, 5)
	addToCart(t, repos, user.ID, product, 2)

	result := svc.ProcessProductCheckout(context.Background(), user.ID, ProductCheckoutRequest{
		AddressID:   address.ID,
		PaymentData: cardPayment("tok-xyz"),
	})

	require.True(t, result.Success, "error: %s (%s)", result.Error, result.ErrorCode)

	refreshed, err := repos.Product.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, refreshed.Stock)

	cart, err := repos.Cart.GetOrCreateByUser(user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestProductCheckout_AddressSnapshotSurvivesDelete(t *testing.T) {
	db, repos := setupTestDB(t)
	provider := &fakeProvider{pixResult: approvedPix()}
	svc := newTestService(t, repos, provider)
	user, address := seedUserWithAddress(t, repos)
	product := seedProduct(t, db, 30.00, 10)
	addToCart(t, repos, user.ID, product, 1)

	result := svc.ProcessProductCheckout(context.Background(), user.ID, ProductCheckoutRequest{
		AddressID:   address.ID,
		PaymentData: pixPayment(),
	})
	require.True(t, result.Success, "error: %s (%s)", result.Error, result.ErrorCode)

	require.NoError(t, repos.Address.Delete(address.ID, user.ID))

	order, err := repos.Order.GetByID(result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "Rua das Flores", order.ShipStreet)
	assert.Equal(t, "01001-000", order.ShipZipCode)
}

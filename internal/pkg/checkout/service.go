package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrinelabs/vitrine/app/models"
	"github.com/vitrinelabs/vitrine/app/repository"
	"github.com/vitrinelabs/vitrine/internal/pkg/cartcheck"
	"github.com/vitrinelabs/vitrine/internal/pkg/mercadopago"
	"github.com/vitrinelabs/vitrine/internal/pkg/shipping"
)

// The first billing cycle of a new subscription covers this period.
const firstCyclePeriod = 30 * 24 * time.Hour

// PaymentProvider is the slice of the Mercado Pago client the checkout
// flows depend on.
type PaymentProvider interface {
	CreatePixPayment(ctx context.Context, req mercadopago.PixPaymentRequest) (*mercadopago.PixPaymentResult, error)
	CreateCardPayment(ctx context.Context, req mercadopago.CardPaymentRequest) (*mercadopago.CardPaymentResult, error)
	GetPayment(ctx context.Context, paymentID string) (*mercadopago.PaymentStatus, error)
}

// CartValidator is the consumed contract of the cart validation service.
type CartValidator interface {
	ValidateForCheckout(userID uint) (*cartcheck.Result, error)
}

// Service orchestrates the checkout flows: validate, compute totals, create
// order+payment, call the provider, reconcile webhooks.
type Service struct {
	repos     *repository.Repositories
	provider  PaymentProvider
	validator CartValidator
}

// NewService creates a checkout service with explicit collaborators.
func NewService(repos *repository.Repositories, provider PaymentProvider, validator CartValidator) *Service {
	return &Service{repos: repos, provider: provider, validator: validator}
}

// ProcessSubscriptionCheckout runs the subscription flow. Preconditions are
// checked in order and the first failure short-circuits.
func (s *Service) ProcessSubscriptionCheckout(ctx context.Context, userID uint, req SubscriptionCheckoutRequest) (res *Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("subscription checkout panic (user=%d): %v", userID, r)
			res = failure(ErrCodeInternalError, "Erro interno ao processar o pagamento")
		}
	}()

	plan, err := s.repos.Plan.GetBySlug(req.PlanSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return failure(ErrCodePlanNotFound, "Plano não encontrado")
		}
		return s.internalError("subscription checkout: plan lookup", err)
	}

	subscribed, err := s.repos.Subscription.ExistsActiveByUser(userID)
	if err != nil {
		return s.internalError("subscription checkout: subscription lookup", err)
	}
	if subscribed {
		return failure(ErrCodeAlreadySubscribed, "Você já possui uma assinatura ativa")
	}

	address, err := s.repos.Address.GetByIDAndUser(req.AddressID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return failure(ErrCodeAddressNotFound, "Endereço não encontrado")
		}
		return s.internalError("subscription checkout: address lookup", err)
	}

	user, err := s.repos.User.GetByID(userID)
	if err != nil {
		return s.internalError("subscription checkout: user lookup", err)
	}

	shippingAmount := 0.0
	if req.ShippingOption != nil {
		shippingAmount = req.ShippingOption.Price
	}
	total := Round2(plan.Price + shippingAmount)
	if !IsValidAmount(total) {
		log.Printf("subscription checkout: invalid total %.2f (user=%d plan=%s)", total, userID, plan.Slug)
		return failure(ErrCodeInvalidTotal, "Não foi possível calcular o valor do pedido")
	}

	order := s.buildOrder(userID, models.OrderTypeSubscription, address, req.ShippingOption, "")
	order.Subtotal = Round2(plan.Price)
	order.ShippingAmount = Round2(shippingAmount)
	order.Total = total
	// For subscription orders the single line item references the plan, not
	// a product row; webhook reconciliation derives the plan from it.
	order.Items = []models.OrderItem{{
		ProductID: plan.ID,
		Title:     plan.Name,
		SKU:       "plan-" + plan.Slug,
		Quantity:  1,
		UnitPrice: Round2(plan.Price),
		Total:     Round2(plan.Price),
	}}

	method := req.PaymentData.ResolveMethod()
	if method == nil {
		return failure(ErrCodePaymentFailed, "Forma de pagamento inválida")
	}

	payment := s.buildPayment(order, req.PaymentData, total)
	if err := s.repos.Order.CreateWithPayment(order, payment); err != nil {
		return s.internalError("subscription checkout: order create", err)
	}

	description := fmt.Sprintf("Assinatura %s", plan.Name)
	switch m := method.(type) {
	case PixMethod:
		return s.chargePix(ctx, order, payment, user.Email, description)
	case CardMethod:
		result := s.chargeCard(ctx, order, payment, m, user.Email, description)
		if !result.Success {
			return result
		}
		subID, err := s.createSubscription(userID, plan, payment)
		if err != nil {
			return s.internalError("subscription checkout: subscription create", err)
		}
		result.SubscriptionID = subID
		return result
	default:
		return failure(ErrCodePaymentFailed, "Forma de pagamento inválida")
	}
}

// ProcessProductCheckout runs the product flow over the user's cart.
func (s *Service) ProcessProductCheckout(ctx context.Context, userID uint, req ProductCheckoutRequest) (res *Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("product checkout panic (user=%d): %v", userID, r)
			res = failure(ErrCodeInternalError, "Erro interno ao processar o pagamento")
		}
	}()

	cart, err := s.repos.Cart.GetOrCreateByUser(userID)
	if err != nil {
		return s.internalError("product checkout: cart lookup", err)
	}
	if len(cart.Items) == 0 {
		return failure(ErrCodeEmptyCart, "Seu carrinho está vazio")
	}

	validation, err := s.validator.ValidateForCheckout(userID)
	if err != nil {
		return s.internalError("product checkout: cart validation", err)
	}
	if !validation.Valid {
		return failure(ErrCodeCartValidationFailed, formatIssues(validation.Issues))
	}

	address, err := s.repos.Address.GetByIDAndUser(req.AddressID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return failure(ErrCodeAddressNotFound, "Endereço não encontrado")
		}
		return s.internalError("product checkout: address lookup", err)
	}

	user, err := s.repos.User.GetByID(userID)
	if err != nil {
		return s.internalError("product checkout: user lookup", err)
	}

	// Monetary totals trust the unit price snapshot stored on each cart
	// item; stock was already validated against the live rows.
	subtotal := 0.0
	for _, item := range cart.Items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}
	subtotal = Round2(subtotal)

	shippingAmount := 0.0
	if req.ShippingOption != nil {
		shippingAmount = req.ShippingOption.Price
	}

	discount := 0.0
	discountPct := s.activeDiscountPercent(userID)
	if discountPct > 0 {
		discount = Round2(subtotal * discountPct / 100)
	}

	total := Round2(subtotal + shippingAmount - discount)
	if !IsValidAmount(total) {
		log.Printf("product checkout: invalid total %.2f (user=%d subtotal=%.2f discount=%.2f)", total, userID, subtotal, discount)
		return failure(ErrCodeInvalidTotal, "Não foi possível calcular o valor do pedido")
	}

	items, err := s.snapshotCartItems(cart)
	if err != nil {
		return s.internalError("product checkout: item snapshot", err)
	}

	method := req.PaymentData.ResolveMethod()
	if method == nil {
		return failure(ErrCodePaymentFailed, "Forma de pagamento inválida")
	}

	order := s.buildOrder(userID, models.OrderTypeProduct, address, req.ShippingOption, req.Notes)
	order.Subtotal = subtotal
	order.Discount = discount
	order.ShippingAmount = Round2(shippingAmount)
	order.Total = total
	order.Items = items

	payment := s.buildPayment(order, req.PaymentData, total)
	if err := s.repos.Order.CreateWithPayment(order, payment); err != nil {
		return s.internalError("product checkout: order create", err)
	}

	description := fmt.Sprintf("Pedido #%s", order.ExternalReference)
	switch m := method.(type) {
	case PixMethod:
		return s.chargePix(ctx, order, payment, user.Email, description)
	case CardMethod:
		result := s.chargeCard(ctx, order, payment, m, user.Email, description)
		if !result.Success {
			return result
		}
		// Stock decrement and cart clearing happen only after the payment
		// is confirmed, never speculatively.
		s.consumeStockAndClearCart(order, cart.ID)
		return result
	default:
		return failure(ErrCodePaymentFailed, "Forma de pagamento inválida")
	}
}

// chargePix mints the PIX charge for an already-persisted order+payment.
func (s *Service) chargePix(ctx context.Context, order *models.Order, payment *models.Payment, email, description string) *Result {
	pix, err := s.provider.CreatePixPayment(ctx, mercadopago.PixPaymentRequest{
		Amount:            payment.Amount,
		Description:       description,
		Email:             email,
		ExternalReference: order.ExternalReference,
	})
	if err != nil {
		log.Printf("pix creation failed (order=%d): %v", order.ID, err)
		_ = s.repos.Payment.MarkFailed(payment.ID, err.Error())
		return failure(ErrCodePixCreationFailed, "Não foi possível gerar o pagamento PIX. Tente novamente.")
	}

	payment.ProviderPaymentID = pix.PaymentID
	payment.PixQRCode = pix.QRCode
	payment.PixQRCodeBase64 = pix.QRCodeBase64
	payment.PixCopyPaste = pix.PixCopyPaste
	payment.TicketURL = pix.TicketURL
	expires := pix.ExpirationDate
	payment.ExpiresAt = &expires
	if err := s.repos.Payment.Update(payment); err != nil {
		return s.internalError("pix charge: payment update", err)
	}

	return &Result{
		Success:   true,
		OrderID:   order.ID,
		PaymentID: payment.ID,
		PaymentPreference: &PaymentPreference{
			ProviderPaymentID: pix.PaymentID,
			QRCode:            pix.QRCode,
			QRCodeBase64:      pix.QRCodeBase64,
			PixCopyPaste:      pix.PixCopyPaste,
			TicketURL:         pix.TicketURL,
			ExpiresAt:         pix.ExpirationDate,
		},
	}
}

// chargeCard runs the synchronous card charge and finalizes payment and
// order state. Callers append their own post-payment side effects.
func (s *Service) chargeCard(ctx context.Context, order *models.Order, payment *models.Payment, m CardMethod, email, description string) *Result {
	if strings.TrimSpace(m.Token) == "" {
		_ = s.repos.Payment.MarkFailed(payment.ID, "missing card token")
		return failure(ErrCodePaymentFailed, "Token do cartão não fornecido")
	}

	charge, err := s.provider.CreateCardPayment(ctx, mercadopago.CardPaymentRequest{
		Amount:            payment.Amount,
		Token:             m.Token,
		Installments:      m.Installments,
		PaymentMethodID:   m.Brand,
		Email:             email,
		Description:       description,
		ExternalReference: order.ExternalReference,
	})
	if err != nil {
		log.Printf("card charge failed (order=%d): %v", order.ID, err)
		_ = s.repos.Payment.MarkFailed(payment.ID, err.Error())
		return failure(ErrCodePaymentFailed, "Não foi possível processar o pagamento. Tente novamente.")
	}
	if !charge.Approved {
		message := charge.Message
		if message == "" {
			message = "Pagamento recusado"
		}
		_ = s.repos.Payment.MarkFailed(payment.ID, fmt.Sprintf("%s (%s)", charge.Status, charge.StatusDetail))
		return failure(ErrCodePaymentFailed, message)
	}

	payment.ProviderPaymentID = charge.TransactionID
	if err := s.repos.Payment.Update(payment); err != nil {
		return s.internalError("card charge: payment update", err)
	}
	if err := s.repos.Payment.MarkPaid(payment.ID); err != nil {
		return s.internalError("card charge: payment mark paid", err)
	}
	if _, err := s.repos.Order.MarkPaidIfPending(order.ID); err != nil {
		return s.internalError("card charge: order mark paid", err)
	}

	return &Result{Success: true, OrderID: order.ID, PaymentID: payment.ID}
}

// createSubscription creates the subscription and its first, already-paid
// billing cycle.
func (s *Service) createSubscription(userID uint, plan *models.Plan, payment *models.Payment) (uint, error) {
	sub := &models.Subscription{
		UserID:                 userID,
		PlanID:                 plan.ID,
		ProviderSubscriptionID: payment.ProviderPaymentID,
		Status:                 models.SubscriptionStatusActive,
	}
	now := time.Now()
	cycle := &models.SubscriptionCycle{
		PeriodStart: now,
		PeriodEnd:   now.Add(firstCyclePeriod),
		Amount:      Round2(plan.Price),
		Paid:        true,
		PaymentID:   &payment.ID,
	}
	if err := s.repos.Subscription.CreateWithFirstCycle(sub, cycle); err != nil {
		return 0, err
	}
	return sub.ID, nil
}

// activeDiscountPercent returns the discount percent of the user's active
// subscription, freshly evaluated on every call.
func (s *Service) activeDiscountPercent(userID uint) float64 {
	sub, err := s.repos.Subscription.GetActiveByUser(userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("discount lookup failed (user=%d): %v", userID, err)
		}
		return 0
	}
	return sub.Plan.DiscountPercent
}

// consumeStockAndClearCart runs the post-payment side effects of a product
// order. Failures are logged, not surfaced: the payment already succeeded.
func (s *Service) consumeStockAndClearCart(order *models.Order, cartID uint) {
	for _, item := range order.Items {
		if err := s.repos.Product.DecrementStock(item.ProductID, item.VariantID, item.Quantity); err != nil {
			log.Printf("stock decrement failed (order=%d product=%d): %v", order.ID, item.ProductID, err)
		}
	}
	if err := s.repos.Cart.Clear(cartID); err != nil {
		log.Printf("cart clear failed (order=%d cart=%d): %v", order.ID, cartID, err)
	}
}

// snapshotCartItems resolves titles, SKUs and variant data so the order
// keeps its own copy independent of the live catalog rows.
func (s *Service) snapshotCartItems(cart *models.Cart) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, ci := range cart.Items {
		product, err := s.repos.Product.GetByID(ci.ProductID)
		if err != nil {
			return nil, err
		}
		title := product.Title
		sku := product.SKU
		if ci.VariantID != nil {
			for i := range product.Variants {
				if product.Variants[i].ID == *ci.VariantID {
					title = fmt.Sprintf("%s - %s", product.Title, product.Variants[i].Name)
					sku = product.Variants[i].SKU
					break
				}
			}
		}
		items = append(items, models.OrderItem{
			ProductID: ci.ProductID,
			VariantID: ci.VariantID,
			Title:     title,
			SKU:       sku,
			Quantity:  ci.Quantity,
			UnitPrice: Round2(ci.UnitPrice),
			Total:     Round2(ci.UnitPrice * float64(ci.Quantity)),
		})
	}
	return items, nil
}

// buildOrder assembles the immutable order snapshot: address copy, shipping
// selection copy and a fresh external reference for the provider.
func (s *Service) buildOrder(userID uint, orderType string, address *models.Address, opt *shipping.Option, notes string) *models.Order {
	order := &models.Order{
		UserID:            userID,
		Type:              orderType,
		Status:            models.OrderStatusPending,
		ExternalReference: uuid.NewString(),
		Notes:             notes,

		ShipRecipient:  address.Recipient,
		ShipStreet:     address.Street,
		ShipNumber:     address.Number,
		ShipComplement: address.Complement,
		ShipDistrict:   address.District,
		ShipCity:       address.City,
		ShipState:      address.State,
		ShipZipCode:    address.ZipCode,
	}
	if opt != nil {
		data := shipping.BuildOrderShippingData(*opt, address.ZipCode)
		order.ShippingCarrier = data.Carrier
		order.ShippingService = data.Service
		order.ShippingServiceCode = data.ServiceCode
		order.ShippingDays = data.DeliveryDays
		quotedAt := data.QuotedAt
		order.ShippingQuotedAt = &quotedAt
	}
	return order
}

// buildPayment assembles the initial pending payment row.
func (s *Service) buildPayment(order *models.Order, data PaymentData, total float64) *models.Payment {
	payment := &models.Payment{
		Provider: models.PaymentProviderMercadoPago,
		Method:   data.Method,
		Amount:   total,
		Status:   models.PaymentStatusPending,
	}
	if data.Method == models.PaymentMethodCreditCard || data.Method == models.PaymentMethodDebitCard {
		payment.CardBrand = data.CardBrand
		payment.CardLastFour = data.CardLastFour
		payment.Installments = data.Installments
		if payment.Installments <= 0 {
			payment.Installments = 1
		}
	}
	return payment
}

func (s *Service) internalError(where string, err error) *Result {
	log.Printf("%s: %v", where, err)
	return failure(ErrCodeInternalError, "Erro interno ao processar o pagamento")
}

func formatIssues(issues []cartcheck.Issue) string {
	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		if issue.Title != "" && issue.Detail != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", issue.Title, issue.Detail))
		} else if issue.Detail != "" {
			parts = append(parts, issue.Detail)
		} else {
			parts = append(parts, issue.Kind)
		}
	}
	return "Alguns itens do carrinho precisam de atenção: " + strings.Join(parts, "; ")
}

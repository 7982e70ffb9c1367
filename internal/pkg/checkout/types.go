package checkout

import (
	"time"

	"github.com/vitrinelabs/vitrine/internal/pkg/shipping"
)

// Error codes returned by the checkout flows. The set is closed; the HTTP
// layer passes them through verbatim.
const (
	ErrCodePlanNotFound         = "PLAN_NOT_FOUND"
	ErrCodeAlreadySubscribed    = "ALREADY_SUBSCRIBED"
	ErrCodeAddressNotFound      = "ADDRESS_NOT_FOUND"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodeCartValidationFailed = "CART_VALIDATION_FAILED"
	ErrCodeInvalidTotal         = "INVALID_TOTAL"
	ErrCodePixCreationFailed    = "PIX_CREATION_FAILED"
	ErrCodePaymentFailed        = "PAYMENT_FAILED"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// PaymentData is the wire shape of the payment selection. Method-specific
// fields are only read after ResolveMethod validates the discriminator.
type PaymentData struct {
	Method       string `json:"method" validate:"required,oneof=pix credit_card debit_card"`
	CardToken    string `json:"cardToken,omitempty"`
	CardBrand    string `json:"cardBrand,omitempty"`
	CardLastFour string `json:"cardLastFour,omitempty"`
	Installments int    `json:"installments,omitempty"`
}

// PaymentMethod is the resolved, closed set of payment selections. Using a
// sum type instead of string comparison makes adding a method a
// compile-checked change in every switch.
type PaymentMethod interface {
	methodName() string
}

// PixMethod selects payment via a PIX charge confirmed asynchronously.
type PixMethod struct{}

// CardMethod selects a synchronous tokenized card charge.
type CardMethod struct {
	Token        string
	Brand        string
	LastFour     string
	Installments int
	Debit        bool
}

func (PixMethod) methodName() string  { return "pix" }
func (CardMethod) methodName() string { return "card" }

// ResolveMethod maps the wire discriminator to the tagged union. Unknown
// methods resolve to nil; callers must treat that as a validation failure.
func (p PaymentData) ResolveMethod() PaymentMethod {
	switch p.Method {
	case "pix":
		return PixMethod{}
	case "credit_card":
		return CardMethod{Token: p.CardToken, Brand: p.CardBrand, LastFour: p.CardLastFour, Installments: p.Installments}
	case "debit_card":
		return CardMethod{Token: p.CardToken, Brand: p.CardBrand, LastFour: p.CardLastFour, Installments: p.Installments, Debit: true}
	default:
		return nil
	}
}

// SubscriptionCheckoutRequest is the input DTO for the subscription flow.
type SubscriptionCheckoutRequest struct {
	PlanSlug       string           `json:"planSlug" validate:"required"`
	AddressID      uint             `json:"addressId" validate:"required"`
	PaymentData    PaymentData      `json:"paymentData" validate:"required"`
	ShippingOption *shipping.Option `json:"shippingOption,omitempty"`
}

// ProductCheckoutRequest is the input DTO for the product flow.
type ProductCheckoutRequest struct {
	AddressID      uint             `json:"addressId" validate:"required"`
	PaymentData    PaymentData      `json:"paymentData" validate:"required"`
	Notes          string           `json:"notes,omitempty"`
	ShippingOption *shipping.Option `json:"shippingOption,omitempty"`
}

// PaymentPreference carries the PIX data the client polls with.
type PaymentPreference struct {
	ProviderPaymentID string    `json:"providerPaymentId"`
	QRCode            string    `json:"qrCode"`
	QRCodeBase64      string    `json:"qrCodeBase64"`
	PixCopyPaste      string    `json:"pixCopyPaste"`
	TicketURL         string    `json:"ticketUrl,omitempty"`
	ExpiresAt         time.Time `json:"expiresAt"`
}

// Result is the outcome of a checkout flow, returned to the HTTP layer
// verbatim.
type Result struct {
	Success           bool               `json:"success"`
	Error             string             `json:"error,omitempty"`
	ErrorCode         string             `json:"errorCode,omitempty"`
	OrderID           uint               `json:"orderId,omitempty"`
	PaymentID         uint               `json:"paymentId,omitempty"`
	SubscriptionID    uint               `json:"subscriptionId,omitempty"`
	PaymentPreference *PaymentPreference `json:"paymentPreference,omitempty"`
}

func failure(code, message string) *Result {
	return &Result{Success: false, Error: message, ErrorCode: code}
}

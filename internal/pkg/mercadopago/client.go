package mercadopago

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/vitrinelabs/vitrine/internal/pkg/env"
)

const defaultAPIBaseURL = "https://api.mercadopago.com"

// PIX charges expire after this window; tracked as data on the payment row,
// not enforced locally.
const pixExpirationWindow = 30 * time.Minute

// Config carries everything the client needs. Built once at startup and
// injected, never read from globals inside request handling.
type Config struct {
	AccessToken   string
	APIBaseURL    string
	WebhookSecret string
	Timeout       time.Duration
}

// Client talks to the Mercado Pago payments API.
type Client struct {
	cfg  Config
	http *resty.Client
}

// NewClient creates a Mercado Pago client from an explicit config.
func NewClient(cfg Config) *Client {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIBaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.AccessToken).
		SetHeader("Content-Type", "application/json")

	return &Client{cfg: cfg, http: http}
}

// NewClientFromEnv builds the config from environment variables.
func NewClientFromEnv() *Client {
	return NewClient(Config{
		AccessToken:   strings.TrimSpace(env.GetEnv("MP_ACCESS_TOKEN", "")),
		APIBaseURL:    strings.TrimSpace(env.GetEnv("MP_API_BASE_URL", defaultAPIBaseURL)),
		WebhookSecret: strings.TrimSpace(env.GetEnv("MP_WEBHOOK_SECRET", "")),
	})
}

// WebhookSecret exposes the configured webhook signing secret.
func (c *Client) WebhookSecret() string {
	return c.cfg.WebhookSecret
}

// CreatePixPayment mints a PIX charge and returns the QR data the client
// needs for polling. The expiration window is set here, not by the caller.
func (c *Client) CreatePixPayment(ctx context.Context, req PixPaymentRequest) (*PixPaymentResult, error) {
	if c.cfg.AccessToken == "" {
		return nil, errors.New("MP_ACCESS_TOKEN is not configured")
	}
	if req.Amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	if strings.TrimSpace(req.ExternalReference) == "" {
		return nil, errors.New("external reference is required")
	}

	expiresAt := time.Now().Add(pixExpirationWindow)
	body := map[string]interface{}{
		"transaction_amount": req.Amount,
		"description":        req.Description,
		"payment_method_id":  "pix",
		"external_reference": req.ExternalReference,
		"date_of_expiration": expiresAt.Format("2006-01-02T15:04:05.000-07:00"),
		"payer": map[string]string{
			"email": req.Email,
		},
	}

	var out paymentResponse
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Idempotency-Key", uuid.NewString()).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/payments")
	if err != nil {
		return nil, fmt.Errorf("mercadopago create pix payment: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("mercadopago create pix payment: status=%d message=%s", resp.StatusCode(), apiErr.Message)
	}

	result := &PixPaymentResult{
		PaymentID:      fmt.Sprintf("%d", out.ID),
		Status:         out.Status,
		QRCode:         out.PointOfInteraction.TransactionData.QRCode,
		QRCodeBase64:   out.PointOfInteraction.TransactionData.QRCodeBase64,
		PixCopyPaste:   out.PointOfInteraction.TransactionData.QRCode,
		TicketURL:      out.PointOfInteraction.TransactionData.TicketURL,
		ExpirationDate: expiresAt,
	}
	if out.DateOfExpiration != "" {
		if t, err := time.Parse("2006-01-02T15:04:05.000-07:00", out.DateOfExpiration); err == nil {
			result.ExpirationDate = t
		}
	}
	return result, nil
}

// CreateCardPayment charges a tokenized card synchronously. A response with
// status "approved" is a success; anything else is reported as a decline
// with the provider's status detail as the reason. No automatic retry.
func (c *Client) CreateCardPayment(ctx context.Context, req CardPaymentRequest) (*CardPaymentResult, error) {
	if c.cfg.AccessToken == "" {
		return nil, errors.New("MP_ACCESS_TOKEN is not configured")
	}
	if strings.TrimSpace(req.Token) == "" {
		return nil, errors.New("card token is required")
	}
	if req.Amount <= 0 {
		return nil, errors.New("amount must be positive")
	}

	installments := req.Installments
	if installments <= 0 {
		installments = 1
	}
	body := map[string]interface{}{
		"transaction_amount": req.Amount,
		"token":              req.Token,
		"installments":       installments,
		"description":        req.Description,
		"external_reference": req.ExternalReference,
		"payer": map[string]string{
			"email": req.Email,
		},
	}
	if req.PaymentMethodID != "" {
		body["payment_method_id"] = req.PaymentMethodID
	}

	var out paymentResponse
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Idempotency-Key", uuid.NewString()).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/payments")
	if err != nil {
		return nil, fmt.Errorf("mercadopago create card payment: %w", err)
	}
	if resp.IsError() {
		return &CardPaymentResult{
			Approved: false,
			Message:  apiErr.Message,
		}, nil
	}

	return &CardPaymentResult{
		Approved:      out.Status == "approved",
		TransactionID: fmt.Sprintf("%d", out.ID),
		Status:        out.Status,
		StatusDetail:  out.StatusDetail,
		Message:       declineMessage(out.StatusDetail),
	}, nil
}

// GetPayment fetches the current provider-side state of a payment.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*PaymentStatus, error) {
	if c.cfg.AccessToken == "" {
		return nil, errors.New("MP_ACCESS_TOKEN is not configured")
	}

	var out paymentResponse
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get("/v1/payments/" + paymentID)
	if err != nil {
		return nil, fmt.Errorf("mercadopago get payment: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("mercadopago get payment: status=%d message=%s", resp.StatusCode(), apiErr.Message)
	}

	return &PaymentStatus{
		PaymentID:         fmt.Sprintf("%d", out.ID),
		Status:            out.Status,
		StatusDetail:      out.StatusDetail,
		ExternalReference: out.ExternalReference,
	}, nil
}

// declineMessage maps the provider's status detail to a user-facing
// Portuguese message.
func declineMessage(statusDetail string) string {
	switch statusDetail {
	case "accredited", "":
		return ""
	case "cc_rejected_insufficient_amount":
		return "Cartão sem limite disponível"
	case "cc_rejected_bad_filled_security_code":
		return "Código de segurança inválido"
	case "cc_rejected_bad_filled_date":
		return "Data de validade inválida"
	case "cc_rejected_call_for_authorize":
		return "Pagamento não autorizado pelo emissor do cartão"
	case "cc_rejected_high_risk":
		return "Pagamento recusado por análise de risco"
	default:
		return "Pagamento recusado pelo provedor"
	}
}

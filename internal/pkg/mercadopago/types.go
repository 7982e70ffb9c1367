package mercadopago

import "time"

// PixPaymentRequest is the normalized input for minting a PIX charge.
type PixPaymentRequest struct {
	Amount            float64
	Description       string
	Email             string
	ExternalReference string
}

// PixPaymentResult carries the QR data the storefront returns to the
// client for polling.
type PixPaymentResult struct {
	PaymentID      string
	Status         string
	QRCode         string
	QRCodeBase64   string
	PixCopyPaste   string
	TicketURL      string
	ExpirationDate time.Time
}

// CardPaymentRequest is the normalized input for a synchronous card charge.
type CardPaymentRequest struct {
	Amount            float64
	Token             string
	Installments      int
	PaymentMethodID   string
	Email             string
	Description       string
	ExternalReference string
}

// CardPaymentResult reports the synchronous outcome of a card charge.
type CardPaymentResult struct {
	Approved      bool
	TransactionID string
	Status        string
	StatusDetail  string
	Message       string
}

// PaymentStatus is the provider-side state of an existing payment.
type PaymentStatus struct {
	PaymentID         string
	Status            string
	StatusDetail      string
	ExternalReference string
}

// paymentResponse mirrors the fields we read from POST/GET /v1/payments.
type paymentResponse struct {
	ID                 int64  `json:"id"`
	Status             string `json:"status"`
	StatusDetail       string `json:"status_detail"`
	ExternalReference  string `json:"external_reference"`
	DateOfExpiration   string `json:"date_of_expiration"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
			TicketURL    string `json:"ticket_url"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}

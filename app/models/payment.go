package models

import "time"

const (
	PaymentProviderMercadoPago = "MERCADO_PAGO"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

const (
	PaymentMethodPix        = "pix"
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodDebitCard  = "debit_card"
)

// Payment is created right after its order and before the provider call, so
// a failed provider call still leaves an auditable failed-payment record.
// ProviderPaymentID is what webhook notifications echo back.
type Payment struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	OrderID           uint       `gorm:"not null;index" json:"order_id"`
	Provider          string     `gorm:"type:varchar(30);not null;default:'MERCADO_PAGO'" json:"provider"`
	ProviderPaymentID string     `gorm:"type:varchar(64);index" json:"provider_payment_id"`
	Method            string     `gorm:"type:varchar(20);not null" json:"method"`
	Amount            float64    `gorm:"not null" json:"amount"`
	Status            string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	FailureReason     string     `gorm:"type:text" json:"failure_reason,omitempty"`

	// PIX fields
	PixQRCode       string     `gorm:"type:text" json:"pix_qr_code,omitempty"`
	PixQRCodeBase64 string     `gorm:"type:longtext" json:"pix_qr_code_base64,omitempty"`
	PixCopyPaste    string     `gorm:"type:text" json:"pix_copy_paste,omitempty"`
	TicketURL       string     `gorm:"type:varchar(500)" json:"ticket_url,omitempty"`
	ExpiresAt       *time.Time `gorm:"type:timestamp;default:null" json:"expires_at,omitempty"`

	// Card fields
	CardBrand    string `gorm:"type:varchar(30)" json:"card_brand,omitempty"`
	CardLastFour string `gorm:"type:varchar(4)" json:"card_last_four,omitempty"`
	Installments int    `gorm:"default:1" json:"installments"`

	PaidAt    *time.Time `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

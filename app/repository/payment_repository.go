package repository

import (
	"time"

	"github.com/vitrinelabs/vitrine/app/models"
	"gorm.io/gorm"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create creates a new payment row
func (r *paymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// GetByID retrieves a payment by its internal ID
func (r *paymentRepository) GetByID(id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByProviderPaymentID retrieves a payment by the provider's payment id.
// Webhooks only echo the provider id, never our internal one.
func (r *paymentRepository) GetByProviderPaymentID(providerPaymentID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("provider_payment_id = ?", providerPaymentID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Update updates an existing payment
func (r *paymentRepository) Update(payment *models.Payment) error {
	return r.db.Save(payment).Error
}

// MarkPaid sets status paid and the paid_at timestamp. Already-paid rows
// stay paid, keeping webhook replays harmless.
func (r *paymentRepository) MarkPaid(id uint) error {
	now := time.Now()
	return r.db.Model(&models.Payment{}).
		Where("id = ? AND status <> ?", id, models.PaymentStatusPaid).
		Updates(map[string]interface{}{
			"status":  models.PaymentStatusPaid,
			"paid_at": &now,
		}).Error
}

// MarkFailed sets status failed with the provider's reason for audit
func (r *paymentRepository) MarkFailed(id uint, reason string) error {
	return r.db.Model(&models.Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         models.PaymentStatusFailed,
			"failure_reason": reason,
		}).Error
}

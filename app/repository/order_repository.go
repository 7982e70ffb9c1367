package repository

import (
	"time"

	"github.com/vitrinelabs/vitrine/app/models"
	"gorm.io/gorm"
)

// orderRepository implements the OrderRepository interface
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository instance
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateWithItems persists the order and its item snapshots in one
// transaction. GORM cascades the Items association on create.
func (r *orderRepository) CreateWithItems(order *models.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
}

// CreateWithPayment persists the order, its item snapshots and the initial
// payment row in one transaction, so a crash before the provider call never
// leaves an order without its auditable payment record.
func (r *orderRepository) CreateWithPayment(order *models.Order, payment *models.Payment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		payment.OrderID = order.ID
		return tx.Create(payment).Error
	})
}

// GetByID retrieves an order with items and payments
func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Preload("Payments").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByIDAndUser retrieves an order only when it belongs to the given user
func (r *orderRepository) GetByIDAndUser(id, userID uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Preload("Payments").
		Where("id = ? AND user_id = ?", id, userID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByExternalReference retrieves an order by the reference sent to the
// payment provider
func (r *orderRepository) GetByExternalReference(ref string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Preload("Payments").
		Where("external_reference = ?", ref).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser returns a page of the user's orders, newest first
func (r *orderRepository) ListByUser(userID uint, offset, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	return orders, err
}

// MarkPaidIfPending transitions PENDING -> PAID and reports whether this
// call performed the transition. Replayed webhooks find the order already
// PAID and get false, which suppresses their side effects.
func (r *orderRepository) MarkPaidIfPending(id uint) (bool, error) {
	now := time.Now()
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":  models.OrderStatusPaid,
			"paid_at": &now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkShipped transitions a paid order to SHIPPED
func (r *orderRepository) MarkShipped(id uint) error {
	now := time.Now()
	return r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderStatusPaid).
		Updates(map[string]interface{}{
			"status":     models.OrderStatusShipped,
			"shipped_at": &now,
		}).Error
}

// MarkDelivered transitions a shipped order to DELIVERED
func (r *orderRepository) MarkDelivered(id uint) error {
	now := time.Now()
	return r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderStatusShipped).
		Updates(map[string]interface{}{
			"status":       models.OrderStatusDelivered,
			"delivered_at": &now,
		}).Error
}

// Cancel marks an order as CANCELED
func (r *orderRepository) Cancel(id uint) error {
	return r.db.Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", models.OrderStatusCanceled).Error
}

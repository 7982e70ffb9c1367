package repository

import (
	"time"

	"github.com/vitrinelabs/vitrine/app/models"
	"gorm.io/gorm"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// GetByID retrieves a subscription with its plan and cycles
func (r *subscriptionRepository) GetByID(id uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Preload("Plan").Preload("Cycles").First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetActiveByUser returns the user's active subscription, if any
func (r *subscriptionRepository) GetActiveByUser(userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Preload("Plan").Preload("Cycles").
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ExistsActiveByUser reports whether the user holds any active subscription
func (r *subscriptionRepository) ExistsActiveByUser(userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Count(&count).Error
	return count > 0, err
}

// CreateWithFirstCycle creates the subscription and its first billing cycle
// in one transaction. The first cycle represents the already-paid initial
// period.
func (r *subscriptionRepository) CreateWithFirstCycle(sub *models.Subscription, cycle *models.SubscriptionCycle) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sub).Error; err != nil {
			return err
		}
		cycle.SubscriptionID = sub.ID
		return tx.Create(cycle).Error
	})
}

// Cancel marks a subscription as CANCELED
func (r *subscriptionRepository) Cancel(id uint) error {
	now := time.Now()
	res := r.db.Model(&models.Subscription{}).
		Where("id = ? AND status = ?", id, models.SubscriptionStatusActive).
		Updates(map[string]interface{}{
			"status":      models.SubscriptionStatusCanceled,
			"canceled_at": &now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

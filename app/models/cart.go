package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Cart holds the items a user intends to buy. One cart per user, created
// lazily on first access and cleared after a successful product checkout.
type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	Items     []CartItem `gorm:"foreignKey:CartID" json:"items"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// CartItem references a product (and optionally a variant) with the unit
// price captured at add time. Checkout trusts UnitPrice for monetary totals
// but re-validates stock against the live product rows.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"not null;index" json:"cart_id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	VariantID *uint     `gorm:"default:null" json:"variant_id,omitempty"`
	Quantity  int       `gorm:"not null" json:"quantity" validate:"gt=0"`
	UnitPrice float64   `gorm:"not null" json:"unit_price"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetOrCreateCartByUser returns the user's cart, creating an empty one when
// none exists yet.
func GetOrCreateCartByUser(db *gorm.DB, userID uint) (*Cart, error) {
	var cart Cart
	err := db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = Cart{UserID: userID}
	if err := db.Create(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

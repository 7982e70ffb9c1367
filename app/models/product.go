package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a catalog entity. Stock lives either on the product itself or,
// when variants exist, on each variant.
type Product struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Title       string           `gorm:"type:varchar(200);not null" json:"title" validate:"required,max=200"`
	Slug        string           `gorm:"type:varchar(220);uniqueIndex;not null" json:"slug" validate:"required,max=220"`
	SKU         string           `gorm:"type:varchar(64);uniqueIndex;not null" json:"sku" validate:"required,max=64"`
	Description string           `gorm:"type:text" json:"description"`
	Price       float64          `gorm:"not null" json:"price" validate:"gt=0"`
	Stock       int              `gorm:"not null;default:0" json:"stock"`
	IsActive    bool             `gorm:"default:true;index" json:"is_active"`
	ViewCount   uint64           `gorm:"default:0" json:"view_count"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
}

// ProductVariant is a purchasable variation of a product (size, flavor, ...)
// with its own SKU, price and stock.
type ProductVariant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name" validate:"required,max=100"`
	SKU       string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"sku" validate:"required,max=64"`
	Price     float64   `gorm:"not null" json:"price" validate:"gt=0"`
	Stock     int       `gorm:"not null;default:0" json:"stock"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

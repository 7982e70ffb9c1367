package models

import "time"

// Plan is a static catalog entity for recurring subscriptions. The discount
// percent applies to all product purchases made by active subscribers.
// Read-only from the checkout flow's perspective.
type Plan struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Slug            string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"slug"`
	Name            string    `gorm:"type:varchar(100);not null" json:"name"`
	Price           float64   `gorm:"not null" json:"price"`
	DiscountPercent float64   `gorm:"not null;default:0" json:"discount_percent"`
	Color           string    `gorm:"type:varchar(20)" json:"color"`
	BenefitsJSON    string    `gorm:"type:text" json:"benefits_json"`
	IsActive        bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

package models

import "time"

const (
	SubscriptionStatusActive   = "ACTIVE"
	SubscriptionStatusPaused   = "PAUSED"
	SubscriptionStatusCanceled = "CANCELED"
)

// Subscription links a user to a plan. The system enforces at most one
// active subscription per user at validation time, not via a uniqueness
// constraint.
type Subscription struct {
	ID                     uint                `gorm:"primaryKey" json:"id"`
	UserID                 uint                `gorm:"not null;index" json:"user_id"`
	PlanID                 uint                `gorm:"not null;index" json:"plan_id"`
	Plan                   Plan                `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	ProviderSubscriptionID string              `gorm:"type:varchar(64);index" json:"provider_subscription_id"`
	Status                 string              `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	Cycles                 []SubscriptionCycle `gorm:"foreignKey:SubscriptionID" json:"cycles,omitempty"`
	CanceledAt             *time.Time          `gorm:"type:timestamp;default:null" json:"canceled_at,omitempty"`
	CreatedAt              time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

// SubscriptionCycle is one billing period. The first cycle is created
// synchronously at subscription creation to represent the already-paid
// initial period.
type SubscriptionCycle struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SubscriptionID uint      `gorm:"not null;index" json:"subscription_id"`
	PeriodStart    time.Time `gorm:"not null" json:"period_start"`
	PeriodEnd      time.Time `gorm:"not null" json:"period_end"`
	Amount         float64   `gorm:"not null" json:"amount"`
	Paid           bool      `gorm:"default:false" json:"paid"`
	PaymentID      *uint     `gorm:"default:null" json:"payment_id,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsEntitling reports whether the subscription currently grants plan
// benefits (discounts) to its user.
func (s *Subscription) IsEntitling() bool {
	return s.Status == SubscriptionStatusActive
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Address is a user shipping address. Orders never reference it directly;
// they copy its fields into an immutable snapshot at checkout time.
type Address struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	Recipient  string         `gorm:"type:varchar(150);not null" json:"recipient" validate:"required,max=150"`
	Street     string         `gorm:"type:varchar(200);not null" json:"street" validate:"required,max=200"`
	Number     string         `gorm:"type:varchar(20);not null" json:"number" validate:"required,max=20"`
	Complement string         `gorm:"type:varchar(100);default:null" json:"complement" validate:"max=100"`
	District   string         `gorm:"type:varchar(100);not null" json:"district" validate:"required,max=100"`
	City       string         `gorm:"type:varchar(100);not null" json:"city" validate:"required,max=100"`
	State      string         `gorm:"type:varchar(2);not null" json:"state" validate:"required,len=2"`
	ZipCode    string         `gorm:"type:varchar(9);not null" json:"zip_code" validate:"required,min=8,max=9"`
	IsDefault  bool           `gorm:"default:false;index" json:"is_default"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

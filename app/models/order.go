package models

import "time"

const (
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCanceled  = "CANCELED"
)

const (
	OrderTypeProduct      = "product"
	OrderTypeSubscription = "subscription"
)

// Order is an immutable snapshot of a purchase intent. Address and shipping
// fields are denormalized copies, not foreign keys, so the order keeps its
// history even if the user later edits or deletes the source address.
// Status is mutated only by payment confirmation and shipment tracking;
// orders are never deleted.
type Order struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	UserID            uint        `gorm:"not null;index" json:"user_id"`
	Type              string      `gorm:"type:varchar(20);not null;default:'product';index" json:"type"`
	Status            string      `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	ExternalReference string      `gorm:"type:varchar(64);uniqueIndex;not null" json:"external_reference"`
	Subtotal          float64     `gorm:"not null" json:"subtotal"`
	Discount          float64     `gorm:"not null;default:0" json:"discount"`
	ShippingAmount    float64     `gorm:"not null;default:0" json:"shipping_amount"`
	Total             float64     `gorm:"not null" json:"total"`
	Notes             string      `gorm:"type:text" json:"notes"`
	Items             []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	Payments          []Payment   `gorm:"foreignKey:OrderID" json:"payments,omitempty"`

	// Address snapshot
	ShipRecipient  string `gorm:"type:varchar(150);not null" json:"ship_recipient"`
	ShipStreet     string `gorm:"type:varchar(200);not null" json:"ship_street"`
	ShipNumber     string `gorm:"type:varchar(20);not null" json:"ship_number"`
	ShipComplement string `gorm:"type:varchar(100)" json:"ship_complement"`
	ShipDistrict   string `gorm:"type:varchar(100);not null" json:"ship_district"`
	ShipCity       string `gorm:"type:varchar(100);not null" json:"ship_city"`
	ShipState      string `gorm:"type:varchar(2);not null" json:"ship_state"`
	ShipZipCode    string `gorm:"type:varchar(9);not null" json:"ship_zip_code"`

	// Shipping selection snapshot
	ShippingCarrier     string     `gorm:"type:varchar(50)" json:"shipping_carrier"`
	ShippingService     string     `gorm:"type:varchar(50)" json:"shipping_service"`
	ShippingServiceCode string     `gorm:"type:varchar(20)" json:"shipping_service_code"`
	ShippingDays        int        `gorm:"default:0" json:"shipping_days"`
	ShippingQuotedAt    *time.Time `gorm:"type:timestamp;default:null" json:"shipping_quoted_at,omitempty"`

	PaidAt      *time.Time `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	ShippedAt   *time.Time `gorm:"type:timestamp;default:null" json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `gorm:"type:timestamp;default:null" json:"delivered_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// OrderItem captures title, SKU and prices at order time, independent of the
// live product and variant rows.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"not null;index" json:"order_id"`
	ProductID uint    `gorm:"not null;index" json:"product_id"`
	VariantID *uint   `gorm:"default:null" json:"variant_id,omitempty"`
	Title     string  `gorm:"type:varchar(200);not null" json:"title"`
	SKU       string  `gorm:"type:varchar(64);not null" json:"sku"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
	Total     float64 `gorm:"not null" json:"total"`
}

// CanonicalPayment returns the first payment of the order, which the system
// treats as the canonical one.
func (o *Order) CanonicalPayment() *Payment {
	if len(o.Payments) == 0 {
		return nil
	}
	return &o.Payments[0]
}

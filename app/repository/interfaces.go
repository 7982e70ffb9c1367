package repository

import (
	"github.com/vitrinelabs/vitrine/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	TouchLastLogin(id uint) error
}

// AddressRepository defines the interface for address-related operations
type AddressRepository interface {
	Create(address *models.Address) error
	GetByID(id uint) (*models.Address, error)
	GetByIDAndUser(id, userID uint) (*models.Address, error)
	ListByUser(userID uint) ([]models.Address, error)
	GetDefaultByUser(userID uint) (*models.Address, error)
	Update(address *models.Address) error
	SetDefault(id, userID uint) error
	Delete(id, userID uint) error
}

// ProductRepository defines the interface for catalog operations. Stock
// mutations are conditional updates so two concurrent checkouts cannot both
// take the last unit.
type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id uint) (*models.Product, error)
	GetBySlug(slug string) (*models.Product, error)
	GetVariantByID(id uint) (*models.ProductVariant, error)
	ListActive(offset, limit int) ([]models.Product, error)
	Count() (int64, error)
	Update(product *models.Product) error
	DecrementStock(productID uint, variantID *uint, quantity int) error
	ApplyViewCounts(counts map[uint]int64) error
}

// CartRepository defines the interface for cart operations
type CartRepository interface {
	GetOrCreateByUser(userID uint) (*models.Cart, error)
	GetItem(itemID uint) (*models.CartItem, error)
	AddItem(cartID uint, item *models.CartItem) error
	UpdateItemQuantity(itemID uint, quantity int) error
	RemoveItem(cartID, itemID uint) error
	Clear(cartID uint) error
}

// OrderRepository defines the interface for order operations.
// MarkPaidIfPending is the idempotency primitive for webhook replays: it
// only transitions PENDING orders and reports whether the transition
// actually happened.
type OrderRepository interface {
	CreateWithItems(order *models.Order) error
	CreateWithPayment(order *models.Order, payment *models.Payment) error
	GetByID(id uint) (*models.Order, error)
	GetByIDAndUser(id, userID uint) (*models.Order, error)
	GetByExternalReference(ref string) (*models.Order, error)
	ListByUser(userID uint, offset, limit int) ([]models.Order, error)
	MarkPaidIfPending(id uint) (bool, error)
	MarkShipped(id uint) error
	MarkDelivered(id uint) error
	Cancel(id uint) error
}

// PaymentRepository defines the interface for payment operations
type PaymentRepository interface {
	Create(payment *models.Payment) error
	GetByID(id uint) (*models.Payment, error)
	GetByProviderPaymentID(providerPaymentID string) (*models.Payment, error)
	Update(payment *models.Payment) error
	MarkPaid(id uint) error
	MarkFailed(id uint, reason string) error
}

// PlanRepository defines the interface for subscription plan lookups
type PlanRepository interface {
	GetBySlug(slug string) (*models.Plan, error)
	GetByID(id uint) (*models.Plan, error)
	ListActive() ([]models.Plan, error)
}

// SubscriptionRepository defines the interface for subscription operations
type SubscriptionRepository interface {
	GetByID(id uint) (*models.Subscription, error)
	GetActiveByUser(userID uint) (*models.Subscription, error)
	ExistsActiveByUser(userID uint) (bool, error)
	CreateWithFirstCycle(sub *models.Subscription, cycle *models.SubscriptionCycle) error
	Cancel(id uint) error
}

// WebhookEventRepository persists provider webhook deliveries idempotently
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Address      AddressRepository
	Product      ProductRepository
	Cart         CartRepository
	Order        OrderRepository
	Payment      PaymentRepository
	Plan         PlanRepository
	Subscription SubscriptionRepository
	WebhookEvent WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Address:      NewAddressRepository(db),
		Product:      NewProductRepository(db),
		Cart:         NewCartRepository(db),
		Order:        NewOrderRepository(db),
		Payment:      NewPaymentRepository(db),
		Plan:         NewPlanRepository(db),
		Subscription: NewSubscriptionRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
	}
}

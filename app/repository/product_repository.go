package repository

import (
	"errors"

	"github.com/vitrinelabs/vitrine/app/models"
	"gorm.io/gorm"
)

// ErrInsufficientStock is returned when a conditional stock decrement finds
// fewer units than requested.
var ErrInsufficientStock = errors.New("insufficient stock")

// productRepository implements the ProductRepository interface
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create creates a new product
func (r *productRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// GetByID retrieves a product with its variants
func (r *productRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.Preload("Variants").First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetBySlug retrieves a product by its slug
func (r *productRepository) GetBySlug(slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.Preload("Variants").Where("slug = ?", slug).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetVariantByID retrieves a single product variant
func (r *productRepository) GetVariantByID(id uint) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.First(&variant, id).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// ListActive returns a page of active products
func (r *productRepository) ListActive(offset, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Preload("Variants").
		Where("is_active = ?", true).
		Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&products).Error
	return products, err
}

// Count returns the total number of products
func (r *productRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).Count(&count).Error
	return count, err
}

// Update updates an existing product
func (r *productRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

// DecrementStock atomically decrements stock for a product or variant.
// The conditional `stock >= quantity` keeps two concurrent paid checkouts
// from both taking the last units.
func (r *productRepository) DecrementStock(productID uint, variantID *uint, quantity int) error {
	var res *gorm.DB
	if variantID != nil {
		res = r.db.Model(&models.ProductVariant{}).
			Where("id = ? AND stock >= ?", *variantID, quantity).
			Update("stock", gorm.Expr("stock - ?", quantity))
	} else {
		res = r.db.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", productID, quantity).
			Update("stock", gorm.Expr("stock - ?", quantity))
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// ApplyViewCounts adds batched view counter increments to products
func (r *productRepository) ApplyViewCounts(counts map[uint]int64) error {
	for productID, n := range counts {
		if n <= 0 {
			continue
		}
		if err := r.db.Model(&models.Product{}).
			Where("id = ?", productID).
			Update("view_count", gorm.Expr("view_count + ?", n)).Error; err != nil {
			return err
		}
	}
	return nil
}

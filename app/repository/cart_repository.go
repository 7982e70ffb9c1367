package repository

import (
	"github.com/vitrinelabs/vitrine/app/models"
	"gorm.io/gorm"
)

// cartRepository implements the CartRepository interface
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a new cart repository instance
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

// GetOrCreateByUser returns the user's cart, creating it lazily
func (r *cartRepository) GetOrCreateByUser(userID uint) (*models.Cart, error) {
	return models.GetOrCreateCartByUser(r.db, userID)
}

// GetItem retrieves a single cart item
func (r *cartRepository) GetItem(itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.First(&item, itemID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AddItem adds an item to a cart. An existing line for the same
// product/variant has its quantity increased instead of duplicating.
func (r *cartRepository) AddItem(cartID uint, item *models.CartItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.CartItem
		query := tx.Where("cart_id = ? AND product_id = ?", cartID, item.ProductID)
		if item.VariantID != nil {
			query = query.Where("variant_id = ?", *item.VariantID)
		} else {
			query = query.Where("variant_id IS NULL")
		}
		err := query.First(&existing).Error
		if err == nil {
			existing.Quantity += item.Quantity
			*item = existing
			return tx.Save(&existing).Error
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		item.CartID = cartID
		return tx.Create(item).Error
	})
}

// UpdateItemQuantity sets a new quantity on a cart item
func (r *cartRepository) UpdateItemQuantity(itemID uint, quantity int) error {
	res := r.db.Model(&models.CartItem{}).Where("id = ?", itemID).Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RemoveItem deletes one item from a cart
func (r *cartRepository) RemoveItem(cartID, itemID uint) error {
	return r.db.Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&models.CartItem{}).Error
}

// Clear removes all items from a cart
func (r *cartRepository) Clear(cartID uint) error {
	return r.db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

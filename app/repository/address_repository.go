package repository

import (
	"github.com/vitrinelabs/vitrine/app/models"
	"gorm.io/gorm"
)

// addressRepository implements the AddressRepository interface
type addressRepository struct {
	db *gorm.DB
}

// NewAddressRepository creates a new address repository instance
func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

// Create creates a new address
func (r *addressRepository) Create(address *models.Address) error {
	return r.db.Create(address).Error
}

// GetByID retrieves an address by its ID
func (r *addressRepository) GetByID(id uint) (*models.Address, error) {
	var address models.Address
	err := r.db.First(&address, id).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// GetByIDAndUser retrieves an address only when it belongs to the given user
func (r *addressRepository) GetByIDAndUser(id, userID uint) (*models.Address, error) {
	var address models.Address
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// ListByUser returns all addresses of a user, default first
func (r *addressRepository) ListByUser(userID uint) ([]models.Address, error) {
	var addresses []models.Address
	err := r.db.Where("user_id = ?", userID).Order("is_default DESC, id ASC").Find(&addresses).Error
	return addresses, err
}

// GetDefaultByUser returns the user's default address
func (r *addressRepository) GetDefaultByUser(userID uint) (*models.Address, error) {
	var address models.Address
	err := r.db.Where("user_id = ? AND is_default = ?", userID, true).First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// Update updates an existing address
func (r *addressRepository) Update(address *models.Address) error {
	return r.db.Save(address).Error
}

// SetDefault flags one address as default and clears the flag on the rest
func (r *addressRepository) SetDefault(id, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Address{}).
			Where("user_id = ?", userID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Address{}).
			Where("id = ? AND user_id = ?", id, userID).
			Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Delete soft-deletes an address of the given user
func (r *addressRepository) Delete(id, userID uint) error {
	return r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Address{}).Error
}

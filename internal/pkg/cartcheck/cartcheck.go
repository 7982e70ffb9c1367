package cartcheck

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vitrinelabs/vitrine/app/models"
	"github.com/vitrinelabs/vitrine/app/repository"
)

// Issue kinds reported by cart validation.
const (
	IssueProductUnavailable = "PRODUCT_UNAVAILABLE"
	IssueVariantUnavailable = "VARIANT_UNAVAILABLE"
	IssueOutOfStock         = "OUT_OF_STOCK"
	IssueInsufficientStock  = "INSUFFICIENT_STOCK"
)

// Issue names one problem with one cart line.
type Issue struct {
	ProductID uint   `json:"product_id"`
	Title     string `json:"title"`
	Kind      string `json:"kind"`
	Detail    string `json:"detail,omitempty"`
}

// Result aggregates the validation outcome for a cart.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Validator checks cart contents against the live catalog before checkout.
type Validator struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

// NewValidator creates a cart validator.
func NewValidator(carts repository.CartRepository, products repository.ProductRepository) *Validator {
	return &Validator{carts: carts, products: products}
}

// ValidateForCheckout verifies every cart line against current product
// availability and stock. The checkout flow treats the result as an opaque
// precondition; it only formats the aggregated messages.
func (v *Validator) ValidateForCheckout(userID uint) (*Result, error) {
	cart, err := v.carts.GetOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}

	result := &Result{Valid: true}
	for _, item := range cart.Items {
		product, err := v.products.GetByID(item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.add(Issue{
					ProductID: item.ProductID,
					Kind:      IssueProductUnavailable,
					Detail:    "produto não encontrado",
				})
				continue
			}
			return nil, err
		}

		if !product.IsActive {
			result.add(Issue{
				ProductID: product.ID,
				Title:     product.Title,
				Kind:      IssueProductUnavailable,
				Detail:    "produto indisponível",
			})
			continue
		}

		stock := product.Stock
		if item.VariantID != nil {
			variant := findVariant(product, *item.VariantID)
			if variant == nil || !variant.IsActive {
				result.add(Issue{
					ProductID: product.ID,
					Title:     product.Title,
					Kind:      IssueVariantUnavailable,
					Detail:    "variação indisponível",
				})
				continue
			}
			stock = variant.Stock
		}

		switch {
		case stock <= 0:
			result.add(Issue{
				ProductID: product.ID,
				Title:     product.Title,
				Kind:      IssueOutOfStock,
				Detail:    "produto esgotado",
			})
		case stock < item.Quantity:
			result.add(Issue{
				ProductID: product.ID,
				Title:     product.Title,
				Kind:      IssueInsufficientStock,
				Detail:    fmt.Sprintf("apenas %d em estoque", stock),
			})
		}
	}

	return result, nil
}

func (r *Result) add(issue Issue) {
	r.Valid = false
	r.Issues = append(r.Issues, issue)
}

func findVariant(product *models.Product, variantID uint) *models.ProductVariant {
	for i := range product.Variants {
		if product.Variants[i].ID == variantID {
			return &product.Variants[i]
		}
	}
	return nil
}

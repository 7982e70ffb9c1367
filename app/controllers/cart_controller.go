package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/vitrinelabs/vitrine/app/models"
	"github.com/vitrinelabs/vitrine/app/repository"
	"github.com/vitrinelabs/vitrine/internal/pkg/usercontext"
)

type addCartItemRequest struct {
	ProductID uint  `json:"productId" validate:"required"`
	VariantID *uint `json:"variantId,omitempty"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// HandleGetCart returns the user's cart, created lazily.
func HandleGetCart(c *fiber.Ctx) error {
	cart, err := repository.GetGlobalFactory().GetCartRepository().GetOrCreateByUser(usercontext.GetUserID(c))
	if err != nil {
		return jsonInternalError(c, "Não foi possível carregar o carrinho")
	}
	return c.JSON(cart)
}

// HandleAddCartItem adds a product (or variant) line to the cart. The unit
// price snapshot is taken here, from the live catalog row.
func HandleAddCartItem(c *fiber.Ctx) error {
	var req addCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonBadRequest(c, "Corpo da requisição inválido")
	}
	if err := validate.Struct(req); err != nil {
		return jsonBadRequest(c, "Produto e quantidade são obrigatórios")
	}

	factory := repository.GetGlobalFactory()
	products := factory.GetProductRepository()

	product, err := products.GetByID(req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonNotFound(c, "Produto não encontrado")
		}
		return jsonInternalError(c, "Não foi possível carregar o produto")
	}
	if !product.IsActive {
		return jsonError(c, fiber.StatusUnprocessableEntity, "product_unavailable", "Produto indisponível")
	}

	unitPrice := product.Price
	if req.VariantID != nil {
		variant, err := products.GetVariantByID(*req.VariantID)
		if err != nil || variant.ProductID != product.ID {
			return jsonNotFound(c, "Variação não encontrada")
		}
		if !variant.IsActive {
			return jsonError(c, fiber.StatusUnprocessableEntity, "variant_unavailable", "Variação indisponível")
		}
		unitPrice = variant.Price
	}

	carts := factory.GetCartRepository()
	cart, err := carts.GetOrCreateByUser(usercontext.GetUserID(c))
	if err != nil {
		return jsonInternalError(c, "Não foi possível carregar o carrinho")
	}

	item := &models.CartItem{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
		UnitPrice: unitPrice,
	}
	if err := carts.AddItem(cart.ID, item); err != nil {
		return jsonInternalError(c, "Não foi possível adicionar o item")
	}

	cart, err = carts.GetOrCreateByUser(usercontext.GetUserID(c))
	if err != nil {
		return jsonInternalError(c, "Não foi possível carregar o carrinho")
	}
	return c.Status(fiber.StatusCreated).JSON(cart)
}

// HandleUpdateCartItem changes the quantity of a cart line.
func HandleUpdateCartItem(c *fiber.Ctx) error {
	itemID := parseUintParam(c, "id")
	if itemID == 0 {
		return jsonBadRequest(c, "Item inválido")
	}

	var req updateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonBadRequest(c, "Corpo da requisição inválido")
	}
	if err := validate.Struct(req); err != nil {
		return jsonBadRequest(c, "Quantidade deve ser maior que zero")
	}

	carts := repository.GetGlobalFactory().GetCartRepository()
	cart, err := carts.GetOrCreateByUser(usercontext.GetUserID(c))
	if err != nil {
		return jsonInternalError(c, "Não foi possível carregar o carrinho")
	}
	item, err := carts.GetItem(itemID)
	if err != nil || item.CartID != cart.ID {
		return jsonNotFound(c, "Item não encontrado no carrinho")
	}

	if err := carts.UpdateItemQuantity(itemID, req.Quantity); err != nil {
		return jsonInternalError(c, "Não foi possível atualizar o item")
	}

	cart, err = carts.GetOrCreateByUser(usercontext.GetUserID(c))
	if err != nil {
		return jsonInternalError(c, "Não foi possível carregar o carrinho")
	}
	return c.JSON(cart)
}

// HandleRemoveCartItem removes one line from the cart.
func HandleRemoveCartItem(c *fiber.Ctx) error {
	itemID := parseUintParam(c, "id")
	if itemID == 0 {
		return jsonBadRequest(c, "Item inválido")
	}

	carts := repository.GetGlobalFactory().GetCartRepository()
	cart, err := carts.GetOrCreateByUser(usercontext.GetUserID(c))
	if err != nil {
		return jsonInternalError(c, "Não foi possível carregar o carrinho")
	}
	if err := carts.RemoveItem(cart.ID, itemID); err != nil {
		return jsonInternalError(c, "Não foi possível remover o item")
	}
	return c.JSON(fiber.Map{"ok": true})
}

// HandleClearCart empties the cart.
func HandleClearCart(c *fiber.Ctx) error {
	carts := repository.GetGlobalFactory().GetCartRepository()
	cart, err := carts.GetOrCreateByUser(usercontext.GetUserID(c))
	if err != nil {
		return jsonInternalError(c, "Não foi possível carregar o carrinho")
	}
	if err := carts.Clear(cart.ID); err != nil {
		return jsonInternalError(c, "Não foi possível esvaziar o carrinho")
	}
	return c.JSON(fiber.Map{"ok": true})
}

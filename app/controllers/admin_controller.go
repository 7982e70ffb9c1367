package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/vitrinelabs/vitrine/app/models"
	"github.com/vitrinelabs/vitrine/app/repository"
)

type adminProductRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Slug        string  `json:"slug" validate:"required,max=220"`
	SKU         string  `json:"sku" validate:"required,max=64"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	IsActive    *bool   `json:"isActive"`
}

// HandleAdminCreateProduct adds a product to the catalog.
func HandleAdminCreateProduct(c *fiber.Ctx) error {
	var req adminProductRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonBadRequest(c, "Dados inválidos")
	}
	if err := validate.Struct(req); err != nil {
		return jsonBadRequest(c, "Dados inválidos: "+err.Error())
	}

	product := &models.Product{
		Title:       req.Title,
		Slug:        req.Slug,
		SKU:         req.SKU,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := repository.GetGlobalFactory().GetProductRepository().Create(product); err != nil {
		return jsonInternalError(c, "Não foi possível criar o produto")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleAdminUpdateProduct replaces a catalog product's fields.
func HandleAdminUpdateProduct(c *fiber.Ctx) error {
	id := parseUintParam(c, "id")
	if id == 0 {
		return jsonNotFound(c, "Produto não encontrado")
	}

	repo := repository.GetGlobalFactory().GetProductRepository()
	product, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonNotFound(c, "Produto não encontrado")
		}
		return jsonInternalError(c, "Não foi possível carregar o produto")
	}

	var req adminProductRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonBadRequest(c, "Dados inválidos")
	}
	if err := validate.Struct(req); err != nil {
		return jsonBadRequest(c, "Dados inválidos: "+err.Error())
	}

	product.Title = req.Title
	product.Slug = req.Slug
	product.SKU = req.SKU
	product.Description = req.Description
	product.Price = req.Price
	product.Stock = req.Stock
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := repo.Update(product); err != nil {
		return jsonInternalError(c, "Não foi possível atualizar o produto")
	}
	return c.JSON(product)
}

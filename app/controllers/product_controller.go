package controllers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/vitrinelabs/vitrine/app/repository"
	"github.com/vitrinelabs/vitrine/internal/pkg/metrics/counter"
)

const productPageSize = 24

// HandleListProducts returns a page of active catalog products.
func HandleListProducts(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	repo := repository.GetGlobalFactory().GetProductRepository()
	products, err := repo.ListActive((page-1)*productPageSize, productPageSize)
	if err != nil {
		return jsonInternalError(c, "Não foi possível carregar os produtos")
	}
	total, err := repo.Count()
	if err != nil {
		return jsonInternalError(c, "Não foi possível carregar os produtos")
	}

	return c.JSON(fiber.Map{
		"products": products,
		"page":     page,
		"pageSize": productPageSize,
		"total":    total,
	})
}

// HandleGetProduct returns a single product by slug and records a view.
func HandleGetProduct(c *fiber.Ctx) error {
	slug := c.Params("slug")
	repo := repository.GetGlobalFactory().GetProductRepository()
	product, err := repo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonNotFound(c, "Produto não encontrado")
		}
		return jsonInternalError(c, "Não foi possível carregar o produto")
	}

	// View counting is buffered in redis and flushed periodically; a miss
	// here never fails the request.
	if err := counter.AddProductView(product.ID); err != nil {
		log.Printf("product view count failed (product=%d): %v", product.ID, err)
	}

	return c.JSON(product)
}

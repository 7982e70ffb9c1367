package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/vitrinelabs/vitrine/app/repository"
	"github.com/vitrinelabs/vitrine/internal/pkg/usercontext"
)

const orderPageSize = 20

// HandleListOrders returns the user's orders, newest first.
func HandleListOrders(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	orders, err := repository.GetGlobalFactory().GetOrderRepository().
		ListByUser(usercontext.GetUserID(c), (page-1)*orderPageSize, orderPageSize)
	if err != nil {
		return jsonInternalError(c, "Não foi possível carregar os pedidos")
	}
	return c.JSON(fiber.Map{"orders": orders, "page": page, "pageSize": orderPageSize})
}

// HandleGetOrder returns one of the user's orders with items and payments.
func HandleGetOrder(c *fiber.Ctx) error {
	id := parseUintParam(c, "id")
	if id == 0 {
		return jsonBadRequest(c, "Pedido inválido")
	}

	order, err := repository.GetGlobalFactory().GetOrderRepository().
		GetByIDAndUser(id, usercontext.GetUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonNotFound(c, "Pedido não encontrado")
		}
		return jsonInternalError(c, "Não foi possível carregar o pedido")
	}
	return c.JSON(order)
}

package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vitrinelabs/vitrine/internal/pkg/shipping"
)

// HandleShippingQuote returns carrier options for a destination zip code.
func HandleShippingQuote(c *fiber.Ctx) error {
	zip := c.Query("zip")
	if zip == "" {
		return jsonBadRequest(c, "Informe o CEP de destino")
	}

	options, err := shipping.QuoteOptions(zip)
	if err != nil {
		return jsonBadRequest(c, "CEP inválido")
	}
	return c.JSON(fiber.Map{"options": options})
}

package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vitrinelabs/vitrine/internal/pkg/checkout"
	"github.com/vitrinelabs/vitrine/internal/pkg/usercontext"
)

var checkoutService *checkout.Service

// SetCheckoutService installs the checkout service built at startup. Must
// run before the checkout and webhook routes are served.
func SetCheckoutService(svc *checkout.Service) {
	checkoutService = svc
}

// HandleSubscriptionCheckout starts a subscription purchase.
func HandleSubscriptionCheckout(c *fiber.Ctx) error {
	var req checkout.SubscriptionCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonBadRequest(c, "Corpo da requisição inválido")
	}
	if err := validate.Struct(req); err != nil {
		return jsonBadRequest(c, "Dados do checkout inválidos")
	}

	result := checkoutService.ProcessSubscriptionCheckout(c.Context(), usercontext.GetUserID(c), req)
	return c.Status(checkoutStatus(result)).JSON(result)
}

// HandleProductCheckout purchases the user's cart.
func HandleProductCheckout(c *fiber.Ctx) error {
	var req checkout.ProductCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonBadRequest(c, "Corpo da requisição inválido")
	}
	if err := validate.Struct(req); err != nil {
		return jsonBadRequest(c, "Dados do checkout inválidos")
	}

	result := checkoutService.ProcessProductCheckout(c.Context(), usercontext.GetUserID(c), req)
	return c.Status(checkoutStatus(result)).JSON(result)
}

// checkoutStatus maps a checkout result to the HTTP status; the body always
// carries the full result verbatim.
func checkoutStatus(result *checkout.Result) int {
	if result.Success {
		return fiber.StatusOK
	}
	switch result.ErrorCode {
	case checkout.ErrCodePlanNotFound, checkout.ErrCodeAddressNotFound:
		return fiber.StatusNotFound
	case checkout.ErrCodeAlreadySubscribed, checkout.ErrCodeEmptyCart,
		checkout.ErrCodeCartValidationFailed, checkout.ErrCodeInvalidTotal:
		return fiber.StatusUnprocessableEntity
	case checkout.ErrCodePaymentFailed:
		return fiber.StatusPaymentRequired
	case checkout.ErrCodePixCreationFailed:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/vitrinelabs/vitrine/app/repository"
	"github.com/vitrinelabs/vitrine/internal/pkg/cache"
	"github.com/vitrinelabs/vitrine/internal/pkg/usercontext"
)

// Clients poll this while waiting for a PIX confirmation, so the response
// is cached briefly to keep the DB out of the hot path.
const paymentStatusCacheTTL = 5 * time.Second

type paymentStatusResponse struct {
	PaymentID uint       `json:"paymentId"`
	OrderID   uint       `json:"orderId"`
	Status    string     `json:"status"`
	PaidAt    *time.Time `json:"paidAt,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// HandleGetPaymentStatus returns the current status of one of the user's
// payments.
func HandleGetPaymentStatus(c *fiber.Ctx) error {
	id := parseUintParam(c, "id")
	if id == 0 {
		return jsonBadRequest(c, "Pagamento inválido")
	}
	userID := usercontext.GetUserID(c)

	cacheKey := fmt.Sprintf("payment:status:%d:%d", userID, id)
	if cached, err := cache.Get(cacheKey); err == nil && cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	factory := repository.GetGlobalFactory()
	payment, err := factory.GetPaymentRepository().GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonNotFound(c, "Pagamento não encontrado")
		}
		return jsonInternalError(c, "Não foi possível carregar o pagamento")
	}

	// Ownership check goes through the order the payment belongs to.
	if _, err := factory.GetOrderRepository().GetByIDAndUser(payment.OrderID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonNotFound(c, "Pagamento não encontrado")
		}
		return jsonInternalError(c, "Não foi possível carregar o pagamento")
	}

	resp := paymentStatusResponse{
		PaymentID: payment.ID,
		OrderID:   payment.OrderID,
		Status:    payment.Status,
		PaidAt:    payment.PaidAt,
		ExpiresAt: payment.ExpiresAt,
	}
	body, err := json.Marshal(resp)
	if err != nil {
		return jsonInternalError(c, "Não foi possível carregar o pagamento")
	}
	if err := cache.Set(cacheKey, string(body), paymentStatusCacheTTL); err != nil {
		log.Printf("payment status cache write failed (payment=%d): %v", id, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

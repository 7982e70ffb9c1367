package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/vitrinelabs/vitrine/app/repository"
	"github.com/vitrinelabs/vitrine/internal/pkg/usercontext"
)

// HandleGetSubscription returns the user's active subscription with its
// plan and billing cycles.
func HandleGetSubscription(c *fiber.Ctx) error {
	sub, err := repository.GetGlobalFactory().GetSubscriptionRepository().
		GetActiveByUser(usercontext.GetUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonNotFound(c, "Você não possui uma assinatura ativa")
		}
		return jsonInternalError(c, "Não foi possível carregar a assinatura")
	}
	return c.JSON(sub)
}

// HandleCancelSubscription cancels the user's active subscription. Benefits
// stop immediately; there is no proration.
func HandleCancelSubscription(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetSubscriptionRepository()
	sub, err := repo.GetActiveByUser(usercontext.GetUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonNotFound(c, "Você não possui uma assinatura ativa")
		}
		return jsonInternalError(c, "Não foi possível carregar a assinatura")
	}
	if err := repo.Cancel(sub.ID); err != nil {
		return jsonInternalError(c, "Não foi possível cancelar a assinatura")
	}
	return c.JSON(fiber.Map{"ok": true})
}

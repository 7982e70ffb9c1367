package controllers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vitrinelabs/vitrine/app/repository"
	"github.com/vitrinelabs/vitrine/internal/pkg/cache"
)

const (
	planListCacheKey = "plans:active"
	planListCacheTTL = 5 * time.Minute
)

// HandleListPlans returns the active subscription plans. The plan catalog
// changes rarely, so the serialized list is cached in redis.
func HandleListPlans(c *fiber.Ctx) error {
	if cached, err := cache.Get(planListCacheKey); err == nil && cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	plans, err := repository.GetGlobalFactory().GetPlanRepository().ListActive()
	if err != nil {
		return jsonInternalError(c, "Não foi possível carregar os planos")
	}

	body, err := json.Marshal(fiber.Map{"plans": plans})
	if err != nil {
		return jsonInternalError(c, "Não foi possível carregar os planos")
	}
	if err := cache.Set(planListCacheKey, string(body), planListCacheTTL); err != nil {
		log.Printf("plan list cache write failed: %v", err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

// InvalidatePlanCache drops the cached plan list. Admin plan mutations
// call this after a write.
func InvalidatePlanCache() {
	if err := cache.Delete(planListCacheKey); err != nil {
		log.Printf("plan list cache invalidation failed: %v", err)
	}
}

package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/vitrinelabs/vitrine/app/repository"
	"github.com/vitrinelabs/vitrine/internal/pkg/cache"
	"github.com/vitrinelabs/vitrine/internal/pkg/constants"
	"github.com/vitrinelabs/vitrine/internal/pkg/database"
	"github.com/vitrinelabs/vitrine/internal/pkg/env"
	"github.com/vitrinelabs/vitrine/internal/pkg/metrics/counter"
	"github.com/vitrinelabs/vitrine/internal/pkg/router"
)

const viewFlushInterval = 1 * time.Minute

func main() {
	app := NewApplication()

	startViewCountFlusher()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	app := fiber.New(fiber.Config{
		AppName: "vitrine",
	})

	app.Use(recover.New(), logger.New())

	app.Get(constants.HealthRoute, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// SWAGGER / OPENAPI
	if _, err := os.Stat("public/docs/v1/openapi.yml"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: "public/docs/v1/openapi.yml",
			Path:     "v1",
		}))
	}

	// ROUTER
	router.InstallRouter(app)

	return app
}

// startViewCountFlusher periodically drains the redis view counters into
// the product table.
func startViewCountFlusher() {
	productRepo := repository.GetGlobalFactory().GetProductRepository()
	go func() {
		ticker := time.NewTicker(viewFlushInterval)
		defer ticker.Stop()
		for range ticker.C {
			if err := counter.FlushProductViews(productRepo); err != nil {
				log.Printf("product view flush failed: %v", err)
			}
		}
	}()
}

package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/vitrinelabs/vitrine/app/controllers"
	"github.com/vitrinelabs/vitrine/app/repository"
	"github.com/vitrinelabs/vitrine/internal/pkg/cartcheck"
	"github.com/vitrinelabs/vitrine/internal/pkg/checkout"
	"github.com/vitrinelabs/vitrine/internal/pkg/mercadopago"
	"github.com/vitrinelabs/vitrine/internal/pkg/middleware"
	"github.com/vitrinelabs/vitrine/internal/pkg/session"
)

type ApiRouter struct {
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	// init session store before the user context middleware reads it
	session.NewSessionStore()
	app.Use(middleware.UserContextMiddleware)

	// Provider client and checkout service are built once here and
	// injected; controllers never construct clients themselves.
	repos := repository.GetGlobalFactory().GetRepositories()
	mpClient := mercadopago.NewClientFromEnv()
	validator := cartcheck.NewValidator(repos.Cart, repos.Product)
	controllers.SetCheckoutService(checkout.NewService(repos, mpClient, validator))
	controllers.SetWebhookSecret(mpClient.WebhookSecret())

	api := app.Group("/api", limiter.New(limiter.Config{Max: 120}))
	v1 := api.Group("/v1")

	auth := v1.Group("/auth")
	auth.Post("/register", controllers.HandleRegister)
	auth.Post("/login", controllers.HandleLogin)
	auth.Post("/logout", middleware.RequireAuth, controllers.HandleLogout)
	auth.Get("/me", middleware.RequireAuth, controllers.HandleMe)

	v1.Get("/products", controllers.HandleListProducts)
	v1.Get("/products/:slug", controllers.HandleGetProduct)
	v1.Get("/plans", controllers.HandleListPlans)
	v1.Get("/shipping/quote", controllers.HandleShippingQuote)

	cart := v1.Group("/cart", middleware.RequireAuth)
	cart.Get("/", controllers.HandleGetCart)
	cart.Post("/items", controllers.HandleAddCartItem)
	cart.Put("/items/:id", controllers.HandleUpdateCartItem)
	cart.Delete("/items/:id", controllers.HandleRemoveCartItem)
	cart.Delete("/", controllers.HandleClearCart)

	addresses := v1.Group("/addresses", middleware.RequireAuth)
	addresses.Get("/", controllers.HandleListAddresses)
	addresses.Post("/", controllers.HandleCreateAddress)
	addresses.Put("/:id", controllers.HandleUpdateAddress)
	addresses.Delete("/:id", controllers.HandleDeleteAddress)

	checkoutGroup := v1.Group("/checkout", middleware.RequireAuth)
	checkoutGroup.Post("/product", controllers.HandleProductCheckout)
	checkoutGroup.Post("/subscription", controllers.HandleSubscriptionCheckout)

	orders := v1.Group("/orders", middleware.RequireAuth)
	orders.Get("/", controllers.HandleListOrders)
	orders.Get("/:id", controllers.HandleGetOrder)

	v1.Get("/payments/:id/status", middleware.RequireAuth, controllers.HandleGetPaymentStatus)

	v1.Get("/subscription", middleware.RequireAuth, controllers.HandleGetSubscription)
	v1.Delete("/subscription", middleware.RequireAuth, controllers.HandleCancelSubscription)

	admin := v1.Group("/admin", middleware.RequireAdmin)
	admin.Post("/products", controllers.HandleAdminCreateProduct)
	admin.Put("/products/:id", controllers.HandleAdminUpdateProduct)

	// Provider callbacks are unauthenticated; the signature check happens
	// inside the handler.
	v1.Post("/webhooks/mercadopago", controllers.HandleMercadoPagoWebhook)
}

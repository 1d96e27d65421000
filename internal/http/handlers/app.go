package handlers

import (
	"errors"
	"time"

	"beecommerce/internal/authz"
	"beecommerce/internal/config"
	applog "beecommerce/internal/log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// ErrorHandler logs unexpected errors and answers with a generic body so
// internals never reach the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return fail(c, fe.Code, "error", fe.Message)
	}
	applog.Error(c, "server.error", err, nil)
	return fail(c, fiber.StatusInternalServerError, "server_error", "Something went wrong. Please try again.")
}

// NewApp builds the JSON API with its middleware chain and routes.
func NewApp(cfg config.Config, d *Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler,
		BodyLimit:    1 << 20, // 1 MiB
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(d.Metrics.Middleware())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz" || c.Path() == "/metrics"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return fail(c, fiber.StatusTooManyRequests, "rate_limited", "rate limit exceeded, retry soon")
		},
	}))
	app.Use(Authenticate(d.Tokens))

	// ---------- Ops ----------
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))

	api := app.Group("/api")

	// Accounts & tokens (token endpoint throttled)
	api.Post("/accounts/register", d.AuthHandler.Register)
	api.Get("/accounts/profile", Require(authz.ReadProfile), d.AuthHandler.Profile)
	api.Post("/token", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return fail(c, fiber.StatusTooManyRequests, "rate_limited", "too many attempts, please try again later")
		},
	}), d.AuthHandler.Token)
	api.Post("/token/refresh", d.AuthHandler.Refresh)
	api.Post("/token/verify", d.AuthHandler.Verify)

	// Catalog: public reads, admin writes
	writeCatalog := Require(authz.WriteCatalog)
	api.Get("/categories", d.CategoryHandler.List)
	api.Get("/categories/:id", d.CategoryHandler.Get)
	api.Post("/categories", writeCatalog, d.CategoryHandler.Create)
	api.Put("/categories/:id", writeCatalog, d.CategoryHandler.Update)
	api.Patch("/categories/:id", writeCatalog, d.CategoryHandler.Update)
	api.Delete("/categories/:id", writeCatalog, d.CategoryHandler.Delete)

	api.Get("/products", d.ProductHandler.List)
	api.Get("/products/:id", d.ProductHandler.Get)
	api.Get("/products/:id/availability", d.InventoryHandler.Check)
	api.Post("/products", writeCatalog, d.ProductHandler.Create)
	api.Put("/products/:id", writeCatalog, d.ProductHandler.Update)
	api.Patch("/products/:id", writeCatalog, d.ProductHandler.Update)
	api.Delete("/products/:id", writeCatalog, d.ProductHandler.Delete)

	// Cart
	useCart := Require(authz.UseCart)
	api.Get("/carts", useCart, d.CartHandler.View)
	api.Get("/cart-items", useCart, d.CartHandler.Items)
	api.Post("/cart-items", useCart, d.CartHandler.Add)
	api.Patch("/cart-items/:id", useCart, d.CartHandler.Update)
	api.Delete("/cart-items/:id", useCart, d.CartHandler.Remove)

	// Orders; ownership is checked per order
	signedIn := Require(authz.ReadProfile)
	api.Post("/checkout", Require(authz.Checkout), d.OrderHandler.Checkout)
	api.Get("/orders", signedIn, d.OrderHandler.List)
	api.Get("/orders/:id", signedIn, d.OrderHandler.Get)
	api.Get("/order-items", signedIn, d.OrderHandler.Items)
	api.Post("/orders/:id/cancel", signedIn, d.OrderHandler.Cancel)
	api.Patch("/orders/:id/status", Require(authz.UpdateOrderStatus), d.AdminHandler.UpdateOrderStatus)

	// Admin stock management
	admin := api.Group("/admin", Require(authz.ManageStock))
	admin.Get("/inventory", d.AdminHandler.LowStock)
	admin.Put("/inventory/:id", d.AdminHandler.SetStock)

	app.Use(func(c *fiber.Ctx) error {
		return fail(c, fiber.StatusNotFound, "not_found", "resource not found")
	})
	return app
}

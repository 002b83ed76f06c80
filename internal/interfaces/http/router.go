package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias del router.
type RouterDeps struct {
	JWTSecret       string
	AuthHandler     *AuthHandler
	CustomerHandler *CustomerHandler
	InvoiceHandler  *InvoiceHandler
}

// Router registra todas las rutas de la API. /api/auth es público; el resto
// exige Bearer token y opera dentro del tenant del token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// ── Público ──
	authGroup := api.Group("/auth")
	authGroup.Post("/register", deps.AuthHandler.Register)
	authGroup.Post("/login", deps.AuthHandler.Login)

	// ── Protegido ──
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	customers := protected.Group("/customers")
	customers.Post("/", deps.CustomerHandler.Create)
	customers.Get("/", deps.CustomerHandler.List)
	customers.Get("/:id", deps.CustomerHandler.Get)
	customers.Put("/:id", deps.CustomerHandler.Update)
	customers.Delete("/:id", RequireRole("admin"), deps.CustomerHandler.Delete)

	invoices := protected.Group("/invoices")
	invoices.Post("/", deps.InvoiceHandler.Create)
	invoices.Get("/", deps.InvoiceHandler.List)
	invoices.Get("/:id", deps.InvoiceHandler.Get)
	invoices.Put("/:id", deps.InvoiceHandler.Update)
	invoices.Delete("/:id", deps.InvoiceHandler.Delete)
	invoices.Post("/:id/issue", deps.InvoiceHandler.Issue)
	invoices.Get("/:id/document", deps.InvoiceHandler.Document)
	invoices.Get("/:id/document/signed", deps.InvoiceHandler.SignedDocument)
	invoices.Post("/:id/sign", deps.InvoiceHandler.Sign)
}

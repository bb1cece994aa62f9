package router

import (
	"github.com/eubbbruno/instauto/app/controllers"
	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Payment processor webhooks (no session, optionally signature-verified in controller)
	app.Post("/webhooks/mercadopago", controllers.HandleMercadoPagoWebhook)
	app.Get("/webhooks/mercadopago", controllers.HandleMercadoPagoWebhookStatus)

	// Social OAuth
	app.Get("/auth/:provider", controllers.HandleOAuthBegin)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)
}

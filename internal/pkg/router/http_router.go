package router

import (
	"github.com/eubbbruno/instauto/app/controllers"
	"github.com/eubbbruno/instauto/internal/pkg/middleware"
	"github.com/eubbbruno/instauto/internal/pkg/oauth"
	"github.com/eubbbruno/instauto/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	controllers.InitializeBillingController()
	controllers.InitializeAuthController()
	controllers.InitializeOAuthController()

	h.registerPublicRoutes(app)
	h.registerAccountRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

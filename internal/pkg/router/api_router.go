package router

import (
	"time"

	"github.com/eubbbruno/instauto/app/controllers"
	"github.com/eubbbruno/instauto/internal/pkg/cache"
	"github.com/eubbbruno/instauto/internal/pkg/env"
	"github.com/eubbbruno/instauto/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", cors.New(corsConfig()), limiter.New(limiter.Config{
		Max:        env.GetEnvInt("API_RATE_LIMIT", 120),
		Expiration: time.Minute,
		Storage:    cache.NewStorage(cache.DBLimiter),
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")
	v1.Get("/ping", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"message": "pong"})
	})
	v1.Get("/flash", controllers.HandleFlashMessages)
	v1.Get("/me", middleware.RequireAuth, controllers.HandleGetAccount)

	controllers.InitializeAccessController()
	guard := controllers.GetAccessController().Guard()

	workshop := v1.Group("/workshop", middleware.RequireWorkshop)
	workshop.Get("/access", controllers.HandleWorkshopAccess)
	workshop.Get("/dashboard", middleware.RequirePlanAccess(guard), controllers.HandleWorkshopDashboard)
	workshop.Post("/subscription", controllers.HandleStartSubscription)
	workshop.Post("/subscription/sync", controllers.HandleSyncSubscription)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
